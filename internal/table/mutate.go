package table

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/roach88/fxrelay/internal/alias"
	"github.com/roach88/fxrelay/internal/journal"
	"github.com/roach88/fxrelay/internal/relay"
)

// Create asks the store for a new alias, inserts it and moves the cursor to
// the new row's first cell. On failure the table is unchanged.
func (c *Controller) Create(ctx context.Context) (alias.Alias, error) {
	opID := c.newOpID()
	entry := journal.Entry{RequestID: opID, Op: journal.OpCreate}

	c.startCall()
	created, err := c.store.Create(relay.WithRequestID(ctx, opID))
	c.endCall()
	if err != nil {
		c.record(ctx, entry, err)
		return alias.Alias{}, fmt.Errorf("create alias: %w", err)
	}

	key := created.Key()
	c.mu.Lock()
	// A reload that raced the create may already hold the row.
	c.landLocked(landedWrite{key: key, alias: created})
	for i, k := range c.order {
		if k == key {
			c.cursor = Cursor{Row: i, Col: 0}
			break
		}
	}
	c.mu.Unlock()

	entry.AliasID = created.ID
	c.record(ctx, entry, nil)
	return created, nil
}

// Delete asks for confirmation, deletes the alias remotely and only then
// removes its row. Cancelling changes nothing.
func (c *Controller) Delete(ctx context.Context, key string) error {
	current, err := c.begin(key)
	if err != nil {
		return err
	}
	defer c.finish(key)

	title := fmt.Sprintf("Delete %s (id %s)?", current.FullAddress, key)
	ok, err := c.prompter.Confirm(ctx, title)
	if err != nil || !ok {
		return err
	}

	opID := c.newOpID()
	entry := journal.Entry{RequestID: opID, Op: journal.OpDelete, AliasID: current.ID}

	c.startCall()
	err = c.store.Delete(relay.WithRequestID(ctx, opID), current.ID)
	c.endCall()
	if err != nil {
		c.record(ctx, entry, err)
		return fmt.Errorf("delete alias %s: %w", key, err)
	}

	// Deletion is terminal and ids are never reused, so the row is removed
	// even if a reload raced the call.
	c.mu.Lock()
	c.landLocked(landedWrite{key: key, deleted: true})
	c.mu.Unlock()

	c.record(ctx, entry, nil)
	return nil
}

// Edit prompts for a new value of the given cell and sends it to the store.
// It is a no-op for read-only columns. Cancelling or submitting the current
// value sends nothing.
func (c *Controller) Edit(ctx context.Context, key, columnKey string) error {
	col, ok := c.Column(columnKey)
	if !ok {
		return &NotFoundError{Kind: "column", Key: columnKey}
	}
	if !col.Editable {
		return nil
	}

	current, err := c.begin(key)
	if err != nil {
		return err
	}
	defer c.finish(key)

	patch, ok, err := c.promptPatch(ctx, col, current)
	if err != nil || !ok {
		return err
	}
	return c.update(ctx, key, current, patch)
}

// Apply sends patch for the alias without prompting and returns the
// resulting record.
func (c *Controller) Apply(ctx context.Context, key string, patch alias.Patch) (alias.Alias, error) {
	if patch.Description != nil {
		if _, err := parseDescription(*patch.Description); err != nil {
			return alias.Alias{}, err
		}
	}

	current, err := c.begin(key)
	if err != nil {
		return alias.Alias{}, err
	}
	defer c.finish(key)

	if err := c.update(ctx, key, current, patch); err != nil {
		return alias.Alias{}, err
	}
	a, _ := c.Get(key)
	return a, nil
}

func (c *Controller) promptPatch(ctx context.Context, col Column, current alias.Alias) (alias.Patch, bool, error) {
	if col.Kind == KindBlocking {
		labels := make([]string, len(alias.BlockingModes))
		for i, m := range alias.BlockingModes {
			labels[i] = m.String()
		}
		idx, ok, err := c.prompter.Choose(ctx, col.Label, labels, int(current.Blocking()))
		if err != nil || !ok {
			return alias.Patch{}, false, err
		}
		if idx < 0 || idx >= len(alias.BlockingModes) {
			return alias.Patch{}, false, &alias.ValidationError{
				Field:  "blocking",
				Value:  fmt.Sprint(idx),
				Reason: "choice out of range",
			}
		}
		return alias.PatchForBlocking(alias.BlockingModes[idx]), true, nil
	}

	// Invalid input re-opens the prompt with the reason in the title.
	title := col.Label
	value := col.Value(current)
	for {
		entered, ok, err := c.prompter.Text(ctx, title, value)
		if err != nil || !ok {
			return alias.Patch{}, false, err
		}
		patch, err := col.Parse(entered)
		if err == nil {
			return patch, true, nil
		}
		if !alias.IsValidationError(err) {
			return alias.Patch{}, false, err
		}
		title = fmt.Sprintf("%s: %v", col.Label, err)
		value = entered
	}
}

// update sends patch and replaces the local record with the store's response.
// Callers must hold the in-flight mark for key.
func (c *Controller) update(ctx context.Context, key string, current alias.Alias, patch alias.Patch) error {
	if !patch.Changes(current) {
		return nil
	}

	opID := c.newOpID()
	payload, err := json.Marshal(patch)
	if err != nil {
		return fmt.Errorf("encode patch: %w", err)
	}
	entry := journal.Entry{RequestID: opID, Op: journal.OpUpdate, AliasID: current.ID, Payload: payload}

	sent := c.startCall()
	updated, err := c.store.Update(relay.WithRequestID(ctx, opID), current.ID, patch)
	c.endCall()
	if err != nil {
		c.record(ctx, entry, err)
		return fmt.Errorf("update alias %s: %w", key, err)
	}

	c.mu.Lock()
	// A Load that started after the PATCH went out has already replaced
	// the row with a newer snapshot.
	if c.loadedSeq > sent {
		c.mu.Unlock()
		c.record(ctx, entry, ErrSuperseded)
		return ErrSuperseded
	}
	if _, exists := c.entries[key]; exists {
		c.landLocked(landedWrite{key: key, alias: updated})
	}
	c.mu.Unlock()

	c.record(ctx, entry, nil)
	return nil
}

func (c *Controller) removeLocked(key string) {
	if _, ok := c.entries[key]; !ok {
		return
	}
	delete(c.entries, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	c.setCursorLocked(c.cursor.Row, c.cursor.Col)
}

type dryRunner interface {
	DryRun() bool
}

// record journals a mutation attempt and logs it. Journal failures are
// logged, never returned: the remote call already happened.
func (c *Controller) record(ctx context.Context, e journal.Entry, err error) {
	e.Outcome = journal.OutcomeOK
	switch {
	case errors.Is(err, relay.ErrDryRun):
		e.Outcome = journal.OutcomeDryRun
	case errors.Is(err, ErrSuperseded):
		e.Outcome = journal.OutcomeDiscarded
	case err != nil:
		e.Outcome = journal.OutcomeFailed
		e.Error = err.Error()
	default:
		if dr, ok := c.store.(dryRunner); ok && dr.DryRun() {
			e.Outcome = journal.OutcomeDryRun
		}
	}

	fields := logrus.Fields{
		"op":         string(e.Op),
		"alias_id":   e.AliasID,
		"request_id": e.RequestID,
		"outcome":    string(e.Outcome),
	}
	if err != nil && e.Outcome == journal.OutcomeFailed {
		c.log.WithFields(fields).WithError(err).Warn("mutation failed")
	} else {
		c.log.WithFields(fields).Info("mutation recorded")
	}

	if c.recorder == nil {
		return
	}
	if _, rerr := c.recorder.Record(context.WithoutCancel(ctx), e); rerr != nil {
		c.log.WithError(rerr).Warn("journal write failed")
	}
}
