package table

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/fxrelay/internal/alias"
	"github.com/roach88/fxrelay/internal/journal"
	"github.com/roach88/fxrelay/internal/relay"
	"github.com/roach88/fxrelay/internal/testutil"
)

func TestLoad_ReplacesRows(t *testing.T) {
	store := newStubStore(testutil.SampleAlias(1, "work"), testutil.SampleAlias(2, "shop"))
	c := loadedController(t, store, nil, nil)

	assert.Equal(t, []string{"1", "2"}, c.Keys())
	a, ok := c.Get("1")
	require.True(t, ok)
	assert.Equal(t, "work", a.Description)

	store.set(testutil.SampleAlias(3, "new"))
	require.NoError(t, c.Load(context.Background()))
	assert.Equal(t, []string{"3"}, c.Keys())
	_, ok = c.Get("1")
	assert.False(t, ok, "load clears rows the server no longer returns")
}

func TestLoad_FailureLeavesTableUnchanged(t *testing.T) {
	store := newStubStore(testutil.SampleAlias(1, "work"), testutil.SampleAlias(2, "shop"))
	c := loadedController(t, store, nil, nil)
	before := c.Rows()

	store.listErr = &relay.RemoteError{Op: "list", StatusCode: 500}
	err := c.Load(context.Background())
	require.Error(t, err)
	assert.True(t, relay.IsRemoteError(err))

	assert.Equal(t, before, c.Rows())
	assert.False(t, c.Busy())
}

func TestRows_FormatsCells(t *testing.T) {
	a := testutil.SampleAlias(1, "work")
	store := newStubStore(a)
	c := loadedController(t, store, nil, nil)

	rows := c.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, []string{
		"work",
		"mask1@mozmail.test",
		"1",
		"NONE",
		"2024-01-03 03:04 +0000",
		"3",
		"1",
	}, rows[0].Cells)
}

func TestSort_NumericNotLexicographic(t *testing.T) {
	store := newStubStore(testutil.SampleAlias(10, ""), testutil.SampleAlias(2, ""), testutil.SampleAlias(1, ""))
	c := loadedController(t, store, nil, nil)
	assert.Equal(t, []string{"10", "2", "1"}, c.Keys())

	require.NoError(t, c.Sort("id", false))
	assert.Equal(t, []string{"1", "2", "10"}, c.Keys())

	require.NoError(t, c.Sort("id", true))
	assert.Equal(t, []string{"10", "2", "1"}, c.Keys())
}

func TestSort_DescendingIsExactReverse(t *testing.T) {
	store := newStubStore(
		withID(1, func(a *alias.Alias) { a.NumForwarded = 5 }),
		withID(2, func(a *alias.Alias) { a.NumForwarded = 5 }),
		withID(3, func(a *alias.Alias) { a.NumForwarded = 1 }),
		withID(4, func(a *alias.Alias) { a.NumForwarded = 20 }),
		withID(5, func(a *alias.Alias) { a.NumForwarded = 5 }),
	)
	c := loadedController(t, store, nil, nil)

	require.NoError(t, c.Sort("num_forwarded", false))
	asc := c.Keys()
	require.NoError(t, c.Sort("num_forwarded", true))
	desc := c.Keys()

	assert.Equal(t, []string{"3", "1", "2", "5", "4"}, asc)
	reversed := make([]string, len(asc))
	for i, k := range asc {
		reversed[len(asc)-1-i] = k
	}
	assert.Equal(t, reversed, desc)
}

func TestSort_TextIsCaseInsensitive(t *testing.T) {
	store := newStubStore(
		testutil.SampleAlias(1, "beta"),
		testutil.SampleAlias(2, "Alpha"),
		testutil.SampleAlias(3, "alpha2"),
	)
	c := loadedController(t, store, nil, nil)

	require.NoError(t, c.Sort("description", false))
	assert.Equal(t, []string{"2", "3", "1"}, c.Keys())
}

func TestSort_BlockingByOrdinal(t *testing.T) {
	store := newStubStore(
		withID(1, func(a *alias.Alias) { a.Enabled, a.BlockListEmails = true, false }),
		withID(2, func(a *alias.Alias) { a.Enabled, a.BlockListEmails = false, false }),
		withID(3, func(a *alias.Alias) { a.Enabled, a.BlockListEmails = true, true }),
	)
	c := loadedController(t, store, nil, nil)

	require.NoError(t, c.Sort("blocking", false))
	assert.Equal(t, []string{"2", "3", "1"}, c.Keys(), "ALL < PROMOTIONS < NONE")
}

func TestSort_DatesChronological(t *testing.T) {
	store := newStubStore(testutil.SampleAlias(3, ""), testutil.SampleAlias(1, ""), testutil.SampleAlias(2, ""))
	c := loadedController(t, store, nil, nil)

	require.NoError(t, c.Sort("created_at", true))
	assert.Equal(t, []string{"3", "2", "1"}, c.Keys())
}

func TestSort_UnknownColumn(t *testing.T) {
	c := loadedController(t, newStubStore(), nil, nil)

	err := c.Sort("nope", false)
	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "column", nf.Kind)
}

func TestSort_CursorFollowsAlias(t *testing.T) {
	store := newStubStore(testutil.SampleAlias(3, ""), testutil.SampleAlias(1, ""), testutil.SampleAlias(2, ""))
	c := loadedController(t, store, nil, nil)

	c.SetCursor(0, 2)
	require.NoError(t, c.SortCursor(false))

	row, col, ok := c.CursorKeys()
	require.True(t, ok)
	assert.Equal(t, "3", row)
	assert.Equal(t, "id", col)
	assert.Equal(t, Cursor{Row: 2, Col: 2}, c.Cursor())
}

func TestLoad_KeepsSortOrder(t *testing.T) {
	store := newStubStore(testutil.SampleAlias(1, ""), testutil.SampleAlias(2, ""))
	c := loadedController(t, store, nil, nil)
	require.NoError(t, c.Sort("id", true))

	store.set(testutil.SampleAlias(1, ""), testutil.SampleAlias(2, ""), testutil.SampleAlias(3, ""))
	require.NoError(t, c.Load(context.Background()))
	assert.Equal(t, []string{"3", "2", "1"}, c.Keys())
}

func TestCursor_Clamped(t *testing.T) {
	c := loadedController(t, newStubStore(testutil.SampleAlias(1, ""), testutil.SampleAlias(2, "")), nil, nil)

	c.MoveCursor(10, 100)
	assert.Equal(t, Cursor{Row: 1, Col: len(DefaultColumnKeys) - 1}, c.Cursor())
	c.MoveCursor(-10, -100)
	assert.Equal(t, Cursor{}, c.Cursor())

	empty := loadedController(t, newStubStore(), nil, nil)
	_, _, ok := empty.CursorKeys()
	assert.False(t, ok)
	assert.NoError(t, empty.EditCursor(context.Background()))
	assert.NoError(t, empty.DeleteCursor(context.Background()))
}

func TestCreate_InsertsAndMovesCursor(t *testing.T) {
	store := newStubStore(testutil.SampleAlias(1, "work"), testutil.SampleAlias(2, "shop"))
	rec := &memRecorder{}
	c := loadedController(t, store, nil, rec)
	c.SetCursor(0, 3)

	created, err := c.Create(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(100), created.ID)

	assert.Equal(t, []string{"1", "2", "100"}, c.Keys())
	assert.Equal(t, Cursor{Row: 2, Col: 0}, c.Cursor())
	assert.Equal(t, []journal.Outcome{journal.OutcomeOK}, rec.outcomes())
	assert.Equal(t, "op-0001", rec.entries[0].RequestID)
	assert.Equal(t, int64(100), rec.entries[0].AliasID)
}

func TestCreate_FailureLeavesStateUnchanged(t *testing.T) {
	store := newStubStore(testutil.SampleAlias(1, "work"))
	rec := &memRecorder{}
	c := loadedController(t, store, nil, rec)
	before := c.Rows()

	store.createErr = &relay.RemoteError{Op: "create", StatusCode: 429}
	_, err := c.Create(context.Background())
	require.Error(t, err)
	assert.True(t, relay.IsRemoteError(err))

	assert.Equal(t, before, c.Rows())
	assert.Equal(t, Cursor{}, c.Cursor())
	assert.Equal(t, []journal.Outcome{journal.OutcomeFailed}, rec.outcomes())
}

func TestCreate_DryRun(t *testing.T) {
	store := newStubStore(testutil.SampleAlias(1, "work"))
	store.createErr = relay.ErrDryRun
	rec := &memRecorder{}
	c := loadedController(t, store, nil, rec)

	_, err := c.Create(context.Background())
	assert.ErrorIs(t, err, relay.ErrDryRun)
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, []journal.Outcome{journal.OutcomeDryRun}, rec.outcomes())
}

func TestDelete_CancelLeavesStateUnchanged(t *testing.T) {
	store := newStubStore(testutil.SampleAlias(1, "work"), testutil.SampleAlias(2, "shop"))
	prompter := &scriptedPrompter{confirms: []bool{false}}
	rec := &memRecorder{}
	c := loadedController(t, store, prompter, rec)

	require.NoError(t, c.Delete(context.Background(), "2"))

	assert.Equal(t, 2, c.Len())
	_, ok := c.Get("2")
	assert.True(t, ok)
	assert.Equal(t, 0, store.countCalls("delete"))
	assert.Empty(t, rec.outcomes(), "cancelled prompts are not journaled")
	assert.Contains(t, prompter.titles[0], "mask2@mozmail.test")
}

func TestDelete_ConfirmRemovesAfterRemoteSuccess(t *testing.T) {
	store := newStubStore(testutil.SampleAlias(1, "work"), testutil.SampleAlias(2, "shop"))
	prompter := &scriptedPrompter{confirms: []bool{true}}
	c := loadedController(t, store, prompter, nil)
	c.SetCursor(1, 0)

	require.NoError(t, c.Delete(context.Background(), "2"))

	assert.Equal(t, 1, c.Len())
	_, ok := c.Get("2")
	assert.False(t, ok)
	assert.Equal(t, 1, store.countCalls("delete"))
	assert.Equal(t, Cursor{Row: 0, Col: 0}, c.Cursor(), "cursor clamps to the remaining rows")
}

func TestDelete_RemoteFailureKeepsRow(t *testing.T) {
	store := newStubStore(testutil.SampleAlias(1, "work"))
	store.deleteErr = &relay.RemoteError{Op: "delete", StatusCode: 500}
	prompter := &scriptedPrompter{confirms: []bool{true}}
	c := loadedController(t, store, prompter, nil)

	err := c.Delete(context.Background(), "1")
	require.Error(t, err)
	assert.True(t, relay.IsRemoteError(err))
	assert.Equal(t, 1, c.Len())
}

func TestDelete_DryRunSkipsLocalRemoval(t *testing.T) {
	store := newStubStore(testutil.SampleAlias(1, "work"))
	store.deleteErr = relay.ErrDryRun
	prompter := &scriptedPrompter{confirms: []bool{true}}
	rec := &memRecorder{}
	c := loadedController(t, store, prompter, rec)

	err := c.Delete(context.Background(), "1")
	assert.ErrorIs(t, err, relay.ErrDryRun)
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, []journal.Outcome{journal.OutcomeDryRun}, rec.outcomes())
}

func TestDelete_UnknownRow(t *testing.T) {
	c := loadedController(t, newStubStore(), &scriptedPrompter{confirms: []bool{true}}, nil)

	err := c.Delete(context.Background(), "9")
	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "row", nf.Kind)
}

func TestEdit_NonEditableColumnIsNoop(t *testing.T) {
	store := newStubStore(testutil.SampleAlias(1, "work"))
	prompter := &scriptedPrompter{texts: []textAnswer{{"x", true}}}
	c := loadedController(t, store, prompter, nil)

	for _, col := range []string{"full_address", "id", "created_at", "num_forwarded", "num_blocked"} {
		require.NoError(t, c.Edit(context.Background(), "1", col))
	}
	assert.Equal(t, 0, prompter.promptCount(), "no prompt shown")
	assert.Equal(t, 0, store.countCalls("update"), "no network call")
}

func TestEdit_DescriptionSendsOnlyThatField(t *testing.T) {
	store := newStubStore(testutil.SampleAlias(1, "work"))
	prompter := &scriptedPrompter{texts: []textAnswer{{"home", true}}}
	rec := &memRecorder{}
	c := loadedController(t, store, prompter, rec)

	require.NoError(t, c.Edit(context.Background(), "1", "description"))

	assert.Equal(t, []string{"work"}, prompter.initials, "prompt is pre-filled")
	require.Len(t, store.patches, 1)
	assert.Equal(t, alias.PatchForDescription("home"), store.patches[0])
	row, _ := c.Row("1")
	assert.Equal(t, "home", row.Cells[0])
	require.Len(t, rec.entries, 1)
	assert.JSONEq(t, `{"description":"home"}`, string(rec.entries[0].Payload))
}

func TestEdit_CancelSendsNothing(t *testing.T) {
	store := newStubStore(testutil.SampleAlias(1, "work"))
	c := loadedController(t, store, &scriptedPrompter{}, nil)

	require.NoError(t, c.Edit(context.Background(), "1", "description"))
	require.NoError(t, c.Edit(context.Background(), "1", "blocking"))
	assert.Equal(t, 0, store.countCalls("update"))
}

func TestEdit_UnchangedValueSendsNothing(t *testing.T) {
	store := newStubStore(testutil.SampleAlias(1, "work"))
	prompter := &scriptedPrompter{
		texts:   []textAnswer{{"work", true}},
		choices: []int{int(alias.BlockNone)},
	}
	c := loadedController(t, store, prompter, nil)

	require.NoError(t, c.Edit(context.Background(), "1", "description"))
	require.NoError(t, c.Edit(context.Background(), "1", "blocking"))
	assert.Equal(t, 0, store.countCalls("update"))
}

func TestEdit_InvalidDescriptionReprompts(t *testing.T) {
	store := newStubStore(testutil.SampleAlias(1, "work"))
	tooLong := strings.Repeat("x", MaxDescriptionLen+1)
	prompter := &scriptedPrompter{texts: []textAnswer{{tooLong, true}, {"short", true}}}
	c := loadedController(t, store, prompter, nil)

	require.NoError(t, c.Edit(context.Background(), "1", "description"))

	require.Len(t, prompter.titles, 2)
	assert.Contains(t, prompter.titles[1], "at most 64 characters")
	assert.Equal(t, tooLong, prompter.initials[1], "re-prompt keeps the rejected input")
	require.Len(t, store.patches, 1)
	assert.Equal(t, alias.PatchForDescription("short"), store.patches[0])
}

func TestEdit_InvalidThenCancelSendsNothing(t *testing.T) {
	store := newStubStore(testutil.SampleAlias(1, "work"))
	prompter := &scriptedPrompter{texts: []textAnswer{{strings.Repeat("y", 65), true}}}
	c := loadedController(t, store, prompter, nil)

	require.NoError(t, c.Edit(context.Background(), "1", "description"))
	assert.Equal(t, 0, store.countCalls("update"))
	a, _ := c.Get("1")
	assert.Equal(t, "work", a.Description)
}

func TestEdit_BlockingChoice(t *testing.T) {
	store := newStubStore(testutil.SampleAlias(1, "work"))
	prompter := &scriptedPrompter{choices: []int{int(alias.BlockAll)}}
	c := loadedController(t, store, prompter, nil)

	require.NoError(t, c.Edit(context.Background(), "1", "blocking"))

	assert.Equal(t, []string{"ALL", "PROMOTIONS", "NONE"}, prompter.lastOptions)
	assert.Equal(t, []int{int(alias.BlockNone)}, prompter.selected, "current mode pre-selected")
	require.Len(t, store.patches, 1)
	assert.Equal(t, alias.PatchForBlocking(alias.BlockAll), store.patches[0])

	a, _ := c.Get("1")
	assert.False(t, a.Enabled)
	assert.True(t, a.BlockListEmails)
}

func TestEdit_UsesServerRepresentation(t *testing.T) {
	store := newStubStore(testutil.SampleAlias(1, "work"))
	store.normalize = func(a alias.Alias) alias.Alias {
		a.Description = strings.ToUpper(a.Description)
		return a
	}
	prompter := &scriptedPrompter{texts: []textAnswer{{"home", true}}}
	c := loadedController(t, store, prompter, nil)

	require.NoError(t, c.Edit(context.Background(), "1", "description"))
	a, _ := c.Get("1")
	assert.Equal(t, "HOME", a.Description)
}

func TestEdit_RemoteFailureLeavesStateUnchanged(t *testing.T) {
	store := newStubStore(testutil.SampleAlias(1, "work"))
	store.updateErr = &relay.RemoteError{Op: "update", StatusCode: 400, Body: `{"description":["too long"]}`}
	prompter := &scriptedPrompter{
		texts:   []textAnswer{{"home", true}},
		choices: []int{int(alias.BlockPromotions)},
	}
	rec := &memRecorder{}
	c := loadedController(t, store, prompter, rec)
	beforeRow, _ := c.Row("1")
	beforeAlias, _ := c.Get("1")

	err := c.Edit(context.Background(), "1", "description")
	require.Error(t, err)
	assert.True(t, relay.IsRemoteError(err))
	err = c.Edit(context.Background(), "1", "blocking")
	require.Error(t, err)

	afterRow, _ := c.Row("1")
	afterAlias, _ := c.Get("1")
	assert.Equal(t, beforeRow, afterRow)
	assert.Equal(t, beforeAlias, afterAlias)
	assert.Equal(t, []journal.Outcome{journal.OutcomeFailed, journal.OutcomeFailed}, rec.outcomes())
	assert.Contains(t, rec.entries[0].Error, "status 400")
}

func TestEdit_DryRunKeepsRecord(t *testing.T) {
	store := newStubStore(testutil.SampleAlias(1, "work"))
	store.dryRun = true
	prompter := &scriptedPrompter{texts: []textAnswer{{"home", true}}}
	rec := &memRecorder{}
	c := loadedController(t, store, prompter, rec)

	require.NoError(t, c.Edit(context.Background(), "1", "description"))
	a, _ := c.Get("1")
	assert.Equal(t, "work", a.Description, "dry-run renders the unchanged server record")
	assert.Equal(t, []journal.Outcome{journal.OutcomeDryRun}, rec.outcomes())
}

func TestEdit_UnknownColumn(t *testing.T) {
	c := loadedController(t, newStubStore(testutil.SampleAlias(1, "")), nil, nil)
	err := c.Edit(context.Background(), "1", "nope")
	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
}

func TestEdit_SecondMutationOnSameAliasIsBusy(t *testing.T) {
	store := newStubStore(testutil.SampleAlias(1, "work"), testutil.SampleAlias(2, "shop"))
	entered := make(chan struct{})
	release := make(chan struct{})
	store.updateHook = func() {
		close(entered)
		<-release
	}
	prompter := &scriptedPrompter{
		texts:    []textAnswer{{"home", true}},
		confirms: []bool{true},
	}
	c := loadedController(t, store, prompter, nil)

	done := make(chan error, 1)
	go func() { done <- c.Edit(context.Background(), "1", "description") }()
	<-entered

	assert.True(t, c.Busy())
	assert.ErrorIs(t, c.Delete(context.Background(), "1"), ErrBusy)
	assert.ErrorIs(t, c.Edit(context.Background(), "1", "description"), ErrBusy)

	close(release)
	require.NoError(t, <-done)
	assert.False(t, c.Busy())

	// the mark is released once the first edit completes
	require.NoError(t, c.Delete(context.Background(), "1"))
	assert.Equal(t, 1, c.Len())
}

func TestEdit_ResponseAfterNewerLoadIsDiscarded(t *testing.T) {
	store := newStubStore(testutil.SampleAlias(1, "work"))
	entered := make(chan struct{})
	release := make(chan struct{})
	store.updateHook = func() {
		close(entered)
		<-release
	}
	prompter := &scriptedPrompter{texts: []textAnswer{{"home", true}}}
	rec := &memRecorder{}
	c := loadedController(t, store, prompter, rec)

	done := make(chan error, 1)
	go func() { done <- c.Edit(context.Background(), "1", "description") }()
	<-entered

	// a reload completes while the PATCH is outstanding
	store.set(testutil.SampleAlias(1, "reloaded"))
	require.NoError(t, c.Load(context.Background()))

	close(release)
	err := <-done
	assert.ErrorIs(t, err, ErrSuperseded)

	a, _ := c.Get("1")
	assert.Equal(t, "reloaded", a.Description, "stale response is not rendered")
	assert.Equal(t, []journal.Outcome{journal.OutcomeDiscarded}, rec.outcomes())
}

// startLoad runs Load in the background until its List has taken a
// snapshot, and returns a function that lets it finish.
func startLoad(t *testing.T, c *Controller, store *stubStore) func() {
	t.Helper()
	entered, release := store.blockList()
	done := make(chan error, 1)
	go func() { done <- c.Load(context.Background()) }()
	<-entered
	return func() {
		close(release)
		require.NoError(t, <-done)
	}
}

func TestLoad_StaleSnapshotKeepsCreatedRow(t *testing.T) {
	store := newStubStore(testutil.SampleAlias(1, "work"))
	c := loadedController(t, store, nil, nil)

	finish := startLoad(t, c, store)
	created, err := c.Create(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "100"}, c.Keys())

	finish()
	assert.Equal(t, []string{"1", "100"}, c.Keys())
	_, ok := c.Get(created.Key())
	assert.True(t, ok, "row created during the load survives its older snapshot")
}

func TestLoad_StaleSnapshotKeepsUpdate(t *testing.T) {
	store := newStubStore(testutil.SampleAlias(1, "work"))
	c := loadedController(t, store, nil, nil)

	finish := startLoad(t, c, store)
	_, err := c.Apply(context.Background(), "1", alias.PatchForDescription("home"))
	require.NoError(t, err)

	finish()
	a, _ := c.Get("1")
	assert.Equal(t, "home", a.Description)
}

func TestLoad_StaleSnapshotDoesNotRestoreDeletedRow(t *testing.T) {
	store := newStubStore(testutil.SampleAlias(1, "work"), testutil.SampleAlias(2, "shop"))
	c := loadedController(t, store, nil, nil)

	finish := startLoad(t, c, store)
	require.NoError(t, c.Delete(context.Background(), "2"))

	finish()
	assert.Equal(t, []string{"1"}, c.Keys())
}

func TestEdit_ResponseAfterOlderLoadIsApplied(t *testing.T) {
	store := newStubStore(testutil.SampleAlias(1, "work"))
	rec := &memRecorder{}
	c := loadedController(t, store, nil, rec)

	// The load takes its snapshot before the PATCH is sent...
	finish := startLoad(t, c, store)

	entered := make(chan struct{})
	release := make(chan struct{})
	store.updateHook = func() {
		close(entered)
		<-release
	}
	done := make(chan error, 1)
	go func() {
		_, err := c.Apply(context.Background(), "1", alias.PatchForDescription("home"))
		done <- err
	}()
	<-entered

	// ...and is applied before the PATCH answers.
	finish()
	a, _ := c.Get("1")
	assert.Equal(t, "work", a.Description)

	close(release)
	require.NoError(t, <-done)
	a, _ = c.Get("1")
	assert.Equal(t, "home", a.Description, "response is newer than the applied snapshot")
	assert.Equal(t, []journal.Outcome{journal.OutcomeOK}, rec.outcomes())
}

func TestApply_NonInteractive(t *testing.T) {
	store := newStubStore(testutil.SampleAlias(1, "work"))
	c := loadedController(t, store, nil, nil)

	patch := alias.PatchForDescription("home").Merge(alias.PatchForBlocking(alias.BlockPromotions))
	got, err := c.Apply(context.Background(), "1", patch)
	require.NoError(t, err)
	assert.Equal(t, "home", got.Description)
	assert.Equal(t, alias.BlockPromotions, got.Blocking())

	_, err = c.Apply(context.Background(), "1", alias.PatchForDescription(strings.Repeat("z", 65)))
	assert.True(t, alias.IsValidationError(err))
	assert.Equal(t, 1, store.countCalls("update"), "validation happens before any call")

	got, err = c.Apply(context.Background(), "1", alias.Patch{})
	require.NoError(t, err)
	assert.Equal(t, "home", got.Description)
	assert.Equal(t, 1, store.countCalls("update"))
}

func TestEndToEnd_BlockingEditAgainstRelay(t *testing.T) {
	seed := alias.Alias{
		ID:              1,
		Description:     "work",
		FullAddress:     "abc@mozmail.test",
		CreatedAt:       testutil.Epoch,
		Enabled:         true,
		BlockListEmails: false,
	}
	fake := testutil.NewFakeRelay(t, seed)
	client, err := relay.New(relay.Options{BaseURL: fake.URL(), Token: testutil.FakeToken, Timeout: 5 * time.Second})
	require.NoError(t, err)

	prompter := &scriptedPrompter{choices: []int{int(alias.BlockPromotions)}}
	c := newTestController(t, client, prompter, nil)
	require.NoError(t, c.Load(context.Background()))

	rows := c.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, "NONE", rows[0].Cells[3])

	fake.FailNext("PATCH", 502)
	err = c.Edit(context.Background(), "1", "blocking")
	require.Error(t, err)
	row, _ := c.Row("1")
	assert.Equal(t, "NONE", row.Cells[3], "no change before a successful response")

	prompter.choices = []int{int(alias.BlockPromotions)}
	require.NoError(t, c.Edit(context.Background(), "1", "blocking"))

	patches := fake.RequestsFor("PATCH")
	require.Len(t, patches, 2)
	assert.JSONEq(t, `{"enabled":true,"block_list_emails":true}`, patches[1].Body)
	assert.Equal(t, "op-0002", patches[1].RequestID)

	row, _ = c.Row("1")
	assert.Equal(t, "PROMOTIONS", row.Cells[3])
}

func TestNew_DefaultLoggerDiscards(t *testing.T) {
	c := New(newStubStore(), Options{})
	log, ok := c.log.(*logrus.Logger)
	require.True(t, ok)
	assert.Equal(t, io.Discard, log.Out)
}
