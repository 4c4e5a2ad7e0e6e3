package table

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/roach88/fxrelay/internal/alias"
	"github.com/roach88/fxrelay/internal/journal"
	"github.com/roach88/fxrelay/internal/testutil"
)

var errBoom = errors.New("boom")

// stubStore is an in-memory Store with per-call hooks.
type stubStore struct {
	mu      sync.Mutex
	aliases []alias.Alias
	listErr error
	nextID  int64
	dryRun  bool

	createErr error
	updateErr error
	deleteErr error

	// updateHook, when set, runs before Update answers. It is called
	// without the lock held so it may block.
	updateHook func()
	// listHook, when set, runs after List has taken its snapshot and before
	// it answers, so the answer can go stale while it blocks.
	listHook  func()
	normalize func(alias.Alias) alias.Alias

	calls   []string
	patches []alias.Patch
}

func newStubStore(seed ...alias.Alias) *stubStore {
	return &stubStore{aliases: seed, nextID: 100}
}

func (s *stubStore) List(ctx context.Context) ([]alias.Alias, error) {
	s.mu.Lock()
	s.calls = append(s.calls, "list")
	if s.listErr != nil {
		s.mu.Unlock()
		return nil, s.listErr
	}
	out := make([]alias.Alias, len(s.aliases))
	copy(out, s.aliases)
	hook := s.listHook
	s.mu.Unlock()

	if hook != nil {
		hook()
	}
	return out, nil
}

// blockList makes the next List take its snapshot, signal entered and wait
// for release before answering.
func (s *stubStore) blockList() (entered, release chan struct{}) {
	entered = make(chan struct{})
	release = make(chan struct{})
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listHook = func() {
		s.mu.Lock()
		s.listHook = nil
		s.mu.Unlock()
		close(entered)
		<-release
	}
	return entered, release
}

func (s *stubStore) Create(ctx context.Context) (alias.Alias, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, "create")
	if s.createErr != nil {
		return alias.Alias{}, s.createErr
	}
	a := testutil.SampleAlias(s.nextID, "")
	s.nextID++
	s.aliases = append(s.aliases, a)
	return a, nil
}

func (s *stubStore) Update(ctx context.Context, id int64, patch alias.Patch) (alias.Alias, error) {
	s.mu.Lock()
	hook := s.updateHook
	s.mu.Unlock()
	if hook != nil {
		hook()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, "update")
	s.patches = append(s.patches, patch)
	if s.updateErr != nil {
		return alias.Alias{}, s.updateErr
	}
	for i, a := range s.aliases {
		if a.ID == id {
			updated := a
			if !s.dryRun {
				updated = a.Apply(patch)
			}
			if s.normalize != nil {
				updated = s.normalize(updated)
			}
			s.aliases[i] = updated
			return updated, nil
		}
	}
	return alias.Alias{}, errors.New("not found")
}

func (s *stubStore) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, "delete")
	if s.deleteErr != nil {
		return s.deleteErr
	}
	for i, a := range s.aliases {
		if a.ID == id {
			s.aliases = append(s.aliases[:i], s.aliases[i+1:]...)
			return nil
		}
	}
	return errors.New("not found")
}

func (s *stubStore) DryRun() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dryRun
}

func (s *stubStore) set(aliases ...alias.Alias) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.aliases = aliases
}

func (s *stubStore) callLog() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.calls))
	copy(out, s.calls)
	return out
}

func (s *stubStore) countCalls(name string) int {
	n := 0
	for _, c := range s.callLog() {
		if c == name {
			n++
		}
	}
	return n
}

type textAnswer struct {
	value string
	ok    bool
}

// scriptedPrompter answers prompts from queued answers. An exhausted queue
// dismisses the prompt.
type scriptedPrompter struct {
	mu       sync.Mutex
	confirms []bool
	texts    []textAnswer
	choices  []int

	titles      []string
	initials    []string
	selected    []int
	lastOptions []string
}

func (p *scriptedPrompter) Confirm(ctx context.Context, title string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.titles = append(p.titles, title)
	if len(p.confirms) == 0 {
		return false, nil
	}
	ok := p.confirms[0]
	p.confirms = p.confirms[1:]
	return ok, nil
}

func (p *scriptedPrompter) Text(ctx context.Context, title, initial string) (string, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.titles = append(p.titles, title)
	p.initials = append(p.initials, initial)
	if len(p.texts) == 0 {
		return "", false, nil
	}
	a := p.texts[0]
	p.texts = p.texts[1:]
	return a.value, a.ok, nil
}

func (p *scriptedPrompter) Choose(ctx context.Context, title string, options []string, selected int) (int, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.titles = append(p.titles, title)
	p.selected = append(p.selected, selected)
	p.lastOptions = options
	if len(p.choices) == 0 {
		return 0, false, nil
	}
	idx := p.choices[0]
	p.choices = p.choices[1:]
	return idx, true, nil
}

func (p *scriptedPrompter) promptCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.titles)
}

// memRecorder collects journal entries.
type memRecorder struct {
	mu      sync.Mutex
	entries []journal.Entry
}

func (r *memRecorder) Record(ctx context.Context, e journal.Entry) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
	return int64(len(r.entries)), nil
}

func (r *memRecorder) outcomes() []journal.Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]journal.Outcome, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.Outcome
	}
	return out
}

func newTestController(t *testing.T, store Store, prompter Prompter, rec Recorder) *Controller {
	t.Helper()
	return New(store, Options{
		Prompter:       prompter,
		Recorder:       rec,
		Location:       time.UTC,
		NewOperationID: testutil.NewSequentialIDs("op").Next,
	})
}

func loadedController(t *testing.T, store *stubStore, prompter Prompter, rec Recorder) *Controller {
	t.Helper()
	c := newTestController(t, store, prompter, rec)
	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	return c
}

func withID(id int64, mutate func(*alias.Alias)) alias.Alias {
	a := testutil.SampleAlias(id, "")
	if mutate != nil {
		mutate(&a)
	}
	return a
}
