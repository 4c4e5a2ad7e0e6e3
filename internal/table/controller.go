package table

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/roach88/fxrelay/internal/alias"
	"github.com/roach88/fxrelay/internal/journal"
	"github.com/roach88/fxrelay/internal/logging"
)

// Store is the remote alias store. *relay.Client implements it.
type Store interface {
	List(ctx context.Context) ([]alias.Alias, error)
	Create(ctx context.Context) (alias.Alias, error)
	Update(ctx context.Context, id int64, patch alias.Patch) (alias.Alias, error)
	Delete(ctx context.Context, id int64) error
}

// Recorder receives one entry per attempted mutation. *journal.Journal
// implements it.
type Recorder interface {
	Record(ctx context.Context, e journal.Entry) (int64, error)
}

// Cursor is a (row, column) position in the displayed table.
type Cursor struct {
	Row int
	Col int
}

// Row is a rendered snapshot of one alias.
type Row struct {
	Key   string
	Alias alias.Alias
	Cells []string
}

// Options configures a Controller.
type Options struct {
	// Columns to display, in order. Defaults to DefaultColumns().
	Columns []Column

	// Prompter answers confirmations and value prompts. Defaults to
	// AutoConfirm.
	Prompter Prompter

	// Recorder journals mutations. Optional.
	Recorder Recorder

	// Logger defaults to a discarding logger.
	Logger logrus.FieldLogger

	// Location for date cells. Defaults to time.Local.
	Location *time.Location

	// NewOperationID generates the id that tags each mutation's request and
	// journal entry. Defaults to uuid.NewString.
	NewOperationID func() string
}

// Controller keeps a displayed, sortable, editable table of aliases
// synchronized with a Store.
type Controller struct {
	store    Store
	prompter Prompter
	recorder Recorder
	log      logrus.FieldLogger
	loc      *time.Location
	newOpID  func() string
	columns  []Column

	loads singleflight.Group

	mu         sync.Mutex
	collator   *collate.Collator
	entries    map[string]alias.Alias
	order      []string
	cursor     Cursor
	inflight   map[string]struct{}
	pending    int
	sortKey    string
	sortDesc   bool

	// seq numbers store calls in the order they start. loadedSeq is the
	// start seq of the last applied Load. Writes that finish while a Load
	// is in flight are kept in landed and replayed over its snapshot.
	seq       uint64
	loadedSeq uint64
	loading   bool
	landed    []landedWrite
}

// landedWrite is a confirmed store write: the record the store returned, or
// a deletion.
type landedWrite struct {
	key     string
	alias   alias.Alias
	deleted bool
}

// New creates a controller over store. The table starts empty; call Load.
func New(store Store, opts Options) *Controller {
	cols := opts.Columns
	if len(cols) == 0 {
		cols = DefaultColumns()
	}
	prompter := opts.Prompter
	if prompter == nil {
		prompter = AutoConfirm{}
	}
	log := opts.Logger
	if log == nil {
		log = logging.Discard()
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	newOpID := opts.NewOperationID
	if newOpID == nil {
		newOpID = uuid.NewString
	}

	return &Controller{
		store:    store,
		prompter: prompter,
		recorder: opts.Recorder,
		log:      log,
		loc:      loc,
		newOpID:  newOpID,
		columns:  cols,
		collator: collate.New(language.Und, collate.IgnoreCase),
		entries:  make(map[string]alias.Alias),
		inflight: make(map[string]struct{}),
	}
}

// Columns returns the displayed columns in order.
func (c *Controller) Columns() []Column {
	out := make([]Column, len(c.columns))
	copy(out, c.columns)
	return out
}

// Column returns the column with the given key.
func (c *Controller) Column(key string) (Column, bool) {
	i := c.columnIndex(key)
	if i < 0 {
		return Column{}, false
	}
	return c.columns[i], true
}

func (c *Controller) columnIndex(key string) int {
	for i, col := range c.columns {
		if col.Key == key {
			return i
		}
	}
	return -1
}

// Len returns the number of rows.
func (c *Controller) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.order)
}

// Get returns the alias with the given row key.
func (c *Controller) Get(key string) (alias.Alias, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	a, ok := c.entries[key]
	return a, ok
}

// Keys returns the row keys in display order.
func (c *Controller) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Rows renders every row in display order.
func (c *Controller) Rows() []Row {
	c.mu.Lock()
	defer c.mu.Unlock()
	rows := make([]Row, len(c.order))
	for i, key := range c.order {
		rows[i] = c.renderLocked(key)
	}
	return rows
}

// Row renders the row with the given key.
func (c *Controller) Row(key string) (Row, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; !ok {
		return Row{}, false
	}
	return c.renderLocked(key), true
}

func (c *Controller) renderLocked(key string) Row {
	a := c.entries[key]
	cells := make([]string, len(c.columns))
	for i, col := range c.columns {
		cells[i] = col.Format(a, c.loc)
	}
	return Row{Key: key, Alias: a, Cells: cells}
}

// Busy reports whether a store call is outstanding.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending > 0
}

func (c *Controller) startCall() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending++
	c.seq++
	return c.seq
}

// beginLoad is startCall for a Load: from here on, confirmed writes are
// kept for replay.
func (c *Controller) beginLoad() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending++
	c.seq++
	c.loading, c.landed = true, nil
	return c.seq
}

// landLocked applies a confirmed write to the table and keeps it for the
// Load in flight, if any.
func (c *Controller) landLocked(w landedWrite) {
	c.replayLocked(w)
	if c.loading {
		c.landed = append(c.landed, w)
	}
}

func (c *Controller) replayLocked(w landedWrite) {
	if w.deleted {
		c.removeLocked(w.key)
		return
	}
	if _, exists := c.entries[w.key]; !exists {
		c.order = append(c.order, w.key)
	}
	c.entries[w.key] = w.alias
}

func (c *Controller) endCall() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending--
}

// Load fetches every alias and replaces the table. Concurrent callers share
// one request. On failure the table is left exactly as it was.
func (c *Controller) Load(ctx context.Context) error {
	_, err, _ := c.loads.Do("load", func() (any, error) {
		start := c.beginLoad()
		defer c.endCall()

		list, err := c.store.List(ctx)
		if err != nil {
			c.mu.Lock()
			c.loading, c.landed = false, nil
			c.mu.Unlock()
			c.log.WithError(err).Warn("load failed")
			return nil, err
		}

		c.mu.Lock()
		defer c.mu.Unlock()

		selected := c.cursorKeyLocked()
		c.entries = make(map[string]alias.Alias, len(list))
		c.order = c.order[:0]
		for _, a := range list {
			key := a.Key()
			if _, dup := c.entries[key]; !dup {
				c.order = append(c.order, key)
			}
			c.entries[key] = a
		}
		// The snapshot may predate writes confirmed while it was in flight.
		for _, w := range c.landed {
			c.replayLocked(w)
		}
		c.loading, c.landed = false, nil
		c.loadedSeq = start
		if c.sortKey != "" {
			c.sortLocked(c.columnIndex(c.sortKey), c.sortDesc)
		}
		c.restoreCursorLocked(selected)

		c.log.WithFields(logrus.Fields{"op": "load", "rows": len(c.order)}).Debug("table loaded")
		return nil, nil
	})
	return err
}

// Sort reorders rows by the column's sort key. Ties are broken by id, so
// sorting descending is the exact reverse of sorting ascending. The cursor
// stays on the same alias.
func (c *Controller) Sort(columnKey string, descending bool) error {
	i := c.columnIndex(columnKey)
	if i < 0 {
		return &NotFoundError{Kind: "column", Key: columnKey}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	selected := c.cursorKeyLocked()
	c.sortLocked(i, descending)
	c.sortKey = columnKey
	c.sortDesc = descending
	c.restoreCursorLocked(selected)
	return nil
}

func (c *Controller) sortLocked(col int, descending bool) {
	if col < 0 {
		return
	}
	column := c.columns[col]
	sort.SliceStable(c.order, func(i, j int) bool {
		a, b := c.entries[c.order[i]], c.entries[c.order[j]]
		r := column.Compare(a, b, c.collator)
		if r == 0 {
			r = compareIDs(a.ID, b.ID)
		}
		if descending {
			r = -r
		}
		return r < 0
	})
}

func compareIDs(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// begin marks key as having a mutation in flight and returns its record.
func (c *Controller) begin(key string) (alias.Alias, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	a, ok := c.entries[key]
	if !ok {
		return alias.Alias{}, &NotFoundError{Kind: "row", Key: key}
	}
	if _, busy := c.inflight[key]; busy {
		return alias.Alias{}, ErrBusy
	}
	c.inflight[key] = struct{}{}
	return a, nil
}

func (c *Controller) finish(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inflight, key)
}
