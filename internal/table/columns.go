package table

import (
	"cmp"
	"fmt"
	"strconv"
	"time"
	"unicode/utf8"

	"golang.org/x/text/collate"

	"github.com/roach88/fxrelay/internal/alias"
)

// Kind is the closed set of column variants. Formatting and ordering are
// dispatched on it.
type Kind int

const (
	KindText Kind = iota
	KindBool
	KindInt
	KindDate
	KindBlocking
)

// DateLayout is how date cells are rendered, in the controller's location.
const DateLayout = "2006-01-02 15:04 -0700"

// MaxDescriptionLen is the longest description the relay API accepts.
const MaxDescriptionLen = 64

// Column describes one visible column of the alias table.
type Column struct {
	Key      string
	Label    string
	Kind     Kind
	Editable bool

	text  func(alias.Alias) string
	num   func(alias.Alias) int64
	flag  func(alias.Alias) bool
	date  func(alias.Alias) time.Time
	parse func(string) (alias.Patch, error)
}

// Format renders the cell of a for this column. Dates are shown in loc.
func (c Column) Format(a alias.Alias, loc *time.Location) string {
	switch c.Kind {
	case KindText:
		return c.text(a)
	case KindBool:
		if c.flag(a) {
			return "✅"
		}
		return " "
	case KindInt:
		return strconv.FormatInt(c.num(a), 10)
	case KindDate:
		t := c.date(a)
		if t.IsZero() {
			return ""
		}
		return t.In(loc).Format(DateLayout)
	case KindBlocking:
		return a.Blocking().String()
	default:
		return ""
	}
}

// Compare orders a and b by this column's sort key. Integer columns compare
// numerically and the blocking column by ordinal (ALL < PROMOTIONS < NONE).
// coll is only used by text columns.
func (c Column) Compare(a, b alias.Alias, coll *collate.Collator) int {
	switch c.Kind {
	case KindText:
		if coll == nil {
			return cmp.Compare(c.text(a), c.text(b))
		}
		return coll.CompareString(c.text(a), c.text(b))
	case KindBool:
		return compareBool(c.flag(a), c.flag(b))
	case KindInt:
		return cmp.Compare(c.num(a), c.num(b))
	case KindDate:
		return c.date(a).Compare(c.date(b))
	case KindBlocking:
		return cmp.Compare(a.Blocking(), b.Blocking())
	default:
		return 0
	}
}

// Value returns the current editable value of a as shown in a prompt.
func (c Column) Value(a alias.Alias) string {
	if c.Kind == KindText {
		return c.text(a)
	}
	return c.Format(a, time.UTC)
}

// Parse turns a value entered for a scalar column into a patch.
func (c Column) Parse(value string) (alias.Patch, error) {
	if !c.Editable || c.parse == nil {
		return alias.Patch{}, fmt.Errorf("column %q is not editable", c.Key)
	}
	return c.parse(value)
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}

// TextColumn builds a read-only text column.
func TextColumn(key, label string, get func(alias.Alias) string) Column {
	return Column{Key: key, Label: label, Kind: KindText, text: get}
}

// IntColumn builds a numeric column.
func IntColumn(key, label string, get func(alias.Alias) int64) Column {
	return Column{Key: key, Label: label, Kind: KindInt, num: get}
}

// BoolColumn builds a check-mark column.
func BoolColumn(key, label string, get func(alias.Alias) bool) Column {
	return Column{Key: key, Label: label, Kind: KindBool, flag: get}
}

// DateColumn builds a timestamp column.
func DateColumn(key, label string, get func(alias.Alias) time.Time) Column {
	return Column{Key: key, Label: label, Kind: KindDate, date: get}
}

// BlockingColumn builds the derived, editable blocking-mode column.
func BlockingColumn(label string) Column {
	return Column{Key: "blocking", Label: label, Kind: KindBlocking, Editable: true}
}

// DescriptionColumn builds the editable description column.
func DescriptionColumn(label string) Column {
	c := TextColumn("description", label, func(a alias.Alias) string { return a.Description })
	c.Editable = true
	c.parse = parseDescription
	return c
}

func parseDescription(value string) (alias.Patch, error) {
	if utf8.RuneCountInString(value) > MaxDescriptionLen {
		return alias.Patch{}, &alias.ValidationError{
			Field:  "description",
			Value:  value,
			Reason: fmt.Sprintf("at most %d characters", MaxDescriptionLen),
		}
	}
	return alias.PatchForDescription(value), nil
}

// AllColumns lists every column the table can show, keyed by Key.
func AllColumns() []Column {
	return []Column{
		DescriptionColumn("Description"),
		TextColumn("full_address", "E-mail address", func(a alias.Alias) string { return a.FullAddress }),
		IntColumn("id", "ID", func(a alias.Alias) int64 { return a.ID }),
		BlockingColumn("Block?"),
		DateColumn("created_at", "Created at", func(a alias.Alias) time.Time { return a.CreatedAt }),
		IntColumn("num_forwarded", "#Forwarded", func(a alias.Alias) int64 { return a.NumForwarded }),
		IntColumn("num_blocked", "#Blocked", func(a alias.Alias) int64 { return a.NumBlocked }),
		IntColumn("num_replied", "#Replied", func(a alias.Alias) int64 { return a.NumReplied }),
		IntColumn("num_spam", "#Spam", func(a alias.Alias) int64 { return a.NumSpam }),
		BoolColumn("enabled", "Enabled", func(a alias.Alias) bool { return a.Enabled }),
		BoolColumn("block_list_emails", "Block lists", func(a alias.Alias) bool { return a.BlockListEmails }),
		TextColumn("generated_for", "Generated for", func(a alias.Alias) string { return a.GeneratedFor }),
		DateColumn("last_used_at", "Last used", func(a alias.Alias) time.Time {
			if a.LastUsedAt == nil {
				return time.Time{}
			}
			return *a.LastUsedAt
		}),
	}
}

// DefaultColumnKeys is the column set shown when none is configured.
var DefaultColumnKeys = []string{
	"description", "full_address", "id", "blocking", "created_at", "num_forwarded", "num_blocked",
}

// DefaultColumns returns the default column set in display order.
func DefaultColumns() []Column {
	cols, _ := ColumnsByKey(DefaultColumnKeys)
	return cols
}

// ColumnsByKey selects columns by key, in the given order.
func ColumnsByKey(keys []string) ([]Column, error) {
	all := make(map[string]Column)
	for _, c := range AllColumns() {
		all[c.Key] = c
	}

	seen := make(map[string]bool)
	cols := make([]Column, 0, len(keys))
	for _, k := range keys {
		c, ok := all[k]
		if !ok {
			return nil, fmt.Errorf("unknown column %q", k)
		}
		if seen[k] {
			return nil, fmt.Errorf("duplicate column %q", k)
		}
		seen[k] = true
		cols = append(cols, c)
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("at least one column is required")
	}
	return cols, nil
}
