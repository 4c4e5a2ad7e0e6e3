package alias

import (
	"strconv"
	"time"
)

// Alias is one relay address as returned by the relay API.
type Alias struct {
	ID              int64     `json:"id"`
	Description     string    `json:"description"`
	FullAddress     string    `json:"full_address"`
	CreatedAt       time.Time `json:"created_at"`
	Enabled         bool      `json:"enabled"`
	BlockListEmails bool      `json:"block_list_emails"`
	NumForwarded    int64     `json:"num_forwarded"`
	NumBlocked      int64     `json:"num_blocked"`

	// Read-only counters and metadata the API returns but the default
	// table does not show.
	NumReplied   int64      `json:"num_replied,omitempty"`
	NumSpam      int64      `json:"num_spam,omitempty"`
	GeneratedFor string     `json:"generated_for,omitempty"`
	LastUsedAt   *time.Time `json:"last_used_at,omitempty"`
}

// Key returns the row key for the alias: its id in decimal.
func (a Alias) Key() string {
	return FormatID(a.ID)
}

// Blocking returns the derived blocking mode of the alias.
func (a Alias) Blocking() BlockingMode {
	return BlockingFromFlags(a.Enabled, a.BlockListEmails)
}

// Apply returns a copy of a with the non-nil fields of p applied.
// Used to predict the server result when no round trip is made.
func (a Alias) Apply(p Patch) Alias {
	if p.Description != nil {
		a.Description = *p.Description
	}
	if p.Enabled != nil {
		a.Enabled = *p.Enabled
	}
	if p.BlockListEmails != nil {
		a.BlockListEmails = *p.BlockListEmails
	}
	return a
}

// FormatID renders an alias id as a row key.
func FormatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// ParseID parses a row key back into an alias id.
func ParseID(key string) (int64, error) {
	id, err := strconv.ParseInt(key, 10, 64)
	if err != nil || id <= 0 {
		return 0, &ValidationError{Field: "id", Value: key, Reason: "must be a positive integer"}
	}
	return id, nil
}
