package table

import (
	"errors"
	"fmt"
)

var (
	// ErrBusy is returned when a mutation is already in flight for the alias.
	ErrBusy = errors.New("alias has a pending change")

	// ErrSuperseded is returned when an update response arrived after a
	// Load that started later had replaced the table; the response was not
	// applied.
	ErrSuperseded = errors.New("response superseded by a newer reload")
)

// NotFoundError reports a row key or column key the table does not know.
type NotFoundError struct {
	Kind string // "row" or "column"
	Key  string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("unknown %s %q", e.Kind, e.Key)
}
