package alias

import (
	"errors"
	"fmt"
)

// ValidationError reports a user-supplied value that cannot be sent to the
// store. It is raised before any network call.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// IsValidationError returns true if err is or wraps a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
