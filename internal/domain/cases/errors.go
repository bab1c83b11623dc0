package cases

import (
	"errors"
	"fmt"
)

// ErrNotFound covers both an absent case and a case owned by someone else.
// Callers must not be able to tell the two apart.
var ErrNotFound = errors.New("case not found")

// ValidationError indicates required input was missing or malformed. It is
// recoverable at the boundary: the caller should re-prompt, not crash.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}
