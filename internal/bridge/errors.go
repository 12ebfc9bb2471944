package bridge

import (
	"errors"
	"fmt"
)

// ErrMissingElement marks a required remote entity (reviewer, diff report)
// as absent. It aborts the run; it is never escalated to a process error.
var ErrMissingElement = errors.New("missing element")

// missingElement builds an ErrMissingElement with a reason.
func missingElement(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrMissingElement, fmt.Sprintf(format, args...))
}

// IsMissingElement reports whether the error is a missing-element abort.
func IsMissingElement(err error) bool {
	return errors.Is(err, ErrMissingElement)
}
