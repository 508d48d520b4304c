package inventory

import (
	"errors"
	"fmt"
)

var (
	// ErrStoreUnavailable marks failures reaching a brand table, the ledger or
	// the form submission store. It is contained by the Reader and the service.
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrInvalidRange     = errors.New("invalid date range")
)

// RangeError is the one failure surfaced to callers.
type RangeError struct {
	Reason string
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("invalid date range: %s", e.Reason)
}

func (e *RangeError) Is(target error) bool {
	return target == ErrInvalidRange
}

func invalidRange(format string, args ...any) error {
	return &RangeError{Reason: fmt.Sprintf(format, args...)}
}
