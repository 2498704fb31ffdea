package calendar

import (
	"errors"
	"fmt"
)

var (
	// ErrCorruption marks stored rows that cannot be decoded back into records.
	ErrCorruption = errors.New("store corruption")

	// ErrTransaction marks an atomic write that failed and was rolled back.
	ErrTransaction = errors.New("transaction failed")

	// ErrInvalidEvent marks records rejected at construction or ingestion.
	ErrInvalidEvent = errors.New("invalid event")

	ErrInvalidCalendar = errors.New("invalid calendar")

	ErrCalendarNotFound = errors.New("calendar not found")

	ErrInvalidQuery = errors.New("invalid query")
)

// DecodeError reports a stored field that cannot be parsed into its typed form.
type DecodeError struct {
	Table  string
	ID     string
	Column string
	Value  string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: cannot decode %s.%s of row %q (value %q): %v",
		ErrCorruption, e.Table, e.Column, e.ID, e.Value, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func (e *DecodeError) Is(target error) bool { return target == ErrCorruption }
