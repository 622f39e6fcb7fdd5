package todo

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedRecord marks a durable record that cannot be parsed.
	ErrMalformedRecord = errors.New("malformed record")
	// ErrDuplicateUser marks a registration for a username that already exists.
	ErrDuplicateUser = errors.New("username already exists")
	// ErrTaskLocked marks an edit attempted on a completed task.
	ErrTaskLocked = errors.New("task is complete and cannot be edited")
	// ErrInvalidInput marks a value that cannot be accepted as typed.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnauthorizedUser marks a task not owned by the caller or an unknown username.
	ErrUnauthorizedUser = errors.New("unauthorized user")
	// ErrIndexOutOfRange marks a task index outside the current sequence.
	ErrIndexOutOfRange = errors.New("task index out of range")
)

// RecordError represents a malformed record line with context.
type RecordError struct {
	Line int   // 1-based line number in the record, 0 if unknown
	Err  error // Underlying error
}

func (e *RecordError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s: %s", e.Line, ErrMalformedRecord, e.Err)
	}
	return fmt.Sprintf("%s: %s", ErrMalformedRecord, e.Err)
}

// Unwrap returns both the malformed-record sentinel and the underlying error.
func (e *RecordError) Unwrap() []error {
	return []error{ErrMalformedRecord, e.Err}
}

// Malformed wraps err as a RecordError for the given line.
func Malformed(line int, err error) error {
	return &RecordError{Line: line, Err: err}
}
