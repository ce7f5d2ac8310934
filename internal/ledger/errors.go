package ledger

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized is returned when a standard-role actor attempts a
	// mutation. The ledger stays untouched.
	ErrUnauthorized = errors.New("only elevated members may modify the cash book")

	// ErrNotFound is returned when the referenced transaction does not exist.
	ErrNotFound = errors.New("transaction not found")
)

// PersistenceError wraps a storage failure. It is the non-recoverable error
// kind: the caller reports it and the operation is considered not to have
// happened.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("ledger persistence failed during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
