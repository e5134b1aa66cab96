package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidPolicy      = errors.New("domain: invalid conflict policy")
	ErrInvalidDestination = errors.New("domain: invalid destination name")
	ErrUnknownSource      = errors.New("domain: unknown source kind")
	ErrUnsupportedTable   = errors.New("domain: unsupported table")
)

// PersistError reports a failed write to one destination. It is
// recoverable: the pipeline moves on to the next destination.
type PersistError struct {
	Destination string
	Rows        int
	Err         error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persist %s (%d rows): %v", e.Destination, e.Rows, e.Err)
}

func (e *PersistError) Unwrap() error {
	return e.Err
}
