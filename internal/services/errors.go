package services

import (
	"errors"

	"github.com/usersvc/apiserver/internal/store"
)

// ErrInvalidID is returned when a path identifier is not a positive integer.
// The store is never queried for such identifiers.
var ErrInvalidID = errors.New("id must be a positive integer")

// StoreError wraps a failure reported by the repository. Its message is the
// underlying store message.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return e.Err.Error()
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// ErrNotFound reports that no user has the requested id.
var ErrNotFound = store.ErrNotFound
