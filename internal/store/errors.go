package store

import "errors"

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// ErrEmptyUpdate is returned when a partial update supplies no columns.
var ErrEmptyUpdate = errors.New("at least one field must be supplied")
