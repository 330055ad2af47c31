package persistence

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrDuplicate is returned when a unique constraint rejects a write.
	ErrDuplicate = errors.New("persistence: duplicate record")
	// ErrReferenced is returned when a write or delete breaks a foreign key,
	// for example deleting a client that still owns contracts.
	ErrReferenced = errors.New("persistence: record is referenced")
)
