package dao

import "errors"

// Sentinel errors let callers detect conditions via errors.Is instead of
// string comparison.
var (
	// ErrInvalidID indicates that the supplied key is empty or otherwise
	// invalid.
	ErrInvalidID = errors.New("dao: invalid id")

	// ErrNilEntity is returned when the caller attempts to persist a nil
	// pointer.
	ErrNilEntity = errors.New("dao: nil entity")
)
