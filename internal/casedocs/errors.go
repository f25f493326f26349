package casedocs

import "errors"

var (
	ErrNotFound = errors.New("document not found")
	// ErrVersioningConflict means the history append and version bump could
	// not be applied together. The update is aborted rather than risking a
	// version number with no archived file behind it.
	ErrVersioningConflict = errors.New("version history conflict")
	ErrInvalidInput       = errors.New("invalid input")
)
