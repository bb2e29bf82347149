package storage

import "errors"

// Sentinel kinds for storage errors.
var (
	ErrNotExist    = errors.New("object does not exist")
	ErrInvalidPath = errors.New("invalid object path")
)
