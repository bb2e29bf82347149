package index

import "errors"

// Sentinel kinds for index errors.
var (
	ErrKioskNotFound = errors.New("kiosk not found")
)
