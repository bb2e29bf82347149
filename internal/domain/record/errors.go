package record

import "errors"

// Sentinel kinds for record errors.
var (
	ErrMalformedRow = errors.New("malformed row")
	ErrDecode       = errors.New("decode failed")
)
