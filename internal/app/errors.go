package service

import "errors"

// Sentinel kinds surfaced by the query service. Per-row and per-file
// failures never reach callers; these are the only outcomes they see.
var (
	ErrNotFound     = errors.New("not found")
	ErrNoDataFound  = errors.New("no transaction data found")
	ErrQueryTimeout = errors.New("query deadline exceeded; partial result unavailable")
	ErrBadQuery     = errors.New("bad query")
)
