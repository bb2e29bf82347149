package sampledata

import "errors"

// Sentinel kinds for sample data generation.
var (
	ErrInvalidConfig = errors.New("invalid generator config")
	ErrWrite         = errors.New("write sample file")
)
