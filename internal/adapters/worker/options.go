package worker

import (
	"github.com/okian/kiosk-analytics/pkg/logger"
)

// Option applies a configuration option to the Pool.
type Option func(*Pool)

// WithSize bounds the number of jobs running at once.
func WithSize(size int) Option {
	return func(p *Pool) {
		if size > 0 {
			p.size = size
		}
	}
}

// WithLogger sets a custom logger for the pool.
func WithLogger(l logger.Logger) Option {
	return func(p *Pool) {
		if l != nil {
			p.logger = l
		}
	}
}
