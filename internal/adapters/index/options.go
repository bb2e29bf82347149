package index

import "github.com/okian/kiosk-analytics/pkg/logger"

// Option applies a configuration option to the Index.
type Option func(*Index)

// WithLogger sets a custom logger for the index.
func WithLogger(l logger.Logger) Option {
	return func(i *Index) {
		if l != nil {
			i.logger = l
		}
	}
}
