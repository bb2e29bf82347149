// Package worker runs independent jobs, such as file loads, on a bounded
// number of goroutines.
package worker

import (
	"context"
	"runtime"
	"time"

	"github.com/okian/kiosk-analytics/pkg/logger"
	"github.com/okian/kiosk-analytics/pkg/metrics"
	"golang.org/x/sync/errgroup"
)

// Job processes item i of a batch.
type Job func(ctx context.Context, i int) error

// Pool bounds concurrent job execution. It holds no per-batch state and is
// safe for concurrent use by many queries.
type Pool struct {
	size   int
	logger logger.Logger
}

// NewPool creates a pool sized to the number of CPUs unless overridden.
func NewPool(opts ...Option) *Pool {
	p := &Pool{size: runtime.NumCPU()}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = logger.Get().Named("worker")
	}
	metrics.UpdatePoolSize(p.size)
	return p
}

// Size returns the concurrency bound.
func (p *Pool) Size() int { return p.size }

// Run calls job for every i in [0, n) with at most Size calls in flight.
// Scheduling stops as soon as ctx is done or a job fails; Run then returns
// the first job error or ctx's error.
func (p *Pool) Run(ctx context.Context, n int, job Job) error {
	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.size)

	for i := 0; i < n; i++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			metrics.PoolJobStarted()
			defer metrics.PoolJobFinished()
			return job(gctx, i)
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	p.logger.Debug(ctx, "batch finished",
		logger.Int("jobs", n),
		logger.Int("size", p.size),
		logger.Duration("elapsed", time.Since(start)),
		logger.Any("error", err),
	)
	return err
}
