// Package loader reads one kiosk-day transaction file and folds it into a
// summary. Missing files, empty files and unreadable files are outcomes, not
// errors: callers decide what to skip.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/okian/kiosk-analytics/internal/adapters/storage"
	"github.com/okian/kiosk-analytics/internal/domain/model"
	"github.com/okian/kiosk-analytics/internal/domain/record"
	"github.com/okian/kiosk-analytics/internal/domain/summary"
	"github.com/okian/kiosk-analytics/pkg/logger"
	"github.com/okian/kiosk-analytics/pkg/metrics"
)

// Status classifies the outcome of a load.
type Status int

// Load outcomes.
const (
	StatusOK Status = iota
	StatusNotFound
	StatusNoData
	StatusIOFailure
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusNotFound:
		return "not_found"
	case StatusNoData:
		return "no_data"
	case StatusIOFailure:
		return "io_failure"
	default:
		return "unknown"
	}
}

// Result is the outcome of loading one file. Summary is set for StatusOK and
// StatusNoData (which still carries the rejected row count); Err is set for
// StatusIOFailure.
type Result struct {
	Key          model.FileKey
	Status       Status
	Summary      summary.FileSummary
	Transactions []model.Transaction
	Err          error
}

// Usable reports whether the result contributes to aggregation.
func (r Result) Usable() bool { return r.Status == StatusOK }

// Loader opens transaction files from a storage source.
type Loader struct {
	src    storage.Source
	logger logger.Logger
}

// New creates a loader reading from src.
func New(src storage.Source, opts ...Option) *Loader {
	l := &Loader{src: src}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = logger.Get().Named("loader")
	}
	return l
}

// Load reads key and returns its summary only.
func (l *Loader) Load(ctx context.Context, key model.FileKey) Result {
	return l.load(ctx, key, false)
}

// LoadWithTransactions reads key and also returns every valid transaction in
// file order.
func (l *Loader) LoadWithTransactions(ctx context.Context, key model.FileKey) Result {
	return l.load(ctx, key, true)
}

func (l *Loader) load(ctx context.Context, key model.FileKey, keep bool) (res Result) {
	start := time.Now()
	res.Key = key
	defer func() {
		if p := recover(); p != nil {
			res = Result{Key: key, Status: StatusIOFailure, Err: fmt.Errorf("panic reading %s: %v", key.Path(), p)}
		}
		if res.Status == StatusIOFailure {
			l.logger.Warn(ctx, "skipping unreadable transaction file",
				logger.String("file", key.Path()),
				logger.Error(res.Err),
			)
		}
		metrics.RecordFileLoad(res.Status.String(), float64(time.Since(start).Microseconds())/1000)
	}()

	rc, err := l.src.Open(ctx, key.Path())
	if errors.Is(err, storage.ErrNotExist) {
		res.Status = StatusNotFound
		return res
	}
	if err != nil {
		res.Status, res.Err = StatusIOFailure, err
		return res
	}
	defer func() { _ = rc.Close() }()

	b, txs, err := fold(key, rc, keep)
	if err != nil {
		res.Status, res.Err = StatusIOFailure, fmt.Errorf("read %s: %w", key.Path(), err)
		return res
	}

	res.Summary = b.Build()
	metrics.RecordRows(res.Summary.Transactions, res.Summary.Rejected)
	if res.Summary.Empty() {
		res.Status = StatusNoData
		l.logger.Debug(ctx, "transaction file has no valid rows",
			logger.String("file", key.Path()),
			logger.Int("rejected", res.Summary.Rejected),
		)
		return res
	}
	res.Status = StatusOK
	res.Transactions = txs
	return res
}

// fold streams rows from r through the parser into a builder.
func fold(key model.FileKey, r io.Reader, keep bool) (*summary.Builder, []model.Transaction, error) {
	rd, err := record.NewReader(r)
	if err != nil {
		return nil, nil, err
	}
	b := summary.NewBuilder(key)
	var txs []model.Transaction
	for {
		row, err := rd.Next()
		if errors.Is(err, io.EOF) {
			return b, txs, nil
		}
		if err != nil {
			return nil, nil, err
		}
		tx, err := record.Parse(key.KioskID, row)
		if err != nil {
			b.Reject()
			continue
		}
		b.Add(tx)
		if keep {
			txs = append(txs, tx)
		}
	}
}
