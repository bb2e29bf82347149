// Package service answers kiosk analytics queries by scanning the storage
// tree, loading the matching files on a bounded pool and folding their
// summaries into reports.
package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"cloud.google.com/go/civil"
	"github.com/okian/kiosk-analytics/internal/adapters/index"
	"github.com/okian/kiosk-analytics/internal/adapters/loader"
	"github.com/okian/kiosk-analytics/internal/adapters/storage"
	"github.com/okian/kiosk-analytics/internal/adapters/worker"
	"github.com/okian/kiosk-analytics/internal/domain/aggregate"
	"github.com/okian/kiosk-analytics/internal/domain/model"
	"github.com/okian/kiosk-analytics/internal/domain/summary"
	"github.com/okian/kiosk-analytics/pkg/logger"
	"github.com/okian/kiosk-analytics/pkg/metrics"
)

const (
	defaultQueryTimeout = 30 * time.Second

	healthOK       = "ok"
	healthDegraded = "degraded"
)

// Query selects the files an analysis covers. Empty Kiosks means every
// kiosk; empty Dates means every date. When both are empty the analysis
// covers the most recent date that has any file.
type Query struct {
	Kiosks []string
	Dates  []civil.Date
	TopN   int
}

// validate rejects rankings of negative length, blank kiosk ids and dates
// that no file name can express.
func (q Query) validate() error {
	if q.TopN < 0 {
		return fmt.Errorf("%w: top must not be negative, got %d", ErrBadQuery, q.TopN)
	}
	for _, k := range q.Kiosks {
		if k == "" {
			return fmt.Errorf("%w: empty kiosk id", ErrBadQuery)
		}
	}
	for _, d := range q.Dates {
		if !d.IsValid() || !model.InCentury(d) {
			return fmt.Errorf("%w: date %s is invalid or outside 2000-2099", ErrBadQuery, d)
		}
	}
	return nil
}

// Service is safe for concurrent use; queries share no mutable state.
type Service struct {
	index  *index.Index
	loader *loader.Loader
	pool   *worker.Pool

	workerCount  int
	queryTimeout time.Duration
	defaultTopN  int

	logger logger.Logger
}

// New builds a service reading transaction files from src.
func New(src storage.Source, opts ...Option) *Service {
	s := &Service{
		queryTimeout: defaultQueryTimeout,
		defaultTopN:  aggregate.DefaultTopN,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.index = index.New(src, index.WithLogger(s.logger.Named("index")))
	s.loader = loader.New(src, loader.WithLogger(s.logger.Named("loader")))
	poolOpts := []worker.Option{worker.WithLogger(s.logger.Named("worker"))}
	if s.workerCount > 0 {
		poolOpts = append(poolOpts, worker.WithSize(s.workerCount))
	}
	s.pool = worker.NewPool(poolOpts...)
	return s
}

// Start logs what the data tree currently holds. A missing or unreadable
// tree is reported but never stops the service.
func (s *Service) Start(ctx context.Context) error {
	h := s.Health(ctx)
	if h.Status != healthOK {
		s.logger.Warn(ctx, "data tree is not readable; serving an empty fleet",
			logger.String("location", h.Directory),
			logger.String("error", h.Error),
		)
		return nil
	}
	s.logger.Info(ctx, "kiosk analytics service started",
		logger.String("location", h.Directory),
		logger.Int("kiosks", h.Kiosks),
		logger.Int("files", h.Files),
		logger.Int("workers", s.pool.Size()),
		logger.Duration("query_timeout", s.queryTimeout),
	)
	return nil
}

// Kiosks lists kiosk ids in lexicographic order.
func (s *Service) Kiosks(ctx context.Context) ([]string, error) {
	var out []string
	err := s.observe(ctx, "kiosks", func(ctx context.Context) error {
		ids, err := s.index.Kiosks(ctx)
		out = ids
		return err
	})
	return out, err
}

// Dates lists the dates that have a file for kiosk, ascending.
func (s *Service) Dates(ctx context.Context, kiosk string) ([]civil.Date, error) {
	var out []civil.Date
	err := s.observe(ctx, "dates", func(ctx context.Context) error {
		dates, err := s.index.Dates(ctx, kiosk)
		if err != nil {
			return mapIndexError(err)
		}
		out = dates
		return nil
	})
	return out, err
}

// KioskDay reports one kiosk on one date, including its raw transactions.
func (s *Service) KioskDay(ctx context.Context, kiosk string, date civil.Date) (*KioskDayReport, error) {
	var out *KioskDayReport
	err := s.observe(ctx, "kiosk_day", func(ctx context.Context) error {
		key := model.FileKey{KioskID: kiosk, Date: date}
		if !key.Valid() {
			return fmt.Errorf("%w: no file can exist for kiosk %q on %s", ErrNotFound, kiosk, date)
		}
		res := s.loader.LoadWithTransactions(ctx, key)
		if err := ctx.Err(); err != nil {
			return err
		}
		switch res.Status {
		case loader.StatusOK:
		case loader.StatusNotFound:
			return fmt.Errorf("%w: no file for kiosk %s on %s", ErrNotFound, kiosk, date)
		default:
			return fmt.Errorf("%w: %s is %s", ErrNoDataFound, key.Filename(), res.Status)
		}
		out = &KioskDayReport{
			KioskID:      kiosk,
			Date:         date,
			File:         key.Filename(),
			Summary:      newSummary(res.Summary.Totals),
			Distribution: newBuckets(res.Summary.Histogram),
			Transactions: newTransactionViews(res.Transactions),
		}
		return nil
	})
	return out, err
}

// KioskHistory reports one kiosk across every date it has a file for. A
// kiosk with no usable file, including an unknown one, is ErrNoDataFound.
func (s *Service) KioskHistory(ctx context.Context, kiosk string) (*KioskReport, error) {
	var out *KioskReport
	err := s.observe(ctx, "kiosk_history", func(ctx context.Context) error {
		keys, err := s.index.Keys(ctx, kiosk)
		if errors.Is(err, index.ErrKioskNotFound) {
			return fmt.Errorf("%w: %w", ErrNoDataFound, mapIndexError(err))
		}
		if err != nil {
			return err
		}
		sums, skipped, err := s.loadAll(ctx, keys)
		if err != nil {
			return err
		}
		out = &KioskReport{
			KioskID:        kiosk,
			Summary:        newSummary(aggregate.Fold(sums)),
			Daily:          newDailyTrend(aggregate.Daily(sums)),
			FilesProcessed: fileNames(sums),
			FilesSkipped:   skipped,
		}
		return nil
	})
	return out, err
}

// Fleet reports every kiosk, folded per date and per weekday.
func (s *Service) Fleet(ctx context.Context) (*FleetReport, error) {
	var out *FleetReport
	err := s.observe(ctx, "fleet", func(ctx context.Context) error {
		keys, err := s.index.AllKeys(ctx)
		if err != nil {
			return err
		}
		sums, skipped, err := s.loadAll(ctx, keys)
		if err != nil {
			return err
		}
		out = &FleetReport{
			Kiosks:       kioskIDs(sums),
			Summary:      newSummary(aggregate.Fold(sums)),
			Daily:        newDailyTrend(aggregate.Daily(sums)),
			Weekdays:     newWeekdays(aggregate.Weekdays(sums)),
			FilesSkipped: skipped,
		}
		return nil
	})
	return out, err
}

// Analyze folds the files selected by q into a dashboard report.
func (s *Service) Analyze(ctx context.Context, q Query) (*AnalysisReport, error) {
	var out *AnalysisReport
	if err := q.validate(); err != nil {
		return nil, err
	}
	err := s.observe(ctx, "analyze", func(ctx context.Context) error {
		keys, err := s.selectKeys(ctx, q)
		if err != nil {
			return err
		}
		sums, skipped, err := s.loadAll(ctx, keys)
		if err != nil {
			return err
		}
		topN := q.TopN
		if topN <= 0 {
			topN = s.defaultTopN
		}
		t := aggregate.Fold(sums)
		out = &AnalysisReport{
			FilesProcessed:      fileNames(sums),
			FilesSkipped:        skipped,
			Summary:             newSummary(t),
			TopUsersByVolume:    newUserSeries(aggregate.TopUsers(t, aggregate.ByVolume, topN), aggregate.ByVolume),
			TopUsersByFrequency: newUserSeries(aggregate.TopUsers(t, aggregate.ByFrequency, topN), aggregate.ByFrequency),
			VolumeDistribution:  newBuckets(t.Histogram),
			KioskActivity:       newActivitySeries(aggregate.KioskActivity(t)),
		}
		return nil
	})
	return out, err
}

// Files lists every transaction file, newest date first.
func (s *Service) Files(ctx context.Context) ([]FileEntry, error) {
	var out []FileEntry
	err := s.observe(ctx, "files", func(ctx context.Context) error {
		files, err := s.index.Files(ctx)
		if err != nil {
			return err
		}
		sort.SliceStable(files, func(i, j int) bool {
			return files[j].Key.Date.Before(files[i].Key.Date)
		})
		out = make([]FileEntry, len(files))
		for i, f := range files {
			out[i] = FileEntry{
				Name:     f.Name,
				Path:     f.Path,
				KioskID:  f.Key.KioskID,
				Date:     f.Key.Date,
				Size:     f.Size,
				Modified: f.Modified,
			}
		}
		return nil
	})
	return out, err
}

// Health scans the tree without reading any file. A missing or unlistable
// root is degraded; Kiosks counts every discovered kiosk directory.
func (s *Service) Health(ctx context.Context) Health {
	h := Health{Status: healthOK, Directory: s.index.Location()}
	exists, err := s.index.RootExists(ctx)
	if err == nil && !exists {
		err = fmt.Errorf("data root %s does not exist", h.Directory)
	}
	var kiosks []string
	if err == nil {
		kiosks, err = s.index.Kiosks(ctx)
	}
	var files []index.FileInfo
	if err == nil {
		files, err = s.index.Files(ctx)
	}
	if err != nil {
		h.Status = healthDegraded
		h.Error = err.Error()
		return h
	}
	h.Kiosks, h.Files = len(kiosks), len(files)
	return h
}

// GetStats returns service settings for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	return map[string]interface{}{
		"location":       s.index.Location(),
		"workerCount":    s.pool.Size(),
		"queryTimeoutMs": s.queryTimeout.Milliseconds(),
		"defaultTopN":    s.defaultTopN,
	}
}

// observe runs fn under the query deadline and records its outcome.
func (s *Service) observe(ctx context.Context, op string, fn func(context.Context) error) error {
	start := time.Now()
	qctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	err := fn(qctx)
	if err != nil && ctx.Err() == nil && errors.Is(qctx.Err(), context.DeadlineExceeded) {
		err = fmt.Errorf("%w: %s after %s", ErrQueryTimeout, op, s.queryTimeout)
	}

	outcome := "ok"
	switch {
	case err == nil:
	case errors.Is(err, ErrQueryTimeout):
		outcome = "timeout"
		metrics.RecordQueryTimeout()
	case errors.Is(err, ErrNoDataFound):
		outcome = "no_data"
		metrics.RecordQueryNoData(op)
	case errors.Is(err, ErrNotFound):
		outcome = "not_found"
	default:
		outcome = "error"
	}
	elapsed := time.Since(start)
	metrics.RecordQuery(op, outcome, float64(elapsed.Microseconds())/1000)
	s.logger.Debug(ctx, "query finished",
		logger.String("operation", op),
		logger.String("outcome", outcome),
		logger.Duration("elapsed", elapsed),
	)
	return err
}

// loadAll loads keys on the pool and keeps the usable summaries in key
// order. Zero usable summaries is ErrNoDataFound.
func (s *Service) loadAll(ctx context.Context, keys []model.FileKey) ([]summary.FileSummary, []SkippedFile, error) {
	results := make([]loader.Result, len(keys))
	err := s.pool.Run(ctx, len(keys), func(ctx context.Context, i int) error {
		results[i] = s.loader.Load(ctx, keys[i])
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	sums := make([]summary.FileSummary, 0, len(results))
	skipped := []SkippedFile{}
	for _, r := range results {
		if r.Usable() {
			sums = append(sums, r.Summary)
			continue
		}
		skipped = append(skipped, SkippedFile{File: r.Key.Filename(), Reason: r.Status.String()})
	}
	if len(sums) == 0 {
		return nil, nil, fmt.Errorf("%w: %d file(s) matched, none usable", ErrNoDataFound, len(keys))
	}
	return sums, skipped, nil
}

// selectKeys resolves an analysis query to file keys.
func (s *Service) selectKeys(ctx context.Context, q Query) ([]model.FileKey, error) {
	files, err := s.index.Files(ctx)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no transaction files", ErrNoDataFound)
	}

	dates := q.Dates
	if len(q.Kiosks) == 0 && len(dates) == 0 {
		latest := files[0].Key.Date
		for _, f := range files[1:] {
			if latest.Before(f.Key.Date) {
				latest = f.Key.Date
			}
		}
		dates = []civil.Date{latest}
	}

	kioskSet := make(map[string]struct{}, len(q.Kiosks))
	for _, k := range q.Kiosks {
		kioskSet[k] = struct{}{}
	}
	dateSet := make(map[civil.Date]struct{}, len(dates))
	for _, d := range dates {
		dateSet[d] = struct{}{}
	}

	keys := make([]model.FileKey, 0, len(files))
	for _, f := range files {
		if _, ok := kioskSet[f.Key.KioskID]; len(kioskSet) > 0 && !ok {
			continue
		}
		if _, ok := dateSet[f.Key.Date]; len(dateSet) > 0 && !ok {
			continue
		}
		keys = append(keys, f.Key)
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("%w: no file matches the selection", ErrNoDataFound)
	}
	return keys, nil
}

func mapIndexError(err error) error {
	if errors.Is(err, index.ErrKioskNotFound) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return err
}

func fileNames(sums []summary.FileSummary) []string {
	out := make([]string, len(sums))
	for i, fs := range sums {
		out[i] = fs.Key.Filename()
	}
	return out
}

func kioskIDs(sums []summary.FileSummary) []string {
	seen := make(map[string]struct{}, len(sums))
	var out []string
	for _, fs := range sums {
		if _, ok := seen[fs.Key.KioskID]; ok {
			continue
		}
		seen[fs.Key.KioskID] = struct{}{}
		out = append(out, fs.Key.KioskID)
	}
	sort.Strings(out)
	return out
}
