// Package sampledata writes synthetic kiosk transaction trees in the
// production layout, for demos and load tests.
package sampledata

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/okian/kiosk-analytics/internal/adapters/worker"
	"github.com/okian/kiosk-analytics/internal/domain/model"
	"github.com/okian/kiosk-analytics/internal/domain/record"
	"github.com/okian/kiosk-analytics/pkg/logger"
	"github.com/shopspring/decimal"
)

const (
	dirPermission  = 0o750
	filePermission = 0o640

	kioskIDBase     = 200
	clientsPerKiosk = 6
	usersPerKiosk   = 40

	// Share of valid rows with no client name.
	unattributedRate = 0.05
	passRate         = 0.9

	volumeMin = 20.0
	volumeMax = 1250.0

	timestampLayout = "2006-01-02 15:04:05"
)

// Result counts what a run wrote.
type Result struct {
	Kiosks      []string
	Files       int
	Rows        int
	Malformed   int
	SkippedDays int
}

// Generate writes cfg.Kiosks kiosk directories with one file per operating
// day. Output is deterministic for a given Seed.
func Generate(ctx context.Context, cfg Config) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}
	log := logger.Get().Named("sampledata")

	kiosks := make([]string, cfg.Kiosks)
	for i := range kiosks {
		kiosks[i] = fmt.Sprintf("%04d", kioskIDBase+i+1)
	}

	var files, rows, malformed, skipped atomic.Int64
	pool := worker.NewPool(worker.WithSize(cfg.Workers), worker.WithLogger(log))
	jobs := cfg.Kiosks * cfg.Days
	err := pool.Run(ctx, jobs, func(_ context.Context, i int) error {
		k, d := i/cfg.Days, i%cfg.Days
		f := gofakeit.New(cfg.Seed + uint64(i))
		if chance(f) < cfg.SkipRate {
			skipped.Add(1)
			return nil
		}
		key := model.FileKey{KioskID: kiosks[k], Date: cfg.Start.AddDays(d)}
		// Per-kiosk pools are seeded by kiosk so names repeat across days.
		pools := newKioskPools(gofakeit.New(cfg.Seed ^ uint64(k+1)<<32))
		valid, bad, err := writeFile(cfg.Dir, key, f, pools, cfg.Rows, cfg.Malformed)
		if err != nil {
			return err
		}
		files.Add(1)
		rows.Add(int64(valid))
		malformed.Add(int64(bad))
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	res := Result{
		Kiosks:      kiosks,
		Files:       int(files.Load()),
		Rows:        int(rows.Load()),
		Malformed:   int(malformed.Load()),
		SkippedDays: int(skipped.Load()),
	}
	log.Info(ctx, "sample data generated",
		logger.String("dir", cfg.Dir),
		logger.Int("kiosks", len(kiosks)),
		logger.Int("files", res.Files),
		logger.Int("rows", res.Rows),
		logger.Int("malformed", res.Malformed),
	)
	return res, nil
}

type kioskPools struct {
	clients []string
	users   []string
}

func newKioskPools(f *gofakeit.Faker) kioskPools {
	p := kioskPools{
		clients: make([]string, clientsPerKiosk),
		users:   make([]string, usersPerKiosk),
	}
	for i := range p.clients {
		p.clients[i] = f.Company()
	}
	for i := range p.users {
		p.users[i] = f.UUID()
	}
	return p
}

// writeFile writes one kiosk-day file and returns its valid and malformed
// row counts.
func writeFile(root string, key model.FileKey, f *gofakeit.Faker, pools kioskPools, rows int, malformedRate float64) (int, int, error) {
	p := filepath.Join(root, filepath.FromSlash(key.Path()))
	if err := os.MkdirAll(filepath.Dir(p), dirPermission); err != nil {
		return 0, 0, fmt.Errorf("%w: %w", ErrWrite, err)
	}
	out, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePermission)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %w", ErrWrite, err)
	}
	defer func() { _ = out.Close() }()

	w := csv.NewWriter(out)
	if err := w.Write(record.Header); err != nil {
		return 0, 0, fmt.Errorf("%w: %w", ErrWrite, err)
	}

	n := rows
	if rows > 3 {
		n = rows - f.IntRange(0, rows/4)
	}
	day := key.Date.In(time.UTC)
	var valid, bad int
	for i := 0; i < n; i++ {
		ts := day.Add(time.Duration(f.IntRange(6*3600, 22*3600)) * time.Second).Format(timestampLayout)
		var row []string
		if chance(f) < malformedRate {
			row = malformedRow(f, ts, pools)
			bad++
		} else {
			row = validRow(f, ts, pools)
			valid++
		}
		if err := w.Write(row); err != nil {
			return 0, 0, fmt.Errorf("%w: %w", ErrWrite, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return 0, 0, fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return valid, bad, nil
}

func validRow(f *gofakeit.Faker, ts string, pools kioskPools) []string {
	client := pools.clients[f.IntRange(0, len(pools.clients)-1)]
	if chance(f) < unattributedRate {
		client = ""
	}
	response := "PASS"
	if chance(f) >= passRate {
		response = f.RandomString([]string{"FAIL", "FAIL", "fail", "TIMEOUT", ""})
	}
	volume := decimal.NewFromFloat(f.Float64Range(volumeMin, volumeMax)).Round(1)
	return []string{ts, client, pools.users[f.IntRange(0, len(pools.users)-1)], volume.String(), response}
}

// malformedRow breaks exactly one of the rules a row must satisfy.
func malformedRow(f *gofakeit.Faker, ts string, pools kioskPools) []string {
	client := pools.clients[f.IntRange(0, len(pools.clients)-1)]
	user := pools.users[f.IntRange(0, len(pools.users)-1)]
	switch f.IntRange(0, 2) {
	case 0:
		return []string{ts, client, user, "-" + decimal.NewFromFloat(f.Float64Range(1, 500)).Round(1).String(), "PASS"}
	case 1:
		return []string{ts, client, "  ", "250", "PASS"}
	default:
		return []string{ts, client, user, f.RandomString([]string{"abc", "", "N/A"}), "PASS"}
	}
}

func chance(f *gofakeit.Faker) float64 { return f.Float64Range(0, 1) }
