package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/civil"
	"github.com/okian/kiosk-analytics/internal/sampledata"
	"github.com/okian/kiosk-analytics/pkg/logger"
	"github.com/spf13/cobra"
)

func newGenerateCmd() *cobra.Command {
	cfg := sampledata.DefaultConfig()
	var start string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a sample data tree",
		Example: `  kiosk-gen generate --dir ./data
  kiosk-gen generate --dir ./data --kiosks 5 --days 30 --rows 500 --start 2025-11-01 --malformed 0.05`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			verbose, _ := cmd.Flags().GetBool("verbose")
			if err := logger.Init(); err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			if verbose {
				_ = logger.SetLevelString("debug")
			}

			cfg.Start = civil.DateOf(time.Now()).AddDays(1 - cfg.Days)
			if start != "" {
				d, err := civil.ParseDate(start)
				if err != nil {
					return fmt.Errorf("%w: --start %q, want YYYY-MM-DD", sampledata.ErrInvalidConfig, start)
				}
				cfg.Start = d
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			res, err := sampledata.Generate(ctx, cfg)
			if err != nil {
				return err
			}
			cmd.Printf("wrote %d files (%d rows, %d malformed) for kiosks %v into %s; %d kiosk-days skipped\n",
				res.Files, res.Rows, res.Malformed, res.Kiosks, cfg.Dir, res.SkippedDays)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfg.Dir, "dir", cfg.Dir, "Root directory to write kiosk_<id> folders into")
	f.IntVar(&cfg.Kiosks, "kiosks", cfg.Kiosks, "Number of kiosks")
	f.IntVar(&cfg.Days, "days", cfg.Days, "Number of consecutive days")
	f.IntVar(&cfg.Rows, "rows", cfg.Rows, "Upper bound of rows per kiosk-day file")
	f.StringVar(&start, "start", "", "First date (YYYY-MM-DD); defaults to covering the last --days days")
	f.Float64Var(&cfg.Malformed, "malformed", cfg.Malformed, "Share of rows written malformed (0..1)")
	f.Float64Var(&cfg.SkipRate, "skip", cfg.SkipRate, "Chance a kiosk does not operate on a given day (0..1)")
	f.Uint64Var(&cfg.Seed, "seed", cfg.Seed, "Random seed; same seed, same files")
	f.IntVar(&cfg.Workers, "workers", cfg.Workers, "Concurrent file writers (0 = CPU count)")
	return cmd
}
