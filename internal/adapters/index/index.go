// Package index discovers kiosks and their dated transaction files by
// scanning the storage tree. Nothing is cached: every call rescans.
package index

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/okian/kiosk-analytics/internal/adapters/storage"
	"github.com/okian/kiosk-analytics/internal/domain/model"
	"github.com/okian/kiosk-analytics/pkg/logger"
	"github.com/okian/kiosk-analytics/pkg/metrics"
)

// FileInfo describes one discovered transaction file.
type FileInfo struct {
	Key      model.FileKey
	Name     string
	Path     string
	Size     int64
	Modified time.Time
}

// Index is a stateless view over the kiosk directory layout.
type Index struct {
	src    storage.Source
	logger logger.Logger
}

// New creates an index over src.
func New(src storage.Source, opts ...Option) *Index {
	i := &Index{src: src}
	for _, opt := range opts {
		opt(i)
	}
	if i.logger == nil {
		i.logger = logger.Get().Named("index")
	}
	return i
}

// Location returns where the tree lives.
func (i *Index) Location() string { return i.src.Location() }

// RootExists reports whether the data root can be listed. A missing root is
// false with no error; other listing failures are returned.
func (i *Index) RootExists(ctx context.Context) (bool, error) {
	_, err := i.src.List(ctx, "")
	if errors.Is(err, storage.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("list root: %w", err)
	}
	return true, nil
}

// Kiosks returns kiosk ids in lexicographic order. A missing root is an
// empty fleet, not an error.
func (i *Index) Kiosks(ctx context.Context) ([]string, error) {
	start := time.Now()
	defer func() { metrics.RecordIndexScan(float64(time.Since(start).Microseconds()) / 1000) }()

	entries, err := i.src.List(ctx, "")
	if errors.Is(err, storage.ErrNotExist) {
		i.logger.Warn(ctx, "data root does not exist", logger.String("location", i.src.Location()))
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list kiosks: %w", err)
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.Dir || !strings.HasPrefix(e.Name, model.KioskDirPrefix) {
			continue
		}
		if id := strings.TrimPrefix(e.Name, model.KioskDirPrefix); id != "" {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	metrics.UpdateKiosksDiscovered(len(ids))
	return ids, nil
}

// kioskFiles lists one kiosk's transaction files in chronological order.
// Names that do not follow the convention, or that belong to another kiosk,
// are ignored.
func (i *Index) kioskFiles(ctx context.Context, kioskID string) ([]FileInfo, error) {
	dir := model.KioskDir(kioskID)
	entries, err := i.src.List(ctx, dir)
	if errors.Is(err, storage.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrKioskNotFound, kioskID)
	}
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}

	files := make([]FileInfo, 0, len(entries))
	seen := make(map[civil.Date]struct{}, len(entries))
	for _, e := range entries {
		if e.Dir {
			continue
		}
		key, err := model.ParseFileName(e.Name)
		if err != nil || key.KioskID != kioskID {
			i.logger.Debug(ctx, "ignoring file", logger.String("kiosk", kioskID), logger.String("name", e.Name))
			continue
		}
		if _, dup := seen[key.Date]; dup {
			continue
		}
		seen[key.Date] = struct{}{}
		files = append(files, FileInfo{
			Key:      key,
			Name:     e.Name,
			Path:     key.Path(),
			Size:     e.Size,
			Modified: e.ModTime,
		})
	}
	sort.Slice(files, func(a, b int) bool { return files[a].Key.Date.Before(files[b].Key.Date) })
	return files, nil
}

// Dates returns the dates with a transaction file for kioskID, ascending.
// An unknown kiosk yields ErrKioskNotFound.
func (i *Index) Dates(ctx context.Context, kioskID string) ([]civil.Date, error) {
	files, err := i.kioskFiles(ctx, kioskID)
	if err != nil {
		return nil, err
	}
	dates := make([]civil.Date, len(files))
	for n, f := range files {
		dates[n] = f.Key.Date
	}
	return dates, nil
}

// Keys returns the file keys of one kiosk, ascending by date.
func (i *Index) Keys(ctx context.Context, kioskID string) ([]model.FileKey, error) {
	files, err := i.kioskFiles(ctx, kioskID)
	if err != nil {
		return nil, err
	}
	keys := make([]model.FileKey, len(files))
	for n, f := range files {
		keys[n] = f.Key
	}
	return keys, nil
}

// Files returns every transaction file across the fleet, ordered by kiosk
// and then date. Kiosks that vanish mid-scan are skipped.
func (i *Index) Files(ctx context.Context) ([]FileInfo, error) {
	kiosks, err := i.Kiosks(ctx)
	if err != nil {
		return nil, err
	}
	var all []FileInfo
	for _, id := range kiosks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		files, err := i.kioskFiles(ctx, id)
		if errors.Is(err, ErrKioskNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		all = append(all, files...)
	}
	metrics.UpdateFilesDiscovered(len(all))
	return all, nil
}

// AllKeys returns the keys of every transaction file across the fleet.
func (i *Index) AllKeys(ctx context.Context) ([]model.FileKey, error) {
	files, err := i.Files(ctx)
	if err != nil {
		return nil, err
	}
	keys := make([]model.FileKey, len(files))
	for n, f := range files {
		keys[n] = f.Key
	}
	return keys, nil
}
