package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Local serves the tree from a directory on disk.
type Local struct {
	root string
	fsys fs.FS
}

// NewLocal returns a Source rooted at dir. The directory need not exist yet.
func NewLocal(dir string) *Local {
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	return &Local{root: dir, fsys: os.DirFS(dir)}
}

// Location implements Source.
func (l *Local) Location() string { return l.root }

// List implements Source.
func (l *Local) List(_ context.Context, dir string) ([]Entry, error) {
	p, err := cleanPath(dir)
	if err != nil {
		return nil, err
	}
	if p == "" {
		p = "."
	}
	des, err := fs.ReadDir(l.fsys, p)
	if err != nil {
		return nil, wrapFSError(dir, err)
	}
	out := make([]Entry, 0, len(des))
	for _, de := range des {
		e := Entry{Name: de.Name(), Dir: de.IsDir()}
		if info, err := de.Info(); err == nil {
			e.Size = info.Size()
			e.ModTime = info.ModTime()
		}
		out = append(out, e)
	}
	return out, nil
}

// Open implements Source.
func (l *Local) Open(_ context.Context, name string) (io.ReadCloser, error) {
	p, err := cleanPath(name)
	if err != nil || p == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPath, name)
	}
	f, err := l.fsys.Open(p)
	if err != nil {
		return nil, wrapFSError(name, err)
	}
	return f, nil
}

func wrapFSError(name string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNotExist, name)
	}
	return fmt.Errorf("storage %s: %w", name, err)
}
