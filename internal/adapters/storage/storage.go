// Package storage abstracts the tree of kiosk transaction files. Paths are
// slash-separated and relative to the source root; "" names the root.
package storage

import (
	"context"
	"io"
	"path"
	"strings"
	"time"
)

// Entry describes one child of a listed directory.
type Entry struct {
	Name    string
	Dir     bool
	Size    int64
	ModTime time.Time
}

// Source is a read-only view over the data tree.
type Source interface {
	// Location describes the root for health reporting, e.g. a directory
	// path or gs://bucket/prefix.
	Location() string
	// List returns the direct children of dir. A missing dir yields an
	// error wrapping ErrNotExist.
	List(ctx context.Context, dir string) ([]Entry, error)
	// Open returns the content of the object at p. A missing object yields
	// an error wrapping ErrNotExist.
	Open(ctx context.Context, p string) (io.ReadCloser, error)
}

// cleanPath rejects absolute paths and parent traversal.
func cleanPath(p string) (string, error) {
	if p == "" || p == "." {
		return "", nil
	}
	c := path.Clean(p)
	if strings.HasPrefix(c, "/") || c == ".." || strings.HasPrefix(c, "../") {
		return "", ErrInvalidPath
	}
	return c, nil
}
