package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

// GCS serves the tree from a Cloud Storage bucket, treating "/" in object
// names as the directory separator.
type GCS struct {
	client *gcs.Client
	bucket string
	prefix string
}

// NewGCS returns a Source over bucket. prefix, when set, is the object name
// prefix acting as the tree root.
func NewGCS(client *gcs.Client, bucket, prefix string) *GCS {
	prefix = strings.Trim(prefix, "/")
	if prefix != "" {
		prefix += "/"
	}
	return &GCS{client: client, bucket: bucket, prefix: prefix}
}

// Location implements Source.
func (g *GCS) Location() string {
	return "gs://" + g.bucket + "/" + g.prefix
}

// List implements Source. Cloud Storage has no real directories, so an empty
// listing of a non-root prefix is reported as ErrNotExist.
func (g *GCS) List(ctx context.Context, dir string) ([]Entry, error) {
	p, err := cleanPath(dir)
	if err != nil {
		return nil, err
	}
	full := g.prefix
	if p != "" {
		full += p + "/"
	}

	it := g.client.Bucket(g.bucket).Objects(ctx, &gcs.Query{Prefix: full, Delimiter: "/"})
	var out []Entry
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list gs://%s/%s: %w", g.bucket, full, err)
		}
		if attrs.Prefix != "" {
			out = append(out, Entry{Name: strings.TrimSuffix(strings.TrimPrefix(attrs.Prefix, full), "/"), Dir: true})
			continue
		}
		name := strings.TrimPrefix(attrs.Name, full)
		if name == "" {
			continue
		}
		out = append(out, Entry{Name: name, Size: attrs.Size, ModTime: attrs.Updated})
	}
	if len(out) == 0 && p != "" {
		return nil, fmt.Errorf("%w: %s", ErrNotExist, dir)
	}
	return out, nil
}

// Open implements Source.
func (g *GCS) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	p, err := cleanPath(name)
	if err != nil || p == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPath, name)
	}
	r, err := g.client.Bucket(g.bucket).Object(g.prefix + p).NewReader(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotExist, name)
	}
	if err != nil {
		return nil, fmt.Errorf("open gs://%s/%s%s: %w", g.bucket, g.prefix, p, err)
	}
	return r, nil
}
