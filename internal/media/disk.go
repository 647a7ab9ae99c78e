package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DiskStore writes objects under a local directory that the HTTP server exposes
// at publicURL.
type DiskStore struct {
	dir       string
	publicURL string
}

func NewDiskStore(dir, publicURL string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads directory %s: %w", dir, err)
	}
	return &DiskStore{dir: dir, publicURL: strings.TrimRight(publicURL, "/")}, nil
}

// Dir is the root directory objects are written under.
func (d *DiskStore) Dir() string { return d.dir }

func (d *DiskStore) path(key string) (string, error) {
	p := filepath.Join(d.dir, filepath.FromSlash(key))
	rel, err := filepath.Rel(d.dir, p)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return p, nil
}

func (d *DiskStore) Put(_ context.Context, key string, body io.Reader, _ int64, _ string) error {
	p, err := d.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("create object directory: %w", err)
	}

	f, err := os.Create(p)
	if err != nil {
		return fmt.Errorf("create object %s: %w", key, err)
	}
	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		os.Remove(p)
		return fmt.Errorf("write object %s: %w", key, err)
	}
	return f.Close()
}

func (d *DiskStore) Delete(_ context.Context, key string) error {
	p, err := d.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrObjectNotFound
		}
		return fmt.Errorf("delete object %s: %w", key, err)
	}
	return nil
}

func (d *DiskStore) URL(key string) string {
	return d.publicURL + "/" + key
}

func (d *DiskStore) Key(url string) (string, bool) {
	return keyFromURL(d.publicURL, url)
}
