// Package media uploads files to object storage and hands back durable URLs.
package media

import (
	"context"
	"errors"
	"io"
)

var ErrObjectNotFound = errors.New("object not found")

// ObjectStore is the blob backend behind the uploader.
type ObjectStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
	// URL is the public address of key.
	URL(key string) string
	// Key reverses URL; ok is false for URLs this store did not issue.
	Key(url string) (key string, ok bool)
}
