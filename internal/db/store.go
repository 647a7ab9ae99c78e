// Package db holds the document stores backing every entity.
package db

import (
	"context"
	"errors"
	"time"

	"github.com/brightlux/storefront-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound  = errors.New("document not found")
	ErrDuplicate = errors.New("duplicate key")
	// ErrConflict means the document changed since it was read.
	ErrConflict = errors.New("document was modified concurrently")
)

// Doc constrains P to be a pointer to T that exposes the embedded Meta.
type Doc[T any] interface {
	*T
	models.Document
}

// Store is a collection of documents of type T.
//
// Replace writes doc only if the stored version still equals doc's version,
// then bumps it; a stale version yields ErrConflict.
type Store[T any] interface {
	Insert(ctx context.Context, doc *T) error
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id string) (*T, error)
	FindBy(ctx context.Context, field string, value any) ([]T, error)
	FindOne(ctx context.Context, field string, value any) (*T, error)
	Replace(ctx context.Context, doc *T) error
	Delete(ctx context.Context, id string) error
	DeleteBy(ctx context.Context, field string, value any) (int64, error)
}

// now is overridden in tests.
var now = func() time.Time {
	// BSON datetimes carry millisecond precision.
	return time.Now().UTC().Truncate(time.Millisecond)
}

func stampInsert(m *models.Meta) {
	t := now()
	if m.ID == "" {
		m.ID = primitive.NewObjectID().Hex()
	}
	m.CreatedOn = t
	m.UpdatedOn = t
	m.Version = 1
}
