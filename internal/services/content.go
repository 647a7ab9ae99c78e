// Package services implements storefront operations on top of the document
// stores.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/brightlux/storefront-backend/internal/db"
	"github.com/brightlux/storefront-backend/internal/models"
)

// maxWriteAttempts bounds the re-read/re-apply loop on version conflicts.
const maxWriteAttempts = 5

// ContentService is the uniform add/getAll/getById/update/delete access for
// one entity type.
type ContentService[T any, P db.Doc[T]] struct {
	name  string
	store db.Store[T]
}

func NewContentService[T any, P db.Doc[T]](name string, store db.Store[T]) *ContentService[T, P] {
	return &ContentService[T, P]{name: name, store: store}
}

// Name is the entity name used in messages.
func (s *ContentService[T, P]) Name() string { return s.name }

func (s *ContentService[T, P]) Add(ctx context.Context, doc *T) (*T, error) {
	// Server owned.
	*P(doc).DocMeta() = models.Meta{}
	if err := Validate(doc); err != nil {
		return nil, err
	}
	if err := s.store.Insert(ctx, doc); err != nil {
		return nil, fmt.Errorf("add %s: %w", s.name, err)
	}
	return doc, nil
}

func (s *ContentService[T, P]) GetAll(ctx context.Context) ([]T, error) {
	docs, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.name, err)
	}
	return docs, nil
}

func (s *ContentService[T, P]) GetByID(ctx context.Context, id string) (*T, error) {
	doc, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get %s %s: %w", s.name, id, err)
	}
	return doc, nil
}

// FindBy lists the documents whose field equals value.
func (s *ContentService[T, P]) FindBy(ctx context.Context, field string, value any) ([]T, error) {
	docs, err := s.store.FindBy(ctx, field, value)
	if err != nil {
		return nil, fmt.Errorf("list %s by %s: %w", s.name, field, err)
	}
	return docs, nil
}

// Update fetches id, lets patch overwrite the supplied fields and writes the
// result back if nobody changed it meanwhile. On a conflict the cycle starts
// over from a fresh read, so patch may run more than once.
func (s *ContentService[T, P]) Update(ctx context.Context, id string, patch func(*T) error) (*T, error) {
	for attempt := 0; ; attempt++ {
		doc, err := s.store.Get(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("update %s %s: %w", s.name, id, err)
		}

		meta := *P(doc).DocMeta()
		if err := patch(doc); err != nil {
			return nil, err
		}
		*P(doc).DocMeta() = meta

		if err := Validate(doc); err != nil {
			return nil, err
		}

		err = s.store.Replace(ctx, doc)
		if err == nil {
			return doc, nil
		}
		if !errors.Is(err, db.ErrConflict) || attempt+1 >= maxWriteAttempts {
			return nil, fmt.Errorf("update %s %s: %w", s.name, id, err)
		}
	}
}

// Delete removes id and returns the removed document so the caller can clean
// up whatever it referenced.
func (s *ContentService[T, P]) Delete(ctx context.Context, id string) (*T, error) {
	doc, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("delete %s %s: %w", s.name, id, err)
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return nil, fmt.Errorf("delete %s %s: %w", s.name, id, err)
	}
	return doc, nil
}
