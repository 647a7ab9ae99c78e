package db

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
)

// MemoryStore is an in-process Store. Documents are kept BSON-encoded so callers
// never share memory with stored state.
type MemoryStore[T any, P Doc[T]] struct {
	mu     sync.RWMutex
	seq    int
	docs   map[string]memDoc
	unique []string
}

type memDoc struct {
	seq int
	raw bson.Raw
}

// NewMemoryStore returns an empty store enforcing uniqueness of the given fields.
func NewMemoryStore[T any, P Doc[T]](unique ...string) *MemoryStore[T, P] {
	return &MemoryStore[T, P]{docs: make(map[string]memDoc), unique: unique}
}

func (s *MemoryStore[T, P]) Insert(_ context.Context, doc *T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	meta := P(doc).DocMeta()
	saved := *meta
	stampInsert(meta)
	if _, ok := s.docs[meta.ID]; ok {
		*meta = saved
		return fmt.Errorf("insert %s: %w", saved.ID, ErrDuplicate)
	}

	raw, err := bson.Marshal(doc)
	if err != nil {
		*meta = saved
		return fmt.Errorf("encode document: %w", err)
	}
	if err := s.checkUnique(meta.ID, raw); err != nil {
		*meta = saved
		return err
	}

	s.seq++
	s.docs[meta.ID] = memDoc{seq: s.seq, raw: raw}
	return nil
}

func (s *MemoryStore[T, P]) List(ctx context.Context) ([]T, error) {
	return s.filter(func(bson.Raw) bool { return true })
}

func (s *MemoryStore[T, P]) Get(_ context.Context, id string) (*T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	var doc T
	if err := bson.Unmarshal(d.raw, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return &doc, nil
}

func (s *MemoryStore[T, P]) FindBy(_ context.Context, field string, value any) ([]T, error) {
	match, err := fieldMatcher(field, value)
	if err != nil {
		return nil, err
	}
	return s.filter(match)
}

func (s *MemoryStore[T, P]) FindOne(ctx context.Context, field string, value any) (*T, error) {
	docs, err := s.FindBy(ctx, field, value)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, ErrNotFound
	}
	return &docs[0], nil
}

func (s *MemoryStore[T, P]) Replace(_ context.Context, doc *T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	meta := P(doc).DocMeta()
	cur, ok := s.docs[meta.ID]
	if !ok {
		return ErrNotFound
	}
	var stored T
	if err := bson.Unmarshal(cur.raw, &stored); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	if P(&stored).DocMeta().Version != meta.Version {
		return ErrConflict
	}

	saved := *meta
	meta.UpdatedOn = now()
	meta.Version++
	raw, err := bson.Marshal(doc)
	if err != nil {
		*meta = saved
		return fmt.Errorf("encode document: %w", err)
	}
	if err := s.checkUnique(meta.ID, raw); err != nil {
		*meta = saved
		return err
	}

	s.docs[meta.ID] = memDoc{seq: cur.seq, raw: raw}
	return nil
}

func (s *MemoryStore[T, P]) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[id]; !ok {
		return ErrNotFound
	}
	delete(s.docs, id)
	return nil
}

func (s *MemoryStore[T, P]) DeleteBy(_ context.Context, field string, value any) (int64, error) {
	match, err := fieldMatcher(field, value)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, d := range s.docs {
		if match(d.raw) {
			delete(s.docs, id)
			n++
		}
	}
	return n, nil
}

// filter returns matching documents newest first.
func (s *MemoryStore[T, P]) filter(match func(bson.Raw) bool) ([]T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type entry struct {
		seq int
		doc T
	}
	entries := make([]entry, 0, len(s.docs))
	for _, d := range s.docs {
		if !match(d.raw) {
			continue
		}
		var doc T
		if err := bson.Unmarshal(d.raw, &doc); err != nil {
			return nil, fmt.Errorf("decode document: %w", err)
		}
		entries = append(entries, entry{seq: d.seq, doc: doc})
	}

	sort.Slice(entries, func(i, j int) bool {
		ci := P(&entries[i].doc).DocMeta().CreatedOn
		cj := P(&entries[j].doc).DocMeta().CreatedOn
		if !ci.Equal(cj) {
			return ci.After(cj)
		}
		return entries[i].seq > entries[j].seq
	})

	docs := make([]T, len(entries))
	for i := range entries {
		docs[i] = entries[i].doc
	}
	return docs, nil
}

func (s *MemoryStore[T, P]) checkUnique(id string, raw bson.Raw) error {
	for _, field := range s.unique {
		v := raw.Lookup(field)
		if v.Type == 0 {
			continue
		}
		for otherID, d := range s.docs {
			if otherID == id {
				continue
			}
			o := d.raw.Lookup(field)
			if o.Type == v.Type && bytes.Equal(o.Value, v.Value) {
				return fmt.Errorf("%s already in use: %w", field, ErrDuplicate)
			}
		}
	}
	return nil
}

func fieldMatcher(field string, value any) (func(bson.Raw) bool, error) {
	t, want, err := bson.MarshalValue(value)
	if err != nil {
		return nil, fmt.Errorf("encode filter value: %w", err)
	}
	return func(raw bson.Raw) bool {
		v := raw.Lookup(field)
		return v.Type == t && bytes.Equal(v.Value, want)
	}, nil
}
