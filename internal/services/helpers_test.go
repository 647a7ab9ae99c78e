package services

import (
	"context"
	"sync"
	"testing"

	"github.com/brightlux/storefront-backend/internal/auth"
	"github.com/brightlux/storefront-backend/internal/db"
	"github.com/brightlux/storefront-backend/internal/logging"
	"github.com/brightlux/storefront-backend/internal/models"
	"golang.org/x/crypto/bcrypt"
)

type published struct {
	key string
	v   any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []published
}

func (p *recordingPublisher) Publish(_ context.Context, key string, v any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{key: key, v: v})
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	keys := make([]string, len(p.events))
	for i, e := range p.events {
		keys[i] = e.key
	}
	return keys
}

// countingCarts records writes made to the wrapped cart store.
type countingCarts struct {
	db.Store[models.Cart]
	mu     sync.Mutex
	writes int
}

func (c *countingCarts) wrote() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.writes
}

func (c *countingCarts) bump() {
	c.mu.Lock()
	c.writes++
	c.mu.Unlock()
}

func (c *countingCarts) Insert(ctx context.Context, doc *models.Cart) error {
	c.bump()
	return c.Store.Insert(ctx, doc)
}

func (c *countingCarts) Replace(ctx context.Context, doc *models.Cart) error {
	c.bump()
	return c.Store.Replace(ctx, doc)
}

func (c *countingCarts) Delete(ctx context.Context, id string) error {
	c.bump()
	return c.Store.Delete(ctx, id)
}

type fixture struct {
	stores db.Stores
	svc    *Services
	pub    *recordingPublisher
}

func newFixture(t *testing.T, adminEmail string) *fixture {
	t.Helper()
	st := db.NewMemoryStores()
	pub := &recordingPublisher{}
	svc := New(st, Options{
		Provider:   auth.NewLocalProvider(st.Credentials, auth.WithCost(bcrypt.MinCost)),
		Publisher:  pub,
		Logger:     logging.Nop(),
		AdminEmail: adminEmail,
	})
	return &fixture{stores: st, svc: svc, pub: pub}
}
