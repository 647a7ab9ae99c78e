// Package auth verifies credentials and issues the session tokens that gate
// the profile and dashboard areas.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/brightlux/storefront-backend/internal/db"
	"github.com/brightlux/storefront-backend/internal/logging"
	"github.com/brightlux/storefront-backend/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// Provider texts are part of the API: clients match on them.
var (
	ErrUserNotFound      = errors.New("User not found")
	ErrIncorrectPassword = errors.New("Incorrect password")
	ErrEmailExists       = errors.New("Email already in use")
	ErrWeakPassword      = errors.New("Password should be at least 6 characters")
)

const minPasswordLen = 6

// Provider owns identities and their secrets. Profiles live elsewhere and are
// keyed by the uid returned here.
type Provider interface {
	CreateIdentity(ctx context.Context, email, password string) (string, error)
	VerifyPassword(ctx context.Context, email, password string) (string, error)
	UpdateIdentity(ctx context.Context, uid string, email, password *string) error
	DeleteIdentity(ctx context.Context, uid string) error
}

// LocalProvider stores bcrypt hashes in a credentials collection.
type LocalProvider struct {
	store db.Store[models.Credential]
	cost  int
	log   logging.Logger
}

type Option func(*LocalProvider)

// WithCost overrides the bcrypt cost. Tests use bcrypt.MinCost.
func WithCost(cost int) Option {
	return func(p *LocalProvider) { p.cost = cost }
}

func WithLogger(log logging.Logger) Option {
	return func(p *LocalProvider) { p.log = log }
}

func NewLocalProvider(store db.Store[models.Credential], opts ...Option) *LocalProvider {
	p := &LocalProvider{store: store, cost: bcrypt.DefaultCost, log: logging.Nop()}
	for _, opt := range opts {
		opt(p)
	}
	p.log = p.log.With("component", "auth")
	return p
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (p *LocalProvider) hash(password string) (string, error) {
	if len(password) < minPasswordLen {
		return "", ErrWeakPassword
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

func (p *LocalProvider) CreateIdentity(ctx context.Context, email, password string) (string, error) {
	hash, err := p.hash(password)
	if err != nil {
		return "", err
	}

	cred := &models.Credential{Email: normalizeEmail(email), PasswordHash: hash}
	if err := p.store.Insert(ctx, cred); err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			return "", ErrEmailExists
		}
		return "", fmt.Errorf("store credential: %w", err)
	}
	return cred.ID, nil
}

func (p *LocalProvider) VerifyPassword(ctx context.Context, email, password string) (string, error) {
	cred, err := p.store.FindOne(ctx, "email", normalizeEmail(email))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("find credential: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)); err != nil {
		return "", ErrIncorrectPassword
	}

	cred.LastLoginAt = time.Now().UTC()
	// Login bookkeeping only; a concurrent login winning the write is harmless.
	if err := p.store.Replace(ctx, cred); err != nil {
		p.log.Warn(ctx, "failed to record login", "uid", cred.ID, "error", err)
	}

	return cred.ID, nil
}

func (p *LocalProvider) UpdateIdentity(ctx context.Context, uid string, email, password *string) error {
	if email == nil && password == nil {
		return nil
	}

	cred, err := p.store.Get(ctx, uid)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("get credential: %w", err)
	}

	if email != nil {
		cred.Email = normalizeEmail(*email)
	}
	if password != nil {
		hash, err := p.hash(*password)
		if err != nil {
			return err
		}
		cred.PasswordHash = hash
	}

	if err := p.store.Replace(ctx, cred); err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			return ErrEmailExists
		}
		return fmt.Errorf("update credential: %w", err)
	}
	return nil
}

func (p *LocalProvider) DeleteIdentity(ctx context.Context, uid string) error {
	if err := p.store.Delete(ctx, uid); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("delete credential: %w", err)
	}
	return nil
}
