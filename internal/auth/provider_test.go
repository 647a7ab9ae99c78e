package auth

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/brightlux/storefront-backend/internal/db"
	"github.com/brightlux/storefront-backend/internal/logging"
	"github.com/brightlux/storefront-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestProvider(t *testing.T) *LocalProvider {
	t.Helper()
	return NewLocalProvider(db.NewMemoryStore[models.Credential]("email"), WithCost(bcrypt.MinCost))
}

func TestLocalProvider_CreateAndVerify(t *testing.T) {
	p := newTestProvider(t)
	ctx := context.Background()

	uid, err := p.CreateIdentity(ctx, " Ann@Example.com ", "hunter22")
	require.NoError(t, err)
	require.NotEmpty(t, uid)

	got, err := p.VerifyPassword(ctx, "ann@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, uid, got)
}

func TestLocalProvider_Errors(t *testing.T) {
	p := newTestProvider(t)
	ctx := context.Background()

	_, err := p.CreateIdentity(ctx, "ann@example.com", "hunter22")
	require.NoError(t, err)

	_, err = p.CreateIdentity(ctx, "ANN@example.com", "another1")
	assert.ErrorIs(t, err, ErrEmailExists)

	_, err = p.CreateIdentity(ctx, "bob@example.com", "123")
	assert.ErrorIs(t, err, ErrWeakPassword)

	_, err = p.VerifyPassword(ctx, "nobody@example.com", "hunter22")
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Contains(t, err.Error(), "User not found")

	_, err = p.VerifyPassword(ctx, "ann@example.com", "wrong-pass")
	assert.ErrorIs(t, err, ErrIncorrectPassword)
	assert.Contains(t, err.Error(), "Incorrect password")
}

func TestLocalProvider_UpdateIdentity(t *testing.T) {
	p := newTestProvider(t)
	ctx := context.Background()

	uid, err := p.CreateIdentity(ctx, "ann@example.com", "hunter22")
	require.NoError(t, err)
	_, err = p.CreateIdentity(ctx, "bob@example.com", "hunter22")
	require.NoError(t, err)

	newEmail, newPass := "ann@new.example.com", "s3cure-pass"
	require.NoError(t, p.UpdateIdentity(ctx, uid, &newEmail, &newPass))

	_, err = p.VerifyPassword(ctx, "ann@example.com", "hunter22")
	assert.ErrorIs(t, err, ErrUserNotFound)
	got, err := p.VerifyPassword(ctx, newEmail, newPass)
	require.NoError(t, err)
	assert.Equal(t, uid, got)

	taken := "bob@example.com"
	assert.ErrorIs(t, p.UpdateIdentity(ctx, uid, &taken, nil), ErrEmailExists)
	assert.ErrorIs(t, p.UpdateIdentity(ctx, "ghost", &taken, nil), ErrUserNotFound)
	assert.NoError(t, p.UpdateIdentity(ctx, "ghost", nil, nil))
}

func TestLocalProvider_DeleteIdentity(t *testing.T) {
	p := newTestProvider(t)
	ctx := context.Background()

	uid, err := p.CreateIdentity(ctx, "ann@example.com", "hunter22")
	require.NoError(t, err)

	require.NoError(t, p.DeleteIdentity(ctx, uid))
	assert.ErrorIs(t, p.DeleteIdentity(ctx, uid), ErrUserNotFound)

	_, err = p.VerifyPassword(ctx, "ann@example.com", "hunter22")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

type brokenReplace struct {
	db.Store[models.Credential]
}

func (brokenReplace) Replace(context.Context, *models.Credential) error {
	return errors.New("primary stepped down")
}

func TestLocalProvider_VerifyLogsBookkeepingFailure(t *testing.T) {
	var buf bytes.Buffer
	store := brokenReplace{db.NewMemoryStore[models.Credential]("email")}
	p := NewLocalProvider(store, WithCost(bcrypt.MinCost), WithLogger(logging.NewWriter(&buf, "info")))
	ctx := context.Background()

	uid, err := p.CreateIdentity(ctx, "ann@example.com", "hunter22")
	require.NoError(t, err)

	got, err := p.VerifyPassword(ctx, "ann@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, uid, got)
	assert.Contains(t, buf.String(), "failed to record login")
	assert.Contains(t, buf.String(), "primary stepped down")
}
