package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/brightlux/storefront-backend/internal/auth"
	"github.com/brightlux/storefront-backend/internal/db"
	"github.com/brightlux/storefront-backend/internal/events"
	"github.com/brightlux/storefront-backend/internal/logging"
	"github.com/brightlux/storefront-backend/internal/models"
	"github.com/google/uuid"
)

// Registration is the sign-up payload.
type Registration struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required"`
	DisplayName string `json:"displayName"`
	PhoneNumber string `json:"phoneNumber"`
}

// ProfileUpdate carries the fields to change; nil fields are left alone.
type ProfileUpdate struct {
	Email       *string `json:"email,omitempty" validate:"omitempty,email"`
	Password    *string `json:"password,omitempty"`
	DisplayName *string `json:"displayName,omitempty"`
	PhoneNumber *string `json:"phoneNumber,omitempty"`
}

// UserService keeps the identity provider and the profile collection in step.
// The two are not updated atomically: a failure after the identity changed
// leaves the profile behind, and nothing rolls the identity back.
type UserService struct {
	users       db.Store[models.User]
	profiles    *ContentService[models.User, *models.User]
	provider    auth.Provider
	carts       *CartService
	events      events.Publisher
	log         logging.Logger
	adminEmail  string
	newCustomID func() string
}

func NewUserService(users db.Store[models.User], provider auth.Provider, carts *CartService,
	pub events.Publisher, log logging.Logger, adminEmail string) *UserService {
	return &UserService{
		users:       users,
		profiles:    NewContentService[models.User]("user", users),
		provider:    provider,
		carts:       carts,
		events:      pub,
		log:         log.With("component", "users"),
		adminEmail:  normalizeEmail(adminEmail),
		newCustomID: newCustomID,
	}
}

// newCustomID returns a short human-readable customer number such as LUX-3F2A9C1B.
func newCustomID() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "LUX-" + strings.ToUpper(id[:8])
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *UserService) Register(ctx context.Context, reg Registration) (*models.User, error) {
	if err := Validate(&reg); err != nil {
		return nil, err
	}

	uid, err := s.provider.CreateIdentity(ctx, reg.Email, reg.Password)
	if err != nil {
		return nil, err
	}

	email := normalizeEmail(reg.Email)
	role := models.RoleUser
	if s.adminEmail != "" && email == s.adminEmail {
		role = models.RoleAdmin
	}
	user := &models.User{
		Meta:        models.Meta{ID: uid},
		Email:       email,
		DisplayName: reg.DisplayName,
		PhoneNumber: reg.PhoneNumber,
		Role:        role,
		CustomID:    s.newCustomID(),
	}
	if err := s.users.Insert(ctx, user); err != nil {
		s.log.Error(ctx, "identity created but profile was not stored", "uid", uid, "error", err)
		return nil, fmt.Errorf("store profile: %w", err)
	}

	s.log.Info(ctx, "user registered", "uid", uid, "role", role)
	events.Notify(ctx, s.events, s.log, events.UserRegistered, user)
	return user, nil
}

// Login checks the credentials and returns the mirrored profile.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, error) {
	uid, err := s.provider.VerifyPassword(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, uid)
}

func (s *UserService) Get(ctx context.Context, uid string) (*models.User, error) {
	user, err := s.users.Get(ctx, uid)
	if errors.Is(err, db.ErrNotFound) {
		return nil, auth.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", uid, err)
	}
	return user, nil
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.users.FindOne(ctx, "email", normalizeEmail(email))
	if errors.Is(err, db.ErrNotFound) {
		return nil, auth.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return user, nil
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	return s.profiles.GetAll(ctx)
}

// UpdateProfile changes the identity first and then the profile mirror.
func (s *UserService) UpdateProfile(ctx context.Context, uid string, upd ProfileUpdate) (*models.User, error) {
	if err := Validate(&upd); err != nil {
		return nil, err
	}
	if err := s.provider.UpdateIdentity(ctx, uid, upd.Email, upd.Password); err != nil {
		return nil, err
	}

	user, err := s.profiles.Update(ctx, uid, func(u *models.User) error {
		if upd.Email != nil {
			u.Email = normalizeEmail(*upd.Email)
		}
		if upd.DisplayName != nil {
			u.DisplayName = *upd.DisplayName
		}
		if upd.PhoneNumber != nil {
			u.PhoneNumber = *upd.PhoneNumber
		}
		return nil
	})
	if errors.Is(err, db.ErrNotFound) {
		return nil, auth.ErrUserNotFound
	}
	if errors.Is(err, db.ErrDuplicate) {
		return nil, auth.ErrEmailExists
	}
	if err != nil {
		s.log.Error(ctx, "identity updated but profile was not", "uid", uid, "error", err)
		return nil, err
	}
	return user, nil
}

// Delete removes the identity, the profile and the stored cart. Only the
// identity removal can fail the call.
func (s *UserService) Delete(ctx context.Context, uid string) error {
	if err := s.provider.DeleteIdentity(ctx, uid); err != nil {
		return err
	}
	if err := s.users.Delete(ctx, uid); err != nil && !errors.Is(err, db.ErrNotFound) {
		s.log.Warn(ctx, "identity deleted but profile was not", "uid", uid, "error", err)
	}
	if err := s.carts.Clear(ctx, uid); err != nil {
		s.log.Warn(ctx, "failed to clear cart of deleted user", "uid", uid, "error", err)
	}
	s.log.Info(ctx, "user deleted", "uid", uid)
	return nil
}

// MergeCart merges guest items into the user's cart and mirrors the result
// on the profile.
func (s *UserService) MergeCart(ctx context.Context, uid string, guest []models.CartItem) ([]models.CartItem, error) {
	if _, err := s.Get(ctx, uid); err != nil {
		return nil, err
	}
	items, err := s.carts.MergeGuestCart(ctx, uid, guest)
	if err != nil {
		return nil, err
	}

	_, err = s.profiles.Update(ctx, uid, func(u *models.User) error {
		u.Cart = items
		return nil
	})
	if err != nil {
		s.log.Warn(ctx, "cart merged but profile snapshot is stale", "uid", uid, "error", err)
	}
	return items, nil
}
