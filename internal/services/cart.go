package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/brightlux/storefront-backend/internal/db"
	"github.com/brightlux/storefront-backend/internal/logging"
	"github.com/brightlux/storefront-backend/internal/models"
)

// GuestID is the user id of an anonymous visitor. Guest carts live on the
// client only and are never read from or written to storage.
const GuestID = "guest"

var (
	ErrCartNotFound    = errors.New("cart not found")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")

	// errUnchanged tells modify to return the stored items without writing.
	errUnchanged = errors.New("cart unchanged")
)

// CartService keeps one cart document per user, keyed by the user id.
type CartService struct {
	store db.Store[models.Cart]
	log   logging.Logger
}

func NewCartService(store db.Store[models.Cart], log logging.Logger) *CartService {
	return &CartService{store: store, log: log.With("component", "cart")}
}

// Get returns the stored items, or an empty list when the user has no cart.
func (s *CartService) Get(ctx context.Context, userID string) ([]models.CartItem, error) {
	if userID == GuestID || userID == "" {
		return []models.CartItem{}, nil
	}
	cart, err := s.store.Get(ctx, userID)
	if errors.Is(err, db.ErrNotFound) {
		return []models.CartItem{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cart %s: %w", userID, err)
	}
	return nonNil(cart.Items), nil
}

// Save replaces the whole item list. The original creation time is kept.
// Repeated product ids collapse into one line with the summed quantity.
func (s *CartService) Save(ctx context.Context, userID string, items []models.CartItem) ([]models.CartItem, error) {
	if err := validateItems(items); err != nil {
		return nil, err
	}
	items = MergeItems(nil, items)
	if userID == GuestID {
		return items, nil
	}
	return s.modify(ctx, userID, true, func([]models.CartItem) ([]models.CartItem, error) {
		return items, nil
	})
}

// AddOrMerge appends item, or adds its quantity to the line already holding
// the same product.
func (s *CartService) AddOrMerge(ctx context.Context, userID string, item models.CartItem) ([]models.CartItem, error) {
	if err := validateItems([]models.CartItem{item}); err != nil {
		return nil, err
	}
	if userID == GuestID {
		return []models.CartItem{item}, nil
	}
	return s.modify(ctx, userID, true, func(items []models.CartItem) ([]models.CartItem, error) {
		return MergeItems(items, []models.CartItem{item}), nil
	})
}

// UpdateQuantity sets the quantity of itemID. It fails with ErrCartNotFound,
// without writing anything, when the user has no cart. An item the cart does
// not hold leaves the cart untouched.
func (s *CartService) UpdateQuantity(ctx context.Context, userID, itemID string, quantity int) ([]models.CartItem, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	if userID == GuestID {
		return []models.CartItem{}, nil
	}
	return s.modify(ctx, userID, false, func(items []models.CartItem) ([]models.CartItem, error) {
		for i := range items {
			if items[i].ID == itemID {
				if items[i].Quantity == quantity {
					return nil, errUnchanged
				}
				items[i].Quantity = quantity
				return items, nil
			}
		}
		return nil, errUnchanged
	})
}

// Remove drops the line for itemID. Removing from a missing cart is a no-op.
func (s *CartService) Remove(ctx context.Context, userID, itemID string) ([]models.CartItem, error) {
	if userID == GuestID {
		return []models.CartItem{}, nil
	}
	items, err := s.modify(ctx, userID, false, func(items []models.CartItem) ([]models.CartItem, error) {
		kept := make([]models.CartItem, 0, len(items))
		for _, it := range items {
			if it.ID != itemID {
				kept = append(kept, it)
			}
		}
		if len(kept) == len(items) {
			return nil, errUnchanged
		}
		return kept, nil
	})
	if errors.Is(err, ErrCartNotFound) {
		return []models.CartItem{}, nil
	}
	return items, err
}

// Clear deletes the cart document.
func (s *CartService) Clear(ctx context.Context, userID string) error {
	if userID == GuestID {
		return nil
	}
	if err := s.store.Delete(ctx, userID); err != nil && !errors.Is(err, db.ErrNotFound) {
		return fmt.Errorf("clear cart %s: %w", userID, err)
	}
	return nil
}

// MergeGuestCart folds a guest's items into the stored cart, summing
// quantities of shared products.
func (s *CartService) MergeGuestCart(ctx context.Context, userID string, guest []models.CartItem) ([]models.CartItem, error) {
	if err := validateItems(guest); err != nil {
		return nil, err
	}
	if userID == GuestID {
		return MergeItems(nil, guest), nil
	}
	return s.modify(ctx, userID, true, func(items []models.CartItem) ([]models.CartItem, error) {
		return MergeItems(items, guest), nil
	})
}

// MergeItems returns the union of base and extra keyed by product id. Quantities
// of products present in both are summed; base order comes first, followed by
// products only extra holds. Neither input is modified.
func MergeItems(base, extra []models.CartItem) []models.CartItem {
	out := make([]models.CartItem, 0, len(base)+len(extra))
	index := make(map[string]int, len(base)+len(extra))
	for _, list := range [][]models.CartItem{base, extra} {
		for _, it := range list {
			if i, ok := index[it.ID]; ok {
				out[i].Quantity += it.Quantity
				continue
			}
			index[it.ID] = len(out)
			out = append(out, it)
		}
	}
	return out
}

// modify runs a version-checked read-modify-write on the user's cart. A
// missing cart is created when create is set and reported as ErrCartNotFound
// otherwise. Conflicting writes are retried from a fresh read.
func (s *CartService) modify(ctx context.Context, userID string, create bool, apply func([]models.CartItem) ([]models.CartItem, error)) ([]models.CartItem, error) {
	for attempt := 1; ; attempt++ {
		cart, err := s.store.Get(ctx, userID)
		switch {
		case errors.Is(err, db.ErrNotFound):
			if !create {
				return nil, ErrCartNotFound
			}
			items, err := apply([]models.CartItem{})
			if err != nil {
				return nil, err
			}
			cart = &models.Cart{Meta: models.Meta{ID: userID}, UserID: userID, Items: nonNil(items)}
			err = s.store.Insert(ctx, cart)
			if err == nil {
				return cart.Items, nil
			}
			if !errors.Is(err, db.ErrDuplicate) || attempt >= maxWriteAttempts {
				return nil, fmt.Errorf("create cart %s: %w", userID, err)
			}
		case err != nil:
			return nil, fmt.Errorf("get cart %s: %w", userID, err)
		default:
			items, err := apply(cart.Items)
			if errors.Is(err, errUnchanged) {
				return nonNil(cart.Items), nil
			}
			if err != nil {
				return nil, err
			}
			cart.Items = nonNil(items)
			err = s.store.Replace(ctx, cart)
			if err == nil {
				return cart.Items, nil
			}
			if (!errors.Is(err, db.ErrConflict) && !errors.Is(err, db.ErrNotFound)) || attempt >= maxWriteAttempts {
				return nil, fmt.Errorf("save cart %s: %w", userID, err)
			}
		}
		s.log.Debug(ctx, "cart changed concurrently, retrying", "user", userID, "attempt", attempt)
	}
}

func validateItems(items []models.CartItem) error {
	for i := range items {
		if err := Validate(&items[i]); err != nil {
			return err
		}
	}
	return nil
}

func nonNil(items []models.CartItem) []models.CartItem {
	if items == nil {
		return []models.CartItem{}
	}
	return items
}
