package services

import (
	"context"
	"fmt"
	"math"
	"slices"

	"github.com/brightlux/storefront-backend/internal/db"
	"github.com/brightlux/storefront-backend/internal/events"
	"github.com/brightlux/storefront-backend/internal/logging"
	"github.com/brightlux/storefront-backend/internal/models"
)

var orderStatuses = []string{
	models.OrderPending, models.OrderConfirmed, models.OrderShipped,
	models.OrderDelivered, models.OrderCancelled,
}

type OrderService struct {
	*ContentService[models.Order, *models.Order]
	carts  *CartService
	events events.Publisher
	log    logging.Logger
}

func NewOrderService(store db.Store[models.Order], carts *CartService, pub events.Publisher, log logging.Logger) *OrderService {
	return &OrderService{
		ContentService: NewContentService[models.Order]("order", store),
		carts:          carts,
		events:         pub,
		log:            log.With("component", "orders"),
	}
}

// Place stores a new pending order priced from its items and empties the
// customer's cart.
func (s *OrderService) Place(ctx context.Context, o *models.Order) (*models.Order, error) {
	o.Status = models.OrderPending
	o.Total = math.Round(models.Subtotal(o.Items)*100) / 100

	order, err := s.Add(ctx, o)
	if err != nil {
		return nil, err
	}

	if order.UserID != "" {
		if err := s.carts.Clear(ctx, order.UserID); err != nil {
			s.log.Warn(ctx, "order placed but cart was not cleared", "order", order.ID, "user", order.UserID, "error", err)
		}
	}

	s.log.Info(ctx, "order placed", "order", order.ID, "total", order.Total)
	events.Notify(ctx, s.events, s.log, events.OrderPlaced, order)
	return order, nil
}

func (s *OrderService) UpdateStatus(ctx context.Context, id, status string) (*models.Order, error) {
	if !slices.Contains(orderStatuses, status) {
		return nil, fmt.Errorf("%w: status must be one of %v", ErrInvalidInput, orderStatuses)
	}
	return s.Update(ctx, id, func(o *models.Order) error {
		o.Status = status
		return nil
	})
}
