// Package events announces storefront activity (new leads, applications,
// orders and sign-ups) to the business on a message broker.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/brightlux/storefront-backend/internal/logging"
)

// Routing keys.
const (
	LeadCreated        = "lead.created"
	ApplicationCreated = "application.created"
	OrderPlaced        = "order.placed"
	UserRegistered     = "user.registered"
)

type Publisher interface {
	Publish(ctx context.Context, key string, v any) error
	Close() error
}

// LogPublisher writes events to the log. Used when no broker is configured.
type LogPublisher struct {
	log logging.Logger
}

func NewLogPublisher(log logging.Logger) *LogPublisher {
	return &LogPublisher{log: log.With("component", "events")}
}

func (p *LogPublisher) Publish(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", key, err)
	}
	p.log.Info(ctx, "event", "key", key, "payload", string(b))
	return nil
}

func (p *LogPublisher) Close() error { return nil }

// Notify publishes and logs a failure instead of returning it. Event delivery
// never fails the operation that produced the event.
func Notify(ctx context.Context, p Publisher, log logging.Logger, key string, v any) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, key, v); err != nil {
		log.Warn(ctx, "publish event failed", "key", key, "error", err)
	}
}
