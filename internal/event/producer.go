// Package event publishes domain events to Kafka. Publishing is
// fire-and-forget from the caller's perspective: failures are logged and
// never fail the originating request.
package event

import (
	"context"
	"log/slog"
	"time"

	pkgkafka "github.com/osdatum/backend/pkg/kafka"
)

// Topics for published domain events.
const (
	TopicUserRegistered       = "osdatum.user.registered"
	TopicGridPurchased        = "osdatum.grid.purchased"
	TopicSubscriptionUpgraded = "osdatum.subscription.upgraded"
)

const source = "osdatum-backend"

// Publisher sends an event envelope to a topic. Satisfied by pkg/kafka.Producer.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes the service's domain events.
type Producer struct {
	publisher Publisher
	logger    *slog.Logger
}

// NewProducer creates a domain event producer.
func NewProducer(publisher Publisher, logger *slog.Logger) *Producer {
	return &Producer{publisher: publisher, logger: logger}
}

// UserRegisteredData is the payload for user registration events.
type UserRegisteredData struct {
	UserID   string    `json:"user_id"`
	Email    string    `json:"email"`
	Provider string    `json:"provider"`
	At       time.Time `json:"at"`
}

// GridPurchasedData is the payload for grid purchase events.
type GridPurchasedData struct {
	UserID string    `json:"user_id"`
	GridID string    `json:"grid_id"`
	At     time.Time `json:"at"`
}

// SubscriptionUpgradedData is the payload for subscription upgrade events.
type SubscriptionUpgradedData struct {
	UserID   string    `json:"user_id"`
	Email    string    `json:"email"`
	PlanType string    `json:"plan_type"`
	At       time.Time `json:"at"`
}

// PublishUserRegistered emits a user registration event.
func (p *Producer) PublishUserRegistered(ctx context.Context, userID, email, provider string) {
	p.publish(ctx, TopicUserRegistered, "user.registered", userID, "user", UserRegisteredData{
		UserID:   userID,
		Email:    email,
		Provider: provider,
		At:       time.Now().UTC(),
	})
}

// PublishGridPurchased emits a grid purchase event.
func (p *Producer) PublishGridPurchased(ctx context.Context, userID, gridID string) {
	p.publish(ctx, TopicGridPurchased, "grid.purchased", userID, "user", GridPurchasedData{
		UserID: userID,
		GridID: gridID,
		At:     time.Now().UTC(),
	})
}

// PublishSubscriptionUpgraded emits a subscription upgrade event.
func (p *Producer) PublishSubscriptionUpgraded(ctx context.Context, userID, email, planType string) {
	p.publish(ctx, TopicSubscriptionUpgraded, "subscription.upgraded", userID, "user", SubscriptionUpgradedData{
		UserID:   userID,
		Email:    email,
		PlanType: planType,
		At:       time.Now().UTC(),
	})
}

func (p *Producer) publish(ctx context.Context, topic, eventType, aggregateID, aggregateType string, data any) {
	evt, err := pkgkafka.NewEvent(eventType, aggregateID, aggregateType, source, data)
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to build event",
			slog.String("event_type", eventType),
			slog.String("error", err.Error()),
		)
		return
	}
	if err := p.publisher.Publish(ctx, topic, evt); err != nil {
		p.logger.WarnContext(ctx, "event publish failed, continuing",
			slog.String("topic", topic),
			slog.String("event_type", eventType),
			slog.String("error", err.Error()),
		)
	}
}
