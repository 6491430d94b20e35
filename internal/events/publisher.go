package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/rollingtrayco/storefront/internal/cart"
	"github.com/segmentio/kafka-go"
)

const DefaultTopic = "storefront-cart-events"

// MessageWriter is the subset of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type CartEventPayload struct {
	SessionID     string    `json:"session_id"`
	CartID        string    `json:"cart_id"`
	Kind          string    `json:"kind"`
	TotalQuantity int       `json:"total_quantity"`
	Subtotal      string    `json:"subtotal"`
	Currency      string    `json:"currency"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// KafkaPublisher forwards cart snapshots to Kafka. Publish failures are logged and
// never surface to the shopper.
type KafkaPublisher struct {
	writer  MessageWriter
	timeout time.Duration
	log     *slog.Logger
	now     func() time.Time
}

func NewKafkaPublisher(topic string, log *slog.Logger, brokers ...string) *KafkaPublisher {
	if topic == "" {
		topic = DefaultTopic
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}
	return NewPublisherWithWriter(w, log)
}

func NewPublisherWithWriter(w MessageWriter, log *slog.Logger) *KafkaPublisher {
	if log == nil {
		log = slog.Default()
	}
	return &KafkaPublisher{writer: w, timeout: 5 * time.Second, log: log, now: time.Now}
}

func (p *KafkaPublisher) CartUpdated(ctx context.Context, ev cart.Event) {
	payload := CartEventPayload{
		SessionID:     ev.SessionID,
		CartID:        ev.Cart.ID,
		Kind:          string(ev.Kind),
		TotalQuantity: ev.Cart.TotalQuantity(),
		Subtotal:      ev.Cart.Subtotal.Amount.StringFixed(2),
		Currency:      ev.Cart.Subtotal.CurrencyCode,
		OccurredAt:    p.now().UTC(),
	}

	if err := p.publish(ctx, payload); err != nil {
		p.log.ErrorContext(ctx, "failed to publish cart event",
			slog.String("cart_id", ev.Cart.ID),
			slog.String("kind", string(ev.Kind)),
			slog.Any("err", err),
		)
	}
}

func (p *KafkaPublisher) publish(ctx context.Context, payload CartEventPayload) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal cart event: %w", err)
	}

	// Detached from the request so a client disconnect does not drop the event.
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()

	msg := kafka.Message{
		Key:   []byte(payload.CartID), // cart id keeps one cart's events ordered
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(payload.Kind)},
		},
	}
	return p.writer.WriteMessages(writeCtx, msg)
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
