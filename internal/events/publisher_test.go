package events

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/rollingtrayco/storefront/internal/cart"
	"github.com/rollingtrayco/storefront/internal/domain"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (m *mockWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if m.err != nil {
		return m.err
	}
	m.messages = append(m.messages, msgs...)
	return nil
}

func (m *mockWriter) Close() error {
	m.closed = true
	return nil
}

func sampleEvent() cart.Event {
	return cart.Event{
		SessionID: "sess-1",
		Kind:      cart.EventLineAdded,
		Cart: domain.Cart{
			ID:       "gid://shopify/Cart/c",
			Subtotal: domain.Money{Amount: decimal.RequireFromString("29.5"), CurrencyCode: "GBP"},
			Lines: []domain.CartLine{
				{ID: "l1", Quantity: 2},
				{ID: "l2", Quantity: 1},
			},
		},
	}
}

func TestCartUpdated_WritesKeyedMessage(t *testing.T) {
	w := &mockWriter{}
	p := NewPublisherWithWriter(w, nil)
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	p.now = func() time.Time { return fixed }

	p.CartUpdated(context.Background(), sampleEvent())

	require.Len(t, w.messages, 1)
	msg := w.messages[0]
	assert.Equal(t, "gid://shopify/Cart/c", string(msg.Key))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "event_type", msg.Headers[0].Key)
	assert.Equal(t, "line_added", string(msg.Headers[0].Value))

	var payload CartEventPayload
	require.NoError(t, json.Unmarshal(msg.Value, &payload))
	assert.Equal(t, CartEventPayload{
		SessionID:     "sess-1",
		CartID:        "gid://shopify/Cart/c",
		Kind:          "line_added",
		TotalQuantity: 3,
		Subtotal:      "29.50",
		Currency:      "GBP",
		OccurredAt:    fixed,
	}, payload)
}

func TestCartUpdated_WriteErrorIsLoggedNotPropagated(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))
	w := &mockWriter{err: errors.New("broker down")}
	p := NewPublisherWithWriter(w, log)

	assert.NotPanics(t, func() { p.CartUpdated(context.Background(), sampleEvent()) })
	assert.Contains(t, buf.String(), "failed to publish cart event")
	assert.Contains(t, buf.String(), "broker down")
}

func TestCartUpdated_CancelledRequestStillPublishes(t *testing.T) {
	w := &mockWriter{}
	p := NewPublisherWithWriter(w, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p.CartUpdated(ctx, sampleEvent())
	assert.Len(t, w.messages, 1)
}

func TestClose(t *testing.T) {
	w := &mockWriter{}
	require.NoError(t, NewPublisherWithWriter(w, nil).Close())
	assert.True(t, w.closed)
}

func TestLogSubscriber(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	NewLogSubscriber(log).CartUpdated(context.Background(), sampleEvent())
	assert.Contains(t, buf.String(), `"total_quantity":3`)
}
