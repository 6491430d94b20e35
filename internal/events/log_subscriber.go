package events

import (
	"context"
	"log/slog"

	"github.com/rollingtrayco/storefront/internal/cart"
)

type LogSubscriber struct {
	log *slog.Logger
}

func NewLogSubscriber(log *slog.Logger) *LogSubscriber {
	return &LogSubscriber{log: log}
}

func (s *LogSubscriber) CartUpdated(ctx context.Context, ev cart.Event) {
	s.log.DebugContext(ctx, "cart updated",
		slog.String("session_id", ev.SessionID),
		slog.String("cart_id", ev.Cart.ID),
		slog.String("kind", string(ev.Kind)),
		slog.Int("total_quantity", ev.Cart.TotalQuantity()),
	)
}
