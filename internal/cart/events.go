package cart

import (
	"context"

	"github.com/rollingtrayco/storefront/internal/domain"
)

type EventKind string

const (
	EventCreated     EventKind = "created"
	EventLoaded      EventKind = "loaded"
	EventLineAdded   EventKind = "line_added"
	EventLineRemoved EventKind = "line_removed"
)

// Event carries the server snapshot that resulted from a successful cart operation.
type Event struct {
	SessionID string
	Kind      EventKind
	Cart      domain.Cart
}

type Subscriber interface {
	CartUpdated(ctx context.Context, ev Event)
}

type SubscriberFunc func(ctx context.Context, ev Event)

func (f SubscriberFunc) CartUpdated(ctx context.Context, ev Event) {
	f(ctx, ev)
}
