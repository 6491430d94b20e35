// Package session persists the cart id belonging to each browser session.
package session

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("cart id not found")

// Store maps a browser session id to its one current cart id.
type Store interface {
	Get(ctx context.Context, sessionID string) (string, error)
	// Set overwrites any previous cart id for the session.
	Set(ctx context.Context, sessionID, cartID string) error
	Delete(ctx context.Context, sessionID string) error
}
