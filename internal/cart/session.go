package cart

import (
	"sync"
	"time"

	"github.com/rollingtrayco/storefront/internal/domain"
)

type State int

const (
	StateUninitialized State = iota
	StateReady
)

func (s State) String() string {
	if s == StateReady {
		return "ready"
	}
	return "uninitialized"
}

// Session is the cart state of one browser session. Its mutex serialises every
// operation on the session, so a double-submitted mutation waits for the first.
type Session struct {
	id string

	mu       sync.Mutex
	state    State
	cart     *domain.Cart
	lastUsed time.Time
}

func newSession(id string) *Session {
	return &Session{id: id, lastUsed: time.Now()}
}

func (s *Session) ready(c domain.Cart) {
	s.cart = &c
	s.state = StateReady
}

func (s *Session) reset() {
	s.cart = nil
	s.state = StateUninitialized
}

func (s *Session) snapshot() *domain.Cart {
	if s.cart == nil {
		return nil
	}
	c := *s.cart
	c.Lines = append([]domain.CartLine(nil), s.cart.Lines...)
	return &c
}
