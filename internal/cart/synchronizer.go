package cart

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/rollingtrayco/storefront/internal/domain"
	"github.com/rollingtrayco/storefront/internal/session"
	"github.com/rollingtrayco/storefront/internal/shopify"
)

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrCartNotFound    = errors.New("cart not found")
	ErrCreateFailed    = errors.New("cart create failed")
	ErrStore           = errors.New("cart id store failure")
)

// Synchronizer is the single source of truth for every session's cart. The remote cart is
// authoritative: each successful call replaces the session snapshot with the server's.
type Synchronizer struct {
	api   shopify.Executor
	store session.Store
	log   *slog.Logger

	mu          sync.Mutex
	sessions    map[string]*Session
	subscribers []Subscriber
}

func NewSynchronizer(api shopify.Executor, store session.Store, log *slog.Logger) *Synchronizer {
	if log == nil {
		log = slog.Default()
	}
	return &Synchronizer{
		api:      api,
		store:    store,
		log:      log,
		sessions: make(map[string]*Session),
	}
}

// Subscribe registers sub for every successful create, load and mutation.
func (s *Synchronizer) Subscribe(sub Subscriber) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, sub)
}

// Start is the page-load entry point: it drops any in-memory snapshot and resolves the
// session's cart from the persisted id, creating one when needed.
func (s *Synchronizer) Start(ctx context.Context, sessionID string) (*domain.Cart, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.reset()
	if err := s.ensureReady(ctx, sess); err != nil {
		return nil, err
	}
	return sess.snapshot(), nil
}

// Resolve returns the session's cart, loading or creating it only if the session is not Ready.
func (s *Synchronizer) Resolve(ctx context.Context, sessionID string) (*domain.Cart, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if err := s.ensureReady(ctx, sess); err != nil {
		return nil, err
	}
	return sess.snapshot(), nil
}

// Snapshot reads the in-memory cart without any network call.
func (s *Synchronizer) Snapshot(sessionID string) (*domain.Cart, bool) {
	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	s.mu.Unlock()
	if !ok {
		return nil, false
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.state != StateReady {
		return nil, false
	}
	return sess.snapshot(), true
}

func (s *Synchronizer) State(sessionID string) State {
	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	s.mu.Unlock()
	if !ok {
		return StateUninitialized
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.state
}

// AddLine adds one unit of variantID to the session's cart.
func (s *Synchronizer) AddLine(ctx context.Context, sessionID, variantID string) (*domain.Cart, error) {
	variantID = strings.TrimSpace(variantID)
	if variantID == "" {
		return nil, fmt.Errorf("%w: variant id is required", ErrInvalidArgument)
	}

	return s.mutate(ctx, sessionID, EventLineAdded, shopify.CartLinesAddMutation,
		map[string]any{"lines": []shopify.CartLineInput{{MerchandiseID: variantID, Quantity: 1}}},
		func(raw *shopify.Response) (*shopify.CartPayload, error) {
			var data shopify.CartLinesAddData
			if err := shopify.Decode(raw, &data); err != nil {
				return nil, err
			}
			return data.CartLinesAdd, nil
		})
}

// RemoveLine removes the line lineID from the session's cart.
func (s *Synchronizer) RemoveLine(ctx context.Context, sessionID, lineID string) (*domain.Cart, error) {
	lineID = strings.TrimSpace(lineID)
	if lineID == "" {
		return nil, fmt.Errorf("%w: line id is required", ErrInvalidArgument)
	}

	return s.mutate(ctx, sessionID, EventLineRemoved, shopify.CartLinesRemoveMutation,
		map[string]any{"lineIds": []string{lineID}},
		func(raw *shopify.Response) (*shopify.CartPayload, error) {
			var data shopify.CartLinesRemoveData
			if err := shopify.Decode(raw, &data); err != nil {
				return nil, err
			}
			return data.CartLinesRemove, nil
		})
}

// Prune forgets in-memory sessions idle for longer than idle. Persisted ids are kept.
func (s *Synchronizer) Prune(idle time.Duration) int {
	cutoff := time.Now().Add(-idle)
	s.mu.Lock()
	defer s.mu.Unlock()

	pruned := 0
	for id, sess := range s.sessions {
		if !sess.mu.TryLock() {
			continue
		}
		if sess.lastUsed.Before(cutoff) {
			delete(s.sessions, id)
			pruned++
		}
		sess.mu.Unlock()
	}
	return pruned
}

func (s *Synchronizer) mutate(
	ctx context.Context,
	sessionID string,
	kind EventKind,
	query string,
	vars map[string]any,
	extract func(*shopify.Response) (*shopify.CartPayload, error),
) (*domain.Cart, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if err := s.ensureReady(ctx, sess); err != nil {
		return nil, err
	}

	cartID := sess.cart.ID
	vars["cartId"] = cartID
	payload, err := extract(s.api.Execute(ctx, query, vars))
	if err != nil {
		s.log.ErrorContext(ctx, "cart mutation failed",
			slog.String("kind", string(kind)),
			slog.String("cart_id", cartID),
			slog.Any("err", err),
		)
		return nil, err
	}

	if payload == nil || payload.Cart == nil {
		if payload == nil || len(payload.UserErrors) == 0 || targetsCartID(payload.UserErrors) {
			s.log.WarnContext(ctx, "cart vanished during mutation", slog.String("cart_id", cartID))
			s.discard(ctx, sess)
			return nil, ErrCartNotFound
		}
		// No snapshot came back: the next operation re-verifies the cart through a load.
		sess.reset()
	}

	if err := shopify.UserErrorsErr(payload.UserErrors); err != nil {
		s.log.ErrorContext(ctx, "cart mutation rejected",
			slog.String("kind", string(kind)),
			slog.String("cart_id", cartID),
			slog.Any("err", err),
		)
		return nil, err
	}

	sess.ready(mapCart(*payload.Cart))
	s.notify(ctx, sess, kind)
	return sess.snapshot(), nil
}

// targetsCartID reports whether the server rejected the cart id itself, which is how an
// expired or unknown cart is reported on mutations.
func targetsCartID(userErrors []shopify.UserError) bool {
	for _, ue := range userErrors {
		if len(ue.Field) > 0 && ue.Field[len(ue.Field)-1] == "cartId" {
			return true
		}
	}
	return false
}

// ensureReady drives Uninitialized -> (Load | Create) -> Ready. Callers hold sess.mu.
func (s *Synchronizer) ensureReady(ctx context.Context, sess *Session) error {
	sess.lastUsed = time.Now()
	if sess.state == StateReady {
		return nil
	}

	cartID, err := s.store.Get(ctx, sess.id)
	if errors.Is(err, session.ErrNotFound) {
		return s.create(ctx, sess)
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStore, err)
	}

	c, err := s.load(ctx, cartID)
	if errors.Is(err, ErrCartNotFound) {
		s.log.InfoContext(ctx, "persisted cart no longer resolves, recreating", slog.String("cart_id", cartID))
		s.discard(ctx, sess)
		return s.create(ctx, sess)
	}
	if err != nil {
		// The id is kept: a failed fetch says nothing about whether the cart still exists.
		return err
	}

	sess.ready(*c)
	s.notify(ctx, sess, EventLoaded)
	return nil
}

func (s *Synchronizer) load(ctx context.Context, cartID string) (*domain.Cart, error) {
	resp := s.api.Execute(ctx, shopify.CartQuery, map[string]any{"cartId": cartID})

	var data shopify.CartData
	if err := shopify.Decode(resp, &data); err != nil {
		return nil, err
	}
	if data.Cart == nil {
		return nil, ErrCartNotFound
	}
	c := mapCart(*data.Cart)
	return &c, nil
}

func (s *Synchronizer) create(ctx context.Context, sess *Session) error {
	resp := s.api.Execute(ctx, shopify.CartCreateMutation, nil)

	var data shopify.CartCreateData
	if err := shopify.Decode(resp, &data); err != nil {
		return err
	}
	if data.CartCreate == nil {
		return ErrCreateFailed
	}
	if err := shopify.UserErrorsErr(data.CartCreate.UserErrors); err != nil {
		return err
	}
	if data.CartCreate.Cart == nil || data.CartCreate.Cart.ID == "" {
		return ErrCreateFailed
	}

	c := mapCart(*data.CartCreate.Cart)
	if err := s.store.Set(ctx, sess.id, c.ID); err != nil {
		return fmt.Errorf("%w: %w", ErrStore, err)
	}
	s.log.InfoContext(ctx, "cart created", slog.String("cart_id", c.ID))

	sess.ready(c)
	s.notify(ctx, sess, EventCreated)
	return nil
}

func (s *Synchronizer) discard(ctx context.Context, sess *Session) {
	sess.reset()
	if err := s.store.Delete(ctx, sess.id); err != nil {
		s.log.ErrorContext(ctx, "failed to discard persisted cart id", slog.Any("err", err))
	}
}

func (s *Synchronizer) notify(ctx context.Context, sess *Session, kind EventKind) {
	s.mu.Lock()
	subs := append([]Subscriber(nil), s.subscribers...)
	s.mu.Unlock()

	ev := Event{SessionID: sess.id, Kind: kind, Cart: *sess.snapshot()}
	for _, sub := range subs {
		sub.CartUpdated(ctx, ev)
	}
}

func (s *Synchronizer) session(sessionID string) (*Session, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, fmt.Errorf("%w: session id is required", ErrInvalidArgument)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		sess = newSession(sessionID)
		s.sessions[sessionID] = sess
	}
	return sess, nil
}
