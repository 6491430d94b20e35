package http

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rollingtrayco/storefront/internal/catalog"
	"github.com/rollingtrayco/storefront/internal/domain"
	"github.com/rollingtrayco/storefront/internal/view"
)

// CatalogService is the read side of the storefront.
type CatalogService interface {
	FetchProductList(ctx context.Context) ([]domain.Product, error)
	FetchProductDetail(ctx context.Context, handle string) (*domain.Product, error)
}

// CartService owns each session's cart.
type CartService interface {
	Start(ctx context.Context, sessionID string) (*domain.Cart, error)
	Resolve(ctx context.Context, sessionID string) (*domain.Cart, error)
	AddLine(ctx context.Context, sessionID, variantID string) (*domain.Cart, error)
	RemoveLine(ctx context.Context, sessionID, lineID string) (*domain.Cart, error)
	Snapshot(sessionID string) (*domain.Cart, bool)
}

// StorefrontHandler serves the server-rendered page and its fragments.
type StorefrontHandler struct {
	catalog CatalogService
	carts   CartService
	view    *view.Renderer
	log     *slog.Logger
	timeout time.Duration
}

func NewStorefrontHandler(catalog CatalogService, carts CartService, renderer *view.Renderer, log *slog.Logger, timeout time.Duration) *StorefrontHandler {
	if log == nil {
		log = slog.Default()
	}
	return &StorefrontHandler{
		catalog: catalog,
		carts:   carts,
		view:    renderer,
		log:     log,
		timeout: timeout,
	}
}

// Page renders the full storefront. The cart is resolved before products are fetched;
// a cart failure leaves the panel empty but the page still renders.
func (h *StorefrontHandler) Page(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sessionID := SessionIDFromContext(r.Context())
	q := r.URL.Query()

	c, err := h.carts.Start(ctx, sessionID)
	if err != nil {
		h.log.ErrorContext(ctx, "failed to initialise cart", slog.Any("err", err))
	}

	page := view.Page{Cart: view.CartPanelFor(c, q.Get("cart") == "open")}
	if q.Get("cart_error") != "" {
		page.Cart.Open = true
		page.Cart.Error = view.CartErrorMessage
	}

	products, err := h.catalog.FetchProductList(ctx)
	switch {
	case errors.Is(err, catalog.ErrNoProducts):
		page.GridEmpty = view.GridEmptyMessage
	case err != nil:
		h.log.ErrorContext(ctx, "failed to load products", slog.Any("err", err))
		page.GridError = view.GridErrorMessage
	default:
		page.Cards = view.Cards(products)
	}

	if handle := q.Get("product"); handle != "" {
		p, err := h.catalog.FetchProductDetail(ctx, handle)
		if err != nil {
			h.log.WarnContext(ctx, "product detail unavailable",
				slog.String("handle", handle),
				slog.Any("err", err),
			)
		} else {
			page.Modal = h.view.ModalFor(p, true)
		}
	}

	h.render(w, r, http.StatusOK, func(buf *bytes.Buffer) error {
		return h.view.Page(buf, page)
	})
}

// Grid renders only the product grid container.
func (h *StorefrontHandler) Grid(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	products, err := h.catalog.FetchProductList(ctx)
	if err != nil && !errors.Is(err, catalog.ErrNoProducts) {
		h.log.ErrorContext(ctx, "failed to load products", slog.Any("err", err))
		h.render(w, r, http.StatusOK, func(buf *bytes.Buffer) error {
			return h.view.GridError(buf)
		})
		return
	}

	h.render(w, r, http.StatusOK, func(buf *bytes.Buffer) error {
		return h.view.ProductGrid(buf, products)
	})
}

// Modal fetches the product lazily and renders the open detail modal.
func (h *StorefrontHandler) Modal(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	handle := chi.URLParam(r, "handle")
	p, err := h.catalog.FetchProductDetail(ctx, handle)
	if err != nil {
		status, _ := statusFromError(err)
		h.log.WarnContext(ctx, "product detail unavailable",
			slog.String("handle", handle),
			slog.Any("err", err),
		)
		http.Error(w, GenericErrorMessage, status)
		return
	}

	h.render(w, r, http.StatusOK, func(buf *bytes.Buffer) error {
		return h.view.ProductModal(buf, p)
	})
}

// Cart renders the cart panel; ?open=1 renders it opened.
func (h *StorefrontHandler) Cart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	open := r.URL.Query().Get("open") == "1"
	c, err := h.carts.Resolve(ctx, SessionIDFromContext(r.Context()))
	panel := view.CartPanelFor(c, open)
	if err != nil {
		h.log.ErrorContext(ctx, "failed to resolve cart", slog.Any("err", err))
		panel.Error = view.CartErrorMessage
	}

	h.render(w, r, http.StatusOK, func(buf *bytes.Buffer) error {
		return h.view.Panel(buf, panel)
	})
}

// AddLine handles the add-to-cart form.
func (h *StorefrontHandler) AddLine(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	c, err := h.carts.AddLine(ctx, SessionIDFromContext(r.Context()), r.FormValue("variant_id"))
	h.afterMutation(w, r, c, err)
}

// RemoveLine handles the remove button of a cart line.
func (h *StorefrontHandler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	lineID, err := url.PathUnescape(chi.URLParam(r, "lineID"))
	if err != nil {
		http.Error(w, "invalid line id", http.StatusBadRequest)
		return
	}

	c, err := h.carts.RemoveLine(ctx, SessionIDFromContext(r.Context()), lineID)
	h.afterMutation(w, r, c, err)
}

// Checkout sends the shopper to the hosted checkout, or back to the page when the cart is empty.
func (h *StorefrontHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	c, err := h.carts.Resolve(ctx, SessionIDFromContext(r.Context()))
	if err != nil {
		h.log.ErrorContext(ctx, "checkout: failed to resolve cart", slog.Any("err", err))
		http.Redirect(w, r, "/?cart=open&cart_error=1", http.StatusSeeOther)
		return
	}
	if !view.CheckoutEnabled(c) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, c.CheckoutURL, http.StatusSeeOther)
}

// afterMutation answers fragment requests with the open panel and plain form posts with a
// redirect back to the page.
func (h *StorefrontHandler) afterMutation(w http.ResponseWriter, r *http.Request, c *domain.Cart, err error) {
	if err != nil {
		h.log.ErrorContext(r.Context(), "cart update failed", slog.Any("err", err))
	}

	if !isFragmentRequest(r) {
		target := "/?cart=open"
		if err != nil {
			target += "&cart_error=1"
		}
		http.Redirect(w, r, target, http.StatusSeeOther)
		return
	}

	var panel view.CartPanel
	if err != nil {
		// A failed mutation leaves the snapshot as it was.
		prev, _ := h.carts.Snapshot(SessionIDFromContext(r.Context()))
		panel = view.CartPanelFor(prev, true)
		panel.Error = view.CartErrorMessage
	} else {
		panel = view.CartPanelFor(c, true)
	}

	h.render(w, r, http.StatusOK, func(buf *bytes.Buffer) error {
		return h.view.Panel(buf, panel)
	})
}

// render buffers the template so a failure half way never reaches the client.
func (h *StorefrontHandler) render(w http.ResponseWriter, r *http.Request, status int, fn func(*bytes.Buffer) error) {
	var buf bytes.Buffer
	if err := fn(&buf); err != nil {
		h.log.ErrorContext(r.Context(), "failed to render template", slog.Any("err", err))
		http.Error(w, GenericErrorMessage, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		h.log.WarnContext(r.Context(), "failed to write response", slog.Any("err", err))
	}
}

func isFragmentRequest(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
