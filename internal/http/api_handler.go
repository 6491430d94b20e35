package http

import (
	"context"
	"encoding/json"
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

// APIHandler exposes the catalog and the session cart as JSON under /api/v1.
type APIHandler struct {
	catalog CatalogService
	carts   CartService
	log     *slog.Logger
	timeout time.Duration
}

func NewAPIHandler(catalog CatalogService, carts CartService, log *slog.Logger, timeout time.Duration) *APIHandler {
	if log == nil {
		log = slog.Default()
	}
	return &APIHandler{
		catalog: catalog,
		carts:   carts,
		log:     log,
		timeout: timeout,
	}
}

type AddLineRequestDTO struct {
	VariantID string `json:"variant_id"`
}

type ProductsResponse struct {
	Products []domain.Product `json:"products"`
	Count    int              `json:"count"`
}

type CartResponse struct {
	*domain.Cart
	TotalQuantity   int    `json:"total_quantity"`
	SubtotalDisplay string `json:"subtotal_display"`
	CheckoutEnabled bool   `json:"checkout_enabled"`
}

func newCartResponse(c *domain.Cart) CartResponse {
	if c == nil {
		c = &domain.Cart{}
	}
	return CartResponse{
		Cart:            c,
		TotalQuantity:   view.CartBadge(c),
		SubtotalDisplay: view.FormatPrice(c.Subtotal),
		CheckoutEnabled: view.CheckoutEnabled(c),
	}
}

func (h *APIHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	products, err := h.catalog.FetchProductList(ctx)
	if err != nil && !errors.Is(err, catalog.ErrNoProducts) {
		h.log.ErrorContext(ctx, "api: failed to load products", slog.Any("err", err))
		handleError(w, err)
		return
	}
	if products == nil {
		products = []domain.Product{}
	}

	respondJSON(w, http.StatusOK, ProductsResponse{
		Products: products,
		Count:    len(products),
	})
}

func (h *APIHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	p, err := h.catalog.FetchProductDetail(ctx, chi.URLParam(r, "handle"))
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (h *APIHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	c, err := h.carts.Resolve(ctx, SessionIDFromContext(r.Context()))
	if err != nil {
		h.log.ErrorContext(ctx, "api: failed to resolve cart", slog.Any("err", err))
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, newCartResponse(c))
}

func (h *APIHandler) AddLine(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddLineRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	c, err := h.carts.AddLine(ctx, SessionIDFromContext(r.Context()), req.VariantID)
	if err != nil {
		h.log.ErrorContext(ctx, "api: add line failed", slog.Any("err", err))
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, newCartResponse(c))
}

func (h *APIHandler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	lineID, err := url.PathUnescape(chi.URLParam(r, "lineID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_line_id", "line id is not valid")
		return
	}

	c, err := h.carts.RemoveLine(ctx, SessionIDFromContext(r.Context()), lineID)
	if err != nil {
		h.log.ErrorContext(ctx, "api: remove line failed", slog.Any("err", err))
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, newCartResponse(c))
}
