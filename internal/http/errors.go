package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/rollingtrayco/storefront/internal/cart"
	"github.com/rollingtrayco/storefront/internal/catalog"
	"github.com/rollingtrayco/storefront/internal/shopify"
)

// GenericErrorMessage is the only failure text shoppers ever see.
const GenericErrorMessage = "Something went wrong. Please try again."

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", slog.Any("err", err))
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// statusFromError maps domain and upstream errors to an HTTP status and error code.
func statusFromError(err error) (int, string) {
	switch {
	case errors.Is(err, cart.ErrInvalidArgument):
		return http.StatusBadRequest, "invalid_argument"
	case errors.Is(err, catalog.ErrProductNotFound), errors.Is(err, catalog.ErrNotPurchasable):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, cart.ErrCartNotFound):
		return http.StatusConflict, "cart_reset"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	case shopify.IsTransport(err):
		return http.StatusServiceUnavailable, "service_unavailable"
	case shopify.IsGraphQL(err):
		return http.StatusBadGateway, "upstream_error"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func handleError(w http.ResponseWriter, err error) {
	status, code := statusFromError(err)
	msg := GenericErrorMessage
	if status == http.StatusBadRequest || status == http.StatusNotFound {
		msg = err.Error()
	}
	respondError(w, status, code, msg)
}
