package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rollingtrayco/storefront/internal/view"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type RouterConfig struct {
	Catalog        CatalogService
	Carts          CartService
	Renderer       *view.Renderer
	Logger         *slog.Logger
	RequestTimeout time.Duration
	SecureCookies  bool
}

// NewRouter wires the storefront pages, fragments and JSON API behind the common middleware.
func NewRouter(cfg RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 15 * time.Second
	}

	storefront := NewStorefrontHandler(cfg.Catalog, cfg.Carts, cfg.Renderer, log, cfg.RequestTimeout)
	api := NewAPIHandler(cfg.Catalog, cfg.Carts, log, cfg.RequestTimeout)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(RequestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		r.Use(SessionMiddleware(cfg.SecureCookies))

		r.Get("/", storefront.Page)
		r.Get("/products", storefront.Grid)
		r.Get("/products/{handle}", storefront.Modal)
		r.Get("/cart", storefront.Cart)
		r.Post("/cart/lines", storefront.AddLine)
		r.Post("/cart/lines/{lineID}/remove", storefront.RemoveLine)
		r.Get("/checkout", storefront.Checkout)

		r.Route("/api/v1", func(r chi.Router) {
			r.Get("/products", api.ListProducts)
			r.Get("/products/{handle}", api.GetProduct)
			r.Route("/cart", func(r chi.Router) {
				r.Get("/", api.GetCart)
				r.Post("/lines", api.AddLine)
				r.Delete("/lines/{lineID}", api.RemoveLine)
			})
		})
	})

	return otelhttp.NewHandler(r, "storefront")
}
