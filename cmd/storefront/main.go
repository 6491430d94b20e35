package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rollingtrayco/storefront/internal/cart"
	"github.com/rollingtrayco/storefront/internal/catalog"
	"github.com/rollingtrayco/storefront/internal/config"
	"github.com/rollingtrayco/storefront/internal/events"
	h "github.com/rollingtrayco/storefront/internal/http"
	"github.com/rollingtrayco/storefront/internal/session"
	"github.com/rollingtrayco/storefront/internal/shopify"
	"github.com/rollingtrayco/storefront/internal/view"
	"github.com/rollingtrayco/storefront/pkg/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

const (
	sessionIdleTimeout = 30 * time.Minute
	pruneInterval      = 5 * time.Minute
)

func main() {
	cfg := config.Load()

	log := logger.New(logger.Options{
		Service: "storefront",
		Env:     cfg.AppEnv,
		Level:   cfg.LogLevel,
	})

	// Continue traces started upstream of the storefront and forward them to the Storefront API.
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	if cfg.ShopifyToken == "" {
		log.Warn("SHOPIFY_STOREFRONT_TOKEN is empty; catalog requests will be rejected upstream")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closer, err := session.Open(ctx, session.Options{
		Kind:          cfg.SessionStore,
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		SQLitePath:    cfg.SQLitePath,
	})
	if err != nil {
		log.Error("failed to open session store", slog.String("kind", cfg.SessionStore), slog.Any("err", err))
		os.Exit(1)
	}
	defer closer.Close()
	log.Info("session store ready", slog.String("kind", cfg.SessionStore))

	api := shopify.NewClient(shopify.Config{
		Domain:             cfg.ShopifyDomain,
		Token:              cfg.ShopifyToken,
		APIVersion:         cfg.ShopifyAPIVersion,
		BreakerMaxFailures: cfg.BreakerMaxFailures,
		BreakerOpenTimeout: cfg.BreakerOpenTimeout,
	}, log)

	carts := cart.NewSynchronizer(api, store, log)
	carts.Subscribe(events.NewLogSubscriber(log))
	if len(cfg.KafkaBrokers) > 0 {
		publisher := events.NewKafkaPublisher(cfg.KafkaTopic, log, cfg.KafkaBrokers...)
		defer publisher.Close()
		carts.Subscribe(publisher)
		log.Info("publishing cart events", slog.String("topic", cfg.KafkaTopic), slog.Any("brokers", cfg.KafkaBrokers))
	}

	renderer, err := view.NewRenderer()
	if err != nil {
		log.Error("failed to load templates", slog.Any("err", err))
		os.Exit(1)
	}

	router := h.NewRouter(h.RouterConfig{
		Catalog:        catalog.NewLoader(api, log),
		Carts:          carts,
		Renderer:       renderer,
		Logger:         log,
		RequestTimeout: cfg.RequestTimeout,
		SecureCookies:  cfg.AppEnv == "production",
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go pruneSessions(ctx, carts, log)

	go func() {
		log.Info("storefront starting", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", slog.Any("err", err))
			stop()
		}
	}()

	<-ctx.Done()

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", slog.Any("err", err))
	}
	log.Info("server exited")
}

// pruneSessions drops idle in-memory cart sessions; their ids stay in the store.
func pruneSessions(ctx context.Context, carts *cart.Synchronizer, log *slog.Logger) {
	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := carts.Prune(sessionIdleTimeout); n > 0 {
				log.Debug("pruned idle cart sessions", slog.Int("count", n))
			}
		}
	}
}
