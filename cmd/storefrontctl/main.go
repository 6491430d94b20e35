package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rollingtrayco/storefront/internal/cart"
	"github.com/rollingtrayco/storefront/internal/catalog"
	"github.com/rollingtrayco/storefront/internal/config"
	"github.com/rollingtrayco/storefront/internal/session"
	"github.com/rollingtrayco/storefront/internal/shopify"
	"github.com/rollingtrayco/storefront/pkg/logger"
	"github.com/spf13/cobra"
)

var Version = "dev"

// app holds what every subcommand needs. It is built lazily so --help works offline.
type app struct {
	catalog *catalog.Loader
	carts   *cart.Synchronizer
	closer  io.Closer
}

type builder func(ctx context.Context, storeKind string) (*app, error)

type rootOptions struct {
	session string
	store   string
	json    bool
}

func main() {
	if err := newRootCmd(buildApp).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(build builder) *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "storefrontctl",
		Short:         "Inspect the storefront catalog and drive carts from the terminal",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.session, "session", "s", "cli", "Session the cart id is persisted under")
	rootCmd.PersistentFlags().StringVar(&opts.store, "store", session.KindSQLite, "Session store (memory, redis, sqlite)")
	rootCmd.PersistentFlags().BoolVarP(&opts.json, "json", "j", false, "Output as JSON")

	rootCmd.AddCommand(productsCmd(build, opts))
	rootCmd.AddCommand(productCmd(build, opts))
	rootCmd.AddCommand(cartCmd(build, opts))

	return rootCmd
}

func buildApp(ctx context.Context, storeKind string) (*app, error) {
	cfg := config.Load()

	log := logger.New(logger.Options{
		Service: "storefrontctl",
		Env:     cfg.AppEnv,
		Level:   "warn",
		Output:  os.Stderr,
	})

	store, closer, err := session.Open(ctx, session.Options{
		Kind:          storeKind,
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		SQLitePath:    cfg.SQLitePath,
	})
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}

	api := shopify.NewClient(shopify.Config{
		Domain:             cfg.ShopifyDomain,
		Token:              cfg.ShopifyToken,
		APIVersion:         cfg.ShopifyAPIVersion,
		BreakerMaxFailures: cfg.BreakerMaxFailures,
		BreakerOpenTimeout: cfg.BreakerOpenTimeout,
	}, log)

	return &app{
		catalog: catalog.NewLoader(api, log),
		carts:   cart.NewSynchronizer(api, store, log),
		closer:  closer,
	}, nil
}

// withApp builds the app, runs fn and releases the store.
func withApp(cmd *cobra.Command, build builder, opts *rootOptions, fn func(ctx context.Context, a *app) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := build(ctx, opts.store)
	if err != nil {
		return err
	}
	defer a.closer.Close()

	return fn(ctx, a)
}
