package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/rollingtrayco/storefront/internal/domain"
	"github.com/rollingtrayco/storefront/internal/shopify"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

const (
	// FetchTimeout bounds a shared fetch, which outlives the caller that started it.
	FetchTimeout = 15 * time.Second

	placeholderImageBase = "https://placehold.co/600x400/111111/FFFFFF?text="
	untitledProduct      = "Untitled Product"
)

var (
	ErrCatalogUnavailable = errors.New("catalog unavailable")
	ErrNoProducts         = errors.New("no products found")
	ErrProductNotFound    = errors.New("product not found")
	ErrNotPurchasable     = errors.New("product has no purchasable variant")
)

type Loader struct {
	api          shopify.Executor
	log          *slog.Logger
	sfg          singleflight.Group // Coalesces identical in-flight fetches
	fetchTimeout time.Duration
}

func NewLoader(api shopify.Executor, log *slog.Logger) *Loader {
	if log == nil {
		log = slog.Default()
	}
	return &Loader{api: api, log: log, fetchTimeout: FetchTimeout}
}

// shared runs fn once per key for all concurrent callers. fn gets a context detached from any
// single caller, so one shopper leaving does not fail the others; each caller still stops
// waiting when its own context ends.
func (l *Loader) shared(ctx context.Context, key string, fn func(ctx context.Context) (interface{}, error)) (interface{}, error) {
	ch := l.sfg.DoChan(key, func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.fetchTimeout)
		defer cancel()
		return fn(fetchCtx)
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", ErrCatalogUnavailable, ctx.Err())
	case res := <-ch:
		return res.Val, res.Err
	}
}

// FetchProductList returns the first page of purchasable products in API order.
func (l *Loader) FetchProductList(ctx context.Context) ([]domain.Product, error) {
	v, err := l.shared(ctx, "list", func(ctx context.Context) (interface{}, error) {
		resp := l.api.Execute(ctx, shopify.ProductsQuery, map[string]any{"first": shopify.ProductPageSize})

		var data shopify.ProductsData
		if err := shopify.Decode(resp, &data); err != nil {
			l.log.ErrorContext(ctx, "fetch products failed", slog.Any("err", err))
			return nil, fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
		}
		if data.Products == nil || len(data.Products.Edges) == 0 {
			return nil, ErrNoProducts
		}

		products := make([]domain.Product, 0, len(data.Products.Edges))
		for _, edge := range data.Products.Edges {
			p, ok := MapProduct(edge.Node)
			if !ok {
				l.log.DebugContext(ctx, "skipping product without variant", slog.String("handle", edge.Node.Handle))
				continue
			}
			products = append(products, p)
		}
		if len(products) == 0 {
			return nil, ErrNoProducts
		}
		return products, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.Product), nil
}

// FetchProductDetail loads one product by handle for the detail modal.
func (l *Loader) FetchProductDetail(ctx context.Context, handle string) (*domain.Product, error) {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return nil, ErrProductNotFound
	}

	v, err := l.shared(ctx, "handle:"+handle, func(ctx context.Context) (interface{}, error) {
		resp := l.api.Execute(ctx, shopify.ProductByHandleQuery, map[string]any{"handle": handle})

		var data shopify.ProductData
		if err := shopify.Decode(resp, &data); err != nil {
			l.log.ErrorContext(ctx, "fetch product failed", slog.String("handle", handle), slog.Any("err", err))
			return nil, fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
		}
		if data.Product == nil {
			return nil, ErrProductNotFound
		}

		p, ok := MapProduct(*data.Product)
		if !ok {
			return nil, ErrNotPurchasable
		}
		return &p, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Product), nil
}

// MapProduct converts an API node into the view model. It reports false for products
// without a variant, which cannot be purchased and are never rendered.
func MapProduct(n shopify.ProductNode) (domain.Product, bool) {
	if n.Variants == nil || len(n.Variants.Edges) == 0 {
		return domain.Product{}, false
	}
	v := n.Variants.Edges[0].Node

	title := n.Title
	if title == "" {
		title = untitledProduct
	}

	p := domain.Product{
		ID:              n.ID,
		Title:           title,
		Handle:          n.Handle,
		DescriptionHTML: n.DescriptionHTML,
		Variant: domain.Variant{
			ID:               v.ID,
			AvailableForSale: v.AvailableForSale,
		},
	}
	if v.QuantityAvailable != nil {
		p.Variant.QuantityAvailable = *v.QuantityAvailable
	}
	if n.PriceRange != nil {
		p.Price = ParseMoney(n.PriceRange.MinVariantPrice)
	}

	if n.Images != nil {
		for _, edge := range n.Images.Edges {
			if edge.Node.URL == "" {
				continue
			}
			alt := title
			if edge.Node.AltText != nil && *edge.Node.AltText != "" {
				alt = *edge.Node.AltText
			}
			p.Images = append(p.Images, domain.Image{URL: edge.Node.URL, AltText: alt})
		}
	}
	if len(p.Images) == 0 {
		p.Images = []domain.Image{{URL: PlaceholderImageURL(title), AltText: title}}
	}
	return p, true
}

func PlaceholderImageURL(title string) string {
	return placeholderImageBase + url.QueryEscape(title)
}

// ParseMoney reads an API money value; a missing or malformed amount is zero.
func ParseMoney(m *shopify.MoneyV2) domain.Money {
	if m == nil {
		return domain.Money{Amount: decimal.Zero}
	}
	amount, err := decimal.NewFromString(m.Amount)
	if err != nil {
		amount = decimal.Zero
	}
	return domain.Money{Amount: amount, CurrencyCode: m.CurrencyCode}
}
