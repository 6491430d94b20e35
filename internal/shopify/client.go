package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/rollingtrayco/storefront/pkg/circuitbreaker"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const tokenHeader = "X-Shopify-Storefront-Access-Token"

type Config struct {
	Domain     string
	Token      string
	APIVersion string
	// Endpoint overrides the URL derived from Domain and APIVersion.
	Endpoint string

	BreakerMaxFailures uint32
	BreakerOpenTimeout time.Duration
}

type Request struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type Response struct {
	Data   json.RawMessage `json:"data"`
	Errors []GraphQLError  `json:"errors,omitempty"`

	kind  ErrorKind
	cause error
}

// Err reports the response's error list as an *APIError, or nil when Data can be read.
func (r *Response) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	kind := r.kind
	if kind == 0 {
		kind = KindGraphQL
	}
	msgs := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		msgs = append(msgs, e.Message)
	}
	return &APIError{Kind: kind, Messages: msgs, Cause: r.cause}
}

// Executor sends one GraphQL document. Client is the production implementation.
type Executor interface {
	Execute(ctx context.Context, query string, variables map[string]any) *Response
}

type Client struct {
	endpoint   string
	token      string
	httpClient *http.Client
	breaker    *circuitbreaker.Breaker[[]byte]
	log        *slog.Logger
}

func NewClient(cfg Config, log *slog.Logger) *Client {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://%s/api/%s/graphql.json", cfg.Domain, cfg.APIVersion)
	}
	if log == nil {
		log = slog.Default()
	}

	return &Client{
		endpoint: endpoint,
		token:    cfg.Token,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		breaker: circuitbreaker.New[[]byte](circuitbreaker.Settings{
			Name:        "shopify-storefront",
			MaxFailures: cfg.BreakerMaxFailures,
			OpenTimeout: cfg.BreakerOpenTimeout,
			Logger:      log,
		}),
		log: log,
	}
}

// Execute performs one POST. It never returns nil and never retries: transport failures come
// back as a single synthetic error entry so callers only ever inspect Response.Err.
func (c *Client) Execute(ctx context.Context, query string, variables map[string]any) *Response {
	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.post(ctx, Request{Query: query, Variables: variables})
	})
	if err != nil {
		c.log.ErrorContext(ctx, "shopify request failed", slog.Any("err", err))
		return TransportFailure(err)
	}

	var resp Response
	if err := json.Unmarshal(body, &resp); err != nil {
		c.log.ErrorContext(ctx, "shopify response undecodable", slog.Any("err", err))
		return TransportFailure(fmt.Errorf("decode response: %w", err))
	}
	if len(resp.Errors) > 0 {
		resp.kind = KindGraphQL
		c.log.WarnContext(ctx, "shopify returned errors", slog.Any("errors", resp.Errors))
	}
	return &resp
}

func (c *Client) post(ctx context.Context, req Request) ([]byte, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set(tokenHeader, c.token)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, truncate(raw, 256))
	}
	return raw, nil
}

// Decode unmarshals a successful response's data into out.
func Decode(resp *Response, out any) error {
	if err := resp.Err(); err != nil {
		return err
	}
	if len(resp.Data) == 0 || string(resp.Data) == "null" {
		return &APIError{Kind: KindGraphQL, Messages: []string{"empty data"}}
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return &APIError{Kind: KindTransport, Messages: []string{NetworkErrorMessage}, Cause: fmt.Errorf("decode data: %w", err)}
	}
	return nil
}

// TransportFailure builds the synthetic response for a failed call.
func TransportFailure(cause error) *Response {
	return &Response{
		Errors: []GraphQLError{{Message: NetworkErrorMessage}},
		kind:   KindTransport,
		cause:  cause,
	}
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
