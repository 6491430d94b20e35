// Package shopifytest provides an in-process shopify.Executor for tests.
package shopifytest

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/rollingtrayco/storefront/internal/shopify"
)

type Call struct {
	Query     string
	Variables map[string]any
}

// HandlerFunc answers one call. Returning nil produces a transport failure.
type HandlerFunc func(vars map[string]any) *shopify.Response

type Fake struct {
	mu       sync.Mutex
	handlers map[string]HandlerFunc
	calls    []Call
}

func New() *Fake {
	return &Fake{handlers: make(map[string]HandlerFunc)}
}

// On registers the handler for a query document.
func (f *Fake) On(query string, h HandlerFunc) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[query] = h
	return f
}

func (f *Fake) Execute(_ context.Context, query string, variables map[string]any) *shopify.Response {
	f.mu.Lock()
	f.calls = append(f.calls, Call{Query: query, Variables: variables})
	h := f.handlers[query]
	f.mu.Unlock()

	if h == nil {
		return TransportFailure()
	}
	if resp := h(variables); resp != nil {
		return resp
	}
	return TransportFailure()
}

func (f *Fake) Calls(query string) []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Call
	for _, c := range f.calls {
		if c.Query == query {
			out = append(out, c)
		}
	}
	return out
}

// Data wraps v as a successful response.
func Data(v any) *shopify.Response {
	raw, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return &shopify.Response{Data: raw}
}

// RawData wraps a JSON document as a successful response.
func RawData(js string) *shopify.Response {
	return &shopify.Response{Data: json.RawMessage(js)}
}

func Errors(messages ...string) *shopify.Response {
	resp := &shopify.Response{}
	for _, m := range messages {
		resp.Errors = append(resp.Errors, shopify.GraphQLError{Message: m})
	}
	return resp
}

// TransportFailure mimics what shopify.Client returns when the upstream is unreachable.
func TransportFailure() *shopify.Response {
	return shopify.TransportFailure(nil)
}
