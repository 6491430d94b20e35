package shopify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewClient(Config{
		Endpoint:           srv.URL,
		Token:              "test-token",
		BreakerMaxFailures: 3,
		BreakerOpenTimeout: time.Minute,
	}, nil)
	return client, srv
}

func TestNewClient_DerivesEndpoint(t *testing.T) {
	c := NewClient(Config{Domain: "shop.myshopify.com", APIVersion: "2024-04"}, nil)
	assert.Equal(t, "https://shop.myshopify.com/api/2024-04/graphql.json", c.endpoint)
}

func TestExecute_SendsQueryVariablesAndToken(t *testing.T) {
	var got Request
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "test-token", r.Header.Get(tokenHeader))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"data":{"product":{"id":"gid://shopify/Product/1","title":"Tray"}}}`))
	})

	resp := client.Execute(context.Background(), ProductByHandleQuery, map[string]any{"handle": "tray"})
	require.NoError(t, resp.Err())
	assert.Equal(t, ProductByHandleQuery, got.Query)
	assert.Equal(t, "tray", got.Variables["handle"])

	var data ProductData
	require.NoError(t, Decode(resp, &data))
	require.NotNil(t, data.Product)
	assert.Equal(t, "Tray", data.Product.Title)
}

func TestExecute_GraphQLErrors(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":null,"errors":[{"message":"Access denied"}]}`))
	})

	resp := client.Execute(context.Background(), ProductsQuery, nil)
	err := resp.Err()
	require.Error(t, err)
	assert.True(t, IsGraphQL(err))
	assert.False(t, IsTransport(err))
	assert.Contains(t, err.Error(), "Access denied")
}

func TestExecute_NonSuccessStatusIsTransportFailure(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`unauthorized`))
	})

	resp := client.Execute(context.Background(), ProductsQuery, nil)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, NetworkErrorMessage, resp.Errors[0].Message)
	assert.True(t, IsTransport(resp.Err()))
}

func TestExecute_UnreachableIsTransportFailure(t *testing.T) {
	client, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	srv.Close()

	resp := client.Execute(context.Background(), ProductsQuery, nil)
	require.NotNil(t, resp)
	assert.True(t, IsTransport(resp.Err()))
}

func TestExecute_UndecodableBodyIsTransportFailure(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>oops</html>`))
	})

	resp := client.Execute(context.Background(), ProductsQuery, nil)
	assert.True(t, IsTransport(resp.Err()))
}

func TestExecute_NoRetryAndBreakerOpens(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})

	for i := 0; i < 5; i++ {
		resp := client.Execute(context.Background(), ProductsQuery, nil)
		assert.True(t, IsTransport(resp.Err()))
	}

	assert.Equal(t, int32(3), calls.Load(), "one call per Execute until the breaker trips")
}

func TestExecute_CancelledCallersDoNotOpenBreaker(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"products":{"edges":[]}}}`))
	})

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	for i := 0; i < 5; i++ {
		resp := client.Execute(cancelled, ProductsQuery, nil)
		assert.True(t, IsTransport(resp.Err()))
	}

	resp := client.Execute(context.Background(), ProductsQuery, nil)
	require.NoError(t, resp.Err())
	assert.Equal(t, "closed", client.breaker.State())
}

func TestDecode_NullData(t *testing.T) {
	err := Decode(&Response{Data: json.RawMessage("null")}, &ProductData{})
	assert.True(t, IsGraphQL(err))
}

func TestUserErrorsErr(t *testing.T) {
	assert.NoError(t, UserErrorsErr(nil))

	err := UserErrorsErr([]UserError{{Field: []string{"lines"}, Message: "Merchandise does not exist"}})
	require.Error(t, err)
	assert.True(t, IsGraphQL(err))
	assert.Contains(t, err.Error(), "Merchandise does not exist")
}
