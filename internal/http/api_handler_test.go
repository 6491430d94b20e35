package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/rollingtrayco/storefront/internal/shopify"
	"github.com/rollingtrayco/storefront/internal/shopify/shopifytest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, shopifytest.New())

	rec := env.do(httptest.NewRequest(http.MethodGet, "/health", nil), "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.Nil(t, sessionCookie(rec), "health checks do not get a session")
}

func TestAPIListProducts(t *testing.T) {
	fake := shopifytest.New().On(shopify.ProductsQuery, func(map[string]any) *shopify.Response {
		return shopifytest.RawData(productsFixture)
	})
	env := newTestEnv(t, fake)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/v1/products", nil), sessionA)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp ProductsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "glass-tray", resp.Products[0].Handle)
	assert.Equal(t, "24.5", resp.Products[0].Price.Amount.String())
}

func TestAPIListProducts_EmptyCatalogIsNotAnError(t *testing.T) {
	fake := shopifytest.New().On(shopify.ProductsQuery, func(map[string]any) *shopify.Response {
		return shopifytest.RawData(`{"products": {"edges": []}}`)
	})
	env := newTestEnv(t, fake)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/v1/products", nil), sessionA)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"products":[],"count":0}`, rec.Body.String())
}

func TestAPIListProducts_TransportFailure(t *testing.T) {
	env := newTestEnv(t, shopifytest.New().On(shopify.ProductsQuery, nil))

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/v1/products", nil), sessionA)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, "service_unavailable", resp.Code)
	assert.Equal(t, GenericErrorMessage, resp.Error)
}

func TestAPIListProducts_GraphQLErrors(t *testing.T) {
	fake := shopifytest.New().On(shopify.ProductsQuery, func(map[string]any) *shopify.Response {
		return shopifytest.Errors("Access denied")
	})
	env := newTestEnv(t, fake)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/v1/products", nil), sessionA)

	require.Equal(t, http.StatusBadGateway, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, "upstream_error", resp.Code)
	assert.NotContains(t, resp.Error, "Access denied")
}

func TestAPIGetProduct_NotFound(t *testing.T) {
	fake := shopifytest.New().On(shopify.ProductByHandleQuery, func(map[string]any) *shopify.Response {
		return shopifytest.RawData(`{"product": null}`)
	})
	env := newTestEnv(t, fake)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/v1/products/missing", nil), sessionA)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decodeError(t, rec).Code)
}

func TestAPICart_AddAndRemove(t *testing.T) {
	const lineID = "gid://shopify/CartLine/1?cart=c1"
	fake := createsEmptyCart(shopifytest.New()).
		On(shopify.CartLinesAddMutation, func(map[string]any) *shopify.Response {
			return payload("cartLinesAdd", cartNode(lineID))
		}).
		On(shopify.CartLinesRemoveMutation, func(map[string]any) *shopify.Response {
			return payload("cartLinesRemove", cartNode())
		})
	env := newTestEnv(t, fake)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil), sessionA)
	require.Equal(t, http.StatusOK, rec.Code)
	var empty CartResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&empty))
	assert.Equal(t, testCartID, empty.ID)
	assert.Equal(t, 0, empty.TotalQuantity)
	assert.False(t, empty.CheckoutEnabled)

	rec = env.do(jsonRequest(http.MethodPost, "/api/v1/cart/lines", `{"variant_id":"gid://shopify/ProductVariant/11"}`), sessionA)
	require.Equal(t, http.StatusOK, rec.Code)
	var added CartResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&added))
	assert.Equal(t, 1, added.TotalQuantity)
	assert.Equal(t, "£24.50", added.SubtotalDisplay)
	assert.True(t, added.CheckoutEnabled)
	require.Len(t, added.Lines, 1)
	assert.Equal(t, lineID, added.Lines[0].ID)

	rec = env.do(httptest.NewRequest(http.MethodDelete, "/api/v1/cart/lines/"+url.PathEscape(lineID), nil), sessionA)
	require.Equal(t, http.StatusOK, rec.Code)
	var removed CartResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&removed))
	assert.Equal(t, 0, removed.TotalQuantity)
	assert.Empty(t, removed.Lines)

	calls := fake.Calls(shopify.CartLinesRemoveMutation)
	require.Len(t, calls, 1)
	assert.Equal(t, []string{lineID}, calls[0].Variables["lineIds"])
	assert.Len(t, fake.Calls(shopify.CartCreateMutation), 1)
}

func TestAPICart_AddLineValidation(t *testing.T) {
	fake := createsEmptyCart(shopifytest.New())
	env := newTestEnv(t, fake)

	rec := env.do(jsonRequest(http.MethodPost, "/api/v1/cart/lines", `{`), sessionA)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_request", decodeError(t, rec).Code)

	rec = env.do(jsonRequest(http.MethodPost, "/api/v1/cart/lines", `{"variant_id":"  "}`), sessionA)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_argument", decodeError(t, rec).Code)

	assert.Empty(t, fake.Calls(shopify.CartLinesAddMutation))
}

func TestAPICart_UserErrorsAreUpstreamErrors(t *testing.T) {
	fake := createsEmptyCart(shopifytest.New()).On(shopify.CartLinesAddMutation, func(map[string]any) *shopify.Response {
		return shopifytest.Data(map[string]any{"cartLinesAdd": map[string]any{
			"cart":       cartNode(),
			"userErrors": []map[string]any{{"field": []string{"lines"}, "message": "Variant is sold out"}},
		}})
	})
	env := newTestEnv(t, fake)

	rec := env.do(jsonRequest(http.MethodPost, "/api/v1/cart/lines", `{"variant_id":"v1"}`), sessionA)

	require.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "upstream_error", decodeError(t, rec).Code)
}
