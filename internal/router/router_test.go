package router

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/iliyamo/order-desk/internal/config"
	"github.com/iliyamo/order-desk/internal/database"
)

func newServer(t *testing.T) *echo.Echo {
	t.Helper()

	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "router.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return New(Deps{
		DB:        db,
		Cache:     config.CacheConfig{Enabled: true, Methods: map[string]bool{"GET": true}},
		RateLimit: config.RateLimitConfig{Enabled: true, Capacity: 1},
	})
}

func serve(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	e := newServer(t)

	rec := serve(e, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestRoutesMounted(t *testing.T) {
	e := newServer(t)

	for _, path := range []string{"/customers", "/customers/"} {
		rec := serve(e, http.MethodPost, path, `{"name":"Ada","phone":"1"}`)
		assert.Equal(t, http.StatusCreated, rec.Code, path)
	}
	for _, path := range []string{"/items", "/items/"} {
		rec := serve(e, http.MethodPost, path, `{"name":"Item `+path+`","price":1}`)
		assert.Equal(t, http.StatusCreated, rec.Code, path)
	}

	rec := serve(e, http.MethodPost, "/orders/", `{"notes":"n","cust_id":1}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, int64(1), gjson.Get(rec.Body.String(), "order_id").Int())

	rec = serve(e, http.MethodPost, "/orders/1/items", `{"item_id":2}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = serve(e, http.MethodGet, "/orders/1/items", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Item /items/", gjson.Get(rec.Body.String(), "items.0.name").String())

	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/customers/2", "").Code)
	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/items/1", "").Code)
	assert.Equal(t, http.StatusNotFound, serve(e, http.MethodGet, "/nope", "").Code)
}
