package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/order-desk/internal/config"
)

func newContext(method, target string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(method, target, nil)
	req.Header.Set("X-Real-IP", "10.0.0.7")
	return e.NewContext(req, httptest.NewRecorder())
}

func TestCacheKeyUsesConcretePath(t *testing.T) {
	cfg := config.CacheConfig{Prefix: "cache", KeyStrategy: "path_query"}

	a := newContext(http.MethodGet, "/orders/1")
	a.SetPath("/orders/:id")
	b := newContext(http.MethodGet, "/orders/2")
	b.SetPath("/orders/:id")

	assert.NotEqual(t, cacheKeyFrom(cfg, a, 0), cacheKeyFrom(cfg, b, 0))
	assert.Equal(t, cacheKeyFrom(cfg, a, 0), cacheKeyFrom(cfg, a, 0))
	assert.True(t, strings.HasPrefix(cacheKeyFrom(cfg, a, 0), "cache:0:"))
}

func TestCacheKeyChangesWithGeneration(t *testing.T) {
	cfg := config.CacheConfig{Prefix: "cache"}
	c := newContext(http.MethodGet, "/items/3")

	assert.NotEqual(t, cacheKeyFrom(cfg, c, 1), cacheKeyFrom(cfg, c, 2))
	assert.Equal(t, "cache:gen", generationKey(cfg))
}

func TestCacheKeyQueryStrategy(t *testing.T) {
	withQuery := config.CacheConfig{Prefix: "p", KeyStrategy: "path_query"}
	pathOnly := config.CacheConfig{Prefix: "p", KeyStrategy: "path"}
	a := newContext(http.MethodGet, "/items/3?x=1")
	b := newContext(http.MethodGet, "/items/3?x=2")

	assert.NotEqual(t, cacheKeyFrom(withQuery, a, 0), cacheKeyFrom(withQuery, b, 0))
	assert.Equal(t, cacheKeyFrom(pathOnly, a, 0), cacheKeyFrom(pathOnly, b, 0))
}

func TestPayloadRoundTrip(t *testing.T) {
	hdr := http.Header{"Content-Type": {"application/json"}}
	payload, err := encodePayload(http.StatusOK, hdr, []byte(`{"id":1}`))
	require.NoError(t, err)

	status, gotHdr, body, ok := decodePayload(payload)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "application/json", gotHdr.Get("Content-Type"))
	assert.Equal(t, `{"id":1}`, string(body))

	_, _, _, ok = decodePayload([]byte{0, 1})
	assert.False(t, ok)
	_, _, _, ok = decodePayload([]byte{0, 0, 0, 200, 0, 0, 1, 0, '{'})
	assert.False(t, ok)
}

func TestCaptureWriterLimit(t *testing.T) {
	rec := httptest.NewRecorder()
	cw := &captureWriter{ResponseWriter: rec, status: http.StatusOK, limit: 4}

	_, err := cw.Write([]byte("abc"))
	require.NoError(t, err)
	_, err = cw.Write([]byte("defg"))
	require.NoError(t, err)

	assert.Equal(t, "abcd", cw.buf.String())
	assert.EqualValues(t, 7, cw.size)
	assert.Equal(t, "abcdefg", rec.Body.String())
}

func TestBuildRateKey(t *testing.T) {
	c := newContext(http.MethodPost, "/orders/")
	c.SetPath("/orders/")

	assert.Equal(t, "rl:ip:10.0.0.7", buildRateKey(config.RateLimitConfig{Prefix: "rl", KeyStrategy: "ip"}, c))
	assert.Equal(t, "rl:route:POST /orders/", buildRateKey(config.RateLimitConfig{Prefix: "rl", KeyStrategy: "route"}, c))
	assert.Equal(t, "rl:ip:10.0.0.7:route:POST /orders/", buildRateKey(config.RateLimitConfig{Prefix: "rl"}, c))
}

func TestRetryAfterSeconds(t *testing.T) {
	assert.Equal(t, 0, retryAfterSeconds(0))
	assert.Equal(t, 1, retryAfterSeconds(1))
	assert.Equal(t, 2, retryAfterSeconds(1001))
	assert.Equal(t, 0, retryAfterSeconds(-500))
}

func TestMiddlewarePassthroughWithoutRedis(t *testing.T) {
	e := echo.New()
	e.Use(NewTokenBucket(config.RateLimitConfig{Enabled: true}, nil))
	e.Use(NewRedisCache(config.CacheConfig{Enabled: true, Methods: map[string]bool{"GET": true}}, nil))
	e.GET("/ping", func(c echo.Context) error { return c.String(http.StatusOK, "pong") })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong", rec.Body.String())
	assert.Empty(t, rec.Header().Get("X-Cache"))
	assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
}
