package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evolvehq/studyspace/internal/config"
)

func rateTestConfig() config.RateLimitConfig {
	return config.RateLimitConfig{
		Enabled:        true,
		Capacity:       5,
		RefillTokens:   1,
		RefillInterval: time.Second,
		TTL:            time.Minute,
		KeyStrategy:    "ip_route",
		Prefix:         "evolve:rl",
	}
}

func TestBuildRateKeyStrategies(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/verify", nil)
	req.Header.Set(echo.HeaderXRealIP, "203.0.113.9")
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/v1/verify")

	cfg := rateTestConfig()

	cfg.KeyStrategy = "ip"
	assert.Equal(t, "evolve:rl:ip:203.0.113.9", buildRateKey(cfg, c))

	cfg.KeyStrategy = "route"
	assert.Equal(t, "evolve:rl:route:GET /v1/verify", buildRateKey(cfg, c))

	cfg.KeyStrategy = "ip_route"
	assert.Equal(t, "evolve:rl:ip:203.0.113.9:route:GET /v1/verify", buildRateKey(cfg, c))

	// Unknown strategies fall back to ip_route.
	cfg.KeyStrategy = "bogus"
	assert.Equal(t, "evolve:rl:ip:203.0.113.9:route:GET /v1/verify", buildRateKey(cfg, c))
}

func TestAsInt64(t *testing.T) {
	assert.Equal(t, int64(7), asInt64(int64(7)))
	assert.Equal(t, int64(7), asInt64(7))
	assert.Equal(t, int64(7), asInt64(float64(7.9)))
	assert.Equal(t, int64(7), asInt64("7"))
	assert.Equal(t, int64(0), asInt64("seven"))
	assert.Equal(t, int64(0), asInt64(nil))
}

func TestTokenBucketDisabledPassesThrough(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/verify", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	cfg := rateTestConfig()
	cfg.Enabled = false

	mw := NewTokenBucket(cfg, nil)
	err := mw(func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"ok": true})
	})(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
}

func TestTokenBucketNilRedisPassesThrough(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/verify", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	mw := NewTokenBucket(rateTestConfig(), nil)
	err := mw(func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"ok": true})
	})(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
}
