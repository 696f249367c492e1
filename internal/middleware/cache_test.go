package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evolvehq/studyspace/internal/config"
)

func cacheTestConfig() config.CacheConfig {
	return config.CacheConfig{
		Enabled:      true,
		Methods:      map[string]bool{"GET": true},
		TTL:          15 * time.Second,
		KeyStrategy:  "route_query",
		Prefix:       "evolve:cache",
		MaxBodyBytes: 1 << 20,
	}
}

func newCacheContext(e *echo.Echo, target string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/verify")
	return c, rec
}

func TestCacheMissStoresResponse(t *testing.T) {
	e := echo.New()
	cfg := cacheTestConfig()
	rdb, mock := redismock.NewClientMock()

	c, rec := newCacheContext(e, "/v1/verify?memberId=EVOLVE202401001")
	key := cacheKeyFrom(cfg, c)

	mock.ExpectGet(key).RedisNil()
	mock.Regexp().ExpectSetEx(key, `(?s).*`, cfg.TTL).SetVal("OK")

	handlerRan := false
	mw := NewRedisCache(cfg, rdb)
	err := mw(func(c echo.Context) error {
		handlerRan = true
		return c.JSON(http.StatusOK, echo.Map{"valid": true})
	})(c)

	require.NoError(t, err)
	assert.True(t, handlerRan)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.Contains(t, rec.Body.String(), `"valid":true`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCacheHitReplaysStoredResponse(t *testing.T) {
	e := echo.New()
	cfg := cacheTestConfig()
	rdb, mock := redismock.NewClientMock()

	c, rec := newCacheContext(e, "/v1/verify?memberId=EVOLVE202401001")
	key := cacheKeyFrom(cfg, c)

	hdr := http.Header{}
	hdr.Set("Content-Type", "application/json; charset=UTF-8")
	payload, err := encodePayload(http.StatusOK, hdr, []byte(`{"valid":true}`))
	require.NoError(t, err)
	mock.ExpectGet(key).SetVal(string(payload))

	handlerRan := false
	mw := NewRedisCache(cfg, rdb)
	err = mw(func(c echo.Context) error {
		handlerRan = true
		return c.JSON(http.StatusOK, echo.Map{"valid": false})
	})(c)

	require.NoError(t, err)
	assert.False(t, handlerRan, "hit must not reach the handler")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
	assert.JSONEq(t, `{"valid":true}`, rec.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCacheSkipsUnlistedMethods(t *testing.T) {
	e := echo.New()
	cfg := cacheTestConfig()
	rdb, mock := redismock.NewClientMock()

	req := httptest.NewRequest(http.MethodPost, "/v1/verify", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/verify")

	mw := NewRedisCache(cfg, rdb)
	err := mw(func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"ok": true})
	})(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Cache"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCacheDisabledWithoutRedis(t *testing.T) {
	e := echo.New()
	cfg := cacheTestConfig()

	c, rec := newCacheContext(e, "/v1/verify")
	mw := NewRedisCache(cfg, nil)
	err := mw(func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"ok": true})
	})(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Cache"))
}

func TestPayloadRoundTripRejectsGarbage(t *testing.T) {
	_, _, _, ok := decodePayload([]byte("short"))
	assert.False(t, ok)

	status, hdr, body, ok := decodePayload(mustEncode(t))
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "application/json", hdr.Get("Content-Type"))
	assert.Equal(t, `{"a":1}`, string(body))
}

func mustEncode(t *testing.T) []byte {
	t.Helper()
	hdr := http.Header{}
	hdr.Set("Content-Type", "application/json")
	bs, err := encodePayload(http.StatusOK, hdr, []byte(`{"a":1}`))
	require.NoError(t, err)
	return bs
}
