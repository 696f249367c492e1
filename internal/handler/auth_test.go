package handler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evolvehq/studyspace/internal/config"
	"github.com/evolvehq/studyspace/internal/model"
	"github.com/evolvehq/studyspace/internal/repository"
	"github.com/evolvehq/studyspace/internal/utils"
)

type fakeUserStore struct {
	users map[uint64]model.User
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (model.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, fmt.Errorf("get user by email: %w", repository.ErrUserNotFound)
}

func (f *fakeUserStore) GetByID(_ context.Context, id uint64) (model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return model.User{}, fmt.Errorf("get user by id: %w", repository.ErrUserNotFound)
	}
	return u, nil
}

type fakeTokenStore struct {
	valid         map[string]uint64 // hash -> user id
	storedFor     []uint64
	revokedHashes []string
	revokedAll    []uint64
}

func (f *fakeTokenStore) StoreRefresh(_ context.Context, userID uint64, tokenHash string, _ time.Time) error {
	if f.valid == nil {
		f.valid = map[string]uint64{}
	}
	f.valid[tokenHash] = userID
	f.storedFor = append(f.storedFor, userID)
	return nil
}

func (f *fakeTokenStore) ValidateRefresh(_ context.Context, tokenHash string) (uint64, error) {
	uid, ok := f.valid[tokenHash]
	if !ok {
		return 0, fmt.Errorf("unknown refresh token")
	}
	return uid, nil
}

func (f *fakeTokenStore) RevokeByHash(_ context.Context, tokenHash string) error {
	f.revokedHashes = append(f.revokedHashes, tokenHash)
	delete(f.valid, tokenHash)
	return nil
}

func (f *fakeTokenStore) RevokeAllForUser(_ context.Context, userID uint64) error {
	f.revokedAll = append(f.revokedAll, userID)
	return nil
}

func authTestConfig() config.Config {
	return config.Config{
		JWTSecret:      "test-secret",
		AccessTTLMin:   15,
		RefreshTTLDays: 7,
		BcryptCost:     4,
	}
}

func newAuthFixture(t *testing.T) (*AuthHandler, *fakeUserStore, *fakeTokenStore) {
	t.Helper()
	hash, err := utils.HashPassword("s3cret", 4)
	require.NoError(t, err)
	users := &fakeUserStore{users: map[uint64]model.User{
		42: {ID: 42, Email: "manager@example.com", Name: "Manager", Role: model.RoleManager, PasswordHash: hash},
	}}
	tokens := &fakeTokenStore{}
	return NewAuthHandler(authTestConfig(), users, tokens), users, tokens
}

func postLogout(e *echo.Echo, body string) (echo.Context, *httptest.ResponseRecorder) {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(http.MethodPost, "/v1/auth/logout", nil)
	} else {
		req = httptest.NewRequest(http.MethodPost, "/v1/auth/logout", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestLogoutWithBearerTokenRevokesAllSessions(t *testing.T) {
	e := echo.New()
	h, _, tokens := newAuthFixture(t)

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, 42, model.RoleManager, h.Cfg.AccessTTLMin)
	require.NoError(t, err)

	// No refresh token in the body; the route sits outside the JWT
	// middleware, so the handler has to read the header itself.
	c, rec := postLogout(e, "")
	c.Request().Header.Set("Authorization", "Bearer "+access.Token)

	require.NoError(t, h.Logout(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []uint64{42}, tokens.revokedAll)
	assert.Empty(t, tokens.revokedHashes)
}

func TestLogoutWithRefreshTokenRevokesThatSession(t *testing.T) {
	e := echo.New()
	h, _, tokens := newAuthFixture(t)

	raw := "0123456789abcdef0123456789abcdef"
	hash := utils.HashRefreshRaw(raw)
	tokens.valid = map[string]uint64{hash: 42}

	c, rec := postLogout(e, fmt.Sprintf(`{"refresh_token":%q}`, raw))
	require.NoError(t, h.Logout(c))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []string{hash}, tokens.revokedHashes)
	assert.Empty(t, tokens.revokedAll)
}

func TestLogoutWithoutCredentials(t *testing.T) {
	e := echo.New()
	h, _, tokens := newAuthFixture(t)

	c, rec := postLogout(e, "")
	require.NoError(t, h.Logout(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, tokens.revokedAll)
	assert.Empty(t, tokens.revokedHashes)
}

func TestLogoutRejectsForgedBearerToken(t *testing.T) {
	e := echo.New()
	h, _, tokens := newAuthFixture(t)

	forged, err := utils.NewAccessToken("wrong-secret", 42, model.RoleManager, 15)
	require.NoError(t, err)

	c, rec := postLogout(e, "")
	c.Request().Header.Set("Authorization", "Bearer "+forged.Token)

	require.NoError(t, h.Logout(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, tokens.revokedAll)
}

func TestLoginUnknownEmailIsUnauthorized(t *testing.T) {
	e := echo.New()
	h, _, _ := newAuthFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login",
		strings.NewReader(`{"email":"nobody@example.com","password":"s3cret"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	require.NoError(t, h.Login(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginIssuesTokenPair(t *testing.T) {
	e := echo.New()
	h, _, tokens := newAuthFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login",
		strings.NewReader(`{"email":"manager@example.com","password":"s3cret"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	require.NoError(t, h.Login(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"manager@example.com"`)
	assert.Equal(t, []uint64{42}, tokens.storedFor)
}
