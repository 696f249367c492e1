package handler // handler implements the HTTP endpoints

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/evolvehq/studyspace/internal/repository"
)

// dbTimeout bounds every database call made from a handler.
const dbTimeout = 5 * time.Second

// reqCtx derives a bounded context from the request.
func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// currentUserID reads the authenticated user id set by the JWT
// middleware. JSON numbers decode as float64, so several shapes are
// accepted; zero means unauthenticated.
func currentUserID(c echo.Context) uint64 {
	switch v := c.Get("user_id").(type) {
	case float64:
		return uint64(v)
	case uint64:
		return v
	case int64:
		return uint64(v)
	case int:
		return uint64(v)
	case string:
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			return n
		}
	}
	return 0
}

// currentRole reads the role claim set by the JWT middleware.
func currentRole(c echo.Context) string {
	role, _ := c.Get("role").(string)
	return role
}

// actor resolves the audit identity of the requesting user: their
// email when it can be loaded, a stable fallback otherwise.
func actor(ctx context.Context, users *repository.UserRepo, c echo.Context) string {
	uid := currentUserID(c)
	if uid == 0 {
		return "system"
	}
	u, err := users.GetByID(ctx, uid)
	if err != nil {
		return fmt.Sprintf("user:%d", uid)
	}
	return u.Email
}

// pathID parses the :id path parameter.
func pathID(c echo.Context) (uint64, error) {
	return strconv.ParseUint(c.Param("id"), 10, 64)
}
