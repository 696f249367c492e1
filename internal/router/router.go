package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/evolvehq/studyspace/internal/config"
	"github.com/evolvehq/studyspace/internal/handler"
	"github.com/evolvehq/studyspace/internal/middleware"
	"github.com/evolvehq/studyspace/internal/model"
)

// API bundles everything the route table needs. Redis may be nil, in
// which case the cache and rate-limit middleware pass requests through.
type API struct {
	Cfg   config.Config
	Redis *redis.Client

	Health        *handler.HealthHandler
	Init          *handler.InitHandler
	Auth          *handler.AuthHandler
	Members       *handler.MemberHandler
	Seats         *handler.SeatHandler
	Subscriptions *handler.SubscriptionHandler
	Waiting       *handler.WaitingHandler
	Verify        *handler.VerifyHandler
	Expenses      *handler.ExpenseHandler
	Settings      *handler.SettingHandler
	Logs          *handler.LogHandler
	Users         *handler.UserHandler
	Notifications *handler.NotificationHandler
}

// Register wires the whole route table onto e.
func Register(e *echo.Echo, api API) {
	registerPublic(e, api)
	registerAuth(e, api)
	registerProtected(e, api)
}

// registerPublic exposes the endpoints that need no session: probes,
// metrics and the idempotent seed.
func registerPublic(e *echo.Echo, api API) {
	e.GET("/healthz", api.Health.Check)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.POST("/init", api.Init.Seed)
}

// registerAuth mounts the session endpoints under /v1/auth. Logout
// accepts either a refresh token in the body or a bearer token, so it
// stays outside the JWT group.
func registerAuth(e *echo.Echo, api API) {
	g := e.Group("/v1/auth")
	g.POST("/login", api.Auth.Login)
	g.POST("/refresh", api.Auth.Refresh)
	g.POST("/logout", api.Auth.Logout)

	me := e.Group("/v1")
	me.Use(middleware.JWTAuth(api.Cfg.JWTSecret))
	me.GET("/me", api.Auth.Me)
}

// registerProtected mounts the back-office surface under /v1 behind
// JWT auth, with role tiers layered per group.
func registerProtected(e *echo.Echo, api API) {
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), api.Redis)
	limit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), api.Redis)

	v1 := e.Group("/v1")
	v1.Use(middleware.JWTAuth(api.Cfg.JWTSecret))
	v1.Use(middleware.RequireRole(model.RoleAdmin, model.RoleManager, model.RoleMember))

	v1.GET("/members", api.Members.List)
	v1.POST("/members", api.Members.Create)
	v1.PUT("/members/:id", api.Members.Update)
	v1.DELETE("/members/:id", api.Members.Delete)

	v1.GET("/seats", api.Seats.List, cache)

	v1.GET("/subscriptions", api.Subscriptions.List)
	v1.POST("/subscriptions", api.Subscriptions.Create)
	v1.GET("/subscriptions/:id/payments", api.Subscriptions.PaymentTrail)
	v1.PATCH("/subscriptions/:id", api.Subscriptions.ChangeSeat)
	v1.PUT("/subscriptions/:id", api.Subscriptions.End)

	v1.GET("/waiting", api.Waiting.List)
	v1.POST("/waiting", api.Waiting.Create)
	v1.DELETE("/waiting/:id", api.Waiting.Delete)

	v1.GET("/verify", api.Verify.Verify, limit, cache)
	v1.GET("/verify/search", api.Verify.Search, limit)

	v1.GET("/notifications", api.Notifications.List)
	v1.PATCH("/notifications/:id", api.Notifications.MarkRead)

	// Self-service profile edits; the handler enforces who may touch
	// which account.
	v1.PUT("/users/:id", api.Users.Update)

	mgr := e.Group("/v1")
	mgr.Use(middleware.JWTAuth(api.Cfg.JWTSecret))
	mgr.Use(middleware.RequireRole(model.RoleAdmin, model.RoleManager))
	mgr.GET("/expenses", api.Expenses.List)
	mgr.POST("/expenses", api.Expenses.Create)
	mgr.PUT("/expenses/:id", api.Expenses.Update)
	mgr.DELETE("/expenses/:id", api.Expenses.Delete)

	admin := e.Group("/v1")
	admin.Use(middleware.JWTAuth(api.Cfg.JWTSecret))
	admin.Use(middleware.RequireRole(model.RoleAdmin))
	admin.GET("/settings", api.Settings.Get)
	admin.POST("/settings", api.Settings.Put)
	admin.GET("/logs", api.Logs.List)
	admin.GET("/users", api.Users.List)
	admin.POST("/users", api.Users.Create)
	admin.GET("/users/:id", api.Users.Get)
	admin.DELETE("/users/:id", api.Users.Delete)
}
