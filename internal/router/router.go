package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/shivenk/gatepass/internal/config"
	"github.com/shivenk/gatepass/internal/handler"
	"github.com/shivenk/gatepass/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance. Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the operator login/logout endpoints.
// Unauthenticated operations live under /v1/auth; logout needs a valid
// token because it closes the caller's own session.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/login", a.Login)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole("guard", "admin"))
	auth.POST("/auth/logout", a.Logout)
	auth.GET("/me", a.Me)
}

// RegisterGate registers the entry lifecycle and query endpoints. All of
// them require an authenticated guard or admin. Read endpoints sit
// behind the redis response cache; the whole group is rate limited.
func RegisterGate(e *echo.Echo, cfg config.Config, eh *handler.EntryHandler, qh *handler.QueryHandler, rdb *redis.Client) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(cfg.JWTSecret))
	g.Use(middleware.RequireRole("guard", "admin"))
	g.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	// Mutations.
	g.POST("/entries", eh.Create)
	g.POST("/entries/exit", eh.MarkExit)
	g.POST("/entries/:id/remarks", eh.Annotate)
	g.POST("/entries/:id/cancel", eh.Cancel)

	// Reads, cached. The open views change with every entry or exit,
	// so the short cache TTL is what keeps them fresh enough.
	cached := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	g.GET("/entries", qh.ListAll, cached)
	g.GET("/entries/open", qh.ListOpen, cached)
	g.GET("/entries/search", qh.Search, cached)
	g.GET("/entries/open/search", qh.SearchOpen, cached)
	g.GET("/visitors/recent", qh.Recent, cached)
	g.GET("/visitors/details", qh.VisitorDetails, cached)
}

// RegisterAdmin registers the admin console endpoints: rosters, session
// audit and password reset. Admin role only.
func RegisterAdmin(e *echo.Echo, cfg config.Config, ah *handler.AdminHandler) {
	g := e.Group("/v1/admin")
	g.Use(middleware.JWTAuth(cfg.JWTSecret))
	g.Use(middleware.RequireRole("admin"))

	g.GET("/guards", ah.Guards)
	g.GET("/admins", ah.Admins)
	g.GET("/sessions", ah.ListSessions)
	g.POST("/reset-password", ah.ResetPassword)
}
