// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/guild-inventory/internal/config"
	"github.com/iliyamo/guild-inventory/internal/handler"
	"github.com/iliyamo/guild-inventory/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication.
// Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the service account auth surface.
// Unauthenticated token operations live under /v1/auth; /v1/auth/me
// requires a valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)
	// Logout works with either a refresh token in the body or a valid
	// access token; the handler sorts out which mode applies.
	g.POST("/logout", a.Logout, middleware.JWTAuth(jwtSecret))
	g.GET("/me", a.Me, middleware.JWTAuth(jwtSecret))
}

// RegisterGuild registers the guild-scoped inventory API under
// /v1/guilds/:guild_id.  Every route requires an authenticated service
// account with the BOT or ADMIN role and passes through the token
// bucket limiter; finer checks (guild admin rights of the acting
// member) happen in the handlers.
func RegisterGuild(
	e *echo.Echo,
	items *handler.ItemHandler,
	checkouts *handler.CheckoutHandler,
	reports *handler.ReportHandler,
	admin *handler.AdminHandler,
	jwtSecret string,
	rlCfg config.RateLimitConfig,
	rdb *redis.Client,
) {
	g := e.Group(
		"/v1/guilds/:guild_id",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("BOT", "ADMIN"),
		middleware.NewTokenBucket(rlCfg, rdb),
	)

	// ---- Items ----
	g.POST("/items", items.Create)
	g.GET("/items", items.Search)
	g.GET("/items/:item_id", items.Get)
	g.PATCH("/items/:item_id", items.Update)
	g.DELETE("/items/:item_id", items.Delete)

	// ---- Checkouts ----
	g.POST("/checkouts", checkouts.Create)
	g.GET("/checkouts", checkouts.ListActive)
	g.POST("/checkouts/:checkout_id/return", checkouts.Return)
	g.GET("/items/:item_id/checkouts", checkouts.ListByItem)

	// ---- Reporting ----
	g.GET("/stats", reports.Stats)
	g.GET("/audit", reports.AuditLog)

	// ---- Guild administration ----
	g.GET("/settings", admin.GetSettings)
	g.PUT("/settings", admin.UpsertSettings)
	g.PUT("/admins/:user_id", admin.SetGuildAdmin)
	g.POST("/sync", admin.TriggerSync)
}
