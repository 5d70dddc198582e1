// Package router registers the storefront API routes on an echo instance.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/iliyamo/crimson-storefront/internal/config"
	"github.com/iliyamo/crimson-storefront/internal/handler"
	"github.com/iliyamo/crimson-storefront/internal/middleware"
	"github.com/iliyamo/crimson-storefront/internal/model"
)

// Handlers groups the endpoint implementations.
type Handlers struct {
	Health     *handler.HealthHandler
	Auth       *handler.AuthHandler
	Products   *handler.ProductHandler
	Users      *handler.UserHandler
	Orders     *handler.OrderHandler
	SaleEvents *handler.SaleEventHandler
}

// Deps carries what the /api middleware chain needs.  A nil Redis client
// disables the response cache and moves rate limiting in-process.
type Deps struct {
	Cfg       config.Config
	Cache     config.CacheConfig
	RateLimit config.RateLimitConfig
	Redis     *redis.Client
	Log       zerolog.Logger
}

// RegisterRoutes registers the unauthenticated probes.  They sit outside
// the /api chain so health answers are never cached or rate limited.
func RegisterRoutes(e *echo.Echo, h *handler.HealthHandler) {
	e.GET("/healthz", h.Liveness)
	e.GET("/api/health", h.Health)
}

// RegisterAPI mounts every storefront endpoint under /api.  Identity is
// read first so rate-limit keys and order events can use it; the cache
// runs innermost so throttled requests never touch Redis twice.
func RegisterAPI(e *echo.Echo, h Handlers, d Deps) *echo.Group {
	api := e.Group("/api",
		middleware.OptionalJWT(d.Cfg.JWTSecret),
		middleware.NewTokenBucket(d.RateLimit, d.Redis),
		middleware.NewRedisCache(d.Cache, d.Redis, d.Log),
	)
	admin := adminOnly(d.Cfg)
	signedIn := signedInOnly(d.Cfg)

	RegisterAuth(api, h.Auth)

	api.GET("/products", h.Products.List)
	api.GET("/products/search", h.Products.Search)
	api.POST("/products", h.Products.Create, admin...)
	api.PUT("/products/:id", h.Products.Update, admin...)
	api.DELETE("/products/:id", h.Products.Delete, admin...)

	api.GET("/users", h.Users.List, admin...)
	api.POST("/users/sync", h.Users.Sync, signedIn...)
	api.PUT("/users/:id", h.Users.Update, signedIn...)

	api.GET("/orders", h.Orders.ListAll, admin...)
	api.GET("/orders/:userId", h.Orders.ListByUser)
	api.POST("/orders", h.Orders.Create)
	api.PUT("/orders/:id", h.Orders.Update, admin...)

	api.GET("/sale-events", h.SaleEvents.Active)
	return api
}

// RegisterAuth registers login and signup.  Both return the access token
// in the X-Access-Token header.
func RegisterAuth(g *echo.Group, a *handler.AuthHandler) {
	g.POST("/login", a.Login)
	g.POST("/signup", a.Signup)
}

// signedInOnly is empty unless ADMIN_AUTH is set.  The handlers behind it
// limit non-admin callers to their own record.
func signedInOnly(cfg config.Config) []echo.MiddlewareFunc {
	if !cfg.AdminAuth {
		return nil
	}
	return []echo.MiddlewareFunc{middleware.JWTAuth(cfg.JWTSecret)}
}

// adminOnly is empty unless ADMIN_AUTH is set.
func adminOnly(cfg config.Config) []echo.MiddlewareFunc {
	if !cfg.AdminAuth {
		return nil
	}
	return []echo.MiddlewareFunc{
		middleware.JWTAuth(cfg.JWTSecret),
		middleware.RequireRole(model.RoleAdmin),
	}
}
