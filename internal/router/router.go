package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/pontdesarts/lovelock/internal/config"
	"github.com/pontdesarts/lovelock/internal/handler"
	"github.com/pontdesarts/lovelock/internal/middleware"
)

// Handlers bundles everything the router wires up. All fields must be
// non-nil except Redis, which may be nil when caching and rate limiting
// are degraded.
type Handlers struct {
	Checkout     *handler.CheckoutHandler
	Webhook      *handler.WebhookHandler
	Availability *handler.AvailabilityHandler
	Lock         *handler.LockHandler
	Profile      *handler.ProfileHandler
	Admin        *handler.AdminHandler
	Reaper       *handler.ReaperHandler
}

// Register mounts every route. Route groups and their middleware:
//
//	public:   health, availability (cached), lock pages
//	webhook:  raw-body Stripe endpoint, no auth (signature is the auth)
//	user:     JWT-protected checkout and owner actions (rate limited)
//	admin:    JWT + ADMIN role
//	internal: cron-secret-guarded reaper sweep
func Register(e *echo.Echo, h Handlers, cfg config.Config, rdb *redis.Client) {
	e.GET("/healthz", handler.Health)

	// Public storefront reads. The availability endpoint is polled
	// while visitors browse numbers, so it sits behind the response
	// cache.
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	e.GET("/v1/locks/availability", h.Availability.Check, cache)
	e.GET("/v1/locks/:id", h.Lock.Get)
	e.GET("/v1/locks/:id/transactions", h.Lock.Transactions)

	// Payment provider callback. The body must reach the handler raw;
	// no middleware that consumes it may run here.
	e.POST("/v1/webhooks/payment", h.Webhook.Receive)

	// Authenticated user surface.
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	user := e.Group("/v1")
	user.Use(middleware.JWTAuth(cfg.JWTSecret))
	user.POST("/checkout/session", h.Checkout.CreateSession, limiter)
	user.GET("/me", h.Profile.Me)
	user.GET("/my-locks", h.Lock.MyLocks)
	user.GET("/my-transactions", h.Lock.MyTransactions)
	user.POST("/locks/:id/resale", h.Lock.ListForResale)
	user.DELETE("/locks/:id/resale", h.Lock.UnlistResale)

	// Back-office moderation.
	admin := e.Group("/v1/admin")
	admin.Use(middleware.JWTAuth(cfg.JWTSecret))
	admin.Use(middleware.RequireRole("ADMIN"))
	admin.POST("/locks/:id/ban", h.Admin.Ban)
	admin.POST("/locks/:id/unban", h.Admin.Unban)
	admin.DELETE("/locks/:id", h.Admin.Delete)
	admin.GET("/transactions", h.Admin.Transactions)

	// Scheduled invocation.
	internal := e.Group("/v1/internal")
	internal.Use(middleware.RequireCronSecret(cfg.CronSecret))
	internal.POST("/reaper/sweep", h.Reaper.Sweep)
}
