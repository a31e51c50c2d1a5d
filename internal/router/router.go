package router // package router defines how HTTP routes are registered for the API

import (
    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/event-seat-reservation/internal/config"
    "github.com/iliyamo/event-seat-reservation/internal/handler"
    "github.com/iliyamo/event-seat-reservation/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication
// and carry no booking logic.  Currently it exposes only a health
// check, used by load balancers and monitoring to verify the service
// is up.
func RegisterRoutes(e *echo.Echo) {
    e.GET("/healthz", handler.Health)
}

// RegisterBooking wires the attendee-facing booking surface under /v1.
// The reserve and purchase endpoints sit behind the Redis token-bucket
// rate limiter: they are the contended writes during an on-sale rush.
// The read-only catalog and seat-map endpoints go through the response
// cache so a popular event does not hammer the database.
func RegisterBooking(e *echo.Echo, b *handler.BookingHandler, p *handler.PaymentHandler, cat *handler.CatalogHandler, rdb *redis.Client, rlCfg config.RateLimitConfig, cacheCfg config.CacheConfig) {
    limited := e.Group("/v1", middleware.NewTokenBucket(rlCfg, rdb))
    limited.POST("/events/:id/reserve", b.Reserve)
    limited.POST("/events/:id/purchase", b.Purchase)

    g := e.Group("/v1")
    g.POST("/events/:id/confirm", b.Confirm)
    g.POST("/events/:id/release", b.Release)
    g.POST("/payments/callback", p.Callback)

    cached := e.Group("/v1", middleware.NewRedisCache(cacheCfg, rdb))
    cached.GET("/events/:id/reserved-seats", b.ReservedSeats)
    cached.GET("/events/:id/sections", cat.GetSections)
}

// RegisterOrganizer wires the organizer-only catalog write path.  The
// routes require a valid bearer token with the ORGANIZER role; token
// issuance lives in the external auth service, this API only verifies.
func RegisterOrganizer(e *echo.Echo, cat *handler.CatalogHandler, jwtSecret string) {
    g := e.Group(
        "/v1",
        middleware.JWTAuth(jwtSecret),
        middleware.RequireRole("ORGANIZER"),
    )
    g.PUT("/events/:id/sections", cat.ReplaceSections)
}
