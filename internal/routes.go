package internal

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/karloscodes/cartridge"
	cartridgemiddleware "github.com/karloscodes/cartridge/middleware"

	v1 "attrify/api/v1"
	"attrify/internal/config"
	"attrify/internal/http"
	"attrify/internal/http/middleware"
)

// publicCORSConfig returns the standard CORS configuration for public endpoints.
// All public ingestion endpoints share this permissive CORS setup for
// cross-origin access from tracked websites.
var publicCORSConfig = &cors.Config{
	AllowOrigins: "*",
	AllowMethods: "POST,GET,OPTIONS",
	AllowHeaders: "Origin, Content-Type, Accept, Authorization, Referrer, User-Agent",
}

// MountAppRoutes mounts all application routes using cartridge's route API
func MountAppRoutes(srv *cartridge.Server) {
	cfg := config.GetConfig()

	// Helper to conditionally apply rate limiting (only in production).
	// In development/test, rate limiting would interfere with testing.
	conditionalRateLimiter := func(limiter fiber.Handler) fiber.Handler {
		return func(c *fiber.Ctx) error {
			if cfg.IsProduction() {
				return limiter(c)
			}
			return c.Next()
		}
	}

	// Rate limiter for public ingestion API (70 requests per minute per IP)
	publicRateLimiter := conditionalRateLimiter(cartridgemiddleware.RateLimiter(
		cartridgemiddleware.WithMax(70),
		cartridgemiddleware.WithDuration(time.Minute),
	))

	// Stricter rate limiter for report endpoints (30 requests per minute):
	// report building scans the full window per request
	reportRateLimiter := conditionalRateLimiter(cartridgemiddleware.RateLimiter(
		cartridgemiddleware.WithMax(30),
		cartridgemiddleware.WithDuration(time.Minute),
	))

	// Public ingestion config: rate limiting + CORS
	publicAPIConfig := &cartridge.RouteConfig{
		EnableCORS:       true,
		WriteConcurrency: false,
		CustomMiddleware: []fiber.Handler{publicRateLimiter},
		CORSConfig:       publicCORSConfig,
	}

	db := srv.GetDBManager().GetConnection()
	logger := srv.GetLogger()

	// Report API config: API-key auth per website
	reportAPIConfig := &cartridge.RouteConfig{
		CustomMiddleware: []fiber.Handler{
			reportRateLimiter,
			middleware.ReportAPIKeyAuth(db, logger),
		},
	}

	// === ROOT ROUTES ===
	srv.Get("/_health", http.HealthIndexAction)
	srv.Head("/_health", http.HealthIndexAction)
	srv.Get("/_metrics", http.MetricsIndexAction)

	// === PUBLIC API ROUTES ===
	srv.Post("/x/api/v1/sessions", v1.CreateSessionPublicAPIHandler, publicAPIConfig)
	srv.Options("/x/api/v1/sessions", func(ctx *cartridge.Context) error {
		return ctx.SendStatus(fiber.StatusNoContent)
	}, publicAPIConfig)
	srv.Post("/x/api/v1/conversions", v1.CreateConversionPublicAPIHandler, publicAPIConfig)
	srv.Options("/x/api/v1/conversions", func(ctx *cartridge.Context) error {
		return ctx.SendStatus(fiber.StatusNoContent)
	}, publicAPIConfig)

	// === REPORT API ROUTES ===
	srv.Get("/api/v1/websites/:id/attribution", http.AttributionReportAction, reportAPIConfig)
	srv.Get("/api/v1/websites/:id/attribution/compare", http.AttributionCompareAction, reportAPIConfig)
}
