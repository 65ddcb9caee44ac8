package router

import (
	"github.com/gofiber/fiber/v3"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/mayar-kabaja/gaza-price-sub000/internal/handler"
	"github.com/mayar-kabaja/gaza-price-sub000/internal/middleware"
)

// Handlers holds all handler instances needed by the router.
type Handlers struct {
	Report      *handler.ReportHandler
	Disposition *handler.DispositionHandler
	Stats       *handler.StatsHandler
	Contributor *handler.ContributorHandler
	Suggestion  *handler.SuggestionHandler
	Health      *handler.HealthHandler
}

// Setup configures the middleware stack and all API routes on the given Fiber app.
func Setup(app *fiber.App, h *Handlers, corsOrigins string) {
	// Middleware stack (order matters)
	app.Use(recoverer.New())
	app.Use(middleware.NewRequestLogger())
	app.Use(middleware.NewCORS(corsOrigins))
	app.Use(handler.MetricsMiddleware())

	// Per-route in-memory limiters; the durable per-contributor quotas are
	// enforced in the service layer.
	submitLimiter := middleware.NewReportSubmitRateLimiter()
	dispositionLimiter := middleware.NewDispositionRateLimiter()
	suggestionLimiter := middleware.NewSuggestionRateLimiter()
	lookupLimiter := middleware.NewLookupRateLimiter()
	statsLimiter := middleware.NewStatsRateLimiter()

	// Health checks and Prometheus metrics (outside the API group)
	app.Get("/health/live", h.Health.Live)
	app.Get("/health/ready", h.Health.Ready)
	app.Get("/metrics", handler.MetricsHandler())

	// API routes
	api := app.Group("/api")

	// Report routes
	api.Post("/reports", h.Report.Submit, submitLimiter.Handler())
	api.Get("/reports", h.Report.List, lookupLimiter.Handler())
	api.Get("/reports/:reportId", h.Report.GetByID, lookupLimiter.Handler())

	// Disposition routes
	api.Post("/reports/:reportId/confirm", h.Disposition.Confirm, dispositionLimiter.Handler())
	api.Post("/reports/:reportId/flag", h.Disposition.Flag, dispositionLimiter.Handler())
	api.Delete("/reports/:reportId/disposition", h.Disposition.Clear, dispositionLimiter.Handler())
	api.Get("/reports/:reportId/disposition", h.Disposition.Get, lookupLimiter.Handler())

	// Product statistics
	api.Get("/products/:productId/stats", h.Stats.GetProductStats, statsLimiter.Handler())

	// Contributor routes
	api.Get("/contributors/:contributorId", h.Contributor.GetByID, lookupLimiter.Handler())

	// Suggestion routes
	api.Post("/suggestions", h.Suggestion.Create, suggestionLimiter.Handler())
}
