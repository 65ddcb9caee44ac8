package handler

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

// Metrics holds all Prometheus collectors for the PriceWatch backend.
var Metrics = struct {
	ReportsTotal        *prometheus.CounterVec
	DispositionsTotal   *prometheus.CounterVec
	RateLimitDenials    *prometheus.CounterVec
	RequestDuration     *prometheus.HistogramVec
	DBPoolActive        prometheus.GaugeFunc
	DBPoolIdle          prometheus.GaugeFunc
	RequestsInFlight    prometheus.Gauge
}{}

// InitMetrics registers all Prometheus metrics. Call once at startup.
func InitMetrics(pool *pgxpool.Pool) {
	Metrics.ReportsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricewatch_reports_total",
			Help: "Total price reports submitted, by currency.",
		},
		[]string{"currency"},
	)

	Metrics.DispositionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricewatch_dispositions_total",
			Help: "Total confirm/flag/clear actions, by kind.",
		},
		[]string{"kind"},
	)

	Metrics.RateLimitDenials = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricewatch_rate_limit_denials_total",
			Help: "Rate-limit denials, by action kind.",
		},
		[]string{"kind"},
	)

	Metrics.RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pricewatch_api_request_duration_seconds",
			Help:    "HTTP request duration in seconds, by endpoint and method.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	Metrics.RequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "pricewatch_requests_in_flight",
			Help: "Number of HTTP requests currently being served.",
		},
	)

	// DB pool gauges — read live stats from pgxpool
	if pool != nil {
		Metrics.DBPoolActive = prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "pricewatch_db_connection_pool_active",
				Help: "Number of active database connections.",
			},
			func() float64 {
				return float64(pool.Stat().AcquiredConns())
			},
		)

		Metrics.DBPoolIdle = prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "pricewatch_db_connection_pool_idle",
				Help: "Number of idle database connections.",
			},
			func() float64 {
				return float64(pool.Stat().IdleConns())
			},
		)

		prometheus.MustRegister(Metrics.DBPoolActive)
		prometheus.MustRegister(Metrics.DBPoolIdle)
	}

	prometheus.MustRegister(
		Metrics.ReportsTotal,
		Metrics.DispositionsTotal,
		Metrics.RateLimitDenials,
		Metrics.RequestDuration,
		Metrics.RequestsInFlight,
	)
}

// MetricsMiddleware records request duration and in-flight count for Prometheus.
func MetricsMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		// Don't instrument the /metrics endpoint itself
		if c.Path() == "/metrics" {
			return c.Next()
		}

		// Copy path and method into owned strings BEFORE c.Next() — Fiber
		// returns slices backed by the fasthttp buffer which can be reused
		// or overwritten by handlers (especially fasthttpadaptor).
		path := string([]byte(c.Path()))
		method := string([]byte(c.Method()))
		endpoint := sanitizeEndpoint(path)

		Metrics.RequestsInFlight.Inc()
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())

		Metrics.RequestDuration.WithLabelValues(endpoint, method, status).Observe(duration)
		Metrics.RequestsInFlight.Dec()

		return err
	}
}

// sanitizeEndpoint normalizes paths to avoid cardinality explosion.
func sanitizeEndpoint(path string) string {
	switch {
	case len(path) > 13 && path[:13] == "/api/reports/":
		return "/api/reports/:reportId"
	case len(path) > 14 && path[:14] == "/api/products/":
		return "/api/products/:productId/stats"
	case len(path) > 18 && path[:18] == "/api/contributors/":
		return "/api/contributors/:contributorId"
	default:
		return path
	}
}

// MetricsHandler serves the Prometheus /metrics endpoint via Fiber.
func MetricsHandler() fiber.Handler {
	httpHandler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	return func(c fiber.Ctx) error {
		httpHandler(c.RequestCtx())
		return nil
	}
}
