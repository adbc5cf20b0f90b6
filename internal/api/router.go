// Package api wires the chi router, middleware stack, and handlers.
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	corslib "github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/storepulse/storepulse/internal/api/handler"
	"github.com/storepulse/storepulse/internal/config"
)

// NewRouter creates and configures the chi router with all middleware and
// routes.
func NewRouter(h *handler.Handler, cfg *config.Config) *chi.Mux {
	r := chi.NewRouter()

	// --- Middleware stack ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(TimingMiddleware)
	r.Use(middleware.Compress(5)) // gzip

	// CORS
	c := corslib.New(corslib.Options{
		AllowedOrigins:   cfg.CORSAllowOrigins,
		AllowedMethods:   []string{"GET", "HEAD", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Encoding", "Content-Type", "If-None-Match", "Cache-Control"},
		ExposedHeaders:   []string{"X-Process-Time", "X-Cache", "ETag"},
		AllowCredentials: false,
	})
	r.Use(c.Handler)

	// --- Routes ---

	// Root and health
	r.Get("/", h.Root)
	r.Route("/health", func(r chi.Router) {
		r.Get("/", h.HealthCheck)
		r.Get("/db", h.HealthCheckDB)
	})

	// Prometheus metrics
	r.Handle("/metrics", promhttp.Handler())

	// Swagger UI
	r.Get("/docs/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/doc.json"),
	))

	// Websocket subscribers (no rate limiting: one long-lived request)
	r.Get("/ws/alerts", h.ServeAlertsWS)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Ingestion — exempt from the dashboard rate limits: sensor
		// streams are trusted infrastructure.
		r.Post("/iot", h.IngestReading)

		// Recent-fact queries
		r.Group(func(r chi.Router) {
			if cfg.RateLimitEnabled {
				r.Use(RateLimitMiddleware(cfg.RateLimitRequests, cfg.RateLimitWindow))
			}
			r.Get("/alerts", h.RecentAlerts)
			r.Get("/anomaly/recent", h.RecentAnomalies)
			r.Get("/risk/recent", h.RecentAssessments)
			r.Get("/cluster/recent", h.RecentAssignments)
		})
	})

	return r
}
