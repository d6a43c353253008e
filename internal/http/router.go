package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Ashik-Muhammed/Travelita-sub002/internal/observability"
	"github.com/Ashik-Muhammed/Travelita-sub002/internal/rateLimit"
)

// SetupRouter builds the public API: bookings, the package catalog and its
// lifecycle operations, and admin reconciliation.
func SetupRouter(h *Handlers, logger observability.Logger, rl *rateLimit.RateLimiter) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(RequestIDMiddleware)
	r.Use(LoggerMiddleware(logger))
	r.Use(TracingMiddleware)
	r.Use(MetricsMiddleware)
	r.Use(RateLimitMiddleware(rl))

	r.With(RequireIdempotencyKey).Post("/v1/bookings", h.CreateBooking)
	r.Get("/v1/bookings", h.ListBookings)
	r.Get("/v1/bookings/{id}", h.GetBooking)

	r.Get("/v1/packages", h.ListPackages)
	r.Post("/v1/packages", h.CreatePackage)
	r.Get("/v1/packages/{id}", h.GetPackage)
	r.Post("/v1/packages/{id}/status", h.SetPackageStatus)
	r.Post("/v1/packages/{id}/availability", h.SetPackageAvailability)
	r.Delete("/v1/packages/{id}", h.DeletePackage)

	r.Post("/v1/admin/reconcile", h.RunReconciliation)

	r.Get("/v1/healthz", h.Healthz)
	r.Get("/v1/readyz", h.Readyz)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	return r
}

// SetupPartnerRouter builds the partner front door. It is deployed as its
// own binary but funnels into the same booking service and the same
// collections as the public API.
func SetupPartnerRouter(h *Handlers, logger observability.Logger, rl *rateLimit.RateLimiter) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(RequestIDMiddleware)
	r.Use(LoggerMiddleware(logger))
	r.Use(TracingMiddleware)
	r.Use(MetricsMiddleware)
	r.Use(RateLimitMiddleware(rl))

	r.With(RequireIdempotencyKey).Post("/v1/partner/bookings", h.CreateBooking)
	r.Get("/v1/partner/bookings", h.ListBookings)
	r.Post("/v1/partner/packages/{id}/availability", h.SetPackageAvailability)

	r.Get("/v1/healthz", h.Healthz)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	return r
}
