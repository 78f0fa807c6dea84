package router

import (
	_ "github.com/evyataryagoni/locationserver/docs" // Swagger docs
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

// SetupAdminRouter creates the router for the admin listener. None of these
// routes are mounted on the public listener.
//
// Routes:
//   - GET /health     liveness
//   - GET /metrics    Prometheus metrics from gatherer
//   - GET /swagger/*  API documentation
func SetupAdminRouter(gatherer prometheus.Gatherer) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", healthCheckHandler)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	return r
}
