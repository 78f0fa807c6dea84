package router

import (
	"net/http"

	"github.com/evyataryagoni/locationserver/internal/handler"
	"github.com/evyataryagoni/locationserver/internal/limiter"
	"github.com/evyataryagoni/locationserver/internal/logger"
	"github.com/evyataryagoni/locationserver/internal/metrics"
	custommiddleware "github.com/evyataryagoni/locationserver/internal/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// SetupRouter creates the public router.
//
// Routes:
//   - GET  /location  city lookup
//   - GET  /*         404 Not Found
//   - POST /*         body is logged and acknowledged
//   - anything else   501 Unsupported method
//
// rateLimiter and m may be nil to skip rate limiting and metrics. With
// trustProxy set, X-Forwarded-For and X-Real-IP replace the socket address as
// the client identity; only enable it behind a proxy that overwrites them.
func SetupRouter(h *handler.LocationHandler, rateLimiter limiter.Limiter, m *metrics.Metrics, log *logger.Logger, trustProxy bool) chi.Router {
	r := chi.NewRouter()

	// Order matters: RequestID first, then logging, then recovery
	r.Use(middleware.RequestID)
	if trustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(custommiddleware.LoggingMiddleware(log))
	r.Use(middleware.Recoverer)
	if rateLimiter != nil {
		r.Use(custommiddleware.RateLimitMiddleware(rateLimiter, m))
	}
	if m != nil {
		r.Use(custommiddleware.MetricsMiddleware(m))
	}

	r.Get("/location", h.GetLocation)
	r.Get("/*", h.NotFound)
	r.Post("/*", h.ReceivePost)

	// "/*" matches every path, so any other method lands here
	r.MethodNotAllowed(h.Unsupported)
	r.NotFound(h.NotFound)

	return r
}

// healthCheckHandler returns 200 OK while the process is serving
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
