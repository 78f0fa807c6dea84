package middleware

import (
	"net"
	"net/http"

	"github.com/evyataryagoni/locationserver/internal/limiter"
	"github.com/evyataryagoni/locationserver/internal/metrics"
)

// RateLimitedBody is the plain-text body of a 429 response
const RateLimitedBody = "Too Many Requests"

// RateLimitMiddleware enforces rate limiting per client IP (429 when exceeded).
// The key is RemoteAddr, which chi's RealIP rewrites when it is installed.
// m may be nil.
func RateLimitMiddleware(lim limiter.Limiter, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !lim.Allow(clientKey(r.RemoteAddr)) {
				if m != nil {
					m.RateLimitedTotal.Inc()
				}
				w.Header().Set("Content-Type", "text/plain")
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(RateLimitedBody))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientKey strips the port so every connection from one host shares a bucket
func clientKey(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		// RealIP leaves a bare IP without a port
		return remoteAddr
	}
	return host
}
