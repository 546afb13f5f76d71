// SPDX-License-Identifier: MIT

package middleware

import (
	"time"

	"github.com/go-chi/chi/v5"

	ratesdlog "github.com/ManuGH/ratesd/internal/log"
)

// StackConfig configures the canonical HTTP ingress middleware stack.
// The API server and the metrics server share it to prevent drift in
// cross-cutting concerns.
type StackConfig struct {
	// CORS
	EnableCORS     bool
	AllowedOrigins []string

	// Security headers
	EnableSecurityHeaders bool

	// Observability
	EnableMetrics  bool
	TracingService string // empty disables tracing
	EnableLogging  bool

	// Rate limiting
	EnableRateLimit bool
	RateLimitLimit  int
	RateLimitWindow time.Duration
}

// NewRouter constructs a chi router with the canonical middleware stack applied.
func NewRouter(cfg StackConfig) *chi.Mux {
	r := chi.NewRouter()
	ApplyStack(r, cfg)
	return r
}

// ApplyStack applies the canonical middleware stack to r.
func ApplyStack(r chi.Router, cfg StackConfig) {
	// 1. Recoverer (outermost safety net)
	r.Use(Recoverer)
	// 2. RequestID (correlation early)
	r.Use(RequestID)
	// 3. CORS (so OPTIONS and browser clients behave)
	if cfg.EnableCORS {
		r.Use(CORS(cfg.AllowedOrigins))
	}
	// 4. Security headers
	if cfg.EnableSecurityHeaders {
		r.Use(SecurityHeaders())
	}
	// 5. Metrics (track all requests)
	if cfg.EnableMetrics {
		r.Use(Metrics())
	}
	// 6. Tracing (distributed tracing with OpenTelemetry)
	if cfg.TracingService != "" {
		r.Use(Tracing(cfg.TracingService))
	}
	// 7. Logging (wraps handlers, captures full latency)
	if cfg.EnableLogging {
		r.Use(ratesdlog.Middleware())
	}
	// 8. Rate limit (global protection)
	if cfg.EnableRateLimit {
		r.Use(RateLimit(RateLimitConfig{
			RequestLimit: cfg.RateLimitLimit,
			WindowSize:   cfg.RateLimitWindow,
		}))
	}
}
