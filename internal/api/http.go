// SPDX-License-Identifier: MIT

// Package api implements the HTTP surface of ratesd: exchange rate
// lookups, conversions, and per-user transaction history.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ManuGH/ratesd/internal/api/middleware"
	"github.com/ManuGH/ratesd/internal/config"
	"github.com/ManuGH/ratesd/internal/convert"
	"github.com/ManuGH/ratesd/internal/health"
	"github.com/ManuGH/ratesd/internal/rates"
	"github.com/ManuGH/ratesd/internal/transactions"
	"github.com/ManuGH/ratesd/internal/version"
)

// Server bundles the services behind the HTTP API.
type Server struct {
	cfg           config.AppConfig
	rates         *rates.Service
	converter     *convert.Service
	txns          *transactions.Service
	healthManager *health.Manager

	router http.Handler
}

// New constructs the API server and builds its route table.
func New(cfg config.AppConfig, r *rates.Service, c *convert.Service, t *transactions.Service, hm *health.Manager) *Server {
	s := &Server{
		cfg:           cfg,
		rates:         r,
		converter:     c,
		txns:          t,
		healthManager: hm,
	}
	s.router = s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) newRouter() *chi.Mux {
	tracingService := ""
	if s.cfg.Tracing.Enabled {
		tracingService = "ratesd-api"
	}

	return middleware.NewRouter(middleware.StackConfig{
		EnableCORS:            true,
		AllowedOrigins:        s.cfg.AllowedOrigins,
		EnableSecurityHeaders: true,
		EnableMetrics:         s.cfg.MetricsEnabled,
		TracingService:        tracingService,
		EnableLogging:         true,
		EnableRateLimit:       s.cfg.RateLimit.Enabled,
		RateLimitLimit:        s.cfg.RateLimit.RequestLimit,
		RateLimitWindow:       s.cfg.RateLimit.Window,
	})
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"service": "ratesd",
		"version": version.Version,
		"status":  "ok",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.healthManager.ServeHealth(w, r)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	s.healthManager.ServeReady(w, r)
}
