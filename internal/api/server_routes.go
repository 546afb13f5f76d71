// SPDX-License-Identifier: MIT

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) routes() http.Handler {
	r := s.newRouter()

	r.Get("/", s.handleRoot)
	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/rates", s.handleRate)
		r.Get("/convert", s.handleConvertQuery)
		r.Post("/convert", s.handleConvert)
		r.Get("/transactions/{userID}", s.handleHistory)
	})

	return r
}
