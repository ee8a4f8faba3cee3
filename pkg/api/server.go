// Package api serves parsed plugins over a REST API: plugin summaries,
// record lookups, and form id index queries.
package api

import (
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter builds the full route table for the server.
func NewRouter(server *Server) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Prometheus metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	m := server.metrics
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", m.InstrumentHandler("GET", "/api/v1/health", server.handleHealth))

		r.Get("/plugins", m.InstrumentHandler("GET", "/api/v1/plugins", server.handleListPlugins))
		r.Get("/plugins/{name}", m.InstrumentHandler("GET", "/api/v1/plugins/{name}", server.handleGetPlugin))
		r.Get("/plugins/{name}/records", m.InstrumentHandler("GET", "/api/v1/plugins/{name}/records", server.handleListRecords))
		r.Get("/plugins/{name}/records/{formid}", m.InstrumentHandler("GET", "/api/v1/plugins/{name}/records/{formid}", server.handleGetRecord))

		r.Get("/lookup/{formid}", m.InstrumentHandler("GET", "/api/v1/lookup/{formid}", server.handleLookup))
		r.Get("/stats", m.InstrumentHandler("GET", "/api/v1/stats", server.handleStats))
	})

	return r
}

// StartServer starts the HTTP server with all routes configured. It
// blocks until the listener fails.
func StartServer(server *Server) error {
	r := NewRouter(server)

	addr := fmt.Sprintf("%s:%d", server.config.Bind, server.config.Port)
	log.Printf("Starting goesp REST API server on %s", addr)
	log.Printf("Metrics available at: http://%s/metrics", addr)
	return http.ListenAndServe(addr, r)
}
