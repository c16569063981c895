// Package api is a small HTTP surface for inspecting GCD files: upload a
// file and get its record listing, validity, or a catalog entry back.
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

// NewRouter builds the full route tree for the given server.
func NewRouter(server *Server) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Prometheus metrics endpoint (unprotected for scraping)
	r.Handle("/metrics", promhttp.Handler())

	m := server.metrics
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", m.InstrumentHandler("GET", "/api/v1/health", server.handleHealth))

		r.Post("/inspect", m.InstrumentHandler("POST", "/api/v1/inspect", server.handleInspect))
		r.Post("/validate", m.InstrumentHandler("POST", "/api/v1/validate", server.handleValidate))

		r.Post("/catalog", m.InstrumentHandler("POST", "/api/v1/catalog", server.handleCatalogScan))
		r.Get("/catalog", m.InstrumentHandler("GET", "/api/v1/catalog", server.handleCatalogList))
		r.Get("/catalog/{id}", m.InstrumentHandler("GET", "/api/v1/catalog/{id}", server.handleCatalogGet))
		r.Delete("/catalog/{id}", m.InstrumentHandler("DELETE", "/api/v1/catalog/{id}", server.handleCatalogDelete))
	})

	return r
}

// StartServer starts the HTTP server with all routes configured
func StartServer(cat ICatalog, config ServerConfig) error {
	metrics := NewMetrics()
	server := NewServer(cat, config, metrics)
	r := NewRouter(server)

	addr := fmt.Sprintf("%s:%d", config.Bind, config.Port)
	log.Printf("Starting GCD inspection API server on %s", addr)
	return http.ListenAndServe(addr, r)
}
