// Package rest serves stored records, export files and the export queue.
package rest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/fortuna/gridiron/internal/logging"
)

// Dependencies wires the handlers. Records and Exports may be nil; their
// routes then answer 503.
type Dependencies struct {
	Records       RecordLister
	Exports       ExportQueue
	Files         FileLocator
	DefaultSeason func() int
	HealthChecks  map[string]HealthCheck
	Reconciler    ReconcileStats
	Metrics       HTTPRecorder
	MetricsPath   http.Handler
	Logger        logrus.FieldLogger
}

// Server represents the REST API server
type Server struct {
	port   string
	server *http.Server
	router *mux.Router
}

// NewServer creates a new REST API server
func NewServer(port string, deps Dependencies) *Server {
	router := NewRouter(deps)
	return &Server{
		port:   port,
		router: router,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%s", port),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// NewRouter builds the route table.
func NewRouter(deps Dependencies) *mux.Router {
	logger := logging.Component(deps.Logger, "rest")
	if deps.DefaultSeason == nil {
		deps.DefaultSeason = func() int { return time.Now().Year() }
	}

	handler := &Handler{
		records:       deps.Records,
		exports:       deps.Exports,
		files:         deps.Files,
		defaultSeason: deps.DefaultSeason,
		checks:        deps.HealthChecks,
		reconciler:    deps.Reconciler,
		logger:        logger,
	}

	router := mux.NewRouter()

	// Apply middleware
	router.Use(RecoveryMiddleware(logger))
	router.Use(LoggingMiddleware(logger, deps.Metrics))
	router.Use(CORSMiddleware)

	// Health check
	router.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	if deps.MetricsPath != nil {
		router.Handle("/metrics", deps.MetricsPath).Methods("GET")
	}

	// API v1 routes
	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/records", handler.GetRecords).Methods("GET")

	// Exports
	api.HandleFunc("/exports", handler.HandleExportRequest).Methods("POST", "OPTIONS")
	api.HandleFunc("/exports/status", handler.HandleExportStatus).Methods("GET")
	if deps.Files != nil {
		api.HandleFunc("/exports/latest", handler.GetLatestExport).Methods("GET")
	}

	return router
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the REST API server
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
