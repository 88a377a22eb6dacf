package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/couchcryptid/weather-station-etl/internal/lookup"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Lookuper answers recent-measurement queries for a city.
type Lookuper interface {
	Lookup(ctx context.Context, city string) ([]lookup.Result, error)
}

// Server exposes health, readiness, metrics, and measurement lookup endpoints.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics, and
// /measurements routes.
func NewServer(addr string, ready sharedobs.ReadinessChecker, lookups Lookuper, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /measurements", s.handleMeasurements(lookups))

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleMeasurements(lookups Lookuper) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		city := r.URL.Query().Get("city")
		if city == "" {
			sharedobs.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "city is required"})
			return
		}

		results, err := lookups.Lookup(r.Context(), city)
		if err != nil {
			s.logger.Error("lookup failed", "city", city, "error", err)
			sharedobs.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "lookup failed"})
			return
		}
		sharedobs.WriteJSON(w, http.StatusOK, results)
	}
}
