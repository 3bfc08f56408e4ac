// Package api exposes the optional status HTTP interface for the scanner.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/solvik/vanityscan/internal/metrics"
	"github.com/solvik/vanityscan/internal/scan"
)

// Server wires HTTP handlers to the scan session.
type Server struct {
	router  chi.Router
	session *scan.Session
	logger  *zap.Logger
}

// NewServer constructs a Server with routes for health, metrics, and the
// session snapshot.
func NewServer(session *scan.Session, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		session: session,
		logger:  logger,
	}

	r := chi.NewRouter()
	r.Use(requestMetrics)
	r.Get("/healthz", s.healthz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	r.Get("/status", s.status)

	s.router = r
	return s
}

// Handler returns the router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type statusResponse struct {
	TotalAttempts   int64  `json:"total_attempts"`
	Matches         int64  `json:"matches"`
	TransientErrors int64  `json:"transient_errors"`
	Rounds          int64  `json:"rounds"`
	RoundCompleted  int64  `json:"round_completed"`
	RoundSize       int    `json:"round_size"`
	Elapsed         string `json:"elapsed"`
}

func (s *Server) status(w http.ResponseWriter, _ *http.Request) {
	snap := s.session.Snapshot()
	s.writeJSON(w, http.StatusOK, statusResponse{
		TotalAttempts:   snap.TotalAttempts,
		Matches:         snap.Matches,
		TransientErrors: snap.TransientErrors,
		Rounds:          snap.Rounds,
		RoundCompleted:  snap.RoundCompleted,
		RoundSize:       snap.RoundSize,
		Elapsed:         snap.Elapsed.Round(time.Second).String(),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Warn("response write failed", zap.Error(err))
	}
}
