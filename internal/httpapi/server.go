// Package httpapi is the engine's thin HTTP transport: one
// http.ServeMux, one handler function per route, JSON responses via
// encoding/json, no router framework.
package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/onurtuna/ursavr/internal/engine"
)

// Server exposes the engine's state and operations over HTTP.
type Server struct {
	engine *engine.Engine
	log    *zap.SugaredLogger
	mux    *http.ServeMux
}

// New builds the HTTP mux, registering every route the engine exposes.
func New(e *engine.Engine, log *zap.SugaredLogger) *Server {
	s := &Server{engine: e, log: log, mux: http.NewServeMux()}

	s.mux.HandleFunc("/api/status", s.withCorrelation(s.handleStatus))
	s.mux.HandleFunc("/api/list", s.withCorrelation(s.handleList))
	s.mux.HandleFunc("/api/export", s.withCorrelation(s.handleExport))
	s.mux.HandleFunc("/api/cameras", s.withCorrelation(s.handleCameras))
	s.mux.HandleFunc("/api/cameras/", s.withCorrelation(s.handleCameraDelete))
	s.mux.HandleFunc("/api/hls/", s.withCorrelation(s.handleHLS))

	return s
}

// Handler returns the server's http.Handler for use with http.Server or
// httptest.
func (s *Server) Handler() http.Handler { return s.mux }

// withCorrelation assigns a request-correlation id, returned to the client
// in the X-Request-Id response header, before delegating to next.
func (s *Server) withCorrelation(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		w.Header().Set("X-Request-Id", reqID)
		next(w, r)
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.Errorw("failed to encode response body", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

// requireRunning answers 503 and returns false if the writer is not
// running, so every writer/reader-backed handler fails fast instead of
// panicking against a torn-down engine.
func (s *Server) requireRunning(w http.ResponseWriter) bool {
	if !s.engine.Running() {
		s.writeError(w, http.StatusServiceUnavailable, "writer is not running")
		return false
	}
	return true
}
