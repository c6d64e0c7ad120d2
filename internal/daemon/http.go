package daemon

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/emotion-constellation/constellation-core/pkg/logger"
)

// HTTPServer exposes health, metrics, frame snapshots, commands and the
// websocket endpoint.
type HTTPServer struct {
	mux    *http.ServeMux
	daemon *Daemon
}

// NewHTTPServer builds the routes for d
func NewHTTPServer(d *Daemon, gatherer prometheus.Gatherer) *HTTPServer {
	s := &HTTPServer{
		mux:    http.NewServeMux(),
		daemon: d,
	}

	s.mux.HandleFunc("/healthz", s.handleHealthz)
	s.mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	s.mux.HandleFunc("/v1/frame", s.handleFrame)
	s.mux.HandleFunc("/v1/connections", s.handleConnections)
	s.mux.HandleFunc("/v1/annotations", s.handleAnnotations)
	s.mux.HandleFunc("/v1/stats", s.handleStats)
	s.mux.HandleFunc("/v1/commands", s.handleCommands)
	s.mux.Handle("/v1/ws", d.Hub())

	return s
}

// Handler returns the root handler
func (s *HTTPServer) Handler() http.Handler {
	return s.mux
}

func (s *HTTPServer) handleHealthz(w http.ResponseWriter, r *http.Request) {
	status, code := "ok", http.StatusOK
	if !s.daemon.Scheduler().Running() {
		status, code = "stopped", http.StatusServiceUnavailable
	}
	s.writeJSON(w, code, map[string]any{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *HTTPServer) handleFrame(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	f := s.daemon.Scheduler().LastFrame()
	if f == nil {
		s.writeError(w, http.StatusServiceUnavailable, "no frame yet")
		return
	}
	s.writeJSON(w, http.StatusOK, f)
}

func (s *HTTPServer) handleConnections(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	f := s.daemon.Scheduler().LastFrame()
	if f == nil {
		s.writeError(w, http.StatusServiceUnavailable, "no frame yet")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"seq":         f.Seq,
		"connections": f.Connections,
	})
}

func (s *HTTPServer) handleAnnotations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	a := s.daemon.Annotator().Latest()
	if a == nil {
		s.writeError(w, http.StatusServiceUnavailable, "no annotations yet")
		return
	}
	s.writeJSON(w, http.StatusOK, a)
}

func (s *HTTPServer) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	resp := map[string]any{
		"running": s.daemon.Scheduler().Running(),
		"clients": s.daemon.Hub().ClientCount(),
		"locale":  s.daemon.Locale(),
	}
	if f := s.daemon.Scheduler().LastFrame(); f != nil {
		resp["seq"] = f.Seq
		resp["alpha"] = f.Alpha
		resp["entry_active"] = f.EntryActive
		resp["mode"] = f.Selection.Mode
	}
	if stats := s.daemon.Metrics().FrameStats(); stats != nil {
		resp["frame_ms"] = stats
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// handleCommands accepts the websocket command format over plain HTTP
func (s *HTTPServer) handleCommands(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var cmd Command
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := s.daemon.Dispatch(cmd); err != nil {
		switch {
		case errors.Is(err, ErrUnknownCommand), errors.Is(err, ErrInvalidCommand):
			s.writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrInboxFull):
			s.writeError(w, http.StatusServiceUnavailable, err.Error())
		default:
			s.writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	s.writeJSON(w, http.StatusAccepted, map[string]any{"queued": cmd.Type})
}

func (s *HTTPServer) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response", "error", err)
	}
}

func (s *HTTPServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]any{
		"error": message,
	})
}
