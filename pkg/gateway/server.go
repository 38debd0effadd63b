package gateway

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/storysearch/surfacer/pkg/logger"
)

// Server hosts the gateway HTTP surface, including the /health and /ready
// probes.
type Server struct {
	httpServer *http.Server
	ready      atomic.Bool
	handler    *Handler
}

func NewServer(host string, port int, h *Handler) *Server {
	s := &Server{handler: h}

	mux := NewRouter(h)
	mux.Get("/health", s.health)
	mux.Get("/ready", s.readyProbe)

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", host, port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Start blocks serving HTTP until Shutdown.
func (s *Server) Start() error {
	s.ready.Store(true)
	logger.InfoCF("gateway", "Gateway listening", map[string]any{
		"addr": s.httpServer.Addr,
	})
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.ready.Store(false)
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyProbe(w http.ResponseWriter, r *http.Request) {
	if !s.ready.Load() {
		writeError(w, http.StatusServiceUnavailable, "not ready")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
