package webserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/zsprackett/morty-dashboard/internal/hub"
)

const DefaultPort = 3847

type Config struct {
	Host string
	Port int // 0 binds an ephemeral port
}

// Server exposes a Hub over WebSocket and answers status queries. The hub
// is owned by the caller, who closes it; the server only registers and
// unregisters connected dashboard clients.
type Server struct {
	hub    *hub.Hub
	cfg    Config
	logger *slog.Logger

	mu      sync.Mutex
	srv     *http.Server
	addr    net.Addr
	clients map[*client]struct{}
}

func New(h *hub.Hub, cfg Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		hub:     h,
		cfg:     cfg,
		logger:  logger,
		clients: make(map[*client]struct{}),
	}
}

// Handler upgrades WebSocket requests on any path. Plain GETs to / and
// /status get the status document; everything else is a 404.
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if websocket.IsWebSocketUpgrade(r) {
			s.handleWS(w, r)
			return
		}
		if r.Method == http.MethodGet && (r.URL.Path == "/" || r.URL.Path == "/status") {
			s.handleStatus(w, r)
			return
		}
		http.Error(w, "Not Found", http.StatusNotFound)
	})
}

// Start binds the listener and serves in the background. The bound address
// is available from Addr once Start returns.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.srv != nil {
		return errors.New("webserver: already started")
	}
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	srv := &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}
	s.srv = srv
	s.addr = ln.Addr()
	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error("webserver: serve failed", "err", err)
		}
	}()
	s.logger.Info("dashboard server running", "url", "http://"+ln.Addr().String())
	return nil
}

// Addr returns the bound listener address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Stop closes every connected client, then shuts the HTTP server down.
// Hijacked WebSocket connections are not tracked by net/http, so the server
// closes them itself. Close the hub first so no new client can register.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv := s.srv
	s.srv = nil
	clients := make([]*client, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.Unlock()

	for _, c := range clients {
		c.close()
	}
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

func (s *Server) track(c *client) {
	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()
}

func (s *Server) untrack(c *client) {
	s.mu.Lock()
	delete(s.clients, c)
	s.mu.Unlock()
}
