// internal/web/server.go
package web

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"brainsgraph/internal/config"
	"brainsgraph/internal/hub"
)

// upgrader for viewer connections. The viewer page is a local dev
// surface that may be served from a different origin (e.g. a Vite dev
// server), so the origin check is open.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// Server is the viewer gateway: it accepts websocket connections on /ws
// and hands them to the hub, and serves the static viewer page when an
// assets directory is present.
type Server struct {
	log        *zap.Logger
	hub        *hub.Hub
	cfg        config.ServerConfig
	httpServer *http.Server
}

func New(logger *zap.Logger, h *hub.Hub, cfg config.ServerConfig) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		log: logger.Named("web"),
		hub: h,
		cfg: cfg,
	}
	s.httpServer = &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: s.Handler(),
	}
	return s
}

// Handler builds the chi router. Exposed for tests.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Get("/ws", s.handleViewerSocket)

	s.mountAssets(r)
	return r
}

// Start runs the HTTP listener until Shutdown is called.
func (s *Server) Start() error {
	s.log.Info("Viewer gateway listening", zap.String("addr", s.cfg.ListenAddr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// handleViewerSocket upgrades the connection and blocks in the hub until
// the viewer disconnects.
func (s *Server) handleViewerSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		s.log.Error("Failed to upgrade viewer connection", zap.Error(err))
		return
	}
	s.log.Debug("Viewer connection upgraded", zap.String("remote", r.RemoteAddr))
	s.hub.Attach(conn)
}

// mountAssets serves the static viewer page from the configured
// directory. An absent directory is a warning, not an error: the
// websocket surface works regardless.
func (s *Server) mountAssets(r chi.Router) {
	if s.cfg.AssetsDir == "" {
		return
	}
	absPath, err := filepath.Abs(s.cfg.AssetsDir)
	if err != nil {
		s.log.Warn("Failed to resolve viewer assets path", zap.String("path", s.cfg.AssetsDir), zap.Error(err))
		return
	}
	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		s.log.Warn("Viewer assets directory does not exist; page will not be served", zap.String("path", absPath))
		return
	}

	fileServer := http.FileServer(http.Dir(absPath))
	index := filepath.Join(absPath, "index.html")
	// /ws and /healthz are registered as explicit routes, which chi
	// matches ahead of this wildcard.
	r.Get("/*", func(w http.ResponseWriter, req *http.Request) {
		p := filepath.Join(absPath, filepath.Clean("/"+req.URL.Path))
		if info, err := os.Stat(p); err != nil || info.IsDir() {
			// Unknown paths fall back to the viewer page so client-side
			// routes resolve.
			http.ServeFile(w, req, index)
			return
		}
		fileServer.ServeHTTP(w, req)
	})
	s.log.Info("Serving viewer assets", zap.String("path", absPath))
}

// corsMiddleware keeps the local viewer page usable from a dev server
// on another port.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
