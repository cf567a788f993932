// Package server provides the websocket gateway in front of the duel
// coordinator, plus static asset serving and a health endpoint. It owns
// connection liveness (ping/pong, deadlines); the coordinator only sees
// transport-neutral client handles.
package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/vovakirdan/blockduel/internal/duel"
)

// Config holds configuration for the gateway.
type Config struct {
	// Addr is the host:port to listen on (e.g., ":8080").
	Addr string

	// WebDir is the directory of static client assets served at /.
	// Empty disables asset serving.
	WebDir string
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Addr:   ":8080",
		WebDir: "web",
	}
}

// Server wraps the HTTP server hosting the websocket endpoint.
type Server struct {
	config Config
	coord  *duel.Coordinator
	logger *log.Logger
	http   *http.Server
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// New creates a gateway in front of the given coordinator.
func New(cfg Config, coord *duel.Coordinator, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          "blockduel",
		})
	}

	s := &Server{
		config: cfg,
		coord:  coord,
		logger: logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok")) //nolint:errcheck // health endpoint
	})
	if cfg.WebDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(cfg.WebDir)))
	}

	s.http = &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// handleWS upgrades the connection and runs its pumps. The connection
// handler blocks until the client disconnects, then notifies the
// coordinator so all state referencing the connection is cleared.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	client := newWSClient(duel.ClientID(uuid.NewString()), conn, s.coord, s.logger)
	s.logger.Info("client connected", "client", client.ID(), "remote", r.RemoteAddr)

	go client.writePump()
	client.readPump()

	client.close()
	s.coord.Send(duel.DisconnectMsg{Client: client})
	s.logger.Info("client disconnected", "client", client.ID(), "remote", r.RemoteAddr)
}

// ListenAndServe starts the gateway and blocks until SIGINT/SIGTERM.
func (s *Server) ListenAndServe() error {
	s.logger.Info("starting server", "address", s.config.Addr)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-done:
	}

	s.logger.Info("shutting down...")
	return s.Shutdown()
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.http.Shutdown(ctx)
}

// Addr returns the server's listen address string.
func (s *Server) Addr() string {
	return s.config.Addr
}
