// Package app assembles the game engine HTTP server: storage, service, and
// REST routes behind the shared middleware chain.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/cheeseisland/engine/internal/game/api/rest"
	"github.com/cheeseisland/engine/internal/game/service"
	"github.com/cheeseisland/engine/internal/game/storage/sqlite"
	"github.com/cheeseisland/engine/internal/platform/httpx"
	"github.com/cheeseisland/engine/internal/platform/timeouts"
)

// Server hosts the game engine HTTP API.
type Server struct {
	httpServer *http.Server
	store      *sqlite.Store
}

// New creates a configured server listening on the provided port.
func New(port int) (*Server, error) {
	return NewWithAddr(fmt.Sprintf(":%d", port))
}

// NewWithAddr creates a configured server for an explicit listen address.
func NewWithAddr(addr string) (*Server, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, errors.New("listen address is required")
	}

	store, err := openEngineStore()
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	rest.NewHandler(service.NewService(store)).Register(mux)
	handler := httpx.Chain(mux, httpx.RequestID(), httpx.RecoverPanic())

	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: timeouts.ReadHeader,
		},
		store: store,
	}, nil
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	if s == nil || s.httpServer == nil {
		return ""
	}
	return s.httpServer.Addr
}

// ListenAndServe serves HTTP traffic until context cancellation or server stop.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return errors.New("engine server is nil")
	}
	if ctx == nil {
		return errors.New("context is required")
	}
	defer s.closeStore()

	log.Printf("engine server listening at %v", s.httpServer.Addr)
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown engine http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve engine http: %w", err)
	}
}

// Run creates and serves an engine server until the context ends.
func Run(ctx context.Context, port int) error {
	server, err := New(port)
	if err != nil {
		return err
	}
	return server.ListenAndServe(ctx)
}

// RunWithAddr creates and serves an engine server on an explicit address.
func RunWithAddr(ctx context.Context, addr string) error {
	server, err := NewWithAddr(addr)
	if err != nil {
		return err
	}
	return server.ListenAndServe(ctx)
}

func openEngineStore() (*sqlite.Store, error) {
	path := strings.TrimSpace(os.Getenv("CHEESE_ISLAND_DB_PATH"))
	if path == "" {
		path = filepath.Join("data", "engine.db")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}

	store, err := sqlite.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}
	return store, nil
}

func (s *Server) closeStore() {
	if s == nil || s.store == nil {
		return
	}
	if err := s.store.Close(); err != nil {
		log.Printf("close engine store: %v", err)
	}
}
