package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"

	"github.com/openarcade/lobby/internal/services/account"
	"github.com/openarcade/lobby/internal/services/catalog"
	"github.com/openarcade/lobby/internal/services/rating"
	"github.com/openarcade/lobby/internal/services/room"
)

// Config holds configuration for the TCP lobby server
type Config struct {
	Host string
	Port int
}

// DefaultConfig returns sensible defaults for server configuration
func DefaultConfig() Config {
	return Config{
		Host: "",
		Port: 7070,
	}
}

// Deps are the service handles every connection dispatches into.
type Deps struct {
	Accounts *account.Service
	Rooms    *room.Manager
	Catalog  *catalog.Service
	Ratings  *rating.Service
}

// Server accepts lobby connections and runs one handler goroutine per
// connection. The accept loop is unbounded: no connection cap, no
// backpressure.
type Server struct {
	deps   Deps
	cfg    Config
	logger *slog.Logger

	mu       sync.Mutex
	listener net.Listener
	conns    map[net.Conn]struct{}
	closing  bool

	wg sync.WaitGroup
}

// New creates a new lobby server
func New(deps Deps, cfg Config, logger *slog.Logger) *Server {
	return &Server{
		deps:   deps,
		cfg:    cfg,
		logger: logger,
		conns:  make(map[net.Conn]struct{}),
	}
}

// Listen binds the configured address. Split from Serve so callers can
// learn the bound address before serving (tests bind port 0).
func (s *Server) Listen() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	s.mu.Lock()
	s.listener = l
	s.mu.Unlock()

	s.logger.Info("lobby server listening", slog.String("addr", l.Addr().String()))
	return nil
}

// Addr returns the bound listen address.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Serve accepts connections until Shutdown closes the listener. ctx is
// handed to every connection handler; canceling it unblocks long polls.
func (s *Server) Serve(ctx context.Context) error {
	s.mu.Lock()
	l := s.listener
	s.mu.Unlock()
	if l == nil {
		return errors.New("server is not listening")
	}

	for {
		nc, err := l.Accept()
		if err != nil {
			s.mu.Lock()
			closing := s.closing
			s.mu.Unlock()
			if closing {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}

		s.mu.Lock()
		s.conns[nc] = struct{}{}
		s.mu.Unlock()

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer func() {
				s.mu.Lock()
				delete(s.conns, nc)
				s.mu.Unlock()
			}()
			newConn(nc, s.deps, s.logger).run(ctx)
		}()
	}
}

// Shutdown stops accepting, closes every pending connection, and waits for
// the handlers to finish or the context to expire.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down lobby server")

	s.mu.Lock()
	s.closing = true
	if s.listener != nil {
		_ = s.listener.Close()
	}
	for nc := range s.conns {
		_ = nc.Close()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("lobby server stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("shutdown: %w", ctx.Err())
	}
}
