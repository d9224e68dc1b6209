package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"docsim/internal/config"
	"docsim/internal/logging"
)

// ErrAlreadyRunning is returned by Start when another server holds the data
// directory lock.
var ErrAlreadyRunning = errors.New("docsim server already running")

// Server is the HTTP front end for a Service.
type Server struct {
	cfg      *config.Config
	svc      *Service
	logger   *slog.Logger
	bind     string
	lockPath string
	lock     *flock.Flock

	listener net.Listener
	server   *http.Server
	done     chan struct{}
	stopOnce sync.Once
}

// NewServer wires the HTTP routes for svc.
func NewServer(cfg *config.Config, svc *Service, logger *slog.Logger) (*Server, error) {
	if cfg == nil || svc == nil {
		return nil, errors.New("api: server requires config and service")
	}
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil, errors.New("api: paths.api_bind is empty")
	}

	s := &Server{
		cfg:      cfg,
		svc:      svc,
		logger:   logging.NewComponentLogger(logger, "api-server"),
		bind:     bind,
		lockPath: cfg.LockPath(),
		lock:     flock.New(cfg.LockPath()),
	}

	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       seconds(cfg.Server.ReadTimeoutSeconds),
		WriteTimeout:      seconds(cfg.Server.WriteTimeoutSeconds),
		IdleTimeout:       60 * time.Second,
	}
	return s, nil
}

// Handler returns the route multiplexer, wrapped in bearer auth when a token
// is configured.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/compare", s.handleCompare)
	mux.HandleFunc("/api/runs", s.handleRuns)
	mux.HandleFunc("/api/runs/", s.handleRun)
	return authMiddleware(s.cfg.Server.Token, mux)
}

// Start acquires the data directory lock, binds the listener and serves in
// the background until ctx is cancelled or Stop is called.
func (s *Server) Start(ctx context.Context) error {
	if err := s.cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("ensure directories: %w", err)
	}
	ok, err := s.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w (lock %s)", ErrAlreadyRunning, s.lockPath)
	}

	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		_ = s.lock.Unlock()
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		select {
		case <-ctx.Done():
			s.Stop()
		case <-s.done:
		}
	}()

	s.logger.Info("api server listening",
		logging.String("address", listener.Addr().String()),
		logging.String("lock", s.lockPath),
		logging.Bool("auth", s.cfg.Server.Token != ""),
	)
	return nil
}

// Addr returns the bound address once Start has succeeded.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Done is closed when the server stops serving.
func (s *Server) Done() <-chan struct{} {
	return s.done
}

// Stop shuts the server down gracefully and releases the lock. Only the first
// call does the work; concurrent callers wait for it to finish.
func (s *Server) Stop() {
	if s == nil || s.server == nil {
		return
	}
	s.stopOnce.Do(s.shutdown)
}

func (s *Server) shutdown() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), seconds(s.cfg.Server.ShutdownTimeoutSeconds))
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("api server shutdown incomplete", logging.Error(err))
	}
	if s.done != nil {
		<-s.done
	}
	if err := s.lock.Unlock(); err != nil {
		s.logger.Warn("failed to release server lock", logging.Error(err))
	}
	s.logger.Info("api server stopped")
}

func seconds(n int) time.Duration {
	if n <= 0 {
		return 0
	}
	return time.Duration(n) * time.Second
}
