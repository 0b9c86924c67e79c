package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/dmitrymomot/churchbilling/pkg/logger"
)

type shutdownHook struct {
	name string
	fn   func(context.Context) error
}

// Server runs an http.Server until its context is cancelled and then shuts it
// down gracefully, draining in-flight requests before running shutdown hooks.
type Server struct {
	cfg    Config
	logger *slog.Logger
	hooks  []shutdownHook

	mu      sync.Mutex
	srv     *http.Server
	running bool
}

// New creates a Server. Zero fields of cfg fall back to defaults.
func New(cfg Config, opts ...Option) *Server {
	s := &Server{
		cfg:    cfg.merge(defaultConfig()),
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run listens on the configured address and serves handler until ctx is done.
func (s *Server) Run(ctx context.Context, handler http.Handler) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.cfg.Addr)
	if err != nil {
		return errors.Join(ErrStart, err)
	}
	return s.Serve(ctx, ln, handler)
}

// Serve serves handler on ln until ctx is done, then shuts down.
// A nil return means the server stopped cleanly.
func (s *Server) Serve(ctx context.Context, ln net.Listener, handler http.Handler) error {
	if handler == nil {
		handler = http.NotFoundHandler()
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		_ = ln.Close()
		return ErrAlreadyRunning
	}
	s.running = true
	s.srv = &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: s.cfg.ReadHeaderTimeout,
		ReadTimeout:       s.cfg.ReadTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
		IdleTimeout:       s.cfg.IdleTimeout,
		ErrorLog:          slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
	}
	srv := s.srv
	s.mu.Unlock()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	s.logger.InfoContext(ctx, "HTTP server started", slog.String("addr", ln.Addr().String()))

	select {
	case err := <-errCh:
		s.reset()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Join(ErrStart, err)
		}
		return nil
	case <-ctx.Done():
	}

	err := s.shutdown(context.WithoutCancel(ctx))
	<-errCh
	s.reset()
	return err
}

func (s *Server) shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
	defer cancel()

	s.logger.InfoContext(ctx, "HTTP server shutting down")

	var errs []error
	if err := s.srv.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	for _, h := range s.hooks {
		if err := h.fn(ctx); err != nil {
			s.logger.ErrorContext(ctx, "Shutdown hook failed",
				logger.Component(h.name),
				logger.Error(err),
			)
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return errors.Join(append([]error{ErrShutdown}, errs...)...)
	}
	s.logger.InfoContext(ctx, "HTTP server stopped")
	return nil
}

func (s *Server) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	s.srv = nil
}
