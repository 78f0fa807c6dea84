package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/evyataryagoni/locationserver/internal/logger"
	"golang.org/x/sync/errgroup"
)

// Config holds listener settings
type Config struct {
	Addr            string        // public listener, host:port
	AdminAddr       string        // admin listener, empty disables it
	ShutdownTimeout time.Duration // grace period for in-flight requests
}

// Server runs the public listener and, optionally, the admin listener
type Server struct {
	cfg    Config
	public *http.Server
	admin  *http.Server
	log    *logger.Logger

	ready chan struct{}
	addrs []net.Addr
}

// New creates a server. admin may be nil when cfg.AdminAddr is empty.
func New(cfg Config, public, admin http.Handler, log *logger.Logger) *Server {
	if log == nil {
		log = logger.NewDefault()
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}

	s := &Server{
		cfg:    cfg,
		public: newHTTPServer(cfg.Addr, public),
		log:    log.WithComponent("Server"),
		ready:  make(chan struct{}),
	}
	if cfg.AdminAddr != "" && admin != nil {
		s.admin = newHTTPServer(cfg.AdminAddr, admin)
	}
	return s
}

func newHTTPServer(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

// Run binds the listeners and serves until ctx is canceled, then stops
// accepting connections and waits for in-flight requests up to the shutdown
// timeout. It returns nil after a clean shutdown.
func (s *Server) Run(ctx context.Context) error {
	publicLn, err := net.Listen("tcp", s.public.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.public.Addr, err)
	}

	var adminLn net.Listener
	if s.admin != nil {
		adminLn, err = net.Listen("tcp", s.admin.Addr)
		if err != nil {
			publicLn.Close()
			return fmt.Errorf("listen on %s: %w", s.admin.Addr, err)
		}
		s.addrs = append(s.addrs, publicLn.Addr(), adminLn.Addr())
	} else {
		s.addrs = append(s.addrs, publicLn.Addr())
	}

	s.log.Info().Msgf("Server starting on http://%s", s.public.Addr)
	if adminLn != nil {
		s.log.Info().
			Str("health", "http://"+adminLn.Addr().String()+"/health").
			Str("metrics", "http://"+adminLn.Addr().String()+"/metrics").
			Str("swagger", "http://"+adminLn.Addr().String()+"/swagger/index.html").
			Msg("Admin listener running")
	}
	close(s.ready)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return serve(s.public, publicLn)
	})
	if adminLn != nil {
		g.Go(func() error {
			return serve(s.admin, adminLn)
		})
	}

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()

		var errs []error
		if err := s.public.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("public listener shutdown: %w", err))
		}
		if s.admin != nil {
			if err := s.admin.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, fmt.Errorf("admin listener shutdown: %w", err))
			}
		}
		return errors.Join(errs...)
	})

	err = g.Wait()
	s.log.Info().Msg("Server stopped")
	return err
}

// serve treats http.ErrServerClosed as a clean exit
func serve(srv *http.Server, ln net.Listener) error {
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve %s: %w", ln.Addr(), err)
	}
	return nil
}

// Ready is closed once the listeners are bound
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Addrs returns the bound addresses (public first). Valid after Ready.
func (s *Server) Addrs() []net.Addr {
	return s.addrs
}
