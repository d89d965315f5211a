package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/s0up4200/transmission-rest/filter"
)

const (
	defaultReadHeaderTimeout = 10 * time.Second
	shutdownTimeout          = 10 * time.Second
)

// Listen binds addr. Bind failures (port in use, permission denied) are
// returned here, before anything is served.
func Listen(addr string) (net.Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return ln, nil
}

// Serve handles connections on ln, each on its own goroutine, until ctx is
// cancelled. In-flight requests get shutdownTimeout to finish.
func (s *Server) Serve(ctx context.Context, ln net.Listener, readHeaderTimeout time.Duration) error {
	if readHeaderTimeout <= 0 {
		readHeaderTimeout = defaultReadHeaderTimeout
	}

	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info().
			Str("addr", ln.Addr().String()).
			Str("path", s.path).
			Msg("Status service listening")

		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		s.logger.Info().Msg("Shutting down status service")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		if cc, ok := s.compiler.(filter.CachingCompiler); ok {
			s.logger.Debug().Int("cached_filters", cc.Size()).Msg("Filter cache at shutdown")
		}
		return nil
	})

	return g.Wait()
}

// ListenAndServe binds addr and serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string, readHeaderTimeout time.Duration) error {
	ln, err := Listen(addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln, readHeaderTimeout)
}
