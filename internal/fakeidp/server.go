package fakeidp

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophsession/internal/client/client"
	"github.com/dmitrijs2005/gophsession/internal/logging"
)

// Server exposes one Backend over HTTP and gRPC. Either address may be empty
// to skip that listener.
type Server struct {
	HTTPAddr string
	GRPCAddr string
	Backend  *Backend
	Logger   logging.Logger
}

// Run serves until ctx is done, then shuts both listeners down gracefully.
func (s *Server) Run(ctx context.Context) error {
	log := s.Logger
	if log == nil {
		log = logging.Discard()
	}
	log = log.With("module", "fakeidp")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg      sync.WaitGroup
		errOnce sync.Once
		runErr  error
	)
	stop := func(err error) {
		errOnce.Do(func() { runErr = err })
		cancel()
	}

	if s.HTTPAddr != "" {
		ln, err := net.Listen("tcp", s.HTTPAddr)
		if err != nil {
			return err
		}
		srv := &http.Server{Handler: s.Backend.Handler(client.DefaultAPIPrefix), ReadHeaderTimeout: 5 * time.Second}

		wg.Add(1)
		go func() {
			defer wg.Done()
			log.Info(ctx, "Starting HTTP server", "address", ln.Addr().String())
			if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				stop(err)
			}
		}()
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-ctx.Done()
			log.Info(ctx, "Stopping HTTP server...")
			shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
			defer done()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	if s.GRPCAddr != "" {
		ln, err := net.Listen("tcp", s.GRPCAddr)
		if err != nil {
			cancel()
			wg.Wait()
			return err
		}
		srv := NewGRPCServer(s.Backend)

		wg.Add(1)
		go func() {
			defer wg.Done()
			log.Info(ctx, "Starting gRPC server", "address", ln.Addr().String())
			if err := srv.Serve(ln); err != nil {
				stop(err)
			}
		}()
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-ctx.Done()
			log.Info(ctx, "Stopping gRPC server...")
			srv.GracefulStop()
		}()
	}

	wg.Wait()
	return runErr
}
