// Command fakeidp runs an in-memory identity backend for local development.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/gophsession/internal/fakeidp"
	"github.com/dmitrijs2005/gophsession/internal/logging"
	"golang.org/x/time/rate"
)

func main() {
	httpAddr := flag.String("a", "127.0.0.1:3000", "HTTP listen address, empty disables")
	grpcAddr := flag.String("g", "127.0.0.1:50051", "gRPC listen address, empty disables")
	secret := flag.String("k", "dev-secret", "JWT signing key")
	loginsPerMinute := flag.Int("l", 0, "login attempts per email per minute, 0 disables the limit")
	flag.Parse()

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	var opts []fakeidp.Option
	if *loginsPerMinute > 0 {
		opts = append(opts, fakeidp.WithLoginLimit(rate.Every(time.Minute/time.Duration(*loginsPerMinute)), *loginsPerMinute))
	}
	backend := fakeidp.New(*secret, opts...)
	srv := &fakeidp.Server{HTTPAddr: *httpAddr, GRPCAddr: *grpcAddr, Backend: backend, Logger: logger}

	// Verification mail is not sent; print tokens so they can be pasted into
	// the CLI's verify command.
	backend.OnVerificationToken(func(email, token string) {
		logger.Info(ctx, "verification token issued", "email", email, "token", token)
	})

	if err := srv.Run(ctx); err != nil {
		logger.Error(ctx, "server stopped", "error", err)
		os.Exit(1)
	}
}
