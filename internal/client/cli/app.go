package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/dmitrijs2005/gophsession/internal/client/client"
	"github.com/dmitrijs2005/gophsession/internal/client/config"
	"github.com/dmitrijs2005/gophsession/internal/client/models"
	"github.com/dmitrijs2005/gophsession/internal/client/repositories/tokens"
	"github.com/dmitrijs2005/gophsession/internal/client/services"
	"github.com/dmitrijs2005/gophsession/internal/logging"
	"github.com/dmitrijs2005/gophsession/internal/obs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

type App struct {
	config   *config.Config
	backend  client.Client
	session  *services.SessionService
	log      logging.Logger
	registry *prometheus.Registry
	metrics  *http.Server
	closers  []func() error
	reader   *bufio.Reader
	out      io.Writer
}

// NewApp opens the transport and the token store selected by c and builds
// the session service on top of them.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	log := logging.NewTextLogger(os.Stderr, slog.LevelInfo)
	reg := prometheus.NewRegistry()
	m := obs.NewMetrics(reg)

	backend, err := openBackend(c)
	if err != nil {
		return nil, err
	}

	store, closeStore, err := openStore(ctx, c)
	if err != nil {
		_ = backend.Close()
		return nil, err
	}

	a := newApp(c, client.NewInstrumented(backend, m), store, log, m)
	a.registry = reg
	a.closers = append(a.closers, closeStore)
	return a, nil
}

func newApp(c *config.Config, backend client.Client, store tokens.Repository, log logging.Logger, m *obs.Metrics) *App {
	return &App{
		config:  c,
		backend: backend,
		session: services.NewSessionService(backend, store, services.WithLogger(log), services.WithMetrics(m)),
		log:     log,
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
	}
}

func openBackend(c *config.Config) (client.Client, error) {
	switch c.Transport {
	case config.TransportGRPC:
		return client.NewGRPCClient(c.GRPCAddr, c.RequestTimeout)
	default:
		return client.NewHTTPClient(c.BackendURL, c.RequestTimeout)
	}
}

func openStore(ctx context.Context, c *config.Config) (tokens.Repository, func() error, error) {
	switch c.TokenStore {
	case config.StoreSQLite:
		db, err := client.InitDatabase(ctx, c.DatabaseDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("error initializing database: %w", err)
		}
		return tokens.NewSQLiteRepository(db), db.Close, nil

	case config.StoreRedis:
		rdb := redis.NewClient(&redis.Options{Addr: c.RedisAddr, Password: c.RedisPassword})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("error connecting to redis: %w", err)
		}
		return tokens.NewRedisRepository(rdb, tokens.DefaultRedisKey), rdb.Close, nil

	default:
		return tokens.NewMemoryRepository(), func() error { return nil }, nil
	}
}

// Run bootstraps the session and blocks in the REPL until the user exits or
// ctx is canceled. Resources are released on return.
func (a *App) Run(ctx context.Context) error {
	defer a.Close(context.Background())

	a.startMetrics(ctx)

	unsubscribe := a.session.Subscribe(a.printState)
	defer unsubscribe()

	printlnFn("Session client (type 'help' for commands)")
	if err := a.session.Bootstrap(ctx); err != nil {
		return err
	}

	runREPL(ctx, a, a.getStatus, bufio.NewScanner(a.reader))
	return nil
}

// Close stops the metrics endpoint and releases the transport and the store.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.metrics != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		errs = append(errs, a.metrics.Shutdown(shutdownCtx))
		cancel()
		a.metrics = nil
	}
	errs = append(errs, a.session.Close(ctx))
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) startMetrics(ctx context.Context) {
	if a.config.MetricsAddr == "" || a.registry == nil {
		return
	}
	a.metrics = &http.Server{
		Addr:              a.config.MetricsAddr,
		Handler:           obs.Handler(a.registry),
		ReadHeaderTimeout: 5 * time.Second,
	}
	srv := a.metrics
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error(ctx, "metrics server failed", "addr", srv.Addr, "error", err)
		}
	}()
	a.log.Info(ctx, "serving metrics", "addr", srv.Addr)
}

func (a *App) isLoggedIn() bool {
	return a.session.State().IsAuthenticated()
}

func (a *App) getStatus() string {
	st := a.session.State()
	switch st.Kind() {
	case models.StateAuthenticated:
		u, _ := st.User()
		return fmt.Sprintf("(%s)", u.Email)
	case models.StateAnonymous:
		return "(anonymous)"
	default:
		return ""
	}
}

// printState is the session subscriber.
func (a *App) printState(st models.SessionState) {
	printlnFn("Session:", describeState(st))
}

func describeState(st models.SessionState) string {
	u, ok := st.User()
	if !ok {
		if st.Kind() == models.StateAnonymous {
			return "logged out"
		}
		return "unknown"
	}
	verified := "unverified"
	if u.EmailVerified {
		verified = "verified"
	}
	return fmt.Sprintf("logged in as %s (%s, %s)", u.Email, u.Role, verified)
}
