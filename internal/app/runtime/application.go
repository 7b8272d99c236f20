package runtime

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	app "github.com/R3E-Network/fatesheet/internal/app"
	"github.com/R3E-Network/fatesheet/internal/app/httpapi"
	"github.com/R3E-Network/fatesheet/internal/app/metrics"
	"github.com/R3E-Network/fatesheet/internal/app/storage/memory"
	"github.com/R3E-Network/fatesheet/internal/app/storage/postgres"
	"github.com/R3E-Network/fatesheet/internal/app/storage/redisstore"
	"github.com/R3E-Network/fatesheet/internal/app/system"
	"github.com/R3E-Network/fatesheet/internal/config"
	"github.com/R3E-Network/fatesheet/internal/logging"
	"github.com/R3E-Network/fatesheet/internal/middleware"
)

const limiterCleanupInterval = time.Minute

// Application wires core dependencies and manages the HTTP server lifecycle.
type Application struct {
	cfg     *config.Config
	log     *logging.Logger
	app     *app.Application
	handler http.Handler
	server  *http.Server
}

// NewApplication builds stores, services and the HTTP stack from cfg.
// Connections opened here are closed by Shutdown.
func NewApplication(ctx context.Context, cfg *config.Config, log *logging.Logger) (*Application, error) {
	if log == nil {
		log = logging.New("fatesheet", cfg.Logging.Level, cfg.Logging.Format)
	}

	stores, closers, err := buildStores(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("configure stores: %w", err)
	}

	application, err := app.New(stores, log)
	if err != nil {
		closeAll(ctx, closers, log)
		return nil, fmt.Errorf("build application: %w", err)
	}
	for _, c := range closers {
		if err := application.Attach(c); err != nil {
			closeAll(ctx, closers, log)
			return nil, err
		}
	}

	m := metrics.New(true)
	router := httpapi.NewHandler(application, httpapi.Options{
		RenderDebug: cfg.HTTP.RenderDebug,
		Metrics:     m,
		Logger:      log,
		Middleware: []mux.MiddlewareFunc{
			middleware.LoggingMiddleware(log),
			middleware.MetricsMiddleware(m),
		},
	})

	var handler http.Handler = router
	if cfg.HTTP.RateLimitRPS > 0 {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRPS, cfg.HTTP.RateLimitBurst, log)
		handler = limiter.Handler(handler)

		stop := make(chan struct{})
		if err := application.Attach(system.Func{
			ServiceName: "rate-limiter-cleanup",
			OnStart: func(context.Context) error {
				limiter.StartCleanup(limiterCleanupInterval, stop)
				return nil
			},
			OnStop: func(context.Context) error {
				close(stop)
				return nil
			},
		}); err != nil {
			return nil, err
		}
	}
	if origins := cfg.HTTP.AllowedOrigins(); len(origins) > 0 {
		handler = middleware.NewCORSMiddleware(origins).Handler(handler)
	}
	handler = middleware.TracingMiddleware(handler)

	return &Application{
		cfg:     cfg,
		log:     log,
		app:     application,
		handler: handler,
		server: &http.Server{
			Addr:              cfg.Server.Addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// Handler returns the fully wrapped HTTP handler.
func (a *Application) Handler() http.Handler {
	return a.handler
}

// Run starts lifecycle services and the HTTP server, then blocks until ctx
// is cancelled or the server fails.
func (a *Application) Run(ctx context.Context) error {
	if err := a.app.Start(ctx); err != nil {
		return fmt.Errorf("start services: %w", err)
	}

	ln, err := net.Listen("tcp", a.cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", a.cfg.Server.Addr, err)
	}
	return a.Serve(ctx, ln)
}

// Serve is Run on an existing listener. Services must already be started.
func (a *Application) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)

	go func() {
		a.log.Component("runtime").Infof("HTTP server listening on %s", ln.Addr())
		if err := a.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

// Shutdown drains the HTTP server within the configured timeout and then
// stops services, closing store connections.
func (a *Application) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()

	serverErr := a.server.Shutdown(shutdownCtx)
	if err := a.app.Stop(shutdownCtx); err != nil {
		a.log.WithError(err).Warn("error stopping services")
	}
	return serverErr
}

func buildStores(ctx context.Context, cfg *config.Config, log *logging.Logger) (app.Stores, []system.Service, error) {
	var (
		stores  app.Stores
		closers []system.Service
		pg      *postgres.Store
	)

	if cfg.UsesPostgres() {
		db, err := postgres.Open(ctx, cfg.Database.DSN, cfg.Database.MaxOpenConns)
		if err != nil {
			return stores, nil, err
		}
		closers = append(closers, system.Closer("postgres", db.Close))
		pg = postgres.New(db, log)
	}

	mem := memory.New()
	if path := cfg.Storage.CharacterSeedFile; path != "" {
		if err := mem.LoadSeedFile(path); err != nil {
			closeAll(ctx, closers, log)
			return stores, nil, err
		}
	}

	switch cfg.Storage.TodoStore {
	case config.BackendPostgres:
		stores.Todos = pg
	case config.BackendRedis:
		rs, err := redisstore.Open(ctx, redisstore.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Key:      cfg.Redis.TodoKey,
		})
		if err != nil {
			closeAll(ctx, closers, log)
			return stores, nil, err
		}
		closers = append(closers, system.Closer("redis", rs.Close))
		stores.Todos = rs
	default:
		stores.Todos = mem
	}

	switch cfg.Storage.CharacterStore {
	case config.BackendPostgres:
		stores.Characters = pg
	default:
		stores.Characters = mem
	}

	log.Component("runtime").
		WithField("todo_store", cfg.Storage.TodoStore).
		WithField("character_store", cfg.Storage.CharacterStore).
		Info("stores configured")
	return stores, closers, nil
}

func closeAll(ctx context.Context, closers []system.Service, log *logging.Logger) {
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i].Stop(ctx); err != nil {
			log.WithError(err).Warnf("close %s", closers[i].Name())
		}
	}
}
