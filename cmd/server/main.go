// Package main is the entry point for the service. It wires all dependencies
// using samber/do v2, runs database migrations, starts the HTTP server, and
// handles graceful shutdown on SIGINT/SIGTERM.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/samber/do/v2"

	adapthttp "github.com/planagain/todo-api/internal/adapters/http"
	"github.com/planagain/todo-api/internal/adapters/http/handlers"
	"github.com/planagain/todo-api/internal/adapters/http/middleware"

	"github.com/planagain/todo-api/internal/adapters/clients/google"
	"github.com/planagain/todo-api/internal/adapters/storage/postgres"
	"github.com/planagain/todo-api/internal/adapters/storage/redisstore"
	"github.com/planagain/todo-api/internal/app"
	"github.com/planagain/todo-api/internal/platform/config"
	"github.com/planagain/todo-api/internal/platform/health"
	"github.com/planagain/todo-api/internal/platform/httpclient"
	"github.com/planagain/todo-api/internal/platform/logging"
	"github.com/planagain/todo-api/internal/platform/telemetry"
	"github.com/planagain/todo-api/internal/ports"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const (
	serverShutdownTimeout = 15 * time.Second
	otelShutdownTimeout   = 5 * time.Second
	startupTimeout        = 30 * time.Second
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	profile := os.Getenv("APP_PROFILE")
	if profile == "" {
		return errors.New("APP_PROFILE environment variable is required (e.g. local, dev, qa, prod)")
	}

	// Bootstrap: config, logger, telemetry.
	cfg, err := config.Load(profile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)

	ctx := context.Background()
	otel, err := initTelemetry(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}

	// Schema migrations run before the pool is opened; an unreachable store
	// at boot is fatal by design.
	if err := postgres.Migrate(&cfg.Database); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}

	startupCtx, startupCancel := context.WithTimeout(ctx, startupTimeout)
	defer startupCancel()

	pool, err := postgres.NewPool(startupCtx, &cfg.Database)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer pool.Close()

	redisClient := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(startupCtx).Err(); err != nil {
		return fmt.Errorf("connecting to redis: %w", err)
	}
	defer redisClient.Close()

	// DI container.
	injector := do.New()

	do.ProvideValue(injector, cfg)
	do.ProvideValue(injector, logger)
	do.ProvideValue(injector, otel.metrics)
	do.ProvideValue(injector, pool)
	do.ProvideValue(injector, redisClient)

	if err := registerDependencies(injector, cfg, logger); err != nil {
		return err
	}

	// Resolve the server (eagerly wires the full graph).
	server, err := do.Invoke[*adapthttp.Server](injector)
	if err != nil {
		return fmt.Errorf("resolving server: %w", err)
	}

	// Register health checkers after the graph is wired.
	registry := do.MustInvoke[ports.HealthRegistry](injector)
	registry.Register(postgres.NewHealthChecker(pool))
	registry.Register(redisstore.NewHealthChecker(redisClient))
	if cfg.Google.Enabled {
		registry.Register(do.MustInvoke[*httpclient.Client](injector))
	}

	// Start server in background.
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	// Wait for shutdown signal or server error.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("received shutdown signal", slog.String("signal", sig.String()))
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	}

	// Graceful shutdown: drain HTTP requests.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), serverShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
	}

	// Wait for Start() goroutine to return.
	<-serverErr

	// Flush telemetry.
	otelCtx, otelCancel := context.WithTimeout(context.Background(), otelShutdownTimeout)
	defer otelCancel()

	if err := otel.Shutdown(otelCtx); err != nil {
		logger.Error("telemetry shutdown error", slog.Any("error", err))
	}

	logger.Info("shutdown complete")
	return nil
}

// otelProviders bundles OpenTelemetry provider lifecycle. All fields are nil
// when telemetry is disabled.
type otelProviders struct {
	tracer  *sdktrace.TracerProvider
	meter   *sdkmetric.MeterProvider
	metrics *telemetry.Metrics
}

// Shutdown flushes both providers. Nil-safe.
func (o *otelProviders) Shutdown(ctx context.Context) error {
	var errs []error
	if o.tracer != nil {
		if err := o.tracer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer shutdown: %w", err))
		}
	}
	if o.meter != nil {
		if err := o.meter.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter shutdown: %w", err))
		}
	}
	return errors.Join(errs...)
}

func initTelemetry(ctx context.Context, cfg *config.Config) (*otelProviders, error) {
	if !cfg.Telemetry.Enabled {
		return &otelProviders{}, nil
	}

	tp, err := telemetry.InitTracer(ctx,
		cfg.Telemetry.ServiceName,
		cfg.Telemetry.Exporter,
		cfg.Telemetry.Endpoint,
	)
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	mp, err := telemetry.InitMeter(ctx,
		cfg.Telemetry.ServiceName,
		cfg.Telemetry.Exporter,
		cfg.Telemetry.Endpoint,
	)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, fmt.Errorf("init meter: %w", err)
	}

	metrics, err := telemetry.NewMetrics(mp)
	if err != nil {
		_ = tp.Shutdown(ctx)
		_ = mp.Shutdown(ctx)
		return nil, fmt.Errorf("creating metrics: %w", err)
	}

	return &otelProviders{
		tracer:  tp,
		meter:   mp,
		metrics: metrics,
	}, nil
}

func registerDependencies(injector *do.RootScope, cfg *config.Config, logger *slog.Logger) error {
	notifierLoc, err := time.LoadLocation(cfg.Notifier.Timezone)
	if err != nil {
		return fmt.Errorf("loading notifier timezone: %w", err)
	}

	// Storage adapters.
	do.Provide(injector, func(i do.Injector) (ports.TodoRepository, error) {
		pool := do.MustInvoke[*pgxpool.Pool](i)
		return postgres.NewTodoRepo(pool), nil
	})

	do.Provide(injector, func(i do.Injector) (ports.UserRepository, error) {
		pool := do.MustInvoke[*pgxpool.Pool](i)
		return postgres.NewUserRepo(pool), nil
	})

	do.Provide(injector, func(i do.Injector) (ports.SessionStore, error) {
		client := do.MustInvoke[*goredis.Client](i)
		return redisstore.NewSessionStore(client, cfg.Auth.SessionTTL), nil
	})

	// Federated sign-in client.
	do.Provide(injector, func(i do.Injector) (*httpclient.Client, error) {
		metrics := do.MustInvoke[*telemetry.Metrics](i)
		return httpclient.New(&cfg.Google.Client, "google-identity", metrics, logger), nil
	})

	do.Provide(injector, func(i do.Injector) (ports.TokenVerifier, error) {
		if !cfg.Google.Enabled {
			return nil, nil
		}
		client := do.MustInvoke[*httpclient.Client](i)
		return google.NewVerifier(client, cfg.Google.ClientID), nil
	})

	// Application services.
	do.Provide(injector, func(i do.Injector) (ports.TodoService, error) {
		repo := do.MustInvoke[ports.TodoRepository](i)
		metrics := do.MustInvoke[*telemetry.Metrics](i)
		return app.NewTodoService(repo, metrics, logger), nil
	})

	do.Provide(injector, func(i do.Injector) (ports.NotificationService, error) {
		repo := do.MustInvoke[ports.TodoRepository](i)
		return app.NewNotifier(repo, notifierLoc, cfg.Notifier.Window, logger), nil
	})

	do.Provide(injector, func(i do.Injector) (ports.AuthService, error) {
		users := do.MustInvoke[ports.UserRepository](i)
		sessions := do.MustInvoke[ports.SessionStore](i)
		verifier := do.MustInvoke[ports.TokenVerifier](i)
		return app.NewAuthService(users, sessions, verifier,
			cfg.Auth.JWTSecret, cfg.Auth.SessionTTL, logger), nil
	})

	do.Provide(injector, func(i do.Injector) (ports.UserService, error) {
		users := do.MustInvoke[ports.UserRepository](i)
		return app.NewUserService(users, logger), nil
	})

	do.Provide(injector, func(_ do.Injector) (ports.HealthRegistry, error) {
		return health.New(), nil
	})

	// Handlers and router.
	do.Provide(injector, func(i do.Injector) (*handlers.AuthHandler, error) {
		auth := do.MustInvoke[ports.AuthService](i)
		users := do.MustInvoke[ports.UserService](i)
		return handlers.NewAuthHandler(auth, users, cfg.Auth.SessionTTL, false), nil
	})

	do.Provide(injector, func(i do.Injector) (*handlers.UserHandler, error) {
		users := do.MustInvoke[ports.UserService](i)
		return handlers.NewUserHandler(users), nil
	})

	do.Provide(injector, func(i do.Injector) (*handlers.TodoHandler, error) {
		todos := do.MustInvoke[ports.TodoService](i)
		notifier := do.MustInvoke[ports.NotificationService](i)
		return handlers.NewTodoHandler(todos, notifier), nil
	})

	do.Provide(injector, func(i do.Injector) (*handlers.HealthHandler, error) {
		registry := do.MustInvoke[ports.HealthRegistry](i)
		return handlers.NewHealthHandler(registry), nil
	})

	do.Provide(injector, func(i do.Injector) (nethttp.Handler, error) {
		authH := do.MustInvoke[*handlers.AuthHandler](i)
		userH := do.MustInvoke[*handlers.UserHandler](i)
		todoH := do.MustInvoke[*handlers.TodoHandler](i)
		healthH := do.MustInvoke[*handlers.HealthHandler](i)
		auth := do.MustInvoke[ports.AuthService](i)
		metrics := do.MustInvoke[*telemetry.Metrics](i)

		return adapthttp.NewRouter(authH, userH, todoH, healthH, auth,
			cfg.Server.CORSOrigins,
			middleware.Recovery(logger),
			middleware.RequestID(),
			middleware.CorrelationID(),
			middleware.OpenTelemetry(metrics),
			middleware.Logging(logger),
			middleware.Timeout(cfg.Server.WriteTimeout),
		), nil
	})

	do.Provide(injector, func(i do.Injector) (*adapthttp.Server, error) {
		handler := do.MustInvoke[nethttp.Handler](i)
		return adapthttp.NewServer(cfg.Server, handler, logger), nil
	})

	return nil
}
