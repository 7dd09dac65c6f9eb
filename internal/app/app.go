// Package app wires together all dependencies and runs the backend.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osdatum/backend/internal/auth"
	"github.com/osdatum/backend/internal/config"
	"github.com/osdatum/backend/internal/event"
	"github.com/osdatum/backend/internal/firebase"
	handler "github.com/osdatum/backend/internal/handler/http"
	"github.com/osdatum/backend/internal/repository/postgres"
	"github.com/osdatum/backend/internal/sender"
	"github.com/osdatum/backend/internal/service"
	"github.com/osdatum/backend/migrations"
	"github.com/osdatum/backend/pkg/database"
	"github.com/osdatum/backend/pkg/health"
	pkgkafka "github.com/osdatum/backend/pkg/kafka"
)

// App holds the running application's long-lived resources.
type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	pool       *pgxpool.Pool
	producer   *pkgkafka.Producer
	httpServer *http.Server
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// PostgreSQL connection pool.
	pool, err := database.NewPostgresPool(ctx, cfg.Postgres(), logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)

	// Database migrations.
	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrations completed")

	// Kafka producer.
	kafkaCfg := pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers)
	producer := pkgkafka.NewProducer(kafkaCfg, logger)
	logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))

	// Token manager. The secret is validated at config load, but the
	// constructor still refuses an empty one.
	tokens, err := auth.NewTokenManager(cfg.JWTSecret, "osdatum")
	if err != nil {
		pool.Close()
		return nil, err
	}

	// Firebase ID token verifier. Development without a project ID gets a
	// verifier that rejects everything, so the route still behaves sanely.
	var verifier firebase.Verifier
	if cfg.FirebaseProjectID != "" {
		verifier, err = firebase.NewGoogleVerifier(ctx, cfg.FirebaseProjectID)
		if err != nil {
			pool.Close()
			return nil, err
		}
	} else {
		logger.Warn("no firebase project configured, firebase login disabled")
		verifier = firebase.Disabled{}
	}

	// Email sender.
	var mailer sender.Sender
	if cfg.SMTPHost != "" {
		mailer = sender.NewSMTPSender(sender.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		})
	} else {
		mailer = sender.NewLogSender(logger)
	}

	// Build the dependency graph.
	userRepo := postgres.NewUserRepository(pool)
	purchaseRepo := postgres.NewPurchaseRepository(pool)
	applicationRepo := postgres.NewApplicationRepository(pool)
	eventProducer := event.NewProducer(producer, logger)

	authService := service.NewAuthService(
		userRepo, tokens, verifier, eventProducer, logger,
		cfg.PasswordTokenTTL, cfg.FirebaseTokenTTL,
	)
	entitlementService := service.NewEntitlementService(
		userRepo, purchaseRepo, applicationRepo,
		eventProducer, mailer, cfg.AdminEmail, logger,
	)

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.Register("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})

	// HTTP router.
	router := handler.NewRouter(
		authService, entitlementService, tokens, healthHandler, logger,
		handler.CORSConfig{
			AllowedOrigins: cfg.CORSAllowedOrigins,
			Environment:    cfg.Environment,
		},
	)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		cfg:        cfg,
		logger:     logger,
		pool:       pool,
		producer:   producer,
		httpServer: httpServer,
	}, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server", slog.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components: drain in-flight HTTP requests,
// close the Kafka producer, then close the PostgreSQL pool.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	httpCtx, httpCancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	a.pool.Close()

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
