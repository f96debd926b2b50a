package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/expensehub/expense_approval_app/internal/adapters/email"
	"github.com/expensehub/expense_approval_app/internal/adapters/storage"
	portssvc "github.com/expensehub/expense_approval_app/internal/core/ports/services"
	"github.com/expensehub/expense_approval_app/internal/core/services"
	"github.com/expensehub/expense_approval_app/internal/handlers"
	"github.com/expensehub/expense_approval_app/internal/middleware"
	"github.com/expensehub/expense_approval_app/internal/platform/config"
	"github.com/expensehub/expense_approval_app/internal/platform/scheduler"
	"github.com/expensehub/expense_approval_app/internal/repositories/database/pgsql"
	"github.com/expensehub/expense_approval_app/internal/utils"
	"github.com/expensehub/expense_approval_app/pkg/database"
)

// @title Expense Approval API
// @version 1.0
// @description Multi-stage expense approval workflow backend.

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	dbPool, err := database.NewPgxPool(context.Background(), cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer dbPool.Close()
	logger.Info("Database connection pool established.")

	if err := runMigrations(cfg, logger); err != nil {
		logger.Error("Failed to apply migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	posthogClient := utils.InitializePosthogClient(cfg.PostHogAPIKey, logger)
	defer posthogClient.Close()

	// Global middleware (logging, recovery, CORS, analytics)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	r.Use(cors.New(corsConfig(cfg)))
	r.Use(middleware.PosthogMiddleware(posthogClient))

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	repos := pgsql.NewRepositoryProvider(dbPool)
	serviceContainer := services.NewServiceContainer(
		cfg,
		&repos,
		buildNotifier(cfg, logger),
		buildAttachmentStore(cfg, logger),
		services.PolicyEngine{EnforceSubcategoryAttachment: cfg.PolicyEnforceSubcategoryAttachment},
	)

	handlers.RegisterRoutes(r, cfg, serviceContainer)

	if cfg.BackupEnabled {
		backupScheduler := scheduler.NewBackupScheduler(cfg.BackupCronSpec, serviceContainer.Backup, logger)
		if err := backupScheduler.Start(); err != nil {
			logger.Error("Failed to start backup scheduler", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer backupScheduler.Stop()
		logger.Info("Backup scheduler started", slog.String("spec", cfg.BackupCronSpec))
	}

	// Stop the scheduler and flush analytics on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port))
		errCh <- r.Run(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		logger.Error("Server failed to run", slog.String("error", err.Error()))
		os.Exit(1)
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	}
}

// runMigrations applies all pending "up" migrations from the migrations
// directory over a temporary database/sql connection.
func runMigrations(cfg *config.Config, logger *slog.Logger) error {
	logger.Info("Running database migrations...")

	migrationDB, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()
	if err := migrationDB.Ping(); err != nil {
		return err
	}

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		return err
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return err
	}

	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		return sourceErr
	}
	if dbErr != nil {
		return dbErr
	}

	if err == migrate.ErrNoChange {
		logger.Info("No new migrations to apply.")
	} else {
		logger.Info("Database migrations applied successfully.")
	}
	return nil
}

func corsConfig(cfg *config.Config) cors.Config {
	corsCfg := cors.DefaultConfig()
	corsCfg.AllowOrigins = []string{cfg.FrontendBaseURL}
	corsCfg.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	return corsCfg
}

// buildNotifier picks the SMTP sink when one is configured, otherwise a
// log-only fallback.
func buildNotifier(cfg *config.Config, logger *slog.Logger) portssvc.NotificationSink {
	if cfg.SMTPHost != "" {
		return email.NewSMTPNotifier(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom, logger)
	}
	return &email.LogNotifier{Logger: logger}
}

// buildAttachmentStore picks the S3 store when a bucket is configured,
// otherwise local disk.
func buildAttachmentStore(cfg *config.Config, logger *slog.Logger) portssvc.AttachmentStore {
	if cfg.S3Bucket != "" {
		store, err := storage.NewS3Store(context.Background(), storage.S3Config{
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
		if err != nil {
			logger.Error("Failed to initialize S3 store", slog.String("error", err.Error()))
			os.Exit(1)
		}
		return store
	}

	local, err := storage.NewLocalStore("data/attachments")
	if err != nil {
		logger.Error("Failed to initialize local store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	return local
}
