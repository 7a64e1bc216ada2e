package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/mbco-platform/netcash-backend/internal/adapters/mail"
	"github.com/mbco-platform/netcash-backend/internal/adapters/ocr"
	"github.com/mbco-platform/netcash-backend/internal/adapters/storage"
	portssvc "github.com/mbco-platform/netcash-backend/internal/core/ports/services"
	"github.com/mbco-platform/netcash-backend/internal/core/services"
	"github.com/mbco-platform/netcash-backend/internal/handlers"
	"github.com/mbco-platform/netcash-backend/internal/middleware"
	"github.com/mbco-platform/netcash-backend/internal/platform/config"
	"github.com/mbco-platform/netcash-backend/internal/repositories/database/pgsql"
	"github.com/mbco-platform/netcash-backend/internal/utils"
	"github.com/mbco-platform/netcash-backend/pkg/database"
)

// @title NetCash Backend API
// @version 1.0
// @description Operation lifecycle engine for NetCash cash settlements.

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
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
	defer database.ClosePgxPool(dbPool)
	logger.Info("Database connection pool established.")

	if err := runMigrations(cfg.DatabaseURL, logger); err != nil {
		os.Exit(1)
	}

	fileStore, err := storage.NewLocalStore(cfg.UploadsDir)
	if err != nil {
		logger.Error("Failed to initialize file storage", slog.String("error", err.Error()))
		os.Exit(1)
	}

	extractor := ocr.NewExtractor(cfg.OCRServiceURL, cfg.OCRTimeout)

	var mailer portssvc.Mailer
	if cfg.GmailCredentialsJSON != "" && cfg.GmailTokenJSON != "" {
		mailer, err = mail.NewGmailMailer(context.Background(),
			[]byte(cfg.GmailCredentialsJSON), []byte(cfg.GmailTokenJSON), cfg.GmailSenderAddress)
		if err != nil {
			logger.Error("Failed to initialize gmail mailer", slog.String("error", err.Error()))
			os.Exit(1)
		}
	} else {
		logger.Warn("Gmail credentials not configured; layout dispatch is disabled.")
		mailer = mail.NewDisabledMailer()
	}

	repos := pgsql.NewRepositoryProvider(dbPool)
	serviceContainer := services.NewServiceContainer(repos, cfg, extractor, fileStore, mailer)

	scheduler := startLayoutScheduler(cfg, serviceContainer, logger)
	defer scheduler.Stop()

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	r.Use(cors.Default())

	if rate, err := limiter.NewRateFromFormatted(cfg.RateLimit); err == nil {
		r.Use(middleware.RateLimit(limiter.New(memory.NewStore(), rate)))
	} else {
		logger.Warn("Invalid RATE_LIMIT value, rate limiting disabled", slog.String("value", cfg.RateLimit))
	}

	posthogClient := utils.InitializePosthogClient(cfg.PosthogAPIKey, logger)
	defer posthogClient.Close()
	r.Use(middleware.PosthogMiddleware(posthogClient))

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, cfg, serviceContainer)

	logger.Info("Server starting", slog.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("Server failed to run", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// startLayoutScheduler retries layout generation and dispatch for operations
// that have a code assigned but no delivered layout yet.
func startLayoutScheduler(cfg *config.Config, serviceContainer *portssvc.ServiceContainer, logger *slog.Logger) *cron.Cron {
	scheduler := cron.New()
	_, err := scheduler.AddFunc(cfg.LayoutRetrySchedule, func() {
		if err := serviceContainer.Layout.DispatchPending(context.Background()); err != nil {
			logger.Warn("Layout dispatch sweep finished with failures", slog.String("error", err.Error()))
		}
	})
	if err != nil {
		logger.Error("Invalid LAYOUT_RETRY_SCHEDULE, layout retries disabled",
			slog.String("value", cfg.LayoutRetrySchedule), slog.String("error", err.Error()))
		return scheduler
	}
	scheduler.Start()
	logger.Info("Layout retry scheduler started", slog.String("schedule", cfg.LayoutRetrySchedule))
	return scheduler
}

func runMigrations(databaseURL string, logger *slog.Logger) error {
	logger.Info("Running database migrations...")

	migrationDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		logger.Error("Failed to open database connection for migrations", slog.String("error", err.Error()))
		return err
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		logger.Error("Could not create postgres driver instance for migrations", slog.String("error", err.Error()))
		return err
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		logger.Error("Could not create migrate instance", slog.String("error", err.Error()))
		return err
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		logger.Error("Failed to apply migrations", slog.String("error", err.Error()))
		return err
	}

	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		logger.Error("Migration source error", slog.String("error", sourceErr.Error()))
		return sourceErr
	}
	if dbErr != nil {
		logger.Error("Migration database error", slog.String("error", dbErr.Error()))
		return dbErr
	}

	if err == migrate.ErrNoChange {
		logger.Info("No new migrations to apply.")
	} else {
		logger.Info("Database migrations applied successfully.")
	}
	return nil
}
