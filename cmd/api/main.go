package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/straye-as/cbam-api/internal/auth"
	"github.com/straye-as/cbam-api/internal/config"
	"github.com/straye-as/cbam-api/internal/database"
	"github.com/straye-as/cbam-api/internal/http/handler"
	"github.com/straye-as/cbam-api/internal/http/middleware"
	"github.com/straye-as/cbam-api/internal/http/router"
	"github.com/straye-as/cbam-api/internal/jobs"
	"github.com/straye-as/cbam-api/internal/logger"
	"github.com/straye-as/cbam-api/internal/refdata"
	"github.com/straye-as/cbam-api/internal/repository"
	"github.com/straye-as/cbam-api/internal/service"
	"github.com/straye-as/cbam-api/internal/storage"
	"go.uber.org/zap"
)

// @title CBAM Compliance API
// @version 1.0
// @description CBAM certificate obligations, entry lifecycle and submission gates
//
// @contact.name API Support
// @contact.email support@straye.io
//
// @license.name MIT
// @license.url https://opensource.org/licenses/MIT
//
// @host localhost:8080
// @BasePath /api/v1
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token
//
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name x-api-key
// @description API Key for system integrations
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// Load basic configuration first (for logging setup)
	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", basicCfg.App.Name),
		zap.String("env", basicCfg.App.Environment),
		zap.Int("port", basicCfg.App.Port),
	)

	// In development secrets come from the environment; in staging and
	// production they are fetched from Azure Key Vault
	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	db, err := database.NewDatabase(&cfg.Database, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if cfg.Database.AutoMigrate {
		if err := database.AutoMigrate(db); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
		log.Info("Database schema migrated")
	}

	calculator, err := refdata.NewCalculator(cfg.Reference.Path, log)
	if err != nil {
		return fmt.Errorf("failed to load reference data: %w", err)
	}

	// Submission snapshots are optional; submissions are still recorded without them
	var archive *storage.Archive
	archiveStore, err := storage.NewStorage(ctx, &cfg.Storage, log)
	if err != nil {
		log.Warn("Archive storage unavailable, submissions will not be archived", zap.Error(err))
	} else {
		archive = storage.NewArchive(archiveStore, cfg.Storage.ArchivePrefix)
		log.Info("Storage initialized", zap.String("mode", cfg.Storage.Mode))
	}

	// Repositories
	entryRepo := repository.NewEntryRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)

	// Services
	referenceService := service.NewReferenceService(calculator, cfg.Reference.Path, log)
	calculationService := service.NewCalculationService(referenceService, cfg.Calculation.CertificatePricePtr(), log)
	entryService := service.NewEntryService(
		entryRepo,
		submissionRepo,
		referenceService,
		archive,
		cfg.Calculation.CertificatePricePtr(),
		log,
	)

	authMiddleware := auth.NewMiddleware(&cfg.Auth, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	rt := router.NewRouter(
		cfg,
		log,
		authMiddleware,
		rateLimiter,
		handler.NewHealthHandler(db, referenceService, log),
		handler.NewAuthHandler(log),
		handler.NewReferenceHandler(referenceService, log),
		handler.NewCalculationHandler(calculationService, log),
		handler.NewEntryHandler(entryService, log),
		handler.NewSubmissionHandler(entryService, log),
	)

	// Background recalculation of open entries after reference updates
	var scheduler *jobs.Scheduler
	if cfg.Jobs.RecalculationEnabled {
		scheduler = jobs.NewScheduler(log)
		if _, err := jobs.RegisterRecalculationJob(
			scheduler,
			referenceService,
			entryService,
			log,
			cfg.Jobs.RecalculationCron,
			cfg.Jobs.RecalculationTimeoutDuration(),
			cfg.Jobs.RecalculationBatchSize,
			cfg.Jobs.RecalculationOnStartup,
		); err != nil {
			log.Error("Failed to register recalculation job", zap.Error(err))
			scheduler = nil
		} else {
			scheduler.Start()
			log.Info("Scheduler started with recalculation job",
				zap.String("cron_expr", cfg.Jobs.RecalculationCron),
				zap.Duration("timeout", cfg.Jobs.RecalculationTimeoutDuration()),
			)
		}
	} else {
		log.Info("Periodic recalculation disabled")
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		if scheduler != nil {
			<-scheduler.Stop().Done()
			log.Info("Scheduler stopped")
		}

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeoutDuration())
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
		log.Info("Server stopped gracefully")
	}

	return nil
}
