package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/biomarker-insight-server/internal/api"
	"github.com/biomarker-insight-server/internal/cache"
	"github.com/biomarker-insight-server/internal/config"
	"github.com/biomarker-insight-server/internal/database"
	"github.com/biomarker-insight-server/internal/domain"
	"github.com/biomarker-insight-server/internal/history"
	"github.com/biomarker-insight-server/internal/repository"
	"github.com/biomarker-insight-server/internal/service"
	"github.com/biomarker-insight-server/pkg/fetch"
)

func main() {
	// Load configuration
	configManager, err := config.NewManager()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	// Validate configuration
	if err := configManager.Validate(); err != nil {
		logrus.Fatalf("Configuration validation failed: %v", err)
	}

	cfg := configManager.GetConfig()
	logger := newLogger(cfg.Logging)
	logger.WithFields(logrus.Fields{
		"host": cfg.Server.Host,
		"port": cfg.Server.Port,
	}).Info("Starting biomarker insight server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Core services
	datasets := service.NewDatasetService(logger)
	classifier := service.NewClassifierService(logger)
	trends := service.NewTrendService(logger, classifier)
	validator := service.NewValidatorService(logger)
	reports := service.NewReportService(logger, classifier, trends, validator)
	exporter := service.NewExportService(logger)

	fetcher := fetch.NewClient(fetch.Config{
		Timeout:    cfg.Sample.Timeout,
		RetryCount: cfg.Sample.RetryCount,
	}, logger)
	sample := service.NewSampleLoader(logger, datasets, fetcher, cfg.Sample.Path, cfg.Sample.URL)

	deps := api.Dependencies{
		Logger:     logger,
		Datasets:   datasets,
		Classifier: classifier,
		Trends:     trends,
		Validator:  validator,
		Reports:    reports,
		Exporter:   exporter,
		Sample:     sample,
	}

	// Report cache
	reportCache, err := newCache(cfg.Cache, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize cache: %v", err)
	}
	defer reportCache.Close()
	deps.Cache = reportCache

	// Classification history store
	store, err := newHistoryStore(cfg.History, configManager.GetDatabaseURL())
	if err != nil {
		logger.Fatalf("Failed to initialize history store: %v", err)
	}
	defer store.Close()
	deps.History = store

	// Optional snapshot persistence
	if cfg.Database.Enabled {
		db, err := setupDatabase(ctx, configManager, logger)
		if err != nil {
			logger.Fatalf("Failed to initialize database: %v", err)
		}
		defer db.Close()
		deps.DB = db
		deps.Snapshots = repository.NewSnapshotRepository(db.Pool, logger)
	}

	server := api.NewServer(cfg.Server, cfg.Logging.Level, deps)

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, gracefully shutting down...")
		cancel()
	}()

	if err := server.Start(ctx); err != nil {
		logger.Fatalf("Server failed: %v", err)
	}

	logger.Info("Server stopped")
}

func newLogger(cfg domain.LoggingConfig) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return logger
}

func newCache(cfg domain.CacheConfig, logger *logrus.Logger) (cache.ReportCache, error) {
	if cfg.Backend == "redis" {
		logger.WithField("backend", "redis").Info("Initializing report cache")
		return cache.NewRedisCache(cfg)
	}
	logger.WithField("backend", "memory").Info("Initializing report cache")
	return cache.NewMemoryCache(cfg.MaxItems)
}

func newHistoryStore(cfg domain.HistoryConfig, databaseURL string) (history.Store, error) {
	if cfg.Backend == "postgres" {
		return history.NewPostgresStoreFromURL(databaseURL)
	}
	return history.NewSQLiteStore(cfg.Path)
}

func setupDatabase(ctx context.Context, configManager *config.Manager, logger *logrus.Logger) (*database.DB, error) {
	dbCfg := configManager.GetDatabaseConfig()

	runner, err := database.NewMigrationRunner(configManager.GetDatabaseURL(), dbCfg.MigrationsPath, logger)
	if err != nil {
		return nil, err
	}
	defer runner.Close()
	if err := runner.Up(ctx); err != nil {
		return nil, err
	}

	return database.NewConnection(ctx, database.Config{
		Host:        dbCfg.Host,
		Port:        dbCfg.Port,
		Database:    dbCfg.Database,
		Username:    dbCfg.Username,
		Password:    dbCfg.Password,
		MaxConns:    dbCfg.MaxConns,
		MinConns:    dbCfg.MinConns,
		MaxConnLife: dbCfg.MaxConnLife,
		MaxConnIdle: dbCfg.MaxConnIdle,
		SSLMode:     dbCfg.SSLMode,
	}, logger)
}
