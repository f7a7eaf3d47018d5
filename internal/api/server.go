// Package api exposes the dashboard's data operations over HTTP:
// dataset upload and ingestion, classification, trends, validation,
// reports, charts and CSV export.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/biomarker-insight-server/internal/cache"
	"github.com/biomarker-insight-server/internal/database"
	"github.com/biomarker-insight-server/internal/domain"
	"github.com/biomarker-insight-server/internal/history"
	"github.com/biomarker-insight-server/internal/repository"
	"github.com/biomarker-insight-server/internal/service"
)

// Dependencies bundles everything the HTTP layer needs. History,
// Snapshots, Cache and DB are optional; handlers degrade gracefully
// when they are nil.
type Dependencies struct {
	Logger     *logrus.Logger
	Datasets   *service.DatasetService
	Classifier *service.ClassifierService
	Trends     *service.TrendService
	Validator  *service.ValidatorService
	Reports    *service.ReportService
	Exporter   *service.ExportService
	Sample     *service.SampleLoader
	History    history.Store
	Snapshots  *repository.SnapshotRepository
	Cache      cache.ReportCache
	DB         *database.DB
}

// Server represents the HTTP server
type Server struct {
	cfg    domain.ServerConfig
	log    *logrus.Logger
	deps   Dependencies
	router *gin.Engine
	server *http.Server
	hub    *Hub
}

// NewServer creates a new HTTP server instance
func NewServer(cfg domain.ServerConfig, logLevel string, deps Dependencies) *Server {
	if logLevel == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(requestIDMiddleware())
	router.Use(rateLimitMiddleware(cfg.RateLimit, cfg.RateBurst))

	hub := NewHub(deps.Logger)

	s := &Server{
		cfg:    cfg,
		log:    deps.Logger,
		deps:   deps,
		router: router,
		hub:    hub,
	}

	// Push a notification to connected dashboards whenever the dataset
	// is swapped.
	deps.Datasets.Subscribe(func(state service.DatasetState) {
		hub.BroadcastDatasetReplaced(state)
	})

	s.setupRoutes()
	return s
}

// Start runs the server until the context is cancelled, then shuts
// down gracefully.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}

	go s.hub.Run(ctx)

	go func() {
		s.log.WithField("addr", addr).Info("HTTP server listening")
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.WithError(err).Fatal("Failed to start server")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return s.server.Shutdown(shutdownCtx)
}

// Router exposes the gin engine for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)
	s.router.GET("/ws", s.handleWebSocket)

	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/datasets", s.handleUploadDataset)
		v1.POST("/datasets/sample", s.handleLoadSample)
		v1.GET("/dataset", s.handleGetDataset)
		v1.GET("/dataset/validation", s.handleValidateDataset)

		v1.GET("/biomarkers", s.handleListBiomarkers)
		v1.GET("/biomarkers/:name/trend", s.handleBiomarkerTrend)
		v1.GET("/biomarkers/:name/chart", s.handleBiomarkerChart)

		v1.POST("/classify", s.handleClassify)
		v1.GET("/report", s.handleReport)
		v1.GET("/ranges", s.handleRanges)
		v1.GET("/export/csv", s.handleExportCSV)

		v1.GET("/history", s.handleHistory)
		v1.GET("/snapshots", s.handleListSnapshots)
	}
}

// handleHealth handles health check requests. When snapshot
// persistence is configured the database is pinged and its pool stats
// are included.
func (s *Server) handleHealth(c *gin.Context) {
	health := gin.H{
		"status":    "healthy",
		"timestamp": time.Now(),
		"version":   "1.0.0",
	}

	if s.deps.DB != nil {
		if err := s.deps.DB.Health(c.Request.Context()); err != nil {
			health["status"] = "degraded"
			health["database"] = gin.H{"status": "down", "error": err.Error()}
			c.JSON(http.StatusServiceUnavailable, health)
			return
		}
		stats := s.deps.DB.Stats()
		health["database"] = gin.H{
			"status":      "up",
			"total_conns": stats.TotalConns(),
			"idle_conns":  stats.IdleConns(),
		}
	}

	c.JSON(http.StatusOK, health)
}
