// Package main provides the standalone MCP entry point for the biomarker
// insight server. It requires no external databases and records tool
// calls to a local SQLite file.
package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/biomarker-insight-server/internal/config"
	"github.com/biomarker-insight-server/internal/history"
	"github.com/biomarker-insight-server/internal/mcp"
)

func main() {
	cfg := config.LoadLiteConfig()

	// stdout carries the MCP transport, so all logging goes to stderr.
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	if level, err := logrus.ParseLevel(strings.ToLower(cfg.LogLevel)); err == nil {
		logger.SetLevel(level)
	}
	if cfg.LogFormat == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	if err := cfg.EnsureDataDir(); err != nil {
		logger.Fatalf("Failed to create data directory: %v", err)
	}
	logger.WithField("data_dir", cfg.DataDir).Info("Starting biomarker insight MCP server")

	store, err := history.NewSQLiteStore(cfg.HistoryDBPath())
	if err != nil {
		logger.Fatalf("Failed to open history store: %v", err)
	}
	defer store.Close()

	server := mcp.NewServer(logger, store, cfg.SamplePath)

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, gracefully shutting down...")
		cancel()
	}()

	if err := server.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Fatalf("MCP server failed: %v", err)
	}

	logger.Info("MCP server stopped")
}
