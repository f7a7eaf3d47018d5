// Package mcp exposes the classification, trend and validation
// operations as tools over the Model Context Protocol so assistants
// can work with biomarker data directly.
package mcp

import (
	"context"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/biomarker-insight-server/internal/history"
	"github.com/biomarker-insight-server/internal/service"
)

// Server wraps the MCP SDK server with the tool handlers.
type Server struct {
	mcpServer  *mcp.Server
	logger     *logrus.Logger
	classifier *service.ClassifierService
	trends     *service.TrendService
	validator  *service.ValidatorService
	reports    *service.ReportService
	store      history.Store
	samplePath string
}

// NewServer creates a new MCP server. store may be nil; tool calls are
// then not recorded. samplePath locates the bundled sample dataset for
// the sample_report tool.
func NewServer(logger *logrus.Logger, store history.Store, samplePath string) *Server {
	classifier := service.NewClassifierService(logger)
	trends := service.NewTrendService(logger, classifier)
	validator := service.NewValidatorService(logger)
	reports := service.NewReportService(logger, classifier, trends, validator)

	serverInfo := &mcp.Implementation{
		Name:    "biomarker-insight-server",
		Version: "v0.1.0",
	}

	s := &Server{
		mcpServer:  mcp.NewServer(serverInfo, nil),
		logger:     logger,
		classifier: classifier,
		trends:     trends,
		validator:  validator,
		reports:    reports,
		store:      store,
		samplePath: samplePath,
	}
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	tools := []struct {
		def     *mcp.Tool
		handler mcp.ToolHandler
	}{
		{
			def: &mcp.Tool{
				Name:        "classify_value",
				Description: "Classify a biomarker value against its clinical range table and return the band label",
				InputSchema: &jsonschema.Schema{Type: "object"},
			},
			handler: s.handleClassifyValue,
		},
		{
			def: &mcp.Tool{
				Name:        "compute_trend",
				Description: "Compute the trend across a biomarker's dated readings, including direction and percent change",
				InputSchema: &jsonschema.Schema{Type: "object"},
			},
			handler: s.handleComputeTrend,
		},
		{
			def: &mcp.Tool{
				Name:        "validate_dataset",
				Description: "Check a biomarker dataset for unknown biomarkers and invalid readings",
				InputSchema: &jsonschema.Schema{Type: "object"},
			},
			handler: s.handleValidateDataset,
		},
		{
			def: &mcp.Tool{
				Name:        "generate_report",
				Description: "Generate a category-grouped insight report with recommendations for a biomarker dataset",
				InputSchema: &jsonschema.Schema{Type: "object"},
			},
			handler: s.handleGenerateReport,
		},
		{
			def: &mcp.Tool{
				Name:        "sample_report",
				Description: "Generate an insight report from the bundled sample dataset",
				InputSchema: &jsonschema.Schema{Type: "object"},
			},
			handler: s.handleSampleReport,
		},
	}

	for _, tool := range tools {
		s.mcpServer.AddTool(tool.def, tool.handler)
		s.logger.WithField("tool_name", tool.def.Name).Debug("Registered MCP tool")
	}
	s.logger.WithField("tool_count", len(tools)).Info("Successfully registered all tools")
}

// Run serves MCP over stdio until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("Starting biomarker insight MCP server...")

	if err := s.mcpServer.Run(ctx, &mcp.StdioTransport{}); err != nil {
		return fmt.Errorf("MCP server failed: %w", err)
	}
	return nil
}
