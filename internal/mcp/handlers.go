package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/biomarker-insight-server/internal/domain"
	"github.com/biomarker-insight-server/internal/history"
	"github.com/biomarker-insight-server/internal/ingest"
	"github.com/biomarker-insight-server/internal/service"
)

func textResult(v interface{}) (*mcp.CallToolResult, error) {
	payload, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode tool result: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(payload)},
		},
	}, nil
}

func decodeArguments(req *mcp.CallToolRequest, v interface{}) error {
	if len(req.Params.Arguments) == 0 {
		return fmt.Errorf("missing tool arguments")
	}
	if err := json.Unmarshal(req.Params.Arguments, v); err != nil {
		return fmt.Errorf("invalid tool arguments: %w", err)
	}
	return nil
}

type classifyValueParams struct {
	Biomarker string   `json:"biomarker"`
	Value     *float64 `json:"value"`
	ReadAt    string   `json:"read_at,omitempty"`
}

func (s *Server) handleClassifyValue(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.logger.WithField("tool", "classify_value").Info("Tool invoked")

	var p classifyValueParams
	if err := decodeArguments(req, &p); err != nil {
		return nil, err
	}
	if p.Biomarker == "" || p.Value == nil {
		return nil, fmt.Errorf("biomarker and value are required")
	}

	status := s.classifier.Classify(p.Biomarker, *p.Value)

	unit := ""
	if entry, ok := domain.LookupRange(p.Biomarker); ok {
		unit = entry.Unit
	}

	if s.store != nil {
		rec := &history.Record{
			Biomarker: p.Biomarker,
			Value:     *p.Value,
			Unit:      unit,
			Status:    status,
			ReadAt:    p.ReadAt,
			Source:    "mcp",
		}
		if err := s.store.Save(ctx, rec); err != nil {
			s.logger.WithError(err).Warn("Failed to record classification")
		}
	}

	return textResult(map[string]interface{}{
		"biomarker": p.Biomarker,
		"value":     *p.Value,
		"unit":      unit,
		"status":    status,
		"plausible": domain.Plausible(p.Biomarker, *p.Value),
	})
}

type computeTrendParams struct {
	Biomarker string                 `json:"biomarker"`
	Readings  domain.BiomarkerSeries `json:"readings"`
}

func (s *Server) handleComputeTrend(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.logger.WithField("tool", "compute_trend").Info("Tool invoked")

	var p computeTrendParams
	if err := decodeArguments(req, &p); err != nil {
		return nil, err
	}
	if len(p.Readings) < 2 {
		return nil, fmt.Errorf("at least two readings are required to compute a trend")
	}

	return textResult(map[string]interface{}{
		"biomarker": p.Biomarker,
		"trend":     s.trends.Trend(p.Readings),
		"analysis":  s.trends.Analyze(p.Biomarker, p.Readings),
	})
}

type datasetParams struct {
	Biomarkers domain.Dataset `json:"biomarkers"`
}

func (s *Server) handleValidateDataset(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.logger.WithField("tool", "validate_dataset").Info("Tool invoked")

	var p datasetParams
	if err := decodeArguments(req, &p); err != nil {
		return nil, err
	}

	findings := s.validator.Validate(p.Biomarkers)
	return textResult(map[string]interface{}{
		"valid":    len(findings) == 0,
		"findings": findings,
	})
}

func (s *Server) handleGenerateReport(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.logger.WithField("tool", "generate_report").Info("Tool invoked")

	var p datasetParams
	if err := decodeArguments(req, &p); err != nil {
		return nil, err
	}
	if len(p.Biomarkers) == 0 {
		return nil, fmt.Errorf("dataset has no biomarkers")
	}

	report := s.reports.Generate(service.DatasetState{Dataset: p.Biomarkers, Source: "mcp"})
	return textResult(report)
}

func (s *Server) handleSampleReport(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.logger.WithField("tool", "sample_report").Info("Tool invoked")

	f, err := os.Open(s.samplePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sample dataset: %w", err)
	}
	defer f.Close()

	result, err := ingest.NewJSONAdapter().Ingest(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("failed to ingest sample dataset: %w", err)
	}
	if len(result.Dataset) == 0 {
		return nil, fmt.Errorf("sample dataset has no biomarkers")
	}

	report := s.reports.Generate(service.DatasetState{
		Dataset: result.Dataset,
		Source:  ingest.SourceSample,
	})
	return textResult(report)
}
