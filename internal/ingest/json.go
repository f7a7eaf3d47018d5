package ingest

import (
	"context"
	"encoding/json"
	"io"

	"github.com/biomarker-insight-server/internal/domain"
)

// jsonDocument is the expected upload shape: the sample dataset and
// JSON uploads share it.
type jsonDocument struct {
	Biomarkers domain.Dataset `json:"biomarkers"`
}

// JSONAdapter ingests documents of shape {"biomarkers": {...}}. The
// payload already matches the dataset shape, so ingestion is a
// pass-through; a document without the biomarkers field yields an
// empty dataset rather than an error.
type JSONAdapter struct{}

// NewJSONAdapter creates a new JSON adapter
func NewJSONAdapter() *JSONAdapter {
	return &JSONAdapter{}
}

// Ingest implements the Adapter interface
func (a *JSONAdapter) Ingest(ctx context.Context, r io.Reader) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, domain.NewIOError("failed to read JSON input", err)
	}

	var doc jsonDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, domain.NewParseError("malformed JSON document", err)
	}

	dataset := doc.Biomarkers
	if dataset == nil {
		dataset = domain.Dataset{}
	}

	return &Result{
		Dataset: dataset,
		Source:  SourceJSON,
	}, nil
}
