// Package ingest provides the input adapters that turn uploaded files
// into datasets. Every adapter builds a fresh dataset and never touches
// the one currently displayed; the caller swaps references on success.
package ingest

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/biomarker-insight-server/internal/domain"
)

// Source identifies which adapter produced a dataset.
const (
	SourceJSON      = "json"
	SourceCSV       = "csv"
	SourceSimulated = "simulated"
	SourceSample    = "sample"
)

// Result is the outcome of one ingestion. SkippedRows counts CSV data
// rows dropped for a field-count mismatch so callers can warn instead
// of losing data silently.
type Result struct {
	Dataset     domain.Dataset `json:"dataset"`
	Source      string         `json:"source"`
	SkippedRows int            `json:"skipped_rows"`

	// Simulated is true when the dataset was synthesized rather than
	// parsed from the input. Consumers must label such data clearly.
	Simulated bool `json:"simulated"`
}

// Adapter parses one input format into a Result.
type Adapter interface {
	Ingest(ctx context.Context, r io.Reader) (*Result, error)
}

// ForFile selects the adapter for a file name by extension. PDF inputs
// are accepted by extension only and routed to the simulated extractor;
// no document parsing happens.
func ForFile(name string) (Adapter, error) {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".json":
		return NewJSONAdapter(), nil
	case ".csv":
		return NewCSVAdapter(), nil
	case ".pdf":
		return NewSimulatedAdapter(), nil
	default:
		return nil, domain.NewUnsupportedFileTypeError(ext)
	}
}
