// Package history provides persistent storage for classification
// records. Every value classified through the API or the tool server
// can be recorded so a user's readings accumulate across sessions.
package history

import (
	"context"
	"io"
	"time"

	"github.com/biomarker-insight-server/internal/domain"
)

// Record is one stored classification: the reading that was classified
// and the label it received.
type Record struct {
	ID        int64            `json:"id,omitempty"`
	Biomarker string           `json:"biomarker"`
	Value     float64          `json:"value"`
	Unit      string           `json:"unit,omitempty"`
	Status    domain.BandLabel `json:"status"`
	ReadAt    string           `json:"read_at,omitempty"` // reading date, ISO, when known
	Source    string           `json:"source"`            // api or mcp
	CreatedAt time.Time        `json:"created_at"`
}

// Store defines the interface for classification history storage.
type Store interface {
	// Save stores a classification record and fills in its ID.
	Save(ctx context.Context, record *Record) error

	// List returns records newest first with pagination.
	List(ctx context.Context, limit, offset int) ([]*Record, error)

	// ListByBiomarker returns one biomarker's records newest first.
	ListByBiomarker(ctx context.Context, biomarker string, limit int) ([]*Record, error)

	// Count returns the total number of records.
	Count(ctx context.Context) (int64, error)

	// Delete removes a record by ID.
	Delete(ctx context.Context, id int64) error

	// ExportJSON writes all records as a JSON document.
	ExportJSON(ctx context.Context, writer io.Writer) error

	// ImportJSON loads records from a JSON document produced by
	// ExportJSON. Every record is inserted as new.
	ImportJSON(ctx context.Context, reader io.Reader) (imported int, err error)

	// Close closes the store and releases resources.
	Close() error
}

// Export is the JSON export format.
type Export struct {
	Version    string    `json:"version"`
	ExportedAt time.Time `json:"exported_at"`
	Count      int       `json:"count"`
	Records    []*Record `json:"records"`
}
