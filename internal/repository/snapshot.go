// Package repository persists dataset snapshots to PostgreSQL so a
// replaced dataset can be inspected or restored later.
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/biomarker-insight-server/internal/domain"
)

// Snapshot is one persisted dataset: the whole dataset payload plus
// the provenance recorded at load time.
type Snapshot struct {
	ID          uuid.UUID      `json:"id"`
	Source      string         `json:"source"`
	Generation  uint64         `json:"generation"`
	Dataset     domain.Dataset `json:"dataset"`
	SkippedRows int            `json:"skipped_rows"`
	Simulated   bool           `json:"simulated"`
	CreatedAt   time.Time      `json:"created_at"`
}

// SnapshotRepository handles snapshot persistence
type SnapshotRepository struct {
	db  *pgxpool.Pool
	log *logrus.Logger
}

// NewSnapshotRepository creates a new snapshot repository
func NewSnapshotRepository(db *pgxpool.Pool, logger *logrus.Logger) *SnapshotRepository {
	return &SnapshotRepository{db: db, log: logger}
}

// Create inserts a new snapshot. The caller leaves ID zero and gets it
// filled in.
func (r *SnapshotRepository) Create(ctx context.Context, snapshot *Snapshot) error {
	if snapshot.ID == uuid.Nil {
		snapshot.ID = uuid.New()
	}
	if snapshot.CreatedAt.IsZero() {
		snapshot.CreatedAt = time.Now().UTC()
	}

	payload, err := json.Marshal(snapshot.Dataset)
	if err != nil {
		return fmt.Errorf("marshaling dataset payload: %w", err)
	}

	query := `
		INSERT INTO dataset_snapshots (
			id, source, generation, payload, skipped_rows, simulated, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7
		)`

	_, err = r.db.Exec(ctx, query,
		snapshot.ID,
		snapshot.Source,
		snapshot.Generation,
		payload,
		snapshot.SkippedRows,
		snapshot.Simulated,
		snapshot.CreatedAt,
	)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"snapshot_id": snapshot.ID,
			"source":      snapshot.Source,
			"error":       err,
		}).Error("Failed to create snapshot")
		return fmt.Errorf("creating snapshot: %w", err)
	}

	r.log.WithFields(logrus.Fields{
		"snapshot_id": snapshot.ID,
		"source":      snapshot.Source,
		"generation":  snapshot.Generation,
		"biomarkers":  len(snapshot.Dataset),
	}).Info("Snapshot created successfully")

	return nil
}

// GetByID retrieves a snapshot with its full dataset payload.
func (r *SnapshotRepository) GetByID(ctx context.Context, id uuid.UUID) (*Snapshot, error) {
	query := `
		SELECT id, source, generation, payload, skipped_rows, simulated, created_at
		FROM dataset_snapshots
		WHERE id = $1`

	return r.scanSnapshot(r.db.QueryRow(ctx, query, id))
}

// Latest retrieves the most recently stored snapshot, or nil when none
// exist.
func (r *SnapshotRepository) Latest(ctx context.Context) (*Snapshot, error) {
	query := `
		SELECT id, source, generation, payload, skipped_rows, simulated, created_at
		FROM dataset_snapshots
		ORDER BY created_at DESC
		LIMIT 1`

	snapshot, err := r.scanSnapshot(r.db.QueryRow(ctx, query))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return snapshot, err
}

// List returns snapshot metadata newest first, without payloads.
func (r *SnapshotRepository) List(ctx context.Context, limit, offset int) ([]*Snapshot, error) {
	query := `
		SELECT id, source, generation, skipped_rows, simulated, created_at
		FROM dataset_snapshots
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	defer rows.Close()

	var result []*Snapshot
	for rows.Next() {
		s := &Snapshot{}
		if err := rows.Scan(&s.ID, &s.Source, &s.Generation, &s.SkippedRows, &s.Simulated, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning snapshot row: %w", err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// Delete removes a snapshot by ID.
func (r *SnapshotRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, "DELETE FROM dataset_snapshots WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("deleting snapshot: %w", err)
	}
	return nil
}

func (r *SnapshotRepository) scanSnapshot(row pgx.Row) (*Snapshot, error) {
	s := &Snapshot{}
	var payload []byte

	err := row.Scan(&s.ID, &s.Source, &s.Generation, &payload, &s.SkippedRows, &s.Simulated, &s.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scanning snapshot: %w", err)
	}

	if err := json.Unmarshal(payload, &s.Dataset); err != nil {
		return nil, fmt.Errorf("unmarshaling dataset payload: %w", err)
	}
	return s, nil
}
