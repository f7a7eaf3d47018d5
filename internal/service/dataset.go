package service

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/biomarker-insight-server/internal/domain"
	"github.com/biomarker-insight-server/internal/ingest"
)

// DatasetState is a snapshot of the currently loaded dataset together
// with its provenance. Generation increases by one on every replace so
// concurrent consumers can tell which load they are looking at; the
// last completed load wins.
type DatasetState struct {
	Dataset     domain.Dataset `json:"dataset"`
	Source      string         `json:"source"`
	SkippedRows int            `json:"skipped_rows"`
	Simulated   bool           `json:"simulated"`
	Generation  uint64         `json:"generation"`
	LoadedAt    time.Time      `json:"loaded_at"`
}

// Empty reports whether any dataset has been loaded yet.
func (s DatasetState) Empty() bool {
	return s.Generation == 0
}

// ReplaceListener is notified after the current dataset is swapped.
// Listeners must not block; slow consumers should hand off to their
// own goroutine.
type ReplaceListener func(state DatasetState)

// DatasetService owns the process-wide current dataset. Ingestion
// builds a complete dataset off to the side and Replace swaps the
// reference under a lock, so readers always see a whole dataset and
// never a partially loaded one.
type DatasetService struct {
	logger *logrus.Logger

	mu        sync.RWMutex
	state     DatasetState
	listeners []ReplaceListener
}

// NewDatasetService creates a new dataset service holding no dataset.
func NewDatasetService(logger *logrus.Logger) *DatasetService {
	return &DatasetService{logger: logger}
}

// Replace swaps in the result of a completed ingestion and returns the
// new state. The previous dataset is discarded, never merged.
func (s *DatasetService) Replace(result *ingest.Result) DatasetState {
	s.mu.Lock()
	s.state = DatasetState{
		Dataset:     result.Dataset,
		Source:      result.Source,
		SkippedRows: result.SkippedRows,
		Simulated:   result.Simulated,
		Generation:  s.state.Generation + 1,
		LoadedAt:    time.Now().UTC(),
	}
	state := s.state
	listeners := make([]ReplaceListener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	s.logger.WithFields(logrus.Fields{
		"source":      state.Source,
		"generation":  state.Generation,
		"biomarkers":  len(state.Dataset),
		"skipped":     state.SkippedRows,
		"simulated":   state.Simulated,
	}).Info("Dataset replaced")

	for _, fn := range listeners {
		fn(state)
	}
	return state
}

// Current returns the current dataset state. The contained dataset is
// shared and must be treated as read-only; replacing never mutates a
// dataset already handed out.
func (s *DatasetService) Current() DatasetState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Series returns one biomarker's series from the current dataset.
func (s *DatasetService) Series(biomarker string) (domain.BiomarkerSeries, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	series, ok := s.state.Dataset[biomarker]
	return series, ok
}

// Subscribe registers a listener called after each replace.
func (s *DatasetService) Subscribe(fn ReplaceListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}
