package service

import (
	"bytes"
	"context"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/biomarker-insight-server/internal/domain"
	"github.com/biomarker-insight-server/internal/ingest"
	"github.com/biomarker-insight-server/pkg/fetch"
)

// SampleLoader loads the bundled sample dataset, from a remote URL
// when one is configured and the local file otherwise, and swaps it
// into the dataset service. Reloading the sample follows the same
// replace-whole-dataset rule as uploads.
type SampleLoader struct {
	logger   *logrus.Logger
	datasets *DatasetService
	fetcher  *fetch.Client
	path     string
	url      string
}

// NewSampleLoader creates a new sample loader. fetcher may be nil when
// no remote URL is configured.
func NewSampleLoader(logger *logrus.Logger, datasets *DatasetService, fetcher *fetch.Client, path, url string) *SampleLoader {
	return &SampleLoader{
		logger:   logger,
		datasets: datasets,
		fetcher:  fetcher,
		path:     path,
		url:      url,
	}
}

// Load reads the sample document, ingests it as JSON and replaces the
// current dataset. A remote fetch failure falls back to the local file
// so the dashboard still has data to show.
func (l *SampleLoader) Load(ctx context.Context) (DatasetState, error) {
	data, err := l.read(ctx)
	if err != nil {
		return DatasetState{}, err
	}

	result, err := ingest.NewJSONAdapter().Ingest(ctx, bytes.NewReader(data))
	if err != nil {
		return DatasetState{}, err
	}
	result.Source = ingest.SourceSample

	return l.datasets.Replace(result), nil
}

func (l *SampleLoader) read(ctx context.Context) ([]byte, error) {
	if l.url != "" && l.fetcher != nil {
		data, err := l.fetcher.Get(ctx, l.url)
		if err == nil {
			return data, nil
		}
		l.logger.WithFields(logrus.Fields{
			"url":   l.url,
			"error": err.Error(),
		}).Warn("Remote sample fetch failed, falling back to local file")
	}

	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, domain.NewIOError("failed to read sample dataset", err)
	}
	return data, nil
}
