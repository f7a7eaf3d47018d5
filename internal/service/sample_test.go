package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biomarker-insight-server/internal/ingest"
	"github.com/biomarker-insight-server/pkg/fetch"
)

const sampleDoc = `{"biomarkers":{"Glucose":[{"date":"2024-01-01","value":95}]}}`

func writeSampleFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample_data.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestSampleLoader_Load_FromFile(t *testing.T) {
	logger := testLogger()
	datasets := NewDatasetService(logger)
	loader := NewSampleLoader(logger, datasets, nil, writeSampleFile(t, sampleDoc), "")

	state, err := loader.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, ingest.SourceSample, state.Source)
	assert.Equal(t, uint64(1), state.Generation)
	assert.Len(t, state.Dataset["Glucose"], 1)
}

func TestSampleLoader_Load_FromURL(t *testing.T) {
	remote := `{"biomarkers":{"HDL":[{"date":"2024-01-01","value":50}]}}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(remote))
	}))
	defer server.Close()

	logger := testLogger()
	datasets := NewDatasetService(logger)
	fetcher := fetch.NewClient(fetch.Config{Timeout: 2 * time.Second}, logger)
	loader := NewSampleLoader(logger, datasets, fetcher, writeSampleFile(t, sampleDoc), server.URL)

	state, err := loader.Load(context.Background())
	require.NoError(t, err)

	_, hasHDL := state.Dataset["HDL"]
	assert.True(t, hasHDL, "remote document should win over the local file")
}

func TestSampleLoader_Load_FallsBackToFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	logger := testLogger()
	datasets := NewDatasetService(logger)
	fetcher := fetch.NewClient(fetch.Config{Timeout: 2 * time.Second}, logger)
	loader := NewSampleLoader(logger, datasets, fetcher, writeSampleFile(t, sampleDoc), server.URL)

	state, err := loader.Load(context.Background())
	require.NoError(t, err)

	_, hasGlucose := state.Dataset["Glucose"]
	assert.True(t, hasGlucose)
}

func TestSampleLoader_Load_MissingFile(t *testing.T) {
	logger := testLogger()
	loader := NewSampleLoader(logger, NewDatasetService(logger), nil, "/nonexistent/sample.json", "")

	_, err := loader.Load(context.Background())
	require.Error(t, err)
}
