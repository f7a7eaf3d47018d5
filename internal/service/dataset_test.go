package service

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biomarker-insight-server/internal/domain"
	"github.com/biomarker-insight-server/internal/ingest"
)

func TestDatasetService_Replace(t *testing.T) {
	svc := NewDatasetService(testLogger())

	assert.True(t, svc.Current().Empty())

	first := svc.Replace(&ingest.Result{
		Dataset: domain.Dataset{"Glucose": {{Date: "2024-01-01", Value: 95}}},
		Source:  ingest.SourceJSON,
	})
	assert.Equal(t, uint64(1), first.Generation)
	assert.Equal(t, ingest.SourceJSON, first.Source)

	second := svc.Replace(&ingest.Result{
		Dataset:     domain.Dataset{"HDL": {{Date: "2024-02-01", Value: 48}}},
		Source:      ingest.SourceCSV,
		SkippedRows: 2,
	})
	assert.Equal(t, uint64(2), second.Generation)
	assert.Equal(t, 2, second.SkippedRows)

	// The old dataset is gone, not merged.
	current := svc.Current()
	_, hasGlucose := current.Dataset["Glucose"]
	assert.False(t, hasGlucose)
	_, hasHDL := current.Dataset["HDL"]
	assert.True(t, hasHDL)
}

func TestDatasetService_Series(t *testing.T) {
	svc := NewDatasetService(testLogger())
	svc.Replace(&ingest.Result{
		Dataset: domain.Dataset{"Glucose": {{Date: "2024-01-01", Value: 95}}},
		Source:  ingest.SourceJSON,
	})

	series, ok := svc.Series("Glucose")
	require.True(t, ok)
	assert.Len(t, series, 1)

	_, ok = svc.Series("HDL")
	assert.False(t, ok)
}

func TestDatasetService_Subscribe(t *testing.T) {
	svc := NewDatasetService(testLogger())

	var got []uint64
	svc.Subscribe(func(state DatasetState) {
		got = append(got, state.Generation)
	})

	svc.Replace(&ingest.Result{Dataset: domain.Dataset{}, Source: ingest.SourceJSON})
	svc.Replace(&ingest.Result{Dataset: domain.Dataset{}, Source: ingest.SourceJSON})

	assert.Equal(t, []uint64{1, 2}, got)
}

func TestDatasetService_ConcurrentReplace(t *testing.T) {
	svc := NewDatasetService(testLogger())

	const workers = 16
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			svc.Replace(&ingest.Result{Dataset: domain.Dataset{}, Source: ingest.SourceJSON})
		}()
	}
	wg.Wait()

	// Every replace got its own generation; the last one wins.
	assert.Equal(t, uint64(workers), svc.Current().Generation)
}
