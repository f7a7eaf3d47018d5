package ingest

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biomarker-insight-server/internal/domain"
)

func TestForFile(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
		wantType interface{}
		wantErr  bool
	}{
		{"JSON file", "readings.json", &JSONAdapter{}, false},
		{"CSV file", "readings.csv", &CSVAdapter{}, false},
		{"Uppercase extension", "READINGS.JSON", &JSONAdapter{}, false},
		{"PDF file", "lab-report.pdf", &SimulatedAdapter{}, false},
		{"Unsupported extension", "readings.xlsx", nil, true},
		{"No extension", "readings", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adapter, err := ForFile(tt.fileName)
			if tt.wantErr {
				require.Error(t, err)
				appErr, ok := domain.IsAppError(err)
				require.True(t, ok)
				assert.Equal(t, domain.ErrUnsupportedFileType, appErr.Code)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.wantType, adapter)
		})
	}
}

func TestSimulatedAdapter_Ingest(t *testing.T) {
	adapter := NewSimulatedAdapter()
	adapter.now = func() time.Time {
		return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	}

	result, err := adapter.Ingest(context.Background(), strings.NewReader("%PDF-1.4 fake"))
	require.NoError(t, err)

	assert.Equal(t, SourceSimulated, result.Source)
	assert.True(t, result.Simulated)
	assert.Len(t, result.Dataset, len(simulatedBiomarkers))

	for name, series := range result.Dataset {
		require.Len(t, series, 1, name)
		assert.Equal(t, "2024-03-01", series[0].Date)

		entry, ok := domain.LookupRange(name)
		require.True(t, ok, name)
		assert.GreaterOrEqual(t, series[0].Value, entry.TypicalLow, name)
		assert.LessOrEqual(t, series[0].Value, entry.TypicalHigh, name)
	}
}

func TestSimulatedAdapter_Ingest_NilReader(t *testing.T) {
	adapter := NewSimulatedAdapter()

	result, err := adapter.Ingest(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, result.Simulated)
	assert.NotEmpty(t, result.Dataset)
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"2024-01-15", "2024-01-15"},
		{"01/15/2024", "2024-01-15"},
		{"1/5/2024", "2024-01-05"},
		{"01-15-2024", "2024-01-15"},
		{"2024/01/15", "2024-01-15"},
		{"Jan 15, 2024", "2024-01-15"},
		{"not a date", "not a date"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeDate(tt.raw), tt.raw)
	}
}
