package charts

import (
	"math"
	"strings"
	"testing"

	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biomarker-insight-server/internal/domain"
)

func TestRenderLine(t *testing.T) {
	html, err := RenderLine("Glucose", domain.BiomarkerSeries{
		{Date: "2024-01-01", Value: 92},
		{Date: "2024-02-01", Value: 104},
		{Date: "2024-03-01", Value: 98},
	})
	require.NoError(t, err)

	assert.True(t, strings.Contains(html, "Glucose"))
	assert.True(t, strings.Contains(html, "2024-02-01"))
	assert.True(t, strings.Contains(html, "echarts"))
}

func TestRenderLine_SkipsNaN(t *testing.T) {
	html, err := RenderLine("HDL", domain.BiomarkerSeries{
		{Date: "2024-01-01", Value: 52},
		{Date: "2024-02-01", Value: math.NaN()},
	})
	require.NoError(t, err)
	assert.False(t, strings.Contains(html, "2024-02-01"))
}

func TestRenderLine_NoNumericReadings(t *testing.T) {
	_, err := RenderLine("HDL", domain.BiomarkerSeries{
		{Date: "2024-01-01", Value: math.NaN()},
	})
	require.Error(t, err)
}

func TestRenderLine_UnknownBiomarkerStillCharts(t *testing.T) {
	html, err := RenderLine("Unobtanium", domain.BiomarkerSeries{
		{Date: "2024-01-01", Value: 1},
		{Date: "2024-02-01", Value: 2},
	})
	require.NoError(t, err)
	assert.True(t, strings.Contains(html, "Unobtanium"))
}

func TestBandBoundaryLines_SkipsSentinelBounds(t *testing.T) {
	entry, ok := domain.LookupRange("Glucose")
	require.True(t, ok)

	// Data clustered around 100; the 999 sentinel is far outside.
	items := bandBoundaryLines(entry, 90, 110)
	require.NotEmpty(t, items)
	for _, item := range items {
		mark, ok := item.(opts.MarkLineNameYAxisItem)
		require.True(t, ok)
		assert.NotEqual(t, 999.0, mark.YAxis)
	}
}
