package domain

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadingPoint_JSON(t *testing.T) {
	t.Run("null value decodes as NaN", func(t *testing.T) {
		var p ReadingPoint
		require.NoError(t, json.Unmarshal([]byte(`{"date":"2024-01-15","value":null}`), &p))

		assert.Equal(t, "2024-01-15", p.Date)
		assert.True(t, math.IsNaN(p.Value))
	})

	t.Run("absent value decodes as NaN", func(t *testing.T) {
		var p ReadingPoint
		require.NoError(t, json.Unmarshal([]byte(`{"date":"2024-01-15"}`), &p))

		assert.True(t, math.IsNaN(p.Value))
	})

	t.Run("NaN encodes as null", func(t *testing.T) {
		data, err := json.Marshal(ReadingPoint{Date: "2024-01-15", Value: math.NaN()})
		require.NoError(t, err)

		assert.JSONEq(t, `{"date":"2024-01-15","value":null}`, string(data))
	})

	t.Run("numeric value survives round trip", func(t *testing.T) {
		data, err := json.Marshal(ReadingPoint{Date: "2024-01-15", Value: 98.5})
		require.NoError(t, err)

		var p ReadingPoint
		require.NoError(t, json.Unmarshal(data, &p))
		assert.Equal(t, 98.5, p.Value)
	})
}

func TestReadingPoint_Valid(t *testing.T) {
	assert.True(t, ReadingPoint{Date: "2024-01-15", Value: 98.5}.Valid())
	assert.False(t, ReadingPoint{Date: "", Value: 98.5}.Valid())
	assert.False(t, ReadingPoint{Date: "2024-01-15", Value: math.NaN()}.Valid())
}

func TestBiomarkerSeries_SortedByDate(t *testing.T) {
	series := BiomarkerSeries{
		{Date: "2024-07-22", Value: 3},
		{Date: "2024-01-15", Value: 1},
		{Date: "2024-04-18", Value: 2},
	}

	sorted := series.SortedByDate()

	assert.Equal(t, "2024-01-15", sorted[0].Date)
	assert.Equal(t, "2024-07-22", sorted[2].Date)
	// Original order untouched
	assert.Equal(t, "2024-07-22", series[0].Date)
}

func TestBiomarkerSeries_Latest(t *testing.T) {
	assert.Nil(t, BiomarkerSeries{}.Latest())

	series := BiomarkerSeries{{Date: "2024-01-15", Value: 1}, {Date: "2024-04-18", Value: 2}}
	latest := series.Latest()
	require.NotNil(t, latest)
	assert.Equal(t, 2.0, latest.Value)
}

func TestDataset_Names(t *testing.T) {
	ds := Dataset{
		"Glucose": {{Date: "2024-01-15", Value: 95}},
		"HDL":     {{Date: "2024-01-15", Value: 52}},
		"Albumin": {{Date: "2024-01-15", Value: 4.2}},
	}

	assert.Equal(t, []string{"Albumin", "Glucose", "HDL"}, ds.Names())
	assert.Equal(t, 3, ds.PointCount())
}

func TestRangeBand_Contains(t *testing.T) {
	band := RangeBand{Label: BandNormal, Lower: 70, Upper: 100}

	assert.True(t, band.Contains(70))
	assert.True(t, band.Contains(100))
	assert.True(t, band.Contains(85))
	assert.False(t, band.Contains(69.9))
	assert.False(t, band.Contains(100.1))
}
