package service

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biomarker-insight-server/internal/domain"
)

func newReportService() *ReportService {
	logger := testLogger()
	classifier := NewClassifierService(logger)
	return NewReportService(logger, classifier, NewTrendService(logger, classifier), NewValidatorService(logger))
}

func reportState(dataset domain.Dataset) DatasetState {
	return DatasetState{Dataset: dataset, Source: "json", Generation: 1}
}

func TestReportService_Generate(t *testing.T) {
	svc := newReportService()

	report := svc.Generate(reportState(domain.Dataset{
		"Total Cholesterol": {
			{Date: "2024-01-01", Value: 210},
			{Date: "2024-02-01", Value: 250},
		},
		"Glucose":   {{Date: "2024-02-01", Value: 95}},
		"Vitamin D": {{Date: "2024-02-01", Value: 15}},
	}))

	require.Len(t, report.Categories, 3)
	assert.Equal(t, domain.CategoryLipidProfile, report.Categories[0].Category)
	assert.Equal(t, domain.CategoryDiabetesMarker, report.Categories[1].Category)
	assert.Equal(t, domain.CategoryVitamins, report.Categories[2].Category)

	lipid := report.Categories[0].Biomarkers
	require.Len(t, lipid, 1)
	assert.Equal(t, "Total Cholesterol", lipid[0].Biomarker)
	assert.Equal(t, 250.0, lipid[0].LatestValue)
	assert.Equal(t, domain.BandHigh, lipid[0].Status)
	assert.Equal(t, "mg/dL", lipid[0].Unit)
	require.NotNil(t, lipid[0].Trend)
	assert.Equal(t, 40.0, lipid[0].Trend.Delta)

	// One reading gives no trend but still an insight.
	glucose := report.Categories[1].Biomarkers[0]
	assert.Nil(t, glucose.Trend)
	assert.Equal(t, domain.BandNormal, glucose.Status)

	assert.Contains(t, report.Recommendations, "Consider dietary changes to reduce cholesterol intake")
	assert.Contains(t, report.Recommendations, "Consider vitamin D supplementation and increased sun exposure")
	assert.Empty(t, report.Findings)
}

func TestReportService_Generate_UnknownBiomarkersLandInOther(t *testing.T) {
	svc := newReportService()

	report := svc.Generate(reportState(domain.Dataset{
		"Unobtanium": {{Date: "2024-01-01", Value: 7}},
	}))

	require.Len(t, report.Categories, 1)
	assert.Equal(t, categoryOther, report.Categories[0].Category)
	assert.Equal(t, domain.BandUnavailable, report.Categories[0].Biomarkers[0].Status)

	require.Len(t, report.Findings, 1)
	assert.Equal(t, domain.ErrUnknownBiomarker, report.Findings[0].Code)
}

func TestReportService_Generate_RecommendationsDedupedAndCapped(t *testing.T) {
	svc := newReportService()

	// Glucose and HbA1c share one advice line; it must appear once.
	report := svc.Generate(reportState(domain.Dataset{
		"Glucose":           {{Date: "2024-01-01", Value: 130}},
		"HbA1c":             {{Date: "2024-01-01", Value: 7.0}},
		"Total Cholesterol": {{Date: "2024-01-01", Value: 260}},
		"LDL":               {{Date: "2024-01-01", Value: 170}},
		"HDL":               {{Date: "2024-01-01", Value: 32}},
		"Triglycerides":     {{Date: "2024-01-01", Value: 220}},
		"Vitamin D":         {{Date: "2024-01-01", Value: 10}},
		"Creatinine":        {{Date: "2024-01-01", Value: 2.0}},
	}))

	assert.Len(t, report.Recommendations, maxRecommendations)

	seen := map[string]int{}
	for _, rec := range report.Recommendations {
		seen[rec]++
	}
	for rec, n := range seen {
		assert.Equal(t, 1, n, rec)
	}
}

func TestReportService_Generate_SkipsNaNReadings(t *testing.T) {
	svc := newReportService()

	report := svc.Generate(reportState(domain.Dataset{
		// Newest reading is non-numeric; the insight falls back to the
		// latest numeric one.
		"Glucose": {
			{Date: "2024-01-01", Value: 95},
			{Date: "2024-02-01", Value: math.NaN()},
		},
		// No numeric readings at all; no insight, findings only.
		"HDL": {{Date: "2024-01-01", Value: math.NaN()}},
	}))

	require.Len(t, report.Categories, 1)
	glucose := report.Categories[0].Biomarkers[0]
	assert.Equal(t, "Glucose", glucose.Biomarker)
	assert.Equal(t, 95.0, glucose.LatestValue)
	assert.Equal(t, "2024-01-01", glucose.LatestDate)
	assert.Equal(t, domain.BandNormal, glucose.Status)

	assert.NotEmpty(t, report.Findings)

	// The report must stay JSON-encodable despite the NaN readings.
	_, err := json.Marshal(report)
	require.NoError(t, err)
}

func TestReportService_Generate_HealthyDatasetGetsFallbackAdvice(t *testing.T) {
	svc := newReportService()

	report := svc.Generate(reportState(domain.Dataset{
		"Glucose": {{Date: "2024-01-01", Value: 90}},
	}))

	assert.Equal(t, []string{fallbackRecommendation}, report.Recommendations)
}

func TestReportService_Generate_EmptyDataset(t *testing.T) {
	svc := newReportService()

	report := svc.Generate(reportState(domain.Dataset{}))
	assert.Empty(t, report.Categories)
	assert.Equal(t, []string{fallbackRecommendation}, report.Recommendations)
}
