package service

import (
	"math"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/biomarker-insight-server/internal/domain"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func TestClassifierService_Classify(t *testing.T) {
	classifier := NewClassifierService(testLogger())

	tests := []struct {
		name      string
		biomarker string
		value     float64
		want      domain.BandLabel
	}{
		{"HDL below protective threshold", "HDL", 35, domain.BandLow},
		{"HDL at boundary is normal", "HDL", 40, domain.BandNormal},
		{"HDL healthy", "HDL", 55, domain.BandNormal},
		{"Total cholesterol high", "Total Cholesterol", 250, domain.BandHigh},
		{"Total cholesterol borderline", "Total Cholesterol", 220, domain.BandBorderline},
		{"Total cholesterol boundary goes to the severe label", "Total Cholesterol", 240, domain.BandHigh},
		{"Total cholesterol normal", "Total Cholesterol", 180, domain.BandNormal},
		{"Total cholesterol above sentinel still high", "Total Cholesterol", 1200, domain.BandHigh},
		{"Glucose normal", "Glucose", 90, domain.BandNormal},
		{"Glucose prediabetic", "Glucose", 110, domain.BandPrediabetic},
		{"Glucose diabetic", "Glucose", 140, domain.BandDiabetic},
		{"Glucose below every band", "Glucose", 50, domain.BandUnavailable},
		{"HbA1c prediabetic", "HbA1c", 6.0, domain.BandPrediabetic},
		{"Vitamin D deficient", "Vitamin D", 12, domain.BandDeficient},
		{"Vitamin D insufficient", "Vitamin D", 25, domain.BandInsufficient},
		{"Vitamin D sufficient", "Vitamin D", 42, domain.BandSufficient},
		{"Creatinine high", "Creatinine", 1.8, domain.BandHigh},
		{"Unknown biomarker", "Unobtanium", 42, domain.BandUnavailable},
		{"NaN value", "Glucose", math.NaN(), domain.BandUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifier.Classify(tt.biomarker, tt.value))
		})
	}
}

func TestClassifierService_HighPrecedenceHoldsForAllBiomarkers(t *testing.T) {
	classifier := NewClassifierService(testLogger())

	// Any value at or above a high band's lower bound classifies high,
	// no matter what other bands the biomarker defines.
	for _, name := range domain.RangeTableNames() {
		entry, _ := domain.LookupRange(name)
		band, ok := entry.Band(domain.BandHigh)
		if !ok {
			continue
		}
		assert.Equal(t, domain.BandHigh, classifier.Classify(name, band.Lower), name)
		assert.Equal(t, domain.BandHigh, classifier.Classify(name, band.Lower+10), name)
	}
}

func TestClassifierService_ClassifyLatest(t *testing.T) {
	classifier := NewClassifierService(testLogger())

	series := domain.BiomarkerSeries{
		{Date: "2024-02-01", Value: 250},
		{Date: "2024-01-01", Value: 180},
	}
	// Latest by date, not by position.
	assert.Equal(t, domain.BandHigh, classifier.ClassifyLatest("Total Cholesterol", series))

	assert.Equal(t, domain.BandUnavailable, classifier.ClassifyLatest("Total Cholesterol", nil))
}
