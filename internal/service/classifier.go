package service

import (
	"math"

	"github.com/sirupsen/logrus"

	"github.com/biomarker-insight-server/internal/domain"
)

// ClassifierService assigns clinical band labels to biomarker values
// using the static range table.
type ClassifierService struct {
	logger *logrus.Logger
}

// NewClassifierService creates a new classifier service
func NewClassifierService(logger *logrus.Logger) *ClassifierService {
	return &ClassifierService{logger: logger}
}

// Classify returns the band label for a biomarker value. Bands are
// checked in a fixed order and the first match wins; band boundaries
// overlap in the range table and the order resolves ties toward the
// more severe label. Alert-worthy bands come before normal so callers
// can surface the most clinically significant label.
//
// Unknown biomarkers, NaN values and values matching no band all
// classify as unavailable; classification never fails.
func (c *ClassifierService) Classify(biomarker string, value float64) domain.BandLabel {
	if math.IsNaN(value) {
		return domain.BandUnavailable
	}

	entry, ok := domain.LookupRange(biomarker)
	if !ok {
		c.logger.WithField("biomarker", biomarker).Debug("No range table entry, classifying as unavailable")
		return domain.BandUnavailable
	}

	// High, sufficient and diabetic bands are open-ended upward; low is
	// open-ended downward. The table still stores a sentinel upper
	// bound for display purposes.
	if band, ok := entry.Band(domain.BandHigh); ok && value >= band.Lower {
		return domain.BandHigh
	}
	if band, ok := entry.Band(domain.BandBorderline); ok && band.Contains(value) {
		return domain.BandBorderline
	}
	if band, ok := entry.Band(domain.BandLow); ok && value < band.Upper {
		return domain.BandLow
	}
	if band, ok := entry.Band(domain.BandDeficient); ok && band.Contains(value) {
		return domain.BandDeficient
	}
	if band, ok := entry.Band(domain.BandInsufficient); ok && band.Contains(value) {
		return domain.BandInsufficient
	}
	if band, ok := entry.Band(domain.BandSufficient); ok && value >= band.Lower {
		return domain.BandSufficient
	}
	if band, ok := entry.Band(domain.BandPrediabetic); ok && band.Contains(value) {
		return domain.BandPrediabetic
	}
	if band, ok := entry.Band(domain.BandDiabetic); ok && value >= band.Lower {
		return domain.BandDiabetic
	}
	if band, ok := entry.Band(domain.BandNormal); ok && band.Contains(value) {
		return domain.BandNormal
	}

	return domain.BandUnavailable
}

// ClassifyLatest classifies the most recent reading of a series. An
// empty series classifies as unavailable.
func (c *ClassifierService) ClassifyLatest(biomarker string, series domain.BiomarkerSeries) domain.BandLabel {
	latest := series.SortedByDate().Latest()
	if latest == nil {
		return domain.BandUnavailable
	}
	return c.Classify(biomarker, latest.Value)
}
