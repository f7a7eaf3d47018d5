package service

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/biomarker-insight-server/internal/domain"
)

// slopeStableThreshold is the least-squares slope magnitude below which
// a multi-point series counts as stable.
const slopeStableThreshold = 0.1

// TrendService computes changes across a biomarker's readings, both
// the simple two-point delta shown on dashboard cards and the
// least-squares analysis used in reports.
type TrendService struct {
	logger     *logrus.Logger
	classifier *ClassifierService
}

// NewTrendService creates a new trend service
func NewTrendService(logger *logrus.Logger, classifier *ClassifierService) *TrendService {
	return &TrendService{logger: logger, classifier: classifier}
}

// Trend computes the change between the two most recent readings of a
// series, sorted by date. It returns nil when fewer than two points
// exist; a single reading is new, not stable.
//
// PercentValid is false when the previous value is zero, since the
// percent change is not computable; callers render it as "N/A".
func (s *TrendService) Trend(series domain.BiomarkerSeries) *domain.Trend {
	sorted := sortedValidDates(series)
	if len(sorted) < 2 {
		return nil
	}

	prev := sorted[len(sorted)-2].Value
	latest := sorted[len(sorted)-1].Value
	if math.IsNaN(prev) || math.IsNaN(latest) {
		return nil
	}

	delta := latest - prev
	trend := &domain.Trend{
		Delta:     delta,
		Direction: direction(delta),
	}
	if prev != 0 {
		trend.PercentChange = delta / prev * 100
		trend.PercentValid = true
	}
	return trend
}

// Analyze computes the multi-point trend over a whole series: the
// least-squares slope across reading index, the percent change from
// first to last reading, and the latest reading's classification. It
// returns nil when fewer than two numeric readings exist.
func (s *TrendService) Analyze(biomarker string, series domain.BiomarkerSeries) *domain.TrendAnalysis {
	sorted := numericPoints(sortedValidDates(series))
	if len(sorted) < 2 {
		return nil
	}

	first := sorted[0]
	last := sorted[len(sorted)-1]

	slope := leastSquaresSlope(sorted)
	dir := domain.TrendStable
	if math.Abs(slope) >= slopeStableThreshold {
		dir = direction(slope)
	}

	percentChange := 0.0
	if first.Value != 0 {
		percentChange = (last.Value - first.Value) / first.Value * 100
	}

	analysis := &domain.TrendAnalysis{
		Direction:     dir,
		Slope:         slope,
		PercentChange: percentChange,
		DataPoints:    len(sorted),
		DateRange:     fmt.Sprintf("%s to %s", first.Date, last.Date),
		LatestValue:   last.Value,
		LatestStatus:  s.classifier.Classify(biomarker, last.Value),
	}

	s.logger.WithFields(logrus.Fields{
		"biomarker":   biomarker,
		"direction":   dir,
		"slope":       slope,
		"data_points": len(sorted),
	}).Debug("Computed trend analysis")

	return analysis
}

// leastSquaresSlope fits value against reading index (0..n-1) and
// returns the slope in value units per reading.
func leastSquaresSlope(points []domain.ReadingPoint) float64 {
	n := float64(len(points))
	var sumX, sumY, sumXY, sumXX float64
	for i, p := range points {
		x := float64(i)
		sumX += x
		sumY += p.Value
		sumXY += x * p.Value
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denom
}

func direction(delta float64) domain.TrendDirection {
	switch {
	case delta > 0:
		return domain.TrendUp
	case delta < 0:
		return domain.TrendDown
	default:
		return domain.TrendStable
	}
}

// sortedValidDates sorts the series by date, dropping points with no
// date at all since they cannot be ordered.
func sortedValidDates(series domain.BiomarkerSeries) domain.BiomarkerSeries {
	kept := make(domain.BiomarkerSeries, 0, len(series))
	for _, p := range series {
		if p.Date != "" {
			kept = append(kept, p)
		}
	}
	return kept.SortedByDate()
}

// numericPoints drops NaN readings.
func numericPoints(series domain.BiomarkerSeries) domain.BiomarkerSeries {
	kept := make(domain.BiomarkerSeries, 0, len(series))
	for _, p := range series {
		if !math.IsNaN(p.Value) {
			kept = append(kept, p)
		}
	}
	return kept
}
