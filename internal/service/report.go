package service

import (
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/biomarker-insight-server/internal/domain"
)

// BiomarkerInsight is one biomarker's entry in a report: the latest
// reading, its classification, and the trend when enough history
// exists.
type BiomarkerInsight struct {
	Biomarker   string                `json:"biomarker"`
	LatestValue float64               `json:"latest_value"`
	LatestDate  string                `json:"latest_date"`
	Unit        string                `json:"unit,omitempty"`
	Status      domain.BandLabel      `json:"status"`
	Trend       *domain.Trend         `json:"trend,omitempty"`
	Analysis    *domain.TrendAnalysis `json:"analysis,omitempty"`
}

// CategoryInsights groups insights under a clinical category heading.
type CategoryInsights struct {
	Category   string             `json:"category"`
	Biomarkers []BiomarkerInsight `json:"biomarkers"`
}

// Report is the full insight report for the current dataset.
// Biomarkers without a range table entry land in the Other category;
// they still get latest value and trend, just no classification.
type Report struct {
	GeneratedAt     time.Time                `json:"generated_at"`
	Generation      uint64                   `json:"generation"`
	Source          string                   `json:"source"`
	Simulated       bool                     `json:"simulated"`
	Categories      []CategoryInsights       `json:"categories"`
	Recommendations []string                 `json:"recommendations"`
	Findings        []domain.ValidationError `json:"findings,omitempty"`
}

// recommendationRules maps a biomarker and its latest status to advice
// text. Reports collect matching rules, dedupe and cap them.
type recommendationRule struct {
	biomarker string
	statuses  []domain.BandLabel
	advice    string
}

var recommendationRules = []recommendationRule{
	{"Total Cholesterol", []domain.BandLabel{domain.BandHigh}, "Consider dietary changes to reduce cholesterol intake"},
	{"LDL", []domain.BandLabel{domain.BandHigh}, "Focus on reducing saturated fats and increasing fiber intake"},
	{"HDL", []domain.BandLabel{domain.BandLow}, "Increase physical activity to boost HDL cholesterol"},
	{"Triglycerides", []domain.BandLabel{domain.BandHigh}, "Limit refined carbohydrates and added sugars"},
	{"Glucose", []domain.BandLabel{domain.BandPrediabetic, domain.BandDiabetic}, "Monitor blood sugar levels and consider diabetes management strategies"},
	{"HbA1c", []domain.BandLabel{domain.BandPrediabetic, domain.BandDiabetic}, "Monitor blood sugar levels and consider diabetes management strategies"},
	{"Vitamin D", []domain.BandLabel{domain.BandDeficient, domain.BandInsufficient}, "Consider vitamin D supplementation and increased sun exposure"},
	{"Vitamin B12", []domain.BandLabel{domain.BandDeficient}, "Consider vitamin B12 supplementation or B12-rich foods"},
	{"Creatinine", []domain.BandLabel{domain.BandHigh}, "Stay well-hydrated and monitor kidney function"},
}

// maxRecommendations caps the advice list so reports stay scannable.
const maxRecommendations = 5

const fallbackRecommendation = "Consult with your healthcare provider for personalized recommendations"

// categoryOrder fixes report section ordering; the Other bucket always
// renders last.
var categoryOrder = []string{
	domain.CategoryLipidProfile,
	domain.CategoryDiabetesMarker,
	domain.CategoryKidneyFunction,
	domain.CategoryVitamins,
}

const categoryOther = "Other Markers"

// ReportService builds category-grouped insight reports from the
// current dataset.
type ReportService struct {
	logger     *logrus.Logger
	classifier *ClassifierService
	trends     *TrendService
	validator  *ValidatorService
}

// NewReportService creates a new report service
func NewReportService(logger *logrus.Logger, classifier *ClassifierService, trends *TrendService, validator *ValidatorService) *ReportService {
	return &ReportService{
		logger:     logger,
		classifier: classifier,
		trends:     trends,
		validator:  validator,
	}
}

// Generate builds the insight report for a dataset state.
func (s *ReportService) Generate(state DatasetState) *Report {
	grouped := map[string][]BiomarkerInsight{}

	for _, name := range state.Dataset.Names() {
		series := state.Dataset[name]
		insight, ok := s.insightFor(name, series)
		if !ok {
			continue
		}

		category := categoryOther
		if entry, known := domain.LookupRange(name); known {
			category = entry.Category
		}
		grouped[category] = append(grouped[category], insight)
	}

	categories := make([]CategoryInsights, 0, len(grouped))
	for _, category := range categoryOrder {
		if insights, ok := grouped[category]; ok {
			categories = append(categories, CategoryInsights{Category: category, Biomarkers: insights})
		}
	}
	if insights, ok := grouped[categoryOther]; ok {
		categories = append(categories, CategoryInsights{Category: categoryOther, Biomarkers: insights})
	}

	report := &Report{
		GeneratedAt:     time.Now().UTC(),
		Generation:      state.Generation,
		Source:          state.Source,
		Simulated:       state.Simulated,
		Categories:      categories,
		Recommendations: s.recommendations(categories),
		Findings:        s.validator.Validate(state.Dataset),
	}

	s.logger.WithFields(logrus.Fields{
		"generation":      state.Generation,
		"categories":      len(categories),
		"recommendations": len(report.Recommendations),
	}).Info("Generated insight report")

	return report
}

// insightFor builds the report entry for one biomarker. The latest
// numeric reading drives the entry; a series with only non-numeric
// readings is skipped, its problems surface as validation findings.
func (s *ReportService) insightFor(name string, series domain.BiomarkerSeries) (BiomarkerInsight, bool) {
	latest := latestNumeric(series)
	if latest == nil {
		return BiomarkerInsight{}, false
	}

	insight := BiomarkerInsight{
		Biomarker:   name,
		LatestValue: latest.Value,
		LatestDate:  latest.Date,
		Status:      s.classifier.Classify(name, latest.Value),
		Trend:       s.trends.Trend(series),
		Analysis:    s.trends.Analyze(name, series),
	}
	if entry, ok := domain.LookupRange(name); ok {
		insight.Unit = entry.Unit
	}
	return insight, true
}

// latestNumeric returns the most recent reading carrying a numeric
// value, or nil when the series has none. NaN readings never reach the
// rendered report.
func latestNumeric(series domain.BiomarkerSeries) *domain.ReadingPoint {
	sorted := series.SortedByDate()
	for i := len(sorted) - 1; i >= 0; i-- {
		if !math.IsNaN(sorted[i].Value) {
			p := sorted[i]
			return &p
		}
	}
	return nil
}

// recommendations collects rule matches across all insights, deduped
// in encounter order and capped. An empty match list falls back to the
// generic advice line.
func (s *ReportService) recommendations(categories []CategoryInsights) []string {
	seen := map[string]bool{}
	out := []string{}

	for _, category := range categories {
		for _, insight := range category.Biomarkers {
			for _, rule := range recommendationRules {
				if rule.biomarker != insight.Biomarker {
					continue
				}
				for _, status := range rule.statuses {
					if insight.Status == status && !seen[rule.advice] {
						seen[rule.advice] = true
						out = append(out, rule.advice)
					}
				}
			}
		}
	}

	if len(out) == 0 {
		return []string{fallbackRecommendation}
	}
	if len(out) > maxRecommendations {
		out = out[:maxRecommendations]
	}
	return out
}
