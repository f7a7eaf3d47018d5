package service

import (
	"math"

	"github.com/sirupsen/logrus"

	"github.com/biomarker-insight-server/internal/domain"
)

// ValidatorService checks a dataset against the range table and basic
// reading sanity rules. Findings are advisory: the caller renders the
// dataset regardless and surfaces the findings alongside it.
type ValidatorService struct {
	logger *logrus.Logger
}

// NewValidatorService creates a new validator service
func NewValidatorService(logger *logrus.Logger) *ValidatorService {
	return &ValidatorService{logger: logger}
}

// Validate walks the whole dataset and collects findings. Biomarkers
// missing from the range table get one finding each and their readings
// are not inspected further; every reading of a known biomarker is
// checked for a date and a usable value. A NaN reading fails both the
// point check and the value check and is reported twice, once under
// each code.
func (v *ValidatorService) Validate(dataset domain.Dataset) []domain.ValidationError {
	findings := []domain.ValidationError{}

	for _, name := range dataset.Names() {
		if !domain.KnownBiomarker(name) {
			findings = append(findings, domain.NewUnknownBiomarkerError(name))
			continue
		}

		for _, point := range dataset[name] {
			if point.Date == "" || math.IsNaN(point.Value) {
				findings = append(findings, domain.NewInvalidPointError(name, point))
			}
			if math.IsNaN(point.Value) || point.Value < 0 {
				findings = append(findings, domain.NewInvalidValueError(name, point))
			}
		}
	}

	if len(findings) > 0 {
		v.logger.WithField("findings", len(findings)).Warn("Dataset validation produced findings")
	}

	return findings
}
