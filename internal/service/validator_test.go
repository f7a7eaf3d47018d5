package service

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biomarker-insight-server/internal/domain"
)

func TestValidatorService_Validate(t *testing.T) {
	validator := NewValidatorService(testLogger())

	t.Run("Clean dataset has no findings", func(t *testing.T) {
		findings := validator.Validate(domain.Dataset{
			"Glucose": {{Date: "2024-01-01", Value: 95}},
			"HDL":     {{Date: "2024-01-01", Value: 52}},
		})
		assert.Empty(t, findings)
	})

	t.Run("Unknown biomarker reported once", func(t *testing.T) {
		findings := validator.Validate(domain.Dataset{
			"Unobtanium": {{Date: "2024-01-01", Value: 1}, {Date: "2024-02-01", Value: 2}},
		})
		require.Len(t, findings, 1)
		assert.Equal(t, domain.ErrUnknownBiomarker, findings[0].Code)
		assert.Equal(t, "Unobtanium", findings[0].Biomarker)
	})

	t.Run("Missing date flags the point", func(t *testing.T) {
		findings := validator.Validate(domain.Dataset{
			"Glucose": {{Date: "", Value: 95}},
		})
		require.Len(t, findings, 1)
		assert.Equal(t, domain.ErrInvalidPoint, findings[0].Code)
	})

	t.Run("Negative value flags the value", func(t *testing.T) {
		findings := validator.Validate(domain.Dataset{
			"Glucose": {{Date: "2024-01-01", Value: -5}},
		})
		require.Len(t, findings, 1)
		assert.Equal(t, domain.ErrInvalidValue, findings[0].Code)
	})

	t.Run("NaN reading fails both checks", func(t *testing.T) {
		findings := validator.Validate(domain.Dataset{
			"Glucose": {{Date: "2024-01-01", Value: math.NaN()}},
		})
		require.Len(t, findings, 2)

		codes := []string{findings[0].Code, findings[1].Code}
		assert.Contains(t, codes, domain.ErrInvalidPoint)
		assert.Contains(t, codes, domain.ErrInvalidValue)
	})

	t.Run("Findings accumulate across biomarkers", func(t *testing.T) {
		findings := validator.Validate(domain.Dataset{
			"Unobtanium": {{Date: "2024-01-01", Value: 1}},
			"Glucose":    {{Date: "", Value: -1}},
		})
		assert.Len(t, findings, 3)
	})

	t.Run("Unknown biomarker readings are not point-checked", func(t *testing.T) {
		findings := validator.Validate(domain.Dataset{
			"Unobtanium": {{Date: "", Value: -1}},
		})
		require.Len(t, findings, 1)
		assert.Equal(t, domain.ErrUnknownBiomarker, findings[0].Code)
	})

	t.Run("Empty dataset", func(t *testing.T) {
		assert.Empty(t, validator.Validate(domain.Dataset{}))
	})
}
