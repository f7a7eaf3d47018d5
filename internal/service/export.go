package service

import (
	"bytes"
	"encoding/csv"
	"math"
	"sort"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/biomarker-insight-server/internal/domain"
)

// ExportService renders the current dataset back out as wide-format
// CSV, one row per date with a column per biomarker. The inverse of
// CSV ingestion, modulo rows the parser skipped.
type ExportService struct {
	logger *logrus.Logger
}

// NewExportService creates a new export service
func NewExportService(logger *logrus.Logger) *ExportService {
	return &ExportService{logger: logger}
}

// CSV renders the dataset. Dates are collected across all series and
// sorted; a biomarker with no reading on a date gets an empty cell,
// and NaN readings also render empty so a round trip regenerates them
// as NaN.
func (s *ExportService) CSV(dataset domain.Dataset) ([]byte, error) {
	names := dataset.Names()

	dateSet := map[string]bool{}
	for _, name := range names {
		for _, p := range dataset[name] {
			if p.Date != "" {
				dateSet[p.Date] = true
			}
		}
	}
	dates := make([]string, 0, len(dateSet))
	for d := range dateSet {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	// Last reading wins when a series has two points on the same date.
	cells := map[string]map[string]float64{}
	for _, name := range names {
		cells[name] = map[string]float64{}
		for _, p := range dataset[name] {
			if p.Date != "" {
				cells[name][p.Date] = p.Value
			}
		}
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := append([]string{"date"}, names...)
	if err := w.Write(header); err != nil {
		return nil, domain.NewIOError("failed to write CSV export", err)
	}

	for _, date := range dates {
		row := make([]string, 0, len(header))
		row = append(row, date)
		for _, name := range names {
			value, ok := cells[name][date]
			if !ok || math.IsNaN(value) {
				row = append(row, "")
				continue
			}
			row = append(row, strconv.FormatFloat(value, 'f', -1, 64))
		}
		if err := w.Write(row); err != nil {
			return nil, domain.NewIOError("failed to write CSV export", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, domain.NewIOError("failed to write CSV export", err)
	}

	s.logger.WithFields(logrus.Fields{
		"biomarkers": len(names),
		"rows":       len(dates),
	}).Debug("Exported dataset as CSV")

	return buf.Bytes(), nil
}
