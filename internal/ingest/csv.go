package ingest

import (
	"bufio"
	"context"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/biomarker-insight-server/internal/domain"
)

// CSVAdapter ingests comma-separated text with a header row of
// "date,biomarker1,biomarker2,...". There is no quoting or escaping
// support. Rows whose field count differs from the header's are
// skipped and counted on the result; non-numeric values become NaN
// points for the validator to flag.
type CSVAdapter struct{}

// NewCSVAdapter creates a new CSV adapter
func NewCSVAdapter() *CSVAdapter {
	return &CSVAdapter{}
}

// Ingest implements the Adapter interface
func (a *CSVAdapter) Ingest(ctx context.Context, r io.Reader) (*Result, error) {
	scanner := bufio.NewScanner(r)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, domain.NewIOError("failed to read CSV input", err)
		}
		return nil, domain.NewParseError("CSV input is missing a header row", nil)
	}

	header := splitRow(scanner.Text())
	if len(header) < 2 {
		return nil, domain.NewParseError("CSV header needs a date column and at least one biomarker column", nil)
	}

	dataset := domain.Dataset{}
	for _, name := range header[1:] {
		dataset[name] = domain.BiomarkerSeries{}
	}

	skipped := 0
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		fields := splitRow(line)
		if len(fields) != len(header) {
			skipped++
			continue
		}

		date := NormalizeDate(fields[0])
		for i, raw := range fields[1:] {
			value, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				value = math.NaN()
			}
			name := header[i+1]
			dataset[name] = append(dataset[name], domain.ReadingPoint{Date: date, Value: value})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, domain.NewIOError("failed to read CSV input", err)
	}

	return &Result{
		Dataset:     dataset,
		Source:      SourceCSV,
		SkippedRows: skipped,
	}, nil
}

// splitRow splits a CSV line on commas and trims surrounding
// whitespace from each field.
func splitRow(line string) []string {
	fields := strings.Split(line, ",")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	return fields
}
