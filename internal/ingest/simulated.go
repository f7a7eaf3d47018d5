package ingest

import (
	"context"
	"io"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/biomarker-insight-server/internal/domain"
)

// simulatedBiomarkers lists the panels a scanned lab report typically
// carries. Values are drawn from the typical range of each entry so
// downstream classification exercises every band.
var simulatedBiomarkers = []string{
	"Total Cholesterol",
	"LDL",
	"HDL",
	"Triglycerides",
	"Creatinine",
	"Vitamin D",
	"Vitamin B12",
	"HbA1c",
}

// SimulatedAdapter stands in for binary lab-report extraction. Real
// PDF parsing needs an OCR pipeline that lives outside this service,
// so uploads with a .pdf extension get a plausible synthetic panel
// instead, clearly marked as simulated in the result.
type SimulatedAdapter struct {
	rng *rand.Rand
	now func() time.Time
}

// NewSimulatedAdapter returns an adapter that generates one reading
// per panel biomarker, dated today.
func NewSimulatedAdapter() *SimulatedAdapter {
	return &SimulatedAdapter{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
		now: time.Now,
	}
}

// Ingest implements the Adapter interface
func (a *SimulatedAdapter) Ingest(ctx context.Context, r io.Reader) (*Result, error) {
	if r != nil {
		// Drain the upload so the connection can be reused.
		if _, err := io.Copy(io.Discard, r); err != nil {
			return nil, domain.NewIOError("failed to read uploaded report", err)
		}
	}

	date := a.now().Format("2006-01-02")
	ds := make(domain.Dataset, len(simulatedBiomarkers))
	for _, name := range simulatedBiomarkers {
		entry, ok := domain.LookupRange(name)
		if !ok {
			continue
		}
		value := entry.TypicalLow + a.rng.Float64()*(entry.TypicalHigh-entry.TypicalLow)
		ds[name] = domain.BiomarkerSeries{{Date: date, Value: value}}
	}

	logrus.WithFields(logrus.Fields{
		"biomarkers": len(ds),
		"date":       date,
	}).Info("Generated simulated lab report panel")

	return &Result{Dataset: ds, Source: SourceSimulated, Simulated: true}, nil
}
