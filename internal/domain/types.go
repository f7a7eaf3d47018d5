package domain

import (
	"encoding/json"
	"math"
	"sort"
)

// Core Enums and Types

// BandLabel represents a clinical interpretation band for a biomarker value
type BandLabel string

const (
	BandNormal       BandLabel = "normal"
	BandBorderline   BandLabel = "borderline"
	BandHigh         BandLabel = "high"
	BandLow          BandLabel = "low"
	BandDeficient    BandLabel = "deficient"
	BandInsufficient BandLabel = "insufficient"
	BandSufficient   BandLabel = "sufficient"
	BandPrediabetic  BandLabel = "prediabetic"
	BandDiabetic     BandLabel = "diabetic"

	// BandUnavailable is returned when a biomarker has no band matching
	// the value. It never appears in a range table.
	BandUnavailable BandLabel = "unavailable"
)

// String returns the string representation
func (b BandLabel) String() string {
	return string(b)
}

// TrendDirection represents the direction of change between readings
type TrendDirection string

const (
	TrendUp     TrendDirection = "up"
	TrendDown   TrendDirection = "down"
	TrendStable TrendDirection = "stable"
)

// String returns the string representation
func (d TrendDirection) String() string {
	return string(d)
}

// Core Data Models

// ReadingPoint is a single dated biomarker reading. A point with a
// missing or non-numeric value carries NaN; JSON encodes that as null
// so the validator, not the codec, decides what to do with it.
type ReadingPoint struct {
	Date  string
	Value float64
}

// readingPointJSON is the wire shape; Value is a pointer so an absent
// or null value survives the round trip as NaN.
type readingPointJSON struct {
	Date  string   `json:"date"`
	Value *float64 `json:"value"`
}

// MarshalJSON implements json.Marshaler
func (p ReadingPoint) MarshalJSON() ([]byte, error) {
	out := readingPointJSON{Date: p.Date}
	if !math.IsNaN(p.Value) {
		v := p.Value
		out.Value = &v
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler
func (p *ReadingPoint) UnmarshalJSON(data []byte) error {
	var in readingPointJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	p.Date = in.Date
	if in.Value == nil {
		p.Value = math.NaN()
	} else {
		p.Value = *in.Value
	}
	return nil
}

// Valid reports whether the point has both a date and a numeric value.
func (p ReadingPoint) Valid() bool {
	return p.Date != "" && !math.IsNaN(p.Value)
}

// BiomarkerSeries is the ordered list of readings for one biomarker,
// in ingestion order. Callers needing chronological order must sort
// before computing trends.
type BiomarkerSeries []ReadingPoint

// SortedByDate returns a copy of the series sorted ascending by date.
// ISO dates sort correctly as strings.
func (s BiomarkerSeries) SortedByDate() BiomarkerSeries {
	sorted := make(BiomarkerSeries, len(s))
	copy(sorted, s)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date < sorted[j].Date
	})
	return sorted
}

// Latest returns the last point of the series, or nil when empty.
func (s BiomarkerSeries) Latest() *ReadingPoint {
	if len(s) == 0 {
		return nil
	}
	p := s[len(s)-1]
	return &p
}

// Dataset maps biomarker names to their series. A Dataset is built
// whole by an ingestion adapter and replaced, never merged.
type Dataset map[string]BiomarkerSeries

// Names returns the biomarker names in sorted order.
func (d Dataset) Names() []string {
	names := make([]string, 0, len(d))
	for name := range d {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PointCount returns the total number of readings across all series.
func (d Dataset) PointCount() int {
	n := 0
	for _, series := range d {
		n += len(series)
	}
	return n
}

// RangeBand is a named numeric interval within a biomarker's range
// table, bounds in the biomarker's reporting unit.
type RangeBand struct {
	Label BandLabel `json:"label"`
	Lower float64   `json:"lower"`
	Upper float64   `json:"upper"`
}

// Contains reports whether the value falls within the band, bounds
// inclusive. Overlapping boundaries are resolved by classification
// precedence, not here.
func (b RangeBand) Contains(value float64) bool {
	return value >= b.Lower && value <= b.Upper
}

// Trend is the change between a biomarker's two most recent readings.
// PercentValid is false when the previous value was zero, in which
// case PercentChange is not computable and callers render "N/A".
type Trend struct {
	Delta         float64        `json:"delta"`
	PercentChange float64        `json:"percent_change"`
	PercentValid  bool           `json:"percent_valid"`
	Direction     TrendDirection `json:"direction"`
}

// TrendAnalysis is the multi-point trend over a whole series sorted by
// date: least-squares slope, percent change from first to last reading,
// and an overall direction with a small stability threshold.
type TrendAnalysis struct {
	Direction     TrendDirection `json:"direction"`
	Slope         float64        `json:"slope"`
	PercentChange float64        `json:"percent_change"`
	DataPoints    int            `json:"data_points"`
	DateRange     string         `json:"date_range"`
	LatestValue   float64        `json:"latest_value"`
	LatestStatus  BandLabel      `json:"latest_status"`
}
