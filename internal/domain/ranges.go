package domain

import "sort"

// Clinical categories used to group biomarkers in reports.
const (
	CategoryLipidProfile   = "Lipid Profile"
	CategoryDiabetesMarker = "Diabetes Markers"
	CategoryKidneyFunction = "Kidney Function"
	CategoryVitamins       = "Vitamins"
)

// RangeEntry holds everything known about one biomarker: its clinical
// bands, reporting unit, category, and the human-readable note shown in
// the range reference. One table drives both classification and the
// reference endpoint so the two cannot drift apart.
type RangeEntry struct {
	Bands    []RangeBand `json:"bands"`
	Unit     string      `json:"unit"`
	Category string      `json:"category"`
	Note     string      `json:"note"`

	// TypicalLow/TypicalHigh bound the narrow illustrative range the
	// simulated extractor draws from. Not the clinical range.
	TypicalLow  float64 `json:"-"`
	TypicalHigh float64 `json:"-"`

	// PlausibleLow/PlausibleHigh are extraction-time sanity bounds; a
	// reading outside them is almost certainly a parsing artifact.
	PlausibleLow  float64 `json:"-"`
	PlausibleHigh float64 `json:"-"`
}

// Band returns the band with the given label, if the entry defines one.
func (e RangeEntry) Band(label BandLabel) (RangeBand, bool) {
	for _, b := range e.Bands {
		if b.Label == label {
			return b, true
		}
	}
	return RangeBand{}, false
}

// rangeTable is the static clinical range table. Loaded once, never
// mutated at runtime. Band boundaries deliberately overlap at their
// edges (e.g. borderline upper == high lower); classification precedence
// resolves ties toward the more severe label.
var rangeTable = map[string]RangeEntry{
	"Total Cholesterol": {
		Bands: []RangeBand{
			{BandNormal, 0, 200},
			{BandBorderline, 200, 240},
			{BandHigh, 240, 999},
		},
		Unit:          "mg/dL",
		Category:      CategoryLipidProfile,
		Note:          "Desirable below 200 mg/dL; 200-239 borderline high.",
		TypicalLow:    150,
		TypicalHigh:   220,
		PlausibleLow:  50,
		PlausibleHigh: 1000,
	},
	"LDL": {
		Bands: []RangeBand{
			{BandNormal, 0, 100},
			{BandBorderline, 100, 160},
			{BandHigh, 160, 999},
		},
		Unit:          "mg/dL",
		Category:      CategoryLipidProfile,
		Note:          "Optimal below 100 mg/dL.",
		TypicalLow:    80,
		TypicalHigh:   140,
		PlausibleLow:  20,
		PlausibleHigh: 800,
	},
	"HDL": {
		Bands: []RangeBand{
			{BandLow, 0, 40},
			{BandNormal, 40, 999},
		},
		Unit:          "mg/dL",
		Category:      CategoryLipidProfile,
		Note:          "40 mg/dL or higher; higher is protective.",
		TypicalLow:    35,
		TypicalHigh:   65,
		PlausibleLow:  10,
		PlausibleHigh: 200,
	},
	"Triglycerides": {
		Bands: []RangeBand{
			{BandNormal, 0, 150},
			{BandBorderline, 150, 200},
			{BandHigh, 200, 999},
		},
		Unit:          "mg/dL",
		Category:      CategoryLipidProfile,
		Note:          "Normal below 150 mg/dL.",
		TypicalLow:    80,
		TypicalHigh:   180,
		PlausibleLow:  20,
		PlausibleHigh: 2000,
	},
	"Glucose": {
		Bands: []RangeBand{
			{BandNormal, 70, 100},
			{BandPrediabetic, 100, 126},
			{BandDiabetic, 126, 999},
		},
		Unit:          "mg/dL",
		Category:      CategoryDiabetesMarker,
		Note:          "Fasting; 100-125 mg/dL indicates prediabetes.",
		TypicalLow:    75,
		TypicalHigh:   115,
		PlausibleLow:  30,
		PlausibleHigh: 800,
	},
	"HbA1c": {
		Bands: []RangeBand{
			{BandNormal, 0, 5.7},
			{BandPrediabetic, 5.7, 6.5},
			{BandDiabetic, 6.5, 999},
		},
		Unit:          "%",
		Category:      CategoryDiabetesMarker,
		Note:          "Below 5.7%; 5.7-6.4% indicates prediabetes.",
		TypicalLow:    4.8,
		TypicalHigh:   6.2,
		PlausibleLow:  3.0,
		PlausibleHigh: 20.0,
	},
	"Creatinine": {
		Bands: []RangeBand{
			{BandNormal, 0.6, 1.3},
			{BandHigh, 1.3, 999},
		},
		Unit:          "mg/dL",
		Category:      CategoryKidneyFunction,
		Note:          "0.6-1.3 mg/dL; elevated values suggest reduced kidney function.",
		TypicalLow:    0.7,
		TypicalHigh:   1.2,
		PlausibleLow:  0.1,
		PlausibleHigh: 20.0,
	},
	"Vitamin D": {
		Bands: []RangeBand{
			{BandDeficient, 0, 20},
			{BandInsufficient, 20, 30},
			{BandSufficient, 30, 999},
		},
		Unit:          "ng/mL",
		Category:      CategoryVitamins,
		Note:          "25-OH vitamin D; 30 ng/mL or higher is sufficient.",
		TypicalLow:    18,
		TypicalHigh:   45,
		PlausibleLow:  1,
		PlausibleHigh: 200,
	},
	"Vitamin B12": {
		Bands: []RangeBand{
			{BandDeficient, 0, 300},
			{BandLow, 300, 400},
			{BandNormal, 400, 999},
		},
		Unit:          "pg/mL",
		Category:      CategoryVitamins,
		Note:          "400 pg/mL or higher; below 300 is deficient.",
		TypicalLow:    300,
		TypicalHigh:   600,
		PlausibleLow:  50,
		PlausibleHigh: 5000,
	},
}

// LookupRange returns the range table entry for a biomarker.
func LookupRange(name string) (RangeEntry, bool) {
	e, ok := rangeTable[name]
	return e, ok
}

// KnownBiomarker reports whether the biomarker has a range table entry.
func KnownBiomarker(name string) bool {
	_, ok := rangeTable[name]
	return ok
}

// RangeTableNames returns all biomarker names in the range table,
// sorted for stable iteration.
func RangeTableNames() []string {
	names := make([]string, 0, len(rangeTable))
	for name := range rangeTable {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Plausible reports whether a value is within the biomarker's
// extraction sanity bounds. Unknown biomarkers are always plausible.
func Plausible(name string, value float64) bool {
	e, ok := rangeTable[name]
	if !ok {
		return true
	}
	return value >= e.PlausibleLow && value <= e.PlausibleHigh
}
