// Package charts renders biomarker history as self-contained HTML
// line charts with the clinical band boundaries marked.
package charts

import (
	"bytes"
	"fmt"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/biomarker-insight-server/internal/domain"
)

// RenderLine renders one biomarker's series as an HTML document. NaN
// readings are skipped; the series must have at least one numeric
// point left after that.
func RenderLine(biomarker string, series domain.BiomarkerSeries) (string, error) {
	sorted := series.SortedByDate()

	var xAxis []string
	var yData []opts.LineData
	dataMin := math.Inf(1)
	dataMax := math.Inf(-1)
	for _, p := range sorted {
		if math.IsNaN(p.Value) {
			continue
		}
		xAxis = append(xAxis, p.Date)
		yData = append(yData, opts.LineData{Value: p.Value})
		dataMin = math.Min(dataMin, p.Value)
		dataMax = math.Max(dataMax, p.Value)
	}
	if len(yData) == 0 {
		return "", fmt.Errorf("no numeric readings to chart for %s", biomarker)
	}

	unitLabel := ""
	entry, known := domain.LookupRange(biomarker)
	if known {
		unitLabel = entry.Unit
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title: biomarker,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show: opts.Bool(true),
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(false),
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: unitLabel,
		}),
	)

	seriesOpts := []charts.SeriesOpts{
		charts.WithLineChartOpts(opts.LineChart{
			Smooth:     opts.Bool(true),
			ShowSymbol: opts.Bool(true),
		}),
		charts.WithMarkPointNameTypeItemOpts(
			opts.MarkPointNameTypeItem{Name: "Max", Type: "max"},
			opts.MarkPointNameTypeItem{Name: "Min", Type: "min"},
		),
	}

	if known {
		if markLineItems := bandBoundaryLines(entry, dataMin, dataMax); len(markLineItems) > 0 {
			// Dashed gray lines without arrows mark the band edges.
			seriesOpts = append(seriesOpts, func(s *charts.SingleSeries) {
				s.MarkLines = &opts.MarkLines{
					Data: markLineItems,
					MarkLineStyle: opts.MarkLineStyle{
						Symbol: []string{"none", "none"},
						LineStyle: &opts.LineStyle{
							Color: "rgba(128, 128, 128, 0.6)",
							Type:  "dashed",
							Width: 1.5,
						},
					},
				}
			})
		}
	}

	line.SetXAxis(xAxis).
		AddSeries(biomarker, yData).
		SetSeriesOptions(seriesOpts...)

	var buf bytes.Buffer
	if err := line.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// bandBoundaryLines builds a mark line per band boundary near the
// data. Sentinel bounds far outside the observed values would squash
// the plot, so only boundaries within 3x the data span are marked.
func bandBoundaryLines(entry domain.RangeEntry, dataMin, dataMax float64) []interface{} {
	span := dataMax - dataMin
	if span == 0 {
		span = math.Abs(dataMax)
		if span == 0 {
			span = 1
		}
	}
	lo := dataMin - 3*span
	hi := dataMax + 3*span

	seen := map[float64]bool{}
	var items []interface{}
	for _, band := range entry.Bands {
		for _, bound := range []float64{band.Lower, band.Upper} {
			if bound < lo || bound > hi || seen[bound] {
				continue
			}
			seen[bound] = true
			items = append(items, opts.MarkLineNameYAxisItem{
				Name:  string(band.Label),
				YAxis: bound,
			})
		}
	}
	return items
}
