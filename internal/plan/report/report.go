// Package report renders an HTML diagnostics page for a run using
// go-echarts: a confidence-coloured scatter of every element position
// and a per-stage bar chart of produced versus rejected counts. The
// page is a self-contained file meant for review triage, not a served
// dashboard.
package report

import (
	"fmt"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/draftworks/plan2model/internal/plan"
)

// confidenceRamp runs red (low confidence) to green (high).
var confidenceRamp = []string{"#d73027", "#fc8d59", "#fee08b", "#d9ef8b", "#91cf60", "#1a9850"}

// Write renders the diagnostics page for a whole run to path.
func Write(path string, m *plan.Model) error {
	page := components.NewPage()
	page.PageTitle = "plan2model diagnostics"

	for i := range m.Floors {
		f := &m.Floors[i]
		page.AddCharts(floorScatter(f), floorConfidenceHistogram(f), floorStageBar(f))
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer out.Close()
	if err := page.Render(out); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	return nil
}

// floorScatter plots element anchor points coloured by confidence.
// Grid lines anchor at their extent midpoint, walls at the centerline
// midpoint, columns at their position.
func floorScatter(f *plan.FloorModel) *charts.Scatter {
	var data []opts.ScatterData
	needsReview := 0

	if f.Grid != nil {
		for _, gl := range f.Grid.Lines() {
			mid := (gl.ExtentMin + gl.ExtentMax) / 2
			x, y := mid, gl.Coordinate
			if gl.Orientation == plan.Vertical {
				x, y = gl.Coordinate, mid
			}
			data = append(data, opts.ScatterData{Value: []interface{}{x, y, gl.Confidence}})
			if gl.NeedsReview {
				needsReview++
			}
		}
	}
	for _, w := range f.Walls {
		if len(w.Centerline) < 2 {
			continue
		}
		a, b := w.Centerline[0], w.Centerline[len(w.Centerline)-1]
		data = append(data, opts.ScatterData{Value: []interface{}{(a.X + b.X) / 2, (a.Y + b.Y) / 2, w.Confidence}})
		if w.NeedsReview {
			needsReview++
		}
	}
	for _, c := range f.Columns {
		data = append(data, opts.ScatterData{Value: []interface{}{c.Position.X, c.Position.Y, c.Confidence}})
		if c.NeedsReview {
			needsReview++
		}
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "900px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("Floor %s element confidence", f.Floor),
			Subtitle: fmt.Sprintf("elements=%d needs_review=%d", len(data), needsReview),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "X (mm)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Y (mm)", NameLocation: "middle", NameGap: 30}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        1,
			Dimension:  "2",
			InRange:    &opts.VisualMapInRange{Color: confidenceRamp},
		}),
	)
	scatter.AddSeries("elements", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 8}))
	return scatter
}

// floorConfidenceHistogram buckets element confidences into ten bins.
func floorConfidenceHistogram(f *plan.FloorModel) *charts.Bar {
	var confidences []float64
	if f.Grid != nil {
		for _, gl := range f.Grid.Lines() {
			confidences = append(confidences, gl.Confidence)
		}
	}
	for _, w := range f.Walls {
		confidences = append(confidences, w.Confidence)
	}
	for _, c := range f.Columns {
		confidences = append(confidences, c.Confidence)
	}
	for _, s := range f.Slabs {
		confidences = append(confidences, s.Confidence)
	}

	var bins [10]int
	for _, c := range confidences {
		i := int(c * 10)
		if i > 9 {
			i = 9
		}
		bins[i]++
	}

	labels := make([]string, 10)
	data := make([]opts.BarData, 10)
	for i := range bins {
		labels[i] = fmt.Sprintf("%.1f-%.1f", float64(i)/10, float64(i+1)/10)
		data[i] = opts.BarData{Value: bins[i]}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "900px", Height: "420px"}),
		charts.WithTitleOpts(opts.Title{Title: fmt.Sprintf("Floor %s confidence distribution", f.Floor)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(labels).AddSeries("elements", data)
	return bar
}

// floorStageBar charts produced versus rejected counts per stage.
func floorStageBar(f *plan.FloorModel) *charts.Bar {
	var stages []string
	var produced, rejected []opts.BarData
	for _, sc := range f.Diagnostics.Stages {
		stages = append(stages, sc.Stage)
		produced = append(produced, opts.BarData{Value: sc.Produced})
		rejected = append(rejected, opts.BarData{Value: sc.Rejected})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "900px", Height: "420px"}),
		charts.WithTitleOpts(opts.Title{Title: fmt.Sprintf("Floor %s stage counts", f.Floor)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(stages).
		AddSeries("produced", produced,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"})).
		AddSeries("rejected", rejected)
	return bar
}
