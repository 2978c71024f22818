// Package render turns assessor summary tables into PNG charts and a
// markdown report for the analyst.
package render

import (
	"fmt"
	"image/color"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"go-occurrence-assess/internal/model"
	"go-occurrence-assess/pkg/utils"
)

// palette cycles across period series in scatter charts
var palette = []color.RGBA{
	{R: 31, G: 119, B: 180, A: 255},
	{R: 255, G: 127, B: 14, A: 255},
	{R: 44, G: 160, B: 44, A: 255},
	{R: 214, G: 39, B: 40, A: 255},
	{R: 148, G: 103, B: 189, A: 255},
	{R: 140, G: 86, B: 75, A: 255},
	{R: 227, G: 119, B: 194, A: 255},
	{R: 127, G: 127, B: 127, A: 255},
}

// RenderCharts renders every chart an assessor's table supports into the
// job's output directory. Chart failures are reported per chart, never
// as a pipeline failure.
func RenderCharts(jobID string, table model.SummaryTable, om *utils.OutputManager) []model.ExportResult {
	var results []model.ExportResult

	switch table.Assessor {
	case model.AssessRecordCounts:
		results = append(results, barChart(jobID, table, om, "records", "Records per period", "records"))
	case model.AssessSpeciesCounts:
		results = append(results, barChart(jobID, table, om, "species", "Species per period", "species"))
	case model.AssessTaxonomicRes:
		results = append(results, lineChart(jobID, table, om, "proportion", "Proportion identified to species", "proportion"))
	case model.AssessRarityBias:
		results = append(results, lineChart(jobID, table, om, "r2", "Rarity bias regression fit", "R²"))
	case model.AssessSpatialCover:
		results = append(results, barChart(jobID, table, om, "occupied_cells", "Occupied grid cells per period", "cells"))
		results = append(results, scatterChart(jobID, table, om, "map", "Occupied cells by period", "longitude", "latitude"))
	case model.AssessSpatialBias:
		results = append(results, lineChart(jobID, table, om, "nni", "Nearest-neighbour index per period", "NNI"))
	case model.AssessEnvBias:
		results = append(results, scatterChart(jobID, table, om, "pca", "Sampled vs background environmental space", "PC1", "PC2"))
		results = append(results, barChart(jobID, table, om, "centroid_dist", "Environmental centroid offset per period", "distance"))
	}

	return results
}

// periodSeries extracts the whole-period rows (Group == "") in order
func periodSeries(table model.SummaryTable, metric string) (labels []string, values []float64, present []bool) {
	for _, row := range table.Rows {
		if row.Group != "" {
			continue
		}
		labels = append(labels, row.Period)
		v, ok := row.Metrics[metric]
		values = append(values, v)
		present = append(present, ok)
	}
	return labels, values, present
}

func barChart(jobID string, table model.SummaryTable, om *utils.OutputManager, metric, title, yLabel string) model.ExportResult {
	labels, values, _ := periodSeries(table, metric)
	path, err := om.ChartPath(jobID, table.Assessor, metric)
	if err != nil {
		return chartResult(path, 0, err)
	}

	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = yLabel

	bars, err := plotter.NewBarChart(plotter.Values(values), vg.Points(24))
	if err != nil {
		return chartResult(path, 0, err)
	}
	bars.Color = palette[0]
	bars.LineStyle.Width = 0
	p.Add(bars)
	p.NominalX(labels...)

	if err := p.Save(7*vg.Inch, 4*vg.Inch, path); err != nil {
		return chartResult(path, 0, err)
	}
	return chartResult(path, len(labels), nil)
}

func lineChart(jobID string, table model.SummaryTable, om *utils.OutputManager, metric, title, yLabel string) model.ExportResult {
	labels, values, present := periodSeries(table, metric)
	path, err := om.ChartPath(jobID, table.Assessor, metric)
	if err != nil {
		return chartResult(path, 0, err)
	}

	// periods without the metric (e.g. skipped regressions) leave gaps
	var pts plotter.XYs
	for i, v := range values {
		if present[i] {
			pts = append(pts, plotter.XY{X: float64(i), Y: v})
		}
	}

	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = yLabel

	line, scatter, err := plotter.NewLinePoints(pts)
	if err != nil {
		return chartResult(path, 0, err)
	}
	line.Color = palette[0]
	scatter.GlyphStyle.Color = palette[0]
	scatter.GlyphStyle.Radius = vg.Points(3)
	p.Add(line, scatter)
	p.NominalX(labels...)

	if err := p.Save(7*vg.Inch, 4*vg.Inch, path); err != nil {
		return chartResult(path, 0, err)
	}
	return chartResult(path, len(pts), nil)
}

func scatterChart(jobID string, table model.SummaryTable, om *utils.OutputManager, suffix, title, xLabel, yLabel string) model.ExportResult {
	path, err := om.ChartPath(jobID, table.Assessor, suffix)
	if err != nil {
		return chartResult(path, 0, err)
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel

	bySeries := make(map[string]plotter.XYs)
	var order []string
	for _, pt := range table.Points {
		if _, ok := bySeries[pt.Series]; !ok {
			order = append(order, pt.Series)
		}
		bySeries[pt.Series] = append(bySeries[pt.Series], plotter.XY{X: pt.X, Y: pt.Y})
	}

	total := 0
	for i, series := range order {
		s, err := plotter.NewScatter(bySeries[series])
		if err != nil {
			return chartResult(path, 0, err)
		}
		c := palette[i%len(palette)]
		if series == "background" {
			c = color.RGBA{R: 200, G: 200, B: 200, A: 255}
		}
		s.GlyphStyle.Color = c
		s.GlyphStyle.Radius = vg.Points(2)
		s.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(s)
		p.Legend.Add(series, s)
		total += len(bySeries[series])
	}
	p.Legend.Top = true

	if err := p.Save(7*vg.Inch, 5*vg.Inch, path); err != nil {
		return chartResult(path, 0, err)
	}
	return chartResult(path, total, nil)
}

func chartResult(path string, count int, err error) model.ExportResult {
	result := model.ExportResult{
		Type:        "chart",
		Path:        path,
		RecordCount: count,
		Success:     err == nil,
		ExportedAt:  time.Now(),
	}
	if err != nil {
		result.Error = fmt.Sprintf("chart render failed: %v", err)
	}
	return result
}
