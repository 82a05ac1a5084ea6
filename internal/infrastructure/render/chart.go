// Package render draws the match chart and the downloadable PDF report.
package render

import (
	"bytes"
	"fmt"
	"math"

	"github.com/skillmatch/backend/internal/domain"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	ChartWidth  = 600
	ChartHeight = 400

	ChartTitle  = "Skill Match Analysis"
	ChartYLabel = "Number of Skills"

	MatchedColor = "#28a745"
	MissingColor = "#dc3545"
)

// ChartRenderer draws the matched/missing bar chart as a PNG
type ChartRenderer struct{}

// NewChartRenderer creates a chart renderer
func NewChartRenderer() *ChartRenderer {
	return &ChartRenderer{}
}

// RenderChart implements domain.ChartRenderer
func (c *ChartRenderer) RenderChart(result domain.MatchResult) ([]byte, error) {
	matched := float64(result.MatchedCount())
	missing := float64(result.MissingCount())

	graph := chart.BarChart{
		Title: ChartTitle,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 50},
		},
		Width:    ChartWidth,
		Height:   ChartHeight,
		BarWidth: 120,
		YAxis: chart.YAxis{
			Name: ChartYLabel,
			// an explicit range keeps the chart drawable when both counts are zero
			Range: &chart.ContinuousRange{
				Min: 0,
				Max: math.Max(math.Max(matched, missing), 1) * 1.15,
			},
			ValueFormatter: chart.IntValueFormatter,
		},
		Bars: []chart.Value{
			bar(fmt.Sprintf("Matching Skills (%d)", result.MatchedCount()), matched, MatchedColor),
			bar(fmt.Sprintf("Missing Skills (%d)", result.MissingCount()), missing, MissingColor),
		},
		Elements: []chart.Renderable{yAxisLabel(ChartYLabel)},
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}
	return buf.Bytes(), nil
}

func bar(label string, value float64, hex string) chart.Value {
	color := drawing.ColorFromHex(hex)
	return chart.Value{
		Label: label,
		Value: value,
		Style: chart.Style{
			FillColor:   color,
			StrokeColor: color,
			StrokeWidth: 1,
		},
	}
}

// yAxisLabel draws label rotated along the left edge
func yAxisLabel(label string) chart.Renderable {
	return func(r chart.Renderer, canvasBox chart.Box, defaults chart.Style) {
		style := chart.Style{
			Font:                defaults.Font,
			FontSize:            11,
			FontColor:           drawing.ColorBlack,
			TextRotationDegrees: 270,
		}
		box := chart.Draw.MeasureText(r, label, style)
		y := canvasBox.Top + (canvasBox.Height()+box.Width())/2
		chart.Draw.Text(r, label, 20, y, style)
	}
}
