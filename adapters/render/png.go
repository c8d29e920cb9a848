// Package render draws chart specs as PNG images with go-chart. Each chart
// slot owns its last rendered image; there is no package-level chart state.
package render

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	domainchart "peajes/domain/chart"
	"peajes/internal/errors"
	"peajes/ports"
)

const (
	DefaultWidth  = 1024
	DefaultHeight = 480

	barWidth   = 40
	barSpacing = 24
)

// PNGRenderer implements ports.ChartRenderer.
type PNGRenderer struct {
	Width  int
	Height int
}

var _ ports.ChartRenderer = (*PNGRenderer)(nil)

// NewPNGRenderer creates a renderer with the default canvas size.
func NewPNGRenderer() *PNGRenderer {
	return &PNGRenderer{Width: DefaultWidth, Height: DefaultHeight}
}

func (r *PNGRenderer) ContentType() string {
	return "image/png"
}

// Render draws spec and returns the encoded PNG.
func (r *PNGRenderer) Render(spec domainchart.Spec) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch spec.Kind {
	case domainchart.Line:
		err = r.line(spec, &buf)
	case domainchart.Bar:
		err = r.bar(spec, &buf)
	case domainchart.Pie:
		err = r.pie(spec, &buf)
	default:
		return nil, errors.InvalidInput(fmt.Sprintf("unsupported chart type %q", spec.Kind))
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (r *PNGRenderer) line(spec domainchart.Spec, buf *bytes.Buffer) error {
	var series []chart.Series
	lo, hi := math.Inf(1), math.Inf(-1)
	for i, ds := range spec.Datasets {
		col := colorAt(spec.Colors, i)
		// consecutive non-null points form one segment; nulls are gaps
		var xs, ys []float64
		flush := func() {
			if len(xs) == 0 {
				return
			}
			series = append(series, chart.ContinuousSeries{
				Name:    ds.Label,
				XValues: xs,
				YValues: ys,
				Style:   chart.Style{StrokeColor: col, StrokeWidth: 2, DotColor: col, DotWidth: 3},
			})
			xs, ys = nil, nil
		}
		for x, v := range ds.Values {
			if v == nil {
				flush()
				continue
			}
			xs = append(xs, float64(x))
			ys = append(ys, *v)
			lo, hi = math.Min(lo, *v), math.Max(hi, *v)
		}
		flush()
	}
	if len(series) == 0 {
		return errors.EmptyDataset(fmt.Sprintf("chart %q", spec.Title))
	}

	ticks := make([]chart.Tick, len(spec.Labels))
	for i, label := range spec.Labels {
		ticks[i] = chart.Tick{Value: float64(i), Label: label}
	}
	xMax := math.Max(float64(len(spec.Labels)-1), 1)

	title := spec.Title
	if len(spec.Datasets) == 1 && spec.Datasets[0].Label != "" {
		title = spec.Datasets[0].Label
	}
	ch := chart.Chart{
		Title:      title,
		Width:      r.Width,
		Height:     r.Height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 24, Bottom: 16}},
		XAxis:      chart.XAxis{Name: spec.XLabel, Ticks: ticks, Range: &chart.ContinuousRange{Min: 0, Max: xMax}},
		YAxis:      chart.YAxis{Name: spec.YLabel, Range: valueRange(lo, hi, spec.BeginAtZero)},
		Series:     series,
	}
	return ch.Render(chart.PNG, buf)
}

func (r *PNGRenderer) bar(spec domainchart.Spec, buf *bytes.Buffer) error {
	bars := make([]chart.Value, 0, len(spec.Labels))
	lo, hi := math.Inf(1), math.Inf(-1)
	if len(spec.Datasets) > 0 {
		col := colorAt(spec.Colors, 0)
		for i, v := range spec.Datasets[0].Values {
			if v == nil || i >= len(spec.Labels) {
				continue
			}
			bars = append(bars, chart.Value{
				Label: spec.Labels[i],
				Value: *v,
				Style: chart.Style{FillColor: col, StrokeColor: col, StrokeWidth: 1},
			})
			lo, hi = math.Min(lo, *v), math.Max(hi, *v)
		}
	}
	if len(bars) == 0 {
		return errors.EmptyDataset(fmt.Sprintf("chart %q", spec.Title))
	}

	width := r.Width
	if need := len(bars)*(barWidth+barSpacing) + 160; need > width {
		width = need
	}
	bc := chart.BarChart{
		Title:      spec.Title,
		Width:      width,
		Height:     r.Height,
		BarWidth:   barWidth,
		BarSpacing: barSpacing,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 24, Bottom: 16}},
		XAxis:      chart.Style{TextRotationDegrees: 30},
		YAxis:      chart.YAxis{Name: spec.YLabel, Range: valueRange(lo, hi, spec.BeginAtZero)},
		Bars:       bars,
	}
	return bc.Render(chart.PNG, buf)
}

func (r *PNGRenderer) pie(spec domainchart.Spec, buf *bytes.Buffer) error {
	var values []chart.Value
	if len(spec.Datasets) > 0 {
		for i, v := range spec.Datasets[0].Values {
			// slices must be positive to have an angle
			if v == nil || *v <= 0 || i >= len(spec.Labels) {
				continue
			}
			col := colorAt(spec.Colors, i)
			values = append(values, chart.Value{
				Label: spec.Labels[i],
				Value: *v,
				Style: chart.Style{FillColor: col, StrokeColor: drawing.ColorWhite, StrokeWidth: 1},
			})
		}
	}
	if len(values) == 0 {
		return errors.EmptyDataset(fmt.Sprintf("chart %q", spec.Title))
	}

	pc := chart.PieChart{
		Title:  spec.Title,
		Width:  r.Height,
		Height: r.Height,
		Values: values,
	}
	return pc.Render(chart.PNG, buf)
}

func valueRange(lo, hi float64, beginAtZero bool) *chart.ContinuousRange {
	if beginAtZero && lo > 0 {
		lo = 0
	}
	if hi == lo {
		hi = lo + 1
	}
	return &chart.ContinuousRange{Min: lo, Max: hi + (hi-lo)*0.05}
}

func colorAt(colors []string, i int) drawing.Color {
	if len(colors) == 0 {
		return chart.GetDefaultColor(i)
	}
	return drawing.ColorFromHex(strings.TrimPrefix(colors[i%len(colors)], "#"))
}
