// Package chart builds render-ready chart specs out of presets and reshaped
// series. Specs are plain data; drawing happens in adapters/render.
package chart

import (
	"fmt"

	"peajes/domain/preset"
	"peajes/domain/series"
)

// Kind selects the chart type.
type Kind string

const (
	Line Kind = "line"
	Bar  Kind = "bar"
	Pie  Kind = "pie"
)

// DefaultYLabel is used when a preset carries no axis label.
const DefaultYLabel = "Valor"

var defaultColors = []string{
	"#4F46E5", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6",
	"#06B6D4", "#EC4899", "#84CC16", "#F97316", "#6366F1",
}

// Dataset is one named series; nil values are gaps.
type Dataset struct {
	Label  string     `json:"label"`
	Values []*float64 `json:"data"`
}

// Spec is everything a renderer needs to draw one chart.
type Spec struct {
	Kind        Kind      `json:"type"`
	Title       string    `json:"title"`
	Labels      []string  `json:"labels"`
	Datasets    []Dataset `json:"datasets"`
	XLabel      string    `json:"xLabel,omitempty"`
	YLabel      string    `json:"yLabel,omitempty"`
	BeginAtZero bool      `json:"beginAtZero"`
	Colors      []string  `json:"colors,omitempty"`
}

// FromPreset builds a bar or pie spec straight from a preset.
func FromPreset(kind Kind, p *preset.Chart, xLabel string) Spec {
	values := make([]*float64, len(p.Data))
	for i, v := range p.Data {
		values[i] = v.Ptr()
	}
	spec := Spec{
		Kind:     kind,
		Title:    p.Title,
		Labels:   p.Labels,
		Datasets: []Dataset{{Label: p.Title, Values: values}},
	}
	if kind != Pie {
		spec.XLabel = xLabel
		spec.YLabel = yLabelOr(p.YLabel)
		spec.BeginAtZero = true
		spec.Colors = assignColors(1)
	} else {
		spec.Colors = assignColors(len(p.Labels))
	}
	return spec
}

// MonthlyLine builds the year-filtered line chart: months on the x axis and
// one dataset labelled "<title> (<year>)".
func MonthlyLine(p *preset.Chart, res *series.Result, year string) (Spec, error) {
	row, err := res.Series(year)
	if err != nil {
		return Spec{}, err
	}
	return Spec{
		Kind:        Line,
		Title:       p.Title,
		Labels:      res.Months,
		Datasets:    []Dataset{{Label: fmt.Sprintf("%s (%s)", p.Title, year), Values: row}},
		XLabel:      "Mes",
		YLabel:      yLabelOr(p.YLabel),
		BeginAtZero: true,
		Colors:      assignColors(1),
	}, nil
}

func yLabelOr(label string) string {
	if label == "" {
		return DefaultYLabel
	}
	return label
}

func assignColors(count int) []string {
	colors := make([]string, count)
	for i := 0; i < count; i++ {
		colors[i] = defaultColors[i%len(defaultColors)]
	}
	return colors
}
