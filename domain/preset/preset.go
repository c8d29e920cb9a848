package preset

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"peajes/internal/errors"
)

// Value is a nullable chart datum. Presets may carry numbers, numeric
// strings, other strings or null; anything that is not a finite number
// decodes as null.
type Value struct {
	Number float64
	Valid  bool
}

// Num returns a valid Value.
func Num(v float64) Value { return Value{Number: v, Valid: true} }

// Null returns an empty Value.
func Null() Value { return Value{} }

// Ptr returns the value as a *float64, nil when null.
func (v Value) Ptr() *float64 {
	if !v.Valid {
		return nil
	}
	n := v.Number
	return &n
}

// MarshalJSON writes the number or null.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(v.Number)
}

// Chart is one precomputed chart preset.
type Chart struct {
	Title  string   `json:"title"`
	Labels []string `json:"labels"`
	Data   []Value  `json:"data"`
	YLabel string   `json:"yLabel,omitempty"`
}

// Set is the content of the chart summary resource.
type Set struct {
	GeneratedFrom string `json:"generated_from,omitempty"`
	Chart1        *Chart `json:"chart1,omitempty"`
	Chart2        *Chart `json:"chart2,omitempty"`
	Chart3        *Chart `json:"chart3,omitempty"`

	// Warnings lists presets whose data had to be aligned to their labels.
	Warnings []string `json:"-"`
}

// Charts returns the presets present, keyed by slot name.
func (s *Set) Charts() map[string]*Chart {
	out := make(map[string]*Chart, 3)
	if s.Chart1 != nil {
		out["chart1"] = s.Chart1
	}
	if s.Chart2 != nil {
		out["chart2"] = s.Chart2
	}
	if s.Chart3 != nil {
		out["chart3"] = s.Chart3
	}
	return out
}

// Decode parses a chart summary document.
func Decode(raw []byte) (*Set, error) {
	if !gjson.ValidBytes(raw) {
		return nil, errors.InvalidInput("chart presets are not valid JSON")
	}
	doc := gjson.ParseBytes(raw)
	if !doc.IsObject() {
		return nil, errors.InvalidInput("chart presets must be a JSON object")
	}

	set := &Set{GeneratedFrom: doc.Get("generated_from").String()}
	for _, slot := range []struct {
		name string
		dst  **Chart
	}{
		{"chart1", &set.Chart1},
		{"chart2", &set.Chart2},
		{"chart3", &set.Chart3},
	} {
		chart, err := decodeChart(doc.Get(slot.name))
		if err != nil {
			return nil, errors.Wrap(err, slot.name)
		}
		if chart != nil {
			if w := chart.align(); w != "" {
				set.Warnings = append(set.Warnings, slot.name+": "+w)
			}
		}
		*slot.dst = chart
	}
	return set, nil
}

// align makes Data as long as Labels: missing values become null and values
// without a label are dropped. It describes the change, or returns "".
func (c *Chart) align() string {
	labels, values := len(c.Labels), len(c.Data)
	switch {
	case values < labels:
		for len(c.Data) < labels {
			c.Data = append(c.Data, Null())
		}
		return fmt.Sprintf("%d labels but %d values, padded with null", labels, values)
	case values > labels:
		c.Data = c.Data[:labels]
		return fmt.Sprintf("%d labels but %d values, extra values dropped", labels, values)
	}
	return ""
}

func decodeChart(node gjson.Result) (*Chart, error) {
	if !node.Exists() || node.Type == gjson.Null {
		return nil, nil
	}
	if !node.IsObject() {
		return nil, errors.InvalidInput("preset must be an object")
	}

	chart := &Chart{
		Title:  node.Get("title").String(),
		YLabel: node.Get("yLabel").String(),
		Labels: []string{},
		Data:   []Value{},
	}
	for _, label := range node.Get("labels").Array() {
		chart.Labels = append(chart.Labels, label.String())
	}
	for _, datum := range node.Get("data").Array() {
		chart.Data = append(chart.Data, decodeValue(datum))
	}
	return chart, nil
}

func decodeValue(datum gjson.Result) Value {
	switch datum.Type {
	case gjson.Number:
		return Num(datum.Float())
	case gjson.String:
		return ParseValue(datum.String())
	default:
		return Null()
	}
}

// ParseValue coerces text to a Value; empty or non-numeric text is null.
func ParseValue(s string) Value {
	s = strings.TrimSpace(s)
	if s == "" {
		return Null()
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return Null()
	}
	return Num(f)
}

// Encode writes the set as indented JSON.
func Encode(set *Set) ([]byte, error) {
	return json.MarshalIndent(set, "", "  ")
}
