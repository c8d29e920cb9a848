// Package aggregate holds the reductions the dashboard runs over parsed
// tables: numeric projections, min/max/mean summaries, best-row selection
// and per-category means.
package aggregate

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"peajes/domain/table"
)

// ParseNumber parses a cell as a float. Empty, non-numeric, NaN and
// infinite values are rejected.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// NumericColumn returns the parseable numbers of a column in row order.
// Non-numeric cells are dropped, not kept as placeholders.
func NumericColumn(t *table.Table, key string) []float64 {
	values := make([]float64, 0, t.Len())
	for _, row := range t.Rows {
		if v, ok := ParseNumber(row[key]); ok {
			values = append(values, v)
		}
	}
	return values
}

// MetricSummary is min/max/mean over a numeric sequence. Available is false
// when the sequence was empty; the numeric fields are then meaningless.
type MetricSummary struct {
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
	Mean      float64 `json:"mean"`
	Count     int     `json:"count"`
	Available bool    `json:"available"`
}

// MinMaxMean summarizes values. NaN entries are ignored.
func MinMaxMean(values []float64) MetricSummary {
	clean := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			clean = append(clean, v)
		}
	}
	if len(clean) == 0 {
		return MetricSummary{}
	}

	minV, err := stats.Min(clean)
	if err != nil {
		return MetricSummary{}
	}
	maxV, err := stats.Max(clean)
	if err != nil {
		return MetricSummary{}
	}
	mean, err := stats.Mean(clean)
	if err != nil {
		return MetricSummary{}
	}
	return MetricSummary{Min: minV, Max: maxV, Mean: mean, Count: len(clean), Available: true}
}

// Better reports whether candidate beats current.
type Better func(candidate, current float64) bool

// Lower prefers smaller values, e.g. for error metrics.
func Lower(candidate, current float64) bool { return candidate < current }

// Higher prefers larger values.
func Higher(candidate, current float64) bool { return candidate > current }

// BestByMetric returns the row whose metric wins under better. Rows whose
// metric is not numeric are skipped; on ties the first row seen is kept.
func BestByMetric(t *table.Table, key string, better Better) (table.Row, bool) {
	var (
		best      table.Row
		bestValue float64
		found     bool
	)
	for _, row := range t.Rows {
		v, ok := ParseNumber(row[key])
		if !ok {
			continue
		}
		if !found || better(v, bestValue) {
			best, bestValue, found = row, v, true
		}
	}
	return best, found
}

// GroupMean is the mean of one category.
type GroupMean struct {
	Group string  `json:"group"`
	Mean  float64 `json:"mean"`
	Count int     `json:"count"`
}

// GroupAverage partitions rows by groupKey and averages the numeric values
// of valueKey in each partition. Partitions come out in first-seen order.
// A partition without a single numeric value is omitted.
func GroupAverage(t *table.Table, groupKey, valueKey string) []GroupMean {
	order, values := partition(t, groupKey, valueKey)
	out := make([]GroupMean, 0, len(order))
	for _, g := range order {
		vs := values[g]
		if len(vs) == 0 {
			continue
		}
		out = append(out, GroupMean{Group: g, Mean: stat.Mean(vs, nil), Count: len(vs)})
	}
	return out
}

// GroupTotal is the sum of one category.
type GroupTotal struct {
	Group string  `json:"group"`
	Total float64 `json:"total"`
}

// GroupSum partitions like GroupAverage and sums instead. Partitions without
// numeric values total zero and are kept.
func GroupSum(t *table.Table, groupKey, valueKey string) []GroupTotal {
	order, values := partition(t, groupKey, valueKey)
	out := make([]GroupTotal, 0, len(order))
	for _, g := range order {
		out = append(out, GroupTotal{Group: g, Total: floats.Sum(values[g])})
	}
	return out
}

// TopN returns the n largest totals, descending. Equal totals keep input
// order.
func TopN(groups []GroupTotal, n int) []GroupTotal {
	sorted := make([]GroupTotal, len(groups))
	copy(sorted, groups)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Total > sorted[j].Total
	})
	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

func partition(t *table.Table, groupKey, valueKey string) ([]string, map[string][]float64) {
	var order []string
	values := make(map[string][]float64)
	for _, row := range t.Rows {
		g := row[groupKey]
		if _, seen := values[g]; !seen {
			order = append(order, g)
			values[g] = []float64{}
		}
		if v, ok := ParseNumber(row[valueKey]); ok {
			values[g] = append(values[g], v)
		}
	}
	return order, values
}

// CountDistinct counts distinct values of a column.
func CountDistinct(t *table.Table, key string) int {
	return len(t.Distinct(key))
}

// StringRange returns the lexicographic min and max of the non-empty values.
// ISO dates order correctly under this comparison.
func StringRange(values []string) (lo, hi string, ok bool) {
	for _, v := range values {
		if v == "" {
			continue
		}
		if !ok {
			lo, hi, ok = v, v, true
			continue
		}
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi, ok
}
