// Package series reshapes a flat "Mon Year" labelled series into one
// twelve-slot row per year.
package series

import (
	"strings"

	"peajes/domain/preset"
	"peajes/internal/errors"
)

// MonthsPerYear is the fixed width of every YearMatrix row.
const MonthsPerYear = 12

// Point is one month of one year; Value is nil when missing.
type Point struct {
	Month int      `json:"month"`
	Year  string   `json:"year"`
	Value *float64 `json:"value"`
}

// YearMatrix maps a year label to one nullable value per calendar month.
type YearMatrix map[string][]*float64

// Result is a reshaped series plus the calendar it was built against.
type Result struct {
	ByYear      YearMatrix `json:"by_year"`
	Years       []string   `json:"years"`
	Months      []string   `json:"months"`
	DefaultYear string     `json:"default_year"`
}

// Points splits labels like "Ene 2021" into month index and year, pairing
// each with its value. Labels that are not two space-separated tokens or
// whose month is not in months are skipped. Values missing from the tail of
// a short values slice are null.
func Points(labels []string, values []preset.Value, months []string) []Point {
	index := make(map[string]int, len(months))
	for i, m := range months {
		if _, dup := index[m]; !dup {
			index[m] = i
		}
	}

	points := make([]Point, 0, len(labels))
	for i, label := range labels {
		parts := strings.Split(label, " ")
		if len(parts) != 2 {
			continue
		}
		month, ok := index[parts[0]]
		if !ok {
			continue
		}
		var v preset.Value
		if i < len(values) {
			v = values[i]
		}
		points = append(points, Point{Month: month, Year: parts[1], Value: v.Ptr()})
	}
	return points
}

// Reshape builds the YearMatrix for a labelled series. Every year in years
// is present in the result even when the input has no data for it; years
// found in the labels but outside the range are kept as well. A later label
// for the same month overwrites an earlier one.
func Reshape(labels []string, values []preset.Value, months, years []string) *Result {
	matrix := make(YearMatrix)
	for _, p := range Points(labels, values, months) {
		row, ok := matrix[p.Year]
		if !ok {
			row = make([]*float64, MonthsPerYear)
			matrix[p.Year] = row
		}
		if p.Month < MonthsPerYear {
			row[p.Month] = p.Value
		}
	}
	for _, y := range years {
		if _, ok := matrix[y]; !ok {
			matrix[y] = make([]*float64, MonthsPerYear)
		}
	}

	return &Result{
		ByYear:      matrix,
		Years:       years,
		Months:      months,
		DefaultYear: DefaultYear(matrix, years),
	}
}

// DefaultYear scans years from the last to the first and returns the first
// with at least one value. With no data anywhere it returns years[0].
func DefaultYear(matrix YearMatrix, years []string) string {
	if len(years) == 0 {
		return ""
	}
	for i := len(years) - 1; i >= 0; i-- {
		if HasData(matrix[years[i]]) {
			return years[i]
		}
	}
	return years[0]
}

// HasData reports whether a row has any non-null slot.
func HasData(row []*float64) bool {
	for _, v := range row {
		if v != nil {
			return true
		}
	}
	return false
}

// Series returns the row for year.
func (r *Result) Series(year string) ([]*float64, error) {
	row, ok := r.ByYear[year]
	if !ok {
		return nil, errors.NotFound("year " + year)
	}
	return row, nil
}

// HasData reports whether year has at least one value.
func (r *Result) HasData(year string) bool {
	return HasData(r.ByYear[year])
}
