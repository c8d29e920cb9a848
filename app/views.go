package app

import (
	"math"
	"strconv"
	"strings"

	"peajes/domain/aggregate"
	"peajes/domain/chart"
	"peajes/domain/preset"
	"peajes/domain/series"
	"peajes/domain/table"
	"peajes/internal/errors"
	"peajes/internal/profiling"
)

// NotAvailable is shown wherever a metric could not be computed.
const NotAvailable = "N/D"

const (
	trafficSampleSize = 10
	recentTestRows    = 15
)

// Column is a display column: the source key and its header.
type Column struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// Grid is a formatted table ready for display.
type Grid struct {
	Columns []Column   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// EDAView is the exploratory analysis section: the three preset charts with
// chart1 split per year.
type EDAView struct {
	GeneratedFrom string                 `json:"generated_from,omitempty"`
	Years         []string               `json:"years"`
	Months        []string               `json:"months"`
	DefaultYear   string                 `json:"default_year"`
	SelectedYear  string                 `json:"selected_year"`
	ByYear        series.YearMatrix      `json:"by_year,omitempty"`
	Presets       *preset.Set            `json:"presets"`
	Charts        map[string]*chart.Spec `json:"charts"`
}

// ComputeEDA reshapes chart1 and builds the specs for the three slots. An
// empty year selects the default year; a year that is not in the matrix is
// invalid input.
func ComputeEDA(set *preset.Set, months, years []string, year string) (*EDAView, error) {
	view := &EDAView{
		GeneratedFrom: set.GeneratedFrom,
		Months:        months,
		Years:         years,
		Presets:       set,
		Charts:        make(map[string]*chart.Spec, 3),
	}

	if set.Chart1 != nil {
		res := series.Reshape(set.Chart1.Labels, set.Chart1.Data, months, years)
		view.ByYear = res.ByYear
		view.Years = res.Years
		view.DefaultYear = res.DefaultYear
		if year == "" {
			year = res.DefaultYear
		}
		spec, err := chart.MonthlyLine(set.Chart1, res, year)
		if err != nil {
			return nil, errors.InvalidInput("año no disponible: " + year)
		}
		view.SelectedYear = year
		view.Charts["chart1"] = &spec
	}
	if set.Chart2 != nil {
		spec := chart.FromPreset(chart.Bar, set.Chart2, "Peaje")
		view.Charts["chart2"] = &spec
	}
	if set.Chart3 != nil {
		spec := chart.FromPreset(chart.Pie, set.Chart3, "")
		view.Charts["chart3"] = &spec
	}
	return view, nil
}

// BestModel is the row with the lowest test RMSE.
type BestModel struct {
	Modelo   string  `json:"modelo"`
	Peaje    string  `json:"peaje"`
	Target   string  `json:"target"`
	RMSETest float64 `json:"rmse_test"`
}

// ModelsView summarizes the trained models metrics table.
type ModelsView struct {
	Resource string                  `json:"resource"`
	Models   int                     `json:"models"`
	Stations int                     `json:"stations"`
	Targets  int                     `json:"targets"`
	RMSE     aggregate.MetricSummary `json:"rmse_test"`
	SMAPE    aggregate.MetricSummary `json:"smape_test"`
	Best     *BestModel              `json:"best,omitempty"`
	Table    Grid                    `json:"table"`
	Markdown string                  `json:"markdown"`
	HTML     string                  `json:"html"`
}

var modelColumns = []Column{
	{Key: "peaje", Label: "Peaje"},
	{Key: "target", Label: "Target"},
	{Key: "rmse_test", Label: "RMSE test"},
	{Key: "mae_test", Label: "MAE test"},
	{Key: "smape_test", Label: "sMAPE test (%)"},
	{Key: "mase_test", Label: "MASE test"},
}

var modelMetricKeys = map[string]bool{"rmse_test": true, "mae_test": true, "smape_test": true, "mase_test": true}

// ComputeModelsSummary builds the models section from the metrics table.
func ComputeModelsSummary(t *table.Table, resource string) (*ModelsView, error) {
	if t.Len() == 0 {
		return nil, errors.EmptyDataset(resource)
	}

	view := &ModelsView{
		Resource: resource,
		Models:   t.Len(),
		Stations: aggregate.CountDistinct(t, "peaje"),
		Targets:  aggregate.CountDistinct(t, "target"),
		RMSE:     aggregate.MinMaxMean(aggregate.NumericColumn(t, "rmse_test")),
		SMAPE:    aggregate.MinMaxMean(aggregate.NumericColumn(t, "smape_test")),
	}
	if row, ok := aggregate.BestByMetric(t, "rmse_test", aggregate.Lower); ok {
		v, _ := aggregate.ParseNumber(row["rmse_test"])
		view.Best = &BestModel{Modelo: row["modelo"], Peaje: row["peaje"], Target: row["target"], RMSETest: v}
	}

	view.Table = Grid{Columns: modelColumns, Rows: make([][]string, 0, t.Len())}
	for _, row := range t.Rows {
		cells := make([]string, len(modelColumns))
		for i, c := range modelColumns {
			if modelMetricKeys[c.Key] {
				cells[i] = formatMetric(row[c.Key], 2)
			} else {
				cells[i] = row[c.Key]
			}
		}
		view.Table.Rows = append(view.Table.Rows, cells)
	}

	view.Markdown = modelsMarkdown(view)
	view.HTML = toHTML(view.Markdown)
	return view, nil
}

// TrafficView summarizes the cleaned daily traffic table.
type TrafficView struct {
	Resource  string                `json:"resource"`
	Records   int                   `json:"records"`
	Stations  int                   `json:"stations"`
	DayTypes  []string              `json:"day_types"`
	DateFrom  string                `json:"date_from"`
	DateTo    string                `json:"date_to"`
	Sample    *table.Table          `json:"sample"`
	ByDayType []aggregate.GroupMean `json:"by_day_type"`
	ByStation []aggregate.GroupMean `json:"by_station"`
	// Distribution profiles the daily total; nil when no total parses.
	Distribution *profiling.Profile `json:"distribution,omitempty"`
	Markdown     string             `json:"markdown"`
	HTML         string             `json:"html"`
}

var trafficColumns = []string{"fecha", "peaje", "sentido_1", "sentido_2", "total", "tipo_dia"}

// ComputeTrafficSummary builds the traffic section.
func ComputeTrafficSummary(t *table.Table, resource string) (*TrafficView, error) {
	if t.Len() == 0 {
		return nil, errors.EmptyDataset(resource)
	}

	view := &TrafficView{
		Resource:  resource,
		Records:   t.Len(),
		Stations:  aggregate.CountDistinct(t, "peaje"),
		DayTypes:  t.Distinct("tipo_dia"),
		DateFrom:  NotAvailable,
		DateTo:    NotAvailable,
		ByDayType: aggregate.GroupAverage(t, "tipo_dia", "total"),
		ByStation: aggregate.GroupAverage(t, "peaje", "total"),
	}
	if lo, hi, ok := aggregate.StringRange(t.Column("fecha")); ok {
		view.DateFrom, view.DateTo = lo, hi
	}
	if totals := aggregate.NumericColumn(t, "total"); len(totals) > 0 {
		if p, err := profiling.Analyze(totals); err == nil {
			view.Distribution = &p
		}
	}

	head := t.Head(trafficSampleSize)
	sample := &table.Table{Header: trafficColumns, Rows: make([]table.Row, 0, head.Len())}
	for _, row := range head.Rows {
		r := make(table.Row, len(trafficColumns))
		for _, c := range trafficColumns {
			r[c] = row[c]
		}
		sample.Rows = append(sample.Rows, r)
	}
	view.Sample = sample

	view.Markdown = trafficMarkdown(view)
	view.HTML = toHTML(view.Markdown)
	return view, nil
}

// Metric is one formatted metric value.
type Metric struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// StationView is the per-station model section.
type StationView struct {
	Resource   string   `json:"resource"`
	Peaje      string   `json:"peaje"`
	Modelo     string   `json:"modelo"`
	Target     string   `json:"target"`
	Validation []Metric `json:"validation"`
	Test       []Metric `json:"test"`
	Recent     Grid     `json:"recent"`
	Markdown   string   `json:"markdown"`
	HTML       string   `json:"html"`
}

var (
	validationMetrics = []Column{
		{Key: "rmse_val", Label: "RMSE val"},
		{Key: "mae_val", Label: "MAE val"},
		{Key: "smape_val", Label: "sMAPE val"},
		{Key: "mase_val", Label: "MASE val"},
	}
	testMetrics = []Column{
		{Key: "rmse_test", Label: "RMSE test"},
		{Key: "mae_test", Label: "MAE test"},
		{Key: "smape_test", Label: "sMAPE test"},
		{Key: "mase_test", Label: "MASE test"},
	}
	recentColumns = []Column{
		{Key: "fecha", Label: "fecha"},
		{Key: "y_real", Label: "y_real"},
		{Key: "y_pred", Label: "y_pred"},
		{Key: "set", Label: "set"},
	}
)

// ComputeStationModel builds the station section. Identity and metrics come
// from the first row; the table shows the last test predictions by date.
func ComputeStationModel(t *table.Table, station, resource string) (*StationView, error) {
	if t.Len() == 0 {
		return nil, errors.EmptyDataset(resource)
	}

	first := t.Rows[0]
	view := &StationView{
		Resource: resource,
		Peaje:    orDefault(first["peaje"], station),
		Modelo:   orDefault(first["modelo"], NotAvailable),
		Target:   orDefault(first["target"], NotAvailable),
	}
	for _, c := range validationMetrics {
		view.Validation = append(view.Validation, Metric{Key: c.Key, Label: c.Label, Value: formatMetric(first[c.Key], 2)})
	}
	for _, c := range testMetrics {
		view.Test = append(view.Test, Metric{Key: c.Key, Label: c.Label, Value: formatMetric(first[c.Key], 2)})
	}

	recent := t.Filter(func(r table.Row) bool {
		return strings.ToLower(r["set"]) == "test"
	}).SortedBy("fecha").Tail(recentTestRows)

	view.Recent = Grid{Columns: recentColumns, Rows: make([][]string, 0, recent.Len())}
	for _, row := range recent.Rows {
		view.Recent.Rows = append(view.Recent.Rows, []string{
			row["fecha"],
			roundCell(row["y_real"]),
			roundCell(row["y_pred"]),
			row["set"],
		})
	}

	view.Markdown = stationMarkdown(view)
	view.HTML = toHTML(view.Markdown)
	return view, nil
}

func formatMetric(raw string, decimals int) string {
	v, ok := aggregate.ParseNumber(raw)
	if !ok {
		return NotAvailable
	}
	return strconv.FormatFloat(v, 'f', decimals, 64)
}

func formatSummary(s aggregate.MetricSummary, pick func(aggregate.MetricSummary) float64, decimals int) string {
	if !s.Available {
		return NotAvailable
	}
	return strconv.FormatFloat(pick(s), 'f', decimals, 64)
}

// roundCell rounds half away from zero; non-numeric cells pass through.
func roundCell(raw string) string {
	v, ok := aggregate.ParseNumber(raw)
	if !ok {
		return raw
	}
	return strconv.FormatFloat(math.Round(v), 'f', 0, 64)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
