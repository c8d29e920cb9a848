package excel

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"

	"peajes/domain/aggregate"
	"peajes/domain/preset"
	"peajes/domain/table"
	"peajes/internal"
	"peajes/internal/errors"
)

// Column names of the consolidated workbook.
const (
	TotalColumn   = "TOTAL SENTIDO 1 Y 2 CON EXCENTOS"
	MonthColumn   = "Mes"
	StationColumn = "Peaje"

	// PresetsFile is the name the dashboard loads the presets from.
	PresetsFile = "resumen_graficas.json"

	topStations = 10
)

// ExemptColumns are the exempt vehicle categories, in chart order.
var ExemptColumns = []string{"I", "II", "III", "IV", "V", "VI", "VII"}

var monthNumbers = map[string]int{
	"enero":      1,
	"febrero":    2,
	"marzo":      3,
	"abril":      4,
	"mayo":       5,
	"junio":      6,
	"julio":      7,
	"agosto":     8,
	"septiembre": 9,
	"setiembre":  9,
	"octubre":    10,
	"noviembre":  11,
	"diciembre":  12,
}

var monthAbbrev = []string{"Ene", "Feb", "Mar", "Abr", "May", "Jun", "Jul", "Ago", "Sep", "Oct", "Nov", "Dic"}

var monthYearPattern = regexp.MustCompile(`^([A-Za-zÁÉÍÓÚáéíóúñÑ]+)(\d{4})$`)

// ParseMonthYear splits values like "Enero2022" into year and month number.
func ParseMonthYear(s string) (year, month int, ok bool) {
	m := monthYearPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, 0, false
	}
	month, ok = monthNumbers[strings.ToLower(m[1])]
	if !ok {
		return 0, 0, false
	}
	year, err := strconv.Atoi(m[2])
	if err != nil {
		return 0, 0, false
	}
	return year, month, true
}

// BuildSummary derives the three dashboard presets from the consolidated
// table. The total column is required; chart3 is left out when no exempt
// category column is present.
func BuildSummary(t *table.Table, source string) (*preset.Set, error) {
	if t.Len() == 0 {
		return nil, errors.EmptyDataset(source)
	}
	if !t.HasColumn(TotalColumn) {
		return nil, errors.ValidationError("column '" + TotalColumn + "' is missing")
	}

	set := &preset.Set{GeneratedFrom: source}
	set.Chart1 = monthlyTotals(t)

	top := aggregate.TopN(stationTotals(t), topStations)
	c2 := &preset.Chart{
		Title:  "Top 10 peajes por tráfico acumulado (Sentido 1+2 con exentos)",
		YLabel: "Número de vehículos",
	}
	for _, g := range top {
		c2.Labels = append(c2.Labels, g.Group)
		c2.Data = append(c2.Data, preset.Num(g.Total))
	}
	set.Chart2 = c2

	var c3 *preset.Chart
	for _, col := range ExemptColumns {
		if !t.HasColumn(col) {
			continue
		}
		if c3 == nil {
			c3 = &preset.Chart{Title: "Distribución de vehículos exentos por categoría"}
		}
		c3.Labels = append(c3.Labels, col)
		c3.Data = append(c3.Data, preset.Num(floats.Sum(aggregate.NumericColumn(t, col))))
	}
	set.Chart3 = c3

	return set, nil
}

type yearMonth struct {
	year, month int
}

// monthlyTotals sums the total per (year, month) parsed from the month
// column. Rows with an unknown month are dropped.
func monthlyTotals(t *table.Table) *preset.Chart {
	sums := make(map[yearMonth]float64)
	for _, row := range t.Rows {
		year, month, ok := ParseMonthYear(row[MonthColumn])
		if !ok {
			continue
		}
		key := yearMonth{year, month}
		v, _ := aggregate.ParseNumber(row[TotalColumn])
		sums[key] += v
	}
	if len(sums) == 0 {
		return nil
	}

	keys := make([]yearMonth, 0, len(sums))
	for k := range sums {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year < keys[j].year
		}
		return keys[i].month < keys[j].month
	})

	c := &preset.Chart{
		Title:  "Tráfico mensual total (Sentido 1+2 con exentos)",
		YLabel: "Número de vehículos",
	}
	for _, k := range keys {
		c.Labels = append(c.Labels, monthAbbrev[k.month-1]+" "+strconv.Itoa(k.year))
		c.Data = append(c.Data, preset.Num(sums[k]))
	}
	return c
}

// stationTotals sums the total per station; rows without a station name are
// not grouped.
func stationTotals(t *table.Table) []aggregate.GroupTotal {
	named := t.Filter(func(r table.Row) bool { return r[StationColumn] != "" })
	return aggregate.GroupSum(named, StationColumn, TotalColumn)
}

// Generator turns the consolidated workbook into the presets file.
type Generator struct {
	logger *internal.Logger
}

// NewGenerator creates a generator. A nil logger uses internal.DefaultLogger.
func NewGenerator(logger *internal.Logger) *Generator {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Generator{logger: logger}
}

// Generate reads inPath and writes PresetsFile into outDir, returning the
// written path. Nothing is written when the input has no rows or lacks the
// total column.
func (g *Generator) Generate(inPath, outDir string) (string, error) {
	t, err := NewDataReader(inPath, g.logger).ReadTable()
	if err != nil {
		return "", err
	}
	g.logger.Info("[Generator] loaded %s with %d rows", inPath, t.Len())

	set, err := BuildSummary(t, filepath.Base(inPath))
	if err != nil {
		g.logger.Warn("[Generator] no presets generated: %v", err)
		return "", err
	}

	raw, err := preset.Encode(set)
	if err != nil {
		return "", errors.Wrap(err, "encoding presets")
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", errors.Wrapf(err, "creating %s", outDir)
	}
	out := filepath.Join(outDir, PresetsFile)
	if err := os.WriteFile(out, raw, 0o644); err != nil {
		return "", errors.Wrapf(err, "writing %s", out)
	}
	g.logger.Info("[Generator] presets written to %s", out)
	return out, nil
}
