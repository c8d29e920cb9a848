package aggregate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"peajes/domain/table"
)

func TestMinMaxMean(t *testing.T) {
	tests := []struct {
		name      string
		values    []float64
		available bool
		min, max  float64
		mean      float64
	}{
		{name: "empty", values: nil, available: false},
		{name: "only NaN", values: []float64{math.NaN()}, available: false},
		{name: "three values", values: []float64{3, 1, 2}, available: true, min: 1, max: 3, mean: 2},
		{name: "NaN ignored", values: []float64{4, math.NaN(), 8}, available: true, min: 4, max: 8, mean: 6},
		{name: "single", values: []float64{-2.5}, available: true, min: -2.5, max: -2.5, mean: -2.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MinMaxMean(tt.values)
			assert.Equal(t, tt.available, got.Available)
			if !tt.available {
				assert.Equal(t, MetricSummary{}, got)
				return
			}
			assert.InDelta(t, tt.min, got.Min, 1e-9)
			assert.InDelta(t, tt.max, got.Max, 1e-9)
			assert.InDelta(t, tt.mean, got.Mean, 1e-9)
		})
	}
}

func TestNumericColumnDropsNonNumeric(t *testing.T) {
	tbl := table.Parse("rmse_test\n5.0\nabc\n\n3.2\nNaN\n-1e2\nInf\n")
	assert.Equal(t, []float64{5.0, 3.2, -100}, NumericColumn(tbl, "rmse_test"))
	assert.Empty(t, NumericColumn(tbl, "missing"))
}

func TestBestByMetricFirstWins(t *testing.T) {
	tbl := table.Parse("modelo,rmse_test\nm0,5.0\nm1,3.2\nm2,3.2\nm3,abc\n")

	best, ok := BestByMetric(tbl, "rmse_test", Lower)
	require.True(t, ok)
	assert.Equal(t, "m1", best["modelo"])

	worst, ok := BestByMetric(tbl, "rmse_test", Higher)
	require.True(t, ok)
	assert.Equal(t, "m0", worst["modelo"])
}

func TestBestByMetricNoNumericRows(t *testing.T) {
	tbl := table.Parse("modelo,rmse_test\nm0,\nm1,n/a\n")
	_, ok := BestByMetric(tbl, "rmse_test", Lower)
	assert.False(t, ok)
}

func TestGroupAverage(t *testing.T) {
	tbl := table.Parse(`tipo_dia,total
laboral,100
festivo,40
laboral,200
sabado,
festivo,60
sabado,x
`)
	got := GroupAverage(tbl, "tipo_dia", "total")

	require.Len(t, got, 2, "sabado has no numeric totals and is omitted")
	assert.Equal(t, "laboral", got[0].Group)
	assert.InDelta(t, 150, got[0].Mean, 1e-9)
	assert.Equal(t, 2, got[0].Count)
	assert.Equal(t, "festivo", got[1].Group)
	assert.InDelta(t, 50, got[1].Mean, 1e-9)
}

func TestGroupSumAndTopN(t *testing.T) {
	tbl := table.Parse(`Peaje,total
A,10
B,30
A,25
C,
D,30
`)
	sums := GroupSum(tbl, "Peaje", "total")
	assert.Equal(t, []GroupTotal{{"A", 35}, {"B", 30}, {"C", 0}, {"D", 30}}, sums)

	top := TopN(sums, 3)
	assert.Equal(t, []GroupTotal{{"A", 35}, {"B", 30}, {"D", 30}}, top)
	assert.Len(t, TopN(sums, 10), 4)
}

func TestStringRange(t *testing.T) {
	lo, hi, ok := StringRange([]string{"2023-05-01", "", "2021-01-03", "2024-12-31"})
	require.True(t, ok)
	assert.Equal(t, "2021-01-03", lo)
	assert.Equal(t, "2024-12-31", hi)

	_, _, ok = StringRange([]string{"", ""})
	assert.False(t, ok)
}

func TestCountDistinct(t *testing.T) {
	tbl := table.Parse("peaje\nA\nB\nA\n")
	assert.Equal(t, 2, CountDistinct(tbl, "peaje"))
}
