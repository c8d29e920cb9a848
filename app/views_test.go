package app

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"peajes/domain/preset"
	"peajes/domain/table"
	"peajes/internal/config"
	"peajes/internal/errors"
)

const modelsCSV = `modelo,peaje,target,rmse_test,mae_test,smape_test,mase_test
prophet,Sachica,sentido_1,5.0,4,10.5,1.1
sarima,Cerritos,sentido_1,3.2,2,8.25,0.9
xgb,Cerritos,sentido_2,3.2,2.5,9,1
lstm,Casablanca,sentido_1,abc,,,
`

func TestComputeModelsSummary(t *testing.T) {
	view, err := ComputeModelsSummary(table.Parse(modelsCSV), "resumen_metricas_modelos.csv")
	require.NoError(t, err)

	assert.Equal(t, 4, view.Models)
	assert.Equal(t, 3, view.Stations)
	assert.Equal(t, 2, view.Targets)

	require.True(t, view.RMSE.Available)
	assert.Equal(t, 3.2, view.RMSE.Min)
	assert.Equal(t, 5.0, view.RMSE.Max)
	assert.Equal(t, 3, view.RMSE.Count)

	require.NotNil(t, view.Best)
	assert.Equal(t, "sarima", view.Best.Modelo, "first occurrence of the minimum wins")
	assert.Equal(t, "Cerritos", view.Best.Peaje)

	require.Len(t, view.Table.Rows, 4)
	assert.Equal(t, []string{"Sachica", "sentido_1", "5.00", "4.00", "10.50", "1.10"}, view.Table.Rows[0])
	assert.Equal(t, []string{"Casablanca", "sentido_1", NotAvailable, NotAvailable, NotAvailable, NotAvailable}, view.Table.Rows[3])

	assert.Contains(t, view.Markdown, "Se entrenaron **4** modelos para **3** peajes y **2** targets")
	assert.Contains(t, view.Markdown, "de **3.2** a **5.0**")
	assert.Contains(t, view.Markdown, "entre **8.25%** y **10.50%**")
	assert.Contains(t, view.Markdown, "peaje **Cerritos** (sentido_1), con RMSE test = **3.2**")
	assert.Contains(t, view.HTML, "<strong>4</strong>")
}

func TestComputeModelsSummaryWithoutNumbers(t *testing.T) {
	view, err := ComputeModelsSummary(table.Parse("modelo,peaje,target,rmse_test\nx,A,s1,abc\n"), "m.csv")
	require.NoError(t, err)

	assert.False(t, view.RMSE.Available)
	assert.Nil(t, view.Best)
	assert.Contains(t, view.Markdown, "de **N/D** a **N/D**")
	assert.NotContains(t, view.Markdown, "El mejor modelo")
}

func TestComputeViewsEmptyTable(t *testing.T) {
	empty := table.Parse("modelo,peaje\n")

	_, err := ComputeModelsSummary(empty, "m.csv")
	assert.True(t, errors.IsEmptyDataset(err))
	_, err = ComputeTrafficSummary(empty, "t.csv")
	assert.True(t, errors.IsEmptyDataset(err))
	_, err = ComputeStationModel(empty, "Sachica", "s.csv")
	assert.True(t, errors.IsEmptyDataset(err))
}

func TestComputeTrafficSummary(t *testing.T) {
	var b strings.Builder
	b.WriteString("fecha,peaje,sentido_1,sentido_2,total,tipo_dia,extra\n")
	for i := 0; i < 12; i++ {
		tipo := "laboral"
		if i%3 == 0 {
			tipo = "festivo"
		}
		fmt.Fprintf(&b, "2023-01-%02d,P%d,1,1,%d,%s,x\n", 12-i, i%2, 10*(i+1), tipo)
	}
	b.WriteString(",P0,,,n/a,sin_dato,x\n")

	view, err := ComputeTrafficSummary(table.Parse(b.String()), "trafico_limpio.csv")
	require.NoError(t, err)

	assert.Equal(t, 13, view.Records)
	assert.Equal(t, 2, view.Stations)
	assert.Equal(t, []string{"festivo", "laboral", "sin_dato"}, view.DayTypes)
	assert.Equal(t, "2023-01-01", view.DateFrom)
	assert.Equal(t, "2023-01-12", view.DateTo)

	assert.Equal(t, 10, view.Sample.Len())
	assert.Equal(t, trafficColumns, view.Sample.Header)
	_, hasExtra := view.Sample.Rows[0]["extra"]
	assert.False(t, hasExtra)

	// festivo rows: i = 0,3,6,9 -> totals 10,40,70,100
	require.Len(t, view.ByDayType, 2, "groups without numeric totals are omitted")
	assert.Equal(t, "festivo", view.ByDayType[0].Group)
	assert.InDelta(t, 55.0, view.ByDayType[0].Mean, 1e-9)
	assert.Len(t, view.ByStation, 2)

	require.NotNil(t, view.Distribution)
	assert.Equal(t, 12, view.Distribution.Count)
	assert.InDelta(t, 65.0, view.Distribution.Median, 1e-9)
	assert.Contains(t, view.Markdown, "mediana del tráfico total diario es **65.0**")

	assert.Contains(t, view.Markdown, "`trafico_limpio.csv` contiene **13** registros")
	assert.Contains(t, view.Markdown, "(festivo, laboral, sin_dato)")
	assert.Contains(t, view.HTML, "<code>trafico_limpio.csv</code>")
}

func TestComputeTrafficSummaryWithoutDates(t *testing.T) {
	view, err := ComputeTrafficSummary(table.Parse("peaje,total\nA,1\n"), "t.csv")
	require.NoError(t, err)
	assert.Equal(t, NotAvailable, view.DateFrom)
	assert.Equal(t, NotAvailable, view.DateTo)
	require.NotNil(t, view.Distribution)
	assert.Equal(t, 1, view.Distribution.Count)

	view, err = ComputeTrafficSummary(table.Parse("peaje,total\nA,n/a\n"), "t.csv")
	require.NoError(t, err)
	assert.Nil(t, view.Distribution)
}

func TestComputeStationModel(t *testing.T) {
	var b strings.Builder
	b.WriteString("peaje,modelo,target,set,fecha,y_real,y_pred,rmse_val,mae_val,smape_val,mase_val,rmse_test,mae_test,smape_test,mase_test\n")
	b.WriteString(",prophet,sentido_1,val,2022-12-31,100,101,12.345,10,5.5,0.8,x,9,6,0.9\n")
	for day := 20; day >= 1; day-- {
		fmt.Fprintf(&b, ",prophet,sentido_1,TEST,2023-01-%02d,%d.5,%d.49,,,,,,,,\n", day, 1000+day, 2000+day)
	}
	b.WriteString(",prophet,sentido_1,test,2023-02-01,sin dato,-2.5,,,,,,,,\n")

	view, err := ComputeStationModel(table.Parse(b.String()), "Sachica", "resultados_sachica_sentido_1.csv")
	require.NoError(t, err)

	assert.Equal(t, "Sachica", view.Peaje, "falls back to the selected station")
	assert.Equal(t, "prophet", view.Modelo)
	assert.Equal(t, "sentido_1", view.Target)
	assert.Equal(t, "12.35", view.Validation[0].Value)
	assert.Equal(t, NotAvailable, view.Test[0].Value)
	assert.Equal(t, "6.00", view.Test[2].Value)

	require.Len(t, view.Recent.Rows, 15)
	assert.Equal(t, []string{"2023-01-07", "1008", "2007", "TEST"}, view.Recent.Rows[0])
	assert.Equal(t, []string{"2023-02-01", "sin dato", "-3", "test"}, view.Recent.Rows[14])

	assert.Contains(t, view.Markdown, "**Peaje:** Sachica")
	assert.Contains(t, view.Markdown, "RMSE val = 12.35, MAE val = 10.00, sMAPE val = 5.50%, MASE val = 0.80")
	assert.Contains(t, view.Markdown, "RMSE test = N/D")
}

func TestComputeStationModelDefaults(t *testing.T) {
	view, err := ComputeStationModel(table.Parse("peaje,set\nCerritos II,val\n"), "Cerritos", "c.csv")
	require.NoError(t, err)
	assert.Equal(t, "Cerritos II", view.Peaje)
	assert.Equal(t, NotAvailable, view.Modelo)
	assert.Equal(t, NotAvailable, view.Target)
	assert.Empty(t, view.Recent.Rows)
}

func TestComputeStationModelEscapesCells(t *testing.T) {
	csv := "peaje,modelo,target,set,fecha,y_real,y_pred,rmse_test\n" +
		"Sachica,<img src=x onerror=alert(1)>,[x](javascript:alert(1)),test,2023-01-01,10,11,3.5\n"

	view, err := ComputeStationModel(table.Parse(csv), "Sachica", "resultados_sachica.csv")
	require.NoError(t, err)

	assert.Equal(t, "<img src=x onerror=alert(1)>", view.Modelo, "the view keeps the raw value")
	assert.NotContains(t, view.HTML, "<img")
	assert.NotContains(t, view.HTML, "href=")
	assert.Contains(t, view.HTML, "&lt;img")
	assert.Contains(t, view.HTML, "javascript:alert(1)", "the link text is shown as text")
}

func TestComputeEDA(t *testing.T) {
	cat := config.DefaultCatalog()
	set := &preset.Set{
		GeneratedFrom: "Consolidado.xlsx",
		Chart1: &preset.Chart{
			Title:  "Tráfico mensual",
			Labels: []string{"Ene 2021", "Feb 2021", "Mar 2023", "bogus"},
			Data:   []preset.Value{preset.Num(10), preset.Null(), preset.Num(7), preset.Num(1)},
		},
		Chart2: &preset.Chart{Title: "Top", Labels: []string{"A"}, Data: []preset.Value{preset.Num(1)}},
	}

	view, err := ComputeEDA(set, cat.Months, cat.Years, "")
	require.NoError(t, err)
	assert.Equal(t, "2023", view.DefaultYear)
	assert.Equal(t, "2023", view.SelectedYear)
	assert.Equal(t, "Tráfico mensual (2023)", view.Charts["chart1"].Datasets[0].Label)
	assert.Contains(t, view.Charts, "chart2")
	assert.NotContains(t, view.Charts, "chart3")
	assert.Len(t, view.ByYear, 5)

	view, err = ComputeEDA(set, cat.Months, cat.Years, "2021")
	require.NoError(t, err)
	assert.Equal(t, 10.0, *view.Charts["chart1"].Datasets[0].Values[0])
	assert.Nil(t, view.Charts["chart1"].Datasets[0].Values[1])

	_, err = ComputeEDA(set, cat.Months, cat.Years, "1999")
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestUserMessage(t *testing.T) {
	notFound := errors.Retrieval("x.csv", 404, nil)
	empty := errors.EmptyDataset("x.csv")

	tests := []struct {
		view     View
		resource string
		err      error
		want     string
	}{
		{ViewEDA, "resumen_graficas.json", notFound, "Error al cargar resumen_graficas.json. Verifica que el archivo exista en la misma carpeta."},
		{ViewModels, "resumen_metricas_modelos.csv", notFound, "Error al cargar resumen_metricas_modelos.csv. Verifica que el archivo exista en la misma carpeta."},
		{ViewModels, "resumen_metricas_modelos.csv", empty, "No se encontraron modelos en resumen_metricas_modelos.csv."},
		{ViewTraffic, "trafico_limpio.csv", empty, "No se encontraron filas en trafico_limpio.csv."},
		{ViewStation, "r.csv", empty, "No se encontraron datos en r.csv."},
		{ViewStation, "r.csv", notFound, "Error al cargar el archivo r.csv. Verifica que exista en la misma carpeta."},
	}
	for _, tt := range tests {
		t.Run(string(tt.view)+"/"+errors.GetCode(tt.err), func(t *testing.T) {
			assert.Equal(t, tt.want, UserMessage(tt.view, tt.resource, tt.err))
		})
	}
}
