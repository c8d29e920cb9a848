package app

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"

	"peajes/domain/aggregate"
	"peajes/internal/errors"
)

// UserMessage turns a view failure into the notice shown in that view's
// summary area.
func UserMessage(view View, resource string, err error) string {
	if errors.IsEmptyDataset(err) {
		switch view {
		case ViewModels:
			return fmt.Sprintf("No se encontraron modelos en %s.", resource)
		case ViewTraffic:
			return fmt.Sprintf("No se encontraron filas en %s.", resource)
		default:
			return fmt.Sprintf("No se encontraron datos en %s.", resource)
		}
	}
	if view == ViewStation {
		return fmt.Sprintf("Error al cargar el archivo %s. Verifica que exista en la misma carpeta.", resource)
	}
	return fmt.Sprintf("Error al cargar %s. Verifica que el archivo exista en la misma carpeta.", resource)
}

// RequestMessage is the notice for a view whose request was rejected
// before any resource was read.
func RequestMessage(err error) string {
	if errors.IsStale(err) {
		return "Resultado descartado: hay una selección más reciente."
	}
	return err.Error()
}

// toHTML renders summary Markdown. Raw HTML is dropped and only safe link
// protocols are kept.
func toHTML(md string) string {
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.SkipHTML | html.Safelink,
	})
	return string(markdown.ToHTML([]byte(md), nil, renderer))
}

var cellEscaper = strings.NewReplacer(
	`\`, `\\`, "`", "\\`", "*", `\*`, "[", `\[`, "]", `\]`, "<", `\<`, ">", `\>`,
)

// cell escapes a value read from a data file for use in Markdown text.
func cell(s string) string {
	return cellEscaper.Replace(s)
}

// code wraps a resource name in a code span.
func code(s string) string {
	return "`" + strings.ReplaceAll(s, "`", "'") + "`"
}

func meanOf(s aggregate.MetricSummary) float64 { return s.Mean }
func minOf(s aggregate.MetricSummary) float64  { return s.Min }
func maxOf(s aggregate.MetricSummary) float64  { return s.Max }

func modelsMarkdown(v *ModelsView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Se entrenaron **%d** modelos para **%d** peajes y **%d** targets (sentidos).\n\n",
		v.Models, v.Stations, v.Targets)
	fmt.Fprintf(&b, "En el conjunto de prueba, el RMSE va aproximadamente de **%s** a **%s**, con un promedio cercano a **%s**.\n\n",
		formatSummary(v.RMSE, minOf, 1), formatSummary(v.RMSE, maxOf, 1), formatSummary(v.RMSE, meanOf, 1))
	fmt.Fprintf(&b, "El sMAPE en prueba se mueve entre **%s%%** y **%s%%**.\n",
		formatSummary(v.SMAPE, minOf, 2), formatSummary(v.SMAPE, maxOf, 2))
	if v.Best != nil {
		fmt.Fprintf(&b, "\nEl mejor modelo por RMSE de prueba corresponde al peaje **%s** (%s), con RMSE test = **%s**.\n",
			cell(v.Best.Peaje), cell(v.Best.Target), strconv.FormatFloat(v.Best.RMSETest, 'f', 1, 64))
	}
	return b.String()
}

func trafficMarkdown(v *TrafficView) string {
	var b strings.Builder
	dayTypes := make([]string, len(v.DayTypes))
	for i, d := range v.DayTypes {
		dayTypes[i] = cell(d)
	}
	fmt.Fprintf(&b, "El dataset %s contiene **%d** registros diarios de tráfico, cubriendo **%d** peajes y distintos tipos de día (%s).\n\n",
		code(v.Resource), v.Records, v.Stations, strings.Join(dayTypes, ", "))
	fmt.Fprintf(&b, "El rango temporal va aproximadamente desde **%s** hasta **%s**.\n\n", cell(v.DateFrom), cell(v.DateTo))
	if len(v.ByDayType) > 0 {
		b.WriteString("Tráfico total promedio por tipo de día:\n\n")
		for _, g := range v.ByDayType {
			fmt.Fprintf(&b, "- %s: **%s**\n", cell(orDefault(g.Group, NotAvailable)), strconv.FormatFloat(g.Mean, 'f', 1, 64))
		}
		b.WriteString("\n")
	}
	if d := v.Distribution; d != nil {
		fmt.Fprintf(&b, "La mediana del tráfico total diario es **%s** (rango intercuartílico %s a %s); %d registros quedan fuera de 1.5 IQR.\n\n",
			strconv.FormatFloat(d.Median, 'f', 1, 64), strconv.FormatFloat(d.Q25, 'f', 1, 64),
			strconv.FormatFloat(d.Q75, 'f', 1, 64), d.Outliers)
	}
	b.WriteString("Debajo se muestra una muestra de las primeras filas del dataset.\n")
	return b.String()
}

func stationMarkdown(v *StationView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**Peaje:** %s\n\n**Modelo:** %s\n\n**Target:** %s\n\n", cell(v.Peaje), cell(v.Modelo), cell(v.Target))
	b.WriteString("**Métricas (misma configuración en todas las filas del set)**\n\n")
	fmt.Fprintf(&b, "- %s\n- %s\n\n", metricLine(v.Validation), metricLine(v.Test))
	b.WriteString("Debajo se muestra una muestra de las últimas predicciones del conjunto de prueba.\n")
	return b.String()
}

func metricLine(metrics []Metric) string {
	parts := make([]string, len(metrics))
	for i, m := range metrics {
		suffix := ""
		if strings.HasPrefix(m.Key, "smape") && m.Value != NotAvailable {
			suffix = "%"
		}
		parts[i] = fmt.Sprintf("%s = %s%s", m.Label, cell(m.Value), suffix)
	}
	return strings.Join(parts, ", ")
}
