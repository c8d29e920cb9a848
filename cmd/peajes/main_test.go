package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("ARTIFACTS_DIR", dir)
	t.Setenv("ARTIFACTS_BASE_URL", "")
	t.Setenv("CATALOG_FILE", "")
	t.Setenv("LOG_LEVEL", "ERROR")
	t.Setenv("GIN_MODE", "test")
	return dir
}

func TestSummaryCommand(t *testing.T) {
	dir := setEnv(t)
	csv := "modelo,peaje,target,rmse_test,smape_test\nprophet,Sachica,sentido_1,5.5,10\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "resumen_metricas_modelos.csv"), []byte(csv), 0o644))

	var out bytes.Buffer
	cmd := newSummaryCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"models"})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "## models")
	assert.Contains(t, out.String(), "Se entrenaron **1** modelos")

	out.Reset()
	cmd = newSummaryCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"trafico"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "Error al cargar trafico_limpio.csv")

	cmd = newSummaryCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"otra"})
	assert.Error(t, cmd.Execute())
}

func TestResumenCommand(t *testing.T) {
	dir := setEnv(t)
	in := filepath.Join(dir, "consolidado.csv")
	csv := "Peaje,Mes,TOTAL SENTIDO 1 Y 2 CON EXCENTOS,I\nSachica,Enero2024,10,1\n"
	require.NoError(t, os.WriteFile(in, []byte(csv), 0o644))

	var out bytes.Buffer
	cmd := newResumenCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--excel", in, "--out", dir})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), filepath.Join(dir, "resumen_graficas.json"))
	_, err := os.Stat(filepath.Join(dir, "resumen_graficas.json"))
	assert.NoError(t, err)

	// the generated presets feed the render command
	png := filepath.Join(dir, "chart2.png")
	render := newRenderCmd()
	render.SetOut(&out)
	render.SetArgs([]string{"chart2", "--out", png})
	require.NoError(t, render.Execute())
	info, err := os.Stat(png)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}
