package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"peajes/internal/errors"
)

// Catalog names the artifacts the dashboard reads and the fixed calendar
// used by the month/year reshaping.
type Catalog struct {
	Months    []string  `yaml:"months"`
	Years     []string  `yaml:"years"`
	Resources Resources `yaml:"resources"`
	Stations  []Station `yaml:"stations"`
}

// Resources are artifact names relative to the artifact root.
type Resources struct {
	Presets       string `yaml:"presets"`
	ModelsSummary string `yaml:"models_summary"`
	Traffic       string `yaml:"traffic"`
}

// Station maps a toll station to its per-direction model results file.
type Station struct {
	Name string `yaml:"name"`
	File string `yaml:"file"`
}

// DefaultCatalog mirrors the artifacts published with the dashboard.
func DefaultCatalog() Catalog {
	return Catalog{
		Months: []string{"Ene", "Feb", "Mar", "Abr", "May", "Jun", "Jul", "Ago", "Sep", "Oct", "Nov", "Dic"},
		Years:  []string{"2021", "2022", "2023", "2024", "2025"},
		Resources: Resources{
			Presets:       "resumen_graficas.json",
			ModelsSummary: "resumen_metricas_modelos.csv",
			Traffic:       "trafico_limpio.csv",
		},
		Stations: []Station{
			{Name: "Sachica", File: "resultados_sachica_sentido_1.csv"},
			{Name: "Bicentenario", File: "resultados_bicentenario_sentido_1.csv"},
			{Name: "Casablanca", File: "resultados_casablanca_sentido_1.csv"},
			{Name: "Cerritos", File: "resultados_cerritos_ii_sentido_1.csv"},
			{Name: "La Parada", File: "resultados_la_parada_sentido_2.csv"},
			{Name: "Tunel de la Linea", File: "resultados_peaje_tunel_la_linea_tolima_sentido_1.csv"},
			{Name: "Pto Triunfo", File: "resultados_pto_triunfo_sentido_1.csv"},
		},
	}
}

// LoadCatalogFile reads a YAML catalog. Sections left out of the file keep
// their defaults.
func LoadCatalogFile(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading catalog %s", path)
	}
	return ParseCatalog(raw)
}

// ParseCatalog decodes YAML over the default catalog.
func ParseCatalog(raw []byte) (*Catalog, error) {
	catalog := DefaultCatalog()
	var overlay Catalog
	if err := yaml.Unmarshal(raw, &overlay); err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, fmt.Errorf("parsing catalog: %w", err))
	}
	if len(overlay.Months) > 0 {
		catalog.Months = overlay.Months
	}
	if len(overlay.Years) > 0 {
		catalog.Years = overlay.Years
	}
	if overlay.Resources.Presets != "" {
		catalog.Resources.Presets = overlay.Resources.Presets
	}
	if overlay.Resources.ModelsSummary != "" {
		catalog.Resources.ModelsSummary = overlay.Resources.ModelsSummary
	}
	if overlay.Resources.Traffic != "" {
		catalog.Resources.Traffic = overlay.Resources.Traffic
	}
	if len(overlay.Stations) > 0 {
		catalog.Stations = overlay.Stations
	}
	return &catalog, nil
}

// Validate checks the catalog invariants the reshaper and dispatcher rely on.
func (c Catalog) Validate() error {
	if len(c.Months) != 12 {
		return errors.ConfigInvalid(fmt.Sprintf("catalog needs exactly 12 months, got %d", len(c.Months)))
	}
	if len(c.Years) == 0 {
		return errors.ConfigInvalid("catalog needs at least one year")
	}
	if c.Resources.Presets == "" || c.Resources.ModelsSummary == "" || c.Resources.Traffic == "" {
		return errors.ConfigInvalid("catalog resources must all be named")
	}
	if len(c.Stations) == 0 {
		return errors.ConfigInvalid("catalog needs at least one station")
	}
	seen := make(map[string]bool, len(c.Stations))
	for _, s := range c.Stations {
		if s.Name == "" || s.File == "" {
			return errors.ConfigInvalid("station entries need a name and a file")
		}
		if seen[s.Name] {
			return errors.ConfigInvalid(fmt.Sprintf("duplicate station %q", s.Name))
		}
		seen[s.Name] = true
	}
	return nil
}

// StationFile returns the results file for a station name.
func (c Catalog) StationFile(name string) (string, bool) {
	for _, s := range c.Stations {
		if s.Name == name {
			return s.File, true
		}
	}
	return "", false
}

// StationNames lists stations in catalog order.
func (c Catalog) StationNames() []string {
	names := make([]string, len(c.Stations))
	for i, s := range c.Stations {
		names[i] = s.Name
	}
	return names
}
