package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"peajes/app"
	"peajes/internal/config"
	"peajes/internal/container"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:           "peajes",
		Short:         "Toll-road traffic dashboard backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newServeCmd(),
		newResumenCmd(),
		newSummaryCmd(),
		newRenderCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads configuration and wires the application.
func setup() (*container.Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return container.New(cfg)
}

func newServeCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard API, charts and artifacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := setup()
			if err != nil {
				return err
			}
			defer c.Shutdown(context.Background())

			if port == "" {
				port = c.Config.Server.Port
			}
			return c.Server().Start(":" + port)
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "Port to listen on (default from PORT)")

	return cmd
}

func newResumenCmd() *cobra.Command {
	var excelFile string
	var outDir string

	cmd := &cobra.Command{
		Use:   "resumen",
		Short: "Generate resumen_graficas.json from the consolidated workbook",
		Long: `Read the consolidated traffic workbook (first sheet) or a CSV export of it
and write the three dashboard chart presets.

Example: peajes resumen --excel Consolidado_TOTAL_54cols_v2_allyears.xlsx --out ./web`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := setup()
			if err != nil {
				return err
			}
			defer c.Shutdown(context.Background())

			if excelFile == "" {
				excelFile = c.Config.Data.ExcelFile
			}
			if outDir == "" {
				outDir = c.Config.Artifacts.Dir
			}
			out, err := c.Generator.Generate(excelFile, outDir)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Resumen de gráficas guardado en: %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVar(&excelFile, "excel", "", "Consolidated workbook or CSV (default from EXCEL_FILE)")
	cmd.Flags().StringVar(&outDir, "out", "", "Output directory (default from ARTIFACTS_DIR)")

	return cmd
}

func newSummaryCmd() *cobra.Command {
	var peaje string
	var year string

	cmd := &cobra.Command{
		Use:   "summary [view]",
		Short: "Print the summary of one view, or of all views",
		Long: `Compute a dashboard view and print its Markdown summary.

Views: eda, models, trafico, peaje.

Example: peajes summary peaje --peaje Sachica`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := setup()
			if err != nil {
				return err
			}
			defer c.Shutdown(context.Background())

			filter := app.Filter{Year: year, Peaje: peaje}
			var outcomes []*app.Outcome
			if len(args) == 1 {
				view, err := app.ParseView(args[0])
				if err != nil {
					return err
				}
				if view == app.ViewStation && filter.Peaje == "" {
					filter.Peaje = c.Config.Catalog.StationNames()[0]
				}
				out, err := c.Dispatcher.Dispatch(cmd.Context(), view, filter)
				if err != nil {
					return err
				}
				outcomes = append(outcomes, out)
			} else {
				outcomes, err = c.Dispatcher.LoadAll(cmd.Context(), filter)
				if err != nil {
					return err
				}
			}

			w := cmd.OutOrStdout()
			for _, out := range outcomes {
				fmt.Fprintf(w, "## %s\n\n%s\n", out.View, describe(out))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&peaje, "peaje", "", "Station for the peaje view (default: first station)")
	cmd.Flags().StringVar(&year, "year", "", "Year for the eda view (default: newest year with data)")

	return cmd
}

func describe(out *app.Outcome) string {
	if out.Failed() {
		return out.Message + "\n"
	}
	switch data := out.Data.(type) {
	case *app.ModelsView:
		return data.Markdown
	case *app.TrafficView:
		return data.Markdown
	case *app.StationView:
		return data.Markdown
	case *app.EDAView:
		s := fmt.Sprintf("Años: %v (por defecto %s)\n", data.Years, data.DefaultYear)
		for _, slot := range []string{"chart1", "chart2", "chart3"} {
			if spec, ok := data.Charts[slot]; ok {
				s += fmt.Sprintf("- %s: %s (%s, %d etiquetas)\n", slot, spec.Title, spec.Kind, len(spec.Labels))
			}
		}
		return s
	}
	return ""
}

func newRenderCmd() *cobra.Command {
	var out string
	var year string

	cmd := &cobra.Command{
		Use:   "render [slot]",
		Short: "Render one exploratory chart (chart1, chart2, chart3) to a PNG file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := setup()
			if err != nil {
				return err
			}
			defer c.Shutdown(context.Background())

			img, err := c.Dispatcher.RenderChart(cmd.Context(), args[0], app.Filter{Year: year})
			if err != nil {
				return err
			}
			if out == "" {
				out = args[0] + ".png"
			}
			if err := os.WriteFile(out, img.Data, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s written (%d bytes)\n", out, len(img.Data))
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "Output file (default <slot>.png)")
	cmd.Flags().StringVar(&year, "year", "", "Year for chart1 (default: newest year with data)")

	return cmd
}
