package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/iceland-maps/internal/pipeline"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline",
	Long: `Loads all layers, draws the reference map, runs the spatial analysis and
writes the clipped CSV, then draws the population choropleth. Outputs are
overwritten on every run.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		res, err := pipeline.New(cfg).Run(ctx)
		if res != nil {
			formatPhases(cmd.OutOrStdout(), res.Phases)
		}
		if err != nil {
			return err
		}

		zap.L().Info("outputs written",
			zap.String("counties_png", cfg.Paths.CountiesPNG),
			zap.String("clipped_csv", cfg.Paths.ClippedCSV),
			zap.String("population_png", cfg.Paths.PopulationPNG),
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
