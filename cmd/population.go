package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/iceland-maps/internal/pipeline"
)

var populationCmd = &cobra.Command{
	Use:   "population",
	Short: "Draw the resident population choropleth",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		ch, err := pipeline.New(cfg).Population(ctx)
		if err != nil {
			return eris.Wrap(err, "population: draw choropleth")
		}

		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "filled %d polygons\nwrote %s\n", ch.Filled, cfg.Paths.PopulationPNG)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(populationCmd)
}
