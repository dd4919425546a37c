package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/iceland-maps/internal/pipeline"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Compute waterway lengths, join and clip by county, write the clipped CSV",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		format, _ := cmd.Flags().GetString("format")
		if format != "table" && format != "yaml" {
			return eris.Errorf("analyze: unknown format %q (want table or yaml)", format)
		}

		p := pipeline.New(cfg)
		set, err := p.LoadLayers(ctx)
		if err != nil {
			return eris.Wrap(err, "analyze: load layers")
		}

		res, err := p.Analyze(ctx, set)
		if err != nil {
			return eris.Wrap(err, "analyze: run")
		}

		out := cmd.OutOrStdout()
		if format == "yaml" {
			return writeYAML(out, res.Summary)
		}
		formatSummary(out, res.Summary)
		_, _ = fmt.Fprintf(out, "\nwrote %s\n", cfg.Paths.ClippedCSV)
		return nil
	},
}

func init() {
	analyzeCmd.Flags().String("format", "table", "summary output format: table or yaml")
	rootCmd.AddCommand(analyzeCmd)
}
