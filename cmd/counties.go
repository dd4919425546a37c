package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/iceland-maps/internal/pipeline"
)

var countiesCmd = &cobra.Command{
	Use:   "counties",
	Short: "Draw the roads and municipalities reference map",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		p := pipeline.New(cfg)
		set, err := p.LoadLayers(ctx)
		if err != nil {
			return eris.Wrap(err, "counties: load layers")
		}

		m, err := p.Counties(ctx, set)
		if err != nil {
			return eris.Wrap(err, "counties: draw reference map")
		}

		out := cmd.OutOrStdout()
		formatCountyStyles(out, m.Counties)
		_, _ = fmt.Fprintf(out, "\nwrote %s\n", cfg.Paths.CountiesPNG)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(countiesCmd)
}
