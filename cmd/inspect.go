package main

import (
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/iceland-maps/internal/pipeline"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Describe the input layers and print the head of ISL_adm1.csv",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		rows, _ := cmd.Flags().GetInt("rows")

		p := pipeline.New(cfg)
		set, err := p.LoadLayers(ctx)
		if err != nil {
			return eris.Wrap(err, "inspect: load layers")
		}

		ins, err := p.Inspect(ctx, set)
		if err != nil {
			return eris.Wrap(err, "inspect: run")
		}

		formatInspection(cmd.OutOrStdout(), ins, rows)
		return nil
	},
}

func init() {
	inspectCmd.Flags().Int("rows", 5, "number of ISL_adm1.csv rows to print")
	rootCmd.AddCommand(inspectCmd)
}
