package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/iceland-maps/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "iceland-maps",
	Short: "Iceland reference and population maps from shapefiles",
	Long: `Loads Iceland's road, waterway, point, county, population and outline
shapefiles, reprojects them to UTM zone 26N (EPSG:32626), draws a reference map
and a population choropleth, and clips waterways by county into a CSV table.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := c.Validate(); err != nil {
			return err
		}
		if dir, _ := cmd.Flags().GetString("data-dir"); dir != "" {
			c.Paths.DataDir = dir
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().String("data-dir", "", "directory holding the source shapefiles (overrides paths.data_dir)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
