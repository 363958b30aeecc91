package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cascadia-civic/crarisk/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "crarisk",
	Short: "Community reporting area seismic risk pipeline",
	Long:  "Joins civic geospatial layers (land areas, hazard zones, URM inventory, census, permits) into a per-area seismic risk and mitigation table.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
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

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
