package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cascadia-civic/crarisk/internal/config"
)

var configInitPath string

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration helpers",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter config file with the defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.WriteDefault(configInitPath); err != nil {
			return err
		}
		zap.L().Info("config written", zap.String("path", configInitPath))
		return nil
	},
}

func init() {
	configInitCmd.Flags().StringVar(&configInitPath, "path", "config.yaml", "where to write the starter config")
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}
