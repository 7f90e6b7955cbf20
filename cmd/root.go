package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/exporter-premium/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "exporter-premium",
	Short: "Firm proximity features and exporter-premium regressions",
	Long:  "Computes each firm's distance to the Golden Quadrilateral and freight corridors, then estimates the exporter premium across firm outcomes with log-linear OLS.",
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
