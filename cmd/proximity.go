package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/exporter-premium/internal/table"
)

var (
	proximityInput  string
	proximityOutput string
)

var proximityCmd = &cobra.Command{
	Use:   "proximity",
	Short: "Append distance-to-infrastructure columns to a firm table",
	Long: `Reads a firm table with latitude/longitude columns and appends the
minimum great-circle distance (km) to each reference set: the Golden
Quadrilateral cities (with the nearest city name), the Delhi-Meerut
expressway and the western and eastern dedicated freight corridors.

Examples:
  exporter-premium proximity --input classfn_4064_final.csv
  exporter-premium proximity --input firms.xlsx --output firm_proximity_data.xlsx`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		if err := cfg.Validate("proximity"); err != nil {
			return err
		}

		engine, err := newEngine(cfg)
		if err != nil {
			return eris.Wrap(err, "proximity: build engine")
		}

		tbl, ok := loadInput(ctx, out, proximityInput, cfg.Input)
		if !ok {
			return nil
		}

		augmented, stats, err := engine.Augment(ctx, tbl, cfg.Input.LatitudeColumn, cfg.Input.LongitudeColumn)
		if err != nil {
			return eris.Wrap(err, "proximity: augment")
		}

		if err := table.Save(proximityOutput, augmented); err != nil {
			return eris.Wrap(err, "proximity: write output")
		}

		zap.L().Info("proximity complete",
			zap.Int("firms", stats.Firms),
			zap.Int("located", stats.Located),
			zap.Int("skipped", stats.Skipped),
			zap.String("output", proximityOutput),
		)
		fmt.Fprintf(out, "Proximity data calculated and saved to %s\n", proximityOutput)
		return nil
	},
}

func init() {
	proximityCmd.Flags().StringVar(&proximityInput, "input", "classfn_4064_final.csv", "firm table (CSV or XLSX)")
	proximityCmd.Flags().StringVar(&proximityOutput, "output", "firm_proximity_data.csv", "output table (CSV or XLSX)")
	rootCmd.AddCommand(proximityCmd)
}
