package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/exporter-premium/internal/regress"
	"github.com/sells-group/exporter-premium/internal/table"
)

var (
	runInput             string
	runProximityOutput   string
	runOutput            string
	runIndustryDummies   bool
	runEmploymentControl bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Compute proximity features then run the regression battery",
	Long: `Runs the full flow in one process: append proximity columns to the firm
table, optionally save the augmented table, then fit the regression battery
on it (including the distance columns as outcomes).`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		if err := cfg.Validate("run"); err != nil {
			return err
		}

		engine, err := newEngine(cfg)
		if err != nil {
			return eris.Wrap(err, "run: build engine")
		}

		tbl, ok := loadInput(ctx, out, runInput, cfg.Input)
		if !ok {
			return nil
		}

		augmented, stats, err := engine.Augment(ctx, tbl, cfg.Input.LatitudeColumn, cfg.Input.LongitudeColumn)
		if err != nil {
			return eris.Wrap(err, "run: augment")
		}
		zap.L().Info("proximity stage complete",
			zap.Int("firms", stats.Firms),
			zap.Int("skipped", stats.Skipped),
		)

		if runProximityOutput != "" {
			if err := table.Save(runProximityOutput, augmented); err != nil {
				return eris.Wrap(err, "run: write proximity output")
			}
			fmt.Fprintf(out, "Proximity data calculated and saved to %s\n", runProximityOutput)
		}

		controls := regress.Controls{
			IndustryDummies:   runIndustryDummies,
			EmploymentControl: runEmploymentControl,
		}
		return runBattery(cmd, augmented, controls, runOutput)
	},
}

func init() {
	runCmd.Flags().StringVar(&runInput, "input", "classfn_4064_final.csv", "firm table (CSV or XLSX)")
	runCmd.Flags().StringVar(&runProximityOutput, "proximity-output", "firm_proximity_data.csv", "augmented table output; empty to skip")
	runCmd.Flags().StringVar(&runOutput, "output", "regression_results.csv", "results table (CSV or XLSX)")
	runCmd.Flags().BoolVar(&runIndustryDummies, "industry-dummies", false, "include industry fixed effects")
	runCmd.Flags().BoolVar(&runEmploymentControl, "employment-control", false, "control for log employment")
	rootCmd.AddCommand(runCmd)
}
