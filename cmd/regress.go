package main

import (
	"fmt"
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/exporter-premium/internal/regress"
	"github.com/sells-group/exporter-premium/internal/report"
	"github.com/sells-group/exporter-premium/internal/table"
)

var (
	regressFile              string
	regressOutput            string
	regressIndustryDummies   bool
	regressEmploymentControl bool
)

var regressCmd = &cobra.Command{
	Use:   "regress",
	Short: "Estimate the exporter premium across firm outcomes",
	Long: `Fits log(outcome) = a + b*exporter [+ c*log(employment)] [+ industry dummies]
by OLS for each configured outcome column and writes one summary row per
outcome. Outcomes that cannot be fitted are reported and skipped.

Examples:
  exporter-premium regress --file firm_proximity_data.csv
  exporter-premium regress --industry-dummies --employment-control --output results.xlsx`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("regress"); err != nil {
			return err
		}

		tbl, ok := loadInput(cmd.Context(), cmd.OutOrStdout(), regressFile, cfg.Input)
		if !ok {
			return nil
		}

		controls := regress.Controls{
			IndustryDummies:   regressIndustryDummies,
			EmploymentControl: regressEmploymentControl,
		}
		return runBattery(cmd, tbl, controls, regressOutput)
	},
}

// runBattery fits the regression battery over tbl, prints the summary and
// writes the result table.
func runBattery(cmd *cobra.Command, tbl *table.Table, controls regress.Controls, output string) error {
	out := cmd.OutOrStdout()
	printSpecification(out, controls)

	batch, err := newRunner(cfg).Run(cmd.Context(), tbl, controls)
	if err != nil {
		return eris.Wrap(err, "regress: run battery")
	}

	report.PrintSummary(out, batch)

	if err := report.WriteResults(output, batch.Records()); err != nil {
		return err
	}
	fmt.Fprintf(out, "\nResults saved to %s\n", output)
	return nil
}

func printSpecification(w io.Writer, c regress.Controls) {
	fmt.Fprintln(w, "Running regressions with specifications:")
	fmt.Fprintf(w, "- Industry dummies: %s\n", yesNo(c.IndustryDummies))
	fmt.Fprintf(w, "- Log employment control: %s\n", yesNo(c.EmploymentControl))
}

func init() {
	regressCmd.Flags().StringVar(&regressFile, "file", "classfn_4064_final.csv", "firm table (CSV or XLSX)")
	regressCmd.Flags().StringVar(&regressOutput, "output", "regression_results.csv", "results table (CSV or XLSX)")
	regressCmd.Flags().BoolVar(&regressIndustryDummies, "industry-dummies", false, "include industry fixed effects")
	regressCmd.Flags().BoolVar(&regressEmploymentControl, "employment-control", false, "control for log employment")
	rootCmd.AddCommand(regressCmd)
}
