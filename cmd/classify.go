package main

import (
	"fmt"
	"sort"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/exporter-premium/internal/industry"
	"github.com/sells-group/exporter-premium/internal/table"
)

var (
	classifyInput  string
	classifyOutput string
)

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Assign NIC division codes from activity descriptions",
	Long: `Maps each firm's free-text manufacturing activity to a two-digit NIC 2008
division (10-33) by keyword and appends the code and its description.
Firms with no matching keyword are marked Unclassified.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		out := cmd.OutOrStdout()

		if err := cfg.Validate("classify"); err != nil {
			return err
		}

		tbl, ok := loadInput(cmd.Context(), out, classifyInput, cfg.Input)
		if !ok {
			return nil
		}

		classified, stats, err := industry.Augment(tbl, cfg.Input.ActivityColumn, cfg.Input.IndustryColumn)
		if err != nil {
			return eris.Wrap(err, "classify")
		}

		if err := table.Save(classifyOutput, classified); err != nil {
			return eris.Wrap(err, "classify: write output")
		}

		codes := make([]string, 0, len(stats.ByCode))
		for c := range stats.ByCode {
			codes = append(codes, c)
		}
		sort.Strings(codes)
		for _, c := range codes {
			zap.L().Debug("classification count", zap.String("code", c), zap.Int("firms", stats.ByCode[c]))
		}

		fmt.Fprintf(out, "Classified %d of %d firms (%d unclassified)\n", stats.Classified, stats.Firms, stats.Unclassified)
		fmt.Fprintf(out, "Classified data saved to %s\n", classifyOutput)
		return nil
	},
}

func init() {
	classifyCmd.Flags().StringVar(&classifyInput, "input", "", "firm table with an activity column (required)")
	classifyCmd.Flags().StringVar(&classifyOutput, "output", "classified_classfn.csv", "output table (CSV or XLSX)")
	_ = classifyCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(classifyCmd)
}
