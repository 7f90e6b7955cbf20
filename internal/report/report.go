// Package report renders regression batches as result tables and console
// summaries.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/exporter-premium/internal/regress"
	"github.com/sells-group/exporter-premium/internal/table"
)

// Fixed result columns, in output order.
const (
	ColDependentVariable = "Dependent_Variable"
	ColIntercept         = "Constant_(Intercept)"
	ColExporterCoef      = "Exporter_Dummy_Coefficient"
	ColExporterP         = "Exporter_Dummy_P_Value"
	ColRSquared          = "R_squared"
	ColAdjRSquared       = "Adjusted_R_squared"
	ColObservations      = "Number_of_observations"
	ColVariables         = "Number_of_variables"
	ColFStatistic        = "F_statistic"
	ColFPValue           = "F_pvalue"
	ColEmploymentCoef    = "Log_Employment_Coefficient"
	ColEmploymentP       = "Log_Employment_P_Value"
)

var baseColumns = []string{
	ColDependentVariable,
	ColIntercept,
	ColExporterCoef,
	ColExporterP,
	ColRSquared,
	ColAdjRSquared,
	ColObservations,
	ColVariables,
	ColFStatistic,
	ColFPValue,
}

// ResultsTable lays out one row per record. Employment columns appear when
// any record carries them; industry columns are the union across records in
// first-seen order. Absent values are empty cells.
func ResultsTable(records []regress.ResultRecord) (*table.Table, error) {
	header := append([]string(nil), baseColumns...)

	hasEmployment := false
	var industry []string
	seen := make(map[string]bool)
	for _, r := range records {
		if r.Employment != nil {
			hasEmployment = true
		}
		for _, ie := range r.Industry {
			if !seen[ie.Code] {
				seen[ie.Code] = true
				industry = append(industry, ie.Code)
			}
		}
	}
	if hasEmployment {
		header = append(header, ColEmploymentCoef, ColEmploymentP)
	}
	for _, code := range industry {
		col := regress.IndustryPrefix + code
		header = append(header, col+"_Coefficient", col+"_P_Value")
	}

	rows := make([][]string, 0, len(records))
	for _, r := range records {
		row := []string{
			r.DependentVariable,
			table.FormatFloat(r.Intercept),
			table.FormatFloat(r.Exporter.Coefficient),
			table.FormatFloat(r.Exporter.PValue),
			table.FormatFloat(r.RSquared),
			table.FormatFloat(r.AdjRSquared),
			strconv.Itoa(r.Observations),
			strconv.Itoa(r.Variables),
			table.FormatFloat(r.FStatistic),
			table.FormatFloat(r.FPValue),
		}
		if hasEmployment {
			if r.Employment != nil {
				row = append(row, table.FormatFloat(r.Employment.Coefficient), table.FormatFloat(r.Employment.PValue))
			} else {
				row = append(row, "", "")
			}
		}
		byCode := make(map[string]regress.Estimate, len(r.Industry))
		for _, ie := range r.Industry {
			byCode[ie.Code] = ie.Estimate
		}
		for _, code := range industry {
			if e, ok := byCode[code]; ok {
				row = append(row, table.FormatFloat(e.Coefficient), table.FormatFloat(e.PValue))
			} else {
				row = append(row, "", "")
			}
		}
		rows = append(rows, row)
	}

	t, err := table.New(header, rows)
	if err != nil {
		return nil, eris.Wrap(err, "report: build results table")
	}
	return t, nil
}

// WriteResults writes records to path as CSV, or XLSX when the extension is
// .xlsx.
func WriteResults(path string, records []regress.ResultRecord) error {
	t, err := ResultsTable(records)
	if err != nil {
		return err
	}
	if err := table.Save(path, t); err != nil {
		return eris.Wrapf(err, "report: write results to %s", path)
	}
	return nil
}

// PrintSummary writes a human-readable block per successful variable
// followed by the list of variables that could not be fitted.
func PrintSummary(w io.Writer, batch *regress.Batch) {
	rule := strings.Repeat("=", 80)
	for _, r := range batch.Records() {
		fmt.Fprintf(w, "\nRegression Results for %s:\n", r.DependentVariable)
		fmt.Fprintf(w, "Constant (Intercept): %.4f\n", r.Intercept)
		fmt.Fprintf(w, "Exporter Dummy Coefficient: %.4f\n", r.Exporter.Coefficient)
		fmt.Fprintf(w, "Exporter Dummy P-Value: %.4f\n", r.Exporter.PValue)
		if r.Employment != nil {
			fmt.Fprintf(w, "Log Employment Coefficient: %.4f\n", r.Employment.Coefficient)
			fmt.Fprintf(w, "Log Employment P-Value: %.4f\n", r.Employment.PValue)
		}
		fmt.Fprintf(w, "R-squared: %.4f\n", r.RSquared)
		fmt.Fprintf(w, "Adjusted R-squared: %.4f\n", r.AdjRSquared)
		fmt.Fprintf(w, "Number of observations: %d\n", r.Observations)
		fmt.Fprintf(w, "F-statistic: %.4f\n", r.FStatistic)
		fmt.Fprintf(w, "F-statistic p-value: %.4f\n", r.FPValue)
		fmt.Fprintln(w, rule)
	}

	fails := batch.Failures()
	if len(fails) == 0 {
		return
	}
	fmt.Fprintf(w, "\nSkipped %d variable(s):\n", len(fails))
	for _, f := range fails {
		fmt.Fprintf(w, "  %-40s %s: %v\n", f.Variable, f.Reason, f.Err)
	}
}
