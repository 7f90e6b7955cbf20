// Package regress builds per-outcome design matrices from a firm table and
// fits the exporter-premium OLS battery.
package regress

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/exporter-premium/internal/table"
)

// Design matrix column names that do not come from the input table.
const (
	ColIntercept     = "const"
	ColLogEmployment = "log_employment"
	IndustryPrefix   = "Industry_"
)

// MissingIndustryCode is the category assigned to blank industry codes.
const MissingIndustryCode = "NA"

// Sentinel errors. ErrMissingColumn (from the table package) marks fatal,
// batch-level configuration problems when returned by CheckColumns.
var (
	ErrNoObservations  = eris.New("regress: no observations after filtering")
	ErrTooFewObs       = eris.New("regress: fewer observations than regressors")
	ErrSingularMatrix  = eris.New("regress: singular or rank-deficient design matrix")
	ErrMissingColumn   = table.ErrMissingColumn
	errMissingExporter = eris.New("regress: exporter indicator column is not configured")
)

// Controls selects the optional regressors.
type Controls struct {
	IndustryDummies   bool
	EmploymentControl bool
}

// Spec is the per-outcome regression specification. It is derived at run
// time for each candidate variable and never stored.
type Spec struct {
	DependentVariable string
	Controls
}

// Columns names the structural columns of the input table.
type Columns struct {
	Exporter   string
	Industry   string
	Employment string
}

// Options holds the numeric conventions for log transforms.
type Options struct {
	// LogFloor replaces exact zeros before taking logs.
	LogFloor float64
	// FillMissingWithFloor floors missing values too, instead of leaving them
	// missing so the row is dropped.
	FillMissingWithFloor bool
}

// DefaultOptions returns the standard conventions: zeros floored to 1e-10,
// missing values kept missing.
func DefaultOptions() Options {
	return Options{LogFloor: 1e-10}
}

// CheckColumns verifies the structural columns a batch needs. Any error it
// returns is fatal for the whole batch.
func CheckColumns(tbl *table.Table, cols Columns, c Controls) error {
	if cols.Exporter == "" {
		return errMissingExporter
	}
	if !tbl.Has(cols.Exporter) {
		return eris.Wrapf(ErrMissingColumn, "regress: exporter indicator column %q", cols.Exporter)
	}
	if c.IndustryDummies && !tbl.Has(cols.Industry) {
		return eris.Wrapf(ErrMissingColumn, "regress: industry classification column %q", cols.Industry)
	}
	if c.EmploymentControl && !tbl.Has(cols.Employment) {
		return eris.Wrapf(ErrMissingColumn, "regress: employment column %q", cols.Employment)
	}
	return nil
}
