package regress

import (
	"math"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"gonum.org/v1/gonum/mat"

	"github.com/sells-group/exporter-premium/internal/table"
)

// DesignMatrix is the regressor matrix and log outcome vector for one
// specification, restricted to rows with no missing values.
type DesignMatrix struct {
	// Columns names X's columns: intercept, exporter dummy, optional
	// log_employment, then industry dummies.
	Columns []string
	X       *mat.Dense
	Y       []float64
	// Rows holds the source-table index of each surviving row.
	Rows []int
	// Dropped counts source rows removed by the missing-value filter.
	Dropped int
	// IndustryCategories lists all industry codes seen, sorted; the first
	// is the omitted reference level.
	IndustryCategories []string
}

// NumObs returns the number of surviving observations.
func (d *DesignMatrix) NumObs() int { return len(d.Y) }

// NumVars returns the number of regressors including the intercept.
func (d *DesignMatrix) NumVars() int { return len(d.Columns) }

// ColumnIndex returns the position of a named regressor, or -1.
func (d *DesignMatrix) ColumnIndex(name string) int {
	for i, c := range d.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// LogTransform applies the outcome log convention: exact zeros become
// ln(floor), negatives are missing, and missing values stay missing unless
// fillMissing is set, in which case they are floored as well.
func LogTransform(v, floor float64, fillMissing bool) float64 {
	switch {
	case math.IsNaN(v):
		if fillMissing {
			return math.Log(floor)
		}
		return math.NaN()
	case v == 0:
		return math.Log(floor)
	case v < 0:
		return math.NaN()
	default:
		return math.Log(v)
	}
}

// Build assembles the design matrix for one specification. Structural
// column problems return ErrMissingColumn; an empty surviving row set
// returns ErrNoObservations.
func Build(tbl *table.Table, spec Spec, cols Columns, opts Options) (*DesignMatrix, error) {
	if err := CheckColumns(tbl, cols, spec.Controls); err != nil {
		return nil, err
	}
	if opts.LogFloor <= 0 {
		return nil, eris.Errorf("regress: log floor must be > 0 (got %g)", opts.LogFloor)
	}

	raw, err := tbl.Numeric(spec.DependentVariable)
	if err != nil {
		return nil, eris.Wrapf(err, "regress: dependent variable %q", spec.DependentVariable)
	}
	n := len(raw)
	y := make([]float64, n)
	for i, v := range raw {
		y[i] = LogTransform(v, opts.LogFloor, opts.FillMissingWithFloor)
	}

	// Regressors stored column-major while assembling.
	names := []string{ColIntercept, cols.Exporter}
	intercept := make([]float64, n)
	for i := range intercept {
		intercept[i] = 1
	}

	exporter, err := tbl.Numeric(cols.Exporter)
	if err != nil {
		return nil, eris.Wrap(err, "regress: exporter indicator")
	}
	for i, v := range exporter {
		if math.IsNaN(v) {
			exporter[i] = 0 // missing exporter status counts as non-exporter
		}
	}
	data := [][]float64{intercept, exporter}

	if spec.EmploymentControl {
		emp, err := tbl.Numeric(cols.Employment)
		if err != nil {
			return nil, eris.Wrap(err, "regress: employment")
		}
		for i, v := range emp {
			emp[i] = LogTransform(v, opts.LogFloor, opts.FillMissingWithFloor)
		}
		names = append(names, ColLogEmployment)
		data = append(data, emp)
	}

	var categories []string
	if spec.IndustryDummies {
		codes, err := tbl.Column(cols.Industry)
		if err != nil {
			return nil, eris.Wrap(err, "regress: industry classification")
		}
		var dummies [][]float64
		var dummyNames []string
		categories, dummyNames, dummies = oneHot(codes)
		names = append(names, dummyNames...)
		data = append(data, dummies...)
	}

	keep := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if math.IsNaN(y[i]) {
			continue
		}
		ok := true
		for _, col := range data {
			if math.IsNaN(col[i]) {
				ok = false
				break
			}
		}
		if ok {
			keep = append(keep, i)
		}
	}
	if len(keep) == 0 {
		return nil, eris.Wrapf(ErrNoObservations, "dependent variable %q", spec.DependentVariable)
	}

	k := len(names)
	flat := make([]float64, 0, len(keep)*k)
	ys := make([]float64, len(keep))
	for r, i := range keep {
		for _, col := range data {
			flat = append(flat, col[i])
		}
		ys[r] = y[i]
	}

	return &DesignMatrix{
		Columns:            names,
		X:                  mat.NewDense(len(keep), k, flat),
		Y:                  ys,
		Rows:               keep,
		Dropped:            n - len(keep),
		IndustryCategories: categories,
	}, nil
}

// oneHot encodes industry codes as indicator columns, dropping the
// lexically-first category as the reference level. Blank codes form their
// own category.
func oneHot(codes []string) (categories, names []string, cols [][]float64) {
	norm := make([]string, len(codes))
	seen := make(map[string]bool)
	for i, c := range codes {
		c = strings.TrimSpace(c)
		if c == "" {
			c = MissingIndustryCode
		}
		norm[i] = c
		if !seen[c] {
			seen[c] = true
			categories = append(categories, c)
		}
	}
	sort.Strings(categories)

	if len(categories) < 2 {
		return categories, nil, nil
	}
	index := make(map[string]int, len(categories)-1)
	for j, c := range categories[1:] {
		index[c] = j
		names = append(names, IndustryPrefix+c)
		cols = append(cols, make([]float64, len(codes)))
	}
	for i, c := range norm {
		if j, ok := index[c]; ok {
			cols[j][i] = 1
		}
	}
	return categories, names, cols
}
