package regress

import (
	"errors"
	"math"
	"strings"
)

// Estimate is a coefficient and its two-sided p-value.
type Estimate struct {
	Coefficient float64
	PValue      float64
}

// IndustryEstimate is the estimate for one included industry dummy.
type IndustryEstimate struct {
	Code string
	Estimate
}

// Column returns the design-matrix column name of the dummy.
func (e IndustryEstimate) Column() string { return IndustryPrefix + e.Code }

// ResultRecord is the normalized summary of one successful fit.
type ResultRecord struct {
	DependentVariable string
	Intercept         float64
	Exporter          Estimate
	RSquared          float64
	AdjRSquared       float64
	Observations      int
	Variables         int
	FStatistic        float64
	FPValue           float64

	// Employment is set only when the log-employment control was included.
	Employment *Estimate
	// Industry holds one entry per dummy actually included, in column order.
	Industry []IndustryEstimate
}

// NewResultRecord extracts a ResultRecord from a fitted design matrix.
func NewResultRecord(variable string, dm *DesignMatrix, fit *Fit) ResultRecord {
	at := func(name string) Estimate {
		j := dm.ColumnIndex(name)
		if j < 0 {
			return Estimate{Coefficient: math.NaN(), PValue: math.NaN()}
		}
		return Estimate{Coefficient: fit.Params[j], PValue: fit.PValues[j]}
	}

	rec := ResultRecord{
		DependentVariable: variable,
		Intercept:         at(ColIntercept).Coefficient,
		Exporter:          at(dm.Columns[1]),
		RSquared:          fit.RSquared,
		AdjRSquared:       fit.AdjRSquared,
		Observations:      dm.NumObs(),
		Variables:         dm.NumVars(),
		FStatistic:        fit.FStatistic,
		FPValue:           fit.FPValue,
	}
	if dm.ColumnIndex(ColLogEmployment) >= 0 {
		e := at(ColLogEmployment)
		rec.Employment = &e
	}
	for _, c := range dm.Columns {
		if code, ok := strings.CutPrefix(c, IndustryPrefix); ok {
			rec.Industry = append(rec.Industry, IndustryEstimate{Code: code, Estimate: at(c)})
		}
	}
	return rec
}

// FailureReason classifies why a variable produced no record.
type FailureReason string

// Failure reasons.
const (
	ReasonMissingColumn  FailureReason = "missing_column"
	ReasonNoObservations FailureReason = "no_observations"
	ReasonSingular       FailureReason = "singular_matrix"
	ReasonInternal       FailureReason = "internal_error"
)

// ReasonFor maps a per-variable error to its FailureReason.
func ReasonFor(err error) FailureReason {
	switch {
	case errors.Is(err, ErrMissingColumn):
		return ReasonMissingColumn
	case errors.Is(err, ErrNoObservations), errors.Is(err, ErrTooFewObs):
		return ReasonNoObservations
	case errors.Is(err, ErrSingularMatrix):
		return ReasonSingular
	default:
		return ReasonInternal
	}
}

// Failure records a variable that could not be fitted.
type Failure struct {
	Variable string
	Reason   FailureReason
	Err      error
}

// Outcome is the per-variable result: exactly one of Record or Failure is
// set.
type Outcome struct {
	Variable string
	Record   *ResultRecord
	Failure  *Failure
}

// Batch is the collected outcome of one regression run.
type Batch struct {
	RunID    string
	Controls Controls
	Outcomes []Outcome
}

// Records returns the successful records in candidate order.
func (b *Batch) Records() []ResultRecord {
	var out []ResultRecord
	for _, o := range b.Outcomes {
		if o.Record != nil {
			out = append(out, *o.Record)
		}
	}
	return out
}

// Failures returns the failed variables in candidate order.
func (b *Batch) Failures() []Failure {
	var out []Failure
	for _, o := range b.Outcomes {
		if o.Failure != nil {
			out = append(out, *o.Failure)
		}
	}
	return out
}
