package regress

import (
	"context"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/exporter-premium/internal/table"
)

// Runner fits the regression battery over a fixed candidate list.
type Runner struct {
	candidates  []string
	cols        Columns
	opts        Options
	concurrency int
}

// NewRunner creates a Runner. concurrency below 1 runs variables serially.
func NewRunner(candidates []string, cols Columns, opts Options, concurrency int) *Runner {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Runner{
		candidates:  append([]string(nil), candidates...),
		cols:        cols,
		opts:        opts,
		concurrency: concurrency,
	}
}

// Candidates returns the dependent variables for the given controls. The
// employment column is an outcome only when it is not used as a control.
func (r *Runner) Candidates(c Controls) []string {
	out := make([]string, 0, len(r.candidates))
	for _, v := range r.candidates {
		if c.EmploymentControl && v == r.cols.Employment {
			continue
		}
		out = append(out, v)
	}
	return out
}

// Run fits one model per candidate variable. Structural column problems
// abort the batch with an error wrapping ErrMissingColumn; every other
// failure is recorded on its Outcome and the batch continues.
func (r *Runner) Run(ctx context.Context, tbl *table.Table, c Controls) (*Batch, error) {
	if err := CheckColumns(tbl, r.cols, c); err != nil {
		return nil, err
	}

	batch := &Batch{RunID: uuid.New().String(), Controls: c}
	log := zap.L().With(
		zap.String("component", "regress.runner"),
		zap.String("run_id", batch.RunID),
	)

	vars := r.Candidates(c)
	batch.Outcomes = make([]Outcome, len(vars))

	log.Info("starting regression battery",
		zap.Int("variables", len(vars)),
		zap.Bool("industry_dummies", c.IndustryDummies),
		zap.Bool("employment_control", c.EmploymentControl),
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, v := range vars {
		g.Go(func() error {
			if gCtx.Err() != nil {
				return eris.Wrap(gCtx.Err(), "regress: run cancelled")
			}

			rec, err := r.RunOne(tbl, Spec{DependentVariable: v, Controls: c})
			if err != nil {
				f := &Failure{Variable: v, Reason: ReasonFor(err), Err: err}
				batch.Outcomes[i] = Outcome{Variable: v, Failure: f}
				log.Warn("regression failed",
					zap.String("variable", v),
					zap.String("reason", string(f.Reason)),
					zap.Error(err),
				)
				return nil // don't abort batch on individual failure
			}
			batch.Outcomes[i] = Outcome{Variable: v, Record: rec}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.Info("regression battery complete",
		zap.Int("total", len(vars)),
		zap.Int("succeeded", len(batch.Records())),
		zap.Int("failed", len(batch.Failures())),
	)
	return batch, nil
}

// RunOne builds the design matrix and fits a single specification. Panics
// from the linear algebra layer are returned as errors.
func (r *Runner) RunOne(tbl *table.Table, spec Spec) (rec *ResultRecord, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = eris.Errorf("regress: panic fitting %q: %v", spec.DependentVariable, p)
		}
	}()

	dm, err := Build(tbl, spec, r.cols, r.opts)
	if err != nil {
		return nil, err
	}

	zap.L().Debug("design matrix built",
		zap.String("variable", spec.DependentVariable),
		zap.Int("observations", dm.NumObs()),
		zap.Int("variables", dm.NumVars()),
		zap.Int("dropped", dm.Dropped),
	)

	fit, err := OLS(dm.X, dm.Y)
	if err != nil {
		return nil, eris.Wrapf(err, "regress: fit %q", spec.DependentVariable)
	}

	out := NewResultRecord(spec.DependentVariable, dm, fit)
	return &out, nil
}
