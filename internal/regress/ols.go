package regress

import (
	"math"

	"github.com/rotisserie/eris"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// maxCondition is the largest condition number of XᵀX accepted as full rank.
const maxCondition = 1e13

// degenerateTol bounds the centered sum of squares, relative to the raw sum
// of squares, below which the outcome is treated as constant.
const degenerateTol = 1e-20

// Fit holds OLS estimates and the usual diagnostics.
type Fit struct {
	Params    []float64
	StdErrors []float64
	TValues   []float64
	PValues   []float64

	RSquared    float64
	AdjRSquared float64
	FStatistic  float64
	FPValue     float64

	NObs    int
	NParams int
	DFModel float64
	DFResid float64
	SSR     float64
	TSS     float64
}

// OLS fits y = Xβ + ε by the normal equations. X must have full column rank
// and more rows than columns. If X contains a column of ones the centered
// total sum of squares is used for R² and the F-test; otherwise the
// uncentered one.
//
// A constant outcome with an intercept in X is an exact fit: slopes are 0,
// R² and F are 0, and every p-value is 1.
func OLS(x *mat.Dense, y []float64) (*Fit, error) {
	n, k := x.Dims()
	if n == 0 {
		return nil, ErrNoObservations
	}
	if len(y) != n {
		return nil, eris.Errorf("regress: X has %d rows but y has %d values", n, len(y))
	}
	if n <= k {
		return nil, eris.Wrapf(ErrTooFewObs, "%d observations for %d regressors", n, k)
	}

	var xtx mat.SymDense
	xtx.SymOuterK(1, x.T())

	var chol mat.Cholesky
	if ok := chol.Factorize(&xtx); !ok {
		return nil, eris.Wrap(ErrSingularMatrix, "cholesky factorization failed")
	}
	if c := chol.Cond(); c > maxCondition || math.IsInf(c, 0) || math.IsNaN(c) {
		return nil, eris.Wrapf(ErrSingularMatrix, "condition number %.3g", c)
	}

	yv := mat.NewVecDense(n, append([]float64(nil), y...))
	var xty mat.VecDense
	xty.MulVec(x.T(), yv)

	var beta mat.VecDense
	if err := chol.SolveVecTo(&beta, &xty); err != nil {
		return nil, eris.Wrap(ErrSingularMatrix, err.Error())
	}

	intercept := interceptColumn(x)

	var sumSq, mean float64
	for _, v := range y {
		sumSq += v * v
		mean += v
	}
	mean /= float64(n)

	tss := sumSq
	if intercept >= 0 {
		tss = 0
		for _, v := range y {
			tss += (v - mean) * (v - mean)
		}
	}
	degenerate := intercept >= 0 && (tss == 0 || tss <= degenerateTol*sumSq)

	params := make([]float64, k)
	if degenerate {
		params[intercept] = mean
		tss = 0
	} else {
		for j := range params {
			params[j] = beta.AtVec(j)
		}
	}

	var ssr float64
	if !degenerate {
		var fitted mat.VecDense
		fitted.MulVec(x, mat.NewVecDense(k, params))
		for i, v := range y {
			r := v - fitted.AtVec(i)
			ssr += r * r
		}
	}

	dfResid := float64(n - k)
	dfModel := float64(k)
	if intercept >= 0 {
		dfModel = float64(k - 1)
	}

	fit := &Fit{
		Params:    params,
		StdErrors: make([]float64, k),
		TValues:   make([]float64, k),
		PValues:   make([]float64, k),
		NObs:      n,
		NParams:   k,
		DFModel:   dfModel,
		DFResid:   dfResid,
		SSR:       ssr,
		TSS:       tss,
	}

	var inv mat.SymDense
	if err := chol.InverseTo(&inv); err != nil {
		return nil, eris.Wrap(ErrSingularMatrix, err.Error())
	}
	sigma2 := ssr / dfResid
	tdist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: dfResid}
	for j := 0; j < k; j++ {
		se := math.Sqrt(sigma2 * inv.At(j, j))
		fit.StdErrors[j] = se
		if se == 0 {
			fit.TValues[j] = 0
			fit.PValues[j] = 1
			continue
		}
		t := params[j] / se
		fit.TValues[j] = t
		fit.PValues[j] = 2 * tdist.CDF(-math.Abs(t))
	}

	if degenerate {
		fit.RSquared = 0
	} else {
		fit.RSquared = 1 - ssr/tss
	}
	adjN := float64(n)
	if intercept >= 0 {
		adjN = float64(n - 1)
	}
	fit.AdjRSquared = 1 - (1-fit.RSquared)*adjN/dfResid

	ess := tss - ssr
	switch {
	case dfModel == 0:
		fit.FStatistic = math.NaN()
		fit.FPValue = math.NaN()
	case degenerate || ess <= 0:
		fit.FStatistic = 0
		fit.FPValue = 1
	case ssr == 0:
		fit.FStatistic = math.Inf(1)
		fit.FPValue = 0
	default:
		fit.FStatistic = (ess / dfModel) / (ssr / dfResid)
		fdist := distuv.F{D1: dfModel, D2: dfResid}
		fit.FPValue = 1 - fdist.CDF(fit.FStatistic)
	}

	return fit, nil
}

// interceptColumn returns the index of the first all-ones column, or -1.
func interceptColumn(x *mat.Dense) int {
	n, k := x.Dims()
	for j := 0; j < k; j++ {
		ones := true
		for i := 0; i < n; i++ {
			if x.At(i, j) != 1 {
				ones = false
				break
			}
		}
		if ones {
			return j
		}
	}
	return -1
}
