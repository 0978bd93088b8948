package doas

import (
	"math"

	"gonum.org/v1/gonum/mat"

	ppp "github.com/novacppp/novacppp"
)

// linearUnknown is one column of the separable linear model: either a
// (possibly Link-merged) reference amplitude or a polynomial term.
type linearUnknown struct {
	refIndices []int // reference indices sharing this amplitude (Link group); empty for polynomial terms
	polyOrder  int
	isPoly     bool
}

// forwardResult is the outcome of one separable-least-squares evaluation
// at a fixed nonlinear parameter vector (shift/squeeze per reference).
type forwardResult struct {
	columns    []float64 // per-reference resolved column, indexed like window.References
	polyCoeffs []float64
	columnErr  []float64 // per-reference column standard error
	residual   []float64 // over the fit interval
	chiSquare  float64
	delta      float64
}

// solveLinear builds the design matrix for the current nonlinear
// parameters and solves the linear amplitudes by least squares (spec.md
// §4.1 "linear amplitudes solved by least squares at each iteration").
func solveLinear(window *ppp.FitWindow, target, shifts, squeezes []float64) (forwardResult, error) {
	lo, hi := window.Fit.Low, window.Fit.High
	n := hi - lo
	if n <= 0 || hi > len(target) {
		return forwardResult{}, ErrFitIntervalOutOfRange
	}

	fixedContribution := make([]float64, n)
	resolvedColumn := make([]float64, len(window.References))
	linked := map[int]bool{}

	var unknowns []linearUnknown
	for i, ref := range window.References {
		switch ref.Column.Kind {
		case ppp.Fix:
			resampled := resample(ref.CrossSection, shifts[i], squeezes[i])
			for k := 0; k < n; k++ {
				fixedContribution[k] += ref.Column.Value * resampled[lo+k]
			}
			resolvedColumn[i] = ref.Column.Value
		case ppp.Link:
			linked[i] = true
		default: // Free, Limit
			unknowns = append(unknowns, linearUnknown{refIndices: []int{i}})
		}
	}

	// Fold Link references into their target's unknown group so the
	// linked columns share a single solved amplitude.
	for i, ref := range window.References {
		if !linked[i] {
			continue
		}
		target := window.ReferenceIndex(ref.Column.LinkTarget)
		for u := range unknowns {
			if len(unknowns[u].refIndices) > 0 && unknowns[u].refIndices[0] == target {
				unknowns[u].refIndices = append(unknowns[u].refIndices, i)
			}
		}
	}

	for order := 0; order <= window.PolyOrder; order++ {
		unknowns = append(unknowns, linearUnknown{isPoly: true, polyOrder: order})
	}

	p := len(unknowns)
	a := mat.NewDense(n, p, nil)
	b := mat.NewVecDense(n, nil)

	centre := float64(n-1) / 2.0
	for k := 0; k < n; k++ {
		b.SetVec(k, target[lo+k]-fixedContribution[k])
	}

	for j, u := range unknowns {
		if u.isPoly {
			xn := 0.0
			for k := 0; k < n; k++ {
				if centre != 0 {
					xn = (float64(k) - centre) / centre
				} else {
					xn = 0
				}
				a.Set(k, j, math.Pow(xn, float64(u.polyOrder)))
			}
			continue
		}
		sum := make([]float64, n)
		for _, refIdx := range u.refIndices {
			resampled := resample(window.References[refIdx].CrossSection, shifts[refIdx], squeezes[refIdx])
			for k := 0; k < n; k++ {
				sum[k] += resampled[lo+k]
			}
		}
		for k := 0; k < n; k++ {
			a.Set(k, j, sum[k])
		}
	}

	var qr mat.QR
	qr.Factorize(a)

	var x mat.VecDense
	if err := qr.SolveVecTo(&x, false, b); err != nil {
		return forwardResult{}, ErrLinearAlgebra
	}

	residual := make([]float64, n)
	fitted := mat.NewVecDense(n, nil)
	fitted.MulVec(a, &x)
	sumSq := 0.0
	for k := 0; k < n; k++ {
		residual[k] = b.AtVec(k) - fitted.AtVec(k)
		sumSq += residual[k] * residual[k]
	}

	dof := n - p
	if dof < 1 {
		dof = 1
	}
	chiSquare := sumSq / float64(dof)
	delta := math.Sqrt(sumSq / float64(n))

	var cov mat.Dense
	ata := mat.NewDense(p, p, nil)
	ata.Mul(a.T(), a)
	err := cov.Inverse(ata)
	columnErrByUnknown := make([]float64, p)
	if err == nil {
		for j := 0; j < p; j++ {
			v := cov.At(j, j) * chiSquare
			if v < 0 {
				v = 0
			}
			columnErrByUnknown[j] = math.Sqrt(v)
		}
	}

	polyCoeffs := make([]float64, window.PolyOrder+1)
	columnErr := make([]float64, len(window.References))
	for j, u := range unknowns {
		if u.isPoly {
			polyCoeffs[u.polyOrder] = x.AtVec(j)
			continue
		}
		for _, refIdx := range u.refIndices {
			resolvedColumn[refIdx] = x.AtVec(j)
			columnErr[refIdx] = columnErrByUnknown[j]
		}
	}

	return forwardResult{
		columns:    resolvedColumn,
		polyCoeffs: polyCoeffs,
		columnErr:  columnErr,
		residual:   residual,
		chiSquare:  chiSquare,
		delta:      delta,
	}, nil
}
