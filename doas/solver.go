package doas

import (
	"math"

	"gonum.org/v1/gonum/mat"

	ppp "github.com/novacppp/novacppp"
)

const (
	defaultChiSqThreshold = 1e-4
	defaultMaxIterations  = 1000
	solarShiftMaxIterations = 5000
)

// nonlinearParam is one free or bounded (shift or squeeze) parameter the
// Levenberg-Marquardt loop optimizes.
type nonlinearParam struct {
	refIndex int
	isSqueeze bool // false: shift: true: squeeze
	low, high float64
	bounded   bool
}

func resolveNonlinear(window *ppp.FitWindow, x []float64, params []nonlinearParam) (shifts, squeezes []float64) {
	n := len(window.References)
	shifts = make([]float64, n)
	squeezes = make([]float64, n)
	for i := range squeezes {
		squeezes[i] = 1
	}

	for i, ref := range window.References {
		if ref.Shift.Kind == ppp.Fix {
			shifts[i] = ref.Shift.Value
		}
		if ref.Squeeze.Kind == ppp.Fix {
			squeezes[i] = ref.Squeeze.Value
		}
	}
	for j, p := range params {
		v := x[j]
		if p.bounded {
			if v < p.low {
				v = p.low
			}
			if v > p.high {
				v = p.high
			}
		}
		if p.isSqueeze {
			squeezes[p.refIndex] = v
		} else {
			shifts[p.refIndex] = v
		}
	}

	// Resolve Link parameters by following the chain to its target's
	// resolved value (spec.md §4.1: "a LINK ties one reference's
	// parameter... to another's").
	resolve := func(get func(int) (ppp.ParamPolicy, float64), set func(int, float64)) {
		for i, ref := range window.References {
			policy, _ := get(i)
			if policy.Kind != ppp.Link {
				continue
			}
			target := i
			for depth := 0; depth < 8; depth++ {
				idx := window.ReferenceIndex(policyTarget(window, target, get))
				if idx < 0 || idx == target {
					break
				}
				target = idx
				tp, _ := get(target)
				if tp.Kind != ppp.Link {
					break
				}
			}
			_, v := get(target)
			set(i, v)
			_ = ref
		}
	}
	resolve(
		func(i int) (ppp.ParamPolicy, float64) { return window.References[i].Shift, shifts[i] },
		func(i int, v float64) { shifts[i] = v },
	)
	resolve(
		func(i int) (ppp.ParamPolicy, float64) { return window.References[i].Squeeze, squeezes[i] },
		func(i int, v float64) { squeezes[i] = v },
	)

	return shifts, squeezes
}

func policyTarget(window *ppp.FitWindow, refIndex int, get func(int) (ppp.ParamPolicy, float64)) string {
	policy, _ := get(refIndex)
	return policy.LinkTarget
}

// resolveNonlinearErrors maps the LM solve's per-parameter standard errors
// (aligned like x/paramErr to the params slice built by buildParams) back
// onto each reference's shift/squeeze, mirroring resolveNonlinear's
// Fix/Free/Limit/Link handling: a Fix value carries no uncertainty, and a
// Link parameter inherits its target's error.
func resolveNonlinearErrors(window *ppp.FitWindow, paramErr []float64, params []nonlinearParam) (shiftErr, squeezeErr []float64) {
	n := len(window.References)
	shiftErr = make([]float64, n)
	squeezeErr = make([]float64, n)

	for j, p := range params {
		if j >= len(paramErr) {
			break
		}
		if p.isSqueeze {
			squeezeErr[p.refIndex] = paramErr[j]
		} else {
			shiftErr[p.refIndex] = paramErr[j]
		}
	}

	resolve := func(get func(int) ppp.ParamPolicy, err []float64) {
		for i := range window.References {
			if get(i).Kind != ppp.Link {
				continue
			}
			target := i
			for depth := 0; depth < 8; depth++ {
				idx := window.ReferenceIndex(get(target).LinkTarget)
				if idx < 0 || idx == target {
					break
				}
				target = idx
				if get(target).Kind != ppp.Link {
					break
				}
			}
			err[i] = err[target]
		}
	}
	resolve(func(i int) ppp.ParamPolicy { return window.References[i].Shift }, shiftErr)
	resolve(func(i int) ppp.ParamPolicy { return window.References[i].Squeeze }, squeezeErr)

	return shiftErr, squeezeErr
}

// jacobianAt finite-differences the residual vector at x, anchored to
// base (the linear solve already performed at x), the same construction
// the LM loop itself uses for its step direction.
func jacobianAt(window *ppp.FitWindow, target []float64, x []float64, params []nonlinearParam, base forwardResult) (*mat.Dense, error) {
	const h = 1e-4
	p := len(params)
	n := len(base.residual)
	jac := mat.NewDense(n, p, nil)
	for j := range params {
		xp := append([]float64(nil), x...)
		xp[j] += h
		s2, sq2 := resolveNonlinear(window, xp, params)
		perturbed, err := solveLinear(window, target, s2, sq2)
		if err != nil {
			return nil, err
		}
		for k := 0; k < n; k++ {
			jac.Set(k, j, (perturbed.residual[k]-base.residual[k])/h)
		}
	}
	return jac, nil
}

// nonlinearParamErrors derives each nonlinear parameter's standard error
// from the converged Jacobian's covariance (chiSquare * inverse(J^T J)),
// parallel to model.go's columnErr from cov.Inverse(ata).
func nonlinearParamErrors(jac *mat.Dense, chiSquare float64) []float64 {
	_, p := jac.Dims()
	jtj := mat.NewDense(p, p, nil)
	jtj.Mul(jac.T(), jac)

	paramErr := make([]float64, p)
	var cov mat.Dense
	if err := cov.Inverse(jtj); err == nil {
		for j := 0; j < p; j++ {
			v := cov.At(j, j) * chiSquare
			if v < 0 {
				v = 0
			}
			paramErr[j] = math.Sqrt(v)
		}
	}
	return paramErr
}

// nonlinearErrorsAt computes nonlinearParamErrors at x/current, returning
// an all-zero vector if the Jacobian can't be formed there (mirrors
// model.go's behaviour of leaving columnErr at zero when cov.Inverse
// fails) rather than failing the whole evaluation over an error estimate.
func nonlinearErrorsAt(window *ppp.FitWindow, target []float64, x []float64, params []nonlinearParam, current forwardResult) []float64 {
	if len(params) == 0 {
		return nil
	}
	jac, err := jacobianAt(window, target, x, params, current)
	if err != nil {
		return make([]float64, len(params))
	}
	return nonlinearParamErrors(jac, current.chiSquare)
}

func buildParams(window *ppp.FitWindow) []nonlinearParam {
	var params []nonlinearParam
	for i, ref := range window.References {
		switch ref.Shift.Kind {
		case ppp.Free:
			params = append(params, nonlinearParam{refIndex: i})
		case ppp.Limit:
			params = append(params, nonlinearParam{refIndex: i, bounded: true, low: ref.Shift.Low, high: ref.Shift.High})
		}
	}
	for i, ref := range window.References {
		switch ref.Squeeze.Kind {
		case ppp.Free:
			params = append(params, nonlinearParam{refIndex: i, isSqueeze: true})
		case ppp.Limit:
			params = append(params, nonlinearParam{refIndex: i, isSqueeze: true, bounded: true, low: ref.Squeeze.Low, high: ref.Squeeze.High})
		}
	}
	return params
}

func initialGuess(window *ppp.FitWindow, params []nonlinearParam) []float64 {
	x := make([]float64, len(params))
	for j, p := range params {
		if p.isSqueeze {
			x[j] = 1
		} else {
			x[j] = 0
		}
		ref := window.References[p.refIndex]
		policy := ref.Shift
		if p.isSqueeze {
			policy = ref.Squeeze
		}
		if policy.Kind == ppp.Limit && (x[j] < policy.Low || x[j] > policy.High) {
			x[j] = (policy.Low + policy.High) / 2
		}
	}
	return x
}

// evaluate runs the damped-Newton (Levenberg-Marquardt) loop of spec.md
// §4.1 over the nonlinear shift/squeeze parameters, using solveLinear for
// the per-iteration linear amplitude solve. maxIter and chiSqThreshold
// default to spec.md's 1000/1e-4 when zero.
func evaluate(window *ppp.FitWindow, target []float64, maxIter int, chiSqThreshold float64) (forwardResult, []float64, []nonlinearParam, []float64, int, error) {
	if maxIter <= 0 {
		maxIter = defaultMaxIterations
	}
	if chiSqThreshold <= 0 {
		chiSqThreshold = defaultChiSqThreshold
	}

	params := buildParams(window)
	x := initialGuess(window, params)

	shifts, squeezes := resolveNonlinear(window, x, params)
	current, err := solveLinear(window, target, shifts, squeezes)
	if err != nil {
		return forwardResult{}, nil, nil, nil, 0, err
	}

	if len(params) == 0 {
		return current, x, params, nil, 0, nil
	}

	lambda := 1e-3
	steps := 0

	for steps = 1; steps <= maxIter; steps++ {
		p := len(params)

		jac, err := jacobianAt(window, target, x, params, current)
		if err != nil {
			return current, x, params, nonlinearErrorsAt(window, target, x, params, current), steps, err
		}

		jtj := mat.NewDense(p, p, nil)
		jtj.Mul(jac.T(), jac)
		jtr := mat.NewVecDense(p, nil)
		r := mat.NewVecDense(len(current.residual), current.residual)
		jtr.MulVec(jac.T(), r)

		accepted := false
		for tries := 0; tries < 20 && !accepted; tries++ {
			damped := mat.NewDense(p, p, nil)
			damped.Copy(jtj)
			for i := 0; i < p; i++ {
				damped.Set(i, i, damped.At(i, i)*(1+lambda))
			}

			var delta mat.VecDense
			if err := delta.SolveVec(damped, jtr); err != nil {
				lambda *= 10
				continue
			}

			xNew := make([]float64, p)
			for j := range x {
				xNew[j] = x[j] - delta.AtVec(j)
			}

			s2, sq2 := resolveNonlinear(window, xNew, params)
			candidate, err := solveLinear(window, target, s2, sq2)
			if err != nil {
				lambda *= 10
				continue
			}

			if candidate.chiSquare < current.chiSquare {
				deltaChiSq := current.chiSquare - candidate.chiSquare
				x = xNew
				current = candidate
				lambda = math.Max(lambda/10, 1e-12)
				accepted = true
				if deltaChiSq < chiSqThreshold {
					return current, x, params, nonlinearErrorsAt(window, target, x, params, current), steps, nil
				}
			} else {
				lambda *= 10
			}
		}

		if !accepted {
			return current, x, params, nonlinearErrorsAt(window, target, x, params, current), steps, ErrNonConvergence
		}
	}

	return current, x, params, nonlinearErrorsAt(window, target, x, params, current), steps, ErrNonConvergence
}
