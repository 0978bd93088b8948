package ppp

// PolicyKind is the tagged variant for how a DOAS fit parameter (column,
// shift or squeeze) is handled by the solver, replacing the integer
// "parameter mode" codes of the original implementation (see
// SPEC_FULL.md §"cross-cutting redesign guidance").
type PolicyKind int

const (
	// Free lets the solver determine the parameter with no bound.
	Free PolicyKind = iota
	// Fix clamps the parameter at Value for the whole fit.
	Fix
	// Limit bounds the parameter to [Low, High].
	Limit
	// Link ties the parameter to the same parameter of another
	// reference, named by LinkTarget.
	Link
)

// ParamPolicy describes how one fit parameter (column, shift or squeeze)
// of one Reference is treated by the solver.
type ParamPolicy struct {
	Kind       PolicyKind
	Value      float64 // used by Fix
	Low, High  float64 // used by Limit
	LinkTarget string  // used by Link: name of the reference it follows
}

// FixedPolicy returns a policy that fixes the parameter at v.
func FixedPolicy(v float64) ParamPolicy { return ParamPolicy{Kind: Fix, Value: v} }

// FreePolicy returns a policy that leaves the parameter unconstrained.
func FreePolicy() ParamPolicy { return ParamPolicy{Kind: Free} }

// LimitPolicy returns a policy that bounds the parameter to [low, high].
func LimitPolicy(low, high float64) ParamPolicy { return ParamPolicy{Kind: Limit, Low: low, High: high} }

// LinkPolicy returns a policy that ties the parameter to target's.
func LinkPolicy(target string) ParamPolicy { return ParamPolicy{Kind: Link, LinkTarget: target} }

// Reference is a discrete cross section resampled onto the measurement
// pixel grid, tagged with a species name and the three fitting-parameter
// policies spec.md §3 describes.
type Reference struct {
	Name string

	// CrossSection is the reference spectrum resampled to the
	// measurement grid (same length as the owning FitWindow's Length).
	CrossSection []float64

	Column  ParamPolicy
	Shift   ParamPolicy
	Squeeze ParamPolicy

	// IsFraunhofer marks the solar (Fraunhofer) reference used for
	// shift-only registration fits (spec.md §4.1 solar-shift mode).
	IsFraunhofer bool
}
