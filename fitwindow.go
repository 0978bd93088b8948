package ppp

// FitMode is the preconditioning strategy applied to sky and measurement
// spectra before the nonlinear solve (spec.md §4.1).
type FitMode int

const (
	HpDiv FitMode = iota
	HpSub
	Poly
	NoPrecondition
)

func (m FitMode) String() string {
	switch m {
	case HpDiv:
		return "HP_DIV"
	case HpSub:
		return "HP_SUB"
	case Poly:
		return "POLY"
	default:
		return "none"
	}
}

// ChannelRange is a half-open channel interval [Low, High).
type ChannelRange struct {
	Low, High int
}

// Width returns High-Low.
func (c ChannelRange) Width() int { return c.High - c.Low }

// FitWindow is the ordered configuration for one DOAS solve: which
// references to fit, the polynomial order, the fit interval, the expected
// spectrum length and preconditioning mode (spec.md §3).
type FitWindow struct {
	Name string

	References []Reference

	PolyOrder int
	Fit       ChannelRange
	Length    int
	Mode      FitMode

	// FraunhoferIndex, if >= 0, names the index into References of the
	// solar reference used for shift-only fitting. -1 means none
	// configured.
	FraunhoferIndex int

	// UV marks that the offset-removal band is the lower part of the
	// spectrum rather than the upper (spec.md §4.1 preconditioning).
	UV bool

	// Convergence thresholds; zero values mean "use the package default"
	// (1e-4 / 1000 iterations per spec.md §4.1).
	ChiSqThreshold float64
	MaxIterations  int

	// Quality-judgment thresholds (spec.md §4.1 "Quality judgment").
	ChiSqOkThreshold float64
	DeltaThreshold   float64
	SaturationMin    float64
	SaturationMax    float64
}

// ReferenceIndex returns the index of the reference named name, or -1.
func (w *FitWindow) ReferenceIndex(name string) int {
	for i := range w.References {
		if w.References[i].Name == name {
			return i
		}
	}
	return -1
}
