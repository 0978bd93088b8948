package doas

import (
	"math"

	ppp "github.com/novacppp/novacppp"
)

// binomialKernel builds a normalized taps-length binomial (approximately
// Gaussian) smoothing kernel by repeated self-convolution of [1, 1],
// matching the "500-tap binomial kernel" preconditioning filter of
// spec.md §4.1.
func binomialKernel(taps int) []float64 {
	kernel := []float64{1}
	for len(kernel) < taps {
		next := make([]float64, len(kernel)+1)
		for i := range kernel {
			next[i] += kernel[i]
			next[i+1] += kernel[i]
		}
		kernel = next
	}

	sum := 0.0
	for _, v := range kernel {
		sum += v
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

var defaultBinomialKernel = binomialKernel(500)

// lowPass convolves data with the package binomial kernel, reflecting at
// the edges so the output has the same length as the input.
func lowPass(data []float64, kernel []float64) []float64 {
	n := len(data)
	k := len(kernel)
	half := k / 2
	out := make([]float64, n)

	at := func(i int) float64 {
		if i < 0 {
			i = -i
		}
		if i >= n {
			i = 2*n - i - 2
		}
		if i < 0 || i >= n {
			return 0
		}
		return data[i]
	}

	for i := 0; i < n; i++ {
		sum := 0.0
		for j := 0; j < k; j++ {
			sum += kernel[j] * at(i-half+j)
		}
		out[i] = sum
	}
	return out
}

// highPass returns data minus its low-pass-filtered version, the
// "high-pass both with a 500-tap binomial kernel" step of spec.md §4.1.
func highPass(data []float64) []float64 {
	low := lowPass(data, defaultBinomialKernel)
	out := make([]float64, len(data))
	for i := range data {
		out[i] = data[i] - low[i]
	}
	return out
}

// offsetBand returns the [lo, hi) channel band averaged to estimate the
// instrument offset: the lower band in UV mode, the upper band
// otherwise (spec.md §4.1 "Offset removal").
func offsetBand(n int, uv bool) (lo, hi int) {
	band := n / 10
	if band < 1 {
		band = 1
	}
	if uv {
		return 0, band
	}
	return n - band, n
}

// removeOffset subtracts the mean of the offset band from the whole
// spectrum and returns the offset value that was removed.
func removeOffset(data []float64, uv bool) (out []float64, offset float64) {
	lo, hi := offsetBand(len(data), uv)
	sum := 0.0
	for i := lo; i < hi; i++ {
		sum += data[i]
	}
	offset = sum / float64(hi-lo)

	out = make([]float64, len(data))
	for i, v := range data {
		out[i] = v - offset
	}
	return out, offset
}

func logVector(data []float64) []float64 {
	out := make([]float64, len(data))
	for i, v := range data {
		if v <= 0 {
			v = 1e-12
		}
		out[i] = math.Log(v)
	}
	return out
}

// Precondition folds the sky spectrum into the measured spectrum
// according to the fit window's mode, returning the vector the solver
// fits references against (spec.md §4.1 "Preconditioning"). It is run
// once per new sky spectrum and again for every measurement, exactly as
// spec.md describes; callers re-invoke it per measurement with the same
// (preconditioned once) sky input.
func Precondition(measured, sky []float64, mode ppp.FitMode, uv bool) []float64 {
	switch mode {
	case ppp.HpSub:
		m, _ := removeOffset(measured, uv)
		s, _ := removeOffset(sky, uv)
		m = highPass(logVector(m))
		s = highPass(logVector(s))
		out := make([]float64, len(m))
		for i := range m {
			out[i] = m[i] - s[i]
		}
		return out

	case ppp.HpDiv:
		m, _ := removeOffset(measured, uv)
		s, _ := removeOffset(sky, uv)
		ratio := make([]float64, len(m))
		for i := range m {
			denom := s[i]
			if denom == 0 {
				denom = 1e-12
			}
			ratio[i] = m[i] / denom
		}
		return highPass(ratio)

	case ppp.Poly:
		m, _ := removeOffset(measured, uv)
		s, _ := removeOffset(sky, uv)
		lm := logVector(m)
		ls := logVector(s)
		out := make([]float64, len(m))
		for i := range m {
			out[i] = -(lm[i] - ls[i])
		}
		return out

	default: // ppp.NoPrecondition
		out := make([]float64, len(measured))
		copy(out, measured)
		return out
	}
}
