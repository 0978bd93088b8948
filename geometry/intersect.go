package geometry

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ErrParallelSightLines is returned when two sight lines are (near-)
// parallel in the horizontal plane and have no meaningful intersection
// (spec.md §8 boundary behavior).
var ErrParallelSightLines = errors.New("geometry: sight lines are parallel")

// maxHitDistance is the closest-approach distance below which two rays
// that do not exactly meet are still accepted as intersecting (spec.md
// §4.4, flagged as a tunable in §9 open questions).
const maxHitDistance = 40.0

// ray is a parametrized line p + t*d, d assumed non-zero.
type ray struct {
	origin    Vector3
	direction Vector3
}

// closestApproach finds the two points (one on each ray) of closest
// approach via the standard cross-product/determinant formulation, and
// reports their midpoint if the approach distance is within
// maxHitDistance (spec.md §4.4 "Intersection of two rays").
func closestApproach(r1, r2 ray) (point Vector3, approachDistance float64, ok bool) {
	w0 := r1.origin.Sub(r2.origin)
	a := r1.direction.Dot(r1.direction)
	b := r1.direction.Dot(r2.direction)
	c := r2.direction.Dot(r2.direction)
	d := r1.direction.Dot(w0)
	e := r2.direction.Dot(w0)

	lhs := mat.NewDense(2, 2, []float64{a, -b, b, -c})
	rhs := mat.NewVecDense(2, []float64{d, e})
	var st mat.VecDense
	if err := st.SolveVec(lhs, rhs); err != nil {
		return Vector3{}, 0, false
	}
	s, t := st.AtVec(0), st.AtVec(1)

	p1 := r1.origin.Add(r1.direction.Scale(s))
	p2 := r2.origin.Add(r2.direction.Scale(t))

	approachDistance = p1.Sub(p2).Norm()
	if approachDistance > maxHitDistance {
		return Vector3{}, approachDistance, false
	}

	point = p1.Add(p2).Scale(0.5)
	return point, approachDistance, true
}

// horizontalParallel reports whether two directions are parallel when
// projected onto the horizontal (X, Y) plane.
func horizontalParallel(d1, d2 Vector3) bool {
	cross := d1.X*d2.Y - d1.Y*d2.X
	n1 := math.Hypot(d1.X, d1.Y)
	n2 := math.Hypot(d2.X, d2.Y)
	if n1 == 0 || n2 == 0 {
		return true
	}
	return math.Abs(cross)/(n1*n2) < 1e-6
}
