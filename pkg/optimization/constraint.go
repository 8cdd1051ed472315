package optimization

import (
	"fmt"
	"math"
)

// Constraint supplies the box bounds for a parameter point. The optimizer
// queries it once at the start of a run, at the starting point.
type Constraint interface {
	LowerBound(x []float64) []float64
	UpperBound(x []float64) []float64
}

// BoxConstraint is a fixed per-dimension box.
type BoxConstraint struct {
	Lower []float64
	Upper []float64
}

// NewBoxConstraint builds a box constraint, checking that the bound vectors
// agree in length and that every lower bound is below its upper bound.
func NewBoxConstraint(lower, upper []float64) (BoxConstraint, error) {
	if len(lower) != len(upper) {
		return BoxConstraint{}, fmt.Errorf("bound lengths differ (%d vs %d): %w",
			len(lower), len(upper), ErrConfiguration)
	}
	for i := range lower {
		if lower[i] > upper[i] {
			return BoxConstraint{}, fmt.Errorf("lower bound %v above upper bound %v at index %d: %w",
				lower[i], upper[i], i, ErrConfiguration)
		}
	}
	return BoxConstraint{Lower: lower, Upper: upper}, nil
}

// LowerBound implements Constraint.
func (b BoxConstraint) LowerBound(_ []float64) []float64 {
	out := make([]float64, len(b.Lower))
	copy(out, b.Lower)
	return out
}

// UpperBound implements Constraint.
func (b BoxConstraint) UpperBound(_ []float64) []float64 {
	out := make([]float64, len(b.Upper))
	copy(out, b.Upper)
	return out
}

// NoConstraint leaves every parameter unbounded. The Differential Evolution
// optimizer rejects it: it samples its initial population uniformly inside
// the box, so it requires finite bounds on every dimension.
type NoConstraint struct{}

// LowerBound implements Constraint.
func (NoConstraint) LowerBound(x []float64) []float64 {
	out := make([]float64, len(x))
	for i := range out {
		out[i] = math.Inf(-1)
	}
	return out
}

// UpperBound implements Constraint.
func (NoConstraint) UpperBound(x []float64) []float64 {
	out := make([]float64, len(x))
	for i := range out {
		out[i] = math.Inf(1)
	}
	return out
}
