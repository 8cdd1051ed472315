package calibration

import (
	"errors"
	"fmt"
	"math"
)

// ErrNoBracket is returned when the objective has the same sign at both ends
// of the search interval.
var ErrNoBracket = errors.New("root is not bracketed")

// Solver1D finds a root of f inside [min, max] to the given accuracy,
// starting from guess.
type Solver1D interface {
	Solve(f func(float64) float64, accuracy, guess, min, max float64) (float64, error)
}

// maximum bisection halvings; enough for any double-precision interval
const maxSolverIterations = 200

// Bisection is a plain bracketing bisection solver. Slow but unconditionally
// convergent, which is what the implied-vol inversion wants.
type Bisection struct{}

// Solve implements Solver1D.
func (Bisection) Solve(f func(float64) float64, accuracy, guess, min, max float64) (float64, error) {
	if min >= max {
		return 0, fmt.Errorf("interval [%v, %v] is empty: %w", min, max, ErrConfiguration)
	}
	if accuracy <= 0 {
		return 0, fmt.Errorf("accuracy (%v) must be positive: %w", accuracy, ErrConfiguration)
	}
	if guess < min || guess > max {
		return 0, fmt.Errorf("guess %v outside [%v, %v]: %w", guess, min, max, ErrConfiguration)
	}

	fMin := f(min)
	if fMin == 0 {
		return min, nil
	}
	fMax := f(max)
	if fMax == 0 {
		return max, nil
	}
	if fMin*fMax > 0 {
		return 0, fmt.Errorf("f(%v)=%v and f(%v)=%v: %w", min, fMin, max, fMax, ErrNoBracket)
	}

	lo, hi := min, max
	for i := 0; i < maxSolverIterations; i++ {
		mid := 0.5 * (lo + hi)
		fMid := f(mid)
		if fMid == 0 || hi-lo < accuracy {
			return mid, nil
		}
		if math.Signbit(fMid) == math.Signbit(fMin) {
			lo, fMin = mid, fMid
		} else {
			hi = mid
		}
	}
	return 0.5 * (lo + hi), nil
}
