package optimization

import (
	"fmt"
	"math"
)

// Reason identifies which termination criterion stopped a run.
type Reason int

const (
	// ReasonNone means no criterion has fired yet.
	ReasonNone Reason = iota
	// ReasonMaxIterations means the iteration budget was exhausted.
	ReasonMaxIterations
	// ReasonStationaryFunctionValue means the objective improvement stayed
	// below the epsilon for the configured number of generations.
	ReasonStationaryFunctionValue
)

// String implements fmt.Stringer.
func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonMaxIterations:
		return "max iterations"
	case ReasonStationaryFunctionValue:
		return "stationary function value"
	default:
		return fmt.Sprintf("reason(%d)", int(r))
	}
}

// EndCriteria tracks the stopping rules of an optimization run: a hard
// iteration budget and a stationary-function-value condition.
type EndCriteria struct {
	maxIterations                int
	maxStationaryStateIterations int
	functionEpsilon              float64
}

// NewEndCriteria builds the termination criteria.
func NewEndCriteria(maxIterations, maxStationaryStateIterations int, functionEpsilon float64) (*EndCriteria, error) {
	if maxIterations <= 0 {
		return nil, fmt.Errorf("max iterations (%d) must be positive: %w", maxIterations, ErrConfiguration)
	}
	if maxStationaryStateIterations <= 0 {
		return nil, fmt.Errorf("max stationary-state iterations (%d) must be positive: %w",
			maxStationaryStateIterations, ErrConfiguration)
	}
	if functionEpsilon < 0 {
		return nil, fmt.Errorf("function epsilon (%v) must not be negative: %w", functionEpsilon, ErrConfiguration)
	}
	return &EndCriteria{
		maxIterations:                maxIterations,
		maxStationaryStateIterations: maxStationaryStateIterations,
		functionEpsilon:              functionEpsilon,
	}, nil
}

// MaxIterations returns the iteration budget.
func (ec *EndCriteria) MaxIterations() int {
	return ec.maxIterations
}

// CheckMaxIterations reports whether the iteration budget is exhausted,
// recording the reason when it fires.
func (ec *EndCriteria) CheckMaxIterations(iteration int, reason *Reason) bool {
	if iteration < ec.maxIterations {
		return false
	}
	*reason = ReasonMaxIterations
	return true
}

// CheckStationaryFunctionValue reports whether the objective has been
// stationary (|fxNew - fxOld| < epsilon) for more than the configured number
// of consecutive generations. The caller owns the counter; it is reset on
// any sufficient improvement.
func (ec *EndCriteria) CheckStationaryFunctionValue(fxOld, fxNew float64, statIteration *int, reason *Reason) bool {
	if math.Abs(fxNew-fxOld) >= ec.functionEpsilon {
		*statIteration = 0
		return false
	}
	*statIteration++
	if *statIteration > ec.maxStationaryStateIterations {
		*reason = ReasonStationaryFunctionValue
		return true
	}
	return false
}
