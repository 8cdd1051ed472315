package optimization

// Problem bundles a cost function, its constraint set, and the current best
// point. The optimizer reads the starting point from it and writes the
// winning candidate back on termination.
type Problem struct {
	cost          CostFunction
	constraint    Constraint
	currentValue  []float64
	functionValue float64
}

// NewProblem creates a problem with the given starting point.
func NewProblem(cost CostFunction, constraint Constraint, initialValue []float64) *Problem {
	start := make([]float64, len(initialValue))
	copy(start, initialValue)
	return &Problem{
		cost:         cost,
		constraint:   constraint,
		currentValue: start,
	}
}

// CostFunction returns the objective.
func (p *Problem) CostFunction() CostFunction {
	return p.cost
}

// Constraint returns the constraint set.
func (p *Problem) Constraint() Constraint {
	return p.constraint
}

// CurrentValue returns a copy of the current parameter point.
func (p *Problem) CurrentValue() []float64 {
	out := make([]float64, len(p.currentValue))
	copy(out, p.currentValue)
	return out
}

// FunctionValue returns the objective value at the current point.
func (p *Problem) FunctionValue() float64 {
	return p.functionValue
}

func (p *Problem) setCurrentValue(x []float64) {
	p.currentValue = make([]float64, len(x))
	copy(p.currentValue, x)
}

func (p *Problem) setFunctionValue(v float64) {
	p.functionValue = v
}
