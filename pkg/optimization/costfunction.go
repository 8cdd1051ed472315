package optimization

// CostFunction is the objective supplied by the caller. Value may fail;
// the optimizer recovers from failures locally by assigning the candidate a
// worst-possible cost, so a failing point never aborts a run.
type CostFunction interface {
	Value(x []float64) (float64, error)
}

// CostFunc adapts a plain function to the CostFunction interface.
type CostFunc func(x []float64) (float64, error)

// Value implements CostFunction.
func (f CostFunc) Value(x []float64) (float64, error) {
	return f(x)
}
