package statistics

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// SequenceStats accumulates vector-valued samples of a fixed dimension and
// estimates the per-component mean and the sample covariance matrix.
type SequenceStats struct {
	dim  int
	data []float64 // row-major sample storage
	n    int
}

// NewSequenceStats creates an accumulator for samples of the given dimension.
func NewSequenceStats(dim int) (*SequenceStats, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("sequence dimension (%d) must be positive", dim)
	}
	return &SequenceStats{dim: dim}, nil
}

// Dim returns the sample dimension.
func (sq *SequenceStats) Dim() int {
	return sq.dim
}

// Samples returns the number of samples collected.
func (sq *SequenceStats) Samples() int {
	return sq.n
}

// Add appends one sample. The sample length must match the configured
// dimension.
func (sq *SequenceStats) Add(values []float64) error {
	if len(values) != sq.dim {
		return fmt.Errorf("sample dimension %d does not match accumulator dimension %d", len(values), sq.dim)
	}
	sq.data = append(sq.data, values...)
	sq.n++
	return nil
}

// Mean returns the per-component arithmetic mean.
func (sq *SequenceStats) Mean() ([]float64, error) {
	if sq.n == 0 {
		return nil, fmt.Errorf("empty sample set: %w", ErrInsufficientData)
	}
	mean := make([]float64, sq.dim)
	col := make([]float64, sq.n)
	for k := 0; k < sq.dim; k++ {
		for j := 0; j < sq.n; j++ {
			col[j] = sq.data[j*sq.dim+k]
		}
		mean[k] = stat.Mean(col, nil)
	}
	return mean, nil
}

// Covariance returns the unbiased sample covariance matrix.
func (sq *SequenceStats) Covariance() (*mat.SymDense, error) {
	if sq.n <= 1 {
		return nil, fmt.Errorf("sample number <= 1: %w", ErrInsufficientData)
	}
	x := mat.NewDense(sq.n, sq.dim, sq.data)
	cov := mat.NewSymDense(sq.dim, nil)
	stat.CovarianceMatrix(cov, x, nil)
	return cov, nil
}
