// Package montecarlo implements the generic Longstaff-Schwartz least-squares
// regression used to estimate continuation values in Monte-Carlo pricing of
// early-exercise instruments.
package montecarlo

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/avestan/quantkit/pkg/statistics"
)

// NodeData carries the per-path state at one exercise date. The path
// simulator fills it in; the regression mutates CumulatedCashFlows during
// backward induction.
type NodeData struct {
	// Values holds the basis-function evaluations at this node.
	Values []float64
	// CumulatedCashFlows is the discounted cash flow accumulated from
	// later exercise dates.
	CumulatedCashFlows float64
	// ControlValue is an optional control-variate correction, zero if
	// unused.
	ControlValue float64
	// ExerciseValue is the payoff if the option is exercised at this node.
	ExerciseValue float64
	// IsValid reports whether the path reached this node un-terminated.
	IsValid bool
}

// LongstaffSchwartz runs the backward-induction regression over a simulation
// grid and returns the per-exercise-date basis coefficients together with
// the biased price estimate.
//
// The grid has one layer per exercise date plus a leading layer 0 holding
// cash flows accrued before the first exercise opportunity; each layer has
// one node per simulated path, with the same path order in every layer.
// Discounting across layers is assumed already folded into the cash-flow
// values. The grid is mutated in place: layer i-1 accumulates the exercise
// decision values of layer i, and after the call layer 0 holds the full
// deflated path values.
//
// For a grid with S layers and N basis functions the returned coefficient
// set has S-1 vectors of length N. A single-layer grid yields no
// coefficients and degenerates to the plain layer-0 mean.
func LongstaffSchwartz(simulationData [][]NodeData) ([][]float64, float64, error) {
	steps := len(simulationData)
	if steps == 0 {
		return nil, 0, fmt.Errorf("empty simulation grid: %w", statistics.ErrInsufficientData)
	}
	paths := len(simulationData[0])
	if paths == 0 {
		return nil, 0, fmt.Errorf("simulation grid has no paths: %w", statistics.ErrInsufficientData)
	}
	for i, layer := range simulationData {
		if len(layer) != paths {
			return nil, 0, fmt.Errorf("layer %d has %d paths, expected %d", i, len(layer), paths)
		}
	}

	basisCoefficients := make([][]float64, steps-1)

	for i := steps - 1; i != 0; i-- {
		exerciseData := simulationData[i]

		// covariance of basis values and deflated cash flows over the
		// valid paths only
		n := len(exerciseData[0].Values)
		stats, err := statistics.NewSequenceStats(n + 1)
		if err != nil {
			return nil, 0, err
		}

		row := make([]float64, n+1)
		for j := range exerciseData {
			if !exerciseData[j].IsValid {
				continue
			}
			if len(exerciseData[j].Values) != n {
				return nil, 0, fmt.Errorf("layer %d path %d has %d basis values, expected %d",
					i, j, len(exerciseData[j].Values), n)
			}
			copy(row, exerciseData[j].Values)
			row[n] = exerciseData[j].CumulatedCashFlows - exerciseData[j].ControlValue
			if err := stats.Add(row); err != nil {
				return nil, 0, err
			}
		}
		if stats.Samples() == 0 {
			return nil, 0, fmt.Errorf("layer %d has no valid paths: %w", i, statistics.ErrInsufficientData)
		}

		means, err := stats.Mean()
		if err != nil {
			return nil, 0, err
		}
		covariance, err := stats.Covariance()
		if err != nil {
			return nil, 0, fmt.Errorf("layer %d: %w", i, err)
		}

		// moment matrix C = cov + mean*mean' restricted to the basis
		// dimensions, target from the augmented dimension
		c := mat.NewSymDense(n, nil)
		target := mat.NewVecDense(n, nil)
		for k := 0; k < n; k++ {
			target.SetVec(k, covariance.At(k, n)+means[k]*means[n])
			for l := 0; l <= k; l++ {
				c.SetSym(k, l, covariance.At(k, l)+means[k]*means[l])
			}
		}

		alphas, err := solveLeastSquares(c, target)
		if err != nil {
			return nil, 0, fmt.Errorf("layer %d regression: %w", i, err)
		}
		basisCoefficients[i-1] = alphas

		// divide paths into exercise and non-exercise domains; exercise
		// paths roll their rebate back, the others roll the realized
		// continuation value
		for j := range exerciseData {
			if !exerciseData[j].IsValid {
				continue
			}
			exerciseValue := exerciseData[j].ExerciseValue
			continuationValue := exerciseData[j].CumulatedCashFlows
			estimatedContinuationValue := exerciseData[j].ControlValue
			for k, v := range exerciseData[j].Values {
				estimatedContinuationValue += v * alphas[k]
			}

			value := continuationValue
			if estimatedContinuationValue <= exerciseValue {
				value = exerciseValue
			}
			simulationData[i-1][j].CumulatedCashFlows += value
		}
	}

	estimate := statistics.NewStatistics()
	for j := range simulationData[0] {
		estimate.Add(simulationData[0][j].CumulatedCashFlows)
	}
	mean, err := estimate.Mean()
	if err != nil {
		return nil, 0, err
	}
	return basisCoefficients, mean, nil
}

// solveLeastSquares solves C*alpha ~= target by SVD, returning the
// minimum-norm least-squares solution when C is rank deficient.
func solveLeastSquares(c *mat.SymDense, target *mat.VecDense) ([]float64, error) {
	n, _ := c.Dims()

	var svd mat.SVD
	if ok := svd.Factorize(c, mat.SVDThin); !ok {
		return nil, fmt.Errorf("SVD factorization failed")
	}

	values := svd.Values(nil)
	tol := float64(n) * 1e-15 * values[0]
	rank := 0
	for _, sv := range values {
		if sv > tol {
			rank++
		}
	}
	if rank == 0 {
		// zero moment matrix: the minimum-norm solution is zero
		return make([]float64, n), nil
	}

	var alpha mat.VecDense
	svd.SolveVecTo(&alpha, target, rank)

	out := make([]float64, n)
	for k := 0; k < n; k++ {
		v := alpha.AtVec(k)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("non-finite regression coefficient at index %d", k)
		}
		out[k] = v
	}
	return out, nil
}
