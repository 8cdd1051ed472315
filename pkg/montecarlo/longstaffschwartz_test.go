package montecarlo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avestan/quantkit/pkg/statistics"
)

// grid2Layer builds a one-exercise grid: layer 0 accrues the rolled-back
// values, layer 1 carries the given continuation and exercise values with a
// constant basis function.
func grid2Layer(continuations, exercises []float64) [][]NodeData {
	paths := len(continuations)
	layer0 := make([]NodeData, paths)
	layer1 := make([]NodeData, paths)
	for j := 0; j < paths; j++ {
		layer0[j] = NodeData{IsValid: true}
		layer1[j] = NodeData{
			Values:             []float64{1.0},
			CumulatedCashFlows: continuations[j],
			ExerciseValue:      exercises[j],
			IsValid:            true,
		}
	}
	return [][]NodeData{layer0, layer1}
}

func TestLongstaffSchwartz_NoExerciseMeansContinuationMean(t *testing.T) {
	grid := grid2Layer([]float64{1.0, 2.0, 3.0}, []float64{0.0, 0.0, 0.0})

	coeffs, estimate, err := LongstaffSchwartz(grid)
	require.NoError(t, err)

	// exercise value is uniformly below the estimated continuation value,
	// so every path continues and the estimate is the continuation mean
	assert.InDelta(t, 2.0, estimate, 1e-12)
	require.Len(t, coeffs, 1)
	require.Len(t, coeffs[0], 1)
	assert.InDelta(t, 2.0, coeffs[0][0], 1e-12, "constant-basis coefficient is the continuation mean")
}

func TestLongstaffSchwartz_ExerciseDominates(t *testing.T) {
	grid := grid2Layer([]float64{1.0, 2.0, 3.0}, []float64{10.0, 10.0, 10.0})

	_, estimate, err := LongstaffSchwartz(grid)
	require.NoError(t, err)

	// estimated continuation (2.0) <= exercise (10.0) on every path, so
	// the rebate rolls back instead of the realized continuation
	assert.InDelta(t, 10.0, estimate, 1e-12)
}

func TestLongstaffSchwartz_CoefficientShape(t *testing.T) {
	const paths = 6
	states := []float64{0.8, 0.9, 1.0, 1.1, 1.2, 1.3}

	grid := make([][]NodeData, 3)
	for i := range grid {
		grid[i] = make([]NodeData, paths)
		for j := 0; j < paths; j++ {
			node := NodeData{IsValid: true}
			if i > 0 {
				node.Values = []float64{1.0, states[j] * float64(i)}
				node.CumulatedCashFlows = states[j] + 0.1*float64(i)
				node.ExerciseValue = -1.0 // never optimal
			}
			grid[i][j] = node
		}
	}

	coeffs, _, err := LongstaffSchwartz(grid)
	require.NoError(t, err)

	require.Len(t, coeffs, 2, "S layers yield S-1 coefficient vectors")
	for _, c := range coeffs {
		assert.Len(t, c, 2, "one coefficient per basis function")
	}
}

func TestLongstaffSchwartz_ZeroValidLayerFails(t *testing.T) {
	grid := grid2Layer([]float64{1.0, 2.0}, []float64{0.0, 0.0})
	grid[1][0].IsValid = false
	grid[1][1].IsValid = false

	_, _, err := LongstaffSchwartz(grid)
	assert.ErrorIs(t, err, statistics.ErrInsufficientData)
}

func TestLongstaffSchwartz_InvalidPathsAreSkipped(t *testing.T) {
	grid := grid2Layer([]float64{1.0, 2.0, 3.0, 100.0}, []float64{0.0, 0.0, 0.0, 0.0})
	grid[1][3].IsValid = false

	coeffs, estimate, err := LongstaffSchwartz(grid)
	require.NoError(t, err)

	// the dead path contributes neither to the regression nor to the
	// rolled-back cash flows; layer 0 ends as [1, 2, 3, 0]
	assert.InDelta(t, 2.0, coeffs[0][0], 1e-12)
	assert.InDelta(t, 6.0/4.0, estimate, 1e-12)
}

func TestLongstaffSchwartz_SingleLayerDegeneratesToMean(t *testing.T) {
	layer0 := []NodeData{
		{CumulatedCashFlows: 4.0, IsValid: true},
		{CumulatedCashFlows: 8.0, IsValid: true},
	}

	coeffs, estimate, err := LongstaffSchwartz([][]NodeData{layer0})
	require.NoError(t, err)
	assert.Empty(t, coeffs)
	assert.InDelta(t, 6.0, estimate, 1e-12)
}

func TestLongstaffSchwartz_RankDeficientBasis(t *testing.T) {
	// two identical basis functions: the moment matrix is singular and the
	// solver must return the minimum-norm solution instead of failing
	grid := grid2Layer([]float64{1.0, 2.0, 3.0}, []float64{0.0, 0.0, 0.0})
	for j := range grid[1] {
		grid[1][j].Values = []float64{1.0, 1.0}
	}

	coeffs, estimate, err := LongstaffSchwartz(grid)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, estimate, 1e-12)
	require.Len(t, coeffs[0], 2)
	assert.InDelta(t, coeffs[0][0], coeffs[0][1], 1e-9, "minimum-norm solution splits collinear weights evenly")
}

func TestLongstaffSchwartz_ControlVariateOffset(t *testing.T) {
	grid := grid2Layer([]float64{1.0, 2.0, 3.0}, []float64{0.0, 0.0, 0.0})
	for j := range grid[1] {
		grid[1][j].ControlValue = 0.5
	}

	// the regression target is cashflows - control, and the estimated
	// continuation adds the control back; the decision and the rolled-back
	// values are unchanged
	_, estimate, err := LongstaffSchwartz(grid)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, estimate, 1e-12)
}

func TestLongstaffSchwartz_EmptyGrid(t *testing.T) {
	_, _, err := LongstaffSchwartz(nil)
	assert.ErrorIs(t, err, statistics.ErrInsufficientData)

	_, _, err = LongstaffSchwartz([][]NodeData{{}})
	assert.ErrorIs(t, err, statistics.ErrInsufficientData)
}
