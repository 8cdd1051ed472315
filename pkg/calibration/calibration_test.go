package calibration

import (
	"fmt"
	"math"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// linearPricer is monotone in vol, so every implied vol is exact: the price
// 10*vol inverts to vol = price/10.
var linearPricer = BlackPriceFunc(func(vol float64) (float64, error) {
	return 10.0 * vol, nil
})

func newTestHelper(t *testing.T, measure ErrorMeasure, volType VolatilityType) *Helper {
	t.Helper()
	h, err := NewHelper(0.2, linearPricer, Bisection{}, measure, volType, zerolog.Nop())
	require.NoError(t, err)
	return h
}

func TestNewHelper_Validation(t *testing.T) {
	_, err := NewHelper(0, linearPricer, Bisection{}, PriceError, ShiftedLognormal, zerolog.Nop())
	assert.ErrorIs(t, err, ErrConfiguration)

	_, err = NewHelper(0.2, nil, Bisection{}, PriceError, ShiftedLognormal, zerolog.Nop())
	assert.ErrorIs(t, err, ErrConfiguration)

	_, err = NewHelper(0.2, linearPricer, nil, ImpliedVolError, ShiftedLognormal, zerolog.Nop())
	assert.ErrorIs(t, err, ErrConfiguration)

	// price/relative measures never invert, so no solver is needed
	_, err = NewHelper(0.2, linearPricer, nil, PriceError, ShiftedLognormal, zerolog.Nop())
	assert.NoError(t, err)
}

func TestNewHelper_PricerFailureSurfaces(t *testing.T) {
	failing := BlackPriceFunc(func(vol float64) (float64, error) {
		return 0, fmt.Errorf("no quote")
	})
	_, err := NewHelper(0.2, failing, Bisection{}, PriceError, ShiftedLognormal, zerolog.Nop())
	assert.ErrorIs(t, err, ErrPricer)
}

func TestHelper_MarketValue(t *testing.T) {
	h := newTestHelper(t, PriceError, ShiftedLognormal)
	assert.Equal(t, 0.2, h.MarketVolatility())
	assert.InDelta(t, 2.0, h.MarketValue(), 1e-15)
}

func TestHelper_PriceError(t *testing.T) {
	h := newTestHelper(t, PriceError, ShiftedLognormal)

	e, err := h.CalibrationError(2.5)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, e, 1e-15)

	e, err = h.CalibrationError(2.0)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, e, 1e-15)
}

func TestHelper_RelativePriceError(t *testing.T) {
	h := newTestHelper(t, RelativePriceError, ShiftedLognormal)

	e, err := h.CalibrationError(3.0)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, e, 1e-15)

	e, err = h.CalibrationError(1.0)
	require.NoError(t, err)
	assert.InDelta(t, -0.5, e, 1e-15)
}

func TestHelper_ImpliedVolError(t *testing.T) {
	h := newTestHelper(t, ImpliedVolError, ShiftedLognormal)

	// model price 5.0 implies vol 0.5 under the linear pricer
	e, err := h.CalibrationError(5.0)
	require.NoError(t, err)
	assert.InDelta(t, 0.3, e, 1e-9)

	// a model price matching the market quote has zero error
	e, err = h.CalibrationError(2.0)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, e, 1e-9)
}

func TestHelper_ImpliedVolError_ClampsToBounds(t *testing.T) {
	h := newTestHelper(t, ImpliedVolError, ShiftedLognormal)

	// below the attainable bracket: pinned to the lower vol bound
	e, err := h.CalibrationError(0.001)
	require.NoError(t, err)
	assert.InDelta(t, 0.001-0.2, e, 1e-15)

	// above the attainable bracket: pinned to the upper vol bound
	e, err = h.CalibrationError(500.0)
	require.NoError(t, err)
	assert.InDelta(t, 10.0-0.2, e, 1e-15)
}

func TestHelper_ImpliedVolError_NormalBounds(t *testing.T) {
	h, err := NewHelper(0.01, linearPricer, Bisection{}, ImpliedVolError, Normal, zerolog.Nop())
	require.NoError(t, err)

	// normal quoting caps the search at 0.50
	e, err := h.CalibrationError(100.0)
	require.NoError(t, err)
	assert.InDelta(t, 0.50-0.01, e, 1e-15)

	e, err = h.CalibrationError(0.0)
	require.NoError(t, err)
	assert.InDelta(t, 0.00005-0.01, e, 1e-15)
}

func TestBisection_FindsRoot(t *testing.T) {
	root, err := Bisection{}.Solve(func(x float64) float64 {
		return x*x - 4
	}, 1e-12, 5, 0, 10)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, root, 1e-10)
}

func TestBisection_DecreasingFunction(t *testing.T) {
	root, err := Bisection{}.Solve(func(x float64) float64 {
		return math.Exp(-x) - 0.5
	}, 1e-12, 1, 0, 10)
	require.NoError(t, err)
	assert.InDelta(t, math.Ln2, root, 1e-10)
}

func TestBisection_Errors(t *testing.T) {
	_, err := Bisection{}.Solve(func(x float64) float64 { return x + 1 }, 1e-12, 5, 0, 10)
	assert.ErrorIs(t, err, ErrNoBracket)

	_, err = Bisection{}.Solve(func(x float64) float64 { return x }, 1e-12, 20, 0, 10)
	assert.ErrorIs(t, err, ErrConfiguration)

	_, err = Bisection{}.Solve(func(x float64) float64 { return x }, 0, 5, 0, 10)
	assert.ErrorIs(t, err, ErrConfiguration)

	_, err = Bisection{}.Solve(func(x float64) float64 { return x }, 1e-12, 5, 10, 0)
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestErrorMeasure_String(t *testing.T) {
	assert.Equal(t, "relative price error", RelativePriceError.String())
	assert.Equal(t, "price error", PriceError.String())
	assert.Equal(t, "implied vol error", ImpliedVolError.String())
	assert.Equal(t, "shifted lognormal", ShiftedLognormal.String())
	assert.Equal(t, "normal", Normal.String())
}
