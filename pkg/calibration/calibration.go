// Package calibration provides the error measures used to compare model
// prices against market quotes when calibrating with an optimizer: direct
// price errors and an implied-volatility error that inverts the pricer
// through a 1-D root solver.
package calibration

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

var (
	// ErrConfiguration marks invalid helper or measure parameters.
	ErrConfiguration = errors.New("invalid calibration configuration")
	// ErrPricer wraps failures of the underlying Black pricer.
	ErrPricer = errors.New("black pricer failed")
)

// BlackPricer prices an instrument at a given volatility. Implementations
// carry the instrument parameters (forward, strike, expiry, discount) and
// expose only the volatility axis the calibration searches along.
type BlackPricer interface {
	BlackPrice(vol float64) (float64, error)
}

// BlackPriceFunc adapts a plain function to the BlackPricer interface.
type BlackPriceFunc func(vol float64) (float64, error)

// BlackPrice implements BlackPricer.
func (f BlackPriceFunc) BlackPrice(vol float64) (float64, error) {
	return f(vol)
}

// ErrorMeasure selects how a model value is compared to the market value.
type ErrorMeasure int

const (
	// RelativePriceError is (model - market) / market.
	RelativePriceError ErrorMeasure = iota
	// PriceError is model - market.
	PriceError
	// ImpliedVolError is impliedVol(model) - marketVol.
	ImpliedVolError
)

// String implements fmt.Stringer.
func (m ErrorMeasure) String() string {
	switch m {
	case RelativePriceError:
		return "relative price error"
	case PriceError:
		return "price error"
	case ImpliedVolError:
		return "implied vol error"
	default:
		return fmt.Sprintf("error_measure(%d)", int(m))
	}
}

// VolatilityType selects the quoting convention of the market volatility,
// which determines the search bounds of the implied-vol inversion.
type VolatilityType int

const (
	// ShiftedLognormal quotes Black (lognormal) volatilities.
	ShiftedLognormal VolatilityType = iota
	// Normal quotes Bachelier (normal) volatilities.
	Normal
)

// String implements fmt.Stringer.
func (v VolatilityType) String() string {
	switch v {
	case ShiftedLognormal:
		return "shifted lognormal"
	case Normal:
		return "normal"
	default:
		return fmt.Sprintf("volatility_type(%d)", int(v))
	}
}

// implied-vol search bounds per quoting convention
func volBounds(t VolatilityType) (minVol, maxVol float64) {
	if t == Normal {
		return 0.00005, 0.50
	}
	return 0.001, 10.0
}

const impliedVolAccuracy = 1e-12

// Helper ties one market quote to a pricer and an error measure. Its
// CalibrationError is the natural residual for an optimizer's cost function.
type Helper struct {
	marketVol   float64
	marketValue float64
	pricer      BlackPricer
	solver      Solver1D
	measure     ErrorMeasure
	volType     VolatilityType
	log         zerolog.Logger
}

// NewHelper builds a calibration helper and prices the market quote once.
func NewHelper(marketVol float64, pricer BlackPricer, solver Solver1D,
	measure ErrorMeasure, volType VolatilityType, log zerolog.Logger) (*Helper, error) {
	if marketVol <= 0 {
		return nil, fmt.Errorf("market volatility (%v) must be positive: %w", marketVol, ErrConfiguration)
	}
	if pricer == nil {
		return nil, fmt.Errorf("pricer is required: %w", ErrConfiguration)
	}
	if measure == ImpliedVolError && solver == nil {
		return nil, fmt.Errorf("implied-vol error measure needs a solver: %w", ErrConfiguration)
	}
	marketValue, err := pricer.BlackPrice(marketVol)
	if err != nil {
		return nil, fmt.Errorf("pricing market quote at vol %v: %w", marketVol, errors.Join(ErrPricer, err))
	}
	return &Helper{
		marketVol:   marketVol,
		marketValue: marketValue,
		pricer:      pricer,
		solver:      solver,
		measure:     measure,
		volType:     volType,
		log:         log.With().Str("component", "calibration_helper").Logger(),
	}, nil
}

// MarketVolatility returns the quoted market volatility.
func (h *Helper) MarketVolatility() float64 {
	return h.marketVol
}

// MarketValue returns the price of the instrument at the market volatility.
func (h *Helper) MarketValue() float64 {
	return h.marketValue
}

// CalibrationError computes the residual between a model value and the
// market quote under the configured measure.
func (h *Helper) CalibrationError(modelValue float64) (float64, error) {
	switch h.measure {
	case RelativePriceError:
		return (modelValue - h.marketValue) / h.marketValue, nil
	case PriceError:
		return modelValue - h.marketValue, nil
	case ImpliedVolError:
		implied, err := h.impliedVolatility(modelValue)
		if err != nil {
			return 0, err
		}
		return implied - h.marketVol, nil
	default:
		return 0, fmt.Errorf("error measure (%d): %w", int(h.measure), ErrConfiguration)
	}
}

// impliedVolatility inverts the pricer at the given model price. Prices
// outside the attainable bracket are pinned to the corresponding bound
// instead of failing, so calibration keeps a usable gradient direction at
// extreme model states.
func (h *Helper) impliedVolatility(modelValue float64) (float64, error) {
	minVol, maxVol := volBounds(h.volType)

	lowerPrice, err := h.pricer.BlackPrice(minVol)
	if err != nil {
		return 0, fmt.Errorf("pricing at lower vol bound %v: %w", minVol, errors.Join(ErrPricer, err))
	}
	upperPrice, err := h.pricer.BlackPrice(maxVol)
	if err != nil {
		return 0, fmt.Errorf("pricing at upper vol bound %v: %w", maxVol, errors.Join(ErrPricer, err))
	}

	if modelValue <= lowerPrice {
		return minVol, nil
	}
	if modelValue >= upperPrice {
		return maxVol, nil
	}

	objective := func(vol float64) float64 {
		price, err := h.pricer.BlackPrice(vol)
		if err != nil {
			h.log.Debug().Err(err).Float64("vol", vol).Msg("pricer failed inside implied-vol search")
			return 0
		}
		return price - modelValue
	}
	guess := h.marketVol
	if guess < minVol || guess > maxVol {
		guess = 0.5 * (minVol + maxVol)
	}
	return h.solver.Solve(objective, impliedVolAccuracy, guess, minVol, maxVol)
}
