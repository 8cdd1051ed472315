package optimization

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEndCriteria_Validation(t *testing.T) {
	_, err := NewEndCriteria(0, 10, 1e-8)
	assert.ErrorIs(t, err, ErrConfiguration)

	_, err = NewEndCriteria(100, 0, 1e-8)
	assert.ErrorIs(t, err, ErrConfiguration)

	_, err = NewEndCriteria(100, 10, -1.0)
	assert.ErrorIs(t, err, ErrConfiguration)

	_, err = NewEndCriteria(100, 10, 1e-8)
	assert.NoError(t, err)
}

func TestEndCriteria_MaxIterations(t *testing.T) {
	ec, err := NewEndCriteria(3, 10, 1e-8)
	require.NoError(t, err)

	reason := ReasonNone
	assert.False(t, ec.CheckMaxIterations(0, &reason))
	assert.False(t, ec.CheckMaxIterations(2, &reason))
	assert.Equal(t, ReasonNone, reason)

	assert.True(t, ec.CheckMaxIterations(3, &reason))
	assert.Equal(t, ReasonMaxIterations, reason)
}

func TestEndCriteria_StationaryFunctionValue(t *testing.T) {
	ec, err := NewEndCriteria(100, 2, 1e-6)
	require.NoError(t, err)

	reason := ReasonNone
	counter := 0

	// improving: counter stays reset
	assert.False(t, ec.CheckStationaryFunctionValue(1.0, 0.5, &counter, &reason))
	assert.Equal(t, 0, counter)

	// stationary for maxStationaryStateIterations generations: not yet fired
	assert.False(t, ec.CheckStationaryFunctionValue(0.5, 0.5, &counter, &reason))
	assert.False(t, ec.CheckStationaryFunctionValue(0.5, 0.5, &counter, &reason))
	assert.Equal(t, 2, counter)
	assert.Equal(t, ReasonNone, reason)

	// one more stationary generation fires the criterion
	assert.True(t, ec.CheckStationaryFunctionValue(0.5, 0.5, &counter, &reason))
	assert.Equal(t, ReasonStationaryFunctionValue, reason)
}

func TestEndCriteria_StationaryCounterResets(t *testing.T) {
	ec, err := NewEndCriteria(100, 3, 1e-6)
	require.NoError(t, err)

	reason := ReasonNone
	counter := 0

	assert.False(t, ec.CheckStationaryFunctionValue(0.5, 0.5, &counter, &reason))
	assert.False(t, ec.CheckStationaryFunctionValue(0.5, 0.5, &counter, &reason))
	require.Equal(t, 2, counter)

	// a real improvement resets the streak
	assert.False(t, ec.CheckStationaryFunctionValue(0.5, 0.3, &counter, &reason))
	assert.Equal(t, 0, counter)
}

func TestReason_String(t *testing.T) {
	assert.Equal(t, "none", ReasonNone.String())
	assert.Equal(t, "max iterations", ReasonMaxIterations.String())
	assert.Equal(t, "stationary function value", ReasonStationaryFunctionValue.String())
}
