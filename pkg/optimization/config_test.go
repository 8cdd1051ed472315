package optimization

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_DefaultsAreValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, BestMemberWithJitter, cfg.Strategy)
	assert.Equal(t, CrossoverNormal, cfg.Crossover)
	assert.Equal(t, 100, cfg.PopulationMembers)
	assert.Equal(t, 0.2, cfg.StepsizeWeight)
	assert.Equal(t, 0.9, cfg.CrossoverProbability)
	assert.True(t, cfg.ApplyBounds)
	assert.False(t, cfg.AdaptiveCrossover)
}

func TestConfig_Builder(t *testing.T) {
	cfg := DefaultConfig().
		WithStrategy(Rand1DiffWithDither).
		WithCrossoverType(CrossoverBinomial).
		WithPopulationMembers(40).
		WithStepsizeWeight(1.5).
		WithCrossoverProbability(0.4).
		WithSeed(99).
		WithBounds(false).
		WithAdaptiveCrossover(true)

	require.NoError(t, cfg.Validate())
	assert.Equal(t, Rand1DiffWithDither, cfg.Strategy)
	assert.Equal(t, CrossoverBinomial, cfg.Crossover)
	assert.Equal(t, 40, cfg.PopulationMembers)
	assert.Equal(t, 1.5, cfg.StepsizeWeight)
	assert.Equal(t, 0.4, cfg.CrossoverProbability)
	assert.Equal(t, uint64(99), cfg.Seed)
	assert.False(t, cfg.ApplyBounds)
	assert.True(t, cfg.AdaptiveCrossover)

	// the builder copies; the defaults are untouched
	assert.Equal(t, 100, DefaultConfig().PopulationMembers)
}

func TestConfig_Validation(t *testing.T) {
	assert.ErrorIs(t, DefaultConfig().WithPopulationMembers(0).Validate(), ErrConfiguration)
	assert.ErrorIs(t, DefaultConfig().WithPopulationMembers(-5).Validate(), ErrConfiguration)
	assert.ErrorIs(t, DefaultConfig().WithStepsizeWeight(-0.1).Validate(), ErrConfiguration)
	assert.ErrorIs(t, DefaultConfig().WithStepsizeWeight(2.1).Validate(), ErrConfiguration)
	assert.ErrorIs(t, DefaultConfig().WithCrossoverProbability(-0.1).Validate(), ErrConfiguration)
	assert.ErrorIs(t, DefaultConfig().WithCrossoverProbability(1.1).Validate(), ErrConfiguration)

	assert.NoError(t, DefaultConfig().WithStepsizeWeight(0.0).Validate())
	assert.NoError(t, DefaultConfig().WithStepsizeWeight(2.0).Validate())
	assert.NoError(t, DefaultConfig().WithCrossoverProbability(0.0).Validate())
	assert.NoError(t, DefaultConfig().WithCrossoverProbability(1.0).Validate())
}

func TestConfig_UnknownVariants(t *testing.T) {
	assert.ErrorIs(t, DefaultConfig().WithStrategy(Strategy(42)).Validate(), ErrUnknownVariant)
	assert.ErrorIs(t, DefaultConfig().WithCrossoverType(CrossoverType(42)).Validate(), ErrUnknownVariant)

	_, err := New(DefaultConfig().WithStrategy(Strategy(-1)), testLogger())
	assert.ErrorIs(t, err, ErrUnknownVariant)

	_, err = New(DefaultConfig().WithPopulationMembers(0), testLogger())
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestStrategies_CoversAllVariants(t *testing.T) {
	all := Strategies()
	assert.Len(t, all, 7)
	for _, s := range all {
		strategy, err := newMutationStrategy(s)
		require.NoError(t, err, "strategy %v must resolve", s)
		assert.NotNil(t, strategy)
	}
}
