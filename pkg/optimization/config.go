package optimization

import "fmt"

// Strategy selects how the mutant population is produced each generation.
// The strategy names follow Price & Storn, "Differential Evolution - A
// Simple and Efficient Heuristic for Global Optimization over Continuous
// Spaces" (1997).
type Strategy int

const (
	// Rand1Standard perturbs a shuffled population with one weighted
	// difference vector.
	Rand1Standard Strategy = iota
	// BestMemberWithJitter perturbs the best member ever with a jittered
	// difference vector.
	BestMemberWithJitter
	// CurrentToBest2Diffs moves each member toward the best member ever
	// plus a second difference vector.
	CurrentToBest2Diffs
	// Rand1DiffWithPerVectorDither draws a fresh dither weight per
	// dimension each generation.
	Rand1DiffWithPerVectorDither
	// Rand1DiffWithDither draws a single dither weight per generation.
	Rand1DiffWithDither
	// EitherOrWithOptimalRecombination randomly alternates between a
	// difference-vector mutation and an optimal-recombination step.
	EitherOrWithOptimalRecombination
	// Rand1SelfadaptiveWithRotation self-adapts per-member step sizes and
	// occasionally rotates the best member's coordinates.
	Rand1SelfadaptiveWithRotation
)

// String implements fmt.Stringer.
func (s Strategy) String() string {
	switch s {
	case Rand1Standard:
		return "rand1-standard"
	case BestMemberWithJitter:
		return "best-member-with-jitter"
	case CurrentToBest2Diffs:
		return "current-to-best-2-diffs"
	case Rand1DiffWithPerVectorDither:
		return "rand1-diff-with-per-vector-dither"
	case Rand1DiffWithDither:
		return "rand1-diff-with-dither"
	case EitherOrWithOptimalRecombination:
		return "either-or-with-optimal-recombination"
	case Rand1SelfadaptiveWithRotation:
		return "rand1-selfadaptive-with-rotation"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// Strategies lists all implemented mutation strategies.
func Strategies() []Strategy {
	return []Strategy{
		Rand1Standard,
		BestMemberWithJitter,
		CurrentToBest2Diffs,
		Rand1DiffWithPerVectorDither,
		Rand1DiffWithDither,
		EitherOrWithOptimalRecombination,
		Rand1SelfadaptiveWithRotation,
	}
}

// CrossoverType selects how per-member mutation probabilities are derived
// from the stored crossover probability.
type CrossoverType int

const (
	// CrossoverNormal uses the stored probability unchanged.
	CrossoverNormal CrossoverType = iota
	// CrossoverBinomial scales the probability by (1 - 1/dim) + 1/dim.
	CrossoverBinomial
	// CrossoverExponential maps the probability p to
	// (1 - p^dim) / (dim * (1 - p)).
	CrossoverExponential
)

// String implements fmt.Stringer.
func (c CrossoverType) String() string {
	switch c {
	case CrossoverNormal:
		return "normal"
	case CrossoverBinomial:
		return "binomial"
	case CrossoverExponential:
		return "exponential"
	default:
		return fmt.Sprintf("crossover(%d)", int(c))
	}
}

// Config is the immutable configuration bundle of a Differential Evolution
// run. Build one from DefaultConfig with the WithX modifiers; New validates
// it once, and it never changes during a run.
type Config struct {
	Strategy             Strategy
	Crossover            CrossoverType
	PopulationMembers    int
	StepsizeWeight       float64
	CrossoverProbability float64
	Seed                 uint64
	ApplyBounds          bool
	AdaptiveCrossover    bool
}

// DefaultConfig returns the default configuration: best-member-with-jitter
// mutation, normal crossover, 100 members, step size 0.2, crossover
// probability 0.9, bound repair on, adaptive crossover off.
func DefaultConfig() Config {
	return Config{
		Strategy:             BestMemberWithJitter,
		Crossover:            CrossoverNormal,
		PopulationMembers:    100,
		StepsizeWeight:       0.2,
		CrossoverProbability: 0.9,
		Seed:                 0,
		ApplyBounds:          true,
		AdaptiveCrossover:    false,
	}
}

// WithStrategy returns a copy with the mutation strategy set.
func (c Config) WithStrategy(s Strategy) Config {
	c.Strategy = s
	return c
}

// WithCrossoverType returns a copy with the crossover type set.
func (c Config) WithCrossoverType(t CrossoverType) Config {
	c.Crossover = t
	return c
}

// WithPopulationMembers returns a copy with the population size set.
func (c Config) WithPopulationMembers(n int) Config {
	c.PopulationMembers = n
	return c
}

// WithStepsizeWeight returns a copy with the step-size weight set.
func (c Config) WithStepsizeWeight(w float64) Config {
	c.StepsizeWeight = w
	return c
}

// WithCrossoverProbability returns a copy with the crossover probability set.
func (c Config) WithCrossoverProbability(p float64) Config {
	c.CrossoverProbability = p
	return c
}

// WithSeed returns a copy with the RNG seed set.
func (c Config) WithSeed(seed uint64) Config {
	c.Seed = seed
	return c
}

// WithBounds returns a copy with bound repair enabled or disabled.
func (c Config) WithBounds(apply bool) Config {
	c.ApplyBounds = apply
	return c
}

// WithAdaptiveCrossover returns a copy with adaptive crossover enabled or
// disabled.
func (c Config) WithAdaptiveCrossover(adaptive bool) Config {
	c.AdaptiveCrossover = adaptive
	return c
}

// Validate checks every configuration value, returning an error wrapping
// ErrConfiguration for out-of-range values and ErrUnknownVariant for
// unrecognized enumerators.
func (c Config) Validate() error {
	if c.PopulationMembers <= 0 {
		return fmt.Errorf("population members (%d) must be positive: %w", c.PopulationMembers, ErrConfiguration)
	}
	if c.StepsizeWeight < 0.0 || c.StepsizeWeight > 2.0 {
		return fmt.Errorf("step size weight (%v) must be in [0,2] range: %w", c.StepsizeWeight, ErrConfiguration)
	}
	if c.CrossoverProbability < 0.0 || c.CrossoverProbability > 1.0 {
		return fmt.Errorf("crossover probability (%v) must be in [0,1] range: %w", c.CrossoverProbability, ErrConfiguration)
	}
	if c.Strategy < Rand1Standard || c.Strategy > Rand1SelfadaptiveWithRotation {
		return fmt.Errorf("strategy (%d): %w", int(c.Strategy), ErrUnknownVariant)
	}
	if c.Crossover < CrossoverNormal || c.Crossover > CrossoverExponential {
		return fmt.Errorf("crossover type (%d): %w", int(c.Crossover), ErrUnknownVariant)
	}
	return nil
}
