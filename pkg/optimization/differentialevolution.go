// Package optimization provides derivative-free minimization for model
// calibration: a population-based Differential Evolution optimizer together
// with the problem, constraint and termination-criteria abstractions it
// consumes.
package optimization

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/avestan/quantkit/pkg/rng"
)

// worstCost is assigned to candidates whose cost evaluation failed, so a
// failing point loses every selection without aborting the run.
const worstCost = math.MaxFloat64

// Self-adaptation parameters from Brest et al. (2006), "Self-Adapting
// Control Parameters in Differential Evolution": Fl, Fu, and tau.
const (
	sizeWeightLowerBound  = 0.1
	sizeWeightUpperBound  = 0.9
	adaptationProbability = 0.1
)

// Candidate is one point of the search population.
type Candidate struct {
	Values []float64
	Cost   float64
}

func (c Candidate) clone() Candidate {
	values := make([]float64, len(c.Values))
	copy(values, c.Values)
	return Candidate{Values: values, Cost: c.Cost}
}

func clonePopulation(population []Candidate) []Candidate {
	out := make([]Candidate, len(population))
	for i := range population {
		out[i] = population[i].clone()
	}
	return out
}

// bestToFront swaps the lowest-cost candidate into slot 0, leaving the rest
// of the population order untouched.
func bestToFront(population []Candidate) {
	best := 0
	for i := 1; i < len(population); i++ {
		if population[i].Cost < population[best].Cost {
			best = i
		}
	}
	population[0], population[best] = population[best], population[0]
}

// DifferentialEvolution is a population-based stochastic global minimizer.
// An instance owns its RNG stream, population and adaptive-parameter
// vectors; it is not safe for concurrent use.
type DifferentialEvolution struct {
	cfg       Config
	rand      *rng.Uniform
	log       zerolog.Logger
	strategy  mutationStrategy
	transform probabilityTransform

	lowerBound []float64
	upperBound []float64

	// per-generation adaptive state, one entry per population member
	currGenSizeWeights []float64
	currGenCrossover   []float64

	bestMemberEver Candidate
}

// New creates an optimizer for the given configuration. The configuration
// is validated here; the mutation strategy and crossover transform are
// resolved once and never re-dispatched during a run.
func New(cfg Config, log zerolog.Logger) (*DifferentialEvolution, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	strategy, err := newMutationStrategy(cfg.Strategy)
	if err != nil {
		return nil, err
	}
	transform, err := newProbabilityTransform(cfg.Crossover)
	if err != nil {
		return nil, err
	}
	return &DifferentialEvolution{
		cfg:       cfg,
		rand:      rng.New(cfg.Seed),
		log:       log.With().Str("component", "differential_evolution").Logger(),
		strategy:  strategy,
		transform: transform,
	}, nil
}

// Configuration returns the optimizer configuration.
func (de *DifferentialEvolution) Configuration() Config {
	return de.cfg
}

// BestMemberEver returns a copy of the best candidate found so far.
func (de *DifferentialEvolution) BestMemberEver() Candidate {
	return de.bestMemberEver.clone()
}

// Minimize runs the optimization until one of the termination criteria
// fires, then writes the best candidate ever back into the problem and
// returns the reason that stopped the run.
func (de *DifferentialEvolution) Minimize(p *Problem, criteria *EndCriteria) (Reason, error) {
	if p == nil || criteria == nil {
		return ReasonNone, fmt.Errorf("problem and end criteria are required")
	}
	start := p.CurrentValue()
	dim := len(start)
	if dim == 0 {
		return ReasonNone, fmt.Errorf("problem has an empty parameter vector")
	}

	de.upperBound = p.Constraint().UpperBound(start)
	de.lowerBound = p.Constraint().LowerBound(start)
	if len(de.upperBound) != dim || len(de.lowerBound) != dim {
		return ReasonNone, fmt.Errorf("constraint bounds dimension (%d/%d) does not match parameter dimension (%d)",
			len(de.lowerBound), len(de.upperBound), dim)
	}
	for i := 0; i < dim; i++ {
		if de.lowerBound[i] > de.upperBound[i] {
			return ReasonNone, fmt.Errorf("lower bound %v above upper bound %v at index %d",
				de.lowerBound[i], de.upperBound[i], i)
		}
		// the initial population is sampled uniformly inside the box, so
		// unbounded constraints (e.g. NoConstraint) cannot be searched
		if math.IsInf(de.lowerBound[i], 0) || math.IsInf(de.upperBound[i], 0) {
			return ReasonNone, fmt.Errorf("differential evolution requires finite bounds, got [%v, %v] at index %d",
				de.lowerBound[i], de.upperBound[i], i)
		}
	}

	members := de.cfg.PopulationMembers
	de.currGenSizeWeights = make([]float64, members)
	de.currGenCrossover = make([]float64, members)
	for i := 0; i < members; i++ {
		de.currGenSizeWeights[i] = de.cfg.StepsizeWeight
		de.currGenCrossover[i] = de.cfg.CrossoverProbability
	}

	population := make([]Candidate, members)
	de.fillInitialPopulation(population, start, p.CostFunction())

	bestToFront(population)
	de.bestMemberEver = population[0].clone()
	fxOld := population[0].Cost

	reason := ReasonNone
	iteration, stationaryIteration := 0, 0

	// main loop: calculate consecutive emerging generations
	for !criteria.CheckMaxIterations(iteration, &reason) {
		iteration++
		de.calculateNextGeneration(population, p.CostFunction())
		bestToFront(population)
		if population[0].Cost < de.bestMemberEver.Cost {
			de.bestMemberEver = population[0].clone()
		}
		fxNew := population[0].Cost
		de.log.Debug().
			Int("generation", iteration).
			Float64("generation_best", fxNew).
			Float64("best_ever", de.bestMemberEver.Cost).
			Msg("generation complete")
		if criteria.CheckStationaryFunctionValue(fxOld, fxNew, &stationaryIteration, &reason) {
			break
		}
		fxOld = fxNew
	}

	p.setCurrentValue(de.bestMemberEver.Values)
	p.setFunctionValue(de.bestMemberEver.Cost)
	de.log.Info().
		Stringer("strategy", de.cfg.Strategy).
		Stringer("reason", reason).
		Int("generations", iteration).
		Float64("cost", de.bestMemberEver.Cost).
		Msg("optimization finished")
	return reason, nil
}

// fillInitialPopulation seeds slot 0 with the caller-supplied starting point
// and samples the rest uniformly within the box. Every candidate is costed
// eagerly.
func (de *DifferentialEvolution) fillInitialPopulation(population []Candidate, start []float64, cost CostFunction) {
	first := make([]float64, len(start))
	copy(first, start)
	population[0] = Candidate{Values: first, Cost: de.evaluate(cost, first)}

	for j := 1; j < len(population); j++ {
		values := make([]float64, len(start))
		for i := range values {
			l, u := de.lowerBound[i], de.upperBound[i]
			values[i] = l + (u-l)*de.rand.Next()
		}
		population[j] = Candidate{Values: values, Cost: de.evaluate(cost, values)}
	}
}

// calculateNextGeneration replaces the population with the recombination of
// itself and the strategy's mutant population.
func (de *DifferentialEvolution) calculateNextGeneration(population []Candidate, cost CostFunction) {
	oldPopulation := clonePopulation(population)
	mutants, mirror := de.strategy.mutate(de, population)
	de.crossover(oldPopulation, population, mutants, mirror, cost)
}

// crossover recombines the old and mutant populations under the crossover
// mask, repairs bound violations against the mirror population, and costs
// every resulting candidate.
func (de *DifferentialEvolution) crossover(oldPopulation []Candidate, population, mutants, mirror []Candidate, cost CostFunction) {
	if de.cfg.AdaptiveCrossover {
		de.adaptCrossover()
	}

	dim := len(oldPopulation[0].Values)
	mutationProbabilities := de.mutationProbabilities(dim)

	// full mask first, then recombination: one Bernoulli draw per member
	// per dimension
	masks := make([][]bool, len(population))
	for i := range masks {
		masks[i] = make([]bool, dim)
		for j := 0; j < dim; j++ {
			masks[i][j] = de.rand.Next() < mutationProbabilities[i]
		}
	}

	for i := range population {
		values := make([]float64, dim)
		for j := 0; j < dim; j++ {
			if masks[i][j] {
				values[j] = mutants[i].Values[j]
			} else {
				values[j] = oldPopulation[i].Values[j]
			}
		}
		if de.cfg.ApplyBounds {
			// reflect violations back inside the box, toward the mirror
			// candidate, instead of clamping onto the bound
			for j := 0; j < dim; j++ {
				if values[j] > de.upperBound[j] {
					values[j] = de.upperBound[j] + de.rand.Next()*(mirror[i].Values[j]-de.upperBound[j])
				}
				if values[j] < de.lowerBound[j] {
					values[j] = de.lowerBound[j] + de.rand.Next()*(mirror[i].Values[j]-de.lowerBound[j])
				}
			}
		}
		population[i] = Candidate{Values: values, Cost: de.evaluate(cost, values)}
	}
}

// mutationProbabilities derives the per-member mutation probabilities from
// the current crossover-probability state and the crossover type.
func (de *DifferentialEvolution) mutationProbabilities(dim int) []float64 {
	return de.transform(de.currGenCrossover, dim)
}

// adaptSizeWeights re-randomizes each member's step-size weight with a small
// fixed probability.
func (de *DifferentialEvolution) adaptSizeWeights() {
	for i := range de.currGenSizeWeights {
		if de.rand.Next() < adaptationProbability {
			de.currGenSizeWeights[i] = sizeWeightLowerBound + de.rand.Next()*sizeWeightUpperBound
		}
	}
}

// adaptCrossover re-randomizes each member's crossover probability with a
// small fixed probability.
func (de *DifferentialEvolution) adaptCrossover() {
	for i := range de.currGenCrossover {
		if de.rand.Next() < adaptationProbability {
			de.currGenCrossover[i] = de.rand.Next()
		}
	}
}

// evaluate costs a candidate, degrading evaluation failures to the worst
// possible cost.
func (de *DifferentialEvolution) evaluate(cost CostFunction, values []float64) float64 {
	v, err := cost.Value(values)
	if err != nil {
		return worstCost
	}
	return v
}

// probabilityTransform maps the stored per-member crossover probabilities to
// mutation probabilities for a given dimensionality.
type probabilityTransform func(stored []float64, dim int) []float64

func newProbabilityTransform(t CrossoverType) (probabilityTransform, error) {
	switch t {
	case CrossoverNormal:
		return func(stored []float64, _ int) []float64 {
			out := make([]float64, len(stored))
			copy(out, stored)
			return out
		}, nil
	case CrossoverBinomial:
		return func(stored []float64, dim int) []float64 {
			d := float64(dim)
			out := make([]float64, len(stored))
			for i, p := range stored {
				out[i] = p*(1.0-1.0/d) + 1.0/d
			}
			return out
		}, nil
	case CrossoverExponential:
		return func(stored []float64, dim int) []float64 {
			d := float64(dim)
			out := make([]float64, len(stored))
			for i, p := range stored {
				out[i] = (1.0 - math.Pow(p, d)) / (d * (1.0 - p))
			}
			return out
		}, nil
	default:
		return nil, fmt.Errorf("crossover type (%d): %w", int(t), ErrUnknownVariant)
	}
}
