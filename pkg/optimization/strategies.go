package optimization

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// mutationStrategy produces one generation of mutant parameter vectors from
// the current population, together with the mirror population used to repair
// bound violations at the crossover step. Both returned populations are
// owned by the caller; the input population is never modified.
type mutationStrategy interface {
	mutate(de *DifferentialEvolution, population []Candidate) (mutants, mirror []Candidate)
}

func newMutationStrategy(s Strategy) (mutationStrategy, error) {
	switch s {
	case Rand1Standard:
		return rand1Standard{}, nil
	case BestMemberWithJitter:
		return bestMemberWithJitter{}, nil
	case CurrentToBest2Diffs:
		return currentToBest2Diffs{}, nil
	case Rand1DiffWithPerVectorDither:
		return rand1DiffWithPerVectorDither{}, nil
	case Rand1DiffWithDither:
		return rand1DiffWithDither{}, nil
	case EitherOrWithOptimalRecombination:
		return eitherOrWithOptimalRecombination{}, nil
	case Rand1SelfadaptiveWithRotation:
		return rand1SelfadaptiveWithRotation{}, nil
	default:
		return nil, fmt.Errorf("strategy (%d): %w", int(s), ErrUnknownVariant)
	}
}

func (de *DifferentialEvolution) shufflePopulation(population []Candidate) {
	de.rand.Shuffle(len(population), func(i, j int) {
		population[i], population[j] = population[j], population[i]
	})
}

// rand1Standard: v = a + F*(b - c) over three successive shuffles of the
// population.
type rand1Standard struct{}

func (rand1Standard) mutate(de *DifferentialEvolution, population []Candidate) ([]Candidate, []Candidate) {
	work := clonePopulation(population)
	de.shufflePopulation(work)
	shuffled1 := clonePopulation(work)
	de.shufflePopulation(work)
	shuffled2 := clonePopulation(work)
	de.shufflePopulation(work)

	diff := make([]float64, len(population[0].Values))
	for i := range work {
		floats.SubTo(diff, shuffled1[i].Values, shuffled2[i].Values)
		floats.AddScaled(work[i].Values, de.cfg.StepsizeWeight, diff)
	}
	return work, shuffled1
}

// bestMemberWithJitter: v = best + (a - b) * (0.0001*jitter + F) with a
// fresh jitter draw per member per dimension. The mirror population is the
// best member itself.
type bestMemberWithJitter struct{}

func (bestMemberWithJitter) mutate(de *DifferentialEvolution, population []Candidate) ([]Candidate, []Candidate) {
	work := clonePopulation(population)
	de.shufflePopulation(work)
	shuffled1 := clonePopulation(work)
	de.shufflePopulation(work)

	for i := range work {
		for j := range work[i].Values {
			jitter := de.rand.Next()
			work[i].Values[j] = de.bestMemberEver.Values[j] +
				(shuffled1[i].Values[j]-work[i].Values[j])*(0.0001*jitter+de.cfg.StepsizeWeight)
		}
	}

	mirror := make([]Candidate, len(population))
	for i := range mirror {
		mirror[i] = de.bestMemberEver.clone()
	}
	return work, mirror
}

// currentToBest2Diffs: v = x + F*(best - x) + F*(a - b).
type currentToBest2Diffs struct{}

func (currentToBest2Diffs) mutate(de *DifferentialEvolution, population []Candidate) ([]Candidate, []Candidate) {
	work := clonePopulation(population)
	de.shufflePopulation(work)
	shuffled1 := clonePopulation(work)
	de.shufflePopulation(work)

	f := de.cfg.StepsizeWeight
	for i := range work {
		for j := range work[i].Values {
			old := population[i].Values[j]
			work[i].Values[j] = old +
				f*(de.bestMemberEver.Values[j]-old) +
				f*(work[i].Values[j]-shuffled1[i].Values[j])
		}
	}
	return work, shuffled1
}

// rand1DiffWithPerVectorDither: v = a + W ⊙ (b - c) with one dither weight
// drawn per dimension per generation.
type rand1DiffWithPerVectorDither struct{}

func (rand1DiffWithPerVectorDither) mutate(de *DifferentialEvolution, population []Candidate) ([]Candidate, []Candidate) {
	work := clonePopulation(population)
	de.shufflePopulation(work)
	shuffled1 := clonePopulation(work)
	de.shufflePopulation(work)
	shuffled2 := clonePopulation(work)
	de.shufflePopulation(work)

	f := de.cfg.StepsizeWeight
	weights := make([]float64, len(population[0].Values))
	for j := range weights {
		weights[j] = (1.0-f)*de.rand.Next() + f
	}
	for i := range work {
		for j := range work[i].Values {
			work[i].Values[j] += weights[j] * (shuffled1[i].Values[j] - shuffled2[i].Values[j])
		}
	}
	return work, shuffled1
}

// rand1DiffWithDither: v = a + w*(b - c) with a single dither weight per
// generation.
type rand1DiffWithDither struct{}

func (rand1DiffWithDither) mutate(de *DifferentialEvolution, population []Candidate) ([]Candidate, []Candidate) {
	work := clonePopulation(population)
	de.shufflePopulation(work)
	shuffled1 := clonePopulation(work)
	de.shufflePopulation(work)
	shuffled2 := clonePopulation(work)
	de.shufflePopulation(work)

	weight := (1.0-de.cfg.StepsizeWeight)*de.rand.Next() + de.cfg.StepsizeWeight
	diff := make([]float64, len(population[0].Values))
	for i := range work {
		floats.SubTo(diff, shuffled1[i].Values, shuffled2[i].Values)
		floats.AddScaled(work[i].Values, weight, diff)
	}
	return work, shuffled1
}

// eitherOrWithOptimalRecombination: with probability 1/2 a plain difference
// mutation, otherwise an optimal recombination with
// K = 0.5*(F+1), invariant with respect to the branch probability.
type eitherOrWithOptimalRecombination struct{}

func (eitherOrWithOptimalRecombination) mutate(de *DifferentialEvolution, population []Candidate) ([]Candidate, []Candidate) {
	work := clonePopulation(population)
	de.shufflePopulation(work)
	shuffled1 := clonePopulation(work)
	de.shufflePopulation(work)
	shuffled2 := clonePopulation(work)
	de.shufflePopulation(work)

	f := de.cfg.StepsizeWeight
	if de.rand.Next() < 0.5 {
		for i := range work {
			for j := range work[i].Values {
				work[i].Values[j] = population[i].Values[j] +
					f*(shuffled1[i].Values[j]-shuffled2[i].Values[j])
			}
		}
	} else {
		k := 0.5 * (f + 1)
		for i := range work {
			for j := range work[i].Values {
				work[i].Values[j] = population[i].Values[j] +
					k*(shuffled1[i].Values[j]-shuffled2[i].Values[j]-2.0*work[i].Values[j])
			}
		}
	}
	return work, shuffled1
}

// rand1SelfadaptiveWithRotation: v = best + F_i*(a - b) with per-member
// self-adapted step sizes; occasionally a member is replaced by a random
// rotation (coordinate shuffle) of the best member.
type rand1SelfadaptiveWithRotation struct{}

func (rand1SelfadaptiveWithRotation) mutate(de *DifferentialEvolution, population []Candidate) ([]Candidate, []Candidate) {
	work := clonePopulation(population)
	de.shufflePopulation(work)
	shuffled1 := clonePopulation(work)
	de.shufflePopulation(work)
	shuffled2 := clonePopulation(work)
	de.shufflePopulation(work)

	de.adaptSizeWeights()

	for i := range work {
		if de.rand.Next() < adaptationProbability {
			work[i].Values = de.rotateArray(de.bestMemberEver.Values)
			continue
		}
		for j := range work[i].Values {
			work[i].Values[j] = de.bestMemberEver.Values[j] +
				de.currGenSizeWeights[i]*(shuffled1[i].Values[j]-shuffled2[i].Values[j])
		}
	}
	return work, shuffled1
}

// rotateArray returns a randomly permuted copy of the input coordinates.
func (de *DifferentialEvolution) rotateArray(values []float64) []float64 {
	out := make([]float64, len(values))
	copy(out, values)
	de.rand.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}
