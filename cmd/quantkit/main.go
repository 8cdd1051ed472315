// Package main is the benchmark entry point for the quantkit toolkit. It
// runs the Differential Evolution optimizer across every mutation strategy
// on a set of standard global-optimization test objectives and reports the
// best cost and termination reason for each combination.
//
// Configuration comes from environment variables (.env file supported):
//   - QUANTKIT_LOG_LEVEL:  zerolog level (default "info")
//   - QUANTKIT_LOG_PRETTY: console writer instead of JSON (default "true")
//   - QUANTKIT_SEED:       RNG seed shared by all runs (default "42")
//   - QUANTKIT_DIMENSION:  objective dimensionality (default "5")
//   - QUANTKIT_MAX_ITER:   generation budget per run (default "300")
//   - QUANTKIT_POPULATION: population members per run (default "60")
package main

import (
	"math"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/avestan/quantkit/pkg/logger"
	"github.com/avestan/quantkit/pkg/optimization"
)

// getEnv retrieves an environment variable value, returning a fallback if
// the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int, log zerolog.Logger) int {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		log.Warn().Str("key", key).Str("value", raw).Msg("Not an integer, using fallback")
		return fallback
	}
	return v
}

// objective is one benchmark cost function with its box and known optimum.
type objective struct {
	name    string
	cost    optimization.CostFunc
	lower   float64
	upper   float64
	optimum float64
}

func objectives() []objective {
	return []objective{
		{
			name: "sphere",
			cost: func(x []float64) (float64, error) {
				var sum float64
				for _, v := range x {
					sum += v * v
				}
				return sum, nil
			},
			lower: -10, upper: 10, optimum: 0,
		},
		{
			name: "rosenbrock",
			cost: func(x []float64) (float64, error) {
				var sum float64
				for i := 0; i < len(x)-1; i++ {
					sum += 100*math.Pow(x[i+1]-x[i]*x[i], 2) + math.Pow(1-x[i], 2)
				}
				return sum, nil
			},
			lower: -5, upper: 10, optimum: 0,
		},
		{
			name: "rastrigin",
			cost: func(x []float64) (float64, error) {
				sum := 10.0 * float64(len(x))
				for _, v := range x {
					sum += v*v - 10.0*math.Cos(2.0*math.Pi*v)
				}
				return sum, nil
			},
			lower: -5.12, upper: 5.12, optimum: 0,
		},
	}
}

func main() {
	// .env is optional; environment variables win either way
	_ = godotenv.Load()

	log := logger.New(logger.Config{
		Level:  getEnv("QUANTKIT_LOG_LEVEL", "info"),
		Pretty: getEnv("QUANTKIT_LOG_PRETTY", "true") == "true",
	})

	seed := uint64(getEnvInt("QUANTKIT_SEED", 42, log))
	dim := getEnvInt("QUANTKIT_DIMENSION", 5, log)
	maxIter := getEnvInt("QUANTKIT_MAX_ITER", 300, log)
	population := getEnvInt("QUANTKIT_POPULATION", 60, log)

	log.Info().
		Uint64("seed", seed).
		Int("dimension", dim).
		Int("max_iterations", maxIter).
		Int("population", population).
		Msg("Starting optimizer benchmark")

	criteria, err := optimization.NewEndCriteria(maxIter, 100, 1e-10)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build end criteria")
	}

	for _, obj := range objectives() {
		lower := make([]float64, dim)
		upper := make([]float64, dim)
		start := make([]float64, dim)
		for i := 0; i < dim; i++ {
			lower[i] = obj.lower
			upper[i] = obj.upper
			start[i] = 0.5 * (obj.lower + obj.upper)
		}
		box, err := optimization.NewBoxConstraint(lower, upper)
		if err != nil {
			log.Fatal().Err(err).Str("objective", obj.name).Msg("Failed to build box constraint")
		}

		for _, strategy := range optimization.Strategies() {
			cfg := optimization.DefaultConfig().
				WithStrategy(strategy).
				WithPopulationMembers(population).
				WithSeed(seed)

			de, err := optimization.New(cfg, log)
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to build optimizer")
			}

			problem := optimization.NewProblem(obj.cost, box, start)
			reason, err := de.Minimize(problem, criteria)
			if err != nil {
				log.Error().Err(err).
					Str("objective", obj.name).
					Stringer("strategy", strategy).
					Msg("Run failed")
				continue
			}

			log.Info().
				Str("objective", obj.name).
				Stringer("strategy", strategy).
				Stringer("reason", reason).
				Float64("best_cost", problem.FunctionValue()).
				Float64("distance_to_optimum", problem.FunctionValue()-obj.optimum).
				Msg("Run complete")
		}
	}
}
