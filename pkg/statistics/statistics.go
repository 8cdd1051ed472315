// Package statistics provides the accumulators behind the Monte-Carlo and
// calibration code: a scalar weighted-sample accumulator, a fixed-dimension
// sequence accumulator with covariance estimation, and a histogram tool.
//
// The accumulators keep every sample, trading memory for numerical
// robustness over incremental moment updates.
package statistics

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrInsufficientData is returned when a query needs more samples than the
// accumulator holds.
var ErrInsufficientData = errors.New("insufficient data")

type sample struct {
	value  float64
	weight float64
}

// Statistics accumulates weighted scalar samples and answers distribution
// queries on the empirical distribution (no gaussian assumption).
type Statistics struct {
	samples []sample
	sorted  bool
}

// NewStatistics creates an empty accumulator.
func NewStatistics() *Statistics {
	return &Statistics{sorted: true}
}

// Add appends a sample with unit weight.
func (s *Statistics) Add(value float64) {
	s.samples = append(s.samples, sample{value: value, weight: 1.0})
	s.sorted = false
}

// AddWeighted appends a sample with the given weight. Weights must be
// positive or zero.
func (s *Statistics) AddWeighted(value, weight float64) error {
	if weight < 0 {
		return fmt.Errorf("negative weight (%v) not allowed", weight)
	}
	s.samples = append(s.samples, sample{value: value, weight: weight})
	s.sorted = false
	return nil
}

// AddSequence appends a slice of samples, each with unit weight.
func (s *Statistics) AddSequence(values []float64) {
	for _, v := range values {
		s.Add(v)
	}
}

// Reset discards all samples.
func (s *Statistics) Reset() {
	s.samples = nil
	s.sorted = true
}

// Samples returns the number of samples collected.
func (s *Statistics) Samples() int {
	return len(s.samples)
}

// WeightSum returns the sum of the sample weights.
func (s *Statistics) WeightSum() float64 {
	var sum float64
	for _, smp := range s.samples {
		sum += smp.weight
	}
	return sum
}

// Sort orders the stored samples by value. Queries that need ordering call
// it themselves; the dirty flag is set on every Add and cleared here.
func (s *Statistics) Sort() {
	if !s.sorted {
		sort.Slice(s.samples, func(i, j int) bool {
			return s.samples[i].value < s.samples[j].value
		})
		s.sorted = true
	}
}

// ExpectationValue returns the weighted expectation of f over the samples
// for which inRange is true, along with the number of samples in range.
// A nil inRange means the whole sample set.
func (s *Statistics) ExpectationValue(f func(float64) float64, inRange func(float64) bool) (float64, int) {
	var num, den float64
	n := 0
	for _, smp := range s.samples {
		if inRange != nil && !inRange(smp.value) {
			continue
		}
		num += f(smp.value) * smp.weight
		den += smp.weight
		n++
	}
	if n == 0 || den == 0 {
		return 0, 0
	}
	return num / den, n
}

// Mean returns the weighted arithmetic mean.
func (s *Statistics) Mean() (float64, error) {
	if len(s.samples) == 0 {
		return 0, fmt.Errorf("empty sample set: %w", ErrInsufficientData)
	}
	m, _ := s.ExpectationValue(func(x float64) float64 { return x }, nil)
	return m, nil
}

// Variance returns the unbiased sample variance.
func (s *Statistics) Variance() (float64, error) {
	n := len(s.samples)
	if n <= 1 {
		return 0, fmt.Errorf("sample number <= 1: %w", ErrInsufficientData)
	}
	mean, err := s.Mean()
	if err != nil {
		return 0, err
	}
	s2, _ := s.ExpectationValue(func(x float64) float64 {
		d := x - mean
		return d * d
	}, nil)
	return s2 * float64(n) / float64(n-1), nil
}

// StdDev returns the standard deviation, the square root of the variance.
func (s *Statistics) StdDev() (float64, error) {
	v, err := s.Variance()
	if err != nil {
		return 0, err
	}
	return math.Sqrt(v), nil
}

// ErrorEstimate returns the estimated error on the mean, sigma/sqrt(N).
func (s *Statistics) ErrorEstimate() (float64, error) {
	v, err := s.Variance()
	if err != nil {
		return 0, err
	}
	return math.Sqrt(v / float64(len(s.samples))), nil
}

// Skewness returns the sample skewness. It evaluates to 0 for a gaussian
// distribution.
func (s *Statistics) Skewness() (float64, error) {
	n := float64(len(s.samples))
	if n <= 2 {
		return 0, fmt.Errorf("sample number <= 2: %w", ErrInsufficientData)
	}
	mean, err := s.Mean()
	if err != nil {
		return 0, err
	}
	x, _ := s.ExpectationValue(func(v float64) float64 {
		d := v - mean
		return d * d * d
	}, nil)
	sigma, err := s.StdDev()
	if err != nil {
		return 0, err
	}
	return (x / (sigma * sigma * sigma)) * (n / (n - 1)) * (n / (n - 2)), nil
}

// Kurtosis returns the excess kurtosis. It evaluates to 0 for a gaussian
// distribution.
func (s *Statistics) Kurtosis() (float64, error) {
	n := float64(len(s.samples))
	if n <= 3 {
		return 0, fmt.Errorf("sample number <= 3: %w", ErrInsufficientData)
	}
	mean, err := s.Mean()
	if err != nil {
		return 0, err
	}
	x, _ := s.ExpectationValue(func(v float64) float64 {
		d := v - mean
		return d * d * d * d
	}, nil)
	sigma2, err := s.Variance()
	if err != nil {
		return 0, err
	}
	c1 := (n / (n - 1)) * (n / (n - 2)) * ((n + 1) / (n - 3))
	c2 := 3.0 * ((n - 1) / (n - 2)) * ((n - 1) / (n - 3))
	return c1*(x/(sigma2*sigma2)) - c2, nil
}

// Min returns the minimum sample value.
func (s *Statistics) Min() (float64, error) {
	if len(s.samples) == 0 {
		return 0, fmt.Errorf("empty sample set: %w", ErrInsufficientData)
	}
	min := s.samples[0].value
	for _, smp := range s.samples[1:] {
		if smp.value < min {
			min = smp.value
		}
	}
	return min, nil
}

// Max returns the maximum sample value.
func (s *Statistics) Max() (float64, error) {
	if len(s.samples) == 0 {
		return 0, fmt.Errorf("empty sample set: %w", ErrInsufficientData)
	}
	max := s.samples[0].value
	for _, smp := range s.samples[1:] {
		if smp.value > max {
			max = smp.value
		}
	}
	return max, nil
}

// Percentile returns the value x such that percent of the total sample
// weight lies below x. percent must be in (0,1].
func (s *Statistics) Percentile(percent float64) (float64, error) {
	if percent <= 0.0 || percent > 1.0 {
		return 0, fmt.Errorf("percentile (%v) must be in (0,1]: %w", percent, ErrInsufficientData)
	}
	sampleWeight := s.WeightSum()
	if sampleWeight <= 0 {
		return 0, fmt.Errorf("empty sample set: %w", ErrInsufficientData)
	}

	s.Sort()

	target := percent * sampleWeight
	integral := s.samples[0].weight
	k := 0
	for integral < target && k != len(s.samples)-1 {
		k++
		integral += s.samples[k].weight
	}
	return s.samples[k].value, nil
}

// TopPercentile returns the value x such that percent of the total sample
// weight lies above x. percent must be in (0,1].
func (s *Statistics) TopPercentile(percent float64) (float64, error) {
	if percent <= 0.0 || percent > 1.0 {
		return 0, fmt.Errorf("percentile (%v) must be in (0,1]: %w", percent, ErrInsufficientData)
	}
	sampleWeight := s.WeightSum()
	if sampleWeight <= 0 {
		return 0, fmt.Errorf("empty sample set: %w", ErrInsufficientData)
	}

	s.Sort()

	target := percent * sampleWeight
	k := len(s.samples) - 1
	integral := s.samples[k].weight
	for integral < target && k != 0 {
		k--
		integral += s.samples[k].weight
	}
	return s.samples[k].value, nil
}
