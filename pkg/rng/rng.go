// Package rng provides the seeded uniform random stream feeding the
// stochastic algorithms in this toolkit.
//
// A Uniform instance owns a single PCG source. It is deliberately not safe
// for concurrent use: every consumer (one optimizer run, one simulation)
// owns its own stream so that a fixed seed replays the exact same draw
// sequence.
package rng

import (
	"golang.org/x/exp/rand"
)

// Uniform is a seedable pseudo-random stream of float64 values in [0,1).
type Uniform struct {
	src *rand.Rand
}

// New creates a uniform stream seeded with the given value. The same seed
// always yields the same sequence.
func New(seed uint64) *Uniform {
	return &Uniform{src: rand.New(rand.NewSource(seed))}
}

// Next returns the next value in [0,1).
func (u *Uniform) Next() float64 {
	return u.src.Float64()
}

// NextRange returns the next value scaled into [lo,hi).
func (u *Uniform) NextRange(lo, hi float64) float64 {
	return lo + (hi-lo)*u.src.Float64()
}

// Shuffle applies a Fisher-Yates shuffle of n elements using this stream,
// calling swap for each exchange. The draw cadence is fixed: exactly n-1
// draws per call, so shuffles stay reproducible for a fixed seed.
func (u *Uniform) Shuffle(n int, swap func(i, j int)) {
	u.src.Shuffle(n, swap)
}

// Perm returns a random permutation of [0,n).
func (u *Uniform) Perm(n int) []int {
	return u.src.Perm(n)
}
