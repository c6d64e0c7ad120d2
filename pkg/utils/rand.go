package utils

import (
	"math"
	"math/rand"
	"time"
)

// RandSource is a seeded random number generator. Not safe for concurrent
// use; each simulation owns its own source.
type RandSource struct {
	rng *rand.Rand
}

// NewRandSource creates a new random source with the given seed.
// A zero seed picks one from the wall clock.
func NewRandSource(seed int64) *RandSource {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &RandSource{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// Float64 returns a random float64 in [0.0, 1.0)
func (r *RandSource) Float64() float64 {
	return r.rng.Float64()
}

// Int63 returns a non-negative random int64, handy for deriving child seeds
func (r *RandSource) Int63() int64 {
	return r.rng.Int63()
}

// Centered returns a uniform value in [-amplitude/2, amplitude/2)
func (r *RandSource) Centered(amplitude float64) float64 {
	return (r.rng.Float64() - 0.5) * amplitude
}

// Angle returns a uniform angle in [0, 2π)
func (r *RandSource) Angle() float64 {
	return r.rng.Float64() * 2 * math.Pi
}

// UniformFloat64 returns a uniformly distributed random number in [min, max)
func (r *RandSource) UniformFloat64(min, max float64) float64 {
	return min + r.rng.Float64()*(max-min)
}
