package testutil

import (
	"math/rand"
	"sync"

	"github.com/mutscan/mutscan/embedding"
)

// RNG encapsulates a seeded random number generator.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Float32 returns, as a float32, a pseudo-random number in [0.0,1.0).
func (r *RNG) Float32() float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float32()
}

// UniformRangeVector returns a vector with values in [minVal, maxVal).
func (r *RNG) UniformRangeVector(dims int, minVal, maxVal float32) []float32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	span := maxVal - minVal
	vec := make([]float32, dims)
	for i := range vec {
		vec[i] = minVal + r.rand.Float32()*span
	}
	return vec
}

// UniformRangeSeries returns a float64 series with values in [minVal, maxVal).
func (r *RNG) UniformRangeSeries(n int, minVal, maxVal float64) []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	span := maxVal - minVal
	out := make([]float64, n)
	for i := range out {
		out[i] = minVal + r.rand.Float64()*span
	}
	return out
}

// Matrix returns a positions × dims embedding matrix with values in
// [-1, 1). Uses a single backing array for efficiency.
func (r *RNG) Matrix(positions, dims int) *embedding.Matrix {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float32, positions*dims)
	for i := range data {
		data[i] = r.rand.Float32()*2 - 1
	}

	m, err := embedding.New(data, positions, dims)
	if err != nil {
		// Shapes are caller-controlled constants in tests.
		panic(err)
	}
	return m
}
