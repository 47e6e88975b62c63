package testutil

import (
	"math"
	"math/rand"
	"sync"

	"github.com/hupe1980/skycat/model"
)

// RNG struct encapsulates the random number generator and seed.
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

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Uniform returns a pseudo-random number in [lo, hi).
func (r *RNG) Uniform(lo, hi float64) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return lo + r.rand.Float64()*(hi-lo)
}

// SkyPoints returns n positions distributed uniformly on the sphere.
func (r *RNG) SkyPoints(n int) []model.Point {
	r.mu.Lock()
	defer r.mu.Unlock()

	pts := make([]model.Point, n)
	for i := range pts {
		pts[i] = model.Point{
			RA:  r.rand.Float64() * 360,
			Dec: math.Asin(2*r.rand.Float64()-1) * 180 / math.Pi,
		}
	}
	return pts
}

// PointsNear returns n positions within a box of half-width spread degrees
// around center. Declinations are clamped to the poles and RA wraps.
func (r *RNG) PointsNear(center model.Point, spread float64, n int) []model.Point {
	r.mu.Lock()
	defer r.mu.Unlock()

	pts := make([]model.Point, n)
	for i := range pts {
		ra := center.RA + (2*r.rand.Float64()-1)*spread
		ra = math.Mod(ra+360, 360)
		dec := center.Dec + (2*r.rand.Float64()-1)*spread
		pts[i] = model.Point{RA: ra, Dec: max(-90, min(90, dec))}
	}
	return pts
}

// Magnitude returns a plausible V magnitude in [8, 16).
func (r *RNG) Magnitude() float64 {
	return r.Uniform(8, 16)
}
