package systems

import "github.com/ojrac/opensimplex-go"

// SimplexNoise adapts OpenSimplex noise to NoiseSampler.
// It has fewer directional artifacts than Perlin noise at the cost of a different look.
type SimplexNoise struct {
	seed  int64
	noise opensimplex.Noise
}

// NewSimplexNoise creates a seeded OpenSimplex sampler.
func NewSimplexNoise(seed int64) *SimplexNoise {
	return &SimplexNoise{seed: seed, noise: opensimplex.New(seed)}
}

// Seed returns the construction seed.
func (s *SimplexNoise) Seed() int64 {
	return s.seed
}

// Noise3D returns a noise value in [-1, 1].
func (s *SimplexNoise) Noise3D(x, y, z float64) float64 {
	return clampUnit(s.noise.Eval3(x, y, z))
}
