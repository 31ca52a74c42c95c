package systems

import (
	"math"
	"math/rand"
)

// NoiseSampler is a scalar field over (x, y, z) with values in [-1, 1].
type NoiseSampler interface {
	Noise3D(x, y, z float64) float64
}

// gradients are the 12 cube-edge directions of improved Perlin noise.
var gradients = [12][3]float64{
	{1, 1, 0}, {-1, 1, 0}, {1, -1, 0}, {-1, -1, 0},
	{1, 0, 1}, {-1, 0, 1}, {1, 0, -1}, {-1, 0, -1},
	{0, 1, 1}, {0, -1, 1}, {0, 1, -1}, {0, -1, -1},
}

// PerlinNoise generates coherent gradient noise from a seeded permutation table.
// It holds no mutable state after construction and is safe to share read-only.
type PerlinNoise struct {
	seed int64
	perm [512]int
}

// NewPerlinNoise creates a new Perlin noise generator.
// The same seed always yields the same permutation table.
func NewPerlinNoise(seed int64) *PerlinNoise {
	p := &PerlinNoise{seed: seed}
	rng := rand.New(rand.NewSource(seed))

	var perm [256]int
	for i := range perm {
		perm[i] = i
	}

	// Fisher-Yates
	for i := len(perm) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		perm[i], perm[j] = perm[j], perm[i]
	}

	for i := 0; i < 256; i++ {
		p.perm[i] = perm[i]
		p.perm[i+256] = perm[i]
	}

	return p
}

// Seed returns the seed the permutation table was built from.
func (p *PerlinNoise) Seed() int64 {
	return p.seed
}

// Noise3D returns a noise value in [-1, 1] for 3D coordinates.
func (p *PerlinNoise) Noise3D(x, y, z float64) float64 {
	fx, fy, fz := math.Floor(x), math.Floor(y), math.Floor(z)

	// Lattice cell, wrapped into the table
	X := int(fx) & 255
	Y := int(fy) & 255
	Z := int(fz) & 255

	// Offsets within the cell
	x -= fx
	y -= fy
	z -= fz

	u := fade(x)
	v := fade(y)
	w := fade(z)

	n000 := p.corner(X, Y, Z, x, y, z)
	n100 := p.corner(X+1, Y, Z, x-1, y, z)
	n010 := p.corner(X, Y+1, Z, x, y-1, z)
	n110 := p.corner(X+1, Y+1, Z, x-1, y-1, z)
	n001 := p.corner(X, Y, Z+1, x, y, z-1)
	n101 := p.corner(X+1, Y, Z+1, x-1, y, z-1)
	n011 := p.corner(X, Y+1, Z+1, x, y-1, z-1)
	n111 := p.corner(X+1, Y+1, Z+1, x-1, y-1, z-1)

	n := lerp(w,
		lerp(v, lerp(u, n000, n100), lerp(u, n010, n110)),
		lerp(v, lerp(u, n001, n101), lerp(u, n011, n111)),
	)
	return clampUnit(n)
}

// Noise2D returns a noise value for 2D coordinates.
func (p *PerlinNoise) Noise2D(x, y float64) float64 {
	return p.Noise3D(x, y, 0)
}

// corner hashes lattice point (i, j, k) to a gradient and dots it with the offset.
// Indices stay below 512: i, j, k <= 256 and table entries <= 255.
func (p *PerlinNoise) corner(i, j, k int, dx, dy, dz float64) float64 {
	h := p.perm[p.perm[p.perm[i]+j]+k] % 12
	g := gradients[h]
	return g[0]*dx + g[1]*dy + g[2]*dz
}

func fade(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

func lerp(t, a, b float64) float64 {
	return a + t*(b-a)
}

func clampUnit(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}
