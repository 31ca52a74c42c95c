package systems

import (
	"math"
	"testing"
)

func TestPerlinNoisePure(t *testing.T) {
	n := NewPerlinNoise(1337)
	points := [][3]float64{{0.5, 0.5, 0.5}, {12.3, -4.7, 0.15}, {-100.25, 7.5, 3.3}}
	for _, pt := range points {
		a := n.Noise3D(pt[0], pt[1], pt[2])
		b := n.Noise3D(pt[0], pt[1], pt[2])
		if a != b {
			t.Errorf("Noise3D%v not repeatable: %v vs %v", pt, a, b)
		}
	}
}

func TestPerlinNoiseSameSeed(t *testing.T) {
	a := NewPerlinNoise(42)
	b := NewPerlinNoise(42)
	if a.perm != b.perm {
		t.Fatal("same seed produced different permutation tables")
	}
	for i := 0; i < 200; i++ {
		x, y, z := float64(i)*0.37, float64(i)*-0.21, float64(i)*0.05
		if a.Noise3D(x, y, z) != b.Noise3D(x, y, z) {
			t.Fatalf("sample %d differs between instances with the same seed", i)
		}
	}
}

func TestPerlinNoiseDifferentSeeds(t *testing.T) {
	a := NewPerlinNoise(1)
	b := NewPerlinNoise(2)
	differ := 0
	for i := 0; i < 100; i++ {
		x, y := float64(i)*0.731+0.1, float64(i)*0.419+0.2
		if a.Noise3D(x, y, 0.5) != b.Noise3D(x, y, 0.5) {
			differ++
		}
	}
	if differ < 90 {
		t.Errorf("expected different seeds to disagree on most samples, only %d/100 differ", differ)
	}
}

func TestPerlinNoiseRange(t *testing.T) {
	n := NewPerlinNoise(7)
	nonZero := false
	for i := 0; i < 5000; i++ {
		x := float64(i%71)*0.173 - 5
		y := float64(i%53)*0.291 + 3
		z := float64(i%37) * 0.113
		v := n.Noise3D(x, y, z)
		if v < -1 || v > 1 || math.IsNaN(v) {
			t.Fatalf("Noise3D(%f, %f, %f) = %f out of [-1, 1]", x, y, z, v)
		}
		if v != 0 {
			nonZero = true
		}
	}
	if !nonZero {
		t.Error("expected non-zero noise values")
	}
}

func TestPerlinNoiseZeroAtLattice(t *testing.T) {
	// Gradient noise vanishes at lattice points
	n := NewPerlinNoise(99)
	for _, pt := range [][3]float64{{0, 0, 0}, {3, 4, 5}, {-2, 7, 1}, {300, -300, 12}} {
		if v := n.Noise3D(pt[0], pt[1], pt[2]); math.Abs(v) > 1e-12 {
			t.Errorf("Noise3D%v = %g, want 0", pt, v)
		}
	}
}

func TestPerlinNoiseContinuity(t *testing.T) {
	n := NewPerlinNoise(5)
	const eps = 1e-4
	for i := 0; i < 100; i++ {
		x := float64(i)*0.13 + 0.01
		a := n.Noise3D(x, 1.7, 0.3)
		b := n.Noise3D(x+eps, 1.7, 0.3)
		if math.Abs(a-b) > 0.01 {
			t.Errorf("discontinuity at x=%f: %f vs %f", x, a, b)
		}
	}
}

func TestSimplexNoiseDeterministic(t *testing.T) {
	a := NewSimplexNoise(11)
	b := NewSimplexNoise(11)
	for i := 0; i < 50; i++ {
		x, y, z := float64(i)*0.3, float64(i)*0.7, float64(i)*0.01
		va, vb := a.Noise3D(x, y, z), b.Noise3D(x, y, z)
		if va != vb {
			t.Fatalf("simplex differs for same seed at %d", i)
		}
		if va < -1 || va > 1 {
			t.Fatalf("simplex value %f out of range", va)
		}
	}
}
