// Package components defines the entity records owned by the simulations.
package components

import (
	"iter"

	"gonum.org/v1/gonum/spatial/r2"
)

// TrailLength is the number of past positions kept per particle.
const TrailLength = 8

// Particle is a single flow field particle.
type Particle struct {
	Pos r2.Vec // viewport coordinates
	Vel r2.Vec // px/s; direction is the current heading

	// Trail history (most recent first)
	Trail    [TrailLength]r2.Vec
	TrailLen uint8

	// Wrapped is set when the last step moved the particle across a viewport edge.
	Wrapped bool
}

// PushTrail shifts the trail history and records pos as the newest point.
func (p *Particle) PushTrail(pos r2.Vec) {
	for j := len(p.Trail) - 1; j > 0; j-- {
		p.Trail[j] = p.Trail[j-1]
	}
	p.Trail[0] = pos
	if p.TrailLen < TrailLength {
		p.TrailLen++
	}
}

// Speed returns the magnitude of the velocity in px/s.
func (p Particle) Speed() float64 {
	return r2.Norm(p.Vel)
}

// ClearTrail drops the trail history.
func (p *Particle) ClearTrail() {
	p.TrailLen = 0
}

// ParticleView is a read-only view of a particle collection.
// It is only valid for the frame it was obtained in.
type ParticleView struct {
	items []Particle
}

// NewParticleView wraps particles in a read-only view.
func NewParticleView(particles []Particle) ParticleView {
	return ParticleView{items: particles}
}

// Len returns the number of particles.
func (v ParticleView) Len() int { return len(v.items) }

// At returns a copy of the i-th particle.
func (v ParticleView) At(i int) Particle { return v.items[i] }

// All iterates over copies of the particles.
func (v ParticleView) All() iter.Seq2[int, Particle] {
	return func(yield func(int, Particle) bool) {
		for i := range v.items {
			if !yield(i, v.items[i]) {
				return
			}
		}
	}
}
