package systems

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/drift/components"
	"github.com/pthm-cable/drift/config"
)

// ErrInvalidBounds is returned when a viewport has no usable area.
var ErrInvalidBounds = errors.New("invalid bounds")

// Speed modulation range driven by local field curvature.
const (
	minSpeedMultiplier = 0.75
	maxSpeedMultiplier = 1.25

	// fullCurvature is the sampled direction change that maps to the slowest speed.
	fullCurvature = math.Pi / 4

	// minHeadingLength below which a heading is treated as degenerate.
	minHeadingLength = 1e-6
)

// FlowStats counts recoveries and boundary events since construction.
type FlowStats struct {
	Wraps         int
	Bounces       int
	HeadingResets int
	Reinitialized int
}

// FlowFieldSystem advects particles through a time-varying noise field.
type FlowFieldSystem struct {
	cfg       config.FlowConfig
	particles []components.Particle
	noise     NoiseSampler
	rng       *rand.Rand
	bounds    Bounds
	fieldTime float64
	wrap      bool
	stats     FlowStats
}

// NewFlowFieldSystem creates a flow field with cfg.ParticleCount particles at
// random positions and headings. The noise field and the random source are
// both derived from seed, so equal seeds give equal runs.
func NewFlowFieldSystem(cfg config.FlowConfig, bounds Bounds, seed int64) (*FlowFieldSystem, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("flow: %w", err)
	}
	if !bounds.Valid() {
		return nil, fmt.Errorf("flow: %w: %gx%g", ErrInvalidBounds, bounds.Width, bounds.Height)
	}

	var noise NoiseSampler
	switch cfg.Noise {
	case config.NoiseSimplex:
		noise = NewSimplexNoise(seed)
	default:
		noise = NewPerlinNoise(seed)
	}

	s := &FlowFieldSystem{
		cfg:       cfg,
		particles: make([]components.Particle, cfg.ParticleCount),
		noise:     noise,
		rng:       rand.New(rand.NewSource(seed)),
		bounds:    bounds,
		wrap:      cfg.Boundary == config.BoundaryWrap,
	}
	s.spawn()
	return s, nil
}

// spawn places every particle at a random position with a random heading.
func (s *FlowFieldSystem) spawn() {
	for i := range s.particles {
		s.particles[i] = components.Particle{
			Pos: r2.Vec{
				X: s.rng.Float64() * s.bounds.Width,
				Y: s.rng.Float64() * s.bounds.Height,
			},
			Vel: r2.Scale(s.cfg.ParticleSpeed, s.randomHeading()),
		}
	}
}

// Reinitialize respawns all particles inside new bounds.
// Positions are absolute, so they carry no meaning across a resize.
func (s *FlowFieldSystem) Reinitialize(bounds Bounds) error {
	if !bounds.Valid() {
		return fmt.Errorf("flow: %w: %gx%g", ErrInvalidBounds, bounds.Width, bounds.Height)
	}
	s.bounds = bounds
	s.spawn()
	s.stats.Reinitialized++
	return nil
}

// SetFieldTime sets the z-coordinate used for every field sample until the next call.
func (s *FlowFieldSystem) SetFieldTime(z float64) {
	s.fieldTime = z
}

// FieldTime returns the current field z-coordinate.
func (s *FlowFieldSystem) FieldTime() float64 {
	return s.fieldTime
}

// FieldAngle samples the flow direction (radians) at a viewport position.
func (s *FlowFieldSystem) FieldAngle(x, y float64) float64 {
	scale := s.cfg.NoiseScale
	return s.noise.Noise3D(x*scale, y*scale, s.fieldTime) * 2 * math.Pi
}

// Step advances every particle by dt seconds. Non-finite or non-positive dt is ignored.
func (s *FlowFieldSystem) Step(dt float64) {
	if !validStep(dt) {
		return
	}

	blend := clamp(s.cfg.TurnResponsiveness*dt, 0, 1)
	lookahead := s.cfg.CurvatureLookahead

	for i := range s.particles {
		p := &s.particles[i]
		p.Wrapped = false

		// Sample field direction at the current position
		angle := s.FieldAngle(p.Pos.X, p.Pos.Y)
		fieldDir := unitFromAngle(angle)

		// Low-pass the heading toward the field
		heading := p.Vel
		if r2.Norm(heading) < minHeadingLength {
			heading = s.randomHeading()
			s.stats.HeadingResets++
		} else {
			heading = r2.Unit(heading)
		}
		heading = r2.Add(heading, r2.Scale(blend, r2.Sub(fieldDir, heading)))
		if r2.Norm(heading) < minHeadingLength {
			// Heading and field were exactly opposed
			heading = s.randomHeading()
			s.stats.HeadingResets++
		} else {
			heading = r2.Unit(heading)
		}

		// Curvature ahead modulates speed
		ahead := r2.Add(p.Pos, r2.Scale(lookahead, heading))
		aheadAngle := s.FieldAngle(ahead.X, ahead.Y)
		curvature := math.Abs(normalizeAngle(aheadAngle - angle))
		mul := maxSpeedMultiplier - (maxSpeedMultiplier-minSpeedMultiplier)*clamp(curvature/fullCurvature, 0, 1)

		p.PushTrail(p.Pos)
		p.Vel = r2.Scale(s.cfg.ParticleSpeed*mul, heading)
		p.Pos = r2.Add(p.Pos, r2.Scale(dt, p.Vel))

		if s.wrap {
			s.wrapEdges(p)
		} else {
			s.bounceEdges(p)
		}
	}
}

// wrapEdges wraps the particle to the opposite edge and drops its trail
// so no stroke is drawn across the viewport.
func (s *FlowFieldSystem) wrapEdges(p *components.Particle) {
	w, h := s.bounds.Width, s.bounds.Height
	if p.Pos.X < 0 || p.Pos.X > w || p.Pos.Y < 0 || p.Pos.Y > h {
		p.Pos.X = wrap(p.Pos.X, w)
		p.Pos.Y = wrap(p.Pos.Y, h)
		p.Wrapped = true
		p.ClearTrail()
		s.stats.Wraps++
	}
}

// bounceEdges clamps the particle to the viewport and reflects the offending component.
func (s *FlowFieldSystem) bounceEdges(p *components.Particle) {
	w, h := s.bounds.Width, s.bounds.Height
	bounced := false
	if p.Pos.X < 0 {
		p.Pos.X = 0
		p.Vel.X = -p.Vel.X
		bounced = true
	} else if p.Pos.X > w {
		p.Pos.X = w
		p.Vel.X = -p.Vel.X
		bounced = true
	}
	if p.Pos.Y < 0 {
		p.Pos.Y = 0
		p.Vel.Y = -p.Vel.Y
		bounced = true
	} else if p.Pos.Y > h {
		p.Pos.Y = h
		p.Vel.Y = -p.Vel.Y
		bounced = true
	}
	if bounced {
		s.stats.Bounces++
	}
}

func (s *FlowFieldSystem) randomHeading() r2.Vec {
	return unitFromAngle(s.rng.Float64() * 2 * math.Pi)
}

// Particles returns a read-only view valid until the next Step or Reinitialize.
func (s *FlowFieldSystem) Particles() components.ParticleView {
	return components.NewParticleView(s.particles)
}

// Bounds returns the current viewport.
func (s *FlowFieldSystem) Bounds() Bounds {
	return s.bounds
}

// Stats returns event counters since construction.
func (s *FlowFieldSystem) Stats() FlowStats {
	return s.stats
}

// Count returns the number of particles.
func (s *FlowFieldSystem) Count() int {
	return len(s.particles)
}
