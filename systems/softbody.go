package systems

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/drift/components"
	"github.com/pthm-cable/drift/config"
)

// softnessCollisionFactor is the share of the soft edge that counts toward collisions.
const softnessCollisionFactor = 0.3

// SoftBodyStats counts boundary and placement events since construction.
type SoftBodyStats struct {
	Bounces            int
	FallbackPlacements int
	Reinitialized      int
}

// SoftBodySystem drifts circular bodies around the viewport and bounces them
// elastically off its edges. Circles and orbs differ only by configuration.
type SoftBodySystem struct {
	cfg     config.SoftBodyConfig
	palette components.Palette
	bodies  []components.SoftBody
	rng     *rand.Rand
	bounds  Bounds
	stats   SoftBodyStats
}

// NewSoftBodySystem creates cfg.Count bodies placed by rejection sampling.
func NewSoftBodySystem(cfg config.SoftBodyConfig, palette components.Palette, bounds Bounds, seed int64) (*SoftBodySystem, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("soft bodies: %w", err)
	}
	if len(palette) == 0 {
		return nil, fmt.Errorf("soft bodies: %w: empty palette", config.ErrInvalid)
	}
	if !bounds.Valid() {
		return nil, fmt.Errorf("soft bodies: %w: %gx%g", ErrInvalidBounds, bounds.Width, bounds.Height)
	}

	s := &SoftBodySystem{
		cfg:     cfg,
		palette: palette,
		bodies:  make([]components.SoftBody, 0, cfg.Count),
		rng:     rand.New(rand.NewSource(seed)),
		bounds:  bounds,
	}
	s.place()
	return s, nil
}

// Reinitialize discards all bodies and places a fresh set inside new bounds.
func (s *SoftBodySystem) Reinitialize(bounds Bounds) error {
	if !bounds.Valid() {
		return fmt.Errorf("soft bodies: %w: %gx%g", ErrInvalidBounds, bounds.Width, bounds.Height)
	}
	s.bounds = bounds
	s.place()
	s.stats.Reinitialized++
	return nil
}

// place creates every body. Each candidate position is retried up to
// PlacementAttempts times against the minimum spacing to already-placed
// bodies; when all attempts fail the last unconstrained draw is accepted, so
// separation is best-effort under high density.
func (s *SoftBodySystem) place() {
	s.bodies = s.bodies[:0]

	for i := 0; i < s.cfg.Count; i++ {
		radius := s.drawRadius()
		depth := s.cfg.DepthMin + s.rng.Float64()*(s.cfg.DepthMax-s.cfg.DepthMin)
		heading := s.rng.Float64() * 2 * math.Pi

		color := s.palette.At(i)
		if s.cfg.RandomColors {
			color = s.palette.Random(s.rng)
		}

		er := s.effectiveRadius(radius)
		pos, ok := s.findPosition(radius, er)
		if !ok {
			pos = s.randomPosition(er)
			s.stats.FallbackPlacements++
		}

		s.bodies = append(s.bodies, components.SoftBody{
			Pos:     pos,
			Vel:     r2.Scale(s.speedFor(depth), unitFromAngle(heading)),
			Radius:  radius,
			Depth:   depth,
			Heading: heading,
			Color:   color,
			Phase:   s.rng.Float64() * 2 * math.Pi,
		})
	}
}

// drawRadius picks a radius in [RadiusMin, RadiusMax], biased toward small
// radii when RadiusBias is set.
func (s *SoftBodySystem) drawRadius() float64 {
	u := s.rng.Float64()
	if s.cfg.RadiusBias {
		u *= u
	}
	return lerp(u, s.cfg.RadiusMin, s.cfg.RadiusMax)
}

func (s *SoftBodySystem) findPosition(radius, er float64) (r2.Vec, bool) {
	spacing := s.cfg.SpacingFactor
	for attempt := 0; attempt < s.cfg.PlacementAttempts; attempt++ {
		candidate := s.randomPosition(er)
		free := true
		for j := range s.bodies {
			other := &s.bodies[j]
			minDist := (radius + other.Radius) * spacing
			if r2.Norm2(r2.Sub(candidate, other.Pos)) < minDist*minDist {
				free = false
				break
			}
		}
		if free {
			return candidate, true
		}
	}
	return r2.Vec{}, false
}

// randomPosition draws a point whose effective circle fits inside the viewport
// where possible; an axis too small for the body is centred.
func (s *SoftBodySystem) randomPosition(er float64) r2.Vec {
	return r2.Vec{
		X: s.randomAxis(er, s.bounds.Width),
		Y: s.randomAxis(er, s.bounds.Height),
	}
}

func (s *SoftBodySystem) randomAxis(er, size float64) float64 {
	span := size - 2*er
	if span <= 0 {
		return size / 2
	}
	return er + s.rng.Float64()*span
}

func (s *SoftBodySystem) effectiveRadius(radius float64) float64 {
	return radius + s.cfg.Softness*softnessCollisionFactor
}

// speedFor returns the parallax-scaled speed; deeper bodies are slower.
func (s *SoftBodySystem) speedFor(depth float64) float64 {
	return s.cfg.BaseSpeed * s.cfg.PixelsPerSecondUnit / (1 + depth*s.cfg.ParallaxScale)
}

// Step drifts, moves and bounces every body. Non-finite or non-positive dt is ignored.
func (s *SoftBodySystem) Step(dt float64) {
	if !validStep(dt) {
		return
	}

	drift := s.cfg.DriftStrength
	for i := range s.bodies {
		b := &s.bodies[i]

		// Random walk on the heading
		b.Heading = normalizeAngle(b.Heading + (s.rng.Float64()-0.5)*drift*dt)

		b.Vel = r2.Scale(s.speedFor(b.Depth), unitFromAngle(b.Heading))
		b.Pos = r2.Add(b.Pos, r2.Scale(dt, b.Vel))

		if s.collide(b) {
			// Later drift perturbs the post-bounce heading
			b.Heading = math.Atan2(b.Vel.Y, b.Vel.X)
			s.stats.Bounces++
		}
	}
}

// collide clamps b inside the viewport and reflects the velocity component
// normal to each edge it crossed, scaled by BounceDamping.
func (s *SoftBodySystem) collide(b *components.SoftBody) bool {
	er := s.effectiveRadius(b.Radius)
	damping := s.cfg.BounceDamping
	hit := false

	if x, v, ok := collideAxis(b.Pos.X, b.Vel.X, er, s.bounds.Width, damping); ok {
		b.Pos.X, b.Vel.X = x, v
		hit = true
	}
	if y, v, ok := collideAxis(b.Pos.Y, b.Vel.Y, er, s.bounds.Height, damping); ok {
		b.Pos.Y, b.Vel.Y = y, v
		hit = true
	}
	return hit
}

// collideAxis resolves one axis. The velocity only flips when it points into
// the edge, so a body pushed back inside is never sent outward again.
func collideAxis(pos, vel, er, size, damping float64) (float64, float64, bool) {
	if 2*er >= size {
		// Body wider than the viewport on this axis
		if pos == size/2 {
			return pos, vel, false
		}
		return size / 2, -vel * damping, true
	}
	switch {
	case pos-er < 0:
		if vel < 0 {
			vel = -vel * damping
		}
		return er, vel, true
	case pos+er > size:
		if vel > 0 {
			vel = -vel * damping
		}
		return size - er, vel, true
	}
	return pos, vel, false
}

// Bodies returns a read-only view valid until the next Step or Reinitialize.
func (s *SoftBodySystem) Bodies() components.BodyView {
	return components.NewBodyView(s.bodies)
}

// Bounds returns the current viewport.
func (s *SoftBodySystem) Bounds() Bounds {
	return s.bounds
}

// Stats returns event counters since construction.
func (s *SoftBodySystem) Stats() SoftBodyStats {
	return s.stats
}

// Config returns the configuration the system was built with.
func (s *SoftBodySystem) Config() config.SoftBodyConfig {
	return s.cfg
}

// MaxSpeed returns the speed of a body at depth zero.
func (s *SoftBodySystem) MaxSpeed() float64 {
	return s.speedFor(0)
}
