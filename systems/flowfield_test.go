package systems

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/drift/components"
	"github.com/pthm-cable/drift/config"
)

func testFlowConfig(count int, boundary string) config.FlowConfig {
	return config.FlowConfig{
		Enabled:            true,
		ParticleCount:      count,
		Noise:              config.NoisePerlin,
		NoiseScale:         0.003,
		NoiseSpeed:         0.15,
		ParticleSpeed:      40,
		TurnResponsiveness: 4,
		CurvatureLookahead: 12,
		Boundary:           boundary,
	}
}

func newTestFlow(t *testing.T, cfg config.FlowConfig, bounds Bounds, seed int64) *FlowFieldSystem {
	t.Helper()
	s, err := NewFlowFieldSystem(cfg, bounds, seed)
	if err != nil {
		t.Fatalf("NewFlowFieldSystem: %v", err)
	}
	return s
}

func checkParticleInvariants(t *testing.T, s *FlowFieldSystem, step int) {
	t.Helper()
	maxSpeed := s.cfg.ParticleSpeed*maxSpeedMultiplier + 1e-9
	for i, p := range s.Particles().All() {
		if p.Pos.X < 0 || p.Pos.X > s.bounds.Width || p.Pos.Y < 0 || p.Pos.Y > s.bounds.Height {
			t.Fatalf("step %d: particle %d at %v outside %vx%v", step, i, p.Pos, s.bounds.Width, s.bounds.Height)
		}
		speed := r2.Norm(p.Vel)
		if math.IsNaN(speed) || speed > maxSpeed {
			t.Fatalf("step %d: particle %d speed %f exceeds %f", step, i, speed, maxSpeed)
		}
	}
}

// TestFlowSingleStepScenario moves one particle from the viewport centre for one 60 Hz frame.
func TestFlowSingleStepScenario(t *testing.T) {
	s := newTestFlow(t, testFlowConfig(1, config.BoundaryWrap), Bounds{Width: 800, Height: 600}, 1337)
	s.particles[0] = components.Particle{
		Pos: r2.Vec{X: 400, Y: 300},
		Vel: r2.Vec{X: 40, Y: 0},
	}
	s.SetFieldTime(0.15 / 60)

	s.Step(1.0 / 60.0)

	p := s.Particles().At(0)
	moved := r2.Norm(r2.Sub(p.Pos, r2.Vec{X: 400, Y: 300}))
	lo := 40 * minSpeedMultiplier / 60
	hi := 40 * maxSpeedMultiplier / 60
	if moved < lo-1e-9 || moved > hi+1e-9 {
		t.Errorf("moved %f px, want within [%f, %f]", moved, lo, hi)
	}
	if math.Abs(moved-0.67) > 0.2 {
		t.Errorf("moved %f px, want about 0.67", moved)
	}
	checkParticleInvariants(t, s, 1)
}

func TestFlowInvariants(t *testing.T) {
	for _, boundary := range []string{config.BoundaryWrap, config.BoundaryBounce} {
		t.Run(boundary, func(t *testing.T) {
			cfg := testFlowConfig(300, boundary)
			cfg.ParticleSpeed = 400 // cross edges often
			s := newTestFlow(t, cfg, Bounds{Width: 320, Height: 200}, 9)
			z := 0.0
			for step := 0; step < 400; step++ {
				dt := 1.0 / 60.0
				if step%7 == 0 {
					dt = 1.0 / 240.0
				}
				z += dt * cfg.NoiseSpeed
				s.SetFieldTime(z)
				s.Step(dt)
				checkParticleInvariants(t, s, step)
			}
			stats := s.Stats()
			if boundary == config.BoundaryWrap && stats.Wraps == 0 {
				t.Error("expected some wraps")
			}
			if boundary == config.BoundaryBounce && stats.Bounces == 0 {
				t.Error("expected some bounces")
			}
		})
	}
}

func TestFlowDeterminism(t *testing.T) {
	cfg := testFlowConfig(200, config.BoundaryWrap)
	a := newTestFlow(t, cfg, Bounds{Width: 800, Height: 600}, 2024)
	b := newTestFlow(t, cfg, Bounds{Width: 800, Height: 600}, 2024)

	dts := []float64{1.0 / 60, 1.0 / 144, 1.0 / 60, 0.01, 1.0 / 30}
	z := 0.0
	for i := 0; i < 300; i++ {
		dt := dts[i%len(dts)]
		z += dt * cfg.NoiseSpeed
		a.SetFieldTime(z)
		b.SetFieldTime(z)
		a.Step(dt)
		b.Step(dt)
	}

	for i := 0; i < a.Count(); i++ {
		pa, pb := a.Particles().At(i), b.Particles().At(i)
		if pa.Pos != pb.Pos || pa.Vel != pb.Vel {
			t.Fatalf("particle %d diverged: %v/%v vs %v/%v", i, pa.Pos, pa.Vel, pb.Pos, pb.Vel)
		}
	}
}

func TestFlowDifferentSeedsDiverge(t *testing.T) {
	cfg := testFlowConfig(10, config.BoundaryWrap)
	a := newTestFlow(t, cfg, Bounds{Width: 800, Height: 600}, 1)
	b := newTestFlow(t, cfg, Bounds{Width: 800, Height: 600}, 2)
	if a.Particles().At(0).Pos == b.Particles().At(0).Pos {
		t.Error("expected different seeds to spawn particles differently")
	}
}

func TestFlowInvalidStepIsNoop(t *testing.T) {
	s := newTestFlow(t, testFlowConfig(50, config.BoundaryWrap), Bounds{Width: 800, Height: 600}, 3)
	before := make([]components.Particle, s.Count())
	copy(before, s.particles)

	for _, dt := range []float64{0, -1.0 / 60, math.NaN(), math.Inf(1)} {
		s.Step(dt)
	}

	for i := range before {
		if s.particles[i] != before[i] {
			t.Fatalf("particle %d changed on an invalid step", i)
		}
	}
}

func TestFlowZeroVelocityRecovers(t *testing.T) {
	s := newTestFlow(t, testFlowConfig(1, config.BoundaryWrap), Bounds{Width: 800, Height: 600}, 4)
	s.particles[0].Vel = r2.Vec{}

	s.Step(1.0 / 60.0)

	p := s.Particles().At(0)
	if math.IsNaN(p.Vel.X) || math.IsNaN(p.Vel.Y) || math.IsNaN(p.Pos.X) || math.IsNaN(p.Pos.Y) {
		t.Fatalf("NaN after zero-velocity step: pos=%v vel=%v", p.Pos, p.Vel)
	}
	if r2.Norm(p.Vel) == 0 {
		t.Error("expected a fresh heading with non-zero speed")
	}
	if s.Stats().HeadingResets != 1 {
		t.Errorf("expected 1 heading reset, got %d", s.Stats().HeadingResets)
	}
}

func TestFlowWrapClearsTrail(t *testing.T) {
	cfg := testFlowConfig(1, config.BoundaryWrap)
	cfg.TurnResponsiveness = 0 // keep heading fixed
	s := newTestFlow(t, cfg, Bounds{Width: 800, Height: 600}, 5)
	s.particles[0] = components.Particle{Pos: r2.Vec{X: 799.9, Y: 300}, Vel: r2.Vec{X: 40}}
	s.particles[0].PushTrail(r2.Vec{X: 799, Y: 300})

	s.Step(0.1)

	p := s.Particles().At(0)
	if !p.Wrapped {
		t.Error("expected particle to be flagged as wrapped")
	}
	if p.TrailLen != 0 {
		t.Errorf("expected trail cleared on wrap, got length %d", p.TrailLen)
	}
	if p.Pos.X > 10 {
		t.Errorf("expected particle near left edge, got x=%f", p.Pos.X)
	}
	if math.Abs(p.Pos.Y-300) > 1e-9 {
		t.Errorf("y changed during horizontal wrap: %f", p.Pos.Y)
	}
}

func TestFlowBounceReflects(t *testing.T) {
	cfg := testFlowConfig(1, config.BoundaryBounce)
	cfg.TurnResponsiveness = 0
	s := newTestFlow(t, cfg, Bounds{Width: 800, Height: 600}, 6)
	s.particles[0] = components.Particle{Pos: r2.Vec{X: 799.9, Y: 300}, Vel: r2.Vec{X: 40}}

	s.Step(0.1)

	p := s.Particles().At(0)
	if p.Pos.X != 800 {
		t.Errorf("expected x clamped to 800, got %f", p.Pos.X)
	}
	if p.Vel.X >= 0 {
		t.Errorf("expected x velocity reflected, got %f", p.Vel.X)
	}
}

func TestFlowSteersTowardField(t *testing.T) {
	cfg := testFlowConfig(1, config.BoundaryWrap)
	cfg.TurnResponsiveness = 1000 // blend factor clamps to 1
	s := newTestFlow(t, cfg, Bounds{Width: 800, Height: 600}, 8)
	s.particles[0] = components.Particle{Pos: r2.Vec{X: 123, Y: 456}, Vel: r2.Vec{X: 40}}

	angle := s.FieldAngle(123, 456)
	s.Step(1.0 / 60.0)

	got := math.Atan2(s.particles[0].Vel.Y, s.particles[0].Vel.X)
	if math.Abs(normalizeAngle(got-angle)) > 1e-9 {
		t.Errorf("expected heading to snap to field angle %f, got %f", angle, got)
	}
}

func TestFlowReinitialize(t *testing.T) {
	s := newTestFlow(t, testFlowConfig(100, config.BoundaryWrap), Bounds{Width: 800, Height: 600}, 10)
	if err := s.Reinitialize(Bounds{Width: 200, Height: 100}); err != nil {
		t.Fatalf("Reinitialize: %v", err)
	}
	checkParticleInvariants(t, s, 0)
	if s.Stats().Reinitialized != 1 {
		t.Error("expected reinitialize to be counted")
	}
	if err := s.Reinitialize(Bounds{Width: 0, Height: 100}); !errors.Is(err, ErrInvalidBounds) {
		t.Errorf("expected ErrInvalidBounds, got %v", err)
	}
}

func TestNewFlowFieldValidates(t *testing.T) {
	cfg := testFlowConfig(0, config.BoundaryWrap)
	if _, err := NewFlowFieldSystem(cfg, Bounds{Width: 800, Height: 600}, 1); !errors.Is(err, config.ErrInvalid) {
		t.Errorf("expected ErrInvalid for zero particles, got %v", err)
	}
	cfg = testFlowConfig(10, config.BoundaryWrap)
	if _, err := NewFlowFieldSystem(cfg, Bounds{Width: -5, Height: 600}, 1); !errors.Is(err, ErrInvalidBounds) {
		t.Errorf("expected ErrInvalidBounds, got %v", err)
	}
}

func TestFlowSimplexBackend(t *testing.T) {
	cfg := testFlowConfig(50, config.BoundaryWrap)
	cfg.Noise = config.NoiseSimplex
	s := newTestFlow(t, cfg, Bounds{Width: 400, Height: 300}, 12)
	if _, ok := s.noise.(*SimplexNoise); !ok {
		t.Fatalf("expected simplex sampler, got %T", s.noise)
	}
	for i := 0; i < 60; i++ {
		s.Step(1.0 / 60.0)
	}
	checkParticleInvariants(t, s, 60)
}
