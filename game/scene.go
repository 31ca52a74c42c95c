// Package game composes the clock and the background simulations into a
// scene that hosts drive one frame at a time. It has no graphics dependencies.
package game

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/drift/components"
	"github.com/pthm-cable/drift/config"
	"github.com/pthm-cable/drift/systems"
	"github.com/pthm-cable/drift/telemetry"
)

// Layer seed offsets keep the three simulations decorrelated under one scene seed.
const (
	flowSeedOffset    = 0
	circlesSeedOffset = 0x5eed
	orbsSeedOffset    = 0x0bb5
)

// Options configures a Scene beyond the config file.
type Options struct {
	Seed      int64
	LogStats  bool   // Log window stats via slog
	OutputDir string // CSV and config snapshot directory (empty = disabled)
}

// Scene owns one instance of each enabled simulation plus the clock that feeds them.
type Scene struct {
	cfg     *config.Config
	seed    int64
	palette components.Palette
	bounds  systems.Bounds

	clock   *systems.SimulationClock
	flow    *systems.FlowFieldSystem // nil when disabled
	circles *systems.SoftBodySystem  // nil when disabled
	orbs    *systems.SoftBodySystem  // nil when disabled

	paused  bool
	simTime float64
	frames  int

	// Telemetry
	logStats      bool
	collector     *telemetry.Collector
	perfCollector *telemetry.PerfCollector
	outputManager *telemetry.OutputManager
	frameOpen     bool

	// Scratch buffers for window sampling
	particleSpeeds []float64
	bodySpeeds     []float64
}

// NewScene builds every enabled layer for a width x height viewport.
func NewScene(cfg *config.Config, opts Options, width, height float64) (*Scene, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("scene: %w", err)
	}
	palette, err := components.ParsePalette(cfg.Palette)
	if err != nil {
		return nil, fmt.Errorf("scene: %w", err)
	}
	clock, err := systems.NewSimulationClock(cfg.Clock, cfg.Flow.NoiseSpeed)
	if err != nil {
		return nil, fmt.Errorf("scene: %w", err)
	}

	s := &Scene{
		cfg:           cfg,
		seed:          opts.Seed,
		palette:       palette,
		bounds:        systems.Bounds{Width: width, Height: height},
		clock:         clock,
		logStats:      opts.LogStats,
		collector:     telemetry.NewCollector(cfg.Telemetry.StatsWindow),
		perfCollector: telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
	}
	if err := s.build(); err != nil {
		return nil, err
	}

	s.outputManager, err = telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("scene: %w", err)
	}
	if err := s.outputManager.WriteConfig(cfg); err != nil {
		s.outputManager.Close()
		return nil, fmt.Errorf("scene: writing config snapshot: %w", err)
	}

	return s, nil
}

// build creates the enabled simulations from the current seed and bounds.
func (s *Scene) build() error {
	var err error
	s.flow, s.circles, s.orbs = nil, nil, nil

	if s.cfg.Flow.Enabled {
		s.flow, err = systems.NewFlowFieldSystem(s.cfg.Flow, s.bounds, s.seed+flowSeedOffset)
		if err != nil {
			return fmt.Errorf("scene: %w", err)
		}
		s.flow.SetFieldTime(s.clock.FieldTime())
	}
	if s.cfg.Circles.Enabled {
		s.circles, err = systems.NewSoftBodySystem(s.cfg.Circles, s.palette, s.bounds, s.seed+circlesSeedOffset)
		if err != nil {
			return fmt.Errorf("scene: circles: %w", err)
		}
	}
	if s.cfg.Orbs.Enabled {
		s.orbs, err = systems.NewSoftBodySystem(s.cfg.Orbs, s.palette, s.bounds, s.seed+orbsSeedOffset)
		if err != nil {
			return fmt.Errorf("scene: orbs: %w", err)
		}
	}
	return nil
}

// Advance consumes the host's total elapsed time in seconds and integrates
// every enabled layer. Returns the number of steps taken.
func (s *Scene) Advance(elapsed float64) int {
	if s.frameOpen {
		s.perfCollector.EndFrame()
	}
	s.perfCollector.StartFrame()
	s.frameOpen = true
	s.frames++

	if s.paused {
		// Forget the baseline so resuming does not integrate the pause
		s.clock.Reset()
		return 0
	}

	s.perfCollector.StartPhase(telemetry.PhaseClock)
	droppedBefore := s.clock.Dropped()
	steps := s.clock.Advance(elapsed)
	dropped := s.clock.Dropped() != droppedBefore

	if s.flow != nil {
		s.perfCollector.StartPhase(telemetry.PhaseFlow)
		s.flow.SetFieldTime(s.clock.FieldTime())
		for _, dt := range steps {
			s.flow.Step(dt)
		}
	}
	if s.circles != nil {
		s.perfCollector.StartPhase(telemetry.PhaseCircles)
		for _, dt := range steps {
			s.circles.Step(dt)
		}
	}
	if s.orbs != nil {
		s.perfCollector.StartPhase(telemetry.PhaseOrbs)
		for _, dt := range steps {
			s.orbs.Step(dt)
		}
	}

	for _, dt := range steps {
		s.simTime += dt
	}
	s.collector.RecordFrame(len(steps), dropped)
	s.flushTelemetry()

	return len(steps)
}

// BeginRender marks the start of the host's draw for perf accounting.
func (s *Scene) BeginRender() {
	if s.frameOpen {
		s.perfCollector.StartPhase(telemetry.PhaseRender)
	}
}

// Resize reinitializes every layer when the viewport size changes.
// The clock baseline is reset so the resize frame is not integrated.
func (s *Scene) Resize(width, height float64) error {
	bounds := systems.Bounds{Width: width, Height: height}
	if bounds == s.bounds {
		return nil
	}
	if !bounds.Valid() {
		return fmt.Errorf("scene: %w: %gx%g", systems.ErrInvalidBounds, width, height)
	}

	if s.flow != nil {
		if err := s.flow.Reinitialize(bounds); err != nil {
			return fmt.Errorf("scene: %w", err)
		}
	}
	for _, layer := range []*systems.SoftBodySystem{s.circles, s.orbs} {
		if layer == nil {
			continue
		}
		if err := layer.Reinitialize(bounds); err != nil {
			return fmt.Errorf("scene: %w", err)
		}
	}

	s.bounds = bounds
	s.clock.Reset()
	s.collector.RecordReset()
	slog.Info("viewport resized", "width", width, "height", height)
	return nil
}

// Reseed rebuilds every layer from a new seed at the current size.
// Field time carries over.
func (s *Scene) Reseed(seed int64) error {
	prev := s.seed
	s.seed = seed
	if err := s.build(); err != nil {
		s.seed = prev
		return err
	}
	s.clock.Reset()
	s.collector.RecordRebuild()
	slog.Info("scene reseeded", "seed", seed)
	return nil
}

// flushTelemetry emits window stats once the current window has elapsed.
func (s *Scene) flushTelemetry() {
	if !s.collector.ShouldFlush(s.simTime) {
		return
	}

	var flowStats systems.FlowStats
	s.particleSpeeds = s.particleSpeeds[:0]
	if s.flow != nil {
		flowStats = s.flow.Stats()
		for _, p := range s.flow.Particles().All() {
			s.particleSpeeds = append(s.particleSpeeds, p.Speed())
		}
	}

	var bodyStats systems.SoftBodyStats
	s.bodySpeeds = s.bodySpeeds[:0]
	for _, layer := range []*systems.SoftBodySystem{s.circles, s.orbs} {
		if layer == nil {
			continue
		}
		ls := layer.Stats()
		bodyStats.Bounces += ls.Bounces
		bodyStats.FallbackPlacements += ls.FallbackPlacements
		bodyStats.Reinitialized += ls.Reinitialized
		for _, b := range layer.Bodies().All() {
			s.bodySpeeds = append(s.bodySpeeds, b.Speed())
		}
	}

	stats := s.collector.Flush(s.simTime, s.particleSpeeds, s.bodySpeeds, flowStats, bodyStats)
	perfStats := s.perfCollector.Stats()

	if s.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if s.outputManager != nil {
		if err := s.outputManager.WriteTelemetry(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if err := s.outputManager.WritePerf(perfStats, stats.WindowEnd); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}
}

// SetPaused freezes or resumes the simulation. Field time stops while paused.
func (s *Scene) SetPaused(paused bool) {
	s.paused = paused
}

// Paused reports whether the scene is paused.
func (s *Scene) Paused() bool { return s.paused }

// Flow returns the flow field layer, or nil when disabled.
func (s *Scene) Flow() *systems.FlowFieldSystem { return s.flow }

// Circles returns the circles layer, or nil when disabled.
func (s *Scene) Circles() *systems.SoftBodySystem { return s.circles }

// Orbs returns the orbs layer, or nil when disabled.
func (s *Scene) Orbs() *systems.SoftBodySystem { return s.orbs }

// FieldTime returns the clock's accumulated field time.
func (s *Scene) FieldTime() float64 { return s.clock.FieldTime() }

// SimTime returns the total simulated seconds integrated so far.
func (s *Scene) SimTime() float64 { return s.simTime }

// Frames returns how many times Advance has been called.
func (s *Scene) Frames() int { return s.frames }

// Seed returns the scene seed.
func (s *Scene) Seed() int64 { return s.seed }

// Bounds returns the current viewport.
func (s *Scene) Bounds() systems.Bounds { return s.bounds }

// Palette returns the parsed palette.
func (s *Scene) Palette() components.Palette { return s.palette }

// Config returns the configuration the scene was built with.
func (s *Scene) Config() *config.Config { return s.cfg }

// PerfStats returns rolling frame timings.
func (s *Scene) PerfStats() telemetry.PerfStats { return s.perfCollector.Stats() }

// Close flushes and closes telemetry output.
func (s *Scene) Close() error {
	return s.outputManager.Close()
}
