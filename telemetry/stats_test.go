package telemetry

import (
	"math"
	"testing"

	"github.com/pthm-cable/drift/systems"
)

func TestComputeSpeedStats(t *testing.T) {
	values := []float64{10, 1, 9, 2, 8, 3, 7, 4, 6, 5}
	s := ComputeSpeedStats(values)

	if math.Abs(s.Mean-5.5) > 1e-9 {
		t.Errorf("mean = %v, want 5.5", s.Mean)
	}
	// Sample standard deviation of 1..10
	if math.Abs(s.Std-3.0277) > 0.001 {
		t.Errorf("std = %v, want ~3.0277", s.Std)
	}
	if s.P10 != 1 || s.P50 != 5 || s.P90 != 9 {
		t.Errorf("quantiles = (%v, %v, %v), want (1, 5, 9)", s.P10, s.P50, s.P90)
	}
	// Input must not be reordered
	if values[0] != 10 {
		t.Error("ComputeSpeedStats sorted its input in place")
	}
}

func TestComputeSpeedStatsSmall(t *testing.T) {
	if s := ComputeSpeedStats(nil); s != (SpeedStats{}) {
		t.Errorf("empty input should return zeros, got %+v", s)
	}
	s := ComputeSpeedStats([]float64{4})
	if s.Mean != 4 || s.Std != 0 || s.P50 != 4 {
		t.Errorf("single value stats = %+v", s)
	}
}

func TestCollectorWindows(t *testing.T) {
	c := NewCollector(1.0)

	for i := 0; i < 10; i++ {
		c.RecordFrame(2, false)
	}
	c.RecordFrame(0, true)
	c.RecordReset()

	if c.ShouldFlush(0.5) {
		t.Error("should not flush before the window ends")
	}
	if !c.ShouldFlush(1.0) {
		t.Error("should flush at the window end")
	}

	flow := systems.FlowStats{Wraps: 7, HeadingResets: 1}
	bodies := systems.SoftBodyStats{Bounces: 3}
	stats := c.Flush(1.0, []float64{30, 40, 50}, []float64{12}, flow, bodies)

	if stats.Frames != 11 || stats.Steps != 20 || stats.DroppedFrames != 1 || stats.Resets != 1 {
		t.Errorf("unexpected frame counters: %+v", stats)
	}
	if stats.Particles != 3 || math.Abs(stats.ParticleSpeedMean-40) > 1e-9 {
		t.Errorf("unexpected particle stats: %+v", stats)
	}
	if stats.Wraps != 7 || stats.BodyBounces != 3 {
		t.Errorf("unexpected event counts: wraps=%d bounces=%d", stats.Wraps, stats.BodyBounces)
	}

	// Next window reports deltas of the cumulative counters
	flow.Wraps = 10
	bodies.Bounces = 3
	stats = c.Flush(2.0, nil, nil, flow, bodies)
	if stats.Wraps != 3 || stats.BodyBounces != 0 || stats.Frames != 0 {
		t.Errorf("expected deltas for second window, got %+v", stats)
	}
	if stats.WindowStart != 1.0 || stats.WindowEnd != 2.0 {
		t.Errorf("unexpected window bounds [%v, %v]", stats.WindowStart, stats.WindowEnd)
	}
}

func TestCollectorRebuild(t *testing.T) {
	c := NewCollector(1.0)
	c.Flush(1.0, nil, nil, systems.FlowStats{Wraps: 50}, systems.SoftBodyStats{Bounces: 9})

	// Rebuilt systems restart their counters
	c.RecordRebuild()
	stats := c.Flush(2.0, nil, nil, systems.FlowStats{Wraps: 4}, systems.SoftBodyStats{Bounces: 1})
	if stats.Wraps != 4 || stats.BodyBounces != 1 {
		t.Errorf("expected counts since rebuild, got wraps=%d bounces=%d", stats.Wraps, stats.BodyBounces)
	}
	if stats.Resets != 1 {
		t.Errorf("expected rebuild to count as a reset, got %d", stats.Resets)
	}
}
