package systems

import (
	"errors"
	"math"
	"testing"

	"github.com/pthm-cable/drift/config"
)

func testClock(t *testing.T, rate float64) *SimulationClock {
	t.Helper()
	c, err := NewSimulationClock(config.ClockConfig{MaxFrameGap: 0.25, MaxSubstep: 1.0 / 60.0}, rate)
	if err != nil {
		t.Fatalf("NewSimulationClock: %v", err)
	}
	return c
}

func sum(steps []float64) float64 {
	total := 0.0
	for _, s := range steps {
		total += s
	}
	return total
}

func TestClockFirstCallIsBaseline(t *testing.T) {
	c := testClock(t, 1)
	if steps := c.Advance(100); len(steps) != 0 {
		t.Errorf("expected no steps on first call, got %v", steps)
	}
	steps := c.Advance(100 + 1.0/60.0)
	if len(steps) != 1 || math.Abs(steps[0]-1.0/60.0) > 1e-9 {
		t.Errorf("expected one 1/60 step, got %v", steps)
	}
}

func TestClockRejectsBadDeltas(t *testing.T) {
	tests := []struct {
		name    string
		elapsed float64
	}{
		{"zero delta", 1.0},
		{"negative delta", 0.5},
		{"gap above ceiling", 2.0},
		{"NaN", math.NaN()},
		{"Inf", math.Inf(1)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := testClock(t, 1)
			c.Advance(1.0)
			if steps := c.Advance(tc.elapsed); len(steps) != 0 {
				t.Errorf("expected no steps, got %v", steps)
			}
			if c.Dropped() != 1 {
				t.Errorf("expected 1 dropped frame, got %d", c.Dropped())
			}
			if c.FieldTime() != 0 {
				t.Errorf("field time advanced on a rejected frame: %f", c.FieldTime())
			}
		})
	}
}

func TestClockResumesAfterGap(t *testing.T) {
	c := testClock(t, 1)
	c.Advance(0)
	c.Advance(30) // backgrounded
	steps := c.Advance(30.01)
	if len(steps) != 1 || math.Abs(steps[0]-0.01) > 1e-9 {
		t.Errorf("expected a single 0.01 step after the gap, got %v", steps)
	}
}

func TestClockSubsteps(t *testing.T) {
	c := testClock(t, 1)
	c.Advance(0)
	steps := c.Advance(0.05) // three full 1/60 steps
	if len(steps) != 3 {
		t.Fatalf("expected 3 sub-steps, got %d: %v", len(steps), steps)
	}
	if math.Abs(sum(steps)-0.05) > 1e-9 {
		t.Errorf("sub-steps sum to %f, want 0.05", sum(steps))
	}

	steps = c.Advance(0.05 + 0.04) // 2 full + remainder
	if len(steps) != 3 {
		t.Fatalf("expected 3 sub-steps, got %d: %v", len(steps), steps)
	}
	for _, s := range steps {
		if s <= 0 || s > 1.0/60.0+1e-12 {
			t.Errorf("sub-step %f out of (0, 1/60]", s)
		}
	}
	if math.Abs(sum(steps)-0.04) > 1e-9 {
		t.Errorf("sub-steps sum to %f, want 0.04", sum(steps))
	}
}

func TestClockFieldTime(t *testing.T) {
	c := testClock(t, 0.15)
	c.Advance(10)
	c.Advance(10.1)
	c.Advance(10.2)
	if math.Abs(c.FieldTime()-0.2*0.15) > 1e-9 {
		t.Errorf("expected field time %f, got %f", 0.2*0.15, c.FieldTime())
	}
}

func TestClockReset(t *testing.T) {
	c := testClock(t, 1)
	c.Advance(1)
	c.Advance(1.1)
	before := c.FieldTime()
	c.Reset()
	if steps := c.Advance(5); len(steps) != 0 {
		t.Errorf("expected baseline after reset, got %v", steps)
	}
	if c.FieldTime() != before {
		t.Error("reset should not rewind field time")
	}
}

func TestNewClockValidates(t *testing.T) {
	_, err := NewSimulationClock(config.ClockConfig{MaxFrameGap: 0.25, MaxSubstep: 0}, 1)
	if !errors.Is(err, config.ErrInvalid) {
		t.Errorf("expected ErrInvalid for zero substep, got %v", err)
	}
	_, err = NewSimulationClock(config.ClockConfig{MaxFrameGap: 0.25, MaxSubstep: 0.01}, math.NaN())
	if !errors.Is(err, config.ErrInvalid) {
		t.Errorf("expected ErrInvalid for NaN rate, got %v", err)
	}
}
