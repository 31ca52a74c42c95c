package systems

import (
	"fmt"
	"math"

	"github.com/pthm-cable/drift/config"
)

// remainderEpsilon is the smallest leftover sub-step worth integrating (seconds).
const remainderEpsilon = 1e-9

// SimulationClock turns a monotonically increasing elapsed-time signal into
// bounded integration steps, and advances the field time the flow field samples.
type SimulationClock struct {
	maxFrameGap float64
	maxSubstep  float64
	fieldRate   float64

	started   bool
	last      float64
	fieldTime float64
	dropped   int

	steps []float64
}

// NewSimulationClock creates a clock. fieldRate is the field time advanced per simulated second.
func NewSimulationClock(cfg config.ClockConfig, fieldRate float64) (*SimulationClock, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("clock: %w", err)
	}
	if !(fieldRate >= 0) || math.IsInf(fieldRate, 0) {
		return nil, fmt.Errorf("clock: %w: field rate must be finite and non-negative, got %g", config.ErrInvalid, fieldRate)
	}
	return &SimulationClock{
		maxFrameGap: cfg.MaxFrameGap,
		maxSubstep:  cfg.MaxSubstep,
		fieldRate:   fieldRate,
		steps:       make([]float64, 0, 8),
	}, nil
}

// Advance consumes the host's total elapsed time (seconds) and returns the
// steps to integrate, each in (0, maxSubstep]. The first call after
// construction or Reset only records the baseline. Frame gaps that are
// non-positive, non-finite or above the ceiling yield no steps.
//
// The returned slice is reused by the next call.
func (c *SimulationClock) Advance(elapsed float64) []float64 {
	c.steps = c.steps[:0]

	if math.IsNaN(elapsed) || math.IsInf(elapsed, 0) {
		c.dropped++
		return c.steps
	}
	if !c.started {
		c.started = true
		c.last = elapsed
		return c.steps
	}

	dt := elapsed - c.last
	c.last = elapsed
	if !validStep(dt) || dt > c.maxFrameGap {
		c.dropped++
		return c.steps
	}

	c.fieldTime += dt * c.fieldRate

	for dt > c.maxSubstep {
		c.steps = append(c.steps, c.maxSubstep)
		dt -= c.maxSubstep
	}
	if dt > remainderEpsilon {
		c.steps = append(c.steps, dt)
	}
	return c.steps
}

// FieldTime returns the accumulated, rate-scaled field time.
func (c *SimulationClock) FieldTime() float64 {
	return c.fieldTime
}

// Reset forgets the baseline so the next Advance starts a fresh interval.
// Field time keeps accumulating across resets.
func (c *SimulationClock) Reset() {
	c.started = false
}

// Dropped returns how many frames were rejected.
func (c *SimulationClock) Dropped() int {
	return c.dropped
}
