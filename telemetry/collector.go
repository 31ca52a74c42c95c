package telemetry

import "github.com/pthm-cable/drift/systems"

// Collector accumulates frame events within windows of simulated time and
// produces WindowStats.
type Collector struct {
	windowDuration float64
	windowStart    float64

	frames  int
	dropped int
	steps   int
	resets  int

	// Cumulative system counters at the start of the window
	lastFlow   systems.FlowStats
	lastBodies systems.SoftBodyStats
}

// NewCollector creates a new stats collector.
// windowDuration is how long each window lasts in simulated seconds.
func NewCollector(windowDuration float64) *Collector {
	if windowDuration <= 0 {
		windowDuration = 10
	}
	return &Collector{windowDuration: windowDuration}
}

// RecordFrame records one host frame and the number of steps it produced.
// dropped marks a frame the clock rejected.
func (c *Collector) RecordFrame(steps int, dropped bool) {
	c.frames++
	c.steps += steps
	if dropped {
		c.dropped++
	}
}

// RecordReset records a viewport-driven reinitialisation.
func (c *Collector) RecordReset() {
	c.resets++
}

// RecordRebuild records that the systems were rebuilt and their cumulative
// counters restarted from zero. Events from the old systems in the current
// window are not reported.
func (c *Collector) RecordRebuild() {
	c.resets++
	c.lastFlow = systems.FlowStats{}
	c.lastBodies = systems.SoftBodyStats{}
}

// ShouldFlush returns true once simTime has passed the end of the current window.
func (c *Collector) ShouldFlush(simTime float64) bool {
	return simTime-c.windowStart >= c.windowDuration
}

// Flush produces a WindowStats and resets counters for the next window.
// flow and bodies are cumulative counters; the window reports their change.
func (c *Collector) Flush(
	simTime float64,
	particleSpeeds, bodySpeeds []float64,
	flow systems.FlowStats,
	bodies systems.SoftBodyStats,
) WindowStats {
	ps := ComputeSpeedStats(particleSpeeds)
	bs := ComputeSpeedStats(bodySpeeds)

	stats := WindowStats{
		WindowStart:   c.windowStart,
		WindowEnd:     simTime,
		Frames:        c.frames,
		DroppedFrames: c.dropped,
		Steps:         c.steps,
		Resets:        c.resets,

		Particles:         len(particleSpeeds),
		ParticleSpeedMean: ps.Mean,
		ParticleSpeedStd:  ps.Std,
		ParticleSpeedP10:  ps.P10,
		ParticleSpeedP50:  ps.P50,
		ParticleSpeedP90:  ps.P90,
		Wraps:             flow.Wraps - c.lastFlow.Wraps,
		FlowBounces:       flow.Bounces - c.lastFlow.Bounces,
		HeadingResets:     flow.HeadingResets - c.lastFlow.HeadingResets,

		Bodies:        len(bodySpeeds),
		BodySpeedMean: bs.Mean,
		BodySpeedP90:  bs.P90,
		BodyBounces:   bodies.Bounces - c.lastBodies.Bounces,
		Fallbacks:     bodies.FallbackPlacements - c.lastBodies.FallbackPlacements,
	}

	// Reset for next window
	c.windowStart = simTime
	c.frames = 0
	c.dropped = 0
	c.steps = 0
	c.resets = 0
	c.lastFlow = flow
	c.lastBodies = bodies

	return stats
}

// WindowDuration returns the window length in simulated seconds.
func (c *Collector) WindowDuration() float64 {
	return c.windowDuration
}
