package telemetry

import (
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a window of simulated time.
type WindowStats struct {
	WindowStart float64 `csv:"-"`
	WindowEnd   float64 `csv:"window_end"`

	// Frame delivery during the window
	Frames        int `csv:"frames"`
	DroppedFrames int `csv:"dropped_frames"`
	Steps         int `csv:"steps"`
	Resets        int `csv:"resets"`

	// Flow field (sampled at window end)
	Particles         int     `csv:"particles"`
	ParticleSpeedMean float64 `csv:"particle_speed_mean"`
	ParticleSpeedStd  float64 `csv:"particle_speed_std"`
	ParticleSpeedP10  float64 `csv:"particle_speed_p10"`
	ParticleSpeedP50  float64 `csv:"particle_speed_p50"`
	ParticleSpeedP90  float64 `csv:"particle_speed_p90"`
	Wraps             int     `csv:"wraps"`
	FlowBounces       int     `csv:"flow_bounces"`
	HeadingResets     int     `csv:"heading_resets"`

	// Soft bodies (circles and orbs together)
	Bodies        int     `csv:"bodies"`
	BodySpeedMean float64 `csv:"body_speed_mean"`
	BodySpeedP90  float64 `csv:"body_speed_p90"`
	BodyBounces   int     `csv:"body_bounces"`
	Fallbacks     int     `csv:"placement_fallbacks"`
}

// SpeedStats summarises a set of speeds.
type SpeedStats struct {
	Mean, Std     float64
	P10, P50, P90 float64
}

// ComputeSpeedStats calculates mean, standard deviation and empirical
// quantiles. Returns zeros for an empty slice.
func ComputeSpeedStats(values []float64) SpeedStats {
	n := len(values)
	if n == 0 {
		return SpeedStats{}
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	var s SpeedStats
	if n == 1 {
		s.Mean = sorted[0]
	} else {
		s.Mean, s.Std = stat.MeanStdDev(sorted, nil)
	}
	s.P10 = stat.Quantile(0.10, stat.Empirical, sorted, nil)
	s.P50 = stat.Quantile(0.50, stat.Empirical, sorted, nil)
	s.P90 = stat.Quantile(0.90, stat.Empirical, sorted, nil)
	if math.IsNaN(s.Std) {
		s.Std = 0
	}
	return s
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Float64("window_start", s.WindowStart),
		slog.Float64("window_end", s.WindowEnd),
		slog.Int("frames", s.Frames),
		slog.Int("dropped_frames", s.DroppedFrames),
		slog.Int("steps", s.Steps),
		slog.Int("resets", s.Resets),
		slog.Int("particles", s.Particles),
		slog.Float64("particle_speed_mean", s.ParticleSpeedMean),
		slog.Float64("particle_speed_p50", s.ParticleSpeedP50),
		slog.Int("wraps", s.Wraps),
		slog.Int("heading_resets", s.HeadingResets),
		slog.Int("bodies", s.Bodies),
		slog.Float64("body_speed_mean", s.BodySpeedMean),
		slog.Int("body_bounces", s.BodyBounces),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats", "window", s)
}
