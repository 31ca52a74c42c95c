// Package config provides configuration loading and access for the backgrounds.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Boundary policies for the flow field.
const (
	BoundaryWrap   = "wrap"
	BoundaryBounce = "bounce"
)

// Noise backends for the flow field.
const (
	NoisePerlin  = "perlin"
	NoiseSimplex = "simplex"
)

// Config holds all configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Seed      int64           `yaml:"seed"` // 0 = time-based, resolved by the host
	Clock     ClockConfig     `yaml:"clock"`
	Flow      FlowConfig      `yaml:"flow"`
	Circles   SoftBodyConfig  `yaml:"circles"`
	Orbs      SoftBodyConfig  `yaml:"orbs"`
	Palette   []string        `yaml:"palette"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	TargetFPS int    `yaml:"target_fps"`
	Title     string `yaml:"title"`
}

// ClockConfig bounds the steps handed to the simulations.
type ClockConfig struct {
	MaxFrameGap float64 `yaml:"max_frame_gap"` // Frame deltas above this are discarded (seconds)
	MaxSubstep  float64 `yaml:"max_substep"`   // Longest single integration step (seconds)
}

// FlowConfig holds flow field particle parameters.
type FlowConfig struct {
	Enabled            bool    `yaml:"enabled"`
	ParticleCount      int     `yaml:"particle_count"`
	Noise              string  `yaml:"noise"`               // perlin | simplex
	NoiseScale         float64 `yaml:"noise_scale"`         // Spatial frequency of the field
	NoiseSpeed         float64 `yaml:"noise_speed"`         // Field time advanced per second
	ParticleSpeed      float64 `yaml:"particle_speed"`      // Base speed in px/s
	TurnResponsiveness float64 `yaml:"turn_responsiveness"` // Heading filter rate per second
	CurvatureLookahead float64 `yaml:"curvature_lookahead"` // Distance ahead for curvature sampling (px)
	Boundary           string  `yaml:"boundary"`            // wrap | bounce
}

// SoftBodyConfig holds parameters for a soft body layer (circles or orbs).
type SoftBodyConfig struct {
	Enabled             bool    `yaml:"enabled"`
	Count               int     `yaml:"count"`
	RadiusMin           float64 `yaml:"radius_min"`
	RadiusMax           float64 `yaml:"radius_max"`
	RadiusBias          bool    `yaml:"radius_bias"` // Bias toward small radii (u^2)
	DepthMin            float64 `yaml:"depth_min"`
	DepthMax            float64 `yaml:"depth_max"`
	Softness            float64 `yaml:"softness"` // Blur width in px; widens the collision radius
	BaseSpeed           float64 `yaml:"base_speed"`
	PixelsPerSecondUnit float64 `yaml:"pixels_per_second_unit"`
	DriftStrength       float64 `yaml:"drift_strength"` // Heading random walk rate (rad/s)
	BounceDamping       float64 `yaml:"bounce_damping"` // (0, 1]
	ParallaxScale       float64 `yaml:"parallax_scale"`
	SpacingFactor       float64 `yaml:"spacing_factor"` // >= 1
	PlacementAttempts   int     `yaml:"placement_attempts"`
	RandomColors        bool    `yaml:"random_colors"`

	// Render-only parameters
	BloomRadius      float64 `yaml:"bloom_radius"`      // Glow radius multiplier
	FlickerAmplitude float64 `yaml:"flicker_amplitude"` // Alpha flicker amplitude [0, 1]
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow float64 `yaml:"stats_window"` // Seconds of simulated time per window
	PerfWindow  int     `yaml:"perf_window"`  // Frames in the rolling perf window
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns the embedded defaults.
func Default() *Config {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		panic(fmt.Sprintf("config: parsing embedded defaults: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every section and reports all problems at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Screen.Width <= 0 || c.Screen.Height <= 0 {
		errs = append(errs, invalid("screen", "size must be positive, got %dx%d", c.Screen.Width, c.Screen.Height))
	}
	if err := c.Clock.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("clock: %w", err))
	}
	if err := c.Flow.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("flow: %w", err))
	}
	if err := c.Circles.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("circles: %w", err))
	}
	if err := c.Orbs.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("orbs: %w", err))
	}
	if err := ValidatePalette(c.Palette); err != nil {
		errs = append(errs, fmt.Errorf("palette: %w", err))
	}
	if c.Telemetry.StatsWindow <= 0 {
		errs = append(errs, invalid("telemetry", "stats_window must be positive, got %g", c.Telemetry.StatsWindow))
	}
	return errors.Join(errs...)
}

// Validate checks clock bounds.
func (c ClockConfig) Validate() error {
	var errs []error
	if !(c.MaxSubstep > 0) {
		errs = append(errs, invalid("max_substep", "must be positive, got %g", c.MaxSubstep))
	}
	if !(c.MaxFrameGap >= c.MaxSubstep) {
		errs = append(errs, invalid("max_frame_gap", "must be at least max_substep (%g), got %g", c.MaxSubstep, c.MaxFrameGap))
	}
	return errors.Join(errs...)
}

// Validate checks flow field parameters.
func (c FlowConfig) Validate() error {
	var errs []error
	if c.ParticleCount <= 0 {
		errs = append(errs, invalid("particle_count", "must be positive, got %d", c.ParticleCount))
	}
	if c.Noise != NoisePerlin && c.Noise != NoiseSimplex {
		errs = append(errs, invalid("noise", "must be %q or %q, got %q", NoisePerlin, NoiseSimplex, c.Noise))
	}
	if !(c.NoiseScale > 0) {
		errs = append(errs, invalid("noise_scale", "must be positive, got %g", c.NoiseScale))
	}
	if !(c.NoiseSpeed >= 0) {
		errs = append(errs, invalid("noise_speed", "must not be negative, got %g", c.NoiseSpeed))
	}
	if !(c.ParticleSpeed >= 0) {
		errs = append(errs, invalid("particle_speed", "must not be negative, got %g", c.ParticleSpeed))
	}
	if !(c.TurnResponsiveness >= 0) {
		errs = append(errs, invalid("turn_responsiveness", "must not be negative, got %g", c.TurnResponsiveness))
	}
	if !(c.CurvatureLookahead > 0) {
		errs = append(errs, invalid("curvature_lookahead", "must be positive, got %g", c.CurvatureLookahead))
	}
	if c.Boundary != BoundaryWrap && c.Boundary != BoundaryBounce {
		errs = append(errs, invalid("boundary", "must be %q or %q, got %q", BoundaryWrap, BoundaryBounce, c.Boundary))
	}
	return errors.Join(errs...)
}

// Validate checks soft body parameters.
func (c SoftBodyConfig) Validate() error {
	var errs []error
	if c.Count <= 0 {
		errs = append(errs, invalid("count", "must be positive, got %d", c.Count))
	}
	if !(c.RadiusMin > 0) || !(c.RadiusMax >= c.RadiusMin) {
		errs = append(errs, invalid("radius", "need 0 < radius_min <= radius_max, got [%g, %g]", c.RadiusMin, c.RadiusMax))
	}
	if !(c.DepthMin >= 0) || !(c.DepthMax <= 1) || !(c.DepthMin <= c.DepthMax) {
		errs = append(errs, invalid("depth", "need 0 <= depth_min <= depth_max <= 1, got [%g, %g]", c.DepthMin, c.DepthMax))
	}
	if !(c.Softness >= 0) {
		errs = append(errs, invalid("softness", "must not be negative, got %g", c.Softness))
	}
	if !(c.BaseSpeed >= 0) || !(c.PixelsPerSecondUnit >= 0) {
		errs = append(errs, invalid("speed", "base_speed and pixels_per_second_unit must not be negative"))
	}
	if !(c.DriftStrength >= 0) {
		errs = append(errs, invalid("drift_strength", "must not be negative, got %g", c.DriftStrength))
	}
	if !(c.BounceDamping > 0 && c.BounceDamping <= 1) {
		errs = append(errs, invalid("bounce_damping", "must be in (0, 1], got %g", c.BounceDamping))
	}
	if !(c.ParallaxScale >= 0) {
		errs = append(errs, invalid("parallax_scale", "must not be negative, got %g", c.ParallaxScale))
	}
	if !(c.SpacingFactor >= 1) {
		errs = append(errs, invalid("spacing_factor", "must be at least 1, got %g", c.SpacingFactor))
	}
	if c.PlacementAttempts <= 0 {
		errs = append(errs, invalid("placement_attempts", "must be positive, got %d", c.PlacementAttempts))
	}
	if !(c.FlickerAmplitude >= 0 && c.FlickerAmplitude <= 1) {
		errs = append(errs, invalid("flicker_amplitude", "must be in [0, 1], got %g", c.FlickerAmplitude))
	}
	return errors.Join(errs...)
}

// ValidatePalette checks that the palette is non-empty and every entry parses as a hex color.
func ValidatePalette(hexes []string) error {
	if len(hexes) == 0 {
		return invalid("palette", "must contain at least one color")
	}
	var errs []error
	for i, h := range hexes {
		if _, err := colorful.Hex(h); err != nil {
			errs = append(errs, invalid(fmt.Sprintf("palette[%d]", i), "%q is not a hex color", h))
		}
	}
	return errors.Join(errs...)
}

func invalid(field, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalid, field, fmt.Sprintf(format, args...))
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
