package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error: %v", err)
	}
	if cfg.Screen.Width != 1280 || cfg.Screen.Height != 800 {
		t.Errorf("expected 1280x800 screen, got %dx%d", cfg.Screen.Width, cfg.Screen.Height)
	}
	if cfg.Flow.Boundary != BoundaryWrap {
		t.Errorf("expected wrap boundary, got %q", cfg.Flow.Boundary)
	}
	if !cfg.Orbs.RadiusBias {
		t.Error("expected orbs to bias toward small radii")
	}
	if len(cfg.Palette) == 0 {
		t.Error("expected a default palette")
	}
}

func TestLoadOverlaysUserFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := "flow:\n  particle_count: 42\n  boundary: bounce\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Flow.ParticleCount != 42 {
		t.Errorf("expected particle_count 42, got %d", cfg.Flow.ParticleCount)
	}
	if cfg.Flow.Boundary != BoundaryBounce {
		t.Errorf("expected bounce boundary, got %q", cfg.Flow.Boundary)
	}
	// Untouched fields keep their defaults
	if cfg.Flow.NoiseScale != 0.003 {
		t.Errorf("expected default noise_scale 0.003, got %g", cfg.Flow.NoiseScale)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantMsg string
	}{
		{"zero particles", "flow:\n  particle_count: 0\n", "particle_count"},
		{"unknown boundary", "flow:\n  boundary: teleport\n", "boundary"},
		{"damping above one", "circles:\n  bounce_damping: 1.5\n", "bounce_damping"},
		{"zero damping", "orbs:\n  bounce_damping: 0\n", "bounce_damping"},
		{"spacing below one", "circles:\n  spacing_factor: 0.5\n", "spacing_factor"},
		{"negative body count", "orbs:\n  count: -3\n", "count"},
		{"inverted radius", "circles:\n  radius_min: 90\n  radius_max: 10\n", "radius"},
		{"bad hex", "palette: [\"#zzzzzz\"]\n", "palette[0]"},
		{"substep above gap", "clock:\n  max_frame_gap: 0.01\n  max_substep: 0.1\n", "max_frame_gap"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tc.yaml), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := Load(path)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.wantMsg) {
				t.Errorf("error %q does not mention %q", err, tc.wantMsg)
			}
		})
	}
}

func TestValidateReportsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.Flow.ParticleCount = 0
	cfg.Circles.SpacingFactor = 0.2

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	for _, want := range []string{"flow", "particle_count", "circles", "spacing_factor"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error %q missing %q", msg, want)
		}
	}
}

func TestWriteYAMLRoundtrip(t *testing.T) {
	cfg := Default()
	cfg.Seed = 1337
	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Seed != 1337 {
		t.Errorf("expected seed 1337, got %d", loaded.Seed)
	}
}
