package renderer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/drift/components"
	"github.com/pthm-cable/drift/config"
)

// BodyRenderer draws soft bodies as radial gradients. Bodies with a bloom
// radius above one get an additive halo, which is how orbs are told apart
// from circles.
type BodyRenderer struct {
	cfg config.SoftBodyConfig
}

// NewBodyRenderer creates a renderer for one soft body layer.
func NewBodyRenderer(cfg config.SoftBodyConfig) *BodyRenderer {
	return &BodyRenderer{cfg: cfg}
}

// Draw renders every body. t is wall time in seconds and drives flicker.
func (r *BodyRenderer) Draw(bodies components.BodyView, t float64) {
	rl.BeginBlendMode(rl.BlendAlpha)
	for _, b := range bodies.All() {
		r.drawBody(b, t)
	}
	rl.EndBlendMode()
}

func (r *BodyRenderer) drawBody(b components.SoftBody, t float64) {
	// Nearer bodies are more opaque
	opacity := 0.85 - 0.5*b.Depth
	if r.cfg.FlickerAmplitude > 0 {
		opacity *= 1 - r.cfg.FlickerAmplitude*(0.5+0.5*math.Sin(t*2.3+b.Phase))
	}

	x, y := int32(b.Pos.X), int32(b.Pos.Y)
	soft := float32(b.Radius + r.cfg.Softness)

	// Soft edge fades to transparent at radius + softness
	rl.DrawCircleGradient(x, y, soft, toRL(b.Color, alphaOf(opacity)), toRL(b.Color, 0))

	if r.cfg.BloomRadius <= 1 {
		rl.DrawCircleV(vec(b.Pos.X, b.Pos.Y), float32(b.Radius)*0.6, toRL(b.Color, alphaOf(opacity*0.5)))
		return
	}

	// Bloom halo
	rl.BeginBlendMode(rl.BlendAdditive)
	halo := float32(b.Radius * r.cfg.BloomRadius)
	rl.DrawCircleGradient(x, y, halo, toRL(b.Color, alphaOf(opacity*0.35)), toRL(b.Color, 0))
	rl.BeginBlendMode(rl.BlendAlpha)
}
