package renderer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/pthm-cable/drift/components"
)

// FlowRenderer renders flow particles with trails.
type FlowRenderer struct {
	color     colorful.Color
	lineWidth float32
	maxAlpha  float32
}

// NewFlowRenderer creates a new flow renderer drawing in color.
func NewFlowRenderer(color colorful.Color) *FlowRenderer {
	return &FlowRenderer{
		color:     color,
		lineWidth: 1.5,
		maxAlpha:  140,
	}
}

// Draw renders all flow particles directly to screen with additive blending.
// t is the scene's field time and drives a slow shimmer.
func (r *FlowRenderer) Draw(particles components.ParticleView, t float64) {
	rl.BeginBlendMode(rl.BlendAdditive)

	for _, p := range particles.All() {
		// Trail was dropped on wrap; nothing connects the two edges
		if p.Wrapped || p.TrailLen < 1 {
			continue
		}

		// Pulse/shimmer effect
		offset := (p.Pos.X + p.Pos.Y) * 0.01
		pulse := float32(math.Sin(t*20+offset)*0.5 + 0.5)
		baseAlpha := r.maxAlpha * (0.4 + pulse*0.6)

		// Current position to first trail point
		rl.DrawLineEx(
			vec(p.Pos.X, p.Pos.Y),
			vec(p.Trail[0].X, p.Trail[0].Y),
			r.lineWidth,
			toRL(r.color, uint8(baseAlpha)),
		)

		// Rest of trail with decreasing alpha
		for j := uint8(0); j+1 < p.TrailLen; j++ {
			fade := 1.0 - float32(j+1)/float32(p.TrailLen)
			fade *= fade // Quadratic falloff

			alpha := baseAlpha * fade
			if alpha < 1 {
				continue
			}
			rl.DrawLineEx(
				vec(p.Trail[j].X, p.Trail[j].Y),
				vec(p.Trail[j+1].X, p.Trail[j+1].Y),
				r.lineWidth*fade,
				toRL(r.color, uint8(alpha)),
			)
		}
	}

	rl.EndBlendMode()
}

func vec(x, y float64) rl.Vector2 {
	return rl.Vector2{X: float32(x), Y: float32(y)}
}
