// Package renderer draws simulation views with raylib. It only reads views
// and never mutates simulation state.
package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/lucasb-eyer/go-colorful"
)

// toRL converts a palette color to a raylib color with the given alpha.
func toRL(c colorful.Color, alpha uint8) rl.Color {
	r, g, b := c.Clamped().RGB255()
	return rl.Color{R: r, G: g, B: b, A: alpha}
}

// alphaOf converts a [0, 1] opacity to a byte, clamping out-of-range values.
func alphaOf(opacity float64) uint8 {
	if opacity <= 0 {
		return 0
	}
	if opacity >= 1 {
		return 255
	}
	return uint8(opacity * 255)
}

// BackgroundColor returns a dark tint of c for clearing the frame.
func BackgroundColor(c colorful.Color) rl.Color {
	h, s, l := c.Hsl()
	return toRL(colorful.Hsl(h, s*0.6, l*0.15), 255)
}
