package components

import (
	"fmt"
	"math/rand"

	"github.com/lucasb-eyer/go-colorful"
)

// Palette is an ordered set of colors bodies are drawn from.
type Palette []colorful.Color

// ParsePalette parses hex color strings ("#rrggbb" or "#rgb").
func ParsePalette(hexes []string) (Palette, error) {
	if len(hexes) == 0 {
		return nil, fmt.Errorf("palette is empty")
	}
	p := make(Palette, len(hexes))
	for i, h := range hexes {
		c, err := colorful.Hex(h)
		if err != nil {
			return nil, fmt.Errorf("palette[%d]: %w", i, err)
		}
		p[i] = c
	}
	return p, nil
}

// At returns the i-th color, cycling through the palette.
func (p Palette) At(i int) colorful.Color {
	return p[i%len(p)]
}

// Random returns a color between two adjacent palette entries, blended in Lab space.
func (p Palette) Random(rng *rand.Rand) colorful.Color {
	if len(p) == 1 {
		return p[0]
	}
	i := rng.Intn(len(p))
	j := (i + 1) % len(p)
	return p[i].BlendLab(p[j], rng.Float64()).Clamped()
}
