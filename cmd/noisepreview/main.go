// Noise field preview tool - interactive visualization with sliders.
//
// Usage: go run ./cmd/noisepreview
package main

import (
	"fmt"
	"image/color"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
	gui "github.com/gen2brain/raylib-go/raygui"

	"github.com/pthm-cable/drift/config"
	"github.com/pthm-cable/drift/systems"
)

const (
	windowWidth  = 1000
	windowHeight = 620
	previewSize  = 512
	panelWidth   = windowWidth - previewSize - 30

	// gridSize is the texture resolution; each texel covers previewSize/gridSize pixels.
	gridSize = 256

	// arrowSpacing is the distance between flow direction arrows in preview pixels.
	arrowSpacing = 32
)

// NoiseParams holds the preview parameters.
type NoiseParams struct {
	Scale   float32
	Speed   float32
	Seed    int64
	Simplex bool
}

func defaultParams() NoiseParams {
	flow := config.Default().Flow
	return NoiseParams{
		Scale: float32(flow.NoiseScale),
		Speed: float32(flow.NoiseSpeed),
		Seed:  1,
	}
}

func newSampler(p NoiseParams) systems.NoiseSampler {
	if p.Simplex {
		return systems.NewSimplexNoise(p.Seed)
	}
	return systems.NewPerlinNoise(p.Seed)
}

func main() {
	rl.InitWindow(windowWidth, windowHeight, "Noise Field Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	params := defaultParams()
	noise := newSampler(params)

	field := make([]float64, gridSize*gridSize)
	img := rl.GenImageColor(gridSize, gridSize, rl.Black)
	texture := rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	defer rl.UnloadTexture(texture)

	var z float64
	animating := false
	showArrows := true
	needsRegen := true

	for !rl.WindowShouldClose() {
		if animating {
			z += float64(rl.GetFrameTime() * params.Speed)
			needsRegen = true
		}

		if needsRegen {
			sampleField(field, noise, params.Scale, z)
			updateTexture(texture, field)
			needsRegen = false
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		rl.DrawTexturePro(
			texture,
			rl.Rectangle{X: 0, Y: 0, Width: gridSize, Height: gridSize},
			rl.Rectangle{X: 10, Y: 10, Width: previewSize, Height: previewSize},
			rl.Vector2{X: 0, Y: 0},
			0,
			rl.White,
		)
		rl.DrawRectangleLines(10, 10, previewSize, previewSize, rl.DarkGray)
		if showArrows {
			drawArrows(noise, params.Scale, z)
		}

		minVal, maxVal, mean := fieldStats(field)
		statsY := int32(previewSize + 25)
		rl.DrawText(fmt.Sprintf("Min: %.3f  Max: %.3f  Avg: %.3f", minVal, maxVal, mean), 15, statsY, 16, rl.DarkGray)
		rl.DrawText(fmt.Sprintf("Field z: %.3f", z), 15, statsY+20, 16, rl.DarkGray)

		// Control panel
		panelX := float32(previewSize + 20)
		panelY := float32(10)

		rl.DrawText("Flow Field Noise", int32(panelX), int32(panelY), 20, rl.DarkGray)
		panelY += 35

		rl.DrawText("Scale (spatial frequency per pixel)", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newScale := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"0.0005", "0.02",
			params.Scale, 0.0005, 0.02,
		)
		rl.DrawText(fmt.Sprintf("%.4f", params.Scale), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if newScale != params.Scale {
			params.Scale = newScale
			needsRegen = true
		}
		panelY += 35

		rl.DrawText("Speed (field z per second)", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		params.Speed = gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"0", "1",
			params.Speed, 0, 1,
		)
		rl.DrawText(fmt.Sprintf("%.3f", params.Speed), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		panelY += 35

		rl.DrawText("Seed", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newSeed := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"0", "99999",
			float32(params.Seed), 0, 99999,
		)
		rl.DrawText(fmt.Sprintf("%d", params.Seed), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if int64(newSeed) != params.Seed {
			params.Seed = int64(newSeed)
			noise = newSampler(params)
			needsRegen = true
		}
		panelY += 35

		simplex := gui.CheckBox(rl.Rectangle{X: panelX, Y: panelY, Width: 16, Height: 16}, "OpenSimplex backend", params.Simplex)
		if simplex != params.Simplex {
			params.Simplex = simplex
			noise = newSampler(params)
			needsRegen = true
		}
		panelY += 26
		showArrows = gui.CheckBox(rl.Rectangle{X: panelX, Y: panelY, Width: 16, Height: 16}, "Flow arrows", showArrows)
		panelY += 35

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, toggleText(animating, "Stop", "Animate")) {
			animating = !animating
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Reset Time") {
			z = 0
			needsRegen = true
		}
		panelY += 45

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, "Random Seed") {
			params.Seed = int64(rl.GetRandomValue(0, 99999))
			noise = newSampler(params)
			needsRegen = true
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Reset All") {
			params = defaultParams()
			noise = newSampler(params)
			z = 0
			needsRegen = true
		}
		panelY += 55

		rl.DrawText("YAML Config:", int32(panelX), int32(panelY), 16, rl.DarkGray)
		panelY += 25
		yaml := flowYAML(params)
		rl.DrawText(yaml, int32(panelX), int32(panelY), 14, rl.Gray)

		rl.DrawText("Press C to copy YAML to clipboard", int32(panelX), int32(windowHeight-30), 12, rl.LightGray)
		if rl.IsKeyPressed(rl.KeyC) {
			rl.SetClipboardText(yaml)
		}

		rl.EndDrawing()
	}
}

func toggleText(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}

func flowYAML(p NoiseParams) string {
	backend := config.NoisePerlin
	if p.Simplex {
		backend = config.NoiseSimplex
	}
	return fmt.Sprintf("flow:\n  noise: %s\n  noise_scale: %.4f\n  noise_speed: %.3f\nseed: %d",
		backend, p.Scale, p.Speed, p.Seed)
}

// sampleField fills field with noise sampled at preview pixel coordinates.
func sampleField(field []float64, noise systems.NoiseSampler, scale float32, z float64) {
	step := float64(previewSize) / gridSize
	s := float64(scale)
	for y := 0; y < gridSize; y++ {
		for x := 0; x < gridSize; x++ {
			px := (float64(x) + 0.5) * step
			py := (float64(y) + 0.5) * step
			field[y*gridSize+x] = noise.Noise3D(px*s, py*s, z)
		}
	}
}

// drawArrows draws the flow direction at regular preview positions.
func drawArrows(noise systems.NoiseSampler, scale float32, z float64) {
	s := float64(scale)
	for y := arrowSpacing / 2; y < previewSize; y += arrowSpacing {
		for x := arrowSpacing / 2; x < previewSize; x += arrowSpacing {
			angle := noise.Noise3D(float64(x)*s, float64(y)*s, z) * 2 * math.Pi
			dx := float32(math.Cos(angle)) * arrowSpacing * 0.4
			dy := float32(math.Sin(angle)) * arrowSpacing * 0.4
			from := rl.Vector2{X: float32(x + 10), Y: float32(y + 10)}
			to := rl.Vector2{X: from.X + dx, Y: from.Y + dy}
			rl.DrawLineEx(from, to, 1.5, rl.Color{R: 255, G: 255, B: 255, A: 180})
			rl.DrawCircleV(to, 2, rl.White)
		}
	}
}

func fieldStats(field []float64) (minVal, maxVal, mean float64) {
	minVal, maxVal = 1, -1
	var sum float64
	for _, v := range field {
		sum += v
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	return minVal, maxVal, sum / float64(len(field))
}

// updateTexture updates the GPU texture from [-1, 1] field values.
func updateTexture(texture rl.Texture2D, field []float64) {
	pixels := make([]color.RGBA, len(field))
	for i, n := range field {
		v := float32((n + 1) / 2)
		// Dark blue -> teal -> pale
		var r, g, b uint8
		if v < 0.5 {
			t := v / 0.5
			r = uint8(10 + t*40)
			g = uint8(20 + t*110)
			b = uint8(50 + t*110)
		} else {
			t := (v - 0.5) / 0.5
			r = uint8(50 + t*180)
			g = uint8(130 + t*110)
			b = uint8(160 + t*70)
		}
		pixels[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	rl.UpdateTexture(texture, pixels)
}
