// Terminal background host - renders the scene with tcell.
//
// Usage: go run ./cmd/termbg [-config path] [-seed n]
package main

import (
	"flag"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/pthm-cable/drift/components"
	"github.com/pthm-cable/drift/config"
	"github.com/pthm-cable/drift/game"
)

// A terminal cell stands in for a cellWidth x cellHeight block of scene pixels.
const (
	cellWidth  = 8
	cellHeight = 16
)

// headingGlyphs indexes eight compass octants starting east, clockwise in screen space.
var headingGlyphs = []rune{'─', '╲', '│', '╱', '─', '╲', '│', '╱'}

type host struct {
	screen     tcell.Screen
	scene      *game.Scene
	background colorful.Color
	flowColor  colorful.Color
	cols, rows int
}

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = config seed, then time-based)")
	logFile := flag.String("log", "", "Write logs to this file (terminal output is taken by the screen)")
	flag.Parse()

	// stdout belongs to the screen; logs go to a file or nowhere
	out := os.Stderr
	if *logFile != "" {
		f, err := os.Create(*logFile)
		if err != nil {
			slog.Error("failed to open log file", "error", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: slog.LevelWarn})))

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = cfg.Seed
	}
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		slog.Error("failed to create screen", "error", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		slog.Error("failed to init screen", "error", err)
		os.Exit(1)
	}

	h := &host{screen: screen}
	h.cols, h.rows = screen.Size()
	width, height := h.sceneSize()
	h.scene, err = game.NewScene(cfg, game.Options{Seed: rngSeed}, width, height)
	if err != nil {
		screen.Fini()
		slog.Error("failed to create scene", "error", err)
		os.Exit(1)
	}
	defer h.scene.Close()

	palette := h.scene.Palette()
	h.background = darken(palette.At(0))
	h.flowColor = palette.At(2)

	h.run(time.Duration(float64(time.Second) / float64(cfg.Screen.TargetFPS)))
	screen.Fini()
}

func (h *host) sceneSize() (float64, float64) {
	return float64(h.cols * cellWidth), float64(h.rows * cellHeight)
}

func (h *host) run(frame time.Duration) {
	ticker := time.NewTicker(frame)
	defer ticker.Stop()

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := h.screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			events <- ev
		}
	}()

	start := time.Now()
	for {
		select {
		case ev, ok := <-events:
			if !ok || !h.handleEvent(ev) {
				return
			}

		case <-ticker.C:
			h.scene.Advance(time.Since(start).Seconds())
			h.scene.BeginRender()
			h.draw(time.Since(start).Seconds())
		}
	}
}

// handleEvent returns false when the host should exit.
func (h *host) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch {
		case ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC:
			return false
		case ev.Key() == tcell.KeyRune && ev.Rune() == 'q':
			return false
		case ev.Key() == tcell.KeyRune && ev.Rune() == ' ':
			h.scene.SetPaused(!h.scene.Paused())
		case ev.Key() == tcell.KeyRune && ev.Rune() == 'r':
			if err := h.scene.Reseed(time.Now().UnixNano()); err != nil {
				slog.Error("reseed failed", "error", err)
			}
		}

	case *tcell.EventResize:
		h.screen.Sync()
		h.cols, h.rows = h.screen.Size()
		if h.cols > 0 && h.rows > 0 {
			if err := h.scene.Resize(h.sceneSize()); err != nil {
				slog.Error("resize failed", "error", err)
			}
		}
	}
	return true
}

func (h *host) draw(t float64) {
	cells := make([]colorful.Color, h.cols*h.rows)
	for i := range cells {
		cells[i] = h.background
	}

	// Bodies are composited back to front: circles then orbs
	if c := h.scene.Circles(); c != nil {
		h.composite(cells, c.Bodies(), c.Config(), t)
	}
	if o := h.scene.Orbs(); o != nil {
		h.composite(cells, o.Bodies(), o.Config(), t)
	}

	for y := 0; y < h.rows; y++ {
		for x := 0; x < h.cols; x++ {
			bg := tcellColor(cells[y*h.cols+x])
			h.screen.SetContent(x, y, ' ', nil, tcell.StyleDefault.Background(bg))
		}
	}

	if f := h.scene.Flow(); f != nil {
		for _, p := range f.Particles().All() {
			x, y := int(p.Pos.X/cellWidth), int(p.Pos.Y/cellHeight)
			if x < 0 || x >= h.cols || y < 0 || y >= h.rows {
				continue
			}
			bg := cells[y*h.cols+x]
			fg := bg.BlendLab(h.flowColor, 0.8).Clamped()
			style := tcell.StyleDefault.Background(tcellColor(bg)).Foreground(tcellColor(fg))
			h.screen.SetContent(x, y, headingGlyph(p), nil, style)
		}
	}

	h.screen.Show()
}

// composite blends every body into the cell colors with a soft radial falloff.
func (h *host) composite(cells []colorful.Color, bodies components.BodyView, cfg config.SoftBodyConfig, t float64) {
	for _, b := range bodies.All() {
		outer := b.Radius + cfg.Softness
		opacity := 0.85 - 0.5*b.Depth
		if cfg.FlickerAmplitude > 0 {
			opacity *= 1 - cfg.FlickerAmplitude*(0.5+0.5*math.Sin(t*2.3+b.Phase))
		}

		x0 := max(0, int((b.Pos.X-outer)/cellWidth))
		x1 := min(h.cols-1, int((b.Pos.X+outer)/cellWidth))
		y0 := max(0, int((b.Pos.Y-outer)/cellHeight))
		y1 := min(h.rows-1, int((b.Pos.Y+outer)/cellHeight))

		for y := y0; y <= y1; y++ {
			for x := x0; x <= x1; x++ {
				cx := (float64(x) + 0.5) * cellWidth
				cy := (float64(y) + 0.5) * cellHeight
				d := math.Hypot(cx-b.Pos.X, cy-b.Pos.Y)
				if d >= outer {
					continue
				}
				alpha := opacity
				if d > b.Radius {
					alpha *= 1 - (d-b.Radius)/cfg.Softness
				}
				i := y*h.cols + x
				cells[i] = cells[i].BlendLab(b.Color, alpha).Clamped()
			}
		}
	}
}

func headingGlyph(p components.Particle) rune {
	if p.Speed() == 0 {
		return '·'
	}
	angle := math.Atan2(p.Vel.Y, p.Vel.X)
	octant := int(math.Round(angle/(math.Pi/4))+8) % 8
	return headingGlyphs[octant]
}

func darken(c colorful.Color) colorful.Color {
	h, s, l := c.Hsl()
	return colorful.Hsl(h, s*0.6, l*0.15)
}

func tcellColor(c colorful.Color) tcell.Color {
	r, g, b := c.RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}
