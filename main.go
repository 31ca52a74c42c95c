package main

import (
	"flag"
	"log/slog"
	"math/rand"
	"os"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/drift/config"
	"github.com/pthm-cable/drift/game"
	"github.com/pthm-cable/drift/renderer"
	"github.com/pthm-cable/drift/telemetry"
	"github.com/pthm-cable/drift/ui"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = config seed, then time-based)")
	maxFrames := flag.Int("max-frames", 0, "Stop after N frames (0 = unlimited)")
	frameRate := flag.Float64("frame-rate", 60, "Synthetic frame rate for headless runs")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = cfg.Seed
	}
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	opts := game.Options{
		Seed:      rngSeed,
		LogStats:  *logStats,
		OutputDir: *outputDir,
	}

	if *headless {
		runHeadless(cfg, opts, *frameRate, *maxFrames)
		return
	}
	runWindow(cfg, opts, *maxFrames)
}

// runHeadless drives the scene with a synthetic clock. No raylib calls are made.
func runHeadless(cfg *config.Config, opts game.Options, frameRate float64, maxFrames int) {
	if frameRate <= 0 {
		slog.Error("frame rate must be positive", "frame_rate", frameRate)
		os.Exit(1)
	}

	scene, err := game.NewScene(cfg, opts, float64(cfg.Screen.Width), float64(cfg.Screen.Height))
	if err != nil {
		slog.Error("failed to create scene", "error", err)
		os.Exit(1)
	}
	defer scene.Close()

	slog.Info("starting headless simulation",
		"seed", opts.Seed,
		"frame_rate", frameRate,
		"max_frames", maxFrames,
		"output_dir", opts.OutputDir,
	)

	for frame := 0; maxFrames == 0 || frame < maxFrames; frame++ {
		scene.Advance(float64(frame) / frameRate)
	}
	slog.Info("max frames reached", "frames", scene.Frames(), "sim_time", scene.SimTime())
}

// runWindow opens a resizable raylib window and renders the scene each frame.
func runWindow(cfg *config.Config, opts game.Options, maxFrames int) {
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), cfg.Screen.Title)
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	scene, err := game.NewScene(cfg, opts, float64(rl.GetScreenWidth()), float64(rl.GetScreenHeight()))
	if err != nil {
		slog.Error("failed to create scene", "error", err)
		os.Exit(1)
	}
	defer scene.Close()

	slog.Info("starting simulation", "seed", opts.Seed, "width", rl.GetScreenWidth(), "height", rl.GetScreenHeight())

	palette := scene.Palette()
	flowRenderer := renderer.NewFlowRenderer(palette.At(2))
	circleRenderer := renderer.NewBodyRenderer(cfg.Circles)
	orbRenderer := renderer.NewBodyRenderer(cfg.Orbs)
	background := renderer.BackgroundColor(palette.At(0))

	hud := ui.NewHUD()
	perfPanel := ui.NewPerfPanel()
	controls := ui.NewControlsPanel(10, 100, 220)
	showPerf := false

	reseed := rand.New(rand.NewSource(opts.Seed))

	for !rl.WindowShouldClose() {
		// Minimised windows report a zero size; keep the last layout until restored
		w, h := rl.GetScreenWidth(), rl.GetScreenHeight()
		if w > 0 && h > 0 {
			if err := scene.Resize(float64(w), float64(h)); err != nil {
				slog.Error("resize failed", "error", err)
			}
		}

		// Input
		if rl.IsKeyPressed(rl.KeyTab) {
			controls.Toggle()
		}
		if rl.IsKeyPressed(rl.KeySpace) {
			scene.SetPaused(!scene.Paused())
		}
		if rl.IsKeyPressed(rl.KeyP) {
			showPerf = !showPerf
		}

		scene.Advance(rl.GetTime())

		scene.BeginRender()
		rl.BeginDrawing()
		rl.ClearBackground(background)

		now := rl.GetTime()
		if c := scene.Circles(); c != nil && controls.Layers.Circles {
			circleRenderer.Draw(c.Bodies(), now)
		}
		if f := scene.Flow(); f != nil && controls.Layers.Flow {
			flowRenderer.Draw(f.Particles(), f.FieldTime())
		}
		if o := scene.Orbs(); o != nil && controls.Layers.Orbs {
			orbRenderer.Draw(o.Bodies(), now)
		}

		hud.Draw(hudData(scene, cfg.Screen.Title))
		hud.DrawControls(int32(h), "[Tab] controls  [Space] pause  [P] perf")
		if showPerf {
			perfPanel.Draw(int32(w)-260, 10, scene.PerfStats(), telemetry.Phases())
		}

		actions := controls.Draw(scene.Paused())
		if actions.TogglePause {
			scene.SetPaused(!scene.Paused())
		}
		if actions.Reseed {
			if err := scene.Reseed(reseed.Int63()); err != nil {
				slog.Error("reseed failed", "error", err)
			}
		}

		rl.EndDrawing()

		if maxFrames > 0 && scene.Frames() >= maxFrames {
			break
		}
	}
}

func hudData(scene *game.Scene, title string) ui.HUDData {
	data := ui.HUDData{
		Title:     title,
		Seed:      scene.Seed(),
		FieldTime: scene.FieldTime(),
		FPS:       rl.GetFPS(),
		Paused:    scene.Paused(),
	}
	if f := scene.Flow(); f != nil {
		data.Particles = f.Count()
	}
	if c := scene.Circles(); c != nil {
		data.Bodies += c.Bodies().Len()
	}
	if o := scene.Orbs(); o != nil {
		data.Bodies += o.Bodies().Len()
	}
	return data
}
