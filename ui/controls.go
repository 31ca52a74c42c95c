package ui

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	gui "github.com/gen2brain/raylib-go/raygui"
)

// Layers holds per-layer visibility. Hidden layers keep simulating.
type Layers struct {
	Flow    bool
	Circles bool
	Orbs    bool
}

// ControlActions reports which buttons were pressed this frame.
type ControlActions struct {
	Reseed      bool
	TogglePause bool
}

// ControlsPanel renders the left-side control panel with layer toggles,
// pause and reseed.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool
	Layers   Layers
}

// NewControlsPanel creates a new controls panel with every layer shown.
func NewControlsPanel(x, y, width int32) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		Layers:   Layers{Flow: true, Circles: true, Orbs: true},
	}
}

// IsVisible returns whether the panel is shown.
func (c *ControlsPanel) IsVisible() bool {
	return c.visible
}

// Toggle switches panel visibility.
func (c *ControlsPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// Draw renders the panel and returns the actions taken.
func (c *ControlsPanel) Draw(paused bool) ControlActions {
	var actions ControlActions
	if !c.visible {
		return actions
	}

	r := c.renderer
	padding := r.Theme.Padding
	lineHeight := r.Theme.LineHeight + 6
	panelHeight := lineHeight*6 + padding*2

	r.DrawPanel(c.x, c.y, c.width, panelHeight)

	x := float32(c.x + padding)
	y := c.y + padding
	y = r.DrawSectionHeader(int32(x), y, "Layers")

	box := func(text string, checked bool) bool {
		v := gui.CheckBox(rl.Rectangle{X: x, Y: float32(y), Width: 14, Height: 14}, text, checked)
		y += lineHeight
		return v
	}
	c.Layers.Flow = box("Flow field", c.Layers.Flow)
	c.Layers.Circles = box("Circles", c.Layers.Circles)
	c.Layers.Orbs = box("Orbs", c.Layers.Orbs)

	buttonWidth := float32(c.width-padding*3) / 2
	pauseText := "Pause"
	if paused {
		pauseText = "Resume"
	}
	if gui.Button(rl.Rectangle{X: x, Y: float32(y), Width: buttonWidth, Height: 24}, pauseText) {
		actions.TogglePause = true
	}
	if gui.Button(rl.Rectangle{X: x + buttonWidth + float32(padding), Y: float32(y), Width: buttonWidth, Height: 24}, "Reseed") {
		actions.Reseed = true
	}

	return actions
}
