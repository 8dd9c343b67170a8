package ui

import (
	"fmt"
	"strings"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/constellation/theme"
)

// OverlayData holds everything the preloader overlay shows.
type OverlayData struct {
	Title        string
	Status       string
	Failure      string // Shown in a panel at the bottom when set
	Hidden       bool   // Preloader dismissed; show the ready screen
	ThemeName    string
	ScreenWidth  int32
	ScreenHeight int32
}

// OverlayAction is what the user asked for this frame.
type OverlayAction int

const (
	ActionNone OverlayAction = iota
	ActionToggleTheme
	ActionReplay
)

// Overlay renders the preloader text and controls.
type Overlay struct {
	style Style
}

// NewOverlay creates an overlay with the default style.
func NewOverlay() *Overlay {
	return &Overlay{style: DefaultStyle()}
}

// Draw renders the overlay and returns the action triggered by its buttons.
// Colors follow th on every call.
func (o *Overlay) Draw(data OverlayData, th *theme.Themes) OverlayAction {
	s := o.style.FromTheme(th)
	action := ActionNone

	if data.Hidden {
		o.drawCentered("Ready", data, data.ScreenHeight/2-s.TitleFontSize, s.TitleFontSize, s.Text)
		o.drawCentered("Press R or use the button to replay the preloader", data, data.ScreenHeight/2+8, s.StatusFontSize, s.Muted)

		btn := rl.Rectangle{X: float32(data.ScreenWidth/2 - 60), Y: float32(data.ScreenHeight/2 + 40), Width: 120, Height: 30}
		if gui.Button(btn, "Replay") || rl.IsKeyPressed(rl.KeyR) {
			action = ActionReplay
		}
	} else {
		o.drawCentered(data.Title, data, data.ScreenHeight/2-s.TitleFontSize, s.TitleFontSize, s.Text)
		o.drawCentered(data.Status, data, data.ScreenHeight/2+8, s.StatusFontSize, s.Muted)
	}

	label := fmt.Sprintf("Theme: %s", data.ThemeName)
	btn := rl.Rectangle{X: float32(data.ScreenWidth - 140), Y: 10, Width: 130, Height: 28}
	if gui.Button(btn, label) || rl.IsKeyPressed(rl.KeyT) {
		action = ActionToggleTheme
	}

	if data.Failure != "" {
		o.drawFailure(data, s)
	}

	rl.DrawText("T: theme  L: finish loading  E: fail  F1: perf", s.Padding, data.ScreenHeight-20, s.FontSize, s.Muted)
	return action
}

func (o *Overlay) drawCentered(text string, data OverlayData, y, size int32, c rl.Color) {
	w := rl.MeasureText(text, size)
	rl.DrawText(text, (data.ScreenWidth-w)/2, y, size, c)
}

// drawFailure shows the reported error in a strip along the bottom edge.
func (o *Overlay) drawFailure(data OverlayData, s Style) {
	x := s.Padding
	w := data.ScreenWidth - 2*s.Padding
	h := int32(40)
	y := data.ScreenHeight - h - 30

	rl.DrawRectangle(x, y, w, h, s.ErrorPanel)
	msg := "Debug Error: " + strings.TrimSpace(data.Failure)
	rl.DrawText(msg, x+s.Padding, y+(h-s.FontSize)/2, s.FontSize, s.ErrorText)
}
