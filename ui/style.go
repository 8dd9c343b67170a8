// Package ui draws the raylib overlays on top of the particle field: the
// preloader title and status, the theme toggle and an optional perf panel.
package ui

import (
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/constellation/renderer"
	"github.com/pthm-cable/constellation/theme"
)

// Style holds overlay styling. Colors come from the active theme palette
// and are re-resolved every frame.
type Style struct {
	TitleFontSize  int32
	StatusFontSize int32
	FontSize       int32
	LineHeight     int32
	Padding        int32

	Text       rl.Color
	Muted      rl.Color
	Accent     rl.Color
	PanelBg    rl.Color
	ErrorText  rl.Color
	ErrorPanel rl.Color
}

// DefaultStyle returns the layout constants with neutral colors.
func DefaultStyle() Style {
	return Style{
		TitleFontSize:  32,
		StatusFontSize: 18,
		FontSize:       12,
		LineHeight:     14,
		Padding:        10,

		Text:       rl.Color{R: 33, G: 37, B: 41, A: 255},
		Muted:      rl.Color{R: 108, G: 117, B: 125, A: 255},
		Accent:     rl.Color{R: 52, G: 101, B: 164, A: 255},
		PanelBg:    rl.Color{R: 0, G: 0, B: 0, A: 40},
		ErrorText:  rl.Color{R: 204, G: 0, B: 0, A: 255},
		ErrorPanel: rl.Color{R: 255, G: 238, B: 238, A: 255},
	}
}

// FromTheme returns s with text and accent colors taken from th. Properties
// that are missing or unparseable keep the colors already in s.
func (s Style) FromTheme(th *theme.Themes) Style {
	if c, err := th.Color(theme.PropTextColor); err == nil {
		s.Text = toRL(c)
		s.Muted = toRL(renderer.WithAlpha(c, 0.6))
		s.PanelBg = toRL(renderer.WithAlpha(c, 0.08))
	}
	if c, err := th.Color(theme.PropParticleColor); err == nil {
		s.Accent = toRL(renderer.WithAlpha(c, 1))
	}
	return s
}

func toRL(c color.NRGBA) rl.Color {
	return rl.Color{R: c.R, G: c.G, B: c.B, A: c.A}
}
