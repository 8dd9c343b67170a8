package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/constellation/telemetry"
	"github.com/pthm-cable/constellation/theme"
)

// PerfPanelData holds performance metrics for display.
type PerfPanelData struct {
	Stats     telemetry.PerfStats
	Particles int
	Edges     int
}

// PerfPanel renders frame timing by phase.
type PerfPanel struct {
	style Style
	x, y  int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{style: DefaultStyle(), x: x, y: y}
}

// Draw renders the performance panel.
func (p *PerfPanel) Draw(data PerfPanelData, th *theme.Themes) {
	s := p.style.FromTheme(th)
	x, y := p.x, p.y
	width := int32(220)
	height := int32(4+len(telemetry.Phases))*s.LineHeight + 2*s.Padding

	rl.DrawRectangle(x, y, width, height, s.PanelBg)
	x += s.Padding
	y += s.Padding

	rl.DrawText("Frame Performance", x, y, s.FontSize+2, s.Text)
	y += s.LineHeight + 4

	st := data.Stats
	rl.DrawText(fmt.Sprintf("Cost: %s avg, %s p95", st.AvgCost.Round(time.Microsecond), st.P95Cost.Round(time.Microsecond)),
		x, y, s.FontSize, s.Accent)
	y += s.LineHeight

	rl.DrawText(fmt.Sprintf("FPS: %.0f | Particles: %d | Edges: %d", st.FPS, data.Particles, data.Edges),
		x, y, s.FontSize, s.Muted)
	y += s.LineHeight

	for _, phase := range telemetry.Phases {
		pct := st.PhasePct[phase]
		c := s.Muted
		if pct > 50 {
			c = s.Accent
		}
		rl.DrawText(fmt.Sprintf("%-8s %8s %5.1f%%", phase, st.PhaseAvg[phase].Round(time.Microsecond), pct), x, y, s.FontSize, c)
		y += s.LineHeight
	}
}
