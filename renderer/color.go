package renderer

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// ParseColor parses a themed color string. Accepted shapes are
// "rgba(r, g, b, a)", "rgb(r, g, b)", "#rgb" and "#rrggbb".
// Channels r, g, b are 0-255; a is 0-1.
func ParseColor(s string) (color.NRGBA, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "#") {
		c, err := colorful.Hex(s)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("parsing hex color %q: %w", s, err)
		}
		r, g, b := c.Clamped().RGB255()
		return color.NRGBA{R: r, G: g, B: b, A: 255}, nil
	}

	name, args, ok := strings.Cut(s, "(")
	if !ok || !strings.HasSuffix(args, ")") {
		return color.NRGBA{}, fmt.Errorf("unrecognized color %q", s)
	}
	args = strings.TrimSuffix(args, ")")
	parts := strings.Split(args, ",")

	switch strings.TrimSpace(name) {
	case "rgba":
		if len(parts) != 4 {
			return color.NRGBA{}, fmt.Errorf("rgba color %q: want 4 channels, got %d", s, len(parts))
		}
	case "rgb":
		if len(parts) != 3 {
			return color.NRGBA{}, fmt.Errorf("rgb color %q: want 3 channels, got %d", s, len(parts))
		}
	default:
		return color.NRGBA{}, fmt.Errorf("unrecognized color function %q", name)
	}

	var ch [3]uint8
	for i := range ch {
		v, err := strconv.ParseFloat(strings.TrimSpace(parts[i]), 64)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("color %q channel %d: %w", s, i, err)
		}
		if math.IsNaN(v) {
			return color.NRGBA{}, fmt.Errorf("color %q channel %d is NaN", s, i)
		}
		ch[i] = uint8(math.Round(clamp(v, 0, 255)))
	}

	alpha := 1.0
	if len(parts) == 4 {
		v, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("color %q alpha: %w", s, err)
		}
		if math.IsNaN(v) {
			return color.NRGBA{}, fmt.Errorf("color %q alpha is NaN", s)
		}
		alpha = v
	}

	return WithAlpha(color.NRGBA{R: ch[0], G: ch[1], B: ch[2]}, alpha), nil
}

// WithAlpha returns c with only its alpha channel replaced by a (0-1).
func WithAlpha(c color.NRGBA, a float64) color.NRGBA {
	c.A = uint8(math.Round(clamp(a, 0, 1) * 255))
	return c
}

// Alpha returns the alpha channel of c as a fraction.
func Alpha(c color.NRGBA) float64 {
	return float64(c.A) / 255
}

// FormatRGBA renders c in the "rgba(r, g, b, a)" shape accepted by ParseColor.
func FormatRGBA(c color.NRGBA) string {
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", c.R, c.G, c.B,
		strconv.FormatFloat(Alpha(c), 'f', -1, 64))
}

// Blend composites c over an opaque background, using c's alpha.
// Hosts without alpha support (terminals) draw the result.
func Blend(bg, c color.NRGBA) color.NRGBA {
	base := colorful.Color{R: float64(bg.R) / 255, G: float64(bg.G) / 255, B: float64(bg.B) / 255}
	top := colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
	r, g, b := base.BlendRgb(top, Alpha(c)).Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
