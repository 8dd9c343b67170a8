// Package theme holds the named color palettes the preloader paints with.
// Colors are exposed as custom properties and resolved on every lookup, so a
// theme switch is visible on the next frame without notifying anyone.
package theme

import (
	"fmt"
	"image/color"
	"maps"
	"slices"

	"github.com/pthm-cable/constellation/renderer"
)

// Custom property names.
const (
	PropBackground    = "--canvas-background"
	PropParticleColor = "--canvas-particle-color"
	PropLineColor     = "--canvas-line-color"
	PropTextColor     = "--canvas-text-color"
)

// Built-in theme names.
const (
	Light = "light"
	Dark  = "dark"
)

// Themes is the set of palettes plus the active selection.
type Themes struct {
	palettes map[string]map[string]string
	names    []string
	current  string
}

// New creates a theme set from palettes, activating initial.
// Palettes are copied; later edits to the argument have no effect.
func New(palettes map[string]map[string]string, initial string) (*Themes, error) {
	t := &Themes{palettes: make(map[string]map[string]string, len(palettes))}
	for name, props := range palettes {
		props = maps.Clone(props)
		if props == nil {
			props = make(map[string]string)
		}
		t.palettes[name] = props
	}
	t.names = slices.Sorted(maps.Keys(t.palettes))
	if err := t.Set(initial); err != nil {
		return nil, err
	}
	return t, nil
}

// Property returns the value of a custom property in the active palette,
// or "" if the palette does not define it.
func (t *Themes) Property(name string) string {
	return t.palettes[t.current][name]
}

// Current returns the active theme name.
func (t *Themes) Current() string {
	return t.current
}

// Names returns the palette names in sorted order.
func (t *Themes) Names() []string {
	return slices.Clone(t.names)
}

// Set activates the named palette.
func (t *Themes) Set(name string) error {
	if _, ok := t.palettes[name]; !ok {
		return fmt.Errorf("unknown theme %q", name)
	}
	t.current = name
	return nil
}

// Toggle activates the next palette in sorted order and returns its name.
// With the built-in palettes this flips between light and dark.
func (t *Themes) Toggle() string {
	i := slices.Index(t.names, t.current)
	t.current = t.names[(i+1)%len(t.names)]
	return t.current
}

// SetProperty overrides one property of the active palette.
// The value must parse as a color.
func (t *Themes) SetProperty(name, value string) error {
	if _, err := renderer.ParseColor(value); err != nil {
		return fmt.Errorf("setting %s: %w", name, err)
	}
	t.palettes[t.current][name] = value
	return nil
}

// Color resolves a property and parses it.
func (t *Themes) Color(name string) (color.NRGBA, error) {
	return renderer.ParseColor(t.Property(name))
}
