// Package config provides configuration loading and access for the preloader engine.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/constellation/renderer"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Link strategies.
const (
	StrategyBrute = "brute"
	StrategyGrid  = "grid"
)

// Config holds all engine and host configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Field     FieldConfig     `yaml:"field"`
	Pointer   PointerConfig   `yaml:"pointer"`
	Links     LinksConfig     `yaml:"links"`
	Theme     ThemeConfig     `yaml:"theme"`
	Preloader PreloaderConfig `yaml:"preloader"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds window settings for graphical hosts.
type ScreenConfig struct {
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	TargetFPS int    `yaml:"target_fps"`
	Title     string `yaml:"title"`
}

// FieldConfig holds population and particle creation parameters.
type FieldConfig struct {
	MaxParticles    int     `yaml:"max_particles"`
	AreaPerParticle float64 `yaml:"area_per_particle"` // Surface area (px²) per particle
	MinRadius       float64 `yaml:"min_radius"`
	MaxRadius       float64 `yaml:"max_radius"`
	MinReactivity   float64 `yaml:"min_reactivity"`
	MaxReactivity   float64 `yaml:"max_reactivity"`
	MaxDrift        float64 `yaml:"max_drift"`       // Drift per axis is drawn from [-max, max)
	CoalesceResize  bool    `yaml:"coalesce_resize"` // Apply resizes once at the next frame
}

// PointerConfig holds pointer repulsion parameters.
type PointerConfig struct {
	InfluenceRadius float64 `yaml:"influence_radius"`
	Epsilon         float64 `yaml:"epsilon"`  // Distance floor
	Strength        float64 `yaml:"strength"` // Displacement = force * reactivity * strength
}

// LinksConfig holds proximity edge parameters.
type LinksConfig struct {
	Distance   float64 `yaml:"distance"`
	MaxOpacity float64 `yaml:"max_opacity"`
	LineWidth  float64 `yaml:"line_width"`
	Strategy   string  `yaml:"strategy"` // brute | grid
}

// ThemeConfig holds the initial theme and the custom property palettes.
type ThemeConfig struct {
	Initial  string                       `yaml:"initial"`
	Palettes map[string]map[string]string `yaml:"palettes"`
}

// PreloaderConfig holds preloader overlay text and dismissal timing.
type PreloaderConfig struct {
	Title             string        `yaml:"title"`
	Message           string        `yaml:"message"`
	LoadDelay         time.Duration `yaml:"load_delay"`          // Hide this long after load
	ContentReadyDelay time.Duration `yaml:"content_ready_delay"` // Hide this long after content is ready
	Fallback          time.Duration `yaml:"fallback"`            // Hide unconditionally after this long
	ErrorDelay        time.Duration `yaml:"error_delay"`         // Hide this long after a reported failure
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	PerfWindow  int `yaml:"perf_window"`  // Frames per rolling perf window
	LogInterval int `yaml:"log_interval"` // Frames between perf log lines (0 = off)
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	ThemeNames []string // Sorted palette names
	MaxPairs   int      // MaxParticles*(MaxParticles-1)/2
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns the embedded defaults. Panics if they fail to parse.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// Validate reports every invalid parameter, joined into one error.
func (c *Config) Validate() error {
	var errs []error
	if c.Screen.TargetFPS <= 0 {
		errs = append(errs, fmt.Errorf("screen.target_fps must be > 0, got %d", c.Screen.TargetFPS))
	}
	if c.Field.MaxParticles < 0 {
		errs = append(errs, fmt.Errorf("field.max_particles must be >= 0, got %d", c.Field.MaxParticles))
	}
	if c.Field.AreaPerParticle <= 0 {
		errs = append(errs, fmt.Errorf("field.area_per_particle must be > 0, got %v", c.Field.AreaPerParticle))
	}
	if c.Field.MinRadius <= 0 || c.Field.MaxRadius < c.Field.MinRadius {
		errs = append(errs, fmt.Errorf("field radius range [%v, %v) is invalid", c.Field.MinRadius, c.Field.MaxRadius))
	}
	if c.Field.MaxReactivity < c.Field.MinReactivity {
		errs = append(errs, fmt.Errorf("field reactivity range [%v, %v) is invalid", c.Field.MinReactivity, c.Field.MaxReactivity))
	}
	if c.Pointer.InfluenceRadius <= 0 {
		errs = append(errs, fmt.Errorf("pointer.influence_radius must be > 0, got %v", c.Pointer.InfluenceRadius))
	}
	if c.Pointer.Epsilon <= 0 {
		errs = append(errs, fmt.Errorf("pointer.epsilon must be > 0, got %v", c.Pointer.Epsilon))
	}
	if c.Links.Distance <= 0 {
		errs = append(errs, fmt.Errorf("links.distance must be > 0, got %v", c.Links.Distance))
	}
	if c.Links.Strategy != StrategyBrute && c.Links.Strategy != StrategyGrid {
		errs = append(errs, fmt.Errorf("links.strategy must be %q or %q, got %q", StrategyBrute, StrategyGrid, c.Links.Strategy))
	}
	if _, ok := c.Theme.Palettes[c.Theme.Initial]; !ok {
		errs = append(errs, fmt.Errorf("theme.initial %q has no palette", c.Theme.Initial))
	}
	for name, palette := range c.Theme.Palettes {
		for prop, value := range palette {
			if _, err := renderer.ParseColor(value); err != nil {
				errs = append(errs, fmt.Errorf("theme.palettes.%s.%s: %w", name, prop, err))
			}
		}
	}
	if c.Preloader.LoadDelay < 0 || c.Preloader.ContentReadyDelay < 0 || c.Preloader.Fallback < 0 || c.Preloader.ErrorDelay < 0 {
		errs = append(errs, errors.New("preloader delays must be >= 0"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.ThemeNames = make([]string, 0, len(c.Theme.Palettes))
	for name := range c.Theme.Palettes {
		c.Derived.ThemeNames = append(c.Derived.ThemeNames, name)
	}
	sort.Strings(c.Derived.ThemeNames)

	n := c.Field.MaxParticles
	c.Derived.MaxPairs = n * (n - 1) / 2
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
