// Package config loads the optional pane.yaml file that tunes the window,
// the frame loop and the redraw scheduler.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/go-drift/pane/pkg/render"
)

// FileName is the name LoadOptional looks for.
const FileName = "pane.yaml"

// Config represents the optional pane.yaml configuration.
type Config struct {
	Window WindowConfig `yaml:"window"`
	Frame  FrameConfig  `yaml:"frame"`
	Redraw RedrawConfig `yaml:"redraw"`
	Errors ErrorsConfig `yaml:"errors"`
	Debug  DebugConfig  `yaml:"debug"`
}

// WindowConfig describes the initial window.
type WindowConfig struct {
	Width  int    `yaml:"width,omitempty"`
	Height int    `yaml:"height,omitempty"`
	Title  string `yaml:"title,omitempty"`
}

// FrameConfig tunes the main loop.
type FrameConfig struct {
	// Interval is the time between ticks, e.g. "16ms".
	Interval time.Duration `yaml:"interval,omitempty"`
	// TraceSamples is the number of frame samples kept for inspection.
	TraceSamples int `yaml:"trace_samples,omitempty"`
	// DropThreshold is the frame duration above which a frame counts as
	// dropped.
	DropThreshold time.Duration `yaml:"drop_threshold,omitempty"`
}

// RedrawConfig tunes the redraw scheduler.
type RedrawConfig struct {
	MaxDirtyRects int `yaml:"max_dirty_rects,omitempty"`
	// Background is a "#RRGGBB" or "#AARRGGBB" fill for dirty areas. Empty
	// leaves the previous frame's pixels in place.
	Background string `yaml:"background,omitempty"`
	// DisabledVeil is laid over disabled widgets. Empty disables the veil.
	DisabledVeil string `yaml:"disabled_veil,omitempty"`
}

// ErrorsConfig tunes error reporting.
type ErrorsConfig struct {
	// Verbose adds stack traces to logged panics.
	Verbose bool `yaml:"verbose,omitempty"`
}

// DebugConfig enables the HTTP inspection server.
type DebugConfig struct {
	// Addr is the listen address, e.g. "localhost:9091". Empty disables
	// the server.
	Addr string `yaml:"addr,omitempty"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Window: WindowConfig{Width: 800, Height: 600, Title: "pane"},
		Frame: FrameConfig{
			Interval:      16 * time.Millisecond,
			TraceSamples:  240,
			DropThreshold: 16667 * time.Microsecond,
		},
		Redraw: RedrawConfig{
			MaxDirtyRects: 8,
			DisabledVeil:  "#80C0C0C0",
		},
	}
}

// LoadOptional reads pane.yaml from dir if present, and returns the
// defaults otherwise.
func LoadOptional(dir string) (*Config, error) {
	cfg, err := Load(filepath.Join(dir, FileName))
	if errors.Is(err, os.ErrNotExist) {
		d := Default()
		return &d, nil
	}
	return cfg, err
}

// Load reads and validates the file at path. Keys missing from the file
// keep their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}
	return Parse(data)
}

// Parse decodes and validates YAML configuration data.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", FileName, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every value for range and syntax errors.
func (c *Config) Validate() error {
	var problems []string
	if c.Window.Width < 0 || c.Window.Height < 0 {
		problems = append(problems, fmt.Sprintf("window size %dx%d is negative", c.Window.Width, c.Window.Height))
	}
	if c.Frame.Interval <= 0 {
		problems = append(problems, "frame.interval must be positive")
	}
	if c.Frame.TraceSamples < 0 {
		problems = append(problems, "frame.trace_samples must not be negative")
	}
	if c.Frame.DropThreshold < 0 {
		problems = append(problems, "frame.drop_threshold must not be negative")
	}
	if c.Redraw.MaxDirtyRects < 1 {
		problems = append(problems, "redraw.max_dirty_rects must be at least 1")
	}
	if _, _, err := c.BackgroundColor(); err != nil {
		problems = append(problems, "redraw.background: "+err.Error())
	}
	if _, err := c.VeilColor(); err != nil {
		problems = append(problems, "redraw.disabled_veil: "+err.Error())
	}
	if addr := strings.TrimSpace(c.Debug.Addr); addr != "" {
		if _, _, err := net.SplitHostPort(addr); err != nil {
			problems = append(problems, "debug.addr: "+err.Error())
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid %s: %s", FileName, strings.Join(problems, "; "))
	}
	return nil
}

// BackgroundColor returns the configured background and whether one is set.
func (c *Config) BackgroundColor() (render.Color, bool, error) {
	s := strings.TrimSpace(c.Redraw.Background)
	if s == "" {
		return render.ColorTransparent, false, nil
	}
	col, err := render.ParseHex(s)
	return col, err == nil, err
}

// VeilColor returns the disabled veil color, transparent when unset.
func (c *Config) VeilColor() (render.Color, error) {
	s := strings.TrimSpace(c.Redraw.DisabledVeil)
	if s == "" {
		return render.ColorTransparent, nil
	}
	return render.ParseHex(s)
}
