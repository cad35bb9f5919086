package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"glessons/internal/graphics/glapi"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config holds everything the harness can be tuned with. Zero values in a
// file keep the defaults from Default.
type Config struct {
	Lesson    string          `toml:"lesson" yaml:"lesson"`
	Window    WindowConfig    `toml:"window" yaml:"window"`
	Render    RenderConfig    `toml:"render" yaml:"render"`
	Transform TransformConfig `toml:"transform" yaml:"transform"`
	Texture   TextureConfig   `toml:"texture" yaml:"texture"`
	Shaders   ShaderConfig    `toml:"shaders" yaml:"shaders"`
}

// WindowConfig holds window settings
type WindowConfig struct {
	Width     int    `toml:"width" yaml:"width"`
	Height    int    `toml:"height" yaml:"height"`
	Title     string `toml:"title" yaml:"title"`
	VSync     bool   `toml:"vsync" yaml:"vsync"`
	Resizable bool   `toml:"resizable" yaml:"resizable"`
	// FPSLimit caps the frame rate; 0 leaves pacing to vsync.
	FPSLimit int `toml:"fps_limit" yaml:"fps_limit"`
}

// RenderConfig holds per-frame render settings
type RenderConfig struct {
	// ClearColor overrides the lesson's clear color when set.
	ClearColor []float32 `toml:"clear_color,omitempty" yaml:"clear_color,omitempty"`
	// Wireframe forces the polygon mode when set.
	Wireframe *bool `toml:"wireframe,omitempty" yaml:"wireframe,omitempty"`
	// SlowFrameMs logs frames that take longer than this; 0 disables it.
	SlowFrameMs float64 `toml:"slow_frame_ms" yaml:"slow_frame_ms"`
}

// TransformConfig holds the movement tuning of the transformation lesson
type TransformConfig struct {
	StepX float32 `toml:"step_x" yaml:"step_x"`
	StepY float32 `toml:"step_y" yaml:"step_y"`
}

// TextureConfig holds texture loading and sampling settings
type TextureConfig struct {
	Wrap           string   `toml:"wrap" yaml:"wrap"`
	MinFilter      string   `toml:"min_filter" yaml:"min_filter"`
	MagFilter      string   `toml:"mag_filter" yaml:"mag_filter"`
	FlipVertically bool     `toml:"flip_vertically" yaml:"flip_vertically"`
	Paths          []string `toml:"paths,omitempty" yaml:"paths,omitempty"`
}

// ShaderConfig points a lesson at shader files on disk instead of the
// embedded sources.
type ShaderConfig struct {
	Vertex   string `toml:"vertex,omitempty" yaml:"vertex,omitempty"`
	Fragment string `toml:"fragment,omitempty" yaml:"fragment,omitempty"`
}

// Default returns the built-in settings. Textures default to trilinear
// minification since every texture gets a full mipmap chain.
func Default() Config {
	return Config{
		Lesson: "transformations",
		Window: WindowConfig{
			Width:     800,
			Height:    600,
			Title:     "LearnOpenGL",
			VSync:     true,
			Resizable: true,
		},
		Render: RenderConfig{
			SlowFrameMs: 50,
		},
		Transform: TransformConfig{
			StepX: 0.005,
			StepY: 0.005,
		},
		Texture: TextureConfig{
			Wrap:           "mirrored_repeat",
			MinFilter:      "linear_mipmap_linear",
			MagFilter:      "linear",
			FlipVertically: true,
		},
	}
}

// Load reads a TOML (.toml) or YAML (.yaml, .yml) file over the defaults
// and validates the result. Unknown keys are rejected.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("could not read config file: %w", err)
	}
	cfg := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		md, err := toml.Decode(string(data), &cfg)
		if err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return Config{}, fmt.Errorf("parse %s: unknown keys %s", path, strings.Join(keys, ", "))
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return Config{}, fmt.Errorf("unsupported config format %q", ext)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Write encodes cfg as "toml" or "yaml".
func Write(w io.Writer, cfg Config, format string) error {
	switch format {
	case "toml":
		return toml.NewEncoder(w).Encode(cfg)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unsupported config format %q", format)
}

// Validate rejects settings the harness cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height))
	}
	if c.Window.FPSLimit < 0 {
		errs = append(errs, fmt.Errorf("fps_limit %d must not be negative", c.Window.FPSLimit))
	}
	if n := len(c.Render.ClearColor); n != 0 && n != 4 {
		errs = append(errs, fmt.Errorf("clear_color needs 4 components, got %d", n))
	}
	if c.Transform.StepX <= 0 || c.Transform.StepX >= 1 || c.Transform.StepY <= 0 || c.Transform.StepY >= 1 {
		errs = append(errs, fmt.Errorf("transform steps (%g, %g) must be in (0, 1)", c.Transform.StepX, c.Transform.StepY))
	}
	if _, err := ParseWrap(c.Texture.Wrap); err != nil {
		errs = append(errs, err)
	}
	if _, err := ParseFilter(c.Texture.MinFilter, true); err != nil {
		errs = append(errs, err)
	}
	if _, err := ParseFilter(c.Texture.MagFilter, false); err != nil {
		errs = append(errs, err)
	}
	if (c.Shaders.Vertex == "") != (c.Shaders.Fragment == "") {
		errs = append(errs, errors.New("shaders.vertex and shaders.fragment must be set together"))
	}
	return errors.Join(errs...)
}

// ClearColor returns the configured clear color, or fallback when none is
// set.
func (c Config) ClearColor(fallback [4]float32) [4]float32 {
	if len(c.Render.ClearColor) != 4 {
		return fallback
	}
	var out [4]float32
	copy(out[:], c.Render.ClearColor)
	return out
}

// ParseWrap maps a wrap mode name to its GL enum.
func ParseWrap(name string) (glapi.Enum, error) {
	switch name {
	case "repeat":
		return glapi.Repeat, nil
	case "mirrored_repeat":
		return glapi.MirroredRepeat, nil
	case "clamp_to_edge":
		return glapi.ClampToEdge, nil
	}
	return 0, fmt.Errorf("unknown wrap mode %q", name)
}

// ParseFilter maps a filter name to its GL enum. Mipmap filters are only
// valid for minification.
func ParseFilter(name string, minification bool) (glapi.Enum, error) {
	switch name {
	case "nearest":
		return glapi.Nearest, nil
	case "linear":
		return glapi.Linear, nil
	}
	if minification {
		switch name {
		case "nearest_mipmap_nearest":
			return glapi.NearestMipmapNearest, nil
		case "linear_mipmap_nearest":
			return glapi.LinearMipmapNearest, nil
		case "nearest_mipmap_linear":
			return glapi.NearestMipmapLinear, nil
		case "linear_mipmap_linear":
			return glapi.LinearMipmapLinear, nil
		}
	}
	return 0, fmt.Errorf("unknown filter %q", name)
}
