// cmd/kanview/config.go
// Copyright(c) 2026 kanview contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/kanview/kanview/log"
	"github.com/kanview/kanview/renderer"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Config holds the user-settable options; it's read from a YAML file with
// command-line flags taking precedence.
type Config struct {
	WindowSize [2]int `yaml:"window_size"`
	Title      string `yaml:"title"`
	VSync      bool   `yaml:"vsync"`
	MSAA       bool   `yaml:"msaa"`

	// Font is a path to a TTF or OTF file, optionally zstd-compressed
	// with a .zst suffix. Relative paths that don't exist are looked up
	// in the fonts/ directory of the resources. If empty, Go Regular is
	// used.
	Font        string `yaml:"font"`
	FontSize    int    `yaml:"font_size"`
	MetricsMode string `yaml:"metrics_mode"`
	PixelMode   string `yaml:"pixel_mode"`

	Resources string `yaml:"resources"`
	LogLevel  string `yaml:"log_level"`
	LogDir    string `yaml:"log_dir"`

	// Background names the shader used to fill the window before the
	// rectangle and text are drawn.
	Background string        `yaml:"background"`
	Text       []string      `yaml:"text"`
	TextColor  Color         `yaml:"text_color"`
	ClearColor Color         `yaml:"clear_color"`
	Bouncer    BouncerConfig `yaml:"bouncer"`
}

type BouncerConfig struct {
	Size     [2]float32 `yaml:"size"`
	Velocity [2]float32 `yaml:"velocity"`
	Color    Color      `yaml:"color"`
}

// Color is written in the YAML either as a list of four components in
// [0,1] or as a hex string: "#rrggbb", "#rrggbbaa", or 0xrrggbbaa.
type Color [4]float32

func (c *Color) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		var v [4]float32
		if err := n.Decode(&v); err != nil {
			return err
		}
		*c = v
		return nil
	}

	hex := strings.TrimPrefix(strings.TrimPrefix(n.Value, "#"), "0x")
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return fmt.Errorf("line %d: %q: expected #rrggbb or #rrggbbaa", n.Line, n.Value)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return fmt.Errorf("line %d: %q: %w", n.Line, n.Value, err)
	}
	*c = renderer.RGBAFromHex(uint32(v)).Vec()
	return nil
}

func (c Color) RGBA() renderer.RGBA {
	return renderer.RGBAFromVec(c)
}

func DefaultConfig() Config {
	atlas := renderer.DefaultAtlasOptions()
	return Config{
		WindowSize:  [2]int{800, 600},
		Title:       "Kanview",
		VSync:       true,
		FontSize:    64,
		MetricsMode: atlas.MetricsMode.String(),
		PixelMode:   atlas.PixelMode.String(),
		LogLevel:    "info",
		Background:  renderer.ShaderRainbow.String(),
		Text:        []string{"Hello, World!", "The quick brown fox jumps over the lazy dog."},
		TextColor:   Color{0, 0, 0, 1},
		ClearColor:  Color{1, 1, 1, 1},
		Bouncer: BouncerConfig{
			Size:     [2]float32{100, 100},
			Velocity: [2]float32{300, 200},
			Color:    Color{1, 0, 0, 1},
		},
	}
}

// LoadConfig returns the default configuration updated with the settings
// in the given YAML file, if one is specified.
func LoadConfig(path string) (Config, error) {
	c := DefaultConfig()
	if path == "" {
		return c, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.FontSize <= 0 {
		errs = append(errs, fmt.Errorf("font_size: %d must be positive", c.FontSize))
	}
	if c.WindowSize[0] < 0 || c.WindowSize[1] < 0 {
		errs = append(errs, fmt.Errorf("window_size: %v can't be negative", c.WindowSize))
	}
	if _, err := c.AtlasOptions(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.BackgroundShader(); err != nil {
		errs = append(errs, err)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	return errors.Join(errs...)
}

func (c *Config) AtlasOptions() (renderer.AtlasOptions, error) {
	m, err := renderer.ParseRenderMode(c.MetricsMode)
	if err != nil {
		return renderer.AtlasOptions{}, fmt.Errorf("metrics_mode: %w", err)
	}
	p, err := renderer.ParseRenderMode(c.PixelMode)
	if err != nil {
		return renderer.AtlasOptions{}, fmt.Errorf("pixel_mode: %w", err)
	}
	return renderer.AtlasOptions{MetricsMode: m, PixelMode: p}, nil
}

func (c *Config) BackgroundShader() (renderer.Shader, error) {
	s, err := renderer.ParseShader(c.Background)
	if err != nil {
		return 0, fmt.Errorf("background: %w", err)
	}
	return s, nil
}

// options holds the command-line flags.
type options struct {
	config      string
	logLevel    string
	logDir      string
	resources   string
	font        string
	fontSize    int
	dumpMetrics bool
	cpuprofile  string
	memprofile  string
}

func newFlagSet(o *options) *pflag.FlagSet {
	fs := pflag.NewFlagSet("kanview", pflag.ContinueOnError)
	fs.StringVarP(&o.config, "config", "c", "", "YAML configuration file")
	fs.StringVar(&o.logLevel, "loglevel", "info", "logging level: debug, info, warn, error")
	fs.StringVar(&o.logDir, "logdir", "", "log file directory")
	fs.StringVar(&o.resources, "resources", "", "directory to load shaders and fonts from instead of the built-in ones")
	fs.StringVarP(&o.font, "font", "f", "", "TTF/OTF font file (default: Go Regular)")
	fs.IntVarP(&o.fontSize, "font-size", "s", 64, "font size in pixels")
	fs.BoolVar(&o.dumpMetrics, "dump-metrics", false, "print the glyph atlas metrics and exit")
	fs.StringVar(&o.cpuprofile, "cpuprofile", "", "write CPU profile to file")
	fs.StringVar(&o.memprofile, "memprofile", "", "write memory profile to this file")
	return fs
}

// apply overrides the settings in c with the flags that were given
// explicitly.
func (o *options) apply(c *Config, fs *pflag.FlagSet) {
	if fs.Changed("loglevel") {
		c.LogLevel = o.logLevel
	}
	if fs.Changed("logdir") {
		c.LogDir = o.logDir
	}
	if fs.Changed("resources") {
		c.Resources = o.resources
	}
	if fs.Changed("font") {
		c.Font = o.font
	}
	if fs.Changed("font-size") {
		c.FontSize = o.fontSize
	}
}
