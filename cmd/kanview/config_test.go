// cmd/kanview/config_test.go
// Copyright(c) 2026 kanview contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/kanview/kanview/renderer"
)

func TestDefaultConfigValid(t *testing.T) {
	c := DefaultConfig()
	if err := c.Validate(); err != nil {
		t.Errorf("default config: %v", err)
	}
	opts, err := c.AtlasOptions()
	if err != nil {
		t.Fatal(err)
	}
	if opts != renderer.DefaultAtlasOptions() {
		t.Errorf("atlas options %+v, expected %+v", opts, renderer.DefaultAtlasOptions())
	}
	if c.FontSize != 64 {
		t.Errorf("font size %d, expected 64", c.FontSize)
	}
}

func writeConfig(t *testing.T, s string) string {
	t.Helper()
	fn := filepath.Join(t.TempDir(), "kanview.yaml")
	if err := os.WriteFile(fn, []byte(s), 0o644); err != nil {
		t.Fatal(err)
	}
	return fn
}

func TestLoadConfig(t *testing.T) {
	fn := writeConfig(t, `
window_size: [1024, 768]
font_size: 32
pixel_mode: sdf
text:
  - one line
bouncer:
  velocity: [10, -20]
`)
	c, err := LoadConfig(fn)
	if err != nil {
		t.Fatal(err)
	}

	if c.WindowSize != [2]int{1024, 768} {
		t.Errorf("window size %v, expected [1024 768]", c.WindowSize)
	}
	if c.FontSize != 32 {
		t.Errorf("font size %d, expected 32", c.FontSize)
	}
	if !slices.Equal(c.Text, []string{"one line"}) {
		t.Errorf("text %q, expected [\"one line\"]", c.Text)
	}
	if c.Bouncer.Velocity != [2]float32{10, -20} {
		t.Errorf("velocity %v, expected [10 -20]", c.Bouncer.Velocity)
	}

	// Settings that weren't in the file keep their defaults.
	def := DefaultConfig()
	if c.Title != def.Title || c.VSync != def.VSync || c.Bouncer.Size != def.Bouncer.Size {
		t.Errorf("defaults not preserved: %+v", c)
	}
	opts, err := c.AtlasOptions()
	if err != nil {
		t.Fatal(err)
	}
	if opts.PixelMode != renderer.RenderSDF || opts.MetricsMode != renderer.DefaultAtlasOptions().MetricsMode {
		t.Errorf("atlas options %+v", opts)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Errorf("expected error for a missing file")
	}
	if _, err := LoadConfig(writeConfig(t, "font_size: [1, 2\n")); err == nil {
		t.Errorf("expected error for malformed YAML")
	}
	if c, err := LoadConfig(""); err != nil || c.FontSize != DefaultConfig().FontSize {
		t.Errorf("no file: %v, %+v", err, c)
	}
}

func TestLoadConfigColors(t *testing.T) {
	c, err := LoadConfig(writeConfig(t, `
background: color
text_color: "#336699"
clear_color: 0x10203040
bouncer:
  color: [0.5, 0.25, 0, 1]
`))
	if err != nil {
		t.Fatal(err)
	}

	for _, test := range []struct {
		name     string
		got      renderer.RGBA
		expected renderer.RGBA
	}{
		{name: "text", got: c.TextColor.RGBA(), expected: renderer.RGBAFromHex(0x336699ff)},
		{name: "clear", got: c.ClearColor.RGBA(), expected: renderer.RGBAFromHex(0x10203040)},
		{name: "bouncer", got: c.Bouncer.Color.RGBA(), expected: renderer.RGBA{R: 0.5, G: 0.25, B: 0, A: 1}},
	} {
		if test.got != test.expected {
			t.Errorf("%s color %v, expected %v", test.name, test.got, test.expected)
		}
	}

	if s, err := c.BackgroundShader(); err != nil || s != renderer.ShaderColor {
		t.Errorf("background %v (%v), expected color", s, err)
	}

	for _, bad := range []string{`text_color: "#12345"`, `text_color: "#gg0000"`, `clear_color: [1, 0, 0]`} {
		if _, err := LoadConfig(writeConfig(t, bad+"\n")); err == nil {
			t.Errorf("%s: expected error", bad)
		}
	}
}

func TestConfigValidate(t *testing.T) {
	for _, test := range []struct {
		name   string
		modify func(c *Config)
		want   string
	}{
		{name: "font size", modify: func(c *Config) { c.FontSize = 0 }, want: "font_size"},
		{name: "window", modify: func(c *Config) { c.WindowSize = [2]int{-1, 10} }, want: "window_size"},
		{name: "metrics mode", modify: func(c *Config) { c.MetricsMode = "msdf" }, want: "metrics_mode"},
		{name: "pixel mode", modify: func(c *Config) { c.PixelMode = "lcd" }, want: "pixel_mode"},
		{name: "log level", modify: func(c *Config) { c.LogLevel = "chatty" }, want: "log_level"},
		{name: "background", modify: func(c *Config) { c.Background = "phong" }, want: "background"},
	} {
		t.Run(test.name, func(t *testing.T) {
			c := DefaultConfig()
			test.modify(&c)
			err := c.Validate()
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), test.want) {
				t.Errorf("error %q doesn't mention %q", err.Error(), test.want)
			}
		})
	}
}

func TestFlagsOverrideConfig(t *testing.T) {
	c, err := LoadConfig(writeConfig(t, "font_size: 32\nlog_level: warn\nfont: from-config.ttf\n"))
	if err != nil {
		t.Fatal(err)
	}

	var o options
	fs := newFlagSet(&o)
	if err := fs.Parse([]string{"--font-size", "24", "--loglevel=debug", "--resources", "/tmp/res"}); err != nil {
		t.Fatal(err)
	}
	o.apply(&c, fs)

	if c.FontSize != 24 {
		t.Errorf("font size %d, expected the flag's 24", c.FontSize)
	}
	if c.LogLevel != "debug" {
		t.Errorf("log level %q, expected debug", c.LogLevel)
	}
	if c.Resources != "/tmp/res" {
		t.Errorf("resources %q, expected /tmp/res", c.Resources)
	}
	// Flags that weren't given don't clobber the file's settings.
	if c.Font != "from-config.ttf" {
		t.Errorf("font %q, expected the config file's", c.Font)
	}
}
