// cmd/kanview/main.go
// Copyright(c) 2026 kanview contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

// This file contains the implementation of the main() function, which
// initializes the system and then runs the frame loop until the window
// is closed.

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"github.com/kanview/kanview/log"
	"github.com/kanview/kanview/platform"
	"github.com/kanview/kanview/renderer"
	"github.com/kanview/kanview/util"

	"github.com/apenwarr/fixconsole"
	"github.com/goforj/godump"
	"github.com/shirou/gopsutil/cpu"
	"github.com/spf13/pflag"
	"golang.org/x/image/font/gofont/goregular"
)

func init() {
	// OpenGL and friends require that all calls be made from the primary
	// application thread, while by default, go allows the main thread to
	// run on different hardware threads over the course of
	// execution. Therefore, we must lock the main thread at startup time.
	runtime.LockOSThread()
}

func setupSignalHandler(profiler *util.Profiler) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "Caught signal, cleaning up...")
		profiler.Cleanup()
		os.Exit(0)
	}()
}

func main() {
	var opts options
	flags := newFlagSet(&opts)
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(2)
	}

	if err := fixconsole.FixConsoleIfNeeded(); err != nil {
		// Not sure this will actually appear, but what else are we going
		// to do...
		fmt.Printf("FixConsole: %v\n", err)
	}

	config, err := LoadConfig(opts.config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	opts.apply(&config, flags)
	if err := config.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize the logging system first and foremost.
	lg := log.New(config.LogLevel, config.LogDir)
	defer lg.CatchAndReportCrash()

	profiler, err := util.CreateProfiler(opts.cpuprofile, opts.memprofile)
	if err != nil {
		lg.Errorf("%v", err)
	}
	defer profiler.Cleanup()
	if profiler.Active() {
		setupSignalHandler(&profiler)
	}

	if err := run(&config, opts.dumpMetrics, lg); err != nil {
		lg.Errorf("%v", err)
		profiler.Cleanup()
		os.Exit(1)
	}
}

func run(config *Config, dumpMetrics bool, lg *log.Logger) error {
	fsys := util.ResourcesFS()
	if config.Resources != "" {
		var err error
		if fsys, err = util.DirResourcesFS(config.Resources); err != nil {
			return err
		}
	}

	fontData, err := loadFont(fsys, config.Font)
	if err != nil {
		return err
	}
	face, err := renderer.LoadFace(fontData, config.FontSize)
	if err != nil {
		return err
	}
	lg.Infof("Font %q at %d pixels", face.Name(), face.PixelSize())

	sources, err := renderer.LoadShaderSources(fsys)
	if err != nil {
		return err
	}
	atlasOptions, err := config.AtlasOptions()
	if err != nil {
		return err
	}

	win, err := platform.New(&platform.Config{
		InitialWindowSize: config.WindowSize,
		Title:             config.Title,
		EnableVSync:       config.VSync,
		EnableMSAA:        config.MSAA,
	}, lg)
	if err != nil {
		return err
	}
	defer win.Dispose()
	lg.Info("Window created", slog.Any("window_size", win.WindowSize()), slog.Any("framebuffer_size", win.FramebufferSize()))

	dev, err := renderer.NewOpenGL3Device(lg)
	if err != nil {
		return err
	}
	defer dev.Dispose()

	batch, err := renderer.NewBatch(dev, sources, lg)
	if err != nil {
		return err
	}
	defer batch.Dispose()

	atlas, err := renderer.BuildGlyphAtlas(dev, face, atlasOptions, lg)
	if err != nil {
		return err
	}
	defer atlas.Dispose(dev)

	if dumpMetrics {
		dumpAtlas(atlas)
		return nil
	}

	d, err := newDemo(batch, atlas, config, win.FramebufferSize())
	if err != nil {
		return err
	}
	var total renderer.Stats
	lastStats := win.Time()
	for !win.ShouldStop() {
		t := win.Time()
		if err := d.frame(t, win.FramebufferSize()); err != nil {
			return err
		}
		if err := dev.CheckError(); err != nil {
			lg.Warnf("%v", err)
		}
		win.PostRender()

		if t-lastStats >= 1 {
			// Usage since the previous call.
			usage, _ := cpu.Percent(0, false)
			lg.Debug("Render stats", slog.Any("stats", batch.Stats()), slog.Any("cpu_usage", usage))
			total.Merge(batch.Stats())
			batch.ResetStats()
			lastStats = t
		}
	}
	total.Merge(batch.Stats())
	lg.Info("Window closed", slog.Any("stats", total))
	return nil
}

// loadFont returns the contents of the font file at the given path. Paths
// that don't exist locally are looked up in the fonts/ directory of fsys.
// An empty path gives Go Regular.
func loadFont(fsys fs.FS, fn string) ([]byte, error) {
	if fn == "" {
		return goregular.TTF, nil
	}

	b, err := os.ReadFile(fn)
	if err == nil {
		if strings.HasSuffix(fn, ".zst") {
			if b, err = util.Decompress(b); err != nil {
				return nil, fmt.Errorf("%s: %w", fn, err)
			}
		}
		return b, nil
	}
	if !errors.Is(err, fs.ErrNotExist) || filepath.IsAbs(fn) {
		return nil, err
	}

	b, rerr := util.LoadResource(fsys, path.Join("fonts", filepath.ToSlash(fn)))
	if rerr != nil {
		return nil, fmt.Errorf("%s: font not found locally or in resources: %w", fn, err)
	}
	return b, nil
}

type glyphDump struct {
	Char   string
	Metric renderer.GlyphMetric
}

func dumpAtlas(atlas *renderer.GlyphAtlas) {
	var glyphs []glyphDump
	for ch := rune(renderer.GlyphLow); ch <= renderer.GlyphHigh; ch++ {
		glyphs = append(glyphs, glyphDump{Char: fmt.Sprintf("%q", ch), Metric: atlas.Metric(ch)})
	}
	godump.Dump(struct {
		Width, Height int
		Glyphs        []glyphDump
	}{
		Width:  atlas.Width(),
		Height: atlas.Height(),
		Glyphs: glyphs,
	})
}
