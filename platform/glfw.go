// platform/glfw.go
// Copyright(c) 2026 kanview contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package platform creates the window and OpenGL context and provides
// the per-frame inputs the renderer needs.
package platform

import (
	"fmt"

	"github.com/kanview/kanview/log"

	"github.com/go-gl/glfw/v3.3/glfw"
)

type Config struct {
	InitialWindowSize [2]int
	Title             string
	EnableVSync       bool
	EnableMSAA        bool
}

// Window is a GLFW window with a current OpenGL 3.3 core profile
// context. It must only be used from the main thread.
type Window struct {
	window *glfw.Window
	config *Config
	lg     *log.Logger
}

// New creates a window with the size and title in config and makes its
// context current. The window closes when ESC is pressed.
func New(config *Config, lg *log.Logger) (*Window, error) {
	lg.Info("Starting GLFW initialization")
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize glfw: %w", err)
	}
	lg.Infof("GLFW: %s", glfw.GetVersionString())

	glfw.WindowHint(glfw.ContextVersionMajor, 3)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	// Required on macOS to get a core profile context.
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	if config.EnableMSAA {
		glfw.WindowHint(glfw.Samples, 4)
	}

	if config.InitialWindowSize[0] <= 0 || config.InitialWindowSize[1] <= 0 {
		config.InitialWindowSize = [2]int{800, 600}
	}
	if config.Title == "" {
		config.Title = "kanview"
	}

	window, err := glfw.CreateWindow(config.InitialWindowSize[0], config.InitialWindowSize[1], config.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("failed to create window: %w", err)
	}
	window.MakeContextCurrent()

	w := &Window{
		window: window,
		config: config,
		lg:     lg,
	}
	window.SetKeyCallback(w.keyChange)
	w.EnableVSync(config.EnableVSync)

	lg.Info("Finished GLFW initialization")
	return w, nil
}

func (w *Window) EnableVSync(sync bool) {
	if sync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}
}

func (w *Window) keyChange(window *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if key == glfw.KeyEscape && action == glfw.Press {
		w.lg.Debug("escape pressed; closing window")
		window.SetShouldClose(true)
	}
}

func (w *Window) Dispose() {
	w.window.Destroy()
	glfw.Terminate()
}

func (w *Window) ShouldStop() bool {
	return w.window.ShouldClose()
}

// Time returns the number of seconds since GLFW was initialized.
func (w *Window) Time() float64 {
	return glfw.GetTime()
}

// FramebufferSize returns the size of the framebuffer in pixels, which
// may differ from the window size on high-DPI displays.
func (w *Window) FramebufferSize() [2]int {
	x, y := w.window.GetFramebufferSize()
	return [2]int{x, y}
}

func (w *Window) WindowSize() [2]int {
	x, y := w.window.GetSize()
	return [2]int{x, y}
}

// PostRender presents the frame and processes pending window events.
func (w *Window) PostRender() {
	w.window.SwapBuffers()
	glfw.PollEvents()
}
