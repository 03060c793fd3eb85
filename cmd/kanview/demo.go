// cmd/kanview/demo.go
// Copyright(c) 2026 kanview contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

import (
	"fmt"

	"github.com/kanview/kanview/math"
	"github.com/kanview/kanview/renderer"
)

// bouncer is a rectangle that moves at a constant velocity and reflects
// off the edges of the window.
type bouncer struct {
	center   [2]float32
	velocity [2]float32 // pixels per second
	size     [2]float32
}

// step moves the rectangle dt seconds forward, keeping it inside bounds.
func (b *bouncer) step(dt float32, bounds math.Extent2D) {
	b.center = math.Add2f(b.center, math.Scale2f(b.velocity, dt))

	// Centers for which the whole rectangle is inside.
	half := math.Scale2f(b.size, 0.5)
	inner := math.Extent2D{P0: math.Add2f(bounds.P0, half), P1: math.Sub2f(bounds.P1, half)}
	if inner.Inside(b.center) {
		return
	}
	for i := range 2 {
		if b.center[i] > inner.P1[i] {
			b.velocity[i] = -math.Abs(b.velocity[i])
		} else if b.center[i] < inner.P0[i] {
			b.velocity[i] = math.Abs(b.velocity[i])
		}
	}
	b.center = inner.ClosestPointInBox(b.center)
}

func window(fb [2]int) math.Extent2D {
	return math.Extent2DFromSize([2]float32{0, 0}, [2]float32{float32(fb[0]), float32(fb[1])})
}

// demo draws each frame in three passes: the background (by default the
// animated rainbow), the bouncing rectangle, and the lines of text.
type demo struct {
	batch      *renderer.Batch
	atlas      *renderer.GlyphAtlas
	config     *Config
	background renderer.Shader
	bouncer    bouncer

	lastTime float64
	started  bool
}

func newDemo(batch *renderer.Batch, atlas *renderer.GlyphAtlas, config *Config, fb [2]int) (*demo, error) {
	background, err := config.BackgroundShader()
	if err != nil {
		return nil, err
	}
	return &demo{
		batch:      batch,
		atlas:      atlas,
		config:     config,
		background: background,
		bouncer: bouncer{
			center:   window(fb).Center(),
			velocity: config.Bouncer.Velocity,
			size:     config.Bouncer.Size,
		},
	}, nil
}

func (d *demo) pass(s renderer.Shader, emit func() error) error {
	if err := d.batch.SetShader(s); err != nil {
		return err
	}
	if err := emit(); err != nil {
		return fmt.Errorf("%s pass: %w", s, err)
	}
	return d.batch.Flush()
}

func (d *demo) frame(t float64, fb [2]int) error {
	var dt float32
	if d.started {
		dt = float32(t - d.lastTime)
	}
	d.lastTime, d.started = t, true

	bounds := window(fb)
	d.batch.BeginFrame(t, fb[0], fb[1], d.config.ClearColor.RGBA())

	if err := d.pass(d.background, func() error {
		size := [2]float32{bounds.Width(), bounds.Height()}
		return d.batch.EmitRect(bounds.P0, size, renderer.RGBA{R: 1, G: 1, B: 1, A: 1})
	}); err != nil {
		return err
	}

	d.bouncer.step(dt, bounds)
	if err := d.pass(renderer.ShaderColor, func() error {
		return d.batch.EmitRectCenter(d.bouncer.center, d.bouncer.size, d.config.Bouncer.Color.RGBA())
	}); err != nil {
		return err
	}

	d.batch.BindTexture(d.atlas.Texture())
	return d.pass(renderer.ShaderText, func() error {
		lineHeight := float32(d.atlas.Height())
		for i, line := range d.config.Text {
			// Centered horizontally, from the top down.
			adv := d.atlas.MeasureLine(line)
			pen := [2]float32{math.Floor((bounds.Width() - adv[0]) / 2), bounds.Height() - float32(i+1)*lineHeight}
			if err := d.atlas.RenderLine(d.batch, line, &pen, d.config.TextColor.RGBA()); err != nil {
				return err
			}
		}
		return nil
	})
}
