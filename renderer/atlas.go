// renderer/atlas.go
// Copyright(c) 2026 kanview contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package renderer

import (
	"errors"
	"fmt"

	"github.com/kanview/kanview/log"
	"github.com/kanview/kanview/math"
)

const (
	// The atlas holds the printable 7-bit characters (and DEL, which most
	// fonts map to .notdef).
	GlyphLow  = 32
	GlyphHigh = 127
	// GlyphFallback is drawn for characters outside [GlyphLow, GlyphHigh].
	GlyphFallback = '?'
)

var ErrEmptyAtlas = errors.New("font has no visible glyphs")

// GlyphMetric records where a glyph's bitmap is in the atlas and how it
// is positioned relative to the pen.
type GlyphMetric struct {
	// Advance is how far the pen moves after the glyph is drawn.
	Advance [2]float32
	// BitmapSize is the bitmap's width and height in pixels.
	BitmapSize [2]float32
	// BitmapOffset is the offset from the pen to the bitmap's upper left
	// corner with y up.
	BitmapOffset [2]float32
	// TexX is the normalized horizontal position of the bitmap's left
	// edge in the atlas texture.
	TexX float32
}

// AtlasOptions specifies how glyphs are rasterized for each of the two
// passes of BuildGlyphAtlas. MetricsMode is used when measuring the
// glyphs and PixelMode for the bitmaps that are uploaded; both must give
// bitmaps of the same size for a given glyph.
type AtlasOptions struct {
	MetricsMode RenderMode
	PixelMode   RenderMode
}

func DefaultAtlasOptions() AtlasOptions {
	return AtlasOptions{MetricsMode: RenderSDF, PixelMode: RenderNormal}
}

// GlyphAtlas stores the bitmaps for all of the characters in [GlyphLow,
// GlyphHigh] side by side in a single-channel texture, one row high.
// It is immutable once built.
type GlyphAtlas struct {
	metrics [GlyphHigh + 1]GlyphMetric
	width   int
	height  int
	texture uint32
}

// BuildGlyphAtlas rasterizes all of the glyphs from src and uploads them
// to a new texture. The first pass measures the glyphs to size the
// texture; the second uploads each bitmap and records its metrics.
func BuildGlyphAtlas(dev Device, src GlyphRasterizer, opts AtlasOptions, lg *log.Logger) (*GlyphAtlas, error) {
	a := &GlyphAtlas{}

	for ch := rune(GlyphLow); ch <= GlyphHigh; ch++ {
		g, err := src.Rasterize(ch, opts.MetricsMode)
		if err != nil {
			return nil, fmt.Errorf("could not load glyph of character %d: %w", ch, err)
		}
		a.width += g.Width
		a.height = math.Max(a.height, g.Rows)
	}
	if a.width == 0 || a.height == 0 {
		return nil, ErrEmptyAtlas
	}

	var err error
	if a.texture, err = dev.CreateTexture(a.width, a.height); err != nil {
		return nil, fmt.Errorf("glyph atlas texture: %w", err)
	}

	x := 0
	for ch := rune(GlyphLow); ch <= GlyphHigh; ch++ {
		g, err := src.Rasterize(ch, opts.PixelMode)
		if err != nil {
			a.Dispose(dev)
			return nil, fmt.Errorf("could not load glyph of character %d: %w", ch, err)
		}
		if x+g.Width > a.width || g.Rows > a.height {
			a.Dispose(dev)
			return nil, fmt.Errorf("character %d: %dx%d bitmap doesn't fit in %dx%d atlas at %d",
				ch, g.Width, g.Rows, a.width, a.height, x)
		}

		a.metrics[ch] = GlyphMetric{
			Advance:      g.Advance,
			BitmapSize:   [2]float32{float32(g.Width), float32(g.Rows)},
			BitmapOffset: [2]float32{float32(g.Left), float32(g.Top)},
			TexX:         float32(x) / float32(a.width),
		}

		if g.Width > 0 && g.Rows > 0 {
			if len(g.Pix) < g.Width*g.Rows {
				a.Dispose(dev)
				return nil, fmt.Errorf("character %d: %d bytes for %dx%d bitmap", ch, len(g.Pix), g.Width, g.Rows)
			}
			dev.UploadTextureRegion(a.texture, x, 0, g.Width, g.Rows, g.Pix)
		}
		x += g.Width
	}

	lg.Infof("glyph atlas: %dx%d texture %d, %d glyphs (%s metrics, %s pixels)", a.width, a.height,
		a.texture, GlyphHigh-GlyphLow+1, opts.MetricsMode, opts.PixelMode)

	return a, nil
}

// Metric returns the metrics for ch, or for GlyphFallback if the atlas
// doesn't have ch.
func (a *GlyphAtlas) Metric(ch rune) GlyphMetric {
	if ch < GlyphLow || ch > GlyphHigh {
		ch = GlyphFallback
	}
	return a.metrics[ch]
}

// RenderLine emits one textured rectangle for each character of text
// into b with the pen starting at *pos, which is on the baseline. *pos is
// left after the last character that was emitted so that a subsequent
// call continues the line. If b fills up, the error is returned and *pos
// is at the character that couldn't be emitted.
//
// The caller is responsible for selecting ShaderText and binding the
// atlas's texture.
func (a *GlyphAtlas) RenderLine(b *Batch, text string, pos *[2]float32, color RGBA) error {
	for _, ch := range text {
		m := a.Metric(ch)

		p := math.Add2f(*pos, m.BitmapOffset)
		size := [2]float32{m.BitmapSize[0], -m.BitmapSize[1]}
		uvp := [2]float32{m.TexX, 0}
		uvs := [2]float32{m.BitmapSize[0] / float32(a.width), m.BitmapSize[1] / float32(a.height)}
		if err := b.EmitImageRect(p, size, color, uvp, uvs); err != nil {
			return err
		}

		*pos = math.Add2f(*pos, m.Advance)
	}
	return nil
}

// MeasureLine returns the total advance of text.
func (a *GlyphAtlas) MeasureLine(text string) [2]float32 {
	var adv [2]float32
	for _, ch := range text {
		adv = math.Add2f(adv, a.Metric(ch).Advance)
	}
	return adv
}

func (a *GlyphAtlas) Width() int {
	return a.width
}

func (a *GlyphAtlas) Height() int {
	return a.height
}

func (a *GlyphAtlas) Texture() uint32 {
	return a.texture
}

// Dispose deletes the atlas texture; subsequent calls do nothing.
func (a *GlyphAtlas) Dispose(dev Device) {
	if a.texture != 0 {
		dev.DeleteTexture(a.texture)
		a.texture = 0
	}
}
