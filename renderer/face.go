// renderer/face.go
// Copyright(c) 2026 kanview contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package renderer

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// RenderMode selects how a glyph's bitmap is generated.
type RenderMode int

const (
	// RenderNormal gives an 8-bit antialiased coverage mask.
	RenderNormal RenderMode = iota
	// RenderSDF gives a signed distance field with the same dimensions
	// as the coverage mask; 128 is on the outline and larger values are
	// inside.
	RenderSDF
)

func (m RenderMode) String() string {
	switch m {
	case RenderNormal:
		return "normal"
	case RenderSDF:
		return "sdf"
	default:
		return fmt.Sprintf("RenderMode(%d)", int(m))
	}
}

func ParseRenderMode(s string) (RenderMode, error) {
	switch strings.ToLower(s) {
	case "normal", "":
		return RenderNormal, nil
	case "sdf":
		return RenderSDF, nil
	default:
		return 0, fmt.Errorf("%q: unknown render mode", s)
	}
}

// GlyphBitmap is a single rasterized glyph. Left and Top give the offset
// in pixels from the pen position to the bitmap's upper left corner,
// with Top measured upward from the baseline. Pix holds Width*Rows bytes,
// with row 0 at the top of the glyph.
type GlyphBitmap struct {
	Width, Rows int
	Left, Top   int
	Advance     [2]float32
	Pix         []byte
}

// GlyphRasterizer is implemented by glyph sources that the GlyphAtlas can
// be built from.
type GlyphRasterizer interface {
	Rasterize(ch rune, mode RenderMode) (GlyphBitmap, error)
}

var ErrInvalidPixelSize = errors.New("font pixel size must be positive")

// Face rasterizes the glyphs of a TrueType or OpenType font at a fixed
// pixel size. A Face is not safe for concurrent use.
type Face struct {
	font *sfnt.Font
	size int
	ppem fixed.Int26_6
	buf  sfnt.Buffer
	rast vector.Rasterizer
	// SDF spread in pixels
	spread float32
}

const defaultSDFSpread = 8

func LoadFace(data []byte, pixelSize int) (*Face, error) {
	if pixelSize <= 0 {
		return nil, fmt.Errorf("%d: %w", pixelSize, ErrInvalidPixelSize)
	}
	f, err := sfnt.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("unable to parse font: %w", err)
	}
	return &Face{
		font:   f,
		size:   pixelSize,
		ppem:   fixed.I(pixelSize),
		spread: defaultSDFSpread,
	}, nil
}

func (f *Face) PixelSize() int {
	return f.size
}

// Name returns the font's full name, if it has one.
func (f *Face) Name() string {
	name, err := f.font.Name(&f.buf, sfnt.NameIDFull)
	if err != nil {
		return ""
	}
	return name
}

// Rasterize renders ch's outline at the face's pixel size. Characters
// without an outline, like space, give a zero-sized bitmap with a valid
// advance. Advances are rounded down to whole pixels.
func (f *Face) Rasterize(ch rune, mode RenderMode) (GlyphBitmap, error) {
	idx, err := f.font.GlyphIndex(&f.buf, ch)
	if err != nil {
		return GlyphBitmap{}, fmt.Errorf("%q: %w", ch, err)
	}
	adv, err := f.font.GlyphAdvance(&f.buf, idx, f.ppem, font.HintingNone)
	if err != nil {
		return GlyphBitmap{}, fmt.Errorf("%q: advance: %w", ch, err)
	}
	segs, err := f.font.LoadGlyph(&f.buf, idx, f.ppem, nil)
	if err != nil {
		return GlyphBitmap{}, fmt.Errorf("%q: outline: %w", ch, err)
	}

	g := GlyphBitmap{Advance: [2]float32{float32(adv.Floor()), 0}}
	if len(segs) == 0 {
		return g, nil
	}

	// sfnt outlines are y-down with the origin at the pen position.
	bounds := segs.Bounds()
	x0, y0 := bounds.Min.X.Floor(), bounds.Min.Y.Floor()
	x1, y1 := bounds.Max.X.Ceil(), bounds.Max.Y.Ceil()
	w, h := x1-x0, y1-y0
	if w <= 0 || h <= 0 {
		return g, nil
	}
	g.Width, g.Rows, g.Left, g.Top = w, h, x0, -y0

	pt := func(p fixed.Point26_6) (float32, float32) {
		return float32(p.X)/64 - float32(x0), float32(p.Y)/64 - float32(y0)
	}
	f.rast.Reset(w, h)
	f.rast.DrawOp = draw.Src
	open := false
	for _, seg := range segs {
		switch seg.Op {
		case sfnt.SegmentOpMoveTo:
			if open {
				f.rast.ClosePath()
			}
			f.rast.MoveTo(pt(seg.Args[0]))
			open = true
		case sfnt.SegmentOpLineTo:
			f.rast.LineTo(pt(seg.Args[0]))
		case sfnt.SegmentOpQuadTo:
			cx, cy := pt(seg.Args[0])
			x, y := pt(seg.Args[1])
			f.rast.QuadTo(cx, cy, x, y)
		case sfnt.SegmentOpCubeTo:
			c0x, c0y := pt(seg.Args[0])
			c1x, c1y := pt(seg.Args[1])
			x, y := pt(seg.Args[2])
			f.rast.CubeTo(c0x, c0y, c1x, c1y, x, y)
		}
	}
	if open {
		f.rast.ClosePath()
	}

	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	f.rast.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})
	g.Pix = mask.Pix

	if mode == RenderSDF {
		g.Pix = signedDistanceField(g.Pix, w, h, f.spread)
	}
	return g, nil
}
