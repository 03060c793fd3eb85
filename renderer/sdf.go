// renderer/sdf.go
// Copyright(c) 2026 kanview contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package renderer

import (
	"github.com/kanview/kanview/math"
)

// signedDistanceField converts an 8-bit coverage mask to a signed distance
// field of the same size. Pixels with coverage of at least 128 are
// inside. The distance to the nearest pixel on the other side of the
// outline is mapped so that 0.5 (128) is the edge and a distance of
// spread pixels saturates.
func signedDistanceField(coverage []byte, w, h int, spread float32) []byte {
	inside := func(i int) bool { return coverage[i] >= 128 }
	outside := func(i int) bool { return coverage[i] < 128 }

	// Distance from each outside pixel to the nearest inside one and
	// vice versa; both are zero on their own side.
	dOut := distanceTransform(inside, w, h)
	dIn := distanceTransform(outside, w, h)

	sdf := make([]byte, w*h)
	for i := range sdf {
		d := dOut[i] - dIn[i]
		v := math.Clamp(0.5-d/(2*spread), 0, 1)
		sdf[i] = byte(v*255 + 0.5)
	}
	return sdf
}

type sdfOffset struct {
	dx, dy int
}

func (o sdfOffset) dist2() int {
	return o.dx*o.dx + o.dy*o.dy
}

const sdfFar = 1 << 16

// distanceTransform returns the Euclidean distance from each pixel to the
// nearest one for which seed returns true, using the two-pass 8-point
// sequential scan of Danielsson's algorithm.
func distanceTransform(seed func(i int) bool, w, h int) []float32 {
	grid := make([]sdfOffset, w*h)
	for i := range grid {
		if seed(i) {
			grid[i] = sdfOffset{}
		} else {
			grid[i] = sdfOffset{sdfFar, sdfFar}
		}
	}

	compare := func(x, y, ox, oy int) {
		nx, ny := x+ox, y+oy
		if nx < 0 || ny < 0 || nx >= w || ny >= h {
			return
		}
		o := grid[nx+ny*w]
		if o.dx == sdfFar {
			return
		}
		cand := sdfOffset{o.dx + ox, o.dy + oy}
		if cand.dist2() < grid[x+y*w].dist2() {
			grid[x+y*w] = cand
		}
	}

	for y := range h {
		for x := range w {
			compare(x, y, -1, 0)
			compare(x, y, 0, -1)
			compare(x, y, -1, -1)
			compare(x, y, 1, -1)
		}
		for x := w - 1; x >= 0; x-- {
			compare(x, y, 1, 0)
		}
	}
	for y := h - 1; y >= 0; y-- {
		for x := w - 1; x >= 0; x-- {
			compare(x, y, 1, 0)
			compare(x, y, 0, 1)
			compare(x, y, -1, 1)
			compare(x, y, 1, 1)
		}
		for x := range w {
			compare(x, y, -1, 0)
		}
	}

	d := make([]float32, w*h)
	for i, o := range grid {
		d[i] = math.Sqrt(float32(o.dist2()))
	}
	return d
}
