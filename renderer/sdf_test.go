// renderer/sdf_test.go
// Copyright(c) 2026 kanview contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package renderer

import (
	"testing"
)

func squareMask(w, h, x0, y0, x1, y1 int) []byte {
	m := make([]byte, w*h)
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			m[x+y*w] = 255
		}
	}
	return m
}

func TestSignedDistanceFieldSquare(t *testing.T) {
	const w, h = 20, 20
	cov := squareMask(w, h, 5, 5, 15, 15)
	sdf := signedDistanceField(cov, w, h, 8)

	if len(sdf) != w*h {
		t.Fatalf("%d values, expected %d", len(sdf), w*h)
	}
	for i := range sdf {
		if cov[i] != 0 && sdf[i] <= 128 {
			t.Errorf("inside pixel (%d,%d) has value %d", i%w, i/w, sdf[i])
		} else if cov[i] == 0 && sdf[i] >= 128 {
			t.Errorf("outside pixel (%d,%d) has value %d", i%w, i/w, sdf[i])
		}
	}

	// Values increase moving into the square along its middle row.
	row := sdf[10*w : 11*w]
	for x := 1; x <= 10; x++ {
		if row[x] < row[x-1] {
			t.Errorf("x %d: value %d less than %d at x %d", x, row[x], row[x-1], x-1)
		}
	}

	for _, test := range []struct {
		x, y     int
		expected byte
	}{
		// 5 pixels outside: 0.5 - 5/16
		{x: 0, y: 10, expected: 48},
		// 1 pixel outside: 0.5 - 1/16
		{x: 4, y: 10, expected: 112},
		// 1 pixel inside
		{x: 5, y: 10, expected: 143},
		// 5 pixels inside
		{x: 10, y: 10, expected: 207},
	} {
		if v := sdf[test.x+test.y*w]; v != test.expected {
			t.Errorf("(%d,%d): value %d, expected %d", test.x, test.y, v, test.expected)
		}
	}
}

func TestSignedDistanceFieldEmpty(t *testing.T) {
	sdf := signedDistanceField(make([]byte, 16), 4, 4, 8)
	for i, v := range sdf {
		if v != 0 {
			t.Errorf("pixel %d: value %d, expected 0 with nothing covered", i, v)
		}
	}

	sdf = signedDistanceField(squareMask(4, 4, 0, 0, 4, 4), 4, 4, 8)
	for i, v := range sdf {
		if v != 255 {
			t.Errorf("pixel %d: value %d, expected 255 with everything covered", i, v)
		}
	}
}

func TestDistanceTransform(t *testing.T) {
	const w, h = 9, 7
	seed := func(i int) bool { return i == 3+2*w }
	d := distanceTransform(seed, w, h)

	for y := range h {
		for x := range w {
			dx, dy := float32(x-3), float32(y-2)
			expected := dx*dx + dy*dy
			if got := d[x+y*w]; got*got < expected-0.01 || got*got > expected+0.01 {
				t.Errorf("(%d,%d): distance %v, expected sqrt(%v)", x, y, got, expected)
			}
		}
	}
}
