// math/math_test.go
// Copyright(c) 2026 kanview contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import "testing"

func TestVector2(t *testing.T) {
	a, b := [2]float32{1, 2}, [2]float32{3, -4}

	if s := Add2f(a, b); s != [2]float32{4, -2} {
		t.Errorf("Add2f = %v, expected [4 -2]", s)
	}
	if d := Sub2f(a, b); d != [2]float32{-2, 6} {
		t.Errorf("Sub2f = %v, expected [-2 6]", d)
	}
	if s := Scale2f(a, 0.5); s != [2]float32{0.5, 1} {
		t.Errorf("Scale2f = %v, expected [0.5 1]", s)
	}
	if m := Mid2f(a, b); m != [2]float32{2, -1} {
		t.Errorf("Mid2f = %v, expected [2 -1]", m)
	}
}

func TestExtent2DFromSize(t *testing.T) {
	e := Extent2DFromSize([2]float32{10, 20}, [2]float32{5, -8})
	if e.P0 != [2]float32{10, 12} || e.P1 != [2]float32{15, 20} {
		t.Errorf("got extent %v, expected [10 12]-[15 20]", e)
	}
	if e.Width() != 5 || e.Height() != 8 {
		t.Errorf("got %fx%f, expected 5x8", e.Width(), e.Height())
	}
	if !e.Inside([2]float32{15, 12}) {
		t.Errorf("corner not inside extent")
	}
	if e.Inside([2]float32{9.9, 15}) {
		t.Errorf("outside point reported inside")
	}
	if c := e.Center(); c != [2]float32{12.5, 16} {
		t.Errorf("center %v, expected [12.5 16]", c)
	}

	for _, test := range []struct{ p, expected [2]float32 }{
		{p: [2]float32{11, 13}, expected: [2]float32{11, 13}},
		{p: [2]float32{0, 15}, expected: [2]float32{10, 15}},
		{p: [2]float32{20, 30}, expected: [2]float32{15, 20}},
		{p: [2]float32{12, -5}, expected: [2]float32{12, 12}},
	} {
		if c := e.ClosestPointInBox(test.p); c != test.expected {
			t.Errorf("ClosestPointInBox(%v) = %v, expected %v", test.p, c, test.expected)
		}
	}
}

func TestClamp(t *testing.T) {
	for _, c := range []struct{ x, lo, hi, want float32 }{
		{-1, 0, 1, 0}, {0.25, 0, 1, 0.25}, {3, 0, 1, 1},
	} {
		if got := Clamp(c.x, c.lo, c.hi); got != c.want {
			t.Errorf("Clamp(%f, %f, %f) = %f, expected %f", c.x, c.lo, c.hi, got, c.want)
		}
	}
	if Abs(-3) != 3 || Min(2, 5) != 2 || Max(2, 5) != 5 {
		t.Errorf("integer helpers broken")
	}
}
