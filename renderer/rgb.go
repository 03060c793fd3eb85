// renderer/rgb.go
// Copyright(c) 2026 kanview contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package renderer

type RGBA struct {
	R, G, B, A float32
}

func (r RGBA) Vec() [4]float32 {
	return [4]float32{r.R, r.G, r.B, r.A}
}

func RGBAFromVec(v [4]float32) RGBA {
	return RGBA{R: v[0], G: v[1], B: v[2], A: v[3]}
}

// RGBAFromHex converts a packed 0xRRGGBBAA color value to an RGBA.
func RGBAFromHex(c uint32) RGBA {
	return RGBA{
		R: float32((c>>24)&255) / 255,
		G: float32((c>>16)&255) / 255,
		B: float32((c>>8)&255) / 255,
		A: float32(c&255) / 255,
	}
}
