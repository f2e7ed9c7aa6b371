// Copyright 2025 The Etc2 Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package etc2

import "image"

// Texel is one pixel's worth of non-premultiplied RGBA, each channel a
// 32-bit float in [0,1].
type Texel struct {
	R, G, B, A float32
}

func clampf(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampi(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// gatherSource reads the 4x4 tile whose top-left texel is (originX, originY)
// out of src, clamping out-of-bounds reads to the nearest in-bounds texel,
// and writes it into dst in column-major (vertical scan) order: dst[4*x+y]
// holds the texel at (originX+x, originY+y).
//
// This mirrors the teacher's makeExtract closures (same min(maxPoint-1, ...)
// edge clamp, same fast path for *image.NRGBA) but produces floating point
// Texels instead of packed bytes, and always orders pixels the ETC1 way.
func gatherSource(dst *[16]Texel, src image.Image, originX, originY int) {
	b := src.Bounds()
	maxX1 := b.Max.X - 1
	maxY1 := b.Max.Y - 1

	if nrgba, ok := src.(*image.NRGBA); ok {
		for x := range 4 {
			sx := clampi(originX+x, b.Min.X, maxX1)
			for y := range 4 {
				sy := clampi(originY+y, b.Min.Y, maxY1)
				c := nrgba.NRGBAAt(sx, sy)
				dst[4*x+y] = Texel{
					R: float32(c.R) / 255,
					G: float32(c.G) / 255,
					B: float32(c.B) / 255,
					A: float32(c.A) / 255,
				}
			}
		}
		return
	}

	for x := range 4 {
		sx := clampi(originX+x, b.Min.X, maxX1)
		for y := range 4 {
			sy := clampi(originY+y, b.Min.Y, maxY1)
			r, g, bch, a := src.At(sx, sy).RGBA()
			if (a != 0) && (a != 0xFFFF) {
				// Un-premultiply: image.Image.At returns alpha-premultiplied
				// 16-bit samples.
				r = (r * 0xFFFF) / a
				g = (g * 0xFFFF) / a
				bch = (bch * 0xFFFF) / a
			}
			dst[4*x+y] = Texel{
				R: float32(r) / 0xFFFF,
				G: float32(g) / 0xFFFF,
				B: float32(bch) / 0xFFFF,
				A: float32(a) / 0xFFFF,
			}
		}
	}
}
