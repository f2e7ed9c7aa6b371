// Copyright 2025 The Etc2 Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package squish

// BC1 (S3TC DXT1) packs a 4x4 tile into 8 bytes: two RGB565 endpoints
// (little-endian uint16 each) followed by 16 2-bit selectors, LSB-first,
// packed into a little-endian uint32. color0 > color1 (as uint16) selects
// the opaque 4-color ramp {c0, c1, 2/3 c0 + 1/3 c1, 1/3 c0 + 2/3 c1};
// color0 <= color1 selects the 3-color + transparent ramp {c0, c1,
// midpoint, transparent-black}, the mode this package's BC1 path uses
// whenever the tile has any below-threshold alpha pixel.
//
// Grounded on CompressMasked/RangeFit in the retrieved squish.cpp (the
// iterative cluster fit those call into, in rangefit.cpp, was not part of
// the retrieved sources; this file's single-axis range fit, followed by a
// per-pixel nearest-palette-entry pass, is a documented simplification of
// that unseen step rather than a port of it).

func encodeBC1(buf []byte, rgba *[16][4]uint8, allowPunchThrough bool) {
	cs := newColourSet(rgba, allowPunchThrough)
	punchThrough := allowPunchThrough && cs.transparent

	if cs.count == 0 {
		// Every pixel is below the alpha threshold: all take the
		// transparent entry.
		var selectors [16]uint8
		for i := range selectors {
			selectors[i] = 3
		}
		packBC1(buf, 0, 0, &selectors, punchThrough)
		return
	}

	centroid := cs.weightedCentroid()
	axis := cs.principalAxis(centroid)

	lo, hi := centroid, centroid
	loT, hiT := float32(0), float32(0)
	first := true
	for i := 0; i < cs.count; i++ {
		t := cs.points[i].sub(centroid).dot(axis)
		if first || t < loT {
			loT, lo = t, cs.points[i]
		}
		if first || t > hiT {
			hiT, hi = t, cs.points[i]
		}
		first = false
	}

	c0 := quantize565(hi)
	c1 := quantize565(lo)
	if !punchThrough && c0 == c1 {
		// Nudge apart so the 4-color (not 3-color) ramp is unambiguous.
		if c0 > 0 {
			c0--
		} else {
			c1++
		}
	}

	palette := bc1Palette(c0, c1, punchThrough)
	var selectors [16]uint8
	for i := 0; i < 16; i++ {
		if punchThrough && rgba[i][3] < bc1AlphaThreshold {
			selectors[i] = 3
			continue
		}
		selectors[i] = nearestPaletteEntry(palette, rgba[i])
	}

	packBC1(buf, c0, c1, &selectors, punchThrough)
}

// quantize565 rounds a unit-cube color down to the nearest RGB565 value.
func quantize565(c vec3) uint16 {
	r := uint16(clamp01(c.x)*31 + 0.5)
	g := uint16(clamp01(c.y)*63 + 0.5)
	b := uint16(clamp01(c.z)*31 + 0.5)
	return r<<11 | g<<5 | b
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func expand565(c uint16) (r, g, b uint8) {
	r5 := uint8(c >> 11 & 0x1F)
	g6 := uint8(c >> 5 & 0x3F)
	b5 := uint8(c & 0x1F)
	return r5<<3 | r5>>2, g6<<2 | g6>>4, b5<<3 | b5>>2
}

// bc1Palette expands the two endpoints into the 4-entry ramp BC1 defines
// for the current mode (opaque 4-color vs. punch-through 3-color +
// transparent).
func bc1Palette(c0, c1 uint16, punchThrough bool) (pal [4][4]uint8) {
	r0, g0, b0 := expand565(c0)
	r1, g1, b1 := expand565(c1)
	pal[0] = [4]uint8{r0, g0, b0, 0xFF}
	pal[1] = [4]uint8{r1, g1, b1, 0xFF}
	if punchThrough {
		pal[2] = [4]uint8{
			uint8((uint16(r0) + uint16(r1)) / 2),
			uint8((uint16(g0) + uint16(g1)) / 2),
			uint8((uint16(b0) + uint16(b1)) / 2),
			0xFF,
		}
		pal[3] = [4]uint8{0, 0, 0, 0}
	} else {
		pal[2] = [4]uint8{
			uint8((2*uint16(r0) + uint16(r1)) / 3),
			uint8((2*uint16(g0) + uint16(g1)) / 3),
			uint8((2*uint16(b0) + uint16(b1)) / 3),
			0xFF,
		}
		pal[3] = [4]uint8{
			uint8((uint16(r0) + 2*uint16(r1)) / 3),
			uint8((uint16(g0) + 2*uint16(g1)) / 3),
			uint8((uint16(b0) + 2*uint16(b1)) / 3),
			0xFF,
		}
	}
	return pal
}

func nearestPaletteEntry(pal [4][4]uint8, px [4]uint8) uint8 {
	best, bestErr := uint8(0), int32(-1)
	for k, c := range pal {
		dr := int32(c[0]) - int32(px[0])
		dg := int32(c[1]) - int32(px[1])
		db := int32(c[2]) - int32(px[2])
		e := dr*dr + dg*dg + db*db
		if bestErr < 0 || e < bestErr {
			bestErr, best = e, uint8(k)
		}
	}
	return best
}

func packBC1(buf []byte, c0, c1 uint16, selectors *[16]uint8, punchThrough bool) {
	swap := (punchThrough && c0 > c1) || (!punchThrough && c0 < c1)
	if swap {
		c0, c1 = c1, c0
	}
	buf[0] = uint8(c0)
	buf[1] = uint8(c0 >> 8)
	buf[2] = uint8(c1)
	buf[3] = uint8(c1 >> 8)
	var bits uint32
	for i, s := range selectors {
		s &= 3
		// Swapping the endpoints swaps ramp entries 0/1 (and 2/3 in the
		// opaque ramp); the punch-through midpoint and transparent entries
		// stay put.
		if swap && (!punchThrough || s < 2) {
			s ^= 1
		}
		bits |= uint32(s) << uint(2*i)
	}
	buf[4] = uint8(bits)
	buf[5] = uint8(bits >> 8)
	buf[6] = uint8(bits >> 16)
	buf[7] = uint8(bits >> 24)
}

func decodeBC1(buf []byte, rgba *[16][4]uint8) {
	c0 := uint16(buf[0]) | uint16(buf[1])<<8
	c1 := uint16(buf[2]) | uint16(buf[3])<<8
	bits := uint32(buf[4]) | uint32(buf[5])<<8 | uint32(buf[6])<<16 | uint32(buf[7])<<24
	pal := bc1Palette(c0, c1, c0 <= c1)
	for i := 0; i < 16; i++ {
		sel := uint8(bits>>uint(2*i)) & 3
		c := pal[sel]
		rgba[i][0], rgba[i][1], rgba[i][2] = c[0], c[1], c[2]
		if c[3] == 0 {
			rgba[i][3] = 0
		}
	}
}
