// Copyright 2025 The Etc2 Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package squish

// encodeBC4Channel and decodeBC4Channel implement the BC4/BC5 single-channel
// block: two 8-bit endpoints followed by 16 3-bit selectors. This is the
// same shape as lib/etc2's R11 coder (a base value, an interpolation ramp,
// per-pixel selectors into it), so it's written as that coder's sibling
// rather than invented independently: where R11 widens its search over an
// EAC modifier table, BC4 here always takes the 8-value linear ramp between
// the tile's channel extremes (real BC4 also defines a 6-value-plus-0-and-
// 255 mode for tiles that want an exact black/white; that second mode is a
// documented simplification dropped here, since spec.md never requires
// bit-exact agreement with another encoder).
//
// channel selects which of rgba[i]'s four lanes (0=R, 1=G, 2=B, 3=A) this
// block encodes; BC4 always uses 0, BC5 uses 0 and 1 for its two planes,
// BC3's alpha block uses 3.

func encodeBC4Channel(buf []byte, rgba *[16][4]uint8, channel int) {
	lo, hi := rgba[0][channel], rgba[0][channel]
	for i := 1; i < 16; i++ {
		v := rgba[i][channel]
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}

	ramp := bc4Ramp(hi, lo)
	var selectors [16]uint8
	for i := 0; i < 16; i++ {
		selectors[i] = nearestRampEntry(ramp, rgba[i][channel])
	}
	packBC4(buf, hi, lo, &selectors)
}

// bc4Ramp returns the 8 values the block's two endpoints produce as a linear
// ramp, e0 at index 0 and e1 at index 7. Both the encoder and the decoder in
// this package use this order; real BC4 instead puts e1 at index 1 and the
// interpolated values at indices 2..7.
func bc4Ramp(e0, e1 uint8) (ramp [8]uint8) {
	ramp[0], ramp[7] = e0, e1
	for k := 1; k < 7; k++ {
		ramp[k] = uint8((int(7-k)*int(e0) + int(k)*int(e1)) / 7)
	}
	return ramp
}

func nearestRampEntry(ramp [8]uint8, v uint8) uint8 {
	best, bestErr := uint8(0), -1
	for k, r := range ramp {
		d := int(r) - int(v)
		if d < 0 {
			d = -d
		}
		if bestErr < 0 || d < bestErr {
			bestErr, best = d, uint8(k)
		}
	}
	return best
}

func packBC4(buf []byte, e0, e1 uint8, selectors *[16]uint8) {
	buf[0], buf[1] = e0, e1
	var bits uint64
	for i, s := range selectors {
		bits |= uint64(s&7) << uint(3*i)
	}
	for i := 0; i < 6; i++ {
		buf[2+i] = uint8(bits >> uint(8*i))
	}
}

func decodeBC4Channel(buf []byte, rgba *[16][4]uint8, channel int) {
	e0, e1 := buf[0], buf[1]
	var bits uint64
	for i := 0; i < 6; i++ {
		bits |= uint64(buf[2+i]) << uint(8*i)
	}
	ramp := bc4Ramp(e0, e1)
	for i := 0; i < 16; i++ {
		sel := uint8(bits>>uint(3*i)) & 7
		rgba[i][channel] = ramp[sel]
	}
}
