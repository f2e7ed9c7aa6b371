// Copyright 2025 The Etc2 Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package etc2

import "math"

// r11Encoder encodes a single 4x4 channel plane (red, or green when reused
// for RG11's second plane) into the EAC single-channel block format: an
// 8-bit base, a 4-bit multiplier, a 4-bit modifier-table index, and sixteen
// 3-bit per-pixel selectors.
//
// Grounded on Block4x4Encoding_R11 in the original source
// (EtcBlock4x4Encoding_R11.cpp): same six-stage PerformIteration schedule
// (widening the selectorsUsed window and search radius as the effort budget
// allows), the same eacVirtualSelectorMap-windowed centering derived from
// the block's observed value range, and the same early-exit error tolerance.
type r11Encoder struct {
	signed  bool
	channel int // 0 = red, 1 = green (for RG11's second plane)

	src            [16]float32
	redMin, redMax int32 // observed range, in the base-codeword-scaled domain

	base       int32
	multiplier uint8
	table      uint8
	selectors  [16]uint8

	bestError      float32
	iterationCount int
	done           bool
	effort         float32
}

// r11ErrorTolerance mirrors the original's kErrorTolerance early exit: once
// a candidate's total squared error, measured in 11-bit integer units (one
// code step per texel over 16 texels), falls at or below this, further
// search stops being worth the iteration budget.
const r11ErrorTolerance = 16

// withinTolerance reports whether bestError, which is accumulated on
// normalized channel values, is at or below r11ErrorTolerance once scaled
// back to the 11-bit integer domain.
func (e *r11Encoder) withinTolerance() bool {
	_, _, scale := r11Range(e.signed)
	return e.bestError*scale*scale <= r11ErrorTolerance
}

// extractChannel refreshes this encoder's view of the tile's source pixels:
// its one relevant channel as floats, and the observed range in the scaled
// integer domain calculateR11 searches in. Called from both encode (fresh
// start) and decode (resuming into a possibly different tile than whatever
// this reused encoder last worked on), since the original's Decode always
// re-establishes source pixels before continuing a search.
func (e *r11Encoder) extractChannel(src *[16]Texel) {
	_, _, scale := r11Range(e.signed)
	lo, hi := int32(0), int32(scale)
	if e.signed {
		lo, hi = -int32(scale), int32(scale)
	}
	e.redMin, e.redMax = hi, lo
	for i, t := range src {
		v := t.R
		if e.channel != 0 {
			v = t.G
		}
		e.src[i] = v
		px := clampi32(int32(math.Round(float64(v*scale))), lo, hi)
		if px < e.redMin {
			e.redMin = px
		}
		if px > e.redMax {
			e.redMax = px
		}
	}
}

func r11Range(signed bool) (lo, hi, scale float32) {
	if signed {
		return -1, 1, 1023
	}
	return 0, 1, 2047
}

// decodeR11Int reproduces the EAC single-channel decode formula: base is
// already in the stored 8-bit codeword domain (scaled by 8 internally), and
// the multiplier-zero case skips the extra *8 so that a near-zero range
// still has single-step resolution.
func decodeR11Int(base int32, multiplier, table uint8, selector uint8, signed bool) int32 {
	modifier := eacModifierTable[table][selector]
	var v int32
	if multiplier == 0 {
		v = base*8 + 4 + modifier
	} else {
		v = base*8 + 4 + modifier*int32(multiplier)*8
	}
	if signed {
		if v < -1023 {
			v = -1023
		} else if v > 1023 {
			v = 1023
		}
	} else {
		if v < 0 {
			v = 0
		} else if v > 2047 {
			v = 2047
		}
	}
	return v
}

func decodeR11Float(base int32, multiplier, table, selector uint8, signed bool) float32 {
	_, _, scale := r11Range(signed)
	return float32(decodeR11Int(base, multiplier, table, selector, signed)) / scale
}

func (e *r11Encoder) encode(src *[16]Texel, metric ErrorMetric, effortLevel float32) {
	e.extractChannel(src)
	e.base = 0
	e.multiplier = 0
	e.table = 0
	e.bestError = -1
	e.iterationCount = 0
	e.done = false
	e.effort = effortLevel
	for !e.done {
		e.performIteration(src, metric)
	}
}

// decode reconstructs this encoder's bits unconditionally (so WriteEncodingBits
// writing them straight back is always a harmless no-op), then checks
// lastIterState's done high bit: if the previous pass had already finished
// this block, it stays done and skips re-extracting the source or
// recomputing an error, exactly like the original short-circuiting before
// ever touching SetSourcePixels. Otherwise it refreshes the source pixels,
// keeps the schedule position the previous pass reached (lastIterState
// without its done bit), so the next performIteration continues from there,
// and recomputes the current candidate's error so a resumed search never
// mistakes a worse candidate for an improvement.
func (e *r11Encoder) decode(src *[16]Texel, buf []byte, lastIterState int) bool {
	base, multiplier, table, selectors := unpackEACBlock(buf)
	if e.signed {
		e.base = int32(int8(base))
	} else {
		e.base = int32(base)
	}
	e.multiplier = multiplier
	e.table = table
	e.selectors = selectors

	if lastIterState&0x80 != 0 {
		e.done = true
		e.bestError = 0
		return false
	}

	e.extractChannel(src)
	e.iterationCount = lastIterState & 0x7F
	e.done = false

	var blockError float32
	for i := 0; i < 16; i++ {
		got := decodeR11Float(e.base, e.multiplier, e.table, e.selectors[i], e.signed)
		d := got - e.src[i]
		blockError += d * d
	}
	e.bestError = blockError
	return true
}

func (e *r11Encoder) decodeOnly(buf []byte, dst *[16]Texel) {
	base, multiplier, table, selectors := unpackEACBlock(buf)
	b := int32(base)
	if e.signed {
		b = int32(int8(base))
	}
	for i := range 16 {
		v := decodeR11Float(b, multiplier, table, selectors[i], e.signed)
		if e.channel == 0 {
			dst[i].R = v
		} else {
			dst[i].G = v
		}
	}
}

// getIterationCount embeds the done flag in the high bit of the returned
// count, the same trick Block4x4Encoding_R11::GetIterationCount uses so a
// resumed decode can tell "finished" apart from "still on schedule step N"
// without a separate field.
func (e *r11Encoder) getIterationCount() int {
	c := e.iterationCount
	if e.done {
		c |= 0x80
	}
	return c
}

// performIteration runs the original's six-stage schedule: a cheap
// full-selector-width guess first, then two stages that can stop the search
// early once the effort budget is low enough, then three narrowing stages
// that windowed-selector the search down toward a single-selector-wide
// refinement.
func (e *r11Encoder) performIteration(src *[16]Texel, metric ErrorMetric) {
	if e.done {
		return
	}
	switch e.iterationCount {
	case 0:
		e.calculateR11(8, 0, 0)
	case 1:
		e.calculateR11(8, 2, 1)
		if e.effort <= 24.5 {
			e.done = true
		}
	case 2:
		e.calculateR11(8, 12, 1)
		if e.effort <= 49.5 {
			e.done = true
		}
	case 3:
		e.calculateR11(7, 6, 1)
	case 4:
		e.calculateR11(6, 3, 1)
	case 5:
		e.calculateR11(5, 1, 0)
		e.done = true
	}
	if !e.done {
		if e.withinTolerance() {
			e.done = true
		} else {
			e.iterationCount++
		}
	}
}

// calculateR11 searches every modifier table and a selectorsUsed-wide window
// of eacVirtualSelectorMap, deriving each window's base and multiplier search
// center from the block's observed value range (not from whatever the
// previous call's winner happened to be), then widening baseRadius/
// multRadius pixels around that center. It keeps the globally lowest-error
// candidate found so far across repeated calls, and returns immediately once
// a candidate's error falls at or below the tolerance instead of continuing
// to search remaining tables.
func (e *r11Encoder) calculateR11(selectorsUsed int, baseRadius, multRadius int32) {
	baseLo, baseHi := int32(0), int32(255)
	if e.signed {
		baseLo, baseHi = -128, 127
	}

	redRange := e.redMax - e.redMin
	if redRange == 0 {
		baseRadius = 0
		multRadius = 0
	}

	for table := 0; table < 16; table++ {
		for minV := 0; minV <= 8-selectorsUsed; minV++ {
			maxV := minV + selectorsUsed - 1
			minSel := eacVirtualSelectorMap[minV]
			maxSel := eacVirtualSelectorMap[maxV]

			tableEntryCenter := -eacModifierTable[table][minSel]
			tableEntryRange := eacModifierTable[table][maxSel] - eacModifierTable[table][minSel]

			centerRatio := float32(tableEntryCenter) / float32(tableEntryRange)
			center := float32(e.redMin) + centerRatio*float32(redRange)
			centerInt := clampi32(int32(math.Round(float64(center/8))), baseLo, baseHi)

			searchLo := clampi32(centerInt-baseRadius, baseLo, baseHi)
			searchHi := clampi32(centerInt+baseRadius, baseLo, baseHi)

			rangeMultiplier := int32(math.Round(float64(redRange) / 8 / float64(tableEntryRange)))
			multLo := clampi32(rangeMultiplier-multRadius, 0, 15)
			multHi := clampi32(rangeMultiplier+multRadius, 1, 15)

			for base := searchLo; base <= searchHi; base++ {
				for mult := multLo; mult <= multHi; mult++ {
					var totalError float32
					var selectors [16]uint8
					for i := 0; i < 16; i++ {
						best := bestSelectorForR11(base, uint8(mult), uint8(table), e.src[i], e.signed)
						selectors[i] = best
						got := decodeR11Float(base, uint8(mult), uint8(table), best, e.signed)
						d := got - e.src[i]
						totalError += d * d
					}

					if e.bestError < 0 || totalError < e.bestError {
						e.bestError = totalError
						e.base = base
						e.multiplier = uint8(mult)
						e.table = uint8(table)
						e.selectors = selectors
						if e.withinTolerance() {
							return
						}
					}
				}
			}
		}
	}
}

// bestSelectorForR11 always searches all 8 selectors in virtual order: the
// selectorsUsed windowing calculateR11 applies only narrows where the
// base/multiplier search centers, never which selectors a pixel can pick.
func bestSelectorForR11(base int32, multiplier, table uint8, target float32, signed bool) uint8 {
	var bestSel uint8
	var bestErr float32 = -1
	for v := 0; v < 8; v++ {
		sel := eacVirtualSelectorMap[v]
		got := decodeR11Float(base, multiplier, table, sel, signed)
		d := got - target
		errv := d * d
		if bestErr < 0 || errv < bestErr {
			bestErr = errv
			bestSel = sel
		}
	}
	return bestSel
}

func clampi32(v, lo, hi int32) int32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (e *r11Encoder) writeEncodingBits(buf []byte) {
	var base uint8
	if e.signed {
		base = uint8(int8(e.base))
	} else {
		base = uint8(e.base)
	}
	packEACBlock(buf, base, e.multiplier, e.table, e.selectors)
}

func (e *r11Encoder) isDone() bool      { return e.done }
func (e *r11Encoder) getError() float32 { return e.bestError }
