// Copyright 2025 The Etc2 Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package etc2

import "math"

// a8Encoder encodes the alpha plane of an RGBA8/RGB8A1 tile using the same
// EAC bit layout as r11Encoder, clamped to an 8-bit (0..255) range instead
// of R11's 11-bit range.
//
// Grounded on Block4x4Encoding_A8 in the original source
// (EtcBlock4x4Encoding_RGBA8.cpp): the three block-level fast paths (fully
// opaque, fully transparent, all-zero-alpha), keyed off the same alpha-mix
// classification the caller already computes for the RGB half's own fast
// path; a single effort-banded search radius (0/1/2 as effort crosses
// roughly 25 and 50), applied once per encode; and a zero-dynamic-range
// radius collapse inside the search itself, distinct from the block-level
// fast paths, for a flat-but-non-degenerate alpha value.
type a8Encoder struct {
	src [16]float32

	base       int32
	multiplier uint8
	table      uint8
	selectors  [16]uint8

	bestError      float32
	iterationCount int
	done           bool
	effort         float32
}

// a8MinValueSelector and a8MaxValueSelector are the fixed real selector
// indices calculateA8 centers its search on; unlike R11, A8 never windows
// these against a selectorsUsed budget.
const (
	a8MinValueSelector = 3
	a8MaxValueSelector = 7
)

func decodeA8Int(base int32, multiplier, table, selector uint8) int32 {
	modifier := eacModifierTable[table][selector]
	var v int32
	if multiplier == 0 {
		v = base + modifier
	} else {
		v = base + modifier*int32(multiplier)
	}
	if v < 0 {
		v = 0
	} else if v > 255 {
		v = 255
	}
	return v
}

func decodeA8Float(base int32, multiplier, table, selector uint8) float32 {
	return float32(decodeA8Int(base, multiplier, table, selector)) / 255
}

func (e *a8Encoder) extract(src *[16]Texel) {
	for i, t := range src {
		e.src[i] = t.A
	}
}

func (e *a8Encoder) encode(src *[16]Texel, metric ErrorMetric, effortLevel float32) {
	e.extract(src)
	e.bestError = -1
	e.iterationCount = 0
	e.done = false
	e.effort = effortLevel

	if e.tryFastPaths(src) {
		return
	}
	for !e.done {
		e.performIteration(src, metric)
	}
}

// tryFastPaths handles the same three degenerate cases
// Block4x4Encoding_A8::Encode short-circuits on before ever touching the
// general search, keyed off the same alpha-mix classification the RGBA8
// encoder already computes once per tile: a fully opaque block encodes
// exactly (base=255, table=15, multiplier=15, every selector=7), and a fully
// transparent or all-zero-alpha block encodes exactly (base=0, table=0,
// multiplier=1, every selector=0). Anything else falls through to the
// ordinary iterative search.
func (e *a8Encoder) tryFastPaths(src *[16]Texel) bool {
	switch classifyAlphaMix(src) {
	case alphaMixOpaque:
		e.base = 255
		e.table = 15
		e.multiplier = 15
		for i := range e.selectors {
			e.selectors[i] = 7
		}
	case alphaMixTransparent, alphaMixAllZeroAlpha:
		e.base = 0
		e.table = 0
		e.multiplier = 1
		for i := range e.selectors {
			e.selectors[i] = 0
		}
	default:
		return false
	}
	e.bestError = 0
	e.iterationCount = 1
	e.done = true
	return true
}

// decode always marks itself permanently done: the original's A8::Decode
// takes no iteration count and sets m_boolDone unconditionally, since alpha
// never benefits from further iteration once RGBA8's alpha-mix fast paths
// are out of the picture ("no iteration on A8, it's all done in after first
// PerformIteration").
func (e *a8Encoder) decode(buf []byte) {
	base, multiplier, table, selectors := unpackEACBlock(buf)
	e.base = int32(base)
	e.multiplier = multiplier
	e.table = table
	e.selectors = selectors
	e.bestError = 0
	e.iterationCount = 1
	e.done = true
}

func (e *a8Encoder) decodeOnly(buf []byte, dst *[16]Texel) {
	base, multiplier, table, selectors := unpackEACBlock(buf)
	for i := range 16 {
		dst[i].A = decodeA8Float(int32(base), multiplier, table, selectors[i])
	}
}

// performIteration is single-shot: one CalculateA8 call at an effort-banded
// radius, then done, matching the original's PerformIteration exactly
// (it never iterates more than once).
func (e *a8Encoder) performIteration(src *[16]Texel, metric ErrorMetric) {
	if e.done {
		return
	}
	radius := int32(0)
	switch {
	case e.effort >= 49.9:
		radius = 2
	case e.effort >= 24.9:
		radius = 1
	}
	e.calculateA8(radius)
	e.iterationCount++
	e.done = true
}

// calculateA8 searches every modifier table with a shared base/multiplier
// radius around a range-derived center, collapsing the radius to zero when
// the block's alpha has no dynamic range, and returns immediately once a
// candidate's error falls at or below the tolerance.
func (e *a8Encoder) calculateA8(radius int32) {
	lo, hi := e.src[0], e.src[0]
	for _, v := range e.src[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	minAlpha := clampi32(int32(math.Round(float64(lo)*255)), 0, 255)
	maxAlpha := clampi32(int32(math.Round(float64(hi)*255)), 0, 255)
	alphaRange := maxAlpha - minAlpha
	if alphaRange == 0 {
		radius = 0
	}

	for table := 0; table < 16; table++ {
		tableEntryCenter := -eacModifierTable[table][a8MinValueSelector]
		tableEntryRange := eacModifierTable[table][a8MaxValueSelector] - eacModifierTable[table][a8MinValueSelector]

		centerRatio := float32(tableEntryCenter) / float32(tableEntryRange)
		centerInt := clampi32(int32(math.Round(float64(float32(minAlpha)+centerRatio*float32(alphaRange)))), 0, 255)

		baseLo := clampi32(centerInt-radius, 0, 255)
		baseHi := clampi32(centerInt+radius, 0, 255)

		rangeMultiplier := int32(math.Round(float64(alphaRange) / float64(tableEntryRange)))
		multLo := clampi32(rangeMultiplier-radius, 1, 15)
		multHi := clampi32(rangeMultiplier+radius, 1, 15)

		for base := baseLo; base <= baseHi; base++ {
			for mult := multLo; mult <= multHi; mult++ {
				var totalError float32
				var selectors [16]uint8
				for i := 0; i < 16; i++ {
					sel := bestSelectorForA8(base, uint8(mult), uint8(table), e.src[i])
					selectors[i] = sel
					got := decodeA8Float(base, uint8(mult), uint8(table), sel)
					d := got - e.src[i]
					totalError += d * d
				}

				if e.bestError < 0 || totalError < e.bestError {
					e.bestError = totalError
					e.base = base
					e.multiplier = uint8(mult)
					e.table = uint8(table)
					e.selectors = selectors
					if e.bestError*255*255 <= r11ErrorTolerance {
						return
					}
				}
			}
		}
	}
}

func bestSelectorForA8(base int32, multiplier, table uint8, target float32) uint8 {
	var bestSel uint8
	var bestErr float32 = -1
	for sel := uint8(0); sel < 8; sel++ {
		got := decodeA8Float(base, multiplier, table, sel)
		d := got - target
		errv := d * d
		if bestErr < 0 || errv < bestErr {
			bestErr = errv
			bestSel = sel
		}
	}
	return bestSel
}

func (e *a8Encoder) writeEncodingBits(buf []byte) {
	packEACBlock(buf, uint8(e.base), e.multiplier, e.table, e.selectors)
}

func (e *a8Encoder) isDone() bool           { return e.done }
func (e *a8Encoder) getError() float32      { return e.bestError }
func (e *a8Encoder) getIterationCount() int { return e.iterationCount }
