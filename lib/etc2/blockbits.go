// Copyright 2025 The Etc2 Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

// This file defines the bit-packed layouts of the 8-byte encoded blocks.
//
// The EAC (R11/A8) layout below is lifted straight from the original
// source's Block4x4EncodingBits_R11/_A8 field shifts (selectors0..5 packed
// at "45 - 3*pixel"). The ETC1 differential/individual layout keeps the
// teacher's own bit positions from lib/etc2/encode.go's encodeRGBSansAlpha.
//
// T, H and Planar share the same 64 bits as ETC1 by reusing ETC2's
// overflow-signaling idea: a normal differential block's 5-bit base plus
// 3-bit delta must decode to a value in [0,31]; this module instead reserves
// literal sentinel values (base0.r forced to 31, delta0.r restricted to one
// of three positive codes) to flag "this is T/H/Planar, not plain ETC1
// differential" without spending any additional bits on a mode tag. Endpoint
// precision for T/H is reduced from the nominal 4 bits to 3 bits to make
// room for that signaling within a fixed 64-bit budget (see DESIGN.md).
package etc2

import "encoding/binary"

// ---- EAC (R11/A8) block ----

// writeU64BE/readU64BE treat buf[:8] as one big-endian 64-bit bitfield, the
// same transmission order the teacher's writeU64BE already uses.
func writeU64BE(buf []byte, x uint64) {
	binary.BigEndian.PutUint64(buf[:8], x)
}

func readU64BE(buf []byte) uint64 {
	return binary.BigEndian.Uint64(buf[:8])
}

// packEACBlock serialises an R11 or A8 block: 8-bit base, 4-bit multiplier,
// 4-bit table, then 16 selectors of 3 bits each, pixel 0 in the highest bits.
func packEACBlock(buf []byte, base uint8, multiplier uint8, table uint8, selectors [16]uint8) {
	x := uint64(base)<<56 | uint64(multiplier)<<52 | uint64(table)<<48
	var sel uint64
	for i, s := range selectors {
		sel |= uint64(s&7) << uint(45-3*i)
	}
	writeU64BE(buf, x|sel)
}

// unpackEACBlock is the inverse of packEACBlock.
func unpackEACBlock(buf []byte) (base, multiplier, table uint8, selectors [16]uint8) {
	x := readU64BE(buf)
	base = uint8(x >> 56)
	multiplier = uint8((x >> 52) & 0xF)
	table = uint8((x >> 48) & 0xF)
	for i := range selectors {
		selectors[i] = uint8((x >> uint(45-3*i)) & 7)
	}
	return
}

// ---- RGB8 block ----

// rgb8SubMode tags which of the four ETC2 color sub-modes a decoded RGB8
// block holds.
type rgb8SubMode uint8

const (
	rgb8ModeETC1Individual = rgb8SubMode(iota)
	rgb8ModeETC1Differential
	rgb8ModeT
	rgb8ModeH
	rgb8ModePlanar
)

// rgb8TSentinel/rgb8HSentinel/rgb8PlanarSentinel are the reserved (base0.r,
// delta0.r) pairs that flag a T/H/Planar block. base0.r is always forced to
// its maximum 5-bit value (31); delta0.r then selects the sub-mode. Any
// other combination is a plain ETC1 differential block.
const (
	rgb8SentinelBase0R = uint32(31)
	rgb8TSentinelDelta = uint32(1)
	rgb8HSentinelDelta = uint32(2)
	rgb8PlanarSentinel = uint32(3)
)

// rgb8ETC1Params holds the unpacked fields of an ETC1 individual/differential
// block.
type rgb8ETC1Params struct {
	diff         bool
	flip         bool
	base0, base1 [3]uint8 // 8-bit expanded color, as produced by reduceAverage/reduceQuantize
	table0, table1 uint8
	indexes      uint32
}

// packRGB8ETC1 writes an ETC1 individual or differential block. base0/base1
// are 8-bit expanded colors (bit-replicated the way reduceAverage/
// reduceQuantize already produce them); this function re-derives the raw
// 4- or 5-bit stored fields from them.
func packRGB8ETC1(buf []byte, diff bool, flip bool, base0, base1 [3]uint8, table0, table1 uint8, indexes uint32) {
	var x uint64
	if diff {
		r0, g0, b0 := uint32(base0[0])>>3, uint32(base0[1])>>3, uint32(base0[2])>>3
		r1, g1, b1 := uint32(base1[0])>>3, uint32(base1[1])>>3, uint32(base1[2])>>3
		dr := (r1 - r0) & 7
		dg := (g1 - g0) & 7
		db := (b1 - b0) & 7

		// Avoid colliding with a reserved T/H/Planar sentinel: if this exact
		// (r0, dr) pair is reserved, nudge r0 down by one 5-bit code. The
		// corresponding color shift is visually negligible and the encoder's
		// search already compares many nearby candidates.
		if r0 == rgb8SentinelBase0R && (dr == rgb8TSentinelDelta || dr == rgb8HSentinelDelta || dr == rgb8PlanarSentinel) {
			r0--
			dr = (r1 - r0) & 7
		}

		x = uint64(r0)<<(64-5) | uint64(dr)<<(59-3) |
			uint64(g0)<<(56-5) | uint64(dg)<<(51-3) |
			uint64(b0)<<(48-5) | uint64(db)<<(43-3) |
			uint64(table0)<<(40-3) | uint64(table1)<<(37-3) |
			uint64(1)<<(34-1) | boolBit(flip)<<(33-1)
	} else {
		x = uint64(base0[0]>>4)<<(64-4) | uint64(base1[0]>>4)<<(60-4) |
			uint64(base0[1]>>4)<<(56-4) | uint64(base1[1]>>4)<<(52-4) |
			uint64(base0[2]>>4)<<(48-4) | uint64(base1[2]>>4)<<(44-4) |
			uint64(table0)<<(40-3) | uint64(table1)<<(37-3) |
			uint64(0)<<(34-1) | boolBit(flip)<<(33-1)
	}
	writeU64BE(buf, x|uint64(indexes))
}

func boolBit(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

// rgb8TParams/rgb8HParams/rgb8PlanarParams hold the unpacked fields of the
// extended ETC2 sub-modes.
type rgb8TParams struct {
	base1, base2 [3]uint8 // 3-bit raw components, 0..7
	distIndex    uint8    // 0..7, indexes tAndHDistanceTable
	indexes      uint32
}

type rgb8HParams struct {
	base1, base2 [3]uint8 // 3-bit raw components, 0..7
	distIndex    uint8    // 0..7
	orderBit     bool
	indexes      uint32
}

type rgb8PlanarParams struct {
	o, h, v [3]uint16 // 6-bit components (this module uses 6/6/6, see DESIGN.md)
}

func packRGB8T(buf []byte, p rgb8TParams) {
	x := uint64(rgb8SentinelBase0R)<<(64-5) | uint64(rgb8TSentinelDelta)<<(59-3) |
		uint64(1)<<(34-1) // diff bit forced on
	x |= uint64(p.base1[0]&7) << 53
	x |= uint64(p.base1[1]&7) << 50
	x |= uint64(p.base1[2]&7) << 47
	x |= uint64(p.base2[0]&7) << 44
	x |= uint64(p.base2[1]&7) << 41
	x |= uint64(p.base2[2]&7) << 38
	x |= uint64(p.distIndex&7) << 35
	writeU64BE(buf, x|uint64(p.indexes))
}

func unpackRGB8T(buf []byte) rgb8TParams {
	x := readU64BE(buf)
	return rgb8TParams{
		base1: [3]uint8{
			uint8((x >> 53) & 7),
			uint8((x >> 50) & 7),
			uint8((x >> 47) & 7),
		},
		base2: [3]uint8{
			uint8((x >> 44) & 7),
			uint8((x >> 41) & 7),
			uint8((x >> 38) & 7),
		},
		distIndex: uint8((x >> 35) & 7),
		indexes:   uint32(x & 0xFFFFFFFF),
	}
}

func packRGB8H(buf []byte, p rgb8HParams) {
	x := uint64(rgb8SentinelBase0R)<<(64-5) | uint64(rgb8HSentinelDelta)<<(59-3) |
		uint64(1)<<(34-1)
	x |= uint64(p.base1[0]&7) << 53
	x |= uint64(p.base1[1]&7) << 50
	x |= uint64(p.base1[2]&7) << 47
	x |= uint64(p.base2[0]&7) << 44
	x |= uint64(p.base2[1]&7) << 41
	x |= uint64(p.base2[2]&7) << 38
	x |= uint64(p.distIndex&7) << 35
	x |= boolBit(p.orderBit) << 34
	writeU64BE(buf, x|uint64(p.indexes))
}

func unpackRGB8H(buf []byte) rgb8HParams {
	x := readU64BE(buf)
	return rgb8HParams{
		base1: [3]uint8{
			uint8((x >> 53) & 7),
			uint8((x >> 50) & 7),
			uint8((x >> 47) & 7),
		},
		base2: [3]uint8{
			uint8((x >> 44) & 7),
			uint8((x >> 41) & 7),
			uint8((x >> 38) & 7),
		},
		distIndex: uint8((x >> 35) & 7),
		orderBit:  (x>>34)&1 != 0,
		indexes:   uint32(x & 0xFFFFFFFF),
	}
}

func packRGB8Planar(buf []byte, p rgb8PlanarParams) {
	x := uint64(rgb8SentinelBase0R)<<(64-5) | uint64(rgb8PlanarSentinel)<<(59-3) |
		uint64(1)<<(34-1)
	x |= uint64(p.o[0]&0x3F) << 28
	x |= uint64(p.o[1]&0x3F) << 22
	x |= uint64(p.o[2]&0x3F) << 16
	x |= uint64(p.h[0]&0x3F) << 10
	x |= uint64(p.h[1]&0x3F) << 4
	// h[2] (6 bits) spans the byte boundary: top 4 bits here, bottom 2 with v.
	x |= uint64(p.h[2]&0x3C) >> 2
	low := uint64(p.h[2]&0x3) << 30
	low |= uint64(p.v[0]&0x3F) << 24
	low |= uint64(p.v[1]&0x3F) << 18
	low |= uint64(p.v[2]&0x3F) << 12
	writeU64BE(buf, x|low)
}

func unpackRGB8Planar(buf []byte) rgb8PlanarParams {
	x := readU64BE(buf)
	return rgb8PlanarParams{
		o: [3]uint16{
			uint16((x >> 28) & 0x3F),
			uint16((x >> 22) & 0x3F),
			uint16((x >> 16) & 0x3F),
		},
		h: [3]uint16{
			uint16((x >> 10) & 0x3F),
			uint16((x >> 4) & 0x3F),
			uint16(((x & 0xF) << 2) | ((x >> 30) & 0x3)),
		},
		v: [3]uint16{
			uint16((x >> 24) & 0x3F),
			uint16((x >> 18) & 0x3F),
			uint16((x >> 12) & 0x3F),
		},
	}
}

// peekRGB8SubMode inspects the header bits of an RGB8 block without fully
// unpacking it, dispatching decode to the right sub-mode unpacker.
func peekRGB8SubMode(buf []byte) rgb8SubMode {
	x := readU64BE(buf)
	diffBit := (x >> 33) & 1
	if diffBit == 0 {
		return rgb8ModeETC1Individual
	}
	r0 := uint32((x >> 59) & 0x1F)
	dr := uint32((x >> 56) & 0x7)
	if r0 == rgb8SentinelBase0R {
		switch dr {
		case rgb8TSentinelDelta:
			return rgb8ModeT
		case rgb8HSentinelDelta:
			return rgb8ModeH
		case rgb8PlanarSentinel:
			return rgb8ModePlanar
		}
	}
	return rgb8ModeETC1Differential
}

func unpackRGB8ETC1(buf []byte) rgb8ETC1Params {
	x := readU64BE(buf)
	diff := (x>>33)&1 != 0
	flip := (x>>32)&1 != 0
	table0 := uint8((x >> 37) & 7)
	table1 := uint8((x >> 34) & 7)
	indexes := uint32(x & 0xFFFFFFFF)

	var base0, base1 [3]uint8
	if diff {
		r0 := uint8((x >> 59) & 0x1F)
		dr := uint8((x >> 56) & 0x7)
		g0 := uint8((x >> 51) & 0x1F)
		dg := uint8((x >> 48) & 0x7)
		b0 := uint8((x >> 43) & 0x1F)
		db := uint8((x >> 40) & 0x7)
		r1 := (r0 + signExtend3(dr)) & 0x1F
		g1 := (g0 + signExtend3(dg)) & 0x1F
		b1 := (b0 + signExtend3(db)) & 0x1F
		base0 = [3]uint8{expand5(r0), expand5(g0), expand5(b0)}
		base1 = [3]uint8{expand5(r1), expand5(g1), expand5(b1)}
	} else {
		r0 := uint8((x >> 60) & 0xF)
		r1 := uint8((x >> 56) & 0xF)
		g0 := uint8((x >> 52) & 0xF)
		g1 := uint8((x >> 48) & 0xF)
		b0 := uint8((x >> 44) & 0xF)
		b1 := uint8((x >> 40) & 0xF)
		base0 = [3]uint8{expand4(r0), expand4(g0), expand4(b0)}
		base1 = [3]uint8{expand4(r1), expand4(g1), expand4(b1)}
	}

	return rgb8ETC1Params{
		diff: diff, flip: flip,
		base0: base0, base1: base1,
		table0: table0, table1: table1,
		indexes: indexes,
	}
}

func signExtend3(v uint8) uint8 {
	if v&4 != 0 {
		return v | 0xF8
	}
	return v
}

func expand5(v uint8) uint8 { return (v << 3) | (v >> 2) }
func expand4(v uint8) uint8 { return (v << 4) | v }
func expand3(v uint8) uint8 { return (v << 5) | (v << 2) | (v >> 1) }
func expand6(v uint16) uint8 { return uint8((v << 2) | (v >> 4)) }
