// Copyright 2025 The Etc2 Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package etc2

import "image"

// Tile holds one 4x4 block's source pixels and the encoder(s) working on
// it. A single Tile value is reused across every block of every pass by
// ImageDriver, the way the original source reuses one Block4x4 and its
// NewEncoderIfNeeded-created encoder across an entire image's worth of
// blocks; Init and its callers always reset every field instead of relying
// on zero values to carry over correctly between tiles.
//
// Grounded on Block4x4::{Init,NewEncoderIfNeeded,Encode,Decode,
// SetSourcePixels} in the original source. Renamed from Block4x4 to Tile
// since this module's block-level data (BlockBits) already covers the name
// "block".
type Tile struct {
	Format Format
	Metric ErrorMetric

	src [16]Texel

	r11  r11Encoder // used directly for FormatETC2UnsignedR11/SignedR11
	r11g r11Encoder // RG11's second plane
	rgb8 rgb8Encoder
	rgba rgba8Encoder
	pt   rgb8a1Encoder

	enc blockEncoder
	rg  bool // true when two independent encoders (RG11) are in play

	err error
}

// init resets the Tile for a new source block, choosing the encoder(s) its
// Format needs. Called unconditionally at the top of both Encode and
// Decode so a reused Tile never observes a previous block's state.
func (t *Tile) init(format Format, metric ErrorMetric) {
	t.Format = format
	t.Metric = metric
	t.err = nil
	t.rg = false

	switch {
	case format == FormatETC2UnsignedR11 || format == FormatETC2SignedR11:
		t.r11 = r11Encoder{signed: format.IsSigned(), channel: 0}
		t.enc = &t.r11
	case format == FormatETC2UnsignedRG11 || format == FormatETC2SignedRG11:
		t.r11 = r11Encoder{signed: format.IsSigned(), channel: 0}
		t.r11g = r11Encoder{signed: format.IsSigned(), channel: 1}
		t.rg = true
	case format == FormatETC2RGBA || format == FormatETC2SRGBA:
		t.rgba = rgba8Encoder{}
		t.enc = &t.rgba
	case format == FormatETC2RGBA1 || format == FormatETC2SRGBA1:
		t.pt = rgb8a1Encoder{}
		t.enc = &t.pt
	default:
		t.rgb8 = rgb8Encoder{}
		t.enc = &t.rgb8
	}
}

// gather reads the 4x4 source block at (originX, originY) out of src,
// clamping to the image bounds.
func (t *Tile) gather(src image.Image, originX, originY int) {
	gatherSource(&t.src, src, originX, originY)
}

// Encode runs one block's search to completion: PerformIteration in a loop
// until IsDone, the way EncodeSinglepass drives a freshly Init'd block. For
// the multi-pass driver, prefer Decode+PerformIteration so partially-done
// work resumes instead of restarting.
func (t *Tile) Encode(format Format, metric ErrorMetric, effortLevel float32, src image.Image, originX, originY int) {
	t.init(format, metric)
	t.gather(src, originX, originY)
	if t.rg {
		t.r11.encode(&t.src, metric, effortLevel)
		t.r11g.encode(&t.src, metric, effortLevel)
		return
	}
	t.enc.encode(&t.src, metric, effortLevel)
}

// PerformIteration advances one bounded unit of work; for RG11 each channel
// encoder advances independently and is skipped once it reports done, so a
// channel that converges early stops consuming further iteration budget.
func (t *Tile) PerformIteration(src image.Image, originX, originY int) {
	t.gather(src, originX, originY)
	if t.rg {
		if !t.r11.isDone() {
			t.r11.performIteration(&t.src, t.Metric)
		}
		if !t.r11g.isDone() {
			t.r11g.performIteration(&t.src, t.Metric)
		}
		return
	}
	t.enc.performIteration(&t.src, t.Metric)
}

// IsDone reports whether every encoder this Tile holds has finished its
// search. For RG11, both independent planes must be done; this is the
// "iterationState done-high-bit" idea from the original multi-pass driver,
// expressed here as two ordinary booleans instead of packing both channels'
// done flags into one integer's high bit.
func (t *Tile) IsDone() bool {
	if t.rg {
		return t.r11.isDone() && t.r11g.isDone()
	}
	return t.enc.isDone()
}

// GetError returns the combined squared error across every encoder this
// Tile holds.
func (t *Tile) GetError() float32 {
	if t.rg {
		return t.r11.getError() + t.r11g.getError()
	}
	return t.enc.getError()
}

func (t *Tile) GetIterationCount() int {
	if t.rg {
		return t.r11.getIterationCount() | t.r11g.getIterationCount()<<8
	}
	return t.enc.getIterationCount()
}

// WriteEncodingBits serializes the current best candidate into buf, which
// must be exactly t.Format.BytesPerBlock() long.
func (t *Tile) WriteEncodingBits(buf []byte) {
	if t.rg {
		t.r11.writeEncodingBits(buf[0:8])
		t.r11g.writeEncodingBits(buf[8:16])
		return
	}
	t.enc.writeEncodingBits(buf)
}

// Decode reconstructs search state from an already-encoded block (for the
// multi-pass driver's resume-and-refine loop) and unconditionally re-inits
// first, the same unconditional-reset discipline Encode follows. iterState is
// the previous pass's GetIterationCount result; for RG11 it is split back
// into its two single-byte halves the same way GetIterationCount composed
// them (red in the low byte, green in the high byte).
func (t *Tile) Decode(format Format, metric ErrorMetric, src image.Image, originX, originY int, buf []byte, iterState int) {
	t.init(format, metric)
	t.gather(src, originX, originY)
	if t.rg {
		t.r11.decode(&t.src, buf[0:8], iterState&0xFF)
		t.r11g.decode(&t.src, buf[8:16], (iterState>>8)&0xFF)
		return
	}
	t.enc.decode(&t.src, buf, iterState)
}

// DecodeOnly reconstructs pixel values from an encoded block without
// restoring any search state, for the pure-decode path. dst is written in
// the same column-major order gatherSource uses.
func DecodeOnly(format Format, buf []byte, dst *[16]Texel) {
	switch {
	case format == FormatETC2UnsignedR11 || format == FormatETC2SignedR11:
		e := r11Encoder{signed: format.IsSigned(), channel: 0}
		e.decodeOnly(buf, dst)
	case format == FormatETC2UnsignedRG11 || format == FormatETC2SignedRG11:
		e0 := r11Encoder{signed: format.IsSigned(), channel: 0}
		e1 := r11Encoder{signed: format.IsSigned(), channel: 1}
		e0.decodeOnly(buf[0:8], dst)
		e1.decodeOnly(buf[8:16], dst)
	case format == FormatETC2RGBA || format == FormatETC2SRGBA:
		var e rgba8Encoder
		e.decodeOnly(buf, dst)
	case format == FormatETC2RGBA1 || format == FormatETC2SRGBA1:
		var e rgb8a1Encoder
		e.decodeOnly(buf, dst)
	default:
		var e rgb8Encoder
		e.decodeOnly(buf, dst)
	}
}
