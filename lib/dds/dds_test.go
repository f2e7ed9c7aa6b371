// Copyright 2025 The Etc2 Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package dds

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/nigeltao/texpack/lib/squish"
)

func synthesize(w, h int) *image.RGBA {
	m := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			m.SetRGBA(x, y, color.RGBA{
				R: uint8(x * 255 / (w - 1)),
				G: uint8(y * 255 / (h - 1)),
				B: uint8((x ^ y) & 0xFF),
				A: 0xFF,
			})
		}
	}
	return m
}

func TestEncodeDecodeRoundTrip(tt *testing.T) {
	formats := []squish.Format{squish.FormatBC1, squish.FormatBC3, squish.FormatBC4, squish.FormatBC5}
	src := synthesize(16, 16)

	for _, f := range formats {
		buf := &bytes.Buffer{}
		if err := Encode(buf, src, &EncodeOptions{Format: f}); err != nil {
			tt.Errorf("format=%v: Encode: %v", f, err)
			continue
		}
		encoded := buf.Bytes()
		if len(encoded) < 4 || string(encoded[:4]) != string(Magic[:]) {
			tt.Errorf("format=%v: missing DDS magic", f)
			continue
		}

		config, err := DecodeConfig(bytes.NewReader(encoded))
		if err != nil {
			tt.Errorf("format=%v: DecodeConfig: %v", f, err)
			continue
		}
		if config.Width != 16 || config.Height != 16 {
			tt.Errorf("format=%v: dims: got %dx%d, want 16x16", f, config.Width, config.Height)
		}

		got, err := Decode(bytes.NewReader(encoded))
		if err != nil {
			tt.Errorf("format=%v: Decode: %v", f, err)
			continue
		}
		gb := got.Bounds()
		if gb.Dx() != 16 || gb.Dy() != 16 {
			tt.Errorf("format=%v: Decode dims: got %dx%d, want 16x16", f, gb.Dx(), gb.Dy())
		}
	}
}

func TestEncodeDecodeMipChain(tt *testing.T) {
	base := synthesize(16, 16)
	mip1 := synthesize(8, 8)
	mip2 := synthesize(4, 4)

	buf := &bytes.Buffer{}
	err := Encode(buf, base, &EncodeOptions{
		Format:    squish.FormatBC1,
		MipLevels: []image.Image{mip1, mip2},
	})
	if err != nil {
		tt.Fatalf("Encode: %v", err)
	}

	levels, err := DecodeLevels(bytes.NewReader(buf.Bytes()))
	if err != nil {
		tt.Fatalf("DecodeLevels: %v", err)
	}
	if len(levels) != 3 {
		tt.Fatalf("len(levels) = %d, want 3", len(levels))
	}
	wantDims := [3][2]int{{16, 16}, {8, 8}, {4, 4}}
	for i, lvl := range levels {
		b := lvl.Bounds()
		if b.Dx() != wantDims[i][0] || b.Dy() != wantDims[i][1] {
			tt.Errorf("level %d: dims: got %dx%d, want %dx%d", i, b.Dx(), b.Dy(), wantDims[i][0], wantDims[i][1])
		}
	}
}

func TestDecodeConfigRejectsBadMagic(tt *testing.T) {
	buf := make([]byte, 4+headerSize)
	copy(buf, Magic[:])
	buf[0] = 'X'
	if _, err := DecodeConfig(bytes.NewReader(buf)); err != ErrNotADDSFile {
		tt.Errorf("DecodeConfig: got %v, want ErrNotADDSFile", err)
	}
}

func TestFourCCRoundTrip(tt *testing.T) {
	formats := []squish.Format{squish.FormatBC1, squish.FormatBC3, squish.FormatBC4, squish.FormatBC5}
	for _, f := range formats {
		cc := fourCCFromFormat(f)
		if got := formatFromFourCC(cc); got != f {
			tt.Errorf("formatFromFourCC(fourCCFromFormat(%v)) = %v, want %v", f, got, f)
		}
	}
}
