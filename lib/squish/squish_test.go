// Copyright 2025 The Etc2 Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package squish

import (
	"image"
	"image/color"
	"testing"
)

// synthesize builds a small gradient-and-checker RGBA image, exercising a
// mix of flat and varying blocks an encoder's tile search will see.
func synthesize(w, h int) *image.RGBA {
	m := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			a := uint8(0xFF)
			if (x+y)%6 == 0 {
				a = 0x40
			}
			m.SetRGBA(x, y, color.RGBA{
				R: uint8(x * 255 / (w - 1)),
				G: uint8(y * 255 / (h - 1)),
				B: uint8((x ^ y) & 0xFF),
				A: a,
			})
		}
	}
	return m
}

func TestEncodeDecodeRoundTrip(tt *testing.T) {
	formats := []Format{FormatBC1, FormatBC3, FormatBC4, FormatBC5}
	src := synthesize(12, 8)

	for _, f := range formats {
		buf, err := Encode(src, f)
		if err != nil {
			tt.Errorf("format=%v: Encode: %v", f, err)
			continue
		}
		bw, bh := blockGrid(12, 8)
		if want := bw * bh * f.BytesPerBlock(); len(buf) != want {
			tt.Errorf("format=%v: len(buf) = %d, want %d", f, len(buf), want)
		}

		got, err := Decode(buf, f, 12, 8)
		if err != nil {
			tt.Errorf("format=%v: Decode: %v", f, err)
			continue
		}
		gb := got.Bounds()
		if gb.Dx() != 12 || gb.Dy() != 8 {
			tt.Errorf("format=%v: Decode dims: got %dx%d, want 12x8", f, gb.Dx(), gb.Dy())
		}
	}
}

func TestEncodeFlatBlockWithinQuantization(tt *testing.T) {
	// A single solid color should come back as its nearest RGB565 value,
	// since every BC format's ramp/palette always contains the two endpoints.
	m := image.NewRGBA(image.Rect(0, 0, 4, 4))
	want := color.RGBA{R: 0x80, G: 0x40, B: 0x20, A: 0xFF}
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			m.SetRGBA(x, y, want)
		}
	}

	buf, err := Encode(m, FormatBC1)
	if err != nil {
		tt.Fatalf("Encode: %v", err)
	}
	got, err := Decode(buf, FormatBC1, 4, 4)
	if err != nil {
		tt.Fatalf("Decode: %v", err)
	}
	gotR, gotG, gotB, _ := got.At(1, 1).RGBA()
	wantR, wantG, wantB, _ := want.RGBA()
	// RGB565 quantization can shift a channel by a handful of levels even
	// for a flat block, since R/B get 5 bits and G gets 6.
	const tol = 0x0900
	if absDiff(gotR, wantR) > tol || absDiff(gotG, wantG) > tol || absDiff(gotB, wantB) > tol {
		tt.Errorf("got (%d,%d,%d), want (%d,%d,%d)", gotR, gotG, gotB, wantR, wantG, wantB)
	}
}

func absDiff(a, b uint32) uint32 {
	if a > b {
		return a - b
	}
	return b - a
}

func TestFormatBytesPerBlock(tt *testing.T) {
	cases := []struct {
		f    Format
		want int
	}{
		{FormatBC1, 8},
		{FormatBC3, 16},
		{FormatBC4, 8},
		{FormatBC5, 16},
		{FormatInvalid, 0},
	}
	for _, c := range cases {
		if got := c.f.BytesPerBlock(); got != c.want {
			tt.Errorf("format=%v: BytesPerBlock() = %d, want %d", c.f, got, c.want)
		}
	}
}
