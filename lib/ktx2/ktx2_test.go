// Copyright 2025 The Etc2 Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package ktx2

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/nigeltao/texpack/lib/etc2"
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
	formats := []etc2.Format{
		etc2.FormatETC2RGB,
		etc2.FormatETC2SRGB,
		etc2.FormatETC2RGBA,
		etc2.FormatETC2UnsignedR11,
		etc2.FormatETC2SignedRG11,
	}
	src := synthesize(21, 9)

	for _, f := range formats {
		buf := &bytes.Buffer{}
		if err := Encode(buf, src, &EncodeOptions{Format: f}); err != nil {
			tt.Errorf("format=%v: Encode: %v", f, err)
			continue
		}
		encoded := buf.Bytes()

		if len(encoded) < len(Identifier) || string(encoded[:len(Identifier)]) != string(Identifier[:]) {
			tt.Errorf("format=%v: missing KTX2 identifier", f)
			continue
		}

		config, err := DecodeConfig(bytes.NewReader(encoded))
		if err != nil {
			tt.Errorf("format=%v: DecodeConfig: %v", f, err)
			continue
		}
		if config.Width != 21 || config.Height != 9 {
			tt.Errorf("format=%v: dims: got %dx%d, want 21x9", f, config.Width, config.Height)
		}

		got, err := Decode(bytes.NewReader(encoded))
		if err != nil {
			tt.Errorf("format=%v: Decode: %v", f, err)
			continue
		}
		gb := got.Bounds()
		if gb.Dx() != 21 || gb.Dy() != 9 {
			tt.Errorf("format=%v: Decode dims: got %dx%d, want 21x9", f, gb.Dx(), gb.Dy())
		}
	}
}

func TestVkFormatRoundTrip(tt *testing.T) {
	formats := []etc2.Format{
		etc2.FormatETC2RGB,
		etc2.FormatETC2SRGB,
		etc2.FormatETC2RGBA1,
		etc2.FormatETC2SRGBA1,
		etc2.FormatETC2RGBA,
		etc2.FormatETC2SRGBA,
		etc2.FormatETC2UnsignedR11,
		etc2.FormatETC2SignedR11,
		etc2.FormatETC2UnsignedRG11,
		etc2.FormatETC2SignedRG11,
	}
	for _, f := range formats {
		vk := vkFormatFor(f)
		if vk == 0 {
			tt.Errorf("format=%v: vkFormatFor returned 0", f)
			continue
		}
		if got := formatFromVkFormat(vk); got != f {
			tt.Errorf("formatFromVkFormat(vkFormatFor(%v)) = %v, want %v", f, got, f)
		}
	}
}

func TestDecodeRejectsSupercompression(tt *testing.T) {
	src := synthesize(4, 4)
	buf := &bytes.Buffer{}
	if err := Encode(buf, src, &EncodeOptions{Format: etc2.FormatETC2RGB}); err != nil {
		tt.Fatalf("Encode: %v", err)
	}
	encoded := buf.Bytes()
	// supercompressionScheme is the uint32 right after the 12-byte
	// identifier and the vkFormat, typeSize, pixelWidth, pixelHeight,
	// pixelDepth, layerCount, faceCount and levelCount fields (8 uint32s in).
	encoded[12+8*4] = 1
	if _, err := DecodeConfig(bytes.NewReader(encoded)); err != ErrUnsupportedSupercompression {
		tt.Errorf("DecodeConfig: got %v, want ErrUnsupportedSupercompression", err)
	}
}
