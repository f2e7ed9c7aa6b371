// Copyright 2025 The Etc2 Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package ktx

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
		etc2.FormatETC1,
		etc2.FormatETC2RGB,
		etc2.FormatETC2RGBA,
		etc2.FormatETC2UnsignedR11,
		etc2.FormatETC2UnsignedRG11,
	}
	src := synthesize(19, 13)

	for _, f := range formats {
		buf := &bytes.Buffer{}
		if err := Encode(buf, src, &EncodeOptions{Format: f}); err != nil {
			tt.Errorf("format=%v: Encode: %v", f, err)
			continue
		}
		encoded := buf.Bytes()

		if len(encoded) < len(Identifier) || string(encoded[:len(Identifier)]) != string(Identifier[:]) {
			tt.Errorf("format=%v: missing KTX identifier", f)
			continue
		}

		config, err := DecodeConfig(bytes.NewReader(encoded))
		if err != nil {
			tt.Errorf("format=%v: DecodeConfig: %v", f, err)
			continue
		}
		if config.Width != 19 || config.Height != 13 {
			tt.Errorf("format=%v: dims: got %dx%d, want 19x13", f, config.Width, config.Height)
		}

		got, err := Decode(bytes.NewReader(encoded))
		if err != nil {
			tt.Errorf("format=%v: Decode: %v", f, err)
			continue
		}
		gb := got.Bounds()
		if gb.Dx() != 19 || gb.Dy() != 13 {
			tt.Errorf("format=%v: Decode dims: got %dx%d, want 19x13", f, gb.Dx(), gb.Dy())
		}
	}
}

func TestDecodeConfigRejectsBadIdentifier(tt *testing.T) {
	buf := make([]byte, headerSize)
	copy(buf, Identifier[:])
	buf[0] = 'X'
	if _, err := DecodeConfig(bytes.NewReader(buf)); err != ErrNotAKTXFile {
		tt.Errorf("DecodeConfig: got %v, want ErrNotAKTXFile", err)
	}
}

func TestEncodeRejectsBadFormat(tt *testing.T) {
	src := synthesize(4, 4)
	err := Encode(&bytes.Buffer{}, src, &EncodeOptions{Format: etc2.FormatInvalid})
	if err != ErrBadArgument {
		tt.Errorf("Encode: got %v, want ErrBadArgument", err)
	}
}
