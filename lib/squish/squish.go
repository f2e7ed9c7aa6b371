// Copyright 2025 The Etc2 Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

// Package squish implements a minimal BC1/BC3/BC4/BC5 block codec, the
// S3TC/DXT family lib/dds wraps for its FourCC- and DXGI-tagged textures.
//
// It is grounded on the retrieved libkram/squish sources (colourset.cpp,
// source/squish/{maths.h,squish.cpp}): ColourSet's masked/weighted point
// accumulation and a single-axis range fit stand in for the original's
// heavier iterative cluster fit, which is a documented non-goal here (see
// DESIGN.md). BC4/BC5's single-channel coder is written as a sibling of
// lib/etc2's R11 coder: both are a base value plus an 8-entry interpolation
// ramp plus 3-bit per-pixel selectors, just with a plain linear ramp instead
// of EAC's modifier table.
package squish

import (
	"errors"
	"image"
	"image/color"
)

func nrgbaOf(c [4]uint8) color.NRGBA {
	return color.NRGBA{R: c[0], G: c[1], B: c[2], A: c[3]}
}

var (
	ErrBadArgument     = errors.New("squish: bad argument")
	ErrImageIsTooLarge = errors.New("squish: image is too large")
)

// Format identifies one of the BC1/BC3/BC4/BC5 block layouts.
type Format int

const (
	FormatInvalid Format = 0
	FormatBC1     Format = 1
	FormatBC3     Format = 2
	FormatBC4     Format = 3
	FormatBC5     Format = 4
)

// BytesPerBlock returns the encoded size of one 4x4 tile, or 0 for an
// unrecognized format.
func (f Format) BytesPerBlock() int {
	switch f {
	case FormatBC1, FormatBC4:
		return 8
	case FormatBC3, FormatBC5:
		return 16
	}
	return 0
}

func blockGrid(width, height int) (blocksWide, blocksHigh int) {
	return (width + 3) / 4, (height + 3) / 4
}

// gatherTile reads a 4x4 pixel block at (originX, originY) out of src into
// raster order (unlike lib/etc2's column-major Texel gather: BC1's half-split
// is along rows of 4, not the ETC1 left/right column halves, so there is no
// benefit to a column-major layout here).
func gatherTile(src image.Image, originX, originY int) (rgba [16][4]uint8) {
	b := src.Bounds()
	i := 0
	for y := 0; y < 4; y++ {
		py := originY + y
		if py >= b.Max.Y {
			py = b.Max.Y - 1
		}
		for x := 0; x < 4; x++ {
			px := originX + x
			if px >= b.Max.X {
				px = b.Max.X - 1
			}
			r, g, bl, a := src.At(px, py).RGBA()
			rgba[i] = [4]uint8{uint8(r >> 8), uint8(g >> 8), uint8(bl >> 8), uint8(a >> 8)}
			i++
		}
	}
	return rgba
}

// Encode encodes every tile of src to format f and returns the packed
// bitstream. Unlike lib/etc2, there is no multi-pass driver: BC-family
// blocks are a closed-form fit rather than an iterative search, so one pass
// already produces the encoder's best answer.
func Encode(src image.Image, f Format) ([]byte, error) {
	if src == nil {
		return nil, ErrBadArgument
	}
	b := src.Bounds()
	if (b.Dx() > 65532) || (b.Dy() > 65532) {
		return nil, ErrImageIsTooLarge
	}
	bpb := f.BytesPerBlock()
	if bpb == 0 {
		return nil, ErrBadArgument
	}
	bw, bh := blockGrid(b.Dx(), b.Dy())
	dst := make([]byte, bw*bh*bpb)

	i := 0
	for by := 0; by < bh; by++ {
		for bx := 0; bx < bw; bx++ {
			rgba := gatherTile(src, b.Min.X+bx*4, b.Min.Y+by*4)
			encodeTile(dst[i*bpb:i*bpb+bpb], &rgba, f)
			i++
		}
	}
	return dst, nil
}

func encodeTile(buf []byte, rgba *[16][4]uint8, f Format) {
	switch f {
	case FormatBC1:
		encodeBC1(buf, rgba, true)
	case FormatBC3:
		encodeBC4Channel(buf[0:8], rgba, 3)
		encodeBC1(buf[8:16], rgba, false)
	case FormatBC4:
		encodeBC4Channel(buf, rgba, 0)
	case FormatBC5:
		encodeBC4Channel(buf[0:8], rgba, 0)
		encodeBC4Channel(buf[8:16], rgba, 1)
	}
}

// Decode reconstructs an image.Image of the given pixel dimensions from a
// BC-family bitstream.
func Decode(buf []byte, f Format, width, height int) (image.Image, error) {
	bpb := f.BytesPerBlock()
	if bpb == 0 || width <= 0 || height <= 0 {
		return nil, ErrBadArgument
	}
	bw, bh := blockGrid(width, height)
	if len(buf) < bw*bh*bpb {
		return nil, ErrBadArgument
	}
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))

	i := 0
	for by := 0; by < bh; by++ {
		for bx := 0; bx < bw; bx++ {
			var rgba [16][4]uint8
			decodeTile(buf[i*bpb:i*bpb+bpb], &rgba, f)
			writeTile(dst, bx*4, by*4, width, height, &rgba)
			i++
		}
	}
	return dst, nil
}

func decodeTile(buf []byte, rgba *[16][4]uint8, f Format) {
	for i := range rgba {
		rgba[i] = [4]uint8{0, 0, 0, 0xFF}
	}
	switch f {
	case FormatBC1:
		decodeBC1(buf, rgba)
	case FormatBC3:
		decodeBC4Channel(buf[0:8], rgba, 3)
		decodeBC1(buf[8:16], rgba)
	case FormatBC4:
		decodeBC4Channel(buf, rgba, 0)
	case FormatBC5:
		decodeBC4Channel(buf[0:8], rgba, 0)
		decodeBC4Channel(buf[8:16], rgba, 1)
	}
}

func writeTile(dst *image.NRGBA, originX, originY, width, height int, rgba *[16][4]uint8) {
	i := 0
	for y := 0; y < 4; y++ {
		py := originY + y
		for x := 0; x < 4; x++ {
			px := originX + x
			if px < width && py < height {
				c := rgba[i]
				dst.SetNRGBA(px, py, nrgbaOf(c))
			}
			i++
		}
	}
}
