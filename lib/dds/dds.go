// Copyright 2025 The Etc2 Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

// ----------------

// Package dds implements the Microsoft DDS container format for BC1/BC3/
// BC4/BC5 textures (via lib/squish), including its mip chain layout.
//
// Mipmap *generation* (producing a half-resolution image from a full-
// resolution one) is out of scope, the same non-goal SPEC_FULL.md states for
// the rest of this module; but a DDS file cannot be framed without a mip
// chain *layout*, so this package reads and writes one when given one:
// Encode takes the already-downsampled levels as a caller-supplied slice,
// and Decode returns every level it finds instead of only the first, unlike
// lib/ktx/lib/ktx2's single-mip simplification.
package dds

import (
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"io"

	"github.com/nigeltao/texpack/lib/squish"
)

var Magic = [4]byte{'D', 'D', 'S', ' '}

var (
	ErrBadArgument     = errors.New("dds: bad argument")
	ErrNotADDSFile     = errors.New("dds: not a DDS file")
	ErrImageIsTooLarge = errors.New("dds: image is too large")
)

func init() {
	image.RegisterFormat("dds", string(Magic[:]), Decode, DecodeConfig)
}

const (
	headerSize      = 124
	pixelFormatSize = 32
	dx10HeaderSize  = 20

	ddpfFourCC = 0x00000004

	ddsdMipmapCount = 0x00020000
	ddscapsMipmap   = 0x00400008 // complex | mipmap, set whenever mipMapCount > 1.
	ddscapsTexture  = 0x00001000
)

var fourCCBC1 = [4]byte{'D', 'X', 'T', '1'}
var fourCCBC3 = [4]byte{'D', 'X', 'T', '5'}
var fourCCBC4 = [4]byte{'A', 'T', 'I', '1'}
var fourCCBC5 = [4]byte{'A', 'T', 'I', '2'}
var fourCCDX10 = [4]byte{'D', 'X', '1', '0'}

const (
	dxgiFormatBC1Unorm = 71
	dxgiFormatBC3Unorm = 77
	dxgiFormatBC4Unorm = 80
	dxgiFormatBC5Unorm = 83
)

func formatFromFourCC(fourCC [4]byte) squish.Format {
	switch fourCC {
	case fourCCBC1:
		return squish.FormatBC1
	case fourCCBC3:
		return squish.FormatBC3
	case fourCCBC4:
		return squish.FormatBC4
	case fourCCBC5:
		return squish.FormatBC5
	}
	return squish.FormatInvalid
}

func fourCCFromFormat(f squish.Format) [4]byte {
	switch f {
	case squish.FormatBC1:
		return fourCCBC1
	case squish.FormatBC3:
		return fourCCBC3
	case squish.FormatBC4:
		return fourCCBC4
	case squish.FormatBC5:
		return fourCCBC5
	}
	return [4]byte{}
}

func formatFromDXGI(v uint32) squish.Format {
	switch v {
	case dxgiFormatBC1Unorm:
		return squish.FormatBC1
	case dxgiFormatBC3Unorm:
		return squish.FormatBC3
	case dxgiFormatBC4Unorm:
		return squish.FormatBC4
	case dxgiFormatBC5Unorm:
		return squish.FormatBC5
	}
	return squish.FormatInvalid
}

func dxgiFromFormat(f squish.Format) uint32 {
	switch f {
	case squish.FormatBC1:
		return dxgiFormatBC1Unorm
	case squish.FormatBC3:
		return dxgiFormatBC3Unorm
	case squish.FormatBC4:
		return dxgiFormatBC4Unorm
	case squish.FormatBC5:
		return dxgiFormatBC5Unorm
	}
	return 0
}

type header struct {
	width, height uint32
	mipMapCount   uint32
	format        squish.Format
}

func decodeHeader(r io.Reader) (header, error) {
	buf := make([]byte, 4+headerSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return header{}, ErrNotADDSFile
	}
	if buf[0] != Magic[0] || buf[1] != Magic[1] || buf[2] != Magic[2] || buf[3] != Magic[3] {
		return header{}, ErrNotADDSFile
	}
	le := binary.LittleEndian
	b := buf[4:]
	if le.Uint32(b[0:4]) != headerSize {
		return header{}, ErrNotADDSFile
	}
	h := header{
		height: le.Uint32(b[8:12]),
		width:  le.Uint32(b[12:16]),
	}
	mipMapCount := le.Uint32(b[24:28])
	if mipMapCount == 0 {
		mipMapCount = 1
	}
	h.mipMapCount = mipMapCount

	pf := b[72 : 72+pixelFormatSize]
	if le.Uint32(pf[4:8])&ddpfFourCC == 0 {
		return header{}, ErrNotADDSFile
	}
	var fourCC [4]byte
	copy(fourCC[:], pf[8:12])

	if fourCC == fourCCDX10 {
		var ext [dx10HeaderSize]byte
		if _, err := io.ReadFull(r, ext[:]); err != nil {
			return header{}, ErrNotADDSFile
		}
		h.format = formatFromDXGI(le.Uint32(ext[0:4]))
	} else {
		h.format = formatFromFourCC(fourCC)
	}
	if h.format == squish.FormatInvalid {
		return header{}, ErrNotADDSFile
	}
	return h, nil
}

// DecodeConfig reads a DDS image configuration from r.
func DecodeConfig(r io.Reader) (image.Config, error) {
	h, err := decodeHeader(r)
	if err != nil {
		return image.Config{}, err
	}
	return image.Config{
		ColorModel: color.NRGBAModel,
		Width:      int(h.width),
		Height:     int(h.height),
	}, nil
}

// Decode reads every mip level of a DDS image from r and returns the base
// (largest) level. Use DecodeLevels to read the whole chain.
func Decode(r io.Reader) (image.Image, error) {
	levels, err := DecodeLevels(r)
	if err != nil {
		return nil, err
	}
	return levels[0], nil
}

// DecodeLevels reads every mip level of a DDS image from r, largest first.
func DecodeLevels(r io.Reader) ([]image.Image, error) {
	h, err := decodeHeader(r)
	if err != nil {
		return nil, err
	}
	bpb := h.format.BytesPerBlock()
	if bpb == 0 {
		return nil, ErrBadArgument
	}

	levels := make([]image.Image, 0, h.mipMapCount)
	w, hh := int(h.width), int(h.height)
	for level := uint32(0); level < h.mipMapCount; level++ {
		bw, bh := (w+3)/4, (hh+3)/4
		buf := make([]byte, bw*bh*bpb)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, ErrNotADDSFile
		}
		m, err := squish.Decode(buf, h.format, w, hh)
		if err != nil {
			return nil, err
		}
		levels = append(levels, m)
		if w > 1 {
			w /= 2
		}
		if hh > 1 {
			hh /= 2
		}
	}
	return levels, nil
}

// EncodeOptions are optional arguments to Encode. The zero value is valid
// and means squish.FormatBC1 with no additional mip levels.
type EncodeOptions struct {
	Format squish.Format

	// MipLevels holds each additional level after the base image, in
	// descending-size order, each expected to already be half the width
	// and height of the previous one. This package only lays out the
	// chain: producing these images from the base is out of scope.
	MipLevels []image.Image
}

// Encode writes src (and any additional options.MipLevels) to w as a DDS
// file in the BC format options.Format names.
func Encode(w io.Writer, src image.Image, options *EncodeOptions) error {
	b := src.Bounds()
	if (b.Dx() > 65532) || (b.Dy() > 65532) {
		return ErrImageIsTooLarge
	}

	f := squish.FormatBC1
	var mips []image.Image
	if options != nil {
		if options.Format != 0 {
			f = options.Format
		}
		mips = options.MipLevels
	}
	if f.BytesPerBlock() == 0 {
		return ErrBadArgument
	}

	levels := append([]image.Image{src}, mips...)
	mipMapCount := uint32(len(levels))

	le := binary.LittleEndian
	out := make([]byte, 0, 4+headerSize)
	out = append(out, Magic[:]...)
	put := func(v uint32) { out = le.AppendUint32(out, v) }
	put(headerSize)
	flags := uint32(0x1 | 0x2 | 0x4 | 0x1000) // CAPS|HEIGHT|WIDTH|PIXELFORMAT
	if mipMapCount > 1 {
		flags |= ddsdMipmapCount
	}
	put(flags)
	put(uint32(b.Dy()))
	put(uint32(b.Dx()))
	put(0) // dwPitchOrLinearSize
	put(0) // dwDepth
	put(mipMapCount)
	for i := 0; i < 11; i++ {
		put(0) // dwReserved1
	}
	// DDS_PIXELFORMAT.
	put(pixelFormatSize)
	put(ddpfFourCC)
	fourCC := fourCCFromFormat(f)
	out = append(out, fourCC[:]...)
	put(0) // dwRGBBitCount
	put(0) // dwRBitMask
	put(0) // dwGBitMask
	put(0) // dwBBitMask
	put(0) // dwABitMask

	caps := uint32(ddscapsTexture)
	if mipMapCount > 1 {
		caps = ddscapsMipmap
	}
	put(caps)
	put(0) // dwCaps2
	put(0) // dwCaps3
	put(0) // dwCaps4
	put(0) // dwReserved2

	if _, err := w.Write(out); err != nil {
		return err
	}

	for _, level := range levels {
		buf, err := squish.Encode(level, f)
		if err != nil {
			return err
		}
		if _, err := w.Write(buf); err != nil {
			return err
		}
	}
	return nil
}
