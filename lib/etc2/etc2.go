// Copyright 2025 The Etc2 Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

// ----------------

// Package etc2 implements the ETC (Ericsson Texture Compression) block
// compression engine, supporting versions 1 and 2, plus EAC R11/RG11.
//
// This package is concerned with the 4x4-tile codec only: turning an
// image.Image into a stream of 8- or 16-byte compressed blocks, and back.
// Container formats (PKM, KTX, KTX2, DDS) live in sibling packages and call
// Encode/Decode exactly once per image or mip level.
//
// ETC is specified at
// https://registry.khronos.org/DataFormat/specs/1.3/dataformat.1.3.html#ETC2
package etc2

import (
	"errors"
	"image"
	"image/color"
)

var (
	ErrBadArgument     = errors.New("etc2: bad argument")
	ErrBadImageType    = errors.New("etc2: bad image type")
	ErrImageIsTooLarge = errors.New("etc2: image is too large")
	ErrTruncatedBitmap = errors.New("etc2: truncated encoding bits")
)

// SubsettableImage is an image.Image that also has a SubImage method, like all
// of the Go standard library's image types.
type SubsettableImage interface {
	image.Image
	SubImage(r image.Rectangle) image.Image
}

// AlphaModel is a Format's transparency model.
type AlphaModel uint8

const (
	AlphaModelOpaque = AlphaModel(0)
	AlphaModel1Bit   = AlphaModel(1)
	AlphaModel8Bit   = AlphaModel(2)
)

// ErrorMetric selects the per-channel weighting used when an encoder compares
// a candidate decoded tile against the source tile.
type ErrorMetric uint8

const (
	// ErrorMetricNumeric weighs R, G and B equally and ignores alpha.
	ErrorMetricNumeric = ErrorMetric(0)

	// ErrorMetricRec709 applies the 299/587/114 luma weights (the ITU-R
	// BT.601 coefficients), matching the perceptual error used by the
	// original ETCPACK tool.
	ErrorMetricRec709 = ErrorMetric(1)

	// ErrorMetricGray assumes R==G==B and only measures the red channel.
	ErrorMetricGray = ErrorMetric(2)
)

// weights returns the per-channel (R, G, B) integer weights the RGB8
// encoder applies to its squared channel errors.
func (em ErrorMetric) weights() [3]int32 {
	switch em {
	case ErrorMetricRec709:
		return [3]int32{299, 587, 114}
	case ErrorMetricGray:
		return [3]int32{1, 0, 0}
	default:
		return [3]int32{1, 1, 1}
	}
}

// perTexelToleranceSquared returns a per-texel squared-error tolerance (in
// 8-bit-channel units) for the metric. No encoder in this package consults
// it: the RGB8 search has no error-based early exit.
func (em ErrorMetric) perTexelToleranceSquared() float32 {
	switch em {
	case ErrorMetricRec709:
		return 5
	case ErrorMetricGray:
		return 1
	default:
		return 3
	}
}

// Format gives the "color type" specialization of the ETC family.
//
// A non-negative numerical int8 value matches that used in the PKM file
// format.
//
// Negative values have no counterpart in the KTX or PKM file formats. They can
// be passed to Encode (they represent a subset of a larger format; ETC1S is a
// subset of ETC1) but are not used by Decode.
type Format int8

const (
	FormatInvalid = Format(-2)
	FormatETC1S   = Format(-1)

	FormatETC1 = Format(0x00)

	FormatETC2RGB   = Format(0x01)
	FormatETC2RGBA  = Format(0x03)
	FormatETC2RGBA1 = Format(0x04)

	FormatETC2UnsignedR11  = Format(0x05)
	FormatETC2UnsignedRG11 = Format(0x06)
	FormatETC2SignedR11    = Format(0x07)
	FormatETC2SignedRG11   = Format(0x08)

	FormatETC2SRGB   = Format(0x09)
	FormatETC2SRGBA  = Format(0x0A)
	FormatETC2SRGBA1 = Format(0x0B)
)

// AlphaModel returns the Format's transparency model.
func (f Format) AlphaModel() AlphaModel {
	switch f {
	case FormatETC1S,
		FormatETC1,
		FormatETC2RGB,
		FormatETC2SRGB,
		FormatETC2UnsignedR11,
		FormatETC2UnsignedRG11,
		FormatETC2SignedR11,
		FormatETC2SignedRG11:
		return AlphaModelOpaque

	case FormatETC2RGBA,
		FormatETC2SRGBA:
		return AlphaModel8Bit

	case FormatETC2RGBA1,
		FormatETC2SRGBA1:
		return AlphaModel1Bit
	}

	return 0
}

// IsSigned reports whether f is one of the signed EAC formats.
func (f Format) IsSigned() bool {
	return f == FormatETC2SignedR11 || f == FormatETC2SignedRG11
}

// IsTwoChannel reports whether f packs two independent R11 planes (RG11).
func (f Format) IsTwoChannel() bool {
	return f == FormatETC2UnsignedRG11 || f == FormatETC2SignedRG11
}

// IsEAC reports whether f is one of the R11/RG11 single- or two-channel
// formats, which bypass the RGB8/A8 tile encoders entirely.
func (f Format) IsEAC() bool {
	switch f {
	case FormatETC2UnsignedR11, FormatETC2SignedR11,
		FormatETC2UnsignedRG11, FormatETC2SignedRG11:
		return true
	}
	return false
}

// IsPunchThrough reports whether f uses a 1-bit alpha channel.
func (f Format) IsPunchThrough() bool {
	return f == FormatETC2RGBA1 || f == FormatETC2SRGBA1
}

// BytesPerBlock returns the Format-dependent number of bytes used to encode
// each 4x4 pixel block.
func (f Format) BytesPerBlock() int {
	switch f {
	case FormatETC1S,
		FormatETC1,
		FormatETC2RGB,
		FormatETC2RGBA1,
		FormatETC2UnsignedR11,
		FormatETC2SignedR11,
		FormatETC2SRGB,
		FormatETC2SRGBA1:
		return 8

	case FormatETC2RGBA,
		FormatETC2UnsignedRG11,
		FormatETC2SignedRG11,
		FormatETC2SRGBA:
		return 16
	}

	return 0
}

// ETCVersion returns 0, 1 or 2 depending on whether the Format is invalid,
// from ETC1 or from ETC2.
func (f Format) ETCVersion() int {
	switch f {
	case FormatETC1S,
		FormatETC1:
		return 1

	case FormatETC2RGB,
		FormatETC2RGBA,
		FormatETC2RGBA1,
		FormatETC2UnsignedR11,
		FormatETC2UnsignedRG11,
		FormatETC2SignedR11,
		FormatETC2SignedRG11,
		FormatETC2SRGB,
		FormatETC2SRGBA,
		FormatETC2SRGBA1:
		return 2
	}

	return 0
}

// ColorModel returns the Go standard library's color model that best matches
// the Format.
func (f Format) ColorModel() color.Model {
	switch f {
	case FormatETC1S,
		FormatETC1,
		FormatETC2RGB,
		FormatETC2RGBA1,
		FormatETC2SRGB,
		FormatETC2SRGBA1:
		return color.RGBAModel

	case FormatETC2RGBA,
		FormatETC2SRGBA:
		return color.NRGBAModel

	case FormatETC2UnsignedR11,
		FormatETC2SignedR11:
		return color.Gray16Model

	case FormatETC2UnsignedRG11,
		FormatETC2SignedRG11:
		return color.RGBA64Model
	}

	return nil
}

// NewImage returns an image.Image, whose concrete type is one of the standard
// library's image types, that's suitable for the Format.
//
// The requested width and height will be rounded up to a multiple of 4.
//
// It returns an error if the width or height is negative or above 65535.
func (f Format) NewImage(width int, height int) (SubsettableImage, error) {
	if (width < 0) || (width >= 65536) ||
		(height < 0) || (height >= 65536) {
		return nil, ErrBadArgument
	}
	r := image.Rect(0, 0, (width+3)&^3, (height+3)&^3)

	switch f {
	case FormatETC1S,
		FormatETC1,
		FormatETC2RGB,
		FormatETC2RGBA1,
		FormatETC2SRGB,
		FormatETC2SRGBA1:
		return image.NewRGBA(r), nil

	case FormatETC2RGBA,
		FormatETC2SRGBA:
		return image.NewNRGBA(r), nil

	case FormatETC2UnsignedR11,
		FormatETC2SignedR11:
		return image.NewGray16(r), nil

	case FormatETC2UnsignedRG11,
		FormatETC2SignedRG11:
		return image.NewRGBA64(r), nil
	}

	return nil, ErrBadArgument
}

// OpenGLInternalFormat returns the OpenGL internalFormat enum value for f,
// suitable for passing to the glCompressedTexImage2D function.
func (f Format) OpenGLInternalFormat() uint32 {
	switch f {
	case FormatETC1S, FormatETC1:
		return 0x8D64 // GL_ETC1_RGB8_OES
	case FormatETC2RGB:
		return 0x9274 // GL_COMPRESSED_RGB8_ETC2
	case FormatETC2RGBA:
		return 0x9278 // GL_COMPRESSED_RGBA8_ETC2_EAC
	case FormatETC2RGBA1:
		return 0x9276 // GL_COMPRESSED_RGB8_PUNCHTHROUGH_ALPHA1_ETC2
	case FormatETC2UnsignedR11:
		return 0x9270 // GL_COMPRESSED_R11_EAC
	case FormatETC2UnsignedRG11:
		return 0x9272 // GL_COMPRESSED_RG11_EAC
	case FormatETC2SignedR11:
		return 0x9271 // GL_COMPRESSED_SIGNED_R11_EAC
	case FormatETC2SignedRG11:
		return 0x9273 // GL_COMPRESSED_SIGNED_RG11_EAC
	case FormatETC2SRGB:
		return 0x9275 // GL_COMPRESSED_SRGB8_ETC2
	case FormatETC2SRGBA:
		return 0x9279 // GL_COMPRESSED_SRGB8_ALPHA8_ETC2_EAC
	case FormatETC2SRGBA1:
		return 0x9277 // GL_COMPRESSED_SRGB8_PUNCHTHROUGH_ALPHA1_ETC2
	}

	return 0
}

// FormatFromOpenGLInternalFormat is the inverse of OpenGLInternalFormat, used
// by lib/ktx to recover a Format from a KTX1 header's glInternalFormat field.
func FormatFromOpenGLInternalFormat(glInternalFormat uint32) Format {
	switch glInternalFormat {
	case 0x8D64:
		return FormatETC1
	case 0x9274:
		return FormatETC2RGB
	case 0x9278:
		return FormatETC2RGBA
	case 0x9276:
		return FormatETC2RGBA1
	case 0x9270:
		return FormatETC2UnsignedR11
	case 0x9272:
		return FormatETC2UnsignedRG11
	case 0x9271:
		return FormatETC2SignedR11
	case 0x9273:
		return FormatETC2SignedRG11
	case 0x9275:
		return FormatETC2SRGB
	case 0x9279:
		return FormatETC2SRGBA
	case 0x9277:
		return FormatETC2SRGBA1
	}
	return FormatInvalid
}

// pkmFormats maps the single byte a PKM header stores at offset 7 to a
// Format. Index order matches the PKM file format's own enumeration.
var pkmFormats = [12]Format{
	0x00: FormatETC1,
	0x01: FormatETC2RGB,
	0x02: FormatInvalid,
	0x03: FormatETC2RGBA,
	0x04: FormatETC2RGBA1,
	0x05: FormatETC2UnsignedR11,
	0x06: FormatETC2UnsignedRG11,
	0x07: FormatETC2SignedR11,
	0x08: FormatETC2SignedRG11,
	0x09: FormatETC2SRGB,
	0x0A: FormatETC2SRGBA,
	0x0B: FormatETC2SRGBA1,
}

// PKMFormat returns the byte the PKM container format uses to identify f, or
// -1 if f has no PKM representation.
func (f Format) PKMFormat() int {
	for i, g := range pkmFormats {
		if g == f {
			return i
		}
	}
	return -1
}

// FormatFromPKMFormat is the inverse of PKMFormat.
func FormatFromPKMFormat(pkmFormat int) Format {
	if (pkmFormat < 0) || (pkmFormat >= len(pkmFormats)) {
		return FormatInvalid
	}
	return pkmFormats[pkmFormat]
}
