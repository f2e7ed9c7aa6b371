// Copyright 2025 The Etc2 Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

// ----------------

// Package ktx2 implements the Khronos KTX2 container format for ETC
// textures: a VkFormat-tagged image with an explicit level index and a
// supercompression-scheme field, following lib/ktx's shape but for the
// newer, fixed-layout KTX2 header rather than KTX1's variable-length one.
package ktx2

import (
	"encoding/binary"
	"errors"
	"image"
	"io"

	"github.com/nigeltao/texpack/lib/etc2"
)

// Identifier is the 12-byte magic every KTX2 file starts with.
var Identifier = [12]byte{
	0xAB, 'K', 'T', 'X', ' ', '2', '0', 0xBB, '\r', '\n', 0x1A, '\n',
}

var (
	ErrBadArgument                 = errors.New("ktx2: bad argument")
	ErrNotAKTX2File                = errors.New("ktx2: not a KTX2 file")
	ErrImageIsTooLarge             = errors.New("ktx2: image is too large")
	ErrUnsupportedSupercompression = errors.New("ktx2: unsupported supercompression scheme")
)

func init() {
	image.RegisterFormat("ktx2", string(Identifier[:]), Decode, DecodeConfig)
}

const (
	headerSize           = 12 + 4*9 // identifier + 9 uint32 fields.
	levelIndexEntrySize  = 3 * 8    // byteOffset, byteLength, uncompressedByteLength.
	supercompressionNone = 0
)

// vkFormat values for the ETC2/EAC formats this package maps to etc2.Format,
// from the Vulkan specification's VkFormat enumeration.
const (
	vkFormatETC2R8G8B8UnormBlock   = 147
	vkFormatETC2R8G8B8SrgbBlock    = 148
	vkFormatETC2R8G8B8A1UnormBlock = 149
	vkFormatETC2R8G8B8A1SrgbBlock  = 150
	vkFormatETC2R8G8B8A8UnormBlock = 151
	vkFormatETC2R8G8B8A8SrgbBlock  = 152
	vkFormatEACR11UnormBlock       = 153
	vkFormatEACR11SnormBlock       = 154
	vkFormatEACR11G11UnormBlock    = 155
	vkFormatEACR11G11SnormBlock    = 156
)

func vkFormatFor(f etc2.Format) uint32 {
	switch f {
	case etc2.FormatETC2RGB:
		return vkFormatETC2R8G8B8UnormBlock
	case etc2.FormatETC2SRGB:
		return vkFormatETC2R8G8B8SrgbBlock
	case etc2.FormatETC2RGBA1:
		return vkFormatETC2R8G8B8A1UnormBlock
	case etc2.FormatETC2SRGBA1:
		return vkFormatETC2R8G8B8A1SrgbBlock
	case etc2.FormatETC2RGBA:
		return vkFormatETC2R8G8B8A8UnormBlock
	case etc2.FormatETC2SRGBA:
		return vkFormatETC2R8G8B8A8SrgbBlock
	case etc2.FormatETC2UnsignedR11:
		return vkFormatEACR11UnormBlock
	case etc2.FormatETC2SignedR11:
		return vkFormatEACR11SnormBlock
	case etc2.FormatETC2UnsignedRG11:
		return vkFormatEACR11G11UnormBlock
	case etc2.FormatETC2SignedRG11:
		return vkFormatEACR11G11SnormBlock
	}
	return 0
}

func formatFromVkFormat(v uint32) etc2.Format {
	switch v {
	case vkFormatETC2R8G8B8UnormBlock:
		return etc2.FormatETC2RGB
	case vkFormatETC2R8G8B8SrgbBlock:
		return etc2.FormatETC2SRGB
	case vkFormatETC2R8G8B8A1UnormBlock:
		return etc2.FormatETC2RGBA1
	case vkFormatETC2R8G8B8A1SrgbBlock:
		return etc2.FormatETC2SRGBA1
	case vkFormatETC2R8G8B8A8UnormBlock:
		return etc2.FormatETC2RGBA
	case vkFormatETC2R8G8B8A8SrgbBlock:
		return etc2.FormatETC2SRGBA
	case vkFormatEACR11UnormBlock:
		return etc2.FormatETC2UnsignedR11
	case vkFormatEACR11SnormBlock:
		return etc2.FormatETC2SignedR11
	case vkFormatEACR11G11UnormBlock:
		return etc2.FormatETC2UnsignedRG11
	case vkFormatEACR11G11SnormBlock:
		return etc2.FormatETC2SignedRG11
	}
	return etc2.FormatInvalid
}

type header struct {
	vkFormat               uint32
	typeSize               uint32
	pixelWidth             uint32
	pixelHeight            uint32
	pixelDepth             uint32
	layerCount             uint32
	faceCount              uint32
	levelCount             uint32
	supercompressionScheme uint32
}

// This package only ever reads and writes a single mip level with no key
// value data, data format descriptor or supercompression global data: the
// three variable-length sections KTX2 places between the fixed header and
// the level index are written as zero-length, matching lib/ktx's "one
// level, no metadata" simplification for the same reason (mipmap
// generation is a non-goal; see DESIGN.md).
const (
	dfdByteLength = 0
	kvdByteLength = 0
	sgdByteLength = 0
)

func decodeHeader(r io.Reader) (etc2.Format, header, error) {
	buf := make([]byte, headerSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return 0, header{}, ErrNotAKTX2File
	}
	if string(buf[:12]) != string(Identifier[:]) {
		return 0, header{}, ErrNotAKTX2File
	}
	le := binary.LittleEndian
	h := header{
		vkFormat:               le.Uint32(buf[12:16]),
		typeSize:               le.Uint32(buf[16:20]),
		pixelWidth:             le.Uint32(buf[20:24]),
		pixelHeight:            le.Uint32(buf[24:28]),
		pixelDepth:             le.Uint32(buf[28:32]),
		layerCount:             le.Uint32(buf[32:36]),
		faceCount:              le.Uint32(buf[36:40]),
		levelCount:             le.Uint32(buf[40:44]),
		supercompressionScheme: le.Uint32(buf[44:48]),
	}
	if h.supercompressionScheme != supercompressionNone {
		return 0, header{}, ErrUnsupportedSupercompression
	}
	if h.pixelDepth > 1 || h.layerCount > 0 || h.faceCount > 1 || h.levelCount != 1 {
		return 0, header{}, ErrNotAKTX2File
	}
	f := formatFromVkFormat(h.vkFormat)
	if f.ETCVersion() == 0 {
		return 0, header{}, ErrNotAKTX2File
	}
	return f, h, nil
}

// DecodeConfig reads a KTX2 image configuration from r.
func DecodeConfig(r io.Reader) (image.Config, error) {
	f, h, err := decodeHeader(r)
	if err != nil {
		return image.Config{}, err
	}
	return image.Config{
		ColorModel: f.ColorModel(),
		Width:      int(h.pixelWidth),
		Height:     int(h.pixelHeight),
	}, nil
}

// Decode reads a KTX2 image (its first and only mip level) from r.
func Decode(r io.Reader) (image.Image, error) {
	f, h, err := decodeHeader(r)
	if err != nil {
		return nil, err
	}

	// Index section: dfdByteOffset/Length, kvdByteOffset/Length,
	// sgdByteOffset/Length (6 uint32), then one level-index entry.
	indexBuf := make([]byte, 24+levelIndexEntrySize)
	if _, err := io.ReadFull(r, indexBuf); err != nil {
		return nil, ErrNotAKTX2File
	}
	le := binary.LittleEndian
	byteLength := le.Uint64(indexBuf[24+8 : 24+16])

	buf := make([]byte, byteLength)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, ErrNotAKTX2File
	}
	return etc2.DecodeBytes(buf, f, int(h.pixelWidth), int(h.pixelHeight))
}

// EncodeOptions are optional arguments to Encode. The zero value is valid
// and means etc2.FormatETC2RGB at default effort.
type EncodeOptions struct {
	Format       etc2.Format
	Metric       etc2.ErrorMetric
	EffortLevel  float32
	MultiPass    bool
	BlockPercent float32
}

// Encode writes src to w in the KTX2 format, as a single uncompressed mip
// level with no data format descriptor or key-value metadata.
func Encode(w io.Writer, src image.Image, options *EncodeOptions) error {
	b := src.Bounds()
	if (b.Dx() > 65532) || (b.Dy() > 65532) {
		return ErrImageIsTooLarge
	}

	f := etc2.FormatETC2RGB
	opts := EncodeOptions{}
	if options != nil {
		opts = *options
	}
	if opts.Format != 0 {
		f = opts.Format
	}
	vk := vkFormatFor(f)
	if vk == 0 {
		return ErrBadArgument
	}

	buf, err := etc2.EncodeBytes(src, f, &etc2.EncodeOptions{
		Metric:       opts.Metric,
		EffortLevel:  opts.EffortLevel,
		MultiPass:    opts.MultiPass,
		BlockPercent: opts.BlockPercent,
	})
	if err != nil {
		return err
	}

	le := binary.LittleEndian
	out := make([]byte, 0, headerSize+24+levelIndexEntrySize)
	out = append(out, Identifier[:]...)
	put := func(v uint32) { out = le.AppendUint32(out, v) }
	put(vk)
	put(0) // typeSize; 0 for block-compressed formats.
	put(uint32(b.Dx()))
	put(uint32(b.Dy()))
	put(0) // pixelDepth
	put(0) // layerCount
	put(1) // faceCount
	put(1) // levelCount
	put(supercompressionNone)

	dfdOffset := uint32(len(out) + 24 + levelIndexEntrySize)
	put(dfdOffset)
	put(dfdByteLength)
	put(dfdOffset)
	put(kvdByteLength)
	put(0) // sgdByteOffset
	put(sgdByteLength)

	levelOffset := uint64(len(out) + levelIndexEntrySize)
	out = le.AppendUint64(out, levelOffset)
	out = le.AppendUint64(out, uint64(len(buf)))
	out = le.AppendUint64(out, uint64(len(buf)))

	if _, err := w.Write(out); err != nil {
		return err
	}
	_, err = w.Write(buf)
	return err
}
