// Copyright 2025 The Etc2 Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

// ----------------

// Package ktx implements the legacy KTX1 container format for ETC textures.
//
// It follows lib/pkm's shape exactly (a small fixed header, a
// decodeHeader/Decode/Encode trio, sentinel errors), generalized to KTX1's
// 64-byte header, its key-value metadata block and its single length-
// prefixed mip image (this package only ever writes one mip level; see
// DESIGN.md for why a full mip chain is out of scope).
package ktx

import (
	"encoding/binary"
	"errors"
	"image"
	"io"

	"github.com/nigeltao/texpack/lib/etc2"
)

// Identifier is the 12-byte magic every KTX1 file starts with.
var Identifier = [12]byte{
	0xAB, 'K', 'T', 'X', ' ', '1', '1', 0xBB, '\r', '\n', 0x1A, '\n',
}

var (
	ErrBadArgument     = errors.New("ktx: bad argument")
	ErrNotAKTXFile     = errors.New("ktx: not a KTX file")
	ErrImageIsTooLarge = errors.New("ktx: image is too large")
)

func init() {
	image.RegisterFormat("ktx", string(Identifier[:]), Decode, DecodeConfig)
}

const (
	endiannessLE             = 0x04030201
	headerSize               = 64
	glTypeCompressed         = 0
	glFormatCompressed       = 0
	glBaseInternalFormatRGB  = 0x1907
	glBaseInternalFormatRGBA = 0x1908
	glBaseInternalFormatRed  = 0x1903
	glBaseInternalFormatRG   = 0x8227
)

// header mirrors the 64-byte KTX1 header, minus the endianness word (which
// this package only ever writes as little-endian and validates on read).
type header struct {
	glType                uint32
	glTypeSize            uint32
	glFormat              uint32
	glInternalFormat      uint32
	glBaseInternalFormat  uint32
	pixelWidth            uint32
	pixelHeight           uint32
	pixelDepth            uint32
	numberOfArrayElements uint32
	numberOfFaces         uint32
	numberOfMipmapLevels  uint32
	bytesOfKeyValueData   uint32
}

func glBaseInternalFormatFor(f etc2.Format) uint32 {
	switch {
	case f.IsEAC() && f.IsTwoChannel():
		return glBaseInternalFormatRG
	case f.IsEAC():
		return glBaseInternalFormatRed
	case f.IsPunchThrough() || f == etc2.FormatETC2RGBA || f == etc2.FormatETC2SRGBA:
		return glBaseInternalFormatRGBA
	default:
		return glBaseInternalFormatRGB
	}
}

func decodeHeader(r io.Reader) (etc2.Format, header, error) {
	buf := make([]byte, headerSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return 0, header{}, ErrNotAKTXFile
	}
	if string(buf[:12]) != string(Identifier[:]) {
		return 0, header{}, ErrNotAKTXFile
	}
	endianness := binary.LittleEndian.Uint32(buf[12:16])
	var bo binary.ByteOrder = binary.LittleEndian
	if endianness != endiannessLE {
		bo = binary.BigEndian
	}

	u32 := func(off int) uint32 { return bo.Uint32(buf[off : off+4]) }
	h := header{
		glType:                u32(16),
		glTypeSize:            u32(20),
		glFormat:              u32(24),
		glInternalFormat:      u32(28),
		glBaseInternalFormat:  u32(32),
		pixelWidth:            u32(36),
		pixelHeight:           u32(40),
		pixelDepth:            u32(44),
		numberOfArrayElements: u32(48),
		numberOfFaces:         u32(52),
		numberOfMipmapLevels:  u32(56),
		bytesOfKeyValueData:   u32(60),
	}
	f := etc2.FormatFromOpenGLInternalFormat(h.glInternalFormat)
	if f.ETCVersion() == 0 {
		return 0, header{}, ErrNotAKTXFile
	}
	if h.pixelDepth > 1 || h.numberOfArrayElements > 0 || h.numberOfFaces > 1 {
		return 0, header{}, ErrNotAKTXFile
	}
	return f, h, nil
}

// DecodeConfig reads a KTX1 image configuration from r.
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

// Decode reads a KTX1 image (its first mip level only) from r.
func Decode(r io.Reader) (image.Image, error) {
	f, h, err := decodeHeader(r)
	if err != nil {
		return nil, err
	}
	if h.bytesOfKeyValueData > 0 {
		if _, err := io.CopyN(io.Discard, r, int64(h.bytesOfKeyValueData)); err != nil {
			return nil, ErrNotAKTXFile
		}
	}

	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, ErrNotAKTXFile
	}
	imageSize := binary.LittleEndian.Uint32(lenBuf[:])

	buf := make([]byte, imageSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, ErrNotAKTXFile
	}

	return etc2.DecodeBytes(buf, f, int(h.pixelWidth), int(h.pixelHeight))
}

// EncodeOptions are optional arguments to Encode. The zero value is valid
// and means etc2.FormatETC1 (whose Format value is zero) at default effort;
// a nil *EncodeOptions means etc2.FormatETC2RGB at default effort.
type EncodeOptions struct {
	Format       etc2.Format
	Metric       etc2.ErrorMetric
	EffortLevel  float32
	MultiPass    bool
	BlockPercent float32
}

// Encode writes src to w in the KTX1 format, as a single mip level with no
// key-value metadata.
func Encode(w io.Writer, src image.Image, options *EncodeOptions) error {
	b := src.Bounds()
	if (b.Dx() > 65532) || (b.Dy() > 65532) {
		return ErrImageIsTooLarge
	}

	f := etc2.FormatETC2RGB
	opts := EncodeOptions{}
	if options != nil {
		opts = *options
		f = opts.Format
	}
	if f.ETCVersion() == 0 {
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

	if _, err := w.Write(Identifier[:]); err != nil {
		return err
	}
	hdr := make([]byte, 0, 52)
	put := func(v uint32) { hdr = binary.LittleEndian.AppendUint32(hdr, v) }
	put(endiannessLE)
	put(glTypeCompressed)
	put(0) // glTypeSize
	put(glFormatCompressed)
	put(f.OpenGLInternalFormat())
	put(glBaseInternalFormatFor(f))
	put(uint32(b.Dx()))
	put(uint32(b.Dy()))
	put(0) // pixelDepth
	put(0) // numberOfArrayElements
	put(1) // numberOfFaces
	put(1) // numberOfMipmapLevels
	put(0) // bytesOfKeyValueData
	if _, err := w.Write(hdr); err != nil {
		return err
	}

	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(buf)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	_, err = w.Write(buf)
	return err
}
