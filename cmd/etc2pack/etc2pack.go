// Copyright 2025 The Etc2 Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

// ----------------

// etc2pack decodes and encodes the ETC2 (Ericsson Texture Compression 2) lossy
// image file format.
package main

import (
	"bufio"
	"errors"
	"flag"
	"image"
	"image/png"
	"os"

	"github.com/nigeltao/texpack/internal/nie"
	"github.com/nigeltao/texpack/lib/dds"
	"github.com/nigeltao/texpack/lib/etc2"
	"github.com/nigeltao/texpack/lib/ktx"
	"github.com/nigeltao/texpack/lib/ktx2"
	"github.com/nigeltao/texpack/lib/pkm"
	"github.com/nigeltao/texpack/lib/squish"

	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var (
	decodeFlag = flag.Bool("decode", false, "whether to decode the input")
	encodeFlag = flag.Bool("encode", false, "whether to encode the input")
	outputFlag = flag.String("output", "", "output format")
	formatFlag = flag.String("format", "", "ETC2 format to encode to")
	effortFlag = flag.Float64("effort", 100, "encode effort, 0 to 100")
)

const usageStr = `etc2pack decodes and encodes the ETC2 lossy image file format.

Usage: choose one of

    etc2pack -decode [path]
    etc2pack -encode [path]

The path to the input image file is optional. If omitted, stdin is read.

When decoding you can also pass one of these flags (before the path):

    -output=nie-bn8
    -output=png (this is the default)

When encoding you can also pass these flags (before the path):

    -output=ktx
    -output=ktx2
    -output=dds
    -output=pkm (this is the default)
    -format=etc2-rgb (this is the default; see below for the full list)
    -effort=0..100 (100 is the default; ignored for -output=dds and -output=pkm)

Valid -format values for -output=pkm/ktx/ktx2: etc1, etc2-rgb, etc2-rgba,
etc2-rgba1, etc2-srgb, etc2-srgba, etc2-srgba1, etc2-r11u, etc2-r11s,
etc2-rg11u, etc2-rg11s.

Valid -format values for -output=dds: bc1, bc3, bc4, bc5.

The output image (in NIE/PNG or KTX/KTX2/DDS/PKM format) is written to stdout.

Decode inputs KTX/KTX2/DDS/PKM and outputs NIE/PNG.
Encode inputs BMP, GIF, JPEG, PNG, TIFF or WEBP and outputs KTX/KTX2/DDS/PKM.
`

var (
	ErrBadOutputFlag         = errors.New("main: bad -output flag")
	ErrBadFormatFlag         = errors.New("main: bad -format flag")
	ErrBadEffortFlag         = errors.New("main: bad -effort flag")
	ErrUnknownInputContainer = errors.New("main: input is not KTX, KTX2, DDS or PKM")
)

func main() {
	if err := main1(); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

func main1() error {
	flag.Usage = func() { os.Stderr.WriteString(usageStr) }
	flag.Parse()

	inFile := os.Stdin
	switch flag.NArg() {
	case 0:
		// No-op.
	case 1:
		f, err := os.Open(flag.Arg(0))
		if err != nil {
			return err
		}
		defer f.Close()
		inFile = f
	default:
		return errors.New("too many filenames; the maximum is one")
	}

	if *decodeFlag && !*encodeFlag {
		return decode(inFile)
	}
	if !*decodeFlag && *encodeFlag {
		return encode(inFile)
	}
	return errors.New("must specify exactly one of -decode, -encode or -help")
}

// sniffLen is the length of the longest container magic (the 12-byte KTX1
// and KTX2 identifiers), enough to peek without consuming input the chosen
// decoder still needs to read.
const sniffLen = 12

func decode(inFile *os.File) error {
	switch *outputFlag {
	case "", "nie-bn8", "png":
		// No-op.
	default:
		return ErrBadOutputFlag
	}

	br := bufio.NewReader(inFile)
	magic, err := br.Peek(sniffLen)
	if err != nil && len(magic) == 0 {
		return err
	}

	var src image.Image
	switch {
	case len(magic) >= 4 && string(magic[:4]) == pkm.Magic:
		src, err = pkm.Decode(br)
	case len(magic) >= len(ktx2.Identifier) && string(magic[:len(ktx2.Identifier)]) == string(ktx2.Identifier[:]):
		src, err = ktx2.Decode(br)
	case len(magic) >= len(ktx.Identifier) && string(magic[:len(ktx.Identifier)]) == string(ktx.Identifier[:]):
		src, err = ktx.Decode(br)
	case len(magic) >= len(dds.Magic) && string(magic[:len(dds.Magic)]) == string(dds.Magic[:]):
		src, err = dds.Decode(br)
	default:
		return ErrUnknownInputContainer
	}
	if err != nil {
		return err
	}

	if *outputFlag == "nie-bn8" {
		dst, err := nie.EncodeBN8(src)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(dst)
		return err
	}
	return png.Encode(os.Stdout, src)
}

var formatsByName = map[string]etc2.Format{
	"etc1":        etc2.FormatETC1,
	"etc2-rgb":    etc2.FormatETC2RGB,
	"etc2-rgba":   etc2.FormatETC2RGBA,
	"etc2-rgba1":  etc2.FormatETC2RGBA1,
	"etc2-srgb":   etc2.FormatETC2SRGB,
	"etc2-srgba":  etc2.FormatETC2SRGBA,
	"etc2-srgba1": etc2.FormatETC2SRGBA1,
	"etc2-r11u":   etc2.FormatETC2UnsignedR11,
	"etc2-r11s":   etc2.FormatETC2SignedR11,
	"etc2-rg11u":  etc2.FormatETC2UnsignedRG11,
	"etc2-rg11s":  etc2.FormatETC2SignedRG11,
}

var squishFormatsByName = map[string]squish.Format{
	"bc1": squish.FormatBC1,
	"bc3": squish.FormatBC3,
	"bc4": squish.FormatBC4,
	"bc5": squish.FormatBC5,
}

func encode(inFile *os.File) error {
	outputContainer := "pkm"
	switch *outputFlag {
	case "":
		// No-op.
	case "ktx", "ktx2", "dds", "pkm":
		outputContainer = *outputFlag
	default:
		return ErrBadOutputFlag
	}

	if *effortFlag < 0 || *effortFlag > 100 {
		return ErrBadEffortFlag
	}

	src, _, err := image.Decode(bufio.NewReader(inFile))
	if err != nil {
		return err
	}

	if outputContainer == "dds" {
		sf := squish.FormatBC1
		if *formatFlag != "" {
			var ok bool
			sf, ok = squishFormatsByName[*formatFlag]
			if !ok {
				return ErrBadFormatFlag
			}
		}
		return dds.Encode(os.Stdout, src, &dds.EncodeOptions{Format: sf})
	}

	f := etc2.FormatETC2RGB
	if *formatFlag != "" {
		var ok bool
		f, ok = formatsByName[*formatFlag]
		if !ok {
			return ErrBadFormatFlag
		}
	}

	switch outputContainer {
	case "ktx":
		return ktx.Encode(os.Stdout, src, &ktx.EncodeOptions{
			Format:      f,
			EffortLevel: float32(*effortFlag),
		})
	case "ktx2":
		return ktx2.Encode(os.Stdout, src, &ktx2.EncodeOptions{
			Format:      f,
			EffortLevel: float32(*effortFlag),
		})
	default:
		return pkm.Encode(os.Stdout, src, &pkm.EncodeOptions{Format: f})
	}
}
