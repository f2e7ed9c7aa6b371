// Copyright 2025 The Etc2 Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package etc2

import (
	"image"
	"io"
)

// Decode reads width x height pixels' worth of the ETC format f from src and
// returns the reconstructed image.
func Decode(src io.Reader, f Format, width, height int) (image.Image, error) {
	if (src == nil) || (width <= 0) || (height <= 0) || (f.ETCVersion() == 0) {
		return nil, ErrBadArgument
	}
	bw, bh := blockGrid(width, height)
	buf := make([]byte, bw*bh*f.BytesPerBlock())
	if _, err := io.ReadFull(src, buf); err != nil {
		if err == io.ErrUnexpectedEOF || err == io.EOF {
			return nil, ErrTruncatedBitmap
		}
		return nil, err
	}
	return decodeImage(buf, f, width, height)
}

// DecodeBytes is a convenience wrapper around Decode for callers (such as
// the container packages) that already hold the bitstream as a []byte.
func DecodeBytes(buf []byte, f Format, width, height int) (image.Image, error) {
	if f.ETCVersion() == 0 {
		return nil, ErrBadArgument
	}
	bw, bh := blockGrid(width, height)
	if len(buf) < bw*bh*f.BytesPerBlock() {
		return nil, ErrTruncatedBitmap
	}
	return decodeImage(buf, f, width, height)
}
