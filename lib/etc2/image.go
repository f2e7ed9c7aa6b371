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
	"image/color"
	"sort"
)

// blockGrid returns the number of 4x4 tile columns and rows needed to cover
// a width x height image, rounding up.
func blockGrid(width, height int) (blocksWide, blocksHigh int) {
	return (width + 3) / 4, (height + 3) / 4
}

// encodeSinglepass encodes every tile of src to completion in raster order
// and returns the packed bitstream. Grounded on Image::EncodeSinglepass in
// the original source: one Tile (and its encoder) reused across every
// block, run to IsDone before moving to the next.
func encodeSinglepass(src image.Image, format Format, metric ErrorMetric, effortLevel float32) ([]byte, error) {
	b := src.Bounds()
	width, height := b.Dx(), b.Dy()
	bw, bh := blockGrid(width, height)
	bpb := format.BytesPerBlock()
	if bpb == 0 {
		return nil, ErrBadArgument
	}
	dst := make([]byte, bw*bh*bpb)

	var tile Tile
	i := 0
	for by := 0; by < bh; by++ {
		for bx := 0; bx < bw; bx++ {
			tile.Encode(format, metric, effortLevel, src, b.Min.X+bx*4, b.Min.Y+by*4)
			tile.WriteEncodingBits(dst[i*bpb : i*bpb+bpb])
			i++
		}
	}
	return dst, nil
}

// sortedTile tracks one tile's position, current error, and resumable
// iteration state (Tile.GetIterationCount, with whatever done-high-bit an
// encoder embeds in it) between passes of the multi-pass driver.
type sortedTile struct {
	originX, originY int
	buf              []byte
	err              float32
	iterState        int
}

// encodeMultipass runs the multi-pass priority driver: pass 0 initializes
// every tile and runs one PerformIteration on it; each later pass decodes
// every tile still under consideration back into its search state, runs one
// more PerformIteration, and re-encodes it. A tile whose error reaches zero
// counts down a single finish quota shared by all passes; once the quota is
// exhausted during a pass after the first, the rest of that pass is skipped.
// Between passes the tiles are sorted by descending error and the trailing
// zero-error tail is truncated from further consideration (the original's
// SortedBlock vector resize). The driver stops once the quota is exhausted
// or no tile is left. A zero effort level stops after the first pass,
// matching the original's minimum effort level short-circuit.
//
// Grounded on Image::Encode in the original source, including the
// descending-error sort and the round(0.01*blockPercent*numberOfBlocks)
// finish quota.
func encodeMultipass(src image.Image, format Format, metric ErrorMetric, effortLevel float32, blockPercent float32) ([]byte, error) {
	b := src.Bounds()
	width, height := b.Dx(), b.Dy()
	bw, bh := blockGrid(width, height)
	bpb := format.BytesPerBlock()
	if bpb == 0 {
		return nil, ErrBadArgument
	}
	n := bw * bh
	dst := make([]byte, n*bpb)

	sorted := make([]*sortedTile, n)
	i := 0
	for by := 0; by < bh; by++ {
		for bx := 0; bx < bw; bx++ {
			ox, oy := b.Min.X+bx*4, b.Min.Y+by*4
			sorted[i] = &sortedTile{originX: ox, originY: oy, buf: dst[i*bpb : i*bpb+bpb]}
			i++
		}
	}

	numBlocksToFinish := int(0.01*float64(blockPercent)*float64(n) + 0.5)

	var tile Tile
	for pass := 0; ; pass++ {
		for _, st := range sorted {
			if pass == 0 {
				tile.init(format, metric)
			} else {
				tile.Decode(format, metric, src, st.originX, st.originY, st.buf, st.iterState)
			}
			tile.PerformIteration(src, st.originX, st.originY)
			tile.WriteEncodingBits(st.buf)
			st.iterState = tile.GetIterationCount()

			if tile.IsDone() {
				st.err = 0
			} else {
				st.err = tile.GetError()
			}
			if st.err == 0 {
				numBlocksToFinish--
				if pass > 0 && numBlocksToFinish <= 0 {
					break
				}
			}
		}

		if effortLevel <= 0 {
			break
		}
		if numBlocksToFinish <= 0 {
			break
		}

		sort.Slice(sorted, func(i, j int) bool { return sorted[i].err > sorted[j].err })
		end := len(sorted)
		for end > 0 && sorted[end-1].err <= 0 {
			end--
		}
		sorted = sorted[:end]
		if len(sorted) == 0 {
			break
		}
	}

	return dst, nil
}

// decodeImage reconstructs an image.Image of the given pixel dimensions from
// an ETC2-family bitstream. Grounded on Image::Decode in the original
// source: blocks are decoded in raster order and written transposed back out
// of the column-major tile layout, truncating any padding past
// width/height that the 4x4 tile grid introduced.
func decodeImage(buf []byte, format Format, width, height int) (image.Image, error) {
	bpb := format.BytesPerBlock()
	if bpb == 0 {
		return nil, ErrBadArgument
	}
	bw, bh := blockGrid(width, height)
	if len(buf) < bw*bh*bpb {
		return nil, ErrTruncatedBitmap
	}

	dst, err := format.NewImage(width, height)
	if err != nil {
		return nil, err
	}

	var tex [16]Texel
	i := 0
	for by := 0; by < bh; by++ {
		for bx := 0; bx < bw; bx++ {
			DecodeOnly(format, buf[i*bpb:i*bpb+bpb], &tex)
			writeTileToImage(dst, format, bx*4, by*4, width, height, &tex)
			i++
		}
	}
	return dst.SubImage(image.Rect(0, 0, width, height)), nil
}

// writeTileToImage writes a decoded 4x4 tile's texels into dst at
// (originX, originY), skipping any texel past (width, height) — the part of
// the rightmost/bottommost tile column/row that only existed to round the
// image up to a multiple of 4.
func writeTileToImage(dst image.Image, format Format, originX, originY, width, height int, tex *[16]Texel) {
	for x := 0; x < 4; x++ {
		px := originX + x
		if px >= width {
			continue
		}
		for y := 0; y < 4; y++ {
			py := originY + y
			if py >= height {
				continue
			}
			setPixel(dst, format, px, py, tex[4*x+y])
		}
	}
}

func setPixel(dst image.Image, format Format, x, y int, t Texel) {
	switch img := dst.(type) {
	case *image.Gray16:
		img.SetGray16(x, y, color.Gray16{Y: channel16FromTexel(t.R, format.IsSigned())})
	case *image.RGBA64:
		r := channel16FromTexel(t.R, format.IsSigned())
		g := channel16FromTexel(t.G, format.IsSigned())
		img.SetRGBA64(x, y, color.RGBA64{R: r, G: g, B: 0, A: 0xFFFF})
	case *image.NRGBA:
		img.SetNRGBA(x, y, color.NRGBA{
			R: channel8(t.R), G: channel8(t.G), B: channel8(t.B), A: channel8(t.A),
		})
	case *image.RGBA:
		a := uint8(0xFF)
		if format.IsPunchThrough() {
			a = channel8(t.A)
		}
		if a == 0 {
			img.SetRGBA(x, y, color.RGBA{})
		} else {
			img.SetRGBA(x, y, color.RGBA{R: channel8(t.R), G: channel8(t.G), B: channel8(t.B), A: a})
		}
	}
}

// channel16FromTexel maps a decoded R11/RG11 texel value back to a 16-bit
// sample: unsigned texels are already normalized to [0,1] by
// decodeR11Float, signed texels to [-1,1], so the signed case re-centers
// around 0x8000 the way Gray16/RGBA64's unsigned 16-bit samples expect a
// signed source to be displayed.
func channel16FromTexel(v float32, signed bool) uint16 {
	if signed {
		v = (v + 1) / 2
	}
	return uint16(clampf(v, 0, 1) * 65535)
}

func channel8(v float32) uint8 {
	return uint8(clampf(v, 0, 1)*255 + 0.5)
}
