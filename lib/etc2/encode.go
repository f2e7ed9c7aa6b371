// Copyright 2025 The Etc2 Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package etc2

import (
	"bytes"
	"image"
	"io"
)

// EncodeOptions are optional arguments to Encode. The zero value is valid
// and means a single-pass encode at ErrorMetricNumeric with maximum effort.
type EncodeOptions struct {
	// Metric selects the per-channel error weighting; the zero value is
	// ErrorMetricNumeric.
	Metric ErrorMetric

	// EffortLevel bounds how much search each tile's encoder does,
	// loosely on a 0..100 scale (mirroring the original's effort
	// parameter); the zero value is treated as maximum effort.
	EffortLevel float32

	// MultiPass, when true, uses the priority-scheduled multi-pass driver
	// (encodeMultipass in image.go) instead of encodeSinglepass, revisiting
	// the tiles in descending order of remaining error on each pass.
	MultiPass bool

	// BlockPercent (0..100) sets the multi-pass driver's finish quota: the
	// driver stops once that percentage of all tiles has reached zero error.
	// It is only used when MultiPass is set; the zero value is treated as 10.
	BlockPercent float32
}

func (o *EncodeOptions) normalize() EncodeOptions {
	out := EncodeOptions{}
	if o != nil {
		out = *o
	}
	if out.EffortLevel <= 0 {
		out.EffortLevel = 100
	}
	if out.BlockPercent <= 0 {
		out.BlockPercent = 10
	}
	return out
}

// Encode writes src to dst in the ETC format f.
//
// options may be nil, which means a single-pass encode at maximum effort.
func Encode(dst io.Writer, src image.Image, f Format, options *EncodeOptions) error {
	if (dst == nil) || (src == nil) || (f.ETCVersion() == 0) {
		return ErrBadArgument
	}
	b := src.Bounds()
	if (b.Dx() > 65532) || (b.Dy() > 65532) {
		return ErrImageIsTooLarge
	}

	opts := options.normalize()

	var (
		buf []byte
		err error
	)
	if opts.MultiPass {
		buf, err = encodeMultipass(src, f, opts.Metric, opts.EffortLevel, opts.BlockPercent)
	} else {
		buf, err = encodeSinglepass(src, f, opts.Metric, opts.EffortLevel)
	}
	if err != nil {
		return err
	}
	_, err = dst.Write(buf)
	return err
}

// EncodeBytes is a convenience wrapper around Encode for callers (such as
// the container packages) that want the encoded bitstream as a []byte
// instead of writing to an io.Writer.
func EncodeBytes(src image.Image, f Format, options *EncodeOptions) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, src, f, options); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
