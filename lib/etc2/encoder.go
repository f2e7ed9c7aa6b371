// Copyright 2025 The Etc2 Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package etc2

// blockEncoder is the shared contract every per-channel block encoder
// (r11Encoder, a8Encoder, rgb8Encoder, and the rgba8Encoder/rgb8a1Encoder
// that compose them) satisfies. It mirrors Block4x4Encoding's virtual
// interface in the original source (Encode/Decode/DecodeOnly/
// PerformIteration/SetEncodingBits/IsDone/GetError/GetIterationCount),
// translated from a C++ base class into a small Go interface so Tile can
// hold whichever concrete encoder its format needs without a type switch on
// every call.
type blockEncoder interface {
	// encode runs PerformIteration in a loop, up to effortLevel's
	// iteration budget, starting from scratch.
	encode(src *[16]Texel, metric ErrorMetric, effortLevel float32)

	// decode reconstructs this encoder's state from an already-encoded
	// block, so a later performIteration call can resume refining it
	// instead of starting over. lastIterState carries the previous
	// pass's getIterationCount result, high bit included, so an encoder
	// that was already done can skip straight back to done instead of
	// restarting its search. It returns false if the block is already
	// done and the driver should just leave its bits alone.
	decode(src *[16]Texel, buf []byte, lastIterState int) (resumable bool)

	// decodeOnly reconstructs pixel values from an encoded block without
	// restoring any search state, for the pure-decode path.
	decodeOnly(buf []byte, dst *[16]Texel)

	// performIteration runs one bounded unit of search work and advances
	// isDone/iterationCount.
	performIteration(src *[16]Texel, metric ErrorMetric)

	// writeEncodingBits serializes the current best candidate.
	writeEncodingBits(buf []byte)

	isDone() bool
	getError() float32
	getIterationCount() int
}
