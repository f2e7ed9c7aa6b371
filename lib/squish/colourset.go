// Copyright 2025 The Etc2 Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package squish

import "math"

// vec3 is a point in unweighted RGB space, normalized to [0,1] per channel.
type vec3 struct{ x, y, z float32 }

func (a vec3) sub(b vec3) vec3  { return vec3{a.x - b.x, a.y - b.y, a.z - b.z} }
func (a vec3) add(b vec3) vec3  { return vec3{a.x + b.x, a.y + b.y, a.z + b.z} }
func (a vec3) scale(s float32) vec3 { return vec3{a.x * s, a.y * s, a.z * s} }
func (a vec3) dot(b vec3) float32   { return a.x*b.x + a.y*b.y + a.z*b.z }

// colourSet is the deduplicated point cloud for one tile's BC1 color fit.
// Grounded on squish::ColourSet: pixels with identical (R,G,B) collapse into
// one weighted point, and (for BC1) pixels below the alpha threshold are
// excluded from the fit and remembered via transparent so the caller can
// force 3-color+transparent mode.
type colourSet struct {
	points      [16]vec3
	weights     [16]float32
	remap       [16]int8
	count       int
	transparent bool
}

const bc1AlphaThreshold = 128

func newColourSet(rgba *[16][4]uint8, isBC1 bool) *colourSet {
	cs := &colourSet{}
	for i := 0; i < 16; i++ {
		if isBC1 && rgba[i][3] < bc1AlphaThreshold {
			cs.remap[i] = -1
			cs.transparent = true
			continue
		}
		matched := int8(-1)
		for j := 0; j < i; j++ {
			if cs.remap[j] < 0 {
				continue
			}
			if rgba[i][0] == rgba[j][0] && rgba[i][1] == rgba[j][1] && rgba[i][2] == rgba[j][2] {
				matched = cs.remap[j]
				break
			}
		}
		if matched >= 0 {
			cs.remap[i] = matched
			cs.weights[matched] += 1
			continue
		}
		cs.points[cs.count] = vec3{
			x: float32(rgba[i][0]) / 255,
			y: float32(rgba[i][1]) / 255,
			z: float32(rgba[i][2]) / 255,
		}
		cs.weights[cs.count] = 1
		cs.remap[i] = int8(cs.count)
		cs.count++
	}
	return cs
}

// weightedCentroid returns the weighted mean of the set's points, the
// Sym3x3 covariance's implicit origin (ComputeWeightedCovariance in
// maths.h centers about this point before accumulating).
func (cs *colourSet) weightedCentroid() vec3 {
	var sum vec3
	var total float32
	for i := 0; i < cs.count; i++ {
		sum = sum.add(cs.points[i].scale(cs.weights[i]))
		total += cs.weights[i]
	}
	if total == 0 {
		return vec3{}
	}
	return sum.scale(1 / total)
}

// principalAxis finds the dominant direction of the set's weighted
// covariance via power iteration, the practical equivalent of maths.h's
// ComputeWeightedCovariance + ComputePrincipleComponent pair without needing
// a full Sym3x3 eigensolver.
func (cs *colourSet) principalAxis(centroid vec3) vec3 {
	var cov [3][3]float32
	for i := 0; i < cs.count; i++ {
		d := cs.points[i].sub(centroid)
		w := cs.weights[i]
		a := [3]float32{d.x, d.y, d.z}
		for r := 0; r < 3; r++ {
			for c := 0; c < 3; c++ {
				cov[r][c] += w * a[r] * a[c]
			}
		}
	}

	axis := vec3{1, 1, 1}
	for iter := 0; iter < 8; iter++ {
		a := [3]float32{axis.x, axis.y, axis.z}
		var next [3]float32
		for r := 0; r < 3; r++ {
			for c := 0; c < 3; c++ {
				next[r] += cov[r][c] * a[c]
			}
		}
		n := vec3{next[0], next[1], next[2]}
		length := n.dot(n)
		if length <= 0 {
			return axis
		}
		inv := float32(1 / math.Sqrt(float64(length)))
		axis = n.scale(inv)
	}
	return axis
}
