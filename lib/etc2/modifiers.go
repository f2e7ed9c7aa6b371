// Copyright 2025 The Etc2 Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package etc2

// eacModifierTable holds the 16 modifier rows shared by R11, RG11 and A8 (the
// original source's s_modifierTable8, confirmed identical between the R11 and
// RGBA8 translation units).
var eacModifierTable = [16][8]int32{
	{-3, -6, -9, -15, 2, 5, 8, 14},
	{-3, -7, -10, -13, 2, 6, 9, 12},
	{-2, -5, -8, -13, 1, 4, 7, 12},
	{-2, -4, -6, -13, 1, 3, 5, 12},

	{-3, -6, -8, -12, 2, 5, 7, 11},
	{-3, -7, -9, -11, 2, 6, 8, 10},
	{-4, -7, -8, -11, 3, 6, 7, 10},
	{-3, -5, -8, -11, 2, 4, 7, 10},

	{-2, -6, -8, -10, 1, 5, 7, 9},
	{-2, -5, -8, -10, 1, 4, 7, 9},
	{-2, -4, -8, -10, 1, 3, 7, 9},
	{-2, -5, -7, -10, 1, 4, 6, 9},

	{-3, -4, -7, -10, 2, 3, 6, 9},
	{-1, -2, -3, -10, 0, 1, 2, 9},
	{-4, -6, -8, -9, 3, 5, 7, 8},
	{-3, -5, -7, -9, 2, 4, 6, 8},
}

// eacVirtualSelectorMap maps a "virtual" (monotonically increasing) selector
// index 0..7 to the ETC selector whose modifier value is monotone in the same
// direction. CalculateR11/CalculateA8 walk windows over virtual selectors so
// that a contiguous window always covers a contiguous range of modifier
// values.
var eacVirtualSelectorMap = [8]uint8{3, 2, 1, 0, 4, 5, 6, 7}

// etc1DistanceTable holds the 3-bit "cw" (code word) modifier magnitudes used
// by the ETC1 sub-mode (indiv/diff) search. Each table has 4 entries:
// {+small, +large, -small, -large}, and the half-block search picks one
// magnitude for the whole half, applying +/- by the 2-bit pixel selector's
// sign.
var etc1DistanceTable = [8][4]int32{
	{2, 8, -2, -8},
	{5, 17, -5, -17},
	{9, 29, -9, -29},
	{13, 42, -13, -42},
	{18, 60, -18, -60},
	{24, 80, -24, -80},
	{33, 106, -33, -106},
	{47, 183, -47, -183},
}

// tAndHDistanceTable is the 8-entry distance table shared by the T and H
// ETC2 color sub-modes (ETC2 spec table 3.17.3).
var tAndHDistanceTable = [8]int32{3, 6, 11, 16, 23, 32, 41, 64}
