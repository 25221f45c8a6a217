// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package mmr

import "math/bits"

// LeafIndexToPos returns the MMR position of the leaf at the given index.
func LeafIndexToPos(index uint64) uint64 {
	return LeafIndexToMMRSize(index) - uint64(bits.TrailingZeros64(index+1)) - 1
}

// LeafIndexToMMRSize returns the size of the MMR right after the
// leaf at the given index was pushed.
func LeafIndexToMMRSize(index uint64) uint64 {
	leaves := index + 1
	// an MMR of n leaves has 2n - popcount(n) nodes
	return 2*leaves - uint64(bits.OnesCount64(leaves))
}

func mmrSizeToLeafCount(size uint64) (leaves uint64) {
	if size == 0 {
		return 0
	}
	for _, peak := range getPeaks(size) {
		leaves += 1 << posHeightInTree(peak)
	}
	return leaves
}

// posHeightInTree returns the height of the node at pos, leaves being at height 0.
func posHeightInTree(pos uint64) uint32 {
	pos++
	for !allOnes(pos) {
		pos = jumpLeft(pos)
	}
	return uint32(64 - bits.LeadingZeros64(pos) - 1)
}

func allOnes(n uint64) bool {
	return n != 0 && bits.OnesCount64(n) == 64-bits.LeadingZeros64(n)
}

func jumpLeft(pos uint64) uint64 {
	bitLength := 64 - bits.LeadingZeros64(pos)
	mostSignificantBit := uint64(1) << (bitLength - 1)
	return pos - (mostSignificantBit - 1)
}

func siblingOffset(height uint32) uint64 {
	return (2 << height) - 1
}

func parentOffset(height uint32) uint64 {
	return 2 << height
}

func getPeakPosByHeight(height uint32) uint64 {
	return (1 << (height + 1)) - 2
}

func leftPeakHeightPos(mmrSize uint64) (height uint32, pos uint64) {
	height = 1
	prevPos := uint64(0)
	pos = getPeakPosByHeight(height)
	for pos < mmrSize {
		height++
		prevPos = pos
		pos = getPeakPosByHeight(height)
	}
	return height - 1, prevPos
}

func getRightPeak(height uint32, pos, mmrSize uint64) (uint32, uint64, bool) {
	pos += siblingOffset(height)
	for pos > mmrSize-1 {
		if height == 0 {
			return 0, 0, false
		}
		pos -= parentOffset(height - 1)
		height--
	}
	return height, pos, true
}

// getPeaks returns the positions of the peaks of an MMR of the given size,
// from left to right.
func getPeaks(mmrSize uint64) []uint64 {
	if mmrSize == 0 {
		return []uint64{}
	}

	height, pos := leftPeakHeightPos(mmrSize)
	peaks := []uint64{pos}
	for height > 0 {
		var ok bool
		height, pos, ok = getRightPeak(height, pos, mmrSize)
		if !ok {
			break
		}
		peaks = append(peaks, pos)
	}
	return peaks
}
