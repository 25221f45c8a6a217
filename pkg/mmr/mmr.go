// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package mmr

import (
	"errors"
	"fmt"
	"math/bits"
	"sync"

	"github.com/ChainSafe/ics10-grandpa/lib/common"
)

var (
	errorInconsistentStore = errors.New("inconsistent store")
	errorGetRootOnEmpty    = errors.New("get root on empty MMR")
	// ErrLeafNotFound is returned when generating a proof for a leaf the MMR does not hold.
	ErrLeafNotFound = errors.New("leaf not found")
)

// Storage holds the MMR nodes by position.
type Storage interface {
	getElement(pos uint64) (*common.Hash, error)
	append(pos uint64, elements []common.Hash) error
	commit() error
}

// MMR represents a Merkle Mountain Range (MMR) which is a persistent,
// append-only data structure that allows for efficient cryptographic proofs of
// inclusion for any piece of data added to it.
type MMR struct {
	size    uint64
	leaves  uint64
	storage Storage
	hasher  common.Hasher
	mtx     sync.Mutex
}

// NewMMR initialises and returns a new MMR instance of the given size.
func NewMMR(size uint64, storage Storage, hasher common.Hasher) *MMR {
	return &MMR{
		size:    size,
		leaves:  mmrSizeToLeafCount(size),
		storage: storage,
		hasher:  hasher,
	}
}

// Size returns the number of nodes in the MMR.
func (mmr *MMR) Size() uint64 {
	mmr.mtx.Lock()
	defer mmr.mtx.Unlock()
	return mmr.size
}

// LeafCount returns the number of leaves pushed to the MMR.
func (mmr *MMR) LeafCount() uint64 {
	mmr.mtx.Lock()
	defer mmr.mtx.Unlock()
	return mmr.leaves
}

// Push adds a new leaf to the MMR returning its position.
func (mmr *MMR) Push(leaf common.Hash) (uint64, error) {
	mmr.mtx.Lock()
	defer mmr.mtx.Unlock()

	elements := []common.Hash{leaf}
	peakMap := mmr.peakMap()
	elemPosition := mmr.size
	position := mmr.size
	peak := uint64(1)
	for (peakMap & peak) != 0 {
		peak <<= 1
		position++
		leftPosition := position - peak
		leftElement, err := mmr.findElement(leftPosition, elements)
		if err != nil {
			return 0, err
		}

		rightElement := elements[len(elements)-1]
		elements = append(elements, merge(mmr.hasher, leftElement, rightElement))
	}

	err := mmr.storage.append(elemPosition, elements)
	if err != nil {
		return 0, err
	}

	mmr.size = position + 1
	mmr.leaves++
	return elemPosition, nil
}

// Root returns the root of the MMR by merging the peaks.
func (mmr *MMR) Root() (common.Hash, error) {
	mmr.mtx.Lock()
	defer mmr.mtx.Unlock()

	if mmr.size == 0 {
		return common.Hash{}, errorGetRootOnEmpty
	}

	peaks, err := mmr.peakHashes(getPeaks(mmr.size))
	if err != nil {
		return common.Hash{}, err
	}
	return bagPeaks(mmr.hasher, peaks)
}

// Commit commits the current state of the MMR to underlying storage.
func (mmr *MMR) Commit() error {
	return mmr.storage.commit()
}

// GenerateProof returns the inclusion proof of the leaf at leafIndex
// against the current root.
func (mmr *MMR) GenerateProof(leafIndex uint64) (proof Proof, err error) {
	mmr.mtx.Lock()
	defer mmr.mtx.Unlock()

	if leafIndex >= mmr.leaves {
		return proof, fmt.Errorf("%w: index %d, leaf count %d", ErrLeafNotFound, leafIndex, mmr.leaves)
	}

	pos := LeafIndexToPos(leafIndex)
	peaks := getPeaks(mmr.size)

	// positions of a peak tree are contiguous and end at the peak,
	// so the leaf belongs to the first peak at or after it.
	leafPeak := 0
	for leafPeak < len(peaks) && peaks[leafPeak] < pos {
		leafPeak++
	}

	items, err := mmr.peakHashes(peaks[:leafPeak])
	if err != nil {
		return proof, err
	}

	items, err = mmr.appendPeakPath(items, pos, peaks[leafPeak])
	if err != nil {
		return proof, err
	}

	rhsPeaks, err := mmr.peakHashes(peaks[leafPeak+1:])
	if err != nil {
		return proof, err
	}
	if len(rhsPeaks) > 0 {
		bagged, err := bagPeaks(mmr.hasher, rhsPeaks)
		if err != nil {
			return proof, err
		}
		items = append(items, bagged)
	}

	return Proof{
		LeafIndex: leafIndex,
		LeafCount: mmr.leaves,
		Items:     items,
	}, nil
}

// appendPeakPath appends the siblings on the path from pos up to peakPos.
func (mmr *MMR) appendPeakPath(items []common.Hash, pos, peakPos uint64) ([]common.Hash, error) {
	height := uint32(0)
	for pos != peakPos {
		nextHeight := posHeightInTree(pos + 1)
		var siblingPos, parentPos uint64
		if nextHeight > height {
			siblingPos = pos - siblingOffset(height)
			parentPos = pos + 1
		} else {
			siblingPos = pos + siblingOffset(height)
			parentPos = pos + parentOffset(height)
		}

		sibling, err := mmr.element(siblingPos)
		if err != nil {
			return nil, err
		}
		items = append(items, sibling)
		pos = parentPos
		height++
	}
	return items, nil
}

func (mmr *MMR) element(pos uint64) (common.Hash, error) {
	element, err := mmr.storage.getElement(pos)
	if err != nil || element == nil {
		return common.Hash{}, fmt.Errorf("%w: no element at position %d", errorInconsistentStore, pos)
	}
	return *element, nil
}

func (mmr *MMR) peakHashes(positions []uint64) ([]common.Hash, error) {
	peaks := make([]common.Hash, 0, len(positions))
	for _, pos := range positions {
		peak, err := mmr.element(pos)
		if err != nil {
			return nil, err
		}
		peaks = append(peaks, peak)
	}
	return peaks, nil
}

func (mmr *MMR) findElement(position uint64, values []common.Hash) (common.Hash, error) {
	if position >= mmr.size {
		positionOffset := position - mmr.size
		return values[positionOffset], nil
	}

	return mmr.element(position)
}

/*
Returns a bitmap of the peaks in the MMR.
Eg: 0b11 means that the MMR has 2 peaks at position 0 and at position 1
*/
func (mmr *MMR) peakMap() uint64 {
	if mmr.size == 0 {
		return 0
	}

	pos := mmr.size
	peakSize := ^uint64(0) >> bits.LeadingZeros64(pos)
	peakMap := uint64(0)
	for peakSize > 0 {
		peakMap <<= 1
		if pos >= peakSize {
			pos -= peakSize
			peakMap |= 1
		}
		peakSize >>= 1
	}

	return peakMap
}

func merge(hasher common.Hasher, left, right common.Hash) common.Hash {
	var buffer [2 * common.HashLength]byte
	copy(buffer[:common.HashLength], left[:])
	copy(buffer[common.HashLength:], right[:])
	return hasher.Hash(buffer[:])
}

// bagPeaks folds the peaks from right to left, hashing the right
// accumulator first.
func bagPeaks(hasher common.Hasher, peaks []common.Hash) (common.Hash, error) {
	if len(peaks) == 0 {
		return common.Hash{}, errorGetRootOnEmpty
	}

	stack := make([]common.Hash, len(peaks))
	copy(stack, peaks)
	for len(stack) > 1 {
		var rightPeak, leftPeak common.Hash
		rightPeak, stack = stack[len(stack)-1], stack[:len(stack)-1]
		leftPeak, stack = stack[len(stack)-1], stack[:len(stack)-1]
		stack = append(stack, merge(hasher, rightPeak, leftPeak))
	}
	return stack[0], nil
}
