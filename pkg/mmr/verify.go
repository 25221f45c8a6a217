// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package mmr

import (
	"errors"
	"fmt"

	"github.com/ChainSafe/ics10-grandpa/lib/common"
)

// MaxLeafCount bounds the leaf count of a proof so that MMR sizes fit in 64 bits.
const MaxLeafCount = uint64(1) << 62

var (
	// ErrInvalidLeafIndex is returned when the proof leaf index is not below its leaf count.
	ErrInvalidLeafIndex = errors.New("invalid leaf index")
	// ErrCorruptedProof is returned when the proof items do not match the
	// shape implied by the leaf index and leaf count.
	ErrCorruptedProof = errors.New("corrupted proof")
)

// Proof is an inclusion proof of a single leaf.
type Proof struct {
	LeafIndex uint64
	LeafCount uint64
	Items     []common.Hash
}

type leaf struct {
	pos  uint64
	hash common.Hash
}

// VerifyLeafProof checks that leafHash is the leaf at proof.LeafIndex of the
// MMR of proof.LeafCount leaves whose root is root.
// It returns false for a well formed proof resolving to another root,
// and an error for a malformed proof.
func VerifyLeafProof(hasher common.Hasher, root, leafHash common.Hash, proof Proof) (bool, error) {
	computed, err := CalculateRoot(hasher, leafHash, proof)
	if err != nil {
		return false, err
	}
	return computed == root, nil
}

// CalculateRoot returns the root implied by the leaf hash and its proof.
func CalculateRoot(hasher common.Hasher, leafHash common.Hash, proof Proof) (common.Hash, error) {
	if proof.LeafIndex >= proof.LeafCount || proof.LeafCount > MaxLeafCount {
		return common.Hash{}, fmt.Errorf("%w: index %d, leaf count %d",
			ErrInvalidLeafIndex, proof.LeafIndex, proof.LeafCount)
	}

	mmrSize := LeafIndexToMMRSize(proof.LeafCount - 1)
	leaves := []leaf{{pos: LeafIndexToPos(proof.LeafIndex), hash: leafHash}}
	return calculateRoot(hasher, leaves, mmrSize, proof.Items)
}

type proofItems struct {
	items []common.Hash
}

func (p *proofItems) next() (item common.Hash, ok bool) {
	if len(p.items) == 0 {
		return item, false
	}
	item, p.items = p.items[0], p.items[1:]
	return item, true
}

// calculateRoot expects leaves sorted by position.
func calculateRoot(hasher common.Hasher, leaves []leaf, mmrSize uint64,
	items []common.Hash) (common.Hash, error) {
	proof := &proofItems{items: items}

	if mmrSize == 1 && len(leaves) == 1 && leaves[0].pos == 0 {
		if len(items) > 0 {
			return common.Hash{}, fmt.Errorf("%w: %d extra items for a single leaf MMR",
				ErrCorruptedProof, len(items))
		}
		return leaves[0].hash, nil
	}

	peaks := getPeaks(mmrSize)
	peakHashes := make([]common.Hash, 0, len(peaks)+1)
peaksLoop:
	for _, peakPos := range peaks {
		split := 0
		for split < len(leaves) && leaves[split].pos <= peakPos {
			split++
		}
		peakLeaves := leaves[:split]
		leaves = leaves[split:]

		switch {
		case len(peakLeaves) == 1 && peakLeaves[0].pos == peakPos:
			peakHashes = append(peakHashes, peakLeaves[0].hash)
		case len(peakLeaves) == 0:
			peakHash, ok := proof.next()
			if !ok {
				// remaining peaks are on the right of every leaf
				break peaksLoop
			}
			peakHashes = append(peakHashes, peakHash)
		default:
			peakRoot, err := calculatePeakRoot(hasher, peakLeaves, peakPos, proof)
			if err != nil {
				return common.Hash{}, err
			}
			peakHashes = append(peakHashes, peakRoot)
		}
	}

	if len(leaves) > 0 {
		return common.Hash{}, fmt.Errorf("%w: leaf position %d outside of MMR of size %d",
			ErrCorruptedProof, leaves[0].pos, mmrSize)
	}

	// right hand side peaks bagged in a single item
	if rhsPeaks, ok := proof.next(); ok {
		peakHashes = append(peakHashes, rhsPeaks)
	}

	if len(proof.items) > 0 {
		return common.Hash{}, fmt.Errorf("%w: %d unused proof items", ErrCorruptedProof, len(proof.items))
	}

	return bagPeaks(hasher, peakHashes)
}

type queueItem struct {
	pos    uint64
	hash   common.Hash
	height uint32
}

func calculatePeakRoot(hasher common.Hasher, leaves []leaf, peakPos uint64,
	proof *proofItems) (common.Hash, error) {
	queue := make([]queueItem, 0, len(leaves))
	for _, l := range leaves {
		queue = append(queue, queueItem{pos: l.pos, hash: l.hash})
	}

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		if item.pos == peakPos {
			if len(queue) == 0 {
				return item.hash, nil
			}
			return common.Hash{}, fmt.Errorf("%w: peak %d reached with %d nodes left",
				ErrCorruptedProof, peakPos, len(queue))
		}

		nextHeight := posHeightInTree(item.pos + 1)
		isRightChild := nextHeight > item.height
		var siblingPos, parentPos uint64
		if isRightChild {
			siblingPos = item.pos - siblingOffset(item.height)
			parentPos = item.pos + 1
		} else {
			siblingPos = item.pos + siblingOffset(item.height)
			parentPos = item.pos + parentOffset(item.height)
		}

		var sibling common.Hash
		if len(queue) > 0 && queue[0].pos == siblingPos {
			sibling = queue[0].hash
			queue = queue[1:]
		} else {
			var ok bool
			sibling, ok = proof.next()
			if !ok {
				return common.Hash{}, fmt.Errorf("%w: missing sibling at position %d",
					ErrCorruptedProof, siblingPos)
			}
		}

		var parent common.Hash
		if isRightChild {
			parent = merge(hasher, sibling, item.hash)
		} else {
			parent = merge(hasher, item.hash, sibling)
		}

		if parentPos > peakPos {
			return common.Hash{}, fmt.Errorf("%w: parent position %d above peak %d",
				ErrCorruptedProof, parentPos, peakPos)
		}
		queue = append(queue, queueItem{pos: parentPos, hash: parent, height: item.height + 1})
	}

	return common.Hash{}, fmt.Errorf("%w: peak %d not reached", ErrCorruptedProof, peakPos)
}
