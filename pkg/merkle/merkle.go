// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

// Package merkle implements the binary merkle tree committing to the
// parachain heads of an MMR leaf. Leaves are hashed, nodes hash the
// concatenation of their children, and the last node of a level with an
// odd number of nodes is promoted to the next level unchanged.
package merkle

import (
	"errors"
	"fmt"

	"github.com/ChainSafe/ics10-grandpa/lib/common"
)

var (
	// ErrLeafIndexOutOfRange is returned when the leaf index is not below the leaf count.
	ErrLeafIndexOutOfRange = errors.New("leaf index out of range")
	// ErrProofLength is returned when the proof does not have one item
	// per level where the proven node has a sibling.
	ErrProofLength = errors.New("invalid proof length")
)

// Root returns the root of the tree of the given leaves.
// The root of an empty tree is the zero hash.
func Root(hasher common.Hasher, leaves [][]byte) common.Hash {
	if len(leaves) == 0 {
		return common.Hash{}
	}

	level := hashLeaves(hasher, leaves)
	for len(level) > 1 {
		level = nextLevel(hasher, level)
	}
	return level[0]
}

// Proof returns the sibling hashes proving the leaf at index, from the
// leaf level up to the root.
func Proof(hasher common.Hasher, leaves [][]byte, index uint64) (proof []common.Hash, err error) {
	if index >= uint64(len(leaves)) {
		return nil, fmt.Errorf("%w: index %d, leaf count %d", ErrLeafIndexOutOfRange, index, len(leaves))
	}

	level := hashLeaves(hasher, leaves)
	position := index
	for len(level) > 1 {
		siblingPosition := position ^ 1
		if siblingPosition < uint64(len(level)) {
			proof = append(proof, level[siblingPosition])
		}
		level = nextLevel(hasher, level)
		position /= 2
	}
	return proof, nil
}

// VerifyProof checks that leaf is the leaf at leafIndex of the tree of
// leafCount leaves with the given root. It returns false for a proof
// resolving to another root, and an error for a malformed proof.
func VerifyProof(hasher common.Hasher, root common.Hash, proof []common.Hash,
	leafCount, leafIndex uint64, leaf []byte) (bool, error) {
	if leafIndex >= leafCount {
		return false, fmt.Errorf("%w: index %d, leaf count %d", ErrLeafIndexOutOfRange, leafIndex, leafCount)
	}

	computed := hasher.Hash(leaf)
	position, width := leafIndex, leafCount
	used := 0
	for width > 1 {
		promoted := position%2 == 0 && position+1 == width
		if !promoted {
			if used == len(proof) {
				return false, fmt.Errorf("%w: %d items for %d leaves", ErrProofLength, len(proof), leafCount)
			}
			sibling := proof[used]
			used++
			if position%2 == 1 {
				computed = merge(hasher, sibling, computed)
			} else {
				computed = merge(hasher, computed, sibling)
			}
		}
		position /= 2
		width = (width + 1) / 2
	}

	if used != len(proof) {
		return false, fmt.Errorf("%w: %d unused items", ErrProofLength, len(proof)-used)
	}
	return computed == root, nil
}

func hashLeaves(hasher common.Hasher, leaves [][]byte) []common.Hash {
	hashes := make([]common.Hash, len(leaves))
	for i, leaf := range leaves {
		hashes[i] = hasher.Hash(leaf)
	}
	return hashes
}

func nextLevel(hasher common.Hasher, level []common.Hash) []common.Hash {
	next := make([]common.Hash, 0, (len(level)+1)/2)
	for i := 0; i+1 < len(level); i += 2 {
		next = append(next, merge(hasher, level[i], level[i+1]))
	}
	if len(level)%2 == 1 {
		next = append(next, level[len(level)-1])
	}
	return next
}

func merge(hasher common.Hasher, left, right common.Hash) common.Hash {
	var buffer [2 * common.HashLength]byte
	copy(buffer[:common.HashLength], left[:])
	copy(buffer[common.HashLength:], right[:])
	return hasher.Hash(buffer[:])
}
