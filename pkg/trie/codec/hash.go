// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package codec

import "github.com/ChainSafe/ics10-grandpa/lib/common"

// MerkleValueOf returns the reference a parent branch holds for the
// child with the given encoding. Encodings of at least 32 bytes are
// hashed, shorter ones are inlined.
func MerkleValueOf(encoding []byte, hasher common.Hasher) MerkleValue {
	if len(encoding) < hashLength {
		return InlineNode{Data: encoding}
	}
	return HashedNode{Data: hasher.Hash(encoding).ToBytes()}
}

// RootHash returns the hash of the root node encoding, which
// is always hashed regardless of its length.
func RootHash(encoding []byte, hasher common.Hasher) common.Hash {
	return hasher.Hash(encoding)
}
