// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package proof

import (
	"github.com/ChainSafe/ics10-grandpa/lib/common"
	"github.com/tidwall/btree"
)

// StorageProof is the set of trie node encodings, and of hashed
// storage values, proving the presence or absence of storage keys.
// Duplicate entries are stored once and iteration is ordered.
type StorageProof struct {
	trieNodes btree.Set[string]
}

// NewStorageProof creates a storage proof from the given encodings.
func NewStorageProof(trieNodes [][]byte) *StorageProof {
	sp := &StorageProof{}
	for _, trieNode := range trieNodes {
		sp.trieNodes.Insert(string(trieNode))
	}
	return sp
}

// Len returns the number of distinct entries in the proof.
func (sp *StorageProof) Len() int {
	return sp.trieNodes.Len()
}

// TrieNodes returns the distinct proof entries in byte order.
func (sp *StorageProof) TrieNodes() [][]byte {
	trieNodes := make([][]byte, 0, sp.trieNodes.Len())
	sp.trieNodes.Scan(func(trieNode string) bool {
		trieNodes = append(trieNodes, []byte(trieNode))
		return true
	})
	return trieNodes
}

// toDatabase indexes the proof entries by the hash of their encoding.
func (sp *StorageProof) toDatabase(hasher common.Hasher) map[common.Hash][]byte {
	db := make(map[common.Hash][]byte, sp.trieNodes.Len())
	sp.trieNodes.Scan(func(trieNode string) bool {
		encoding := []byte(trieNode)
		db[hasher.Hash(encoding)] = encoding
		return true
	})
	return db
}
