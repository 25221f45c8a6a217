// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package proof

import (
	"bytes"
	"sort"
	"testing"

	"github.com/ChainSafe/ics10-grandpa/lib/common"
	"github.com/ChainSafe/ics10-grandpa/pkg/trie/codec"
	"github.com/stretchr/testify/require"
)

// hashedValueThreshold is the value length from which values are
// stored by hash, as done by the V1 state trie layout.
const hashedValueThreshold = 33

type testEntry struct {
	nibbles []byte
	value   []byte
}

// testTrie builds the nodes of a trie holding the given entries.
type testTrie struct {
	hasher       common.Hasher
	hashedValues bool
	// nodes holds every node and value referenced by hash.
	nodes map[common.Hash][]byte
}

func buildTrie(t *testing.T, hasher common.Hasher, hashedValues bool,
	entries map[string][]byte) (root common.Hash, tt *testTrie) {
	t.Helper()

	tt = &testTrie{
		hasher:       hasher,
		hashedValues: hashedValues,
		nodes:        make(map[common.Hash][]byte),
	}

	sorted := make([]testEntry, 0, len(entries))
	for key, value := range entries {
		sorted = append(sorted, testEntry{
			nibbles: codec.KeyLEToNibbles([]byte(key)),
			value:   value,
		})
	}
	sort.Slice(sorted, func(i, j int) bool {
		return bytes.Compare(sorted[i].nibbles, sorted[j].nibbles) < 0
	})

	rootNode := tt.build(t, sorted)
	encoding, err := codec.Encode(rootNode)
	require.NoError(t, err)

	root = hasher.Hash(encoding)
	tt.nodes[root] = encoding
	return root, tt
}

func (tt *testTrie) build(t *testing.T, entries []testEntry) codec.Node {
	switch len(entries) {
	case 0:
		return codec.Empty{}
	case 1:
		return codec.Leaf{
			PartialKey: entries[0].nibbles,
			Value:      tt.value(entries[0].value),
		}
	}

	prefixLength := commonPrefixLength(entries)
	branch := codec.Branch{PartialKey: entries[0].nibbles[:prefixLength]}

	groups := make([][]testEntry, codec.ChildrenCapacity)
	for _, entry := range entries {
		remaining := entry.nibbles[prefixLength:]
		if len(remaining) == 0 {
			branch.Value = tt.value(entry.value)
			continue
		}
		groups[remaining[0]] = append(groups[remaining[0]], testEntry{
			nibbles: remaining[1:],
			value:   entry.value,
		})
	}

	for i, group := range groups {
		if len(group) == 0 {
			continue
		}
		child := tt.build(t, group)
		encoding, err := codec.Encode(child)
		require.NoError(t, err)

		merkleValue := codec.MerkleValueOf(encoding, tt.hasher)
		if merkleValue.IsHashed() {
			tt.nodes[common.NewHash(merkleValue.Bytes())] = encoding
		}
		branch.Children[i] = merkleValue
	}

	return branch
}

func (tt *testTrie) value(value []byte) codec.NodeValue {
	if !tt.hashedValues || len(value) < hashedValueThreshold {
		return codec.InlineValue{Data: value}
	}
	valueHash := tt.hasher.Hash(value)
	tt.nodes[valueHash] = value
	return codec.HashedValue{Data: valueHash.ToBytes()}
}

func (tt *testTrie) proof(except ...common.Hash) *StorageProof {
	excluded := make(map[common.Hash]struct{}, len(except))
	for _, hash := range except {
		excluded[hash] = struct{}{}
	}

	trieNodes := make([][]byte, 0, len(tt.nodes))
	for hash, encoding := range tt.nodes {
		if _, ok := excluded[hash]; ok {
			continue
		}
		trieNodes = append(trieNodes, encoding)
	}
	return NewStorageProof(trieNodes)
}

func commonPrefixLength(entries []testEntry) (length int) {
	first := entries[0].nibbles
	for length < len(first) {
		for _, entry := range entries[1:] {
			if length >= len(entry.nibbles) || entry.nibbles[length] != first[length] {
				return length
			}
		}
		length++
	}
	return length
}
