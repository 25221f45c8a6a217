// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package proof

import (
	"strings"
	"testing"

	"github.com/ChainSafe/ics10-grandpa/lib/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	longKey   = strings.Repeat("k", 40)
	longValue = []byte(strings.Repeat("v", 64))
)

func testEntries() map[string][]byte {
	return map[string][]byte{
		"ab":    {},
		"abc":   []byte("value-abc-long-enough"),
		"abd":   []byte("value-abd-long-enough"),
		"b":     []byte("short"),
		longKey: longValue,
	}
}

func Test_ReadProofCheck(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		hasher       common.Hasher
		hashedValues bool
	}{
		"blake2b inline values": {
			hasher: common.Blake2b256Hasher,
		},
		"blake2b hashed values": {
			hasher:       common.Blake2b256Hasher,
			hashedValues: true,
		},
		"keccak": {
			hasher: common.Keccak256Hasher,
		},
	}

	for name, testCase := range testCases {
		testCase := testCase
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			entries := testEntries()
			root, tt := buildTrie(t, testCase.hasher, testCase.hashedValues, entries)
			proof := tt.proof()

			for key, expected := range entries {
				value, err := ReadProofCheck(root, proof, []byte(key), testCase.hasher)
				require.NoError(t, err, "key %q", key)
				assert.Equal(t, expected, value, "key %q", key)
				assert.NotNil(t, value, "key %q", key)
			}

			absentKeys := []string{"", "a", "abe", "abcd", "c", longKey + "k", longKey[:39]}
			for _, key := range absentKeys {
				value, err := ReadProofCheck(root, proof, []byte(key), testCase.hasher)
				require.NoError(t, err, "key %q", key)
				assert.Nil(t, value, "key %q", key)
			}
		})
	}
}

func Test_ReadProofCheck_errors(t *testing.T) {
	t.Parallel()

	root, tt := buildTrie(t, common.Blake2b256Hasher, true, testEntries())
	rootOnly := NewStorageProof([][]byte{tt.nodes[root]})
	invalidNode := []byte{0x02}

	testCases := map[string]struct {
		root       common.Hash
		proof      *StorageProof
		key        []byte
		hasher     common.Hasher
		errWrapped error
	}{
		"nil proof": {
			root:       root,
			key:        []byte("abc"),
			hasher:     common.Blake2b256Hasher,
			errWrapped: ErrEmptyProof,
		},
		"empty proof": {
			root:       root,
			proof:      NewStorageProof(nil),
			key:        []byte("abc"),
			hasher:     common.Blake2b256Hasher,
			errWrapped: ErrEmptyProof,
		},
		"unknown root": {
			root:       common.Hash{1},
			proof:      tt.proof(),
			key:        []byte("abc"),
			hasher:     common.Blake2b256Hasher,
			errWrapped: ErrRootNodeNotFound,
		},
		"other hasher": {
			root:       root,
			proof:      tt.proof(),
			key:        []byte("abc"),
			hasher:     common.Keccak256Hasher,
			errWrapped: ErrRootNodeNotFound,
		},
		"missing child node": {
			root:       root,
			proof:      rootOnly,
			key:        []byte("abc"),
			hasher:     common.Blake2b256Hasher,
			errWrapped: ErrIncompleteProof,
		},
		"missing hashed value": {
			root:       root,
			proof:      tt.proof(common.Blake2b256Hasher.Hash(longValue)),
			key:        []byte(longKey),
			hasher:     common.Blake2b256Hasher,
			errWrapped: ErrIncompleteProof,
		},
		"undecodable node": {
			root:       common.Blake2b256Hasher.Hash(invalidNode),
			proof:      NewStorageProof([][]byte{invalidNode}),
			key:        []byte("abc"),
			hasher:     common.Blake2b256Hasher,
			errWrapped: ErrInvalidNode,
		},
	}

	for name, testCase := range testCases {
		testCase := testCase
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			value, err := ReadProofCheck(testCase.root, testCase.proof, testCase.key, testCase.hasher)
			assert.Nil(t, value)
			assert.ErrorIs(t, err, testCase.errWrapped)
		})
	}
}

func Test_ReadProofCheck_rootOnlyProvesAbsence(t *testing.T) {
	t.Parallel()

	root, tt := buildTrie(t, common.Blake2b256Hasher, false, testEntries())
	rootOnly := NewStorageProof([][]byte{tt.nodes[root]})

	value, err := ReadProofCheck(root, rootOnly, []byte("c"), common.Blake2b256Hasher)
	require.NoError(t, err)
	assert.Nil(t, value)
}

func Test_ReadProofCheck_smallTries(t *testing.T) {
	t.Parallel()

	root, tt := buildTrie(t, common.Blake2b256Hasher, false, map[string][]byte{"k": []byte("v")})
	value, err := ReadProofCheck(root, tt.proof(), []byte("k"), common.Blake2b256Hasher)
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), value)

	value, err = ReadProofCheck(root, tt.proof(), []byte("kk"), common.Blake2b256Hasher)
	require.NoError(t, err)
	assert.Nil(t, value)

	root, tt = buildTrie(t, common.Blake2b256Hasher, false, map[string][]byte{})
	assert.Equal(t, []byte{0x00}, tt.nodes[root])
	value, err = ReadProofCheck(root, tt.proof(), []byte("k"), common.Blake2b256Hasher)
	require.NoError(t, err)
	assert.Nil(t, value)
}

func Test_Verify(t *testing.T) {
	t.Parallel()

	root, tt := buildTrie(t, common.Blake2b256Hasher, false, testEntries())
	proof := tt.proof()

	value, err := Verify(root, proof, []byte("b"), []byte("short"), common.Blake2b256Hasher)
	require.NoError(t, err)
	assert.Equal(t, []byte("short"), value)

	value, err = Verify(root, proof, []byte("b"), nil, common.Blake2b256Hasher)
	require.NoError(t, err)
	assert.Equal(t, []byte("short"), value)

	value, err = Verify(root, proof, []byte("b"), []byte("other"), common.Blake2b256Hasher)
	assert.ErrorIs(t, err, ErrValueMismatchProofTrie)
	assert.EqualError(t, err, "value found in proof trie does not match: "+
		"expected value 0x6f74686572 but got value 0x73686f7274 from proof trie")
	assert.Nil(t, value)

	_, err = Verify(root, proof, []byte("c"), nil, common.Blake2b256Hasher)
	assert.ErrorIs(t, err, ErrKeyNotFoundInProofTrie)
}

func Test_StorageProof(t *testing.T) {
	t.Parallel()

	proof := NewStorageProof([][]byte{{3}, {1, 2}, {3}, {1}})
	assert.Equal(t, 3, proof.Len())
	assert.Equal(t, [][]byte{{1}, {1, 2}, {3}}, proof.TrieNodes())
}
