// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package merkle

import (
	"fmt"
	"testing"

	"github.com/ChainSafe/ics10-grandpa/lib/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func makeLeaves(n int) [][]byte {
	leaves := make([][]byte, n)
	for i := range leaves {
		leaves[i] = []byte(fmt.Sprintf("leaf-%d", i))
	}
	return leaves
}

func Test_Root(t *testing.T) {
	t.Parallel()

	hasher := common.Keccak256Hasher
	leaves := makeLeaves(3)
	h0, h1, h2 := hasher.Hash(leaves[0]), hasher.Hash(leaves[1]), hasher.Hash(leaves[2])

	testCases := map[string]struct {
		leaves [][]byte
		root   common.Hash
	}{
		"empty": {},
		"single leaf": {
			leaves: leaves[:1],
			root:   h0,
		},
		"two leaves": {
			leaves: leaves[:2],
			root:   merge(hasher, h0, h1),
		},
		"three leaves promote the last one": {
			leaves: leaves,
			root:   merge(hasher, merge(hasher, h0, h1), h2),
		},
	}

	for name, testCase := range testCases {
		testCase := testCase
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, testCase.root, Root(hasher, testCase.leaves))
		})
	}
}

func Test_Proof_VerifyProof(t *testing.T) {
	t.Parallel()

	hasher := common.Keccak256Hasher
	for leafCount := 1; leafCount <= 17; leafCount++ {
		leaves := makeLeaves(leafCount)
		root := Root(hasher, leaves)

		for index := 0; index < leafCount; index++ {
			proof, err := Proof(hasher, leaves, uint64(index))
			require.NoError(t, err)

			ok, err := VerifyProof(hasher, root, proof, uint64(leafCount), uint64(index), leaves[index])
			require.NoError(t, err)
			assert.True(t, ok, "leaf %d of %d", index, leafCount)

			ok, err = VerifyProof(hasher, root, proof, uint64(leafCount), uint64(index), []byte("other"))
			require.NoError(t, err)
			assert.False(t, ok)
		}
	}
}

func Test_VerifyProof_errors(t *testing.T) {
	t.Parallel()

	hasher := common.Keccak256Hasher
	leaves := makeLeaves(5)
	root := Root(hasher, leaves)
	proof, err := Proof(hasher, leaves, 1)
	require.NoError(t, err)
	require.Len(t, proof, 3)

	_, err = VerifyProof(hasher, root, proof, 5, 5, leaves[1])
	assert.ErrorIs(t, err, ErrLeafIndexOutOfRange)

	_, err = VerifyProof(hasher, root, proof[:2], 5, 1, leaves[1])
	assert.ErrorIs(t, err, ErrProofLength)

	_, err = VerifyProof(hasher, root, append(proof, common.Hash{}), 5, 1, leaves[1])
	assert.ErrorIs(t, err, ErrProofLength)

	_, err = Proof(hasher, leaves, 5)
	assert.ErrorIs(t, err, ErrLeafIndexOutOfRange)
}

func Test_VerifyProof_property(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		leafCount := rapid.IntRange(1, 100).Draw(t, "leafCount").(int)
		index := rapid.IntRange(0, leafCount-1).Draw(t, "index").(int)
		leaves := makeLeaves(leafCount)
		hasher := common.Keccak256Hasher

		root := Root(hasher, leaves)
		proof, err := Proof(hasher, leaves, uint64(index))
		require.NoError(t, err)

		ok, err := VerifyProof(hasher, root, proof, uint64(leafCount), uint64(index), leaves[index])
		require.NoError(t, err)
		require.True(t, ok)
	})
}
