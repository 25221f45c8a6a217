// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package mmr

import (
	"encoding/binary"
	"testing"

	"github.com/ChainSafe/ics10-grandpa/lib/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func hashNumber(number uint32) common.Hash {
	var numBytes [4]byte
	binary.LittleEndian.PutUint32(numBytes[:], number)
	return common.Blake2b256Hasher.Hash(numBytes[:])
}

func newFilledMMR(t require.TestingT, leaves uint32) *MMR {
	mmr := NewInMemMMR(common.Blake2b256Hasher)
	for i := uint32(0); i < leaves; i++ {
		_, err := mmr.Push(hashNumber(i))
		require.NoError(t, err)
	}
	return mmr
}

func TestPushOneElement_RootShouldBeSameLeaf(t *testing.T) {
	t.Parallel()

	mmr := NewInMemMMR(common.Blake2b256Hasher)

	leaf := hashNumber(0)
	pos, err := mmr.Push(leaf)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), pos)

	root, err := mmr.Root()
	require.NoError(t, err)
	assert.Equal(t, leaf, root)
}

// Compared with the same MMR using substrate's implementation
func TestPushManyElementsGetRootOk(t *testing.T) {
	t.Parallel()

	mmr := newFilledMMR(t, 100)

	root, err := mmr.Root()
	require.NoError(t, err)

	expected := common.MustHexToHash("0x0500d0ebdbcad36a79d3325dbd2a4b2b97301d8e482a9be202016e9f1caae13f")
	assert.Equal(t, expected, root)
	assert.Equal(t, uint64(100), mmr.LeafCount())
	assert.Equal(t, LeafIndexToMMRSize(99), mmr.Size())
}

func Test_MMR_Root_empty(t *testing.T) {
	t.Parallel()

	mmr := NewInMemMMR(common.Blake2b256Hasher)
	_, err := mmr.Root()
	assert.ErrorIs(t, err, errorGetRootOnEmpty)
}

func Test_NewMMR_leafCount(t *testing.T) {
	t.Parallel()

	filled := newFilledMMR(t, 11)
	storage := filled.storage

	reopened := NewMMR(filled.Size(), storage, common.Blake2b256Hasher)
	assert.Equal(t, uint64(11), reopened.LeafCount())

	_, err := reopened.Push(hashNumber(11))
	require.NoError(t, err)
	_, err = filled.Push(hashNumber(11))
	require.NoError(t, err)

	expected, err := filled.Root()
	require.NoError(t, err)
	root, err := reopened.Root()
	require.NoError(t, err)
	assert.Equal(t, expected, root)
}

func Test_positions(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		leafIndex uint64
		pos       uint64
		mmrSize   uint64
	}{
		"first leaf": {
			leafIndex: 0,
			pos:       0,
			mmrSize:   1,
		},
		"second leaf": {
			leafIndex: 1,
			pos:       1,
			mmrSize:   3,
		},
		"third leaf": {
			leafIndex: 2,
			pos:       3,
			mmrSize:   4,
		},
		"fourth leaf": {
			leafIndex: 3,
			pos:       4,
			mmrSize:   7,
		},
		"leaf 81": {
			leafIndex: 81,
			pos:       159,
			mmrSize:   161,
		},
		"leaf 88": {
			leafIndex: 88,
			pos:       173,
			mmrSize:   174,
		},
	}

	for name, testCase := range testCases {
		testCase := testCase
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, testCase.pos, LeafIndexToPos(testCase.leafIndex))
			assert.Equal(t, testCase.mmrSize, LeafIndexToMMRSize(testCase.leafIndex))
			assert.Equal(t, testCase.leafIndex+1, mmrSizeToLeafCount(testCase.mmrSize))
		})
	}
}

func Test_getPeaks(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		mmrSize uint64
		peaks   []uint64
	}{
		"empty": {
			peaks: []uint64{},
		},
		"single leaf": {
			mmrSize: 1,
			peaks:   []uint64{0},
		},
		"three leaves": {
			mmrSize: 4,
			peaks:   []uint64{2, 3},
		},
		"seven leaves": {
			mmrSize: 11,
			peaks:   []uint64{6, 9, 10},
		},
		"89 leaves": {
			mmrSize: 174,
			peaks:   []uint64{126, 157, 172, 173},
		},
	}

	for name, testCase := range testCases {
		testCase := testCase
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, testCase.peaks, getPeaks(testCase.mmrSize))
		})
	}
}

func Test_posHeightInTree(t *testing.T) {
	t.Parallel()

	heights := []uint32{0, 0, 1, 0, 0, 1, 2, 0, 0, 1, 0, 0, 1, 2, 3}
	for pos, height := range heights {
		assert.Equal(t, height, posHeightInTree(uint64(pos)), "position %d", pos)
	}
}

func Test_GenerateProof_VerifyLeafProof(t *testing.T) {
	t.Parallel()

	for leafCount := uint32(1); leafCount <= 40; leafCount++ {
		mmr := newFilledMMR(t, leafCount)
		root, err := mmr.Root()
		require.NoError(t, err)

		for leafIndex := uint32(0); leafIndex < leafCount; leafIndex++ {
			proof, err := mmr.GenerateProof(uint64(leafIndex))
			require.NoError(t, err)
			assert.Equal(t, uint64(leafCount), proof.LeafCount)

			ok, err := VerifyLeafProof(common.Blake2b256Hasher, root, hashNumber(leafIndex), proof)
			require.NoError(t, err, "leaf %d of %d", leafIndex, leafCount)
			assert.True(t, ok, "leaf %d of %d", leafIndex, leafCount)

			ok, err = VerifyLeafProof(common.Blake2b256Hasher, root, hashNumber(leafCount+1), proof)
			require.NoError(t, err)
			assert.False(t, ok)
		}
	}
}

func Test_GenerateProof_leafNotFound(t *testing.T) {
	t.Parallel()

	mmr := newFilledMMR(t, 3)
	_, err := mmr.GenerateProof(3)
	assert.ErrorIs(t, err, ErrLeafNotFound)
}

func Test_VerifyLeafProof_errors(t *testing.T) {
	t.Parallel()

	mmr := newFilledMMR(t, 8)
	root, err := mmr.Root()
	require.NoError(t, err)
	proof, err := mmr.GenerateProof(2)
	require.NoError(t, err)
	leaf := hashNumber(2)

	testCases := map[string]struct {
		proof      Proof
		errWrapped error
		errMessage string
	}{
		"leaf index equal to leaf count": {
			proof:      Proof{LeafIndex: 8, LeafCount: 8, Items: proof.Items},
			errWrapped: ErrInvalidLeafIndex,
			errMessage: "invalid leaf index: index 8, leaf count 8",
		},
		"zero leaf count": {
			proof:      Proof{},
			errWrapped: ErrInvalidLeafIndex,
			errMessage: "invalid leaf index: index 0, leaf count 0",
		},
		"leaf count overflow": {
			proof:      Proof{LeafIndex: 1, LeafCount: MaxLeafCount + 1},
			errWrapped: ErrInvalidLeafIndex,
		},
		"missing items": {
			proof:      Proof{LeafIndex: 2, LeafCount: 8, Items: proof.Items[:1]},
			errWrapped: ErrCorruptedProof,
		},
		"no items": {
			proof:      Proof{LeafIndex: 2, LeafCount: 8},
			errWrapped: ErrCorruptedProof,
			errMessage: "corrupted proof: missing sibling at position 4",
		},
		"extra item": {
			proof: Proof{LeafIndex: 2, LeafCount: 8,
				Items: append(append([]common.Hash{}, proof.Items...), common.Hash{1}, common.Hash{2})},
			errWrapped: ErrCorruptedProof,
			errMessage: "corrupted proof: 1 unused proof items",
		},
	}

	for name, testCase := range testCases {
		testCase := testCase
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			ok, err := VerifyLeafProof(common.Blake2b256Hasher, root, leaf, testCase.proof)
			assert.False(t, ok)
			assert.ErrorIs(t, err, testCase.errWrapped)
			if testCase.errMessage != "" {
				assert.EqualError(t, err, testCase.errMessage)
			}
		})
	}
}

func Test_VerifyLeafProof_singleLeaf(t *testing.T) {
	t.Parallel()

	leaf := hashNumber(0)

	ok, err := VerifyLeafProof(common.Blake2b256Hasher, leaf, leaf, Proof{LeafIndex: 0, LeafCount: 1})
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = VerifyLeafProof(common.Blake2b256Hasher, leaf, leaf,
		Proof{LeafIndex: 0, LeafCount: 1, Items: []common.Hash{leaf}})
	assert.ErrorIs(t, err, ErrCorruptedProof)
}

func Test_VerifyLeafProof_beefy(t *testing.T) {
	t.Parallel()

	root := common.MustHexToHash("0x7fe1460305e05d0937df34aa47a251811b0f83032fd153a64ebb8812cb252ee2")
	leafHash := common.MustHexToHash("0x1e638bba76d6a942cc8cded649c5184a8f8764f7645a0a03ac4356846d07342e")
	proof := Proof{
		LeafIndex: 81,
		LeafCount: 89,
		Items: []common.Hash{
			common.MustHexToHash("0xbddfdcc0399d0ce1be41f1126f63053ecb26ee19c107c0f96013f216b7b21933"),
			common.MustHexToHash("0xf8611a08a46cd74fd96d54d2eb19898dbd743b019bf7ba32b17b9a193f0e65b8"),
			common.MustHexToHash("0xc231bab606963f6a5a05071bea9af2a30f22adc43224affe87b3f90d1a07d0db"),
			common.MustHexToHash("0x4b6a7c61c56d1174067b6e816970631b8727f6dfe3ebd3923581472d45f47ad3"),
			common.MustHexToHash("0x940e1f16782fd635f4789d7f5674d2cbf12d1bbd7823c6ee37c807ad34424d48"),
			common.MustHexToHash("0xf0e3888f05a1d6183d9dbf8a91d3400ea2047b5e19d498968011e63b91058fbd"),
		},
	}

	ok, err := VerifyLeafProof(common.Keccak256Hasher, root, leafHash, proof)
	require.NoError(t, err)
	assert.True(t, ok)

	// same proof against the blake2b hasher resolves to another root
	ok, err = VerifyLeafProof(common.Blake2b256Hasher, root, leafHash, proof)
	require.NoError(t, err)
	assert.False(t, ok)

	for i := range proof.Items {
		tampered := Proof{LeafIndex: proof.LeafIndex, LeafCount: proof.LeafCount}
		tampered.Items = append([]common.Hash{}, proof.Items...)
		tampered.Items[i][0] ^= 0xff

		ok, err := VerifyLeafProof(common.Keccak256Hasher, root, leafHash, tampered)
		require.NoError(t, err)
		assert.False(t, ok, "item %d", i)
	}
}

func Test_VerifyLeafProof_property(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		leafCount := rapid.Uint32Range(1, 150).Draw(t, "leafCount").(uint32)
		leafIndex := rapid.Uint32Range(0, leafCount-1).Draw(t, "leafIndex").(uint32)

		mmr := newFilledMMR(t, leafCount)
		root, err := mmr.Root()
		require.NoError(t, err)
		proof, err := mmr.GenerateProof(uint64(leafIndex))
		require.NoError(t, err)

		ok, err := VerifyLeafProof(common.Blake2b256Hasher, root, hashNumber(leafIndex), proof)
		require.NoError(t, err)
		require.True(t, ok)

		if len(proof.Items) == 0 {
			return
		}
		item := rapid.IntRange(0, len(proof.Items)-1).Draw(t, "item").(int)
		bit := rapid.IntRange(0, 8*common.HashLength-1).Draw(t, "bit").(int)
		proof.Items[item][bit/8] ^= 1 << (bit % 8)

		ok, err = VerifyLeafProof(common.Blake2b256Hasher, root, hashNumber(leafIndex), proof)
		require.NoError(t, err)
		require.False(t, ok)
	})
}
