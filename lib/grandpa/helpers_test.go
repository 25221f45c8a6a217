// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package grandpa

import (
	"testing"

	"github.com/ChainSafe/ics10-grandpa/dot/types"
	"github.com/ChainSafe/ics10-grandpa/lib/beefy"
	"github.com/ChainSafe/ics10-grandpa/lib/common"
	"github.com/ChainSafe/ics10-grandpa/pkg/mmr"
	"github.com/ChainSafe/ics10-grandpa/pkg/trie/codec"
	"github.com/ChainSafe/ics10-grandpa/pkg/trie/proof"
	"github.com/stretchr/testify/require"
)

// Block 81 of a BEEFY enabled rococo local testnet, its MMR leaf and the
// proof of the leaf against the MMR root signed at block 89.
const (
	rococoHeader81 = "0x0a0d16c843ea46353523b5ae27c36be8803190002e31856efe55ba53cbc7c506450190a3c5adbd5222" +
		"dfd409e7a013e4bf8442e952b5a40bf48b4397c4c6d214693f6903a660f4e0eb80f7fba9a8903c3309f30fddc4d410eaa41dc7" +
		"cd2470a5093e1406424142453402000000009f6088200000000004424545468403041b6633c754170acfca68b802eb9f3d060a" +
		"28df9bc60f38189ef9f47e4677ba0442414245a9030114d43593c715fdd31c61141abd04a99fd6822c8558854ccde39a5684e7" +
		"a56da27d01000000000000008eaf04151687736326c9fea17e25fc5287613693c912909cb226aa4794f26a4801000000000000" +
		"0090b5ab205c6974c9ea841be688864633dc9ca8a357843eeacf2314649965fe220100000000000000306721211d5404bd9da8" +
		"8e0204360a1a9ab8b87c66c1bc2fcdd37f3c2222cc200100000000000000e659a7a1628cdd93febc04a4e0646ea20e9f5f0ce0" +
		"97d9a05290d4a9e054df4e010000000000000025f7d337e760a3b9bc1a7f2183392b2a0a2072ffdfbe15b31478b8c4186841de" +
		"008063e59bf81115597c4fbd864998d610cda6bbe32c6e1319488f3eaa3c3ba5966e05424142450101b05237f7f4a00c73a6a9" +
		"3fe9ed098d2dc2ba432720de0b147a3203617968df09509abdd370bba771e008864ea8d7ca01e4d6178f7d0bd3959aab19862c" +
		"b7a689"
	rococoStateRoot81 = "0x90a3c5adbd5222dfd409e7a013e4bf8442e952b5a40bf48b4397c4c6d214693f"
	rococoLeaf81      = "0x0051000000f728a8e3b29fb62b3234be2ba31e6beffd00bb571a978962ff9c26ea8dcc20ab" +
		"010000000000000005000000304803fa5a91d9852caafe04b4b867a4ed27a07a5bee3d1507b4b187a68777a2" +
		"0000000000000000000000000000000000000000000000000000000000000000"
	rococoPayload89 = "0x7fe1460305e05d0937df34aa47a251811b0f83032fd153a64ebb8812cb252ee2"
)

func rococoHeader(t *testing.T) Header {
	t.Helper()

	blockHeader, err := types.DecodeHeader(common.MustHexToBytes(rococoHeader81))
	require.NoError(t, err)

	leaf, err := beefy.DecodeMmrLeaf(common.MustHexToBytes(rococoLeaf81))
	require.NoError(t, err)

	return Header{
		BlockHeader: *blockHeader,
		MmrLeaf:     leaf,
		MmrLeafProof: beefy.MmrLeafProof{
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
		},
	}
}

// rococoClientState is a client whose latest commitment is the one signed at block 89.
func rococoClientState() ClientState {
	return ClientState{
		ChainType:         Subchain,
		ChainID:           "rococo-local",
		LatestBeefyHeight: NewHeight(0, 89),
		MmrRootHash:       common.MustHexToBytes(rococoPayload89),
		LatestChainHeight: NewHeight(0, 89),
		AuthoritySet: beefy.AuthoritySet{
			ID:   0,
			Len:  5,
			Root: common.MustHexToHash("0x304803fa5a91d9852caafe04b4b867a4ed27a07a5bee3d1507b4b187a68777a2"),
		},
		NextAuthoritySet: beefy.AuthoritySet{
			ID:   1,
			Len:  5,
			Root: common.MustHexToHash("0x304803fa5a91d9852caafe04b4b867a4ed27a07a5bee3d1507b4b187a68777a2"),
		},
	}
}

// singleEntryTrie returns the root of the trie holding only key and the
// merkle proof of key.
func singleEntryTrie(t *testing.T, key, value []byte) (root common.Hash, merkleProof []byte) {
	t.Helper()

	encoding, err := codec.Encode(codec.Leaf{
		PartialKey: codec.KeyLEToNibbles(key),
		Value:      codec.InlineValue{Data: value},
	})
	require.NoError(t, err)

	root = common.Blake2b256Hasher.Hash(encoding)
	merkleProof, err = proof.NewMerkleProof(key, root, proof.NewStorageProof([][]byte{encoding}))
	require.NoError(t, err)
	return root, merkleProof
}

// singleEntryStateProof returns the root of the trie holding only key and
// the state proof of key.
func singleEntryStateProof(t *testing.T, key, value []byte) (root common.Hash, stateProof StateProof) {
	t.Helper()

	encoding, err := codec.Encode(codec.Leaf{
		PartialKey: codec.KeyLEToNibbles(key),
		Value:      codec.InlineValue{Data: value},
	})
	require.NoError(t, err)

	return common.Blake2b256Hasher.Hash(encoding), StateProof{
		Key:    key,
		Value:  value,
		Proofs: [][]byte{encoding},
	}
}

// testChain is an MMR of keccak hashed BEEFY leaves.
type testChain struct {
	mmr    *mmr.MMR
	leaves []beefy.MmrLeaf
}

func newTestChain(t *testing.T, blocks int) *testChain {
	t.Helper()

	chain := &testChain{mmr: mmr.NewInMemMMR(common.Keccak256Hasher)}
	for i := 0; i < blocks; i++ {
		chain.push(t, beefy.MmrLeaf{
			ParentNumber: uint32(i),
			ParentHash:   common.Keccak256([]byte{byte(i), byte(i >> 8)}),
			BeefyNextAuthoritySet: beefy.AuthoritySet{
				ID:  1,
				Len: 5,
			},
		})
	}
	return chain
}

func (c *testChain) push(t *testing.T, leaf beefy.MmrLeaf) (leafIndex uint64) {
	t.Helper()

	hash, err := leaf.Hash()
	require.NoError(t, err)
	_, err = c.mmr.Push(hash)
	require.NoError(t, err)
	c.leaves = append(c.leaves, leaf)
	return uint64(len(c.leaves) - 1)
}

func (c *testChain) root(t *testing.T) common.Hash {
	t.Helper()

	root, err := c.mmr.Root()
	require.NoError(t, err)
	return root
}

func (c *testChain) proof(t *testing.T, leafIndex uint64) beefy.MmrLeafProof {
	t.Helper()

	p, err := c.mmr.GenerateProof(leafIndex)
	require.NoError(t, err)
	return beefy.MmrLeafProof{
		LeafIndex: p.LeafIndex,
		LeafCount: p.LeafCount,
		Items:     p.Items,
	}
}

// clientStateAt returns a subchain client whose latest commitment is the
// current root of the chain.
func (c *testChain) clientStateAt(t *testing.T) ClientState {
	t.Helper()

	cs := rococoClientState()
	cs.LatestBeefyHeight = NewHeight(0, uint64(len(c.leaves)))
	cs.LatestChainHeight = cs.LatestBeefyHeight
	cs.MmrRootHash = c.root(t).ToBytes()
	return cs
}
