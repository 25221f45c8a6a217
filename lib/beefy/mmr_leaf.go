// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package beefy

import (
	"bytes"
	"fmt"
	"io"
	"math/big"

	"github.com/ChainSafe/ics10-grandpa/lib/common"
	"github.com/ChainSafe/ics10-grandpa/pkg/mmr"
	"github.com/centrifuge/go-substrate-rpc-client/v4/scale"
)

// MmrLeafLength is the length of a SCALE encoded MMR leaf.
const MmrLeafLength = 1 + 4 + common.HashLength + 8 + 4 + common.HashLength + common.HashLength

// MmrLeaf is the leaf appended to the BEEFY MMR for every block. It
// records the parent block, the next authority set and the root of the
// parachain heads included in the parent block.
type MmrLeaf struct {
	Version               uint8        `json:"version"`
	ParentNumber          uint32       `json:"parentNumber"`
	ParentHash            common.Hash  `json:"parentHash"`
	BeefyNextAuthoritySet AuthoritySet `json:"beefyNextAuthoritySet"`
	ParachainHeads        common.Hash  `json:"parachainHeads"`
}

// Encode SCALE encodes the leaf.
func (l MmrLeaf) Encode(encoder scale.Encoder) error {
	err := encoder.PushByte(l.Version)
	if err != nil {
		return err
	}

	err = encoder.Encode(l.ParentNumber)
	if err != nil {
		return err
	}

	err = encoder.Write(l.ParentHash[:])
	if err != nil {
		return err
	}

	err = l.BeefyNextAuthoritySet.Encode(encoder)
	if err != nil {
		return err
	}

	return encoder.Write(l.ParachainHeads[:])
}

// Bytes returns the SCALE encoding of the leaf.
func (l MmrLeaf) Bytes() ([]byte, error) {
	return common.ScaleEncode(l)
}

// Hash returns the keccak hash of the leaf encoding, the value stored in the MMR.
func (l MmrLeaf) Hash() (common.Hash, error) {
	return l.HashWith(common.Keccak256Hasher)
}

// HashWith returns the hash of the leaf encoding using the given hasher.
func (l MmrLeaf) HashWith(hasher common.Hasher) (common.Hash, error) {
	encoding, err := l.Bytes()
	if err != nil {
		return common.Hash{}, fmt.Errorf("encoding mmr leaf: %w", err)
	}
	return hasher.Hash(encoding), nil
}

// DecodeMmrLeaf decodes a SCALE encoded leaf spanning all of data.
func DecodeMmrLeaf(data []byte) (l MmrLeaf, err error) {
	reader := bytes.NewReader(data)

	l.Version, err = reader.ReadByte()
	if err != nil {
		return l, fmt.Errorf("reading version: %w", err)
	}

	err = scale.NewDecoder(reader).Decode(&l.ParentNumber)
	if err != nil {
		return l, fmt.Errorf("reading parent number: %w", err)
	}

	_, err = io.ReadFull(reader, l.ParentHash[:])
	if err != nil {
		return l, fmt.Errorf("reading parent hash: %w", err)
	}

	l.BeefyNextAuthoritySet, err = decodeAuthoritySet(reader)
	if err != nil {
		return l, fmt.Errorf("decoding next authority set: %w", err)
	}

	_, err = io.ReadFull(reader, l.ParachainHeads[:])
	if err != nil {
		return l, fmt.Errorf("reading parachain heads: %w", err)
	}

	return l, checkConsumed(reader)
}

// MmrLeafProof proves the leaf at LeafIndex in the MMR of LeafCount leaves.
type MmrLeafProof struct {
	LeafIndex uint64        `json:"leafIndex"`
	LeafCount uint64        `json:"leafCount"`
	Items     []common.Hash `json:"items"`
}

// Proof returns the proof in the form taken by the MMR verifier.
func (p MmrLeafProof) Proof() mmr.Proof {
	return mmr.Proof{
		LeafIndex: p.LeafIndex,
		LeafCount: p.LeafCount,
		Items:     p.Items,
	}
}

// Verify checks the leaf against the MMR root using keccak as MMR hasher.
func (p MmrLeafProof) Verify(root common.Hash, leaf MmrLeaf) (bool, error) {
	return p.VerifyWith(common.Keccak256Hasher, root, leaf)
}

// VerifyWith checks the leaf against the MMR root using the given hasher
// for both the leaf and the MMR nodes.
func (p MmrLeafProof) VerifyWith(hasher common.Hasher, root common.Hash, leaf MmrLeaf) (bool, error) {
	leafHash, err := leaf.HashWith(hasher)
	if err != nil {
		return false, err
	}
	return mmr.VerifyLeafProof(hasher, root, leafHash, p.Proof())
}

// Encode SCALE encodes the proof.
func (p MmrLeafProof) Encode(encoder scale.Encoder) error {
	err := encoder.Encode(p.LeafIndex)
	if err != nil {
		return err
	}

	err = encoder.Encode(p.LeafCount)
	if err != nil {
		return err
	}

	err = encoder.EncodeUintCompact(*new(big.Int).SetUint64(uint64(len(p.Items))))
	if err != nil {
		return err
	}

	for _, item := range p.Items {
		err = encoder.Write(item[:])
		if err != nil {
			return err
		}
	}
	return nil
}

// DecodeMmrLeafProof decodes a SCALE encoded proof spanning all of data.
func DecodeMmrLeafProof(data []byte) (p MmrLeafProof, err error) {
	reader := bytes.NewReader(data)
	decoder := scale.NewDecoder(reader)

	err = decoder.Decode(&p.LeafIndex)
	if err != nil {
		return p, fmt.Errorf("reading leaf index: %w", err)
	}

	err = decoder.Decode(&p.LeafCount)
	if err != nil {
		return p, fmt.Errorf("reading leaf count: %w", err)
	}

	count, err := common.ReadScaleCompact(reader)
	if err != nil {
		return p, fmt.Errorf("reading item count: %w", err)
	}
	if count > uint64(reader.Len()/common.HashLength) {
		return p, fmt.Errorf("%w: %d items for %d bytes", ErrTooManyProofItems, count, reader.Len())
	}

	p.Items = make([]common.Hash, count)
	for i := range p.Items {
		_, err = io.ReadFull(reader, p.Items[i][:])
		if err != nil {
			return p, fmt.Errorf("reading item %d: %w", i, err)
		}
	}

	return p, checkConsumed(reader)
}
