// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package grandpa

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/ChainSafe/ics10-grandpa/dot/types"
	"github.com/ChainSafe/ics10-grandpa/lib/beefy"
	"github.com/ChainSafe/ics10-grandpa/lib/common"
	"github.com/ChainSafe/ics10-grandpa/pkg/merkle"
	"github.com/ChainSafe/ics10-grandpa/pkg/storage"
	"github.com/ChainSafe/ics10-grandpa/pkg/trie/proof"
)

// Header is the message updating a client: a block header along with the
// MMR leaf proving it and, for parachain clients, the parachain header
// included in that block.
type Header struct {
	BlockHeader     types.Header
	MmrLeaf         beefy.MmrLeaf
	MmrLeafProof    beefy.MmrLeafProof
	ParachainHeader *ParachainHeader
	Timestamp       *StateProof
}

// ParachainHeader is a parachain header proven against the parachain
// heads root of an MMR leaf.
type ParachainHeader struct {
	ParachainID uint32
	// BlockHeader is the SCALE encoded parachain header.
	BlockHeader []byte
	// Proofs are the sibling hashes of the binary merkle proof.
	Proofs      [][]byte
	HeaderIndex uint32
	HeaderCount uint32
	Timestamp   *StateProof
}

// StateProof proves the value of a storage key.
type StateProof struct {
	Key    []byte
	Value  []byte
	Proofs [][]byte
}

// ParachainHeadsLeaf returns the leaf committing to the head of a
// parachain in the parachain heads merkle tree: the SCALE encoding of
// the parachain id followed by the encoded head.
func ParachainHeadsLeaf(parachainID uint32, encodedHeader []byte) []byte {
	id := make([]byte, 4)
	binary.LittleEndian.PutUint32(id, parachainID)
	return common.ConcatBytes(id, common.ScaleEncodeBytes(encodedHeader))
}

// verify checks the parachain header is included in the parachain heads
// root and returns the decoded header.
func (ph ParachainHeader) verify(parachainHeads common.Hash) (*types.Header, error) {
	proofItems := make([]common.Hash, len(ph.Proofs))
	for i, item := range ph.Proofs {
		hash, err := common.HashFromBytes(item)
		if err != nil {
			return nil, fmt.Errorf("%w: proof item %d: %s", ErrInvalidParachainHeadsProof, i, err)
		}
		proofItems[i] = hash
	}

	leaf := ParachainHeadsLeaf(ph.ParachainID, ph.BlockHeader)
	ok, err := merkle.VerifyProof(common.Keccak256Hasher, parachainHeads, proofItems,
		uint64(ph.HeaderCount), uint64(ph.HeaderIndex), leaf)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidParachainHeadsProof, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: parachain %d header %d of %d does not match root %s",
			ErrInvalidParachainHeadsProof, ph.ParachainID, ph.HeaderIndex, ph.HeaderCount, parachainHeads.Short())
	}

	return decodeParachainBlockHeader(ph.BlockHeader)
}

func decodeParachainBlockHeader(encoded []byte) (*types.Header, error) {
	header, err := types.DecodeHeader(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: parachain header: %s", ErrDecode, err)
	}
	return header, nil
}

// TimestampKey returns the storage key of the block timestamp, Timestamp.Now.
func TimestampKey() ([]byte, error) {
	return storage.ValueKey("Timestamp", "Now")
}

// verifyTimestamp checks the proof against the state root and returns the
// block timestamp it holds.
func (sp StateProof) verifyTimestamp(stateRoot common.Hash, hasher common.Hasher) (time.Time, error) {
	key, err := TimestampKey()
	if err != nil {
		return time.Time{}, err
	}

	if string(sp.Key) != string(key) {
		return time.Time{}, fmt.Errorf("%w: proof key %s is not the timestamp key %s",
			ErrInvalidTimestamp, common.BytesToHex(sp.Key), common.BytesToHex(key))
	}

	value, err := proof.Verify(stateRoot, proof.NewStorageProof(sp.Proofs), key, sp.Value, hasher)
	switch {
	case errors.Is(err, proof.ErrKeyNotFoundInProofTrie):
		return time.Time{}, fmt.Errorf("%w: timestamp proven absent", ErrInvalidTimestamp)
	case errors.Is(err, proof.ErrValueMismatchProofTrie):
		return time.Time{}, fmt.Errorf("%w: %s", ErrInvalidTimestamp, err)
	case err != nil:
		return time.Time{}, fmt.Errorf("%w: timestamp: %s", ErrInvalidStorageProof, err)
	}

	var millis uint64
	err = common.ScaleDecode(value, &millis)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: decoding %s: %s", ErrInvalidTimestamp, common.BytesToString(value), err)
	}
	if millis > uint64(1<<63-1) {
		return time.Time{}, fmt.Errorf("%w: %d milliseconds", ErrInvalidTimestamp, millis)
	}

	return time.UnixMilli(int64(millis)).UTC(), nil
}
