// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package proof

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ChainSafe/ics10-grandpa/lib/common"
	ics23 "github.com/cosmos/ics23/go"
	"google.golang.org/protobuf/encoding/protowire"
)

// Errors returned when unwrapping an IBC MerkleProof.
var (
	ErrMerkleProofEmpty        = errors.New("merkle proof has no commitment proof")
	ErrMerkleProofMalformed    = errors.New("merkle proof is malformed")
	ErrCommitmentProofNotExist = errors.New("commitment proof is not an existence proof")
)

// merkleProofProofsField is the field number of the repeated
// commitment proofs of the IBC MerkleProof message.
const merkleProofProofsField protowire.Number = 1

// FromMerkleProof decodes an IBC MerkleProof message whose first ics23
// existence proof carries a JSON read proof as its value.
func FromMerkleProof(merkleProof []byte) (*StorageProof, error) {
	commitmentProofBytes, err := firstCommitmentProof(merkleProof)
	if err != nil {
		return nil, err
	}

	var commitmentProof ics23.CommitmentProof
	err = commitmentProof.Unmarshal(commitmentProofBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: decoding commitment proof: %s", ErrMerkleProofMalformed, err)
	}

	existenceProof := commitmentProof.GetExist()
	if existenceProof == nil {
		return nil, ErrCommitmentProofNotExist
	}

	storageProof, err := ParseReadProof(existenceProof.Value)
	if err != nil {
		return nil, fmt.Errorf("parsing existence proof value: %w", err)
	}
	return storageProof, nil
}

// NewMerkleProof wraps the read proof of a storage proof in an IBC
// MerkleProof message with a single ics23 existence proof for key.
func NewMerkleProof(key []byte, at common.Hash, proof *StorageProof) ([]byte, error) {
	readProof, err := json.Marshal(NewReadProof(at, proof))
	if err != nil {
		return nil, fmt.Errorf("encoding read proof JSON: %w", err)
	}

	commitmentProof := &ics23.CommitmentProof{
		Proof: &ics23.CommitmentProof_Exist{
			Exist: &ics23.ExistenceProof{
				Key:   key,
				Value: readProof,
			},
		},
	}
	commitmentProofBytes, err := commitmentProof.Marshal()
	if err != nil {
		return nil, fmt.Errorf("encoding commitment proof: %w", err)
	}

	merkleProof := protowire.AppendTag(nil, merkleProofProofsField, protowire.BytesType)
	merkleProof = protowire.AppendBytes(merkleProof, commitmentProofBytes)
	return merkleProof, nil
}

func firstCommitmentProof(merkleProof []byte) ([]byte, error) {
	for len(merkleProof) > 0 {
		number, wireType, n := protowire.ConsumeTag(merkleProof)
		if n < 0 {
			return nil, fmt.Errorf("%w: %s", ErrMerkleProofMalformed, protowire.ParseError(n))
		}
		merkleProof = merkleProof[n:]

		if number == merkleProofProofsField && wireType == protowire.BytesType {
			value, n := protowire.ConsumeBytes(merkleProof)
			if n < 0 {
				return nil, fmt.Errorf("%w: %s", ErrMerkleProofMalformed, protowire.ParseError(n))
			}
			return value, nil
		}

		n = protowire.ConsumeFieldValue(number, wireType, merkleProof)
		if n < 0 {
			return nil, fmt.Errorf("%w: %s", ErrMerkleProofMalformed, protowire.ParseError(n))
		}
		merkleProof = merkleProof[n:]
	}
	return nil, ErrMerkleProofEmpty
}
