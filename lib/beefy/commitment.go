// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package beefy

import (
	"bytes"
	"fmt"
	"io"
	"math/big"

	"github.com/ChainSafe/ics10-grandpa/lib/common"
	"github.com/centrifuge/go-substrate-rpc-client/v4/scale"
)

// SignatureLength is the length of a recoverable ECDSA signature.
const SignatureLength = 65

// Commitment is what BEEFY validators sign: the MMR root of the chain
// at a block, and the id of the validator set signing it.
type Commitment struct {
	// Payload is the MMR root.
	Payload        []byte `json:"payload"`
	BlockNumber    uint32 `json:"blockNumber"`
	ValidatorSetID uint64 `json:"validatorSetId"`
}

func (c Commitment) String() string {
	return fmt.Sprintf("payload=%s block=%d validator set=%d",
		common.BytesToString(c.Payload), c.BlockNumber, c.ValidatorSetID)
}

// Encode SCALE encodes the commitment.
func (c Commitment) Encode(encoder scale.Encoder) error {
	if len(c.Payload) != common.HashLength {
		return fmt.Errorf("%w: got %d", ErrPayloadLength, len(c.Payload))
	}

	err := encoder.Write(c.Payload)
	if err != nil {
		return err
	}

	err = encoder.Encode(c.BlockNumber)
	if err != nil {
		return err
	}

	return encoder.Encode(c.ValidatorSetID)
}

// Hash returns the keccak hash of the commitment encoding, the message
// signed by the validators.
func (c Commitment) Hash() (common.Hash, error) {
	encoding, err := common.ScaleEncode(c)
	if err != nil {
		return common.Hash{}, fmt.Errorf("encoding commitment: %w", err)
	}
	return common.Keccak256(encoding), nil
}

// DecodeCommitment decodes a SCALE encoded commitment spanning all of data.
func DecodeCommitment(data []byte) (c Commitment, err error) {
	reader := bytes.NewReader(data)
	c, err = decodeCommitment(reader)
	if err != nil {
		return c, err
	}
	return c, checkConsumed(reader)
}

func decodeCommitment(reader *bytes.Reader) (c Commitment, err error) {
	c.Payload = make([]byte, common.HashLength)
	_, err = io.ReadFull(reader, c.Payload)
	if err != nil {
		return c, fmt.Errorf("reading payload: %w", err)
	}

	decoder := scale.NewDecoder(reader)
	err = decoder.Decode(&c.BlockNumber)
	if err != nil {
		return c, fmt.Errorf("reading block number: %w", err)
	}

	err = decoder.Decode(&c.ValidatorSetID)
	if err != nil {
		return c, fmt.Errorf("reading validator set id: %w", err)
	}

	return c, nil
}

// Signature is a recoverable ECDSA signature over the commitment hash.
type Signature [SignatureLength]byte

// SignedCommitment is a commitment along with one optional signature per
// validator of the set, in validator order.
type SignedCommitment struct {
	Commitment Commitment   `json:"commitment"`
	Signatures []*Signature `json:"signatures"`
}

// SignatureCount returns the number of validators that signed.
func (sc SignedCommitment) SignatureCount() (count int) {
	for _, signature := range sc.Signatures {
		if signature != nil {
			count++
		}
	}
	return count
}

// Encode SCALE encodes the signed commitment.
func (sc SignedCommitment) Encode(encoder scale.Encoder) error {
	err := sc.Commitment.Encode(encoder)
	if err != nil {
		return fmt.Errorf("encoding commitment: %w", err)
	}

	err = encoder.EncodeUintCompact(*new(big.Int).SetUint64(uint64(len(sc.Signatures))))
	if err != nil {
		return err
	}

	for _, signature := range sc.Signatures {
		if signature == nil {
			err = encoder.PushByte(0)
			if err != nil {
				return err
			}
			continue
		}

		err = encoder.PushByte(1)
		if err != nil {
			return err
		}
		err = encoder.Write(signature[:])
		if err != nil {
			return err
		}
	}

	return nil
}

// DecodeSignedCommitment decodes a SCALE encoded signed commitment spanning all of data.
func DecodeSignedCommitment(data []byte) (sc SignedCommitment, err error) {
	reader := bytes.NewReader(data)
	sc.Commitment, err = decodeCommitment(reader)
	if err != nil {
		return sc, fmt.Errorf("decoding commitment: %w", err)
	}

	count, err := common.ReadScaleCompact(reader)
	if err != nil {
		return sc, fmt.Errorf("reading signature count: %w", err)
	}
	// each signature takes at least its option tag
	if count > uint64(reader.Len()) {
		return sc, fmt.Errorf("%w: %d signatures for %d bytes", ErrTooManySignatures, count, reader.Len())
	}

	sc.Signatures = make([]*Signature, count)
	for i := range sc.Signatures {
		tag, err := reader.ReadByte()
		if err != nil {
			return sc, fmt.Errorf("reading signature %d option: %w", i, err)
		}

		switch tag {
		case 0:
		case 1:
			signature := new(Signature)
			_, err = io.ReadFull(reader, signature[:])
			if err != nil {
				return sc, fmt.Errorf("reading signature %d: %w", i, err)
			}
			sc.Signatures[i] = signature
		default:
			return sc, fmt.Errorf("%w: %d for signature %d", ErrOptionTagUnknown, tag, i)
		}
	}

	return sc, checkConsumed(reader)
}
