// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package types

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"math/big"

	"github.com/ChainSafe/ics10-grandpa/lib/common"
	"github.com/centrifuge/go-substrate-rpc-client/v4/scale"
)

// ErrBlockNumberOverflow is returned when a decoded block number does not fit in 32 bits.
var ErrBlockNumberOverflow = errors.New("block number overflows 32 bits")

// Header is a state block header
type Header struct {
	ParentHash     common.Hash `json:"parentHash"`
	Number         uint32      `json:"number"`
	StateRoot      common.Hash `json:"stateRoot"`
	ExtrinsicsRoot common.Hash `json:"extrinsicsRoot"`
	Digest         Digest      `json:"digest"`
	hash           common.Hash
}

// NewHeader creates a new block header and sets its hash field
func NewHeader(parentHash, stateRoot, extrinsicsRoot common.Hash,
	number uint32, digest Digest) (*Header, error) {
	bh := &Header{
		ParentHash:     parentHash,
		Number:         number,
		StateRoot:      stateRoot,
		ExtrinsicsRoot: extrinsicsRoot,
		Digest:         digest,
	}

	_, err := bh.Hash()
	if err != nil {
		return nil, err
	}
	return bh, nil
}

// NewEmptyHeader returns a new header with all zero values
func NewEmptyHeader() *Header {
	return &Header{
		Digest: Digest{},
	}
}

// DeepCopy returns a deep copy of the header to prevent side effects down the road
func (bh *Header) DeepCopy() *Header {
	cp := NewEmptyHeader()
	cp.ParentHash = bh.ParentHash
	cp.Number = bh.Number
	cp.StateRoot = bh.StateRoot
	cp.ExtrinsicsRoot = bh.ExtrinsicsRoot

	if len(bh.Digest) > 0 {
		cp.Digest = make(Digest, len(bh.Digest))
		copy(cp.Digest, bh.Digest)
	}

	return cp
}

// String returns the formatted header as a string
func (bh *Header) String() string {
	hash, err := bh.Hash()
	if err != nil {
		return fmt.Sprintf("invalid header: %s", err)
	}
	return fmt.Sprintf("ParentHash=%s Number=%d StateRoot=%s ExtrinsicsRoot=%s Digest=%v Hash=%s",
		bh.ParentHash, bh.Number, bh.StateRoot, bh.ExtrinsicsRoot, bh.Digest, hash)
}

// Hash returns the Blake2b hash of the header encoding, computing it
// once and caching it for later calls.
func (bh *Header) Hash() (common.Hash, error) {
	if !bh.hash.IsEmpty() {
		return bh.hash, nil
	}

	encoding, err := common.ScaleEncode(bh)
	if err != nil {
		return common.Hash{}, fmt.Errorf("encoding header: %w", err)
	}

	bh.hash, err = common.Blake2bHash(encoding)
	if err != nil {
		return common.Hash{}, fmt.Errorf("hashing header: %w", err)
	}
	return bh.hash, nil
}

// Encode SCALE encodes the header
func (bh Header) Encode(encoder scale.Encoder) (err error) {
	err = encoder.Write(bh.ParentHash[:])
	if err != nil {
		return err
	}

	err = encoder.EncodeUintCompact(*new(big.Int).SetUint64(uint64(bh.Number)))
	if err != nil {
		return err
	}

	err = encoder.Write(bh.StateRoot[:])
	if err != nil {
		return err
	}

	err = encoder.Write(bh.ExtrinsicsRoot[:])
	if err != nil {
		return err
	}

	return bh.Digest.Encode(encoder)
}

// DecodeHeader decodes a SCALE encoded header spanning all of data
// and sets its hash from data.
func DecodeHeader(data []byte) (*Header, error) {
	reader := bytes.NewReader(data)
	bh, err := decodeHeader(reader)
	if err != nil {
		return nil, err
	}
	if reader.Len() != 0 {
		return nil, fmt.Errorf("%w: %d bytes left", common.ErrTrailingBytes, reader.Len())
	}

	bh.hash, err = common.Blake2bHash(data)
	if err != nil {
		return nil, fmt.Errorf("hashing header: %w", err)
	}
	return bh, nil
}

func decodeHeader(reader *bytes.Reader) (bh *Header, err error) {
	bh = NewEmptyHeader()

	_, err = io.ReadFull(reader, bh.ParentHash[:])
	if err != nil {
		return nil, fmt.Errorf("reading parent hash: %w", err)
	}

	number, err := common.ReadScaleCompact(reader)
	if err != nil {
		return nil, fmt.Errorf("reading block number: %w", err)
	}
	if number > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %d", ErrBlockNumberOverflow, number)
	}
	bh.Number = uint32(number)

	_, err = io.ReadFull(reader, bh.StateRoot[:])
	if err != nil {
		return nil, fmt.Errorf("reading state root: %w", err)
	}

	_, err = io.ReadFull(reader, bh.ExtrinsicsRoot[:])
	if err != nil {
		return nil, fmt.Errorf("reading extrinsics root: %w", err)
	}

	bh.Digest, err = decodeDigest(reader)
	if err != nil {
		return nil, fmt.Errorf("decoding digest: %w", err)
	}

	return bh, nil
}
