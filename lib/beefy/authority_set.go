// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package beefy

import (
	"bytes"
	"fmt"
	"io"
	"math"

	"github.com/ChainSafe/ics10-grandpa/lib/common"
	"github.com/ChainSafe/ics10-grandpa/pkg/merkle"
	"github.com/centrifuge/go-substrate-rpc-client/v4/scale"
)

// AuthoritySet is the BEEFY validator set committed to by an MMR leaf:
// its id, its size and the binary merkle root of the validator addresses.
type AuthoritySet struct {
	ID   uint64      `json:"id"`
	Len  uint32      `json:"len"`
	Root common.Hash `json:"root"`
}

// NewAuthoritySet returns the authority set of the given validator
// addresses, the root being the keccak binary merkle root of the addresses.
func NewAuthoritySet(id uint64, addresses [][]byte) (set AuthoritySet, err error) {
	if uint64(len(addresses)) > math.MaxUint32 {
		return set, fmt.Errorf("%w: %d authorities", ErrInvalidAuthoritySet, len(addresses))
	}

	return AuthoritySet{
		ID:   id,
		Len:  uint32(len(addresses)),
		Root: merkle.Root(common.Keccak256Hasher, addresses),
	}, nil
}

// IsNextOf returns true if the set directly follows current.
func (a AuthoritySet) IsNextOf(current AuthoritySet) bool {
	return current.ID != math.MaxUint64 && a.ID == current.ID+1
}

func (a AuthoritySet) String() string {
	return fmt.Sprintf("id=%d len=%d root=%s", a.ID, a.Len, a.Root.Short())
}

// Encode SCALE encodes the authority set.
func (a AuthoritySet) Encode(encoder scale.Encoder) error {
	err := encoder.Encode(a.ID)
	if err != nil {
		return err
	}

	err = encoder.Encode(a.Len)
	if err != nil {
		return err
	}

	return encoder.Write(a.Root[:])
}

// DecodeAuthoritySet decodes a SCALE encoded authority set spanning all of data.
func DecodeAuthoritySet(data []byte) (set AuthoritySet, err error) {
	reader := bytes.NewReader(data)
	set, err = decodeAuthoritySet(reader)
	if err != nil {
		return set, err
	}
	return set, checkConsumed(reader)
}

func decodeAuthoritySet(reader *bytes.Reader) (set AuthoritySet, err error) {
	decoder := scale.NewDecoder(reader)

	err = decoder.Decode(&set.ID)
	if err != nil {
		return set, fmt.Errorf("reading authority set id: %w", err)
	}

	err = decoder.Decode(&set.Len)
	if err != nil {
		return set, fmt.Errorf("reading authority set length: %w", err)
	}

	_, err = io.ReadFull(reader, set.Root[:])
	if err != nil {
		return set, fmt.Errorf("reading authority set root: %w", err)
	}

	return set, nil
}

func checkConsumed(reader *bytes.Reader) error {
	if reader.Len() != 0 {
		return fmt.Errorf("%w: %d bytes left", common.ErrTrailingBytes, reader.Len())
	}
	return nil
}
