// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package grandpa

import (
	"bytes"
	"fmt"
	"time"

	"github.com/ChainSafe/ics10-grandpa/lib/common"
)

// ConsensusState is the state of the counterparty chain at an accepted header.
type ConsensusState struct {
	// Root is the state root of the accepted header.
	Root []byte
	// MmrRoot is the MMR root the header was proven against.
	MmrRoot common.Hash
	// Timestamp is the block timestamp when proven, the zero time otherwise.
	Timestamp time.Time
}

// Validate checks the consensus state holds a state root.
func (cs ConsensusState) Validate() error {
	if len(cs.Root) != common.HashLength {
		return fmt.Errorf("%w: state root has %d bytes", ErrDecode, len(cs.Root))
	}
	return nil
}

// StateRoot returns the state root as a hash.
func (cs ConsensusState) StateRoot() (common.Hash, error) {
	root, err := common.HashFromBytes(cs.Root)
	if err != nil {
		return common.Hash{}, fmt.Errorf("%w: state root: %s", ErrDecode, err)
	}
	return root, nil
}

// Equal returns true if both consensus states hold the same values.
func (cs ConsensusState) Equal(other ConsensusState) bool {
	return bytes.Equal(cs.Root, other.Root) &&
		cs.MmrRoot == other.MmrRoot &&
		cs.Timestamp.Equal(other.Timestamp)
}

func (cs ConsensusState) String() string {
	return fmt.Sprintf("root=%s mmr root=%s timestamp=%s",
		common.BytesToString(cs.Root), cs.MmrRoot.Short(), cs.Timestamp.UTC().Format(time.RFC3339Nano))
}
