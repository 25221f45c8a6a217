// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package grandpa

import (
	"bytes"
	"fmt"
	"math"

	"github.com/ChainSafe/ics10-grandpa/lib/beefy"
	"github.com/ChainSafe/ics10-grandpa/lib/common"
	"github.com/qdm12/gotree"
)

// ChainType is the kind of counterparty chain followed by a client.
type ChainType int32

const (
	// Subchain is a solo chain finalised by its own GRANDPA and BEEFY validators.
	Subchain ChainType = iota
	// Parachain is a parachain whose headers are proven through the relay chain.
	Parachain
)

// ChainTypeFromInt32 returns the chain type of the given wire tag.
func ChainTypeFromInt32(tag int32) (ChainType, error) {
	switch ChainType(tag) {
	case Subchain, Parachain:
		return ChainType(tag), nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrUnknownChainType, tag)
	}
}

func (c ChainType) String() string {
	switch c {
	case Subchain:
		return "Subchain"
	case Parachain:
		return "Parachain"
	default:
		return fmt.Sprintf("ChainType(%d)", int32(c))
	}
}

// Status is the state of a client.
type Status string

const (
	// Active clients accept updates.
	Active Status = "Active"
	// Frozen clients are terminal.
	Frozen Status = "Frozen"
)

// ClientState is the trusted state of a client. The latest commitment is
// made of MmrRootHash, the revision height of LatestBeefyHeight and the id
// of AuthoritySet.
type ClientState struct {
	ChainType             ChainType
	ChainID               string
	ParachainID           uint32
	BeefyActivationHeight uint32
	LatestBeefyHeight     Height
	MmrRootHash           []byte
	LatestChainHeight     Height
	FrozenHeight          *Height
	AuthoritySet          beefy.AuthoritySet
	NextAuthoritySet      beefy.AuthoritySet
}

// LatestCommitment returns the commitment the client state was last updated with.
func (cs ClientState) LatestCommitment() (beefy.Commitment, error) {
	blockNumber := cs.LatestBeefyHeight.RevisionHeight
	if blockNumber > math.MaxUint32 {
		return beefy.Commitment{}, fmt.Errorf("%w: latest beefy height %d overflows 32 bits",
			ErrInvalidHeight, blockNumber)
	}
	return beefy.Commitment{
		Payload:        cs.MmrRootHash,
		BlockNumber:    uint32(blockNumber),
		ValidatorSetID: cs.AuthoritySet.ID,
	}, nil
}

// LatestHeight returns the latest height of the counterparty chain known to the client.
func (cs ClientState) LatestHeight() Height {
	return cs.LatestChainHeight
}

// IsFrozen returns true once the client is frozen.
func (cs ClientState) IsFrozen() bool {
	return cs.FrozenHeight != nil
}

// Status returns Frozen for a frozen client and Active otherwise.
func (cs ClientState) Status() Status {
	if cs.IsFrozen() {
		return Frozen
	}
	return Active
}

// Validate checks the invariants held by every client state.
func (cs ClientState) Validate() error {
	_, err := ChainTypeFromInt32(int32(cs.ChainType))
	if err != nil {
		return err
	}

	if cs.ChainID == "" {
		return fmt.Errorf("%w: empty chain id", ErrInvalidClientState)
	}

	if cs.ChainType == Parachain && cs.ParachainID == 0 {
		return fmt.Errorf("%w: parachain client without parachain id", ErrInvalidClientState)
	}

	if len(cs.MmrRootHash) != 0 && len(cs.MmrRootHash) != common.HashLength {
		return fmt.Errorf("%w: mmr root hash has %d bytes", ErrInvalidClientState, len(cs.MmrRootHash))
	}

	if cs.LatestBeefyHeight.RevisionHeight > math.MaxUint32 {
		return fmt.Errorf("%w: latest beefy height %s overflows 32 bits block numbers",
			ErrInvalidClientState, cs.LatestBeefyHeight)
	}

	// Parachain clients count chain heights in parachain blocks, which
	// cannot be compared with relay chain commitment blocks.
	if cs.ChainType == Subchain && cs.LatestChainHeight.LT(cs.LatestBeefyHeight) {
		return fmt.Errorf("%w: latest chain height %s below latest beefy height %s",
			ErrInvalidClientState, cs.LatestChainHeight, cs.LatestBeefyHeight)
	}

	if cs.NextAuthoritySet.ID < cs.AuthoritySet.ID {
		return fmt.Errorf("%w: next authority set id %d below current id %d",
			ErrInvalidAuthoritySet, cs.NextAuthoritySet.ID, cs.AuthoritySet.ID)
	}

	if cs.FrozenHeight != nil && cs.FrozenHeight.IsZero() {
		return fmt.Errorf("%w: zero frozen height", ErrMissingFrozenHeight)
	}

	return nil
}

// DeepCopy returns a copy of the client state sharing no memory with it.
func (cs ClientState) DeepCopy() ClientState {
	cp := cs
	if cs.MmrRootHash != nil {
		cp.MmrRootHash = make([]byte, len(cs.MmrRootHash))
		copy(cp.MmrRootHash, cs.MmrRootHash)
	}
	if cs.FrozenHeight != nil {
		frozenHeight := *cs.FrozenHeight
		cp.FrozenHeight = &frozenHeight
	}
	return cp
}

// Equal returns true if both client states hold the same values.
func (cs ClientState) Equal(other ClientState) bool {
	frozenEqual := (cs.FrozenHeight == nil) == (other.FrozenHeight == nil) &&
		(cs.FrozenHeight == nil || *cs.FrozenHeight == *other.FrozenHeight)
	return frozenEqual &&
		cs.ChainType == other.ChainType &&
		cs.ChainID == other.ChainID &&
		cs.ParachainID == other.ParachainID &&
		cs.BeefyActivationHeight == other.BeefyActivationHeight &&
		cs.LatestBeefyHeight == other.LatestBeefyHeight &&
		bytes.Equal(cs.MmrRootHash, other.MmrRootHash) &&
		cs.LatestChainHeight == other.LatestChainHeight &&
		cs.AuthoritySet == other.AuthoritySet &&
		cs.NextAuthoritySet == other.NextAuthoritySet
}

func (cs ClientState) String() string {
	return cs.StringNode().String()
}

// StringNode returns a gotree compatible node for String methods.
func (cs ClientState) StringNode() (stringNode *gotree.Node) {
	stringNode = gotree.New("Client state")
	stringNode.Appendf("Status: %s", cs.Status())
	stringNode.Appendf("Chain: %s %s", cs.ChainType, cs.ChainID)
	if cs.ChainType == Parachain {
		stringNode.Appendf("Parachain id: %d", cs.ParachainID)
	}
	stringNode.Appendf("Beefy activation height: %d", cs.BeefyActivationHeight)
	stringNode.Appendf("Latest beefy height: %s", cs.LatestBeefyHeight)
	stringNode.Appendf("Mmr root hash: %s", common.BytesToString(cs.MmrRootHash))
	stringNode.Appendf("Latest chain height: %s", cs.LatestChainHeight)
	if cs.FrozenHeight != nil {
		stringNode.Appendf("Frozen height: %s", cs.FrozenHeight)
	}
	stringNode.Appendf("Authority set: %s", cs.AuthoritySet)
	stringNode.Appendf("Next authority set: %s", cs.NextAuthoritySet)
	return stringNode
}
