// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package grandpa

import (
	"fmt"
	"time"

	"github.com/ChainSafe/ics10-grandpa/lib/beefy"
	"github.com/ChainSafe/ics10-grandpa/lib/common"
)

// CheckHeaderAndUpdateState verifies the header against the client state
// and returns the updated client state along with the consensus state of
// the header. The given client state is never modified.
func (c *Client) CheckHeaderAndUpdateState(clientID string, clientState ClientState,
	header Header) (ClientState, ConsensusState, error) {
	if clientState.IsFrozen() {
		return ClientState{}, ConsensusState{}, fmt.Errorf("%w: at height %s", ErrFrozen, clientState.FrozenHeight)
	}

	latestBeefyHeight := clientState.LatestBeefyHeight
	if uint64(header.BlockHeader.Number) > latestBeefyHeight.RevisionHeight {
		return ClientState{}, ConsensusState{}, fmt.Errorf("%w: header number %d above latest commitment block %d",
			ErrInvalidHeight, header.BlockHeader.Number, latestBeefyHeight.RevisionHeight)
	}

	if len(clientState.MmrRootHash) == 0 {
		return ClientState{}, ConsensusState{}, fmt.Errorf("%w: client has no mmr root", ErrEmptyCommitment)
	}

	mmrRoot, err := c.selectMmrRoot(clientID, clientState, header.MmrLeafProof.LeafCount)
	if err != nil {
		return ClientState{}, ConsensusState{}, err
	}

	if header.MmrLeaf.ParentHash.IsEmpty() {
		return ClientState{}, ConsensusState{}, ErrEmptyParentHash
	}

	ok, err := header.MmrLeafProof.VerifyWith(c.mmrHasher, mmrRoot, header.MmrLeaf)
	if err != nil {
		return ClientState{}, ConsensusState{}, fmt.Errorf("%w: %s", ErrInvalidMmrLeafProof, err)
	}
	if !ok {
		return ClientState{}, ConsensusState{}, fmt.Errorf("%w: leaf %d of %d does not match root %s",
			ErrInvalidMmrLeafProof, header.MmrLeafProof.LeafIndex, header.MmrLeafProof.LeafCount, mmrRoot.Short())
	}

	if c.strictParentHash {
		headerHash, err := header.BlockHeader.Hash()
		if err != nil {
			return ClientState{}, ConsensusState{}, fmt.Errorf("%w: hashing header: %s", ErrEncode, err)
		}
		if headerHash != header.MmrLeaf.ParentHash {
			return ClientState{}, ConsensusState{}, fmt.Errorf("%w: header hash %s, leaf parent hash %s",
				ErrInvalidHeaderHash, headerHash.Short(), header.MmrLeaf.ParentHash.Short())
		}
	}

	stateRoot, number, timestampProof := header.BlockHeader.StateRoot, header.BlockHeader.Number, header.Timestamp
	if clientState.ChainType == Parachain {
		stateRoot, number, timestampProof, err = checkParachainHeader(clientState, header)
		if err != nil {
			return ClientState{}, ConsensusState{}, err
		}
	}

	var timestamp time.Time
	if timestampProof != nil {
		timestamp, err = timestampProof.verifyTimestamp(stateRoot, c.trieHasher)
		if err != nil {
			return ClientState{}, ConsensusState{}, err
		}
	}

	newClientState := clientState.DeepCopy()
	height := NewHeight(latestBeefyHeight.RevisionNumber, uint64(number))
	newClientState.LatestChainHeight = MaxHeight(clientState.LatestChainHeight, height)

	consensusState := ConsensusState{
		Root:      stateRoot.ToBytes(),
		MmrRoot:   mmrRoot,
		Timestamp: timestamp,
	}

	c.logger.Debugf("client %s accepted header %d with state root %s",
		clientID, number, stateRoot.Short())
	return newClientState, consensusState, nil
}

// HeaderHeight returns the height of the consensus state created by the
// header: the relay chain block number for subchain clients and the
// parachain block number for parachain clients.
func HeaderHeight(clientState ClientState, header Header) (Height, error) {
	number := header.BlockHeader.Number
	if clientState.ChainType == Parachain {
		if header.ParachainHeader == nil {
			return Height{}, fmt.Errorf("%w: missing parachain header", ErrInvalidParachainHeadsProof)
		}
		parachainHeader, err := decodeParachainBlockHeader(header.ParachainHeader.BlockHeader)
		if err != nil {
			return Height{}, err
		}
		number = parachainHeader.Number
	}
	return NewHeight(clientState.LatestBeefyHeight.RevisionNumber, uint64(number)), nil
}

// selectMmrRoot returns the MMR root the leaf proof is checked against:
// the latest commitment when the proof leaf count is its block number, or
// the MMR root retained by the consensus state at the leaf count height.
func (c *Client) selectMmrRoot(clientID string, clientState ClientState, leafCount uint64) (common.Hash, error) {
	if leafCount == clientState.LatestBeefyHeight.RevisionHeight {
		root, err := common.HashFromBytes(clientState.MmrRootHash)
		if err != nil {
			return common.Hash{}, fmt.Errorf("%w: mmr root hash: %s", ErrDecode, err)
		}
		c.logger.Tracef("client %s proving against latest commitment root %s", clientID, root.Short())
		return root, nil
	}

	height := NewHeight(clientState.LatestBeefyHeight.RevisionNumber, leafCount)
	consensusState, err := c.reader.ConsensusState(clientID, height)
	if err != nil {
		return common.Hash{}, fmt.Errorf("fetching consensus state at %s: %w", height, err)
	}
	if consensusState.MmrRoot.IsEmpty() {
		return common.Hash{}, fmt.Errorf("%w: consensus state at %s has no mmr root", ErrEmptyCommitment, height)
	}

	c.logger.Tracef("client %s proving against mmr root %s of consensus state at %s",
		clientID, consensusState.MmrRoot.Short(), height)
	return consensusState.MmrRoot, nil
}

func checkParachainHeader(clientState ClientState, header Header) (
	stateRoot common.Hash, number uint32, timestamp *StateProof, err error) {
	parachainHeader := header.ParachainHeader
	if parachainHeader == nil {
		return stateRoot, 0, nil, fmt.Errorf("%w: missing parachain header", ErrInvalidParachainHeadsProof)
	}

	if parachainHeader.ParachainID != clientState.ParachainID {
		return stateRoot, 0, nil, fmt.Errorf("%w: parachain id %d, client follows %d",
			ErrInvalidParachainHeadsProof, parachainHeader.ParachainID, clientState.ParachainID)
	}

	decoded, err := parachainHeader.verify(header.MmrLeaf.ParachainHeads)
	if err != nil {
		return stateRoot, 0, nil, err
	}

	return decoded.StateRoot, decoded.Number, parachainHeader.Timestamp, nil
}

// UpdateCommitment moves the client to a newer BEEFY commitment. The
// commitment must be signed by the current or the next authority set.
// When signed by the next set, the authority sets rotate and the new next
// set is the one recorded in the leaf, which must be proven by the
// commitment payload. The latest chain height of parachain clients is
// left unchanged, it only moves with parachain headers.
func (c *Client) UpdateCommitment(clientState ClientState, signedCommitment beefy.SignedCommitment,
	leaf beefy.MmrLeaf, leafProof beefy.MmrLeafProof) (ClientState, error) {
	if clientState.IsFrozen() {
		return ClientState{}, fmt.Errorf("%w: at height %s", ErrFrozen, clientState.FrozenHeight)
	}

	commitment := signedCommitment.Commitment
	if len(commitment.Payload) == 0 {
		return ClientState{}, ErrMissingCommitment
	}
	payload, err := common.HashFromBytes(commitment.Payload)
	if err != nil {
		return ClientState{}, fmt.Errorf("%w: payload: %s", ErrDecode, err)
	}

	blockNumber := uint64(commitment.BlockNumber)
	if len(clientState.MmrRootHash) > 0 && blockNumber <= clientState.LatestBeefyHeight.RevisionHeight {
		return ClientState{}, fmt.Errorf("%w: block %d not above latest commitment block %d",
			ErrStaleCommitment, blockNumber, clientState.LatestBeefyHeight.RevisionHeight)
	}

	newClientState := clientState.DeepCopy()
	switch {
	case commitment.ValidatorSetID == clientState.AuthoritySet.ID:
	case commitment.ValidatorSetID == clientState.NextAuthoritySet.ID:
		ok, err := leafProof.VerifyWith(c.mmrHasher, payload, leaf)
		if err != nil {
			return ClientState{}, fmt.Errorf("%w: %s", ErrInvalidMmrLeafProof, err)
		}
		if !ok {
			return ClientState{}, fmt.Errorf("%w: leaf %d of %d does not match payload %s",
				ErrInvalidMmrLeafProof, leafProof.LeafIndex, leafProof.LeafCount, payload.Short())
		}

		newCurrent, newNext := clientState.NextAuthoritySet, leaf.BeefyNextAuthoritySet
		if !newNext.IsNextOf(newCurrent) {
			return ClientState{}, fmt.Errorf("%w: leaf next authority set id %d does not follow id %d",
				ErrInvalidAuthoritySet, newNext.ID, newCurrent.ID)
		}
		newClientState.AuthoritySet = newCurrent
		newClientState.NextAuthoritySet = newNext
		c.logger.Debugf("rotated authority set to %s, next %s", newCurrent, newNext)
	default:
		return ClientState{}, fmt.Errorf("%w: commitment validator set id %d is neither current %d nor next %d",
			ErrInvalidAuthoritySet, commitment.ValidatorSetID, clientState.AuthoritySet.ID, clientState.NextAuthoritySet.ID)
	}

	height := NewHeight(clientState.LatestBeefyHeight.RevisionNumber, blockNumber)
	newClientState.MmrRootHash = payload.ToBytes()
	newClientState.LatestBeefyHeight = height
	if clientState.ChainType == Subchain {
		newClientState.LatestChainHeight = MaxHeight(clientState.LatestChainHeight, height)
	}

	c.logger.Debugf("updated commitment to block %d with %d signatures",
		commitment.BlockNumber, signedCommitment.SignatureCount())
	return newClientState, nil
}

// Freeze returns the client state frozen at the given height.
func Freeze(clientState ClientState, height Height) (ClientState, error) {
	if height.IsZero() {
		return ClientState{}, ErrMissingFrozenHeight
	}
	if clientState.IsFrozen() {
		return ClientState{}, fmt.Errorf("%w: at height %s", ErrFrozen, clientState.FrozenHeight)
	}

	frozen := clientState.DeepCopy()
	frozen.FrozenHeight = &height
	return frozen, nil
}
