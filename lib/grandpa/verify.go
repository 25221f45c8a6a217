// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package grandpa

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/ChainSafe/ics10-grandpa/lib/common"
	"github.com/ChainSafe/ics10-grandpa/pkg/storage"
	"github.com/ChainSafe/ics10-grandpa/pkg/trie/proof"
)

// VerifyConnectionState verifies the proof that the counterparty stores
// the expected connection end under the connection id.
func (c *Client) VerifyConnectionState(clientID string, clientState ClientState, height Height,
	merkleProof []byte, connectionID string, expectedConnectionEnd []byte) error {
	stored, err := c.readStorage(clientID, clientState, height, merkleProof,
		storage.Connections, []byte(connectionID))
	if err != nil {
		return err
	}
	if stored == nil {
		return fmt.Errorf("%w: connection %s not found", ErrInvalidConnectionState, connectionID)
	}

	if !bytes.Equal(stored, expectedConnectionEnd) {
		return fmt.Errorf("%w: connection %s", ErrInvalidConnectionState, connectionID)
	}
	return nil
}

// VerifyChannelState verifies the proof that the counterparty stores the
// expected channel end under the port and channel ids.
func (c *Client) VerifyChannelState(clientID string, clientState ClientState, height Height,
	merkleProof []byte, portID, channelID string, expectedChannelEnd []byte) error {
	stored, err := c.readStorage(clientID, clientState, height, merkleProof,
		storage.Channels, []byte(portID), []byte(channelID))
	if err != nil {
		return err
	}
	if stored == nil {
		return fmt.Errorf("%w: channel %s/%s not found", ErrInvalidChannelState, portID, channelID)
	}

	if !bytes.Equal(stored, expectedChannelEnd) {
		return fmt.Errorf("%w: channel %s/%s", ErrInvalidChannelState, portID, channelID)
	}
	return nil
}

// VerifyClientFullState verifies the proof that the counterparty stores
// the expected client state for its client of this chain.
func (c *Client) VerifyClientFullState(clientID string, clientState ClientState, height Height,
	merkleProof []byte, counterpartyClientID string, expectedClientState []byte) error {
	stored, err := c.readStorage(clientID, clientState, height, merkleProof,
		storage.ClientStates, []byte(counterpartyClientID))
	if err != nil {
		return err
	}
	if stored == nil {
		return fmt.Errorf("%w: client %s not found", ErrInvalidClientState, counterpartyClientID)
	}

	if !bytes.Equal(stored, expectedClientState) {
		return fmt.Errorf("%w: client %s", ErrInvalidClientState, counterpartyClientID)
	}
	return nil
}

// VerifyClientConsensusState is not enforced: the counterparty does not
// expose consensus states in a provable storage item.
func (c *Client) VerifyClientConsensusState(clientID string, clientState ClientState, height Height,
	merkleProof []byte, counterpartyClientID string, consensusHeight Height, expectedConsensusState []byte) error {
	return fmt.Errorf("%w: client consensus state of %s at %s", ErrNotEnforced, counterpartyClientID, consensusHeight)
}

// VerifyUpgradeAndUpdateState is not enforced.
func (c *Client) VerifyUpgradeAndUpdateState(clientState ClientState, consensusState ConsensusState,
	upgradeClientProof, upgradeConsensusStateProof []byte) (ClientState, ConsensusState, error) {
	return ClientState{}, ConsensusState{}, fmt.Errorf("%w: client upgrade", ErrNotEnforced)
}

// VerifyPacketData verifies the proof that the counterparty stores the
// packet commitment of the sequence.
func (c *Client) VerifyPacketData(clientID string, clientState ClientState, height Height,
	merkleProof []byte, portID, channelID string, sequence uint64, commitment []byte) error {
	stored, err := c.readStorage(clientID, clientState, height, merkleProof,
		storage.PacketCommitment, []byte(portID), []byte(channelID), storage.EncodeSequence(sequence))
	if err != nil {
		return err
	}
	if stored == nil {
		return fmt.Errorf("%w: sequence %d not found", ErrInvalidPacketCommitment, sequence)
	}

	if !bytes.Equal(stored, common.ScaleEncodeBytes(commitment)) {
		return fmt.Errorf("%w: sequence %d", ErrInvalidPacketCommitment, sequence)
	}
	return nil
}

// VerifyPacketAcknowledgement verifies the proof that the counterparty
// stores the commitment of the acknowledgement of the sequence.
func (c *Client) VerifyPacketAcknowledgement(clientID string, clientState ClientState, height Height,
	merkleProof []byte, portID, channelID string, sequence uint64, acknowledgement []byte) error {
	stored, err := c.readStorage(clientID, clientState, height, merkleProof,
		storage.Acknowledgements, []byte(portID), []byte(channelID), storage.EncodeSequence(sequence))
	if err != nil {
		return err
	}
	if stored == nil {
		return fmt.Errorf("%w: sequence %d not found", ErrInvalidPacketAck, sequence)
	}

	if !bytes.Equal(stored, common.ScaleEncodeBytes(AcknowledgementCommitment(acknowledgement))) {
		return fmt.Errorf("%w: sequence %d", ErrInvalidPacketAck, sequence)
	}
	return nil
}

// VerifyNextSequenceRecv verifies the proof that the next sequence to be
// received by the counterparty channel is at most the given sequence.
func (c *Client) VerifyNextSequenceRecv(clientID string, clientState ClientState, height Height,
	merkleProof []byte, portID, channelID string, sequence uint64) error {
	stored, err := c.readStorage(clientID, clientState, height, merkleProof,
		storage.NextSequenceRecv, []byte(portID), []byte(channelID))
	if err != nil {
		return err
	}
	if stored == nil {
		return fmt.Errorf("%w: channel %s/%s not found", ErrInvalidNextSequenceRecv, portID, channelID)
	}

	var storedSequence uint64
	err = common.ScaleDecode(stored, &storedSequence)
	if err != nil {
		return fmt.Errorf("%w: next sequence recv: %s", ErrDecode, err)
	}

	if storedSequence > sequence {
		return fmt.Errorf("%w: stored %d, expected at most %d", ErrInvalidNextSequenceRecv, storedSequence, sequence)
	}
	return nil
}

// VerifyPacketReceiptAbsence verifies the proof that the counterparty has
// no receipt for the sequence.
func (c *Client) VerifyPacketReceiptAbsence(clientID string, clientState ClientState, height Height,
	merkleProof []byte, portID, channelID string, sequence uint64) error {
	stored, err := c.readStorage(clientID, clientState, height, merkleProof,
		storage.PacketReceipt, []byte(portID), []byte(channelID), storage.EncodeSequence(sequence))
	if err != nil {
		return err
	}
	if stored != nil {
		return fmt.Errorf("%w: sequence %d", ErrPacketReceiptPresent, sequence)
	}
	return nil
}

// AcknowledgementCommitment returns the commitment stored for an
// acknowledgement: the hex encoded SHA-256 of the acknowledgement bytes
// written as a list of decimal numbers.
func AcknowledgementCommitment(acknowledgement []byte) []byte {
	digest := sha256.Sum256([]byte(formatByteList(acknowledgement)))
	return []byte(hex.EncodeToString(digest[:]))
}

// formatByteList formats bytes as [1, 2, 3].
func formatByteList(b []byte) string {
	var builder strings.Builder
	builder.WriteByte('[')
	for i, value := range b {
		if i > 0 {
			builder.WriteString(", ")
		}
		builder.WriteString(strconv.Itoa(int(value)))
	}
	builder.WriteByte(']')
	return builder.String()
}

// readStorage checks the merkle proof against the state root of the
// consensus state at height and returns the byte vector stored under the
// entity key, or nil if the key is proven absent.
func (c *Client) readStorage(clientID string, clientState ClientState, height Height,
	merkleProof []byte, entity storage.Entity, keyParts ...[]byte) ([]byte, error) {
	if clientState.FrozenHeight != nil && height.GTE(*clientState.FrozenHeight) {
		return nil, fmt.Errorf("%w: at height %s, verifying at %s", ErrFrozen, clientState.FrozenHeight, height)
	}

	key, err := c.table.Key(entity, keyParts...)
	if err != nil {
		return nil, err
	}

	consensusState, err := c.reader.ConsensusState(clientID, height)
	if err != nil {
		return nil, fmt.Errorf("fetching consensus state at %s: %w", height, err)
	}
	stateRoot, err := consensusState.StateRoot()
	if err != nil {
		return nil, err
	}

	storageProof, err := proof.FromMerkleProof(merkleProof)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStorageProof, err)
	}

	value, err := proof.ReadProofCheck(stateRoot, storageProof, key, c.trieHasher)
	if err != nil {
		return nil, fmt.Errorf("%w: %s key %s: %s", ErrInvalidStorageProof, entity, common.BytesToString(key), err)
	}
	if value == nil {
		c.logger.Tracef("%s key %s proven absent at %s", entity, common.BytesToString(key), height)
		return nil, nil
	}

	stored, err := common.ScaleDecodeBytes(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %s value: %s", ErrDecode, entity, err)
	}
	return stored, nil
}
