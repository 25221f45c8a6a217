// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package grandpa

import (
	"errors"

	"github.com/ChainSafe/ics10-grandpa/pkg/storage"
)

// ErrDecode is returned when wire bytes cannot be decoded
var ErrDecode = errors.New("decode error")

// ErrEncode is returned when a value cannot be encoded
var ErrEncode = errors.New("encode error")

// ErrMissingLatestHeight is returned when a decoded client state has no latest height
var ErrMissingLatestHeight = errors.New("missing latest height")

// ErrMissingFrozenHeight is returned when freezing a client without a height
var ErrMissingFrozenHeight = errors.New("missing frozen height")

// ErrMissingCommitment is returned when a commitment update carries no payload
var ErrMissingCommitment = errors.New("missing commitment")

// ErrMissingAuthoritySet is returned when a decoded client state has no authority set
var ErrMissingAuthoritySet = errors.New("missing authority set")

// ErrUnknownChainType is returned for a chain type tag that is neither subchain nor parachain
var ErrUnknownChainType = errors.New("unknown chain type")

// ErrUnknownTypeURL is returned when unpacking an Any message of another type
var ErrUnknownTypeURL = errors.New("unknown type URL")

// ErrEmptyCommitment is returned when the MMR root to prove against is empty
var ErrEmptyCommitment = errors.New("empty commitment")

// ErrEmptyParentHash is returned when the MMR leaf has an empty parent hash
var ErrEmptyParentHash = errors.New("empty parent hash")

// ErrInvalidHeight is returned when a header is not covered by the latest commitment
var ErrInvalidHeight = errors.New("invalid height")

// ErrInvalidMmrLeafProof is returned when the MMR leaf is not proven by the MMR root
var ErrInvalidMmrLeafProof = errors.New("invalid mmr leaf proof")

// ErrInvalidParachainHeadsProof is returned when a parachain header is not
// proven by the parachain heads root of the MMR leaf
var ErrInvalidParachainHeadsProof = errors.New("invalid parachain heads proof")

// ErrInvalidHeaderHash is returned when the header hash differs from the MMR leaf parent hash
var ErrInvalidHeaderHash = errors.New("header hash does not match mmr leaf parent hash")

// ErrInvalidStorageProof is returned when a storage proof cannot be decoded or checked
var ErrInvalidStorageProof = errors.New("invalid storage proof")

// ErrInvalidTimestamp is returned when the timestamp storage proof does not hold a timestamp
var ErrInvalidTimestamp = errors.New("invalid timestamp")

// ErrInvalidConnectionState is returned when the proven connection end differs from the expected one
var ErrInvalidConnectionState = errors.New("invalid connection state")

// ErrInvalidChannelState is returned when the proven channel end differs from the expected one
var ErrInvalidChannelState = errors.New("invalid channel state")

// ErrInvalidClientState is returned when the proven client state differs from the expected one
var ErrInvalidClientState = errors.New("invalid client state")

// ErrInvalidPacketCommitment is returned when the proven packet commitment differs from the expected one
var ErrInvalidPacketCommitment = errors.New("invalid packet commitment")

// ErrInvalidPacketAck is returned when the proven acknowledgement differs from the expected one
var ErrInvalidPacketAck = errors.New("invalid packet acknowledgement")

// ErrInvalidNextSequenceRecv is returned when the proven next receive sequence is above the expected one
var ErrInvalidNextSequenceRecv = errors.New("invalid next sequence recv")

// ErrPacketReceiptPresent is returned when a packet receipt expected to be absent is proven present
var ErrPacketReceiptPresent = errors.New("packet receipt is present")

// ErrWrongKeyNumber is returned when a storage key has an unsupported number of parts
var ErrWrongKeyNumber = storage.ErrWrongKeyNumber

// ErrInvalidAuthoritySet is returned when a commitment is signed by an
// unexpected validator set or the next authority set does not follow the current one
var ErrInvalidAuthoritySet = errors.New("invalid authority set")

// ErrStaleCommitment is returned for a commitment not newer than the latest one
var ErrStaleCommitment = errors.New("stale commitment")

// ErrFrozen is returned for any update or verification of a frozen client
var ErrFrozen = errors.New("client is frozen")

// ErrConsensusStateNotFound is returned when no consensus state is stored at a height
var ErrConsensusStateNotFound = errors.New("consensus state not found")

// ErrNotEnforced is returned by verifications this client does not perform yet
var ErrNotEnforced = errors.New("verification not enforced")
