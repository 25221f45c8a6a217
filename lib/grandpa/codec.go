// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package grandpa

import (
	"fmt"
	"math"

	"github.com/ChainSafe/ics10-grandpa/dot/types"
	"github.com/ChainSafe/ics10-grandpa/lib/beefy"
	"github.com/ChainSafe/ics10-grandpa/lib/common"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/anypb"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// Type URLs of the messages packed in Any envelopes.
const (
	ClientStateTypeURL       = "/ibc.lightclients.grandpa.v1.ClientState"
	ConsensusStateTypeURL    = "/ibc.lightclients.grandpa.v1.ConsensusState"
	HeaderTypeURL            = "/ibc.lightclients.grandpa.v1.Header"
	BeefyAuthoritySetTypeURL = "/ibc.lightclients.grandpa.v1.BeefyAuthoritySet"
)

// PackAny wraps the message in an Any envelope of the given type URL.
func PackAny(typeURL string, message []byte) ([]byte, error) {
	data, err := proto.Marshal(&anypb.Any{TypeUrl: typeURL, Value: message})
	if err != nil {
		return nil, fmt.Errorf("%w: any: %s", ErrEncode, err)
	}
	return data, nil
}

// UnpackAny returns the message of an Any envelope of the given type URL.
func UnpackAny(typeURL string, data []byte) ([]byte, error) {
	var envelope anypb.Any
	err := proto.Unmarshal(data, &envelope)
	if err != nil {
		return nil, fmt.Errorf("%w: any: %s", ErrDecode, err)
	}
	if envelope.TypeUrl != typeURL {
		return nil, fmt.Errorf("%w: %q, expected %q", ErrUnknownTypeURL, envelope.TypeUrl, typeURL)
	}
	return envelope.Value, nil
}

// PackClientState returns the client state in an Any envelope.
func PackClientState(cs ClientState) ([]byte, error) {
	return PackAny(ClientStateTypeURL, MarshalClientState(cs))
}

// UnpackClientState decodes a client state from an Any envelope.
func UnpackClientState(data []byte) (ClientState, error) {
	message, err := UnpackAny(ClientStateTypeURL, data)
	if err != nil {
		return ClientState{}, err
	}
	return UnmarshalClientState(message)
}

// PackConsensusState returns the consensus state in an Any envelope.
func PackConsensusState(cs ConsensusState) ([]byte, error) {
	message, err := MarshalConsensusState(cs)
	if err != nil {
		return nil, err
	}
	return PackAny(ConsensusStateTypeURL, message)
}

// UnpackConsensusState decodes a consensus state from an Any envelope.
func UnpackConsensusState(data []byte) (ConsensusState, error) {
	message, err := UnpackAny(ConsensusStateTypeURL, data)
	if err != nil {
		return ConsensusState{}, err
	}
	return UnmarshalConsensusState(message)
}

// PackHeader returns the header in an Any envelope.
func PackHeader(h Header) ([]byte, error) {
	message, err := MarshalHeader(h)
	if err != nil {
		return nil, err
	}
	return PackAny(HeaderTypeURL, message)
}

// UnpackHeader decodes a header from an Any envelope.
func UnpackHeader(data []byte) (Header, error) {
	message, err := UnpackAny(HeaderTypeURL, data)
	if err != nil {
		return Header{}, err
	}
	return UnmarshalHeader(message)
}

// PackAuthoritySet returns the authority set in an Any envelope.
func PackAuthoritySet(set beefy.AuthoritySet) ([]byte, error) {
	return PackAny(BeefyAuthoritySetTypeURL, MarshalAuthoritySet(set))
}

// UnpackAuthoritySet decodes an authority set from an Any envelope.
func UnpackAuthoritySet(data []byte) (beefy.AuthoritySet, error) {
	message, err := UnpackAny(BeefyAuthoritySetTypeURL, data)
	if err != nil {
		return beefy.AuthoritySet{}, err
	}
	return UnmarshalAuthoritySet(message)
}

func marshalHeight(h Height) []byte {
	var b []byte
	b = appendVarintField(b, 1, h.RevisionNumber)
	return appendVarintField(b, 2, h.RevisionHeight)
}

func unmarshalHeight(data []byte) (h Height, err error) {
	d := &fieldDecoder{b: data}
	for {
		num, typ, ok, err := d.next()
		if err != nil {
			return h, err
		} else if !ok {
			return h, nil
		}

		switch num {
		case 1:
			h.RevisionNumber, err = d.varint(num, typ)
		case 2:
			h.RevisionHeight, err = d.varint(num, typ)
		default:
			err = d.skip(num, typ)
		}
		if err != nil {
			return h, err
		}
	}
}

// MarshalAuthoritySet returns the protobuf encoding of the authority set.
func MarshalAuthoritySet(set beefy.AuthoritySet) []byte {
	var b []byte
	b = appendVarintField(b, 1, set.ID)
	b = appendVarintField(b, 2, uint64(set.Len))
	return appendBytesField(b, 3, set.Root[:])
}

// UnmarshalAuthoritySet decodes the protobuf encoding of an authority set.
func UnmarshalAuthoritySet(data []byte) (set beefy.AuthoritySet, err error) {
	d := &fieldDecoder{b: data}
	for {
		num, typ, ok, err := d.next()
		if err != nil {
			return set, fmt.Errorf("%w: authority set: %s", ErrDecode, err)
		} else if !ok {
			return set, nil
		}

		switch num {
		case 1:
			set.ID, err = d.varint(num, typ)
		case 2:
			var length uint64
			length, err = d.varint(num, typ)
			if err == nil && length > math.MaxUint32 {
				err = fmt.Errorf("length %d overflows 32 bits", length)
			}
			set.Len = uint32(length)
		case 3:
			var root []byte
			root, err = d.bytes(num, typ)
			if err == nil {
				set.Root, err = common.HashFromBytes(root)
			}
		default:
			err = d.skip(num, typ)
		}
		if err != nil {
			return set, fmt.Errorf("%w: authority set: %s", ErrDecode, err)
		}
	}
}

// MarshalClientState returns the protobuf encoding of the client state.
func MarshalClientState(cs ClientState) []byte {
	var b []byte
	b = appendVarintField(b, 1, uint64(int64(cs.ChainType)))
	b = appendBytesField(b, 2, []byte(cs.ChainID))
	b = appendVarintField(b, 3, uint64(cs.ParachainID))
	b = appendVarintField(b, 4, uint64(cs.BeefyActivationHeight))
	b = appendMessageField(b, 5, marshalHeight(cs.LatestBeefyHeight))
	b = appendBytesField(b, 6, cs.MmrRootHash)
	b = appendMessageField(b, 7, marshalHeight(cs.LatestChainHeight))
	if cs.FrozenHeight != nil {
		b = appendMessageField(b, 8, marshalHeight(*cs.FrozenHeight))
	}
	b = appendMessageField(b, 9, MarshalAuthoritySet(cs.AuthoritySet))
	return appendMessageField(b, 10, MarshalAuthoritySet(cs.NextAuthoritySet))
}

// UnmarshalClientState decodes and validates the protobuf encoding of a client state.
func UnmarshalClientState(data []byte) (cs ClientState, err error) {
	var hasLatestBeefyHeight, hasLatestChainHeight, hasAuthoritySet, hasNextAuthoritySet bool

	d := &fieldDecoder{b: data}
	for {
		num, typ, ok, err := d.next()
		if err != nil {
			return cs, fmt.Errorf("%w: client state: %s", ErrDecode, err)
		} else if !ok {
			break
		}

		var message []byte
		switch num {
		case 1:
			var tag uint64
			tag, err = d.varint(num, typ)
			if err == nil {
				cs.ChainType, err = ChainTypeFromInt32(int32(tag))
				if err != nil {
					return cs, err
				}
			}
		case 2:
			var chainID []byte
			chainID, err = d.bytes(num, typ)
			cs.ChainID = string(chainID)
		case 3:
			var id uint64
			id, err = d.varint(num, typ)
			if err == nil && id > math.MaxUint32 {
				err = fmt.Errorf("parachain id %d overflows 32 bits", id)
			}
			cs.ParachainID = uint32(id)
		case 4:
			var height uint64
			height, err = d.varint(num, typ)
			if err == nil && height > math.MaxUint32 {
				err = fmt.Errorf("beefy activation height %d overflows 32 bits", height)
			}
			cs.BeefyActivationHeight = uint32(height)
		case 5:
			message, err = d.bytes(num, typ)
			if err == nil {
				cs.LatestBeefyHeight, err = unmarshalHeight(message)
				hasLatestBeefyHeight = true
			}
		case 6:
			cs.MmrRootHash, err = d.bytes(num, typ)
		case 7:
			message, err = d.bytes(num, typ)
			if err == nil {
				cs.LatestChainHeight, err = unmarshalHeight(message)
				hasLatestChainHeight = true
			}
		case 8:
			message, err = d.bytes(num, typ)
			if err == nil {
				var frozenHeight Height
				frozenHeight, err = unmarshalHeight(message)
				cs.FrozenHeight = &frozenHeight
			}
		case 9:
			message, err = d.bytes(num, typ)
			if err == nil {
				cs.AuthoritySet, err = UnmarshalAuthoritySet(message)
				hasAuthoritySet = true
			}
		case 10:
			message, err = d.bytes(num, typ)
			if err == nil {
				cs.NextAuthoritySet, err = UnmarshalAuthoritySet(message)
				hasNextAuthoritySet = true
			}
		default:
			err = d.skip(num, typ)
		}
		if err != nil {
			return cs, fmt.Errorf("%w: client state: %s", ErrDecode, err)
		}
	}

	switch {
	case !hasLatestBeefyHeight:
		return cs, fmt.Errorf("%w: latest beefy height", ErrMissingLatestHeight)
	case !hasLatestChainHeight:
		return cs, fmt.Errorf("%w: latest chain height", ErrMissingLatestHeight)
	case !hasAuthoritySet:
		return cs, fmt.Errorf("%w: authority set", ErrMissingAuthoritySet)
	case !hasNextAuthoritySet:
		return cs, fmt.Errorf("%w: next authority set", ErrMissingAuthoritySet)
	}

	err = cs.Validate()
	if err != nil {
		return cs, err
	}
	return cs, nil
}

// MarshalConsensusState returns the protobuf encoding of the consensus state.
func MarshalConsensusState(cs ConsensusState) ([]byte, error) {
	var b []byte
	b = appendBytesField(b, 1, cs.Root)
	b = appendBytesField(b, 2, cs.MmrRoot[:])
	if !cs.Timestamp.IsZero() {
		timestamp, err := proto.Marshal(timestamppb.New(cs.Timestamp))
		if err != nil {
			return nil, fmt.Errorf("%w: timestamp: %s", ErrEncode, err)
		}
		b = appendMessageField(b, 3, timestamp)
	}
	return b, nil
}

// UnmarshalConsensusState decodes and validates the protobuf encoding of a consensus state.
func UnmarshalConsensusState(data []byte) (cs ConsensusState, err error) {
	d := &fieldDecoder{b: data}
	for {
		num, typ, ok, err := d.next()
		if err != nil {
			return cs, fmt.Errorf("%w: consensus state: %s", ErrDecode, err)
		} else if !ok {
			break
		}

		switch num {
		case 1:
			cs.Root, err = d.bytes(num, typ)
		case 2:
			var root []byte
			root, err = d.bytes(num, typ)
			if err == nil {
				cs.MmrRoot, err = common.HashFromBytes(root)
			}
		case 3:
			var message []byte
			message, err = d.bytes(num, typ)
			if err == nil {
				var timestamp timestamppb.Timestamp
				err = proto.Unmarshal(message, &timestamp)
				if err == nil {
					err = timestamp.CheckValid()
				}
				cs.Timestamp = timestamp.AsTime()
			}
		default:
			err = d.skip(num, typ)
		}
		if err != nil {
			return cs, fmt.Errorf("%w: consensus state: %s", ErrDecode, err)
		}
	}

	err = cs.Validate()
	if err != nil {
		return cs, err
	}
	return cs, nil
}

func marshalStateProof(sp StateProof) []byte {
	var b []byte
	b = appendBytesField(b, 1, sp.Key)
	b = appendBytesField(b, 2, sp.Value)
	for _, trieNode := range sp.Proofs {
		b = appendMessageField(b, 3, trieNode)
	}
	return b
}

func unmarshalStateProof(data []byte) (sp StateProof, err error) {
	d := &fieldDecoder{b: data}
	for {
		num, typ, ok, err := d.next()
		if err != nil {
			return sp, err
		} else if !ok {
			return sp, nil
		}

		switch num {
		case 1:
			sp.Key, err = d.bytes(num, typ)
		case 2:
			sp.Value, err = d.bytes(num, typ)
		case 3:
			var trieNode []byte
			trieNode, err = d.bytes(num, typ)
			sp.Proofs = append(sp.Proofs, trieNode)
		default:
			err = d.skip(num, typ)
		}
		if err != nil {
			return sp, fmt.Errorf("state proof: %w", err)
		}
	}
}

func marshalParachainHeader(ph ParachainHeader) []byte {
	var b []byte
	b = appendVarintField(b, 1, uint64(ph.ParachainID))
	b = appendBytesField(b, 2, ph.BlockHeader)
	for _, item := range ph.Proofs {
		b = appendMessageField(b, 3, item)
	}
	b = appendVarintField(b, 4, uint64(ph.HeaderIndex))
	b = appendVarintField(b, 5, uint64(ph.HeaderCount))
	if ph.Timestamp != nil {
		b = appendMessageField(b, 6, marshalStateProof(*ph.Timestamp))
	}
	return b
}

func unmarshalParachainHeader(data []byte) (ph ParachainHeader, err error) {
	d := &fieldDecoder{b: data}
	for {
		num, typ, ok, err := d.next()
		if err != nil {
			return ph, err
		} else if !ok {
			return ph, nil
		}

		var value uint64
		switch num {
		case 1:
			value, err = d.varint(num, typ)
			ph.ParachainID = uint32(value)
		case 2:
			ph.BlockHeader, err = d.bytes(num, typ)
		case 3:
			var item []byte
			item, err = d.bytes(num, typ)
			ph.Proofs = append(ph.Proofs, item)
		case 4:
			value, err = d.varint(num, typ)
			ph.HeaderIndex = uint32(value)
		case 5:
			value, err = d.varint(num, typ)
			ph.HeaderCount = uint32(value)
		case 6:
			var message []byte
			message, err = d.bytes(num, typ)
			if err == nil {
				var timestamp StateProof
				timestamp, err = unmarshalStateProof(message)
				ph.Timestamp = &timestamp
			}
		default:
			err = d.skip(num, typ)
		}
		if err == nil && value > math.MaxUint32 {
			err = fmt.Errorf("field %d: %d overflows 32 bits", num, value)
		}
		if err != nil {
			return ph, fmt.Errorf("parachain header: %w", err)
		}
	}
}

// MarshalHeader returns the protobuf encoding of the header. The block
// header, the MMR leaf and its proof are carried SCALE encoded.
func MarshalHeader(h Header) ([]byte, error) {
	blockHeader, err := common.ScaleEncode(h.BlockHeader)
	if err != nil {
		return nil, fmt.Errorf("%w: block header: %s", ErrEncode, err)
	}
	mmrLeaf, err := h.MmrLeaf.Bytes()
	if err != nil {
		return nil, fmt.Errorf("%w: mmr leaf: %s", ErrEncode, err)
	}
	mmrLeafProof, err := common.ScaleEncode(h.MmrLeafProof)
	if err != nil {
		return nil, fmt.Errorf("%w: mmr leaf proof: %s", ErrEncode, err)
	}

	var b []byte
	b = appendBytesField(b, 1, blockHeader)
	b = appendBytesField(b, 2, mmrLeaf)
	b = appendBytesField(b, 3, mmrLeafProof)
	if h.ParachainHeader != nil {
		b = appendMessageField(b, 4, marshalParachainHeader(*h.ParachainHeader))
	}
	if h.Timestamp != nil {
		b = appendMessageField(b, 5, marshalStateProof(*h.Timestamp))
	}
	return b, nil
}

// UnmarshalHeader decodes the protobuf encoding of a header.
func UnmarshalHeader(data []byte) (h Header, err error) {
	var blockHeader, mmrLeaf, mmrLeafProof []byte

	d := &fieldDecoder{b: data}
	for {
		num, typ, ok, err := d.next()
		if err != nil {
			return h, fmt.Errorf("%w: header: %s", ErrDecode, err)
		} else if !ok {
			break
		}

		var message []byte
		switch num {
		case 1:
			blockHeader, err = d.bytes(num, typ)
		case 2:
			mmrLeaf, err = d.bytes(num, typ)
		case 3:
			mmrLeafProof, err = d.bytes(num, typ)
		case 4:
			message, err = d.bytes(num, typ)
			if err == nil {
				var parachainHeader ParachainHeader
				parachainHeader, err = unmarshalParachainHeader(message)
				h.ParachainHeader = &parachainHeader
			}
		case 5:
			message, err = d.bytes(num, typ)
			if err == nil {
				var timestamp StateProof
				timestamp, err = unmarshalStateProof(message)
				h.Timestamp = &timestamp
			}
		default:
			err = d.skip(num, typ)
		}
		if err != nil {
			return h, fmt.Errorf("%w: header: %s", ErrDecode, err)
		}
	}

	decodedHeader, err := types.DecodeHeader(blockHeader)
	if err != nil {
		return h, fmt.Errorf("%w: block header: %s", ErrDecode, err)
	}
	h.BlockHeader = *decodedHeader

	h.MmrLeaf, err = beefy.DecodeMmrLeaf(mmrLeaf)
	if err != nil {
		return h, fmt.Errorf("%w: mmr leaf: %s", ErrDecode, err)
	}

	h.MmrLeafProof, err = beefy.DecodeMmrLeafProof(mmrLeafProof)
	if err != nil {
		return h, fmt.Errorf("%w: mmr leaf proof: %s", ErrDecode, err)
	}

	return h, nil
}
