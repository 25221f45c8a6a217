// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package types

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/ChainSafe/ics10-grandpa/lib/common"
	"github.com/centrifuge/go-substrate-rpc-client/v4/scale"
)

var (
	ErrDigestItemTypeUnknown = errors.New("digest item type is unknown")
	ErrTooManyDigestItems    = errors.New("digest item count exceeds input size")
)

// ConsensusEngineID is a 4-character identifier of a consensus engine
type ConsensusEngineID [4]byte

// ToBytes turns ConsensusEngineID to a byte array
func (h ConsensusEngineID) ToBytes() []byte {
	b := [4]byte(h)
	return b[:]
}

func (h ConsensusEngineID) String() string {
	return string(h[:])
}

// BabeEngineID is the hard-coded babe ID
var BabeEngineID = ConsensusEngineID{'B', 'A', 'B', 'E'}

// GrandpaEngineID is the hard-coded grandpa ID
var GrandpaEngineID = ConsensusEngineID{'F', 'R', 'N', 'K'}

// BeefyEngineID is the hard-coded beefy ID
var BeefyEngineID = ConsensusEngineID{'B', 'E', 'E', 'F'}

// Digest item types
const (
	OtherDigestType                     = byte(0)
	ChangesTrieRootDigestType           = byte(2)
	ConsensusDigestType                 = byte(4)
	SealDigestType                      = byte(5)
	PreRuntimeDigestType                = byte(6)
	RuntimeEnvironmentUpdatedDigestType = byte(8)
)

// DigestItem is an item of a block header digest.
type DigestItem interface {
	fmt.Stringer
	Type() byte
	// Encode writes the item type byte followed by its payload.
	Encode(encoder scale.Encoder) error
	// decode reads the item payload, the type byte being already consumed.
	decode(reader *bytes.Reader) error
}

// Digest is the list of digest items of a header.
type Digest []DigestItem

// Encode SCALE encodes the digest items with their count.
func (d Digest) Encode(encoder scale.Encoder) error {
	err := encoder.EncodeUintCompact(*big.NewInt(int64(len(d))))
	if err != nil {
		return fmt.Errorf("encoding digest items count: %w", err)
	}

	for i, item := range d {
		err = item.Encode(encoder)
		if err != nil {
			return fmt.Errorf("encoding digest item %d: %w", i, err)
		}
	}
	return nil
}

// ConsensusItems returns the consensus digest items of the given engine.
func (d Digest) ConsensusItems(engine ConsensusEngineID) (items []*ConsensusDigest) {
	for _, item := range d {
		consensus, ok := item.(*ConsensusDigest)
		if ok && consensus.ConsensusEngineID == engine {
			items = append(items, consensus)
		}
	}
	return items
}

func decodeDigest(reader *bytes.Reader) (Digest, error) {
	count, err := common.ReadScaleCompact(reader)
	if err != nil {
		return nil, fmt.Errorf("could not decode length of digest items: %w", err)
	}
	// every digest item holds at least its type byte
	if count > uint64(reader.Len()) {
		return nil, fmt.Errorf("%w: %d items for %d bytes", ErrTooManyDigestItems, count, reader.Len())
	}

	digest := make(Digest, count)
	for i := range digest {
		digest[i], err = decodeDigestItem(reader)
		if err != nil {
			return nil, fmt.Errorf("could not decode digest item %d: %w", i, err)
		}
	}

	return digest, nil
}

func decodeDigestItem(reader *bytes.Reader) (item DigestItem, err error) {
	typ, err := reader.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("reading digest item type: %w", err)
	}

	switch typ {
	case OtherDigestType:
		item = new(OtherDigest)
	case ChangesTrieRootDigestType:
		item = new(ChangesTrieRootDigest)
	case ConsensusDigestType:
		item = new(ConsensusDigest)
	case SealDigestType:
		item = new(SealDigest)
	case PreRuntimeDigestType:
		item = new(PreRuntimeDigest)
	case RuntimeEnvironmentUpdatedDigestType:
		item = new(RuntimeEnvironmentUpdatedDigest)
	default:
		return nil, fmt.Errorf("%w: %d", ErrDigestItemTypeUnknown, typ)
	}

	err = item.decode(reader)
	if err != nil {
		return nil, err
	}
	return item, nil
}

// OtherDigest is a digest item for anything else
type OtherDigest struct {
	Data []byte
}

func (d *OtherDigest) String() string {
	return fmt.Sprintf("OtherDigest Data=0x%x", d.Data)
}

// Type returns the type
func (*OtherDigest) Type() byte {
	return OtherDigestType
}

// Encode SCALE encodes the item
func (d *OtherDigest) Encode(encoder scale.Encoder) error {
	err := encoder.PushByte(OtherDigestType)
	if err != nil {
		return err
	}
	return encoder.Write(common.ScaleEncodeBytes(d.Data))
}

func (d *OtherDigest) decode(reader *bytes.Reader) (err error) {
	d.Data, err = common.ReadScaleBytes(reader)
	return err
}

// ChangesTrieRootDigest contains the root of the changes trie at a given block, if the runtime supports it.
type ChangesTrieRootDigest struct {
	Hash common.Hash
}

func (d *ChangesTrieRootDigest) String() string {
	return fmt.Sprintf("ChangesTrieRootDigest Hash=%s", d.Hash)
}

// Type returns the type
func (*ChangesTrieRootDigest) Type() byte {
	return ChangesTrieRootDigestType
}

// Encode SCALE encodes the item
func (d *ChangesTrieRootDigest) Encode(encoder scale.Encoder) error {
	err := encoder.PushByte(ChangesTrieRootDigestType)
	if err != nil {
		return err
	}
	return encoder.Write(d.Hash[:])
}

func (d *ChangesTrieRootDigest) decode(reader *bytes.Reader) error {
	_, err := io.ReadFull(reader, d.Hash[:])
	return err
}

// engineDigest is the engine identifier and payload shared by
// the pre-runtime, consensus and seal digest items.
type engineDigest struct {
	ConsensusEngineID ConsensusEngineID
	Data              []byte
}

func (d *engineDigest) encode(encoder scale.Encoder, typ byte) error {
	err := encoder.PushByte(typ)
	if err != nil {
		return err
	}
	err = encoder.Write(d.ConsensusEngineID[:])
	if err != nil {
		return err
	}
	return encoder.Write(common.ScaleEncodeBytes(d.Data))
}

func (d *engineDigest) decode(reader *bytes.Reader) (err error) {
	_, err = io.ReadFull(reader, d.ConsensusEngineID[:])
	if err != nil {
		return fmt.Errorf("reading consensus engine id: %w", err)
	}
	d.Data, err = common.ReadScaleBytes(reader)
	return err
}

// PreRuntimeDigest contains messages from the consensus engine to the runtime.
type PreRuntimeDigest struct {
	engineDigest
}

// NewBABEPreRuntimeDigest returns a PreRuntimeDigest with the BABE consensus ID
func NewBABEPreRuntimeDigest(data []byte) *PreRuntimeDigest {
	return &PreRuntimeDigest{engineDigest{ConsensusEngineID: BabeEngineID, Data: data}}
}

func (d *PreRuntimeDigest) String() string {
	return fmt.Sprintf("PreRuntimeDigest ConsensusEngineID=%s Data=0x%x", d.ConsensusEngineID, d.Data)
}

// Type returns the type
func (*PreRuntimeDigest) Type() byte {
	return PreRuntimeDigestType
}

// Encode SCALE encodes the item
func (d *PreRuntimeDigest) Encode(encoder scale.Encoder) error {
	return d.encode(encoder, PreRuntimeDigestType)
}

// ConsensusDigest contains messages from the runtime to the consensus engine.
type ConsensusDigest struct {
	engineDigest
}

// NewConsensusDigest returns a ConsensusDigest of the given engine.
func NewConsensusDigest(engine ConsensusEngineID, data []byte) *ConsensusDigest {
	return &ConsensusDigest{engineDigest{ConsensusEngineID: engine, Data: data}}
}

func (d *ConsensusDigest) String() string {
	return fmt.Sprintf("ConsensusDigest ConsensusEngineID=%s Data=0x%x", d.ConsensusEngineID, d.Data)
}

// Type returns the type
func (*ConsensusDigest) Type() byte {
	return ConsensusDigestType
}

// Encode SCALE encodes the item
func (d *ConsensusDigest) Encode(encoder scale.Encoder) error {
	return d.encode(encoder, ConsensusDigestType)
}

// SealDigest contains the seal or signature. This is only used by native code.
type SealDigest struct {
	engineDigest
}

// NewSealDigest returns a SealDigest of the given engine.
func NewSealDigest(engine ConsensusEngineID, data []byte) *SealDigest {
	return &SealDigest{engineDigest{ConsensusEngineID: engine, Data: data}}
}

func (d *SealDigest) String() string {
	return fmt.Sprintf("SealDigest ConsensusEngineID=%s Data=0x%x", d.ConsensusEngineID, d.Data)
}

// Type returns the type
func (*SealDigest) Type() byte {
	return SealDigestType
}

// Encode SCALE encodes the item
func (d *SealDigest) Encode(encoder scale.Encoder) error {
	return d.encode(encoder, SealDigestType)
}

// RuntimeEnvironmentUpdatedDigest signals that the runtime code or heap pages changed.
type RuntimeEnvironmentUpdatedDigest struct{}

func (*RuntimeEnvironmentUpdatedDigest) String() string {
	return "RuntimeEnvironmentUpdatedDigest"
}

// Type returns the type
func (*RuntimeEnvironmentUpdatedDigest) Type() byte {
	return RuntimeEnvironmentUpdatedDigestType
}

// Encode SCALE encodes the item
func (*RuntimeEnvironmentUpdatedDigest) Encode(encoder scale.Encoder) error {
	return encoder.PushByte(RuntimeEnvironmentUpdatedDigestType)
}

func (*RuntimeEnvironmentUpdatedDigest) decode(*bytes.Reader) error {
	return nil
}
