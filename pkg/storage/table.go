// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package storage

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// DefaultPallet is the name of the pallet storing IBC state.
const DefaultPallet = "Ibc"

// ErrEntityNotConfigured is returned when the table has no storage item for an entity.
var ErrEntityNotConfigured = errors.New("entity not configured")

// Entity is a kind of IBC state stored on chain.
type Entity uint8

const (
	// Connections maps a connection id to its connection end.
	Connections Entity = iota
	// Channels maps (port id, channel id) to the channel end.
	Channels
	// ClientStates maps a client id to its client state.
	ClientStates
	// PacketCommitment maps (port id, channel id, sequence) to the packet commitment.
	PacketCommitment
	// Acknowledgements maps (port id, channel id, sequence) to the acknowledgement commitment.
	Acknowledgements
	// NextSequenceRecv maps (port id, channel id) to the next receive sequence.
	NextSequenceRecv
	// PacketReceipt maps (port id, channel id, sequence) to a receipt.
	PacketReceipt
)

// Entities lists all entity kinds.
var Entities = [...]Entity{
	Connections, Channels, ClientStates, PacketCommitment,
	Acknowledgements, NextSequenceRecv, PacketReceipt,
}

// String returns the default storage item name of the entity.
func (e Entity) String() string {
	switch e {
	case Connections:
		return "Connections"
	case Channels:
		return "Channels"
	case ClientStates:
		return "ClientStates"
	case PacketCommitment:
		return "PacketCommitment"
	case Acknowledgements:
		return "Acknowledgements"
	case NextSequenceRecv:
		return "NextSequenceRecv"
	case PacketReceipt:
		return "PacketReceipt"
	default:
		return fmt.Sprintf("Entity(%d)", uint8(e))
	}
}

// Item locates a storage item in the runtime.
type Item struct {
	Pallet string
	Name   string
}

// Table maps entity kinds to their storage items.
type Table struct {
	items map[Entity]Item
}

// NewTable returns a table using the given pallet for every entity and the
// default item names, overridden by the names map.
func NewTable(pallet string, names map[Entity]string) Table {
	items := make(map[Entity]Item, len(Entities))
	for _, entity := range Entities {
		name := entity.String()
		if override, ok := names[entity]; ok && override != "" {
			name = override
		}
		items[entity] = Item{Pallet: pallet, Name: name}
	}
	return Table{items: items}
}

// DefaultTable returns the table of the Ibc pallet.
func DefaultTable() Table {
	return NewTable(DefaultPallet, nil)
}

// Item returns the storage item of the entity.
func (t Table) Item(entity Entity) (item Item, err error) {
	item, ok := t.items[entity]
	if !ok {
		return item, fmt.Errorf("%w: %s", ErrEntityNotConfigured, entity)
	}
	return item, nil
}

// Key returns the final storage key of the entity entry identified by parts.
func (t Table) Key(entity Entity, parts ...[]byte) ([]byte, error) {
	item, err := t.Item(entity)
	if err != nil {
		return nil, err
	}
	key, err := FinalKey(item.Pallet, item.Name, parts)
	if err != nil {
		return nil, fmt.Errorf("deriving %s key: %w", entity, err)
	}
	return key, nil
}

// EncodeSequence returns the SCALE encoding of a packet sequence,
// used as the third key part of packet maps.
func EncodeSequence(sequence uint64) []byte {
	encoded := make([]byte, 8)
	binary.LittleEndian.PutUint64(encoded, sequence)
	return encoded
}
