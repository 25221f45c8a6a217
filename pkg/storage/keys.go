// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

// Package storage derives the trie keys under which FRAME pallets
// store their values and maps.
package storage

import (
	"errors"
	"fmt"

	"github.com/ChainSafe/ics10-grandpa/lib/common"
)

// MaxKeyParts is the largest number of map keys supported by FinalKey.
const MaxKeyParts = 3

var (
	// ErrWrongKeyNumber is returned when a storage map key has an unsupported
	// number of parts.
	ErrWrongKeyNumber = errors.New("wrong key number")
	// ErrUnknownHasher is returned for a Hasher value that is not defined.
	ErrUnknownHasher = errors.New("unknown storage hasher")
)

// Hasher is a storage map key hasher as declared on the pallet storage item.
type Hasher uint8

const (
	// Blake2_128Concat appends the key to its 128 bits blake2b hash.
	Blake2_128Concat Hasher = iota
	// Twox64Concat appends the key to its 64 bits xxhash.
	Twox64Concat
	// Identity uses the key as is.
	Identity
)

func (h Hasher) String() string {
	switch h {
	case Blake2_128Concat:
		return "Blake2_128Concat"
	case Twox64Concat:
		return "Twox64Concat"
	case Identity:
		return "Identity"
	default:
		return fmt.Sprintf("Hasher(%d)", uint8(h))
	}
}

// Hash hashes the already encoded key.
func (h Hasher) Hash(encodedKey []byte) ([]byte, error) {
	var digest []byte
	var err error
	switch h {
	case Blake2_128Concat:
		digest, err = common.Blake2b128(encodedKey)
	case Twox64Concat:
		digest, err = common.Twox64(encodedKey)
	case Identity:
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownHasher, uint8(h))
	}
	if err != nil {
		return nil, fmt.Errorf("hashing key with %s: %w", h, err)
	}
	return common.ConcatBytes(digest, encodedKey), nil
}

// Prefix returns twox128(pallet) ++ twox128(item), the prefix shared by
// every key of the storage item.
func Prefix(pallet, item string) ([]byte, error) {
	palletHash, err := common.Twox128Hash([]byte(pallet))
	if err != nil {
		return nil, fmt.Errorf("hashing pallet name: %w", err)
	}
	itemHash, err := common.Twox128Hash([]byte(item))
	if err != nil {
		return nil, fmt.Errorf("hashing storage item name: %w", err)
	}
	return common.ConcatBytes(palletHash, itemHash), nil
}

// ValueKey returns the key of a plain storage value, which is its prefix.
func ValueKey(pallet, item string) ([]byte, error) {
	return Prefix(pallet, item)
}

// FinalKey returns the key of a map, double map or 3-key n-map entry
// whose keys are byte vectors hashed with Blake2_128Concat.
// Each part is SCALE encoded as a Vec<u8> before hashing.
func FinalKey(pallet, item string, parts [][]byte) ([]byte, error) {
	return FinalKeyWith(pallet, item, Blake2_128Concat, parts)
}

// FinalKeyWith is FinalKey with the given key hasher.
func FinalKeyWith(pallet, item string, hasher Hasher, parts [][]byte) ([]byte, error) {
	if len(parts) == 0 || len(parts) > MaxKeyParts {
		return nil, fmt.Errorf("%w: %d", ErrWrongKeyNumber, len(parts))
	}

	key, err := Prefix(pallet, item)
	if err != nil {
		return nil, err
	}

	for i, part := range parts {
		hashed, err := hasher.Hash(common.ScaleEncodeBytes(part))
		if err != nil {
			return nil, fmt.Errorf("key part %d: %w", i, err)
		}
		key = append(key, hashed...)
	}
	return key, nil
}
