// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package common

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"hash"

	"github.com/OneOfOne/xxhash"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// ErrUnknownHasher is returned when a hasher name is not recognised.
var ErrUnknownHasher = errors.New("unknown hasher")

// Blake2b128 returns the 128-bit blake2b hash of the input data
func Blake2b128(in []byte) ([]byte, error) {
	h, err := blake2b.New(16, nil)
	if err != nil {
		return nil, err
	}

	_, err = h.Write(in)
	if err != nil {
		return nil, err
	}

	return h.Sum(nil), nil
}

// Blake2bHash returns the 256-bit blake2b hash of the input data
func Blake2bHash(in []byte) (Hash, error) {
	h, err := blake2b.New256(nil)
	if err != nil {
		return Hash{}, err
	}

	_, err = h.Write(in)
	if err != nil {
		return Hash{}, err
	}

	return NewHash(h.Sum(nil)), nil
}

// MustBlake2bHash returns the 256-bit blake2b hash of the input data. It panics if it fails to hash.
func MustBlake2bHash(in []byte) Hash {
	hash, err := Blake2bHash(in)
	if err != nil {
		panic(err)
	}

	return hash
}

// Keccak256 returns the keccak256 hash of the input data
func Keccak256(in []byte) Hash {
	h := sha3.NewLegacyKeccak256()
	_, _ = h.Write(in)
	return NewHash(h.Sum(nil))
}

// Twox64 returns the xx64 hash of the input data
func Twox64(in []byte) ([]byte, error) {
	hasher := xxhash.NewS64(0)
	_, err := hasher.Write(in)
	if err != nil {
		return nil, err
	}

	hash := make([]byte, 8)
	binary.LittleEndian.PutUint64(hash, hasher.Sum64())
	return hash, nil
}

// Twox128Hash computes xxHash64 twice with seeds 0 and 1 applied on given byte array
func Twox128Hash(msg []byte) ([]byte, error) {
	both := make([]byte, 16)
	for seed := uint64(0); seed < 2; seed++ {
		h := xxhash.NewS64(seed)
		_, err := h.Write(msg)
		if err != nil {
			return nil, err
		}
		binary.LittleEndian.PutUint64(both[seed*8:], h.Sum64())
	}
	return both, nil
}

// Sha256 returns the SHA2-256 hash of the input data
func Sha256(in []byte) Hash {
	return Hash(sha256.Sum256(in))
}

// Hasher is a 32 byte digest function. Components whose hash function
// depends on the target chain take a Hasher instead of calling one directly.
type Hasher interface {
	// Hash returns the digest of in.
	Hash(in []byte) Hash
	// New returns a streaming hash.Hash producing the same digest.
	New() hash.Hash
	String() string
}

type blake2b256Hasher struct{}

func (blake2b256Hasher) Hash(in []byte) Hash { return blake2b.Sum256(in) }

func (blake2b256Hasher) New() hash.Hash {
	h, err := blake2b.New256(nil)
	if err != nil {
		// only fails for a key longer than 64 bytes
		panic(err)
	}
	return h
}

func (blake2b256Hasher) String() string { return "blake2b-256" }

type keccak256Hasher struct{}

func (keccak256Hasher) Hash(in []byte) Hash { return Keccak256(in) }
func (keccak256Hasher) New() hash.Hash      { return sha3.NewLegacyKeccak256() }
func (keccak256Hasher) String() string      { return "keccak-256" }

var (
	// Blake2b256Hasher is the hasher of the Substrate state trie and block headers.
	Blake2b256Hasher Hasher = blake2b256Hasher{}
	// Keccak256Hasher is the hasher of BEEFY MMR leaves and nodes.
	Keccak256Hasher Hasher = keccak256Hasher{}
)

// HasherFromName returns the hasher matching the given name,
// as written in configuration files.
func HasherFromName(name string) (Hasher, error) {
	switch name {
	case Blake2b256Hasher.String(), "blake2b":
		return Blake2b256Hasher, nil
	case Keccak256Hasher.String(), "keccak":
		return Keccak256Hasher, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownHasher, name)
	}
}
