// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package proof

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ChainSafe/ics10-grandpa/lib/common"
	"github.com/ChainSafe/ics10-grandpa/pkg/trie/codec"
)

var (
	ErrEmptyProof             = errors.New("proof slice empty")
	ErrRootNodeNotFound       = errors.New("root node not found in proof")
	ErrIncompleteProof        = errors.New("incomplete proof")
	ErrInvalidNode            = errors.New("invalid trie node in proof")
	ErrKeyNotFoundInProofTrie = errors.New("key not found in proof trie")
	ErrValueMismatchProofTrie = errors.New("value found in proof trie does not match")
)

// ReadProofCheck looks up key in the trie of the given root using only the
// nodes of the proof. It returns the value stored at key, or a nil value
// with a nil error when the proof shows that key is absent.
// Nodes are referenced by the hash of their encoding computed with hasher.
func ReadProofCheck(root common.Hash, proof *StorageProof, key []byte,
	hasher common.Hasher) (value []byte, err error) {
	if proof == nil || proof.Len() == 0 {
		return nil, fmt.Errorf("%w: for Merkle root hash %s", ErrEmptyProof, root)
	}

	db := proof.toDatabase(hasher)
	encoding, ok := db[root]
	if !ok {
		return nil, fmt.Errorf("%w: for Merkle root hash %s in %d proof entries",
			ErrRootNodeNotFound, root, proof.Len())
	}

	remaining := codec.KeyLEToNibbles(key)
	for {
		node, err := codec.Decode(encoding)
		if err != nil {
			return nil, fmt.Errorf("%w: %s (node encoded is %s)",
				ErrInvalidNode, err, bytesToString(encoding))
		}

		switch node := node.(type) {
		case codec.Empty:
			return nil, nil
		case codec.Leaf:
			if !bytes.Equal(node.PartialKey, remaining) {
				return nil, nil
			}
			return lookupValue(db, node.Value)
		case codec.Branch:
			if !bytes.HasPrefix(remaining, node.PartialKey) {
				return nil, nil
			}
			remaining = remaining[len(node.PartialKey):]

			if len(remaining) == 0 {
				if node.Value == nil {
					return nil, nil
				}
				return lookupValue(db, node.Value)
			}

			child := node.Children[remaining[0]]
			remaining = remaining[1:]
			if child == nil {
				return nil, nil
			}

			if !child.IsHashed() {
				encoding = child.Bytes()
				continue
			}

			childHash := common.NewHash(child.Bytes())
			encoding, ok = db[childHash]
			if !ok {
				return nil, fmt.Errorf("%w: missing trie node %s for key %s",
					ErrIncompleteProof, childHash, bytesToString(key))
			}
		}
	}
}

func lookupValue(db map[common.Hash][]byte, value codec.NodeValue) ([]byte, error) {
	switch value := value.(type) {
	case codec.HashedValue:
		valueHash := common.NewHash(value.Data)
		storageValue, ok := db[valueHash]
		if !ok {
			return nil, fmt.Errorf("%w: missing storage value with hash %s",
				ErrIncompleteProof, valueHash)
		}
		return storageValue, nil
	default:
		storageValue := make([]byte, len(value.Bytes()))
		copy(storageValue, value.Bytes())
		return storageValue, nil
	}
}

// Verify verifies that key is present in the trie of the given root and
// returns the value proven for it. The proven value is compared with value
// only when the caller passes a non empty value.
func Verify(root common.Hash, proof *StorageProof, key, value []byte,
	hasher common.Hasher) (proofTrieValue []byte, err error) {
	proofTrieValue, err = ReadProofCheck(root, proof, key, hasher)
	if err != nil {
		return nil, err
	}

	if proofTrieValue == nil {
		return nil, fmt.Errorf("%w: %s in proof trie for root hash %s",
			ErrKeyNotFoundInProofTrie, bytesToString(key), root)
	}

	if len(value) > 0 && !bytes.Equal(value, proofTrieValue) {
		return nil, fmt.Errorf("%w: expected value %s but got value %s from proof trie",
			ErrValueMismatchProofTrie, bytesToString(value), bytesToString(proofTrieValue))
	}

	return proofTrieValue, nil
}

func bytesToString(b []byte) (s string) {
	switch {
	case b == nil:
		return "nil"
	case len(b) <= 20:
		return fmt.Sprintf("0x%x", b)
	default:
		return fmt.Sprintf("0x%x...%x", b[:8], b[len(b)-8:])
	}
}
