// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package proof

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ChainSafe/ics10-grandpa/lib/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ErrEmptyReadProof is returned when a read proof holds no trie node.
var ErrEmptyReadProof = errors.New("read proof has no trie nodes")

// ReadProof is the JSON response of the state_getReadProof RPC method.
type ReadProof struct {
	At    *common.Hash    `json:"at"`
	Proof []hexutil.Bytes `json:"proof"`
}

// StorageProof returns the storage proof made of the read proof nodes.
func (rp ReadProof) StorageProof() *StorageProof {
	trieNodes := make([][]byte, len(rp.Proof))
	for i, trieNode := range rp.Proof {
		trieNodes[i] = trieNode
	}
	return NewStorageProof(trieNodes)
}

// NewReadProof returns the read proof of the given storage proof at a block.
func NewReadProof(at common.Hash, proof *StorageProof) ReadProof {
	trieNodes := proof.TrieNodes()
	rp := ReadProof{
		At:    &at,
		Proof: make([]hexutil.Bytes, len(trieNodes)),
	}
	for i, trieNode := range trieNodes {
		rp.Proof[i] = trieNode
	}
	return rp
}

// ParseReadProof decodes a JSON read proof into a storage proof.
func ParseReadProof(data []byte) (*StorageProof, error) {
	var readProof ReadProof
	err := json.Unmarshal(data, &readProof)
	if err != nil {
		return nil, fmt.Errorf("decoding read proof JSON: %w", err)
	}

	if len(readProof.Proof) == 0 {
		return nil, ErrEmptyReadProof
	}

	return readProof.StorageProof(), nil
}
