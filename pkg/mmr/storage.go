// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package mmr

import (
	"github.com/ChainSafe/ics10-grandpa/lib/common"
	"github.com/tidwall/btree"
)

// MemStorage is an in-memory Storage ordered by position.
type MemStorage struct {
	storage *btree.Map[uint64, common.Hash]
}

// NewMemStorage creates an empty in-memory storage.
func NewMemStorage() *MemStorage {
	return &MemStorage{
		storage: btree.NewMap[uint64, common.Hash](0),
	}
}

func (s *MemStorage) getElement(pos uint64) (*common.Hash, error) {
	if element, ok := s.storage.Get(pos); ok {
		return &element, nil
	}

	return nil, nil
}

func (s *MemStorage) append(pos uint64, elements []common.Hash) error {
	for i, element := range elements {
		s.storage.Set(pos+uint64(i), element)
	}

	return nil
}

func (s *MemStorage) commit() error {
	// Do nothing since all changes are automatically commited
	return nil
}

// NewInMemMMR returns an empty MMR backed by a MemStorage.
func NewInMemMMR(hasher common.Hasher) *MMR {
	return NewMMR(0, NewMemStorage(), hasher)
}
