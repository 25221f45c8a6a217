// Copyright 2022 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package badger

import (
	"github.com/ChainSafe/ics10-grandpa/internal/database"
	"github.com/dgraph-io/badger/v2"
)

type operation struct {
	key    []byte
	value  []byte
	delete bool
}

// writeBatch buffers operations with keys prefixed with a certain
// given prefix, and commits them in a single badger transaction.
type writeBatch struct {
	prefix     []byte
	database   *Database
	operations []operation
}

func newWriteBatch(prefix []byte, database *Database) *writeBatch {
	return &writeBatch{
		prefix:   prefix,
		database: database,
	}
}

// Set sets a value at the given key prefixed with the given prefix.
func (wb *writeBatch) Set(key, value []byte) (err error) {
	valueCopy := make([]byte, len(value))
	copy(valueCopy, value)
	wb.operations = append(wb.operations, operation{
		key:   makePrefixedKey(wb.prefix, key),
		value: valueCopy,
	})
	return nil
}

// Delete deletes the given key prefixed with the table prefix
// from the database.
func (wb *writeBatch) Delete(key []byte) (err error) {
	wb.operations = append(wb.operations, operation{
		key:    makePrefixedKey(wb.prefix, key),
		delete: true,
	})
	return nil
}

// Flush commits all the operations of the write batch in a single
// transaction: either all of them are written or none is.
func (wb *writeBatch) Flush() (err error) {
	if wb.database.closed.Load() {
		return database.ErrClosed
	}

	err = wb.database.badgerDatabase.Update(func(txn *badger.Txn) error {
		for _, op := range wb.operations {
			var err error
			if op.delete {
				err = txn.Delete(op.key)
			} else {
				err = txn.Set(op.key, op.value)
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	wb.operations = nil
	return nil
}

// Cancel cancels the write batch.
func (wb *writeBatch) Cancel() {
	wb.operations = nil
}
