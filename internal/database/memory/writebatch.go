// Copyright 2022 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package memory

type operationKind uint8

const (
	operationSet operationKind = iota
	operationDelete
)

type operation struct {
	kind  operationKind
	key   string
	value []byte
}

// writeBatch buffers operations, prefixing all keys with the
// given prefix, and applies them to the database on Flush.
type writeBatch struct {
	prefix     string
	database   *Database
	operations []operation
}

func newWriteBatch(prefix string, database *Database) *writeBatch {
	return &writeBatch{
		prefix:   prefix,
		database: database,
	}
}

// Set records a set operation at the prefixed key.
// The value byte slice is deep copied.
func (wb *writeBatch) Set(key, value []byte) (err error) {
	wb.operations = append(wb.operations, operation{
		kind:  operationSet,
		key:   wb.prefix + string(key),
		value: copyBytes(value),
	})
	return nil
}

// Delete records a delete operation at the prefixed key.
func (wb *writeBatch) Delete(key []byte) (err error) {
	wb.operations = append(wb.operations, operation{
		kind: operationDelete,
		key:  wb.prefix + string(key),
	})
	return nil
}

// Flush applies all the operations to the database at once
// and empties the batch.
func (wb *writeBatch) Flush() (err error) {
	wb.database.mutex.Lock()
	defer wb.database.mutex.Unlock()
	wb.database.panicOnClosed()

	for _, op := range wb.operations {
		switch op.kind {
		case operationSet:
			wb.database.keyValues[op.key] = op.value
		case operationDelete:
			delete(wb.database.keyValues, op.key)
		}
	}

	wb.operations = nil
	return nil
}

// Cancel drops all the operations of the batch.
func (wb *writeBatch) Cancel() {
	wb.operations = nil
}
