// Copyright 2022 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package memory

import (
	"github.com/ChainSafe/ics10-grandpa/internal/database"
)

type table struct {
	prefix   string
	database *Database
}

func newTable(prefix string, database *Database) *table {
	return &table{
		prefix:   prefix,
		database: database,
	}
}

// Get retrieves a value from the database using the given key
// prefixed with the table prefix.
// It returns the wrapped error `database.ErrKeyNotFound` if the
// prefixed key is not found.
func (t *table) Get(key []byte) (value []byte, err error) {
	return t.database.Get(t.prefixed(key))
}

// Set sets a value at the given key prefixed with the table prefix.
func (t *table) Set(key, value []byte) (err error) {
	return t.database.Set(t.prefixed(key), value)
}

// Delete deletes the given key prefixed with the table prefix.
func (t *table) Delete(key []byte) (err error) {
	return t.database.Delete(t.prefixed(key))
}

// NewWriteBatch returns a new write batch using the table
// prefix to prefix all keys.
func (t *table) NewWriteBatch() (writeBatch database.WriteBatch) {
	t.database.panicOnClosed()
	return newWriteBatch(t.prefix, t.database)
}

func (t *table) prefixed(key []byte) []byte {
	return []byte(t.prefix + string(key))
}
