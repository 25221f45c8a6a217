// Copyright 2022 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

// Package badger provides a database implementation using badger v2.
package badger

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/ChainSafe/ics10-grandpa/internal/database"
	"github.com/dgraph-io/badger/v2"
	"github.com/dgraph-io/badger/v2/pb"
)

var _ database.Database = (*Database)(nil)

// Database is database implementation using a badger/v2 database.
type Database struct {
	badgerDatabase *badger.DB
	closed         atomic.Bool
}

// New returns a new database based on a badger v2 database.
func New(settings Settings) (database *Database, err error) {
	settings.SetDefaults()
	err = settings.Validate()
	if err != nil {
		return nil, fmt.Errorf("validating settings: %w", err)
	}

	path := settings.Path
	if *settings.InMemory {
		path = ""
	}

	badgerOptions := badger.DefaultOptions(path)
	badgerOptions = badgerOptions.WithLogger(nil)
	badgerOptions = badgerOptions.WithInMemory(*settings.InMemory)
	badgerDatabase, err := badger.Open(badgerOptions)
	if err != nil {
		return nil, fmt.Errorf("opening badger database: %w", err)
	}

	return &Database{
		badgerDatabase: badgerDatabase,
	}, nil
}

// Get retrieves a value from the database using the given key.
// It returns the wrapped error `database.ErrKeyNotFound` if the
// key is not found.
func (db *Database) Get(key []byte) (value []byte, err error) {
	if db.closed.Load() {
		return nil, database.ErrClosed
	}

	err = db.badgerDatabase.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return fmt.Errorf("getting item from transaction: %w", err)
		}

		value, err = item.ValueCopy(nil)
		if err != nil {
			return fmt.Errorf("copying value: %w", err)
		}

		return nil
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: 0x%x", database.ErrKeyNotFound, key)
	}

	return value, err
}

// Set sets a value at the given key in the database.
func (db *Database) Set(key, value []byte) (err error) {
	if db.closed.Load() {
		return database.ErrClosed
	}

	return db.badgerDatabase.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
}

// Delete deletes the given key from the database.
// If the key is not found, no error is returned.
func (db *Database) Delete(key []byte) (err error) {
	if db.closed.Load() {
		return database.ErrClosed
	}

	return db.badgerDatabase.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
}

// NewWriteBatch returns a new write batch for the database.
func (db *Database) NewWriteBatch() (writeBatch database.WriteBatch) {
	prefix := []byte(nil)
	return newWriteBatch(prefix, db)
}

// NewTable returns a new table using the database.
// All keys on the table will be prefixed with the given prefix.
func (db *Database) NewTable(prefix string) (dbTable database.Table) {
	return newTable([]byte(prefix), db)
}

// Stream streams data from the database to the `handle`
// function given. The `prefix` is used to filter the keys
// as well as the `chooseKey` function. Note the `prefix`
// argument is more performant than checking the prefix within
// the `chooseKey` function.
func (db *Database) Stream(ctx context.Context,
	prefix []byte,
	chooseKey func(key []byte) bool,
	handle func(key, value []byte) error,
) error {
	if db.closed.Load() {
		return database.ErrClosed
	}

	stream := db.badgerDatabase.NewStream()
	stream.LogPrefix = "Streaming clients"

	if prefix != nil {
		stream.Prefix = make([]byte, len(prefix))
		copy(stream.Prefix, prefix)
	}

	stream.ChooseKey = func(item *badger.Item) bool {
		key := item.Key()
		return chooseKey(key)
	}

	stream.Send = func(kvList *pb.KVList) (err error) {
		for _, keyValue := range kvList.Kv {
			err = handle(keyValue.Key, keyValue.Value)
			if err != nil {
				return fmt.Errorf("handling key value: %w", err)
			}
		}
		return nil
	}

	return stream.Orchestrate(ctx)
}

// Close closes the database.
func (db *Database) Close() (err error) {
	if db.closed.Swap(true) {
		return database.ErrClosed
	}
	return db.badgerDatabase.Close()
}

// DropAll drops all data from the database.
func (db *Database) DropAll() (err error) {
	if db.closed.Load() {
		return database.ErrClosed
	}
	return db.badgerDatabase.DropAll()
}
