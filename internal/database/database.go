// Copyright 2022 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

// Package database defines the key value store used to persist clients.
package database

import (
	"context"
	"errors"
)

var (
	// ErrKeyNotFound is returned when a key is not found in the database.
	ErrKeyNotFound = errors.New("key not found")
	// ErrClosed is returned when operating on a closed database.
	ErrClosed = errors.New("database closed")
)

// Reader reads values from the database.
type Reader interface {
	Get(key []byte) (value []byte, err error)
}

// Writer writes values to the database.
type Writer interface {
	Set(key, value []byte) error
	Delete(key []byte) error
}

// WriteBatch buffers writes applied atomically on Flush.
type WriteBatch interface {
	Writer
	Flush() error
	Cancel()
}

// Table is a view of the database where all keys share a prefix.
type Table interface {
	Reader
	Writer
	NewWriteBatch() WriteBatch
}

// Database is a key value store. All methods are safe for concurrent use.
type Database interface {
	Reader
	Writer
	NewWriteBatch() WriteBatch
	NewTable(prefix string) Table
	// Stream calls handle for every key value pair whose key has the prefix
	// and is chosen by chooseKey.
	Stream(ctx context.Context, prefix []byte,
		chooseKey func(key []byte) bool,
		handle func(key, value []byte) error) error
	Close() error
	DropAll() error
}
