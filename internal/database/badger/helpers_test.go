// Copyright 2022 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package badger

import (
	"testing"

	"github.com/ChainSafe/ics10-grandpa/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertDBValue(t *testing.T, db *Database, key, expectedValue []byte) {
	t.Helper()

	value, err := db.Get(key)
	require.NoError(t, err)
	assert.Equal(t, expectedValue, value)
}

func assertDBKeyNotFound(t *testing.T, db *Database, key []byte) {
	t.Helper()

	_, err := db.Get(key)
	assert.ErrorIs(t, err, database.ErrKeyNotFound)
}

func newInMemory(t *testing.T) *Database {
	t.Helper()

	db, err := New(Settings{InMemory: ptrTo(true)})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}
