// Copyright 2022 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package badger

import (
	"context"
	"sort"
	"testing"

	"github.com/ChainSafe/ics10-grandpa/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Database(t *testing.T) {
	t.Parallel()

	db, err := New(Settings{Path: t.TempDir()})
	require.NoError(t, err)

	err = db.Set([]byte{1}, []byte{2})
	require.NoError(t, err)
	assertDBValue(t, db, []byte{1}, []byte{2})

	err = db.Delete([]byte{2})
	require.NoError(t, err)

	err = db.Delete([]byte{1})
	require.NoError(t, err)
	assertDBKeyNotFound(t, db, []byte{1})

	_, err = db.Get([]byte{1})
	assert.EqualError(t, err, "key not found: 0x01")

	err = db.Set([]byte{1}, []byte{2})
	require.NoError(t, err)

	err = db.DropAll()
	require.NoError(t, err)
	assertDBKeyNotFound(t, db, []byte{1})

	err = db.Close()
	require.NoError(t, err)

	_, err = db.Get([]byte{1})
	assert.ErrorIs(t, err, database.ErrClosed)
	err = db.Set([]byte{1}, []byte{2})
	assert.ErrorIs(t, err, database.ErrClosed)
	err = db.Close()
	assert.ErrorIs(t, err, database.ErrClosed)
}

func Test_Database_reopen(t *testing.T) {
	t.Parallel()

	path := t.TempDir()

	db, err := New(Settings{Path: path})
	require.NoError(t, err)
	err = db.NewTable("clients/").Set([]byte("a"), []byte{1})
	require.NoError(t, err)
	err = db.Close()
	require.NoError(t, err)

	db, err = New(Settings{Path: path})
	require.NoError(t, err)
	t.Cleanup(func() {
		err := db.Close()
		require.NoError(t, err)
	})
	assertDBValue(t, db, []byte("clients/a"), []byte{1})
}

func Test_writeBatch_Flush(t *testing.T) {
	t.Parallel()

	db := newInMemory(t)

	err := db.Set([]byte{3}, []byte{3})
	require.NoError(t, err)

	writeBatch := db.NewWriteBatch()
	value := []byte{1}
	err = writeBatch.Set([]byte{1}, value)
	require.NoError(t, err)
	value[0]++
	err = writeBatch.Delete([]byte{3})
	require.NoError(t, err)

	assertDBKeyNotFound(t, db, []byte{1})
	assertDBValue(t, db, []byte{3}, []byte{3})

	err = writeBatch.Flush()
	require.NoError(t, err)

	assertDBValue(t, db, []byte{1}, []byte{1})
	assertDBKeyNotFound(t, db, []byte{3})
}

func Test_Database_Stream(t *testing.T) {
	t.Parallel()

	db := newInMemory(t)

	keyValues := map[string][]byte{
		"a/1": {1},
		"a/2": {2},
		"a/3": {3},
		"b/1": {4},
	}
	writeBatch := db.NewWriteBatch()
	for key, value := range keyValues {
		err := writeBatch.Set([]byte(key), value)
		require.NoError(t, err)
	}
	err := writeBatch.Flush()
	require.NoError(t, err)

	var keys []string
	chooseKey := func(key []byte) bool { return string(key) != "a/3" }
	handle := func(key, value []byte) error {
		assert.Equal(t, keyValues[string(key)], value)
		keys = append(keys, string(key))
		return nil
	}

	err = db.Stream(context.Background(), []byte("a/"), chooseKey, handle)
	require.NoError(t, err)

	sort.Strings(keys)
	assert.Equal(t, []string{"a/1", "a/2"}, keys)
}
