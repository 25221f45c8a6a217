// Copyright 2022 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package badger

import (
	"testing"

	"github.com/ChainSafe/ics10-grandpa/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_table(t *testing.T) {
	t.Parallel()

	db := newInMemory(t)

	// The prefix has spare capacity so appending to it in place would
	// corrupt the keys of the table.
	clientPrefix := make([]byte, 0, 16)
	clientPrefix = append(clientPrefix, "client/"...)
	clients := newTable(clientPrefix, db)
	consensusStates := db.NewTable("consensus/")

	clientID := []byte("10-grandpa-0")
	consensusKey := append([]byte("10-grandpa-0/"), make([]byte, 16)...)
	consensusKey[len(consensusKey)-1] = 0x59

	err := clients.Set(clientID, []byte{1})
	require.NoError(t, err)
	err = consensusStates.Set(consensusKey, []byte{0x89})
	require.NoError(t, err)

	assertDBValue(t, db, makePrefixedKey([]byte("client/"), clientID), []byte{1})
	assertDBValue(t, db, makePrefixedKey([]byte("consensus/"), consensusKey), []byte{0x89})
	assertDBKeyNotFound(t, db, clientID)

	_, err = consensusStates.Get(clientID)
	assert.ErrorIs(t, err, database.ErrKeyNotFound)

	writeBatch := clients.NewWriteBatch()
	err = writeBatch.Set(clientID, []byte{2})
	require.NoError(t, err)
	writeBatch.Cancel()

	value, err := clients.Get(clientID)
	require.NoError(t, err)
	assert.Equal(t, []byte{1}, value)

	writeBatch = consensusStates.NewWriteBatch()
	err = writeBatch.Delete(consensusKey)
	require.NoError(t, err)
	err = writeBatch.Set(consensusKey[:len(consensusKey)-1], []byte{0x81})
	require.NoError(t, err)
	err = writeBatch.Flush()
	require.NoError(t, err)

	assertDBKeyNotFound(t, db, makePrefixedKey([]byte("consensus/"), consensusKey))
	assertDBValue(t, db, makePrefixedKey([]byte("consensus/"), consensusKey[:len(consensusKey)-1]), []byte{0x81})

	err = clients.Delete(clientID)
	require.NoError(t, err)
	assertDBKeyNotFound(t, db, makePrefixedKey([]byte("client/"), clientID))
}
