// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package state

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"github.com/ChainSafe/ics10-grandpa/lib/grandpa"
)

// Table prefixes of the client store.
const (
	clientStatePrefix    = "client/"
	consensusStatePrefix = "consensus/"
)

const heightKeyLength = 16

var (
	// ErrInvalidClientID is returned for an empty client id or one holding a key separator.
	ErrInvalidClientID = errors.New("invalid client id")
	errMalformedKey    = errors.New("malformed consensus state key")
)

func validateClientID(clientID string) error {
	if clientID == "" || strings.Contains(clientID, "/") {
		return fmt.Errorf("%w: %q", ErrInvalidClientID, clientID)
	}
	return nil
}

// consensusStateKey returns the key of the consensus state of the client at
// the height, relative to the consensus state table. Heights are written big
// endian so keys of a client sort by height.
func consensusStateKey(clientID string, height grandpa.Height) []byte {
	key := make([]byte, 0, len(clientID)+1+heightKeyLength)
	key = append(key, clientID...)
	key = append(key, '/')
	key = binary.BigEndian.AppendUint64(key, height.RevisionNumber)
	return binary.BigEndian.AppendUint64(key, height.RevisionHeight)
}

// parseConsensusStateKey is the inverse of consensusStateKey, for keys
// carrying the consensus state table prefix.
func parseConsensusStateKey(key []byte) (clientID string, height grandpa.Height, err error) {
	if !strings.HasPrefix(string(key), consensusStatePrefix) {
		return "", height, fmt.Errorf("%w: missing prefix: 0x%x", errMalformedKey, key)
	}
	key = key[len(consensusStatePrefix):]

	if len(key) < heightKeyLength+2 || key[len(key)-heightKeyLength-1] != '/' {
		return "", height, fmt.Errorf("%w: 0x%x", errMalformedKey, key)
	}

	clientID = string(key[:len(key)-heightKeyLength-1])
	encodedHeight := key[len(key)-heightKeyLength:]
	height = grandpa.NewHeight(
		binary.BigEndian.Uint64(encodedHeight[:8]),
		binary.BigEndian.Uint64(encodedHeight[8:]),
	)
	return clientID, height, nil
}
