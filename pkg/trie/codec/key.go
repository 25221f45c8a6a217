// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package codec

import (
	"errors"
	"fmt"
	"io"
)

const maxPartialKeyLength = ^uint16(0)

var ErrReaderMismatchCount = errors.New("read unexpected number of bytes from reader")

// decodeKey decodes a partial key of partialKeyLength nibbles from a reader.
func decodeKey(reader io.Reader, partialKeyLength uint16) (nibbles []byte, err error) {
	if partialKeyLength == 0 {
		return []byte{}, nil
	}

	key := make([]byte, partialKeyLength/2+partialKeyLength%2)
	n, err := io.ReadFull(reader, key)
	if err != nil {
		return nil, fmt.Errorf("%w: read %d bytes instead of expected %d bytes: %s",
			ErrReaderMismatchCount, n, len(key), err)
	}

	nibbles = KeyLEToNibbles(key)
	// an odd number of nibbles is padded with a leading zero nibble
	return nibbles[partialKeyLength%2:], nil
}

// KeyLEToNibbles converts a byte slice key to nibbles,
// most significant nibble first.
func KeyLEToNibbles(in []byte) (nibbles []byte) {
	if len(in) == 0 {
		return []byte{}
	}

	nibbles = make([]byte, 2*len(in))
	for i, b := range in {
		nibbles[2*i] = b / 16
		nibbles[2*i+1] = b % 16
	}
	return nibbles
}

// NibblesToKeyLE packs nibbles into bytes, prefixing an odd number
// of nibbles with a zero nibble.
func NibblesToKeyLE(nibbles []byte) []byte {
	if len(nibbles)%2 == 1 {
		keyLE := make([]byte, len(nibbles)/2+1)
		keyLE[0] = nibbles[0]
		for i := 2; i < len(nibbles); i += 2 {
			keyLE[i/2] = nibbles[i-1]<<4 | nibbles[i]
		}
		return keyLE
	}

	keyLE := make([]byte, len(nibbles)/2)
	for i := 0; i < len(nibbles); i += 2 {
		keyLE[i/2] = nibbles[i]<<4 | nibbles[i+1]
	}
	return keyLE
}
