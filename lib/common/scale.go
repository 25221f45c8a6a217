// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package common

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/centrifuge/go-substrate-rpc-client/v4/scale"
)

var (
	// ErrTrailingBytes is returned when SCALE decoding leaves unread bytes.
	ErrTrailingBytes = errors.New("trailing bytes after decoding")
	// ErrLengthTooLarge is returned when a SCALE length prefix claims
	// more bytes than the input holds.
	ErrLengthTooLarge = errors.New("length prefix exceeds input size")
)

// ScaleEncode returns the SCALE encoding of v.
func ScaleEncode(v interface{}) ([]byte, error) {
	var buffer bytes.Buffer
	err := scale.NewEncoder(&buffer).Encode(v)
	if err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

// ScaleDecode decodes the SCALE encoded data into the target pointer.
// All of data must be consumed. Use it for types without attacker
// controlled length prefixes; see ReadScaleBytes otherwise.
func ScaleDecode(data []byte, target interface{}) error {
	reader := bytes.NewReader(data)
	err := scale.NewDecoder(reader).Decode(target)
	if err != nil {
		return err
	}
	if reader.Len() != 0 {
		return fmt.Errorf("%w: %d bytes left", ErrTrailingBytes, reader.Len())
	}
	return nil
}

// ScaleEncodeBytes returns the SCALE encoding of b as a Vec<u8>,
// that is a compact length prefix followed by b.
func ScaleEncodeBytes(b []byte) []byte {
	var buffer bytes.Buffer
	encoder := scale.NewEncoder(&buffer)
	// writing to a bytes.Buffer cannot fail
	_ = encoder.EncodeUintCompact(*new(big.Int).SetUint64(uint64(len(b))))
	_ = encoder.Write(b)
	return buffer.Bytes()
}

// ScaleEncodeCompact returns the SCALE compact encoding of n.
func ScaleEncodeCompact(n uint64) []byte {
	var buffer bytes.Buffer
	_ = scale.NewEncoder(&buffer).EncodeUintCompact(*new(big.Int).SetUint64(n))
	return buffer.Bytes()
}

// ReadScaleCompact reads a SCALE compact integer fitting in 64 bits.
func ReadScaleCompact(reader io.Reader) (uint64, error) {
	n, err := scale.NewDecoder(reader).DecodeUintCompact()
	if err != nil {
		return 0, fmt.Errorf("decoding compact integer: %w", err)
	}
	if !n.IsUint64() {
		return 0, fmt.Errorf("%w: compact integer %s overflows 64 bits", ErrLengthTooLarge, n)
	}
	return n.Uint64(), nil
}

// ReadScaleBytes reads a SCALE Vec<u8> from the reader. The length prefix
// is checked against the bytes left in the reader before allocating.
func ReadScaleBytes(reader *bytes.Reader) ([]byte, error) {
	length, err := ReadScaleCompact(reader)
	if err != nil {
		return nil, err
	}
	if length > uint64(reader.Len()) {
		return nil, fmt.Errorf("%w: %d > %d", ErrLengthTooLarge, length, reader.Len())
	}

	b := make([]byte, length)
	_, err = io.ReadFull(reader, b)
	if err != nil {
		return nil, fmt.Errorf("reading %d bytes: %w", length, err)
	}
	return b, nil
}

// ScaleDecodeBytes decodes a SCALE Vec<u8> spanning all of data.
func ScaleDecodeBytes(data []byte) ([]byte, error) {
	reader := bytes.NewReader(data)
	b, err := ReadScaleBytes(reader)
	if err != nil {
		return nil, err
	}
	if reader.Len() != 0 {
		return nil, fmt.Errorf("%w: %d bytes left", ErrTrailingBytes, reader.Len())
	}
	return b, nil
}
