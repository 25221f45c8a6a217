// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package codec

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/ChainSafe/ics10-grandpa/lib/common"
)

var (
	ErrDecodeHashedValueTooShort = errors.New("hashed storage value too short")
	ErrReadChildrenBitmap        = errors.New("cannot read children bitmap")
	ErrDecodeChildHash           = errors.New("cannot decode child hash")
	ErrDecodeStorageValue        = errors.New("cannot decode storage value")
	ErrCompactEncoding           = errors.New("compact encoding is not supported")
	ErrEmptyBranch               = errors.New("branch has no children")
	ErrTrailingBytes             = errors.New("trailing bytes after node encoding")
)

const hashLength = common.HashLength

// Decode decodes a node from its encoding.
// Partial keys, values and children are validated against the bytes
// actually present, so corrupt lengths cannot trigger large allocations.
// See https://spec.polkadot.network/chap-state#defn-node-header
func Decode(encoding []byte) (n Node, err error) {
	reader := bytes.NewReader(encoding)
	variant, partialKeyLength, err := decodeHeader(reader)
	if err != nil {
		return nil, fmt.Errorf("decoding header: %w", err)
	}

	switch variant {
	case emptyVariant:
		n = Empty{}
	case compactEncodingVariant:
		return nil, ErrCompactEncoding
	default:
		partialKey, err := decodeKey(reader, partialKeyLength)
		if err != nil {
			return nil, fmt.Errorf("cannot decode key: %w", err)
		}

		switch variant {
		case leafVariant, leafWithHashedValueVariant:
			n, err = decodeLeaf(reader, variant, partialKey)
			if err != nil {
				return nil, fmt.Errorf("cannot decode leaf: %w", err)
			}
		case branchVariant, branchWithValueVariant, branchWithHashedValueVariant:
			n, err = decodeBranch(reader, variant, partialKey)
			if err != nil {
				return nil, fmt.Errorf("cannot decode branch: %w", err)
			}
		default:
			// this is a programming error, an unknown node variant should be caught by decodeHeader.
			panic(fmt.Sprintf("not implemented for node variant %08b", variant))
		}
	}

	if reader.Len() > 0 {
		return nil, fmt.Errorf("%w: %d bytes left", ErrTrailingBytes, reader.Len())
	}
	return n, nil
}

// decodeBranch reads from a reader and decodes to a node branch.
// Note that we are not decoding the children nodes.
func decodeBranch(reader *bytes.Reader, variant variant, partialKey []byte) (
	node Branch, err error) {
	node = Branch{
		PartialKey: partialKey,
	}

	childrenBitmap := make([]byte, 2)
	_, err = io.ReadFull(reader, childrenBitmap)
	if err != nil {
		return Branch{}, fmt.Errorf("%w: %s", ErrReadChildrenBitmap, err)
	}
	if childrenBitmap[0] == 0 && childrenBitmap[1] == 0 {
		return Branch{}, ErrEmptyBranch
	}

	switch variant {
	case branchWithValueVariant:
		valueBytes, err := common.ReadScaleBytes(reader)
		if err != nil {
			return Branch{}, fmt.Errorf("%w: %s", ErrDecodeStorageValue, err)
		}
		node.Value = InlineValue{Data: valueBytes}
	case branchWithHashedValueVariant:
		hashedValue, err := decodeHashedValue(reader)
		if err != nil {
			return Branch{}, err
		}
		node.Value = HashedValue{Data: hashedValue}
	default:
		// Do nothing, branch without value
	}

	for i := 0; i < ChildrenCapacity; i++ {
		if (childrenBitmap[i/8]>>(i%8))&1 != 1 {
			continue
		}

		hash, err := common.ReadScaleBytes(reader)
		if err != nil {
			return Branch{}, fmt.Errorf("%w: at index %d: %s",
				ErrDecodeChildHash, i, err)
		}

		switch {
		case len(hash) < hashLength:
			node.Children[i] = InlineNode{Data: hash}
		case len(hash) == hashLength:
			node.Children[i] = HashedNode{Data: hash}
		default:
			return Branch{}, fmt.Errorf("%w: at index %d: merkle value of %d bytes",
				ErrDecodeChildHash, i, len(hash))
		}
	}

	return node, nil
}

// decodeLeaf reads from a reader and decodes to a leaf node.
func decodeLeaf(reader *bytes.Reader, variant variant, partialKey []byte) (node Leaf, err error) {
	node = Leaf{
		PartialKey: partialKey,
	}

	if variant == leafWithHashedValueVariant {
		hashedValue, err := decodeHashedValue(reader)
		if err != nil {
			return Leaf{}, err
		}
		node.Value = HashedValue{Data: hashedValue}
		return node, nil
	}

	valueBytes, err := common.ReadScaleBytes(reader)
	if err != nil {
		return Leaf{}, fmt.Errorf("%w: %s", ErrDecodeStorageValue, err)
	}

	node.Value = InlineValue{Data: valueBytes}

	return node, nil
}

func decodeHashedValue(reader io.Reader) ([]byte, error) {
	buffer := make([]byte, hashLength)
	n, err := io.ReadFull(reader, buffer)
	if err != nil {
		return nil, fmt.Errorf("%w: expected %d, got: %d", ErrDecodeHashedValueTooShort, hashLength, n)
	}

	return buffer, nil
}
