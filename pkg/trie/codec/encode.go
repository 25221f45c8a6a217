// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package codec

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ChainSafe/ics10-grandpa/lib/common"
)

var (
	ErrNodeTypeUnknown    = errors.New("node type is unknown")
	ErrHashedValueLength  = errors.New("hashed value must be 32 bytes")
	ErrLeafValueMissing   = errors.New("leaf value is missing")
	ErrMerkleValueTooLong = errors.New("child merkle value cannot exceed 32 bytes")
)

// Encode returns the encoding of the node.
func Encode(n Node) (encoding []byte, err error) {
	buffer := bytes.NewBuffer(nil)

	switch n := n.(type) {
	case Empty:
		buffer.WriteByte(emptyVariant.bits)
	case Leaf:
		err = encodeLeaf(n, buffer)
	case Branch:
		err = encodeBranch(n, buffer)
	default:
		return nil, fmt.Errorf("%w: %T", ErrNodeTypeUnknown, n)
	}
	if err != nil {
		return nil, err
	}

	return buffer.Bytes(), nil
}

func encodeLeaf(leaf Leaf, buffer *bytes.Buffer) (err error) {
	nodeVariant := leafVariant
	switch leaf.Value.(type) {
	case nil:
		return ErrLeafValueMissing
	case HashedValue:
		nodeVariant = leafWithHashedValueVariant
	}

	err = encodeHeader(nodeVariant, len(leaf.PartialKey), buffer)
	if err != nil {
		return fmt.Errorf("cannot encode header: %w", err)
	}
	buffer.Write(NibblesToKeyLE(leaf.PartialKey))

	return encodeValue(leaf.Value, buffer)
}

func encodeBranch(branch Branch, buffer *bytes.Buffer) (err error) {
	nodeVariant := branchVariant
	switch branch.Value.(type) {
	case InlineValue:
		nodeVariant = branchWithValueVariant
	case HashedValue:
		nodeVariant = branchWithHashedValueVariant
	}

	err = encodeHeader(nodeVariant, len(branch.PartialKey), buffer)
	if err != nil {
		return fmt.Errorf("cannot encode header: %w", err)
	}
	buffer.Write(NibblesToKeyLE(branch.PartialKey))

	bitmap := branch.ChildrenBitmap()
	buffer.Write([]byte{byte(bitmap), byte(bitmap >> 8)})

	if branch.Value != nil {
		err = encodeValue(branch.Value, buffer)
		if err != nil {
			return err
		}
	}

	for i, child := range branch.Children {
		if child == nil {
			continue
		}
		if len(child.Bytes()) > hashLength {
			return fmt.Errorf("%w: child %d has %d bytes", ErrMerkleValueTooLong, i, len(child.Bytes()))
		}
		buffer.Write(common.ScaleEncodeBytes(child.Bytes()))
	}

	return nil
}

func encodeValue(value NodeValue, buffer *bytes.Buffer) error {
	switch value := value.(type) {
	case HashedValue:
		if len(value.Data) != hashLength {
			return fmt.Errorf("%w: got %d bytes", ErrHashedValueLength, len(value.Data))
		}
		buffer.Write(value.Data)
	default:
		buffer.Write(common.ScaleEncodeBytes(value.Bytes()))
	}
	return nil
}
