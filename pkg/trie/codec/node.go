// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package codec

import (
	"fmt"

	"github.com/qdm12/gotree"
)

// ChildrenCapacity is the maximum number of children in a branch node.
const ChildrenCapacity = 16

// MerkleValue is a child reference in a branch: either the child
// encoding itself when shorter than a hash, or the hash of the encoding.
// https://spec.polkadot.network/chap-state#defn-merkle-value
type MerkleValue interface {
	isMerkleValue()
	IsHashed() bool
	Bytes() []byte
}

type (
	// InlineNode holds the full encoding of a child node.
	InlineNode struct {
		Data []byte
	}
	// HashedNode holds the hash of a child node encoding.
	HashedNode struct {
		Data []byte
	}
)

func (InlineNode) isMerkleValue()  {}
func (InlineNode) IsHashed() bool  { return false }
func (n InlineNode) Bytes() []byte { return n.Data }
func (HashedNode) isMerkleValue()  {}
func (HashedNode) IsHashed() bool  { return true }
func (n HashedNode) Bytes() []byte { return n.Data }

// NodeValue is a storage value as held by a leaf or a branch.
type NodeValue interface {
	isNodeValue()
	Bytes() []byte
}

type (
	// InlineValue holds the value bytes.
	InlineValue struct {
		Data []byte
	}
	// HashedValue holds the hash of the value, the value itself being
	// stored next to the trie nodes.
	HashedValue struct {
		Data []byte
	}
)

func (InlineValue) isNodeValue()    {}
func (v InlineValue) Bytes() []byte { return v.Data }
func (HashedValue) isNodeValue()    {}
func (v HashedValue) Bytes() []byte { return v.Data }

// Node is the representation of a decoded node.
type Node interface {
	isNode()
	fmt.Stringer
	StringNode() *gotree.Node
}

type (
	// Empty is the node of an empty trie.
	Empty struct{}
	// Leaf always contains a value.
	Leaf struct {
		PartialKey []byte
		Value      NodeValue
	}
	// Branch has at least one child and an optional value.
	Branch struct {
		PartialKey []byte
		Children   [ChildrenCapacity]MerkleValue
		Value      NodeValue
	}
)

func (Empty) isNode()  {}
func (Leaf) isNode()   {}
func (Branch) isNode() {}

// ChildrenBitmap returns the 16 bit bitmap
// of the children in the branch node.
func (b Branch) ChildrenBitmap() (bitmap uint16) {
	for i := range b.Children {
		if b.Children[i] == nil {
			continue
		}
		bitmap |= 1 << uint(i)
	}
	return bitmap
}

// NumChildren returns the total number of children in the branch node.
func (b Branch) NumChildren() (count int) {
	for i := range b.Children {
		if b.Children[i] != nil {
			count++
		}
	}
	return count
}

func (e Empty) String() string {
	return e.StringNode().String()
}

// StringNode returns a gotree compatible node for String methods.
func (Empty) StringNode() *gotree.Node {
	return gotree.New("Empty")
}

func (l Leaf) String() string {
	return l.StringNode().String()
}

// StringNode returns a gotree compatible node for String methods.
func (l Leaf) StringNode() (stringNode *gotree.Node) {
	stringNode = gotree.New("Leaf")
	stringNode.Appendf("Key: %s", bytesToString(l.PartialKey))
	stringNode.Appendf("Value: %s", valueToString(l.Value))
	return stringNode
}

func (b Branch) String() string {
	return b.StringNode().String()
}

// StringNode returns a gotree compatible node for String methods.
func (b Branch) StringNode() (stringNode *gotree.Node) {
	stringNode = gotree.New("Branch")
	stringNode.Appendf("Key: %s", bytesToString(b.PartialKey))
	stringNode.Appendf("Value: %s", valueToString(b.Value))
	stringNode.Appendf("Children: %016b", b.ChildrenBitmap())
	for i, child := range b.Children {
		if child == nil {
			continue
		}
		kind := "inline"
		if child.IsHashed() {
			kind = "hashed"
		}
		stringNode.Appendf("Child %d (%s): %s", i, kind, bytesToString(child.Bytes()))
	}
	return stringNode
}

func valueToString(value NodeValue) string {
	switch value := value.(type) {
	case nil:
		return "nil"
	case HashedValue:
		return "hash " + bytesToString(value.Data)
	default:
		return bytesToString(value.Bytes())
	}
}

func bytesToString(b []byte) (s string) {
	switch {
	case b == nil:
		return "nil"
	case len(b) <= 20:
		return fmt.Sprintf("0x%x", b)
	default:
		return fmt.Sprintf("0x%x...%x", b[:8], b[len(b)-8:])
	}
}
