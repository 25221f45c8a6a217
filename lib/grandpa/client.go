// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package grandpa

import (
	"github.com/ChainSafe/ics10-grandpa/internal/log"
	"github.com/ChainSafe/ics10-grandpa/lib/common"
	"github.com/ChainSafe/ics10-grandpa/pkg/storage"
)

var logger = log.NewFromGlobal(log.AddContext("pkg", "grandpa"))

// ClientReader reads the state stored for clients of the host chain.
type ClientReader interface {
	// ConsensusState returns the consensus state of the client at the height.
	// The error wraps ErrConsensusStateNotFound when none is stored.
	ConsensusState(clientID string, height Height) (ConsensusState, error)
	// HostHeight returns the current height of the host chain.
	HostHeight() Height
}

// Client checks headers and proofs of a GRANDPA/BEEFY counterparty chain.
// It holds no client state and is safe for concurrent use.
type Client struct {
	reader           ClientReader
	table            storage.Table
	trieHasher       common.Hasher
	mmrHasher        common.Hasher
	strictParentHash bool
	logger           *log.Logger
}

// Option configures a Client.
type Option func(c *Client)

// WithStorageTable sets the table of storage items holding the IBC state.
func WithStorageTable(table storage.Table) Option {
	return func(c *Client) {
		c.table = table
	}
}

// WithTrieHasher sets the hasher of the counterparty state trie.
func WithTrieHasher(hasher common.Hasher) Option {
	return func(c *Client) {
		c.trieHasher = hasher
	}
}

// WithMMRHasher sets the hasher of the MMR leaves and nodes.
func WithMMRHasher(hasher common.Hasher) Option {
	return func(c *Client) {
		c.mmrHasher = hasher
	}
}

// WithStrictParentHash makes header updates require the block header hash
// to be the parent hash recorded in the MMR leaf.
func WithStrictParentHash(enabled bool) Option {
	return func(c *Client) {
		c.strictParentHash = enabled
	}
}

// WithLogger sets the logger of the client.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// NewClient returns a client reading stored consensus states from reader.
func NewClient(reader ClientReader, options ...Option) *Client {
	c := &Client{
		reader:     reader,
		table:      storage.DefaultTable(),
		trieHasher: common.Blake2b256Hasher,
		mmrHasher:  common.Keccak256Hasher,
		logger:     logger,
	}
	for _, option := range options {
		option(c)
	}
	return c
}
