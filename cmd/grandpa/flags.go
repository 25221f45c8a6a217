// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package main

import (
	"github.com/ChainSafe/ics10-grandpa/pkg/storage"
	"github.com/urfave/cli"
)

// Global flags
var (
	// ConfigFlag is the path of the TOML configuration file.
	ConfigFlag = cli.StringFlag{
		Name:  "config",
		Usage: "TOML configuration file",
	}
	// LogFlag overrides the configured global log level.
	LogFlag = cli.StringFlag{
		Name:  "log",
		Usage: "Global log level. Supports levels crit (silent), eror, warn, info, dbug and trce (trace)",
	}
	// DatabaseFlag overrides the configured database directory.
	DatabaseFlag = cli.StringFlag{
		Name:  "database",
		Usage: "Client store database directory",
	}
)

// Client flags
var (
	ClientIDFlag = cli.StringFlag{
		Name:     "client-id",
		Usage:    "Client identifier, eg. 10-grandpa-0",
		Required: true,
	}
	ClientStateFlag = cli.StringFlag{
		Name:     "client-state",
		Usage:    "0x prefixed hex of the protobuf Any encoded client state",
		Required: true,
	}
	ConsensusStateFlag = cli.StringFlag{
		Name:     "consensus-state",
		Usage:    "0x prefixed hex of the protobuf Any encoded consensus state",
		Required: true,
	}
	HeaderFileFlag = cli.StringFlag{
		Name:     "header-file",
		Usage:    "File holding the 0x prefixed hex of the protobuf Any encoded header",
		Required: true,
	}
	SignedCommitmentFlag = cli.StringFlag{
		Name:     "signed-commitment",
		Usage:    "0x prefixed hex of the SCALE encoded signed commitment",
		Required: true,
	}
	LeafFlag = cli.StringFlag{
		Name:     "leaf",
		Usage:    "0x prefixed hex of the SCALE encoded MMR leaf",
		Required: true,
	}
	LeafProofFlag = cli.StringFlag{
		Name:     "leaf-proof",
		Usage:    "0x prefixed hex of the SCALE encoded MMR leaf proof",
		Required: true,
	}
	HeightFlag = cli.StringFlag{
		Name:     "height",
		Usage:    "Height as revision-height, or a block number using the configured revision number",
		Required: true,
	}
)

// Storage key flags
var (
	PalletFlag = cli.StringFlag{
		Name:  "pallet",
		Usage: "Pallet name",
		Value: storage.DefaultPallet,
	}
	ItemFlag = cli.StringFlag{
		Name:     "item",
		Usage:    "Storage item name, eg. Connections",
		Required: true,
	}
	KeyFlag = cli.StringSliceFlag{
		Name:  "key",
		Usage: "Key part, SCALE encoded as bytes. Repeat for double and triple maps",
	}
)

// MMR flags
var (
	RootFlag = cli.StringFlag{
		Name:     "root",
		Usage:    "0x prefixed MMR root",
		Required: true,
	}
	LeafHashFlag = cli.StringFlag{
		Name:     "leaf-hash",
		Usage:    "0x prefixed hash of the leaf",
		Required: true,
	}
	LeafIndexFlag = cli.Uint64Flag{
		Name:  "leaf-index",
		Usage: "Index of the leaf",
	}
	LeafCountFlag = cli.Uint64Flag{
		Name:  "leaf-count",
		Usage: "Number of leaves of the MMR",
	}
	ProofItemFlag = cli.StringSliceFlag{
		Name:  "item",
		Usage: "0x prefixed proof item. Repeat for each item in order",
	}
)

// Other flags
var (
	HeaderFlag = cli.StringFlag{
		Name:     "header",
		Usage:    "0x prefixed hex of the SCALE encoded block header",
		Required: true,
	}
	OutputFlag = cli.StringFlag{
		Name:     "output",
		Usage:    "Output file path",
		Required: true,
	}
)
