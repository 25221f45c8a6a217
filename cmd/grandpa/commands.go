// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package main

import (
	"fmt"
	"strings"

	"github.com/ChainSafe/ics10-grandpa/config"
	"github.com/ChainSafe/ics10-grandpa/dot/types"
	"github.com/ChainSafe/ics10-grandpa/lib/common"
	"github.com/ChainSafe/ics10-grandpa/pkg/mmr"
	"github.com/ChainSafe/ics10-grandpa/pkg/storage"
	"github.com/urfave/cli"
)

// parseKeyPart returns the bytes of a 0x prefixed hex key part,
// or the bytes of the string itself otherwise.
func parseKeyPart(part string) ([]byte, error) {
	if strings.HasPrefix(part, "0x") {
		return common.HexToBytes(part)
	}
	return []byte(part), nil
}

func (r *runner) storageKey(ctx *cli.Context) error {
	pallet := ctx.String(PalletFlag.Name)
	item := ctx.String(ItemFlag.Name)

	keyParts := ctx.StringSlice(KeyFlag.Name)
	parts := make([][]byte, len(keyParts))
	for i, keyPart := range keyParts {
		part, err := parseKeyPart(keyPart)
		if err != nil {
			return fmt.Errorf("parsing key part %d: %w", i, err)
		}
		parts[i] = part
	}

	var key []byte
	var err error
	if len(parts) == 0 {
		key, err = storage.ValueKey(pallet, item)
	} else {
		key, err = storage.FinalKey(pallet, item, parts)
	}
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(ctx.App.Writer, common.BytesToHex(key))
	return err
}

func (r *runner) verifyMMR(ctx *cli.Context) error {
	hasher, err := common.HasherFromName(r.config.MMR.Hasher)
	if err != nil {
		return err
	}

	root, err := common.HexToHash(ctx.String(RootFlag.Name))
	if err != nil {
		return fmt.Errorf("parsing root: %w", err)
	}
	leafHash, err := common.HexToHash(ctx.String(LeafHashFlag.Name))
	if err != nil {
		return fmt.Errorf("parsing leaf hash: %w", err)
	}

	proof := mmr.Proof{
		LeafIndex: ctx.Uint64(LeafIndexFlag.Name),
		LeafCount: ctx.Uint64(LeafCountFlag.Name),
	}
	for i, item := range ctx.StringSlice(ProofItemFlag.Name) {
		hash, err := common.HexToHash(item)
		if err != nil {
			return fmt.Errorf("parsing proof item %d: %w", i, err)
		}
		proof.Items = append(proof.Items, hash)
	}

	ok, err := mmr.VerifyLeafProof(hasher, root, leafHash, proof)
	if err != nil {
		return fmt.Errorf("verifying leaf proof: %w", err)
	}

	_, err = fmt.Fprintln(ctx.App.Writer, ok)
	return err
}

func (r *runner) decodeHeader(ctx *cli.Context) error {
	encoded, err := common.HexToBytes(ctx.String(HeaderFlag.Name))
	if err != nil {
		return fmt.Errorf("parsing header: %w", err)
	}

	header, err := types.DecodeHeader(encoded)
	if err != nil {
		return err
	}

	hash, err := header.Hash()
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(ctx.App.Writer, "number: %d\nhash: %s\nparent hash: %s\nstate root: %s\nextrinsics root: %s\n",
		header.Number, hash, header.ParentHash, header.StateRoot, header.ExtrinsicsRoot)
	return err
}

func (r *runner) exportConfig(ctx *cli.Context) error {
	path := ctx.String(OutputFlag.Name)
	err := config.Export(r.config, path)
	if err != nil {
		return err
	}
	logger.Infof("configuration written to %s", path)
	return nil
}
