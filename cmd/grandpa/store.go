// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ChainSafe/ics10-grandpa/dot/state"
	"github.com/ChainSafe/ics10-grandpa/internal/database/badger"
	"github.com/ChainSafe/ics10-grandpa/internal/log"
	"github.com/ChainSafe/ics10-grandpa/lib/beefy"
	"github.com/ChainSafe/ics10-grandpa/lib/common"
	"github.com/ChainSafe/ics10-grandpa/lib/grandpa"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/urfave/cli"
)

// session is a client store opened for the duration of a command.
type session struct {
	store    *state.ClientStore
	client   *grandpa.Client
	registry *prometheus.Registry
}

func (r *runner) openSession(ctx context.Context) (s *session, err error) {
	db, err := badger.New(r.config.Database.BadgerSettings())
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	registry := prometheus.NewRegistry()
	store, err := state.NewClientStore(ctx, db,
		state.WithRegisterer(registry),
		state.WithLogger(log.NewFromGlobal(
			log.AddContext("pkg", "state"), log.SetLevel(r.stateLevel))),
	)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	options, err := r.config.ClientOptions()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	options = append(options, grandpa.WithLogger(log.NewFromGlobal(
		log.AddContext("pkg", "grandpa"), log.SetLevel(r.grandpaLevel))))

	return &session{
		store:    store,
		client:   grandpa.NewClient(store, options...),
		registry: registry,
	}, nil
}

// closeSession pushes the metrics of the session if enabled and closes the store.
func (r *runner) closeSession(s *session) {
	if r.config.Metrics.Enabled {
		err := push.New(r.config.Metrics.Pushgateway, r.config.Metrics.Job).
			Gatherer(s.registry).
			Push()
		if err != nil {
			logger.Warnf("cannot push metrics: %s", err)
		}
	}

	err := s.store.Close()
	if err != nil {
		logger.Errorf("cannot close client store: %s", err)
	}
}

// withSession runs the action with a session opened for the command.
func (r *runner) withSession(ctx *cli.Context, action func(ctx *cli.Context, s *session) error) error {
	s, err := r.openSession(context.Background())
	if err != nil {
		return err
	}
	defer r.closeSession(s)
	return action(ctx, s)
}

// parseHeight parses a height written as revision-height, or as a block
// number at the configured revision number.
func (r *runner) parseHeight(s string) (grandpa.Height, error) {
	if strings.Contains(s, "-") {
		return grandpa.ParseHeight(s)
	}
	number, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return grandpa.Height{}, fmt.Errorf("parsing block number: %w", err)
	}
	return grandpa.NewHeight(r.config.Client.RevisionNumber, number), nil
}

func (r *runner) createClient(ctx *cli.Context) error {
	return r.withSession(ctx, func(ctx *cli.Context, s *session) error {
		encodedClientState, err := common.HexToBytes(ctx.String(ClientStateFlag.Name))
		if err != nil {
			return fmt.Errorf("parsing client state: %w", err)
		}
		clientState, err := grandpa.UnpackClientState(encodedClientState)
		if err != nil {
			return err
		}

		encodedConsensusState, err := common.HexToBytes(ctx.String(ConsensusStateFlag.Name))
		if err != nil {
			return fmt.Errorf("parsing consensus state: %w", err)
		}
		consensusState, err := grandpa.UnpackConsensusState(encodedConsensusState)
		if err != nil {
			return err
		}

		clientID := ctx.String(ClientIDFlag.Name)
		err = s.store.CreateClient(clientID, clientState, consensusState)
		if err != nil {
			return err
		}

		_, err = fmt.Fprintf(ctx.App.Writer, "created client %s at height %s\n",
			clientID, clientState.LatestHeight())
		return err
	})
}

func (r *runner) showClient(ctx *cli.Context) error {
	return r.withSession(ctx, func(ctx *cli.Context, s *session) error {
		clientID := ctx.String(ClientIDFlag.Name)
		clientState, err := s.store.ClientState(clientID)
		if err != nil {
			return err
		}

		heights := s.store.ConsensusHeights(clientID)
		heightStrings := make([]string, len(heights))
		for i, height := range heights {
			heightStrings[i] = height.String()
		}

		_, err = fmt.Fprintf(ctx.App.Writer, "%s\nstatus: %s\nconsensus heights: %s\n",
			clientState, clientState.Status(), strings.Join(heightStrings, ", "))
		return err
	})
}

func (r *runner) checkHeader(ctx *cli.Context) error {
	return r.withSession(ctx, func(ctx *cli.Context, s *session) error {
		path := filepath.Clean(ctx.String(HeaderFileFlag.Name))
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading header file: %w", err)
		}

		encoded, err := common.HexToBytes(strings.TrimSpace(string(data)))
		if err != nil {
			return fmt.Errorf("parsing header file: %w", err)
		}
		header, err := grandpa.UnpackHeader(encoded)
		if err != nil {
			return err
		}

		clientID := ctx.String(ClientIDFlag.Name)
		clientState, consensusState, err := s.store.UpdateClient(s.client, clientID, header)
		if err != nil {
			return err
		}

		_, err = fmt.Fprintf(ctx.App.Writer, "accepted header %d: latest height %s\nconsensus state: %s\n",
			header.BlockHeader.Number, clientState.LatestHeight(), consensusState)
		return err
	})
}

func (r *runner) updateCommitment(ctx *cli.Context) error {
	return r.withSession(ctx, func(ctx *cli.Context, s *session) error {
		encoded, err := common.HexToBytes(ctx.String(SignedCommitmentFlag.Name))
		if err != nil {
			return fmt.Errorf("parsing signed commitment: %w", err)
		}
		signedCommitment, err := beefy.DecodeSignedCommitment(encoded)
		if err != nil {
			return err
		}

		encoded, err = common.HexToBytes(ctx.String(LeafFlag.Name))
		if err != nil {
			return fmt.Errorf("parsing leaf: %w", err)
		}
		leaf, err := beefy.DecodeMmrLeaf(encoded)
		if err != nil {
			return err
		}

		encoded, err = common.HexToBytes(ctx.String(LeafProofFlag.Name))
		if err != nil {
			return fmt.Errorf("parsing leaf proof: %w", err)
		}
		leafProof, err := beefy.DecodeMmrLeafProof(encoded)
		if err != nil {
			return err
		}

		clientID := ctx.String(ClientIDFlag.Name)
		clientState, err := s.store.UpdateCommitment(s.client, clientID, signedCommitment, leaf, leafProof)
		if err != nil {
			return err
		}

		commitment, err := clientState.LatestCommitment()
		if err != nil {
			return err
		}

		_, err = fmt.Fprintf(ctx.App.Writer, "updated client %s to commitment %s\n", clientID, commitment)
		return err
	})
}

func (r *runner) freeze(ctx *cli.Context) error {
	return r.withSession(ctx, func(ctx *cli.Context, s *session) error {
		height, err := r.parseHeight(ctx.String(HeightFlag.Name))
		if err != nil {
			return err
		}

		clientID := ctx.String(ClientIDFlag.Name)
		_, err = s.store.Freeze(clientID, height)
		if err != nil {
			return err
		}

		_, err = fmt.Fprintf(ctx.App.Writer, "froze client %s at height %s\n", clientID, height)
		return err
	})
}

func (r *runner) prune(ctx *cli.Context) error {
	return r.withSession(ctx, func(ctx *cli.Context, s *session) error {
		below, err := r.parseHeight(ctx.String(HeightFlag.Name))
		if err != nil {
			return err
		}

		clientID := ctx.String(ClientIDFlag.Name)
		pruned, err := s.store.PruneConsensusStates(clientID, below)
		if err != nil {
			return err
		}

		_, err = fmt.Fprintf(ctx.App.Writer, "pruned %d consensus states of client %s below %s\n",
			pruned, clientID, below)
		return err
	})
}
