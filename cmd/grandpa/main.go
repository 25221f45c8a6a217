// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package main

import (
	"io"
	"os"

	"github.com/ChainSafe/ics10-grandpa/config"
	"github.com/ChainSafe/ics10-grandpa/internal/log"
	"github.com/urfave/cli"
)

var logger = log.NewFromGlobal(log.AddContext("pkg", "cmd"))

// runner holds the configuration shared by the command actions once the
// app Before hook ran.
type runner struct {
	config       *config.Config
	stateLevel   log.Level
	grandpaLevel log.Level
	logWriter    io.Writer
}

func newApp(stdout, stderr io.Writer) *cli.App {
	r := &runner{logWriter: stderr}

	app := cli.NewApp()
	app.Name = "grandpa"
	app.Usage = "GRANDPA/BEEFY IBC light client tooling"
	app.Version = "0.1.0"
	app.Writer = stdout
	app.ErrWriter = stderr
	app.Flags = []cli.Flag{ConfigFlag, LogFlag, DatabaseFlag}
	app.Before = r.setup
	app.Commands = []cli.Command{
		{
			Name:   "storage-key",
			Usage:  "Print the storage key of an IBC storage item entry",
			Action: r.storageKey,
			Flags:  []cli.Flag{PalletFlag, ItemFlag, KeyFlag},
		},
		{
			Name:   "verify-mmr",
			Usage:  "Verify an MMR leaf proof against an MMR root",
			Action: r.verifyMMR,
			Flags:  []cli.Flag{RootFlag, LeafHashFlag, LeafIndexFlag, LeafCountFlag, ProofItemFlag},
		},
		{
			Name:   "decode-header",
			Usage:  "Decode a SCALE encoded block header",
			Action: r.decodeHeader,
			Flags:  []cli.Flag{HeaderFlag},
		},
		{
			Name:   "export-config",
			Usage:  "Write the configuration in use to a TOML file",
			Action: r.exportConfig,
			Flags:  []cli.Flag{OutputFlag},
		},
		{
			Name:   "create-client",
			Usage:  "Store a new client with its initial consensus state",
			Action: r.createClient,
			Flags:  []cli.Flag{ClientIDFlag, ClientStateFlag, ConsensusStateFlag},
		},
		{
			Name:   "show-client",
			Usage:  "Print a stored client state and the heights of its consensus states",
			Action: r.showClient,
			Flags:  []cli.Flag{ClientIDFlag},
		},
		{
			Name:   "check-header",
			Usage:  "Check a header against a stored client and store the update",
			Action: r.checkHeader,
			Flags:  []cli.Flag{ClientIDFlag, HeaderFileFlag},
		},
		{
			Name:   "update-commitment",
			Usage:  "Move a stored client to a newer BEEFY commitment",
			Action: r.updateCommitment,
			Flags:  []cli.Flag{ClientIDFlag, SignedCommitmentFlag, LeafFlag, LeafProofFlag},
		},
		{
			Name:   "freeze",
			Usage:  "Freeze a stored client at a height",
			Action: r.freeze,
			Flags:  []cli.Flag{ClientIDFlag, HeightFlag},
		},
		{
			Name:   "prune",
			Usage:  "Delete the consensus states of a stored client below a height",
			Action: r.prune,
			Flags:  []cli.Flag{ClientIDFlag, HeightFlag},
		},
	}
	return app
}

func main() {
	app := newApp(os.Stdout, os.Stderr)
	err := app.Run(os.Args)
	if err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
}

// setup loads the configuration, applies the global flags over it and
// patches the global logger.
func (r *runner) setup(ctx *cli.Context) (err error) {
	cfg := config.Default()
	if path := ctx.GlobalString(ConfigFlag.Name); path != "" {
		cfg, err = config.Load(path)
		if err != nil {
			return err
		}
	}

	if level := ctx.GlobalString(LogFlag.Name); level != "" {
		cfg.Log.Level = level
	}
	if path := ctx.GlobalString(DatabaseFlag.Name); path != "" {
		cfg.Database.Path = path
	}

	err = cfg.Validate()
	if err != nil {
		return err
	}

	global, stateLevel, grandpaLevel, err := cfg.Log.LogLevels()
	if err != nil {
		return err
	}

	log.Patch(
		log.SetWriter(r.logWriter),
		log.SetLevel(global),
		log.SetCallerFile(true),
		log.SetCallerLine(true),
	)

	r.config = cfg
	r.stateLevel = stateLevel
	r.grandpaLevel = grandpaLevel
	logger.Debugf("using database %s", cfg.Database.Path)
	return nil
}
