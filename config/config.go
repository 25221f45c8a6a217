// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

// Package config holds the TOML configuration of the light client tooling.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ChainSafe/ics10-grandpa/internal/database/badger"
	"github.com/ChainSafe/ics10-grandpa/internal/log"
	"github.com/ChainSafe/ics10-grandpa/lib/common"
	"github.com/ChainSafe/ics10-grandpa/lib/grandpa"
	"github.com/ChainSafe/ics10-grandpa/pkg/storage"
	"github.com/go-playground/validator/v10"
	"github.com/naoina/toml"
)

// ErrInvalidConfig is returned when a configuration value is not valid.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the configuration read from a TOML file.
type Config struct {
	Log      LogConfig      `toml:"log"`
	Database DatabaseConfig `toml:"database"`
	Trie     HasherConfig   `toml:"trie"`
	MMR      HasherConfig   `toml:"mmr"`
	Client   ClientConfig   `toml:"client"`
	Storage  StorageConfig  `toml:"storage"`
	Metrics  MetricsConfig  `toml:"metrics"`
}

// LogConfig holds the global log level and optional package levels.
// Package levels default to the global level when left empty.
type LogConfig struct {
	Level   string `toml:"level" validate:"loglevel"`
	State   string `toml:"state,omitempty" validate:"omitempty,loglevel"`
	Grandpa string `toml:"grandpa,omitempty" validate:"omitempty,loglevel"`
}

// DatabaseConfig is the client store database configuration.
type DatabaseConfig struct {
	Path     string `toml:"path" validate:"required_unless=InMemory true"`
	InMemory bool   `toml:"in-memory"`
}

// HasherConfig names a hash function.
type HasherConfig struct {
	Hasher string `toml:"hasher" validate:"hasher"`
}

// ClientConfig configures the header checks.
type ClientConfig struct {
	RevisionNumber   uint64 `toml:"revision-number"`
	StrictParentHash bool   `toml:"strict-parent-hash"`
}

// StorageConfig locates the IBC state in the counterparty runtime.
// Item names left empty use the default names.
type StorageConfig struct {
	Pallet           string `toml:"pallet" validate:"required"`
	Connections      string `toml:"connections,omitempty"`
	Channels         string `toml:"channels,omitempty"`
	ClientStates     string `toml:"client-states,omitempty"`
	PacketCommitment string `toml:"packet-commitment,omitempty"`
	Acknowledgements string `toml:"acknowledgements,omitempty"`
	NextSequenceRecv string `toml:"next-sequence-recv,omitempty"`
	PacketReceipt    string `toml:"packet-receipt,omitempty"`
}

// MetricsConfig configures pushing the store metrics to a Prometheus
// push gateway once a command completes.
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Pushgateway string `toml:"pushgateway,omitempty" validate:"required_if=Enabled true,omitempty,url"`
	Job         string `toml:"job" validate:"required"`
}

// Default returns the default configuration, storing clients under
// the data directory of the user.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level: log.Info.String(),
		},
		Database: DatabaseConfig{
			Path: defaultDatabasePath(),
		},
		Trie: HasherConfig{
			Hasher: common.Blake2b256Hasher.String(),
		},
		MMR: HasherConfig{
			Hasher: common.Keccak256Hasher.String(),
		},
		Storage: StorageConfig{
			Pallet: storage.DefaultPallet,
		},
		Metrics: MetricsConfig{
			Job: "ics10_grandpa",
		},
	}
}

func defaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".ics10-grandpa"
	}
	return filepath.Join(home, ".ics10-grandpa")
}

// Load reads the TOML file at path over the default configuration
// and validates the result.
func Load(path string) (cfg *Config, err error) {
	cfg = Default()

	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("opening configuration file: %w", err)
	}
	defer func() {
		closeErr := file.Close()
		if err == nil && closeErr != nil {
			err = fmt.Errorf("closing configuration file: %w", closeErr)
		}
	}()

	err = toml.NewDecoder(file).Decode(cfg)
	if err != nil {
		return nil, fmt.Errorf("decoding configuration file: %w", err)
	}

	err = cfg.Validate()
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// Export writes the configuration as TOML to the file at path.
func Export(cfg *Config, path string) error {
	raw, err := toml.Marshal(*cfg)
	if err != nil {
		return fmt.Errorf("encoding configuration: %w", err)
	}

	err = os.WriteFile(path, raw, 0600)
	if err != nil {
		return fmt.Errorf("writing configuration file: %w", err)
	}
	return nil
}

func newValidator() *validator.Validate {
	validate := validator.New()
	// RegisterValidation only fails for an empty tag or a nil function.
	_ = validate.RegisterValidation("loglevel", func(fl validator.FieldLevel) bool {
		_, err := log.ParseLevel(fl.Field().String())
		return err == nil
	})
	_ = validate.RegisterValidation("hasher", func(fl validator.FieldLevel) bool {
		_, err := common.HasherFromName(fl.Field().String())
		return err == nil
	})
	return validate
}

// Validate checks every configuration value.
func (c *Config) Validate() error {
	err := newValidator().Struct(c)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, err)
	}

	// Report the first failing field only.
	fieldErr := validationErrors[0]
	return fmt.Errorf("%w: %s fails %q check with value %q",
		ErrInvalidConfig, fieldErr.Namespace(), fieldErr.Tag(), fmt.Sprint(fieldErr.Value()))
}

// LogLevels returns the global, state and grandpa package log levels.
func (c LogConfig) LogLevels() (global, state, finality log.Level, err error) {
	global, err = log.ParseLevel(c.Level)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("parsing global log level: %w", err)
	}

	state, finality = global, global
	if c.State != "" {
		state, err = log.ParseLevel(c.State)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("parsing state log level: %w", err)
		}
	}
	if c.Grandpa != "" {
		finality, err = log.ParseLevel(c.Grandpa)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("parsing grandpa log level: %w", err)
		}
	}
	return global, state, finality, nil
}

// BadgerSettings returns the badger settings of the database.
func (c DatabaseConfig) BadgerSettings() badger.Settings {
	inMemory := c.InMemory
	settings := badger.Settings{
		Path:     c.Path,
		InMemory: &inMemory,
	}
	settings.SetDefaults()
	return settings
}

// StorageTable returns the storage item table.
func (c StorageConfig) StorageTable() storage.Table {
	return storage.NewTable(c.Pallet, map[storage.Entity]string{
		storage.Connections:      c.Connections,
		storage.Channels:         c.Channels,
		storage.ClientStates:     c.ClientStates,
		storage.PacketCommitment: c.PacketCommitment,
		storage.Acknowledgements: c.Acknowledgements,
		storage.NextSequenceRecv: c.NextSequenceRecv,
		storage.PacketReceipt:    c.PacketReceipt,
	})
}

// ClientOptions returns the options of the grandpa client matching the
// configuration.
func (c *Config) ClientOptions() (options []grandpa.Option, err error) {
	trieHasher, err := common.HasherFromName(c.Trie.Hasher)
	if err != nil {
		return nil, fmt.Errorf("trie hasher: %w", err)
	}
	mmrHasher, err := common.HasherFromName(c.MMR.Hasher)
	if err != nil {
		return nil, fmt.Errorf("mmr hasher: %w", err)
	}

	return []grandpa.Option{
		grandpa.WithTrieHasher(trieHasher),
		grandpa.WithMMRHasher(mmrHasher),
		grandpa.WithStorageTable(c.Storage.StorageTable()),
		grandpa.WithStrictParentHash(c.Client.StrictParentHash),
	}, nil
}
