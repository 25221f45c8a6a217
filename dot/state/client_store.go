// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package state

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ChainSafe/ics10-grandpa/internal/database"
	"github.com/ChainSafe/ics10-grandpa/internal/log"
	"github.com/ChainSafe/ics10-grandpa/lib/beefy"
	"github.com/ChainSafe/ics10-grandpa/lib/grandpa"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/tidwall/btree"
)

var logger = log.NewFromGlobal(
	log.AddContext("pkg", "state"),
)

var (
	// ErrClientNotFound is returned when no client state is stored for a client id.
	ErrClientNotFound = errors.New("client not found")
	// ErrClientExists is returned when creating a client under a used client id.
	ErrClientExists = errors.New("client already exists")
	// ErrConsensusStateExists is returned when an update would replace a
	// stored consensus state.
	ErrConsensusStateExists = errors.New("consensus state already exists")
)

// Verifier checks client updates. It is implemented by *grandpa.Client.
type Verifier interface {
	CheckHeaderAndUpdateState(clientID string, clientState grandpa.ClientState,
		header grandpa.Header) (grandpa.ClientState, grandpa.ConsensusState, error)
	UpdateCommitment(clientState grandpa.ClientState, signedCommitment beefy.SignedCommitment,
		leaf beefy.MmrLeaf, leafProof beefy.MmrLeafProof) (grandpa.ClientState, error)
}

var _ grandpa.ClientReader = (*ClientStore)(nil)

// ClientStore persists client states and their consensus states.
// Updates of a client are serialised, and each update writes the client
// state and the new consensus state in a single write batch.
type ClientStore struct {
	db              database.Database
	clientStates    database.Table
	consensusStates database.Table

	mapMutex sync.Mutex
	mutexes  map[string]*sync.Mutex

	// heights indexes the heights of the consensus states of each client.
	heights      map[string]*btree.BTreeG[grandpa.Height]
	heightsMutex sync.RWMutex

	hostHeight      grandpa.Height
	hostHeightMutex sync.RWMutex

	metrics *storeMetrics
	logger  *log.Logger
}

// StoreOption configures a ClientStore.
type StoreOption func(s *storeSettings)

type storeSettings struct {
	registerer prometheus.Registerer
	logger     *log.Logger
}

// WithRegisterer registers the store metrics with the registerer.
func WithRegisterer(registerer prometheus.Registerer) StoreOption {
	return func(s *storeSettings) {
		s.registerer = registerer
	}
}

// WithLogger sets the logger of the store.
func WithLogger(l *log.Logger) StoreOption {
	return func(s *storeSettings) {
		s.logger = l
	}
}

// NewClientStore returns a client store using the database, indexing the
// consensus states already stored.
func NewClientStore(ctx context.Context, db database.Database, options ...StoreOption) (*ClientStore, error) {
	settings := storeSettings{logger: logger}
	for _, option := range options {
		option(&settings)
	}

	store := &ClientStore{
		db:              db,
		clientStates:    db.NewTable(clientStatePrefix),
		consensusStates: db.NewTable(consensusStatePrefix),
		mutexes:         make(map[string]*sync.Mutex),
		heights:         make(map[string]*btree.BTreeG[grandpa.Height]),
		metrics:         newStoreMetrics(),
		logger:          settings.logger,
	}

	if settings.registerer != nil {
		err := store.metrics.register(settings.registerer)
		if err != nil {
			return nil, err
		}
	}

	err := store.loadIndex(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading consensus state index: %w", err)
	}

	return store, nil
}

func newHeightIndex() *btree.BTreeG[grandpa.Height] {
	return btree.NewBTreeG(func(a, b grandpa.Height) bool {
		return a.LT(b)
	})
}

func (s *ClientStore) loadIndex(ctx context.Context) error {
	var clients, consensusStates int
	chooseAll := func([]byte) bool { return true }

	err := s.db.Stream(ctx, []byte(clientStatePrefix), chooseAll, func(key, value []byte) error {
		clients++
		return nil
	})
	if err != nil {
		return err
	}

	s.heightsMutex.Lock()
	defer s.heightsMutex.Unlock()
	err = s.db.Stream(ctx, []byte(consensusStatePrefix), chooseAll, func(key, value []byte) error {
		clientID, height, err := parseConsensusStateKey(key)
		if err != nil {
			return err
		}
		s.indexLocked(clientID, height)
		consensusStates++
		return nil
	})
	if err != nil {
		return err
	}

	s.metrics.clients.Set(float64(clients))
	s.metrics.consensusStates.Set(float64(consensusStates))
	s.logger.Debugf("loaded %d clients with %d consensus states", clients, consensusStates)
	return nil
}

func (s *ClientStore) indexLocked(clientID string, height grandpa.Height) (added bool) {
	index, ok := s.heights[clientID]
	if !ok {
		index = newHeightIndex()
		s.heights[clientID] = index
	}
	_, replaced := index.Set(height)
	return !replaced
}

// lockClient locks the mutex of the client and returns its unlock function.
func (s *ClientStore) lockClient(clientID string) (unlock func()) {
	s.mapMutex.Lock()
	mutex, ok := s.mutexes[clientID]
	if !ok {
		mutex = new(sync.Mutex)
		s.mutexes[clientID] = mutex
	}
	s.mapMutex.Unlock()

	mutex.Lock()
	return mutex.Unlock
}

// CreateClient stores a new client with its initial consensus state at the
// latest height of the client state.
func (s *ClientStore) CreateClient(clientID string, clientState grandpa.ClientState,
	consensusState grandpa.ConsensusState) (err error) {
	err = validateClientID(clientID)
	if err != nil {
		return err
	}

	err = clientState.Validate()
	if err != nil {
		return fmt.Errorf("validating client state: %w", err)
	}
	err = consensusState.Validate()
	if err != nil {
		return fmt.Errorf("validating consensus state: %w", err)
	}

	unlock := s.lockClient(clientID)
	defer unlock()

	_, err = s.clientStates.Get([]byte(clientID))
	if err == nil {
		return fmt.Errorf("%w: %s", ErrClientExists, clientID)
	} else if !errors.Is(err, database.ErrKeyNotFound) {
		return fmt.Errorf("getting client state: %w", err)
	}

	err = s.commit(clientID, clientState, &consensusState)
	if err != nil {
		return err
	}

	s.metrics.clients.Inc()
	s.logger.Debugf("created client %s at height %s", clientID, clientState.LatestHeight())
	return nil
}

// ClientState returns the client state stored for the client.
func (s *ClientStore) ClientState(clientID string) (clientState grandpa.ClientState, err error) {
	data, err := s.clientStates.Get([]byte(clientID))
	if errors.Is(err, database.ErrKeyNotFound) {
		return clientState, fmt.Errorf("%w: %s", ErrClientNotFound, clientID)
	} else if err != nil {
		return clientState, fmt.Errorf("getting client state: %w", err)
	}

	clientState, err = grandpa.UnmarshalClientState(data)
	if err != nil {
		return clientState, fmt.Errorf("decoding client state of %s: %w", clientID, err)
	}
	return clientState, nil
}

// ConsensusState returns the consensus state of the client at the height.
// The error wraps grandpa.ErrConsensusStateNotFound when none is stored.
func (s *ClientStore) ConsensusState(clientID string, height grandpa.Height) (
	consensusState grandpa.ConsensusState, err error) {
	data, err := s.consensusStates.Get(consensusStateKey(clientID, height))
	if errors.Is(err, database.ErrKeyNotFound) {
		return consensusState, fmt.Errorf("%w: client %s at %s",
			grandpa.ErrConsensusStateNotFound, clientID, height)
	} else if err != nil {
		return consensusState, fmt.Errorf("getting consensus state: %w", err)
	}

	consensusState, err = grandpa.UnmarshalConsensusState(data)
	if err != nil {
		return consensusState, fmt.Errorf("decoding consensus state of %s at %s: %w", clientID, height, err)
	}
	return consensusState, nil
}

// LatestConsensusState returns the consensus state of the client at its
// greatest stored height.
func (s *ClientStore) LatestConsensusState(clientID string) (
	height grandpa.Height, consensusState grandpa.ConsensusState, err error) {
	s.heightsMutex.RLock()
	index, ok := s.heights[clientID]
	if ok {
		height, ok = index.Max()
	}
	s.heightsMutex.RUnlock()
	if !ok {
		return height, consensusState, fmt.Errorf("%w: client %s has no consensus state",
			grandpa.ErrConsensusStateNotFound, clientID)
	}

	consensusState, err = s.ConsensusState(clientID, height)
	return height, consensusState, err
}

// ConsensusHeights returns the heights of the consensus states of the
// client in ascending order.
func (s *ClientStore) ConsensusHeights(clientID string) (heights []grandpa.Height) {
	s.heightsMutex.RLock()
	defer s.heightsMutex.RUnlock()

	index, ok := s.heights[clientID]
	if !ok {
		return nil
	}
	return index.Items()
}

// HostHeight returns the height of the host chain last set.
func (s *ClientStore) HostHeight() grandpa.Height {
	s.hostHeightMutex.RLock()
	defer s.hostHeightMutex.RUnlock()
	return s.hostHeight
}

// SetHostHeight sets the height of the host chain.
func (s *ClientStore) SetHostHeight(height grandpa.Height) {
	s.hostHeightMutex.Lock()
	defer s.hostHeightMutex.Unlock()
	s.hostHeight = height
}

// UpdateClient checks the header against the stored client state and, on
// success, stores the updated client state and the consensus state of the
// header. Nothing is written when the header is rejected or when a
// consensus state is already stored at the header height.
func (s *ClientStore) UpdateClient(verifier Verifier, clientID string, header grandpa.Header) (
	clientState grandpa.ClientState, consensusState grandpa.ConsensusState, err error) {
	defer func() { s.metrics.observeUpdate("header", err) }()

	unlock := s.lockClient(clientID)
	defer unlock()

	stored, err := s.ClientState(clientID)
	if err != nil {
		return clientState, consensusState, err
	}

	clientState, consensusState, err = verifier.CheckHeaderAndUpdateState(clientID, stored, header)
	if err != nil {
		s.logger.Debugf("rejected header %d for client %s: %s", header.BlockHeader.Number, clientID, err)
		return grandpa.ClientState{}, grandpa.ConsensusState{}, err
	}

	height, err := grandpa.HeaderHeight(stored, header)
	if err != nil {
		return grandpa.ClientState{}, grandpa.ConsensusState{}, err
	}

	_, err = s.consensusStates.Get(consensusStateKey(clientID, height))
	if err == nil {
		return grandpa.ClientState{}, grandpa.ConsensusState{},
			fmt.Errorf("%w: client %s at %s", ErrConsensusStateExists, clientID, height)
	} else if !errors.Is(err, database.ErrKeyNotFound) {
		return grandpa.ClientState{}, grandpa.ConsensusState{}, fmt.Errorf("getting consensus state: %w", err)
	}

	err = s.commitAt(clientID, clientState, height, &consensusState)
	if err != nil {
		return grandpa.ClientState{}, grandpa.ConsensusState{}, err
	}

	return clientState, consensusState, nil
}

// UpdateCommitment moves the stored client to a newer BEEFY commitment.
func (s *ClientStore) UpdateCommitment(verifier Verifier, clientID string,
	signedCommitment beefy.SignedCommitment, leaf beefy.MmrLeaf, leafProof beefy.MmrLeafProof) (
	clientState grandpa.ClientState, err error) {
	defer func() { s.metrics.observeUpdate("commitment", err) }()

	unlock := s.lockClient(clientID)
	defer unlock()

	stored, err := s.ClientState(clientID)
	if err != nil {
		return clientState, err
	}

	clientState, err = verifier.UpdateCommitment(stored, signedCommitment, leaf, leafProof)
	if err != nil {
		return grandpa.ClientState{}, err
	}

	err = s.commit(clientID, clientState, nil)
	if err != nil {
		return grandpa.ClientState{}, err
	}
	return clientState, nil
}

// Freeze freezes the stored client at the height.
func (s *ClientStore) Freeze(clientID string, height grandpa.Height) (clientState grandpa.ClientState, err error) {
	unlock := s.lockClient(clientID)
	defer unlock()

	stored, err := s.ClientState(clientID)
	if err != nil {
		return clientState, err
	}

	clientState, err = grandpa.Freeze(stored, height)
	if err != nil {
		return grandpa.ClientState{}, err
	}

	err = s.commit(clientID, clientState, nil)
	if err != nil {
		return grandpa.ClientState{}, err
	}

	s.logger.Infof("client %s frozen at height %s", clientID, height)
	return clientState, nil
}

// PruneConsensusStates deletes the consensus states of the client below
// the height. The latest consensus state is always kept.
func (s *ClientStore) PruneConsensusStates(clientID string, below grandpa.Height) (pruned int, err error) {
	unlock := s.lockClient(clientID)
	defer unlock()

	s.heightsMutex.Lock()
	defer s.heightsMutex.Unlock()

	index, ok := s.heights[clientID]
	if !ok {
		return 0, nil
	}
	latest, _ := index.Max()

	var heights []grandpa.Height
	index.Scan(func(height grandpa.Height) bool {
		if !height.LT(below) || height == latest {
			return false
		}
		heights = append(heights, height)
		return true
	})
	if len(heights) == 0 {
		return 0, nil
	}

	batch := s.consensusStates.NewWriteBatch()
	for _, height := range heights {
		err = batch.Delete(consensusStateKey(clientID, height))
		if err != nil {
			batch.Cancel()
			return 0, fmt.Errorf("deleting consensus state at %s: %w", height, err)
		}
	}
	err = batch.Flush()
	if err != nil {
		return 0, fmt.Errorf("flushing write batch: %w", err)
	}

	for _, height := range heights {
		index.Delete(height)
	}
	s.metrics.consensusStates.Sub(float64(len(heights)))
	s.logger.Debugf("pruned %d consensus states of client %s below %s", len(heights), clientID, below)
	return len(heights), nil
}

// Close closes the database.
func (s *ClientStore) Close() error {
	return s.db.Close()
}

// commit stores the client state, along with the consensus state at the
// latest height of the client state if it is not nil.
func (s *ClientStore) commit(clientID string, clientState grandpa.ClientState,
	consensusState *grandpa.ConsensusState) error {
	return s.commitAt(clientID, clientState, clientState.LatestHeight(), consensusState)
}

// commitAt stores the client state and the consensus state at the height
// in a single write batch. The caller must hold the client lock.
func (s *ClientStore) commitAt(clientID string, clientState grandpa.ClientState,
	height grandpa.Height, consensusState *grandpa.ConsensusState) (err error) {
	batch := s.db.NewWriteBatch()

	err = batch.Set([]byte(clientStatePrefix+clientID), grandpa.MarshalClientState(clientState))
	if err != nil {
		batch.Cancel()
		return fmt.Errorf("writing client state: %w", err)
	}

	if consensusState != nil {
		encoded, err := grandpa.MarshalConsensusState(*consensusState)
		if err != nil {
			batch.Cancel()
			return err
		}
		key := append([]byte(consensusStatePrefix), consensusStateKey(clientID, height)...)
		err = batch.Set(key, encoded)
		if err != nil {
			batch.Cancel()
			return fmt.Errorf("writing consensus state: %w", err)
		}
	}

	err = batch.Flush()
	if err != nil {
		return fmt.Errorf("flushing write batch: %w", err)
	}

	if consensusState != nil {
		s.heightsMutex.Lock()
		if s.indexLocked(clientID, height) {
			s.metrics.consensusStates.Inc()
		}
		s.heightsMutex.Unlock()
	}
	s.metrics.latestHeight.WithLabelValues(clientID).Set(float64(clientState.LatestHeight().RevisionHeight))
	return nil
}
