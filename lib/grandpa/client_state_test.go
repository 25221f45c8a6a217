// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package grandpa

import (
	"math"
	"testing"

	"github.com/ChainSafe/ics10-grandpa/lib/beefy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ClientState_Validate(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		modify     func(cs *ClientState)
		errWrapped error
		errMessage string
	}{
		"valid": {
			modify: func(*ClientState) {},
		},
		"chain height above beefy height": {
			modify: func(cs *ClientState) {
				cs.LatestChainHeight = NewHeight(0, 120)
			},
		},
		"beefy height above chain height": {
			modify: func(cs *ClientState) {
				cs.LatestBeefyHeight = NewHeight(0, 100)
				cs.LatestChainHeight = NewHeight(0, 50)
			},
			errWrapped: ErrInvalidClientState,
			errMessage: "invalid client state: latest chain height 0-50 below latest beefy height 0-100",
		},
		"beefy revision above chain revision": {
			modify: func(cs *ClientState) {
				cs.LatestBeefyHeight = NewHeight(1, 1)
			},
			errWrapped: ErrInvalidClientState,
			errMessage: "invalid client state: latest chain height 0-89 below latest beefy height 1-1",
		},
		"parachain heights are not compared": {
			modify: func(cs *ClientState) {
				cs.ChainType = Parachain
				cs.ParachainID = 2000
				cs.LatestChainHeight = NewHeight(0, 12)
			},
		},
		"beefy height overflows block numbers": {
			modify: func(cs *ClientState) {
				cs.LatestBeefyHeight = NewHeight(0, math.MaxUint32+1)
				cs.LatestChainHeight = cs.LatestBeefyHeight
			},
			errWrapped: ErrInvalidClientState,
			errMessage: "invalid client state: latest beefy height 0-4294967296 overflows 32 bits block numbers",
		},
		"unknown chain type": {
			modify: func(cs *ClientState) {
				cs.ChainType = 5
			},
			errWrapped: ErrUnknownChainType,
			errMessage: "unknown chain type: 5",
		},
		"parachain without id": {
			modify: func(cs *ClientState) {
				cs.ChainType = Parachain
			},
			errWrapped: ErrInvalidClientState,
			errMessage: "invalid client state: parachain client without parachain id",
		},
		"next authority set behind": {
			modify: func(cs *ClientState) {
				cs.AuthoritySet = beefy.AuthoritySet{ID: 4}
			},
			errWrapped: ErrInvalidAuthoritySet,
			errMessage: "invalid authority set: next authority set id 1 below current id 4",
		},
		"zero frozen height": {
			modify: func(cs *ClientState) {
				cs.FrozenHeight = &Height{}
			},
			errWrapped: ErrMissingFrozenHeight,
			errMessage: "missing frozen height: zero frozen height",
		},
	}

	for name, testCase := range testCases {
		testCase := testCase
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			clientState := rococoClientState()
			testCase.modify(&clientState)

			err := clientState.Validate()

			assert.ErrorIs(t, err, testCase.errWrapped)
			if testCase.errWrapped != nil {
				assert.EqualError(t, err, testCase.errMessage)
			}
		})
	}
}

func Test_ClientState_LatestCommitment(t *testing.T) {
	t.Parallel()

	clientState := rococoClientState()
	commitment, err := clientState.LatestCommitment()
	require.NoError(t, err)
	assert.Equal(t, beefy.Commitment{
		Payload:        clientState.MmrRootHash,
		BlockNumber:    89,
		ValidatorSetID: 0,
	}, commitment)

	clientState.LatestBeefyHeight = NewHeight(0, math.MaxUint32+1)
	_, err = clientState.LatestCommitment()
	assert.ErrorIs(t, err, ErrInvalidHeight)
	assert.EqualError(t, err, "invalid height: latest beefy height 4294967296 overflows 32 bits")
}
