// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package common_test

import (
	"testing"

	"github.com/ChainSafe/ics10-grandpa/lib/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlake2b128_EmptyHash(t *testing.T) {
	t.Parallel()

	h, err := common.Blake2b128([]byte{})
	require.NoError(t, err)

	expected := common.MustHexToBytes("0xcae66941d9efbd404e4d88758ea67670")
	require.Equal(t, expected, h)
}

func TestBlake2b128(t *testing.T) {
	t.Parallel()

	h, err := common.Blake2b128([]byte("static"))
	require.NoError(t, err)

	expected := common.MustHexToBytes("0x440973e4e50902f1d0ec97de357eb2fd")
	require.Equal(t, expected, h)
}

func TestBlake2bHash_EmptyHash(t *testing.T) {
	t.Parallel()

	h, err := common.Blake2bHash([]byte{})
	require.NoError(t, err)

	expected := common.MustHexToHash("0x0e5751c026e543b2e8ab2eb06099daa1d1e5df47778f7787faab45cdf12fe3a8")
	require.Equal(t, expected, h)
}

func TestKeccak256_EmptyHash(t *testing.T) {
	t.Parallel()

	h := common.Keccak256([]byte{})

	expected := common.MustHexToHash("0xc5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470")
	require.Equal(t, expected, h)
}

func TestTwox128Hash(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		in       string
		expected string
	}{
		"System": {
			in:       "System",
			expected: "0x26aa394eea5630e07c48ae0c9558cef7",
		},
		"Account": {
			in:       "Account",
			expected: "0xb99d880ec681799c0cf30e8886371da9",
		},
	}

	for name, testCase := range testCases {
		testCase := testCase
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			h, err := common.Twox128Hash([]byte(testCase.in))
			require.NoError(t, err)
			assert.Equal(t, testCase.expected, common.BytesToHex(h))
		})
	}
}

func TestTwox64(t *testing.T) {
	t.Parallel()

	h, err := common.Twox64([]byte("Ibc"))
	require.NoError(t, err)
	assert.Equal(t, "0x65ccf20369c0ddda", common.BytesToHex(h))
}

func TestSha256(t *testing.T) {
	t.Parallel()

	h := common.Sha256([]byte("abc"))
	expected := common.MustHexToHash("0xba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad")
	assert.Equal(t, expected, h)
}

func Test_Hasher(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		name       string
		hasher     common.Hasher
		errWrapped error
		errMessage string
	}{
		"blake2b-256": {
			name:   "blake2b-256",
			hasher: common.Blake2b256Hasher,
		},
		"keccak alias": {
			name:   "keccak",
			hasher: common.Keccak256Hasher,
		},
		"unknown": {
			name:       "sha1",
			errWrapped: common.ErrUnknownHasher,
			errMessage: "unknown hasher: sha1",
		},
	}

	for name, testCase := range testCases {
		testCase := testCase
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			hasher, err := common.HasherFromName(testCase.name)

			assert.ErrorIs(t, err, testCase.errWrapped)
			if testCase.errWrapped != nil {
				assert.EqualError(t, err, testCase.errMessage)
				return
			}
			assert.Equal(t, testCase.hasher, hasher)

			data := []byte("grandpa")
			streaming := hasher.New()
			_, err = streaming.Write(data)
			require.NoError(t, err)
			assert.Equal(t, hasher.Hash(data).ToBytes(), streaming.Sum(nil))
		})
	}
}
