// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package beefy

import "errors"

var (
	// ErrInvalidAuthoritySet is returned for an authority set that cannot be built or rotated to.
	ErrInvalidAuthoritySet = errors.New("invalid authority set")
	// ErrPayloadLength is returned when a commitment payload is not an MMR root.
	ErrPayloadLength = errors.New("commitment payload must be 32 bytes")
	// ErrTooManySignatures is returned when a signed commitment claims more
	// signatures than its encoding can hold.
	ErrTooManySignatures = errors.New("too many signatures")
	// ErrOptionTagUnknown is returned for an option tag other than 0 or 1.
	ErrOptionTagUnknown = errors.New("option tag unknown")
	// ErrTooManyProofItems is returned when an MMR leaf proof claims more
	// items than its encoding can hold.
	ErrTooManyProofItems = errors.New("too many proof items")
)
