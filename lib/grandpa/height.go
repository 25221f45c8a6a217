// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package grandpa

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrHeightFormat is returned when parsing a height not written as revision-height.
var ErrHeightFormat = errors.New("height must be formatted as revision-height")

// Height is a block height of a given chain revision. Heights are
// ordered by revision number first.
type Height struct {
	RevisionNumber uint64 `json:"revisionNumber"`
	RevisionHeight uint64 `json:"revisionHeight"`
}

// NewHeight returns the height of the given revision.
func NewHeight(revisionNumber, revisionHeight uint64) Height {
	return Height{
		RevisionNumber: revisionNumber,
		RevisionHeight: revisionHeight,
	}
}

// ParseHeight parses a height formatted as revision-height.
func ParseHeight(s string) (h Height, err error) {
	revision, height, ok := strings.Cut(s, "-")
	if !ok {
		return h, fmt.Errorf("%w: %q", ErrHeightFormat, s)
	}

	h.RevisionNumber, err = strconv.ParseUint(revision, 10, 64)
	if err != nil {
		return h, fmt.Errorf("parsing revision number: %w", err)
	}

	h.RevisionHeight, err = strconv.ParseUint(height, 10, 64)
	if err != nil {
		return h, fmt.Errorf("parsing revision height: %w", err)
	}

	return h, nil
}

// Compare returns -1, 0 or 1 when h is lower than, equal to or greater than other.
func (h Height) Compare(other Height) int {
	switch {
	case h.RevisionNumber < other.RevisionNumber:
		return -1
	case h.RevisionNumber > other.RevisionNumber:
		return 1
	case h.RevisionHeight < other.RevisionHeight:
		return -1
	case h.RevisionHeight > other.RevisionHeight:
		return 1
	default:
		return 0
	}
}

// LT returns true if h is lower than other.
func (h Height) LT(other Height) bool { return h.Compare(other) < 0 }

// LTE returns true if h is lower than or equal to other.
func (h Height) LTE(other Height) bool { return h.Compare(other) <= 0 }

// GT returns true if h is greater than other.
func (h Height) GT(other Height) bool { return h.Compare(other) > 0 }

// GTE returns true if h is greater than or equal to other.
func (h Height) GTE(other Height) bool { return h.Compare(other) >= 0 }

// IsZero returns true for the zero height.
func (h Height) IsZero() bool {
	return h.RevisionNumber == 0 && h.RevisionHeight == 0
}

func (h Height) String() string {
	return fmt.Sprintf("%d-%d", h.RevisionNumber, h.RevisionHeight)
}

// MaxHeight returns the greatest of the two heights.
func MaxHeight(a, b Height) Height {
	if a.GTE(b) {
		return a
	}
	return b
}
