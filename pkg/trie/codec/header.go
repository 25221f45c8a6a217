// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package codec

import (
	"errors"
	"fmt"
	"io"
)

var (
	ErrPartialKeyTooBig = errors.New("partial key length cannot be larger than 2^16")
	ErrVariantUnknown   = errors.New("node variant is unknown")
)

// encodeHeader writes the header byte of the variant followed by the
// remaining partial key length bytes, if any.
func encodeHeader(nodeVariant variant, partialKeyLength int, writer io.Writer) (err error) {
	if partialKeyLength > int(maxPartialKeyLength) {
		return fmt.Errorf("%w: %d", ErrPartialKeyTooBig, partialKeyLength)
	}

	partialKeyLengthMask := nodeVariant.partialKeyLengthHeaderMask()
	if partialKeyLength < int(partialKeyLengthMask) {
		header := nodeVariant.bits | byte(partialKeyLength)
		_, err = writer.Write([]byte{header})
		return err
	}

	header := nodeVariant.bits | partialKeyLengthMask
	_, err = writer.Write([]byte{header})
	if err != nil {
		return err
	}

	partialKeyLength -= int(partialKeyLengthMask)
	for {
		if partialKeyLength < 255 {
			_, err = writer.Write([]byte{byte(partialKeyLength)})
			return err
		}
		_, err = writer.Write([]byte{255})
		if err != nil {
			return err
		}
		partialKeyLength -= 255
	}
}

func decodeHeader(reader io.Reader) (nodeVariant variant,
	partialKeyLength uint16, err error) {
	buffer := make([]byte, 1)
	_, err = io.ReadFull(reader, buffer)
	if err != nil {
		return nodeVariant, 0, fmt.Errorf("reading header byte: %w", err)
	}

	nodeVariant, partialKeyLengthHeader, err := decodeHeaderByte(buffer[0])
	if err != nil {
		return invalidVariant, 0, fmt.Errorf("decoding header byte: %w", err)
	}

	partialKeyLengthHeaderMask := nodeVariant.partialKeyLengthHeaderMask()
	if partialKeyLengthHeaderMask == emptyVariant.bits {
		// empty node or compact encoding which have no partial key.
		return nodeVariant, 0, nil
	}

	partialKeyLength = uint16(partialKeyLengthHeader)
	if partialKeyLengthHeader < partialKeyLengthHeaderMask {
		// partial key length is contained in the first byte.
		return nodeVariant, partialKeyLength, nil
	}

	// the partial key length header byte is equal to its maximum
	// possible value, so the next bytes are accumulated until one
	// of them is below 255.
	var previousKeyLength uint16
	for {
		_, err = io.ReadFull(reader, buffer)
		if err != nil {
			return invalidVariant, 0, fmt.Errorf("reading key length: %w", err)
		}

		previousKeyLength = partialKeyLength
		partialKeyLength += uint16(buffer[0])

		if partialKeyLength < previousKeyLength {
			overflowed := maxPartialKeyLength - previousKeyLength + partialKeyLength
			return invalidVariant, 0, fmt.Errorf("%w: overflowed by %d", ErrPartialKeyTooBig, overflowed)
		}

		if buffer[0] < 255 {
			return nodeVariant, partialKeyLength, nil
		}
	}
}

// variantsOrderedByBitMask is an array of all variants sorted
// in ascending order by the number of LHS set bits each variant mask has.
// WARNING: DO NOT MUTATE.
var variantsOrderedByBitMask = [...]variant{
	leafVariant,                  // mask 1100_0000
	branchVariant,                // mask 1100_0000
	branchWithValueVariant,       // mask 1100_0000
	leafWithHashedValueVariant,   // mask 1110_0000
	branchWithHashedValueVariant, // mask 1111_0000
	emptyVariant,                 // mask 1111_1111
	compactEncodingVariant,       // mask 1111_1111
}

func decodeHeaderByte(header byte) (nodeVariant variant,
	partialKeyLengthHeader byte, err error) {
	for i := len(variantsOrderedByBitMask) - 1; i >= 0; i-- {
		nodeVariant = variantsOrderedByBitMask[i]
		variantBits := header & nodeVariant.mask
		if variantBits != nodeVariant.bits {
			continue
		}

		partialKeyLengthHeaderMask := nodeVariant.partialKeyLengthHeaderMask()
		partialKeyLengthHeader = header & partialKeyLengthHeaderMask
		return nodeVariant, partialKeyLengthHeader, nil
	}

	return invalidVariant, 0, fmt.Errorf("%w: for header byte %08b", ErrVariantUnknown, header)
}
