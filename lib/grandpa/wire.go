// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package grandpa

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// fieldDecoder walks the fields of a protobuf message.
type fieldDecoder struct {
	b []byte
}

// next returns the number and type of the next field, with ok false
// once the message is consumed.
func (d *fieldDecoder) next() (num protowire.Number, typ protowire.Type, ok bool, err error) {
	if len(d.b) == 0 {
		return 0, 0, false, nil
	}

	num, typ, n := protowire.ConsumeTag(d.b)
	if n < 0 {
		return 0, 0, false, protowire.ParseError(n)
	}
	d.b = d.b[n:]
	return num, typ, true, nil
}

func (d *fieldDecoder) varint(num protowire.Number, typ protowire.Type) (uint64, error) {
	if typ != protowire.VarintType {
		return 0, fmt.Errorf("field %d: wire type %d is not varint", num, typ)
	}

	v, n := protowire.ConsumeVarint(d.b)
	if n < 0 {
		return 0, fmt.Errorf("field %d: %w", num, protowire.ParseError(n))
	}
	d.b = d.b[n:]
	return v, nil
}

// bytes returns a copy of the length delimited field value.
func (d *fieldDecoder) bytes(num protowire.Number, typ protowire.Type) ([]byte, error) {
	if typ != protowire.BytesType {
		return nil, fmt.Errorf("field %d: wire type %d is not length delimited", num, typ)
	}

	v, n := protowire.ConsumeBytes(d.b)
	if n < 0 {
		return nil, fmt.Errorf("field %d: %w", num, protowire.ParseError(n))
	}
	d.b = d.b[n:]

	value := make([]byte, len(v))
	copy(value, v)
	return value, nil
}

// skip consumes the value of an unknown field.
func (d *fieldDecoder) skip(num protowire.Number, typ protowire.Type) error {
	n := protowire.ConsumeFieldValue(num, typ, d.b)
	if n < 0 {
		return fmt.Errorf("field %d: %w", num, protowire.ParseError(n))
	}
	d.b = d.b[n:]
	return nil
}

func appendVarintField(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendBytesField(b []byte, num protowire.Number, v []byte) []byte {
	if len(v) == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

// appendMessageField appends an embedded message, present even when empty.
func appendMessageField(b []byte, num protowire.Number, message []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, message)
}
