// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of dareblopy.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package example decodes the wire format of one Record's payload: a
// self-describing, tag-length-value map from feature name to a kind-tagged
// list of int64, float32 or bytes values.
//
// Wire layout, little-endian throughout:
//
//	u32 field_count
//	field_count times:
//	  u16 name_len; name_len bytes name
//	  u8  kind        (0=int64, 1=float32, 2=bytes, anything else=unknown)
//	  u32 blob_len
//	  blob_len bytes blob, interpreted per kind:
//	    int64:   blob_len/8 little-endian int64 values
//	    float32: blob_len/4 little-endian IEEE-754 float32 values
//	    bytes:   repeated {u32 len; len bytes} until blob_len is consumed
//	    unknown: ignored, skipped whole
//
// Decoders must accept fields in any order, concatenate repeated fields
// with the same name, and tolerate unknown kinds by skipping their blob.
package example

import (
	"encoding/binary"
	"math"

	"github.com/podgorskiy/DareBlopy/pkg/errs"
)

// Kind tags a feature's wire value list.
type Kind uint8

const (
	KindInt64 Kind = iota
	KindFloat32
	KindBytes
)

// Field is one decoded, possibly-concatenated feature value.
type Field struct {
	Kind    Kind
	Int64   []int64
	Float32 []float32
	Bytes   [][]byte
}

// Example is the decoded wire map: feature name to its (possibly
// concatenated across repeated occurrences) value list.
type Example map[string]*Field

// Decode parses one Record payload. Truncated payloads are reported as
// errs.Corrupt.
func Decode(payload []byte) (Example, error) {
	r := &cursor{buf: payload}

	count, ok := r.u32()
	if !ok {
		return nil, errs.New(errs.Corrupt, "example.Decode", nil)
	}

	ex := make(Example, count)
	for i := uint32(0); i < count; i++ {
		nameLen, ok := r.u16()
		if !ok {
			return nil, errs.New(errs.Corrupt, "example.Decode", nil)
		}
		name, ok := r.bytes(int(nameLen))
		if !ok {
			return nil, errs.New(errs.Corrupt, "example.Decode", nil)
		}
		kindByte, ok := r.u8()
		if !ok {
			return nil, errs.New(errs.Corrupt, "example.Decode", nil)
		}
		blobLen, ok := r.u32()
		if !ok {
			return nil, errs.New(errs.Corrupt, "example.Decode", nil)
		}
		blob, ok := r.bytes(int(blobLen))
		if !ok {
			return nil, errs.New(errs.Corrupt, "example.Decode", nil)
		}

		switch Kind(kindByte) {
		case KindInt64:
			vals, err := decodeInt64s(blob)
			if err != nil {
				return nil, err
			}
			f := ex.fieldFor(string(name), KindInt64)
			f.Int64 = append(f.Int64, vals...)
		case KindFloat32:
			vals, err := decodeFloat32s(blob)
			if err != nil {
				return nil, err
			}
			f := ex.fieldFor(string(name), KindFloat32)
			f.Float32 = append(f.Float32, vals...)
		case KindBytes:
			vals, err := decodeByteStrings(blob)
			if err != nil {
				return nil, err
			}
			f := ex.fieldFor(string(name), KindBytes)
			f.Bytes = append(f.Bytes, vals...)
		default:
			// Unknown kind: the blob was already consumed by cursor.bytes
			// above, so this is exactly "skip".
		}
	}
	return ex, nil
}

func (ex Example) fieldFor(name string, kind Kind) *Field {
	f, ok := ex[name]
	if !ok {
		f = &Field{Kind: kind}
		ex[name] = f
	}
	return f
}

func decodeInt64s(blob []byte) ([]int64, error) {
	if len(blob)%8 != 0 {
		return nil, errs.New(errs.Corrupt, "example.decodeInt64s", nil)
	}
	out := make([]int64, len(blob)/8)
	for i := range out {
		out[i] = int64(binary.LittleEndian.Uint64(blob[i*8:]))
	}
	return out, nil
}

func decodeFloat32s(blob []byte) ([]float32, error) {
	if len(blob)%4 != 0 {
		return nil, errs.New(errs.Corrupt, "example.decodeFloat32s", nil)
	}
	out := make([]float32, len(blob)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4:]))
	}
	return out, nil
}

func decodeByteStrings(blob []byte) ([][]byte, error) {
	var out [][]byte
	r := &cursor{buf: blob}
	for r.remaining() > 0 {
		n, ok := r.u32()
		if !ok {
			return nil, errs.New(errs.Corrupt, "example.decodeByteStrings", nil)
		}
		b, ok := r.bytes(int(n))
		if !ok {
			return nil, errs.New(errs.Corrupt, "example.decodeByteStrings", nil)
		}
		out = append(out, b)
	}
	return out, nil
}

// cursor is a minimal bounds-checked reader over a byte slice; every
// accessor returns ok=false instead of panicking on a truncated payload.
type cursor struct {
	buf []byte
	pos int
}

func (c *cursor) remaining() int { return len(c.buf) - c.pos }

func (c *cursor) u8() (uint8, bool) {
	if c.remaining() < 1 {
		return 0, false
	}
	v := c.buf[c.pos]
	c.pos++
	return v, true
}

func (c *cursor) u16() (uint16, bool) {
	if c.remaining() < 2 {
		return 0, false
	}
	v := binary.LittleEndian.Uint16(c.buf[c.pos:])
	c.pos += 2
	return v, true
}

func (c *cursor) u32() (uint32, bool) {
	if c.remaining() < 4 {
		return 0, false
	}
	v := binary.LittleEndian.Uint32(c.buf[c.pos:])
	c.pos += 4
	return v, true
}

func (c *cursor) bytes(n int) ([]byte, bool) {
	if n < 0 || c.remaining() < n {
		return nil, false
	}
	v := c.buf[c.pos : c.pos+n]
	c.pos += n
	return v, true
}
