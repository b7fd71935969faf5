// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of dareblopy.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package exampletest encodes Example payloads for tests. Encoding is not
// part of the pipeline's public surface (the wire format is an input this
// system only ever consumes), but every layer above it needs fixtures.
package exampletest

import (
	"bytes"
	"encoding/binary"
	"math"
)

// Builder accumulates fields and renders the TLV payload described in
// internal/example's doc comment.
type Builder struct {
	buf   bytes.Buffer
	count uint32
}

func New() *Builder { return &Builder{} }

func (b *Builder) field(name string, kind uint8, blob []byte) *Builder {
	var f bytes.Buffer
	binary.Write(&f, binary.LittleEndian, uint16(len(name)))
	f.WriteString(name)
	f.WriteByte(kind)
	binary.Write(&f, binary.LittleEndian, uint32(len(blob)))
	f.Write(blob)
	b.buf.Write(f.Bytes())
	b.count++
	return b
}

func (b *Builder) Int64(name string, vals ...int64) *Builder {
	var blob bytes.Buffer
	for _, v := range vals {
		binary.Write(&blob, binary.LittleEndian, uint64(v))
	}
	return b.field(name, 0, blob.Bytes())
}

func (b *Builder) Float32(name string, vals ...float32) *Builder {
	var blob bytes.Buffer
	for _, v := range vals {
		binary.Write(&blob, binary.LittleEndian, math.Float32bits(v))
	}
	return b.field(name, 1, blob.Bytes())
}

func (b *Builder) Bytes(name string, vals ...[]byte) *Builder {
	var blob bytes.Buffer
	for _, v := range vals {
		binary.Write(&blob, binary.LittleEndian, uint32(len(v)))
		blob.Write(v)
	}
	return b.field(name, 2, blob.Bytes())
}

// Unknown appends a field with a kind the decoder doesn't recognise, to
// exercise the "skip unknown fields" contract.
func (b *Builder) Unknown(name string, blob []byte) *Builder {
	return b.field(name, 0xFF, blob)
}

// Build renders the final payload bytes.
func (b *Builder) Build() []byte {
	var out bytes.Buffer
	binary.Write(&out, binary.LittleEndian, b.count)
	out.Write(b.buf.Bytes())
	return out.Bytes()
}
