// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of dareblopy.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package vfs

import "io"

// MemSource is an in-memory ByteSource over a fixed byte slice. It is used
// by tests across the pipeline packages, and doubles as a real backend for
// callers who already have a dataset shard fully buffered (e.g. received
// over the wire) and want to feed it straight into RecordReader.
type MemSource struct {
	data []byte
	pos  int64
}

// NewMemSource wraps data; data is not copied and must not be mutated while
// the MemSource is in use.
func NewMemSource(data []byte) *MemSource {
	return &MemSource{data: data}
}

func (m *MemSource) Read(p []byte) (int, error) {
	if m.pos >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(p, m.data[m.pos:])
	m.pos += int64(n)
	return n, nil
}

func (m *MemSource) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		m.pos = offset
	case io.SeekCurrent:
		m.pos += offset
	case io.SeekEnd:
		m.pos = int64(len(m.data)) + offset
	}
	return m.pos, nil
}

func (m *MemSource) Tell() (int64, error) { return m.pos, nil }
func (m *MemSource) Size() (int64, error) { return int64(len(m.data)), nil }
func (m *MemSource) Close() error         { return nil }
