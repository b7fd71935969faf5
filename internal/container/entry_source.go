// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of dareblopy.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package container

import (
	"io"

	"github.com/podgorskiy/DareBlopy/internal/vfs"
)

// entrySource is a ByteSource over [offset, offset+length) of a shared
// archive source. Reads are served through the archive's Lockable via
// ReadAt, so many entrySources can be open concurrently over one physical
// file without corrupting each other's cursor.
type entrySource struct {
	shared *vfs.Lockable
	base   int64
	length int64
	pos    int64
}

func newEntrySource(shared *vfs.Lockable, base, length int64) *entrySource {
	return &entrySource{shared: shared, base: base, length: length}
}

func (e *entrySource) Read(p []byte) (int, error) {
	if e.pos >= e.length {
		return 0, io.EOF
	}
	max := e.length - e.pos
	if int64(len(p)) > max {
		p = p[:max]
	}
	n, err := e.shared.ReadAt(p, e.base+e.pos)
	e.pos += int64(n)
	return n, err
}

func (e *entrySource) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		e.pos = offset
	case io.SeekCurrent:
		e.pos += offset
	case io.SeekEnd:
		e.pos = e.length + offset
	}
	return e.pos, nil
}

func (e *entrySource) Tell() (int64, error) { return e.pos, nil }
func (e *entrySource) Size() (int64, error) { return e.length, nil }
func (e *entrySource) Close() error         { return nil }

// unguardedEntrySource is a ByteSource over [offset, offset+length) of the
// archive's raw underlying source, read directly with no locking. Used
// when the caller asserts exclusive use of this entry (no other entry or
// the archive's own source is touched concurrently), so the ReadAt/mutex
// overhead entrySource pays to stay safe under concurrent opens is unneeded.
type unguardedEntrySource struct {
	raw    vfs.ByteSource
	base   int64
	length int64
	pos    int64
}

func newUnguardedEntrySource(raw vfs.ByteSource, base, length int64) *unguardedEntrySource {
	return &unguardedEntrySource{raw: raw, base: base, length: length}
}

func (e *unguardedEntrySource) Read(p []byte) (int, error) {
	if e.pos >= e.length {
		return 0, io.EOF
	}
	max := e.length - e.pos
	if int64(len(p)) > max {
		p = p[:max]
	}
	if _, err := e.raw.Seek(e.base+e.pos, io.SeekStart); err != nil {
		return 0, err
	}
	n, err := e.raw.Read(p)
	e.pos += int64(n)
	return n, err
}

func (e *unguardedEntrySource) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		e.pos = offset
	case io.SeekCurrent:
		e.pos += offset
	case io.SeekEnd:
		e.pos = e.length + offset
	}
	return e.pos, nil
}

func (e *unguardedEntrySource) Tell() (int64, error) { return e.pos, nil }
func (e *unguardedEntrySource) Size() (int64, error) { return e.length, nil }
func (e *unguardedEntrySource) Close() error         { return nil }
