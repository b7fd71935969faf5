// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of dareblopy.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package container implements the uncompressed-archive format FS mounts:
// a flat sequence of stored entries followed by a central directory at the
// end of the file. It intentionally
// does not support any compression method beyond stored; entries that
// claim otherwise are rejected with errs.UnsupportedCompression.
package container

import (
	"bufio"
	"encoding/binary"
	"io"

	"github.com/podgorskiy/DareBlopy/internal/vfs"
	"github.com/podgorskiy/DareBlopy/pkg/errs"
)

// Methods an entry can declare. MethodStored is the only one this package
// will ever read back.
const (
	MethodStored       uint8 = 0
	MethodUnsupported  uint8 = 1 // any entry method != stored; used only for testing
)

const footerMagic uint32 = 0xDB_A2_C0DE

// Entry describes one archive member.
type Entry struct {
	Name   string
	Offset int64
	Length int64
	Method uint8
}

// Archive is a parsed, read-only uncompressed archive. It implements
// vfs.Mounter.
type Archive struct {
	src     vfs.ByteSource
	shared  *vfs.Lockable
	entries []Entry
	byName  map[string]int
}

// Open parses the central directory of bs and returns an Archive. bs is
// owned by the Archive afterwards.
func Open(bs vfs.ByteSource) (*Archive, error) {
	size, err := bs.Size()
	if err != nil {
		return nil, errs.New(errs.Io, "container.Open", err)
	}
	if size < 12 {
		return nil, errs.New(errs.Corrupt, "container.Open", io.ErrUnexpectedEOF)
	}

	// Footer: u64 directory_offset, u32 magic, at the very end of the file.
	footer := make([]byte, 12)
	if _, err := bs.Seek(size-12, io.SeekStart); err != nil {
		return nil, errs.New(errs.Io, "container.Open", err)
	}
	if _, err := io.ReadFull(bs, footer); err != nil {
		return nil, errs.New(errs.Corrupt, "container.Open", err)
	}
	dirOffset := int64(binary.LittleEndian.Uint64(footer[0:8]))
	magic := binary.LittleEndian.Uint32(footer[8:12])
	if magic != footerMagic {
		return nil, errs.New(errs.Corrupt, "container.Open", nil)
	}
	if dirOffset < 0 || dirOffset > size-12 {
		return nil, errs.New(errs.Corrupt, "container.Open", nil)
	}

	if _, err := bs.Seek(dirOffset, io.SeekStart); err != nil {
		return nil, errs.New(errs.Io, "container.Open", err)
	}
	r := bufio.NewReader(io.LimitReader(bs, size-12-dirOffset))

	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, errs.New(errs.Corrupt, "container.Open", err)
	}

	entries := make([]Entry, 0, count)
	byName := make(map[string]int, count)
	for i := uint32(0); i < count; i++ {
		var nameLen uint16
		if err := binary.Read(r, binary.LittleEndian, &nameLen); err != nil {
			return nil, errs.New(errs.Corrupt, "container.Open", err)
		}
		nameBuf := make([]byte, nameLen)
		if _, err := io.ReadFull(r, nameBuf); err != nil {
			return nil, errs.New(errs.Corrupt, "container.Open", err)
		}
		var rest struct {
			Offset uint64
			Length uint64
			Method uint8
		}
		if err := binary.Read(r, binary.LittleEndian, &rest.Offset); err != nil {
			return nil, errs.New(errs.Corrupt, "container.Open", err)
		}
		if err := binary.Read(r, binary.LittleEndian, &rest.Length); err != nil {
			return nil, errs.New(errs.Corrupt, "container.Open", err)
		}
		if err := binary.Read(r, binary.LittleEndian, &rest.Method); err != nil {
			return nil, errs.New(errs.Corrupt, "container.Open", err)
		}
		if rest.Method != MethodStored {
			return nil, errs.WithPath(errs.UnsupportedCompression, "container.Open", string(nameBuf), nil)
		}
		name := string(nameBuf)
		byName[name] = len(entries)
		entries = append(entries, Entry{
			Name:   name,
			Offset: int64(rest.Offset),
			Length: int64(rest.Length),
			Method: rest.Method,
		})
	}

	return &Archive{
		src:     bs,
		shared:  vfs.NewLockable(bs),
		entries: entries,
		byName:  byName,
	}, nil
}

// Entries implements vfs.Mounter.
func (a *Archive) Entries() []string {
	names := make([]string, len(a.entries))
	for i, e := range a.entries {
		names[i] = e.Name
	}
	return names
}

// Open implements vfs.Mounter: returns a ByteSource over one archive
// member. When lockable is true (the default for callers that might open
// several entries concurrently), the returned source is served through
// the archive's shared Lockable so interleaved reads from other entries
// can't corrupt each other's position. When lockable is false, the caller
// asserts exclusive use of this entry and gets an unguarded source that
// seeks the raw underlying source directly, skipping the lock.
func (a *Archive) Open(name string, lockable bool) (vfs.ByteSource, error) {
	idx, ok := a.byName[name]
	if !ok {
		return nil, errs.WithPath(errs.NotFound, "container.Archive.Open", name, nil)
	}
	e := a.entries[idx]
	if !lockable {
		return newUnguardedEntrySource(a.src, e.Offset, e.Length), nil
	}
	return newEntrySource(a.shared, e.Offset, e.Length), nil
}

// Close releases the archive's underlying byte source.
func (a *Archive) Close() error {
	return a.src.Close()
}
