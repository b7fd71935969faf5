// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of dareblopy.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package container

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/podgorskiy/DareBlopy/internal/vfs"
	"github.com/podgorskiy/DareBlopy/pkg/errs"
)

type fixtureEntry struct {
	name   string
	data   []byte
	method uint8
}

// buildArchive assembles the on-disk bytes of an uncompressed archive for
// tests: the concatenated entry payloads followed by the central directory
// and footer described in archive.go.
func buildArchive(entries []fixtureEntry) []byte {
	var body bytes.Buffer
	type loc struct {
		offset, length int64
	}
	locs := make([]loc, len(entries))
	for i, e := range entries {
		locs[i] = loc{offset: int64(body.Len()), length: int64(len(e.data))}
		body.Write(e.data)
	}

	dirOffset := int64(body.Len())
	binary.Write(&body, binary.LittleEndian, uint32(len(entries)))
	for i, e := range entries {
		binary.Write(&body, binary.LittleEndian, uint16(len(e.name)))
		body.WriteString(e.name)
		binary.Write(&body, binary.LittleEndian, uint64(locs[i].offset))
		binary.Write(&body, binary.LittleEndian, uint64(locs[i].length))
		binary.Write(&body, binary.LittleEndian, e.method)
	}

	binary.Write(&body, binary.LittleEndian, uint64(dirOffset))
	binary.Write(&body, binary.LittleEndian, footerMagic)
	return body.Bytes()
}

func TestArchiveOpenAndRead(t *testing.T) {
	raw := buildArchive([]fixtureEntry{
		{name: "a.rec", data: []byte("hello"), method: MethodStored},
		{name: "b.rec", data: []byte("world!!"), method: MethodStored},
	})

	ar, err := Open(vfs.NewMemSource(raw))
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"a.rec", "b.rec"}, ar.Entries())

	bs, err := ar.Open("a.rec", false)
	require.NoError(t, err)
	got, err := io.ReadAll(bs)
	require.NoError(t, err)
	require.Equal(t, "hello", string(got))

	bs2, err := ar.Open("b.rec", true)
	require.NoError(t, err)
	got2, err := io.ReadAll(bs2)
	require.NoError(t, err)
	require.Equal(t, "world!!", string(got2))
}

func TestArchiveRejectsCompressedEntries(t *testing.T) {
	raw := buildArchive([]fixtureEntry{
		{name: "a.rec", data: []byte("hello"), method: MethodUnsupported},
	})
	_, err := Open(vfs.NewMemSource(raw))
	require.Error(t, err)
	var e *errs.Error
	require.True(t, errors.As(err, &e))
	require.Equal(t, errs.UnsupportedCompression, e.Kind)
}

func TestArchiveCorruptFooter(t *testing.T) {
	_, err := Open(vfs.NewMemSource([]byte("short")))
	require.Error(t, err)

	raw := buildArchive(nil)
	raw[len(raw)-1] ^= 0xFF // flip a magic byte
	_, err = Open(vfs.NewMemSource(raw))
	require.Error(t, err)
	var e *errs.Error
	require.True(t, errors.As(err, &e))
	require.Equal(t, errs.Corrupt, e.Kind)
}

func TestArchiveEntrySourceIndependentCursors(t *testing.T) {
	raw := buildArchive([]fixtureEntry{
		{name: "a.rec", data: []byte("0123456789"), method: MethodStored},
		{name: "b.rec", data: []byte("abcdefghij"), method: MethodStored},
	})
	ar, err := Open(vfs.NewMemSource(raw))
	require.NoError(t, err)

	a, err := ar.Open("a.rec", true)
	require.NoError(t, err)
	b, err := ar.Open("b.rec", true)
	require.NoError(t, err)

	bufA := make([]byte, 3)
	bufB := make([]byte, 3)
	_, err = a.Read(bufA)
	require.NoError(t, err)
	_, err = b.Read(bufB)
	require.NoError(t, err)
	require.Equal(t, "012", string(bufA))
	require.Equal(t, "abc", string(bufB))

	_, err = a.Read(bufA)
	require.NoError(t, err)
	require.Equal(t, "345", string(bufA))
}
