// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of dareblopy.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package manifest_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/podgorskiy/DareBlopy/internal/manifest"
	"github.com/podgorskiy/DareBlopy/internal/recordiotest"
	"github.com/podgorskiy/DareBlopy/internal/vfs"
)

func openManifest(t *testing.T) *manifest.Manifest {
	t.Helper()
	path := filepath.Join(t.TempDir(), "manifest.db")
	m, err := manifest.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })
	return m
}

func TestGetMissingReturnsNotFound(t *testing.T) {
	m := openManifest(t)
	_, ok, err := m.Get("no/such/path.rec")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestPutThenGetRoundTrips(t *testing.T) {
	m := openManifest(t)
	want := manifest.Stat{
		Path:       "data/part-0.rec",
		Size:       1024,
		DataSize:   900,
		EntryCount: 10,
		MTime:      1024,
		CheckedAt:  manifest.Now(),
	}
	require.NoError(t, m.Put(want))

	got, ok, err := m.Get(want.Path)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, want, got)
}

func TestPutOverwritesExistingRow(t *testing.T) {
	m := openManifest(t)
	path := "data/part-0.rec"
	require.NoError(t, m.Put(manifest.Stat{Path: path, Size: 10, EntryCount: 1, MTime: 10, CheckedAt: 1}))
	require.NoError(t, m.Put(manifest.Stat{Path: path, Size: 20, EntryCount: 2, MTime: 20, CheckedAt: 2}))

	got, ok, err := m.Get(path)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int64(20), got.Size)
	require.Equal(t, int64(2), got.EntryCount)
}

func TestStaleDetectsMTimeChange(t *testing.T) {
	s := manifest.Stat{MTime: 100}
	require.False(t, s.Stale(100))
	require.True(t, s.Stale(200))
}

func TestRevalidatorPopulatesCacheFromDisk(t *testing.T) {
	dir := t.TempDir()
	data := recordiotest.BuildFile([][]byte{[]byte("a"), []byte("bb"), []byte("ccc")})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "part-0.rec"), data, 0o644))

	fs := vfs.NewFS(dir)
	m := openManifest(t)

	r, err := manifest.StartRevalidator(m, fs, []string{"part-0.rec"}, time.Hour)
	require.NoError(t, err)
	defer r.Stop()

	s, ok, err := m.Get("part-0.rec")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int64(3), s.EntryCount)
}
