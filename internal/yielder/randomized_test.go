// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of dareblopy.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package yielder_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/podgorskiy/DareBlopy/internal/vfs"
	"github.com/podgorskiy/DareBlopy/internal/yielder"
)

func drainOneEpoch(t *testing.T, y *yielder.RandomizedYielder, expected int) [][]byte {
	t.Helper()
	var all [][]byte
	for len(all) < expected {
		batch, eos, err := y.NextN(7)
		require.NoError(t, err)
		require.False(t, eos)
		all = append(all, batch...)
	}
	return all
}

func TestRandomizedYielderShuffleCoversAllRecordsNoDuplicates(t *testing.T) {
	dir := t.TempDir()
	paths := writeRecordFiles(t, dir, 4, 50)

	fs := vfs.NewFS("")
	one := 1
	y, err := yielder.NewRandomizedYielder(fs, paths, 16, 0, 0, &one)
	require.NoError(t, err)
	defer y.Close()

	var all [][]byte
	for {
		batch, eos, err := y.NextN(7)
		require.NoError(t, err)
		if eos {
			require.Empty(t, batch)
			break
		}
		all = append(all, batch...)
	}

	require.Len(t, all, 200)
	seen := make(map[byte]bool, 200)
	ordered := true
	for i, rec := range all {
		require.False(t, seen[rec[0]], "duplicate record %d", rec[0])
		seen[rec[0]] = true
		if int(rec[0]) != i {
			ordered = false
		}
	}
	require.Len(t, seen, 200)
	require.False(t, ordered, "shuffled output should not equal source order")
}

func TestRandomizedYielderCapacityOneIsValid(t *testing.T) {
	dir := t.TempDir()
	paths := writeRecordFiles(t, dir, 2, 10)

	fs := vfs.NewFS("")
	one := 1
	y, err := yielder.NewRandomizedYielder(fs, paths, 1, 42, 0, &one)
	require.NoError(t, err)
	defer y.Close()

	all := drainOneEpoch(t, y, 20)
	seen := make(map[byte]bool, 20)
	for _, rec := range all {
		seen[rec[0]] = true
	}
	require.Len(t, seen, 20)

	batch, eos, err := y.NextN(1)
	require.NoError(t, err)
	require.True(t, eos)
	require.Empty(t, batch)
}

func TestRandomizedYielderInfiniteAdvancesEpochs(t *testing.T) {
	dir := t.TempDir()
	paths := writeRecordFiles(t, dir, 2, 5)

	fs := vfs.NewFS("")
	y, err := yielder.NewRandomizedYielder(fs, paths, 4, 7, 0, nil)
	require.NoError(t, err)
	defer y.Close()

	// Pull more records than a single epoch holds (10); an infinite
	// yielder must keep producing instead of reporting end-of-stream.
	var total int
	for i := 0; i < 5; i++ {
		batch, eos, err := y.NextN(6)
		require.NoError(t, err)
		require.False(t, eos)
		total += len(batch)
	}
	require.Equal(t, 30, total)
}
