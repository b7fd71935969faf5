// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of dareblopy.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package yielder_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/podgorskiy/DareBlopy/internal/recordiotest"
	"github.com/podgorskiy/DareBlopy/internal/vfs"
	"github.com/podgorskiy/DareBlopy/internal/yielder"
)

// writeRecordFiles writes nFiles container files, each holding
// recordsPerFile single-byte payloads uniquely identifying the record's
// global position, and returns the logical paths vfs can resolve.
func writeRecordFiles(t *testing.T, dir string, nFiles, recordsPerFile int) []string {
	t.Helper()
	var paths []string
	next := 0
	for f := 0; f < nFiles; f++ {
		var payloads [][]byte
		for i := 0; i < recordsPerFile; i++ {
			payloads = append(payloads, []byte{byte(next)})
			next++
		}
		name := filepath.Join(dir, "part-"+string(rune('a'+f))+".rec")
		require.NoError(t, os.WriteFile(name, recordiotest.BuildFile(payloads), 0o644))
		paths = append(paths, name)
	}
	return paths
}

func TestBasicYielderOrderAndBatching(t *testing.T) {
	dir := t.TempDir()
	paths := writeRecordFiles(t, dir, 4, 10)

	fs := vfs.NewFS("")
	y := yielder.NewBasicYielder(fs, paths)
	defer y.Close()

	var all [][]byte
	for {
		batch, eos, err := y.NextN(8)
		require.NoError(t, err)
		if eos {
			require.Empty(t, batch)
			break
		}
		all = append(all, batch...)
	}

	require.Len(t, all, 40)
	for i, rec := range all {
		require.Equal(t, byte(i), rec[0])
	}
}

func TestBasicYielderShortFinalBatchThenEOS(t *testing.T) {
	dir := t.TempDir()
	paths := writeRecordFiles(t, dir, 1, 5)

	fs := vfs.NewFS("")
	y := yielder.NewBasicYielder(fs, paths)
	defer y.Close()

	batch, eos, err := y.NextN(8)
	require.NoError(t, err)
	require.False(t, eos)
	require.Len(t, batch, 5)

	batch, eos, err = y.NextN(8)
	require.NoError(t, err)
	require.True(t, eos)
	require.Empty(t, batch)
}
