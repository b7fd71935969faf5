// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of dareblopy.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package recordfmt_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/podgorskiy/DareBlopy/internal/recordfmt"
)

func TestWriteThenReadAllRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.avro")

	w, err := recordfmt.NewWriter(path)
	require.NoError(t, err)

	want := []recordfmt.FeatureStat{
		{Epoch: 0, BatchIndex: 0, Feature: "label", Count: 32, Missing: 0},
		{Epoch: 0, BatchIndex: 0, Feature: "pixels", Count: 32, Missing: 0},
	}
	require.NoError(t, w.Append(want))
	require.NoError(t, w.Append([]recordfmt.FeatureStat{
		{Epoch: 0, BatchIndex: 1, Feature: "label", Count: 30, Missing: 2},
	}))
	require.NoError(t, w.Close())

	got, err := recordfmt.ReadAll(path)
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Equal(t, "label", got[0].Feature)
	require.Equal(t, int64(30), got[2].Count)
	require.Equal(t, int64(2), got[2].Missing)
}

func TestAppendEmptyIsNoop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.avro")
	w, err := recordfmt.NewWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.Append(nil))
	require.NoError(t, w.Close())

	got, err := recordfmt.ReadAll(path)
	require.NoError(t, err)
	require.Empty(t, got)
}
