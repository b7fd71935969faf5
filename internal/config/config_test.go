// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of dareblopy.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/podgorskiy/DareBlopy/internal/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestInitMissingFileKeepsDefaults(t *testing.T) {
	before := config.Keys
	require.NoError(t, config.Init(filepath.Join(t.TempDir(), "nope.json")))
	require.Equal(t, before, config.Keys)
}

func TestInitLoadsAndValidates(t *testing.T) {
	path := writeConfig(t, `{
		"paths": ["data/part-0.rec", "data/part-1.rec"],
		"buffer_capacity": 256,
		"workers": 2,
		"batch_size": 16
	}`)
	require.NoError(t, config.Init(path))
	require.Equal(t, []string{"data/part-0.rec", "data/part-1.rec"}, config.Keys.Paths)
	require.Equal(t, 256, config.Keys.BufferCapacity)
}

func TestInitRejectsMissingPaths(t *testing.T) {
	path := writeConfig(t, `{"buffer_capacity": 64}`)
	require.Error(t, config.Init(path))
}

func TestInitRejectsUnknownFields(t *testing.T) {
	path := writeConfig(t, `{"paths": ["a.rec"], "totally_unknown_field": 1}`)
	require.Error(t, config.Init(path))
}
