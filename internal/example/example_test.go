// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of dareblopy.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package example_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/podgorskiy/DareBlopy/internal/example"
	"github.com/podgorskiy/DareBlopy/internal/example/exampletest"
)

func TestDecodeBasic(t *testing.T) {
	payload := exampletest.New().
		Int64("label", 7).
		Float32("weight", 1.5, 2.5).
		Bytes("image", []byte("jpegbytes")).
		Build()

	ex, err := example.Decode(payload)
	require.NoError(t, err)
	require.Equal(t, []int64{7}, ex["label"].Int64)
	require.Equal(t, []float32{1.5, 2.5}, ex["weight"].Float32)
	require.Equal(t, [][]byte{[]byte("jpegbytes")}, ex["image"].Bytes)
}

func TestDecodeConcatenatesRepeatedFields(t *testing.T) {
	payload := exampletest.New().
		Int64("a", 1, 2).
		Int64("a", 3).
		Build()

	ex, err := example.Decode(payload)
	require.NoError(t, err)
	require.Equal(t, []int64{1, 2, 3}, ex["a"].Int64)
}

func TestDecodeSkipsUnknownFields(t *testing.T) {
	payload := exampletest.New().
		Int64("known", 42).
		Unknown("mystery", []byte{1, 2, 3, 4}).
		Build()

	ex, err := example.Decode(payload)
	require.NoError(t, err)
	require.Equal(t, []int64{42}, ex["known"].Int64)
	_, present := ex["mystery"]
	require.False(t, present)
}

func TestDecodeTruncatedIsCorrupt(t *testing.T) {
	payload := exampletest.New().Int64("a", 1).Build()
	_, err := example.Decode(payload[:len(payload)-2])
	require.Error(t, err)
}

func TestDecodeFieldOrderDoesNotMatter(t *testing.T) {
	p1 := exampletest.New().Int64("a", 1).Float32("b", 2).Build()
	p2 := exampletest.New().Float32("b", 2).Int64("a", 1).Build()

	e1, err := example.Decode(p1)
	require.NoError(t, err)
	e2, err := example.Decode(p2)
	require.NoError(t, err)
	require.Equal(t, e1["a"].Int64, e2["a"].Int64)
	require.Equal(t, e1["b"].Float32, e2["b"].Float32)
}
