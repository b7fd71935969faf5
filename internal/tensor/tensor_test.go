// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of dareblopy.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tensor_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/podgorskiy/DareBlopy/internal/tensor"
)

func TestNewSchemaRejectsEmpty(t *testing.T) {
	_, err := tensor.NewSchema(nil)
	require.Error(t, err)
}

func TestNewSchemaRejectsDuplicateNames(t *testing.T) {
	_, err := tensor.NewSchema([]tensor.Feature{
		{Name: "a", Spec: tensor.FeatureSpec{Shape: []int{1}, DType: tensor.Int64}},
		{Name: "a", Spec: tensor.FeatureSpec{Shape: []int{1}, DType: tensor.Float32}},
	})
	require.Error(t, err)
}

func TestNewSchemaRejectsNegativeDims(t *testing.T) {
	_, err := tensor.NewSchema([]tensor.Feature{
		{Name: "a", Spec: tensor.FeatureSpec{Shape: []int{-1}, DType: tensor.Int64}},
	})
	require.Error(t, err)
}

func TestNewSchemaRejectsShapedBytes(t *testing.T) {
	_, err := tensor.NewSchema([]tensor.Feature{
		{Name: "a", Spec: tensor.FeatureSpec{Shape: []int{3}, DType: tensor.Bytes}},
	})
	require.Error(t, err)
}

func TestNewSchemaPreservesOrder(t *testing.T) {
	s, err := tensor.NewSchema([]tensor.Feature{
		{Name: "b", Spec: tensor.FeatureSpec{DType: tensor.Bytes}},
		{Name: "a", Spec: tensor.FeatureSpec{Shape: []int{2}, DType: tensor.Int64}},
	})
	require.NoError(t, err)
	require.Equal(t, "b", s.Features()[0].Name)
	require.Equal(t, "a", s.Features()[1].Name)
}

func TestNewBatchTensorsShapes(t *testing.T) {
	s, err := tensor.NewSchema([]tensor.Feature{
		{Name: "pixels", Spec: tensor.FeatureSpec{Shape: []int{2, 3}, DType: tensor.Uint8}},
		{Name: "label", Spec: tensor.FeatureSpec{DType: tensor.Bytes}},
	})
	require.NoError(t, err)
	batch := tensor.NewBatchTensors(s, 4)
	require.Equal(t, []int{4, 2, 3}, batch[0].Shape)
	require.Len(t, batch[0].Uint8, 4*2*3)
	require.Equal(t, []int{4}, batch[1].Shape)
	require.Len(t, batch[1].Bytes, 4)
}
