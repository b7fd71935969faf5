// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of dareblopy.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package tensor holds the dense, row-major output type the parser fills
// and a Schema describing how to get there from an Example.
package tensor

import "github.com/podgorskiy/DareBlopy/pkg/errs"

// DType is one of the four wire-compatible feature types.
type DType int

const (
	Int64 DType = iota
	Float32
	Uint8
	Bytes
)

func (d DType) String() string {
	switch d {
	case Int64:
		return "int64"
	case Float32:
		return "float32"
	case Uint8:
		return "uint8"
	case Bytes:
		return "bytes"
	default:
		return "unknown"
	}
}

// FeatureSpec is one Schema entry: a shape and a dtype. shape == nil or
// len(shape) == 0 means scalar, which is only legal for Bytes.
type FeatureSpec struct {
	Shape []int
	DType DType
}

// Product returns the number of elements a tensor of this shape holds.
// A scalar (len(shape)==0) has product 1.
func Product(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}

// Feature pairs a name with its spec, preserving the order features are
// added to a Schema — that order fixes the output tuple order.
type Feature struct {
	Name string
	Spec FeatureSpec
}

// Schema is an ordered, validated set of named features.
type Schema struct {
	features []Feature
	index    map[string]int
}

// NewSchema validates and builds a Schema. Rejected:
// an empty feature list, duplicate names, negative dimensions, a
// non-scalar shape paired with DType Bytes (Bytes features must be
// scalar; reinterpreting bytes into a shaped buffer is the separate Uint8
// projection), and a scalar shape paired with any other DType.
func NewSchema(features []Feature) (*Schema, error) {
	if len(features) == 0 {
		return nil, errs.New(errs.SchemaInvalid, "tensor.NewSchema", nil)
	}
	index := make(map[string]int, len(features))
	for i, f := range features {
		if _, dup := index[f.Name]; dup {
			return nil, errs.WithPath(errs.SchemaInvalid, "tensor.NewSchema", f.Name, nil)
		}
		for _, d := range f.Spec.Shape {
			if d < 0 {
				return nil, errs.WithPath(errs.SchemaInvalid, "tensor.NewSchema", f.Name, nil)
			}
		}
		if f.Spec.DType == Bytes && len(f.Spec.Shape) != 0 {
			return nil, errs.WithPath(errs.SchemaInvalid, "tensor.NewSchema", f.Name, nil)
		}
		if f.Spec.DType != Bytes && len(f.Spec.Shape) == 0 {
			return nil, errs.WithPath(errs.SchemaInvalid, "tensor.NewSchema", f.Name, nil)
		}
		index[f.Name] = i
	}
	out := make([]Feature, len(features))
	copy(out, features)
	return &Schema{features: out, index: index}, nil
}

// Features returns the schema's features in declaration order.
func (s *Schema) Features() []Feature { return s.features }

// Len returns the number of features.
func (s *Schema) Len() int { return len(s.features) }

// Tensor is a dense, row-major buffer. Exactly one of the data slices is
// populated, matching DType. Shape includes a leading batch axis for
// batch tensors, and does not for single-record tensors.
type Tensor struct {
	Shape   []int
	DType   DType
	Int64   []int64
	Float32 []float32
	Uint8   []uint8
	Bytes   [][]byte
}

// NewTensor allocates a zeroed tensor of shape/dtype ready to be filled.
// For Bytes it allocates nil entries; bytes tensors are always scalar (or
// batch-of-scalars), so len(Bytes) == product(shape without the dtype's own
// implicit scalar axis).
func NewTensor(shape []int, dtype DType) Tensor {
	n := Product(shape)
	t := Tensor{Shape: append([]int(nil), shape...), DType: dtype}
	switch dtype {
	case Int64:
		t.Int64 = make([]int64, n)
	case Float32:
		t.Float32 = make([]float32, n)
	case Uint8:
		t.Uint8 = make([]uint8, n)
	case Bytes:
		t.Bytes = make([][]byte, n)
	}
	return t
}

// NewBatchTensors allocates one tensor per feature, each with a leading
// batch axis of size b, in schema order.
func NewBatchTensors(schema *Schema, b int) []Tensor {
	out := make([]Tensor, schema.Len())
	for i, f := range schema.Features() {
		shape := append([]int{b}, f.Spec.Shape...)
		out[i] = NewTensor(shape, f.Spec.DType)
	}
	return out
}
