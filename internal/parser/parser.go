// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of dareblopy.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package parser turns Example payloads into dense tensor.Tensor values
// according to a tensor.Schema. A Parser can run
// serially or fan batches out across a worker pool, contiguous row ranges
// per worker, grounded on the fork-join shape of
// internal/metricstore/checkpoint.go's ToCheckpoint fork-join shape.
package parser

import (
	"sync"

	"github.com/podgorskiy/DareBlopy/internal/example"
	"github.com/podgorskiy/DareBlopy/internal/tensor"
	"github.com/podgorskiy/DareBlopy/pkg/errs"
)

// Parser decodes and fills tensors for a fixed schema.
type Parser struct {
	schema   *tensor.Schema
	parallel bool
	workers  int
}

// NewParser builds a Parser. workers is ignored unless parallel is true,
// and is clamped to at least 1.
func NewParser(schema *tensor.Schema, parallel bool, workers int) *Parser {
	if workers < 1 {
		workers = 1
	}
	return &Parser{schema: schema, parallel: parallel, workers: workers}
}

// Schema returns the parser's schema.
func (p *Parser) Schema() *tensor.Schema { return p.schema }

// ParseSingle decodes one record into freshly allocated, unbatched tensors
// (one per schema feature, in schema order, no leading batch axis).
func (p *Parser) ParseSingle(payload []byte) ([]tensor.Tensor, error) {
	out := make([]tensor.Tensor, p.schema.Len())
	for i, f := range p.schema.Features() {
		out[i] = tensor.NewTensor(f.Spec.Shape, f.Spec.DType)
	}
	if err := p.ParseSingleInPlace(payload, out); err != nil {
		return nil, err
	}
	return out, nil
}

// ParseSingleInPlace decodes one record directly into caller-owned,
// unbatched tensors matching the schema's shapes.
func (p *Parser) ParseSingleInPlace(payload []byte, dst []tensor.Tensor) error {
	ex, err := example.Decode(payload)
	if err != nil {
		return err
	}
	return fillRecord(p.schema, ex, dst, 0)
}

// ParseBatch decodes len(payloads) records into freshly allocated batch
// tensors (one per schema feature, each with a leading batch axis of
// len(payloads)). A zero-length payloads slice returns tensors shaped
// [0, ...] per feature and no error.
func (p *Parser) ParseBatch(payloads [][]byte) ([]tensor.Tensor, error) {
	batch := tensor.NewBatchTensors(p.schema, len(payloads))
	if err := p.ParseBatchInPlace(payloads, batch); err != nil {
		return nil, err
	}
	return batch, nil
}

// ParseBatchInPlace decodes len(payloads) records into caller-owned batch
// tensors. dst's leading axis must already equal len(payloads); callers
// that reuse buffers across batches are expected to reallocate when the
// batch size changes.
func (p *Parser) ParseBatchInPlace(payloads [][]byte, dst []tensor.Tensor) error {
	n := len(payloads)
	if n == 0 {
		return nil
	}
	if !p.parallel || p.workers == 1 || n == 1 {
		for row, payload := range payloads {
			ex, err := example.Decode(payload)
			if err != nil {
				return err
			}
			if err := fillRecord(p.schema, ex, dst, row); err != nil {
				return err
			}
		}
		return nil
	}
	return p.parseBatchParallel(payloads, dst)
}

// parseBatchParallel partitions [0,n) into p.workers contiguous row
// ranges and fills them concurrently. The first error observed (by row
// order) is returned; other workers still run to completion since
// partial fills into dst are permitted on failure.
func (p *Parser) parseBatchParallel(payloads [][]byte, dst []tensor.Tensor) error {
	n := len(payloads)
	workers := p.workers
	if workers > n {
		workers = n
	}
	chunk := (n + workers - 1) / workers

	errsPerWorker := make([]error, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * chunk
		end := start + chunk
		if end > n {
			end = n
		}
		if start >= end {
			continue
		}
		wg.Add(1)
		go func(w, start, end int) {
			defer wg.Done()
			for row := start; row < end; row++ {
				ex, err := example.Decode(payloads[row])
				if err != nil {
					errsPerWorker[w] = err
					return
				}
				if err := fillRecord(p.schema, ex, dst, row); err != nil {
					errsPerWorker[w] = err
					return
				}
			}
		}(w, start, end)
	}
	wg.Wait()

	for _, err := range errsPerWorker {
		if err != nil {
			return err
		}
	}
	return nil
}

// fillRecord fills row `row` of each dst tensor from the decoded example,
// aborting on the first feature that fails.
func fillRecord(schema *tensor.Schema, ex example.Example, dst []tensor.Tensor, row int) error {
	for i, f := range schema.Features() {
		if err := fillFeature(f, ex, &dst[i], row); err != nil {
			return err
		}
	}
	return nil
}

func fillFeature(f tensor.Feature, ex example.Example, dst *tensor.Tensor, row int) error {
	field, ok := ex[f.Name]
	if !ok {
		return errs.WithPath(errs.MissingFeature, "parser.fillFeature", f.Name, nil)
	}

	want := tensor.Product(f.Spec.Shape)

	switch f.Spec.DType {
	case tensor.Int64:
		if field.Kind != example.KindInt64 {
			return errs.WithPath(errs.TypeMismatch, "parser.fillFeature", f.Name, nil)
		}
		if len(field.Int64) != want {
			return errs.WithPath(errs.ShapeMismatch, "parser.fillFeature", f.Name, nil)
		}
		copy(dst.Int64[row*want:(row+1)*want], field.Int64)

	case tensor.Float32:
		if field.Kind != example.KindFloat32 {
			return errs.WithPath(errs.TypeMismatch, "parser.fillFeature", f.Name, nil)
		}
		if len(field.Float32) != want {
			return errs.WithPath(errs.ShapeMismatch, "parser.fillFeature", f.Name, nil)
		}
		copy(dst.Float32[row*want:(row+1)*want], field.Float32)

	case tensor.Bytes:
		if field.Kind != example.KindBytes {
			return errs.WithPath(errs.TypeMismatch, "parser.fillFeature", f.Name, nil)
		}
		dst.Bytes[row] = concatBytes(field.Bytes)

	case tensor.Uint8:
		if field.Kind != example.KindBytes {
			return errs.WithPath(errs.TypeMismatch, "parser.fillFeature", f.Name, nil)
		}
		flat := concatBytes(field.Bytes)
		if len(flat) != want {
			return errs.WithPath(errs.ShapeMismatch, "parser.fillFeature", f.Name, nil)
		}
		copy(dst.Uint8[row*want:(row+1)*want], flat)
	}
	return nil
}

func concatBytes(parts [][]byte) []byte {
	if len(parts) == 1 {
		return parts[0]
	}
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	out := make([]byte, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
