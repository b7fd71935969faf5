// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of dareblopy.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package yielder

import (
	"github.com/podgorskiy/DareBlopy/internal/parser"
	"github.com/podgorskiy/DareBlopy/internal/tensor"
)

// ParsedYielder composes a Yielder with a parser.Parser, pulling raw
// records from the underlying yielder and parsing them into a batch of
// tensors before handing them to the caller.
type ParsedYielder struct {
	inner  Yielder
	parser *parser.Parser
}

// NewParsedYielder wraps inner, parsing every pulled batch with p.
func NewParsedYielder(inner Yielder, p *parser.Parser) *ParsedYielder {
	return &ParsedYielder{inner: inner, parser: p}
}

// NextN pulls up to b records from the underlying yielder and parses
// them. End-of-stream is propagated as-is from the underlying yielder.
func (y *ParsedYielder) NextN(b int) ([]tensor.Tensor, bool, error) {
	records, eos, err := y.inner.NextN(b)
	if err != nil {
		return nil, false, err
	}
	if eos {
		return nil, true, nil
	}
	batch, err := y.parser.ParseBatch(records)
	if err != nil {
		return nil, false, err
	}
	return batch, false, nil
}

// Close releases the underlying yielder's resources.
func (y *ParsedYielder) Close() error { return y.inner.Close() }
