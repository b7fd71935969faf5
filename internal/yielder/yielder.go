// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of dareblopy.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package yielder implements the three record-producing stages of the
// pipeline: BasicYielder (file-order concatenation), RandomizedYielder
// (bounded reservoir shuffle across epochs), and ParsedYielder (a thin
// composition that hands a yielder's records to a parser.Parser).
package yielder

// Yielder is the common pull interface of the raw-record stages
// (BasicYielder, RandomizedYielder); ParsedYielder has the same NextN
// shape but returns []tensor.Tensor, so it does not implement it. NextN
// returns up to b records; eos is true exactly when no more records
// will ever be produced, in which case records is nil. A short,
// non-empty batch is not end-of-stream: the next call is.
type Yielder interface {
	NextN(b int) (records [][]byte, eos bool, err error)
	Close() error
}
