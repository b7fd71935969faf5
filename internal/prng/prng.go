// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of dareblopy.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package prng mixes the seed/epoch pair a RandomizedYielder is
// constructed with into two independent generator seeds: one for the
// epoch's file permutation, one for reservoir index selection. No PRNG
// library is otherwise in scope here, and math/rand's
// source is already a good, swappable PRNG given a deterministic seed,
// so this stays on the standard library rather than importing one.
package prng

import "math/rand"

// Mix combines any number of uint64 inputs into one well-distributed
// uint64 using an FNV-1a-style avalanche. It is not cryptographic; it
// only needs to turn (seed, epoch[, tag]) into seeds that don't visibly
// correlate.
func Mix(xs ...uint64) uint64 {
	const (
		offset = 14695981039346656037
		prime  = 1099511628211
	)
	h := uint64(offset)
	for _, x := range xs {
		h ^= x
		h *= prime
		h ^= h >> 33
	}
	return h
}

// New returns a *rand.Rand deterministically seeded from the mixed
// inputs.
func New(xs ...uint64) *rand.Rand {
	return rand.New(rand.NewSource(int64(Mix(xs...))))
}
