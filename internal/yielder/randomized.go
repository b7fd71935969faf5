// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of dareblopy.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package yielder

import (
	"io"
	"math/rand"

	"github.com/podgorskiy/DareBlopy/internal/prng"
	"github.com/podgorskiy/DareBlopy/internal/recordio"
	"github.com/podgorskiy/DareBlopy/internal/vfs"
)

// RandomizedYielder maintains a bounded reservoir shuffle buffer over an
// epoch-permuted file order, optionally iterating a fixed number of
// epochs before reporting end-of-stream.
type RandomizedYielder struct {
	fs       *vfs.FS
	paths    []string
	capacity int
	seed     uint64

	epoch          uint64
	epochsRemain   int // only meaningful when finite
	finite         bool
	epochsConsumed int

	filePerm []string
	fileIdx  int
	cur      *recordio.Reader
	curSrc   vfs.ByteSource

	selRNG *rand.Rand

	buffer []([]byte)
	size   int

	done bool
}

// NewRandomizedYielder constructs a yielder over paths with the given
// shuffle buffer capacity, seed, and starting epoch. iterationCount, if
// non-nil, bounds the number of epochs iterated before end-of-stream;
// nil means iterate forever.
func NewRandomizedYielder(fs *vfs.FS, paths []string, capacity int, seed uint64, epoch uint64, iterationCount *int) (*RandomizedYielder, error) {
	y := &RandomizedYielder{
		fs:       fs,
		paths:    append([]string(nil), paths...),
		capacity: capacity,
		seed:     seed,
	}
	if iterationCount != nil {
		y.finite = true
		y.epochsRemain = *iterationCount
	}
	if err := y.startEpoch(epoch); err != nil {
		return nil, err
	}
	return y, nil
}

// startEpoch recomputes the file permutation and reservoir PRNG for
// epoch e from H(seed, e) and H(seed, e, 1) respectively, then refills
// the buffer from the new per-epoch stream.
func (y *RandomizedYielder) startEpoch(e uint64) error {
	y.epoch = e
	perm := append([]string(nil), y.paths...)
	fileRNG := prng.New(y.seed, e)
	fileRNG.Shuffle(len(perm), func(i, j int) { perm[i], perm[j] = perm[j], perm[i] })
	y.filePerm = perm
	y.fileIdx = 0
	y.cur = nil
	y.selRNG = prng.New(y.seed, e, 1)
	return y.fillBuffer()
}

func (y *RandomizedYielder) fillBuffer() error {
	y.buffer = y.buffer[:0]
	y.size = 0
	for y.size < y.capacity {
		rec, ok, err := y.nextFromStream()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		y.buffer = append(y.buffer, rec)
		y.size++
	}
	return nil
}

// nextFromStream pulls the next record from the epoch's permuted file
// order, opening files lazily and advancing across exhausted ones.
func (y *RandomizedYielder) nextFromStream() ([]byte, bool, error) {
	for {
		if y.cur == nil {
			if y.fileIdx >= len(y.filePerm) {
				return nil, false, nil
			}
			src, err := y.fs.Open(y.filePerm[y.fileIdx], false)
			if err != nil {
				return nil, false, err
			}
			r, err := recordio.NewReader(src, recordio.Options{})
			if err != nil {
				src.Close()
				return nil, false, err
			}
			y.cur = r
			y.curSrc = src
		}

		rec, err := y.cur.Next()
		if err == io.EOF {
			y.cur.Close()
			y.curSrc.Close()
			y.cur = nil
			y.fileIdx++
			continue
		}
		if err != nil {
			return nil, false, err
		}
		return rec, true, nil
	}
}

// pullOne runs one reservoir step: pick a buffer slot, return its
// record, and replace the slot from the stream or shrink the buffer.
// ok is false only when the yielder has reached a true end-of-stream.
func (y *RandomizedYielder) pullOne() (rec []byte, ok bool, err error) {
	for y.size == 0 {
		if y.finite {
			y.epochsConsumed++
			if y.epochsConsumed >= y.epochsRemain {
				y.done = true
				return nil, false, nil
			}
		}
		if err := y.startEpoch(y.epoch + 1); err != nil {
			return nil, false, err
		}
	}

	j := y.selRNG.Intn(y.size)
	out := y.buffer[j]
	next, has, err := y.nextFromStream()
	if err != nil {
		return nil, false, err
	}
	if has {
		y.buffer[j] = next
	} else {
		y.size--
		y.buffer[j] = y.buffer[y.size]
	}
	return out, true, nil
}

// NextN pulls up to b shuffled records.
func (y *RandomizedYielder) NextN(b int) ([][]byte, bool, error) {
	if y.done {
		return nil, true, nil
	}
	out := make([][]byte, 0, b)
	for len(out) < b {
		rec, ok, err := y.pullOne()
		if err != nil {
			return out, false, err
		}
		if !ok {
			break
		}
		out = append(out, rec)
	}
	if len(out) == 0 && y.done {
		return nil, true, nil
	}
	return out, false, nil
}

// Close releases any currently open file.
func (y *RandomizedYielder) Close() error {
	if y.cur != nil {
		y.cur.Close()
		y.curSrc.Close()
		y.cur = nil
	}
	return nil
}
