// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of dareblopy.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package yielder

import (
	"io"

	"github.com/podgorskiy/DareBlopy/internal/recordio"
	"github.com/podgorskiy/DareBlopy/internal/vfs"
)

// BasicYielder concatenates RecordReaders over a fixed ordered list of
// paths, emitting records in file order. State machine: Idle (before
// the first pull) -> Reading(i) -> Done.
type BasicYielder struct {
	fs    *vfs.FS
	paths []string

	idx    int
	cur    *recordio.Reader
	curSrc vfs.ByteSource
	done   bool
}

// NewBasicYielder builds a yielder over paths, resolved through fs.
func NewBasicYielder(fs *vfs.FS, paths []string) *BasicYielder {
	return &BasicYielder{fs: fs, paths: append([]string(nil), paths...)}
}

// NextN pulls up to b records. When fewer than b remain it returns the
// short batch with eos=false; the call after that returns eos=true.
func (y *BasicYielder) NextN(b int) ([][]byte, bool, error) {
	if y.done {
		return nil, true, nil
	}
	out := make([][]byte, 0, b)
	for len(out) < b {
		if y.cur == nil {
			if y.idx >= len(y.paths) {
				y.done = true
				break
			}
			src, err := y.fs.Open(y.paths[y.idx], false)
			if err != nil {
				return out, false, err
			}
			r, err := recordio.NewReader(src, recordio.Options{})
			if err != nil {
				src.Close()
				return out, false, err
			}
			y.cur = r
			y.curSrc = src
		}

		rec, err := y.cur.Next()
		if err == io.EOF {
			y.cur.Close()
			y.curSrc.Close()
			y.cur = nil
			y.idx++
			continue
		}
		if err != nil {
			return out, false, err
		}
		out = append(out, rec)
	}

	if len(out) == 0 && y.done {
		return nil, true, nil
	}
	return out, false, nil
}

// Close releases any currently open file.
func (y *BasicYielder) Close() error {
	if y.cur != nil {
		y.cur.Close()
		y.curSrc.Close()
		y.cur = nil
	}
	return nil
}
