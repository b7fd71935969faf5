// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of dareblopy.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package vfs

import "sync"

// Lockable wraps a ByteSource with a mutex so concurrent callers can safely
// share one underlying handle (e.g. several archive entries backed by the
// same archive file). Without Lockable, concurrent use of a shared
// ByteSource is undefined by contract, per the FS spec.
type Lockable struct {
	mu sync.Mutex
	bs ByteSource
}

// NewLockable returns a Lockable view over bs. bs is owned by the returned
// value; do not use bs directly afterwards.
func NewLockable(bs ByteSource) *Lockable {
	return &Lockable{bs: bs}
}

func (l *Lockable) Read(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.bs.Read(p)
}

func (l *Lockable) Seek(offset int64, whence int) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.bs.Seek(offset, whence)
}

func (l *Lockable) Tell() (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.bs.Tell()
}

func (l *Lockable) Size() (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.bs.Size()
}

func (l *Lockable) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.bs.Close()
}

// ReadAt performs a locked, positioned read without disturbing the shared
// cursor seen by other callers: it saves the current offset, seeks, reads,
// then restores the offset. Used by archive entries that share one
// underlying lockable ByteSource but must each appear independently
// seekable.
func (l *Lockable) ReadAt(p []byte, off int64) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	cur, err := l.bs.Tell()
	if err != nil {
		return 0, err
	}
	if _, err := l.bs.Seek(off, 0); err != nil {
		return 0, err
	}
	n, err := l.bs.Read(p)
	if _, serr := l.bs.Seek(cur, 0); serr != nil && err == nil {
		err = serr
	}
	return n, err
}
