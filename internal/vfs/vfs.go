// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of dareblopy.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package vfs is the virtual filesystem the record pipeline reads through.
// A logical path resolves either to a real file on disk or to an entry of a
// mounted, uncompressed archive; RecordReader never knows which.
package vfs

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/podgorskiy/DareBlopy/pkg/errs"
	"github.com/podgorskiy/DareBlopy/pkg/log"
)

// ByteSource is a seekable, single-consumer handle over a byte range.
// Its method set is deliberately identical to io.Reader/io.Seeker/io.Closer
// so any ByteSource can be passed to stdlib helpers that want those
// interfaces.
type ByteSource interface {
	Read(p []byte) (int, error)
	Seek(offset int64, whence int) (int64, error)
	Tell() (int64, error)
	Size() (int64, error)
	Close() error
}

// Mounter is implemented by archives that can be mounted into an FS. It is
// satisfied by *container.Archive; kept as an interface here so vfs does not
// import container (container imports vfs for ByteSource instead).
type Mounter interface {
	// Entries returns the archive's entry names in central-directory order.
	Entries() []string
	// Open returns a ByteSource over one entry, sharing the archive's
	// underlying ByteSource per lockable.
	Open(name string, lockable bool) (ByteSource, error)
}

// FS resolves logical paths to ByteSources, either against the real
// filesystem or against mounted archives. Precedence on a name collision:
// real filesystem first, then archives in reverse mount order (the most
// recently mounted archive wins).
type FS struct {
	mu       sync.RWMutex
	root     string
	backends []Backend
	mounts   []mount
}

type mount struct {
	name string
	ar   Mounter
}

// NewFS creates an FS rooted at root for real-filesystem opens. root may be
// "" to treat logical paths as already-absolute or process-relative.
func NewFS(root string) *FS {
	return &FS{root: root}
}

// MountArchive adds ar's entries as openable paths under name + "/" + entry.
// Mutation must be externally serialized with Open calls, as documented in
// the concurrency model: callers typically mount everything during startup
// before handing the FS to readers.
func (f *FS) MountArchive(name string, ar Mounter) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mounts = append(f.mounts, mount{name: name, ar: ar})
	log.Infof("vfs: mounted archive %q with %d entries", name, len(ar.Entries()))
}

// UnmountArchive drops a previously mounted archive by name. If multiple
// archives were mounted under the same name, only the most recently mounted
// one is removed.
func (f *FS) UnmountArchive(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.mounts) - 1; i >= 0; i-- {
		if f.mounts[i].name == name {
			f.mounts = append(f.mounts[:i], f.mounts[i+1:]...)
			return
		}
	}
}

func (f *FS) realPath(path string) string {
	if f.root == "" {
		return path
	}
	return filepath.Join(f.root, path)
}

// Exists reports whether path resolves on the real filesystem. Archive
// contents are not consulted; per spec, exists/rename are filesystem-only.
func (f *FS) Exists(path string) bool {
	_, err := os.Stat(f.realPath(path))
	return err == nil
}

// Rename renames a real file. Archive-backed paths cannot be renamed.
func (f *FS) Rename(from, to string) error {
	if err := os.Rename(f.realPath(from), f.realPath(to)); err != nil {
		return errs.WithPath(errs.Io, "vfs.Rename", from, err)
	}
	return nil
}

// Open resolves path to a ByteSource. Real-filesystem entries take
// precedence; otherwise registered backends are tried in registration
// order, then the mount table is searched in reverse mount order.
func (f *FS) Open(path string, lockable bool) (ByteSource, error) {
	if fh, err := os.Open(f.realPath(path)); err == nil {
		return &osByteSource{f: fh}, nil
	} else if !os.IsNotExist(err) {
		return nil, errs.WithPath(errs.Io, "vfs.Open", path, err)
	}

	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, b := range f.backends {
		if bs, err := b.Open(path, lockable); err == nil {
			return bs, nil
		}
	}
	for i := len(f.mounts) - 1; i >= 0; i-- {
		mnt := f.mounts[i]
		prefix := mnt.name + "/"
		if len(path) > len(prefix) && path[:len(prefix)] == prefix {
			bs, err := mnt.ar.Open(path[len(prefix):], lockable)
			if err == nil {
				return bs, nil
			}
		}
		// Also allow the bare entry name with no mount-name prefix, for
		// single-archive setups where paths are archive-relative already.
		for _, name := range mnt.ar.Entries() {
			if name == path {
				return mnt.ar.Open(name, lockable)
			}
		}
	}
	return nil, errs.WithPath(errs.NotFound, "vfs.Open", path, nil)
}

// osByteSource adapts *os.File to ByteSource.
type osByteSource struct {
	f *os.File
}

func (o *osByteSource) Read(p []byte) (int, error)               { return o.f.Read(p) }
func (o *osByteSource) Seek(offset int64, whence int) (int64, error) { return o.f.Seek(offset, whence) }
func (o *osByteSource) Tell() (int64, error)                     { return o.f.Seek(0, io.SeekCurrent) }
func (o *osByteSource) Close() error                             { return o.f.Close() }

func (o *osByteSource) Size() (int64, error) {
	fi, err := o.f.Stat()
	if err != nil {
		return 0, errs.New(errs.Io, "vfs.Size", err)
	}
	return fi.Size(), nil
}
