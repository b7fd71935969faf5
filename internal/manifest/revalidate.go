// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of dareblopy.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package manifest

import (
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/podgorskiy/DareBlopy/internal/recordio"
	"github.com/podgorskiy/DareBlopy/internal/vfs"
	"github.com/podgorskiy/DareBlopy/pkg/errs"
	"github.com/podgorskiy/DareBlopy/pkg/log"
)

// Revalidator periodically recomputes RecordReader.Metadata for every
// configured path and refreshes the cache, so stale entries left by a
// file that changed out from under a long-running training job get
// corrected without a process restart.
type Revalidator struct {
	m    *Manifest
	fs   *vfs.FS
	sch  gocron.Scheduler
}

// StartRevalidator schedules a background job that re-stats paths every
// interval, following the taskManager.Start pattern of building one
// gocron.Scheduler and registering interval jobs against it.
func StartRevalidator(m *Manifest, fs *vfs.FS, paths []string, interval time.Duration) (*Revalidator, error) {
	sch, err := gocron.NewScheduler()
	if err != nil {
		return nil, errs.New(errs.Io, "manifest.StartRevalidator", err)
	}

	r := &Revalidator{m: m, fs: fs, sch: sch}

	_, err = sch.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() { r.revalidateAll(paths) }),
	)
	if err != nil {
		return nil, errs.New(errs.Io, "manifest.StartRevalidator", err)
	}

	// Populate the cache synchronously before returning, since
	// DurationJob's first tick does not fire until interval has
	// elapsed and a freshly opened manifest should not serve stale
	// (or absent) stats until then.
	r.revalidateAll(paths)

	sch.Start()
	return r, nil
}

func (r *Revalidator) revalidateAll(paths []string) {
	for _, p := range paths {
		if err := r.revalidateOne(p); err != nil {
			log.Warnf("manifest: revalidate %s: %v", p, err)
		}
	}
}

func (r *Revalidator) revalidateOne(path string) error {
	src, err := r.fs.Open(path, false)
	if err != nil {
		return err
	}
	defer src.Close()

	currentSize, err := src.Size()
	if err != nil {
		return err
	}

	cached, found, err := r.m.Get(path)
	if err != nil {
		return err
	}
	if found && !cached.Stale(currentSize) {
		return nil
	}

	rd, err := recordio.NewReader(src, recordio.Options{})
	if err != nil {
		return err
	}
	defer rd.Close()

	fileSize, dataSize, entryCount, err := rd.Metadata()
	if err != nil {
		return err
	}

	return r.m.Put(Stat{
		Path:       path,
		Size:       fileSize,
		DataSize:   dataSize,
		EntryCount: entryCount,
		MTime:      fileSize, // vfs exposes no mtime; size-change is the staleness signal instead.
		CheckedAt:  Now(),
	})
}

// Stop shuts the scheduler down, waiting for any in-flight run to finish.
func (r *Revalidator) Stop() error {
	return r.sch.Shutdown()
}
