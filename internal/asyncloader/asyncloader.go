// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of dareblopy.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package asyncloader bridges a pull-only, not-thread-safe upstream
// iterator to a single consumer through W worker goroutines and a
// bounded queue, grounded on the fork-join worker pool shape of
// internal/metricstore/checkpoint.go and the thread-per-worker pull
// loop of the Python reference data_loader.
package asyncloader

import (
	"sync"
	"time"

	"github.com/podgorskiy/DareBlopy/pkg/metrics"
)

// Upstream is anything with a NextN(b) pull method, matching
// yielder.Yielder's shape (batch, end-of-stream, error) for an arbitrary
// batch type T. *yielder.BasicYielder and *yielder.RandomizedYielder
// satisfy Upstream[[][]byte]; *yielder.ParsedYielder satisfies
// Upstream[[]tensor.Tensor].
type Upstream[T any] interface {
	NextN(b int) (T, bool, error)
}

// Identity is a pass-through collator for callers that don't need one.
func Identity[T any](v T) (T, error) { return v, nil }

type qitem[U any] struct {
	val U
	err error
	eos bool
}

// Loader decouples an Upstream[T] from a consumer of U, running W
// worker goroutines that each pull a batch of size B, run it through an
// optional collator, and push the result onto a bounded queue.
type Loader[T, U any] struct {
	upstream  Upstream[T]
	batchSize int
	collate   func(T) (U, error)

	upstreamMu sync.Mutex
	queue      chan qitem[U]
	stop       chan struct{}
	stopOnce   sync.Once
	wg         sync.WaitGroup

	metrics *metrics.Collector
	gotEOS  bool
}

// New starts the loader. workers is clamped to at least 1; queueCap is
// clamped to at least workers so every worker can have an in-flight
// result. m is optional (pass none, or nil, for an unobserved loader);
// when given, it is shared with whatever else in the process reports
// through the same Collector.
func New[T, U any](upstream Upstream[T], batchSize int, collate func(T) (U, error), workers, queueCap int, m ...*metrics.Collector) *Loader[T, U] {
	if workers < 1 {
		workers = 1
	}
	if queueCap < workers {
		queueCap = workers
	}
	if collate == nil {
		collate = func(v T) (U, error) { return any(v).(U), nil }
	}
	mc := metrics.Noop()
	if len(m) > 0 && m[0] != nil {
		mc = m[0]
	}

	l := &Loader[T, U]{
		upstream:  upstream,
		batchSize: batchSize,
		collate:   collate,
		queue:     make(chan qitem[U], queueCap),
		stop:      make(chan struct{}),
		metrics:   mc,
	}

	l.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go l.runWorker()
	}
	go l.announceEOS()

	return l
}

func (l *Loader[T, U]) runWorker() {
	defer l.wg.Done()
	for {
		select {
		case <-l.stop:
			return
		default:
		}

		start := time.Now()
		l.upstreamMu.Lock()
		batch, eos, err := l.upstream.NextN(l.batchSize)
		l.upstreamMu.Unlock()

		if eos {
			return
		}
		if err != nil {
			if !l.send(qitem[U]{err: err}) {
				return
			}
			continue
		}

		val, cerr := l.collate(batch)
		l.metrics.WorkerBusySeconds.Observe(time.Since(start).Seconds())
		if !l.send(qitem[U]{val: val, err: cerr}) {
			return
		}
	}
}

// send blocks on the queue but also honors stop, so a dropped loader
// never leaves a worker blocked on a full queue forever.
func (l *Loader[T, U]) send(it qitem[U]) bool {
	select {
	case l.queue <- it:
		l.metrics.QueueDepth.Set(float64(len(l.queue)))
		return true
	case <-l.stop:
		l.metrics.BatchesDropped.Inc()
		return false
	}
}

// announceEOS waits for every worker to exit (normal exhaustion or
// cancellation) and pushes the single end-of-stream sentinel.
func (l *Loader[T, U]) announceEOS() {
	l.wg.Wait()
	select {
	case l.queue <- qitem[U]{eos: true}:
	case <-l.stop:
	}
}

// Get blocks for the next result. The end-of-stream sentinel is taken off
// the queue exactly once; from then on every Get, including that one,
// returns eos=true with no further blocking.
func (l *Loader[T, U]) Get() (val U, eos bool, err error) {
	if l.gotEOS {
		return val, true, nil
	}
	it := <-l.queue
	l.metrics.QueueDepth.Set(float64(len(l.queue)))
	if it.eos {
		l.gotEOS = true
		return val, true, nil
	}
	if it.err == nil {
		l.metrics.BatchesDelivered.Inc()
	}
	return it.val, false, it.err
}

// Close sets the cancel flag, unblocks any worker parked on a full
// queue, joins every worker, and drains whatever is left buffered.
func (l *Loader[T, U]) Close() error {
	l.stopOnce.Do(func() { close(l.stop) })
	l.wg.Wait()
	for {
		select {
		case <-l.queue:
		default:
			return nil
		}
	}
}
