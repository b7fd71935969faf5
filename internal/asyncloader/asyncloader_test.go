// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of dareblopy.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package asyncloader_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/podgorskiy/DareBlopy/internal/asyncloader"
)

// intUpstream hands out sequential integers in batches, like a yielder
// over a flat record stream.
type intUpstream struct {
	mu    sync.Mutex
	next  int
	total int
}

func (u *intUpstream) NextN(b int) ([]int, bool, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.next >= u.total {
		return nil, true, nil
	}
	end := u.next + b
	if end > u.total {
		end = u.total
	}
	out := make([]int, end-u.next)
	for i := range out {
		out[i] = u.next + i
	}
	u.next = end
	return out, false, nil
}

func TestLoaderW1PreservesOrder(t *testing.T) {
	up := &intUpstream{total: 40}
	l := asyncloader.New[[]int, []int](up, 8, asyncloader.Identity[[]int], 1, 16)
	defer l.Close()

	for start := 0; start < 40; start += 8 {
		batch, eos, err := l.Get()
		require.NoError(t, err)
		require.False(t, eos)
		end := start + 8
		if end > 40 {
			end = 40
		}
		want := make([]int, end-start)
		for i := range want {
			want[i] = start + i
		}
		require.Equal(t, want, batch)
	}

	_, eos, err := l.Get()
	require.NoError(t, err)
	require.True(t, eos)

	// The sentinel is sticky.
	_, eos, err = l.Get()
	require.NoError(t, err)
	require.True(t, eos)
}

func TestLoaderMultiWorkerDeliversFullMultiset(t *testing.T) {
	up := &intUpstream{total: 500}
	l := asyncloader.New[[]int, []int](up, 7, asyncloader.Identity[[]int], 4, 8)
	defer l.Close()

	seen := make(map[int]bool, 500)
	for {
		batch, eos, err := l.Get()
		require.NoError(t, err)
		if eos {
			break
		}
		for _, v := range batch {
			require.False(t, seen[v], "duplicate delivery of %d", v)
			seen[v] = true
		}
	}
	require.Len(t, seen, 500)
}

func TestLoaderGracefulDropNoDeadlock(t *testing.T) {
	up := &intUpstream{total: 10000}
	l := asyncloader.New[[]int, []int](up, 1, asyncloader.Identity[[]int], 4, 4)

	for i := 0; i < 3; i++ {
		_, eos, err := l.Get()
		require.NoError(t, err)
		require.False(t, eos)
	}

	require.NoError(t, l.Close())
}
