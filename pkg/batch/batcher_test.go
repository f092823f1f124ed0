// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package batch

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunFlushesOnSize(t *testing.T) {
	in := make(chan int, 10)
	var mu sync.Mutex
	var flushes [][]int

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		Run(ctx, in, 3, time.Hour, func(batch []int) {
			mu.Lock()
			defer mu.Unlock()
			cp := append([]int(nil), batch...)
			flushes = append(flushes, cp)
		})
		close(done)
	}()

	for i := 0; i < 6; i++ {
		in <- i
	}
	close(in)
	<-done

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, flushes, 2)
	assert.Equal(t, []int{0, 1, 2}, flushes[0])
	assert.Equal(t, []int{3, 4, 5}, flushes[1])
}

func TestRunFlushesOnInterval(t *testing.T) {
	in := make(chan int, 10)
	var mu sync.Mutex
	var flushes [][]int

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		Run(ctx, in, 100, 20*time.Millisecond, func(batch []int) {
			mu.Lock()
			defer mu.Unlock()
			flushes = append(flushes, append([]int(nil), batch...))
		})
		close(done)
	}()

	in <- 1
	in <- 2

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(flushes) == 1
	}, time.Second, 5*time.Millisecond)

	close(in)
	<-done
}

func TestRunFlushesRemainderOnClose(t *testing.T) {
	in := make(chan int, 10)
	var mu sync.Mutex
	var flushes [][]int

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		Run(ctx, in, 10, time.Hour, func(batch []int) {
			mu.Lock()
			defer mu.Unlock()
			flushes = append(flushes, append([]int(nil), batch...))
		})
		close(done)
	}()

	in <- 1
	in <- 2
	close(in)
	<-done

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, flushes, 1)
	assert.Equal(t, []int{1, 2}, flushes[0])
}
