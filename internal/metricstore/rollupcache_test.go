// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package metricstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRollupCacheFlushesAverage(t *testing.T) {
	backend := newFakeBackend()
	writer := NewWriter(backend, nil, 10, 10, 20*time.Millisecond)
	cache := NewRollupCache(writer, 0)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go writer.Run(ctx)

	rollup := Rollup{Window: 60, Period: 1440}
	bucket := int64(1700000040) / 60 * 60

	for _, v := range []float64{1, 2, 3, 4, 5} {
		cache.Put(rollup, Sample{Tenant: "acme", Path: "web.srv1.cpu.user", Time: bucket, Metric: v})
	}
	require.Equal(t, 1, cache.Len())

	// bucket is a fixed historical timestamp, so it is already well
	// past its close time relative to wall-clock now; a single sweep
	// flushes it immediately.
	cache.Sweep(ctx)

	require.Eventually(t, func() bool {
		rows, _ := backend.Fetch(context.Background(), "acme", "web.srv1.cpu.user", 60, 1440, bucket, bucket)
		return len(rows) == 1
	}, time.Second, 5*time.Millisecond)

	rows, err := backend.Fetch(context.Background(), "acme", "web.srv1.cpu.user", 60, 1440, bucket, bucket)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 3.0, rows[0].Values[0])
	assert.Equal(t, 0, cache.Len())
}

func TestRollupCacheShardingIsStable(t *testing.T) {
	backend := newFakeBackend()
	writer := NewWriter(backend, nil, 10, 10, time.Hour)
	cache := NewRollupCache(writer, time.Second)

	rollup := Rollup{Window: 10, Period: 100}
	cache.Put(rollup, Sample{Tenant: "acme", Path: "p", Time: 0, Metric: 1})

	sh1 := cache.shardFor("acme", "p")
	sh2 := cache.shardFor("acme", "p")
	assert.Same(t, sh1, sh2)
}
