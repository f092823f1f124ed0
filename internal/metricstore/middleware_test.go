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

func TestMiddlewareBaseSampleFansOutToCache(t *testing.T) {
	backend := newFakeBackend()
	writer := NewWriter(backend, nil, 10, 10, 20*time.Millisecond)
	cache := NewRollupCache(writer, time.Second)
	rollups := RollupSet{
		{Window: 10, Period: 1000, Base: true},
		{Window: 60, Period: 1440},
	}
	ms := NewMetricstore(writer, cache, rollups, 10)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go ms.Run(ctx)

	ms.ChannelFor() <- Sample{Tenant: "acme", Path: "p", Rollup: 10, Period: 1000, Time: 1700000000, Metric: 42}

	require.Eventually(t, func() bool {
		rows, _ := backend.Fetch(context.Background(), "acme", "p", 10, 1000, 1700000000, 1700000000)
		return len(rows) == 1
	}, time.Second, 5*time.Millisecond)

	require.Eventually(t, func() bool {
		return cache.Len() == 1
	}, time.Second, 5*time.Millisecond)
}

func TestMiddlewareNonBaseSampleOnlyDepositsIntoCache(t *testing.T) {
	backend := newFakeBackend()
	writer := NewWriter(backend, nil, 10, 10, time.Hour)
	cache := NewRollupCache(writer, time.Second)
	rollups := RollupSet{
		{Window: 10, Period: 1000, Base: true},
		{Window: 60, Period: 1440},
	}
	ms := NewMetricstore(writer, cache, rollups, 10)

	ms.Deposit(Sample{Tenant: "acme", Path: "p", Rollup: 60, Period: 1440, Time: 1700000000, Metric: 7})

	assert.Equal(t, 1, cache.Len())

	rows, err := backend.Fetch(context.Background(), "acme", "p", 60, 1440, 1700000000, 1700000000)
	require.NoError(t, err)
	assert.Len(t, rows, 0)
}
