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

func TestWriterInsertSynchronous(t *testing.T) {
	backend := newFakeBackend()
	w := NewWriter(backend, nil, 10, 5, time.Second)

	err := w.Insert(context.Background(), Sample{Tenant: "acme", Path: "a.b", Rollup: 60, Period: 1440, Time: 100, Metric: 5})
	require.NoError(t, err)

	rows, err := backend.Fetch(context.Background(), "acme", "a.b", 60, 1440, 0, 200)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []float64{5}, rows[0].Values)
}

func TestWriterAccumulatesRepeatedSamples(t *testing.T) {
	backend := newFakeBackend()
	w := NewWriter(backend, nil, 10, 5, time.Second)

	for i := 0; i < 5; i++ {
		err := w.Insert(context.Background(), Sample{
			Tenant: "acme", Path: "a.b", Rollup: 60, Period: 1440, Time: 1700000040, Metric: float64(i + 1),
		})
		require.NoError(t, err)
	}

	rows, err := backend.Fetch(context.Background(), "acme", "a.b", 60, 1440, 1700000040, 1700000040)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []float64{1, 2, 3, 4, 5}, rows[0].Values)
}

func TestWriterBatchesViaChannel(t *testing.T) {
	backend := newFakeBackend()
	w := NewWriter(backend, nil, 10, 3, 20*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	for i := 0; i < 3; i++ {
		w.ChannelFor() <- Sample{Tenant: "acme", Path: "x", Rollup: 10, Period: 10, Time: int64(i), Metric: 1}
	}

	require.Eventually(t, func() bool {
		rows, _ := backend.Fetch(context.Background(), "acme", "x", 10, 10, 0, 10)
		return len(rows) == 3
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done
}
