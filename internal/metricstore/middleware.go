// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package metricstore

import "context"

// Metricstore composes the writer (C6) and rollup cache (C7) behind
// one contract (C8). On every sample: base-resolution samples are
// forwarded raw to the writer and also deposited into the cache for
// every configured non-base resolution; non-base samples are
// deposited only into the cache entry matching their own resolution.
// Reads are delegated straight to the backend — the cache is
// write-through from its own flush path and never consulted on read.
type Metricstore struct {
	writer  *Writer
	cache   *RollupCache
	rollups RollupSet

	in chan Sample
}

// NewMetricstore wires writer and cache together under the configured
// rollup set. Exactly one entry in rollups must be marked Base.
func NewMetricstore(writer *Writer, cache *RollupCache, rollups RollupSet, chanSize int) *Metricstore {
	if chanSize <= 0 {
		chanSize = 10_000
	}
	return &Metricstore{writer: writer, cache: cache, rollups: rollups, in: make(chan Sample, chanSize)}
}

// ChannelFor returns the streaming ingress samples are pushed into,
// matching the metric store contract's channel_for(). Every sample
// sent here is routed through Deposit's fan-out, unlike the writer's
// own channel, which receives raw base-resolution samples and the
// rollup cache's flushed aggregates without any fan-out.
func (m *Metricstore) ChannelFor() chan<- Sample {
	return m.in
}

// Deposit routes sample according to its own Rollup field: direct
// writes of the base resolution also fan out into the cache for every
// other configured resolution, so a single base sample populates all
// derived resolutions.
func (m *Metricstore) Deposit(sample Sample) {
	base, hasBase := m.rollups.Base()

	if hasBase && sample.Rollup == base.Window {
		m.writer.ChannelFor() <- sample
		for _, r := range m.rollups.NonBase() {
			m.cache.Put(r, sample)
		}
		return
	}

	for _, r := range m.rollups {
		if r.Window == sample.Rollup {
			m.cache.Put(r, sample)
			return
		}
	}
}

// Insert is the synchronous single-point write API, delegating
// directly to the writer.
func (m *Metricstore) Insert(ctx context.Context, s Sample) error {
	return m.writer.Insert(ctx, s)
}

// Run fans every ingested sample out via Deposit and, in parallel,
// drains the writer's batcher. Callers should run this in its own
// goroutine alongside the cache's sweeper. After ctx is canceled it
// returns only once the writer's Run has returned.
func (m *Metricstore) Run(ctx context.Context) {
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		m.writer.Run(ctx)
	}()
	defer func() { <-writerDone }()

	for {
		select {
		case <-ctx.Done():
			return
		case s, ok := <-m.in:
			if !ok {
				return
			}
			m.Deposit(s)
		}
	}
}
