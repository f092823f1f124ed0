// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package metricstore

import (
	"context"
	"sync"
	"time"

	cclog "github.com/ClusterCockpit/cc-lib/v2/ccLogger"
	"github.com/cyanite-go/metriccore/internal/deadletter"
	"github.com/cyanite-go/metriccore/internal/telemetry"
	"github.com/cyanite-go/metriccore/pkg/batch"
)

// Writer is the metric store writer (C6): a single ingress channel
// fed by batches of up to batchSize samples, or every interval,
// whichever trips first. Each batch is committed as one atomic
// batched append against the backend.
type Writer struct {
	backend    Backend
	archive    *deadletter.Archiver
	chanSize   int
	batchSize  int
	interval   time.Duration
	in         chan Sample
}

// NewWriter constructs a Writer. archive may be nil, in which case
// failed batches are only logged and counted, never persisted.
func NewWriter(backend Backend, archive *deadletter.Archiver, chanSize, batchSize int, interval time.Duration) *Writer {
	if chanSize <= 0 {
		chanSize = 10_000
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Writer{
		backend:   backend,
		archive:   archive,
		chanSize:  chanSize,
		batchSize: batchSize,
		interval:  interval,
		in:        make(chan Sample, chanSize),
	}
}

// ChannelFor returns the writer's streaming ingress, matching the
// metric store contract's channel_for().
func (w *Writer) ChannelFor() chan<- Sample {
	return w.in
}

// Insert is the synchronous single-point write API.
func (w *Writer) Insert(ctx context.Context, s Sample) error {
	return w.commit(ctx, []Sample{s})
}

// Run drains the ingress channel through the size-or-time batcher
// until ctx is canceled or the channel is closed, committing each
// batch asynchronously so the batcher itself never blocks on the
// backend. It returns only after every commit it started has finished.
func (w *Writer) Run(ctx context.Context) {
	var inflight sync.WaitGroup
	defer inflight.Wait()

	batch.Run(ctx, w.in, w.batchSize, w.interval, func(items []Sample) {
		// commit runs against a detached context: ctx itself is the
		// cancellation signal that tells the batcher to stop accepting
		// and flush what it has, so it has already fired by the time the
		// final batch reaches here. Using it for the write too would
		// abort every batch flushed during shutdown.
		inflight.Add(1)
		go func(batch []Sample) {
			defer inflight.Done()
			if err := w.commit(context.Background(), batch); err != nil {
				cclog.Errorf("metricstore: batch write of %d samples failed: %v", len(batch), err)
			}
		}(items)
	})
}

// commit issues one atomic append batch, updating operational
// counters and archiving to dead-letter storage on failure. Exceptions
// are caught and logged; they never halt the pipeline.
func (w *Writer) commit(ctx context.Context, samples []Sample) error {
	if err := w.backend.AppendBatch(ctx, samples); err != nil {
		telemetry.StoreErrorTotal.Inc()
		if w.archive != nil {
			w.archive.Archive(ctx, samples, err)
		}
		return &BatchWriteFailedError{Size: len(samples), Cause: err}
	}

	telemetry.StoreSuccessTotal.Inc()
	for _, s := range samples {
		telemetry.TenantWriteTotal.WithLabelValues(s.Tenant).Inc()
	}
	return nil
}
