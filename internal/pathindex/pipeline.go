// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pathindex

import (
	"context"
	"time"

	cclog "github.com/ClusterCockpit/cc-lib/v2/ccLogger"
	"github.com/cyanite-go/metriccore/internal/telemetry"
	"github.com/cyanite-go/metriccore/pkg/batch"
	"golang.org/x/time/rate"
)

// Pipeline runs the three-stage streaming path index writer (C4): an
// ingress channel of (tenant, path) pairs is expanded into ancestor
// documents, filtered against the search index and the sub-path
// cache, and the surviving new documents are bulk-upserted.
type Pipeline struct {
	client    IndexClient
	cache     *SubPathCache
	limiter   *rate.Limiter
	chanSize  int
	batchSize int
	interval  time.Duration

	in chan TenantPath
}

// NewPipeline constructs a Pipeline. chanSize bounds every internal
// stage channel (spec default 10000); batchSize and interval bound
// every stage's batcher (spec defaults 300 and 10s). multiGetRPS caps
// how often Stage B may call the index's multi-get, protecting it from
// an ingest burst; zero leaves it unthrottled.
func NewPipeline(client IndexClient, cache *SubPathCache, chanSize, batchSize int, interval time.Duration, multiGetRPS int) *Pipeline {
	if chanSize <= 0 {
		chanSize = 10_000
	}
	if batchSize <= 0 {
		batchSize = 300
	}
	if interval <= 0 {
		interval = 10 * time.Second
	}

	var limiter *rate.Limiter
	if multiGetRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(multiGetRPS), multiGetRPS)
	}

	return &Pipeline{
		client:    client,
		cache:     cache,
		limiter:   limiter,
		chanSize:  chanSize,
		batchSize: batchSize,
		interval:  interval,
		in:        make(chan TenantPath, chanSize),
	}
}

// ChannelFor returns the streaming ingress for the pipeline, matching
// the path store contract's channel_for().
func (p *Pipeline) ChannelFor() chan<- TenantPath {
	return p.in
}

// Run wires the three stages together and blocks until ctx is
// canceled and every stage has flushed its own partial batch and
// returned; documents still queued between stages at that point are
// not written. Call it once, typically from its own goroutine at
// process startup.
func (p *Pipeline) Run(ctx context.Context) {
	expanded := make(chan Doc, p.chanSize)
	toWrite := make(chan Doc, p.chanSize)

	done := make(chan struct{}, 3)

	go func() {
		defer func() { done <- struct{}{} }()
		batch.Run(ctx, p.in, p.batchSize, p.interval, func(items []TenantPath) {
			p.stageExpand(items, expanded)
		})
		close(expanded)
	}()

	go func() {
		defer func() { done <- struct{}{} }()
		// stageFilter/stageWrite run against a detached context: ctx is
		// the batcher's own stop signal, already canceled by the time a
		// final drain batch reaches here, and must not also abort that
		// batch's index requests.
		batch.Run(ctx, expanded, p.batchSize, p.interval, func(items []Doc) {
			p.stageFilter(context.Background(), items, toWrite)
		})
		close(toWrite)
	}()

	go func() {
		defer func() { done <- struct{}{} }()
		batch.Run(ctx, toWrite, p.batchSize, p.interval, func(items []Doc) {
			p.stageWrite(context.Background(), items)
		})
	}()

	<-done
	<-done
	<-done
}

// stageExpand is Stage A: decompose every (tenant, path) pair and
// deduplicate by path within the batch before forwarding.
func (p *Pipeline) stageExpand(items []TenantPath, out chan<- Doc) {
	seen := make(map[string]struct{}, len(items)*2)
	for _, tp := range items {
		for _, d := range Decompose(tp.Tenant, tp.Path, p.cache) {
			key := d.Tenant + "_" + d.Path
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out <- d
		}
	}
}

// stageFilter is Stage B: multi-get the batch, union existing shallow
// docs into the cache, and forward only missing documents.
func (p *Pipeline) stageFilter(ctx context.Context, items []Doc, out chan<- Doc) {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			cclog.Warnf("pathindex: stage B rate limit wait aborted, dropping batch of %d docs: %v", len(items), err)
			return
		}
	}

	ids := make([]string, len(items))
	for i, d := range items {
		ids[i] = d.ID()
	}

	found, err := p.client.MultiGet(ctx, ids)
	if err != nil {
		cclog.Errorf("pathindex: stage B multi-get failed, dropping batch of %d docs: %v", len(items), err)
		return
	}

	existing := make([]Doc, 0, len(items))
	for _, d := range items {
		if found[d.ID()] {
			existing = append(existing, d)
			continue
		}
		out <- d
	}
	p.cache.AddBatch(existing)
}

// stageWrite is Stage C: bulk-upsert the missing documents. Failures
// are logged and the batch dropped; at-least-once delivery means a
// later sample of the same path retries it.
func (p *Pipeline) stageWrite(ctx context.Context, items []Doc) {
	if err := p.client.BulkUpsert(ctx, items); err != nil {
		cclog.Errorf("pathindex: stage C bulk upsert failed, dropping batch of %d docs: %v", len(items), err)
		return
	}
	telemetry.IndexCreateTotal.Add(float64(len(items)))
}

// Register is the degenerate single-path synchronous API for
// non-streaming callers: expand, check existence per document, put
// missing ones individually. It never updates the sub-path cache.
func Register(ctx context.Context, client IndexClient, tenant, path string) error {
	docs := Decompose(tenant, path, nil)

	ids := make([]string, len(docs))
	for i, d := range docs {
		ids[i] = d.ID()
	}

	found, err := client.MultiGet(ctx, ids)
	if err != nil {
		return err
	}

	missing := make([]Doc, 0, len(docs))
	for _, d := range docs {
		if !found[d.ID()] {
			missing = append(missing, d)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return client.BulkUpsert(ctx, missing)
}
