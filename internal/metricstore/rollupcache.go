// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package metricstore

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	cclog "github.com/ClusterCockpit/cc-lib/v2/ccLogger"
	"github.com/cyanite-go/metriccore/pkg/aggregate"
	"github.com/go-co-op/gocron/v2"
)

const shardCount = 32

// rollupKey identifies one rollup cache entry.
type rollupKey struct {
	tenant     string
	rollup     int32
	period     int32
	bucketTime int64
	path       string
}

type rollupEntry struct {
	values     []float64
	ttl        int32
	lastUpdate time.Time
}

type shard struct {
	mu      sync.Mutex
	entries map[rollupKey]*rollupEntry
}

// RollupCache maintains in-memory partial aggregates keyed by
// (tenant, rollup, period, bucket-time, path) (C7). Map access is
// serialized per shard, partitioned by hash(tenant, path), so no
// global lock is ever held. A background sweeper closes buckets whose
// window has passed and flushes them downstream through the reducer
// selected for their path.
type RollupCache struct {
	shards    [shardCount]*shard
	downstream *Writer
	grace     time.Duration
	scheduler gocron.Scheduler
}

// NewRollupCache constructs a cache that flushes closed buckets into
// downstream. grace is the small window a bucket is allowed to remain
// open past its nominal close time before being swept.
func NewRollupCache(downstream *Writer, grace time.Duration) *RollupCache {
	if grace <= 0 {
		grace = 2 * time.Second
	}
	c := &RollupCache{downstream: downstream, grace: grace}
	for i := range c.shards {
		c.shards[i] = &shard{entries: make(map[rollupKey]*rollupEntry)}
	}
	return c
}

// StartSweeper schedules the periodic bucket-close sweep at the given
// interval using a gocron scheduler, returning a stop function.
func (c *RollupCache) StartSweeper(ctx context.Context, interval time.Duration) (func(), error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	_, err = s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() { c.Sweep(ctx) }),
	)
	if err != nil {
		return nil, err
	}

	c.scheduler = s
	s.Start()

	return func() { _ = s.Shutdown() }, nil
}

func (c *RollupCache) shardFor(tenant, path string) *shard {
	h := fnv.New32a()
	h.Write([]byte(tenant))
	h.Write([]byte{0})
	h.Write([]byte(path))
	return c.shards[h.Sum32()%shardCount]
}

// Put appends sample's metric value into its entry, creating the
// entry (recording ttl and bucket alignment) on first write.
func (c *RollupCache) Put(r Rollup, sample Sample) {
	bucketTime := r.AlignDown(sample.Time)
	key := rollupKey{
		tenant:     sample.Tenant,
		rollup:     r.Window,
		period:     r.Period,
		bucketTime: bucketTime,
		path:       sample.Path,
	}

	sh := c.shardFor(sample.Tenant, sample.Path)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	e, ok := sh.entries[key]
	if !ok {
		e = &rollupEntry{ttl: r.TTL()}
		sh.entries[key] = e
	}
	e.values = append(e.values, sample.Metric)
	e.lastUpdate = time.Now()
}

// Sweep closes and flushes every entry whose bucket-time + rollup <
// now - grace, emitting one aggregated sample per entry into the
// writer's channel and removing it from the cache. A bucket flushed
// while still technically open (a late sample arrives afterward)
// simply produces a second, single-value write for that bucket,
// tolerated under the store's append semantics.
func (c *RollupCache) Sweep(ctx context.Context) {
	now := time.Now().Unix()
	grace := int64(c.grace.Seconds())

	for _, sh := range c.shards {
		sh.mu.Lock()
		var toFlush []struct {
			key rollupKey
			e   *rollupEntry
		}
		for k, e := range sh.entries {
			if k.bucketTime+int64(k.rollup) < now-grace {
				toFlush = append(toFlush, struct {
					key rollupKey
					e   *rollupEntry
				}{k, e})
				delete(sh.entries, k)
			}
		}
		sh.mu.Unlock()

		for _, f := range toFlush {
			c.flush(ctx, f.key, f.e)
		}
	}
}

func (c *RollupCache) flush(ctx context.Context, key rollupKey, e *rollupEntry) {
	reducer := aggregate.ForPath(key.path, "")
	value := reducer(e.values)

	sample := Sample{
		Tenant: key.tenant,
		Path:   key.path,
		Time:   key.bucketTime,
		Metric: value,
		Rollup: key.rollup,
		Period: key.period,
		TTL:    e.ttl,
	}

	select {
	case c.downstream.ChannelFor() <- sample:
	case <-ctx.Done():
		cclog.Warnf("metricstore: rollup flush for %s/%s aborted by shutdown", key.tenant, key.path)
	}
}

// Len reports the total number of open entries, for diagnostics.
func (c *RollupCache) Len() int {
	n := 0
	for _, sh := range c.shards {
		sh.mu.Lock()
		n += len(sh.entries)
		sh.mu.Unlock()
	}
	return n
}
