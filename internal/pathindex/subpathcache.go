// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pathindex

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// StoreToDepth is the maximum document depth the sub-path cache is
// responsible for. Shallow prefixes are pathologically hot (millions
// of metrics can share "datacenter.rack42"), so caching "exists?" for
// them avoids a search-index round trip per sample; deeper prefixes
// are cheap enough in practice that omitting them from the cache keeps
// its footprint bounded.
const StoreToDepth = 2

// SubPathCache is a process-local, read-mostly record of path strings
// already known to exist in the index as non-leaf documents with
// depth <= StoreToDepth. It is an LRU rather than an unbounded set
// (see spec.md Design Notes) so memory stays bounded even under
// cardinality explosions in the tenant/path space, with a capacity
// floor generous enough that shallow prefixes are practically never
// evicted in normal operation.
type SubPathCache struct {
	cache *lru.Cache[string, struct{}]
}

// NewSubPathCache creates a cache bounded to capacity entries. The
// caller should size capacity well above the expected population of
// shallow (depth <= StoreToDepth) prefixes across all tenants.
func NewSubPathCache(capacity int) *SubPathCache {
	if capacity <= 0 {
		capacity = 1_000_000
	}
	c, _ := lru.New[string, struct{}](capacity)
	return &SubPathCache{cache: c}
}

func key(tenant, path string) string {
	return tenant + "_" + path
}

// Contains reports whether path at the given depth is already known to
// exist as a non-leaf document. Depths beyond StoreToDepth are never
// cached and so are always reported as not present, which simply means
// the caller must re-check the index for them.
func (c *SubPathCache) Contains(tenant, path string, depth int) bool {
	if depth > StoreToDepth {
		return false
	}
	_, ok := c.cache.Get(key(tenant, path))
	return ok
}

// Add unions a single known-existing shallow path into the cache.
func (c *SubPathCache) Add(tenant, path string, depth int) {
	if depth > StoreToDepth {
		return
	}
	c.cache.Add(key(tenant, path), struct{}{})
}

// AddBatch unions every doc in docs whose depth qualifies for caching.
// Mutated only by the filter stage of the pipeline (single-writer
// pattern); concurrent readers may race safely since the worst case of
// a stale miss is a redundant existence check, never a correctness bug.
func (c *SubPathCache) AddBatch(docs []Doc) {
	for _, d := range docs {
		if !d.Leaf {
			c.Add(d.Tenant, d.Path, d.Depth)
		}
	}
}

// Len returns the current number of cached entries, for diagnostics.
func (c *SubPathCache) Len() int {
	return c.cache.Len()
}
