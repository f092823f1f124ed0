// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package metricstore

import (
	"context"
	"sync"
	"time"

	"github.com/cyanite-go/metriccore/pkg/aggregate"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// fetchTimeout bounds every individual per-path read; exceeding it
// fails the whole fetch (C9).
const fetchTimeout = 5 * time.Minute

// fetchConcurrency bounds how many per-path reads run at once, so a
// query naming hundreds of paths doesn't open hundreds of simultaneous
// backend connections.
const fetchConcurrency = 16

// Fetch issues one parallel read per path, reduces each row's value
// list with the per-path (or overridden) reducer, and aligns the
// results onto a common timegrid at step rollup, running from from
// aligned down to a multiple of rollup through min(to, now) aligned
// down the same way. Missing grid points are left nil.
func Fetch(ctx context.Context, backend Backend, agg string, paths []string, tenant string, rollup, period int32, from, to int64) (*FetchResult, error) {
	now := nowSeconds()
	if to > now {
		to = now
	}

	r := Rollup{Window: rollup}
	gridFrom := r.AlignDown(from)
	gridTo := r.AlignDown(to)

	g, gctx := errgroup.WithContext(ctx)
	sem := semaphore.NewWeighted(fetchConcurrency)
	series := make(map[string][]*float64, len(paths))
	var mu sync.Mutex

	for _, path := range paths {
		path := path
		g.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				return err
			}
			defer sem.Release(1)

			fctx, cancel := context.WithTimeout(gctx, fetchTimeout)
			defer cancel()

			rows, err := backend.Fetch(fctx, tenant, path, rollup, period, gridFrom, gridTo)
			if err != nil {
				if fctx.Err() != nil {
					return &FetchTimeoutError{Path: path}
				}
				return err
			}

			aligned := alignRows(rows, path, agg, gridFrom, gridTo, rollup)

			mu.Lock()
			series[path] = aligned
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &FetchResult{From: gridFrom, To: gridTo, Step: rollup, Series: series}, nil
}

// alignRows collapses each row's value list with the selected reducer
// and places the scalar at its grid index, leaving unvisited grid
// points nil.
func alignRows(rows []Row, path, agg string, from, to int64, rollup int32) []*float64 {
	n := int((to-from)/int64(rollup)) + 1
	out := make([]*float64, n)

	reducer := aggregate.ForPath(path, agg)
	for _, row := range rows {
		if row.Time < from || row.Time > to || len(row.Values) == 0 {
			continue
		}
		idx := int((row.Time - from) / int64(rollup))
		if idx < 0 || idx >= n {
			continue
		}
		v := reducer(row.Values)
		out[idx] = &v
	}
	return out
}

// MaxPoints is exposed for clients that wish to bound query cost
// ahead of time: ((to-from)/rollup + 1) * len(paths).
func MaxPoints(from, to int64, rollup int32, paths int) int64 {
	if rollup <= 0 {
		return 0
	}
	return ((to-from)/int64(rollup) + 1) * int64(paths)
}
