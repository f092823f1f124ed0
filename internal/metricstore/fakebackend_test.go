// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package metricstore

import (
	"context"
	"fmt"
	"sync"
)

// fakeBackend is an in-memory Backend used by tests in place of
// Cassandra or SQLite.
type fakeBackend struct {
	mu   sync.Mutex
	rows map[string][]Row

	failNext bool
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{rows: make(map[string][]Row)}
}

func rowKey(tenant, path string, rollup, period int32) string {
	return fmt.Sprintf("%s|%s|%d|%d", tenant, path, rollup, period)
}

func (b *fakeBackend) AppendBatch(ctx context.Context, samples []Sample) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.failNext {
		b.failNext = false
		return assertError{"injected failure"}
	}

	for _, s := range samples {
		key := rowKey(s.Tenant, s.Path, s.Rollup, s.Period)
		rows := b.rows[key]

		found := false
		for i, r := range rows {
			if r.Time == s.Time {
				rows[i].Values = append(rows[i].Values, s.Metric)
				found = true
				break
			}
		}
		if !found {
			rows = append(rows, Row{Time: s.Time, Values: []float64{s.Metric}})
		}
		b.rows[key] = rows
	}
	return nil
}

func (b *fakeBackend) Fetch(ctx context.Context, tenant, path string, rollup, period int32, from, to int64) ([]Row, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []Row
	for _, r := range b.rows[rowKey(tenant, path, rollup, period)] {
		if r.Time >= from && r.Time <= to {
			out = append(out, r)
		}
	}
	return out, nil
}

func (b *fakeBackend) Close() error { return nil }

type assertError struct{ msg string }

func (e assertError) Error() string { return e.msg }
