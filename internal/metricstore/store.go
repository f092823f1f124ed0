// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package metricstore

import "context"

// Backend is the durable wide-column storage contract the writer (C6)
// and fetch path (C9) depend on. Two concrete implementations exist:
// a Cassandra-backed one for production and a sqlite-backed one for
// local development and tests.
type Backend interface {
	// AppendBatch executes one atomic batch of point appends. Each
	// sample's metric value is appended to its key's value list
	// (UPDATE ... SET data = data + [?]).
	AppendBatch(ctx context.Context, samples []Sample) error

	// Fetch reads the raw (time, values) rows for one path within
	// [from, to] at the given rollup/period.
	Fetch(ctx context.Context, tenant, path string, rollup, period int32, from, to int64) ([]Row, error)

	// Close releases the backend's underlying connection(s).
	Close() error
}
