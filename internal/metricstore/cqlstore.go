// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package metricstore

import (
	"context"
	"fmt"
	"time"

	"github.com/gocql/gocql"
)

// CQLBackend is the production Backend, storing points in one wide
// table `metric(tenant, rollup, period, path, time, data list<double>)`
// with primary key (tenant, rollup, period, path, time). Writes use
// `UPDATE ... USING TTL ? SET data = data + ? WHERE ...`, which is
// idempotent-by-accumulation: re-delivery of a sample grows the list
// rather than overwriting it.
type CQLBackend struct {
	session *gocql.Session
	table   string
}

// CQLConfig configures the Cassandra connection.
type CQLConfig struct {
	Keyspace string   `json:"keyspace"`
	Cluster  []string `json:"cluster"`
	Table    string   `json:"table"`
	Consistency string `json:"consistency"`
}

// NewCQLBackend connects to the configured Cassandra cluster.
// Consistency defaults to ANY: the metric store is write-optimized,
// where durability is not guaranteed per individual write.
func NewCQLBackend(cfg CQLConfig) (*CQLBackend, error) {
	if cfg.Table == "" {
		cfg.Table = "metric"
	}

	cluster := gocql.NewCluster(cfg.Cluster...)
	cluster.Keyspace = cfg.Keyspace
	cluster.Consistency = consistencyFromString(cfg.Consistency)
	cluster.Timeout = 10 * time.Second

	session, err := cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("metricstore: connecting to cassandra: %w", err)
	}

	return &CQLBackend{session: session, table: cfg.Table}, nil
}

func consistencyFromString(s string) gocql.Consistency {
	switch s {
	case "one", "ONE":
		return gocql.One
	case "quorum", "QUORUM":
		return gocql.Quorum
	case "any", "ANY", "":
		return gocql.Any
	default:
		return gocql.Any
	}
}

// AppendBatch issues one atomic batch of UPDATE ... SET data = data +
// [?] statements, one per sample, against the backing keyspace.
func (b *CQLBackend) AppendBatch(ctx context.Context, samples []Sample) error {
	if len(samples) == 0 {
		return nil
	}

	batch := b.session.NewBatch(gocql.LoggedBatch).WithContext(ctx)
	query := fmt.Sprintf(
		"UPDATE %s USING TTL ? SET data = data + ? WHERE tenant = ? AND rollup = ? AND period = ? AND path = ? AND time = ?",
		b.table,
	)

	for _, s := range samples {
		batch.Query(query, s.TTL, []float64{s.Metric}, s.Tenant, s.Rollup, s.Period, s.Path, s.Time)
	}

	return b.session.ExecuteBatch(batch)
}

// Fetch reads the raw rows for one path within [from, to].
func (b *CQLBackend) Fetch(ctx context.Context, tenant, path string, rollup, period int32, from, to int64) ([]Row, error) {
	query := fmt.Sprintf(
		"SELECT time, data FROM %s WHERE tenant = ? AND rollup = ? AND period = ? AND path = ? AND time >= ? AND time <= ?",
		b.table,
	)

	iter := b.session.Query(query, tenant, rollup, period, path, from, to).WithContext(ctx).Iter()

	var rows []Row
	var t int64
	var data []float64
	for iter.Scan(&t, &data) {
		rows = append(rows, Row{Time: t, Values: append([]float64(nil), data...)})
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("metricstore: reading path %q: %w", path, err)
	}

	return rows, nil
}

// Close shuts down the underlying Cassandra session.
func (b *CQLBackend) Close() error {
	b.session.Close()
	return nil
}
