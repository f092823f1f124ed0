// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package metricstore

import "fmt"

// NewBackend constructs the Backend selected by cfg.Backend.
func NewBackend(cfg Config) (Backend, error) {
	switch cfg.Backend {
	case "cassandra":
		return NewCQLBackend(CQLConfig{Keyspace: cfg.Keyspace, Cluster: cfg.Cluster})
	case "sqlite":
		return NewSQLiteBackend(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("metricstore: unknown backend %q", cfg.Backend)
	}
}
