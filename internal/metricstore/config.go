// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package metricstore

import (
	"encoding/json"
	"time"

	"github.com/cyanite-go/metriccore/internal/configutil"
	"github.com/cyanite-go/metriccore/internal/deadletter"
)

// Config configures the metric store writer and rollup cache
// middleware.
type Config struct {
	Backend              string              `json:"backend"`
	Keyspace             string              `json:"keyspace"`
	Cluster              []string            `json:"cluster"`
	SQLitePath           string              `json:"sqlite_path"`
	ChanSize             int                 `json:"chan_size"`
	BatchSize            int                 `json:"batch_size"`
	BatchIntervalSeconds int                 `json:"batch_interval_seconds"`
	GraceSeconds         int                 `json:"grace_seconds"`
	SweepIntervalSeconds int                 `json:"sweep_interval_seconds"`
	Rollups              []RollupConfigEntry `json:"rollups"`
	DeadLetter           deadletter.Config   `json:"dead_letter"`
}

// RollupConfigEntry is the JSON shape of one configured resolution.
type RollupConfigEntry struct {
	Rollup int32 `json:"rollup"`
	Period int32 `json:"period"`
	Base   bool  `json:"base"`
}

const configSchema = `{
	"type": "object",
	"description": "Configuration for the metric store and its rollup cache middleware.",
	"properties": {
		"backend": {
			"description": "Storage backend: 'cassandra' or 'sqlite'.",
			"type": "string",
			"enum": ["cassandra", "sqlite"]
		},
		"keyspace": { "type": "string" },
		"cluster": { "type": "array", "items": { "type": "string" } },
		"sqlite_path": { "type": "string" },
		"chan_size": { "type": "integer" },
		"batch_size": { "type": "integer" },
		"batch_interval_seconds": { "type": "integer" },
		"grace_seconds": { "type": "integer" },
		"sweep_interval_seconds": { "type": "integer" },
		"rollups": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"rollup": { "type": "integer" },
					"period": { "type": "integer" },
					"base": { "type": "boolean" }
				},
				"required": ["rollup", "period"]
			}
		}
	},
	"required": ["backend", "rollups"]
}`

// Validate checks raw against the metric store's configuration schema.
func Validate(raw json.RawMessage) error {
	return configutil.Validate(configSchema, raw)
}

// BatchInterval returns the configured batch interval, defaulting to
// 5s per the writer's spec default.
func (c Config) BatchInterval() time.Duration {
	if c.BatchIntervalSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.BatchIntervalSeconds) * time.Second
}

// Grace returns the configured rollup-cache grace window, defaulting
// to 2s.
func (c Config) Grace() time.Duration {
	if c.GraceSeconds <= 0 {
		return 2 * time.Second
	}
	return time.Duration(c.GraceSeconds) * time.Second
}

// SweepInterval returns the configured sweeper period, defaulting to
// 5s.
func (c Config) SweepInterval() time.Duration {
	if c.SweepIntervalSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.SweepIntervalSeconds) * time.Second
}

// ToRollupSet converts the configured entries into a RollupSet.
func (c Config) ToRollupSet() RollupSet {
	set := make(RollupSet, len(c.Rollups))
	for i, r := range c.Rollups {
		set[i] = Rollup{Window: r.Rollup, Period: r.Period, Base: r.Base}
	}
	return set
}
