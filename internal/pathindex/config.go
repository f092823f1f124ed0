// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pathindex

import (
	"encoding/json"
	"time"

	"github.com/cyanite-go/metriccore/internal/configutil"
)

// Config configures the path store: its backing search index and the
// streaming pipeline's sizing.
type Config struct {
	Index                string   `json:"index"`
	Addresses            []string `json:"addresses"`
	ChanSize             int      `json:"chan_size"`
	BatchSize            int      `json:"batch_size"`
	BatchIntervalSeconds int      `json:"batch_interval_seconds"`
	QueryPathsThreshold  int      `json:"query_paths_threshold"`
	CacheCapacity        int      `json:"cache_capacity"`
	MultiGetRPS          int      `json:"multi_get_rps"`
}

const configSchema = `{
	"type": "object",
	"description": "Configuration for the path index store.",
	"properties": {
		"index": {
			"description": "Name of the search index holding path documents. Defaults to cyanite_paths.",
			"type": "string"
		},
		"addresses": {
			"description": "Elasticsearch node addresses.",
			"type": "array",
			"items": { "type": "string" }
		},
		"chan_size": {
			"description": "Capacity of each pipeline stage's channel.",
			"type": "integer"
		},
		"batch_size": {
			"description": "Maximum batch size per pipeline stage.",
			"type": "integer"
		},
		"batch_interval_seconds": {
			"description": "Maximum time a partial batch waits before flushing.",
			"type": "integer"
		},
		"query_paths_threshold": {
			"description": "Maximum hit count a path query may return before failing with TooManyPaths. Zero means unlimited.",
			"type": "integer"
		},
		"cache_capacity": {
			"description": "Maximum entries retained in the sub-path cache.",
			"type": "integer"
		},
		"multi_get_rps": {
			"description": "Maximum Stage B multi-get requests per second against the search index. Zero means unlimited.",
			"type": "integer"
		}
	},
	"required": ["index", "addresses"]
}`

// Validate checks raw against the path store's configuration schema.
func Validate(raw json.RawMessage) error {
	return configutil.Validate(configSchema, raw)
}

// BatchInterval returns the configured batch interval as a
// time.Duration, defaulting to 10s.
func (c Config) BatchInterval() time.Duration {
	if c.BatchIntervalSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.BatchIntervalSeconds) * time.Second
}
