// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package ingest wires one incoming sample envelope into both
// collaborating subsystems: the path index pipeline (which only needs
// the sample's tenant and path) and the metric store (which needs the
// full point). Both subsystems' ingress channels are exported through
// their own ChannelFor methods; Fanout is the one place that sends a
// sample to both of them.
package ingest

import (
	"encoding/json"
	"fmt"

	"github.com/cyanite-go/metriccore/internal/metricstore"
	"github.com/cyanite-go/metriccore/internal/pathindex"
	"github.com/cyanite-go/metriccore/internal/telemetry"
)

// Sinks bundles the two channels a sample must reach.
type Sinks struct {
	PathIndex chan<- pathindex.TenantPath
	Metric    chan<- metricstore.Sample
}

// Envelope is the wire shape of one ingested sample, as decoded from
// a transport message body (e.g. a NATS payload).
type Envelope struct {
	Tenant string  `json:"tenant"`
	Path   string  `json:"path"`
	Time   int64   `json:"time"`
	Metric float64 `json:"metric"`
	Rollup int32   `json:"rollup"`
	Period int32   `json:"period"`
	TTL    int32   `json:"ttl"`
}

// DecodeEnvelope unmarshals one JSON-encoded sample envelope.
func DecodeEnvelope(data []byte) (Envelope, error) {
	var e Envelope
	if err := json.Unmarshal(data, &e); err != nil {
		return Envelope{}, fmt.Errorf("ingest: decoding sample envelope: %w", err)
	}
	if e.Path == "" {
		return Envelope{}, fmt.Errorf("ingest: sample envelope missing path")
	}
	return e, nil
}

// Fanout pushes one decoded sample into both the path index and
// metric store ingress channels. It blocks on whichever channel fills
// first, per the backpressure model shared by both subsystems.
func Fanout(sinks Sinks, e Envelope) {
	sinks.PathIndex <- pathindex.TenantPath{Tenant: e.Tenant, Path: e.Path}
	sinks.Metric <- metricstore.Sample{
		Tenant: e.Tenant,
		Path:   e.Path,
		Time:   e.Time,
		Metric: e.Metric,
		Rollup: e.Rollup,
		Period: e.Period,
		TTL:    e.TTL,
	}
	telemetry.TenantWriteTotal.WithLabelValues(e.Tenant).Inc()
}
