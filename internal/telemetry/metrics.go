// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package telemetry holds the diagnostic counters emitted by the
// ingestion core. They are purely observational: nothing in the core
// reads them back to gate behavior.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// IndexCreateTotal counts path documents successfully bulk-upserted
	// into the search index.
	IndexCreateTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "metriccore",
		Name:      "index_create_total",
		Help:      "Number of path index documents created.",
	})

	// StoreSuccessTotal counts metric store batches committed
	// successfully.
	StoreSuccessTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "metriccore",
		Name:      "store_success_total",
		Help:      "Number of metric store batches written successfully.",
	})

	// StoreErrorTotal counts metric store batches that failed to
	// commit and were dropped.
	StoreErrorTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "metriccore",
		Name:      "store_error_total",
		Help:      "Number of metric store batches that failed to write.",
	})

	// TenantWriteTotal counts samples accepted per tenant.
	TenantWriteTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "metriccore",
		Name:      "tenant_write_total",
		Help:      "Number of samples accepted, labeled by tenant.",
	}, []string{"tenant"})
)
