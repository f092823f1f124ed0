// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package pathindex implements the streaming path index pipeline: it
// derives every dotted ancestor prefix of an incoming metric path,
// deduplicates aggressively against a process-local cache, and keeps
// an external search index of path documents consistent without
// blocking the sample ingest path.
package pathindex

// TenantPath is the unit of work flowing into the path pipeline: a
// single (tenant, path) pair extracted from an ingested sample.
type TenantPath struct {
	Tenant string
	Path   string
}

// Doc is one path document: either a leaf (a full metric name) or an
// intermediate, non-leaf prefix.
type Doc struct {
	Tenant string `json:"tenant"`
	Path   string `json:"path"`
	Depth  int    `json:"depth"`
	Leaf   bool   `json:"leaf"`
}

// ID returns the document id the search index stores this document
// under: "<tenant>_<path>", which enforces the uniqueness invariant
// that (tenant, path) identifies at most one document.
func (d Doc) ID() string {
	return d.Tenant + "_" + d.Path
}
