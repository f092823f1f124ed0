// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pathindex

import "strings"

// Segments returns the number of dot-separated segments in path, i.e.
// its depth were it stored as a document.
func Segments(path string) int {
	if path == "" {
		return 0
	}
	return strings.Count(path, ".") + 1
}

// Decompose scans path left to right by separator index and returns
// one document per ancestor prefix, including the path itself as the
// final, leaf document. For "a.b.c" it yields {a,1,false}, {a.b,2,false},
// {a.b.c,3,true}. Prefixes already present in cache and shallow enough
// to have been cached (depth <= cache's store-to-depth) are omitted;
// the terminal leaf document is never omitted.
func Decompose(tenant, path string, cache *SubPathCache) []Doc {
	docs := make([]Doc, 0, Segments(path))

	depth := 0
	for i := 0; i < len(path); i++ {
		if path[i] != '.' {
			continue
		}

		depth++
		prefix := path[:i]
		if cache == nil || !cache.Contains(tenant, prefix, depth) {
			docs = append(docs, Doc{Tenant: tenant, Path: prefix, Depth: depth, Leaf: false})
		}
	}

	depth++
	docs = append(docs, Doc{Tenant: tenant, Path: path, Depth: depth, Leaf: true})

	return docs
}
