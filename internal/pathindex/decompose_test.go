// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pathindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegments(t *testing.T) {
	assert.Equal(t, 0, Segments(""))
	assert.Equal(t, 1, Segments("a"))
	assert.Equal(t, 3, Segments("a.b.c"))
}

func TestDecomposeNoCache(t *testing.T) {
	docs := Decompose("acme", "web.srv1.cpu.user", nil)
	require.Len(t, docs, 4)

	assert.Equal(t, Doc{Tenant: "acme", Path: "web", Depth: 1, Leaf: false}, docs[0])
	assert.Equal(t, Doc{Tenant: "acme", Path: "web.srv1", Depth: 2, Leaf: false}, docs[1])
	assert.Equal(t, Doc{Tenant: "acme", Path: "web.srv1.cpu", Depth: 3, Leaf: false}, docs[2])
	assert.Equal(t, Doc{Tenant: "acme", Path: "web.srv1.cpu.user", Depth: 4, Leaf: true}, docs[3])
}

func TestDecomposeSingleSegment(t *testing.T) {
	docs := Decompose("acme", "standalone", nil)
	require.Len(t, docs, 1)
	assert.True(t, docs[0].Leaf)
	assert.Equal(t, 1, docs[0].Depth)
}

func TestDecomposeOmitsCachedShallowPrefixes(t *testing.T) {
	cache := NewSubPathCache(100)
	cache.Add("acme", "web", 1)

	docs := Decompose("acme", "web.srv1.cpu.user", cache)

	var paths []string
	for _, d := range docs {
		paths = append(paths, d.Path)
	}
	assert.NotContains(t, paths, "web")
	assert.Contains(t, paths, "web.srv1")
	assert.Contains(t, paths, "web.srv1.cpu.user")
}

func TestDecomposeNeverOmitsLeaf(t *testing.T) {
	cache := NewSubPathCache(100)
	// Pretend the full leaf path is somehow already "cached" at its
	// depth; the leaf document must still appear in the output.
	cache.Add("acme", "a.b", 2)

	docs := Decompose("acme", "a.b", cache)
	require.Len(t, docs, 2)
	assert.True(t, docs[len(docs)-1].Leaf)
	assert.Equal(t, "a.b", docs[len(docs)-1].Path)
}
