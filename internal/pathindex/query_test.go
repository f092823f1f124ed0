// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pathindex

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedGlobFixture(t *testing.T) *fakeIndexClient {
	t.Helper()
	client := newFakeIndexClient()
	err := client.BulkUpsert(context.Background(), []Doc{
		{Tenant: "acme", Path: "web.srv1.cpu.user", Depth: 4, Leaf: true},
		{Tenant: "acme", Path: "web.srv1.cpu.system", Depth: 4, Leaf: true},
		{Tenant: "acme", Path: "web.srv1.mem.used", Depth: 4, Leaf: true},
		{Tenant: "acme", Path: "web.srv2.cpu.user", Depth: 4, Leaf: true},
	})
	require.NoError(t, err)
	return client
}

func TestLookupGlob(t *testing.T) {
	client := seedGlobFixture(t)

	paths, err := Lookup(context.Background(), client, "acme", "web.*.cpu.{user,system}", 0)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{
		"web.srv1.cpu.user",
		"web.srv1.cpu.system",
		"web.srv2.cpu.user",
	}, paths)
}

func TestLookupThresholdExceeded(t *testing.T) {
	client := seedGlobFixture(t)

	_, err := Lookup(context.Background(), client, "acme", "web.*.*.*", 1)
	require.Error(t, err)

	var tooMany *TooManyPathsError
	require.ErrorAs(t, err, &tooMany)
	assert.Equal(t, 1, tooMany.Threshold)
}

func TestPrefixesMatchesDepthOnly(t *testing.T) {
	client := newFakeIndexClient()
	require.NoError(t, client.BulkUpsert(context.Background(), []Doc{
		{Tenant: "acme", Path: "web", Depth: 1, Leaf: false},
		{Tenant: "acme", Path: "web.srv1", Depth: 2, Leaf: false},
	}))

	docs, err := Prefixes(context.Background(), client, "acme", "web", 0)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "web", docs[0].Path)
}
