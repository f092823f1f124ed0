// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package metricstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchAlignsMissingPathToNulls(t *testing.T) {
	backend := newFakeBackend()

	result, err := Fetch(context.Background(), backend, "", []string{"missing.path"}, "acme", 60, 1440, 1700000000, 1700000300)
	require.NoError(t, err)

	assert.Equal(t, int64(1699999980), result.From)
	assert.Equal(t, int64(1700000280), result.To)
	assert.Equal(t, int32(60), result.Step)

	series := result.Series["missing.path"]
	require.Len(t, series, 6)
	for _, v := range series {
		assert.Nil(t, v)
	}
}

func TestFetchCollapsesAndAligns(t *testing.T) {
	backend := newFakeBackend()
	require.NoError(t, backend.AppendBatch(context.Background(), []Sample{
		{Tenant: "acme", Path: "cpu.user", Rollup: 60, Period: 1440, Time: 1700000040, Metric: 1},
		{Tenant: "acme", Path: "cpu.user", Rollup: 60, Period: 1440, Time: 1700000040, Metric: 2},
		{Tenant: "acme", Path: "cpu.user", Rollup: 60, Period: 1440, Time: 1700000040, Metric: 3},
	}))

	result, err := Fetch(context.Background(), backend, "", []string{"cpu.user"}, "acme", 60, 1440, 1700000000, 1700000100)
	require.NoError(t, err)

	idx := int((int64(1700000040) - result.From) / 60)
	require.NotNil(t, result.Series["cpu.user"][idx])
	assert.Equal(t, 2.0, *result.Series["cpu.user"][idx])
}

func TestMaxPoints(t *testing.T) {
	assert.Equal(t, int64(12), MaxPoints(1700000000, 1700000300, 60, 2))
}
