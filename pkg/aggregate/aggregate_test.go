// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAvg(t *testing.T) {
	assert.Equal(t, 3.0, Avg([]float64{1, 2, 3, 4, 5}))
	assert.Equal(t, 0.0, Avg(nil))
}

func TestSumMinMaxLast(t *testing.T) {
	vals := []float64{4, 1, 9, 2}
	assert.Equal(t, 16.0, Sum(vals))
	assert.Equal(t, 1.0, Min(vals))
	assert.Equal(t, 9.0, Max(vals))
	assert.Equal(t, 2.0, Last(vals))
}

func TestByName(t *testing.T) {
	assert.Equal(t, 6.0, ByName("sum")([]float64{1, 2, 3}))
	assert.Equal(t, 2.0, ByName("avg")([]float64{1, 2, 3}))
	assert.Equal(t, 2.0, ByName("")([]float64{1, 2, 3}))
	assert.Equal(t, 2.0, ByName("unknown")([]float64{1, 2, 3}))
}

func TestForPathSuffixRules(t *testing.T) {
	assert.Equal(t, 6.0, ForPath("reqs.count", "")([]float64{1, 2, 3}))
	assert.Equal(t, 1.0, ForPath("latency.min", "")([]float64{1, 2, 3}))
	assert.Equal(t, 3.0, ForPath("latency.max", "")([]float64{1, 2, 3}))
	assert.Equal(t, 3.0, ForPath("state.last", "")([]float64{1, 2, 3}))
	assert.Equal(t, 3.0, ForPath("temp.gauge", "")([]float64{1, 2, 3}))
	assert.Equal(t, 2.0, ForPath("cpu.user", "")([]float64{1, 2, 3}))
}

func TestForPathOverrideWins(t *testing.T) {
	assert.Equal(t, 6.0, ForPath("reqs.count", "sum")([]float64{1, 2, 3}))
	assert.Equal(t, 2.0, ForPath("reqs.count", "avg")([]float64{1, 2, 3}))
}

func TestNameForPath(t *testing.T) {
	assert.Equal(t, "sum", NameForPath("reqs.count", ""))
	assert.Equal(t, "avg", NameForPath("cpu.user", ""))
	assert.Equal(t, "max", NameForPath("cpu.user", "max"))
}
