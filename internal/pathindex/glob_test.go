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

func TestToRegexLiteral(t *testing.T) {
	re, err := ToRegex("web.srv1.cpu.user")
	require.NoError(t, err)
	assert.True(t, re.MatchString("web.srv1.cpu.user"))
	assert.False(t, re.MatchString("web.srv1.cpu.system"))
}

func TestToRegexStar(t *testing.T) {
	re, err := ToRegex("web.*.cpu.user")
	require.NoError(t, err)
	assert.True(t, re.MatchString("web.srv1.cpu.user"))
	assert.True(t, re.MatchString("web.srv2.cpu.user"))
	assert.False(t, re.MatchString("web.srv1.extra.cpu.user"))
}

func TestToRegexBraceList(t *testing.T) {
	re, err := ToRegex("web.srv1.cpu.{user,system}")
	require.NoError(t, err)
	assert.True(t, re.MatchString("web.srv1.cpu.user"))
	assert.True(t, re.MatchString("web.srv1.cpu.system"))
	assert.False(t, re.MatchString("web.srv1.cpu.idle"))
}

func TestToRegexNumericRange(t *testing.T) {
	re, err := ToRegex("web.srv[2-5].cpu")
	require.NoError(t, err)
	assert.True(t, re.MatchString("web.srv2.cpu"))
	assert.True(t, re.MatchString("web.srv5.cpu"))
	assert.False(t, re.MatchString("web.srv1.cpu"))
	assert.False(t, re.MatchString("web.srv6.cpu"))
}

func TestToRegexNumericRangeNormalizesOrder(t *testing.T) {
	lo, err := ToRegex("srv[2-5]")
	require.NoError(t, err)
	hi, err := ToRegex("srv[5-2]")
	require.NoError(t, err)
	assert.Equal(t, lo.String(), hi.String())
}

func TestToRegexQuestionMark(t *testing.T) {
	re, err := ToRegex("srv?")
	require.NoError(t, err)
	assert.True(t, re.MatchString("srv1"))
	assert.False(t, re.MatchString("srv12"))
}
