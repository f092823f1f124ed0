// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package aggregate provides pure reducers over lists of sample values,
// and the per-path selection of which reducer applies.
package aggregate

import "strings"

// Func collapses a non-empty list of values into a single scalar.
type Func func(values []float64) float64

// Avg returns the arithmetic mean of values.
func Avg(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Sum returns the sum of values.
func Sum(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum
}

// Min returns the smallest value.
func Min(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

// Max returns the largest value.
func Max(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

// Last returns the most recently appended value.
func Last(values []float64) float64 {
	return values[len(values)-1]
}

// ByName resolves a reducer by its configuration name, defaulting to Avg
// for an empty or unrecognized name.
func ByName(name string) Func {
	switch name {
	case "sum":
		return Sum
	case "min":
		return Min
	case "max":
		return Max
	case "last":
		return Last
	case "avg", "":
		return Avg
	default:
		return Avg
	}
}

// suffixReducer pairs a path name suffix with the reducer it selects.
// Order matters: the first matching suffix wins, so more specific
// suffixes must be listed before more general ones.
type suffixReducer struct {
	suffix string
	fn     Func
	name   string
}

var defaultSuffixRules = []suffixReducer{
	{suffix: ".count", fn: Sum, name: "sum"},
	{suffix: ".min", fn: Min, name: "min"},
	{suffix: ".max", fn: Max, name: "max"},
	{suffix: ".last", fn: Last, name: "last"},
	{suffix: ".gauge", fn: Last, name: "last"},
}

// ForPath selects the reducer to use for a path based on its trailing
// segment, falling back to Avg when no suffix rule matches. An explicit
// override, when non-empty, always wins.
func ForPath(path string, override string) Func {
	if override != "" {
		return ByName(override)
	}

	for _, rule := range defaultSuffixRules {
		if strings.HasSuffix(path, rule.suffix) {
			return rule.fn
		}
	}

	return Avg
}

// NameForPath mirrors ForPath but returns the symbolic reducer name,
// useful for logging and metrics labels.
func NameForPath(path string, override string) string {
	if override != "" {
		return override
	}

	for _, rule := range defaultSuffixRules {
		if strings.HasSuffix(path, rule.suffix) {
			return rule.name
		}
	}

	return "avg"
}
