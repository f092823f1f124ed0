// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pathindex

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// numericRange matches a Graphite numeric range segment such as
// "[3-7]" or "[09-12]", with the narrower side first or last.
var numericRange = regexp.MustCompile(`\[(\d+)-(\d+)\]`)

// ToRegex translates a single Graphite glob pattern into an anchored
// regular expression suitable for matching against stored path
// documents. The pattern is scanned once, left to right, and each
// construct is rewritten as it is met, so no rewrite ever sees the
// output of another:
//   - literal dots are escaped, '*' becomes a run of any non-dot
//     characters, and '?' becomes an optional single character (it
//     may match zero characters, so "srv?" also matches "srv")
//   - brace lists "{a,b,c}" become non-capturing alternations
//   - numeric ranges "[N-M]" are normalized (low-high) and expanded
//     into an alternation of every decimal number in the range
func ToRegex(pattern string) (*regexp.Regexp, error) {
	var b strings.Builder
	b.WriteByte('^')

	i := 0
	for i < len(pattern) {
		c := pattern[i]
		switch {
		case c == '.':
			b.WriteString(`\.`)
			i++

		case c == '*':
			b.WriteString(`[^.]*`)
			i++

		case c == '?':
			b.WriteString(`.?`)
			i++

		case c == '{':
			end := strings.IndexByte(pattern[i:], '}')
			if end < 0 {
				b.WriteString(regexp.QuoteMeta(pattern[i:]))
				i = len(pattern)
				continue
			}
			end += i
			alts := strings.Split(pattern[i+1:end], ",")
			for j, a := range alts {
				alts[j] = regexp.QuoteMeta(a)
			}
			b.WriteString("(?:")
			b.WriteString(strings.Join(alts, "|"))
			b.WriteString(")")
			i = end + 1

		case c == '[':
			if m := numericRange.FindStringSubmatch(pattern[i:]); m != nil && strings.HasPrefix(pattern[i:], m[0]) {
				lo, _ := strconv.Atoi(m[1])
				hi, _ := strconv.Atoi(m[2])
				if lo > hi {
					lo, hi = hi, lo
				}
				b.WriteString(expandNumericRange(lo, hi))
				i += len(m[0])
				continue
			}
			end := strings.IndexByte(pattern[i:], ']')
			if end < 0 {
				b.WriteString(regexp.QuoteMeta(pattern[i:]))
				i = len(pattern)
				continue
			}
			end += i
			b.WriteByte('[')
			b.WriteString(pattern[i+1 : end])
			b.WriteByte(']')
			i = end + 1

		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
			i++
		}
	}

	b.WriteByte('$')
	return regexp.Compile(b.String())
}

// expandNumericRange renders [lo-hi] as an alternation of exact
// decimal representations so "[9-11]" matches "9", "10" and "11" but
// not "1" or "91".
func expandNumericRange(lo, hi int) string {
	nums := make([]string, 0, hi-lo+1)
	for n := lo; n <= hi; n++ {
		nums = append(nums, strconv.Itoa(n))
	}
	// Longest representations first so the alternation doesn't stop
	// matching at a shorter prefix (e.g. "1" before "11").
	sort.Slice(nums, func(i, j int) bool { return len(nums[i]) > len(nums[j]) })
	return "(?:" + strings.Join(nums, "|") + ")"
}
