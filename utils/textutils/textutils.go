// Copyright 2025 The CoordConv Authors
// SPDX-License-Identifier: Apache-2.0

// Package textutils provides small string helpers shared by the converter.
package textutils

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// FoldName reduces a column name to a comparison key: lowercase, without
// accents, compatibility forms such as full-width letters replaced by their
// plain equivalents, and trimmed.
func FoldName(s string) string {
	// Chained transformers keep state, so a chain is built per call.
	folded, _, err := transform.String(
		transform.Chain(
			norm.NFKD,
			runes.Remove(runes.In(unicode.Mn)),
			runes.Map(unicode.ToLower),
			norm.NFC,
		),
		s,
	)
	if err != nil {
		folded = strings.ToLower(s)
	}

	return strings.TrimSpace(folded)
}

// FormatInt renders n with a comma between thousands.
func FormatInt(n int64) string {
	digits := strconv.FormatInt(n, 10)

	var sb strings.Builder
	if n < 0 {
		sb.WriteByte('-')
		digits = digits[1:]
	}

	for i := range len(digits) {
		if i > 0 && (len(digits)-i)%3 == 0 {
			sb.WriteByte(',')
		}

		sb.WriteByte(digits[i])
	}

	return sb.String()
}

// Percent renders part/total as a percentage with one decimal. A zero total yields "0.0%".
func Percent(part, total int64) string {
	if total == 0 {
		return "0.0%"
	}

	return strconv.FormatFloat(float64(part)*100/float64(total), 'f', 1, 64) + "%"
}
