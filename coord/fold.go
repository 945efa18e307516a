// Copyright 2025 The CoordConv Authors
// SPDX-License-Identifier: Apache-2.0

package coord

import (
	"strings"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldRune maps typographic look-alikes produced by word processors and
// spreadsheet exports onto the ASCII marks understood by the notations.
func foldRune(r rune) rune {
	switch r {
	case '‘', '’', '′', 'ʹ', '´', '`':
		return '\''
	case '“', '”', '″', 'ʺ', '„':
		return '"'
	case 'º', '˚':
		return '°'
	case '\u00a0', '\u2007', '\u202f':
		return ' '
	default:
		return r
	}
}

// FoldPunctuation replaces curly apostrophes and primes with a straight
// apostrophe, curly quotes, double primes and doubled apostrophes with a double
// quote, and degree look-alikes with the degree sign.
func FoldPunctuation(s string) string {
	s, _, _ = transform.String(
		transform.Chain(
			norm.NFC,
			runes.Map(foldRune),
		),
		s,
	)

	return strings.ReplaceAll(s, "''", `"`)
}
