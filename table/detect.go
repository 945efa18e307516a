// Copyright 2025 The CoordConv Authors
// SPDX-License-Identifier: Apache-2.0

package table

import (
	"strings"

	"github.com/jcodagnone/coordconv/utils/textutils"
)

// Selection names the columns holding longitude and latitude.
type Selection struct {
	Longitude string `json:"longitude"`
	Latitude  string `json:"latitude"`
}

// Merge returns s with every non-empty field of explicit taking precedence.
func (s Selection) Merge(explicit Selection) Selection {
	if explicit.Longitude != "" {
		s.Longitude = explicit.Longitude
	}

	if explicit.Latitude != "" {
		s.Latitude = explicit.Latitude
	}

	return s
}

// DetectColumns guesses which columns hold coordinates. It is only a
// default for a selection and ignores case and accents.
//
// Latitude is the first column whose name contains "lat", else the one named
// "y", else the first column. Longitude is the first column whose name
// contains "lon" or "lng", else the one named "x", else the second column
// (the first when there is only one).
func DetectColumns(columns []string) Selection {
	var sel Selection

	if len(columns) == 0 {
		return sel
	}

	folded := make([]string, len(columns))
	for i, c := range columns {
		folded[i] = textutils.FoldName(c)
	}

	sel.Latitude = firstMatch(columns, folded, func(s string) bool {
		return strings.Contains(s, "lat")
	})
	if sel.Latitude == "" {
		sel.Latitude = firstMatch(columns, folded, func(s string) bool { return s == "y" })
	}

	if sel.Latitude == "" {
		sel.Latitude = columns[0]
	}

	sel.Longitude = firstMatch(columns, folded, func(s string) bool {
		return strings.Contains(s, "lon") || strings.Contains(s, "lng")
	})
	if sel.Longitude == "" {
		sel.Longitude = firstMatch(columns, folded, func(s string) bool { return s == "x" })
	}

	if sel.Longitude == "" {
		if len(columns) > 1 {
			sel.Longitude = columns[1]
		} else {
			sel.Longitude = columns[0]
		}
	}

	return sel
}

func firstMatch(columns, folded []string, match func(string) bool) string {
	for i, f := range folded {
		if match(f) {
			return columns[i]
		}
	}

	return ""
}
