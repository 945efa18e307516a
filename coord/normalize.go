// Copyright 2025 The CoordConv Authors
// SPDX-License-Identifier: Apache-2.0

// Package coord normalizes coordinates written in decimal degrees,
// degrees/minutes/seconds or degrees/minutes notation into signed decimal
// degrees.
package coord

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Format identifies the notation a token was recognized as.
type Format int

const (
	// FormatNone no notation matched, or the token held no value.
	FormatNone Format = iota
	// FormatNumeric the token was already a number.
	FormatNumeric
	// FormatDecimal decimal degrees, e.g. "-120.456" or "45.123N".
	FormatDecimal
	// FormatDMS degrees, minutes and seconds, e.g. 45°30'15"N.
	FormatDMS
	// FormatDM degrees and minutes, e.g. 45°30'N.
	FormatDM
)

var formatNames = map[Format]string{
	FormatNone:    "none",
	FormatNumeric: "numeric",
	FormatDecimal: "decimal",
	FormatDMS:     "dms",
	FormatDM:      "dm",
}

func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}

	return fmt.Sprintf("Format(%d)", int(f))
}

// MarshalText implements encoding.TextMarshaler.
func (f Format) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// notation is a (pattern, interpreter) pair. interpret returns false when
// the matched text cannot be converted, and the next notation is tried.
type notation struct {
	format      Format
	description string
	examples    []string
	pattern     *regexp.Regexp
	interpret   func(groups []string) (Value, bool)
}

// Components must be separated by a mark or whitespace so that a digit run
// is never split between degrees, minutes and seconds.
const (
	degSep = `(?:\s*[°:]\s*|\s+)`
	minSep = `(?:\s*[':]\s*|\s+)`
)

// Tried in order; the first notation that matches and converts wins.
var notations = []notation{
	{
		format:      FormatDecimal,
		description: "Decimal Degrees",
		examples:    []string{"45.123N", "-120.456", "120.456W"},
		pattern:     regexp.MustCompile(`(?i)^(-?\d+(?:\.\d+)?)([NSEW])?$`),
		interpret:   interpretDecimal,
	},
	{
		format:      FormatDMS,
		description: "Degrees, Minutes, Seconds",
		examples:    []string{`45°30'15"N`, `120°30'15"W`},
		pattern:     regexp.MustCompile(`(?i)^(\d+)` + degSep + `(\d+)` + minSep + `(\d+(?:\.\d+)?)\s*"?\s*([NSEW])`),
		interpret:   interpretDMS,
	},
	{
		format:      FormatDM,
		description: "Degrees and Minutes",
		examples:    []string{`45°30'N`, `120°30'W`},
		pattern:     regexp.MustCompile(`(?i)^(\d+)` + degSep + `(\d+)\s*[':]?\s*([NSEW])`),
		interpret:   interpretDM,
	},
}

func interpretDecimal(groups []string) (Value, bool) {
	deg, err := strconv.ParseFloat(groups[1], 64)
	if err != nil {
		return Missing, false
	}

	// A hemisphere letter decides the sign on its own.
	switch strings.ToUpper(groups[2]) {
	case "S", "W":
		deg = -math.Abs(deg)
	case "N", "E":
		deg = math.Abs(deg)
	}

	deg = Round(deg)
	if math.IsInf(deg, 0) {
		return Missing, false
	}

	return Present(deg), true
}

func interpretDMS(groups []string) (Value, bool) {
	return dms(groups[1], groups[2], groups[3], groups[4])
}

func interpretDM(groups []string) (Value, bool) {
	return dms(groups[1], groups[2], "0", groups[3])
}

func dms(deg, minutes, seconds, hemisphere string) (Value, bool) {
	d, errD := strconv.ParseFloat(deg, 64)
	m, errM := strconv.ParseFloat(minutes, 64)
	s, errS := strconv.ParseFloat(seconds, 64)

	if errD != nil || errM != nil || errS != nil {
		return Missing, false
	}

	v := FromDMS(d, m, s, hemisphere[0])

	return v, !v.IsMissing()
}

// Normalize converts a coordinate token to signed decimal degrees.
// See Parse.
func Normalize(token any) Value {
	v, _ := Parse(token)

	return v
}

// Parse converts a coordinate token to signed decimal degrees and reports
// the notation it was recognized as.
//
// A nil token, a NaN or a blank string is Missing. Numbers are returned
// unchanged. Any other token is read as text, its punctuation folded and its
// surrounding space trimmed, and matched against the decimal, DMS and DM
// notations in that order. Text results are rounded to 7 decimal places.
// Unparsable tokens are Missing, never an error.
func Parse(token any) (Value, Format) {
	if deg, ok, isNumber := numeric(token); isNumber {
		if !ok {
			return Missing, FormatNone
		}

		return Present(deg), FormatNumeric
	}

	return parseText(text(token))
}

// numeric reports whether token is a number, and if so its value and
// whether it holds a value at all (NaN is the spreadsheet null).
func numeric(token any) (float64, bool, bool) {
	var f float64

	switch v := token.(type) {
	case nil:
		return 0, false, true
	case Value:
		deg, ok := v.Get()

		return deg, ok, true
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int8:
		f = float64(v)
	case int16:
		f = float64(v)
	case int32:
		f = float64(v)
	case int64:
		f = float64(v)
	case uint:
		f = float64(v)
	case uint8:
		f = float64(v)
	case uint16:
		f = float64(v)
	case uint32:
		f = float64(v)
	case uint64:
		f = float64(v)
	case json.Number:
		n, err := v.Float64()
		if err != nil {
			return 0, false, false
		}

		f = n
	case interface{ Float64() float64 }:
		f = v.Float64()
	default:
		return 0, false, false
	}

	if math.IsNaN(f) {
		return 0, false, true
	}

	return f, true, true
}

func text(token any) string {
	switch v := token.(type) {
	case string:
		return v
	case json.Number:
		return string(v)
	case []byte:
		return string(v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

func parseText(s string) (Value, Format) {
	s = strings.TrimSpace(FoldPunctuation(s))
	if s == "" {
		return Missing, FormatNone
	}

	for _, n := range notations {
		groups := n.pattern.FindStringSubmatch(s)
		if groups == nil {
			continue
		}

		if v, ok := n.interpret(groups); ok {
			return v, n.format
		}
	}

	return Missing, FormatNone
}

// NotationInfo describes a supported notation for help screens.
type NotationInfo struct {
	Format      Format   `json:"format"`
	Description string   `json:"description"`
	Examples    []string `json:"examples"`
}

// Notations lists the text notations in the order they are tried, followed
// by plain numbers.
func Notations() []NotationInfo {
	infos := make([]NotationInfo, 0, len(notations)+1)
	for _, n := range notations {
		infos = append(infos, NotationInfo{
			Format:      n.format,
			Description: n.description,
			Examples:    append([]string(nil), n.examples...),
		})
	}

	return append(infos, NotationInfo{
		Format:      FormatNumeric,
		Description: "Plain numbers",
		Examples:    []string{"45.123", "-120.456"},
	})
}
