// Copyright 2025 The CoordConv Authors
// SPDX-License-Identifier: Apache-2.0

package coord

import (
	"math"
	"strconv"
)

// Value is a canonical coordinate in signed decimal degrees, or Missing.
//
// The zero Value is Missing, so a coordinate of 0° is never confused with an
// unparsable token.
type Value struct {
	deg     float64
	present bool
}

// Missing is the result of a token that holds no value or cannot be parsed.
var Missing = Value{}

// Present wraps a decimal-degree value.
func Present(deg float64) Value {
	return Value{deg: deg, present: true}
}

// Get returns the decimal degrees and whether the value is present.
func (v Value) Get() (float64, bool) {
	return v.deg, v.present
}

// IsMissing reports whether v carries no coordinate.
func (v Value) IsMissing() bool {
	return !v.present
}

// Any returns the value as a table cell: a float64, or nil when missing.
func (v Value) Any() any {
	if !v.present {
		return nil
	}

	return v.deg
}

func (v Value) String() string {
	if !v.present {
		return "missing"
	}

	return strconv.FormatFloat(v.deg, 'f', -1, 64)
}

// MarshalJSON encodes a missing value as null.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.present || math.IsInf(v.deg, 0) || math.IsNaN(v.deg) {
		return []byte("null"), nil
	}

	return strconv.AppendFloat(nil, v.deg, 'f', -1, 64), nil
}

// Round rounds to 7 decimal places, the precision of every parsed coordinate.
// The rounding is done on the exact decimal expansion of v.
func Round(v float64) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 7, 64), 64)
	if err != nil {
		return v
	}

	if r == 0 {
		return 0 // no negative zero
	}

	return r
}

// FromDMS converts degrees, minutes and seconds to decimal degrees. The value
// is negated for the S and W hemispheres (case-insensitive) and rounded.
func FromDMS(deg, minutes, seconds float64, hemisphere byte) Value {
	decimal := deg + minutes/60 + seconds/3600

	switch hemisphere {
	case 'S', 's', 'W', 'w':
		decimal = -decimal
	}

	decimal = Round(decimal)
	if math.IsInf(decimal, 0) || math.IsNaN(decimal) {
		return Missing
	}

	return Present(decimal)
}
