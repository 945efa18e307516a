// Copyright 2025 The CoordConv Authors
// SPDX-License-Identifier: Apache-2.0

package table

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jcodagnone/coordconv/coord"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertEndToEnd(t *testing.T) {
	src := New("lon", "lat")
	src.Append("45.123N", "-120.456")
	src.Append("bad", "30°15'S")

	out, metrics, err := Convert(src, Options{LongitudeColumn: "lon", LatitudeColumn: "lat"})
	require.NoError(t, err)

	expected := &Table{
		Columns: []string{"lon", "lat", LongitudeColumn, LatitudeColumn, StatusColumn},
		Rows: [][]any{
			{"45.123N", "-120.456", 45.123, -120.456, "Yes"},
			{"bad", "30°15'S", nil, -30.25, "No"},
		},
	}
	if diff := cmp.Diff(expected, out); diff != "" {
		t.Errorf("Convert() mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, &Metrics{Rows: 2, Converted: 1, Failed: 1, LongitudeMissing: 1}, metrics)
}

func TestConvertBothMissing(t *testing.T) {
	src := New("id", "x", "y")
	src.Append(1, nil, "nope")
	src.Append(2, 0.0, 0.0)

	out, metrics, err := Convert(src, Options{LongitudeColumn: "x", LatitudeColumn: "y"})
	require.NoError(t, err)

	assert.Equal(t, []any{1, nil, "nope", nil, nil, "No"}, out.Rows[0])
	// Zero is a coordinate, not a missing value.
	assert.Equal(t, []any{2, 0.0, 0.0, 0.0, 0.0, "Yes"}, out.Rows[1])
	assert.Equal(t, int64(1), metrics.LatitudeMissing)
	assert.Equal(t, int64(1), metrics.LongitudeMissing)
}

func TestConvertDoesNotModifyInput(t *testing.T) {
	src := New("lon", "lat")
	src.Append("120°30'W", "45°30'N")

	before := &Table{
		Columns: append([]string(nil), src.Columns...),
		Rows:    [][]any{append([]any(nil), src.Rows[0]...)},
	}

	_, _, err := Convert(src, Options{LongitudeColumn: "lon", LatitudeColumn: "lat"})
	require.NoError(t, err)

	if diff := cmp.Diff(before, src); diff != "" {
		t.Errorf("input modified (-before +after):\n%s", diff)
	}
}

func TestConvertColumnErrors(t *testing.T) {
	src := New("lon", "lat")
	src.Append("1", "2")

	tests := []struct {
		name     string
		opts     Options
		wantType ErrorType
	}{
		{"unknown longitude", Options{LongitudeColumn: "lng", LatitudeColumn: "lat"}, ErrorTypeColumnNotFound},
		{"unknown latitude", Options{LongitudeColumn: "lon", LatitudeColumn: "Lat"}, ErrorTypeColumnNotFound},
		{"empty longitude", Options{LatitudeColumn: "lat"}, ErrorTypeEmptySelection},
		{"blank latitude", Options{LongitudeColumn: "lon", LatitudeColumn: "  "}, ErrorTypeEmptySelection},
		{"h3 resolution too fine", Options{LongitudeColumn: "lon", LatitudeColumn: "lat", H3Resolution: 16}, ErrorTypeInvalidOption},
		{"negative procs", Options{LongitudeColumn: "lon", LatitudeColumn: "lat", MaxProcs: -1}, ErrorTypeInvalidOption},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			called := false
			tc.opts.Progress = func(int) { called = true }

			out, metrics, err := Convert(src, tc.opts)
			require.Error(t, err)
			assert.Nil(t, out)
			assert.Nil(t, metrics)
			assert.False(t, called, "no row may be processed")

			var convErr *ConversionError
			require.ErrorAs(t, err, &convErr)
			assert.Equal(t, tc.wantType, convErr.Type)
			assert.Equal(t, tc.wantType == ErrorTypeColumnNotFound, IsColumnNotFound(err))
		})
	}
}

func TestConvertMalformedTable(t *testing.T) {
	src := &Table{Columns: []string{"lon", "lat"}, Rows: [][]any{{"1", "2", "3"}}}

	_, _, err := Convert(src, Options{LongitudeColumn: "lon", LatitudeColumn: "lat"})
	require.Error(t, err)
	assert.True(t, isType(err, ErrorTypeMalformedTable))
}

func TestConvertShortRows(t *testing.T) {
	src := &Table{Columns: []string{"name", "lon", "lat"}, Rows: [][]any{{"only name"}}}

	out, _, err := Convert(src, Options{LongitudeColumn: "lon", LatitudeColumn: "lat"})
	require.NoError(t, err)
	assert.Equal(t, []any{"only name", nil, nil, nil, nil, "No"}, out.Rows[0])
}

func TestConvertUniqueColumnNames(t *testing.T) {
	src := New("lon", "lat", LongitudeColumn, StatusColumn, StatusColumn+"_1")
	src.Append("1E", "2N", "old", "old", "old")

	out, _, err := Convert(src, Options{LongitudeColumn: "lon", LatitudeColumn: "lat"})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"lon", "lat", LongitudeColumn, StatusColumn, StatusColumn + "_1",
		LongitudeColumn + "_1", LatitudeColumn, StatusColumn + "_2",
	}, out.Columns)
	assert.Equal(t, []any{"1E", "2N", "old", "old", "old", 1.0, 2.0, "Yes"}, out.Rows[0])
}

func TestConvertSameColumnForBoth(t *testing.T) {
	src := New("coord")
	src.Append("45.5N")

	out, _, err := Convert(src, Options{LongitudeColumn: "coord", LatitudeColumn: "coord"})
	require.NoError(t, err)
	assert.Equal(t, []any{"45.5N", 45.5, 45.5, "Yes"}, out.Rows[0])
}

func TestConvertH3(t *testing.T) {
	src := New("lon", "lat")
	src.Append("-56.1529602", "-34.8822366")
	src.Append("bad", "-34.8822366")

	out, _, err := Convert(src, Options{LongitudeColumn: "lon", LatitudeColumn: "lat", H3Resolution: 7})
	require.NoError(t, err)

	require.Equal(t, H3Column, out.Columns[len(out.Columns)-1])

	cell, ok := out.Rows[0][5].(string)
	require.True(t, ok, "expected hex cell, got %T", out.Rows[0][5])
	assert.Len(t, cell, 15)
	assert.Nil(t, out.Rows[1][5])
}

func TestConvertPreservesOrderAcrossChunks(t *testing.T) {
	const n = chunkSize*3 + 17

	src := New("idx", "lon", "lat")
	for i := range n {
		if i%5 == 0 {
			src.Append(i, "garbage", fmt.Sprintf("%dN", i%90))
		} else {
			src.Append(i, fmt.Sprintf("%d.5W", i%180), fmt.Sprintf("%dN", i%90))
		}
	}

	var progressed atomic.Int64

	out, metrics, err := Convert(src, Options{
		LongitudeColumn: "lon",
		LatitudeColumn:  "lat",
		MaxProcs:        4,
		Progress:        func(rows int) { progressed.Add(int64(rows)) },
	})
	require.NoError(t, err)
	require.Equal(t, n, out.Len())
	assert.Equal(t, int64(n), progressed.Load())

	for i, row := range out.Rows {
		require.Equal(t, i, row[0])

		if i%5 == 0 {
			assert.Nil(t, row[3])
			assert.Equal(t, "No", row[5])
		} else {
			assert.Equal(t, -(float64(i%180) + 0.5), row[3])
			assert.Equal(t, "Yes", row[5])
		}
	}

	// Every chunk's counts are merged into the total.
	failed := int64((n + 4) / 5)
	assert.Equal(t, &Metrics{
		Rows:             n,
		Converted:        n - failed,
		Failed:           failed,
		LongitudeMissing: failed,
	}, metrics)
}

func TestConvertRow(t *testing.T) {
	tests := []struct {
		name     string
		lon, lat any
		want     RowResult
	}{
		{"both", "120°30'W", "45°30'N", RowResult{coord.Present(-120.5), coord.Present(45.5), StatusSuccess}},
		{"numeric", -56.15, -34.88, RowResult{coord.Present(-56.15), coord.Present(-34.88), StatusSuccess}},
		{"no longitude", nil, "45N", RowResult{coord.Missing, coord.Present(45), StatusFailed}},
		{"no latitude", "1E", "x", RowResult{coord.Present(1), coord.Missing, StatusFailed}},
		{"neither", "", nil, RowResult{coord.Missing, coord.Missing, StatusFailed}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ConvertRow(tc.lon, tc.lat)
			assert.Equal(t, tc.want, got)

			_, ok := got.Point()
			assert.Equal(t, bool(tc.want.Status), ok)
		})
	}
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "Yes", StatusSuccess.String())
	assert.Equal(t, "No", StatusFailed.String())
}

func TestMetricsMerge(t *testing.T) {
	m := &Metrics{Rows: 2, Converted: 1, Failed: 1, LatitudeMissing: 1}
	m.Merge(&Metrics{Rows: 3, Converted: 3})
	assert.Equal(t, &Metrics{Rows: 5, Converted: 4, Failed: 1, LatitudeMissing: 1}, m)
}
