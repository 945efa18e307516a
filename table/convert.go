// Copyright 2025 The CoordConv Authors
// SPDX-License-Identifier: Apache-2.0

package table

import (
	"fmt"
	"runtime"
	"strings"
	"sync"

	"github.com/jcodagnone/coordconv/coord"
	"github.com/jcodagnone/coordconv/spatial"
)

// Names of the columns appended by Convert. A numeric suffix is added when
// the source table already uses one of them.
const (
	LongitudeColumn = "Longitude_Converted"
	LatitudeColumn  = "Latitude_Converted"
	StatusColumn    = "Convert_Status"
	H3Column        = "H3_Cell"
)

const chunkSize = 1024

// Status tells whether both coordinates of a row were converted.
type Status bool

const (
	StatusFailed  Status = false
	StatusSuccess Status = true
)

// String returns the marker written to the status column.
func (s Status) String() string {
	if s {
		return "Yes"
	}

	return "No"
}

// RowResult is the conversion of one source row.
type RowResult struct {
	Longitude coord.Value `json:"longitude"`
	Latitude  coord.Value `json:"latitude"`
	Status    Status      `json:"success"`
}

// ConvertRow normalizes a longitude and a latitude token independently.
func ConvertRow(lon, lat any) RowResult {
	r := RowResult{
		Longitude: coord.Normalize(lon),
		Latitude:  coord.Normalize(lat),
	}
	r.Status = Status(!r.Longitude.IsMissing() && !r.Latitude.IsMissing())

	return r
}

// Point returns the converted location when the row succeeded.
func (r RowResult) Point() (spatial.Point, bool) {
	lng, okLng := r.Longitude.Get()
	lat, okLat := r.Latitude.Get()

	return spatial.Point{Lat: lat, Lng: lng}, okLng && okLat
}

// Options configures Convert.
type Options struct {
	LongitudeColumn string
	LatitudeColumn  string
	// MaxProcs bounds the goroutines converting rows. Defaults to the number of CPUs.
	MaxProcs int
	// H3Resolution adds an H3 cell column for converted rows when in 1..15.
	H3Resolution int
	// Progress, when set, is called with the number of rows just converted.
	// It may be called from several goroutines at once.
	Progress func(rows int)
}

// Metrics summarizes a conversion.
type Metrics struct {
	Rows             int64 `json:"rows"`
	Converted        int64 `json:"converted"`
	Failed           int64 `json:"failed"`
	LongitudeMissing int64 `json:"longitude_missing"`
	LatitudeMissing  int64 `json:"latitude_missing"`
}

// Merge adds the metrics of other into m.
func (m *Metrics) Merge(other *Metrics) {
	m.Rows += other.Rows
	m.Converted += other.Converted
	m.Failed += other.Failed
	m.LongitudeMissing += other.LongitudeMissing
	m.LatitudeMissing += other.LatitudeMissing
}

func (m *Metrics) add(r RowResult) {
	m.Rows++

	if r.Status {
		m.Converted++
	} else {
		m.Failed++
	}

	if r.Longitude.IsMissing() {
		m.LongitudeMissing++
	}

	if r.Latitude.IsMissing() {
		m.LatitudeMissing++
	}
}

func (o *Options) validate(t *Table) (int, int, error) {
	lonName := strings.TrimSpace(o.LongitudeColumn)
	latName := strings.TrimSpace(o.LatitudeColumn)

	if lonName == "" || latName == "" {
		return 0, 0, &ConversionError{
			Type:    ErrorTypeEmptySelection,
			Message: "both a longitude and a latitude column are required",
		}
	}

	lonIdx, ok := t.ColumnIndex(o.LongitudeColumn)
	if !ok {
		return 0, 0, columnNotFound("longitude", o.LongitudeColumn, t.Columns)
	}

	latIdx, ok := t.ColumnIndex(o.LatitudeColumn)
	if !ok {
		return 0, 0, columnNotFound("latitude", o.LatitudeColumn, t.Columns)
	}

	if o.H3Resolution < 0 || o.H3Resolution > spatial.MaxH3Resolution {
		return 0, 0, &ConversionError{
			Type:    ErrorTypeInvalidOption,
			Message: fmt.Sprintf("h3 resolution must be between 1 and %d, got %d", spatial.MaxH3Resolution, o.H3Resolution),
		}
	}

	if o.MaxProcs < 0 {
		return 0, 0, &ConversionError{
			Type:    ErrorTypeInvalidOption,
			Message: fmt.Sprintf("max procs must not be negative, got %d", o.MaxProcs),
		}
	}

	return lonIdx, latIdx, nil
}

// Convert normalizes the longitude and latitude columns of t and returns a
// new table holding every input column and row, in order, followed by
// the converted longitude, the converted latitude (nil when unparsable),
// the row status and, optionally, the H3 cell of the converted point.
//
// Column selections are checked before any row is processed; t is never
// modified.
func Convert(t *Table, opts Options) (*Table, *Metrics, error) {
	lonIdx, latIdx, err := opts.validate(t)
	if err != nil {
		return nil, nil, err
	}

	if err := t.validate(); err != nil {
		return nil, nil, err
	}

	maxProcs := opts.MaxProcs
	if maxProcs == 0 {
		maxProcs = runtime.NumCPU()
	}

	n := t.Len()
	results := make([]RowResult, n)
	cells := make([]any, n)

	var wg sync.WaitGroup

	semaphore := make(chan struct{}, maxProcs)
	metricsChan := make(chan *Metrics, (n+chunkSize-1)/chunkSize)

	for start := 0; start < n; start += chunkSize {
		end := min(start+chunkSize, n)

		wg.Add(1)

		go func(start, end int) {
			defer wg.Done()
			semaphore <- struct{}{}

			defer func() { <-semaphore }()

			chunk := &Metrics{}

			for i := start; i < end; i++ {
				results[i] = ConvertRow(t.Cell(i, lonIdx), t.Cell(i, latIdx))
				chunk.add(results[i])

				if opts.H3Resolution > 0 {
					cells[i] = h3Cell(results[i], opts.H3Resolution)
				}
			}

			metricsChan <- chunk

			if opts.Progress != nil {
				opts.Progress(end - start)
			}
		}(start, end)
	}

	wg.Wait()
	close(metricsChan)

	metrics := &Metrics{}
	for m := range metricsChan {
		metrics.Merge(m)
	}

	columns := append([]string(nil), t.Columns...)
	for _, name := range appendedColumns(opts.H3Resolution > 0) {
		columns = append(columns, uniqueName(columns, name))
	}

	out := &Table{Columns: columns, Rows: make([][]any, n)}
	base := len(t.Columns)

	for i, r := range results {
		row := make([]any, len(columns))
		copy(row, t.Rows[i])
		row[base] = r.Longitude.Any()
		row[base+1] = r.Latitude.Any()
		row[base+2] = r.Status.String()

		if opts.H3Resolution > 0 {
			row[base+3] = cells[i]
		}

		out.Rows[i] = row
	}

	return out, metrics, nil
}

func appendedColumns(withH3 bool) []string {
	names := []string{LongitudeColumn, LatitudeColumn, StatusColumn}
	if withH3 {
		names = append(names, H3Column)
	}

	return names
}

// h3Cell returns the hexadecimal H3 index of a converted row, nil otherwise.
func h3Cell(r RowResult, res int) any {
	p, ok := r.Point()
	if !ok {
		return nil
	}

	cell, err := p.H3Cell(res)
	if err != nil {
		return nil
	}

	return cell.String()
}
