// Copyright 2025 The CoordConv Authors
// SPDX-License-Identifier: Apache-2.0

// Package tabular reads and writes tables from spreadsheet and data files
// through an in-memory DuckDB database.
package tabular

import (
	"database/sql"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/duckdb/duckdb-go/v2" // register duckdb driver
	"github.com/jcodagnone/coordconv/table"
)

// fileFormat binds a file extension to the DuckDB table function that reads
// it and the COPY options that write it.
type fileFormat struct {
	reader    string // printf pattern receiving the quoted path
	copyOpts  string
	extension string // DuckDB extension to load, if any
}

// Delimited files only sniff numbers; anything else, dates included, stays
// text so the cells are written back as they were read.
const csvOpts = `header = true, quote = '"', auto_type_candidates = ['BIGINT', 'DOUBLE', 'VARCHAR']`

var formats = map[string]fileFormat{
	".csv":     {reader: "read_csv(%s, delim = ',', " + csvOpts + ")", copyOpts: "FORMAT csv, HEADER true"},
	".txt":     {reader: "read_csv(%s, delim = ',', " + csvOpts + ")", copyOpts: "FORMAT csv, HEADER true"},
	".tsv":     {reader: "read_csv(%s, delim = '\t', " + csvOpts + ")", copyOpts: "FORMAT csv, HEADER true, DELIMITER '\t'"},
	".xlsx":    {reader: "read_xlsx(%s, header = true)", copyOpts: "FORMAT xlsx, HEADER true", extension: "excel"},
	".parquet": {reader: "read_parquet(%s)", copyOpts: "FORMAT parquet"},
	".json":    {reader: "read_json_auto(%s)", copyOpts: "FORMAT json, ARRAY true"},
	".ndjson":  {reader: "read_json_auto(%s)", copyOpts: "FORMAT json"},
}

// SupportedExtensions lists the file extensions ReadFile and WriteFile accept.
func SupportedExtensions() []string {
	return []string{".csv", ".tsv", ".txt", ".xlsx", ".parquet", ".json", ".ndjson"}
}

func formatFor(path string) (fileFormat, error) {
	ext := strings.ToLower(filepath.Ext(path))

	f, ok := formats[ext]
	if !ok {
		return fileFormat{}, &table.ConversionError{
			Type:    table.ErrorTypeUnsupportedFormat,
			Message: fmt.Sprintf("unsupported file type %q for %s (supported: %s)", ext, path, strings.Join(SupportedExtensions(), ", ")),
		}
	}

	return f, nil
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func openDB(f fileFormat) (*sql.DB, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if f.extension != "" {
		if _, err := db.Exec(fmt.Sprintf("INSTALL %s; LOAD %s;", f.extension, f.extension)); err != nil {
			db.Close()

			return nil, fmt.Errorf("loading duckdb %s extension: %w", f.extension, err)
		}
	}

	return db, nil
}

func query(path string, limit bool) (*sql.DB, *sql.Rows, error) {
	f, err := formatFor(path)
	if err != nil {
		return nil, nil, err
	}

	if _, err := os.Stat(path); err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", path, err)
	}

	db, err := openDB(f)
	if err != nil {
		return nil, nil, err
	}

	q := "SELECT * FROM " + fmt.Sprintf(f.reader, quoteLiteral(path))
	if limit {
		q += " LIMIT 0"
	}

	rows, err := db.Query(q)
	if err != nil {
		db.Close()

		return nil, nil, fmt.Errorf("reading %s: %w", path, err)
	}

	return db, rows, nil
}

// Columns returns the header of a file.
func Columns(path string) ([]string, error) {
	db, rows, err := query(path, true)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("reading header of %s: %w", path, err)
	}

	return columns, nil
}

// ReadFile loads a whole file. Null cells are nil.
func ReadFile(path string) (*table.Table, error) {
	db, rows, err := query(path, false)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("reading header of %s: %w", path, err)
	}

	t := table.New(columns...)

	for rows.Next() {
		row := make([]any, len(columns))

		ptrs := make([]any, len(columns))
		for i := range row {
			ptrs[i] = &row[i]
		}

		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scanning row %d of %s: %w", t.Len()+1, path, err)
		}

		t.Rows = append(t.Rows, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	return t, nil
}

// columnType picks the narrowest SQL type holding every non-null cell.
func columnType(t *table.Table, col int) string {
	ints, floats, bools, times, others := 0, 0, 0, 0, 0

	for i := range t.Rows {
		switch v := t.Cell(i, col).(type) {
		case nil:
		case int, int8, int16, int32, int64, uint8, uint16, uint32:
			ints++
		case uint:
			if uint64(v) > math.MaxInt64 {
				floats++
			} else {
				ints++
			}
		case uint64:
			if v > math.MaxInt64 {
				floats++
			} else {
				ints++
			}
		case float32, float64:
			floats++
		case bool:
			bools++
		case time.Time:
			times++
		default:
			others++
		}
	}

	switch {
	case others > 0:
		return "VARCHAR"
	case ints+floats+bools+times == 0:
		return "VARCHAR"
	case bools > 0:
		if ints+floats+times == 0 {
			return "BOOLEAN"
		}

		return "VARCHAR"
	case times > 0:
		if ints+floats == 0 {
			return "TIMESTAMP"
		}

		return "VARCHAR"
	case floats > 0:
		return "DOUBLE"
	default:
		return "BIGINT"
	}
}

// sqlValue converts a cell for insertion into a column of the given type.
func sqlValue(v any, typ string) any {
	if v == nil {
		return nil
	}

	switch typ {
	case "BIGINT":
		switch n := v.(type) {
		case int:
			return int64(n)
		case int8:
			return int64(n)
		case int16:
			return int64(n)
		case int32:
			return int64(n)
		case uint8:
			return int64(n)
		case uint16:
			return int64(n)
		case uint32:
			return int64(n)
		case uint:
			return int64(n)
		case uint64:
			return int64(n)
		}
	case "DOUBLE":
		switch n := v.(type) {
		case float32:
			return float64(n)
		case float64:
			return n
		case int:
			return float64(n)
		case int8:
			return float64(n)
		case int16:
			return float64(n)
		case int32:
			return float64(n)
		case int64:
			return float64(n)
		case uint8:
			return float64(n)
		case uint16:
			return float64(n)
		case uint32:
			return float64(n)
		case uint:
			return float64(n)
		case uint64:
			return float64(n)
		}
	case "VARCHAR":
		return cellText(v)
	}

	return v
}

func cellText(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(s), 'f', -1, 32)
	case time.Time:
		return s.Format(time.RFC3339)
	case fmt.Stringer:
		return s.String()
	default:
		return fmt.Sprint(s)
	}
}

func load(db *sql.DB, t *table.Table) error {
	types := make([]string, len(t.Columns))
	defs := make([]string, len(t.Columns))
	marks := make([]string, len(t.Columns))

	for i, c := range t.Columns {
		types[i] = columnType(t, i)
		defs[i] = quoteIdent(c) + " " + types[i]
		marks[i] = "?"
	}

	if _, err := db.Exec("CREATE TABLE result (" + strings.Join(defs, ", ") + ")"); err != nil {
		return fmt.Errorf("creating result table: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare("INSERT INTO result VALUES (" + strings.Join(marks, ", ") + ")")
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	args := make([]any, len(t.Columns))

	for i := range t.Rows {
		for j := range args {
			args[j] = sqlValue(t.Cell(i, j), types[j])
		}

		if _, err := stmt.Exec(args...); err != nil {
			return fmt.Errorf("inserting row %d: %w", i+1, err)
		}
	}

	return tx.Commit()
}

// WriteFile stores t at path in the format given by its extension. The file
// is written next to path under a temporary name and renamed into place, so
// path is either fully written or left untouched.
func WriteFile(t *table.Table, path string) (err error) {
	f, err := formatFor(path)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*"+filepath.Ext(path))
	if err != nil {
		return fmt.Errorf("creating temporary file: %w", err)
	}

	tmpPath := tmp.Name()
	tmp.Close()

	// COPY creates the file itself.
	if err := os.Remove(tmpPath); err != nil {
		return fmt.Errorf("preparing temporary file: %w", err)
	}

	defer func() {
		if err != nil {
			_ = os.Remove(tmpPath)
		}
	}()

	if err := copyTo(t, f, tmpPath); err != nil {
		return err
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("moving output into place: %w", err)
	}

	return nil
}

func copyTo(t *table.Table, f fileFormat, path string) error {
	db, err := openDB(f)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := load(db, t); err != nil {
		return err
	}

	if _, err := db.Exec(fmt.Sprintf("COPY result TO %s (%s)", quoteLiteral(path), f.copyOpts)); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	return nil
}

// OutputPath returns the default destination for a converted file:
// "<name>_converted_<YYYYMMDD><ext>" next to the source.
func OutputPath(src string, now time.Time) string {
	ext := filepath.Ext(src)

	return fmt.Sprintf("%s_converted_%s%s", strings.TrimSuffix(src, ext), now.Format("20060102"), ext)
}

// Config describes one file conversion.
type Config struct {
	SourcePath string
	// OutputPath defaults to OutputPath(SourcePath, time.Now()).
	OutputPath string
	// Blank column names are filled in by table.DetectColumns.
	LongitudeColumn string
	LatitudeColumn  string
	MaxProcs        int
	H3Resolution    int
	// Progress, when set, receives the row count once the source is read and
	// returns the callback invoked as rows are converted.
	Progress func(total int) func(rows int)
}

// Result describes a completed conversion.
type Result struct {
	OutputPath string
	Selection  table.Selection
	Metrics    *table.Metrics
}

// ErrSameFile is returned when the destination would overwrite the source.
var ErrSameFile = errors.New("output path must differ from the source path")

// sameFile reports whether a and b name the same file, through relative
// paths or links when the destination already exists.
func sameFile(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)

	if errA == nil && errB == nil && absA == absB {
		return true
	}

	infoA, errA := os.Stat(a)
	infoB, errB := os.Stat(b)

	return errA == nil && errB == nil && os.SameFile(infoA, infoB)
}

// ConvertFile reads the source, converts it and writes the result. Nothing
// is written when the table cannot be read or a column is not found.
func ConvertFile(cfg Config) (*Result, error) {
	out := cfg.OutputPath
	if out == "" {
		out = OutputPath(cfg.SourcePath, time.Now())
	}

	if sameFile(out, cfg.SourcePath) {
		return nil, ErrSameFile
	}

	// Fail on the destination format before reading a potentially large file.
	if _, err := formatFor(out); err != nil {
		return nil, err
	}

	src, err := ReadFile(cfg.SourcePath)
	if err != nil {
		return nil, err
	}

	sel := table.DetectColumns(src.Columns).Merge(table.Selection{
		Longitude: cfg.LongitudeColumn,
		Latitude:  cfg.LatitudeColumn,
	})

	opts := table.Options{
		LongitudeColumn: sel.Longitude,
		LatitudeColumn:  sel.Latitude,
		MaxProcs:        cfg.MaxProcs,
		H3Resolution:    cfg.H3Resolution,
	}
	if cfg.Progress != nil {
		opts.Progress = cfg.Progress(src.Len())
	}

	converted, metrics, err := table.Convert(src, opts)
	if err != nil {
		return nil, err
	}

	if err := WriteFile(converted, out); err != nil {
		return nil, err
	}

	return &Result{OutputPath: out, Selection: sel, Metrics: metrics}, nil
}
