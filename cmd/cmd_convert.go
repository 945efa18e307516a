// Copyright 2025 The CoordConv Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/jcodagnone/coordconv/table"
	"github.com/jcodagnone/coordconv/tabular"
	"github.com/jcodagnone/coordconv/utils/textutils"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var convertOptions = &tabular.Config{}

var convertCmd = &cobra.Command{
	Use:   "convert <file>",
	Short: "Convert the coordinate columns of a file",
	Long: `Reads a csv, tsv, xlsx, parquet or json file and writes a copy with the
Longitude_Converted, Latitude_Converted and Convert_Status columns appended.

Columns not given with --lon or --lat are guessed from the header. Unless --out
is given, the copy is written next to the source as <name>_converted_YYYYMMDD.<ext>.

$ coordconv convert stations.csv --lon Longitude --lat Latitude
`,
	Args: cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		convertOptions.SourcePath = args[0]
		convertOptions.Progress = newProgress

		res, err := tabular.ConvertFile(*convertOptions)
		if err != nil {
			if hint := convertHint(args[0], err); hint != "" {
				log.Print(hint)
			}

			return fmt.Errorf("converting %s: %w", args[0], err)
		}

		m := res.Metrics
		log.Printf("🧭 Longitude column %q, latitude column %q", res.Selection.Longitude, res.Selection.Latitude)
		log.Printf(
			"✅ Converted %s of %s rows (%s), %s failed - %s missing longitude, %s missing latitude",
			textutils.FormatInt(m.Converted),
			textutils.FormatInt(m.Rows),
			textutils.Percent(m.Converted, m.Rows),
			textutils.FormatInt(m.Failed),
			textutils.FormatInt(m.LongitudeMissing),
			textutils.FormatInt(m.LatitudeMissing),
		)
		log.Printf("💾 Written %s", res.OutputPath)

		return nil
	},
}

func convertHint(path string, err error) string {
	if table.IsColumnNotFound(err) {
		return fmt.Sprintf("💡 Run `coordconv columns %s` to list the available columns", path)
	}

	return ""
}

// newProgress draws a bar only when stderr is a terminal.
func newProgress(total int) func(rows int) {
	if !isatty.IsTerminal(os.Stderr.Fd()) {
		return nil
	}

	bar := progressbar.NewOptions(total,
		progressbar.OptionSetDescription("Converting"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	return func(rows int) {
		if err := bar.Add(rows); err != nil {
			log.Printf("updating progress bar: %s", err)
		}
	}
}

func init() {
	rootCmd.AddCommand(convertCmd)
	convertCmd.Flags().StringVar(
		&convertOptions.LongitudeColumn,
		"lon",
		"",
		"Column holding longitudes. Guessed from the header when empty",
	)
	convertCmd.Flags().StringVar(
		&convertOptions.LatitudeColumn,
		"lat",
		"",
		"Column holding latitudes. Guessed from the header when empty",
	)
	convertCmd.Flags().StringVar(
		&convertOptions.OutputPath,
		"out",
		"",
		"Destination file. Its extension selects the output format",
	)
	convertCmd.Flags().IntVar(
		&convertOptions.H3Resolution,
		"h3-res",
		0,
		"When 1 to 15, appends the H3 cell of each converted point at that resolution",
	)
	convertCmd.Flags().IntVar(
		&convertOptions.MaxProcs,
		"max-procs",
		0,
		"Max number of goroutines converting rows. Defaults to the number of CPUs",
	)
}
