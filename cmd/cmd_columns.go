// Copyright 2025 The CoordConv Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/jcodagnone/coordconv/table"
	"github.com/jcodagnone/coordconv/tabular"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
)

var columnsCmd = &cobra.Command{
	Use:   "columns <file>",
	Short: "List the columns of a file and the coordinate columns guessed from them",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		columns, err := tabular.Columns(args[0])
		if err != nil {
			return err
		}

		printColumns(cmd.OutOrStdout(), columns, table.DetectColumns(columns))

		return nil
	},
}

func printColumns(w io.Writer, columns []string, sel table.Selection) {
	width := len("Column")
	for _, c := range columns {
		width = max(width, runewidth.StringWidth(c))
	}

	a, b, c := strings.Repeat("─", 3), strings.Repeat("─", width), strings.Repeat("─", 9)
	fmt.Fprintf(w, "╭─%s─┬─%s─┬─%s─╮\n", a, b, c)
	fmt.Fprintf(w, "│ %3s │ %s │ %-9s │\n", "#", runewidth.FillRight("Column", width), "Detected")
	fmt.Fprintf(w, "├─%s─┼─%s─┼─%s─┤\n", a, b, c)

	for i, name := range columns {
		var roles []string
		if name == sel.Longitude {
			roles = append(roles, "longitude")
		}

		if name == sel.Latitude {
			roles = append(roles, "latitude")
		}

		role := strings.Join(roles, ",")
		if len(role) > 9 {
			role = "both"
		}

		// %-*s pads by bytes, names are padded by display width.
		fmt.Fprintf(w, "│ %3d │ %s │ %-9s │\n", i+1, runewidth.FillRight(name, width), role)
	}

	fmt.Fprintf(w, "╰─%s─┴─%s─┴─%s─╯\n", a, b, c)
}

func init() {
	rootCmd.AddCommand(columnsCmd)
}
