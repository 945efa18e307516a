// Copyright 2025 The CoordConv Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/jcodagnone/coordconv/coord"
	"github.com/spf13/cobra"
)

// isTerminal reports whether f is a character device. When it can't be
// stat'ed we say that it isn't.
func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}

	return (info.Mode() & os.ModeCharDevice) != 0
}

var debugCmd = &cobra.Command{
	Use:   "debug",
	Short: "Dev tools",
}

var debugParseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Run the coordinate normalizer over stdin",
	Long: `Reads one coordinate per line and prints the token, the notation it was
recognized as and the resulting decimal degrees.

$ echo "45°30'15\"N" | coordconv debug parse
45°30'15"N	dms	45.5041667
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		input := os.Stdin
		if isTerminal(input) {
			fmt.Fprintln(os.Stderr, "Enter coordinates to analyze, one per line…")
		}

		return parseLines(input, cmd.OutOrStdout())
	},
}

func parseLines(r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		token := scanner.Text()
		v, format := coord.Parse(token)
		fmt.Fprintf(w, "%s\t%s\t%s\n", token, format, v)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	return nil
}

func init() {
	rootCmd.AddCommand(debugCmd)
	debugCmd.AddCommand(debugParseCmd)
}
