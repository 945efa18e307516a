// Copyright 2025 The CoordConv Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"log"

	"github.com/jcodagnone/coordconv/server"
	"github.com/spf13/cobra"
)

type serveOptions struct {
	Addr     string
	MaxProcs int
}

var serveOpts = &serveOptions{}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		log.Printf("🌐 Listening on http://%s", serveOpts.Addr)

		return server.NewServer(serveOpts.MaxProcs).Run(serveOpts.Addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveOpts.Addr, "addr", server.DefaultAddr, "Address to listen on")
	serveCmd.Flags().IntVar(
		&serveOpts.MaxProcs,
		"max-procs",
		0,
		"Max number of goroutines converting rows per request. Defaults to the number of CPUs",
	)
}
