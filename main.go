// Copyright 2025 The CoordConv Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/jcodagnone/coordconv/cmd"
)

var Version = "development"

func main() {
	cmd.Execute(Version)
}
