// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package main

import "github.com/hashicorp/go-rawzip/cmd"

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// main starts the gorawzip cli
func main() {
	cmd.Run(version, commit, date)
}
