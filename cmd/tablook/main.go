// Package main provides the tablook CLI.
package main

import (
	"os"

	"github.com/leapstack-labs/tablook/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
