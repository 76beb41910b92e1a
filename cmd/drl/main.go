// Package main is the drl command: a toolkit for Drools rule files.
package main

import (
	"os"

	"github.com/leapstack-labs/drl/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
