// Package main is the confex command-line entrypoint.
package main

import (
	"os"

	"github.com/confex-labs/confex/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
