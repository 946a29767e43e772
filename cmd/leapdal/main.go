// Package main provides the leapdal command-line tool.
package main

import (
	"os"

	"github.com/leapstack-labs/leapdal/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
