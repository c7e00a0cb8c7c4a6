// Package main is the entry point for the remkit CLI tool.
package main

import (
	"os"

	"github.com/remkit/remkit/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
