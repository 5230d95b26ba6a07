// Package main is the entry point for the m3u-filter application.
package main

import (
	"os"

	"github.com/lunnlew/m3u-filter/cmd/m3u-filter/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
