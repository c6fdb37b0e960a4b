// Package main is the entry point for the moodlog CLI.
package main

import (
	"os"

	"github.com/f3rmion/moodlog/cmd/moodlog/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
