// Package main is the entry point for the Kanji Monster CLI.
package main

import (
	"os"

	"github.com/f3rmion/kanjimon/cmd/kanjimon/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
