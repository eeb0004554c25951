// Command jobfit normalizes, scores and stores job postings from JSON files.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
