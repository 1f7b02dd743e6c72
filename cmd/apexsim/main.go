// Package main provides the entry point for apexsim.
// apexsim is a cycle-accurate simulator of the APEX five-stage pipeline.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
