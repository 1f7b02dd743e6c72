// Package main provides the entry point for apexsim.
// apexsim is a cycle-accurate simulator of the APEX five-stage in-order
// pipeline, optionally driven by the Akita simulation engine.
//
// For the full CLI, use: go run ./cmd/apexsim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("apexsim - APEX Five-Stage Pipeline Simulator")
	fmt.Println("")
	fmt.Println("Usage: apexsim run [options] <program.asm>")
	fmt.Println("       apexsim show <program.asm>")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  --config       Path to a YAML or JSON run configuration")
	fmt.Println("  --trace        Print every stage after every cycle")
	fmt.Println("  --functional   Run on the functional emulator")
	fmt.Println("  --engine       Cycle driver: direct or akita")
	fmt.Println("  -v             Print the program listing and statistics")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/apexsim' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/apexsim' instead.")
	}
}
