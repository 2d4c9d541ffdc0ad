// Package main provides the inkpad CLI application.
package main

import (
	"fmt"
	"os"
)

var version = "dev" // Set via build flags

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
