// Package main wires together the vanityscan binary.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "vanityscan: %v\n", err)
		os.Exit(1)
	}
}
