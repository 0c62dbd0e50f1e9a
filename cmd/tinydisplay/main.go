// Command tinydisplay is the operational CLI for the tick-based animation
// and coordination engine: run a configuration against a headless engine,
// inspect a persisted store, or validate a marquee program offline.
package main

import (
	"fmt"
	"os"

	"github.com/go-drift/tinydisplay/cmd/tinydisplay/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
