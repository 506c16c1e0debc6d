// ABOUTME: Entry point for the chainjournal binary.
// ABOUTME: Executes the root Cobra command.
package main

import (
	"errors"
	"fmt"
	"os"
)

// errReported marks failures already shown to the user as a toast.
var errReported = errors.New("reported")

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
