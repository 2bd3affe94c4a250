// Command dwsi is the dwsi interpreter's command-line entry point.
package main

import (
	"os"

	"github.com/dwsi-lang/dwsi/cmd/dwsi/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
