// Package cmd implements the dwsi command-line interface.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version information (set by build flags).
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:     "dwsi",
	Short:   "dwsi — a typed scripting language interpreter",
	Long:    `dwsi parses, typechecks, and evaluates a small statically-typechecked, dynamically-executed scripting language, either as a REPL or as a one-shot script runner.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")
}
