package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/dwsi-lang/dwsi/internal/repl"
)

var replHistoryFile string

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start the interactive read-eval-print loop",
	RunE:  runRepl,
}

func init() {
	rootCmd.AddCommand(replCmd)
	replCmd.Flags().StringVar(&replHistoryFile, "history-file", "", "line-editor history file (default: $TMPDIR/.dwsi_history)")
}

func runRepl(cmd *cobra.Command, _ []string) error {
	noColor, _ := cmd.Flags().GetBool("no-color")

	cfg := repl.DefaultConfig()
	cfg.NoColor = noColor
	if replHistoryFile != "" {
		cfg.HistoryFile = replHistoryFile
	}

	return repl.New(cfg).Start(os.Stdout)
}
