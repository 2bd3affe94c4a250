package cmd

import (
	"fmt"
	"os"

	"github.com/kr/pretty"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/dwsi-lang/dwsi/internal/errors"
	"github.com/dwsi-lang/dwsi/internal/interp/evaluator"
	"github.com/dwsi-lang/dwsi/internal/lexer"
	"github.com/dwsi-lang/dwsi/internal/parser"
	"github.com/dwsi-lang/dwsi/internal/semantic"
)

var (
	evalExpr string
	dumpAST  bool
	dumpHIR  bool
	trace    bool
	jsonOut  bool
	jsonPath string
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Run a dwsi script file or inline expression",
	Long: `Execute a dwsi program from a file or inline expression.

Examples:
  dwsi run script.dwsi
  dwsi run -e "println(1 + 2);"
  dwsi run --dump-ast --dump-hir script.dwsi
  dwsi run --json -e "println(1 + 2);"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScript,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&evalExpr, "eval", "e", "", "evaluate inline code instead of reading from a file")
	runCmd.Flags().BoolVar(&dumpAST, "dump-ast", false, "dump the parsed AST before typechecking")
	runCmd.Flags().BoolVar(&dumpHIR, "dump-hir", false, "dump the typed HIR before evaluation")
	runCmd.Flags().BoolVar(&trace, "trace", false, "print a one-line trace of each pipeline stage")
	runCmd.Flags().BoolVar(&jsonOut, "json", false, "emit the result as a JSON document instead of plain text")
	runCmd.Flags().StringVar(&jsonPath, "json-path", "", "with --json, print only the field at this gjson path instead of the whole document")
}

func runScript(cmd *cobra.Command, args []string) error {
	noColor, _ := cmd.Flags().GetBool("no-color")

	var input, filename string
	switch {
	case evalExpr != "":
		input, filename = evalExpr, "<eval>"
	case len(args) == 1:
		filename = args[0]
		content, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("failed to read file %s: %w", filename, err)
		}
		input = string(content)
	default:
		return fmt.Errorf("either provide a file path or use -e for inline code")
	}

	if trace {
		fmt.Fprintf(os.Stderr, "[lex+parse] %s\n", filename)
	}
	l := lexer.New(input)
	p := parser.New(l, input)
	program := p.ParseProgram()

	if errs := l.Errors(); len(errs) > 0 {
		fmt.Fprintf(os.Stderr, "lex error: %s (%d:%d)\n", errs[0].Message, errs[0].Pos.Line, errs[0].Pos.Column)
		return fmt.Errorf("lexing failed with %d error(s)", len(errs))
	}
	if errs := p.Errors(); len(errs) > 0 {
		fmt.Fprint(os.Stderr, errors.FormatErrors(errsToErrorSlice(errs), !noColor))
		fmt.Fprintln(os.Stderr)
		return fmt.Errorf("parsing failed with %d error(s)", len(errs))
	}

	if dumpAST {
		fmt.Println("AST:")
		fmt.Printf("%# v\n\n", pretty.Formatter(program))
	}

	if trace {
		fmt.Fprintf(os.Stderr, "[typecheck] %s\n", filename)
	}
	analyzer := semantic.NewAnalyzer()
	nodes, err := analyzer.Typecheck(program, input)
	if err != nil {
		return reportStageError(err, jsonOut, noColor)
	}

	if dumpHIR {
		fmt.Println("HIR:")
		fmt.Printf("%# v\n\n", pretty.Formatter(nodes))
	}

	if trace {
		fmt.Fprintf(os.Stderr, "[evaluate] %s\n", filename)
	}
	ev := evaluator.New(evaluator.DefaultConfig())
	value, err := ev.Run(nodes, input)
	if err != nil {
		return reportStageError(err, jsonOut, noColor)
	}

	if jsonOut {
		doc, _ := sjson.Set("{}", "ok", true)
		doc, _ = sjson.Set(doc, "type", value.Type().String())
		doc, _ = sjson.Set(doc, "value", value.String())
		if jsonPath != "" {
			fmt.Println(gjson.Get(doc, jsonPath).String())
			return nil
		}
		fmt.Println(doc)
		return nil
	}

	fmt.Println(value.String())
	return nil
}

func reportStageError(err error, asJSON, noColor bool) error {
	if asJSON {
		doc, _ := sjson.Set("{}", "ok", false)
		doc, _ = sjson.Set(doc, "error", err.Error())
		fmt.Println(doc)
		return fmt.Errorf("execution failed")
	}
	if f, ok := err.(interface{ Format(bool) string }); ok {
		fmt.Fprintln(os.Stderr, f.Format(!noColor))
	} else {
		fmt.Fprintln(os.Stderr, err.Error())
	}
	return fmt.Errorf("execution failed")
}

func errsToErrorSlice[T error](errs []T) []error {
	out := make([]error, len(errs))
	for i, e := range errs {
		out[i] = e
	}
	return out
}
