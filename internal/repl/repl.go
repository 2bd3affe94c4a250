// Package repl implements the interactive read-eval-print loop: each
// line is lexed, parsed, typechecked, and evaluated in turn, with the
// typechecker's Context and the evaluator's Environment both persisting
// across lines so earlier bindings stay visible.
package repl

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/peterh/liner"

	"github.com/dwsi-lang/dwsi/internal/interp/evaluator"
	"github.com/dwsi-lang/dwsi/internal/lexer"
	"github.com/dwsi-lang/dwsi/internal/parser"
	"github.com/dwsi-lang/dwsi/internal/semantic"
)

// Config carries the REPL's runtime options, populated from CLI flags.
type Config struct {
	NoColor           bool
	HistoryFile       string
	MaxRecursionDepth int
}

// DefaultConfig returns the REPL's default configuration.
func DefaultConfig() Config {
	return Config{
		HistoryFile:       filepath.Join(os.TempDir(), ".dwsi_history"),
		MaxRecursionDepth: 1000,
	}
}

// REPL is the interactive driver. Its analyzer and evaluator are created
// once and reused for every line read, so a "let" on one line is visible
// when typechecking and evaluating the next.
type REPL struct {
	config    Config
	analyzer  *semantic.Analyzer
	evaluator *evaluator.Evaluator

	colorOK bool
	green   func(a ...any) string
	red     func(a ...any) string
	cyan    func(a ...any) string
	dim     func(a ...any) string
}

// New creates a REPL with a fresh Analyzer/Evaluator pair.
func New(cfg Config) *REPL {
	r := &REPL{
		config:    cfg,
		analyzer:  semantic.NewAnalyzer(),
		evaluator: evaluator.New(evaluator.Config{MaxRecursionDepth: cfg.MaxRecursionDepth}),
	}
	r.colorOK = !cfg.NoColor && isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	if cfg.NoColor {
		r.colorOK = false
	}
	green, red, cyan, dim := color.New(color.FgGreen), color.New(color.FgRed), color.New(color.FgCyan), color.New(color.Faint)
	if !r.colorOK {
		for _, c := range []*color.Color{green, red, cyan, dim} {
			c.DisableColor()
		}
	}
	r.green = green.SprintFunc()
	r.red = red.SprintFunc()
	r.cyan = cyan.SprintFunc()
	r.dim = dim.SprintFunc()
	return r
}

func (r *REPL) prompt() string {
	if r.colorOK {
		return r.cyan(":> ")
	}
	return ":> "
}

// Start runs the REPL loop, reading lines via liner when stdin is a
// terminal and via a plain scanner otherwise (e.g. when input is piped),
// writing results and errors to out.
func (r *REPL) Start(out io.Writer) error {
	if !isatty.IsTerminal(os.Stdin.Fd()) {
		return r.runPiped(os.Stdin, out)
	}

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	if f, err := os.Open(r.config.HistoryFile); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(r.config.HistoryFile); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}()

	fmt.Fprintln(out, r.dim("dwsi — type :q or an empty line to exit, :help for commands"))

	for {
		text, err := line.Prompt(r.prompt())
		if err != nil { // EOF (Ctrl-D) or Ctrl-C abort
			return nil
		}
		trimmed := strings.TrimSpace(text)
		if trimmed == "" || trimmed == ":q" || trimmed == ":quit" || trimmed == ":exit" {
			return nil
		}
		line.AppendHistory(text)

		if strings.HasPrefix(trimmed, ":") {
			r.handleCommand(out, trimmed)
			continue
		}

		r.evalLine(out, text)
	}
}

// runPiped supports non-interactive input (a script piped into "dwsi
// repl"), reading one line at a time with no liner/readline dependency.
func (r *REPL) runPiped(in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		text := scanner.Text()
		trimmed := strings.TrimSpace(text)
		if trimmed == "" || trimmed == ":q" || trimmed == ":quit" || trimmed == ":exit" {
			return nil
		}
		if strings.HasPrefix(trimmed, ":") {
			r.handleCommand(out, trimmed)
			continue
		}
		r.evalLine(out, text)
	}
	return nil
}

func (r *REPL) handleCommand(out io.Writer, cmd string) {
	switch cmd {
	case ":help":
		fmt.Fprintln(out, "commands: :help, :history, :reset, :q")
	case ":history":
		fmt.Fprintln(out, r.dim("(history is kept by the line editor; see "+r.config.HistoryFile+")"))
	case ":reset":
		r.analyzer = semantic.NewAnalyzer()
		r.evaluator = evaluator.New(evaluator.Config{MaxRecursionDepth: r.config.MaxRecursionDepth})
		fmt.Fprintln(out, r.dim("environment reset"))
	default:
		fmt.Fprintln(out, r.red("unknown command: "+cmd))
	}
}

// evalLine runs one line of source through the full parse/typecheck/eval
// pipeline, printing the result or the first stage's error.
func (r *REPL) evalLine(out io.Writer, source string) {
	l := lexer.New(source)
	p := parser.New(l, source)
	program := p.ParseProgram()

	if errs := l.Errors(); len(errs) > 0 {
		fmt.Fprintln(out, r.red(errs[0].Message))
		return
	}
	if errs := p.Errors(); len(errs) > 0 {
		fmt.Fprintln(out, r.format(errs[0]))
		return
	}

	nodes, err := r.analyzer.Typecheck(program, source)
	if err != nil {
		fmt.Fprintln(out, r.format(err))
		return
	}

	value, err := r.evaluator.Run(nodes, source)
	if err != nil {
		fmt.Fprintln(out, r.format(err))
		return
	}
	fmt.Fprintln(out, r.green(value.String()))
}

func (r *REPL) format(err error) string {
	if f, ok := err.(interface{ Format(bool) string }); ok {
		return f.Format(r.colorOK)
	}
	return err.Error()
}
