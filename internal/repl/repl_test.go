package repl

import (
	"bytes"
	"strings"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
)

// runLines feeds each line through a fresh REPL's piped-input path and
// returns everything written to stdout, joined with newlines.
func runLines(t *testing.T, lines ...string) string {
	t.Helper()
	r := New(Config{NoColor: true, MaxRecursionDepth: 1000})
	var out bytes.Buffer
	in := strings.NewReader(strings.Join(lines, "\n") + "\n")
	if err := r.runPiped(in, &out); err != nil {
		t.Fatalf("runPiped returned an error: %v", err)
	}
	return out.String()
}

func TestReplArithmeticTranscript(t *testing.T) {
	snaps.MatchSnapshot(t, "arithmetic", runLines(t, `1 + 2 + 3;`))
}

func TestReplBindingPersistsAcrossLines(t *testing.T) {
	snaps.MatchSnapshot(t, "binding_persists", runLines(t,
		`let x = 10;`,
		`x + 5;`,
	))
}

func TestReplFunctionDefinitionAndCall(t *testing.T) {
	snaps.MatchSnapshot(t, "function_call", runLines(t,
		`fn double::n: int { return n + n; }`,
		`double(7);`,
	))
}

func TestReplTypeErrorIsReported(t *testing.T) {
	snaps.MatchSnapshot(t, "type_error", runLines(t, `1 + true;`))
}

func TestReplUndefinedVariableIsReported(t *testing.T) {
	snaps.MatchSnapshot(t, "undefined_variable", runLines(t, `y;`))
}

func TestReplResetCommandClearsBindings(t *testing.T) {
	snaps.MatchSnapshot(t, "reset_command", runLines(t,
		`let x = 1;`,
		`:reset`,
		`x;`,
	))
}

func TestReplHelpCommand(t *testing.T) {
	snaps.MatchSnapshot(t, "help_command", runLines(t, `:help`))
}
