// Package evaluator tree-walks typed HIR nodes against a runtime
// Environment, producing runtime Values. It is the last of the three
// pipeline stages; by the time a program reaches here, the semantic
// package has already rejected anything ill-typed.
package evaluator

import (
	"github.com/dwsi-lang/dwsi/internal/errors"
	"github.com/dwsi-lang/dwsi/internal/hir"
	"github.com/dwsi-lang/dwsi/internal/interp/runtime"
	"github.com/dwsi-lang/dwsi/internal/lexer"
)

// Config carries the evaluator's tunable limits. MaxRecursionDepth bounds
// user-function call depth so a runaway recursive script fails with a
// clean InvalidOperation instead of overflowing the Go goroutine stack.
type Config struct {
	MaxRecursionDepth int
}

// DefaultConfig is the configuration used when none is supplied.
func DefaultConfig() Config {
	return Config{MaxRecursionDepth: 1000}
}

// Evaluator runs HIR nodes against a persistent Environment, the same
// way Analyzer runs AST nodes against a persistent Context: both are
// reused across REPL lines so bindings accumulate.
type Evaluator struct {
	env    *runtime.Environment
	cfg    Config
	source string
	depth  int

	// returning signals that a "return" statement has fired somewhere
	// below the current statement loop; every block- and call-body loop
	// checks it after each statement and stops early, the same way the
	// teacher's interpreter short-circuits its statement loops on an
	// exitSignal flag instead of unwinding through a panic.
	returning bool
}

// New creates an Evaluator with a fresh top-level Environment seeded with
// the builtin functions.
func New(cfg Config) *Evaluator {
	e := &Evaluator{env: runtime.NewEnvironment(), cfg: cfg}
	e.registerBuiltins()
	return e
}

// Env exposes the persistent top-level Environment, e.g. for inspection
// tooling.
func (e *Evaluator) Env() *runtime.Environment { return e.env }

// Run evaluates a sequence of top-level HIR nodes in order, returning the
// value of the last one (or a Bool(false) zero value if the sequence is
// empty, mirroring the typechecker's BoolType default for an empty
// block).
func (e *Evaluator) Run(nodes []hir.Node, source string) (runtime.Value, error) {
	e.source = source
	var result runtime.Value = &runtime.Bool{Value: false}

	for _, n := range nodes {
		v, err := e.eval(n, e.env)
		if err != nil {
			return nil, err
		}
		result = v
		// A bare top-level "return" has no enclosing call to unwind to;
		// treat it like an ordinary expression statement and stop here,
		// the same as a bare "return" ending a REPL line early.
		if e.returning {
			e.returning = false
			break
		}
	}
	return result, nil
}

func (e *Evaluator) runtimeErr(pos lexer.Position, format string, args ...any) error {
	return errors.NewInvalidOperation(e.source, pos, format, args...)
}

func (e *Evaluator) eval(node hir.Node, env *runtime.Environment) (runtime.Value, error) {
	switch n := node.(type) {
	case *hir.IntLiteral:
		return &runtime.Int{Value: n.Value}, nil
	case *hir.BoolLiteral:
		return &runtime.Bool{Value: n.Value}, nil
	case *hir.StrLiteral:
		return &runtime.Str{Value: n.Value}, nil

	case *hir.ListLiteral:
		elems := make([]runtime.Value, len(n.Elements))
		for i, el := range n.Elements {
			v, err := e.eval(el, env)
			if err != nil {
				return nil, err
			}
			elems[i] = v
		}
		return &runtime.List{Elements: elems, ElemType: n.ElemType}, nil

	case *hir.Var:
		v, ok := env.Get(n.Name)
		if !ok {
			return nil, e.runtimeErr(n.Pos(), "undefined variable %q", n.Name)
		}
		return v, nil

	case *hir.Binary:
		return e.evalBinary(n, env)

	case *hir.Assign:
		v, err := e.eval(n.Value, env)
		if err != nil {
			return nil, err
		}
		env.Define(n.Name, v)
		return v, nil

	case *hir.ReAssign:
		v, err := e.eval(n.Value, env)
		if err != nil {
			return nil, err
		}
		env.Set(n.Name, v)
		return v, nil

	case *hir.Return:
		v, err := e.eval(n.Value, env)
		if err != nil {
			return nil, err
		}
		e.returning = true
		return v, nil

	case *hir.IfStatement:
		cond, err := e.eval(n.Condition, env)
		if err != nil {
			return nil, err
		}
		if cond.(*runtime.Bool).Value {
			return e.evalBlock(n.Then, env)
		}
		return &runtime.Bool{Value: false}, nil

	case *hir.IfElse:
		cond, err := e.eval(n.Condition, env)
		if err != nil {
			return nil, err
		}
		if cond.(*runtime.Bool).Value {
			return e.evalBlock(n.Then, env)
		}
		return e.evalBlock(n.Else, env)

	case *hir.While:
		var result runtime.Value = &runtime.Bool{Value: false}
		for {
			cond, err := e.eval(n.Condition, env)
			if err != nil {
				return nil, err
			}
			if !cond.(*runtime.Bool).Value {
				break
			}
			v, err := e.evalBlock(n.Body, env)
			if err != nil {
				return nil, err
			}
			result = v
			if e.returning {
				break
			}
		}
		return result, nil

	case *hir.Function:
		return &runtime.Function{Parameters: n.Parameters, Body: n.Body, ReturnType: n.ReturnType, Closure: env}, nil

	case *hir.FuncDecl:
		fn := &runtime.Function{Name: n.Name, Parameters: n.Parameters, Body: n.Body, ReturnType: n.ReturnType, Closure: env}
		env.Define(n.Name, fn)
		return fn, nil

	case *hir.Call:
		return e.evalCall(n, env)

	default:
		return nil, e.runtimeErr(lexer.Position{}, "cannot evaluate node %T", node)
	}
}

// evalBlock evaluates an if/if-else/while body directly against the
// enclosing env rather than opening a child scope: the analyzer typechecks
// these bodies straight against the current Context with no nested scope
// of its own (only a function body gets one, in typecheckFuncStatement and
// typecheckFunctionLiteral), so a "let" inside an if or while body must
// land in the same Environment the typechecker bound it in, or a later
// reference to it would typecheck but fail to evaluate.
func (e *Evaluator) evalBlock(nodes []hir.Node, env *runtime.Environment) (runtime.Value, error) {
	var result runtime.Value = &runtime.Bool{Value: false}
	for _, n := range nodes {
		v, err := e.eval(n, env)
		if err != nil {
			return nil, err
		}
		result = v
		if e.returning {
			break
		}
	}
	return result, nil
}

func (e *Evaluator) evalBinary(n *hir.Binary, env *runtime.Environment) (runtime.Value, error) {
	// Both operands are always evaluated before the operator is applied;
	// "||" and "&&" are plain boolean operators, not short-circuit.
	left, err := e.eval(n.Left, env)
	if err != nil {
		return nil, err
	}
	right, err := e.eval(n.Right, env)
	if err != nil {
		return nil, err
	}

	switch n.Op {
	case "+":
		return &runtime.Int{Value: left.(*runtime.Int).Value + right.(*runtime.Int).Value}, nil
	case "-":
		return &runtime.Int{Value: left.(*runtime.Int).Value - right.(*runtime.Int).Value}, nil
	case "/":
		r := right.(*runtime.Int).Value
		if r == 0 {
			return nil, e.runtimeErr(n.Pos(), "division by zero")
		}
		return &runtime.Int{Value: left.(*runtime.Int).Value / r}, nil
	case "||":
		return &runtime.Bool{Value: left.(*runtime.Bool).Value || right.(*runtime.Bool).Value}, nil
	case "&&":
		return &runtime.Bool{Value: left.(*runtime.Bool).Value && right.(*runtime.Bool).Value}, nil
	case ">":
		return &runtime.Bool{Value: left.(*runtime.Int).Value > right.(*runtime.Int).Value}, nil
	case "<":
		return &runtime.Bool{Value: left.(*runtime.Int).Value < right.(*runtime.Int).Value}, nil
	case "<=":
		return &runtime.Bool{Value: left.(*runtime.Int).Value <= right.(*runtime.Int).Value}, nil
	case "==":
		return &runtime.Bool{Value: left.String() == right.String()}, nil
	default:
		return nil, e.runtimeErr(n.Pos(), "unsupported operator %q", n.Op)
	}
}

func (e *Evaluator) evalCall(n *hir.Call, env *runtime.Environment) (runtime.Value, error) {
	args := make([]runtime.Value, len(n.Arguments))
	for i, a := range n.Arguments {
		v, err := e.eval(a, env)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}

	switch n.Function {
	case "println":
		return e.builtinPrintln(args)
	case "reduce":
		return e.builtinReduce(args, n.Pos())
	}

	callee, ok := env.Get(n.Function)
	if !ok {
		return nil, e.runtimeErr(n.Pos(), "undefined function %q", n.Function)
	}
	fn, ok := callee.(*runtime.Function)
	if !ok {
		return nil, e.runtimeErr(n.Pos(), "%q is not callable", n.Function)
	}
	return e.callFunction(fn, args, n.Pos())
}

// callFunction opens a new scope enclosed by the function's closure,
// binds each parameter, and evaluates the body — grounded on the typed
// interpreter's call handling (unlike its untyped predecessor, which
// evaluated a call's body directly in the caller's scope with no
// parameter binding at all). pos is the call site, used to report
// argument-count and recursion-depth errors at the caller's location.
func (e *Evaluator) callFunction(fn *runtime.Function, args []runtime.Value, pos lexer.Position) (runtime.Value, error) {
	if len(args) != len(fn.Parameters) {
		return nil, e.runtimeErr(pos, "%s: expected %d argument(s), got %d", callName(fn), len(fn.Parameters), len(args))
	}

	e.depth++
	if e.depth > e.cfg.MaxRecursionDepth {
		e.depth--
		return nil, e.runtimeErr(pos, "maximum recursion depth (%d) exceeded", e.cfg.MaxRecursionDepth)
	}
	defer func() { e.depth-- }()

	callEnv := runtime.NewEnclosedEnvironment(fn.Closure)
	for i, p := range fn.Parameters {
		callEnv.Define(p.Name, args[i])
	}

	var last runtime.Value = &runtime.Bool{Value: false}
	for _, stmt := range fn.Body {
		v, evalErr := e.eval(stmt, callEnv)
		if evalErr != nil {
			return nil, evalErr
		}
		last = v
		if e.returning {
			e.returning = false
			break
		}
	}
	return last, nil
}

func callName(fn *runtime.Function) string {
	if fn.Name != "" {
		return fn.Name
	}
	return "<anonymous function>"
}
