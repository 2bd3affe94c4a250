package evaluator

import (
	"fmt"

	"github.com/dwsi-lang/dwsi/internal/interp/runtime"
	"github.com/dwsi-lang/dwsi/internal/lexer"
)

// registerBuiltins is a placeholder hook: builtins are dispatched by name
// in evalCall rather than stored as Environment values, since "reduce"
// takes an optional function argument and needs direct access to
// callFunction.
func (e *Evaluator) registerBuiltins() {}

// builtinPrintln prints every argument separated by a space and returns
// the first argument (or Bool(false) when called with no arguments).
func (e *Evaluator) builtinPrintln(args []runtime.Value) (runtime.Value, error) {
	for i, a := range args {
		if i > 0 {
			fmt.Print(" ")
		}
		fmt.Print(a.String())
	}
	fmt.Println()
	if len(args) == 0 {
		return &runtime.Bool{Value: false}, nil
	}
	return args[0], nil
}

// builtinReduce implements reduce(list): folding a list of Int with "+"
// and returning the sum (Int(0) for an empty list). It also accepts the
// two-argument overload reduce(list, combine), folding left-to-right with
// a caller-supplied binary function instead of "+"; an empty list under
// the two-argument form also yields Int(0), the additive identity.
func (e *Evaluator) builtinReduce(args []runtime.Value, pos lexer.Position) (runtime.Value, error) {
	switch len(args) {
	case 1:
		list, ok := args[0].(*runtime.List)
		if !ok {
			return nil, e.runtimeErr(pos, "reduce: argument must be a list")
		}
		sum := int32(0)
		for _, v := range list.Elements {
			n, ok := v.(*runtime.Int)
			if !ok {
				return nil, e.runtimeErr(pos, "reduce: list elements must be int")
			}
			sum += n.Value
		}
		return &runtime.Int{Value: sum}, nil

	case 2:
		list, ok := args[0].(*runtime.List)
		if !ok {
			return nil, e.runtimeErr(pos, "reduce: first argument must be a list")
		}
		fn, ok := args[1].(*runtime.Function)
		if !ok {
			return nil, e.runtimeErr(pos, "reduce: second argument must be a function")
		}

		if len(list.Elements) == 0 {
			return &runtime.Int{Value: 0}, nil
		}

		acc := list.Elements[0]
		for _, v := range list.Elements[1:] {
			next, err := e.callFunction(fn, []runtime.Value{acc, v}, pos)
			if err != nil {
				return nil, err
			}
			acc = next
		}
		return acc, nil

	default:
		return nil, e.runtimeErr(pos, "reduce: expected 1 or 2 arguments, got %d", len(args))
	}
}
