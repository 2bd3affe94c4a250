// Package runtime implements the evaluator's runtime Value representation
// and the lexically-scoped Environment values are bound in.
package runtime

import (
	"strconv"
	"strings"

	"github.com/dwsi-lang/dwsi/internal/hir"
)

// Value is the base interface implemented by every runtime value.
type Value interface {
	Type() hir.Type
	String() string
}

// Int is a runtime integer value.
type Int struct{ Value int32 }

func (v *Int) Type() hir.Type { return hir.IntType }
func (v *Int) String() string { return strconv.FormatInt(int64(v.Value), 10) }

// Bool is a runtime boolean value.
type Bool struct{ Value bool }

func (v *Bool) Type() hir.Type { return hir.BoolType }
func (v *Bool) String() string {
	if v.Value {
		return "true"
	}
	return "false"
}

// Str is a runtime string value.
type Str struct{ Value string }

func (v *Str) Type() hir.Type { return hir.StrType }
func (v *Str) String() string { return v.Value }

// List is a runtime list value.
type List struct {
	Elements []Value
	ElemType hir.Type
}

func (v *List) Type() hir.Type { return hir.ListOf(v.ElemType) }
func (v *List) String() string {
	parts := make([]string, len(v.Elements))
	for i, e := range v.Elements {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Function is a runtime function value: the parameter list and body
// carried forward from HIR, plus the Environment captured at the point
// the function literal was evaluated (its closure).
type Function struct {
	Name       string // empty for an anonymous lambda
	Parameters []hir.Param
	Body       []hir.Node
	ReturnType hir.Type
	Closure    *Environment
}

func (v *Function) Type() hir.Type { return v.ReturnType }
func (v *Function) String() string {
	if v.Name != "" {
		return "<function " + v.Name + ">"
	}
	return "<function>"
}

// Builtin is a host-implemented function value. The evaluator dispatches
// println and reduce by name in evalCall and does not create Builtin values
// for them.
type Builtin struct {
	Name       string
	ReturnType hir.Type
	Fn         func(args []Value) (Value, error)
}

func (v *Builtin) Type() hir.Type { return v.ReturnType }
func (v *Builtin) String() string { return "<builtin " + v.Name + ">" }
