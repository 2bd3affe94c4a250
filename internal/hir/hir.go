// Package hir defines the typed intermediate representation produced by
// the semantic package. Every node carries a resolved Type; HIR nodes
// never reference surface syntax details like ascription tokens.
package hir

import (
	"strconv"
	"strings"

	"github.com/dwsi-lang/dwsi/internal/ast"
	"github.com/dwsi-lang/dwsi/internal/lexer"
)

// Kind identifies a primitive or composite type.
type Kind int

const (
	Int Kind = iota
	Bool
	Str
	List
)

func (k Kind) String() string {
	switch k {
	case Int:
		return "int"
	case Bool:
		return "bool"
	case Str:
		return "str"
	case List:
		return "list"
	default:
		return "?"
	}
}

// Type is a resolved HIR type: one of the three primitives, or a
// homogeneous list of a primitive element type. List literals and the
// "reduce" builtin both need a resolved element type to typecheck and
// evaluate against.
type Type struct {
	Kind Kind
	Elem *Type // non-nil only when Kind == List
}

// IntType, BoolType, and StrType are the three scalar types.
var (
	IntType  = Type{Kind: Int}
	BoolType = Type{Kind: Bool}
	StrType  = Type{Kind: Str}
)

// ListOf builds the list-of-elem type.
func ListOf(elem Type) Type {
	e := elem
	return Type{Kind: List, Elem: &e}
}

// Equals reports whether two types are structurally identical.
func (t Type) Equals(other Type) bool {
	if t.Kind != other.Kind {
		return false
	}
	if t.Kind == List {
		return t.Elem.Equals(*other.Elem)
	}
	return true
}

func (t Type) String() string {
	if t.Kind == List {
		return "[" + t.Elem.String() + "]"
	}
	return t.Kind.String()
}

// Node is the base interface implemented by every HIR node. Unlike the
// surface AST, every HIR node knows its own resolved type; it also keeps
// the source Position it was lowered from, so a runtime error raised
// while evaluating the node can point back at real source text instead
// of an empty (0:0) location.
type Node interface {
	Type() Type
	Pos() lexer.Position
	String() string
}

// IntLiteral is a typed integer constant.
type IntLiteral struct {
	NodePos lexer.Position
	Value   int32
}

func (n *IntLiteral) Type() Type           { return IntType }
func (n *IntLiteral) Pos() lexer.Position  { return n.NodePos }
func (n *IntLiteral) String() string       { return strconv.FormatInt(int64(n.Value), 10) }

// BoolLiteral is a typed boolean constant.
type BoolLiteral struct {
	NodePos lexer.Position
	Value   bool
}

func (n *BoolLiteral) Type() Type          { return BoolType }
func (n *BoolLiteral) Pos() lexer.Position { return n.NodePos }
func (n *BoolLiteral) String() string {
	if n.Value {
		return "true"
	}
	return "false"
}

// StrLiteral is a typed string constant.
type StrLiteral struct {
	NodePos lexer.Position
	Value   string
}

func (n *StrLiteral) Type() Type          { return StrType }
func (n *StrLiteral) Pos() lexer.Position { return n.NodePos }
func (n *StrLiteral) String() string      { return "\"" + n.Value + "\"" }

// ListLiteral is a typed list constant; ElemType is the declared or
// inferred element type shared by every entry.
type ListLiteral struct {
	NodePos  lexer.Position
	Elements []Node
	ElemType Type
}

func (n *ListLiteral) Type() Type          { return ListOf(n.ElemType) }
func (n *ListLiteral) Pos() lexer.Position { return n.NodePos }
func (n *ListLiteral) String() string {
	parts := make([]string, len(n.Elements))
	for i, e := range n.Elements {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Var is a resolved variable reference.
type Var struct {
	NodePos lexer.Position
	Name    string
	VarType Type
}

func (n *Var) Type() Type          { return n.VarType }
func (n *Var) Pos() lexer.Position { return n.NodePos }
func (n *Var) String() string      { return n.Name }

// Binary is a typed binary operator application. ResultType is the type
// of the operator's result as fixed by unification (e.g. comparisons
// resolve to Bool regardless of operand type).
type Binary struct {
	NodePos     lexer.Position
	Left, Right Node
	Op          ast.Op
	ResultType  Type
}

func (n *Binary) Type() Type          { return n.ResultType }
func (n *Binary) Pos() lexer.Position { return n.NodePos }
func (n *Binary) String() string {
	return "(" + n.Left.String() + " " + string(n.Op) + " " + n.Right.String() + ")"
}

// Call is a typed function call. ResultType is the resolved return type
// of the callee.
type Call struct {
	NodePos    lexer.Position
	Function   string
	Arguments  []Node
	ResultType Type
}

func (n *Call) Type() Type          { return n.ResultType }
func (n *Call) Pos() lexer.Position { return n.NodePos }
func (n *Call) String() string {
	parts := make([]string, len(n.Arguments))
	for i, a := range n.Arguments {
		parts[i] = a.String()
	}
	return n.Function + "(" + strings.Join(parts, ", ") + ")"
}

// Param is a typed function parameter.
type Param struct {
	Name string
	Type Type
}

// Function is a typed anonymous function (lambda) value.
type Function struct {
	NodePos    lexer.Position
	Parameters []Param
	Body       []Node
	ReturnType Type
}

func (n *Function) Type() Type          { return n.ReturnType }
func (n *Function) Pos() lexer.Position { return n.NodePos }
func (n *Function) String() string {
	parts := make([]string, len(n.Parameters))
	for i, p := range n.Parameters {
		parts[i] = p.Name + ": " + p.Type.String()
	}
	return "fn(" + strings.Join(parts, ", ") + ") -> " + n.ReturnType.String()
}

// FuncDecl is a typed named function declaration.
type FuncDecl struct {
	NodePos    lexer.Position
	Name       string
	Parameters []Param
	Body       []Node
	ReturnType Type
}

func (n *FuncDecl) Type() Type          { return n.ReturnType }
func (n *FuncDecl) Pos() lexer.Position { return n.NodePos }
func (n *FuncDecl) String() string {
	parts := make([]string, len(n.Parameters))
	for i, p := range n.Parameters {
		parts[i] = p.Name + ": " + p.Type.String()
	}
	return "fn " + n.Name + "(" + strings.Join(parts, ", ") + ") -> " + n.ReturnType.String()
}

// Return is a typed return statement; Type() mirrors the returned value's
// type so a function body's last statement can be type-checked uniformly.
type Return struct {
	NodePos lexer.Position
	Value   Node
}

func (n *Return) Type() Type          { return n.Value.Type() }
func (n *Return) Pos() lexer.Position { return n.NodePos }
func (n *Return) String() string      { return "return " + n.Value.String() }

// Assign is a typed "let" binding.
type Assign struct {
	NodePos lexer.Position
	Name    string
	Value   Node
}

func (n *Assign) Type() Type          { return n.Value.Type() }
func (n *Assign) Pos() lexer.Position { return n.NodePos }
func (n *Assign) String() string      { return "let " + n.Name + " = " + n.Value.String() }

// ReAssign is a typed rebind of an existing variable.
type ReAssign struct {
	NodePos lexer.Position
	Name    string
	Value   Node
}

func (n *ReAssign) Type() Type          { return n.Value.Type() }
func (n *ReAssign) Pos() lexer.Position { return n.NodePos }
func (n *ReAssign) String() string      { return n.Name + " = " + n.Value.String() }

// IfStatement is a typed conditional with no else arm; its type is Bool
// (the condition's type) since a statement-position if has no meaningful
// value type of its own.
type IfStatement struct {
	NodePos   lexer.Position
	Condition Node
	Then      []Node
}

func (n *IfStatement) Type() Type          { return BoolType }
func (n *IfStatement) Pos() lexer.Position { return n.NodePos }
func (n *IfStatement) String() string {
	return "if " + n.Condition.String() + " { ... }"
}

// IfElse is a typed if/else; Type() is the Then branch's type, which
// unification has already asserted matches the Else branch's type.
type IfElse struct {
	NodePos    lexer.Position
	Condition  Node
	Then, Else []Node
	BranchType Type
}

func (n *IfElse) Type() Type          { return n.BranchType }
func (n *IfElse) Pos() lexer.Position { return n.NodePos }
func (n *IfElse) String() string {
	return "if " + n.Condition.String() + " { ... } else { ... }"
}

// While is a typed loop.
type While struct {
	NodePos   lexer.Position
	Condition Node
	Body      []Node
}

func (n *While) Type() Type          { return BoolType }
func (n *While) Pos() lexer.Position { return n.NodePos }
func (n *While) String() string {
	return "while " + n.Condition.String() + " { ... }"
}
