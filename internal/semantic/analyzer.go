// Package semantic implements the typechecker: lowering an ast.Program
// into a typed []hir.Node via per-node unification rules (literal, var,
// binary, assign, func, lambda, return, if, list, call).
package semantic

import (
	"github.com/dwsi-lang/dwsi/internal/ast"
	"github.com/dwsi-lang/dwsi/internal/errors"
	"github.com/dwsi-lang/dwsi/internal/hir"
	"github.com/dwsi-lang/dwsi/internal/lexer"
)

// position is the source-location type every typecheck error is anchored
// to; it is exactly the AST's own Pos() type.
type position = lexer.Position

// FuncSig is a user-defined function's resolved signature, used to
// typecheck calls and to allow a function to call itself recursively
// before its body has finished typechecking.
type FuncSig struct {
	Params []hir.Type
	Return hir.Type
}

// Analyzer typechecks a sequence of statements against a persistent
// Context, the same way the evaluator runs statements against a
// persistent Environment — so a REPL session can typecheck one line at a
// time and have earlier bindings stay visible.
type Analyzer struct {
	ctx    *Context
	funcs  map[string]*FuncSig
	source string
}

// NewAnalyzer creates an Analyzer with an empty top-level Context.
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		ctx:   NewContext(),
		funcs: make(map[string]*FuncSig),
	}
}

// isBuiltinFunc reports whether name is reserved for one of the built-in
// functions dispatched directly in typecheckCall, so typecheckFuncStatement
// can reject a user function that would shadow one: evalCall checks
// builtin names before looking up the Environment, so a user-defined
// "println" or "reduce" would typecheck but never actually run.
func isBuiltinFunc(name string) bool {
	return name == "println" || name == "reduce"
}

// Typecheck lowers every statement in prog into a typed hir.Node,
// threading the Analyzer's persistent Context across statements. It
// stops and returns the first error encountered, the same fail-fast
// discipline the evaluator uses.
func (a *Analyzer) Typecheck(prog *ast.Program, source string) ([]hir.Node, error) {
	a.source = source
	nodes := make([]hir.Node, 0, len(prog.Statements))
	for _, stmt := range prog.Statements {
		n, err := a.typecheckStmt(stmt)
		if err != nil {
			return nodes, err
		}
		if n != nil {
			nodes = append(nodes, n)
		}
	}
	return nodes, nil
}

func (a *Analyzer) typecheckStmt(stmt ast.Statement) (hir.Node, error) {
	switch s := stmt.(type) {
	case *ast.ExpressionStatement:
		if s.Expression == nil {
			return nil, nil
		}
		return a.typecheckExpr(s.Expression)

	case *ast.AssignStatement:
		val, err := a.typecheckExpr(s.Value)
		if err != nil {
			return nil, err
		}
		if s.Ascription != nil {
			want := a.resolveAscription(s.Ascription)
			if err := a.unifyTypes(s.Pos(), want, val.Type()); err != nil {
				return nil, err
			}
		}
		a.ctx.Define(s.Name, val.Type())
		return &hir.Assign{NodePos: s.Pos(), Name: s.Name, Value: val}, nil

	case *ast.ReAssignStatement:
		if _, ok := a.ctx.Lookup(s.Name); !ok {
			return nil, errors.NewTypeError(a.source, s.Pos(), "undefined variable %q", s.Name)
		}
		val, err := a.typecheckExpr(s.Value)
		if err != nil {
			return nil, err
		}
		return &hir.ReAssign{NodePos: s.Pos(), Name: s.Name, Value: val}, nil

	case *ast.ReturnStatement:
		val, err := a.typecheckExpr(s.Value)
		if err != nil {
			return nil, err
		}
		return &hir.Return{NodePos: s.Pos(), Value: val}, nil

	case *ast.IfStatement:
		cond, err := a.typecheckExpr(s.Condition)
		if err != nil {
			return nil, err
		}
		if err := a.unifyTypes(s.Pos(), hir.BoolType, cond.Type()); err != nil {
			return nil, err
		}
		then, err := a.typecheckBlock(s.Then)
		if err != nil {
			return nil, err
		}
		return &hir.IfStatement{NodePos: s.Pos(), Condition: cond, Then: then}, nil

	case *ast.IfElseStatement:
		cond, err := a.typecheckExpr(s.Condition)
		if err != nil {
			return nil, err
		}
		if err := a.unifyTypes(s.Pos(), hir.BoolType, cond.Type()); err != nil {
			return nil, err
		}
		then, err := a.typecheckBlock(s.Then)
		if err != nil {
			return nil, err
		}
		elseNodes, err := a.typecheckBlock(s.Else)
		if err != nil {
			return nil, err
		}
		branchType := lastType(then)
		if err := a.unifyTypes(s.Pos(), branchType, lastType(elseNodes)); err != nil {
			return nil, err
		}
		return &hir.IfElse{NodePos: s.Pos(), Condition: cond, Then: then, Else: elseNodes, BranchType: branchType}, nil

	case *ast.WhileStatement:
		cond, err := a.typecheckExpr(s.Condition)
		if err != nil {
			return nil, err
		}
		if err := a.unifyTypes(s.Pos(), hir.BoolType, cond.Type()); err != nil {
			return nil, err
		}
		body, err := a.typecheckBlock(s.Body)
		if err != nil {
			return nil, err
		}
		return &hir.While{NodePos: s.Pos(), Condition: cond, Body: body}, nil

	case *ast.FuncStatement:
		return a.typecheckFuncStatement(s)

	case *ast.ClassStatement:
		return nil, errors.NewTypeError(a.source, s.Pos(), "unsupported construct: class")

	default:
		return nil, errors.NewTypeError(a.source, stmt.Pos(), "unsupported construct: %T", stmt)
	}
}

func (a *Analyzer) typecheckBlock(block *ast.Block) ([]hir.Node, error) {
	nodes := make([]hir.Node, 0, len(block.Statements))
	for _, stmt := range block.Statements {
		n, err := a.typecheckStmt(stmt)
		if err != nil {
			return nil, err
		}
		if n != nil {
			nodes = append(nodes, n)
		}
	}
	return nodes, nil
}

func (a *Analyzer) typecheckFuncStatement(s *ast.FuncStatement) (hir.Node, error) {
	if isBuiltinFunc(s.Name) {
		return nil, errors.NewTypeError(a.source, s.Pos(), "cannot redefine builtin function %q", s.Name)
	}

	params := make([]hir.Param, len(s.Parameters))
	paramTypes := make([]hir.Type, len(s.Parameters))
	for i, p := range s.Parameters {
		params[i] = hir.Param{Name: p.Value, Type: hir.IntType}
		paramTypes[i] = hir.IntType
	}

	returnType := hir.IntType
	if s.Ascription != nil {
		returnType = a.resolveAscription(s.Ascription)
	}

	// Register the provisional signature before typechecking the body so
	// a recursive call inside the body resolves against it.
	a.funcs[s.Name] = &FuncSig{Params: paramTypes, Return: returnType}
	a.ctx.Define(s.Name, returnType)

	bodyCtx := NewEnclosedContext(a.ctx)
	saved := a.ctx
	a.ctx = bodyCtx
	for _, p := range params {
		a.ctx.Define(p.Name, p.Type)
	}
	body, err := a.typecheckBlock(s.Body)
	a.ctx = saved
	if err != nil {
		return nil, err
	}

	if s.Ascription == nil {
		if rt := lastReturnType(body); rt != nil {
			returnType = *rt
			a.funcs[s.Name].Return = returnType
			a.ctx.Define(s.Name, returnType)
		}
	}

	return &hir.FuncDecl{NodePos: s.Pos(), Name: s.Name, Parameters: params, Body: body, ReturnType: returnType}, nil
}

func (a *Analyzer) typecheckExpr(expr ast.Expression) (hir.Node, error) {
	switch e := expr.(type) {
	case *ast.IntegerLiteral:
		return &hir.IntLiteral{NodePos: e.Pos(), Value: e.Value}, nil

	case *ast.BooleanLiteral:
		return &hir.BoolLiteral{NodePos: e.Pos(), Value: e.Value}, nil

	case *ast.StringLiteral:
		return &hir.StrLiteral{NodePos: e.Pos(), Value: e.Value}, nil

	case *ast.Identifier:
		t, ok := a.ctx.Lookup(e.Value)
		if !ok {
			return nil, errors.NewTypeError(a.source, e.Pos(), "undefined variable %q", e.Value)
		}
		return &hir.Var{NodePos: e.Pos(), Name: e.Value, VarType: t}, nil

	case *ast.ListLiteral:
		return a.typecheckListLiteral(e)

	case *ast.BinaryExpression:
		return a.typecheckBinary(e)

	case *ast.CallExpression:
		return a.typecheckCall(e)

	case *ast.FunctionLiteral:
		return a.typecheckFunctionLiteral(e)

	default:
		return nil, errors.NewTypeError(a.source, expr.Pos(), "unsupported construct: %T", expr)
	}
}

func (a *Analyzer) typecheckListLiteral(e *ast.ListLiteral) (hir.Node, error) {
	elemType := hir.IntType
	elements := make([]hir.Node, len(e.Elements))
	for i, el := range e.Elements {
		n, err := a.typecheckExpr(el)
		if err != nil {
			return nil, err
		}
		if i == 0 {
			elemType = n.Type()
		} else if err := a.unifyTypes(e.Pos(), elemType, n.Type()); err != nil {
			return nil, err
		}
		elements[i] = n
	}
	return &hir.ListLiteral{NodePos: e.Pos(), Elements: elements, ElemType: elemType}, nil
}

func (a *Analyzer) typecheckBinary(e *ast.BinaryExpression) (hir.Node, error) {
	left, err := a.typecheckExpr(e.Left)
	if err != nil {
		return nil, err
	}
	right, err := a.typecheckExpr(e.Right)
	if err != nil {
		return nil, err
	}

	var resultType hir.Type
	switch e.Operator {
	case ast.OpAdd, ast.OpSub, ast.OpDiv:
		if err := a.unifyTypes(e.Pos(), hir.IntType, left.Type()); err != nil {
			return nil, err
		}
		if err := a.unifyTypes(e.Pos(), hir.IntType, right.Type()); err != nil {
			return nil, err
		}
		resultType = hir.IntType
	case ast.OpOr, ast.OpAnd:
		if err := a.unifyTypes(e.Pos(), hir.BoolType, left.Type()); err != nil {
			return nil, err
		}
		if err := a.unifyTypes(e.Pos(), hir.BoolType, right.Type()); err != nil {
			return nil, err
		}
		resultType = hir.BoolType
	case ast.OpGreaterThan, ast.OpLessThan, ast.OpLessOrEqual:
		if err := a.unifyTypes(e.Pos(), hir.IntType, left.Type()); err != nil {
			return nil, err
		}
		if err := a.unifyTypes(e.Pos(), hir.IntType, right.Type()); err != nil {
			return nil, err
		}
		resultType = hir.BoolType
	case ast.OpEqTo:
		if err := a.unifyTypes(e.Pos(), left.Type(), right.Type()); err != nil {
			return nil, err
		}
		resultType = hir.BoolType
	default:
		return nil, errors.NewTypeError(a.source, e.Pos(), "unsupported operator %q", e.Operator)
	}

	return &hir.Binary{NodePos: e.Pos(), Left: left, Right: right, Op: e.Operator, ResultType: resultType}, nil
}

func (a *Analyzer) typecheckCall(e *ast.CallExpression) (hir.Node, error) {
	args := make([]hir.Node, len(e.Arguments))
	for i, arg := range e.Arguments {
		n, err := a.typecheckExpr(arg)
		if err != nil {
			return nil, err
		}
		args[i] = n
	}

	switch e.Function {
	case "println":
		returnType := hir.BoolType
		if len(args) > 0 {
			returnType = args[0].Type()
		}
		return &hir.Call{NodePos: e.Pos(), Function: e.Function, Arguments: args, ResultType: returnType}, nil

	case "reduce":
		// reduce(list) folds a list of Int with "+" and returns Int, the
		// sum. reduce(list, combine) is an additional overload: folded
		// left-to-right with combine instead of "+", and its result is the
		// list's own element type (the type combine folds over), not
		// necessarily Int. Both forms yield the additive identity for an
		// empty list.
		switch len(args) {
		case 1:
			if args[0].Type().Kind != hir.List {
				return nil, errors.NewTypeError(a.source, e.Pos(), "reduce: argument must be a list, got %s", args[0].Type())
			}
			return &hir.Call{NodePos: e.Pos(), Function: e.Function, Arguments: args, ResultType: hir.IntType}, nil
		case 2:
			if args[0].Type().Kind != hir.List {
				return nil, errors.NewTypeError(a.source, e.Pos(), "reduce: first argument must be a list, got %s", args[0].Type())
			}
			return &hir.Call{NodePos: e.Pos(), Function: e.Function, Arguments: args, ResultType: *args[0].Type().Elem}, nil
		default:
			return nil, errors.NewTypeError(a.source, e.Pos(), "reduce: expected 1 or 2 arguments, got %d", len(args))
		}
	}

	sig, ok := a.funcs[e.Function]
	if !ok {
		return nil, errors.NewTypeError(a.source, e.Pos(), "undefined function %q", e.Function)
	}
	return &hir.Call{NodePos: e.Pos(), Function: e.Function, Arguments: args, ResultType: sig.Return}, nil
}

func (a *Analyzer) typecheckFunctionLiteral(e *ast.FunctionLiteral) (hir.Node, error) {
	params := make([]hir.Param, len(e.Parameters))
	for i, p := range e.Parameters {
		params[i] = hir.Param{Name: p.Value, Type: hir.IntType}
	}

	bodyCtx := NewEnclosedContext(a.ctx)
	saved := a.ctx
	a.ctx = bodyCtx
	for _, p := range params {
		a.ctx.Define(p.Name, p.Type)
	}
	body, err := a.typecheckBlock(e.Body)
	a.ctx = saved
	if err != nil {
		return nil, err
	}

	returnType := hir.IntType
	if rt := lastReturnType(body); rt != nil {
		returnType = *rt
	}

	return &hir.Function{NodePos: e.Pos(), Parameters: params, Body: body, ReturnType: returnType}, nil
}

func (a *Analyzer) resolveAscription(ta *ast.TypeAnnotation) hir.Type {
	if ta.Elem != nil {
		return hir.ListOf(a.resolveAscription(ta.Elem))
	}
	switch ta.Name {
	case "bool":
		return hir.BoolType
	case "str":
		return hir.StrType
	default:
		return hir.IntType
	}
}

func (a *Analyzer) unifyTypes(pos position, want, got hir.Type) error {
	if !want.Equals(got) {
		return errors.NewTypeError(a.source, pos, "type mismatch: expected %s, got %s", want, got)
	}
	return nil
}

// lastType returns the last node's type in a statement list, or BoolType
// if the list is empty (an empty block has no meaningful value).
func lastType(nodes []hir.Node) hir.Type {
	if len(nodes) == 0 {
		return hir.BoolType
	}
	return nodes[len(nodes)-1].Type()
}

// lastReturnType scans a function body for its last Return node, used to
// infer a return type when the surface syntax carries no ascription.
func lastReturnType(nodes []hir.Node) *hir.Type {
	var found *hir.Type
	for _, n := range nodes {
		if r, ok := n.(*hir.Return); ok {
			t := r.Type()
			found = &t
		}
	}
	return found
}
