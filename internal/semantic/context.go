package semantic

import "github.com/dwsi-lang/dwsi/internal/hir"

// Context is the typechecker's symbol table: a chain of scopes mapping
// variable names to their resolved Type. It persists across REPL lines
// the same way the evaluator's Environment does, so a name bound on one
// line is visible when typechecking the next.
type Context struct {
	values map[string]hir.Type
	outer  *Context
}

// NewContext creates an empty top-level Context.
func NewContext() *Context {
	return &Context{values: make(map[string]hir.Type)}
}

// NewEnclosedContext creates a Context nested inside outer, used for
// function-body scopes.
func NewEnclosedContext(outer *Context) *Context {
	c := NewContext()
	c.outer = outer
	return c
}

// Define binds name to t in this scope.
func (c *Context) Define(name string, t hir.Type) {
	c.values[name] = t
}

// Lookup searches this scope, then each enclosing scope in turn.
func (c *Context) Lookup(name string) (hir.Type, bool) {
	t, ok := c.values[name]
	if !ok && c.outer != nil {
		return c.outer.Lookup(name)
	}
	return t, ok
}
