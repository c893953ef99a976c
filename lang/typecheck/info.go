// Package typecheck implements the semantic analysis passes that run after
// name/jump resolution (spec ch. 4.5-4.7): TypeResolver attaches a resolved
// types.Type to every declaration and expression and feeds TypeTable's
// layout computation; DereferenceChecker validates the operand category of
// *, [], ., ->, and &; TypeChecker performs full expression typing,
// implicit-conversion legality, assignability, call and switch/case
// checking, and return-type conformance.
//
// Per spec ch. 9 "Mutable AST vs. immutable IR", annotations are kept in a
// side table (Info) keyed by node identity rather than as extra fields on
// every ast.Expr, since ast.Expr is an interface and most concrete node
// types are shared with the parser package.
package typecheck

import "github.com/cbcomp/cb/lang/types"

// exprTypes is the pair of type slots spec ch. 3 assigns to every
// expression: Orig is the type the language would determine before any
// implicit conversion, Eff is the type after integer promotions / usual
// arithmetic conversions / decay have been applied.
type exprTypes struct {
	Orig *types.Type
	Eff  *types.Type
}

// Info holds every annotation produced by the ch. 4.5-4.7 passes for one
// compilation: the resolved type of each expression and declaration, plus
// whether a given expression is an assignable lvalue.
type Info struct {
	exprs   map[any]exprTypes
	decls   map[any]*types.Type
	lvalues map[any]bool
}

// NewInfo returns an empty annotation table.
func NewInfo() *Info {
	return &Info{
		exprs:   make(map[any]exprTypes),
		decls:   make(map[any]*types.Type),
		lvalues: make(map[any]bool),
	}
}

// TypeOf returns the effective (post-conversion) type of e. It panics if e
// was never typed, which indicates TypeChecker did not reach every
// expression node — an invariant violation (spec ch. 8 "Type
// materialization").
func (in *Info) TypeOf(e any) *types.Type {
	t, ok := in.exprs[e]
	if !ok {
		panic("typecheck: TypeOf called on untyped node")
	}
	return t.Eff
}

// OrigTypeOf returns the type e would have before any implicit conversion.
func (in *Info) OrigTypeOf(e any) *types.Type {
	return in.exprs[e].Orig
}

// effIfSet returns e's effective (post-conversion) type without panicking
// if e hasn't been typed yet, unlike TypeOf. CastExpr uses this to tell
// "TypeChecker already resolved this cast's target" apart from "TypeChecker
// hasn't run yet" without forcing every caller through TypeOf's panic.
func (in *Info) effIfSet(e any) *types.Type {
	return in.exprs[e].Eff
}

func (in *Info) setType(e any, orig, eff *types.Type) {
	in.exprs[e] = exprTypes{Orig: orig, Eff: eff}
}

// DeclType returns the resolved type of a declaration node (*ast.FuncDecl,
// *ast.VarDecl, *ast.ParamDecl).
func (in *Info) DeclType(d any) *types.Type { return in.decls[d] }

func (in *Info) setDeclType(d any, t *types.Type) { in.decls[d] = t }

// IsLvalue reports whether e was classified as an assignable lvalue by
// DereferenceChecker.
func (in *Info) IsLvalue(e any) bool { return in.lvalues[e] }

func (in *Info) setLvalue(e any, v bool) { in.lvalues[e] = v }
