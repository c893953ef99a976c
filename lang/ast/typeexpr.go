package ast

import (
	"fmt"

	"github.com/cbcomp/cb/lang/token"
)

// TypeExpr is the syntactic representation of a type as written in source:
// a base keyword or name plus zero or more pointer/array/function
// modifiers applied by a declarator (spec ch. 3 "type expressions"). It is
// distinct from types.Type, which is the resolved, structural type that
// TypeResolver (spec ch. 4.5) attaches to every node that has a type.
type TypeExpr interface {
	Node
	typeExpr()
}

// NamedTypeExpr names a builtin keyword type (e.g. int, char, void) or a
// previously declared struct/union/typedef name.
type NamedTypeExpr struct {
	NamePos token.Pos
	Name    string // e.g. "int", "struct Point", "MyAlias"
}

func (*NamedTypeExpr) typeExpr() {}
func (n *NamedTypeExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "type:"+n.Name, nil) }
func (n *NamedTypeExpr) Span() (start, end token.Pos) {
	return n.NamePos, n.NamePos + token.Pos(len(n.Name))
}
func (n *NamedTypeExpr) Walk(v Visitor) {}

// PointerTypeExpr is "T *".
type PointerTypeExpr struct {
	Elem TypeExpr
	Star token.Pos
}

func (*PointerTypeExpr) typeExpr()                      {}
func (n *PointerTypeExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "pointer-type", nil) }
func (n *PointerTypeExpr) Span() (start, end token.Pos) {
	start, _ = n.Elem.Span()
	return start, n.Star
}
func (n *PointerTypeExpr) Walk(v Visitor) { Walk(v, n.Elem) }

// ArrayTypeExpr is "T [N]" or "T []" (an unsized array, only legal as a
// function parameter, where it decays to a pointer per spec ch. 4.7).
type ArrayTypeExpr struct {
	Elem     TypeExpr
	Lbrack   token.Pos
	Len      Expr // nil for an unsized array
	Rbrack   token.Pos
}

func (*ArrayTypeExpr) typeExpr()                      {}
func (n *ArrayTypeExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "array-type", nil) }
func (n *ArrayTypeExpr) Span() (start, end token.Pos) {
	start, _ = n.Elem.Span()
	return start, n.Rbrack
}
func (n *ArrayTypeExpr) Walk(v Visitor) {
	Walk(v, n.Elem)
	if n.Len != nil {
		Walk(v, n.Len)
	}
}

// FuncTypeExpr is the type of a function designator, as used for function
// pointer declarators and prototypes: "RetType (ParamTypes...)".
type FuncTypeExpr struct {
	Ret      TypeExpr
	Lparen   token.Pos
	Params   []*ParamDecl
	Variadic bool
	Rparen   token.Pos
}

func (*FuncTypeExpr) typeExpr()                      {}
func (n *FuncTypeExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "func-type", map[string]int{"params": len(n.Params)}) }
func (n *FuncTypeExpr) Span() (start, end token.Pos) {
	start, _ = n.Ret.Span()
	return start, n.Rparen
}
func (n *FuncTypeExpr) Walk(v Visitor) {
	Walk(v, n.Ret)
	for _, p := range n.Params {
		Walk(v, p)
	}
}
