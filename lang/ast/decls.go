package ast

import (
	"fmt"

	"github.com/cbcomp/cb/lang/token"
)

// ParamDecl is a single parameter of a function declarator or prototype.
// Name may be empty in a bare prototype ("int f(int, char*);").
type ParamDecl struct {
	Type     TypeExpr
	NamePos  token.Pos
	Name     string
}

func (*ParamDecl) decl() {}
func (n *ParamDecl) Format(f fmt.State, verb rune) { format(f, verb, n, "param:"+n.Name, nil) }
func (n *ParamDecl) Span() (start, end token.Pos) {
	start, _ = n.Type.Span()
	if n.Name != "" {
		return start, n.NamePos + token.Pos(len(n.Name))
	}
	_, end = n.Type.Span()
	return start, end
}
func (n *ParamDecl) Walk(v Visitor) { Walk(v, n.Type) }

// FuncDecl is a function declaration. Body is nil for a prototype
// ("undefined function", spec ch. 3 "Declarations"); non-nil for a
// definition ("defined function").
type FuncDecl struct {
	Ret      TypeExpr
	NamePos  token.Pos
	Name     string
	Lparen   token.Pos
	Params   []*ParamDecl
	Variadic token.Pos // set (non-zero) if the parameter list ends in "..."
	Rparen   token.Pos
	Body     *Block // nil => prototype only
	Semi     token.Pos
}

func (*FuncDecl) decl() {}
func (*FuncDecl) stmt() {} // a local prototype also participates as a Stmt in a Block
func (n *FuncDecl) Format(f fmt.State, verb rune) {
	kind := "func-proto:"
	if n.Body != nil {
		kind = "func-def:"
	}
	format(f, verb, n, kind+n.Name, map[string]int{"params": len(n.Params)})
}
func (n *FuncDecl) Span() (start, end token.Pos) {
	start, _ = n.Ret.Span()
	if n.Body != nil {
		_, end = n.Body.Span()
		return start, end
	}
	return start, n.Semi
}
func (n *FuncDecl) Walk(v Visitor) {
	Walk(v, n.Ret)
	for _, p := range n.Params {
		Walk(v, p)
	}
	if n.Body != nil {
		Walk(v, n.Body)
	}
}

// IsDefinition reports whether this FuncDecl carries a body.
func (n *FuncDecl) IsDefinition() bool { return n.Body != nil }

// VarDecl is a variable declaration, at file scope or block scope. Init is
// nil for a declaration with no initializer; at file scope such a
// declaration without extern defines the variable with zero-filled storage.
type VarDecl struct {
	Type    TypeExpr
	NamePos token.Pos
	Name    string
	Extern  bool
	Init    Expr // nil if there is no initializer
	Semi    token.Pos
}

func (*VarDecl) decl() {}
func (n *VarDecl) stmt() {} // a local VarDecl also participates as a Stmt in a Block
func (n *VarDecl) Format(f fmt.State, verb rune) {
	kind := "var-decl:"
	if n.Init == nil {
		kind = "var-proto:"
	}
	format(f, verb, n, kind+n.Name, nil)
}
func (n *VarDecl) Span() (start, end token.Pos) {
	start, _ = n.Type.Span()
	return start, n.Semi
}
func (n *VarDecl) Walk(v Visitor) {
	Walk(v, n.Type)
	if n.Init != nil {
		Walk(v, n.Init)
	}
}

// TypedefDecl is "typedef T Name;".
type TypedefDecl struct {
	TypedefPos token.Pos
	Type       TypeExpr
	NamePos    token.Pos
	Name       string
	Semi       token.Pos
}

func (*TypedefDecl) decl() {}
func (*TypedefDecl) stmt() {} // a local typedef also participates as a Stmt in a Block
func (n *TypedefDecl) Format(f fmt.State, verb rune) { format(f, verb, n, "typedef:"+n.Name, nil) }
func (n *TypedefDecl) Span() (start, end token.Pos) { return n.TypedefPos, n.Semi }
func (n *TypedefDecl) Walk(v Visitor)               { Walk(v, n.Type) }

// MemberDecl is one field of a struct or union definition.
type MemberDecl struct {
	Type    TypeExpr
	NamePos token.Pos
	Name    string
	Semi    token.Pos
}

func (*MemberDecl) decl() {}
func (n *MemberDecl) Format(f fmt.State, verb rune) { format(f, verb, n, "member:"+n.Name, nil) }
func (n *MemberDecl) Span() (start, end token.Pos) {
	start, _ = n.Type.Span()
	return start, n.Semi
}
func (n *MemberDecl) Walk(v Visitor) { Walk(v, n.Type) }

// AggregateKind distinguishes struct from union definitions that otherwise
// share an identical AST shape.
type AggregateKind int

// List of aggregate kinds.
const (
	StructKind AggregateKind = iota
	UnionKind
)

func (k AggregateKind) String() string {
	if k == UnionKind {
		return "union"
	}
	return "struct"
}

// AggregateDecl is a struct or union definition ("struct Name { ... };").
type AggregateDecl struct {
	Kind       AggregateKind
	KeywordPos token.Pos
	NamePos    token.Pos
	Name       string
	Lbrace     token.Pos
	Members    []*MemberDecl
	Rbrace     token.Pos
	Semi       token.Pos
}

func (*AggregateDecl) decl() {}
func (*AggregateDecl) stmt() {} // a local struct/union definition also participates as a Stmt in a Block
func (n *AggregateDecl) Format(f fmt.State, verb rune) {
	format(f, verb, n, n.Kind.String()+":"+n.Name, map[string]int{"members": len(n.Members)})
}
func (n *AggregateDecl) Span() (start, end token.Pos) { return n.KeywordPos, n.Semi }
func (n *AggregateDecl) Walk(v Visitor) {
	for _, m := range n.Members {
		Walk(v, m)
	}
}

// ConstDecl is a named constant with an initializer. The parser does not
// produce ConstDecl nodes: a "const"-qualified declaration is parsed as a
// VarDecl with the qualifier dropped. Later passes accept a ConstDecl
// where one appears but give it no storage.
type ConstDecl struct {
	ConstPos token.Pos
	Type     TypeExpr
	NamePos  token.Pos
	Name     string
	Value    Expr
	Semi     token.Pos
}

func (*ConstDecl) decl() {}
func (n *ConstDecl) Format(f fmt.State, verb rune) { format(f, verb, n, "const:"+n.Name, nil) }
func (n *ConstDecl) Span() (start, end token.Pos) { return n.ConstPos, n.Semi }
func (n *ConstDecl) Walk(v Visitor) {
	Walk(v, n.Type)
	Walk(v, n.Value)
}
