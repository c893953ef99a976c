// Package resolver implements the two name/jump binding passes that run
// between parsing and type resolution (spec ch. 4.3 "JumpResolver" and ch.
// 4.4 "LocalReferenceResolver"): JumpResolver links break/continue/goto to
// their targets, and LocalReferenceResolver builds the nested lexical
// scopes and binds every identifier use to the declaration it refers to.
package resolver

import (
	"fmt"

	"github.com/cbcomp/cb/lang/ast"
)

// Kind classifies what a Binding's Decl actually declares.
type Kind int

// List of binding kinds.
const (
	Func Kind = iota
	Var
	Param
	Typedef
)

func (k Kind) String() string {
	switch k {
	case Func:
		return "function"
	case Var:
		return "variable"
	case Param:
		return "parameter"
	case Typedef:
		return "typedef"
	default:
		return "<invalid kind>"
	}
}

// Binding is what ast.IdentExpr.Entity points to once LocalReferenceResolver
// has run: the declaration an identifier use refers to. TypeResolver (spec
// ch. 4.5) later consults Decl to attach the variable/function's resolved
// type.
type Binding struct {
	Name string
	Kind Kind
	Decl ast.Node // *ast.FuncDecl, *ast.VarDecl, *ast.ParamDecl, or *ast.TypedefDecl
}

func (b *Binding) String() string { return fmt.Sprintf("%s %s", b.Kind, b.Name) }

// scope is one level of the lexical scope tree (spec ch. 3 "Scope":
// TopScope -> ToplevelScope -> LocalScope*).
type scope struct {
	parent *scope
	names  map[string]*Binding
}

func newScope(parent *scope) *scope {
	return &scope{parent: parent, names: make(map[string]*Binding)}
}

// declare binds name to b in this scope, reporting ok=false if name is
// already bound directly in this scope (redeclaration; shadowing an outer
// scope's binding of the same name is fine and not reported here).
func (s *scope) declare(name string, b *Binding) (prev *Binding, ok bool) {
	if prev, exists := s.names[name]; exists {
		return prev, false
	}
	s.names[name] = b
	return nil, true
}

// lookup walks s and its ancestors for name.
func (s *scope) lookup(name string) *Binding {
	for cur := s; cur != nil; cur = cur.parent {
		if b, ok := cur.names[name]; ok {
			return b
		}
	}
	return nil
}
