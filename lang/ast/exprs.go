package ast

import (
	"fmt"

	"github.com/cbcomp/cb/lang/token"
)

// Unwrap strips any enclosing ParenExpr nodes, returning the first
// non-parenthesized expression.
func Unwrap(e Expr) Expr {
	if pe, ok := e.(*ParenExpr); ok {
		return Unwrap(pe.X)
	}
	return e
}

// IsAssignable reports whether e can appear as the left-hand side of an
// assignment (spec ch. 4.7): an identifier, a member access, a
// pointer-member access, or an array/index reference into one.
func IsAssignable(e Expr) bool {
	switch e := Unwrap(e).(type) {
	case *IdentExpr:
		return true
	case *MemberExpr:
		return IsAssignable(e.X)
	case *PtrMemberExpr:
		return true // X is a pointer value, not itself required to be assignable
	case *IndexExpr:
		return true
	case *UnaryExpr:
		return e.Op == token.STAR // *p = ... is assignable through the pointer
	default:
		return false
	}
}

type (
	// BadExpr represents an expression that failed to parse; it lets the
	// parser produce a partial AST and keep recovering after a syntax error
	// instead of aborting the whole translation unit.
	BadExpr struct {
		Start token.Pos
		End   token.Pos
	}

	// IntLitExpr is an integer literal (spec 4.1: decimal, hex, or octal,
	// with optional U/L suffixes).
	IntLitExpr struct {
		ValuePos token.Pos
		Raw      string
		Value    int64
	}

	// StringLitExpr is a "..."-quoted string literal.
	StringLitExpr struct {
		ValuePos token.Pos
		Raw      string
		Value    string
	}

	// CharLitExpr is a '...'-quoted character literal.
	CharLitExpr struct {
		ValuePos token.Pos
		Raw      string
		Value    rune
	}

	// IdentExpr is a reference to a variable, function, or enumerated
	// constant name. LocalReferenceResolver (spec 4.4) attaches the
	// resolved binding to Entity.
	IdentExpr struct {
		NamePos token.Pos
		Name    string
		Entity  any // *resolver.Binding once resolved; left untyped to avoid an import cycle
	}

	// UnaryExpr is a prefix unary operator: + - ! ~ * & ++ -- or sizeof.
	// SizeofType is non-nil when this is "sizeof(TypeExpr)" rather than
	// "sizeof expr"; in that case X is nil.
	UnaryExpr struct {
		OpPos      token.Pos
		Op         token.Token
		X          Expr
		SizeofType TypeExpr
		End        token.Pos
	}

	// PostfixExpr is a postfix ++ or --.
	PostfixExpr struct {
		X     Expr
		Op    token.Token
		OpPos token.Pos
	}

	// BinaryExpr is any non-assignment binary operator: arithmetic,
	// relational, bitwise, shift, logical && / ||, or the comma operator.
	BinaryExpr struct {
		X  Expr
		Op token.Token
		OpPos token.Pos
		Y  Expr
	}

	// AssignExpr is a simple or compound assignment: = += -= *= /= %= &= |=
	// ^= <<= >>=.
	AssignExpr struct {
		LHS   Expr
		Op    token.Token
		OpPos token.Pos
		RHS   Expr
	}

	// CondExpr is the ternary conditional operator "Cond ? Then : Else".
	CondExpr struct {
		Cond     Expr
		Question token.Pos
		Then     Expr
		Colon    token.Pos
		Else     Expr
	}

	// CastExpr is an explicit C-style cast "(Type) X". The parser only
	// produces casts that were written in source; TypeChecker (spec 4.7)
	// materializes additional CastExpr nodes for implicit conversions so
	// that every value-changing conversion is visible as an AST node.
	CastExpr struct {
		Lparen token.Pos
		Type   TypeExpr
		Rparen token.Pos
		X      Expr
		// Implicit is true for a cast synthesized by TypeChecker rather
		// than one written by the programmer.
		Implicit bool
	}

	// MemberExpr is "X.Name" (struct/union member access by value).
	MemberExpr struct {
		X       Expr
		Dot     token.Pos
		NamePos token.Pos
		Name    string
	}

	// PtrMemberExpr is "X->Name" (struct/union member access through a
	// pointer).
	PtrMemberExpr struct {
		X       Expr
		Arrow   token.Pos
		NamePos token.Pos
		Name    string
	}

	// IndexExpr is "X[Index]", an array or pointer subscript.
	IndexExpr struct {
		X      Expr
		Lbrack token.Pos
		Index  Expr
		Rbrack token.Pos
	}

	// CallExpr is "Fn(Args...)".
	CallExpr struct {
		Fn     Expr
		Lparen token.Pos
		Args   []Expr
		Rparen token.Pos
	}

	// ParenExpr is a parenthesized expression "(X)", kept in the AST so
	// that Span and re-printing are exact; semantic passes look through it
	// via Unwrap.
	ParenExpr struct {
		Lparen token.Pos
		X      Expr
		Rparen token.Pos
	}
)

func (*BadExpr) expr() {}
func (n *BadExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "!bad expr!", nil) }
func (n *BadExpr) Span() (start, end token.Pos)  { return n.Start, n.End }
func (n *BadExpr) Walk(v Visitor)                {}

func (*IntLitExpr) expr() {}
func (n *IntLitExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "int:"+n.Raw, nil) }
func (n *IntLitExpr) Span() (start, end token.Pos) {
	return n.ValuePos, n.ValuePos + token.Pos(len(n.Raw))
}
func (n *IntLitExpr) Walk(v Visitor) {}

func (*StringLitExpr) expr() {}
func (n *StringLitExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "string:"+n.Raw, nil) }
func (n *StringLitExpr) Span() (start, end token.Pos) {
	return n.ValuePos, n.ValuePos + token.Pos(len(n.Raw))
}
func (n *StringLitExpr) Walk(v Visitor) {}

func (*CharLitExpr) expr() {}
func (n *CharLitExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "char:"+n.Raw, nil) }
func (n *CharLitExpr) Span() (start, end token.Pos) {
	return n.ValuePos, n.ValuePos + token.Pos(len(n.Raw))
}
func (n *CharLitExpr) Walk(v Visitor) {}

func (*IdentExpr) expr() {}
func (n *IdentExpr) Format(f fmt.State, verb rune) { format(f, verb, n, n.Name, nil) }
func (n *IdentExpr) Span() (start, end token.Pos) {
	return n.NamePos, n.NamePos + token.Pos(len(n.Name))
}
func (n *IdentExpr) Walk(v Visitor) {}

func (*UnaryExpr) expr() {}
func (n *UnaryExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "unary "+n.Op.GoString(), nil) }
func (n *UnaryExpr) Span() (start, end token.Pos) {
	if n.SizeofType != nil {
		return n.OpPos, n.End
	}
	_, end = n.X.Span()
	return n.OpPos, end
}
func (n *UnaryExpr) Walk(v Visitor) {
	if n.SizeofType != nil {
		Walk(v, n.SizeofType)
		return
	}
	Walk(v, n.X)
}

func (*PostfixExpr) expr() {}
func (n *PostfixExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "postfix "+n.Op.GoString(), nil) }
func (n *PostfixExpr) Span() (start, end token.Pos) {
	start, _ = n.X.Span()
	return start, n.OpPos + token.Pos(len(n.Op.String()))
}
func (n *PostfixExpr) Walk(v Visitor) { Walk(v, n.X) }

func (*BinaryExpr) expr() {}
func (n *BinaryExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "binary "+n.Op.GoString(), nil) }
func (n *BinaryExpr) Span() (start, end token.Pos) {
	start, _ = n.X.Span()
	_, end = n.Y.Span()
	return start, end
}
func (n *BinaryExpr) Walk(v Visitor) {
	Walk(v, n.X)
	Walk(v, n.Y)
}

func (*AssignExpr) expr() {}
func (n *AssignExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "assign "+n.Op.GoString(), nil) }
func (n *AssignExpr) Span() (start, end token.Pos) {
	start, _ = n.LHS.Span()
	_, end = n.RHS.Span()
	return start, end
}
func (n *AssignExpr) Walk(v Visitor) {
	Walk(v, n.LHS)
	Walk(v, n.RHS)
}

func (*CondExpr) expr() {}
func (n *CondExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "cond ?:", nil) }
func (n *CondExpr) Span() (start, end token.Pos) {
	start, _ = n.Cond.Span()
	_, end = n.Else.Span()
	return start, end
}
func (n *CondExpr) Walk(v Visitor) {
	Walk(v, n.Cond)
	Walk(v, n.Then)
	Walk(v, n.Else)
}

func (*CastExpr) expr() {}
func (n *CastExpr) Format(f fmt.State, verb rune) {
	lbl := "cast"
	if n.Implicit {
		lbl = "implicit-cast"
	}
	format(f, verb, n, lbl, nil)
}
func (n *CastExpr) Span() (start, end token.Pos) {
	_, end = n.X.Span()
	return n.Lparen, end
}
func (n *CastExpr) Walk(v Visitor) {
	Walk(v, n.Type)
	Walk(v, n.X)
}

func (*MemberExpr) expr() {}
func (n *MemberExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "expr."+n.Name, nil) }
func (n *MemberExpr) Span() (start, end token.Pos) {
	start, _ = n.X.Span()
	return start, n.NamePos + token.Pos(len(n.Name))
}
func (n *MemberExpr) Walk(v Visitor) { Walk(v, n.X) }

func (*PtrMemberExpr) expr() {}
func (n *PtrMemberExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "expr->"+n.Name, nil) }
func (n *PtrMemberExpr) Span() (start, end token.Pos) {
	start, _ = n.X.Span()
	return start, n.NamePos + token.Pos(len(n.Name))
}
func (n *PtrMemberExpr) Walk(v Visitor) { Walk(v, n.X) }

func (*IndexExpr) expr() {}
func (n *IndexExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "expr[index]", nil) }
func (n *IndexExpr) Span() (start, end token.Pos) {
	start, _ = n.X.Span()
	return start, n.Rbrack + token.Pos(len(token.RBRACK.String()))
}
func (n *IndexExpr) Walk(v Visitor) {
	Walk(v, n.X)
	Walk(v, n.Index)
}

func (*CallExpr) expr() {}
func (n *CallExpr) Format(f fmt.State, verb rune) {
	format(f, verb, n, "call", map[string]int{"args": len(n.Args)})
}
func (n *CallExpr) Span() (start, end token.Pos) {
	start, _ = n.Fn.Span()
	return start, n.Rparen + token.Pos(len(token.RPAREN.String()))
}
func (n *CallExpr) Walk(v Visitor) {
	Walk(v, n.Fn)
	for _, a := range n.Args {
		Walk(v, a)
	}
}

func (*ParenExpr) expr() {}
func (n *ParenExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "(expr)", nil) }
func (n *ParenExpr) Span() (start, end token.Pos) {
	return n.Lparen, n.Rparen + token.Pos(len(token.RPAREN.String()))
}
func (n *ParenExpr) Walk(v Visitor) { Walk(v, n.X) }
