package ast

import (
	"fmt"

	"github.com/cbcomp/cb/lang/token"
)

// ExprStmt is a bare expression used as a statement ("f(x);").
type ExprStmt struct {
	X    Expr
	Semi token.Pos
}

func (*ExprStmt) stmt() {}
func (n *ExprStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "expr-stmt", nil) }
func (n *ExprStmt) Span() (start, end token.Pos) {
	start, _ = n.X.Span()
	return start, n.Semi
}
func (n *ExprStmt) Walk(v Visitor) { Walk(v, n.X) }

// IfStmt is "if (Cond) Then [else Else]". Else is nil when absent; it may
// itself be an *IfStmt to represent "else if".
type IfStmt struct {
	IfPos token.Pos
	Cond  Expr
	Then  Stmt
	Else  Stmt // nil, *IfStmt, or any Stmt (commonly *Block)
}

func (*IfStmt) stmt() {}
func (n *IfStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "if", map[string]int{"has-else": boolInt(n.Else != nil)}) }
func (n *IfStmt) Span() (start, end token.Pos) {
	if n.Else != nil {
		_, end = n.Else.Span()
	} else {
		_, end = n.Then.Span()
	}
	return n.IfPos, end
}
func (n *IfStmt) Walk(v Visitor) {
	Walk(v, n.Cond)
	Walk(v, n.Then)
	if n.Else != nil {
		Walk(v, n.Else)
	}
}

// WhileStmt is "while (Cond) Body".
type WhileStmt struct {
	WhilePos token.Pos
	Cond     Expr
	Body     Stmt
}

func (*WhileStmt) stmt() {}
func (n *WhileStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "while", nil) }
func (n *WhileStmt) Span() (start, end token.Pos) {
	_, end = n.Body.Span()
	return n.WhilePos, end
}
func (n *WhileStmt) Walk(v Visitor) {
	Walk(v, n.Cond)
	Walk(v, n.Body)
}

// DoWhileStmt is "do Body while (Cond);".
type DoWhileStmt struct {
	DoPos token.Pos
	Body  Stmt
	Cond  Expr
	Semi  token.Pos
}

func (*DoWhileStmt) stmt() {}
func (n *DoWhileStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "do-while", nil) }
func (n *DoWhileStmt) Span() (start, end token.Pos) { return n.DoPos, n.Semi }
func (n *DoWhileStmt) Walk(v Visitor) {
	Walk(v, n.Body)
	Walk(v, n.Cond)
}

// ForStmt is "for (Init; Cond; Post) Body". Init, Cond and Post are each
// individually optional per C syntax.
type ForStmt struct {
	ForPos token.Pos
	Init   Stmt // *ExprStmt, *VarDecl, or nil
	Cond   Expr // nil means "always true"
	Post   Expr // nil means no post-expression
	Body   Stmt
}

func (*ForStmt) stmt() {}
func (n *ForStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "for", nil) }
func (n *ForStmt) Span() (start, end token.Pos) {
	_, end = n.Body.Span()
	return n.ForPos, end
}
func (n *ForStmt) Walk(v Visitor) {
	if n.Init != nil {
		Walk(v, n.Init)
	}
	if n.Cond != nil {
		Walk(v, n.Cond)
	}
	if n.Post != nil {
		Walk(v, n.Post)
	}
	Walk(v, n.Body)
}

// CaseStmt is one "case Value:" or "default:" arm inside a SwitchStmt.
// Value is nil for the default arm.
type CaseStmt struct {
	CasePos token.Pos
	Value   Expr // nil => default
	Colon   token.Pos
	Stmts   []Stmt
}

func (*CaseStmt) stmt() {}
func (n *CaseStmt) Format(f fmt.State, verb rune) {
	label := "case"
	if n.Value == nil {
		label = "default"
	}
	format(f, verb, n, label, map[string]int{"stmts": len(n.Stmts)})
}
func (n *CaseStmt) Span() (start, end token.Pos) {
	end = n.Colon
	if len(n.Stmts) > 0 {
		_, end = n.Stmts[len(n.Stmts)-1].Span()
	}
	return n.CasePos, end
}
func (n *CaseStmt) Walk(v Visitor) {
	if n.Value != nil {
		Walk(v, n.Value)
	}
	for _, s := range n.Stmts {
		Walk(v, s)
	}
}

// SwitchStmt is "switch (Tag) { Cases... }".
type SwitchStmt struct {
	SwitchPos token.Pos
	Tag       Expr
	Lbrace    token.Pos
	Cases     []*CaseStmt
	Rbrace    token.Pos
}

func (*SwitchStmt) stmt() {}
func (n *SwitchStmt) Format(f fmt.State, verb rune) {
	format(f, verb, n, "switch", map[string]int{"cases": len(n.Cases)})
}
func (n *SwitchStmt) Span() (start, end token.Pos) { return n.SwitchPos, n.Rbrace }
func (n *SwitchStmt) Walk(v Visitor) {
	Walk(v, n.Tag)
	for _, c := range n.Cases {
		Walk(v, c)
	}
}

// ReturnStmt is "return [X];".
type ReturnStmt struct {
	ReturnPos token.Pos
	X         Expr // nil for a bare "return;"
	Semi      token.Pos
}

func (*ReturnStmt) stmt() {}
func (n *ReturnStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "return", nil) }
func (n *ReturnStmt) Span() (start, end token.Pos) { return n.ReturnPos, n.Semi }
func (n *ReturnStmt) Walk(v Visitor) {
	if n.X != nil {
		Walk(v, n.X)
	}
}

// BreakStmt is "break;". Target is populated by JumpResolver (spec 4.3)
// with the enclosing loop or switch this break exits.
type BreakStmt struct {
	BreakPos token.Pos
	Semi     token.Pos
	Target   Stmt // resolved by JumpResolver: *WhileStmt, *DoWhileStmt, *ForStmt or *SwitchStmt
}

func (*BreakStmt) stmt() {}
func (n *BreakStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "break", nil) }
func (n *BreakStmt) Span() (start, end token.Pos) { return n.BreakPos, n.Semi }
func (n *BreakStmt) Walk(v Visitor)               {}

// ContinueStmt is "continue;". Target is populated by JumpResolver with the
// enclosing loop this continue restarts.
type ContinueStmt struct {
	ContinuePos token.Pos
	Semi        token.Pos
	Target      Stmt // resolved by JumpResolver: *WhileStmt, *DoWhileStmt or *ForStmt
}

func (*ContinueStmt) stmt() {}
func (n *ContinueStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "continue", nil) }
func (n *ContinueStmt) Span() (start, end token.Pos) { return n.ContinuePos, n.Semi }
func (n *ContinueStmt) Walk(v Visitor)               {}

// LabelStmt is "Name: Stmt", a target for goto.
type LabelStmt struct {
	NamePos token.Pos
	Name    string
	Colon   token.Pos
	Stmt    Stmt
}

func (*LabelStmt) stmt() {}
func (n *LabelStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "label:"+n.Name, nil) }
func (n *LabelStmt) Span() (start, end token.Pos) {
	_, end = n.Stmt.Span()
	return n.NamePos, end
}
func (n *LabelStmt) Walk(v Visitor) { Walk(v, n.Stmt) }

// GotoStmt is "goto Name;". Target is populated by JumpResolver with the
// LabelStmt this goto transfers control to.
type GotoStmt struct {
	GotoPos token.Pos
	NamePos token.Pos
	Name    string
	Semi    token.Pos
	Target  *LabelStmt
}

func (*GotoStmt) stmt() {}
func (n *GotoStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "goto:"+n.Name, nil) }
func (n *GotoStmt) Span() (start, end token.Pos) { return n.GotoPos, n.Semi }
func (n *GotoStmt) Walk(v Visitor)               {}

// BlockStmt adapts a Block to Stmt for use as a standalone nested block
// appearing directly in a statement list ("{ ... }" used as a statement).
type BlockStmt struct {
	Block *Block
}

func (*BlockStmt) stmt() {}
func (n *BlockStmt) Format(f fmt.State, verb rune) { n.Block.Format(f, verb) }
func (n *BlockStmt) Span() (start, end token.Pos)  { return n.Block.Span() }
func (n *BlockStmt) Walk(v Visitor)                { n.Block.Walk(v) }

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
