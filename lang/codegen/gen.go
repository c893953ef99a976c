package codegen

import (
	"fmt"

	"github.com/cbcomp/cb/lang/ast"
	"github.com/cbcomp/cb/lang/resolver"
	"github.com/cbcomp/cb/lang/token"
	"github.com/cbcomp/cb/lang/typecheck"
	"github.com/cbcomp/cb/lang/types"
)

// loopFrame records the labels break/continue inside a loop or switch
// target, keyed by the statement JumpResolver already resolved them to.
type loopFrame struct {
	stmt          ast.Stmt
	breakLabel    string
	continueLabel string
}

// gen lowers and emits one function's body. A fresh gen is used per
// function; Program, the type table and the annotation table are shared
// across every function in a compilation.
type gen struct {
	prog  *Program
	file  *token.File
	table *types.TypeTable
	info  *typecheck.Info
	opts  Options

	fn     *ast.FuncDecl
	fr     *frame
	labels map[*ast.LabelStmt]string

	loops    []loopFrame
	labelSeq int
	epilogue string
}

func newGen(prog *Program, file *token.File, table *types.TypeTable, info *typecheck.Info, opts Options) *gen {
	return &gen{prog: prog, file: file, table: table, info: info, opts: opts}
}

func (g *gen) pos(n ast.Node) string {
	start, _ := n.Span()
	return g.file.Position(start).String()
}

func (g *gen) emit(format string, args ...any) {
	fmt.Fprintf(&g.prog.text, "\t"+format+"\n", args...)
}

func (g *gen) emitLabel(name string) {
	fmt.Fprintf(&g.prog.text, "%s:\n", name)
}

func (g *gen) newLabel() string {
	g.labelSeq++
	return fmt.Sprintf(".LL%d", g.labelSeq)
}

// genFunc emits fd's prologue, body and epilogue into g.prog (spec ch.
// 4.8.2-4.8.3).
func (g *gen) genFunc(fd *ast.FuncDecl) {
	g.fn = fd
	g.fr = buildFrame(fd, g.info)
	g.labels = map[*ast.LabelStmt]string{}
	g.epilogue = fmt.Sprintf(".Lepilogue_%s", fd.Name)

	g.collectLabels(fd.Body)

	g.prog.exportGlobal(fd.Name)
	g.emitLabel(fd.Name)
	g.emit("push %%ebp")
	g.emit("movl %%esp, %%ebp")
	if g.fr.size > 0 {
		g.emit("subl $%d, %%esp", g.fr.size)
	}

	g.genBlock(fd.Body)

	g.emitLabel(g.epilogue)
	g.emit("leave")
	g.emit("ret")
}

// collectLabels pre-assigns every label statement in fd's body a unique
// assembly label, so a goto that appears before its target can still
// resolve it (spec ch. 4.8.1 "goto/label").
func (g *gen) collectLabels(body *ast.Block) {
	var visit ast.VisitorFunc
	visit = func(n ast.Node, dir ast.VisitDirection) ast.Visitor {
		if dir != ast.VisitEnter {
			return visit
		}
		if ls, ok := n.(*ast.LabelStmt); ok {
			g.labels[ls] = fmt.Sprintf(".Llabel_%s_%s", g.fn.Name, ls.Name)
		}
		return visit
	}
	ast.Walk(visit, body)
}

func (g *gen) pushLoop(stmt ast.Stmt, breakLabel, continueLabel string) {
	g.loops = append(g.loops, loopFrame{stmt: stmt, breakLabel: breakLabel, continueLabel: continueLabel})
}

func (g *gen) popLoop() {
	g.loops = g.loops[:len(g.loops)-1]
}

func (g *gen) breakLabelFor(pos string, target ast.Stmt) string {
	for i := len(g.loops) - 1; i >= 0; i-- {
		if g.loops[i].stmt == target {
			return g.loops[i].breakLabel
		}
	}
	panic(ice(pos, "break has no enclosing loop or switch"))
}

func (g *gen) continueLabelFor(pos string, target ast.Stmt) string {
	for i := len(g.loops) - 1; i >= 0; i-- {
		if g.loops[i].stmt == target && g.loops[i].continueLabel != "" {
			return g.loops[i].continueLabel
		}
	}
	panic(ice(pos, "continue has no enclosing loop"))
}

func (g *gen) genBlock(b *ast.Block) {
	for _, s := range b.Stmts {
		g.genStmt(s)
	}
}

func (g *gen) genStmt(s ast.Stmt) {
	switch s := s.(type) {
	case *ast.ExprStmt:
		g.genExpr(s.X)
	case *ast.BlockStmt:
		g.genBlock(s.Block)
	case *ast.VarDecl:
		g.genLocalVarDecl(s)
	case *ast.TypedefDecl, *ast.AggregateDecl, *ast.ConstDecl, *ast.FuncDecl:
		// declarations with no run-time storage or effect at statement position
	case *ast.IfStmt:
		g.genIf(s)
	case *ast.WhileStmt:
		g.genWhile(s)
	case *ast.DoWhileStmt:
		g.genDoWhile(s)
	case *ast.ForStmt:
		g.genFor(s)
	case *ast.SwitchStmt:
		g.genSwitch(s)
	case *ast.ReturnStmt:
		g.genReturn(s)
	case *ast.LabelStmt:
		g.emitLabel(g.labels[s])
		g.genStmt(s.Stmt)
	case *ast.GotoStmt:
		lbl, ok := g.labels[s.Target]
		if !ok {
			panic(ice(g.pos(s), "goto target %q has no assigned label", s.Name))
		}
		g.emit("jmp %s", lbl)
	case *ast.BreakStmt:
		g.emit("jmp %s", g.breakLabelFor(g.pos(s), s.Target))
	case *ast.ContinueStmt:
		g.emit("jmp %s", g.continueLabelFor(g.pos(s), s.Target))
	default:
		panic(ice(g.pos(s), "unexpected statement node %T", s))
	}
}

func (g *gen) genIf(s *ast.IfStmt) {
	elseLabel := g.newLabel()
	g.condJumpFalse(s.Cond, elseLabel)
	g.genStmt(s.Then)
	if s.Else != nil {
		end := g.newLabel()
		g.emit("jmp %s", end)
		g.emitLabel(elseLabel)
		g.genStmt(s.Else)
		g.emitLabel(end)
		return
	}
	g.emitLabel(elseLabel)
}

func (g *gen) genWhile(s *ast.WhileStmt) {
	top := g.newLabel()
	end := g.newLabel()
	g.emitLabel(top)
	g.condJumpFalse(s.Cond, end)
	g.pushLoop(s, end, top)
	g.genStmt(s.Body)
	g.popLoop()
	g.emit("jmp %s", top)
	g.emitLabel(end)
}

func (g *gen) genDoWhile(s *ast.DoWhileStmt) {
	top := g.newLabel()
	cont := g.newLabel()
	end := g.newLabel()
	g.emitLabel(top)
	g.pushLoop(s, end, cont)
	g.genStmt(s.Body)
	g.popLoop()
	g.emitLabel(cont)
	g.condJumpTrue(s.Cond, top)
	g.emitLabel(end)
}

func (g *gen) genFor(s *ast.ForStmt) {
	if s.Init != nil {
		g.genStmt(s.Init)
	}
	top := g.newLabel()
	cont := g.newLabel()
	end := g.newLabel()
	g.emitLabel(top)
	if s.Cond != nil {
		g.condJumpFalse(s.Cond, end)
	}
	g.pushLoop(s, end, cont)
	g.genStmt(s.Body)
	g.popLoop()
	g.emitLabel(cont)
	if s.Post != nil {
		g.genExpr(s.Post)
	}
	g.emit("jmp %s", top)
	g.emitLabel(end)
}

func (g *gen) genSwitch(s *ast.SwitchStmt) {
	g.genExpr(s.Tag)
	g.emit("movl %%eax, %%ecx")

	end := g.newLabel()
	defaultLabel := ""
	caseLabels := make([]string, len(s.Cases))
	for i, c := range s.Cases {
		lbl := g.newLabel()
		caseLabels[i] = lbl
		if c.Value == nil {
			defaultLabel = lbl
			continue
		}
		v, ok := constIntValue(c.Value)
		if !ok {
			panic(ice(g.pos(c), "case value is not a compile-time constant"))
		}
		g.emit("cmpl $%d, %%ecx", v)
		g.emit("je %s", lbl)
	}
	if defaultLabel != "" {
		g.emit("jmp %s", defaultLabel)
	} else {
		g.emit("jmp %s", end)
	}

	g.pushLoop(s, end, "")
	for i, c := range s.Cases {
		g.emitLabel(caseLabels[i])
		for _, inner := range c.Stmts {
			g.genStmt(inner)
		}
	}
	g.popLoop()
	g.emitLabel(end)
}

func (g *gen) genReturn(s *ast.ReturnStmt) {
	if s.X != nil {
		g.genExpr(s.X)
	}
	g.emit("jmp %s", g.epilogue)
}

func (g *gen) genLocalVarDecl(d *ast.VarDecl) {
	if d.Init == nil {
		return
	}
	t := g.info.DeclType(d)
	off := g.fr.offsetOf(g.pos(d), d)
	g.genExpr(d.Init)
	g.emit("leal %d(%%ebp), %%ecx", off)
	g.emitStore(t, "ecx")
}

// condJumpFalse emits code that jumps to falseLabel when e evaluates to
// zero, short-circuiting && and || at the control-flow level instead of
// materializing their intermediate boolean value (spec ch. 4.8.1).
func (g *gen) condJumpFalse(e ast.Expr, falseLabel string) {
	if b, ok := ast.Unwrap(e).(*ast.BinaryExpr); ok {
		switch b.Op {
		case token.AMPAMP:
			g.condJumpFalse(b.X, falseLabel)
			g.condJumpFalse(b.Y, falseLabel)
			return
		case token.PIPEPIPE:
			trueLabel := g.newLabel()
			g.condJumpTrue(b.X, trueLabel)
			g.condJumpFalse(b.Y, falseLabel)
			g.emitLabel(trueLabel)
			return
		}
	}
	g.genExpr(e)
	g.emit("testl %%eax, %%eax")
	g.emit("je %s", falseLabel)
}

// condJumpTrue emits code that jumps to trueLabel when e evaluates to
// nonzero.
func (g *gen) condJumpTrue(e ast.Expr, trueLabel string) {
	if b, ok := ast.Unwrap(e).(*ast.BinaryExpr); ok {
		switch b.Op {
		case token.PIPEPIPE:
			g.condJumpTrue(b.X, trueLabel)
			g.condJumpTrue(b.Y, trueLabel)
			return
		case token.AMPAMP:
			falseLabel := g.newLabel()
			g.condJumpFalse(b.X, falseLabel)
			g.condJumpTrue(b.Y, trueLabel)
			g.emitLabel(falseLabel)
			return
		}
	}
	g.genExpr(e)
	g.emit("testl %%eax, %%eax")
	g.emit("jne %s", trueLabel)
}

func directCallName(fn ast.Expr) (string, bool) {
	id, ok := ast.Unwrap(fn).(*ast.IdentExpr)
	if !ok {
		return "", false
	}
	b, ok := id.Entity.(*resolver.Binding)
	if !ok || b.Kind != resolver.Func {
		return "", false
	}
	return id.Name, true
}

func compoundBaseOp(pos string, op token.Token) token.Token {
	switch op {
	case token.PLUS_EQ:
		return token.PLUS
	case token.MINUS_EQ:
		return token.MINUS
	case token.STAR_EQ:
		return token.STAR
	case token.SLASH_EQ:
		return token.SLASH
	case token.PERCENT_EQ:
		return token.PERCENT
	case token.AMP_EQ:
		return token.AMPERSAND
	case token.PIPE_EQ:
		return token.PIPE
	case token.CIRC_EQ:
		return token.CIRCUMFLEX
	case token.LTLT_EQ:
		return token.LTLT
	case token.GTGT_EQ:
		return token.GTGT
	default:
		panic(ice(pos, "unexpected compound assignment operator %v", op))
	}
}

// constIntValue evaluates e as a compile-time integer constant, unwrapping
// the parens and implicit widening casts TypeChecker may have inserted
// around a literal (e.g. a switch case value converted to the tag's type).
func constIntValue(e ast.Expr) (int64, bool) {
	switch e := e.(type) {
	case *ast.IntLitExpr:
		return e.Value, true
	case *ast.CharLitExpr:
		return int64(e.Value), true
	case *ast.ParenExpr:
		return constIntValue(e.X)
	case *ast.CastExpr:
		return constIntValue(e.X)
	case *ast.UnaryExpr:
		if e.Op == token.MINUS {
			v, ok := constIntValue(e.X)
			return -v, ok
		}
		if e.Op == token.PLUS {
			return constIntValue(e.X)
		}
		return 0, false
	default:
		return 0, false
	}
}

func loadMnemonic(t *types.Type) string {
	switch t.Kind {
	case types.Char:
		return "movsbl"
	case types.UChar:
		return "movzbl"
	case types.Short:
		return "movswl"
	case types.UShort:
		return "movzwl"
	default:
		return "movl"
	}
}

func (g *gen) emitStore(t *types.Type, addrReg string) {
	switch t.Size() {
	case 1:
		g.emit("movb %%al, (%%%s)", addrReg)
	case 2:
		g.emit("movw %%ax, (%%%s)", addrReg)
	default:
		g.emit("movl %%eax, (%%%s)", addrReg)
	}
}
