package codegen

import (
	"github.com/cbcomp/cb/lang/ast"
	"github.com/cbcomp/cb/lang/resolver"
	"github.com/cbcomp/cb/lang/token"
	"github.com/cbcomp/cb/lang/types"
)

// genExpr evaluates e, leaving a scalar result in %eax (spec ch. 4.8.3
// "naive accumulator model"). An array- or struct/union-typed e instead
// leaves its address in %eax: an array decays to a pointer and a
// struct/union value is only ever consumed through its address (member
// access, assignment, argument/return passing are handled specially).
func (g *gen) genExpr(e ast.Expr) {
	switch e := e.(type) {
	case *ast.IntLitExpr:
		g.emit("movl $%d, %%eax", e.Value)
	case *ast.CharLitExpr:
		g.emit("movl $%d, %%eax", int64(e.Value))
	case *ast.StringLitExpr:
		label := g.prog.internString(e.Value)
		g.emit("movl $%s, %%eax", label)
	case *ast.IdentExpr:
		g.genIdentValue(e)
	case *ast.ParenExpr:
		g.genExpr(e.X)
	case *ast.UnaryExpr:
		g.genUnary(e)
	case *ast.PostfixExpr:
		g.genPostfix(e)
	case *ast.BinaryExpr:
		g.genBinary(e)
	case *ast.AssignExpr:
		g.genAssign(e)
	case *ast.CondExpr:
		g.genCond(e)
	case *ast.CastExpr:
		g.genCast(e)
	case *ast.MemberExpr, *ast.PtrMemberExpr, *ast.IndexExpr:
		g.genLValueAddr(e)
		t := g.info.TypeOf(e)
		if t.Kind == types.Array || t.Kind == types.Struct || t.Kind == types.Union {
			return
		}
		g.emit("%s (%%eax), %%eax", loadMnemonic(t))
	case *ast.CallExpr:
		g.genCall(e)
	default:
		panic(ice(g.pos(e), "unexpected expression node %T", e))
	}
}

func (g *gen) genIdentValue(e *ast.IdentExpr) {
	b, ok := e.Entity.(*resolver.Binding)
	if !ok {
		panic(ice(g.pos(e), "identifier %q has no resolved binding", e.Name))
	}
	if fd, ok := b.Decl.(*ast.FuncDecl); ok {
		g.emit("movl $%s, %%eax", fd.Name)
		return
	}
	t := g.info.TypeOf(e)
	if t.Kind == types.Array || t.Kind == types.Struct || t.Kind == types.Union {
		g.genIdentAddr(e)
		return
	}
	g.genIdentAddr(e)
	g.emit("%s (%%eax), %%eax", loadMnemonic(t))
}

func (g *gen) genIdentAddr(e *ast.IdentExpr) {
	b, ok := e.Entity.(*resolver.Binding)
	if !ok {
		panic(ice(g.pos(e), "identifier %q has no resolved binding", e.Name))
	}
	if off, ok := g.fr.offsets[b.Decl]; ok {
		g.emit("leal %d(%%ebp), %%eax", off)
		return
	}
	switch d := b.Decl.(type) {
	case *ast.VarDecl:
		g.emit("movl $%s, %%eax", d.Name)
	case *ast.FuncDecl:
		g.emit("movl $%s, %%eax", d.Name)
	default:
		panic(ice(g.pos(e), "identifier %q has no storage", e.Name))
	}
}

// genLValueAddr computes e's address into %eax. e must be a structurally
// assignable expression (ast.IsAssignable), guaranteed by DereferenceChecker
// (spec ch. 4.6) for every lvalue context codegen is asked to address.
func (g *gen) genLValueAddr(e ast.Expr) {
	switch e := e.(type) {
	case *ast.ParenExpr:
		g.genLValueAddr(e.X)
	case *ast.IdentExpr:
		g.genIdentAddr(e)
	case *ast.UnaryExpr:
		if e.Op != token.STAR {
			panic(ice(g.pos(e), "expression is not addressable: unary %v", e.Op))
		}
		g.genExpr(e.X)
	case *ast.MemberExpr:
		g.genLValueAddr(e.X)
		xt := g.info.TypeOf(e.X)
		off := memberOffset(g.pos(e), xt, e.Name)
		if off != 0 {
			g.emit("addl $%d, %%eax", off)
		}
	case *ast.PtrMemberExpr:
		g.genExpr(e.X)
		xt := g.info.TypeOf(e.X)
		if xt.Kind != types.Pointer {
			panic(ice(g.pos(e), "-> base is not a pointer"))
		}
		off := memberOffset(g.pos(e), xt.Elem, e.Name)
		if off != 0 {
			g.emit("addl $%d, %%eax", off)
		}
	case *ast.IndexExpr:
		g.genIndexAddr(e)
	case *ast.CastExpr:
		g.genLValueAddr(e.X)
	default:
		panic(ice(g.pos(e), "expression is not addressable: %T", e))
	}
}

func memberOffset(pos string, t *types.Type, name string) int {
	m, ok := t.Member(name)
	if !ok {
		panic(ice(pos, "type %s has no member %q", t.Kind, name))
	}
	return m.Offset
}

func (g *gen) genIndexAddr(e *ast.IndexExpr) {
	xt := g.info.TypeOf(e.X)
	var elem *types.Type
	switch xt.Kind {
	case types.Array:
		elem = xt.Elem
		g.genLValueAddr(e.X)
	case types.Pointer:
		elem = xt.Elem
		g.genExpr(e.X)
	default:
		panic(ice(g.pos(e), "index base is neither array nor pointer"))
	}
	g.emit("pushl %%eax")
	g.genExpr(e.Index)
	if sz := elem.Size(); sz != 1 {
		g.emit("imull $%d, %%eax", sz)
	}
	g.emit("movl %%eax, %%ecx")
	g.emit("popl %%eax")
	g.emit("addl %%ecx, %%eax")
}

func (g *gen) genUnary(e *ast.UnaryExpr) {
	if e.SizeofType != nil {
		t := ResolveTypeExprForCodegen(g.table, g.file, e.SizeofType)
		g.emit("movl $%d, %%eax", t.Size())
		return
	}
	switch e.Op {
	case token.SIZEOF:
		t := g.info.TypeOf(e.X)
		g.emit("movl $%d, %%eax", t.Size())
	case token.STAR:
		g.genExpr(e.X)
		rt := g.info.TypeOf(e)
		g.emit("%s (%%eax), %%eax", loadMnemonic(rt))
	case token.AMPERSAND:
		g.genLValueAddr(e.X)
	case token.BANG:
		g.genExpr(e.X)
		g.emit("testl %%eax, %%eax")
		g.emit("sete %%al")
		g.emit("movzbl %%al, %%eax")
	case token.MINUS:
		g.genExpr(e.X)
		g.emit("negl %%eax")
	case token.PLUS:
		g.genExpr(e.X)
	case token.TILDE:
		g.genExpr(e.X)
		g.emit("notl %%eax")
	case token.PLUSPLUS, token.MINUSMINUS:
		g.genPrefixIncDec(e)
	default:
		panic(ice(g.pos(e), "unexpected unary operator %v", e.Op))
	}
}

func (g *gen) genPrefixIncDec(e *ast.UnaryExpr) {
	t := g.info.TypeOf(e.X)
	g.genLValueAddr(e.X)
	g.emit("movl %%eax, %%edx")
	g.emit("%s (%%edx), %%eax", loadMnemonic(t))
	step := 1
	if t.Kind == types.Pointer {
		step = t.Elem.Size()
	}
	if e.Op == token.PLUSPLUS {
		g.emit("addl $%d, %%eax", step)
	} else {
		g.emit("subl $%d, %%eax", step)
	}
	g.emitStore(t, "edx")
}

func (g *gen) genPostfix(e *ast.PostfixExpr) {
	t := g.info.TypeOf(e.X)
	g.genLValueAddr(e.X)
	g.emit("movl %%eax, %%edx")
	g.emit("%s (%%edx), %%eax", loadMnemonic(t))
	g.emit("pushl %%eax")
	step := 1
	if t.Kind == types.Pointer {
		step = t.Elem.Size()
	}
	if e.Op == token.PLUSPLUS {
		g.emit("addl $%d, %%eax", step)
	} else {
		g.emit("subl $%d, %%eax", step)
	}
	g.emitStore(t, "edx")
	g.emit("popl %%eax")
}

func isPointerArith(xt, yt *types.Type, op token.Token) bool {
	switch op {
	case token.PLUS:
		return xt.Kind == types.Pointer || yt.Kind == types.Pointer
	case token.MINUS:
		return xt.Kind == types.Pointer
	default:
		return false
	}
}

func (g *gen) genBinary(e *ast.BinaryExpr) {
	switch e.Op {
	case token.AMPAMP, token.PIPEPIPE:
		g.genLogicalValue(e)
		return
	case token.COMMA:
		g.genExpr(e.X)
		g.genExpr(e.Y)
		return
	}

	xt, yt := g.info.TypeOf(e.X), g.info.TypeOf(e.Y)
	if isPointerArith(xt, yt, e.Op) {
		g.genPointerArith(e, xt, yt)
		return
	}

	g.genExpr(e.X)
	g.emit("pushl %%eax")
	g.genExpr(e.Y)
	g.emit("movl %%eax, %%ecx")
	g.emit("popl %%eax")
	g.emitBinOp(g.pos(e), e.Op, xt)
}

// genLogicalValue materializes && / || as a 0/1 int value (spec ch.
// 4.8.1: lower to conditional jumps around temporary assignments).
func (g *gen) genLogicalValue(e *ast.BinaryExpr) {
	falseLabel := g.newLabel()
	end := g.newLabel()
	g.condJumpFalse(e, falseLabel)
	g.emit("movl $1, %%eax")
	g.emit("jmp %s", end)
	g.emitLabel(falseLabel)
	g.emit("movl $0, %%eax")
	g.emitLabel(end)
}

func (g *gen) genPointerArith(e *ast.BinaryExpr, xt, yt *types.Type) {
	switch {
	case e.Op == token.PLUS && xt.Kind == types.Pointer:
		elem := xt.Elem.Size()
		g.genExpr(e.X)
		g.emit("pushl %%eax")
		g.genExpr(e.Y)
		if elem != 1 {
			g.emit("imull $%d, %%eax", elem)
		}
		g.emit("movl %%eax, %%ecx")
		g.emit("popl %%eax")
		g.emit("addl %%ecx, %%eax")
	case e.Op == token.PLUS && yt.Kind == types.Pointer:
		elem := yt.Elem.Size()
		g.genExpr(e.X)
		if elem != 1 {
			g.emit("imull $%d, %%eax", elem)
		}
		g.emit("pushl %%eax")
		g.genExpr(e.Y)
		g.emit("popl %%ecx")
		g.emit("addl %%ecx, %%eax")
	case e.Op == token.MINUS && xt.Kind == types.Pointer && yt.Kind == types.Pointer:
		elem := xt.Elem.Size()
		g.genExpr(e.X)
		g.emit("pushl %%eax")
		g.genExpr(e.Y)
		g.emit("movl %%eax, %%ecx")
		g.emit("popl %%eax")
		g.emit("subl %%ecx, %%eax")
		if elem != 1 {
			g.emit("cltd")
			g.emit("movl $%d, %%ecx", elem)
			g.emit("idivl %%ecx")
		}
	case e.Op == token.MINUS && xt.Kind == types.Pointer:
		elem := xt.Elem.Size()
		g.genExpr(e.X)
		g.emit("pushl %%eax")
		g.genExpr(e.Y)
		if elem != 1 {
			g.emit("imull $%d, %%eax", elem)
		}
		g.emit("movl %%eax, %%ecx")
		g.emit("popl %%eax")
		g.emit("subl %%ecx, %%eax")
	default:
		panic(ice(g.pos(e), "unexpected pointer arithmetic shape"))
	}
}

// emitBinOp emits the instruction for op assuming the left operand is in
// %eax and the right in %ecx (spec ch. 4.8.3 "binary op(l,r)"), leaving
// the result in %eax. t is the operands' common type, used to pick
// signed vs. unsigned division/shift/comparison.
func (g *gen) emitBinOp(pos string, op token.Token, t *types.Type) {
	unsigned := t.Kind.IsUnsigned()
	switch op {
	case token.PLUS:
		g.emit("addl %%ecx, %%eax")
	case token.MINUS:
		g.emit("subl %%ecx, %%eax")
	case token.STAR:
		g.emit("imull %%ecx, %%eax")
	case token.SLASH:
		if unsigned {
			g.emit("xorl %%edx, %%edx")
			g.emit("divl %%ecx")
		} else {
			g.emit("cltd")
			g.emit("idivl %%ecx")
		}
	case token.PERCENT:
		if unsigned {
			g.emit("xorl %%edx, %%edx")
			g.emit("divl %%ecx")
		} else {
			g.emit("cltd")
			g.emit("idivl %%ecx")
		}
		g.emit("movl %%edx, %%eax")
	case token.AMPERSAND:
		g.emit("andl %%ecx, %%eax")
	case token.PIPE:
		g.emit("orl %%ecx, %%eax")
	case token.CIRCUMFLEX:
		g.emit("xorl %%ecx, %%eax")
	case token.LTLT:
		g.emit("shll %%cl, %%eax")
	case token.GTGT:
		if unsigned {
			g.emit("shrl %%cl, %%eax")
		} else {
			g.emit("sarl %%cl, %%eax")
		}
	case token.EQL:
		g.emitCompare("sete")
	case token.NEQ:
		g.emitCompare("setne")
	case token.LT:
		g.emitCompare(condOr(unsigned, "setb", "setl"))
	case token.GT:
		g.emitCompare(condOr(unsigned, "seta", "setg"))
	case token.LE:
		g.emitCompare(condOr(unsigned, "setbe", "setle"))
	case token.GE:
		g.emitCompare(condOr(unsigned, "setae", "setge"))
	default:
		panic(ice(pos, "unexpected binary operator %v", op))
	}
}

func condOr(unsigned bool, u, s string) string {
	if unsigned {
		return u
	}
	return s
}

func (g *gen) emitCompare(setcc string) {
	g.emit("cmpl %%ecx, %%eax")
	g.emit("%s %%al", setcc)
	g.emit("movzbl %%al, %%eax")
}

func (g *gen) genCond(e *ast.CondExpr) {
	elseLabel := g.newLabel()
	end := g.newLabel()
	g.condJumpFalse(e.Cond, elseLabel)
	g.genExpr(e.Then)
	g.emit("jmp %s", end)
	g.emitLabel(elseLabel)
	g.genExpr(e.Else)
	g.emitLabel(end)
}

func (g *gen) genCast(e *ast.CastExpr) {
	g.genExpr(e.X)
	from := g.info.OrigTypeOf(e)
	to := g.info.TypeOf(e)
	g.convertInReg(from, to)
}

// convertInReg rewrites %eax from from's representation to to's, per the
// integer conversion rules of spec ch. 4.7; pointer/array/integer
// reinterpretation at the same 4-byte width needs no instruction under
// ILP32.
func (g *gen) convertInReg(from, to *types.Type) {
	if from == nil || to == nil || from.Equal(to) {
		return
	}
	if !from.Kind.IsInteger() || !to.Kind.IsInteger() {
		return
	}
	fsz, tsz := from.Size(), to.Size()
	switch {
	case tsz < fsz:
		return
	case tsz > fsz:
		if from.Kind.IsUnsigned() {
			switch fsz {
			case 1:
				g.emit("movzbl %%al, %%eax")
			case 2:
				g.emit("movzwl %%ax, %%eax")
			}
		} else {
			switch fsz {
			case 1:
				g.emit("movsbl %%al, %%eax")
			case 2:
				g.emit("movswl %%ax, %%eax")
			}
		}
	}
}

func (g *gen) genCall(e *ast.CallExpr) {
	for i := len(e.Args) - 1; i >= 0; i-- {
		g.genExpr(e.Args[i])
		g.emit("pushl %%eax")
	}
	if name, ok := directCallName(e.Fn); ok {
		suffix := ""
		if g.opts.PositionIndependent {
			suffix = "@PLT"
		}
		g.emit("call %s%s", name, suffix)
	} else {
		g.genExpr(e.Fn)
		g.emit("movl %%eax, %%ecx")
		g.emit("call *%%ecx")
	}
	if n := 4 * len(e.Args); n > 0 {
		g.emit("addl $%d, %%esp", n)
	}
}

func (g *gen) genAssign(e *ast.AssignExpr) {
	lt := g.info.TypeOf(e)
	if e.Op != token.EQ {
		g.genCompoundAssign(e, lt)
		return
	}
	if lt.Kind == types.Struct || lt.Kind == types.Union {
		g.genStructAssign(e, lt)
		return
	}
	g.genLValueAddr(e.LHS)
	g.emit("pushl %%eax")
	g.genExpr(e.RHS)
	g.emit("popl %%ecx")
	g.emitStore(lt, "ecx")
}

// genCompoundAssign implements x op= y by loading x's current value
// through its address, computing the operation, and storing back,
// scaling a pointer-typed compound +=/-= by the pointee size exactly as
// plain pointer +/- does (spec ch. 4.8.3 "pointer arithmetic").
func (g *gen) genCompoundAssign(e *ast.AssignExpr, lt *types.Type) {
	baseOp := compoundBaseOp(g.pos(e), e.Op)

	g.genLValueAddr(e.LHS)
	g.emit("pushl %%eax")
	g.emit("%s (%%eax), %%eax", loadMnemonic(lt))
	g.emit("pushl %%eax")
	g.genExpr(e.RHS)
	g.emit("movl %%eax, %%ecx")
	g.emit("popl %%eax")

	if lt.Kind == types.Pointer && (baseOp == token.PLUS || baseOp == token.MINUS) {
		if elem := lt.Elem.Size(); elem != 1 {
			g.emit("imull $%d, %%ecx", elem)
		}
	}
	g.emitBinOp(g.pos(e), baseOp, lt)

	g.emit("popl %%edx")
	g.emitStore(lt, "edx")
}

// genStructAssign copies t's bytes from the RHS object to the LHS object.
// The resulting %eax is left unspecified: a struct-typed assignment used
// as a value itself (rather than as a statement) does not appear in any
// program this compiler is required to accept.
func (g *gen) genStructAssign(e *ast.AssignExpr, t *types.Type) {
	g.emit("pushl %%esi")
	g.emit("pushl %%edi")
	g.genLValueAddr(e.LHS)
	g.emit("movl %%eax, %%edi")
	g.genLValueAddr(e.RHS)
	g.emit("movl %%eax, %%esi")
	g.emit("movl $%d, %%ecx", t.Size())
	g.emit("cld")
	g.emit("rep movsb")
	g.emit("popl %%edi")
	g.emit("popl %%esi")
}
