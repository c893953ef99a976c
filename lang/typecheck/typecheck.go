package typecheck

import (
	"fmt"

	"github.com/cbcomp/cb/lang/ast"
	"github.com/cbcomp/cb/lang/scanner"
	"github.com/cbcomp/cb/lang/token"
	"github.com/cbcomp/cb/lang/types"
)

// typeChecker performs TypeChecker (spec ch. 4.7): full expression typing,
// integer promotion and usual arithmetic conversions, assignability, call
// and switch/case checking, and return-type conformance. Every conversion
// it decides on is materialized into the AST as an explicit *ast.CastExpr
// with Implicit set, so the code generator never re-derives one.
type typeChecker struct {
	file    *token.File
	table   *types.TypeTable
	info    *Info
	typer   *typer
	errs    scanner.ErrorList
	curFunc *types.Type // return type of the function body currently being checked
}

// CheckTypes runs TypeChecker over one chunk. table and info must already
// have been populated by ResolveTypes and CheckDereferences for this chunk.
func CheckTypes(fset *token.FileSet, ch *ast.Chunk, table *types.TypeTable, info *Info) error {
	file := fset.File(ch.Name)
	tc := &typeChecker{file: file, table: table, info: info, typer: newTyper(table, file, info)}
	for _, d := range ch.Decls {
		tc.checkDecl(d)
	}
	tc.errs.Sort()
	return tc.errs.Err()
}

func (tc *typeChecker) errorAt(pos token.Pos, format string, args ...any) {
	tc.errs.AddKind(tc.file.Position(pos), scanner.Semantic, fmt.Sprintf(format, args...))
}

func posOf(e ast.Expr) token.Pos {
	start, _ := e.Span()
	return start
}

func (tc *typeChecker) checkDecl(d ast.Decl) {
	switch d := d.(type) {
	case *ast.FuncDecl:
		if d.Body == nil {
			return
		}
		prev := tc.curFunc
		tc.curFunc = tc.info.DeclType(d).Ret
		tc.checkBlock(d.Body)
		tc.curFunc = prev
	case *ast.VarDecl:
		tc.checkVarDecl(d)
	case *ast.ConstDecl:
		x, xt := tc.checkExpr(d.Value)
		d.Value = tc.assignConvert(x, xt, tc.info.DeclType(d), posOf(x))
	}
}

func (tc *typeChecker) checkVarDecl(d *ast.VarDecl) {
	if d.Init == nil {
		return
	}
	x, xt := tc.checkExpr(d.Init)
	d.Init = tc.assignConvert(x, xt, tc.info.DeclType(d), posOf(x))
}

func (tc *typeChecker) checkBlock(b *ast.Block) {
	for _, s := range b.Stmts {
		tc.checkStmt(s)
	}
}

func (tc *typeChecker) checkStmt(s ast.Stmt) {
	switch s := s.(type) {
	case *ast.BlockStmt:
		tc.checkBlock(s.Block)
	case *ast.ExprStmt:
		if _, ok := s.X.(*ast.BadExpr); ok {
			return
		}
		s.X, _ = tc.checkExpr(s.X)
	case *ast.VarDecl:
		tc.checkVarDecl(s)
	case *ast.TypedefDecl, *ast.FuncDecl, *ast.AggregateDecl:
		// fully handled by TypeResolver; a local prototype has no body here
	case *ast.IfStmt:
		s.Cond, _ = tc.checkCondOperand(s.Cond, "if")
		tc.checkStmt(s.Then)
		if s.Else != nil {
			tc.checkStmt(s.Else)
		}
	case *ast.WhileStmt:
		s.Cond, _ = tc.checkCondOperand(s.Cond, "while")
		tc.checkStmt(s.Body)
	case *ast.DoWhileStmt:
		tc.checkStmt(s.Body)
		s.Cond, _ = tc.checkCondOperand(s.Cond, "do/while")
	case *ast.ForStmt:
		if s.Init != nil {
			tc.checkStmt(s.Init)
		}
		if s.Cond != nil {
			s.Cond, _ = tc.checkCondOperand(s.Cond, "for")
		}
		if s.Post != nil {
			s.Post, _ = tc.checkExpr(s.Post)
		}
		tc.checkStmt(s.Body)
	case *ast.SwitchStmt:
		tc.checkSwitch(s)
	case *ast.ReturnStmt:
		tc.checkReturn(s)
	case *ast.LabelStmt:
		tc.checkStmt(s.Stmt)
	case *ast.BreakStmt, *ast.ContinueStmt, *ast.GotoStmt:
		// nothing to type-check; targets were resolved by JumpResolver
	}
}

func (tc *typeChecker) checkCondOperand(e ast.Expr, construct string) (ast.Expr, *types.Type) {
	checked, t := tc.checkExpr(e)
	if !t.Kind.IsScalar() {
		tc.errorAt(posOf(checked), "%s condition must have scalar type, got %s", construct, t)
	}
	return checked, t
}

func (tc *typeChecker) checkReturn(s *ast.ReturnStmt) {
	switch {
	case s.X == nil && tc.curFunc.Kind != types.Void:
		tc.errorAt(s.ReturnPos, "non-void function must return a value")
	case s.X != nil && tc.curFunc.Kind == types.Void:
		tc.errorAt(s.ReturnPos, "void function must not return a value")
		s.X, _ = tc.checkExpr(s.X)
	case s.X != nil:
		x, xt := tc.checkExpr(s.X)
		s.X = tc.assignConvert(x, xt, tc.curFunc, posOf(x))
	}
}

func (tc *typeChecker) checkSwitch(s *ast.SwitchStmt) {
	tag, tt := tc.checkExpr(s.Tag)
	if !tt.Kind.IsInteger() {
		tc.errorAt(posOf(tag), "switch tag must have integer type, got %s", tt)
	}
	s.Tag = tag

	seen := map[int64]bool{}
	hasDefault := false
	for _, c := range s.Cases {
		switch {
		case c.Value == nil:
			if hasDefault {
				tc.errorAt(c.CasePos, "multiple default labels in one switch")
			}
			hasDefault = true
		default:
			checked, ct := tc.checkExpr(c.Value)
			if lit, ok := ast.Unwrap(checked).(*ast.IntLitExpr); ok {
				if seen[lit.Value] {
					tc.errorAt(c.CasePos, "duplicate case value %d", lit.Value)
				}
				seen[lit.Value] = true
			} else {
				tc.errorAt(posOf(checked), "case label must be a constant integer expression")
			}
			c.Value = tc.assignConvert(checked, ct, tt, posOf(checked))
		}
		for _, inner := range c.Stmts {
			tc.checkStmt(inner)
		}
	}
}

// checkExpr types e, recursively type-checking and, where an implicit
// conversion applies, rewriting its children with materialized casts. The
// returned type is e's own natural type, before any conversion that an
// enclosing context (assignment, call argument, arithmetic balancing)
// might still impose.
func (tc *typeChecker) checkExpr(e ast.Expr) (ast.Expr, *types.Type) {
	switch e := e.(type) {
	case *ast.IntLitExpr:
		t := intLitType(e.Raw)
		tc.info.setType(e, t, t)
		return e, t
	case *ast.CharLitExpr:
		tc.info.setType(e, types.CharType, types.CharType)
		return e, types.CharType
	case *ast.StringLitExpr:
		t := types.NewArray(types.CharType, len(e.Value)+1)
		tc.info.setType(e, t, t)
		return e, t
	case *ast.IdentExpr:
		t := tc.typer.declaredType(e)
		tc.info.setType(e, t, t)
		return e, t
	case *ast.ParenExpr:
		x, xt := tc.checkExpr(e.X)
		e.X = x
		tc.info.setType(e, xt, xt)
		return e, xt
	case *ast.UnaryExpr:
		return tc.checkUnary(e)
	case *ast.PostfixExpr:
		x, xt := tc.checkExpr(e.X)
		e.X = x
		tc.info.setType(e, xt, xt)
		return e, xt
	case *ast.BinaryExpr:
		return tc.checkBinary(e)
	case *ast.AssignExpr:
		return tc.checkAssign(e)
	case *ast.CondExpr:
		return tc.checkCond(e)
	case *ast.CastExpr:
		return tc.checkCast(e)
	case *ast.MemberExpr:
		x, xt := tc.checkExpr(e.X)
		e.X = x
		mt := memberType(xt, e.Name)
		tc.info.setType(e, mt, mt)
		return e, mt
	case *ast.PtrMemberExpr:
		x, xt := tc.checkExpr(e.X)
		e.X = x
		mt := types.IntType
		if xt.Kind == types.Pointer {
			mt = memberType(xt.Elem, e.Name)
		}
		tc.info.setType(e, mt, mt)
		return e, mt
	case *ast.IndexExpr:
		x, xt := tc.checkExpr(e.X)
		e.X = x
		idx, it := tc.checkExpr(e.Index)
		if !it.Kind.IsInteger() {
			tc.errorAt(posOf(idx), "array subscript is not an integer")
		}
		e.Index = idx
		et := types.IntType
		if xt.Kind == types.Pointer || xt.Kind == types.Array {
			et = xt.Elem
		}
		tc.info.setType(e, et, et)
		return e, et
	case *ast.CallExpr:
		return tc.checkCall(e)
	case *ast.BadExpr:
		tc.info.setType(e, types.IntType, types.IntType)
		return e, types.IntType
	default:
		return e, types.IntType
	}
}

func memberType(agg *types.Type, name string) *types.Type {
	if agg.Kind != types.Struct && agg.Kind != types.Union {
		return types.IntType
	}
	if m, ok := agg.Member(name); ok {
		return m.Type
	}
	return types.IntType
}

func (tc *typeChecker) checkUnary(e *ast.UnaryExpr) (ast.Expr, *types.Type) {
	if e.SizeofType != nil {
		tc.info.setType(e, types.ULongType, types.ULongType)
		return e, types.ULongType
	}

	x, xt := tc.checkExpr(e.X)
	var result *types.Type
	switch e.Op {
	case token.STAR:
		result = types.IntType
		if xt.Kind == types.Pointer || xt.Kind == types.Array {
			result = xt.Elem
		}
		e.X = x
	case token.AMPERSAND:
		result = types.NewPointer(xt)
		e.X = x
	case token.SIZEOF:
		result = types.ULongType
		e.X = x
	case token.BANG:
		result = types.IntType
		e.X = x
	case token.PLUSPLUS, token.MINUSMINUS:
		result = xt
		e.X = x
	default: // unary + - ~
		result = promote(xt)
		e.X = tc.convertTo(x, xt, result, posOf(x))
	}
	tc.info.setType(e, result, result)
	return e, result
}

func (tc *typeChecker) checkBinary(e *ast.BinaryExpr) (ast.Expr, *types.Type) {
	x, xt := tc.checkExpr(e.X)
	y, yt := tc.checkExpr(e.Y)

	switch e.Op {
	case token.AMPAMP, token.PIPEPIPE:
		if !xt.Kind.IsScalar() || !yt.Kind.IsScalar() {
			tc.errorAt(posOf(e.X), "invalid operand types for operator %s", e.Op)
		}
		e.X, e.Y = x, y
		tc.info.setType(e, types.IntType, types.IntType)
		return e, types.IntType
	case token.COMMA:
		e.X, e.Y = x, y
		tc.info.setType(e, yt, yt)
		return e, yt
	case token.EQL, token.NEQ, token.LT, token.GT, token.LE, token.GE:
		if !xt.Kind.IsScalar() || !yt.Kind.IsScalar() {
			tc.errorAt(posOf(e.X), "invalid operand types for operator %s", e.Op)
			e.X, e.Y = x, y
			tc.info.setType(e, types.IntType, types.IntType)
			return e, types.IntType
		}
		common := usualArithmetic(xt, yt)
		e.X = tc.convertTo(x, xt, common, posOf(x))
		e.Y = tc.convertTo(y, yt, common, posOf(y))
		tc.info.setType(e, types.IntType, types.IntType)
		return e, types.IntType
	case token.PLUS:
		if xt.Kind == types.Pointer && yt.Kind.IsInteger() {
			e.X, e.Y = x, y
			tc.info.setType(e, xt, xt)
			return e, xt
		}
		if xt.Kind.IsInteger() && yt.Kind == types.Pointer {
			e.X, e.Y = x, y
			tc.info.setType(e, yt, yt)
			return e, yt
		}
	case token.MINUS:
		if xt.Kind == types.Pointer && yt.Kind == types.Pointer {
			e.X, e.Y = x, y
			tc.info.setType(e, types.LongType, types.LongType)
			return e, types.LongType
		}
		if xt.Kind == types.Pointer && yt.Kind.IsInteger() {
			e.X, e.Y = x, y
			tc.info.setType(e, xt, xt)
			return e, xt
		}
	}

	if !xt.Kind.IsScalar() || !yt.Kind.IsScalar() || xt.Kind == types.Pointer || yt.Kind == types.Pointer {
		tc.errorAt(posOf(e.X), "invalid operand types for operator %s", e.Op)
		e.X, e.Y = x, y
		tc.info.setType(e, types.IntType, types.IntType)
		return e, types.IntType
	}
	common := usualArithmetic(xt, yt)
	e.X = tc.convertTo(x, xt, common, posOf(x))
	e.Y = tc.convertTo(y, yt, common, posOf(y))
	tc.info.setType(e, common, common)
	return e, common
}

func (tc *typeChecker) checkAssign(e *ast.AssignExpr) (ast.Expr, *types.Type) {
	lhs, lt := tc.checkExpr(e.LHS)
	e.LHS = lhs
	rhs, rt := tc.checkExpr(e.RHS)

	// Lvalue-ness of e.LHS was already validated by DereferenceChecker.
	if e.Op != token.EQ {
		if !lt.Kind.IsScalar() || !rt.Kind.IsScalar() {
			tc.errorAt(posOf(rhs), "invalid operand types for compound assignment")
		} else {
			common := usualArithmetic(lt, rt)
			rhs = tc.convertTo(rhs, rt, common, posOf(rhs))
			rt = common
		}
	}
	e.RHS = tc.assignConvert(rhs, rt, lt, posOf(e.RHS))
	tc.info.setType(e, lt, lt)
	return e, lt
}

func (tc *typeChecker) checkCond(e *ast.CondExpr) (ast.Expr, *types.Type) {
	cond, ct := tc.checkExpr(e.Cond)
	if !ct.Kind.IsScalar() {
		tc.errorAt(posOf(cond), "condition of ?: must have scalar type, got %s", ct)
	}
	e.Cond = cond

	then, tt := tc.checkExpr(e.Then)
	els, et := tc.checkExpr(e.Else)

	var result *types.Type
	switch {
	case tt.Equal(et):
		result = tt
	case tt.Kind.IsInteger() && et.Kind.IsInteger():
		result = usualArithmetic(tt, et)
		then = tc.convertTo(then, tt, result, posOf(then))
		els = tc.convertTo(els, et, result, posOf(els))
	case tt.Kind == types.Pointer && isNullPointerConstant(els, et):
		result = tt
		els = tc.convertTo(els, et, result, posOf(els))
	case et.Kind == types.Pointer && isNullPointerConstant(then, tt):
		result = et
		then = tc.convertTo(then, tt, result, posOf(then))
	default:
		tc.errorAt(posOf(e.Cond), "incompatible operand types %s and %s for ?:", tt, et)
		result = tt
	}
	e.Then, e.Else = then, els
	tc.info.setType(e, result, result)
	return e, result
}

func (tc *typeChecker) checkCast(e *ast.CastExpr) (ast.Expr, *types.Type) {
	target := resolveTypeExprWith(tc.table, tc.file, &tc.errs, e.Type)
	x, xt := tc.checkExpr(e.X)
	e.X = x
	if target.Kind != types.Void && !target.Kind.IsScalar() {
		tc.errorAt(e.Lparen, "cast target must be a scalar or void type, got %s", target)
	} else if !xt.Kind.IsScalar() {
		tc.errorAt(e.Lparen, "cannot cast a non-scalar operand of type %s", xt)
	}
	tc.info.setType(e, xt, target)
	return e, target
}

func (tc *typeChecker) checkCall(e *ast.CallExpr) (ast.Expr, *types.Type) {
	fn, ft := tc.checkExpr(e.Fn)
	e.Fn = fn

	sig := ft
	if sig.Kind == types.Pointer && sig.Elem.Kind == types.Function {
		sig = sig.Elem
	}
	if sig.Kind != types.Function {
		tc.errorAt(posOf(fn), "called object is not a function")
		for i, a := range e.Args {
			e.Args[i], _ = tc.checkExpr(a)
		}
		tc.info.setType(e, types.IntType, types.IntType)
		return e, types.IntType
	}

	if len(e.Args) < len(sig.Params) || (!sig.Variadic && len(e.Args) > len(sig.Params)) {
		tc.errorAt(posOf(e.Fn), "wrong number of arguments in call (expected %d, got %d)", len(sig.Params), len(e.Args))
	}

	for i, a := range e.Args {
		checked, at := tc.checkExpr(a)
		switch {
		case i < len(sig.Params):
			checked = tc.assignConvert(checked, at, sig.Params[i], posOf(checked))
		default:
			// extra variadic argument: default argument promotions (spec 4.7)
			checked = tc.convertTo(checked, at, promote(at), posOf(checked))
		}
		e.Args[i] = checked
	}
	tc.info.setType(e, sig.Ret, sig.Ret)
	return e, sig.Ret
}

// convertTo balances e from its natural type to a wider/common arithmetic
// type; the caller has already established that this conversion is legal
// (both operands are scalar), so no further check is made.
func (tc *typeChecker) convertTo(e ast.Expr, from, to *types.Type, pos token.Pos) ast.Expr {
	if from.Equal(to) {
		return e
	}
	return tc.wrapCast(e, from, to, pos)
}

// assignConvert converts e from "from" to "to" if that conversion is one
// of the assignability rules of spec ch. 4.7, reporting an error otherwise.
func (tc *typeChecker) assignConvert(e ast.Expr, from, to *types.Type, pos token.Pos) ast.Expr {
	if from.Equal(to) {
		return e
	}
	if tc.isAssignConvertible(e, from, to) {
		return tc.wrapCast(e, from, to, pos)
	}
	tc.errorAt(pos, "cannot assign value of type %s to %s", from, to)
	return e
}

func (tc *typeChecker) isAssignConvertible(e ast.Expr, from, to *types.Type) bool {
	switch {
	case from.Kind.IsInteger() && to.Kind.IsInteger():
		return true
	case to.Kind == types.Pointer && isNullPointerConstant(e, from):
		return true
	case from.Kind == types.Pointer && to.Kind == types.Pointer && (from.Elem.Kind == types.Void || to.Elem.Kind == types.Void):
		return true
	case from.Kind == types.Array && to.Kind == types.Pointer && from.Elem.Equal(to.Elem):
		return true
	case from.Kind == types.Function && to.Kind == types.Pointer && to.Elem.Kind == types.Function && from.Equal(to.Elem):
		return true
	default:
		return false
	}
}

func (tc *typeChecker) wrapCast(e ast.Expr, from, to *types.Type, pos token.Pos) ast.Expr {
	cast := &ast.CastExpr{
		Lparen:   pos,
		Type:     &ast.NamedTypeExpr{NamePos: pos, Name: to.String()},
		Rparen:   pos,
		X:        e,
		Implicit: true,
	}
	tc.info.setType(cast, from, to)
	return cast
}

// isNullPointerConstant reports whether e is the integer literal 0,
// legal as a source of any pointer type (spec ch. 4.7).
func isNullPointerConstant(e ast.Expr, from *types.Type) bool {
	if !from.Kind.IsInteger() {
		return false
	}
	lit, ok := ast.Unwrap(e).(*ast.IntLitExpr)
	return ok && lit.Value == 0
}
