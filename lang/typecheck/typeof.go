package typecheck

import (
	"strings"

	"github.com/cbcomp/cb/lang/ast"
	"github.com/cbcomp/cb/lang/resolver"
	"github.com/cbcomp/cb/lang/scanner"
	"github.com/cbcomp/cb/lang/token"
	"github.com/cbcomp/cb/lang/types"
)

// typer infers the declared type of an expression from the bindings
// LocalReferenceResolver and TypeResolver already attached, without
// applying integer promotions or usual arithmetic conversions. It backs
// both DereferenceChecker, which only needs an operand's shape, and
// TypeChecker, which builds its conversions on top of these same
// declared types (spec ch. 4.6-4.7).
type typer struct {
	table *types.TypeTable
	file  *token.File
	info  *Info
}

func newTyper(table *types.TypeTable, file *token.File, info *Info) *typer {
	return &typer{table: table, file: file, info: info}
}

func (t *typer) declaredType(e ast.Expr) *types.Type {
	switch e := e.(type) {
	case *ast.IntLitExpr:
		return intLitType(e.Raw)
	case *ast.CharLitExpr:
		return types.CharType
	case *ast.StringLitExpr:
		return types.NewArray(types.CharType, len(e.Value)+1)
	case *ast.IdentExpr:
		b, _ := e.Entity.(*resolver.Binding)
		if b == nil {
			return types.IntType
		}
		if dt := t.info.DeclType(b.Decl); dt != nil {
			return dt
		}
		return types.IntType
	case *ast.ParenExpr:
		return t.declaredType(e.X)
	case *ast.UnaryExpr:
		switch e.Op {
		case token.STAR:
			xt := t.declaredType(e.X)
			if xt.Kind == types.Pointer || xt.Kind == types.Array {
				return xt.Elem
			}
			return types.IntType
		case token.AMPERSAND:
			return types.NewPointer(t.declaredType(e.X))
		case token.SIZEOF:
			return types.ULongType
		case token.BANG:
			return types.IntType
		default:
			return t.declaredType(e.X)
		}
	case *ast.PostfixExpr:
		return t.declaredType(e.X)
	case *ast.BinaryExpr:
		switch e.Op {
		case token.EQL, token.NEQ, token.LT, token.GT, token.LE, token.GE, token.AMPAMP, token.PIPEPIPE:
			return types.IntType
		case token.COMMA:
			return t.declaredType(e.Y)
		default:
			return usualArithmetic(t.declaredType(e.X), t.declaredType(e.Y))
		}
	case *ast.AssignExpr:
		return t.declaredType(e.LHS)
	case *ast.CondExpr:
		tt := t.declaredType(e.Then)
		if tt.Kind == types.Pointer || tt.Kind == types.Struct || tt.Kind == types.Union {
			return tt
		}
		return usualArithmetic(tt, t.declaredType(e.Else))
	case *ast.CastExpr:
		return t.castTargetType(e)
	case *ast.MemberExpr:
		xt := t.declaredType(e.X)
		if xt.Kind == types.Struct || xt.Kind == types.Union {
			if m, ok := xt.Member(e.Name); ok {
				return m.Type
			}
		}
		return types.IntType
	case *ast.PtrMemberExpr:
		xt := t.declaredType(e.X)
		if xt.Kind == types.Pointer && (xt.Elem.Kind == types.Struct || xt.Elem.Kind == types.Union) {
			if m, ok := xt.Elem.Member(e.Name); ok {
				return m.Type
			}
		}
		return types.IntType
	case *ast.IndexExpr:
		xt := t.declaredType(e.X)
		if xt.Kind == types.Pointer || xt.Kind == types.Array {
			return xt.Elem
		}
		return types.IntType
	case *ast.CallExpr:
		ft := t.declaredType(e.Fn)
		switch {
		case ft.Kind == types.Function:
			return ft.Ret
		case ft.Kind == types.Pointer && ft.Elem.Kind == types.Function:
			return ft.Elem.Ret
		default:
			return types.IntType
		}
	default:
		return types.IntType
	}
}

// castTargetType resolves a cast's written target type quietly: TypeChecker
// is the pass of record for diagnosing an unknown cast target (spec ch.
// 4.7), so errors here are discarded rather than reported a second time.
// If TypeChecker has already processed ce (it runs after DereferenceChecker,
// which is the only other caller of declaredType on an unresolved tree),
// its cached effective type is reused instead of re-resolving.
func (t *typer) castTargetType(ce *ast.CastExpr) *types.Type {
	if dt := t.info.effIfSet(ce); dt != nil {
		return dt
	}
	var discard scanner.ErrorList
	return resolveTypeExprWith(t.table, t.file, &discard, ce.Type)
}

// intLitType gives an integer literal the narrowest of int/unsigned
// int/long/unsigned long its U/L suffix requires (spec ch. 4.1).
func intLitType(raw string) *types.Type {
	upper := strings.ToUpper(raw)
	u := strings.ContainsRune(upper, 'U')
	l := strings.ContainsRune(upper, 'L')
	switch {
	case u && l:
		return types.ULongType
	case l:
		return types.LongType
	case u:
		return types.UIntType
	default:
		return types.IntType
	}
}

func integerRank(k types.Kind) int {
	switch k {
	case types.Char, types.UChar:
		return 1
	case types.Short, types.UShort:
		return 2
	case types.Int, types.UInt:
		return 3
	case types.Long, types.ULong:
		return 4
	default:
		return 3
	}
}

// promote widens char/short operands to int (spec ch. 4.7 "integer
// promotions"); every other kind is left as-is.
func promote(t *types.Type) *types.Type {
	switch t.Kind {
	case types.Char, types.UChar, types.Short, types.UShort:
		return types.IntType
	default:
		return t
	}
}

// usualArithmetic implements the usual arithmetic conversions: pointer
// arithmetic keeps the pointer's type, and otherwise the wider rank wins,
// ties going to the unsigned operand (spec ch. 4.7).
func usualArithmetic(a, b *types.Type) *types.Type {
	if a.Kind == types.Pointer {
		return a
	}
	if b.Kind == types.Pointer {
		return b
	}
	a, b = promote(a), promote(b)
	ra, rb := integerRank(a.Kind), integerRank(b.Kind)
	switch {
	case ra > rb:
		return a
	case rb > ra:
		return b
	case a.Kind.IsUnsigned():
		return a
	default:
		return b
	}
}
