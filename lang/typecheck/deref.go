package typecheck

import (
	"github.com/cbcomp/cb/lang/ast"
	"github.com/cbcomp/cb/lang/scanner"
	"github.com/cbcomp/cb/lang/token"
	"github.com/cbcomp/cb/lang/types"
)

// CheckDereferences runs DereferenceChecker over one chunk (spec ch. 4.6):
// it validates that *, [], ., ->, &, ++, -- and assignment are only applied to an
// operand of the right shape, and records every expression's lvalue-ness
// in info for TypeChecker and the code generator to consult. table must
// already have been populated by TypeResolver for this chunk.
func CheckDereferences(fset *token.FileSet, ch *ast.Chunk, table *types.TypeTable, info *Info) error {
	file := fset.File(ch.Name)
	d := &derefChecker{file: file, typer: newTyper(table, file, info), info: info}

	var visit ast.VisitorFunc
	visit = func(n ast.Node, dir ast.VisitDirection) ast.Visitor {
		if dir != ast.VisitEnter {
			return visit
		}
		if e, ok := n.(ast.Expr); ok {
			d.check(e)
		}
		return visit
	}
	ast.Walk(visit, ch)

	d.errs.Sort()
	return d.errs.Err()
}

type derefChecker struct {
	file  *token.File
	typer *typer
	info  *Info
	errs  scanner.ErrorList
}

func (d *derefChecker) errorAt(pos token.Pos, msg string) {
	d.errs.AddKind(d.file.Position(pos), scanner.Semantic, msg)
}

// check validates e's immediate operand categories and records whether e
// itself is an assignable lvalue. It relies on typer.declaredType rather
// than a prior pass's result, since DereferenceChecker runs before
// TypeChecker has materialized anything into info.
func (d *derefChecker) check(e ast.Expr) {
	d.info.setLvalue(e, ast.IsAssignable(e))

	switch e := e.(type) {
	case *ast.UnaryExpr:
		switch e.Op {
		case token.STAR:
			xt := d.typer.declaredType(e.X)
			if xt.Kind != types.Pointer && xt.Kind != types.Array {
				d.errorAt(e.OpPos, "indirection requires a pointer or array operand, got "+xt.String())
			}
		case token.AMPERSAND:
			if !ast.IsAssignable(e.X) {
				d.errorAt(e.OpPos, "cannot take the address of a non-lvalue expression")
			}
		case token.PLUSPLUS, token.MINUSMINUS:
			if !ast.IsAssignable(e.X) {
				d.errorAt(e.OpPos, "operand of "+e.Op.String()+" is not assignable")
			}
		}
	case *ast.PostfixExpr:
		if !ast.IsAssignable(e.X) {
			d.errorAt(e.OpPos, "operand of "+e.Op.String()+" is not assignable")
		}
	case *ast.IndexExpr:
		xt := d.typer.declaredType(e.X)
		if xt.Kind != types.Pointer && xt.Kind != types.Array {
			d.errorAt(e.Lbrack, "subscript requires a pointer or array operand, got "+xt.String())
		}
	case *ast.MemberExpr:
		xt := d.typer.declaredType(e.X)
		if xt.Kind != types.Struct && xt.Kind != types.Union {
			d.errorAt(e.Dot, "member access requires a struct or union operand, got "+xt.String())
		} else if _, ok := xt.Member(e.Name); !ok {
			d.errorAt(e.NamePos, "no member named "+e.Name+" in "+xt.String())
		}
	case *ast.PtrMemberExpr:
		xt := d.typer.declaredType(e.X)
		if xt.Kind != types.Pointer || (xt.Elem.Kind != types.Struct && xt.Elem.Kind != types.Union) {
			d.errorAt(e.Arrow, "pointer member access requires a pointer to struct or union operand, got "+xt.String())
		} else if _, ok := xt.Elem.Member(e.Name); !ok {
			d.errorAt(e.NamePos, "no member named "+e.Name+" in "+xt.Elem.String())
		}
	case *ast.AssignExpr:
		if !ast.IsAssignable(e.LHS) {
			d.errorAt(e.OpPos, "left-hand side of assignment is not assignable")
		}
	}
}
