package codegen

import (
	"github.com/cbcomp/cb/lang/ast"
	"github.com/cbcomp/cb/lang/typecheck"
	"github.com/cbcomp/cb/lang/types"
)

// frame is the single-layout-per-function storage assignment of spec ch.
// 4.8.2: parameters at positive offsets from %ebp following 32-bit cdecl
// (return address at +4, saved frame pointer at 0, first parameter at +8),
// locals at negative offsets assigned contiguously with alignment honored.
type frame struct {
	offsets map[ast.Node]int // *ast.ParamDecl, *ast.VarDecl -> offset(%ebp)
	size    int              // total local area, rounded up to 4
}

func (fr *frame) offsetOf(pos string, d ast.Node) int {
	off, ok := fr.offsets[d]
	if !ok {
		panic(ice(pos, "no frame slot assigned to declaration %T", d))
	}
	return off
}

// buildFrame computes fd's frame layout. Parameters are assigned offsets
// in declaration order (first parameter at %ebp+8, each next one 4 bytes
// higher): callers push arguments right-to-left (genCall), so the first
// argument is the last one pushed and sits just above the return address,
// as in genuine 32-bit cdecl.
func buildFrame(fd *ast.FuncDecl, info *typecheck.Info) *frame {
	fr := &frame{offsets: make(map[ast.Node]int)}

	off := 8
	for _, p := range fd.Params {
		fr.offsets[p] = off
		off += 4
	}

	neg := 0
	collectLocals(fd.Body, info, fr, &neg)
	fr.size = alignUp(-neg, 4)
	return fr
}

func collectLocals(b *ast.Block, info *typecheck.Info, fr *frame, neg *int) {
	for _, s := range b.Stmts {
		collectLocalsStmt(s, info, fr, neg)
	}
}

func collectLocalsStmt(s ast.Stmt, info *typecheck.Info, fr *frame, neg *int) {
	switch s := s.(type) {
	case *ast.VarDecl:
		t := info.DeclType(s)
		size, align := 4, 4
		if t != nil && t.IsComplete() {
			size, align = t.Size(), t.Align()
		}
		*neg = alignDown(*neg-size, align)
		fr.offsets[s] = *neg
	case *ast.BlockStmt:
		collectLocals(s.Block, info, fr, neg)
	case *ast.IfStmt:
		collectLocalsStmt(s.Then, info, fr, neg)
		if s.Else != nil {
			collectLocalsStmt(s.Else, info, fr, neg)
		}
	case *ast.WhileStmt:
		collectLocalsStmt(s.Body, info, fr, neg)
	case *ast.DoWhileStmt:
		collectLocalsStmt(s.Body, info, fr, neg)
	case *ast.ForStmt:
		if s.Init != nil {
			collectLocalsStmt(s.Init, info, fr, neg)
		}
		collectLocalsStmt(s.Body, info, fr, neg)
	case *ast.SwitchStmt:
		for _, c := range s.Cases {
			for _, inner := range c.Stmts {
				collectLocalsStmt(inner, info, fr, neg)
			}
		}
	case *ast.LabelStmt:
		collectLocalsStmt(s.Stmt, info, fr, neg)
	}
}

func alignUp(n, align int) int {
	if align <= 1 {
		return n
	}
	return (n + align - 1) &^ (align - 1)
}

// alignDown rounds a negative frame offset further from zero so the slot
// it denotes (which grows toward more negative addresses) starts aligned.
func alignDown(n, align int) int {
	if align <= 1 {
		return n
	}
	rem := (-n) % align
	if rem == 0 {
		return n
	}
	return n - (align - rem)
}

// sizeAlignOf returns (size, align) for t, defaulting to word size for an
// incomplete type (codegen never reaches an incomplete type in a
// well-typed program; this default only protects against a degenerate
// void local that DereferenceChecker/TypeChecker should already reject).
func sizeAlignOf(t *types.Type) (int, int) {
	if t == nil || !t.IsComplete() {
		return 4, 4
	}
	return t.Size(), t.Align()
}
