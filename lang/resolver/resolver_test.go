package resolver_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cbcomp/cb/lang/ast"
	"github.com/cbcomp/cb/lang/parser"
	"github.com/cbcomp/cb/lang/resolver"
	"github.com/cbcomp/cb/lang/token"
)

func mustParse(t *testing.T, src string) (*token.FileSet, *ast.Chunk) {
	t.Helper()
	fset := token.NewFileSet()
	ch, err := parser.ParseChunk(context.Background(), fset, "test.cb", []byte(src))
	require.NoError(t, err)
	return fset, ch
}

func TestResolveLocalsBindsIdent(t *testing.T) {
	fset, ch := mustParse(t, "int main(void){ int x; x = 1; return x; }")
	require.NoError(t, resolver.ResolveLocals(fset, []*ast.Chunk{ch}))

	fd := ch.Decls[0].(*ast.FuncDecl)
	ret := fd.Body.Stmts[1].(*ast.ReturnStmt)
	id := ret.X.(*ast.IdentExpr)
	b, ok := id.Entity.(*resolver.Binding)
	require.True(t, ok)
	require.Equal(t, resolver.Var, b.Kind)
}

func TestResolveLocalsUndefinedReference(t *testing.T) {
	fset, ch := mustParse(t, "int main(void){ return y; }")
	err := resolver.ResolveLocals(fset, []*ast.Chunk{ch})
	require.Error(t, err)
	require.Contains(t, err.Error(), "undefined reference to y")
}

func TestResolveLocalsRedeclarationSameScope(t *testing.T) {
	fset, ch := mustParse(t, "int main(void){ int x; int x; return 0; }")
	err := resolver.ResolveLocals(fset, []*ast.Chunk{ch})
	require.Error(t, err)
	require.Contains(t, err.Error(), "redeclared")
}

func TestResolveLocalsShadowingAllowed(t *testing.T) {
	fset, ch := mustParse(t, "int x; int main(void){ int x; return x; }")
	require.NoError(t, resolver.ResolveLocals(fset, []*ast.Chunk{ch}))
}

func TestResolveLocalsPrototypeMergesWithDefinition(t *testing.T) {
	fset, ch := mustParse(t, "int f(int n); int f(int n){ return n; } int main(void){ return f(1); }")
	require.NoError(t, resolver.ResolveLocals(fset, []*ast.Chunk{ch}))
}

func TestResolveJumpsBreakOutsideLoop(t *testing.T) {
	fset, ch := mustParse(t, "int main(void){ break; return 0; }")
	err := resolver.ResolveJumps(fset, []*ast.Chunk{ch})
	require.Error(t, err)
	require.Contains(t, err.Error(), "break statement not within a loop or switch")
}

func TestResolveJumpsContinueOutsideLoop(t *testing.T) {
	fset, ch := mustParse(t, "int main(void){ continue; return 0; }")
	err := resolver.ResolveJumps(fset, []*ast.Chunk{ch})
	require.Error(t, err)
	require.Contains(t, err.Error(), "continue statement not within a loop")
}

func TestResolveJumpsBreakTargetsInnermostLoop(t *testing.T) {
	fset, ch := mustParse(t, "int main(void){ while(1){ while(1){ break; } } return 0; }")
	require.NoError(t, resolver.ResolveJumps(fset, []*ast.Chunk{ch}))

	fd := ch.Decls[0].(*ast.FuncDecl)
	outer := fd.Body.Stmts[0].(*ast.WhileStmt)
	innerBlock := outer.Body.(*ast.BlockStmt).Block
	inner := innerBlock.Stmts[0].(*ast.WhileStmt)
	innerBody := inner.Body.(*ast.BlockStmt).Block
	brk := innerBody.Stmts[0].(*ast.BreakStmt)
	require.Same(t, ast.Stmt(inner), brk.Target)
}

func TestResolveJumpsGotoLinksToLabel(t *testing.T) {
	fset, ch := mustParse(t, "int main(void){ goto done; done: return 0; }")
	require.NoError(t, resolver.ResolveJumps(fset, []*ast.Chunk{ch}))

	fd := ch.Decls[0].(*ast.FuncDecl)
	g := fd.Body.Stmts[0].(*ast.GotoStmt)
	lbl := fd.Body.Stmts[1].(*ast.LabelStmt)
	require.Same(t, lbl, g.Target)
}

func TestResolveJumpsGotoUndefinedLabel(t *testing.T) {
	fset, ch := mustParse(t, "int main(void){ goto nowhere; return 0; }")
	err := resolver.ResolveJumps(fset, []*ast.Chunk{ch})
	require.Error(t, err)
	require.Contains(t, err.Error(), "label nowhere used but not defined")
}

func TestResolveJumpsDuplicateLabel(t *testing.T) {
	fset, ch := mustParse(t, "int main(void){ l: ; l: ; return 0; }")
	err := resolver.ResolveJumps(fset, []*ast.Chunk{ch})
	require.Error(t, err)
	require.Contains(t, err.Error(), "duplicate label l")
}

func TestResolveJumpsSwitchIsBreakable(t *testing.T) {
	fset, ch := mustParse(t, "int main(void){ switch(1){ case 1: break; } return 0; }")
	require.NoError(t, resolver.ResolveJumps(fset, []*ast.Chunk{ch}))
}
