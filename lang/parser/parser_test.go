package parser

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cbcomp/cb/lang/ast"
	"github.com/cbcomp/cb/lang/token"
)

func mustParse(t *testing.T, src string) *ast.Chunk {
	t.Helper()
	fset := token.NewFileSet()
	ch, err := ParseChunk(context.Background(), fset, "test.cb", []byte(src))
	require.NoError(t, err)
	return ch
}

func TestParseVarDecl(t *testing.T) {
	ch := mustParse(t, "int x = 1;")
	require.Len(t, ch.Decls, 1)
	vd, ok := ch.Decls[0].(*ast.VarDecl)
	require.True(t, ok)
	require.Equal(t, "x", vd.Name)
	lit, ok := vd.Init.(*ast.IntLitExpr)
	require.True(t, ok)
	require.EqualValues(t, 1, lit.Value)
}

func TestParsePointerDecl(t *testing.T) {
	ch := mustParse(t, "int *p;")
	vd := ch.Decls[0].(*ast.VarDecl)
	_, ok := vd.Type.(*ast.PointerTypeExpr)
	require.True(t, ok)
}

func TestParseArrayDecl(t *testing.T) {
	ch := mustParse(t, "int a[10];")
	vd := ch.Decls[0].(*ast.VarDecl)
	at, ok := vd.Type.(*ast.ArrayTypeExpr)
	require.True(t, ok)
	require.NotNil(t, at.Len)
}

func TestParseFuncDef(t *testing.T) {
	ch := mustParse(t, "int add(int a, int b) { return a + b; }")
	fd := ch.Decls[0].(*ast.FuncDecl)
	require.Equal(t, "add", fd.Name)
	require.Len(t, fd.Params, 2)
	require.True(t, fd.IsDefinition())
	require.Len(t, fd.Body.Stmts, 1)

	ret := fd.Body.Stmts[0].(*ast.ReturnStmt)
	bin := ret.X.(*ast.BinaryExpr)
	require.Equal(t, token.PLUS, bin.Op)
}

func TestParseFuncPrototype(t *testing.T) {
	ch := mustParse(t, "int add(int a, int b);")
	fd := ch.Decls[0].(*ast.FuncDecl)
	require.False(t, fd.IsDefinition())
}

func TestParseVariadicFunc(t *testing.T) {
	ch := mustParse(t, "int printf(char *fmt, ...);")
	fd := ch.Decls[0].(*ast.FuncDecl)
	require.True(t, fd.Variadic.IsValid())
}

func TestParseStructDecl(t *testing.T) {
	ch := mustParse(t, "struct Point { int x; int y; };")
	sd := ch.Decls[0].(*ast.AggregateDecl)
	require.Equal(t, ast.StructKind, sd.Kind)
	require.Len(t, sd.Members, 2)
}

func TestParseTypedef(t *testing.T) {
	ch := mustParse(t, "typedef int myint; myint x;")
	td := ch.Decls[0].(*ast.TypedefDecl)
	require.Equal(t, "myint", td.Name)
	vd := ch.Decls[1].(*ast.VarDecl)
	nt := vd.Type.(*ast.NamedTypeExpr)
	require.Equal(t, "myint", nt.Name)
}

func TestParseIfElse(t *testing.T) {
	ch := mustParse(t, "int f() { if (1) return 1; else return 2; }")
	fd := ch.Decls[0].(*ast.FuncDecl)
	ifs := fd.Body.Stmts[0].(*ast.IfStmt)
	require.NotNil(t, ifs.Else)
	_, isIf := ifs.Else.(*ast.IfStmt)
	require.False(t, isIf)
}

func TestParseElseIf(t *testing.T) {
	ch := mustParse(t, "int f() { if (1) return 1; else if (2) return 2; else return 3; }")
	fd := ch.Decls[0].(*ast.FuncDecl)
	ifs := fd.Body.Stmts[0].(*ast.IfStmt)
	elseIf, ok := ifs.Else.(*ast.IfStmt)
	require.True(t, ok)
	require.NotNil(t, elseIf.Else)
}

func TestParseForLoop(t *testing.T) {
	ch := mustParse(t, "int f() { for (int i = 0; i < 10; i = i + 1) ; }")
	fd := ch.Decls[0].(*ast.FuncDecl)
	fs := fd.Body.Stmts[0].(*ast.ForStmt)
	require.NotNil(t, fs.Init)
	require.NotNil(t, fs.Cond)
	require.NotNil(t, fs.Post)
}

func TestParseWhileAndDoWhile(t *testing.T) {
	ch := mustParse(t, "int f() { while (1) { } do { } while (0); }")
	fd := ch.Decls[0].(*ast.FuncDecl)
	require.IsType(t, &ast.WhileStmt{}, fd.Body.Stmts[0])
	require.IsType(t, &ast.DoWhileStmt{}, fd.Body.Stmts[1])
}

func TestParseSwitch(t *testing.T) {
	ch := mustParse(t, `int f() {
		switch (1) {
		case 1: break;
		default: break;
		}
	}`)
	fd := ch.Decls[0].(*ast.FuncDecl)
	sw := fd.Body.Stmts[0].(*ast.SwitchStmt)
	require.Len(t, sw.Cases, 2)
	require.Nil(t, sw.Cases[1].Value)
}

func TestParseGotoLabel(t *testing.T) {
	ch := mustParse(t, "int f() { goto done; done: return 0; }")
	fd := ch.Decls[0].(*ast.FuncDecl)
	require.IsType(t, &ast.GotoStmt{}, fd.Body.Stmts[0])
	require.IsType(t, &ast.LabelStmt{}, fd.Body.Stmts[1])
}

func TestParseSizeofType(t *testing.T) {
	ch := mustParse(t, "int f() { return sizeof(int); }")
	fd := ch.Decls[0].(*ast.FuncDecl)
	ret := fd.Body.Stmts[0].(*ast.ReturnStmt)
	un := ret.X.(*ast.UnaryExpr)
	require.NotNil(t, un.SizeofType)
}

func TestParseSizeofExpr(t *testing.T) {
	ch := mustParse(t, "int f() { int x; return sizeof x; }")
	fd := ch.Decls[0].(*ast.FuncDecl)
	ret := fd.Body.Stmts[1].(*ast.ReturnStmt)
	un := ret.X.(*ast.UnaryExpr)
	require.Nil(t, un.SizeofType)
	require.NotNil(t, un.X)
}

func TestParseCast(t *testing.T) {
	ch := mustParse(t, "int f() { return (int)'a'; }")
	fd := ch.Decls[0].(*ast.FuncDecl)
	ret := fd.Body.Stmts[0].(*ast.ReturnStmt)
	cast, ok := ret.X.(*ast.CastExpr)
	require.True(t, ok)
	require.False(t, cast.Implicit)
}

func TestParseStringConcatenation(t *testing.T) {
	ch := mustParse(t, `char *f() { return "foo" "bar"; }`)
	fd := ch.Decls[0].(*ast.FuncDecl)
	ret := fd.Body.Stmts[0].(*ast.ReturnStmt)
	lit := ret.X.(*ast.StringLitExpr)
	require.Equal(t, "foobar", lit.Value)
}

func TestOperatorPrecedence(t *testing.T) {
	ch := mustParse(t, "int f() { return 1 + 2 * 3; }")
	fd := ch.Decls[0].(*ast.FuncDecl)
	ret := fd.Body.Stmts[0].(*ast.ReturnStmt)
	top := ret.X.(*ast.BinaryExpr)
	require.Equal(t, token.PLUS, top.Op)
	_, ok := top.X.(*ast.IntLitExpr)
	require.True(t, ok)
	rhs := top.Y.(*ast.BinaryExpr)
	require.Equal(t, token.STAR, rhs.Op)
}

func TestTernaryAndAssignRightAssociative(t *testing.T) {
	ch := mustParse(t, "int f() { int a; int b; a = b = 1 ? 2 : 3; }")
	fd := ch.Decls[0].(*ast.FuncDecl)
	assign := fd.Body.Stmts[2].(*ast.ExprStmt).X.(*ast.AssignExpr)
	require.Equal(t, token.EQ, assign.Op)
	inner, ok := assign.RHS.(*ast.AssignExpr)
	require.True(t, ok)
	_, ok = inner.RHS.(*ast.CondExpr)
	require.True(t, ok)
}

func TestParseErrorRecoveryContinuesToNextStatement(t *testing.T) {
	fset := token.NewFileSet()
	ch, err := ParseChunk(context.Background(), fset, "test.cb", []byte("int f() { 1 +; return 1; }"))
	require.Error(t, err)
	fd := ch.Decls[0].(*ast.FuncDecl)
	require.Len(t, fd.Body.Stmts, 2)
	require.IsType(t, &ast.ReturnStmt{}, fd.Body.Stmts[1])
}
