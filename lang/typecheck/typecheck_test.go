package typecheck_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cbcomp/cb/lang/ast"
	"github.com/cbcomp/cb/lang/parser"
	"github.com/cbcomp/cb/lang/resolver"
	"github.com/cbcomp/cb/lang/token"
	"github.com/cbcomp/cb/lang/typecheck"
	"github.com/cbcomp/cb/lang/types"
)

// mustCheck runs the full pre-codegen pipeline over src: parse, JumpResolver,
// LocalReferenceResolver, TypeResolver, DereferenceChecker, TypeChecker.
func mustCheck(t *testing.T, src string) (*ast.Chunk, *typecheck.Info, error) {
	t.Helper()
	fset := token.NewFileSet()
	ch, err := parser.ParseChunk(context.Background(), fset, "test.cb", []byte(src))
	require.NoError(t, err)
	require.NoError(t, resolver.ResolveJumps(fset, []*ast.Chunk{ch}))
	require.NoError(t, resolver.ResolveLocals(fset, []*ast.Chunk{ch}))

	table := types.NewTypeTable()
	info := typecheck.NewInfo()
	require.NoError(t, typecheck.ResolveTypes(fset, ch, table, info))

	if err := typecheck.CheckDereferences(fset, ch, table, info); err != nil {
		return ch, info, err
	}
	return ch, info, typecheck.CheckTypes(fset, ch, table, info)
}

func TestCheckTypesPromotesCharInArithmetic(t *testing.T) {
	ch, info, err := mustCheck(t, "int main(void){ char c; int x; x = c + 1; return x; }")
	require.NoError(t, err)

	fd := ch.Decls[0].(*ast.FuncDecl)
	assign := fd.Body.Stmts[2].(*ast.ExprStmt).X.(*ast.AssignExpr)
	bin := assign.RHS.(*ast.BinaryExpr)
	require.Equal(t, types.IntType, info.TypeOf(bin))

	cast, ok := bin.X.(*ast.CastExpr)
	require.True(t, ok, "char operand should be wrapped in an implicit promotion cast")
	require.True(t, cast.Implicit)
}

func TestCheckTypesAssignIncompatibleStruct(t *testing.T) {
	_, _, err := mustCheck(t, "struct P { int x; }; int main(void){ struct P p; int y; y = p; return 0; }")
	require.Error(t, err)
	require.Contains(t, err.Error(), "cannot assign")
}

func TestCheckTypesNullPointerAssignsToPointer(t *testing.T) {
	_, _, err := mustCheck(t, "int main(void){ int *p; p = 0; return 0; }")
	require.NoError(t, err)
}

func TestCheckTypesPointerPlusIntStaysPointer(t *testing.T) {
	ch, info, err := mustCheck(t, "int main(void){ int *p; int *q; q = p + 1; return 0; }")
	require.NoError(t, err)

	fd := ch.Decls[0].(*ast.FuncDecl)
	assign := fd.Body.Stmts[2].(*ast.ExprStmt).X.(*ast.AssignExpr)
	bin := assign.RHS.(*ast.BinaryExpr)
	require.Equal(t, types.Pointer, info.TypeOf(bin).Kind)
}

func TestCheckTypesPointerMinusPointerIsLong(t *testing.T) {
	ch, info, err := mustCheck(t, "int main(void){ int *p; int *q; long n; n = p - q; return 0; }")
	require.NoError(t, err)

	fd := ch.Decls[0].(*ast.FuncDecl)
	assign := fd.Body.Stmts[3].(*ast.ExprStmt).X.(*ast.AssignExpr)
	bin := assign.RHS.(*ast.BinaryExpr)
	require.Equal(t, types.Long, info.TypeOf(bin).Kind)
}

func TestCheckTypesCallArgumentCountMismatch(t *testing.T) {
	_, _, err := mustCheck(t, "int f(int a, int b); int main(void){ return f(1); }")
	require.Error(t, err)
	require.Contains(t, err.Error(), "wrong number of arguments")
}

func TestCheckTypesReturnMismatchVoid(t *testing.T) {
	_, _, err := mustCheck(t, "void f(void){ return 1; }")
	require.Error(t, err)
	require.Contains(t, err.Error(), "must not return a value")
}

func TestCheckTypesReturnMissingValue(t *testing.T) {
	_, _, err := mustCheck(t, "int f(void){ return; }")
	require.Error(t, err)
	require.Contains(t, err.Error(), "must return a value")
}

func TestCheckTypesSwitchDuplicateCase(t *testing.T) {
	_, _, err := mustCheck(t, "int main(void){ switch(1){ case 1: break; case 1: break; } return 0; }")
	require.Error(t, err)
	require.Contains(t, err.Error(), "duplicate case value")
}

func TestCheckTypesSwitchMultipleDefaults(t *testing.T) {
	_, _, err := mustCheck(t, "int main(void){ switch(1){ default: break; default: break; } return 0; }")
	require.Error(t, err)
	require.Contains(t, err.Error(), "multiple default labels")
}

func TestCheckDereferencesStarRequiresPointer(t *testing.T) {
	_, _, err := mustCheck(t, "int main(void){ int x; return *x; }")
	require.Error(t, err)
	require.Contains(t, err.Error(), "indirection requires a pointer")
}

func TestCheckDereferencesMemberRequiresStruct(t *testing.T) {
	_, _, err := mustCheck(t, "int main(void){ int x; return x.y; }")
	require.Error(t, err)
	require.Contains(t, err.Error(), "member access requires a struct")
}

func TestCheckDereferencesAddressRequiresLvalue(t *testing.T) {
	_, _, err := mustCheck(t, "int main(void){ int x; int *p; p = &(x + 1); return 0; }")
	require.Error(t, err)
	require.Contains(t, err.Error(), "cannot take the address")
}

func TestCheckDereferencesStructMemberAccess(t *testing.T) {
	ch, info, err := mustCheck(t, "struct Point { int x; int y; }; int main(void){ struct Point p; int n; n = p.x; return n; }")
	require.NoError(t, err)

	fd := ch.Decls[1].(*ast.FuncDecl)
	assign := fd.Body.Stmts[2].(*ast.ExprStmt).X.(*ast.AssignExpr)
	member := assign.RHS.(*ast.MemberExpr)
	require.Equal(t, types.IntType, info.TypeOf(member))
}
