package codegen_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cbcomp/cb/lang/ast"
	"github.com/cbcomp/cb/lang/codegen"
	"github.com/cbcomp/cb/lang/parser"
	"github.com/cbcomp/cb/lang/resolver"
	"github.com/cbcomp/cb/lang/token"
	"github.com/cbcomp/cb/lang/typecheck"
	"github.com/cbcomp/cb/lang/types"
)

// mustGenerate runs the full front end (spec ch. 4.3-4.7) over src and
// returns the rendered assembly text.
func mustGenerate(t *testing.T, src string) string {
	t.Helper()
	fset := token.NewFileSet()
	ch, err := parser.ParseChunk(context.Background(), fset, "test.cb", []byte(src))
	require.NoError(t, err)
	require.NoError(t, resolver.ResolveJumps(fset, []*ast.Chunk{ch}))
	require.NoError(t, resolver.ResolveLocals(fset, []*ast.Chunk{ch}))

	table := types.NewTypeTable()
	info := typecheck.NewInfo()
	require.NoError(t, typecheck.ResolveTypes(fset, ch, table, info))
	require.NoError(t, typecheck.CheckDereferences(fset, ch, table, info))
	require.NoError(t, typecheck.CheckTypes(fset, ch, table, info))

	prog, err := codegen.Generate(fset, ch, table, info, codegen.Options{})
	require.NoError(t, err)
	return prog.String()
}

func TestGenerateReturnConstant(t *testing.T) {
	asm := mustGenerate(t, "int main(void){ return 0; }")
	require.Contains(t, asm, "\t.globl main\n")
	require.Contains(t, asm, "main:\n")
	require.Contains(t, asm, "movl $0, %eax")
	require.Contains(t, asm, "leave\n")
	require.Contains(t, asm, "ret\n")
}

func TestGenerateArithmeticPrecedence(t *testing.T) {
	asm := mustGenerate(t, "int main(void){ return 1+2*3; }")
	require.Contains(t, asm, "imull %ecx, %eax")
	require.Contains(t, asm, "addl %ecx, %eax")
}

func TestGenerateRecursiveCall(t *testing.T) {
	asm := mustGenerate(t, `
int fact(int n) {
	if (n <= 1) return 1;
	return n * fact(n - 1);
}
`)
	require.Contains(t, asm, "\t.globl fact\n")
	require.Contains(t, asm, "call fact\n")
	require.Contains(t, asm, "addl $4, %esp")
}

func TestGenerateArrayIndexing(t *testing.T) {
	asm := mustGenerate(t, `
int main(void) {
	int a[3];
	a[0] = 10;
	a[1] = 20;
	a[2] = 30;
	return a[0] + a[1] + a[2];
}
`)
	require.Contains(t, asm, "leal ")
	require.Contains(t, asm, "subl $")
}

func TestGenerateStructMemberAccess(t *testing.T) {
	asm := mustGenerate(t, `
struct P { int x; int y; };
int main(void) {
	struct P p;
	p.x = 3;
	p.y = 4;
	return p.x * p.x + p.y * p.y;
}
`)
	require.Contains(t, asm, "addl $4, %eax")
}

func TestGenerateIfElseEmitsTwoLabels(t *testing.T) {
	asm := mustGenerate(t, `
int main(void) {
	int x;
	x = 1;
	if (x) {
		return 1;
	} else {
		return 0;
	}
}
`)
	require.Contains(t, asm, ".LL1:")
	require.Contains(t, asm, ".LL2:")
}

func TestGenerateWhileLoop(t *testing.T) {
	asm := mustGenerate(t, `
int main(void) {
	int i;
	int sum;
	i = 0;
	sum = 0;
	while (i < 10) {
		sum = sum + i;
		i = i + 1;
	}
	return sum;
}
`)
	require.Contains(t, asm, "jmp .LL")
	require.Contains(t, asm, "je .LL")
}

func TestGenerateForLoopBreakContinue(t *testing.T) {
	asm := mustGenerate(t, `
int main(void) {
	int i;
	int sum;
	sum = 0;
	for (i = 0; i < 10; i = i + 1) {
		if (i == 5) break;
		if (i == 1) continue;
		sum = sum + i;
	}
	return sum;
}
`)
	require.Contains(t, asm, "jmp .LL")
}

func TestGenerateSwitchCompareChain(t *testing.T) {
	asm := mustGenerate(t, `
int main(void) {
	int x;
	x = 2;
	switch (x) {
	case 1:
		return 1;
	case 2:
		return 2;
	default:
		return 0;
	}
}
`)
	require.Contains(t, asm, "cmpl $1, %ecx")
	require.Contains(t, asm, "cmpl $2, %ecx")
}

func TestGenerateGlobalInitializedData(t *testing.T) {
	asm := mustGenerate(t, `
int counter = 42;
int main(void) { return counter; }
`)
	require.Contains(t, asm, "\t.data\n")
	require.Contains(t, asm, "counter:\n")
	require.Contains(t, asm, ".long 42")
}

func TestGenerateUninitializedGlobalGoesToBss(t *testing.T) {
	asm := mustGenerate(t, `
int total;
int main(void) { return total; }
`)
	require.Contains(t, asm, "\t.bss\n")
	require.Contains(t, asm, "total:\n")
}

func TestGenerateStringLiteralInterned(t *testing.T) {
	asm := mustGenerate(t, `
int main(void) {
	char *s;
	s = "hi";
	return 0;
}
`)
	require.Contains(t, asm, "\t.section .rodata\n")
	require.Contains(t, asm, ".LC0:")
}

func TestGeneratePointerArithmeticScalesBySize(t *testing.T) {
	asm := mustGenerate(t, `
int main(void) {
	int a[4];
	int *p;
	p = a;
	p = p + 1;
	return *p;
}
`)
	require.Contains(t, asm, "imull $4, %eax")
}

func TestGeneratePositionIndependentCallUsesPLT(t *testing.T) {
	fset := token.NewFileSet()
	src := `
int f(void);
int main(void) { return f(); }
`
	ch, err := parser.ParseChunk(context.Background(), fset, "test.cb", []byte(src))
	require.NoError(t, err)
	require.NoError(t, resolver.ResolveJumps(fset, []*ast.Chunk{ch}))
	require.NoError(t, resolver.ResolveLocals(fset, []*ast.Chunk{ch}))

	table := types.NewTypeTable()
	info := typecheck.NewInfo()
	require.NoError(t, typecheck.ResolveTypes(fset, ch, table, info))
	require.NoError(t, typecheck.CheckDereferences(fset, ch, table, info))
	require.NoError(t, typecheck.CheckTypes(fset, ch, table, info))

	prog, err := codegen.Generate(fset, ch, table, info, codegen.Options{PositionIndependent: true})
	require.NoError(t, err)
	require.Contains(t, prog.String(), "call f@PLT")
}
