package codegen

import (
	"fmt"

	"github.com/cbcomp/cb/lang/ast"
	"github.com/cbcomp/cb/lang/token"
	"github.com/cbcomp/cb/lang/typecheck"
	"github.com/cbcomp/cb/lang/types"
)

// Generate lowers every function definition and global variable in ch
// into a Program (spec ch. 4.8). ch must already have passed
// ResolveTypes, CheckDereferences and CheckTypes; Generate itself never
// reports a type error, only an *ICE if an earlier pass's invariant does
// not hold (spec ch. 4.8.4).
func Generate(fset *token.FileSet, ch *ast.Chunk, table *types.TypeTable, info *typecheck.Info, opts Options) (prog *Program, err error) {
	file := fset.File(ch.Name)
	prog = NewProgram()

	defer func() {
		if r := recover(); r != nil {
			if iceErr, ok := r.(*ICE); ok {
				err = iceErr
				return
			}
			panic(r)
		}
	}()

	for _, d := range ch.Decls {
		switch d := d.(type) {
		case *ast.FuncDecl:
			if d.Body == nil {
				continue
			}
			g := newGen(prog, file, table, info, opts)
			g.genFunc(d)
		case *ast.VarDecl:
			genGlobalVar(prog, file, info, d)
		case *ast.TypedefDecl, *ast.AggregateDecl, *ast.ConstDecl:
			// no storage of their own; already fully consumed by TypeResolver
		default:
			panic(ice(filePos(file, d), "unexpected top-level declaration %T", d))
		}
	}
	return prog, nil
}

func filePos(file *token.File, n ast.Node) string {
	start, _ := n.Span()
	return file.Position(start).String()
}

// genGlobalVar emits storage for a file-scope variable: .bss for a
// zero-initialized or uninitialized definition, .data for one with a
// compile-time-constant scalar initializer (spec ch. 4.8.2). extern
// declarations with no initializer contribute no storage of their own.
func genGlobalVar(prog *Program, file *token.File, info *typecheck.Info, d *ast.VarDecl) {
	t := info.DeclType(d)
	size, align := sizeAlignOf(t)

	if d.Init == nil {
		if d.Extern {
			return
		}
		prog.exportGlobal(d.Name)
		fmt.Fprintf(&prog.bss, "\t.align %d\n%s:\n\t.zero %d\n", align, d.Name, size)
		return
	}

	prog.exportGlobal(d.Name)
	if t.Kind == types.Struct || t.Kind == types.Union || t.Kind == types.Array {
		panic(ice(filePos(file, d), "aggregate global initializers are not supported"))
	}
	v, ok := constIntValue(d.Init)
	if !ok {
		panic(ice(filePos(file, d), "global initializer for %q is not a compile-time constant", d.Name))
	}
	if v == 0 {
		fmt.Fprintf(&prog.bss, "\t.align %d\n%s:\n\t.zero %d\n", align, d.Name, size)
		return
	}
	fmt.Fprintf(&prog.data, "\t.align %d\n%s:\n\t%s %d\n", align, d.Name, dataDirectiveFor(size), v)
}

func dataDirectiveFor(size int) string {
	switch size {
	case 1:
		return ".byte"
	case 2:
		return ".short"
	default:
		return ".long"
	}
}
