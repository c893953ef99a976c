package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"

	"github.com/cbcomp/cb/lang/ast"
	"github.com/cbcomp/cb/lang/parser"
	"github.com/cbcomp/cb/lang/scanner"
	"github.com/cbcomp/cb/lang/token"
)

// DumpStmt prints the first statement of main's body in each file (spec
// ch. 6 "dump-stmt"), a narrower probe than dump-ast for inspecting how a
// single statement parsed.
func (c *Cmd) DumpStmt(_ context.Context, stdio mainer.Stdio, args []string) error {
	fs, chunks, err := parser.ParseFiles(context.Background(), c.libPath(), args...)
	printer := ast.Printer{Output: stdio.Stdout, Pos: token.PosLong}
	for _, ch := range chunks {
		fd := findMain(ch)
		if fd == nil || fd.Body == nil || len(fd.Body.Stmts) == 0 {
			fmt.Fprintf(stdio.Stdout, "%s: main has no statements\n", ch.Name)
			continue
		}
		start, _ := fd.Body.Stmts[0].Span()
		if perr := printer.Print(fd.Body.Stmts[0], fs.File(start)); perr != nil {
			fmt.Fprintln(stdio.Stderr, perr)
			return perr
		}
	}
	if err != nil {
		scanner.PrintError(stdio.Stderr, err)
	}
	return err
}

func findMain(ch *ast.Chunk) *ast.FuncDecl {
	for _, d := range ch.Decls {
		if fd, ok := d.(*ast.FuncDecl); ok && fd.Name == "main" && fd.Body != nil {
			return fd
		}
	}
	return nil
}
