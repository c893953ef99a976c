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

// DumpAst prints the parsed AST of each file, before any resolution
// pass has run (spec ch. 6 "dump-ast").
func (c *Cmd) DumpAst(_ context.Context, stdio mainer.Stdio, args []string) error {
	fs, chunks, err := parser.ParseFiles(context.Background(), c.libPath(), args...)
	printer := ast.Printer{Output: stdio.Stdout, Pos: token.PosLong}
	for _, ch := range chunks {
		start, _ := ch.Span()
		if perr := printer.Print(ch, fs.File(start)); perr != nil {
			fmt.Fprintln(stdio.Stderr, perr)
			return perr
		}
	}
	if err != nil {
		scanner.PrintError(stdio.Stderr, err)
	}
	return err
}
