package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"

	"github.com/cbcomp/cb/lang/ast"
	"github.com/cbcomp/cb/lang/compile"
	"github.com/cbcomp/cb/lang/scanner"
	"github.com/cbcomp/cb/lang/token"
)

// DumpReference prints the AST after jump resolution and local/global name
// resolution have run, before any type information exists (spec ch. 6
// "dump-reference", spec ch. 4.3-4.4).
func (c *Cmd) DumpReference(_ context.Context, stdio mainer.Stdio, args []string) error {
	fs, chunks, err := compile.ParseAndResolve(context.Background(), c.libPath(), args...)
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
