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

// DumpSemantic prints the AST after type resolution, dereference checking
// and type checking have all run (spec ch. 6 "dump-semantic", spec
// ch. 4.5-4.7). Each file is checked independently; a failure in one file
// does not stop the others from being dumped.
func (c *Cmd) DumpSemantic(_ context.Context, stdio mainer.Stdio, args []string) error {
	fs, chunks, err := compile.ParseAndResolve(context.Background(), c.libPath(), args...)
	if err != nil {
		scanner.PrintError(stdio.Stderr, err)
	}

	printer := ast.Printer{Output: stdio.Stdout, Pos: token.PosLong}
	var errs scanner.ErrorList
	errs.Merge(err)
	for _, ch := range chunks {
		u, cerr := compile.CheckChunk(fs, ch)
		if cerr != nil {
			errs.Merge(cerr)
			continue
		}
		start, _ := u.Chunk.Span()
		if perr := printer.Print(u.Chunk, fs.File(start)); perr != nil {
			fmt.Fprintln(stdio.Stderr, perr)
			errs.Merge(perr)
		}
	}
	if errs.HasErrors() {
		scanner.PrintError(stdio.Stderr, errs.Err())
		return errs.Err()
	}
	return nil
}
