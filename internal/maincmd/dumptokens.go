package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"

	"github.com/cbcomp/cb/lang/scanner"
	"github.com/cbcomp/cb/lang/token"
)

// DumpTokens prints every token the scanner produces for each file (spec
// ch. 6 "dump-tokens").
func (c *Cmd) DumpTokens(_ context.Context, stdio mainer.Stdio, args []string) error {
	fs, toksByFile, err := scanner.ScanFiles(context.Background(), args...)
	for _, toks := range toksByFile {
		for _, tok := range toks {
			fmt.Fprintf(stdio.Stdout, "%s: %s", token.FormatPos(token.PosLong, fs.File(tok.Value.Pos), tok.Value.Pos, true), tok.Token)
			if lit := tok.Token.Literal(tok.Value); lit != "" {
				fmt.Fprintf(stdio.Stdout, " %s", lit)
			}
			fmt.Fprintln(stdio.Stdout)
		}
	}
	if err != nil {
		scanner.PrintError(stdio.Stderr, err)
	}
	return err
}
