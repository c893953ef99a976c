package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"

	"github.com/cbcomp/cb/lang/parser"
)

// CheckSyntax parses each file independently and reports "Syntax OK" or
// "Syntax Error" per file (spec ch. 6), failing only if at least one file
// failed to parse.
func (c *Cmd) CheckSyntax(_ context.Context, stdio mainer.Stdio, args []string) error {
	var failed bool
	for _, file := range args {
		_, _, err := parser.ParseFiles(context.Background(), c.libPath(), file)
		if err != nil {
			fmt.Fprintf(stdio.Stdout, "%s: Syntax Error\n", file)
			failed = true
			continue
		}
		fmt.Fprintf(stdio.Stdout, "%s: Syntax OK\n", file)
	}
	if failed {
		return fmt.Errorf("syntax errors found")
	}
	return nil
}
