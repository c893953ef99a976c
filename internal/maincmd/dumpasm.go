package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"

	"github.com/cbcomp/cb/lang/codegen"
	"github.com/cbcomp/cb/lang/compile"
	"github.com/cbcomp/cb/lang/scanner"
)

// DumpAsm runs the full pipeline through code generation and prints the
// resulting assembly, without invoking the external assembler or linker
// (spec ch. 6 "dump-asm").
func (c *Cmd) DumpAsm(_ context.Context, stdio mainer.Stdio, args []string) error {
	progs, err := compile.Files(context.Background(), c.libPath(), codegen.Options{PositionIndependent: c.PositionIndep}, args...)
	for _, name := range args {
		prog, ok := progs[name]
		if !ok {
			continue
		}
		fmt.Fprintf(stdio.Stdout, "# %s\n%s", name, prog.String())
	}
	if err != nil {
		scanner.PrintError(stdio.Stderr, err)
	}
	return err
}
