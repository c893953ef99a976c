package maincmd

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/mna/mainer"

	"github.com/cbcomp/cb/lang/codegen"
	"github.com/cbcomp/cb/lang/compile"
	"github.com/cbcomp/cb/lang/scanner"
)

// Build runs the full pipeline and, depending on -S/-c, stops after
// writing assembly, stops after assembling object files, or goes all the
// way to a linked executable (spec ch. 6 "build", "stop-after-assembly
// (-S)", "stop-after-object (-c)").
func (c *Cmd) Build(ctx context.Context, stdio mainer.Stdio, args []string) error {
	opts := codegen.Options{PositionIndependent: c.PositionIndep}
	progs, err := compile.Files(ctx, c.libPath(), opts, args...)
	if err != nil {
		scanner.PrintError(stdio.Stderr, err)
		return err
	}

	asmPaths := make([]string, 0, len(args))
	for _, name := range args {
		prog, ok := progs[name]
		if !ok {
			continue
		}
		asmPath := replaceExt(name, ".s")
		if err := os.WriteFile(asmPath, []byte(prog.String()), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", asmPath, err)
		}
		asmPaths = append(asmPaths, asmPath)
	}

	if c.StopAfterAssembly {
		return nil
	}

	objPaths := make([]string, 0, len(asmPaths))
	for _, asmPath := range asmPaths {
		objPath := replaceExt(asmPath, ".o")
		if err := c.assemble(ctx, stdio, asmPath, objPath); err != nil {
			return err
		}
		objPaths = append(objPaths, objPath)
	}

	if c.StopAfterObject {
		return nil
	}

	out := c.Output
	if out == "" {
		out = "a.out"
	}
	return c.link(ctx, stdio, objPaths, out)
}

func (c *Cmd) assemble(ctx context.Context, stdio mainer.Stdio, asmPath, objPath string) error {
	cmdArgs := []string{"--32", "-o", objPath, asmPath}
	cmd := exec.CommandContext(ctx, c.toolchain.As, cmdArgs...)
	cmd.Stdout = stdio.Stdout
	cmd.Stderr = stdio.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s %s: %w", c.toolchain.As, strings.Join(cmdArgs, " "), err)
	}
	return nil
}

func (c *Cmd) link(ctx context.Context, stdio mainer.Stdio, objPaths []string, out string) error {
	cmdArgs := []string{
		"-m", "elf_i386",
		"-dynamic-linker", c.toolchain.DynamicLinker,
		"-o", out,
		c.toolchain.Crt1, c.toolchain.Crti,
	}
	cmdArgs = append(cmdArgs, objPaths...)
	cmdArgs = append(cmdArgs, c.toolchain.Crtn, "-lc")

	cmd := exec.CommandContext(ctx, c.toolchain.Ld, cmdArgs...)
	cmd.Stdout = stdio.Stdout
	cmd.Stderr = stdio.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s %s: %w", c.toolchain.Ld, strings.Join(cmdArgs, " "), err)
	}
	return nil
}

func replaceExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}
