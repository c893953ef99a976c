package maincmd_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mna/mainer"
	"github.com/stretchr/testify/require"

	"github.com/cbcomp/cb/internal/maincmd"
)

func TestCheckSyntaxReportsOKAndError(t *testing.T) {
	ok := filepath.Join("testdata", "in", "add.cb")
	bad := filepath.Join(t.TempDir(), "bad.cb")
	require.NoError(t, os.WriteFile(bad, []byte("int main(void) { return ;"), 0o644))

	var buf bytes.Buffer
	stdio := mainer.Stdio{Stdout: &buf}
	c := &maincmd.Cmd{}

	err := c.CheckSyntax(context.Background(), stdio, []string{ok})
	require.NoError(t, err)
	require.Contains(t, buf.String(), ok+": Syntax OK\n")

	buf.Reset()
	err = c.CheckSyntax(context.Background(), stdio, []string{ok, bad})
	require.Error(t, err)
	require.Contains(t, buf.String(), ok+": Syntax OK\n")
	require.Contains(t, buf.String(), bad+": Syntax Error\n")
}

func TestBuildStopAfterAssemblyWritesAsmFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "add.cb")
	data, err := os.ReadFile(filepath.Join("testdata", "in", "add.cb"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(src, data, 0o644))

	var out, errOut bytes.Buffer
	stdio := mainer.Stdio{Stdout: &out, Stderr: &errOut}
	c := &maincmd.Cmd{StopAfterAssembly: true}

	err = c.Build(context.Background(), stdio, []string{src})
	require.NoError(t, err)

	asm, err := os.ReadFile(filepath.Join(dir, "add.s"))
	require.NoError(t, err)
	require.Contains(t, string(asm), "add:")
	require.Contains(t, string(asm), "main:")
	require.Contains(t, string(asm), ".text")
}

func TestDumpAsmPrintsWithoutInvokingExternalTools(t *testing.T) {
	src := filepath.Join("testdata", "in", "add.cb")

	var out, errOut bytes.Buffer
	stdio := mainer.Stdio{Stdout: &out, Stderr: &errOut}
	c := &maincmd.Cmd{}

	err := c.DumpAsm(context.Background(), stdio, []string{src})
	require.NoError(t, err)
	require.Contains(t, out.String(), "call add")
}
