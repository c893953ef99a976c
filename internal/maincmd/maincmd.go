// Package maincmd implements Cb's command-line driver (spec ch. 6): a
// single binary with mutually exclusive modes spanning everything from
// printing raw tokens to producing a linked executable, adapted from the
// teacher's mainer.Parser-based Cmd/buildCmds pattern.
package maincmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/mna/mainer"

	"github.com/cbcomp/cb/internal/config"
	"github.com/cbcomp/cb/lang/parser"
)

const binName = "cb"

var (
	shortUsage = fmt.Sprintf(`
usage: %s [<option>...] <mode> <path>...
Run '%[1]s --help' for details.
`, binName)

	longUsage = fmt.Sprintf(`usage: %s [<option>...] <mode> <path>...
       %[1]s -h|--help
       %[1]s -v|--version

Ahead-of-time compiler for the Cb language, emitting 32-bit x86 AT&T
assembly and, by default, a linked executable.

The <mode> can be one of:
       check-syntax      Parse every file and report "<file>: Syntax OK"
                          or "<file>: Syntax Error" per file.
       dump-tokens        Print the token stream.
       dump-ast           Print the parsed AST.
       dump-stmt          Print the first statement of main's body.
       dump-reference     Print the AST after jump/name resolution.
       dump-semantic      Print the AST after type checking.
       dump-asm           Print generated assembly without assembling it.
       build              Compile, assemble and link.

Valid flag options are:
       -h --help          Show this help and exit.
       -v --version       Print version and exit.
       -S                 Stop after producing assembly (write .s files).
       -c                 Stop after assembling (write .o files, skip link).
       -o <path>          Output path for the final mode artifact.
       --fpic             Emit position-independent call sites.
       --lib-path <path>  Colon-separated import search path.

More information on the Cb repository:
       https://github.com/cbcomp/cb
`, binName)
)

// Cmd is the top-level driver command, parsed by mna/mainer from the
// process's argument vector (spec ch. 6's flag surface).
type Cmd struct {
	BuildVersion string
	BuildDate    string

	Help    bool `flag:"h,help"`
	Version bool `flag:"v,version"`

	StopAfterAssembly bool   `flag:"S"`
	StopAfterObject   bool   `flag:"c"`
	Output            string `flag:"o,output"`
	PositionIndep     bool   `flag:"fpic"`
	LibPath           string `flag:"lib-path"`

	args  []string
	flags map[string]bool
	cmdFn func(context.Context, mainer.Stdio, []string) error

	toolchain config.Toolchain
}

func (c *Cmd) SetArgs(args []string) { c.args = args }
func (c *Cmd) SetFlags(flags map[string]bool) { c.flags = flags }

func (c *Cmd) Validate() error {
	if c.Help || c.Version {
		return nil
	}
	if len(c.args) == 0 {
		return errors.New("no mode specified")
	}

	mode := c.args[0]
	commands := buildCmds(c)
	c.cmdFn = commands[strings.ReplaceAll(mode, "-", "")]
	if c.cmdFn == nil {
		return fmt.Errorf("unknown mode: %s", mode)
	}
	if len(c.args[1:]) == 0 {
		return fmt.Errorf("%s: at least one file must be provided", mode)
	}

	tc, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading toolchain configuration: %w", err)
	}
	c.toolchain = tc
	return nil
}

func (c *Cmd) libPath() parser.LibPath {
	if c.LibPath == "" {
		return parser.LibPath(c.toolchain.LibPath)
	}
	return parser.LibPath(strings.Split(c.LibPath, ":"))
}

// Main is mainer's entry point, matching the teacher's own Main shape.
func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{
		EnvVars:   false,
		EnvPrefix: binName + "_",
	}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, shortUsage)
		return mainer.InvalidArgs
	}

	switch {
	case c.Help:
		fmt.Fprint(stdio.Stdout, longUsage)
		return mainer.Success
	case c.Version:
		fmt.Fprintf(stdio.Stdout, "%s %s %s\n", binName, c.BuildVersion, c.BuildDate)
		return mainer.Success
	}

	ctx := mainer.CancelOnSignal(context.Background(), os.Interrupt)
	if err := c.cmdFn(ctx, stdio, c.args[1:]); err != nil {
		return mainer.Failure
	}
	return mainer.Success
}

// valid commands are those that take a mainer.Stdio and a slice of
// strings as input and return an error as output, discovered by method
// name the same way the teacher's buildCmds does.
func buildCmds(v interface{}) map[string]func(context.Context, mainer.Stdio, []string) error {
	cmds := make(map[string]func(context.Context, mainer.Stdio, []string) error)

	vv := reflect.ValueOf(v)
	vt := vv.Type()
	for i := 0; i < vt.NumMethod(); i++ {
		m := vt.Method(i)
		mt := m.Type
		if mt.NumIn() != 4 || mt.NumOut() != 1 {
			continue
		}
		if rt := mt.Out(0); rt.Kind() != reflect.Interface || rt.Name() != "error" {
			continue
		}
		if p0 := mt.In(0); p0.Kind() != reflect.Ptr || p0.Elem().Name() != "Cmd" {
			continue
		}
		if p1 := mt.In(1); p1.Kind() != reflect.Interface || p1.Name() != "Context" {
			continue
		}
		if p2 := mt.In(2); p2.Kind() != reflect.Struct || p2.Name() != "Stdio" {
			continue
		}
		if p3 := mt.In(3); p3.Kind() != reflect.Slice || p3.Elem().Name() != "string" {
			continue
		}
		cmds[strings.ToLower(m.Name)] = vv.Method(i).Interface().(func(context.Context, mainer.Stdio, []string) error)
	}
	return cmds
}
