// Package codegen implements CodeGenerator (spec ch. 4.8): IR lowering of
// a type-checked function body into the 32-bit x86 AT&T accumulator
// evaluation model, storage assignment for globals/locals/string literals,
// and final assembly text emission. Codegen trusts every invariant the
// earlier passes established; any node it doesn't expect is an internal
// compiler error, not a diagnostic (spec ch. 4.8.4).
package codegen

import (
	"bytes"
	"fmt"

	"github.com/dolthub/swiss"
)

// ICE is an internal compiler error: codegen hit a node shape that a
// correctly type-checked program can never produce. It always indicates a
// bug in an earlier phase, not a problem with the input program.
type ICE struct {
	Pos string
	Msg string
}

func (e *ICE) Error() string { return fmt.Sprintf("%s: internal compiler error: %s", e.Pos, e.Msg) }

func ice(pos string, format string, args ...any) *ICE {
	return &ICE{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// Options controls driver-selected codegen behavior (spec "Supplemented
// features": a -fpic-style toggle).
type Options struct {
	// PositionIndependent, when set, emits "call name@PLT" instead of
	// "call name" for every direct call by name, whether or not the callee
	// is defined in the same unit (spec ch. 4.8.3).
	PositionIndependent bool
}

// Program accumulates the four output sections of one compiled unit (spec
// ch. 4.8.3): .text, .data, .rodata, .bss, plus the set of globally
// exported symbols.
type Program struct {
	text, data, rodata, bss bytes.Buffer
	globals                 []string

	strings *swiss.Map[string, string] // literal content -> .rodata label, deduped (spec ch. 9 "string-literal interning")
	strSeq  int
}

// NewProgram returns an empty Program ready for one or more functions and
// globals to be emitted into it.
func NewProgram() *Program {
	return &Program{strings: swiss.NewMap[string, string](16)}
}

func (p *Program) exportGlobal(name string) { p.globals = append(p.globals, name) }

// internString returns the .rodata label for s, creating and emitting a
// new one the first time s's exact byte content is seen. s carries no
// terminating NUL; the .string directive appends it.
func (p *Program) internString(s string) string {
	if label, ok := p.strings.Get(s); ok {
		return label
	}
	label := fmt.Sprintf(".LC%d", p.strSeq)
	p.strSeq++
	p.strings.Put(s, label)
	fmt.Fprintf(&p.rodata, "%s:\n\t.string %q\n", label, s)
	return label
}

// String renders the final GNU-assembler (AT&T, 32-bit) text: every
// ".globl" directive first, then each non-empty section's header followed
// by its accumulated body, in the fixed order .data, .bss, .rodata, .text
// (.text is always emitted) (spec ch. 6 "Emitted assembly").
func (p *Program) String() string {
	var out bytes.Buffer
	for _, name := range p.globals {
		fmt.Fprintf(&out, "\t.globl %s\n", name)
	}
	if p.data.Len() > 0 {
		out.WriteString("\t.data\n")
		out.Write(p.data.Bytes())
	}
	if p.bss.Len() > 0 {
		out.WriteString("\t.bss\n")
		out.Write(p.bss.Bytes())
	}
	if p.rodata.Len() > 0 {
		out.WriteString("\t.section .rodata\n")
		out.Write(p.rodata.Bytes())
	}
	out.WriteString("\t.text\n")
	out.Write(p.text.Bytes())
	return out.String()
}
