// Package ast defines the types that represent the abstract syntax tree
// (AST) of Cb programs: declarations, statements, expressions, and the
// syntactic type expressions used in declarators. Every node carries its
// source span as token.Pos pairs so that later passes (spec ch. 4.3-4.8)
// can attach resolution/type information and still report precise
// diagnostics.
package ast

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cbcomp/cb/lang/token"
)

// Node represents any node in the AST.
type Node interface {
	// Every Node implements fmt.Formatter so it can print a description of
	// itself for dump-ast. Only the 'v' and 's' verbs are supported; a
	// width truncates or pads the label (right-aligned by default, '-'
	// left-aligns, '+' disables padding), and '#' appends child counts.
	fmt.Formatter

	// Span reports the start and end position of the node.
	Span() (start, end token.Pos)

	// Walk enters each child node, implementing the Visitor pattern.
	Walk(v Visitor)
}

// Expr represents an expression in the AST.
type Expr interface {
	Node
	expr()
}

// Stmt represents a statement in the AST.
type Stmt interface {
	Node
	stmt()
}

// Decl represents a top-level or member declaration in the AST.
type Decl interface {
	Node
	decl()
}

// Chunk is the root of a single parsed (and, after import resolution,
// merged) translation unit (spec ch. 3 "AST (program)").
type Chunk struct {
	Name  string // source file name
	Decls []Decl
	EOF   token.Pos
}

func (n *Chunk) Format(f fmt.State, verb rune) { format(f, verb, n, "chunk", map[string]int{"decls": len(n.Decls)}) }
func (n *Chunk) Span() (start, end token.Pos) {
	if len(n.Decls) > 0 {
		start, _ = n.Decls[0].Span()
	} else {
		start = n.EOF
	}
	return start, n.EOF
}
func (n *Chunk) Walk(v Visitor) {
	for _, d := range n.Decls {
		Walk(v, d)
	}
}

// Block represents a brace-delimited block of statements.
type Block struct {
	Lbrace token.Pos
	Stmts  []Stmt
	Rbrace token.Pos
}

func (n *Block) Format(f fmt.State, verb rune) {
	format(f, verb, n, "block", map[string]int{"stmts": len(n.Stmts)})
}
func (n *Block) Span() (start, end token.Pos) { return n.Lbrace, n.Rbrace }
func (n *Block) Walk(v Visitor) {
	for _, s := range n.Stmts {
		Walk(v, s)
	}
}

func format(f fmt.State, verb rune, n Node, label string, counts map[string]int) {
	if verb != 'v' && verb != 's' {
		fmt.Fprintf(f, "%%!%c(%T)", verb, n)
		return
	}

	label = strings.ReplaceAll(label, "\r\n", "⏎")
	label = strings.ReplaceAll(label, "\n", "⏎")
	label = strings.ReplaceAll(label, "\t", "↹")

	if w, ok := f.Width(); ok {
		minus, plus := f.Flag('-'), f.Flag('+')
		runes := []rune(label)
		switch {
		case len(runes) >= w:
			runes = runes[:w]
		case minus:
			runes = append(runes, []rune(strings.Repeat(" ", w-len(runes)))...)
		case !plus:
			runes = append([]rune(strings.Repeat(" ", w-len(runes))), runes...)
		}
		label = string(runes)
	}

	fmt.Fprint(f, label)
	if f.Flag('#') && len(counts) > 0 {
		keys := make([]string, 0, len(counts))
		for k := range counts {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		fmt.Fprint(f, " {")
		for i, k := range keys {
			if i > 0 {
				fmt.Fprint(f, ", ")
			}
			fmt.Fprintf(f, "%s=%d", k, counts[k])
		}
		fmt.Fprint(f, "}")
	}
}
