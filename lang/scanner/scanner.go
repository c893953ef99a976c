// Some of the scanner package is adapted from the Go source code:
// https://cs.opensource.google/go/go/+/refs/tags/go1.22.1:src/go/scanner/scanner.go
//
// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package scanner implements the lexer for the Cb language (spec ch. 4.1):
// it turns source bytes into a stream of token.Token/token.Value pairs,
// skipping whitespace and comments, and reports illegal input through an
// ErrorList rather than failing at the first problem.
package scanner

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"unicode"
	"unicode/utf8"

	"github.com/cbcomp/cb/lang/token"
)

// TokenAndValue combines the token type with the token value in the same
// struct, as produced by one call to Scan.
type TokenAndValue struct {
	Token token.Token
	Value token.Value
}

// ScanFiles tokenizes the given source files and returns the token stream
// for each, grouped by file at the same index, along with the FileSet
// needed to translate positions for diagnostics. The returned error, if
// non-nil, is an ErrorList.
func ScanFiles(_ context.Context, files ...string) (*token.FileSet, [][]TokenAndValue, error) {
	if len(files) == 0 {
		return nil, nil, nil
	}

	var (
		s      Scanner
		tokVal token.Value
		el     ErrorList
	)

	fs := token.NewFileSet()
	tokensByFile := make([][]TokenAndValue, len(files))
	for i, file := range files {
		b, err := os.ReadFile(file)
		if err != nil {
			el.Add(token.Position{Filename: file}, err.Error())
			continue
		}

		f := fs.AddFile(file, len(b))
		s.Init(f, b, el.Add)
		for {
			tok := s.Scan(&tokVal)
			tokensByFile[i] = append(tokensByFile[i], TokenAndValue{Token: tok, Value: tokVal})
			if tok == token.EOF {
				break
			}
		}
	}
	el.Sort()
	return fs, tokensByFile, el.Err()
}

// Scanner tokenizes a single source file for the parser to consume.
type Scanner struct {
	// immutable state after Init
	file *token.File
	src  []byte
	err  func(pos token.Position, msg string)

	// mutable scanning state
	invalidByte byte // when cur==RuneError due to failed utf8 decode, the raw byte
	cur         rune // current character
	off         int  // byte offset of cur
	roff        int  // byte offset just past cur
}

// byte order mark, only permitted as the very first bytes of a file.
var bom = [3]byte{0xEF, 0xBB, 0xBF}

// Init initializes the scanner to tokenize a new file. It panics if the
// file size does not match the length of src.
func (s *Scanner) Init(file *token.File, src []byte, errHandler func(token.Position, string)) {
	if file.Size != len(src) {
		panic(fmt.Sprintf("file size (%d) does not match src len (%d)", file.Size, len(src)))
	}

	s.file = file
	s.src = src
	s.err = errHandler
	s.invalidByte = 0
	s.cur = ' '
	s.off = 0
	s.roff = 0

	if len(src) >= len(bom) && bytes.Equal(src[:len(bom)], bom[:]) {
		s.off += len(bom)
		s.roff += len(bom)
	}
	s.advance()
}

// peek returns the byte following the most recently read character without
// advancing the scanner. Returns 0 at end of file.
func (s *Scanner) peek() byte {
	if s.roff < len(s.src) {
		return s.src[s.roff]
	}
	return 0
}

func (s *Scanner) advance() {
	if s.roff >= len(s.src) {
		s.off = len(s.src)
		if s.cur == '\n' {
			s.file.AddLine(s.off)
		}
		s.cur = -1
		return
	}

	s.off = s.roff
	if s.cur == '\n' {
		s.file.AddLine(s.off)
	}

	s.invalidByte = 0
	r, w := rune(s.src[s.roff]), 1
	if r >= utf8.RuneSelf {
		r, w = utf8.DecodeRune(s.src[s.roff:])
		if r == utf8.RuneError && w == 1 {
			s.error(s.off, "illegal UTF-8 encoding")
			s.invalidByte = s.src[s.roff]
		}
	}
	s.roff += w
	s.cur = r
}

func (s *Scanner) error(off int, msg string) {
	if s.err != nil {
		s.err(s.file.Position(s.file.Pos(off)), msg)
	}
}

func (s *Scanner) errorf(off int, format string, args ...any) {
	s.error(off, fmt.Sprintf(format, args...))
}

func (s *Scanner) advanceIf(m byte) bool {
	if s.cur == rune(m) {
		s.advance()
		return true
	}
	return false
}

// Scan returns the next token in the source file, filling tokVal with its
// associated value.
func (s *Scanner) Scan(tokVal *token.Value) (tok token.Token) {
	s.skipWhitespaceAndComments()

	pos := s.file.Pos(s.off)
	start := s.off

	switch cur := s.cur; {
	case isLetter(cur):
		lit := s.ident()
		tok = token.LookupIdent(lit)
		*tokVal = token.Value{Raw: lit, Pos: pos}

	case isDigit(cur):
		var base int
		var lit string
		lit, base = s.number()
		tok = token.INT
		v, err := numberToInt(lit, base)
		*tokVal = token.Value{Raw: lit, Pos: pos, Int: v}
		if err != nil {
			s.error(start, "integer literal value out of range")
		}

	default:
		s.advance() // always make progress
		valueSet := false
		switch cur {
		case '\'':
			tok = token.CHAR
			lit, r := s.charLiteral()
			*tokVal = token.Value{Raw: lit, Pos: pos, Rune: r}
			valueSet = true

		case '"':
			tok = token.STRING
			lit, val := s.stringLiteral()
			*tokVal = token.Value{Raw: lit, Pos: pos, Str: val}
			valueSet = true

		case '(':
			tok = token.LPAREN
		case ')':
			tok = token.RPAREN
		case '[':
			tok = token.LBRACK
		case ']':
			tok = token.RBRACK
		case '{':
			tok = token.LBRACE
		case '}':
			tok = token.RBRACE
		case ',':
			tok = token.COMMA
		case ';':
			tok = token.SEMI
		case '~':
			tok = token.TILDE
		case '?':
			tok = token.QUESTION

		case ':':
			tok = token.COLON

		case '+':
			tok = token.PLUS
			if s.advanceIf('+') {
				tok = token.PLUSPLUS
			} else if s.advanceIf('=') {
				tok = token.PLUS_EQ
			}

		case '-':
			tok = token.MINUS
			if s.advanceIf('-') {
				tok = token.MINUSMINUS
			} else if s.advanceIf('=') {
				tok = token.MINUS_EQ
			} else if s.advanceIf('>') {
				tok = token.ARROW
			}

		case '*':
			tok = token.STAR
			if s.advanceIf('=') {
				tok = token.STAR_EQ
			}

		case '%':
			tok = token.PERCENT
			if s.advanceIf('=') {
				tok = token.PERCENT_EQ
			}

		case '^':
			tok = token.CIRCUMFLEX
			if s.advanceIf('=') {
				tok = token.CIRC_EQ
			}

		case '=':
			tok = token.EQ
			if s.advanceIf('=') {
				tok = token.EQL
			}

		case '!':
			tok = token.BANG
			if s.advanceIf('=') {
				tok = token.NEQ
			}

		case '&':
			tok = token.AMPERSAND
			if s.advanceIf('&') {
				tok = token.AMPAMP
			} else if s.advanceIf('=') {
				tok = token.AMP_EQ
			}

		case '|':
			tok = token.PIPE
			if s.advanceIf('|') {
				tok = token.PIPEPIPE
			} else if s.advanceIf('=') {
				tok = token.PIPE_EQ
			}

		case '<':
			tok = token.LT
			if s.advanceIf('<') {
				tok = token.LTLT
				if s.advanceIf('=') {
					tok = token.LTLT_EQ
				}
			} else if s.advanceIf('=') {
				tok = token.LE
			}

		case '>':
			tok = token.GT
			if s.advanceIf('>') {
				tok = token.GTGT
				if s.advanceIf('=') {
					tok = token.GTGT_EQ
				}
			} else if s.advanceIf('=') {
				tok = token.GE
			}

		case '.':
			tok = token.DOT

		case '/':
			// comments are consumed in skipWhitespaceAndComments; a bare slash here
			// is always the operator or /=.
			tok = token.SLASH
			if s.advanceIf('=') {
				tok = token.SLASH_EQ
			}

		case -1:
			tok = token.EOF
			valueSet = true
			*tokVal = token.Value{Raw: "", Pos: pos}

		default:
			if cur == utf8.RuneError && s.invalidByte > 0 {
				cur = rune(s.invalidByte)
				s.invalidByte = 0
			}
			s.errorf(start, "illegal character %#U", cur)
			tok = token.ILLEGAL
			valueSet = true
			*tokVal = token.Value{Raw: string(cur), Pos: pos}
		}
		if !valueSet {
			*tokVal = token.Value{Raw: string(s.src[start:s.off]), Pos: pos}
		}
	}
	return tok
}

func (s *Scanner) ident() string {
	start := s.off
	for isLetter(s.cur) || isDigit(s.cur) {
		s.advance()
	}
	return string(s.src[start:s.off])
}

// skipWhitespaceAndComments skips spaces, tabs, newlines, and both '//' and
// '/* */' comments (spec 4.1: "block and line comments are skipped").
func (s *Scanner) skipWhitespaceAndComments() {
	for {
		switch {
		case isWhitespace(s.cur):
			s.advance()
		case s.cur == '/' && s.peek() == '/':
			for s.cur != '\n' && s.cur != -1 {
				s.advance()
			}
		case s.cur == '/' && s.peek() == '*':
			start := s.off
			s.advance()
			s.advance()
			closed := false
			for s.cur != -1 {
				if s.cur == '*' && s.peek() == '/' {
					s.advance()
					s.advance()
					closed = true
					break
				}
				s.advance()
			}
			if !closed {
				s.error(start, "comment not terminated")
			}
		default:
			return
		}
	}
}

func isWhitespace(rn rune) bool {
	return rn == ' ' || rn == '\t' || rn == '\n' || rn == '\r' || rn == '\v' || rn == '\f'
}

func isLetter(rn rune) bool {
	return 'a' <= rn && rn <= 'z' ||
		'A' <= rn && rn <= 'Z' ||
		rn == '_' ||
		rn >= utf8.RuneSelf && unicode.IsLetter(rn)
}

func isDigit(rn rune) bool {
	return '0' <= rn && rn <= '9'
}
