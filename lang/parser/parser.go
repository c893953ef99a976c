// Package parser implements the recursive-descent parser for Cb (spec ch.
// 4.2): declarations and statements are parsed by direct recursive
// descent, expressions by precedence climbing. Import directives are
// resolved during parsing, merging each imported file's declarations into
// the importing chunk's declaration list.
package parser

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/cbcomp/cb/lang/ast"
	"github.com/cbcomp/cb/lang/scanner"
	"github.com/cbcomp/cb/lang/token"
)

// LibPath configures where `import foo.bar;` directives are searched for
// (spec ch. 6 "library/import-path resolution"), in search order.
type LibPath []string

// ParseFiles parses the given source files and returns the fileset, one
// *ast.Chunk per input file (each with import directives already merged
// into its Decls), and any error encountered. The error, if non-nil, is
// guaranteed to be a scanner.ErrorList.
func ParseFiles(_ context.Context, lib LibPath, files ...string) (*token.FileSet, []*ast.Chunk, error) {
	if len(files) == 0 {
		return nil, nil, nil
	}

	fs := token.NewFileSet()
	var errs scanner.ErrorList
	res := make([]*ast.Chunk, 0, len(files))

	for _, file := range files {
		loading := map[string]bool{absPath(file): true}
		ch, err := parseFileAndImports(fs, file, lib, loading, &errs)
		if err != nil {
			continue
		}
		res = append(res, ch)
	}
	errs.Sort()
	return fs, res, errs.Err()
}

// ParseChunk parses a single chunk from src (no import resolution is
// performed; used by tests operating on in-memory snippets).
func ParseChunk(_ context.Context, fset *token.FileSet, filename string, src []byte) (*ast.Chunk, error) {
	var p parser
	p.init(fset, filename, src)
	ch := p.parseChunk()
	ch.Name = filename
	return ch, p.errors.Err()
}

func parseFileAndImports(fs *token.FileSet, file string, lib LibPath, loading map[string]bool, errs *scanner.ErrorList) (*ast.Chunk, error) {
	b, err := os.ReadFile(file)
	if err != nil {
		errs.Add(token.Position{Filename: file}, err.Error())
		return nil, err
	}

	var p parser
	p.init(fs, file, b)
	ch := p.parseChunk()
	ch.Name = file
	*errs = append(*errs, p.errors...)

	for _, imp := range p.imports {
		resolved, ok := resolveImport(file, imp.path, lib)
		if !ok {
			errs.Add(p.file.Position(imp.pos), "import not found: "+imp.path)
			continue
		}
		if loading[absPath(resolved)] {
			continue // import cycle: file already being loaded, skip reentry
		}
		loading[absPath(resolved)] = true
		impCh, err := parseFileAndImports(fs, resolved, lib, loading, errs)
		if err == nil {
			ch.Decls = append(ch.Decls, impCh.Decls...)
		}
	}
	return ch, nil
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

// resolveImport turns "foo.bar" into a candidate file "foo/bar.cb",
// searched relative to the importing file's directory and then each entry
// of lib, in order.
func resolveImport(fromFile, dotted string, lib LibPath) (string, bool) {
	rel := strings.ReplaceAll(dotted, ".", string(filepath.Separator)) + ".cb"

	candidates := []string{filepath.Join(filepath.Dir(fromFile), rel)}
	for _, dir := range lib {
		candidates = append(candidates, filepath.Join(dir, rel))
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c, true
		}
	}
	return "", false
}

type importDecl struct {
	path string
	pos  token.Pos
}

// parser parses a single source file and generates an AST.
type parser struct {
	scanner scanner.Scanner
	errors  scanner.ErrorList
	file    *token.File
	fset    *token.FileSet

	// current token
	tok token.Token
	val token.Value

	// typeNames tracks identifiers known to name a type (typedef alias or
	// struct/union tag) at the current point in parsing, so the parser can
	// tell "T * x;" (a pointer declaration) from "x * y;" (a multiplication
	// expression used as a statement, which Cb does not otherwise allow at
	// file scope but which the grammar must still disambiguate locally).
	typeNames map[string]bool

	imports []importDecl
}

func (p *parser) init(fset *token.FileSet, filename string, src []byte) {
	p.fset = fset
	p.file = fset.AddFile(filename, len(src))
	p.scanner.Init(p.file, src, p.errors.Add)
	p.typeNames = map[string]bool{}
	p.advance()
}

func (p *parser) advance() {
	p.tok = p.scanner.Scan(&p.val)
}

var errPanicMode = errors.New("panic mode")

// expect consumes the current token if it matches one of toks and returns
// its position; otherwise it reports an error and unwinds to the nearest
// recovery point via panic(errPanicMode).
func (p *parser) expect(toks ...token.Token) token.Pos {
	pos := p.val.Pos
	for _, tok := range toks {
		if p.tok == tok {
			p.advance()
			return pos
		}
	}
	p.errorExpected(pos, toks)
	panic(errPanicMode)
}

// accept consumes the current token and returns (pos, true) if it matches
// tok, else returns (0, false) without side effects.
func (p *parser) accept(tok token.Token) (token.Pos, bool) {
	if p.tok != tok {
		return token.NoPos, false
	}
	pos := p.val.Pos
	p.advance()
	return pos, true
}

func (p *parser) error(pos token.Pos, msg string) {
	p.errors.Add(p.file.Position(pos), msg)
}

func (p *parser) errorExpected(pos token.Pos, toks []token.Token) {
	var want strings.Builder
	for i, tok := range toks {
		if i > 0 {
			want.WriteString(" or ")
		}
		want.WriteString(tok.GoString())
	}

	msg := "expected " + want.String()
	if pos == p.val.Pos {
		if lit := p.tok.Literal(p.val); lit != "" {
			msg += ", found " + lit
		} else {
			msg += ", found " + p.tok.GoString()
		}
	}
	p.error(pos, msg)
}

// syncToStmt recovers from a panic(errPanicMode) by skipping tokens until
// a statement terminator ";" or a block boundary "}" (spec ch. 4.2:
// "recovers to the next statement terminator ... or block boundary").
func (p *parser) syncToStmt() {
	for p.tok != token.EOF {
		if p.tok == token.SEMI {
			p.advance()
			return
		}
		if p.tok == token.RBRACE {
			return
		}
		p.advance()
	}
}

func tokenIn(t token.Token, toks ...token.Token) bool {
	for _, tok := range toks {
		if t == tok {
			return true
		}
	}
	return false
}
