package parser

import (
	"github.com/cbcomp/cb/lang/ast"
	"github.com/cbcomp/cb/lang/token"
)

func (p *parser) parseChunk() *ast.Chunk {
	var chunk ast.Chunk
	for p.tok != token.EOF {
		if d := p.parseTopDecl(); d != nil {
			chunk.Decls = append(chunk.Decls, d)
		}
	}
	chunk.EOF = p.val.Pos
	return &chunk
}

// parseTopDecl parses one top-level construct: an import directive (which
// is recorded on p.imports and returns nil, so it contributes no Decl of
// its own), or a declaration. A parse error recovers at the next ";" or
// "}" and yields no declaration for this iteration.
func (p *parser) parseTopDecl() (decl ast.Decl) {
	defer func() {
		if r := recover(); r != nil {
			if r == errPanicMode {
				p.syncToStmt()
				if p.tok == token.RBRACE {
					p.advance() // a "}" at file scope closes nothing; skip it
				}
				decl = nil
				return
			}
			panic(r)
		}
	}()

	if p.tok == token.IMPORT {
		p.parseImport()
		return nil
	}
	return p.parseDecl(true)
}

func (p *parser) parseImport() {
	p.expect(token.IMPORT)
	start := p.val.Pos
	name := p.parseDottedName()
	p.expect(token.SEMI)
	p.imports = append(p.imports, importDecl{path: name, pos: start})
}

func (p *parser) parseDottedName() string {
	name := p.val.Raw
	p.expect(token.IDENT)
	for p.tok == token.DOT {
		p.advance()
		name += "." + p.val.Raw
		p.expect(token.IDENT)
	}
	return name
}

// parseDecl parses one declaration: typedef, struct/union definition, or a
// (possibly extern/static) function or variable declarator, at either
// file scope (topLevel) or block scope.
func (p *parser) parseDecl(topLevel bool) ast.Decl {
	switch p.tok {
	case token.TYPEDEF:
		return p.parseTypedefDecl()
	case token.STRUCT, token.UNION:
		if d, ok := p.tryParseAggregateOnlyDecl(); ok {
			return d
		}
	}

	extern := false
	if p.tok == token.EXTERN {
		extern = true
		p.advance()
	} else if p.tok == token.STATIC {
		p.advance() // static affects linkage only, codegen decides the label form
	}
	if p.tok == token.CONST {
		p.advance()
	}

	base := p.parseTypeSpecifier()
	typ, namePos, name, isFunc, params, variadic, lparen, rparen := p.parseDeclarator(base)
	if name == "" {
		p.error(namePos, "expected declarator name")
	}
	if isFunc {
		fd := &ast.FuncDecl{Ret: typ, NamePos: namePos, Name: name, Lparen: lparen, Params: params, Rparen: rparen}
		if variadic {
			fd.Variadic = rparen
		}
		if p.tok == token.LBRACE {
			fd.Body = p.parseBlock()
		} else {
			fd.Semi = p.expect(token.SEMI)
		}
		return fd
	}

	vd := &ast.VarDecl{Type: typ, NamePos: namePos, Name: name, Extern: extern}
	if p.tok == token.EQ {
		p.advance()
		vd.Init = p.parseAssignExpr()
	}
	vd.Semi = p.expect(token.SEMI)
	return vd
}

// tryParseAggregateOnlyDecl handles "struct Name { ... };" /
// "union Name { ... };" with no trailing declarator, as distinct from
// "struct Name x;" or "struct Name *x;" which fall through to the common
// declarator path using the aggregate as its base type.
func (p *parser) tryParseAggregateOnlyDecl() (ast.Decl, bool) {
	kind := ast.StructKind
	kwPos := p.val.Pos
	if p.tok == token.UNION {
		kind = ast.UnionKind
	}
	save := *p // shallow snapshot to allow backtracking; scanner state is re-derived by full re-parse on failure path avoided by only peeking tokens below

	p.advance() // struct/union
	if p.tok != token.IDENT {
		*p = save
		return nil, false
	}
	namePos, name := p.val.Pos, p.val.Raw
	p.advance()
	if p.tok != token.LBRACE {
		*p = save
		return nil, false
	}

	decl := &ast.AggregateDecl{Kind: kind, KeywordPos: kwPos, NamePos: namePos, Name: name}
	decl.Lbrace = p.expect(token.LBRACE)
	for p.tok != token.RBRACE && p.tok != token.EOF {
		decl.Members = append(decl.Members, p.parseMemberDecl())
	}
	decl.Rbrace = p.expect(token.RBRACE)
	decl.Semi = p.expect(token.SEMI)
	p.typeNames[name] = true
	return decl, true
}

func (p *parser) parseMemberDecl() *ast.MemberDecl {
	base := p.parseTypeSpecifier()
	typ, namePos, name, _, _, _, _, _ := p.parseDeclarator(base)
	semi := p.expect(token.SEMI)
	return &ast.MemberDecl{Type: typ, NamePos: namePos, Name: name, Semi: semi}
}

func (p *parser) parseTypedefDecl() *ast.TypedefDecl {
	start := p.expect(token.TYPEDEF)
	base := p.parseTypeSpecifier()
	typ, namePos, name, _, _, _, _, _ := p.parseDeclarator(base)
	semi := p.expect(token.SEMI)
	p.typeNames[name] = true
	return &ast.TypedefDecl{TypedefPos: start, Type: typ, NamePos: namePos, Name: name, Semi: semi}
}
