package parser

import (
	"github.com/cbcomp/cb/lang/ast"
	"github.com/cbcomp/cb/lang/token"
)

// startsTypeSpecifier reports whether the current token can begin a
// type-specifier: a built-in type keyword, "struct"/"union", or an
// identifier previously declared as a typedef alias or tag name.
func (p *parser) startsTypeSpecifier() bool {
	if p.tok.IsTypeKeyword() {
		return true
	}
	return p.tok == token.IDENT && p.typeNames[p.val.Raw]
}

// parseTypeSpecifier parses the base type (before any pointer/array/
// function declarator suffix is applied): a built-in keyword combination,
// "struct Name" / "union Name", or a typedef name.
func (p *parser) parseTypeSpecifier() ast.TypeExpr {
	switch p.tok {
	case token.STRUCT, token.UNION:
		kw := "struct"
		if p.tok == token.UNION {
			kw = "union"
		}
		p.advance()
		namePos, name := p.val.Pos, p.val.Raw
		p.expect(token.IDENT)
		return &ast.NamedTypeExpr{NamePos: namePos, Name: kw + " " + name}
	case token.VOID:
		pos := p.expect(token.VOID)
		return &ast.NamedTypeExpr{NamePos: pos, Name: "void"}
	case token.CHAR_KW:
		pos := p.expect(token.CHAR_KW)
		return &ast.NamedTypeExpr{NamePos: pos, Name: "char"}
	case token.UNSIGNED, token.SIGNED:
		return p.parseSignedUnsignedSpecifier()
	case token.SHORT:
		pos := p.expect(token.SHORT)
		if p.tok == token.INT_KW {
			p.advance()
		}
		return &ast.NamedTypeExpr{NamePos: pos, Name: "short"}
	case token.LONG:
		pos := p.expect(token.LONG)
		if p.tok == token.INT_KW {
			p.advance()
		}
		return &ast.NamedTypeExpr{NamePos: pos, Name: "long"}
	case token.INT_KW:
		pos := p.expect(token.INT_KW)
		return &ast.NamedTypeExpr{NamePos: pos, Name: "int"}
	default:
		namePos, name := p.val.Pos, p.val.Raw
		p.expect(token.IDENT)
		return &ast.NamedTypeExpr{NamePos: namePos, Name: name}
	}
}

func (p *parser) parseSignedUnsignedSpecifier() ast.TypeExpr {
	pos := p.val.Pos
	unsigned := p.tok == token.UNSIGNED
	p.advance()

	name := "int"
	switch p.tok {
	case token.CHAR_KW:
		p.advance()
		name = "char"
	case token.SHORT:
		p.advance()
		if p.tok == token.INT_KW {
			p.advance()
		}
		name = "short"
	case token.LONG:
		p.advance()
		if p.tok == token.INT_KW {
			p.advance()
		}
		name = "long"
	case token.INT_KW:
		p.advance()
		name = "int"
	}
	if unsigned {
		name = "unsigned " + name
	}
	return &ast.NamedTypeExpr{NamePos: pos, Name: name}
}

// parsePointerPrefix consumes any leading "*" tokens, wrapping base in a
// PointerTypeExpr for each one (so "char **p" wraps char in two layers).
// Pointer stars precede the declared name, per C's declarator grammar.
func (p *parser) parsePointerPrefix(base ast.TypeExpr) ast.TypeExpr {
	typ := base
	for p.tok == token.STAR {
		star := p.val.Pos
		p.advance()
		typ = &ast.PointerTypeExpr{Elem: typ, Star: star}
	}
	return typ
}

// parseDeclaratorTail applies the array or function-parameter suffix that
// follows a declared name (or, for an abstract declarator such as a cast
// target or sizeof(Type), follows the bare type), returning the composed
// type expression and, if the declarator turned out to be a function
// declarator, its parameter list and parenthesis positions.
func (p *parser) parseDeclaratorTail(typ ast.TypeExpr) (result ast.TypeExpr, isFunc bool, params []*ast.ParamDecl, variadic bool, lparen, rparen token.Pos) {
	if p.tok == token.LPAREN {
		lparen = p.expect(token.LPAREN)
		params, variadic = p.parseParamList()
		rparen = p.expect(token.RPAREN)
		return typ, true, params, variadic, lparen, rparen
	}

	for p.tok == token.LBRACK {
		lbrack := p.expect(token.LBRACK)
		var length ast.Expr
		if p.tok != token.RBRACK {
			length = p.parseAssignExpr()
		}
		rbrack := p.expect(token.RBRACK)
		typ = &ast.ArrayTypeExpr{Elem: typ, Lbrack: lbrack, Len: length, Rbrack: rbrack}
	}
	return typ, false, nil, false, token.NoPos, token.NoPos
}

// parseDeclarator parses a full declarator given its base type: leading
// pointer stars, the declared name (optional, for prototypes and abstract
// declarators), and a trailing array or function-parameter suffix.
func (p *parser) parseDeclarator(base ast.TypeExpr) (typ ast.TypeExpr, namePos token.Pos, name string, isFunc bool, params []*ast.ParamDecl, variadic bool, lparen, rparen token.Pos) {
	typ = p.parsePointerPrefix(base)
	if p.tok == token.IDENT {
		namePos, name = p.val.Pos, p.val.Raw
		p.advance()
	}
	typ, isFunc, params, variadic, lparen, rparen = p.parseDeclaratorTail(typ)
	return typ, namePos, name, isFunc, params, variadic, lparen, rparen
}

// parseAbstractDeclarator parses a declarator with no name, as used in a
// cast target or "sizeof(Type)".
func (p *parser) parseAbstractDeclarator(base ast.TypeExpr) ast.TypeExpr {
	typ := p.parsePointerPrefix(base)
	typ, _, _, _, _, _ = p.parseDeclaratorTail(typ)
	return typ
}

func (p *parser) parseParamList() (params []*ast.ParamDecl, variadic bool) {
	if p.tok == token.VOID {
		// Peek-equivalent: "(void)" with nothing following means an empty
		// parameter list, but "void x" or "void *x" is a real void-typed
		// (only valid as void*) parameter, so only special-case the bare form.
		save := *p
		p.advance()
		if p.tok == token.RPAREN {
			return nil, false
		}
		*p = save
	}

	for p.tok != token.RPAREN {
		if p.tok == token.ELLIPSIS {
			p.advance()
			variadic = true
			break
		}
		base := p.parseTypeSpecifier()
		typ, namePos, name, _, _, _, _, _ := p.parseDeclarator(base)
		params = append(params, &ast.ParamDecl{Type: typ, NamePos: namePos, Name: name})

		if p.tok != token.COMMA {
			break
		}
		p.advance()
	}
	return params, variadic
}
