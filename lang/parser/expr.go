package parser

import (
	"strings"

	"github.com/cbcomp/cb/lang/ast"
	"github.com/cbcomp/cb/lang/token"
)

// binaryPriority gives the left/right binding power of each binary
// operator token, following C's precedence table (spec ch. 4.1
// "Expressions"). Tokens not present here do not start a binary
// expression. Left-associative operators have left == right; assignment
// and the ternary operator are handled outside this table since they are
// right-associative and have their own grammar productions.
var binaryPriority = map[token.Token]struct{ left, right int }{
	token.PIPEPIPE:   {1, 1},
	token.AMPAMP:     {2, 2},
	token.PIPE:       {3, 3},
	token.CIRCUMFLEX: {4, 4},
	token.AMPERSAND:  {5, 5},
	token.EQL:        {6, 6},
	token.NEQ:        {6, 6},
	token.LT:         {7, 7},
	token.GT:         {7, 7},
	token.LE:         {7, 7},
	token.GE:         {7, 7},
	token.LTLT:       {8, 8},
	token.GTGT:       {8, 8},
	token.PLUS:       {9, 9},
	token.MINUS:      {9, 9},
	token.STAR:       {10, 10},
	token.SLASH:      {10, 10},
	token.PERCENT:    {10, 10},
}

// parseExpr parses the comma operator's lowest-precedence level, the
// entry point used wherever a full expression is expected.
func (p *parser) parseExpr() ast.Expr {
	x := p.parseAssignExpr()
	for p.tok == token.COMMA {
		opPos := p.expect(token.COMMA)
		y := p.parseAssignExpr()
		x = &ast.BinaryExpr{X: x, Op: token.COMMA, OpPos: opPos, Y: y}
	}
	return x
}

// parseAssignExpr parses a right-associative assignment, or falls through
// to the ternary conditional if the left-hand side is not followed by an
// assignment operator.
func (p *parser) parseAssignExpr() ast.Expr {
	x := p.parseCondExpr()
	if p.tok.IsAssignOp() {
		op := p.tok
		opPos := p.val.Pos
		p.advance()
		rhs := p.parseAssignExpr()
		return &ast.AssignExpr{LHS: x, Op: op, OpPos: opPos, RHS: rhs}
	}
	return x
}

func (p *parser) parseCondExpr() ast.Expr {
	cond := p.parseBinaryExpr(1)
	if p.tok != token.QUESTION {
		return cond
	}
	q := p.expect(token.QUESTION)
	then := p.parseExpr()
	colon := p.expect(token.COLON)
	els := p.parseAssignExpr()
	return &ast.CondExpr{Cond: cond, Question: q, Then: then, Colon: colon, Else: els}
}

// parseBinaryExpr implements precedence climbing over binaryPriority,
// starting from a unary expression.
func (p *parser) parseBinaryExpr(minPrec int) ast.Expr {
	x := p.parseUnaryExpr()
	for {
		prio, ok := binaryPriority[p.tok]
		if !ok || prio.left < minPrec {
			return x
		}
		op := p.tok
		opPos := p.val.Pos
		p.advance()
		y := p.parseBinaryExpr(prio.right + 1)
		x = &ast.BinaryExpr{X: x, Op: op, OpPos: opPos, Y: y}
	}
}

// parseUnaryExpr parses a prefix unary operator (+ - ! ~ * & ++ -- or
// sizeof) or falls through to a postfix expression. sizeof disambiguates
// between "sizeof(Type)" and "sizeof expr" by checking whether the
// parenthesized operand starts with a type-specifier.
func (p *parser) parseUnaryExpr() ast.Expr {
	switch p.tok {
	case token.PLUS, token.MINUS, token.BANG, token.TILDE, token.STAR, token.AMPERSAND, token.PLUSPLUS, token.MINUSMINUS:
		op := p.tok
		opPos := p.val.Pos
		p.advance()
		x := p.parseUnaryExpr()
		_, end := x.Span()
		return &ast.UnaryExpr{OpPos: opPos, Op: op, X: x, End: end}
	case token.SIZEOF:
		opPos := p.expect(token.SIZEOF)
		if p.tok == token.LPAREN {
			save := *p
			p.advance()
			if p.startsTypeSpecifier() {
				typ := p.parseAbstractDeclarator(p.parseTypeSpecifier())
				end := p.expect(token.RPAREN)
				return &ast.UnaryExpr{OpPos: opPos, Op: token.SIZEOF, SizeofType: typ, End: end}
			}
			*p = save
		}
		x := p.parseUnaryExpr()
		_, end := x.Span()
		return &ast.UnaryExpr{OpPos: opPos, Op: token.SIZEOF, X: x, End: end}
	default:
		return p.parsePostfixExpr(p.parseCastOrPrimaryExpr())
	}
}

// parseCastOrPrimaryExpr disambiguates "(Type) x" (an explicit cast) from
// "(expr)" (a parenthesized expression), both of which begin with "(".
func (p *parser) parseCastOrPrimaryExpr() ast.Expr {
	if p.tok != token.LPAREN {
		return p.parsePrimaryExpr()
	}

	save := *p
	lparen := p.expect(token.LPAREN)
	if p.startsTypeSpecifier() {
		typ := p.parseAbstractDeclarator(p.parseTypeSpecifier())
		if p.tok == token.RPAREN {
			rparen := p.expect(token.RPAREN)
			x := p.parseUnaryExpr()
			return &ast.CastExpr{Lparen: lparen, Type: typ, Rparen: rparen, X: x}
		}
	}
	*p = save
	return p.parsePrimaryExpr()
}

// parsePostfixExpr applies postfix ++/--, member access, pointer-member
// access, indexing, and call suffixes to an already-parsed primary
// expression, left to right.
func (p *parser) parsePostfixExpr(x ast.Expr) ast.Expr {
	for {
		switch p.tok {
		case token.PLUSPLUS, token.MINUSMINUS:
			op := p.tok
			opPos := p.val.Pos
			p.advance()
			x = &ast.PostfixExpr{X: x, Op: op, OpPos: opPos}
		case token.DOT:
			dot := p.expect(token.DOT)
			namePos, name := p.val.Pos, p.val.Raw
			p.expect(token.IDENT)
			x = &ast.MemberExpr{X: x, Dot: dot, NamePos: namePos, Name: name}
		case token.ARROW:
			arrow := p.expect(token.ARROW)
			namePos, name := p.val.Pos, p.val.Raw
			p.expect(token.IDENT)
			x = &ast.PtrMemberExpr{X: x, Arrow: arrow, NamePos: namePos, Name: name}
		case token.LBRACK:
			lbrack := p.expect(token.LBRACK)
			idx := p.parseExpr()
			rbrack := p.expect(token.RBRACK)
			x = &ast.IndexExpr{X: x, Lbrack: lbrack, Index: idx, Rbrack: rbrack}
		case token.LPAREN:
			lparen := p.expect(token.LPAREN)
			var args []ast.Expr
			for p.tok != token.RPAREN {
				args = append(args, p.parseAssignExpr())
				if p.tok != token.COMMA {
					break
				}
				p.advance()
			}
			rparen := p.expect(token.RPAREN)
			x = &ast.CallExpr{Fn: x, Lparen: lparen, Args: args, Rparen: rparen}
		default:
			return x
		}
	}
}

// parsePrimaryExpr parses a literal, identifier, or parenthesized
// expression. Adjacent string literals are concatenated into a single
// StringLitExpr (spec ch. 4.1 "adjacent string literal concatenation"),
// spanning from the first literal's position to the last's end.
func (p *parser) parsePrimaryExpr() ast.Expr {
	switch p.tok {
	case token.INT:
		pos, raw := p.val.Pos, p.val.Raw
		value := p.val.Int
		p.advance()
		return &ast.IntLitExpr{ValuePos: pos, Raw: raw, Value: value}
	case token.CHAR:
		pos, raw := p.val.Pos, p.val.Raw
		r := p.val.Rune
		p.advance()
		return &ast.CharLitExpr{ValuePos: pos, Raw: raw, Value: r}
	case token.STRING:
		return p.parseConcatenatedString()
	case token.IDENT:
		pos, name := p.val.Pos, p.val.Raw
		p.advance()
		return &ast.IdentExpr{NamePos: pos, Name: name}
	case token.LPAREN:
		lparen := p.expect(token.LPAREN)
		x := p.parseExpr()
		rparen := p.expect(token.RPAREN)
		return &ast.ParenExpr{Lparen: lparen, X: x, Rparen: rparen}
	default:
		pos := p.val.Pos
		p.errorExpected(pos, []token.Token{token.IDENT, token.INT, token.STRING, token.LPAREN})
		panic(errPanicMode)
	}
}

func (p *parser) parseConcatenatedString() ast.Expr {
	pos := p.val.Pos
	var raw strings.Builder
	var value strings.Builder
	for p.tok == token.STRING {
		raw.WriteString(p.val.Raw)
		value.WriteString(p.val.Str)
		p.advance()
	}
	return &ast.StringLitExpr{ValuePos: pos, Raw: raw.String(), Value: value.String()}
}
