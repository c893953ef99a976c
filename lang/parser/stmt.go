package parser

import (
	"github.com/cbcomp/cb/lang/ast"
	"github.com/cbcomp/cb/lang/token"
)

func (p *parser) parseBlock() *ast.Block {
	block := &ast.Block{Lbrace: p.expect(token.LBRACE)}
	for p.tok != token.RBRACE && p.tok != token.EOF {
		block.Stmts = append(block.Stmts, p.parseStmt())
	}
	block.Rbrace = p.expect(token.RBRACE)
	return block
}

// parseStmt parses one statement. A parse error recovers at the next ";"
// or "}" and yields a BadExpr-wrapped ExprStmt standing in for the
// unparsed statement, so later pipeline stages see a well-formed (if
// meaningless) tree and later statements in the same block still parse.
func (p *parser) parseStmt() (stmt ast.Stmt) {
	defer func() {
		if r := recover(); r != nil {
			if r == errPanicMode {
				pos := p.val.Pos
				p.syncToStmt()
				stmt = &ast.ExprStmt{X: &ast.BadExpr{Start: pos, End: p.val.Pos}, Semi: p.val.Pos}
				return
			}
			panic(r)
		}
	}()

	switch {
	case p.tok == token.LBRACE:
		return &ast.BlockStmt{Block: p.parseBlock()}
	case p.tok == token.IF:
		return p.parseIfStmt()
	case p.tok == token.WHILE:
		return p.parseWhileStmt()
	case p.tok == token.DO:
		return p.parseDoWhileStmt()
	case p.tok == token.FOR:
		return p.parseForStmt()
	case p.tok == token.SWITCH:
		return p.parseSwitchStmt()
	case p.tok == token.RETURN:
		return p.parseReturnStmt()
	case p.tok == token.BREAK:
		return p.parseBreakStmt()
	case p.tok == token.CONTINUE:
		return p.parseContinueStmt()
	case p.tok == token.GOTO:
		return p.parseGotoStmt()
	case p.tok == token.TYPEDEF:
		return p.parseTypedefDecl()
	case p.tok == token.EXTERN, p.tok == token.STATIC:
		return p.parseDecl(false).(ast.Stmt)
	case p.startsTypeSpecifier():
		return p.parseDecl(false).(ast.Stmt)
	case p.tok == token.IDENT && p.peekIsLabel():
		return p.parseLabelStmt()
	case p.tok == token.SEMI:
		semi := p.expect(token.SEMI)
		return &ast.ExprStmt{X: &ast.BadExpr{Start: semi, End: semi}, Semi: semi}
	default:
		return p.parseExprStmt()
	}
}

// peekIsLabel reports whether the current IDENT token is immediately
// followed by ":" (a label), without a general lookahead mechanism: the
// scanner is re-run from a saved snapshot and restored afterward.
func (p *parser) peekIsLabel() bool {
	save := *p
	p.advance()
	isLabel := p.tok == token.COLON
	*p = save
	return isLabel
}

func (p *parser) parseLabelStmt() *ast.LabelStmt {
	namePos, name := p.val.Pos, p.val.Raw
	p.expect(token.IDENT)
	colon := p.expect(token.COLON)
	return &ast.LabelStmt{NamePos: namePos, Name: name, Colon: colon, Stmt: p.parseStmt()}
}

func (p *parser) parseGotoStmt() *ast.GotoStmt {
	kw := p.expect(token.GOTO)
	namePos, name := p.val.Pos, p.val.Raw
	p.expect(token.IDENT)
	semi := p.expect(token.SEMI)
	return &ast.GotoStmt{GotoPos: kw, NamePos: namePos, Name: name, Semi: semi}
}

func (p *parser) parseIfStmt() *ast.IfStmt {
	kw := p.expect(token.IF)
	p.expect(token.LPAREN)
	cond := p.parseExpr()
	p.expect(token.RPAREN)
	then := p.parseStmt()

	stmt := &ast.IfStmt{IfPos: kw, Cond: cond, Then: then}
	if p.tok == token.ELSE {
		p.advance()
		if p.tok == token.IF {
			stmt.Else = p.parseIfStmt()
		} else {
			stmt.Else = p.parseStmt()
		}
	}
	return stmt
}

func (p *parser) parseWhileStmt() *ast.WhileStmt {
	kw := p.expect(token.WHILE)
	p.expect(token.LPAREN)
	cond := p.parseExpr()
	p.expect(token.RPAREN)
	body := p.parseStmt()
	return &ast.WhileStmt{WhilePos: kw, Cond: cond, Body: body}
}

func (p *parser) parseDoWhileStmt() *ast.DoWhileStmt {
	kw := p.expect(token.DO)
	body := p.parseStmt()
	p.expect(token.WHILE)
	p.expect(token.LPAREN)
	cond := p.parseExpr()
	p.expect(token.RPAREN)
	semi := p.expect(token.SEMI)
	return &ast.DoWhileStmt{DoPos: kw, Body: body, Cond: cond, Semi: semi}
}

func (p *parser) parseForStmt() *ast.ForStmt {
	kw := p.expect(token.FOR)
	p.expect(token.LPAREN)

	stmt := &ast.ForStmt{ForPos: kw}
	switch {
	case p.tok == token.SEMI:
		p.advance()
	case p.startsTypeSpecifier():
		stmt.Init = p.parseDecl(false).(ast.Stmt)
	default:
		x := p.parseExpr()
		stmt.Init = &ast.ExprStmt{X: x, Semi: p.expect(token.SEMI)}
	}

	if p.tok != token.SEMI {
		stmt.Cond = p.parseExpr()
	}
	p.expect(token.SEMI)

	if p.tok != token.RPAREN {
		stmt.Post = p.parseExpr()
	}
	p.expect(token.RPAREN)

	stmt.Body = p.parseStmt()
	return stmt
}

func (p *parser) parseSwitchStmt() *ast.SwitchStmt {
	kw := p.expect(token.SWITCH)
	p.expect(token.LPAREN)
	tag := p.parseExpr()
	p.expect(token.RPAREN)

	stmt := &ast.SwitchStmt{SwitchPos: kw, Tag: tag}
	stmt.Lbrace = p.expect(token.LBRACE)
	for p.tok == token.CASE || p.tok == token.DEFAULT {
		stmt.Cases = append(stmt.Cases, p.parseCaseStmt())
	}
	stmt.Rbrace = p.expect(token.RBRACE)
	return stmt
}

func (p *parser) parseCaseStmt() *ast.CaseStmt {
	cs := &ast.CaseStmt{}
	if p.tok == token.CASE {
		cs.CasePos = p.expect(token.CASE)
		cs.Value = p.parseExpr()
	} else {
		cs.CasePos = p.expect(token.DEFAULT)
	}
	cs.Colon = p.expect(token.COLON)

	for !tokenIn(p.tok, token.CASE, token.DEFAULT, token.RBRACE, token.EOF) {
		cs.Stmts = append(cs.Stmts, p.parseStmt())
	}
	return cs
}

func (p *parser) parseReturnStmt() *ast.ReturnStmt {
	kw := p.expect(token.RETURN)
	rs := &ast.ReturnStmt{ReturnPos: kw}
	if p.tok != token.SEMI {
		rs.X = p.parseExpr()
	}
	rs.Semi = p.expect(token.SEMI)
	return rs
}

func (p *parser) parseBreakStmt() *ast.BreakStmt {
	kw := p.expect(token.BREAK)
	semi := p.expect(token.SEMI)
	return &ast.BreakStmt{BreakPos: kw, Semi: semi}
}

func (p *parser) parseContinueStmt() *ast.ContinueStmt {
	kw := p.expect(token.CONTINUE)
	semi := p.expect(token.SEMI)
	return &ast.ContinueStmt{ContinuePos: kw, Semi: semi}
}

func (p *parser) parseExprStmt() *ast.ExprStmt {
	x := p.parseExpr()
	semi := p.expect(token.SEMI)
	return &ast.ExprStmt{X: x, Semi: semi}
}
