package parser

import "github.com/example/yulc/internal/surface"

func (p *parser) parseBlock() []surface.Stmt {
	p.expect(tokLBrace, "'{'")
	var stmts []surface.Stmt
	for !p.at(tokRBrace) {
		stmts = append(stmts, p.parseStmt())
	}
	p.expect(tokRBrace, "'}'")
	return stmts
}

func (p *parser) parseStmt() surface.Stmt {
	switch {
	case p.atIdent("let"):
		return p.parseLet()
	case p.atIdent("if"):
		return p.parseIf()
	case p.atIdent("for"):
		return p.parseFor()
	case p.atIdent("while"):
		return p.parseWhile()
	case p.atIdent("do"):
		return p.parseDoWhile()
	case p.atIdent("return"):
		return p.parseReturn()
	case p.atIdent("break"):
		p.advance()
		p.expect(tokSemi, "';'")
		return surface.BreakStmt{}
	case p.atIdent("continue"):
		p.advance()
		p.expect(tokSemi, "';'")
		return surface.ContinueStmt{}
	case p.atIdent("require"):
		return p.parseRequire()
	case p.atIdent("revert"):
		return p.parseRevert()
	case p.atIdent("try"):
		return p.parseTry()
	case p.atIdent("asm"):
		return p.parseAsm()
	default:
		return p.parseEmitOrAssignOrExpr()
	}
}

func (p *parser) parseLet() surface.Stmt {
	p.expectIdent("let")
	name := p.expect(tokIdent, "variable name").text
	var typ *surface.TypeRef
	if p.at(tokColon) {
		p.advance()
		t := surface.TypeRef{Spelling: p.parseTypeSpelling()}
		typ = &t
	}
	p.expect(tokAssign, "'='")
	val := p.parseExpr()
	p.expect(tokSemi, "';'")
	return surface.LetStmt{Name: name, Type: typ, Value: val}
}

func (p *parser) parseIf() surface.Stmt {
	p.expectIdent("if")
	p.expect(tokLParen, "'('")
	cond := p.parseExpr()
	p.expect(tokRParen, "')'")
	then := p.parseBlock()
	var els []surface.Stmt
	if p.atIdent("else") {
		p.advance()
		if p.atIdent("if") {
			els = []surface.Stmt{p.parseIf()}
		} else {
			els = p.parseBlock()
		}
	}
	return surface.IfStmt{Cond: cond, Then: then, Else: els}
}

func (p *parser) parseFor() surface.Stmt {
	p.expectIdent("for")
	p.expect(tokLParen, "'('")
	var init surface.Stmt
	if !p.at(tokSemi) {
		if p.atIdent("let") {
			init = p.parseLetNoSemi()
		} else {
			init = p.parseAssignNoSemi()
		}
	}
	p.expect(tokSemi, "';'")
	var cond surface.Expr
	if !p.at(tokSemi) {
		cond = p.parseExpr()
	}
	p.expect(tokSemi, "';'")
	var post surface.Stmt
	if !p.at(tokRParen) {
		post = p.parseAssignNoSemi()
	}
	p.expect(tokRParen, "')'")
	body := p.parseBlock()
	return surface.ForStmt{Init: init, Cond: cond, Post: post, Body: body}
}

func (p *parser) parseLetNoSemi() surface.Stmt {
	p.expectIdent("let")
	name := p.expect(tokIdent, "variable name").text
	var typ *surface.TypeRef
	if p.at(tokColon) {
		p.advance()
		t := surface.TypeRef{Spelling: p.parseTypeSpelling()}
		typ = &t
	}
	p.expect(tokAssign, "'='")
	val := p.parseExpr()
	return surface.LetStmt{Name: name, Type: typ, Value: val}
}

func (p *parser) parseAssignNoSemi() surface.Stmt {
	target := p.parseExpr()
	op := p.assignOp()
	val := p.parseExpr()
	return surface.AssignStmt{Target: target, Op: op, Value: val}
}

func (p *parser) assignOp() string {
	if p.at(tokAssign) {
		return p.advance().text
	}
	if p.at(tokOpAssign) {
		return p.advance().text
	}
	p.fail("expected assignment operator, got %q at offset %d", p.cur().text, p.cur().pos)
	return ""
}

func (p *parser) parseWhile() surface.Stmt {
	p.expectIdent("while")
	p.expect(tokLParen, "'('")
	cond := p.parseExpr()
	p.expect(tokRParen, "')'")
	body := p.parseBlock()
	return surface.WhileStmt{Cond: cond, Body: body}
}

func (p *parser) parseDoWhile() surface.Stmt {
	p.expectIdent("do")
	body := p.parseBlock()
	p.expectIdent("while")
	p.expect(tokLParen, "'('")
	cond := p.parseExpr()
	p.expect(tokRParen, "')'")
	p.expect(tokSemi, "';'")
	return surface.DoWhileStmt{Body: body, Cond: cond}
}

func (p *parser) parseReturn() surface.Stmt {
	p.expectIdent("return")
	var vals []surface.Expr
	if !p.at(tokSemi) {
		vals = append(vals, p.parseExpr())
		for p.at(tokComma) {
			p.advance()
			vals = append(vals, p.parseExpr())
		}
	}
	p.expect(tokSemi, "';'")
	return surface.ReturnStmt{Values: vals}
}

func (p *parser) parseRequire() surface.Stmt {
	p.expectIdent("require")
	p.expect(tokLParen, "'('")
	cond := p.parseExpr()
	var msg surface.Expr
	if p.at(tokComma) {
		p.advance()
		msg = p.parseExpr()
	}
	p.expect(tokRParen, "')'")
	p.expect(tokSemi, "';'")
	return surface.RequireStmt{Cond: cond, Msg: msg}
}

func (p *parser) parseRevert() surface.Stmt {
	p.expectIdent("revert")
	p.expect(tokLParen, "'('")
	stmt := surface.RevertStmt{}
	if !p.at(tokRParen) {
		// custom error form: IDENT '(' argList ')'
		if p.at(tokIdent) {
			save := p.pos
			name := p.advance().text
			if p.at(tokLParen) {
				p.advance()
				for !p.at(tokRParen) {
					stmt.ErrArgs = append(stmt.ErrArgs, p.parseExpr())
					if p.at(tokComma) {
						p.advance()
					}
				}
				p.expect(tokRParen, "')'")
				stmt.ErrName = name
			} else {
				p.pos = save
				stmt.Msg = p.parseExpr()
			}
		} else {
			stmt.Msg = p.parseExpr()
		}
	}
	p.expect(tokRParen, "')'")
	p.expect(tokSemi, "';'")
	return stmt
}

func (p *parser) parseTry() surface.Stmt {
	p.expectIdent("try")
	tryBlock := p.parseBlock()
	p.expectIdent("catch")
	catchBlock := p.parseBlock()
	return surface.TryStmt{Try: tryBlock, Catch: catchBlock}
}

func (p *parser) parseAsm() surface.Stmt {
	p.expectIdent("asm")
	t := p.expect(tokBacktick, "asm template")
	if p.at(tokSemi) {
		p.advance()
	}
	return surface.AsmStmt{Template: t.text}
}

// parseEmitOrAssignOrExpr disambiguates `this.Ev.emit({...})` from a
// general assignment/expression statement (spec §4.4.8).
func (p *parser) parseEmitOrAssignOrExpr() surface.Stmt {
	if em, ok := p.tryParseEmit(); ok {
		return em
	}
	expr := p.parseExpr()
	if p.at(tokAssign) || p.at(tokOpAssign) {
		op := p.assignOp()
		val := p.parseExpr()
		p.expect(tokSemi, "';'")
		return surface.AssignStmt{Target: expr, Op: op, Value: val}
	}
	p.expect(tokSemi, "';'")
	return surface.ExprStmt{X: expr}
}

func (p *parser) tryParseEmit() (surface.Stmt, bool) {
	if !p.atIdent("this") {
		return nil, false
	}
	save := p.pos
	p.advance()
	if !p.at(tokDot) {
		p.pos = save
		return nil, false
	}
	p.advance()
	if !p.at(tokIdent) {
		p.pos = save
		return nil, false
	}
	eventName := p.advance().text
	if !p.at(tokDot) {
		p.pos = save
		return nil, false
	}
	p.advance()
	if !p.atIdent("emit") {
		p.pos = save
		return nil, false
	}
	p.advance()
	p.expect(tokLParen, "'('")
	var lit *surface.StructLit
	if p.at(tokLBrace) {
		l := p.parseStructLit()
		lit = &l
	}
	p.expect(tokRParen, "')'")
	p.expect(tokSemi, "';'")
	return surface.EmitStmt{Event: eventName, Args: lit}, true
}
