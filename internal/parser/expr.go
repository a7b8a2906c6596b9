package parser

import "github.com/example/yulc/internal/surface"

// binPrec gives each binary operator's precedence, lowest first; parseExpr
// is a standard precedence-climbing parser over this table.
var binPrec = map[tokenKind]int{
	tokOr:    1,
	tokAnd:   2,
	tokPipe:  3,
	tokCaret: 4,
	tokAmp:   5,
	tokEq:    6,
	tokNeq:   6,
	tokLt:    7,
	tokLe:    7,
	tokGt:    7,
	tokGe:    7,
	tokShl:   8,
	tokShr:   8,
	tokPlus:  9,
	tokMinus: 9,
	tokStar:  10,
	tokSlash: 10,
	tokPercent: 10,
}

func (p *parser) parseExpr() surface.Expr {
	return p.parseBinary(0)
}

func (p *parser) parseBinary(minPrec int) surface.Expr {
	left := p.parseUnary()
	for {
		prec, ok := binPrec[p.cur().kind]
		if !ok || prec < minPrec {
			return left
		}
		op := p.advance().text
		right := p.parseBinary(prec + 1)
		left = surface.BinaryExpr{Op: op, X: left, Y: right}
	}
}

func (p *parser) parseUnary() surface.Expr {
	switch p.cur().kind {
	case tokNot, tokMinus, tokTilde:
		op := p.advance().text
		return surface.UnaryExpr{Op: op, X: p.parseUnary()}
	default:
		return p.parsePostfix()
	}
}

func (p *parser) parsePostfix() surface.Expr {
	expr := p.parsePrimary()
	for {
		switch {
		case p.at(tokDot):
			p.advance()
			name := p.expect(tokIdent, "member name").text
			expr = surface.MemberExpr{X: expr, Name: name}
			if p.at(tokLt) && (name == "call" || name == "staticcall" || name == "delegatecall") {
				expr = p.parseGenericCall(expr)
			}
		case p.at(tokLBracket):
			p.advance()
			first := p.parseExpr()
			if p.at(tokColon) {
				p.advance()
				end := p.parseExpr()
				p.expect(tokRBracket, "']'")
				expr = surface.SliceExpr{X: expr, Start: first, End: end}
				continue
			}
			p.expect(tokRBracket, "']'")
			expr = surface.IndexExpr{X: expr, Key: first}
		case p.at(tokLParen):
			expr = p.parseCallArgs(expr, nil)
		default:
			return expr
		}
	}
}

// parseGenericCall handles `call.call<R>(...)`-style generic helpers
// (spec §6); the type argument is captured the same way a field/param
// type is.
func (p *parser) parseGenericCall(fn surface.Expr) surface.Expr {
	p.expect(tokLt, "'<'")
	var typeArgs []surface.TypeRef
	typeArgs = append(typeArgs, surface.TypeRef{Spelling: p.parseTypeSpelling()})
	for p.at(tokComma) {
		p.advance()
		typeArgs = append(typeArgs, surface.TypeRef{Spelling: p.parseTypeSpelling()})
	}
	p.expect(tokGt, "'>'")
	return p.parseCallArgs(fn, typeArgs)
}

func (p *parser) parseCallArgs(fn surface.Expr, typeArgs []surface.TypeRef) surface.Expr {
	p.expect(tokLParen, "'('")
	var args []surface.Expr
	for !p.at(tokRParen) {
		args = append(args, p.parseExpr())
		if p.at(tokComma) {
			p.advance()
		}
	}
	p.expect(tokRParen, "')'")
	return surface.CallExpr{Fn: fn, Args: args, TypeArgs: typeArgs}
}

func (p *parser) parsePrimary() surface.Expr {
	t := p.cur()
	switch t.kind {
	case tokInt:
		p.advance()
		return surface.IntLit{Text: t.text}
	case tokHex:
		p.advance()
		return surface.HexLit{Text: t.text}
	case tokString:
		p.advance()
		return surface.StringLit{Value: t.text}
	case tokLBrace:
		return p.parseStructLit()
	case tokLParen:
		p.advance()
		first := p.parseExpr()
		if p.at(tokComma) {
			elems := []surface.Expr{first}
			for p.at(tokComma) {
				p.advance()
				elems = append(elems, p.parseExpr())
			}
			p.expect(tokRParen, "')'")
			return surface.TupleExpr{Elems: elems}
		}
		p.expect(tokRParen, "')'")
		return first
	case tokIdent:
		switch t.text {
		case "this":
			p.advance()
			return surface.ThisExpr{}
		case "true":
			p.advance()
			return surface.BoolLit{Value: true}
		case "false":
			p.advance()
			return surface.BoolLit{Value: false}
		default:
			p.advance()
			return surface.Ident{Name: t.text}
		}
	default:
		p.fail("expected an expression, got %q at offset %d", t.text, t.pos)
		return nil
	}
}

func (p *parser) parseStructLit() surface.StructLit {
	p.expect(tokLBrace, "'{'")
	var lit surface.StructLit
	for !p.at(tokRBrace) {
		name := p.expect(tokIdent, "field name").text
		p.expect(tokColon, "':'")
		val := p.parseExpr()
		lit.Fields = append(lit.Fields, surface.StructLitField{Name: name, Value: val})
		if p.at(tokComma) {
			p.advance()
		}
	}
	p.expect(tokRBrace, "'}'")
	return lit
}
