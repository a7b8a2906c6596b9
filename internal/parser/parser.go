package parser

import (
	"fmt"

	"github.com/example/yulc/internal/surface"
)

// Parse lexes and parses src into a surface.Program. It is the reference,
// swappable front end named in spec.md §9; only the compiler facade (and
// tests) import it directly — the analyzer and transformer only see
// internal/surface's capability interface.
func Parse(src string) (prog *surface.Program, err error) {
	toks, lexErr := newLexer(src).tokenize()
	if lexErr != nil {
		return nil, fmt.Errorf("ParseError: %s", lexErr.Error())
	}
	p := &parser{toks: toks}
	defer func() {
		if r := recover(); r != nil {
			if pe, ok := r.(parseError); ok {
				err = fmt.Errorf("ParseError: %s", string(pe))
				return
			}
			panic(r)
		}
	}()
	prog = p.parseProgram()
	return prog, nil
}

type parseError string

func (e parseError) Error() string { return string(e) }

type parser struct {
	toks []token
	pos  int
}

func (p *parser) fail(format string, args ...interface{}) {
	panic(parseError(fmt.Sprintf(format, args...)))
}

func (p *parser) cur() token  { return p.toks[p.pos] }
func (p *parser) at(k tokenKind) bool { return p.cur().kind == k }
func (p *parser) atIdent(name string) bool {
	return p.cur().kind == tokIdent && p.cur().text == name
}

func (p *parser) advance() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) expect(k tokenKind, what string) token {
	if !p.at(k) {
		p.fail("expected %s, got %q at offset %d", what, p.cur().text, p.cur().pos)
	}
	return p.advance()
}

func (p *parser) expectIdent(name string) {
	if !p.atIdent(name) {
		p.fail("expected %q, got %q at offset %d", name, p.cur().text, p.cur().pos)
	}
	p.advance()
}

func (p *parser) parseProgram() *surface.Program {
	prog := surface.NewProgram()
	for !p.at(tokEOF) {
		ds := p.parseLeadingDecorators()
		exported := false
		if p.atIdent("export") {
			p.advance()
			exported = true
		}
		switch {
		case p.atIdent("class"):
			cls := p.parseClass(ds)
			cls.Exported = exported
			prog.Classes = append(prog.Classes, cls)
		case p.atIdent("event"):
			ev := p.parseEvent()
			prog.Events[ev.Name] = ev
		case p.atIdent("enum"):
			en := p.parseEnum()
			prog.Enums[en.Name] = en
		case p.atIdent("struct"):
			st := p.parseStruct()
			prog.Structs[st.Name] = st
		case p.atIdent("interface"):
			it := p.parseInterface()
			prog.Interfaces[it.Name] = it
		default:
			p.fail("expected a top-level declaration, got %q at offset %d", p.cur().text, p.cur().pos)
		}
	}
	return prog
}

func (p *parser) parseLeadingDecorators() []surface.Decorator {
	var ds []surface.Decorator
	for p.at(tokAt) {
		ds = append(ds, p.parseDecorator())
	}
	return ds
}

func (p *parser) parseDecorator() surface.Decorator {
	p.expect(tokAt, "'@'")
	name := p.expect(tokIdent, "decorator name").text
	var args []string
	if p.at(tokLParen) {
		p.advance()
		for !p.at(tokRParen) {
			args = append(args, p.parseDecoratorArg())
			if p.at(tokComma) {
				p.advance()
			}
		}
		p.expect(tokRParen, "')'")
	}
	return surface.Decorator{Name: name, Args: args}
}

// parseDecoratorArg accepts a bare literal token as raw text, sufficient
// for @slot(N) and any future single-argument decorator.
func (p *parser) parseDecoratorArg() string {
	t := p.advance()
	return t.text
}

func (p *parser) parseClass(ds []surface.Decorator) surface.Class {
	p.expectIdent("class")
	name := p.expect(tokIdent, "class name").text
	cls := surface.Class{Name: name, Decorators: ds}
	if p.atIdent("extends") {
		p.advance()
		p.expectIdent("Mixin")
		p.expect(tokLParen, "'('")
		for !p.at(tokRParen) {
			cls.Mixins = append(cls.Mixins, p.expect(tokIdent, "mixin name").text)
			if p.at(tokComma) {
				p.advance()
			}
		}
		p.expect(tokRParen, "')'")
	}
	p.expect(tokLBrace, "'{'")
	for !p.at(tokRBrace) {
		memberDs := p.parseLeadingDecorators()
		if p.isMethodStart() {
			cls.Methods = append(cls.Methods, p.parseMethod(memberDs))
		} else {
			cls.Properties = append(cls.Properties, p.parseProperty(memberDs))
		}
	}
	p.expect(tokRBrace, "'}'")
	return cls
}

func (p *parser) isMethodStart() bool {
	if p.atIdent("public") || p.atIdent("private") || p.atIdent("constructor") {
		return true
	}
	// IDENT '(' is a method; IDENT ':' is a property.
	if p.at(tokIdent) {
		save := p.pos
		p.advance()
		isCall := p.at(tokLParen)
		p.pos = save
		return isCall
	}
	return false
}

func (p *parser) parseProperty(ds []surface.Decorator) surface.Property {
	name := p.expect(tokIdent, "property name").text
	p.expect(tokColon, "':'")
	typ := p.parseTypeSpelling()
	prop := surface.Property{Name: name, Type: surface.TypeRef{Spelling: typ}, Decorators: ds}
	if p.at(tokAssign) {
		p.advance()
		prop.Initializer = p.parseExpr()
	}
	p.expect(tokSemi, "';'")
	return prop
}

func (p *parser) parseMethod(ds []surface.Decorator) surface.Method {
	m := surface.Method{Decorators: ds}
	if p.atIdent("public") {
		p.advance()
	} else if p.atIdent("private") {
		p.advance()
		m.IsPrivateKW = true
	}
	if p.atIdent("constructor") {
		p.advance()
		m.Name = "constructor"
		m.IsConstructor = true
	} else {
		m.Name = p.expect(tokIdent, "method name").text
	}
	p.expect(tokLParen, "'('")
	for !p.at(tokRParen) {
		pname := p.expect(tokIdent, "parameter name").text
		p.expect(tokColon, "':'")
		ptyp := p.parseTypeSpelling()
		m.Params = append(m.Params, surface.Param{Name: pname, Type: surface.TypeRef{Spelling: ptyp}})
		if p.at(tokComma) {
			p.advance()
		}
	}
	p.expect(tokRParen, "')'")
	if p.at(tokColon) {
		p.advance()
		rt := surface.TypeRef{Spelling: p.parseTypeSpelling()}
		m.ReturnType = &rt
	}
	m.Body = p.parseBlock()
	return m
}

// parseTypeSpelling captures a raw type spelling token-span, tracking
// bracket/paren/angle depth, and hands the text to evmtype.Parse
// unmodified (spec §4.1's grammar is driven entirely by that function;
// the parser only needs to know where the spelling ends).
func (p *parser) parseTypeSpelling() string {
	start := p.pos
	depth := 0
	for {
		t := p.cur()
		switch t.kind {
		case tokLt, tokLParen, tokLBracket:
			depth++
		case tokGt, tokRParen, tokRBracket:
			if depth == 0 {
				goto done
			}
			depth--
		case tokComma, tokSemi, tokAssign, tokLBrace, tokEOF:
			if depth == 0 {
				goto done
			}
		}
		p.advance()
	}
done:
	if p.pos == start {
		p.fail("expected a type, got %q at offset %d", p.cur().text, p.cur().pos)
	}
	var sb []byte
	for i := start; i < p.pos; i++ {
		sb = append(sb, []byte(p.toks[i].text)...)
	}
	return string(sb)
}

func (p *parser) parseEvent() surface.EventSchema {
	p.expectIdent("event")
	name := p.expect(tokIdent, "event name").text
	ev := surface.EventSchema{Name: name}
	p.expect(tokLBrace, "'{'")
	for !p.at(tokRBrace) {
		fname := p.expect(tokIdent, "event field name").text
		p.expect(tokColon, "':'")
		indexed := false
		if p.atIdent("indexed") {
			save := p.pos
			p.advance()
			if p.at(tokLt) {
				p.advance()
				indexed = true
			} else {
				p.pos = save
			}
		}
		typ := p.parseTypeSpelling()
		if indexed {
			p.expect(tokGt, "'>'")
		}
		ev.Fields = append(ev.Fields, surface.EventField{Name: fname, Type: surface.TypeRef{Spelling: typ}, Indexed: indexed})
		p.expect(tokSemi, "';'")
	}
	p.expect(tokRBrace, "'}'")
	return ev
}

func (p *parser) parseEnum() surface.EnumDecl {
	p.expectIdent("enum")
	name := p.expect(tokIdent, "enum name").text
	en := surface.EnumDecl{Name: name}
	p.expect(tokLBrace, "'{'")
	for !p.at(tokRBrace) {
		en.Values = append(en.Values, p.expect(tokIdent, "enum value").text)
		if p.at(tokComma) {
			p.advance()
		}
	}
	p.expect(tokRBrace, "'}'")
	return en
}

func (p *parser) parseStruct() surface.StructDecl {
	p.expectIdent("struct")
	name := p.expect(tokIdent, "struct name").text
	st := surface.StructDecl{Name: name}
	p.expect(tokLBrace, "'{'")
	for !p.at(tokRBrace) {
		fname := p.expect(tokIdent, "field name").text
		p.expect(tokColon, "':'")
		typ := p.parseTypeSpelling()
		st.Fields = append(st.Fields, surface.Param{Name: fname, Type: surface.TypeRef{Spelling: typ}})
		p.expect(tokSemi, "';'")
	}
	p.expect(tokRBrace, "'}'")
	return st
}

func (p *parser) parseInterface() surface.InterfaceDecl {
	p.expectIdent("interface")
	name := p.expect(tokIdent, "interface name").text
	it := surface.InterfaceDecl{Name: name}
	p.expect(tokLBrace, "'{'")
	for !p.at(tokRBrace) {
		mname := p.expect(tokIdent, "method name").text
		m := surface.Method{Name: mname}
		p.expect(tokLParen, "'('")
		for !p.at(tokRParen) {
			pname := p.expect(tokIdent, "parameter name").text
			p.expect(tokColon, "':'")
			ptyp := p.parseTypeSpelling()
			m.Params = append(m.Params, surface.Param{Name: pname, Type: surface.TypeRef{Spelling: ptyp}})
			if p.at(tokComma) {
				p.advance()
			}
		}
		p.expect(tokRParen, "')'")
		if p.at(tokColon) {
			p.advance()
			rt := surface.TypeRef{Spelling: p.parseTypeSpelling()}
			m.ReturnType = &rt
		}
		p.expect(tokSemi, "';'")
		it.Methods = append(it.Methods, m)
	}
	p.expect(tokRBrace, "'}'")
	return it
}
