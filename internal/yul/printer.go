package yul

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Print deterministically pretty-prints a Yul object using 4-space
// indentation (spec §4.5), producing output a strict-assembly Yul
// assembler accepts verbatim.
func Print(obj *Object) string {
	p := &printer{sb: &strings.Builder{}}
	p.printObject(obj, 0)
	return p.sb.String()
}

type printer struct {
	sb *strings.Builder
}

func (p *printer) indent(depth int) {
	p.sb.WriteString(strings.Repeat("    ", depth))
}

func (p *printer) line(depth int, format string, args ...interface{}) {
	p.indent(depth)
	fmt.Fprintf(p.sb, format, args...)
	p.sb.WriteByte('\n')
}

func (p *printer) printObject(obj *Object, depth int) {
	p.line(depth, "object %q {", obj.Name)
	p.printBlock(obj.Code, depth+1)
	for _, sub := range obj.SubObjects {
		p.printObject(sub, depth+1)
	}
	if len(obj.Data) > 0 {
		names := make([]string, 0, len(obj.Data))
		for n := range obj.Data {
			names = append(names, n)
		}
		sort.Strings(names)
		for _, n := range names {
			p.line(depth+1, "data %q hex%q", n, obj.Data[n])
		}
	}
	p.line(depth, "}")
}

func (p *printer) printBlock(b *Block, depth int) {
	p.line(depth-1, "code {")
	p.printStatements(b.Statements, depth)
	p.line(depth-1, "}")
}

// printInlineBlock renders a nested *Block statement as a bare { ... }
// block without its own "code" wrapper.
func (p *printer) printInlineBlock(b *Block, depth int) {
	p.line(depth, "{")
	p.printStatements(b.Statements, depth+1)
	p.line(depth, "}")
}

func (p *printer) printStatements(stmts []Stmt, depth int) {
	for _, s := range stmts {
		p.printStmt(s, depth)
	}
}

func (p *printer) printStmt(s Stmt, depth int) {
	switch n := s.(type) {
	case *Block:
		p.printInlineBlock(n, depth)
	case *LetStmt:
		if n.Value == nil {
			p.line(depth, "let %s", strings.Join(n.Names, ", "))
		} else {
			p.line(depth, "let %s := %s", strings.Join(n.Names, ", "), p.expr(n.Value))
		}
	case *AssignStmt:
		p.line(depth, "%s := %s", strings.Join(n.Names, ", "), p.expr(n.Value))
	case *IfStmt:
		p.indent(depth)
		fmt.Fprintf(p.sb, "if %s ", p.expr(n.Cond))
		p.sb.WriteString("{\n")
		p.printStatements(n.Body.Statements, depth+1)
		p.line(depth, "}")
	case *SwitchStmt:
		p.line(depth, "switch %s", p.expr(n.Cond))
		for _, c := range n.Cases {
			if c.Default {
				p.indent(depth)
				p.sb.WriteString("default ")
			} else {
				p.indent(depth)
				fmt.Fprintf(p.sb, "case %s ", c.Value)
			}
			p.sb.WriteString("{\n")
			p.printStatements(c.Body.Statements, depth+1)
			p.line(depth, "}")
		}
	case *ForStmt:
		p.indent(depth)
		p.sb.WriteString("for ")
		p.printInlineBlockSameLine(n.Init)
		fmt.Fprintf(p.sb, " %s ", p.expr(n.Cond))
		p.printInlineBlockSameLine(n.Post)
		p.sb.WriteString(" {\n")
		p.printStatements(n.Body.Statements, depth+1)
		p.line(depth, "}")
	case *FunctionDefinition:
		p.indent(depth)
		fmt.Fprintf(p.sb, "function %s(%s)", n.Name, strings.Join(n.Params, ", "))
		if len(n.Returns) > 0 {
			fmt.Fprintf(p.sb, " -> %s", strings.Join(n.Returns, ", "))
		}
		p.sb.WriteString(" {\n")
		p.printStatements(n.Body.Statements, depth+1)
		p.line(depth, "}")
	case *LeaveStmt:
		p.line(depth, "leave")
	case *BreakStmt:
		p.line(depth, "break")
	case *ContinueStmt:
		p.line(depth, "continue")
	case *ExprStmt:
		p.line(depth, "%s", p.expr(n.X))
	case *RawStmt:
		for _, l := range strings.Split(strings.TrimRight(n.Code, "\n"), "\n") {
			p.line(depth, "%s", l)
		}
	default:
		p.line(depth, "/* unknown statement */")
	}
}

// printInlineBlockSameLine renders a { ... } block inline (used for
// for-loop init/post, which are always single-line-openable blocks).
func (p *printer) printInlineBlockSameLine(b *Block) {
	if b == nil || len(b.Statements) == 0 {
		p.sb.WriteString("{}")
		return
	}
	p.sb.WriteString("{ ")
	for i, s := range b.Statements {
		if i > 0 {
			p.sb.WriteString(" ")
		}
		p.sb.WriteString(p.stmtInline(s))
	}
	p.sb.WriteString(" }")
}

// stmtInline renders a single statement without trailing newline, for use
// inside a same-line block.
func (p *printer) stmtInline(s Stmt) string {
	switch n := s.(type) {
	case *LetStmt:
		if n.Value == nil {
			return fmt.Sprintf("let %s", strings.Join(n.Names, ", "))
		}
		return fmt.Sprintf("let %s := %s", strings.Join(n.Names, ", "), p.expr(n.Value))
	case *AssignStmt:
		return fmt.Sprintf("%s := %s", strings.Join(n.Names, ", "), p.expr(n.Value))
	case *ExprStmt:
		return p.expr(n.X)
	case *BreakStmt:
		return "break"
	case *ContinueStmt:
		return "continue"
	default:
		return "/* unsupported inline stmt */"
	}
}

func (p *printer) expr(e Expr) string {
	switch n := e.(type) {
	case *Literal:
		return n.Text
	case *StringLiteral:
		return strconv.Quote(n.Value)
	case *Identifier:
		return n.Name
	case *FunctionCall:
		args := make([]string, len(n.Args))
		for i, a := range n.Args {
			args[i] = p.expr(a)
		}
		return fmt.Sprintf("%s(%s)", n.Name, strings.Join(args, ", "))
	default:
		return "/* unknown expr */"
	}
}
