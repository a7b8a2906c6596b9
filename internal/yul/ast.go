// Package yul is the datatype for Yul objects/statements/expressions and
// a deterministic textual emitter (spec §3, §4.5). Grounded on the
// codegen-generator shape of other_examples/malphas-lang
// (internal/codegen/mir2llvm/generator.go: a strings.Builder plus an
// emit(line) helper) and other_examples/nspcc-dev-neo-go
// (pkg/vm/compiler/codegen.go: a small instruction-emission API used by
// the transformer in internal/transform).
package yul

import "math/big"

// Stmt is a Yul statement node (spec §3).
type Stmt interface{ stmtNode() }

type Block struct{ Statements []Stmt }

type LetStmt struct {
	Names []string
	Value Expr // nil if no initializer
}

type AssignStmt struct {
	Names []string
	Value Expr
}

type IfStmt struct {
	Cond Expr
	Body *Block
}

type Case struct {
	Value   string // decimal/hex literal text; ignored when Default
	Default bool
	Body    *Block
}

type SwitchStmt struct {
	Cond  Expr
	Cases []*Case
}

type ForStmt struct {
	Init *Block
	Cond Expr
	Post *Block
	Body *Block
}

type FunctionDefinition struct {
	Name    string
	Params  []string
	Returns []string
	Body    *Block
}

type LeaveStmt struct{}
type BreakStmt struct{}
type ContinueStmt struct{}

type ExprStmt struct{ X Expr }

// RawStmt is the escape hatch for verbatim Yul (spec §4.4.10's asm
// template substitution target).
type RawStmt struct{ Code string }

func (*Block) stmtNode()              {}
func (*LetStmt) stmtNode()            {}
func (*AssignStmt) stmtNode()         {}
func (*IfStmt) stmtNode()             {}
func (*SwitchStmt) stmtNode()         {}
func (*ForStmt) stmtNode()            {}
func (*FunctionDefinition) stmtNode() {}
func (*LeaveStmt) stmtNode()          {}
func (*BreakStmt) stmtNode()          {}
func (*ContinueStmt) stmtNode()       {}
func (*ExprStmt) stmtNode()           {}
func (*RawStmt) stmtNode()            {}

// Expr is a Yul expression node.
type Expr interface{ exprNode() }

// Literal is a bigint or bool literal. Negative bigints are never stored
// here directly: NumberLit rewrites them to sub(0, |n|) at construction
// time (spec §3: "Yul disallows negative literals").
type Literal struct{ Text string }

// StringLiteral is a quoted string argument, used for dataoffset/datasize
// object-name arguments (spec §3).
type StringLiteral struct{ Value string }

type Identifier struct{ Name string }

type FunctionCall struct {
	Name string
	Args []Expr
}

func (*Literal) exprNode()       {}
func (*StringLiteral) exprNode() {}
func (*Identifier) exprNode()    {}
func (*FunctionCall) exprNode()  {}

// YulObject is { name, code, subObjects, data } (spec §3).
type Object struct {
	Name       string
	Code       *Block
	SubObjects []*Object
	Data       map[string]string // name -> hex
}

// Ident is a convenience constructor.
func Ident(name string) *Identifier { return &Identifier{Name: name} }

// Call is a convenience constructor for a Yul function call expression.
func Call(name string, args ...Expr) *FunctionCall {
	return &FunctionCall{Name: name, Args: args}
}

// Str wraps a raw quoted string argument.
func Str(s string) *StringLiteral { return &StringLiteral{Value: s} }

// BoolLit renders a Yul boolean literal. Yul has no bool type and no
// builtin true/false functions: 1 and 0 are the canonical representation
// (spec §4.4.6's `for {} 1 {} { ... }` unconditioned loop).
func BoolLit(b bool) Expr {
	if b {
		return &Literal{Text: "1"}
	}
	return &Literal{Text: "0"}
}

// NumberLit renders an arbitrary-precision integer literal, lowering
// negative values to sub(0, |n|) since Yul literals must be non-negative
// (spec §3, §4.4.5).
func NumberLit(n *big.Int) Expr {
	if n.Sign() < 0 {
		abs := new(big.Int).Abs(n)
		return Call("sub", &Literal{Text: "0"}, &Literal{Text: abs.String()})
	}
	return &Literal{Text: n.String()}
}

// HexNumberLit renders a non-negative integer literal in hex (0x-prefixed),
// used for selectors and pre-computed hashes where hex is more legible.
func HexNumberLit(hex string) Expr {
	return &Literal{Text: hex}
}

// IntLit renders a small non-negative int literal, a convenience over
// NumberLit for the common case of indices/offsets/arities.
func IntLit(n int) Expr {
	return NumberLit(big.NewInt(int64(n)))
}
