package transform

import (
	"github.com/example/yulc/internal/abi"
	"github.com/example/yulc/internal/evmtype"
	"github.com/example/yulc/internal/surface"
	"github.com/example/yulc/internal/yul"
)

// errorStringSelector is keccak256("Error(string)")[:4], the standard
// revert-reason selector spec §4.4.9 names.
var errorStringSelector = mustSelector("Error", evmtype.StringT())

// panicSelector is keccak256("Panic(uint256)")[:4], the standard Solidity
// panic-code selector (spec §4.4.3's out-of-range array index: "revert
// with panic(0x32)").
var panicSelector = mustSelector("Panic", evmtype.Uint(256))

// revertPanic lowers a `panic(code)` revert: the standard Panic(uint256)
// selector followed by the 32-byte code.
func revertPanic(code int) *yul.Block {
	return &yul.Block{Statements: []yul.Stmt{
		&yul.ExprStmt{X: yul.Call("mstore", yul.IntLit(0), yul.Call("shl", yul.IntLit(224), yul.HexNumberLit(panicSelector)))},
		&yul.ExprStmt{X: yul.Call("mstore", yul.IntLit(4), yul.IntLit(code))},
		&yul.ExprStmt{X: yul.Call("revert", yul.IntLit(0), yul.IntLit(36))},
	}}
}

func mustSelector(name string, params ...*evmtype.EvmType) string {
	sel, err := abi.ComputeSelector(name, params)
	if err != nil {
		panic(err)
	}
	return sel
}

func plainRevert() *yul.Block {
	return &yul.Block{Statements: []yul.Stmt{
		&yul.ExprStmt{X: yul.Call("revert", yul.IntLit(0), yul.IntLit(0))},
	}}
}

// revertWithMessage lowers `revert("msg")`/`require(cond, "msg")` (spec
// §4.4.9): the standard `Error(string)` selector followed by the
// ABI-encoded string, then `revert(off, len)`. A nil msg (bare revert())
// reverts with empty data.
func revertWithMessage(fctx *funcCtx, b *yul.Block, msg surface.Expr) *yul.Block {
	if msg == nil {
		return plainRevert()
	}
	lit, ok := msg.(surface.StringLit)
	if !ok {
		fctx.mc.bag.Add(unsupportedNode("", "revert/require message must be a string literal"))
		return plainRevert()
	}

	out := &yul.Block{}
	data := []byte(lit.Value)
	out.Statements = append(out.Statements,
		&yul.ExprStmt{X: yul.Call("mstore", yul.IntLit(0), yul.Call("shl", yul.IntLit(224), yul.HexNumberLit(errorStringSelector)))},
		&yul.ExprStmt{X: yul.Call("mstore", yul.IntLit(4), yul.IntLit(32))},
		&yul.ExprStmt{X: yul.Call("mstore", yul.IntLit(36), yul.IntLit(len(data)))},
	)
	off := 68
	for _, word := range packLeftAligned(data) {
		out.Statements = append(out.Statements, &yul.ExprStmt{X: yul.Call("mstore", yul.IntLit(off), word)})
		off += 32
	}
	out.Statements = append(out.Statements, &yul.ExprStmt{X: yul.Call("revert", yul.IntLit(0), yul.IntLit(off))})
	return out
}

// revertWithCustomError lowers `revert(Err(args))` (spec §4.4.9): the
// error's own 4-byte selector (args treated as uint256, since a custom
// error has no declared-signature analogue to the interface method
// signatures model.Interfaces carries for typed external calls) plus
// each ABI-encoded argument, packed exactly like an external-call helper.
func revertWithCustomError(fctx *funcCtx, b *yul.Block, errName string, errArgs []surface.Expr) *yul.Block {
	paramTypes := make([]*evmtype.EvmType, len(errArgs))
	for i := range errArgs {
		paramTypes[i] = evmtype.Uint(256)
	}
	sel, err := abi.ComputeSelector(errName, paramTypes)
	if err != nil {
		fctx.mc.bag.Add(unsupportedNode(errName, err.Error()))
		return plainRevert()
	}

	out := &yul.Block{}
	out.Statements = append(out.Statements,
		&yul.ExprStmt{X: yul.Call("mstore", yul.IntLit(0), yul.Call("shl", yul.IntLit(224), yul.HexNumberLit(sel)))},
	)
	off := 4
	for _, a := range errArgs {
		val := lowerExpr(fctx, out, a)
		out.Statements = append(out.Statements, &yul.ExprStmt{X: yul.Call("mstore", yul.IntLit(off), val)})
		off += 32
	}
	out.Statements = append(out.Statements, &yul.ExprStmt{X: yul.Call("revert", yul.IntLit(0), yul.IntLit(off))})
	return out
}

// packLeftAligned splits data into 32-byte, left-aligned (right-zero-
// padded) words, the same convention fixed-bytes literals use.
func packLeftAligned(data []byte) []yul.Expr {
	if len(data) == 0 {
		return nil
	}
	var words []yul.Expr
	for i := 0; i < len(data); i += 32 {
		end := i + 32
		if end > len(data) {
			end = len(data)
		}
		chunk := make([]byte, 32)
		copy(chunk, data[i:end])
		words = append(words, yul.HexNumberLit("0x"+bytesToHex(chunk)))
	}
	return words
}
