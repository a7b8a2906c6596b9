package transform

import (
	"fmt"

	"github.com/example/yulc/internal/analyzer"
	"github.com/example/yulc/internal/evmtype"
	"github.com/example/yulc/internal/surface"
	"github.com/example/yulc/internal/yul"
)

// buildDispatcher lowers the selector switch that begins the deployed
// object's code (spec §4.4.1): `shr(224, calldataload(0))` selects a case
// per public function, each case decoding its calldata, running the body
// inline, and returning; the default case reverts with empty return data.
func buildDispatcher(mc *moduleCtx) yul.Stmt {
	body := &yul.Block{}
	body.Statements = append(body.Statements, &yul.LetStmt{
		Names: []string{"selector"},
		Value: yul.Call("shr", yul.IntLit(224), yul.Call("calldataload", yul.IntLit(0))),
	})

	sw := &yul.SwitchStmt{Cond: yul.Ident("selector")}
	for i := range mc.model.Functions {
		fi := &mc.model.Functions[i]
		if fi.Visibility != analyzer.Public || fi.Selector == "" {
			continue
		}
		sw.Cases = append(sw.Cases, &yul.Case{Value: fi.Selector, Body: buildDispatchCase(mc, fi)})
	}
	sw.Cases = append(sw.Cases, &yul.Case{Default: true, Body: &yul.Block{Statements: []yul.Stmt{
		&yul.ExprStmt{X: yul.Call("revert", yul.IntLit(0), yul.IntLit(0))},
	}}})
	body.Statements = append(body.Statements, sw)
	return body
}

// buildDispatchCase decodes one public function's calldata arguments,
// enforces non-payable calls reject nonzero callvalue, lowers the body
// inline, and falls back to an empty return for functions that don't
// reach an explicit `return` (spec §4.4.1, §4.4.2).
func buildDispatchCase(mc *moduleCtx, fi *analyzer.FunctionInfo) *yul.Block {
	b := &yul.Block{}
	if fi.Mutability != analyzer.Payable {
		b.Statements = append(b.Statements, &yul.IfStmt{
			Cond: yul.Call("callvalue"),
			Body: &yul.Block{Statements: []yul.Stmt{&yul.ExprStmt{X: yul.Call("revert", yul.IntLit(0), yul.IntLit(0))}}},
		})
	}

	fctx := newFuncCtx(mc, fi)
	fctx.inline = true
	for i, p := range fi.Params {
		decodeCalldataParam(fctx, b, p, i)
	}
	b.Statements = append(b.Statements, lowerStmtList(fctx, fi.Body)...)
	b.Statements = append(b.Statements, &yul.ExprStmt{X: yul.Call("return", yul.IntLit(0), yul.IntLit(0))})
	return b
}

// decodeCalldataParam binds one function parameter at calldata offset
// 4+32*i (spec §4.4.2). Static types decode to a single masked/sign-
// extended local; `bytes`/`string`/dynamic-array types bind a data
// pointer (the parameter's own name) plus a `<name>_len` length local.
func decodeCalldataParam(fctx *funcCtx, b *yul.Block, p analyzer.Param, i int) {
	off := 4 + 32*i
	word := yul.Call("calldataload", yul.IntLit(off))
	switch p.Type.Kind {
	case evmtype.KindBytes, evmtype.KindString, evmtype.KindArray:
		headOffset := fctx.newTemp("head")
		b.Statements = append(b.Statements, &yul.LetStmt{
			Names: []string{headOffset},
			Value: yul.Call("add", yul.IntLit(4), word),
		})
		fctx.bind(b, p.Name, yul.Call("add", yul.Ident(headOffset), yul.IntLit(32)))
		fctx.bind(b, p.Name+"_len", yul.Call("calldataload", yul.Ident(headOffset)))
	default:
		fctx.bind(b, p.Name, normalizeLoaded(word, p.Type))
	}
}

// calldataSliceHelperName is the lazily-registered helper spec §4.4.2
// names directly: `__calldata_slice(ptr, len, start, end)`.
const calldataSliceHelperName = "__calldata_slice"

// ensureCalldataSliceHelper registers the slicing helper the first time a
// `a[start:end]` expression over a calldata pointer/length pair is lowered.
func ensureCalldataSliceHelper(mc *moduleCtx) {
	mc.ensureHelper(calldataSliceHelperName, buildCalldataSliceHelper)
}

// buildCalldataSliceHelper bounds-checks and re-derives a (ptr, len) pair
// for `a[start:end]` over a calldata-bound bytes/string/array parameter
// (spec §4.4.2): reverts with panic(0x32) on `start > end` or `end > len`.
func buildCalldataSliceHelper() *yul.FunctionDefinition {
	body := &yul.Block{}
	body.Statements = append(body.Statements,
		&yul.IfStmt{Cond: yul.Call("gt", yul.Ident("start"), yul.Ident("end")), Body: revertPanic(0x32)},
		&yul.IfStmt{Cond: yul.Call("gt", yul.Ident("end"), yul.Ident("len")), Body: revertPanic(0x32)},
		&yul.AssignStmt{Names: []string{"outPtr"}, Value: yul.Call("add", yul.Ident("ptr"), yul.Ident("start"))},
		&yul.AssignStmt{Names: []string{"outLen"}, Value: yul.Call("sub", yul.Ident("end"), yul.Ident("start"))},
	)
	return &yul.FunctionDefinition{
		Name:    calldataSliceHelperName,
		Params:  []string{"ptr", "len", "start", "end"},
		Returns: []string{"outPtr", "outLen"},
		Body:    body,
	}
}

// lowerSlice lowers `a[start:end]` (spec §4.4.2): a only resolves when it
// is a calldata-bound bytes/string/array parameter carrying the `<name>`/
// `<name>_len` local pair decodeCalldataParam binds. Reports ok=false for
// anything else, which callers surface as UnsupportedError (spec §9(ii):
// a calldata slice result may only be returned, never stored in a local).
func lowerSlice(fctx *funcCtx, b *yul.Block, n surface.SliceExpr) (ptr, length yul.Expr, ok bool) {
	id, isIdent := n.X.(surface.Ident)
	if !isIdent || !fctx.isLocal(id.Name) || !fctx.isLocal(id.Name+"_len") {
		return nil, nil, false
	}
	ensureCalldataSliceHelper(fctx.mc)
	start := lowerExpr(fctx, b, n.Start)
	end := lowerExpr(fctx, b, n.End)
	ptrTemp := fctx.newTemp("slice_ptr")
	lenTemp := fctx.newTemp("slice_len")
	b.Statements = append(b.Statements, &yul.LetStmt{
		Names: []string{ptrTemp, lenTemp},
		Value: yul.Call(calldataSliceHelperName, yul.Ident(id.Name), yul.Ident(id.Name+"_len"), start, end),
	})
	return yul.Ident(ptrTemp), yul.Ident(lenTemp), true
}

// lowerFunction builds the standalone `fn_<Name>` Yul function used for
// internal (bare-identifier) calls (spec §4.4.6's `leave`-based return
// convention). Every analyzed function — public or private — gets one,
// since a public function's externally callable path is the dispatcher
// case built by buildDispatchCase, while other method bodies invoke it by
// name via this wrapper.
func lowerFunction(mc *moduleCtx, fi *analyzer.FunctionInfo) *yul.FunctionDefinition {
	fctx := newFuncCtx(mc, fi)
	fctx.inline = false

	params := make([]string, len(fi.Params))
	for i, p := range fi.Params {
		params[i] = p.Name
		fctx.markLocal(p.Name)
	}

	var returns []string
	if fi.ReturnType != nil {
		if fi.ReturnType.Kind == evmtype.KindTuple {
			for i := range fi.ReturnType.Elems {
				returns = append(returns, fmt.Sprintf("ret_%d", i))
			}
		} else {
			returns = []string{"ret_0"}
		}
	}
	fctx.returnNames = returns

	body := &yul.Block{Statements: lowerStmtList(fctx, fi.Body)}
	return &yul.FunctionDefinition{Name: "fn_" + fi.Name, Params: params, Returns: returns, Body: body}
}
