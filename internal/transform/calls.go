package transform

import (
	"fmt"

	"github.com/example/yulc/internal/abi"
	"github.com/example/yulc/internal/evmtype"
	"github.com/example/yulc/internal/surface"
	"github.com/example/yulc/internal/yul"
)

// lowerCall lowers the handful of call-shaped constructs spec §6 names:
// keccak256, bytes.concat/string.concat, call.call<R>/staticcall/
// delegatecall, and typed external calls I(addr).method(args).
func lowerCall(fctx *funcCtx, b *yul.Block, n surface.CallExpr) yul.Expr {
	if id, ok := n.Fn.(surface.Ident); ok {
		switch id.Name {
		case "keccak256":
			return lowerKeccak256(fctx, b, n.Args)
		}
	}
	if mem, ok := n.Fn.(surface.MemberExpr); ok {
		if base, ok := mem.X.(surface.Ident); ok {
			switch base.Name {
			case "bytes", "string":
				if mem.Name == "concat" {
					return lowerConcat(fctx, b, base.Name, n.Args)
				}
			case "call", "staticcall", "delegatecall":
				return lowerGenericCall(fctx, b, base.Name, n)
			}
		}
		if innerCall, ok := mem.X.(surface.CallExpr); ok {
			if ident, isIdent := innerCall.Fn.(surface.Ident); isIdent {
				return lowerTypedExternalCall(fctx, b, innerCall, ident.Name, mem.Name, n.Args)
			}
		}
	}
	if id, ok := n.Fn.(surface.Ident); ok {
		// Bare identifier call: an internal (private/public) function
		// invoked from within another method's body.
		args := make([]yul.Expr, len(n.Args))
		for i, a := range n.Args {
			args[i] = lowerExpr(fctx, b, a)
		}
		return yul.Call("fn_"+id.Name, args...)
	}
	fctx.mc.bag.Add(unsupportedExpr(n))
	return yul.IntLit(0)
}

// lowerKeccak256 hashes its arguments packed word-by-word into scratch
// memory starting at offset 0 (spec §6's `keccak256` intrinsic).
func lowerKeccak256(fctx *funcCtx, b *yul.Block, args []surface.Expr) yul.Expr {
	for i, a := range args {
		v := lowerExpr(fctx, b, a)
		b.Statements = append(b.Statements, &yul.ExprStmt{X: yul.Call("mstore", yul.IntLit(32*i), v)})
	}
	return yul.Call("keccak256", yul.IntLit(0), yul.IntLit(32*len(args)))
}

// lowerGenericCall lowers `call.call<R>(target, selector, args...)` (and
// the staticcall/delegatecall variants) via a lazily generated __call_N
// helper family (spec §4.4.7).
func lowerGenericCall(fctx *funcCtx, b *yul.Block, kind string, n surface.CallExpr) yul.Expr {
	if len(n.Args) < 2 {
		fctx.mc.bag.Add(unsupportedNode("", kind+" requires a target and a selector argument"))
		return yul.IntLit(0)
	}
	target := lowerExpr(fctx, b, n.Args[0])
	selector := lowerExpr(fctx, b, n.Args[1])
	extra := n.Args[2:]
	name := externalCallHelperName(kind, len(extra))
	fctx.mc.ensureHelper(name, func() *yul.FunctionDefinition {
		return buildExternalCallHelper(name, kind, len(extra))
	})
	args := []yul.Expr{target, selector}
	for _, a := range extra {
		args = append(args, lowerExpr(fctx, b, a))
	}
	var result yul.Expr = yul.Call(name, args...)
	if len(n.TypeArgs) == 1 {
		t, err := evmtype.Parse(n.TypeArgs[0].Spelling, modelTypeContext{fctx.mc.model})
		if err != nil {
			fctx.mc.bag.Add(unsupportedNode("", err.Error()))
			return result
		}
		result = normalizeLoaded(result, t)
	}
	return result
}

func externalCallHelperName(kind string, arity int) string {
	return fmt.Sprintf("__%s_%d", kind, arity)
}

// buildExternalCallHelper synthesizes one arity-specialized helper: pack
// the selector and arguments into memory, issue the call opcode, bubble
// revert data on failure, and return the first 32-byte return word (spec
// §4.4.7).
func buildExternalCallHelper(name, kind string, arity int) *yul.FunctionDefinition {
	params := []string{"target", "selector"}
	for i := 0; i < arity; i++ {
		params = append(params, fmt.Sprintf("arg%d", i))
	}
	body := &yul.Block{}
	body.Statements = append(body.Statements,
		&yul.ExprStmt{X: yul.Call("mstore", yul.IntLit(0), yul.Call("shl", yul.IntLit(224), yul.Ident("selector")))},
	)
	for i := 0; i < arity; i++ {
		body.Statements = append(body.Statements,
			&yul.ExprStmt{X: yul.Call("mstore", yul.IntLit(4+32*i), yul.Ident(fmt.Sprintf("arg%d", i)))},
		)
	}
	argsSize := yul.IntLit(4 + 32*arity)
	var callOp *yul.FunctionCall
	switch kind {
	case "staticcall":
		callOp = yul.Call("staticcall", yul.Call("gas"), yul.Ident("target"), yul.IntLit(0), argsSize, yul.IntLit(0), yul.IntLit(32))
	case "delegatecall":
		callOp = yul.Call("delegatecall", yul.Call("gas"), yul.Ident("target"), yul.IntLit(0), argsSize, yul.IntLit(0), yul.IntLit(32))
	default:
		callOp = yul.Call("call", yul.Call("gas"), yul.Ident("target"), yul.IntLit(0), yul.IntLit(0), argsSize, yul.IntLit(0), yul.IntLit(32))
	}
	body.Statements = append(body.Statements,
		&yul.LetStmt{Names: []string{"success"}, Value: callOp},
		&yul.IfStmt{Cond: yul.Call("iszero", yul.Ident("success")), Body: bubbleRevert()},
		&yul.AssignStmt{Names: []string{"ret"}, Value: yul.Call("mload", yul.IntLit(0))},
	)
	return &yul.FunctionDefinition{Name: name, Params: params, Returns: []string{"ret"}, Body: body}
}

// bubbleRevert copies the callee's revert data into memory and reverts
// with it (spec §4.4.7: "bubbles revert data on failure").
func bubbleRevert() *yul.Block {
	return &yul.Block{Statements: []yul.Stmt{
		&yul.ExprStmt{X: yul.Call("returndatacopy", yul.IntLit(0), yul.IntLit(0), yul.Call("returndatasize"))},
		&yul.ExprStmt{X: yul.Call("revert", yul.IntLit(0), yul.Call("returndatasize"))},
	}}
}

// lowerConcat lowers bytes.concat/string.concat (spec §6): each argument
// is copied, in order, into scratch memory starting at offset 0 — a
// string literal via a byte-by-byte mstore8 loop, a calldata-bound
// bytes/string parameter via calldatacopy — advancing a running cursor so
// mixed literal/dynamic arguments concatenate correctly. The result binds
// a `<ptr>_len` local alongside the returned pointer, following the
// `<name>`/`<name>_len` convention decodeCalldataParam establishes (spec
// §4.4.2).
func lowerConcat(fctx *funcCtx, b *yul.Block, kind string, args []surface.Expr) yul.Expr {
	ptrTemp := fctx.newTemp(kind + "_concat")
	cursorTemp := fctx.newTemp(kind + "_cursor")
	b.Statements = append(b.Statements,
		&yul.LetStmt{Names: []string{ptrTemp}, Value: yul.IntLit(0)},
		&yul.LetStmt{Names: []string{cursorTemp}, Value: yul.IntLit(0)},
	)
	for _, a := range args {
		switch v := a.(type) {
		case surface.StringLit:
			for i := 0; i < len(v.Value); i++ {
				b.Statements = append(b.Statements, &yul.ExprStmt{X: yul.Call("mstore8",
					yul.Call("add", yul.Ident(cursorTemp), yul.IntLit(i)), yul.IntLit(int(v.Value[i])))})
			}
			b.Statements = append(b.Statements, &yul.AssignStmt{
				Names: []string{cursorTemp},
				Value: yul.Call("add", yul.Ident(cursorTemp), yul.IntLit(len(v.Value))),
			})
		case surface.Ident:
			if !fctx.isLocal(v.Name) || !fctx.isLocal(v.Name+"_len") {
				fctx.mc.bag.Add(unsupportedNode(v.Name, fmt.Sprintf("%s.concat argument must be a calldata-bound parameter or a string literal", kind)))
				return yul.IntLit(0)
			}
			b.Statements = append(b.Statements,
				&yul.ExprStmt{X: yul.Call("calldatacopy", yul.Ident(cursorTemp), yul.Ident(v.Name), yul.Ident(v.Name+"_len"))},
				&yul.AssignStmt{Names: []string{cursorTemp}, Value: yul.Call("add", yul.Ident(cursorTemp), yul.Ident(v.Name+"_len"))},
			)
		default:
			fctx.mc.bag.Add(unsupportedExpr(a))
			return yul.IntLit(0)
		}
	}
	fctx.bind(b, ptrTemp+"_len", yul.Ident(cursorTemp))
	return yul.Ident(ptrTemp)
}

// lowerNonRevertingCall lowers the call inside a try block (spec §4.4.7)
// through a helper variant that never bubbles a revert: on failure, the
// caller branches to the catch block itself instead. Recognizes the same
// two call-shaped forms as lowerCall's reverting path: call.call<R>/
// staticcall/delegatecall and typed external calls I(addr).method(args).
func lowerNonRevertingCall(fctx *funcCtx, b *yul.Block, n surface.CallExpr) (success, ret yul.Expr, ok bool) {
	mem, isMember := n.Fn.(surface.MemberExpr)
	if !isMember {
		return nil, nil, false
	}
	if base, isIdent := mem.X.(surface.Ident); isIdent {
		switch base.Name {
		case "call", "staticcall", "delegatecall":
			if len(n.Args) < 2 {
				fctx.mc.bag.Add(unsupportedNode("", base.Name+" requires a target and a selector argument"))
				return nil, nil, false
			}
			target := lowerExpr(fctx, b, n.Args[0])
			selector := lowerExpr(fctx, b, n.Args[1])
			extra := n.Args[2:]
			callArgs := make([]yul.Expr, len(extra))
			for i, a := range extra {
				callArgs[i] = lowerExpr(fctx, b, a)
			}
			return emitTryCallHelper(fctx, b, base.Name, len(extra), target, selector, callArgs)
		}
	}
	if innerCall, isCall := mem.X.(surface.CallExpr); isCall {
		if ident, isIdent := innerCall.Fn.(surface.Ident); isIdent {
			if len(innerCall.Args) != 1 {
				fctx.mc.bag.Add(unsupportedNode("", "typed external call constructor takes exactly one address argument"))
				return nil, nil, false
			}
			target := lowerExpr(fctx, b, innerCall.Args[0])
			paramTypes, ok := fctx.mc.interfaceMethodParams(ident.Name, mem.Name)
			if !ok {
				fctx.mc.bag.Add(unsupportedNode(mem.Name, fmt.Sprintf("unknown interface method %s.%s", ident.Name, mem.Name)))
				return nil, nil, false
			}
			sig, err := abi.ComputeSelector(mem.Name, paramTypes)
			if err != nil {
				fctx.mc.bag.Add(unsupportedNode(mem.Name, err.Error()))
				return nil, nil, false
			}
			callArgs := make([]yul.Expr, len(n.Args))
			for i, a := range n.Args {
				callArgs[i] = lowerExpr(fctx, b, a)
			}
			return emitTryCallHelper(fctx, b, "call", len(n.Args), target, yul.HexNumberLit(sig), callArgs)
		}
	}
	return nil, nil, false
}

// emitTryCallHelper registers (if needed) and invokes the non-reverting
// __try_<kind>_<arity> helper, binding its (success, ret) pair to fresh
// temporaries.
func emitTryCallHelper(fctx *funcCtx, b *yul.Block, kind string, arity int, target, selector yul.Expr, extra []yul.Expr) (success, ret yul.Expr, ok bool) {
	name := tryCallHelperName(kind, arity)
	fctx.mc.ensureHelper(name, func() *yul.FunctionDefinition {
		return buildExternalCallHelperTry(name, kind, arity)
	})
	args := append([]yul.Expr{target, selector}, extra...)
	successName := fctx.newTemp("try_ok")
	retName := fctx.newTemp("try_ret")
	b.Statements = append(b.Statements, &yul.LetStmt{Names: []string{successName, retName}, Value: yul.Call(name, args...)})
	return yul.Ident(successName), yul.Ident(retName), true
}

func tryCallHelperName(kind string, arity int) string {
	return fmt.Sprintf("__try_%s_%d", kind, arity)
}

// buildExternalCallHelperTry mirrors buildExternalCallHelper but never
// reverts on failure (spec §4.4.7's try/catch): the out region is loaded
// unconditionally (the call opcode writes up to outSize bytes of return
// data regardless of success), and both the success flag and the loaded
// word are returned so the caller can guard a catch block itself.
func buildExternalCallHelperTry(name, kind string, arity int) *yul.FunctionDefinition {
	params := []string{"target", "selector"}
	for i := 0; i < arity; i++ {
		params = append(params, fmt.Sprintf("arg%d", i))
	}
	body := &yul.Block{}
	body.Statements = append(body.Statements,
		&yul.ExprStmt{X: yul.Call("mstore", yul.IntLit(0), yul.Call("shl", yul.IntLit(224), yul.Ident("selector")))},
	)
	for i := 0; i < arity; i++ {
		body.Statements = append(body.Statements,
			&yul.ExprStmt{X: yul.Call("mstore", yul.IntLit(4+32*i), yul.Ident(fmt.Sprintf("arg%d", i)))},
		)
	}
	argsSize := yul.IntLit(4 + 32*arity)
	var callOp *yul.FunctionCall
	switch kind {
	case "staticcall":
		callOp = yul.Call("staticcall", yul.Call("gas"), yul.Ident("target"), yul.IntLit(0), argsSize, yul.IntLit(0), yul.IntLit(32))
	case "delegatecall":
		callOp = yul.Call("delegatecall", yul.Call("gas"), yul.Ident("target"), yul.IntLit(0), argsSize, yul.IntLit(0), yul.IntLit(32))
	default:
		callOp = yul.Call("call", yul.Call("gas"), yul.Ident("target"), yul.IntLit(0), yul.IntLit(0), argsSize, yul.IntLit(0), yul.IntLit(32))
	}
	body.Statements = append(body.Statements,
		&yul.AssignStmt{Names: []string{"success"}, Value: callOp},
		&yul.AssignStmt{Names: []string{"ret"}, Value: yul.Call("mload", yul.IntLit(0))},
	)
	return &yul.FunctionDefinition{Name: name, Params: params, Returns: []string{"success", "ret"}, Body: body}
}

// lowerTypedExternalCall lowers `I(addr).method(args)`. ifaceName is I's
// declared name, resolved by the analyzer into model.Interfaces so the
// selector uses method's real declared parameter types (spec §4.2,
// §6(e)) rather than assuming every argument is uint256 — that
// assumption is what the untyped call.call<R> form is for instead.
func lowerTypedExternalCall(fctx *funcCtx, b *yul.Block, ctor surface.CallExpr, ifaceName, method string, args []surface.Expr) yul.Expr {
	if len(ctor.Args) != 1 {
		fctx.mc.bag.Add(unsupportedNode("", "typed external call constructor takes exactly one address argument"))
		return yul.IntLit(0)
	}
	target := lowerExpr(fctx, b, ctor.Args[0])
	paramTypes, ok := fctx.mc.interfaceMethodParams(ifaceName, method)
	if !ok {
		fctx.mc.bag.Add(unsupportedNode(method, fmt.Sprintf("unknown interface method %s.%s", ifaceName, method)))
		return yul.IntLit(0)
	}
	sig, err := abi.ComputeSelector(method, paramTypes)
	if err != nil {
		fctx.mc.bag.Add(unsupportedNode(method, err.Error()))
		return yul.IntLit(0)
	}
	name := externalCallHelperName("call", len(args))
	fctx.mc.ensureHelper(name, func() *yul.FunctionDefinition {
		return buildExternalCallHelper(name, "call", len(args))
	})
	callArgs := []yul.Expr{target, yul.HexNumberLit(sig)}
	for _, a := range args {
		callArgs = append(callArgs, lowerExpr(fctx, b, a))
	}
	return yul.Call(name, callArgs...)
}
