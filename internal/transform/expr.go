package transform

import (
	"github.com/example/yulc/internal/evmtype"
	"github.com/example/yulc/internal/surface"
	"github.com/example/yulc/internal/yul"
)

// lowerExpr lowers a surface expression to a Yul expression (spec §4.4.5).
// b receives any scratch-memory statements a sub-expression needs to emit
// (mapping-key hashing, array-slot hashing) ahead of the expression itself.
func lowerExpr(fctx *funcCtx, b *yul.Block, e surface.Expr) yul.Expr {
	switch n := e.(type) {
	case surface.IntLit:
		return intLitExpr(n.Text)
	case surface.HexLit:
		return yul.HexNumberLit(n.Text)
	case surface.BoolLit:
		return yul.BoolLit(n.Value)
	case surface.StringLit:
		return yul.Str(n.Value)
	case surface.ThisExpr:
		return yul.Call("address")
	case surface.Ident:
		return lowerIdent(fctx, n.Name)
	case surface.UnaryExpr:
		return lowerUnary(fctx, b, n)
	case surface.BinaryExpr:
		return lowerBinary(fctx, b, n)
	case surface.MemberExpr:
		return lowerMember(fctx, b, n)
	case surface.IndexExpr:
		return lowerIndex(fctx, b, n)
	case surface.SliceExpr:
		// A calldata slice is only meaningful as a direct return value
		// (spec §9(ii)); reaching general expression lowering means it
		// was stored in a local or otherwise used mid-expression.
		fctx.mc.bag.Add(unsupportedNode("", "calldata slice result may only be returned directly"))
		return yul.IntLit(0)
	case surface.CallExpr:
		return lowerCall(fctx, b, n)
	case surface.TupleExpr:
		// A bare tuple expression only appears as a multi-value return;
		// statement-level lowering unpacks it directly, so as a nested
		// expression only its first element is meaningful.
		if len(n.Elems) > 0 {
			return lowerExpr(fctx, b, n.Elems[0])
		}
		return yul.IntLit(0)
	default:
		fctx.mc.bag.Add(unsupportedExpr(e))
		return yul.IntLit(0)
	}
}

func intLitExpr(text string) yul.Expr {
	n, ok := parseLiteralBigInt(text)
	if !ok {
		return yul.IntLit(0)
	}
	return yul.NumberLit(n)
}

func lowerIdent(fctx *funcCtx, name string) yul.Expr {
	if name == "MAX_U256" {
		return maskLit(256)
	}
	if fctx.isLocal(name) {
		return yul.Ident(name)
	}
	if sv, ok := fctx.mc.storageVar(name); ok {
		return loadScalar(storageRef{Slot: sv.Slot, Transient: sv.Transient, Type: sv.Type})
	}
	return yul.Ident(name)
}

func lowerUnary(fctx *funcCtx, b *yul.Block, n surface.UnaryExpr) yul.Expr {
	x := lowerExpr(fctx, b, n.X)
	switch n.Op {
	case "!":
		return yul.Call("iszero", x)
	case "~":
		return yul.Call("not", x)
	case "-":
		return yul.Call("sub", yul.IntLit(0), x)
	default:
		return x
	}
}

func lowerBinary(fctx *funcCtx, b *yul.Block, n surface.BinaryExpr) yul.Expr {
	signed := isSignedExpr(fctx, n.X) || isSignedExpr(fctx, n.Y)
	x := lowerExpr(fctx, b, n.X)
	y := lowerExpr(fctx, b, n.Y)
	if n.Op == "&&" {
		return lowerShortCircuit(fctx, b, x, y, false)
	}
	if n.Op == "||" {
		return lowerShortCircuit(fctx, b, x, y, true)
	}
	result, ok := binOpCode(n.Op, signed, x, y)
	if !ok {
		fctx.mc.bag.Add(unsupportedBinOp(n.Op))
		return yul.IntLit(0)
	}
	return result
}

// binOpCode maps one arithmetic/comparison/bitwise operator to its Yul
// opcode form (spec §4.4.5), shared by expression lowering and compound
// assignment (`+=` and friends) lowering.
func binOpCode(op string, signed bool, x, y yul.Expr) (yul.Expr, bool) {
	switch op {
	case "+":
		return yul.Call("add", x, y), true
	case "-":
		return yul.Call("sub", x, y), true
	case "*":
		return yul.Call("mul", x, y), true
	case "/":
		if signed {
			return yul.Call("sdiv", x, y), true
		}
		return yul.Call("div", x, y), true
	case "%":
		if signed {
			return yul.Call("smod", x, y), true
		}
		return yul.Call("mod", x, y), true
	case "<":
		if signed {
			return yul.Call("slt", x, y), true
		}
		return yul.Call("lt", x, y), true
	case ">":
		if signed {
			return yul.Call("sgt", x, y), true
		}
		return yul.Call("gt", x, y), true
	case "<=":
		if signed {
			return yul.Call("iszero", yul.Call("sgt", x, y)), true
		}
		return yul.Call("iszero", yul.Call("gt", x, y)), true
	case ">=":
		if signed {
			return yul.Call("iszero", yul.Call("slt", x, y)), true
		}
		return yul.Call("iszero", yul.Call("lt", x, y)), true
	case "==":
		return yul.Call("eq", x, y), true
	case "!=":
		return yul.Call("iszero", yul.Call("eq", x, y)), true
	case "&":
		return yul.Call("and", x, y), true
	case "|":
		return yul.Call("or", x, y), true
	case "^":
		return yul.Call("xor", x, y), true
	case "<<":
		return yul.Call("shl", y, x), true
	case ">>":
		if signed {
			return yul.Call("sar", y, x), true
		}
		return yul.Call("shr", y, x), true
	default:
		return nil, false
	}
}

// lowerShortCircuit materializes `&&`/`||` via an if-produced local (spec
// §4.4.5): the right operand is only evaluated on the branch where it can
// change the result.
func lowerShortCircuit(fctx *funcCtx, b *yul.Block, x, y yul.Expr, isOr bool) yul.Expr {
	tmp := fctx.newTemp("sc")
	b.Statements = append(b.Statements, &yul.LetStmt{Names: []string{tmp}, Value: x})
	inner := &yul.Block{Statements: []yul.Stmt{&yul.AssignStmt{Names: []string{tmp}, Value: y}}}
	cond := yul.Expr(yul.Ident(tmp))
	if isOr {
		cond = yul.Call("iszero", cond)
	}
	b.Statements = append(b.Statements, &yul.IfStmt{Cond: cond, Body: inner})
	return yul.Ident(tmp)
}

func lowerMember(fctx *funcCtx, b *yul.Block, n surface.MemberExpr) yul.Expr {
	if x, ok := n.X.(surface.Ident); ok {
		switch x.Name {
		case "msg":
			switch n.Name {
			case "sender":
				return yul.Call("caller")
			case "value":
				return yul.Call("callvalue")
			case "data":
				return yul.Call("calldataload", yul.IntLit(0))
			}
		case "block":
			switch n.Name {
			case "timestamp":
				return yul.Call("timestamp")
			case "number":
				return yul.Call("number")
			case "coinbase":
				return yul.Call("coinbase")
			case "difficulty", "prevrandao":
				return yul.Call("prevrandao")
			case "gaslimit":
				return yul.Call("gaslimit")
			case "chainid":
				return yul.Call("chainid")
			case "basefee":
				return yul.Call("basefee")
			}
		case "tx":
			switch n.Name {
			case "origin":
				return yul.Call("origin")
			case "gasprice":
				return yul.Call("gasprice")
			}
		}
	}
	if _, ok := n.X.(surface.ThisExpr); ok {
		return lowerIdent(fctx, n.Name)
	}
	// Any other `a.b` resolves `b` by name alone; `a` is not inspected.
	return lowerIdent(fctx, n.Name)
}

func lowerIndex(fctx *funcCtx, b *yul.Block, n surface.IndexExpr) yul.Expr {
	slot, containerType, ok := resolveContainer(fctx, b, n.X)
	if !ok {
		fctx.mc.bag.Add(unsupportedExpr(n))
		return yul.IntLit(0)
	}
	key := lowerExpr(fctx, b, n.Key)
	elemSlot, ok := elementSlot(fctx, b, slot, containerType, key)
	if !ok {
		fctx.mc.bag.Add(unsupportedExpr(n))
		return yul.IntLit(0)
	}
	return yul.Call("sload", elemSlot)
}

// elementSlot derives the element slot of one level of mapping/array
// indexing given the container's own slot and type (spec §4.4.3).
func elementSlot(fctx *funcCtx, b *yul.Block, containerSlot yul.Expr, containerType *evmtype.EvmType, key yul.Expr) (yul.Expr, bool) {
	if containerType == nil {
		return nil, false
	}
	switch containerType.Kind {
	case evmtype.KindMapping:
		return mappingSlot(fctx, b, key, containerSlot, containerType.Key), true
	case evmtype.KindArray:
		return arrayElemSlot(fctx, b, containerSlot, key), true
	default:
		return nil, false
	}
}

// resolveContainer walks `a[b][c]...` down to its storage root, returning
// e's own slot expression and type (a mapping or dynamic array). Nested
// mappings compose: indexing one level derives the inner base slot, which
// becomes the containerSlot the next level re-hashes or steps from (spec
// §4.4.3: "mapping[a][b] derives inner base slot first, then re-hashes
// with b").
func resolveContainer(fctx *funcCtx, b *yul.Block, e surface.Expr) (slot yul.Expr, containerType *evmtype.EvmType, ok bool) {
	switch n := e.(type) {
	case surface.Ident:
		if sv, ok := fctx.mc.storageVar(n.Name); ok {
			if sv.Type.Kind == evmtype.KindMapping || sv.Type.Kind == evmtype.KindArray {
				return yul.NumberLit(sv.Slot), sv.Type, true
			}
		}
		return nil, nil, false
	case surface.MemberExpr:
		if _, ok := n.X.(surface.ThisExpr); ok {
			return resolveContainer(fctx, b, surface.Ident{Name: n.Name})
		}
		return nil, nil, false
	case surface.IndexExpr:
		baseSlot, baseType, ok := resolveContainer(fctx, b, n.X)
		if !ok {
			return nil, nil, false
		}
		key := lowerExpr(fctx, b, n.Key)
		slot, ok := elementSlot(fctx, b, baseSlot, baseType, key)
		if !ok {
			return nil, nil, false
		}
		var inner *evmtype.EvmType
		switch baseType.Kind {
		case evmtype.KindMapping:
			inner = baseType.Value
		case evmtype.KindArray:
			inner = baseType.Elem
		}
		return slot, inner, true
	default:
		return nil, nil, false
	}
}

func isSignedExpr(fctx *funcCtx, e surface.Expr) bool {
	t := inferType(fctx, e)
	return t != nil && t.Kind == evmtype.KindInt
}

// inferType is a best-effort type lookup over the small set of
// expressions whose declared type is directly known (storage fields and
// function parameters); anything else is treated as unsigned, which is
// the safe default since unsigned ops only under-select sign-aware
// opcodes for the comparatively rare signed-arithmetic case.
func inferType(fctx *funcCtx, e surface.Expr) *evmtype.EvmType {
	switch n := e.(type) {
	case surface.Ident:
		if sv, ok := fctx.mc.storageVar(n.Name); ok {
			return sv.Type
		}
		for _, p := range fctx.fn.Params {
			if p.Name == n.Name {
				return p.Type
			}
		}
	case surface.MemberExpr:
		if _, ok := n.X.(surface.ThisExpr); ok {
			if sv, ok := fctx.mc.storageVar(n.Name); ok {
				return sv.Type
			}
		}
	case surface.CallExpr:
		// A call.call<R>/staticcall<R>/delegatecall<R> generic call's
		// return type is the explicit type argument (spec §4.4.2); a
		// signed R must drive sign-aware opcodes the same as any other
		// signed expression.
		if len(n.TypeArgs) == 1 {
			if t, err := evmtype.Parse(n.TypeArgs[0].Spelling, modelTypeContext{fctx.mc.model}); err == nil {
				return t
			}
		}
	}
	return nil
}
