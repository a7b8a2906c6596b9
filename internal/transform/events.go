package transform

import (
	"github.com/example/yulc/internal/abi"
	"github.com/example/yulc/internal/analyzer"
	"github.com/example/yulc/internal/evmtype"
	"github.com/example/yulc/internal/surface"
	"github.com/example/yulc/internal/yul"
)

// findEventSchema resolves the identifier in `this.<name>.emit(...)` to
// its event schema. The surface-level emit path names the declaring
// storage field, so FieldName is checked first; the event's own type
// name is also accepted since the common case (`@event Transfer:
// Transfer;`) makes the two identical.
func findEventSchema(mc *moduleCtx, name string) *analyzer.EventSchema {
	for i := range mc.model.Events {
		if mc.model.Events[i].FieldName == name {
			return &mc.model.Events[i]
		}
	}
	for i := range mc.model.Events {
		if mc.model.Events[i].Name == name {
			return &mc.model.Events[i]
		}
	}
	return nil
}

// lowerEventEmit lowers `this.Ev.emit({...})` to `logK(offset, length,
// topic0, topic1, ...)` (spec §4.4.8). Indexed fields (at most 3, per the
// analyzer's check) become topics; non-indexed fields are packed, one
// word each, into scratch memory starting at offset 0.
func lowerEventEmit(fctx *funcCtx, b *yul.Block, schema *analyzer.EventSchema, args *surface.StructLit) {
	fieldTypes := make([]*evmtype.EvmType, len(schema.Fields))
	for i, f := range schema.Fields {
		fieldTypes[i] = f.Type
	}
	topic0, err := abi.EventTopic0(schema.Name, fieldTypes)
	if err != nil {
		fctx.mc.bag.Add(unsupportedNode(schema.Name, err.Error()))
		return
	}

	values := map[string]surface.Expr{}
	if args != nil {
		for _, fld := range args.Fields {
			values[fld.Name] = fld.Value
		}
	}

	topics := []yul.Expr{yul.HexNumberLit("0x" + bytesToHex(topic0[:]))}
	var dataFields []analyzer.EventField
	for _, f := range schema.Fields {
		if !f.Indexed {
			dataFields = append(dataFields, f)
			continue
		}
		val, ok := values[f.Name]
		if !ok {
			fctx.mc.bag.Add(unsupportedNode(f.Name, "missing value for indexed event field"))
			continue
		}
		topics = append(topics, lowerIndexedTopic(fctx, b, val, f.Type))
	}

	off := 0
	for _, f := range dataFields {
		val, ok := values[f.Name]
		if !ok {
			fctx.mc.bag.Add(unsupportedNode(f.Name, "missing value for event field"))
			continue
		}
		b.Statements = append(b.Statements, &yul.ExprStmt{X: yul.Call("mstore", yul.IntLit(off), lowerExpr(fctx, b, val))})
		off += 32
	}

	logArgs := append([]yul.Expr{yul.IntLit(0), yul.IntLit(off)}, topics...)
	logName := "log" + itoa(len(topics))
	b.Statements = append(b.Statements, &yul.ExprStmt{X: yul.Call(logName, logArgs...)})
}

// lowerIndexedTopic lowers one indexed event field to its topic value
// (spec §4.4.8). `bytes`/`string` fields are replaced by their keccak256
// hash (the Solidity rule) rather than their raw value; a dynamic value
// is only hashable here when it is a decoded calldata parameter exposing
// the `<name>`/`<name>_len` pointer-and-length pair (spec §4.4.2).
func lowerIndexedTopic(fctx *funcCtx, b *yul.Block, val surface.Expr, t *evmtype.EvmType) yul.Expr {
	if t.Kind != evmtype.KindBytes && t.Kind != evmtype.KindString {
		return lowerExpr(fctx, b, val)
	}
	if id, ok := val.(surface.Ident); ok && fctx.isLocal(id.Name) && fctx.isLocal(id.Name+"_len") {
		return yul.Call("keccak256", yul.Ident(id.Name), yul.Ident(id.Name+"_len"))
	}
	fctx.mc.bag.Add(unsupportedNode(t.Name, "indexed bytes/string event field must be a decoded calldata parameter"))
	return yul.IntLit(0)
}

func bytesToHex(b []byte) string {
	const hexdigits = "0123456789abcdef"
	out := make([]byte, len(b)*2)
	for i, c := range b {
		out[i*2] = hexdigits[c>>4]
		out[i*2+1] = hexdigits[c&0xf]
	}
	return string(out)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}
