// Package transform lowers an analyzer.ContractModel, together with the
// surface-language statement/expression trees reachable from it, into a
// yul.Object (spec §4.4 — "the hard part"). Grounded on the small
// emit(line)-style generator shown in other_examples/malphas-lang
// (internal/codegen/mir2llvm/generator.go) and the instruction-emission
// API of other_examples/nspcc-dev-neo-go (pkg/vm/compiler/codegen.go):
// both build a textual/SSA target by walking a typed IR with a mutable
// per-function emission context, the same shape used here.
package transform

import (
	"math/big"

	"github.com/example/yulc/internal/analyzer"
	"github.com/example/yulc/internal/diagnostics"
	"github.com/example/yulc/internal/evmtype"
	"github.com/example/yulc/internal/yul"
)

// moduleCtx holds state shared across every function of one contract:
// lazily-generated external-call helpers (spec §4.4.7) and the storage
// layout needed by every field access.
type moduleCtx struct {
	model   *analyzer.ContractModel
	bag     *diagnostics.Bag
	helpers map[string]*yul.FunctionDefinition // name -> def, insertion order tracked separately
	order   []string
}

func newModuleCtx(model *analyzer.ContractModel, bag *diagnostics.Bag) *moduleCtx {
	return &moduleCtx{model: model, bag: bag, helpers: map[string]*yul.FunctionDefinition{}}
}

func (m *moduleCtx) ensureHelper(name string, build func() *yul.FunctionDefinition) {
	if _, ok := m.helpers[name]; ok {
		return
	}
	def := build()
	m.helpers[name] = def
	m.order = append(m.order, name)
}

func (m *moduleCtx) storageVar(name string) (*analyzer.StorageVariable, bool) {
	for i := range m.model.Storage {
		if m.model.Storage[i].Name == name {
			return &m.model.Storage[i], true
		}
	}
	return nil, false
}

// interfaceMethodParams resolves method's declared parameter types from
// the `interface <ifaceName> { ... }` declaration analyzed into the
// model (spec §6(e)), so a typed external call I(addr).method(args) can
// compute an exact selector instead of assuming uint256 throughout.
func (m *moduleCtx) interfaceMethodParams(ifaceName, method string) ([]*evmtype.EvmType, bool) {
	iface, ok := m.model.Interfaces[ifaceName]
	if !ok {
		return nil, false
	}
	for _, meth := range iface.Methods {
		if meth.Name == method {
			types := make([]*evmtype.EvmType, len(meth.Params))
			for i, p := range meth.Params {
				types[i] = p.Type
			}
			return types, true
		}
	}
	return nil, false
}

// modelTypeContext adapts an already-analyzed ContractModel's enum/struct
// name sets to evmtype.TypeContext, for resolving a type spelling (e.g. a
// call.call<R> generic's R) during lowering, after analysis has already
// collected the name sets.
type modelTypeContext struct{ model *analyzer.ContractModel }

func (c modelTypeContext) IsEnum(name string) bool { return c.model.EnumNames[name] }

func (c modelTypeContext) StructType(name string) (*evmtype.EvmType, bool) {
	if c.model.StructNames[name] {
		return evmtype.StructRef(name), true
	}
	return nil, false
}

// Transform produces the top-level `object "Name" { ... object
// "Name_deployed" { ... } }` shape required by the downstream assembler
// (spec §4.4.1).
func Transform(model *analyzer.ContractModel, bag *diagnostics.Bag) *yul.Object {
	mc := newModuleCtx(model, bag)

	deployedName := model.Name + "_deployed"
	deployedBody := &yul.Block{}

	dispatcher := buildDispatcher(mc)
	deployedBody.Statements = append(deployedBody.Statements, dispatcher)

	for _, fi := range model.Functions {
		deployedBody.Statements = append(deployedBody.Statements, lowerFunction(mc, &fi))
	}
	for _, name := range mc.order {
		deployedBody.Statements = append(deployedBody.Statements, mc.helpers[name])
	}

	deployed := &yul.Object{Name: deployedName, Code: deployedBody}

	creationBody := buildCreationCode(mc, deployedName)

	return &yul.Object{
		Name:       model.Name,
		Code:       creationBody,
		SubObjects: []*yul.Object{deployed},
	}
}

// buildCreationCode lowers the constructor (if any), then copies and
// returns the deployed object's code (spec §4.4.1).
func buildCreationCode(mc *moduleCtx, deployedName string) *yul.Block {
	b := &yul.Block{}
	emitDefaultInits(mc, b)
	if mc.model.Constructor != nil {
		fctx := newFuncCtx(mc, mc.model.Constructor)
		for i, p := range mc.model.Constructor.Params {
			bindConstructorParam(fctx, b, p, i)
		}
		for _, s := range mc.model.Constructor.Body {
			b.Statements = append(b.Statements, lowerStmt(fctx, s)...)
		}
	}
	b.Statements = append(b.Statements,
		&yul.ExprStmt{X: yul.Call("datacopy",
			yul.IntLit(0),
			yul.Call("dataoffset", yul.Str(deployedName)),
			yul.Call("datasize", yul.Str(deployedName)),
		)},
		&yul.ExprStmt{X: yul.Call("return", yul.IntLit(0), yul.Call("datasize", yul.Str(deployedName)))},
	)
	return b
}

// emitDefaultInits writes each storage variable's captured literal
// initializer (spec §3) before the constructor body runs, so an explicit
// non-zero default takes effect even when there is no constructor. A
// zero default is skipped: EVM storage already reads zero, and writing
// it would be a wasted sstore.
func emitDefaultInits(mc *moduleCtx, b *yul.Block) {
	for i := range mc.model.Storage {
		sv := &mc.model.Storage[i]
		if sv.Default == nil || sv.Default.Sign() == 0 {
			continue
		}
		ref := storageRef{Slot: sv.Slot, Transient: sv.Transient, Type: sv.Type}
		b.Statements = append(b.Statements, storeScalar(ref, yul.NumberLit(sv.Default)))
	}
}

// bindConstructorParam decodes one constructor argument, appended after
// the runtime code in the creation-time code region (spec §4.4.1/§4.4.2):
// the assembler places constructor args immediately after the contract's
// own creation bytecode, so they are read via codesize()-relative
// codecopy rather than calldataload.
func bindConstructorParam(fctx *funcCtx, b *yul.Block, p analyzer.Param, i int) {
	n := len(fctx.fn.Params)
	argsStart := yul.Call("sub", yul.Call("codesize"), yul.IntLit(32*n))
	b.Statements = append(b.Statements,
		&yul.ExprStmt{X: yul.Call("codecopy", yul.IntLit(0), yul.Call("add", argsStart, yul.IntLit(32*i)), yul.IntLit(32))},
	)
	fctx.bind(b, p.Name, normalizeLoaded(yul.Call("mload", yul.IntLit(0)), p.Type))
}

// normalizeLoaded applies the §4.4.2 masking/sign-extension rules to an
// already-loaded 32-byte word.
func normalizeLoaded(x yul.Expr, t *evmtype.EvmType) yul.Expr {
	switch t.Kind {
	case evmtype.KindBool:
		return yul.Call("iszero", yul.Call("iszero", x))
	case evmtype.KindUint:
		if t.Bits >= 256 {
			return x
		}
		return yul.Call("and", x, maskLit(t.Bits))
	case evmtype.KindInt:
		if t.Bits >= 256 {
			return x
		}
		return yul.Call("signextend", yul.IntLit(t.Bits/8-1), x)
	case evmtype.KindAddress:
		return yul.Call("and", x, maskLit(160))
	default:
		return x
	}
}

// maskLit renders (1<<bits)-1 as a precomputed literal.
func maskLit(bits int) yul.Expr {
	mask := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(bits)), big.NewInt(1))
	return yul.NumberLit(mask)
}
