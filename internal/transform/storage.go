package transform

import (
	"math/big"

	"github.com/example/yulc/internal/evmtype"
	"github.com/example/yulc/internal/yul"
)

// loadScalar/storeScalar lower a scalar storage/transient variable (spec
// §4.4.3/§4.4.4): `sload`/`sstore` for @storage, `tload`/`tstore` for
// @transient.
func loadScalar(sv storageRef) yul.Expr {
	slot := yul.NumberLit(sv.Slot)
	if sv.Transient {
		return yul.Call("tload", slot)
	}
	return yul.Call("sload", slot)
}

func storeScalar(sv storageRef, value yul.Expr) yul.Stmt {
	slot := yul.NumberLit(sv.Slot)
	if sv.Transient {
		return &yul.ExprStmt{X: yul.Call("tstore", slot, value)}
	}
	return &yul.ExprStmt{X: yul.Call("sstore", slot, value)}
}

// storageRef is the subset of analyzer.StorageVariable the lowering code
// needs, kept local to avoid a transform->analyzer field-shape coupling
// beyond what is used.
type storageRef struct {
	Slot      *big.Int
	Transient bool
	Type      *evmtype.EvmType
}

// mappingSlot derives the element slot for `base[key]` (spec §4.4.3):
// keccak256(pad32(key) ‖ pad32(baseSlot)), using scratch memory 0x00-0x40
// (free-memory pointer is untouched since this region is reserved
// scratch space, matching the teacher's 11-storage module's use of a
// fixed 64-byte hashing buffer for mapping-slot derivation).
func mappingSlot(fctx *funcCtx, b *yul.Block, key yul.Expr, baseSlot yul.Expr, keyType *evmtype.EvmType) yul.Expr {
	padded := padKey(key, keyType)
	b.Statements = append(b.Statements,
		&yul.ExprStmt{X: yul.Call("mstore", yul.IntLit(0), padded)},
		&yul.ExprStmt{X: yul.Call("mstore", yul.IntLit(32), baseSlot)},
	)
	return yul.Call("keccak256", yul.IntLit(0), yul.IntLit(64))
}

// padKey masks a mapping key narrower than 256 bits before hashing (spec
// §4.4.3: "keys narrower than 256 bits are masked before padding").
func padKey(key yul.Expr, t *evmtype.EvmType) yul.Expr {
	if t == nil {
		return key
	}
	switch t.Kind {
	case evmtype.KindUint:
		if t.Bits < 256 {
			return yul.Call("and", key, maskLit(t.Bits))
		}
	case evmtype.KindAddress:
		return yul.Call("and", key, maskLit(160))
	}
	return key
}

// arrayElemSlot derives the slot of element i of a dynamic array stored at
// baseSlot (spec §4.4.3): keccak256(pad32(baseSlot)) + i, bounds-checked
// against the length word at baseSlot — out-of-range reverts with
// `panic(0x32)` (spec §4.4.3: "Index is bounds-checked if bounds are not
// provably static").
func arrayElemSlot(fctx *funcCtx, b *yul.Block, baseSlot yul.Expr, index yul.Expr) yul.Expr {
	slotTemp := fctx.newTemp("arrslot")
	idxTemp := fctx.newTemp("idx")
	lenTemp := fctx.newTemp("len")
	b.Statements = append(b.Statements,
		&yul.LetStmt{Names: []string{slotTemp}, Value: baseSlot},
		&yul.LetStmt{Names: []string{idxTemp}, Value: index},
		&yul.LetStmt{Names: []string{lenTemp}, Value: yul.Call("sload", yul.Ident(slotTemp))},
		&yul.IfStmt{
			Cond: yul.Call("iszero", yul.Call("lt", yul.Ident(idxTemp), yul.Ident(lenTemp))),
			Body: revertPanic(0x32),
		},
		&yul.ExprStmt{X: yul.Call("mstore", yul.IntLit(0), yul.Ident(slotTemp))},
	)
	base := yul.Call("keccak256", yul.IntLit(0), yul.IntLit(32))
	return yul.Call("add", base, yul.Ident(idxTemp))
}

// arrayLengthSlot is simply the base slot (spec §4.4.3: "length is at s").
func arrayLengthSlot(baseSlot yul.Expr) yul.Expr { return baseSlot }
