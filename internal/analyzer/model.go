// Package analyzer walks a parsed class (surface.Program) and produces a
// ContractModel: storage layout, functions, constructor, events, and
// resolved custom type names (spec §4.3). Consumed immutably by
// internal/transform.
package analyzer

import (
	"math/big"

	"github.com/example/yulc/internal/evmtype"
	"github.com/example/yulc/internal/surface"
)

type Visibility int

const (
	Public Visibility = iota
	Private
)

type Mutability int

const (
	Pure Mutability = iota
	View
	NonPayable
	Payable
)

func (m Mutability) String() string {
	switch m {
	case Pure:
		return "pure"
	case View:
		return "view"
	case Payable:
		return "payable"
	default:
		return "nonpayable"
	}
}

// StorageVariable is { name, type, slot, defaultValue? } (spec §3).
type StorageVariable struct {
	Name      string
	Type      *evmtype.EvmType
	Slot      *big.Int
	Transient bool
	Default   *big.Int // nil if no literal default captured
}

// Param is a resolved, typed function parameter.
type Param struct {
	Name string
	Type *evmtype.EvmType
}

// FunctionInfo is { name, params, returnType?, visibility, mutability,
// isConstructor, selector } (spec §3).
type FunctionInfo struct {
	Name          string
	Params        []Param
	ReturnType    *evmtype.EvmType // nil if void
	Visibility    Visibility
	Mutability    Mutability
	IsConstructor bool
	Selector      string // "" for non-public and for the constructor
	Body          []surface.Stmt
}

// EventField is a resolved, typed event field.
type EventField struct {
	Name    string
	Type    *evmtype.EvmType
	Indexed bool
}

// EventSchema is { name, fields } (spec §3); up to 3 indexed fields.
// FieldName is the declaring storage field's own name (e.g. `ev` in
// `@event ev: Transfer;`) — distinct from Name, the event interface's own
// type name — since a surface-level `this.<fieldName>.emit(...)` refers
// to the field, not the type.
type EventSchema struct {
	Name      string
	FieldName string
	Fields    []EventField
}

func (e *EventSchema) IndexedCount() int {
	n := 0
	for _, f := range e.Fields {
		if f.Indexed {
			n++
		}
	}
	return n
}

// InterfaceMethod is a resolved, typed method signature declared inside
// an `interface I { ... }` block (spec §6(e)): the parameter types a
// typed external call `I(addr).method(args)` needs to compute an exact
// 4-byte selector, as opposed to the untyped `call.call<R>` form.
type InterfaceMethod struct {
	Name   string
	Params []Param
}

// InterfaceInfo is a resolved interface declaration: its name plus its
// resolved method signatures.
type InterfaceInfo struct {
	Name    string
	Methods []InterfaceMethod
}

// ContractModel is { name, storage, functions, constructor?, events,
// enumNames, structNames } (spec §3), plus the resolved interface
// declarations typed external calls select against. Owned by the
// analyzer, consumed immutably by the transformer.
type ContractModel struct {
	Name        string
	Storage     []StorageVariable
	Functions   []FunctionInfo
	Constructor *FunctionInfo
	Events      []EventSchema
	EnumNames   map[string]bool
	StructNames map[string]bool
	Interfaces  map[string]InterfaceInfo
}
