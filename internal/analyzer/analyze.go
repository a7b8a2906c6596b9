package analyzer

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/example/yulc/internal/abi"
	"github.com/example/yulc/internal/diagnostics"
	"github.com/example/yulc/internal/evmtype"
	"github.com/example/yulc/internal/surface"
)

// typeCtx resolves enum/struct names for evmtype.Parse (spec §4.1, §4.3
// point 1: "Collect enum names and struct-like type names ... before any
// type resolution").
type typeCtx struct {
	enums   map[string]bool
	structs map[string]*evmtype.EvmType
}

func (c *typeCtx) IsEnum(name string) bool { return c.enums[name] }

func (c *typeCtx) StructType(name string) (*evmtype.EvmType, bool) {
	t, ok := c.structs[name]
	return t, ok
}

// Analyze walks prog and produces a ContractModel, accumulating
// diagnostics instead of aborting on the first error (spec §7).
func Analyze(prog *surface.Program, bag *diagnostics.Bag) *ContractModel {
	cls, ok := prog.ExportedClass()
	if !ok {
		bag.Add(diagnostics.NewSemanticError("", "No contract found. Export a class to define a contract."))
		return nil
	}

	merged, err := linearizeMixins(prog, cls)
	if err != nil {
		bag.Add(diagnostics.NewSemanticError(cls.Name, "%s", err.Error()))
		return nil
	}

	tc := &typeCtx{enums: map[string]bool{}, structs: map[string]*evmtype.EvmType{}}
	for name := range prog.Enums {
		tc.enums[name] = true
	}
	for name := range prog.Structs {
		tc.structs[name] = evmtype.StructRef(name)
	}

	model := &ContractModel{
		Name:        merged.Name,
		EnumNames:   map[string]bool{},
		StructNames: map[string]bool{},
		Interfaces:  map[string]InterfaceInfo{},
	}
	for name := range prog.Enums {
		model.EnumNames[name] = true
	}
	for name := range prog.Structs {
		model.StructNames[name] = true
	}

	analyzeStorage(merged, tc, model, bag)
	analyzeFunctions(merged, tc, model, bag)
	analyzeEvents(prog, merged, tc, model, bag)
	analyzeInterfaces(prog, tc, model, bag)

	return model
}

func analyzeStorage(cls *surface.Class, tc *typeCtx, model *ContractModel, bag *diagnostics.Bag) {
	type pending struct {
		prop      surface.Property
		transient bool
		explicit  *big.Int // nil if auto
	}
	var items []pending
	explicitSlots := map[string]*big.Int{} // slot.String() -> slot, skipped by the auto counter
	explicitOwner := map[string]string{}   // slot.String() -> first owner name, for duplicate detection

	for _, prop := range cls.Properties {
		isStorage := surface.HasDecorator(prop.Decorators, "storage")
		isTransient := surface.HasDecorator(prop.Decorators, "transient")
		isEvent := surface.HasDecorator(prop.Decorators, "event")
		if isEvent || (!isStorage && !isTransient) {
			continue
		}
		var explicit *big.Int
		if d, ok := surface.FindDecorator(prop.Decorators, "slot"); ok && len(d.Args) == 1 {
			n, ok := parseBigInt(d.Args[0])
			if !ok {
				bag.Add(diagnostics.NewSemanticError(prop.Name, "invalid @slot argument: %s", d.Args[0]))
				continue
			}
			explicit = n
			key := n.String()
			if owner, dup := explicitOwner[key]; dup {
				bag.Add(diagnostics.NewSemanticError(prop.Name, "Slot %s is assigned to both %s and %s", key, owner, prop.Name))
			} else {
				explicitOwner[key] = prop.Name
				explicitSlots[key] = n
			}
		}
		items = append(items, pending{prop: prop, transient: isTransient, explicit: explicit})
	}

	counter := big.NewInt(0)
	nextAuto := func() *big.Int {
		for {
			if _, taken := explicitSlots[counter.String()]; !taken {
				slot := new(big.Int).Set(counter)
				counter.Add(counter, big.NewInt(1))
				return slot
			}
			counter.Add(counter, big.NewInt(1))
		}
	}

	for _, it := range items {
		t, err := evmtype.Parse(it.prop.Type.Spelling, tc)
		if err != nil {
			bag.Add(diagnostics.NewSemanticError(it.prop.Name, "%s", err.Error()))
			continue
		}
		var slot *big.Int
		if it.explicit != nil {
			slot = it.explicit
		} else {
			slot = nextAuto()
		}
		sv := StorageVariable{Name: it.prop.Name, Type: t, Slot: slot, Transient: it.transient}
		sv.Default = captureDefault(it.prop.Initializer)
		model.Storage = append(model.Storage, sv)
	}
}

// captureDefault implements spec §3: "Default values are captured only
// from literal initializers (integer, bigint, hex, boolean, negated
// literal, address string); anything else is ignored."
func captureDefault(e surface.Expr) *big.Int {
	switch n := e.(type) {
	case nil:
		return nil
	case surface.IntLit:
		v, ok := new(big.Int).SetString(strings.TrimSuffix(n.Text, "n"), 10)
		if !ok {
			return nil
		}
		return v
	case surface.HexLit:
		txt := strings.TrimPrefix(n.Text, "0x")
		v, ok := new(big.Int).SetString(txt, 16)
		if !ok {
			return nil
		}
		return v
	case surface.BoolLit:
		if n.Value {
			return big.NewInt(1)
		}
		return big.NewInt(0)
	case surface.UnaryExpr:
		if n.Op != "-" {
			return nil
		}
		inner := captureDefault(n.X)
		if inner == nil {
			return nil
		}
		return new(big.Int).Neg(inner)
	case surface.StringLit:
		// Address-string defaults (spec §3) are parsed and validated with
		// go-ethereum's common package, the same helper the teacher's
		// 11-storage module uses for `common.HexToAddress`.
		if common.IsHexAddress(n.Value) {
			return common.HexToAddress(n.Value).Big()
		}
		return nil
	default:
		return nil
	}
}

func parseBigInt(s string) (*big.Int, bool) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "n")
	if strings.HasPrefix(s, "0x") {
		return new(big.Int).SetString(s[2:], 16)
	}
	return new(big.Int).SetString(s, 10)
}

func analyzeFunctions(cls *surface.Class, tc *typeCtx, model *ContractModel, bag *diagnostics.Bag) {
	for _, m := range cls.Methods {
		fi := FunctionInfo{Name: m.Name, IsConstructor: m.IsConstructor, Body: m.Body}

		fi.Mutability = resolveMutability(m.Decorators)
		fi.Visibility = resolveVisibility(m)

		for _, p := range m.Params {
			if p.Name == "this" {
				continue
			}
			t, err := evmtype.Parse(p.Type.Spelling, tc)
			if err != nil {
				bag.Add(diagnostics.NewSemanticError(m.Name, "%s", err.Error()))
				continue
			}
			if t.Kind == evmtype.KindMapping {
				bag.Add(diagnostics.NewSemanticError(m.Name, "mapping used as parameter or return"))
				continue
			}
			fi.Params = append(fi.Params, Param{Name: p.Name, Type: t})
		}

		if m.ReturnType != nil {
			t, err := evmtype.Parse(m.ReturnType.Spelling, tc)
			if err != nil {
				bag.Add(diagnostics.NewSemanticError(m.Name, "%s", err.Error()))
			} else if t.Kind == evmtype.KindMapping {
				bag.Add(diagnostics.NewSemanticError(m.Name, "mapping used as parameter or return"))
			} else {
				fi.ReturnType = t
			}
		}

		if !m.IsConstructor && fi.Visibility == Public {
			paramTypes := make([]*evmtype.EvmType, len(fi.Params))
			for i, p := range fi.Params {
				paramTypes[i] = p.Type
			}
			sel, err := computeSelector(fi.Name, paramTypes)
			if err != nil {
				bag.Add(diagnostics.NewSemanticError(m.Name, "%s", err.Error()))
			} else {
				fi.Selector = sel
			}
		}

		if m.IsConstructor {
			c := fi
			model.Constructor = &c
			continue
		}
		model.Functions = append(model.Functions, fi)
	}
}

func resolveMutability(ds []surface.Decorator) Mutability {
	if surface.HasDecorator(ds, "payable") {
		return Payable
	}
	if surface.HasDecorator(ds, "view") {
		return View
	}
	if surface.HasDecorator(ds, "pure") {
		return Pure
	}
	return NonPayable
}

func resolveVisibility(m surface.Method) Visibility {
	if surface.HasDecorator(m.Decorators, "external") {
		return Public
	}
	if surface.HasDecorator(m.Decorators, "internal") || m.IsPrivateKW {
		return Private
	}
	return Public
}

func analyzeEvents(prog *surface.Program, cls *surface.Class, tc *typeCtx, model *ContractModel, bag *diagnostics.Bag) {
	for _, prop := range cls.Properties {
		if !surface.HasDecorator(prop.Decorators, "event") {
			continue
		}
		schema, ok := prog.Events[prop.Type.Spelling]
		if !ok {
			bag.Add(diagnostics.NewSemanticError(prop.Name, "Unknown event schema: %s", prop.Type.Spelling))
			continue
		}
		es := EventSchema{Name: schema.Name, FieldName: prop.Name}
		indexed := 0
		for _, f := range schema.Fields {
			t, err := evmtype.Parse(f.Type.Spelling, tc)
			if err != nil {
				bag.Add(diagnostics.NewSemanticError(schema.Name, "%s", err.Error()))
				continue
			}
			if f.Indexed {
				indexed++
			}
			es.Fields = append(es.Fields, EventField{Name: f.Name, Type: t, Indexed: f.Indexed})
		}
		if indexed > 3 {
			bag.Add(diagnostics.NewSemanticError(schema.Name, "event with more than 3 indexed fields"))
			continue
		}
		model.Events = append(model.Events, es)
	}
}

// analyzeInterfaces resolves every `interface I { method(...): T }`
// declaration's parameter types (spec §6(e)), so internal/transform can
// compute an exact selector for a typed external call `I(addr).method(
// args)` instead of assuming every argument is uint256.
func analyzeInterfaces(prog *surface.Program, tc *typeCtx, model *ContractModel, bag *diagnostics.Bag) {
	for name, decl := range prog.Interfaces {
		info := InterfaceInfo{Name: name}
		for _, m := range decl.Methods {
			var params []Param
			for _, p := range m.Params {
				if p.Name == "this" {
					continue
				}
				t, err := evmtype.Parse(p.Type.Spelling, tc)
				if err != nil {
					bag.Add(diagnostics.NewSemanticError(name, "%s", err.Error()))
					continue
				}
				params = append(params, Param{Name: p.Name, Type: t})
			}
			info.Methods = append(info.Methods, InterfaceMethod{Name: m.Name, Params: params})
		}
		model.Interfaces[name] = info
	}
}

func computeSelector(name string, params []*evmtype.EvmType) (string, error) {
	return abi.ComputeSelector(name, params)
}
