package analyzer

import (
	"testing"

	"github.com/example/yulc/internal/diagnostics"
	"github.com/example/yulc/internal/evmtype"
	"github.com/example/yulc/internal/parser"
	"github.com/example/yulc/internal/surface"
)

func mustAnalyze(t *testing.T, src string) (*ContractModel, *diagnostics.Bag) {
	t.Helper()
	prog, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	bag := diagnostics.NewBag(nil)
	model := Analyze(prog, bag)
	return model, bag
}

// TestSlotAssignmentSkipsExplicit is spec §8 scenario 4: three storage
// fields with @slot(5) on the middle one must assign {first: 0, middle:
// 5, last: 1} — the auto counter skips 5 without renumbering around it.
func TestSlotAssignmentSkipsExplicit(t *testing.T) {
	src := `
export class C {
    @storage
    first: u256;
    @storage
    @slot(5)
    middle: u256;
    @storage
    last: u256;
}
`
	model, bag := mustAnalyze(t, src)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Strings())
	}
	want := map[string]int64{"first": 0, "middle": 5, "last": 1}
	if len(model.Storage) != 3 {
		t.Fatalf("storage count = %d, want 3", len(model.Storage))
	}
	for _, sv := range model.Storage {
		if sv.Slot.Int64() != want[sv.Name] {
			t.Errorf("slot(%s) = %d, want %d", sv.Name, sv.Slot.Int64(), want[sv.Name])
		}
	}
}

func TestDuplicateSlotIsError(t *testing.T) {
	src := `
export class C {
    @storage
    @slot(0)
    a: u256;
    @storage
    @slot(0)
    b: u256;
}
`
	_, bag := mustAnalyze(t, src)
	if !bag.HasErrors() {
		t.Fatal("expected a duplicate-slot SemanticError")
	}
	found := false
	for _, s := range bag.Strings() {
		if s == "Slot 0 is assigned to both a and b" {
			found = true
		}
	}
	if !found {
		t.Errorf("errors = %v, want duplicate-slot message", bag.Strings())
	}
}

func TestNoContractFoundError(t *testing.T) {
	src := `
class C {
    get(): u256 { return 1; }
}
`
	_, bag := mustAnalyze(t, src)
	got := bag.Strings()
	want := []string{"No contract found. Export a class to define a contract."}
	if len(got) != 1 || got[0] != want[0] {
		t.Errorf("errors = %v, want %v", got, want)
	}
}

func TestMutabilityPrecedence(t *testing.T) {
	src := `
export class C {
    @payable
    @view
    f() {}
    @view
    @pure
    g() {}
    h() {}
}
`
	model, bag := mustAnalyze(t, src)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Strings())
	}
	mutOf := map[string]Mutability{}
	for _, fn := range model.Functions {
		mutOf[fn.Name] = fn.Mutability
	}
	if mutOf["f"] != Payable {
		t.Errorf("f mutability = %v, want payable (payable beats view)", mutOf["f"])
	}
	if mutOf["g"] != View {
		t.Errorf("g mutability = %v, want view (view beats pure)", mutOf["g"])
	}
	if mutOf["h"] != NonPayable {
		t.Errorf("h mutability = %v, want nonpayable default", mutOf["h"])
	}
}

func TestVisibilityAndSelector(t *testing.T) {
	src := `
export class C {
    add(a: u256, b: u256): u256 { return a + b; }
    @internal
    helper() {}
    private priv() {}
}
`
	model, bag := mustAnalyze(t, src)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Strings())
	}
	var add, helper, priv *FunctionInfo
	for i := range model.Functions {
		switch model.Functions[i].Name {
		case "add":
			add = &model.Functions[i]
		case "helper":
			helper = &model.Functions[i]
		case "priv":
			priv = &model.Functions[i]
		}
	}
	if add == nil || add.Visibility != Public || add.Selector != "0x771602f7" {
		t.Errorf("add = %+v, want public with selector 0x771602f7", add)
	}
	if helper == nil || helper.Visibility != Private || helper.Selector != "" {
		t.Errorf("helper = %+v, want private with no selector", helper)
	}
	if priv == nil || priv.Visibility != Private {
		t.Errorf("priv = %+v, want private (private keyword)", priv)
	}
}

func TestMappingAsParamRejected(t *testing.T) {
	src := `
export class C {
    f(m: Mapping<address,u256>) {}
}
`
	_, bag := mustAnalyze(t, src)
	if !bag.HasErrors() {
		t.Fatal("expected mapping-as-parameter SemanticError")
	}
}

func TestEventTooManyIndexedFieldsRejected(t *testing.T) {
	src := `
event Big {
    a: indexed<address>;
    b: indexed<address>;
    c: indexed<address>;
    d: indexed<address>;
}
export class C {
    @event
    ev: Big;
}
`
	_, bag := mustAnalyze(t, src)
	if !bag.HasErrors() {
		t.Fatal("expected event with more than 3 indexed fields to be rejected")
	}
}

func TestEventSchemaResolvesIndexedAndPlain(t *testing.T) {
	src := `
event Transfer {
    from: indexed<address>;
    to: indexed<address>;
    value: u256;
}
export class C {
    @event
    ev: Transfer;
}
`
	model, bag := mustAnalyze(t, src)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Strings())
	}
	if len(model.Events) != 1 {
		t.Fatalf("events = %d, want 1", len(model.Events))
	}
	ev := model.Events[0]
	if ev.Name != "Transfer" || len(ev.Fields) != 3 {
		t.Fatalf("event = %+v", ev)
	}
	if !ev.Fields[0].Indexed || !ev.Fields[1].Indexed || ev.Fields[2].Indexed {
		t.Errorf("indexed flags = %+v", ev.Fields)
	}
	if ev.Fields[2].Type.Kind != evmtype.KindUint || ev.Fields[2].Type.Bits != 256 {
		t.Errorf("value field type = %+v, want uint256", ev.Fields[2].Type)
	}
}

func TestMixinLinearizationOrderAndOverride(t *testing.T) {
	src := `
class Base {
    @storage
    a: u256;
    shared(): u256 { return 1; }
}
export class Child extends Mixin(Base) {
    @storage
    b: u256;
    shared(): u256 { return 2; }
}
`
	model, bag := mustAnalyze(t, src)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Strings())
	}
	if len(model.Storage) != 2 || model.Storage[0].Name != "a" || model.Storage[1].Name != "b" {
		t.Fatalf("storage = %+v, want [a, b] in mixin-then-own order", model.Storage)
	}
	if model.Storage[0].Slot.Int64() != 0 || model.Storage[1].Slot.Int64() != 1 {
		t.Fatalf("slots = %v, %v", model.Storage[0].Slot, model.Storage[1].Slot)
	}
	var shared *FunctionInfo
	for i := range model.Functions {
		if model.Functions[i].Name == "shared" {
			shared = &model.Functions[i]
		}
	}
	if shared == nil {
		t.Fatal("expected overriding shared() to remain in the function table")
	}
	retStmt, ok := shared.Body[0].(surface.ReturnStmt)
	if !ok || len(retStmt.Values) != 1 {
		t.Fatalf("shared() body = %+v, want a single return", shared.Body)
	}
	lit, ok := retStmt.Values[0].(surface.IntLit)
	if !ok || lit.Text != "2" {
		t.Errorf("shared() returns %+v, want literal 2 (child override, not base)", retStmt.Values[0])
	}
}

// TestInterfaceMethodsResolveRealParamTypes confirms an `interface I {
// ... }` declaration's method parameter types survive analysis into
// ContractModel.Interfaces (spec §6(e)) instead of being discarded, so a
// typed external call I(addr).method(args) can compute an exact selector.
func TestInterfaceMethodsResolveRealParamTypes(t *testing.T) {
	src := `
interface IERC20 {
  transfer(to: address, amount: u256): bool;
}

export class C {
  doTransfer(t: address, a: u256) {}
}
`
	model, bag := mustAnalyze(t, src)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Strings())
	}
	iface, ok := model.Interfaces["IERC20"]
	if !ok {
		t.Fatal("missing IERC20 in model.Interfaces")
	}
	if len(iface.Methods) != 1 || iface.Methods[0].Name != "transfer" {
		t.Fatalf("IERC20 methods = %+v, want a single transfer method", iface.Methods)
	}
	params := iface.Methods[0].Params
	if len(params) != 2 {
		t.Fatalf("transfer params = %+v, want 2", params)
	}
	if params[0].Type.Kind != evmtype.KindAddress {
		t.Errorf("transfer param 0 type = %v, want address", params[0].Type.Kind)
	}
	if params[1].Type.Kind != evmtype.KindUint || params[1].Type.Bits != 256 {
		t.Errorf("transfer param 1 type = %+v, want uint256", params[1].Type)
	}
}
