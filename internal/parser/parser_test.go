package parser

import (
	"strings"
	"testing"

	"github.com/example/yulc/internal/surface"
)

func TestParseClassWithStorageAndMethod(t *testing.T) {
	src := `
export class Counter {
  @storage
  count: u256 = 0n;

  public increment(): u256 {
    count = count + 1;
    return count;
  }
}
`
	prog, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	cls, ok := prog.ExportedClass()
	if !ok {
		t.Fatal("ExportedClass() = false, want true")
	}
	if cls.Name != "Counter" {
		t.Errorf("class name = %s, want Counter", cls.Name)
	}
	if len(cls.Properties) != 1 || cls.Properties[0].Name != "count" {
		t.Fatalf("Properties = %+v", cls.Properties)
	}
	if !surface.HasDecorator(cls.Properties[0].Decorators, "storage") {
		t.Error("count property missing @storage decorator")
	}
	if len(cls.Methods) != 1 || cls.Methods[0].Name != "increment" {
		t.Fatalf("Methods = %+v", cls.Methods)
	}
	if cls.Methods[0].ReturnType == nil || cls.Methods[0].ReturnType.Spelling != "u256" {
		t.Errorf("increment return type = %+v, want u256", cls.Methods[0].ReturnType)
	}
}

func TestParseMethodWithNoReturnType(t *testing.T) {
	src := `
export class C {
  public doThing() {
    return;
  }
}
`
	prog, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	cls, _ := prog.ExportedClass()
	if cls.Methods[0].ReturnType != nil {
		t.Errorf("ReturnType = %+v, want nil for a method with no ': Type' annotation", cls.Methods[0].ReturnType)
	}
}

func TestParseSlotDecoratorArg(t *testing.T) {
	src := `
export class C {
  @storage
  @slot(5)
  x: u256;
}
`
	prog, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	cls, _ := prog.ExportedClass()
	d, ok := surface.FindDecorator(cls.Properties[0].Decorators, "slot")
	if !ok {
		t.Fatal("missing @slot decorator")
	}
	if len(d.Args) != 1 || d.Args[0] != "5" {
		t.Errorf("@slot args = %v, want [5]", d.Args)
	}
}

func TestParseMixinsFlattenOrder(t *testing.T) {
	src := `
export class Token extends Mixin(Ownable, Pausable) {
  public name(): u256 {
    return 0;
  }
}
`
	prog, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	cls, _ := prog.ExportedClass()
	if len(cls.Mixins) != 2 || cls.Mixins[0] != "Ownable" || cls.Mixins[1] != "Pausable" {
		t.Errorf("Mixins = %v, want [Ownable Pausable]", cls.Mixins)
	}
}

func TestParseEventStructEnumInterface(t *testing.T) {
	src := `
event Transfer {
  from: indexed<address>;
  to: indexed<address>;
  value: u256;
}

struct Point {
  x: u256;
  y: u256;
}

enum Status {
  Active, Paused
}

interface IERC20 {
  balanceOf(owner: address): u256;
}

export class C {
  @event ev: Transfer;
}
`
	prog, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	ev, ok := prog.Events["Transfer"]
	if !ok {
		t.Fatal("missing Transfer event schema")
	}
	if len(ev.Fields) != 3 || !ev.Fields[0].Indexed || !ev.Fields[1].Indexed || ev.Fields[2].Indexed {
		t.Errorf("Transfer fields = %+v, want from/to indexed, value not", ev.Fields)
	}
	if _, ok := prog.Structs["Point"]; !ok {
		t.Error("missing Point struct")
	}
	if en, ok := prog.Enums["Status"]; !ok || len(en.Values) != 2 {
		t.Errorf("Status enum = %+v", en)
	}
	if it, ok := prog.Interfaces["IERC20"]; !ok || len(it.Methods) != 1 {
		t.Errorf("IERC20 interface = %+v", it)
	}
}

func TestParseUnexpectedTokenProducesParseError(t *testing.T) {
	_, err := Parse(`export class C { public f( { } }`)
	if err == nil {
		t.Fatal("expected a ParseError, got nil")
	}
	if !strings.HasPrefix(err.Error(), "ParseError:") {
		t.Errorf("error = %q, want ParseError: prefix", err.Error())
	}
}

func TestParseMappingAndArrayTypeSpellings(t *testing.T) {
	src := `
export class C {
  @storage
  balances: mapping<address, u256>;

  @storage
  items: u256[];
}
`
	prog, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	cls, _ := prog.ExportedClass()
	if cls.Properties[0].Type.Spelling != "mapping<address,u256>" && cls.Properties[0].Type.Spelling != "mapping<address, u256>" {
		t.Errorf("balances type spelling = %q", cls.Properties[0].Type.Spelling)
	}
	if cls.Properties[1].Type.Spelling != "u256[]" {
		t.Errorf("items type spelling = %q, want u256[]", cls.Properties[1].Type.Spelling)
	}
}
