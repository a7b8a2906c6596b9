package evmtype

import "testing"

func TestParseScalars(t *testing.T) {
	tests := []struct {
		spelling string
		want     *EvmType
	}{
		{"bool", Bool()},
		{"address", Address()},
		{"bytes", DynBytes()},
		{"string", StringT()},
		{"u256", Uint(256)},
		{"i128", Int(128)},
		{"Uint<256>", Uint(256)},
		{"Int<8>", Int(8)},
		{"Bytes<32>", FixedBytes(32)},
		{"bytes32", FixedBytes(32)},
		{"u256[]", Array(Uint(256))},
		{"CalldataArray<address>", Array(Address())},
		{"Mapping<address,u256>", Mapping(Address(), Uint(256))},
	}
	for _, tt := range tests {
		got, err := Parse(tt.spelling, nil)
		if err != nil {
			t.Fatalf("Parse(%q): %v", tt.spelling, err)
		}
		if !Equal(got, tt.want) {
			t.Errorf("Parse(%q) = %+v, want %+v", tt.spelling, got, tt.want)
		}
	}
}

func TestParseInvalidBits(t *testing.T) {
	if _, err := Parse("u7", nil); err == nil {
		t.Fatal("expected error for non-multiple-of-8 bit width")
	}
	if _, err := Parse("u264", nil); err == nil {
		t.Fatal("expected error for bit width > 256")
	}
	if _, err := Parse("bytes33", nil); err == nil {
		t.Fatal("expected error for bytes size > 32")
	}
}

type fakeCtx struct {
	enums   map[string]bool
	structs map[string]*EvmType
}

func (c fakeCtx) IsEnum(name string) bool { return c.enums[name] }
func (c fakeCtx) StructType(name string) (*EvmType, bool) {
	t, ok := c.structs[name]
	return t, ok
}

func TestParseUserDeclaredNames(t *testing.T) {
	ctx := fakeCtx{
		enums:   map[string]bool{"Status": true},
		structs: map[string]*EvmType{"Point": Tuple(Uint(256), Uint(256))},
	}
	got, err := Parse("Status", ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got.Kind != KindEnum || got.Name != "Status" {
		t.Errorf("Parse(Status) = %+v", got)
	}
	got, err = Parse("Point", ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !Equal(got, Tuple(Uint(256), Uint(256))) {
		t.Errorf("Parse(Point) = %+v", got)
	}
}

func TestParseUnknownType(t *testing.T) {
	if _, err := Parse("Frobnicator", nil); err == nil {
		t.Fatal("expected error for unknown type with no context")
	}
}

func TestToSolidityType(t *testing.T) {
	tests := []struct {
		in   *EvmType
		want string
	}{
		{Uint(256), "uint256"},
		{Int(8), "int8"},
		{Bool(), "bool"},
		{Address(), "address"},
		{FixedBytes(32), "bytes32"},
		{DynBytes(), "bytes"},
		{StringT(), "string"},
		{Array(Uint(256)), "uint256[]"},
		{Tuple(Uint(256), Address()), "(uint256,address)"},
		{EnumRef("Status"), "uint8"},
		{StructRef("Point"), "uint256"},
	}
	for _, tt := range tests {
		got, err := ToSolidityType(tt.in)
		if err != nil {
			t.Fatalf("ToSolidityType(%+v): %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ToSolidityType(%+v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestToSolidityTypeMappingUnsupported(t *testing.T) {
	if _, err := ToSolidityType(Mapping(Address(), Uint(256))); err == nil {
		t.Fatal("expected error: mapping has no ABI representation")
	}
}

// TestRoundTrip covers spec's fromSolidityType(toSolidityType(t)) == t
// property for every type that carries its own identity through the ABI
// spelling (i.e. excluding enum/struct, whose ABI shadow type is lossy).
func TestRoundTrip(t *testing.T) {
	cases := []*EvmType{
		Uint(256), Uint(8), Int(128), Bool(), Address(),
		FixedBytes(1), FixedBytes(32), DynBytes(), StringT(),
		Array(Uint(256)), Array(Address()),
		Tuple(Uint(256), Address(), Bool()),
	}
	for _, want := range cases {
		sol, err := ToSolidityType(want)
		if err != nil {
			t.Fatalf("ToSolidityType(%+v): %v", want, err)
		}
		got, err := FromSolidityType(sol, nil)
		if err != nil {
			t.Fatalf("FromSolidityType(%q): %v", sol, err)
		}
		if !Equal(got, want) {
			t.Errorf("round-trip %q: got %+v, want %+v", sol, got, want)
		}
	}
}

func TestIsDynamicAndWordSize(t *testing.T) {
	if Uint(256).IsDynamic() {
		t.Error("uint256 should not be dynamic")
	}
	if !DynBytes().IsDynamic() {
		t.Error("bytes should be dynamic")
	}
	if !Array(Uint(256)).IsDynamic() {
		t.Error("dynamic array should be dynamic")
	}
	if Array(Uint(256)).WordSize() != 1 {
		t.Error("dynamic type occupies exactly one head word")
	}
	tup := Tuple(Uint(256), Bool())
	if tup.IsDynamic() {
		t.Error("tuple of statics should not be dynamic")
	}
	if tup.WordSize() != 2 {
		t.Errorf("static 2-element tuple should occupy 2 words, got %d", tup.WordSize())
	}
	dynTup := Tuple(Uint(256), DynBytes())
	if !dynTup.IsDynamic() {
		t.Error("tuple containing a dynamic element should be dynamic")
	}
}
