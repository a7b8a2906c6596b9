package builtin

import "testing"

func TestLookupKnown(t *testing.T) {
	tests := []struct {
		name    string
		arity   int
		returns int
	}{
		{"add", 2, 1},
		{"sstore", 2, 0},
		{"keccak256", 2, 1},
		{"log3", 5, 0},
		{"dataoffset", 1, 1},
		{"stop", 0, 0},
	}
	for _, tt := range tests {
		b, ok := Lookup(tt.name)
		if !ok {
			t.Fatalf("Lookup(%s) not found", tt.name)
		}
		if b.Arity != tt.arity || b.Returns != tt.returns {
			t.Errorf("Lookup(%s) = %+v, want arity %d returns %d", tt.name, b, tt.arity, tt.returns)
		}
	}
}

func TestLookupUnknown(t *testing.T) {
	if _, ok := Lookup("notarealopcode"); ok {
		t.Error("Lookup(notarealopcode) = ok, want not found")
	}
	if IsBuiltin("notarealopcode") {
		t.Error("IsBuiltin(notarealopcode) = true, want false")
	}
}

func TestIsBuiltin(t *testing.T) {
	if !IsBuiltin("mstore") {
		t.Error("IsBuiltin(mstore) = false, want true")
	}
}

func TestAllContainsEveryEntry(t *testing.T) {
	all := All()
	names := map[string]bool{}
	for _, b := range all {
		names[b.Name] = true
	}
	for _, want := range []string{"add", "sload", "call", "log4", "linkersymbol"} {
		if !names[want] {
			t.Errorf("All() missing %s", want)
		}
	}
}
