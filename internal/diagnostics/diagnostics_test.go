package diagnostics

import "testing"

func TestDiagnosticErrorFormatsKindAndNode(t *testing.T) {
	d := NewSemanticError("Foo", "bad thing")
	want := "SemanticError: bad thing (Foo)"
	if got := d.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestDiagnosticErrorOmitsEmptyNode(t *testing.T) {
	d := NewParseError("unexpected token %s", "}")
	want := "ParseError: unexpected token }"
	if got := d.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestBagAccumulatesWithoutAborting(t *testing.T) {
	bag := NewBag(nil)
	bag.Add(NewSemanticError("A", "first error"))
	bag.Add(NewUnsupportedError("B", "second error"))
	if !bag.HasErrors() {
		t.Fatal("HasErrors() = false after two Adds")
	}
	if len(bag.Errors()) != 2 {
		t.Fatalf("len(Errors()) = %d, want 2", len(bag.Errors()))
	}
}

// TestBagStringsOmitsKindPrefix is spec §8 scenario 6: the facade's
// errors list must be the bare message, not the Kind-prefixed Error() form.
func TestBagStringsOmitsKindPrefix(t *testing.T) {
	bag := NewBag(nil)
	bag.Add(NewSemanticError("", "No contract found. Export a class to define a contract."))
	got := bag.Strings()
	if len(got) != 1 {
		t.Fatalf("len(Strings()) = %d, want 1", len(got))
	}
	want := "No contract found. Export a class to define a contract."
	if got[0] != want {
		t.Errorf("Strings()[0] = %q, want %q", got[0], want)
	}
}

func TestBagStringsEmptyWhenNoDiagnostics(t *testing.T) {
	bag := NewBag(nil)
	if got := bag.Strings(); len(got) != 0 {
		t.Errorf("Strings() = %v, want empty", got)
	}
	if bag.HasErrors() {
		t.Error("HasErrors() = true on empty bag")
	}
}

func TestKindStrings(t *testing.T) {
	tests := []struct {
		k    Kind
		want string
	}{
		{KindParse, "ParseError"},
		{KindSemantic, "SemanticError"},
		{KindUnsupported, "UnsupportedError"},
		{KindToolchain, "ToolchainError"},
		{KindInternal, "InternalError"},
	}
	for _, tt := range tests {
		if got := tt.k.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.k, got, tt.want)
		}
	}
}
