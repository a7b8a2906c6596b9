package surface

import "testing"

func TestHasDecoratorAndFindDecorator(t *testing.T) {
	ds := []Decorator{{Name: "storage"}, {Name: "slot", Args: []string{"5"}}}
	if !HasDecorator(ds, "storage") {
		t.Error("HasDecorator(storage) = false, want true")
	}
	if HasDecorator(ds, "transient") {
		t.Error("HasDecorator(transient) = true, want false")
	}
	d, ok := FindDecorator(ds, "slot")
	if !ok || len(d.Args) != 1 || d.Args[0] != "5" {
		t.Errorf("FindDecorator(slot) = %+v, %v", d, ok)
	}
	if _, ok := FindDecorator(ds, "payable"); ok {
		t.Error("FindDecorator(payable) = ok, want not found")
	}
}

func TestExportedClassFindsOnlyExportedOne(t *testing.T) {
	prog := NewProgram()
	prog.Classes = []Class{
		{Name: "Base", Exported: false},
		{Name: "Token", Exported: true},
	}
	cls, ok := prog.ExportedClass()
	if !ok || cls.Name != "Token" {
		t.Errorf("ExportedClass() = %+v, %v, want Token/true", cls, ok)
	}
}

func TestExportedClassNoneExported(t *testing.T) {
	prog := NewProgram()
	prog.Classes = []Class{{Name: "Base", Exported: false}}
	if _, ok := prog.ExportedClass(); ok {
		t.Error("ExportedClass() = ok, want not found when no class is exported")
	}
}

func TestNewProgramInitializesMaps(t *testing.T) {
	prog := NewProgram()
	if prog.Events == nil || prog.Enums == nil || prog.Structs == nil || prog.Interfaces == nil {
		t.Errorf("NewProgram() left a nil map: %+v", prog)
	}
}
