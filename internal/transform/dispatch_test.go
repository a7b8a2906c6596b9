package transform

import (
	"strings"
	"testing"

	"github.com/example/yulc/internal/diagnostics"
	"github.com/example/yulc/internal/surface"
	"github.com/example/yulc/internal/yul"
)

func TestBuildCalldataSliceHelperBoundsChecksStartAndEnd(t *testing.T) {
	def := buildCalldataSliceHelper()
	out := stmtText(def.Body.Statements...)
	if !strings.Contains(out, "gt(start, end)") {
		t.Errorf("calldata slice helper = %q, missing start>end check", out)
	}
	if !strings.Contains(out, "gt(end, len)") {
		t.Errorf("calldata slice helper = %q, missing end>len check", out)
	}
	if !strings.Contains(out, "mstore(4, 50)") {
		t.Errorf("calldata slice helper = %q, missing panic(0x32) reason code", out)
	}
}

func TestLowerSliceOnlyResolvesCalldataBoundPair(t *testing.T) {
	fctx := &funcCtx{mc: newModuleCtx(nil, diagnostics.NewBag(diagnostics.New(diagnostics.LevelError))), locals: map[string]bool{}}
	b := &yul.Block{}

	if _, _, ok := lowerSlice(fctx, b, surface.SliceExpr{
		X:     surface.Ident{Name: "notBound"},
		Start: surface.IntLit{Text: "0"},
		End:   surface.IntLit{Text: "1"},
	}); ok {
		t.Errorf("lowerSlice resolved a non-calldata-bound identifier")
	}

	fctx.markLocal("data")
	fctx.markLocal("data_len")
	ptr, length, ok := lowerSlice(fctx, b, surface.SliceExpr{
		X:     surface.Ident{Name: "data"},
		Start: surface.IntLit{Text: "0"},
		End:   surface.Ident{Name: "data_len"},
	})
	if !ok {
		t.Fatalf("lowerSlice did not resolve a calldata-bound pointer/length pair")
	}
	if exprText(ptr) == "" || exprText(length) == "" {
		t.Errorf("lowerSlice returned empty pointer/length expressions")
	}
	if _, ok := fctx.mc.helpers[calldataSliceHelperName]; !ok {
		t.Errorf("expected %s helper to be registered", calldataSliceHelperName)
	}
}
