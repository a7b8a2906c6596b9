package transform

import (
	"strings"
	"testing"

	"github.com/example/yulc/internal/analyzer"
	"github.com/example/yulc/internal/diagnostics"
	"github.com/example/yulc/internal/evmtype"
	"github.com/example/yulc/internal/surface"
	"github.com/example/yulc/internal/yul"
)

// ierc20Model is a minimal ContractModel carrying one resolved interface,
// IERC20.transfer(address,uint256), the real ERC-20 transfer signature
// whose selector (0xa9059cbb) is well known, for asserting the typed
// external call path uses real declared types rather than hardcoding
// uint256 for every argument.
func ierc20Model() *analyzer.ContractModel {
	return &analyzer.ContractModel{
		Interfaces: map[string]analyzer.InterfaceInfo{
			"IERC20": {
				Name: "IERC20",
				Methods: []analyzer.InterfaceMethod{
					{Name: "transfer", Params: []analyzer.Param{
						{Name: "to", Type: evmtype.Address()},
						{Name: "amount", Type: evmtype.Uint(256)},
					}},
				},
			},
		},
	}
}

func TestLowerConcatStringLiteralsCopyByteByByte(t *testing.T) {
	fctx := &funcCtx{locals: map[string]bool{}}
	b := &yul.Block{}
	result := lowerConcat(fctx, b, "string", []surface.Expr{
		surface.StringLit{Value: "ab"},
		surface.StringLit{Value: "c"},
	})
	out := stmtText(b.Statements...)
	if !strings.Contains(out, "mstore8(add(") {
		t.Errorf("lowerConcat statements = %q, missing mstore8 byte copy", out)
	}
	if !fctx.isLocal(exprText(result) + "_len") {
		t.Errorf("lowerConcat result pointer %q has no paired _len local", exprText(result))
	}
}

func TestLowerConcatRejectsNonCalldataIdent(t *testing.T) {
	fctx := &funcCtx{mc: newModuleCtx(nil, diagnostics.NewBag(diagnostics.New(diagnostics.LevelError))), locals: map[string]bool{}}
	b := &yul.Block{}
	lowerConcat(fctx, b, "bytes", []surface.Expr{surface.Ident{Name: "notBound"}})
	if !fctx.mc.bag.HasErrors() {
		t.Errorf("expected an UnsupportedError for a non-calldata-bound concat argument")
	}
}

func TestLowerNonRevertingCallHandlesGenericCallHelper(t *testing.T) {
	fctx := &funcCtx{mc: newModuleCtx(nil, diagnostics.NewBag(diagnostics.New(diagnostics.LevelError))), locals: map[string]bool{}}
	b := &yul.Block{}
	call := surface.CallExpr{
		Fn:   surface.MemberExpr{X: surface.Ident{Name: "call"}, Name: "call"},
		Args: []surface.Expr{surface.Ident{Name: "target"}, surface.HexLit{Text: "0x12345678"}},
	}
	fctx.markLocal("target")
	success, ret, ok := lowerNonRevertingCall(fctx, b, call)
	if !ok {
		t.Fatalf("lowerNonRevertingCall did not recognize call.call(...)")
	}
	if exprText(success) == "" || exprText(ret) == "" {
		t.Errorf("lowerNonRevertingCall returned empty success/ret expressions")
	}
	if _, ok := fctx.mc.helpers["__try_call_0"]; !ok {
		t.Errorf("expected __try_call_0 helper to be registered, got %v", fctx.mc.order)
	}
	out := stmtText(fctx.mc.helpers["__try_call_0"].Body.Statements...)
	if strings.Contains(out, "revert") {
		t.Errorf("non-reverting try-call helper body unexpectedly reverts: %q", out)
	}
}

func TestLowerTypedExternalCallUsesInterfaceParamTypes(t *testing.T) {
	fctx := &funcCtx{mc: newModuleCtx(ierc20Model(), diagnostics.NewBag(diagnostics.New(diagnostics.LevelError))), locals: map[string]bool{}}
	b := &yul.Block{}
	fctx.markLocal("target")
	fctx.markLocal("amt")
	ctor := surface.CallExpr{Fn: surface.Ident{Name: "IERC20"}, Args: []surface.Expr{surface.Ident{Name: "target"}}}
	result := lowerTypedExternalCall(fctx, b, ctor, "IERC20", "transfer",
		[]surface.Expr{surface.Ident{Name: "target"}, surface.Ident{Name: "amt"}})
	out := exprText(result)
	if !strings.Contains(out, "0xa9059cbb") {
		t.Errorf("lowerTypedExternalCall(transfer(address,uint256)) = %q, want selector 0xa9059cbb", out)
	}
	if fctx.mc.bag.HasErrors() {
		t.Errorf("unexpected diagnostics: %v", fctx.mc.bag.Strings())
	}
}

func TestLowerTypedExternalCallUnknownMethodIsUnsupported(t *testing.T) {
	fctx := &funcCtx{mc: newModuleCtx(ierc20Model(), diagnostics.NewBag(diagnostics.New(diagnostics.LevelError))), locals: map[string]bool{}}
	b := &yul.Block{}
	fctx.markLocal("target")
	ctor := surface.CallExpr{Fn: surface.Ident{Name: "IERC20"}, Args: []surface.Expr{surface.Ident{Name: "target"}}}
	lowerTypedExternalCall(fctx, b, ctor, "IERC20", "approve", []surface.Expr{surface.Ident{Name: "target"}})
	if !fctx.mc.bag.HasErrors() {
		t.Errorf("expected an UnsupportedError for an interface method not declared on IERC20")
	}
}

func TestLowerNonRevertingCallTypedBranchUsesInterfaceParamTypes(t *testing.T) {
	fctx := &funcCtx{mc: newModuleCtx(ierc20Model(), diagnostics.NewBag(diagnostics.New(diagnostics.LevelError))), locals: map[string]bool{}}
	b := &yul.Block{}
	fctx.markLocal("target")
	fctx.markLocal("amt")
	call := surface.CallExpr{
		Fn: surface.MemberExpr{
			X:    surface.CallExpr{Fn: surface.Ident{Name: "IERC20"}, Args: []surface.Expr{surface.Ident{Name: "target"}}},
			Name: "transfer",
		},
		Args: []surface.Expr{surface.Ident{Name: "target"}, surface.Ident{Name: "amt"}},
	}
	_, _, ok := lowerNonRevertingCall(fctx, b, call)
	if !ok {
		t.Fatalf("lowerNonRevertingCall did not recognize the typed external call form")
	}
	out := stmtText(b.Statements...)
	if !strings.Contains(out, "0xa9059cbb") {
		t.Errorf("__try_call_2 call site = %q, want selector 0xa9059cbb", out)
	}
}

func TestLowerGenericCallNormalizesSignedReturnType(t *testing.T) {
	fctx := &funcCtx{mc: newModuleCtx(&analyzer.ContractModel{}, diagnostics.NewBag(diagnostics.New(diagnostics.LevelError))), locals: map[string]bool{}}
	b := &yul.Block{}
	fctx.markLocal("target")
	call := surface.CallExpr{
		Fn:       surface.MemberExpr{X: surface.Ident{Name: "call"}, Name: "call"},
		Args:     []surface.Expr{surface.Ident{Name: "target"}, surface.HexLit{Text: "0x12345678"}},
		TypeArgs: []surface.TypeRef{{Spelling: "i128"}},
	}
	result := lowerGenericCall(fctx, b, "call", call)
	out := exprText(result)
	if !strings.Contains(out, "signextend(15,") {
		t.Errorf("lowerGenericCall with <i128> = %q, want a signextend sign-normalization of the raw return word", out)
	}
	if inferred := inferType(fctx, call); inferred == nil || inferred.Kind != evmtype.KindInt {
		t.Errorf("inferType(call.call<i128>(...)) = %v, want a signed KindInt", inferred)
	}
}
