package transform

import (
	"strings"
	"testing"

	"github.com/example/yulc/internal/surface"
	"github.com/example/yulc/internal/yul"
)

func TestReentrancyGuardCallRecognizesEntryAndExit(t *testing.T) {
	enter, ok := reentrancyGuardCall(surface.Ident{Name: "_nonReentrant"})
	if !ok || !enter {
		t.Errorf("bare _nonReentrant() not recognized as guard entry")
	}
	exit, ok := reentrancyGuardCall(surface.MemberExpr{X: surface.ThisExpr{}, Name: "_endNonReentrant"})
	if !ok || exit {
		t.Errorf("this._endNonReentrant() not recognized as guard exit")
	}
	if _, ok := reentrancyGuardCall(surface.Ident{Name: "transfer"}); ok {
		t.Errorf("unrelated call name incorrectly recognized as a guard call")
	}
}

func TestLowerReentrancyGuardEntryChecksAndSetsSlot(t *testing.T) {
	b := &yul.Block{}
	lowerReentrancyGuard(b, true)
	out := stmtText(b.Statements...)
	if !strings.Contains(out, "if tload(") {
		t.Errorf("guard entry = %q, missing tload check", out)
	}
	if !strings.Contains(out, "revert(0, 0)") {
		t.Errorf("guard entry = %q, missing revert on reentry", out)
	}
	if !strings.Contains(out, "tstore(") || !strings.Contains(out, ", 1)") {
		t.Errorf("guard entry = %q, missing tstore(slot, 1)", out)
	}
}

func TestLowerReentrancyGuardExitClearsSlot(t *testing.T) {
	b := &yul.Block{}
	lowerReentrancyGuard(b, false)
	out := stmtText(b.Statements...)
	if !strings.Contains(out, "tstore(") || !strings.Contains(out, ", 0)") {
		t.Errorf("guard exit = %q, want tstore(slot, 0)", out)
	}
}
