package transform

import "testing"

func TestLowerIdentMaxU256ResolvesToFullMask(t *testing.T) {
	fctx := &funcCtx{locals: map[string]bool{}}
	got := exprText(lowerIdent(fctx, "MAX_U256"))
	want := exprText(maskLit(256))
	if got != want {
		t.Errorf("lowerIdent(MAX_U256) = %q, want %q", got, want)
	}
}
