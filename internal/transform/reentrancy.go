package transform

import (
	"math/big"

	"golang.org/x/crypto/sha3"

	"github.com/example/yulc/internal/surface"
	"github.com/example/yulc/internal/yul"
)

// reentrancyGuardSlot is the dedicated transient-storage slot
// `_nonReentrant`/`_endNonReentrant` read and write (spec §4.4.7).
// Transient storage (EIP-1153) is a key space entirely separate from
// persistent storage, so a namespaced hash constant here never collides
// with an `@storage`/`@slot(N)` slot; it is derived exactly the way the
// teacher's 11-storage/09-events modules derive mapping/topic hashes, via
// golang.org/x/crypto/sha3.
var reentrancyGuardSlot = func() *big.Int {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte("yulc.reentrancy.guard"))
	return new(big.Int).SetBytes(h.Sum(nil))
}()

// reentrancyGuardCall recognizes `this._nonReentrant()`/`_nonReentrant()`
// (guard entry) and `this._endNonReentrant()`/`_endNonReentrant()` (guard
// exit). enter reports which one; ok reports whether fn named either.
func reentrancyGuardCall(fn surface.Expr) (enter bool, ok bool) {
	name := ""
	switch f := fn.(type) {
	case surface.Ident:
		name = f.Name
	case surface.MemberExpr:
		if _, isThis := f.X.(surface.ThisExpr); isThis {
			name = f.Name
		}
	}
	switch name {
	case "_nonReentrant":
		return true, true
	case "_endNonReentrant":
		return false, true
	default:
		return false, false
	}
}

// lowerReentrancyGuard lowers the guard entry/exit to `tload`/`tstore` on
// the guard slot with a `require(!locked)` check on entry (spec §4.4.7).
func lowerReentrancyGuard(b *yul.Block, enter bool) {
	slot := yul.NumberLit(reentrancyGuardSlot)
	if !enter {
		b.Statements = append(b.Statements, &yul.ExprStmt{X: yul.Call("tstore", slot, yul.IntLit(0))})
		return
	}
	b.Statements = append(b.Statements,
		&yul.IfStmt{
			Cond: yul.Call("tload", slot),
			Body: plainRevert(),
		},
		&yul.ExprStmt{X: yul.Call("tstore", slot, yul.IntLit(1))},
	)
}
