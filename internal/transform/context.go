package transform

import (
	"fmt"

	"github.com/example/yulc/internal/analyzer"
	"github.com/example/yulc/internal/yul"
)

// funcCtx carries the per-function lowering state: which surface names are
// already bound to a Yul local, and a counter for synthesized temporaries.
type funcCtx struct {
	mc     *moduleCtx
	fn     *analyzer.FunctionInfo
	locals map[string]bool
	tmp    int

	// inline is true while lowering a public function's body directly
	// into its dispatcher case (spec §4.4.1); false while lowering a
	// standalone named Yul function body for internal (private) calls.
	inline bool
	// returnNames holds the Yul function return-variable names used by
	// non-inline lowering's `return` -> assign+leave translation (spec
	// §4.4.6).
	returnNames []string
}

func newFuncCtx(mc *moduleCtx, fn *analyzer.FunctionInfo) *funcCtx {
	return &funcCtx{mc: mc, fn: fn, locals: map[string]bool{}}
}

// bind appends `let name := value` to b and records name as a known local,
// so later Ident references resolve to a Yul identifier rather than a
// storage field (spec §4.4.2's param-binding convention).
func (f *funcCtx) bind(b *yul.Block, name string, value yul.Expr) {
	b.Statements = append(b.Statements, &yul.LetStmt{Names: []string{name}, Value: value})
	f.locals[name] = true
}

// markLocal registers a name (e.g. a `let` from the surface body or a
// loop induction variable) as already bound without emitting anything.
func (f *funcCtx) markLocal(name string) { f.locals[name] = true }

func (f *funcCtx) isLocal(name string) bool { return f.locals[name] }

func (f *funcCtx) newTemp(prefix string) string {
	f.tmp++
	return fmt.Sprintf("__%s_%d", prefix, f.tmp)
}
