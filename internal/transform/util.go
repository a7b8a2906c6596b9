package transform

import (
	"math/big"
	"strings"

	"github.com/example/yulc/internal/diagnostics"
	"github.com/example/yulc/internal/surface"
)

func parseLiteralBigInt(text string) (*big.Int, bool) {
	s := strings.TrimSuffix(strings.TrimSpace(text), "n")
	return new(big.Int).SetString(s, 10)
}

func unsupportedExpr(e surface.Expr) *diagnostics.Diagnostic {
	return diagnostics.NewUnsupportedError("", "unsupported expression: %T", e)
}

func unsupportedBinOp(op string) *diagnostics.Diagnostic {
	return diagnostics.NewUnsupportedError("", "unsupported binary operator: %s", op)
}

func unsupportedNode(node, msg string) *diagnostics.Diagnostic {
	return diagnostics.NewUnsupportedError(node, "%s", msg)
}
