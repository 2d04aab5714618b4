package passes

import (
	"github.com/cwbudde/go-nyx/diag"
	"github.com/cwbudde/go-nyx/ir"
	"github.com/cwbudde/go-nyx/pass"
)

// ExpressionAnalysis validates shapes the parser accepts more loosely than
// the language allows: the right operand of `.` must not be a non-local
// (`$name`) Variable, and a Call's named arguments (Args entries shaped as
// BinaryExpr(OpAssign, Variable, value)) must not repeat a name.
type ExpressionAnalysis struct{}

func (ExpressionAnalysis) Name() string { return "expression-analysis" }

func (ExpressionAnalysis) Visit(n *ir.Node, ctx *pass.Context) (*ir.Node, pass.Verdict) {
	switch n.Kind {
	case ir.BinaryExpr:
		if n.Op == ir.OpAccess {
			checkAccessOperand(n, ctx)
		}
	case ir.Call:
		checkNamedArgs(n, ctx)
	}
	return n, pass.Keep
}

func checkAccessOperand(access *ir.Node, ctx *pass.Context) {
	right := access.Right
	if right != nil && right.Kind == ir.Variable && right.NonLocal {
		ctx.Sink.Emit(diag.New(diag.IncorrectAccessSyntax, right.Span, ctx.Source,
			"member name after '.' cannot be a non-local ($) reference"))
	}
}

// checkNamedArgs re-derives, per call, which Args entries are named
// (BinaryExpr(OpAssign, Variable, value)) and flags a name reused within
// the same call. A fresh map per Call keeps this independent of argument
// order and of any other call on the same line.
func checkNamedArgs(call *ir.Node, ctx *pass.Context) {
	seen := make(map[string]struct{})
	for _, arg := range call.Args {
		if arg.Kind != ir.BinaryExpr || arg.Op != ir.OpAssign {
			continue
		}
		target := arg.Left
		if target == nil || target.Kind != ir.Variable {
			continue
		}
		if _, dup := seen[target.Name]; dup {
			ctx.Sink.Emit(diag.New(diag.DuplicateNamedArg, arg.Span, ctx.Source,
				"duplicate named argument %q", target.Name))
		}
		seen[target.Name] = struct{}{}
	}
}
