package passes

import (
	"github.com/cwbudde/go-nyx/diag"
	"github.com/cwbudde/go-nyx/ir"
	"github.com/cwbudde/go-nyx/pass"
)

// MethodAnalysis walks a Class: any Function whose name equals the
// enclosing class's name is tagged as constructor; every Function and
// Lambda directly in the class body is tagged as method. A Lambda named
// like the class is a LambdaConstructor diagnostic (lambdas can never be
// constructors). Inside a constructor, a `return` with a non-nil operand
// is a NonNilReturnInConstructor diagnostic.
type MethodAnalysis struct{}

func (MethodAnalysis) Name() string { return "method-analysis" }

func (MethodAnalysis) Visit(n *ir.Node, ctx *pass.Context) (*ir.Node, pass.Verdict) {
	switch n.Kind {
	case ir.Class:
		annotateClassMembers(n, ctx)
	case ir.Return:
		if fn := ctx.CurrentFunction(); fn != nil && fn.IsConstructor && n.Value != nil && n.Value.Kind != ir.NilLit {
			ctx.Sink.Emit(diag.New(diag.NonNilReturnInConstructor, n.Span, ctx.Source,
				"constructor %q must not return a non-nil value", fn.Name))
		}
	}
	return n, pass.Keep
}

func annotateClassMembers(cls *ir.Node, ctx *pass.Context) {
	for _, member := range cls.Body {
		switch member.Kind {
		case ir.Function:
			member.IsMethod = true
			if member.Name == cls.Name {
				member.IsConstructor = true
			}
		case ir.Lambda:
			member.IsMethod = true
			// A named lambda (`fun name(args) = expr`) sitting directly in
			// the class body is a constructor candidate just like a named
			// Function; an anonymous lambda can still end up bound to the
			// class name via an assignment, handled in the BinaryExpr case
			// below.
			if member.Name != "" && member.Name == cls.Name {
				ctx.Sink.Emit(diag.New(diag.LambdaConstructor, member.Span, ctx.Source,
					"a lambda cannot serve as constructor for class %q", cls.Name))
			}
		case ir.BinaryExpr:
			if member.Op == ir.OpAssign && member.Right != nil && member.Right.Kind == ir.Lambda &&
				member.Left != nil && member.Left.Kind == ir.Variable && member.Left.Name == cls.Name {
				ctx.Sink.Emit(diag.New(diag.LambdaConstructor, member.Span, ctx.Source,
					"a lambda cannot serve as constructor for class %q", cls.Name))
			}
		}
	}
}
