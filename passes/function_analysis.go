package passes

import (
	"github.com/cwbudde/go-nyx/diag"
	"github.com/cwbudde/go-nyx/ir"
	"github.com/cwbudde/go-nyx/pass"
)

// FunctionAnalysis validates a Function/Lambda's argument list (no
// duplicate names, no non-default argument trailing a vararg), checks
// `@generator`/`@converter` annotation arity, and flags a `return`
// reached with no enclosing function.
type FunctionAnalysis struct{}

func (FunctionAnalysis) Name() string { return "function-analysis" }

func (FunctionAnalysis) Visit(n *ir.Node, ctx *pass.Context) (*ir.Node, pass.Verdict) {
	switch n.Kind {
	case ir.Function, ir.Lambda:
		checkArgs(n, ctx)
		for _, ann := range n.Annotations {
			checkAnnotationArity(ann, ctx)
		}
	case ir.Return:
		if ctx.CurrentFunction() == nil {
			ctx.Sink.Emit(diag.New(diag.ReturnOutsideFunction, n.Span, ctx.Source,
				"return used outside of a function"))
		}
	}
	return n, pass.Keep
}

func checkArgs(fn *ir.Node, ctx *pass.Context) {
	seen := make(map[string]struct{}, len(fn.Args))
	varargSeen := false
	for _, arg := range fn.Args {
		if _, dup := seen[arg.Name]; dup {
			ctx.Sink.Emit(diag.New(diag.DuplicateArg, arg.Span, ctx.Source,
				"duplicate argument name %q", arg.Name))
		}
		seen[arg.Name] = struct{}{}

		if varargSeen && !arg.IsVararg && arg.Default == nil {
			ctx.Sink.Emit(diag.New(diag.NonDefaultArgAfterVararg, arg.Span, ctx.Source,
				"argument %q without a default cannot follow a vararg argument", arg.Name))
		}
		if arg.IsVararg {
			varargSeen = true
		}
	}
}

// checkAnnotationArity enforces the shape `@generator`/`@converter` expect:
// `@generator` takes no arguments, `@converter(src, dst)` takes exactly one
// (the conversion target).
func checkAnnotationArity(ann *ir.Node, ctx *pass.Context) {
	switch ann.Name {
	case "generator":
		if len(ann.AnnotationArgs) != 0 {
			ctx.Sink.Emit(diag.New(diag.BadGeneratorAnnotation, ann.Span, ctx.Source,
				"@generator takes no arguments"))
		}
	case "converter":
		if len(ann.AnnotationArgs) != 1 {
			ctx.Sink.Emit(diag.New(diag.BadConverterAnnotation, ann.Span, ctx.Source,
				"@converter takes exactly one argument"))
		}
	}
}
