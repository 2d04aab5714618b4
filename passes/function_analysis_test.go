package passes

import (
	"testing"

	"github.com/cwbudde/go-nyx/diag"
	"github.com/cwbudde/go-nyx/ir"
	"github.com/cwbudde/go-nyx/pass"
	"github.com/cwbudde/go-nyx/token"
)

func runFunctionAnalysis(t *testing.T, root *ir.Node) *diag.Collector {
	t.Helper()
	sink := &diag.Collector{}
	m := pass.NewManager(FunctionAnalysis{})
	ctx := &pass.Context{Sink: sink, Source: ""}
	m.Run(root, ctx)
	return sink
}

func TestFunctionAnalysis_DuplicateArg(t *testing.T) {
	span := token.Span{}
	a1 := ir.NewArgument("x", nil, nil, false, span)
	a2 := ir.NewArgument("x", nil, nil, false, span)
	fn := ir.NewFunction("f", []*ir.Node{a1, a2}, nil, span)
	mod := ir.NewModule("m", []*ir.Node{fn}, span)

	sink := runFunctionAnalysis(t, mod)
	if len(sink.Diagnostics) != 1 || sink.Diagnostics[0].ID != diag.DuplicateArg {
		t.Fatalf("expected DuplicateArg diagnostic, got %v", sink.Diagnostics)
	}
}

func TestFunctionAnalysis_NonDefaultArgAfterVararg(t *testing.T) {
	span := token.Span{}
	rest := ir.NewArgument("rest", nil, nil, true, span)
	tail := ir.NewArgument("tail", nil, nil, false, span)
	fn := ir.NewFunction("f", []*ir.Node{rest, tail}, nil, span)
	mod := ir.NewModule("m", []*ir.Node{fn}, span)

	sink := runFunctionAnalysis(t, mod)
	if len(sink.Diagnostics) != 1 || sink.Diagnostics[0].ID != diag.NonDefaultArgAfterVararg {
		t.Fatalf("expected NonDefaultArgAfterVararg diagnostic, got %v", sink.Diagnostics)
	}
}

func TestFunctionAnalysis_DefaultArgAfterVarargAllowed(t *testing.T) {
	span := token.Span{}
	rest := ir.NewArgument("rest", nil, nil, true, span)
	tail := ir.NewArgument("tail", nil, ir.NewIntLit(0, span), false, span)
	fn := ir.NewFunction("f", []*ir.Node{rest, tail}, nil, span)
	mod := ir.NewModule("m", []*ir.Node{fn}, span)

	sink := runFunctionAnalysis(t, mod)
	if sink.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", sink.Diagnostics)
	}
}

func TestFunctionAnalysis_ReturnOutsideFunction(t *testing.T) {
	span := token.Span{}
	ret := ir.New(ir.Return, span)
	mod := ir.NewModule("m", []*ir.Node{ret}, span)

	sink := runFunctionAnalysis(t, mod)
	if len(sink.Diagnostics) != 1 || sink.Diagnostics[0].ID != diag.ReturnOutsideFunction {
		t.Fatalf("expected ReturnOutsideFunction diagnostic, got %v", sink.Diagnostics)
	}
}

func TestFunctionAnalysis_ReturnInsideFunctionAllowed(t *testing.T) {
	span := token.Span{}
	ret := ir.New(ir.Return, span)
	fn := ir.NewFunction("f", nil, []*ir.Node{ret}, span)
	mod := ir.NewModule("m", []*ir.Node{fn}, span)

	sink := runFunctionAnalysis(t, mod)
	if sink.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", sink.Diagnostics)
	}
}

func TestFunctionAnalysis_BadGeneratorAnnotation(t *testing.T) {
	span := token.Span{}
	ann := ir.New(ir.Annotation, span)
	ann.Name = "generator"
	ann.AnnotationArgs = []*ir.Node{ir.NewIntLit(1, span)}
	fn := ir.NewFunction("f", nil, nil, span)
	fn.Annotations = []*ir.Node{ann}
	mod := ir.NewModule("m", []*ir.Node{fn}, span)

	sink := runFunctionAnalysis(t, mod)
	if len(sink.Diagnostics) != 1 || sink.Diagnostics[0].ID != diag.BadGeneratorAnnotation {
		t.Fatalf("expected BadGeneratorAnnotation diagnostic, got %v", sink.Diagnostics)
	}
}

func TestFunctionAnalysis_ConverterWithTwoArgsRejected(t *testing.T) {
	span := token.Span{}
	ann := ir.New(ir.Annotation, span)
	ann.Name = "converter"
	ann.AnnotationArgs = []*ir.Node{ir.NewStringLit("txt", span), ir.NewStringLit("pt", span)}
	fn := ir.NewFunction("f", nil, nil, span)
	fn.Annotations = []*ir.Node{ann}
	mod := ir.NewModule("m", []*ir.Node{fn}, span)

	sink := runFunctionAnalysis(t, mod)
	if len(sink.Diagnostics) != 1 || sink.Diagnostics[0].ID != diag.BadConverterAnnotation {
		t.Fatalf("expected BadConverterAnnotation diagnostic, got %v", sink.Diagnostics)
	}
}

func TestFunctionAnalysis_ConverterWithOneArgAllowed(t *testing.T) {
	span := token.Span{}
	ann := ir.New(ir.Annotation, span)
	ann.Name = "converter"
	ann.AnnotationArgs = []*ir.Node{ir.NewStringLit("pt", span)}
	fn := ir.NewFunction("f", nil, nil, span)
	fn.Annotations = []*ir.Node{ann}
	mod := ir.NewModule("m", []*ir.Node{fn}, span)

	sink := runFunctionAnalysis(t, mod)
	if sink.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", sink.Diagnostics)
	}
}
