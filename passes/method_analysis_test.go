package passes

import (
	"testing"

	"github.com/cwbudde/go-nyx/diag"
	"github.com/cwbudde/go-nyx/ir"
	"github.com/cwbudde/go-nyx/lexer"
	"github.com/cwbudde/go-nyx/parser"
	"github.com/cwbudde/go-nyx/pass"
	"github.com/cwbudde/go-nyx/token"
)

func runMethodAnalysis(t *testing.T, root *ir.Node) *diag.Collector {
	t.Helper()
	sink := &diag.Collector{}
	m := pass.NewManager(MethodAnalysis{})
	ctx := &pass.Context{Sink: sink, Source: ""}
	m.Run(root, ctx)
	return sink
}

func TestMethodAnalysis_ConstructorNamedAfterClass(t *testing.T) {
	span := token.Span{}
	ctor := ir.NewFunction("Point", nil, nil, span)
	other := ir.NewFunction("move", nil, nil, span)
	cls := ir.NewClass("Point", nil, []*ir.Node{ctor, other}, span)
	mod := ir.NewModule("m", []*ir.Node{cls}, span)

	sink := runMethodAnalysis(t, mod)
	if sink.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", sink.Diagnostics)
	}
	if !ctor.IsMethod || !ctor.IsConstructor {
		t.Fatalf("expected ctor to be flagged IsMethod+IsConstructor, got %+v", ctor)
	}
	if !other.IsMethod || other.IsConstructor {
		t.Fatalf("expected move to be IsMethod only, got %+v", other)
	}
}

func TestMethodAnalysis_NonNilReturnInConstructor(t *testing.T) {
	span := token.Span{}
	ret := ir.New(ir.Return, span)
	ret.Value = ir.NewIntLit(1, span)
	ctor := ir.NewFunction("Point", nil, []*ir.Node{ret}, span)
	cls := ir.NewClass("Point", nil, []*ir.Node{ctor}, span)
	mod := ir.NewModule("m", []*ir.Node{cls}, span)

	sink := runMethodAnalysis(t, mod)
	if len(sink.Diagnostics) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d: %v", len(sink.Diagnostics), sink.Diagnostics)
	}
	if sink.Diagnostics[0].ID != diag.NonNilReturnInConstructor {
		t.Fatalf("expected NonNilReturnInConstructor, got %s", sink.Diagnostics[0].ID)
	}
}

func TestMethodAnalysis_NilReturnInConstructorAllowed(t *testing.T) {
	span := token.Span{}
	ret := ir.New(ir.Return, span)
	ret.Value = ir.NewNilLit(span)
	ctor := ir.NewFunction("Point", nil, []*ir.Node{ret}, span)
	cls := ir.NewClass("Point", nil, []*ir.Node{ctor}, span)
	mod := ir.NewModule("m", []*ir.Node{cls}, span)

	sink := runMethodAnalysis(t, mod)
	if sink.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", sink.Diagnostics)
	}
}

func TestMethodAnalysis_LambdaConstructorAssignment(t *testing.T) {
	span := token.Span{}
	lambda := ir.New(ir.Lambda, span)
	target := ir.NewVariable("Point", false, span)
	assign := ir.NewBinary(ir.OpAssign, target, lambda, span)
	cls := ir.NewClass("Point", nil, []*ir.Node{assign}, span)
	mod := ir.NewModule("m", []*ir.Node{cls}, span)

	sink := runMethodAnalysis(t, mod)
	if len(sink.Diagnostics) != 1 || sink.Diagnostics[0].ID != diag.LambdaConstructor {
		t.Fatalf("expected LambdaConstructor diagnostic, got %v", sink.Diagnostics)
	}
}

func TestMethodAnalysis_NamedLambdaConstructorRejected(t *testing.T) {
	src := "class Point { fun Point() = nil }"
	l := lexer.New("t.nx", src)
	parseColl := &diag.Collector{}
	mod := parser.New(l, "t.nx", src, parseColl).ParseProgram()
	if parseColl.HasErrors() {
		t.Fatalf("unexpected parse errors: %s", parseColl.Format(false))
	}

	cls := mod.Body[0]
	if cls.Kind != ir.Class || len(cls.Body) != 1 || cls.Body[0].Kind != ir.Lambda {
		t.Fatalf("expected a class with one Lambda member, got %s", mod.String())
	}

	sink := runMethodAnalysis(t, mod)
	if len(sink.Diagnostics) != 1 || sink.Diagnostics[0].ID != diag.LambdaConstructor {
		t.Fatalf("expected LambdaConstructor diagnostic, got %v", sink.Diagnostics)
	}
}
