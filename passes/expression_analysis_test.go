package passes

import (
	"testing"

	"github.com/cwbudde/go-nyx/diag"
	"github.com/cwbudde/go-nyx/ir"
	"github.com/cwbudde/go-nyx/pass"
	"github.com/cwbudde/go-nyx/token"
)

func runExpressionAnalysis(t *testing.T, root *ir.Node) *diag.Collector {
	t.Helper()
	sink := &diag.Collector{}
	m := pass.NewManager(ExpressionAnalysis{})
	ctx := &pass.Context{Sink: sink, Source: ""}
	m.Run(root, ctx)
	return sink
}

func TestExpressionAnalysis_NonLocalAccessOperand(t *testing.T) {
	span := token.Span{}
	obj := ir.NewVariable("obj", false, span)
	member := ir.NewVariable("field", true, span)
	access := ir.NewBinary(ir.OpAccess, obj, member, span)
	ret := ir.New(ir.Return, span)
	ret.Value = access
	fn := ir.NewFunction("f", nil, []*ir.Node{ret}, span)
	mod := ir.NewModule("m", []*ir.Node{fn}, span)

	sink := runExpressionAnalysis(t, mod)
	if len(sink.Diagnostics) != 1 || sink.Diagnostics[0].ID != diag.IncorrectAccessSyntax {
		t.Fatalf("expected IncorrectAccessSyntax diagnostic, got %v", sink.Diagnostics)
	}
}

func TestExpressionAnalysis_LocalAccessOperandAllowed(t *testing.T) {
	span := token.Span{}
	obj := ir.NewVariable("obj", false, span)
	member := ir.NewVariable("field", false, span)
	access := ir.NewBinary(ir.OpAccess, obj, member, span)
	ret := ir.New(ir.Return, span)
	ret.Value = access
	fn := ir.NewFunction("f", nil, []*ir.Node{ret}, span)
	mod := ir.NewModule("m", []*ir.Node{fn}, span)

	sink := runExpressionAnalysis(t, mod)
	if sink.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", sink.Diagnostics)
	}
}

func TestExpressionAnalysis_DuplicateNamedArg(t *testing.T) {
	span := token.Span{}
	callee := ir.NewVariable("f", false, span)
	namedA := ir.NewBinary(ir.OpAssign, ir.NewVariable("x", false, span), ir.NewIntLit(1, span), span)
	namedB := ir.NewBinary(ir.OpAssign, ir.NewVariable("x", false, span), ir.NewIntLit(2, span), span)
	call := ir.NewCall(callee, []*ir.Node{namedA, namedB}, span)
	ret := ir.New(ir.Return, span)
	ret.Value = call
	fn := ir.NewFunction("f", nil, []*ir.Node{ret}, span)
	mod := ir.NewModule("m", []*ir.Node{fn}, span)

	sink := runExpressionAnalysis(t, mod)
	if len(sink.Diagnostics) != 1 || sink.Diagnostics[0].ID != diag.DuplicateNamedArg {
		t.Fatalf("expected DuplicateNamedArg diagnostic, got %v", sink.Diagnostics)
	}
}

func TestExpressionAnalysis_DistinctNamedArgsAllowed(t *testing.T) {
	span := token.Span{}
	callee := ir.NewVariable("f", false, span)
	namedA := ir.NewBinary(ir.OpAssign, ir.NewVariable("x", false, span), ir.NewIntLit(1, span), span)
	namedB := ir.NewBinary(ir.OpAssign, ir.NewVariable("y", false, span), ir.NewIntLit(2, span), span)
	call := ir.NewCall(callee, []*ir.Node{namedA, namedB}, span)
	ret := ir.New(ir.Return, span)
	ret.Value = call
	fn := ir.NewFunction("f", nil, []*ir.Node{ret}, span)
	mod := ir.NewModule("m", []*ir.Node{fn}, span)

	sink := runExpressionAnalysis(t, mod)
	if sink.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", sink.Diagnostics)
	}
}
