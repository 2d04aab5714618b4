package bytecode

import (
	"testing"

	"github.com/cwbudde/go-nyx/diag"
	"github.com/cwbudde/go-nyx/ir"
	"github.com/cwbudde/go-nyx/token"
)

func TestEmitModule_ConstantFoldedAssignment(t *testing.T) {
	span := token.Span{}
	// a = 42 (the shape a constant-folding pass would have already reduced
	// `40 + 2` to before the emitter ever sees it).
	assign := ir.NewBinary(ir.OpAssign, ir.NewVariable("a", false, span), ir.NewIntLit(42, span), span)
	mod := ir.NewModule("m", []*ir.Node{assign}, span)

	e := NewEmitter(&diag.Collector{}, "")
	chunk := e.EmitModule(mod)

	var stores int
	for _, in := range chunk.Code {
		if in.Op == OpMove {
			stores++
		}
	}
	if stores != 1 {
		t.Fatalf("expected exactly 1 store (OpMove into the name slot), got %d: %v", stores, chunk.Code)
	}
	if len(chunk.Constants) != 2 { // the int literal 42, and the name "a"
		t.Fatalf("expected 2 pooled constants, got %d: %v", len(chunk.Constants), chunk.Constants)
	}
}

func TestEmitModule_RegistersResetAcrossFunctions(t *testing.T) {
	span := token.Span{}
	bodyA := []*ir.Node{
		ir.NewBinary(ir.OpAssign, ir.NewVariable("x", false, span), ir.NewIntLit(1, span), span),
		ir.NewBinary(ir.OpAssign, ir.NewVariable("y", false, span), ir.NewIntLit(2, span), span),
	}
	fnA := ir.NewFunction("a", nil, bodyA, span)
	fnB := ir.NewFunction("b", nil, []*ir.Node{
		ir.NewBinary(ir.OpAssign, ir.NewVariable("z", false, span), ir.NewIntLit(3, span), span),
	}, span)
	mod := ir.NewModule("m", []*ir.Node{fnA, fnB}, span)

	e := NewEmitter(&diag.Collector{}, "")
	e.EmitModule(mod)

	if e.currReg != 0 {
		t.Fatalf("expected register pool reset to 0 after last function, got %d", e.currReg)
	}
}

func TestEmitModule_ConstantPoolDeduplicated(t *testing.T) {
	span := token.Span{}
	body := []*ir.Node{
		ir.NewBinary(ir.OpAssign, ir.NewVariable("a", false, span), ir.NewIntLit(7, span), span),
		ir.NewBinary(ir.OpAssign, ir.NewVariable("b", false, span), ir.NewIntLit(7, span), span),
	}
	mod := ir.NewModule("m", body, span)

	e := NewEmitter(&diag.Collector{}, "")
	chunk := e.EmitModule(mod)

	seven := 0
	for _, c := range chunk.Constants {
		if v, ok := c.(int64); ok && v == 7 {
			seven++
		}
	}
	if seven != 1 {
		t.Fatalf("expected literal 7 to be pooled once, appeared %d times in %v", seven, chunk.Constants)
	}
}

// TestEmitModule_ReturnInsideLoopNotCorrupted guards against a regression
// where backpatchLoop rewrote every instruction's A field on sight instead
// of only bare OpJump: a `return` (OpReturn, A=-1 meaning "no value")
// shares its placeholder value with the break sentinel, so a naive scan
// would wrongly rewrite a bare return inside a loop into a jump to the
// loop's break target.
func TestEmitModule_ReturnInsideLoopNotCorrupted(t *testing.T) {
	span := token.Span{}
	ret := ir.New(ir.Return, span)
	loop := ir.New(ir.While, span)
	loop.Cond = ir.NewBoolLit(true, span)
	loop.Body = []*ir.Node{ret}
	fn := ir.NewFunction("f", nil, []*ir.Node{loop}, span)
	mod := ir.NewModule("m", []*ir.Node{fn}, span)

	e := NewEmitter(&diag.Collector{}, "")
	chunk := e.EmitModule(mod)

	var sawReturn bool
	for _, in := range chunk.Code {
		if in.Op == OpReturn {
			sawReturn = true
			if in.A != -1 {
				t.Fatalf("bare return inside loop body was corrupted by loop backpatch: A=%d", in.A)
			}
		}
	}
	if !sawReturn {
		t.Fatalf("expected an OpReturn instruction in the emitted function body")
	}
}

func TestEmitModule_WhileBreakContinueBackpatched(t *testing.T) {
	span := token.Span{}
	brk := ir.New(ir.Break, span)
	cont := ir.New(ir.Continue, span)
	loop := ir.New(ir.While, span)
	loop.Cond = ir.NewBoolLit(true, span)
	loop.Body = []*ir.Node{brk, cont}
	mod := ir.NewModule("m", []*ir.Node{loop}, span)

	e := NewEmitter(&diag.Collector{}, "")
	chunk := e.EmitModule(mod)

	for _, in := range chunk.Code {
		if in.Op != OpJump {
			continue
		}
		if in.A == int(sentinelBreak) || in.A == int(sentinelContinue) {
			t.Fatalf("found unpatched break/continue sentinel in final chunk: %+v", in)
		}
	}
}

func TestEmitModule_ShortCircuitSharesDestinationRegister(t *testing.T) {
	span := token.Span{}
	and := ir.NewBinary(ir.OpLogicalAnd, ir.NewBoolLit(true, span), ir.NewBoolLit(false, span), span)
	assign := ir.NewBinary(ir.OpAssign, ir.NewVariable("a", false, span), and, span)
	mod := ir.NewModule("m", []*ir.Node{assign}, span)

	e := NewEmitter(&diag.Collector{}, "")
	chunk := e.EmitModule(mod)

	var moveDests []int
	for _, in := range chunk.Code {
		if in.Op == OpMove {
			moveDests = append(moveDests, in.A)
		}
	}
	if len(moveDests) < 2 {
		t.Fatalf("expected at least 2 OpMove instructions for the short-circuit phi, got %d", len(moveDests))
	}
	if moveDests[0] != moveDests[1] {
		t.Fatalf("expected both short-circuit branches to write the same destination register, got %d and %d",
			moveDests[0], moveDests[1])
	}
}

func TestEmitModule_AnonymousLambdaBuildsAndLoadsBinding(t *testing.T) {
	span := token.Span{}
	ret := ir.New(ir.Return, span)
	ret.Value = ir.NewIntLit(4, span)
	lambda := ir.NewLambda("", nil, []*ir.Node{ret}, span)
	assign := ir.NewBinary(ir.OpAssign, ir.NewVariable("f", false, span), lambda, span)
	mod := ir.NewModule("m", []*ir.Node{assign}, span)

	e := NewEmitter(&diag.Collector{}, "")
	chunk := e.EmitModule(mod)

	var sawBuild, sawLoad bool
	for i, in := range chunk.Code {
		if in.Op == OpBuildFunction {
			sawBuild = true
			if i+1 >= len(chunk.Code) || chunk.Code[i+1].Op != OpLoadAttr || chunk.Code[i+1].B != in.A {
				t.Fatalf("expected OpBuildFunction to be followed by an OpLoadAttr of the same name slot, got %+v", chunk.Code[i:])
			}
			sawLoad = true
		}
	}
	if !sawBuild || !sawLoad {
		t.Fatalf("expected OpBuildFunction+OpLoadAttr pair for the lambda, got %v", chunk.Code)
	}

	var sawAnon bool
	for _, c := range chunk.Constants {
		if s, ok := c.(string); ok && s == "<lambda1>" {
			sawAnon = true
		}
	}
	if !sawAnon {
		t.Fatalf("expected auto-generated anonymous lambda name in constant pool, got %v", chunk.Constants)
	}
}

func TestEmitModule_NamedLambdaUsesItsOwnName(t *testing.T) {
	span := token.Span{}
	ret := ir.New(ir.Return, span)
	ret.Value = ir.NewIntLit(4, span)
	lambda := ir.NewLambda("foo2", nil, []*ir.Node{ret}, span)
	mod := ir.NewModule("m", []*ir.Node{lambda}, span)

	e := NewEmitter(&diag.Collector{}, "")
	chunk := e.EmitModule(mod)

	var sawName bool
	for _, c := range chunk.Constants {
		if s, ok := c.(string); ok && s == "foo2" {
			sawName = true
		}
	}
	if !sawName {
		t.Fatalf("expected lambda's own name in constant pool, got %v", chunk.Constants)
	}
}

func TestEmitModule_NoUnresolvedSentinelsRemain(t *testing.T) {
	span := token.Span{}
	cond := ir.NewBinary(ir.OpLt, ir.NewVariable("i", false, span), ir.NewIntLit(10, span), span)
	ifNode := ir.NewIf(cond, []*ir.Node{ir.New(ir.Break, span)}, nil, span)
	loop := ir.New(ir.While, span)
	loop.Cond = ir.NewBoolLit(true, span)
	loop.Body = []*ir.Node{ifNode}
	mod := ir.NewModule("m", []*ir.Node{loop}, span)

	e := NewEmitter(&diag.Collector{}, "")
	chunk := e.EmitModule(mod)

	for i, in := range chunk.Code {
		switch in.Op {
		case OpJump:
			if in.A < 0 {
				t.Fatalf("instruction %d: unresolved jump target %d", i, in.A)
			}
		case OpJumpIfFalse, OpJumpIfTrue:
			if in.A < 0 {
				t.Fatalf("instruction %d: unresolved conditional jump target %d", i, in.A)
			}
		}
	}
}
