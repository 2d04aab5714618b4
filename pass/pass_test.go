package pass

import (
	"testing"

	"github.com/cwbudde/go-nyx/ir"
	"github.com/cwbudde/go-nyx/token"
)

// replaceIntLit replaces every IntLit matching `from` with `to`, once, then
// lets the manager re-dispatch the replacement through the full pass list.
type replaceIntLit struct {
	from, to int64
	hits     int
}

func (p *replaceIntLit) Name() string { return "replace-int-lit" }

func (p *replaceIntLit) Visit(n *ir.Node, ctx *Context) (*ir.Node, Verdict) {
	if n.Kind == ir.IntLit && n.IntValue == p.from {
		p.hits++
		return ir.NewIntLit(p.to, n.Span), Replace
	}
	return n, Keep
}

func TestManager_ReplaceRestartsDispatchThroughFullPipeline(t *testing.T) {
	span := token.Span{}
	lit := ir.NewIntLit(1, span)
	assign := ir.NewBinary(ir.OpAssign, ir.NewVariable("a", false, span), lit, span)
	mod := ir.NewModule("m", []*ir.Node{assign}, span)

	// first pass turns 1 -> 2, second turns 2 -> 3; a single Run call must
	// see the chain all the way through to 3, not stop at 2.
	p1 := &replaceIntLit{from: 1, to: 2}
	p2 := &replaceIntLit{from: 2, to: 3}
	m := NewManager(p1, p2)
	ctx := &Context{}
	m.Run(mod, ctx)

	if assign.Right.IntValue != 3 {
		t.Fatalf("expected chained replacement to settle on 3, got %d", assign.Right.IntValue)
	}
	if p1.hits != 1 || p2.hits != 1 {
		t.Fatalf("expected each pass to fire exactly once, got p1=%d p2=%d", p1.hits, p2.hits)
	}
}

type deleteStmt struct{ kind ir.Kind }

func (p *deleteStmt) Name() string { return "delete-stmt" }

func (p *deleteStmt) Visit(n *ir.Node, ctx *Context) (*ir.Node, Verdict) {
	if n.Kind == p.kind {
		return nil, Delete
	}
	return n, Keep
}

func TestManager_DeleteRemovesBodyEntry(t *testing.T) {
	span := token.Span{}
	keep := ir.New(ir.Break, span)
	drop := ir.New(ir.Continue, span)
	mod := ir.NewModule("m", []*ir.Node{keep, drop}, span)

	m := NewManager(&deleteStmt{kind: ir.Continue})
	m.Run(mod, &Context{})

	if len(mod.Body) != 1 || mod.Body[0] != keep {
		t.Fatalf("expected only the Break statement to survive, got %v", mod.Body)
	}
}

type replaceStructural struct{}

func (replaceStructural) Name() string { return "replace-structural" }

func (replaceStructural) Visit(n *ir.Node, ctx *Context) (*ir.Node, Verdict) {
	if n.Kind == ir.Module {
		return ir.NewModule("other", nil, n.Span), Replace
	}
	return n, Keep
}

func TestManager_RunPanicsOnReplacingStructuralRoot(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic when a pass tries to replace the structural Module root")
		}
	}()
	span := token.Span{}
	mod := ir.NewModule("m", nil, span)
	m := NewManager(replaceStructural{})
	m.Run(mod, &Context{})
}

func TestContext_CurrentFunctionAndClassStacks(t *testing.T) {
	ctx := &Context{}
	if ctx.CurrentFunction() != nil {
		t.Fatalf("expected nil CurrentFunction on empty stack")
	}
	if ctx.CurrentClass() != nil {
		t.Fatalf("expected nil CurrentClass on empty stack")
	}

	span := token.Span{}
	fn := ir.NewFunction("f", nil, nil, span)
	ctx.FuncStack = append(ctx.FuncStack, fn)
	if ctx.CurrentFunction() != fn {
		t.Fatalf("expected CurrentFunction to return the pushed function")
	}
}
