// Package pass implements the rewriting visitor that threads a sequence of
// semantic/transform passes over an ir.Node tree: at each node every
// registered pass may keep, replace, or delete it, and a replacement
// restarts dispatch so later passes see the final node.
package pass

import (
	"fmt"

	"github.com/cwbudde/go-nyx/diag"
	"github.com/cwbudde/go-nyx/ir"
)

// Verdict is what a Pass decides to do with the node it was just handed.
type Verdict int

const (
	Keep Verdict = iota
	Replace
	Delete
)

// Context is the transient state the driver carries across one traversal.
// It holds no node, only enclosing-scope bookkeeping a pass may need (the
// source this design is grounded on keeps cyclic parent pointers out of
// the tree entirely and threads this kind of context through the visitor
// instead).
type Context struct {
	Sink   diag.Sink
	Source string

	FuncStack  []*ir.Node // enclosing Function/Lambda nodes, innermost last
	ClassStack []*ir.Node // enclosing Class nodes, innermost last
	LoopDepth  int
}

func (c *Context) emit(id diag.ID, n *ir.Node, format string, args ...any) {
	if c.Sink == nil {
		return
	}
	c.Sink.Emit(diag.New(id, n.Span, c.Source, format, args...))
}

func (c *Context) CurrentFunction() *ir.Node {
	if len(c.FuncStack) == 0 {
		return nil
	}
	return c.FuncStack[len(c.FuncStack)-1]
}

func (c *Context) CurrentClass() *ir.Node {
	if len(c.ClassStack) == 0 {
		return nil
	}
	return c.ClassStack[len(c.ClassStack)-1]
}

// Pass is a single visitor in the pipeline. Visit is called once per node
// per pass, in pre-order; it returns the node to keep in that slot
// (possibly a different node than it was given) and a Verdict describing
// what happened. Passes that only annotate the tree (set IsConstructor,
// IsMethod, etc. in place) return (n, Keep).
type Pass interface {
	Name() string
	Visit(n *ir.Node, ctx *Context) (*ir.Node, Verdict)
}

// Manager runs a registered, ordered list of passes over a tree.
type Manager struct {
	passes []Pass
}

func NewManager(passes ...Pass) *Manager {
	return &Manager{passes: passes}
}

func (m *Manager) AddPass(p Pass) { m.passes = append(m.passes, p) }
func (m *Manager) Passes() []Pass { return m.passes }

// Run rewrites root in place (root is returned unless a pass tries to
// replace or delete it, which is rejected: Module is structural).
func (m *Manager) Run(root *ir.Node, ctx *Context) *ir.Node {
	return m.visitRequired(root, ctx, "module")
}

// tryReplace loops the node through every registered pass. If a pass
// returns Replace, it recursively re-dispatches the replacement through
// the full pass list from the top — "restart dispatch on the new node" —
// so a later pass sees the final shape a earlier pass produced, not the
// original.
func (m *Manager) tryReplace(n *ir.Node, ctx *Context) (*ir.Node, Verdict) {
	for _, p := range m.passes {
		replacement, verdict := p.Visit(n, ctx)
		switch verdict {
		case Keep:
			continue
		case Delete:
			return nil, Delete
		case Replace:
			if n.Kind.IsStructural() {
				panic(fmt.Sprintf("pass %q attempted to replace structural node %s", p.Name(), n.Kind))
			}
			return m.tryReplace(replacement, ctx)
		}
	}
	return n, Keep
}

// visitRequired visits a single-reference child that may not be deleted
// (a condition, a callee, a function body slot that must remain a node).
// what names the field for the panic message if a pass tries to delete it
// anyway.
func (m *Manager) visitRequired(n *ir.Node, ctx *Context, what string) *ir.Node {
	if n == nil {
		return nil
	}
	replacement, verdict := m.tryReplace(n, ctx)
	if verdict == Delete {
		panic(fmt.Sprintf("pass attempted to delete required child %q", what))
	}
	m.recurseChildren(replacement, ctx)
	return replacement
}

// visitOptional is like visitRequired but the slot may legitimately be
// empty (an else-branch, a finally block, a default expression).
func (m *Manager) visitOptional(n *ir.Node, ctx *Context) *ir.Node {
	if n == nil {
		return nil
	}
	replacement, verdict := m.tryReplace(n, ctx)
	if verdict == Delete {
		return nil
	}
	m.recurseChildren(replacement, ctx)
	return replacement
}

// visitBody visits an ordered, removable sequence of nodes (a block body,
// a catch list, a case list): deleted entries are erased in place, kept
// or replaced entries continue to be visited for their own children.
func (m *Manager) visitBody(nodes []*ir.Node, ctx *Context) []*ir.Node {
	out := nodes[:0]
	for _, child := range nodes {
		replacement, verdict := m.tryReplace(child, ctx)
		if verdict == Delete {
			continue
		}
		m.recurseChildren(replacement, ctx)
		out = append(out, replacement)
	}
	return out
}
