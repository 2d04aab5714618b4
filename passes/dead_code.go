package passes

import (
	"github.com/cwbudde/go-nyx/ir"
	"github.com/cwbudde/go-nyx/pass"
	"github.com/cwbudde/go-nyx/token"
)

// DeadCodeElimination truncates a block's body right after the first
// Return/Break/Continue: everything textually following it in that block
// is unreachable. Function bodies truncate after Return; loop and
// branch/handler bodies (ForLoop, While, DoWhile, If, Else, Case, Catch,
// Finally, Try) truncate after Break or Continue.
type DeadCodeElimination struct{}

func (DeadCodeElimination) Name() string { return "dead-code-elimination" }

func (DeadCodeElimination) Visit(n *ir.Node, ctx *pass.Context) (*ir.Node, pass.Verdict) {
	switch n.Kind {
	case ir.Function, ir.Lambda:
		n.Body = truncateAfter(n.Body, ir.Return)
	case ir.ForLoop, ir.While, ir.DoWhile, ir.If, ir.Else, ir.Case, ir.Catch, ir.Finally, ir.Try:
		n.Body = truncateAfter(n.Body, ir.Break, ir.Continue)
	}
	return n, pass.Keep
}

// truncateAfter drops every node in body after the first one whose Kind is
// one of stop.
func truncateAfter(body []*ir.Node, stop ...ir.Kind) []*ir.Node {
	for i, node := range body {
		for _, s := range stop {
			if node.Kind == s {
				return body[:i+1]
			}
		}
	}
	return body
}

// DeadBranchElimination removes statically-unreachable branches:
// `while(false){...}` is deleted entirely; `if(true){A}else{B}` collapses
// to A's body; `if(false){A}` collapses to nothing (no else) or to B's
// body (else present).
type DeadBranchElimination struct{}

func (DeadBranchElimination) Name() string { return "dead-branch-elimination" }

func (DeadBranchElimination) Visit(n *ir.Node, ctx *pass.Context) (*ir.Node, pass.Verdict) {
	switch n.Kind {
	case ir.While:
		if isFalseLiteral(n.Cond) {
			return nil, pass.Delete
		}
	case ir.If:
		if isTrueLiteral(n.Cond) {
			return collapseToBlock(n.Body, n.Span), pass.Replace
		}
		if isFalseLiteral(n.Cond) {
			if n.ElseBranch == nil {
				return nil, pass.Delete
			}
			return collapseToBlock(n.ElseBranch.Body, n.Span), pass.Replace
		}
	}
	return n, pass.Keep
}

func isTrueLiteral(n *ir.Node) bool  { return n != nil && n.Kind == ir.BoolLit && n.BoolValue }
func isFalseLiteral(n *ir.Node) bool { return n != nil && n.Kind == ir.BoolLit && !n.BoolValue }

// collapseToBlock wraps a taken branch's statements in a synthetic Space
// node acting as an anonymous block, since the driver always swaps one
// node for one node — this is simpler and safer than the source's
// move-and-mutate-in-place trick, which relied on C++ ownership transfer
// that doesn't map cleanly onto a tree the driver re-walks.
func collapseToBlock(body []*ir.Node, span token.Span) *ir.Node {
	n := ir.New(ir.Space, span)
	n.Body = body
	return n
}
