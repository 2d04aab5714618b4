// Package passes implements the representative semantic/transform passes
// named by SPEC_FULL.md: constant folding, dead-code elimination,
// dead-branch elimination, method analysis, function analysis, and
// expression analysis.
package passes

import (
	"math"

	"github.com/cwbudde/go-nyx/ir"
	"github.com/cwbudde/go-nyx/pass"
	"github.com/cwbudde/go-nyx/token"
)

// ConstantFolding folds a BinaryExpr whose operands are both literals into
// the single literal that equals the runtime evaluation. Mixed Int/Float
// arithmetic promotes to Float; integer division truncates; float modulo
// uses fmod; bitwise ops only fold for Int/Bool (never Float); string
// comparisons are lexicographic; `in` on two strings is substring
// containment; nil is never folded.
type ConstantFolding struct{}

func (ConstantFolding) Name() string { return "constant-folding" }

func (cf ConstantFolding) Visit(n *ir.Node, ctx *pass.Context) (*ir.Node, pass.Verdict) {
	if n.Kind != ir.BinaryExpr {
		return n, pass.Keep
	}
	if n.Left == nil || !isLiteral(n.Left) || !isLiteral(n.Right) {
		return n, pass.Keep
	}
	folded := fold(n)
	if folded == nil {
		return n, pass.Keep
	}
	folded.Span = n.Span
	return folded, pass.Replace
}

func isLiteral(n *ir.Node) bool {
	switch n.Kind {
	case ir.IntLit, ir.FloatLit, ir.BoolLit, ir.StringLit:
		return true
	default:
		return false
	}
}

func fold(n *ir.Node) *ir.Node {
	l, r := n.Left, n.Right

	if l.Kind == ir.StringLit && r.Kind == ir.StringLit {
		return foldStrings(n.Op, l.StringValue, r.StringValue)
	}

	if n.Op.IsBitwise() {
		return foldBitwise(n.Op, l, r)
	}

	if isNumeric(l) && isNumeric(r) {
		return foldNumeric(n.Op, l, r)
	}

	if l.Kind == ir.BoolLit && r.Kind == ir.BoolLit && isComparison(n.Op) {
		return foldComparableBool(n.Op, l.BoolValue, r.BoolValue)
	}

	return nil
}

func isNumeric(n *ir.Node) bool { return n.Kind == ir.IntLit || n.Kind == ir.FloatLit }

func isComparison(op ir.Operator) bool {
	switch op {
	case ir.OpEq, ir.OpNeq:
		return true
	default:
		return false
	}
}

func asFloat(n *ir.Node) float64 {
	if n.Kind == ir.IntLit {
		return float64(n.IntValue)
	}
	return n.FloatValue
}

func foldNumeric(op ir.Operator, l, r *ir.Node) *ir.Node {
	bothInt := l.Kind == ir.IntLit && r.Kind == ir.IntLit

	switch op {
	case ir.OpAdd, ir.OpSub, ir.OpMul, ir.OpDiv, ir.OpMod, ir.OpPow:
		if bothInt {
			a, b := l.IntValue, r.IntValue
			switch op {
			case ir.OpAdd:
				return ir.NewIntLit(a+b, token.Span{})
			case ir.OpSub:
				return ir.NewIntLit(a-b, token.Span{})
			case ir.OpMul:
				return ir.NewIntLit(a*b, token.Span{})
			case ir.OpDiv:
				if b == 0 {
					return nil
				}
				return ir.NewIntLit(a/b, token.Span{}) // integer division
			case ir.OpMod:
				if b == 0 {
					return nil
				}
				return ir.NewIntLit(a%b, token.Span{})
			case ir.OpPow:
				return ir.NewFloatLit(math.Pow(float64(a), float64(b)), token.Span{})
			}
		}
		a, b := asFloat(l), asFloat(r)
		switch op {
		case ir.OpAdd:
			return ir.NewFloatLit(a+b, token.Span{})
		case ir.OpSub:
			return ir.NewFloatLit(a-b, token.Span{})
		case ir.OpMul:
			return ir.NewFloatLit(a*b, token.Span{})
		case ir.OpDiv:
			return ir.NewFloatLit(a/b, token.Span{})
		case ir.OpMod:
			return ir.NewFloatLit(math.Mod(a, b), token.Span{}) // fmod for floats
		case ir.OpPow:
			return ir.NewFloatLit(math.Pow(a, b), token.Span{})
		}
	case ir.OpEq, ir.OpNeq, ir.OpLt, ir.OpLe, ir.OpGt, ir.OpGe:
		a, b := asFloat(l), asFloat(r)
		var v bool
		switch op {
		case ir.OpEq:
			v = a == b
		case ir.OpNeq:
			v = a != b
		case ir.OpLt:
			v = a < b
		case ir.OpLe:
			v = a <= b
		case ir.OpGt:
			v = a > b
		case ir.OpGe:
			v = a >= b
		}
		return ir.NewBoolLit(v, token.Span{})
	}
	return nil
}

func foldBitwise(op ir.Operator, l, r *ir.Node) *ir.Node {
	toInt := func(n *ir.Node) (int64, bool) {
		switch n.Kind {
		case ir.IntLit:
			return n.IntValue, true
		case ir.BoolLit:
			if n.BoolValue {
				return 1, true
			}
			return 0, true
		default:
			return 0, false
		}
	}
	a, ok1 := toInt(l)
	b, ok2 := toInt(r)
	if !ok1 || !ok2 {
		// A bitwise op reaching here on a Float operand is an internal
		// invariant violation: the parser's/analysis validator should
		// already have rejected it before constant folding runs.
		return nil
	}
	if l.Kind == ir.BoolLit && r.Kind == ir.BoolLit {
		var v bool
		switch op {
		case ir.OpAnd:
			v = l.BoolValue && r.BoolValue
		case ir.OpOr:
			v = l.BoolValue || r.BoolValue
		case ir.OpXor:
			v = l.BoolValue != r.BoolValue
		}
		return ir.NewBoolLit(v, token.Span{})
	}
	var v int64
	switch op {
	case ir.OpAnd:
		v = a & b
	case ir.OpOr:
		v = a | b
	case ir.OpXor:
		v = a ^ b
	}
	return ir.NewIntLit(v, token.Span{})
}

func foldStrings(op ir.Operator, a, b string) *ir.Node {
	switch op {
	case ir.OpConcat:
		return ir.NewStringLit(a+b, token.Span{})
	case ir.OpEq:
		return ir.NewBoolLit(a == b, token.Span{})
	case ir.OpNeq:
		return ir.NewBoolLit(a != b, token.Span{})
	case ir.OpLt:
		return ir.NewBoolLit(a < b, token.Span{})
	case ir.OpLe:
		return ir.NewBoolLit(a <= b, token.Span{})
	case ir.OpGt:
		return ir.NewBoolLit(a > b, token.Span{})
	case ir.OpGe:
		return ir.NewBoolLit(a >= b, token.Span{})
	case ir.OpIn:
		return ir.NewBoolLit(stringContains(b, a), token.Span{})
	default:
		return nil
	}
}

func stringContains(haystack, needle string) bool {
	if len(needle) == 0 {
		return true
	}
	if len(needle) > len(haystack) {
		return false
	}
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return true
		}
	}
	return false
}

func foldComparableBool(op ir.Operator, a, b bool) *ir.Node {
	switch op {
	case ir.OpEq:
		return ir.NewBoolLit(a == b, token.Span{})
	case ir.OpNeq:
		return ir.NewBoolLit(a != b, token.Span{})
	default:
		return nil
	}
}
