package pass

import "github.com/cwbudde/go-nyx/ir"

// recurseChildren dispatches into n's children per its Kind, matching the
// concrete visit(Module&)/visit(Class&)/visit(If&)/... methods in the
// visitor this design is grounded on. Class and Function/Lambda push
// and pop the enclosing-scope stacks in ctx so passes can find "am I
// inside a function" / "what class am I in" without parent pointers on
// the node itself.
func (m *Manager) recurseChildren(n *ir.Node, ctx *Context) {
	if n == nil {
		return
	}
	switch n.Kind {
	case ir.Module:
		n.Body = m.visitBody(n.Body, ctx)

	case ir.Space:
		n.Body = m.visitBody(n.Body, ctx)

	case ir.Class:
		ctx.ClassStack = append(ctx.ClassStack, n)
		for i := range n.Parents {
			n.Parents[i] = m.visitRequired(n.Parents[i], ctx, "class parent")
		}
		n.Body = m.visitBody(n.Body, ctx)
		ctx.ClassStack = ctx.ClassStack[:len(ctx.ClassStack)-1]

	case ir.Function, ir.Lambda:
		ctx.FuncStack = append(ctx.FuncStack, n)
		for i := range n.Args {
			n.Args[i] = m.visitRequired(n.Args[i], ctx, "argument")
		}
		n.Body = m.visitBody(n.Body, ctx)
		ctx.FuncStack = ctx.FuncStack[:len(ctx.FuncStack)-1]

	case ir.Argument:
		for i := range n.Types {
			n.Types[i] = m.visitRequired(n.Types[i], ctx, "argument type")
		}
		n.Default = m.visitOptional(n.Default, ctx)

	case ir.If:
		n.Cond = m.visitRequired(n.Cond, ctx, "if condition")
		n.Body = m.visitBody(n.Body, ctx)
		n.ElseBranch = m.visitOptional(n.ElseBranch, ctx)

	case ir.Else:
		n.Body = m.visitBody(n.Body, ctx)

	case ir.Switch:
		n.Cond = m.visitRequired(n.Cond, ctx, "switch condition")
		n.Cases = m.visitBody(n.Cases, ctx)

	case ir.Case:
		for i := range n.CaseValues {
			n.CaseValues[i] = m.visitRequired(n.CaseValues[i], ctx, "case value")
		}
		n.Body = m.visitBody(n.Body, ctx)

	case ir.While, ir.DoWhile:
		ctx.LoopDepth++
		n.Cond = m.visitRequired(n.Cond, ctx, "loop condition")
		n.Body = m.visitBody(n.Body, ctx)
		ctx.LoopDepth--

	case ir.ForLoop:
		ctx.LoopDepth++
		n.Iterator = m.visitRequired(n.Iterator, ctx, "for iterator")
		n.Collection = m.visitRequired(n.Collection, ctx, "for collection")
		n.Body = m.visitBody(n.Body, ctx)
		ctx.LoopDepth--

	case ir.Try:
		n.Body = m.visitBody(n.Body, ctx)
		n.Catches = m.visitBody(n.Catches, ctx)
		n.FinallyBlock = m.visitOptional(n.FinallyBlock, ctx)

	case ir.Catch:
		n.ExceptionArg = m.visitOptional(n.ExceptionArg, ctx)
		n.Body = m.visitBody(n.Body, ctx)

	case ir.Finally:
		n.Body = m.visitBody(n.Body, ctx)

	case ir.Import, ir.Break, ir.Continue, ir.EndOfFile:
		// no node-valued children

	case ir.Assert:
		n.Cond = m.visitRequired(n.Cond, ctx, "assert condition")
		n.Message = m.visitOptional(n.Message, ctx)

	case ir.Raise:
		n.Exception = m.visitRequired(n.Exception, ctx, "raise exception")

	case ir.Return:
		n.Value = m.visitOptional(n.Value, ctx)

	case ir.Annotation:
		for i := range n.AnnotationArgs {
			n.AnnotationArgs[i] = m.visitRequired(n.AnnotationArgs[i], ctx, "annotation argument")
		}

	case ir.Enum:
		for i := range n.EnumValues {
			n.EnumValues[i] = m.visitRequired(n.EnumValues[i], ctx, "enum value")
		}

	case ir.BinaryExpr:
		n.Left = m.visitOptional(n.Left, ctx) // nil for prefix `::name`
		n.Right = m.visitRequired(n.Right, ctx, "binary right operand")

	case ir.UnaryExpr:
		n.Left = m.visitRequired(n.Left, ctx, "unary operand")

	case ir.Multivar:
		for i := range n.Vars {
			n.Vars[i] = m.visitRequired(n.Vars[i], ctx, "multivar target")
		}

	case ir.TernaryIf:
		n.Cond = m.visitRequired(n.Cond, ctx, "ternary condition")
		n.Then = m.visitRequired(n.Then, ctx, "ternary then")
		n.ElseVal = m.visitRequired(n.ElseVal, ctx, "ternary else")

	case ir.Range:
		n.Start = m.visitRequired(n.Start, ctx, "range start")
		n.End = m.visitRequired(n.End, ctx, "range end")
		n.Second = m.visitOptional(n.Second, ctx)

	case ir.Call:
		n.Callee = m.visitRequired(n.Callee, ctx, "call callee")
		for i := range n.Args {
			n.Args[i] = m.visitRequired(n.Args[i], ctx, "call argument")
		}

	case ir.List:
		if n.IsComprehension {
			n.Result = m.visitRequired(n.Result, ctx, "comprehension result")
			for i := range n.Iterators {
				n.Iterators[i] = m.visitRequired(n.Iterators[i], ctx, "comprehension iterator")
			}
			n.Cond = m.visitOptional(n.Cond, ctx)
			n.ElseResult = m.visitOptional(n.ElseResult, ctx)
		} else {
			for i := range n.Elements {
				n.Elements[i] = m.visitRequired(n.Elements[i], ctx, "list element")
			}
		}

	case ir.Dict:
		for i := range n.Keys {
			n.Keys[i] = m.visitRequired(n.Keys[i], ctx, "dict key")
			n.Values[i] = m.visitRequired(n.Values[i], ctx, "dict value")
		}

	case ir.Note:
		n.Left = m.visitRequired(n.Left, ctx, "note body")

	case ir.Variable, ir.AllSymbols, ir.ThisLit, ir.SuperLit, ir.OperatorLit,
		ir.IntLit, ir.FloatLit, ir.BoolLit, ir.StringLit, ir.NilLit:
		// leaves, no children
	}
}
