package ir

import (
	"fmt"
	"strconv"
	"strings"
)

// String renders a canonical, parenthesized debug form of the node and its
// children. This is the "debug_print" the round-trip testable property
// (parser tests, see parser/parser_test.go) compares against a reference
// string, so its shape must stay stable once established.
func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	var sb strings.Builder
	n.write(&sb)
	return sb.String()
}

func (n *Node) write(sb *strings.Builder) {
	switch n.Kind {
	case IntLit:
		sb.WriteString(strconv.FormatInt(n.IntValue, 10))
		return
	case FloatLit:
		sb.WriteString(strconv.FormatFloat(n.FloatValue, 'g', -1, 64))
		return
	case BoolLit:
		sb.WriteString(strconv.FormatBool(n.BoolValue))
		return
	case StringLit:
		sb.WriteString(strconv.Quote(n.StringValue))
		return
	case NilLit:
		sb.WriteString("nil")
		return
	case ThisLit:
		sb.WriteString("this")
		return
	case SuperLit:
		sb.WriteString("super")
		return
	case Variable:
		if n.NonLocal {
			sb.WriteString("$")
		}
		sb.WriteString(n.Name)
		return
	}

	sb.WriteByte('(')
	sb.WriteString(n.Kind.String())

	switch n.Kind {
	case BinaryExpr:
		fmt.Fprintf(sb, " %s ", n.Op)
		n.Left.write(sb)
		sb.WriteByte(' ')
		n.Right.write(sb)
	case UnaryExpr:
		fmt.Fprintf(sb, " %s ", n.Op)
		n.Left.write(sb)
	case Call:
		sb.WriteByte(' ')
		n.Callee.write(sb)
		writeList(sb, n.Args)
	case TernaryIf:
		sb.WriteByte(' ')
		n.Cond.write(sb)
		sb.WriteByte(' ')
		n.Then.write(sb)
		sb.WriteByte(' ')
		n.ElseVal.write(sb)
	case Range:
		sb.WriteByte(' ')
		n.Start.write(sb)
		sb.WriteString(" .. ")
		n.End.write(sb)
		if n.Second != nil {
			sb.WriteString(" , ")
			n.Second.write(sb)
		}
	case Argument:
		fmt.Fprintf(sb, " %s", n.Name)
		if n.IsVararg {
			sb.WriteString("...")
		}
		if n.Default != nil {
			sb.WriteString(" = ")
			n.Default.write(sb)
		}
	case List:
		if n.IsComprehension {
			sb.WriteByte(' ')
			n.Result.write(sb)
			sb.WriteString(" for ")
			writeList(sb, n.Iterators)
			if n.Cond != nil {
				sb.WriteString(" if ")
				n.Cond.write(sb)
			}
		} else {
			writeList(sb, n.Elements)
		}
	case Dict:
		sb.WriteByte(' ')
		for i := range n.Keys {
			if i > 0 {
				sb.WriteByte(' ')
			}
			n.Keys[i].write(sb)
			sb.WriteByte(':')
			n.Values[i].write(sb)
		}
	case Multivar:
		writeList(sb, n.Vars)
	case AllSymbols:
		sb.WriteString(" *")
	case Import:
		fmt.Fprintf(sb, " %s", strings.Join(n.Path, "::"))
		if n.ImportAll {
			sb.WriteString("::*")
		}
		if n.ImportAlias != "" {
			fmt.Fprintf(sb, " as %s", n.ImportAlias)
		}
	case Assert:
		sb.WriteByte(' ')
		n.Cond.write(sb)
		if n.Message != nil {
			sb.WriteByte(' ')
			n.Message.write(sb)
		}
	case Raise:
		sb.WriteByte(' ')
		n.Exception.write(sb)
	case Return:
		if n.Value != nil {
			sb.WriteByte(' ')
			n.Value.write(sb)
		}
	case Annotation:
		fmt.Fprintf(sb, " %s", n.Name)
		writeList(sb, n.AnnotationArgs)
	case Module, Space, Class, Function, Lambda:
		fmt.Fprintf(sb, " %s", n.Name)
		if n.Kind == Function || n.Kind == Lambda {
			writeList(sb, n.Args)
		}
		if n.Kind == Class {
			writeList(sb, n.Parents)
		}
		writeBody(sb, n.Body)
	case If:
		sb.WriteByte(' ')
		n.Cond.write(sb)
		writeBody(sb, n.Body)
		if n.ElseBranch != nil {
			sb.WriteByte(' ')
			n.ElseBranch.write(sb)
		}
	case Else:
		writeBody(sb, n.Body)
	case While, DoWhile:
		sb.WriteByte(' ')
		n.Cond.write(sb)
		writeBody(sb, n.Body)
	case ForLoop:
		sb.WriteByte(' ')
		n.Iterator.write(sb)
		sb.WriteString(" in ")
		n.Collection.write(sb)
		writeBody(sb, n.Body)
	case Switch:
		sb.WriteByte(' ')
		n.Cond.write(sb)
		writeList(sb, n.Cases)
	case Case:
		writeList(sb, n.CaseValues)
		if n.IsDefault {
			sb.WriteString(" default")
		}
		writeBody(sb, n.Body)
	case Try:
		writeBody(sb, n.Body)
		writeList(sb, n.Catches)
		if n.FinallyBlock != nil {
			sb.WriteByte(' ')
			n.FinallyBlock.write(sb)
		}
	case Catch:
		if n.ExceptionArg != nil {
			sb.WriteByte(' ')
			n.ExceptionArg.write(sb)
		}
		writeBody(sb, n.Body)
	case Finally:
		writeBody(sb, n.Body)
	case Enum:
		fmt.Fprintf(sb, " %s", n.Name)
		writeList(sb, n.EnumValues)
	case Note:
		fmt.Fprintf(sb, " %s", n.Prefix)
		n.Left.write(sb)
	case EndOfFile, Break, Continue:
		// no payload
	}

	sb.WriteByte(')')
}

func writeList(sb *strings.Builder, nodes []*Node) {
	sb.WriteString(" [")
	for i, c := range nodes {
		if i > 0 {
			sb.WriteByte(' ')
		}
		c.write(sb)
	}
	sb.WriteByte(']')
}

func writeBody(sb *strings.Builder, body []*Node) {
	sb.WriteString(" {")
	for i, c := range body {
		if i > 0 {
			sb.WriteByte(' ')
		}
		c.write(sb)
	}
	sb.WriteByte('}')
}
