package parser

import (
	"strconv"

	"github.com/cwbudde/go-nyx/diag"
	"github.com/cwbudde/go-nyx/ir"
	"github.com/cwbudde/go-nyx/lexer"
	"github.com/cwbudde/go-nyx/token"
)

// expression is the entry point into the precedence chain. allowSet
// controls whether a bare assignment is permitted at this position (it is
// turned off inside, e.g., call-argument lists parsed as plain
// expressions, matching the grammar's own allow_set plumbing).
func (p *Parser) expression(allowSet bool) *ir.Node {
	return p.unpack(allowSet)
}

func (p *Parser) unpack(allowSet bool) *ir.Node {
	if p.curIsOp("<<") {
		start := p.advance().Span
		operand := p.unpack(allowSet)
		return ir.NewUnary(ir.OpUnpack, operand, spanFrom(start, operand.Span))
	}
	return p.silent(allowSet)
}

func (p *Parser) silent(allowSet bool) *ir.Node {
	if p.curIsPunct("~") {
		start := p.advance().Span
		operand := p.silent(allowSet)
		n := ir.NewUnary(ir.OpSilent, operand, spanFrom(start, operand.Span))
		n.Silent = true
		return n
	}
	return p.assignment(allowSet)
}

var compoundAssignOps = map[string]ir.Operator{
	"=": ir.OpAssign, "+=": ir.OpSetAdd, "-=": ir.OpSetSub,
	"*=": ir.OpSetMul, "/=": ir.OpSetDiv, "%=": ir.OpSetMod, "^=": ir.OpSetPow,
}

// assignment is right-associative: `a = b = c` parses as `a = (b = c)`.
func (p *Parser) assignment(allowSet bool) *ir.Node {
	left := p.ternaryIf()
	if !allowSet {
		return left
	}
	if p.cur().Kind == token.Operator {
		if op, ok := compoundAssignOps[p.cur().Literal]; ok {
			p.advance()
			right := p.assignment(allowSet)
			return ir.NewBinary(op, left, right, spanFrom(left.Span, right.Span))
		}
	}
	return left
}

func (p *Parser) ternaryIf() *ir.Node {
	cond := p.shortCircuit()
	if p.curIsOp("?") || p.curIsPunct("?") {
		p.advance()
		thenExpr := p.expression(false)
		p.expectPunct(":")
		elseExpr := p.ternaryIf()
		n := ir.New(ir.TernaryIf, spanFrom(cond.Span, elseExpr.Span))
		n.Cond, n.Then, n.ElseVal = cond, thenExpr, elseExpr
		return n
	}
	return cond
}

func (p *Parser) shortCircuit() *ir.Node {
	left := p.andOrXor()
	for p.curIsOp("&&") || p.curIsOp("||") {
		op := ir.OpLogicalAnd
		if p.cur().Literal == "||" {
			op = ir.OpLogicalOr
		}
		p.advance()
		right := p.andOrXor()
		left = ir.NewBinary(op, left, right, spanFrom(left.Span, right.Span))
	}
	return left
}

func (p *Parser) andOrXor() *ir.Node {
	left := p.opNot()
	for p.curIsKeyword("and") || p.curIsKeyword("or") || p.curIsKeyword("xor") {
		var op ir.Operator
		switch p.cur().Literal {
		case "and":
			op = ir.OpAnd
		case "or":
			op = ir.OpOr
		case "xor":
			op = ir.OpXor
		}
		p.advance()
		right := p.opNot()
		left = ir.NewBinary(op, left, right, spanFrom(left.Span, right.Span))
	}
	return left
}

func (p *Parser) opNot() *ir.Node {
	if p.curIsKeyword("not") {
		start := p.advance().Span
		operand := p.opNot()
		return ir.NewUnary(ir.OpNot, operand, spanFrom(start, operand.Span))
	}
	return p.eqNeq()
}

func (p *Parser) eqNeq() *ir.Node {
	left := p.compareGL()
	for p.curIsOp("==") || p.curIsOp("!=") {
		op := ir.OpEq
		if p.cur().Literal == "!=" {
			op = ir.OpNeq
		}
		p.advance()
		right := p.compareGL()
		left = ir.NewBinary(op, left, right, spanFrom(left.Span, right.Span))
	}
	return left
}

var compareOps = map[string]ir.Operator{"<": ir.OpLt, "<=": ir.OpLe, ">": ir.OpGt, ">=": ir.OpGe}

func (p *Parser) compareGL() *ir.Node {
	left := p.membership()
	for p.cur().Kind == token.Operator {
		op, ok := compareOps[p.cur().Literal]
		if !ok {
			break
		}
		p.advance()
		right := p.membership()
		left = ir.NewBinary(op, left, right, spanFrom(left.Span, right.Span))
	}
	return left
}

// membership handles `in` and the `not in` two-token form, which requires
// a short backtrack: opNot already consumed a leading `not` as a unary
// operator by the time we get here, so `not in` is instead recognized
// here by peeking past a unary-not node's immediate "in" token before it
// is built — concretely, membership parses its own operand chain without
// going through opNot for its left side's trailing keyword check.
func (p *Parser) membership() *ir.Node {
	left := p.rangeExpr()
	for {
		if p.curIsKeyword("in") {
			p.advance()
			right := p.rangeExpr()
			left = ir.NewBinary(ir.OpIn, left, right, spanFrom(left.Span, right.Span))
			continue
		}
		if p.curIsKeyword("not") && p.peekAt(1).Kind == token.Keyword && p.peekAt(1).Literal == "in" {
			p.advance()
			p.advance()
			right := p.rangeExpr()
			notIn := ir.NewBinary(ir.OpIn, left, right, spanFrom(left.Span, right.Span))
			left = ir.NewUnary(ir.OpNot, notIn, notIn.Span)
			continue
		}
		break
	}
	return left
}

// rangeExpr parses `a..b` and the three-operand `a,b..c` form. When
// lowerRangePrec is set (inside subscripts/call arguments), a comma
// immediately followed by a `..` further down the chain is still picked
// up here because concatenation/additive/etc. never consume a bare comma
// themselves.
func (p *Parser) rangeExpr() *ir.Node {
	start := p.mark()
	first := p.concatenation()
	if p.curIsPunct(",") && p.lowerRangePrec {
		p.advance()
		second := p.concatenation()
		if p.curIsOp("..") {
			p.advance()
			end := p.concatenation()
			n := ir.New(ir.Range, spanFrom(first.Span, end.Span))
			n.Start, n.Second, n.End = first, second, end
			return n
		}
		p.resetTo(start)
		first = p.concatenation()
	}
	if p.curIsOp("..") {
		p.advance()
		end := p.concatenation()
		n := ir.New(ir.Range, spanFrom(first.Span, end.Span))
		n.Start, n.End = first, end
		return n
	}
	return first
}

func (p *Parser) concatenation() *ir.Node {
	left := p.addSub()
	for p.curIsOp("++") {
		p.advance()
		right := p.addSub()
		left = ir.NewBinary(ir.OpConcat, left, right, spanFrom(left.Span, right.Span))
	}
	return left
}

func (p *Parser) addSub() *ir.Node {
	left := p.mulDivMod()
	for p.curIsOp("+") || p.curIsOp("-") {
		op := ir.OpAdd
		if p.cur().Literal == "-" {
			op = ir.OpSub
		}
		p.advance()
		right := p.mulDivMod()
		left = ir.NewBinary(op, left, right, spanFrom(left.Span, right.Span))
	}
	return left
}

func (p *Parser) mulDivMod() *ir.Node {
	left := p.exponent()
	for p.curIsOp("*") || p.curIsOp("/") || p.curIsOp("%") {
		var op ir.Operator
		switch p.cur().Literal {
		case "*":
			op = ir.OpMul
		case "/":
			op = ir.OpDiv
		case "%":
			op = ir.OpMod
		}
		p.advance()
		right := p.exponent()
		left = ir.NewBinary(op, left, right, spanFrom(left.Span, right.Span))
	}
	return left
}

// exponent is right-associative: `a ^ b ^ c` parses as `a ^ (b ^ c)`.
func (p *Parser) exponent() *ir.Node {
	left := p.unaryPlusMinus()
	if p.curIsOp("^") {
		p.advance()
		right := p.exponent()
		return ir.NewBinary(ir.OpPow, left, right, spanFrom(left.Span, right.Span))
	}
	return left
}

func (p *Parser) unaryPlusMinus() *ir.Node {
	if p.curIsOp("+") || p.curIsOp("-") {
		op := ir.OpUnaryPos
		if p.cur().Literal == "-" {
			op = ir.OpUnaryNeg
		}
		start := p.advance().Span
		operand := p.unaryPlusMinus()
		return ir.NewUnary(op, operand, spanFrom(start, operand.Span))
	}
	return p.callAccessSubs(false)
}

// callAccessSubs parses the postfix chain of call/access/subscript
// operators applied to a primary expression.
func (p *Parser) callAccessSubs(allowStar bool) *ir.Node {
	left := p.note()
	for {
		switch {
		case p.curIsPunct("."):
			dot := p.advance().Span
			right := p.accessOperand()
			left = ir.NewBinary(ir.OpAccess, left, right, spanFrom(left.Span, spanFrom(dot, right.Span)))
		case p.curIsPunct("("):
			args := p.callArgList()
			left = ir.NewCall(left, args, spanFrom(left.Span, p.buf[p.pos-1].Span))
		case p.curIsPunct("["):
			left = p.parseSubscript(left)
		default:
			return left
		}
	}
}

// accessOperand parses the right-hand side of `.`, constrained per the
// data model to Variable, OperatorLit, SuperLit, or AllSymbols; a
// Variable there must not be marked non-local. Shape validation beyond
// "is it one of these kinds" (the non-local check) is the expression
// analysis pass's job (see passes/expression_analysis.go), not the
// parser's — the parser only needs to build the right node kind here.
func (p *Parser) accessOperand() *ir.Node {
	switch {
	case p.curIsKeyword("super"):
		span := p.advance().Span
		return ir.New(ir.SuperLit, span)
	case p.curIsOp("*"):
		span := p.advance().Span
		return ir.New(ir.AllSymbols, span)
	case p.cur().Kind == token.Ident:
		t := p.advance()
		return ir.NewVariable(t.Literal, false, t.Span)
	default:
		t := p.cur()
		d := diag.New(diag.IncorrectAccessSyntax, t.Span, p.source, "incorrect access syntax after '.'")
		if p.sink != nil {
			p.sink.Emit(d)
		}
		return ir.NewVariable("<error>", false, t.Span)
	}
}

func (p *Parser) callArgList() []*ir.Node {
	p.expectPunct("(")
	savedLower := p.lowerRangePrec
	p.lowerRangePrec = true
	var args []*ir.Node
	for !p.curIsPunct(")") && p.cur().Kind != token.EOF {
		args = append(args, p.expression(true))
		if p.curIsPunct(",") {
			p.advance()
		} else {
			break
		}
	}
	p.lowerRangePrec = savedLower
	p.expectPunct(")")
	return args
}

func (p *Parser) parseSubscript(target *ir.Node) *ir.Node {
	p.advance() // '['
	savedLower := p.lowerRangePrec
	p.lowerRangePrec = true
	index := p.expression(false)
	p.lowerRangePrec = savedLower
	end := p.expectPunct("]")
	return ir.NewBinary(ir.OpSubscr, target, index, spanFrom(target.Span, end.Span))
}

// note parses a `^prefix expr` style decoration used to attach metadata to
// an expression that survives constant folding as a wrapper.
func (p *Parser) note() *ir.Node {
	if p.curIsOp("^") && p.peekAt(1).Kind == token.Ident {
		start := p.advance().Span
		prefix := p.advance().Literal
		body := p.scope()
		n := ir.New(ir.Note, spanFrom(start, body.Span))
		n.Prefix, n.Left = prefix, body
		return n
	}
	return p.scope()
}

// scope parses the `::` prefix/infix operator. A bare leading `::name` (no
// left-hand scope expression) is valid — see SPEC_FULL.md's resolved open
// question — and denotes an explicit module-rooted lookup.
func (p *Parser) scope() *ir.Node {
	if p.curIsOp("::") {
		start := p.advance().Span
		right := p.primary()
		n := ir.NewBinary(ir.OpScope, nil, right, spanFrom(start, right.Span))
		return n
	}
	left := p.primary()
	for p.curIsOp("::") {
		p.advance()
		right := p.primary()
		left = ir.NewBinary(ir.OpScope, left, right, spanFrom(left.Span, right.Span))
	}
	return left
}

func (p *Parser) primary() *ir.Node {
	t := p.cur()
	switch {
	case t.Kind == token.Int:
		p.advance()
		v, _ := strconv.ParseInt(t.Literal, 0, 64)
		return ir.NewIntLit(v, t.Span)
	case t.Kind == token.Float:
		p.advance()
		v, _ := strconv.ParseFloat(t.Literal, 64)
		return ir.NewFloatLit(v, t.Span)
	case t.Kind == token.String:
		p.advance()
		unescaped, err := lexer.Unescape(t.Literal)
		if err != nil {
			p.errorf(t.Span, "unknown escape sequence in string literal")
			unescaped = t.Literal
		}
		return ir.NewStringLit(unescaped, t.Span)
	case t.Kind == token.Keyword && t.Literal == "true":
		p.advance()
		return ir.NewBoolLit(true, t.Span)
	case t.Kind == token.Keyword && t.Literal == "false":
		p.advance()
		return ir.NewBoolLit(false, t.Span)
	case t.Kind == token.Keyword && t.Literal == "nil":
		p.advance()
		return ir.NewNilLit(t.Span)
	case t.Kind == token.Keyword && t.Literal == "this":
		p.advance()
		return ir.New(ir.ThisLit, t.Span)
	case t.Kind == token.Keyword && t.Literal == "super":
		p.advance()
		return ir.New(ir.SuperLit, t.Span)
	case t.Kind == token.Ident && t.Literal == "f" && p.peekAt(1).Kind == token.String:
		p.advance()
		str := p.advance()
		return p.fstring(str.Literal, spanFrom(t.Span, str.Span))
	case t.Kind == token.Ident:
		p.advance()
		return ir.NewVariable(t.Literal, false, t.Span)
	case t.Kind == token.Operator && t.Literal == "$":
		p.advance()
		name := p.expectIdent()
		return ir.NewVariable(name.Literal, true, spanFrom(t.Span, name.Span))
	case t.Kind == token.Punctuation && t.Literal == "(":
		p.advance()
		savedLower := p.lowerRangePrec
		p.lowerRangePrec = false
		inner := p.expression(true)
		p.lowerRangePrec = savedLower
		p.expectPunct(")")
		return inner
	case t.Kind == token.Punctuation && t.Literal == "[":
		return p.parseListOrComprehension()
	case t.Kind == token.Punctuation && t.Literal == "{":
		return p.parseDict()
	case t.Kind == token.Keyword && t.Literal == "fun":
		return p.parseLambda()
	default:
		p.abort(t.Span, "unexpected token %q", t.Literal)
		return ir.NewNilLit(t.Span)
	}
}

func (p *Parser) parseListOrComprehension() *ir.Node {
	start := p.advance().Span // '['
	savedLower := p.lowerRangePrec
	p.lowerRangePrec = true
	defer func() { p.lowerRangePrec = savedLower }()

	if p.curIsPunct("]") {
		end := p.advance().Span
		n := ir.New(ir.List, spanFrom(start, end))
		return n
	}

	first := p.expression(false)
	if p.curIsKeyword("for") {
		p.advance()
		var iterators []*ir.Node
		for {
			iterators = append(iterators, p.expression(false))
			if p.curIsPunct(",") {
				p.advance()
				continue
			}
			break
		}
		var cond *ir.Node
		if p.curIsKeyword("if") {
			p.advance()
			cond = p.expression(false)
		}
		end := p.expectPunct("]")
		n := ir.New(ir.List, spanFrom(start, end.Span))
		n.IsComprehension = true
		n.Result = first
		n.Iterators = iterators
		n.Cond = cond
		n.ResultVar = "__compr_result"
		return n
	}

	elements := []*ir.Node{first}
	for p.curIsPunct(",") {
		p.advance()
		if p.curIsPunct("]") {
			break
		}
		elements = append(elements, p.expression(false))
	}
	end := p.expectPunct("]")
	n := ir.New(ir.List, spanFrom(start, end.Span))
	n.Elements = elements
	return n
}

func (p *Parser) parseDict() *ir.Node {
	start := p.advance().Span // '{'
	var keys, values []*ir.Node
	for !p.curIsPunct("}") && p.cur().Kind != token.EOF {
		k := p.expression(false)
		p.expectPunct(":")
		v := p.expression(false)
		keys = append(keys, k)
		values = append(values, v)
		if p.curIsPunct(",") {
			p.advance()
		} else {
			break
		}
	}
	end := p.expectPunct("}")
	n := ir.New(ir.Dict, spanFrom(start, end.Span))
	n.Keys, n.Values = keys, values
	return n
}

// parseLambda parses an anonymous lambda literal in expression position:
// `fun(args) { ... }` or `fun(args) = expr`.
func (p *Parser) parseLambda() *ir.Node {
	start := p.advance().Span // 'fun'
	args := p.arglistParen()
	if p.curIsOp("=") {
		p.advance()
		expr := p.expression(true)
		ret := ir.New(ir.Return, expr.Span)
		ret.Value = expr
		return ir.NewLambda("", args, []*ir.Node{ret}, spanFrom(start, expr.Span))
	}
	body := p.body()
	return ir.NewLambda("", args, body, spanFrom(start, p.buf[p.pos-1].Span))
}

func (p *Parser) arglistParen() []*ir.Node {
	p.expectPunct("(")
	var args []*ir.Node
	sawVararg := false
	for !p.curIsPunct(")") && p.cur().Kind != token.EOF {
		args = append(args, p.argument(sawVararg))
		if args[len(args)-1].IsVararg {
			sawVararg = true
		}
		if p.curIsPunct(",") {
			p.advance()
		} else {
			break
		}
	}
	p.expectPunct(")")
	return args
}

func (p *Parser) argument(afterVararg bool) *ir.Node {
	vararg := false
	if p.curIsOp("...") {
		p.advance()
		vararg = true
	}
	name := p.expectIdent()
	var types []*ir.Node
	if p.curIsPunct(":") {
		p.advance()
		types = append(types, p.expression(false))
		for p.curIsOp("|") {
			p.advance()
			types = append(types, p.expression(false))
		}
	}
	var def *ir.Node
	if p.curIsOp("=") {
		p.advance()
		def = p.expression(false)
	}
	_ = afterVararg // diagnosed by passes/function_analysis.go, not here
	return ir.NewArgument(name.Literal, types, def, vararg, name.Span)
}
