// Package parser turns a token.Source into an ir.Node tree: either a whole
// Module (file mode) or a short list of top-level declarations (REPL line
// mode).
package parser

import (
	"github.com/cwbudde/go-nyx/diag"
	"github.com/cwbudde/go-nyx/ir"
	"github.com/cwbudde/go-nyx/token"
)

// Precedence levels, loosest to tightest, mirroring the grammar in
// SPEC_FULL.md's carried-forward §4.1. Each level is its own recursive
// routine; expression dispatches by climbing from the loosest level
// down through calls, not through a single precedence-table loop, because
// several levels (assignment, range, unpack) have shapes a generic
// Pratt loop can't express directly (right-associativity, the "lower range
// precedence inside subscripts" toggle, prefix-only unpack/silent).
const (
	precLowest = iota
	precUnpack
	precSilent
	precAssign
	precTernary
	precShortCircuit
	precAndOrXor
	precNot
	precEquality
	precOrdering
	precMembership
	precRange
	precConcat
	precAdditive
	precMultiplicative
	precExponent
	precUnary
	precPostfix
	precNote
	precScope
	precPrimary
)

// Parser consumes a token.Source and produces ir.Node trees. It buffers
// tokens it has already pulled so it can look ahead (`not in`) and, for
// the one backtracking case (range vs. comma-separated subscript), rewind.
type Parser struct {
	src    token.Source
	file   string
	source string // full source text, for diagnostic rendering

	buf []token.Token
	pos int

	sink diag.Sink

	// lowerRangePrec is toggled around subscript/call-argument contexts so
	// `a[1,3..5]` parses the `3..5` as a range argument rather than two
	// comparison expressions joined by a comma.
	lowerRangePrec bool

	// blockDepth tracks brace nesting so recovery can resynchronize to the
	// current nesting level rather than escaping an enclosing block.
	blockDepth int

	pendingOuterAnnotations []*ir.Node
	pendingInnerAnnotations []*ir.Node
}

// New creates a Parser reading from src. file and source are used only for
// diagnostic rendering.
func New(src token.Source, file, source string, sink diag.Sink) *Parser {
	return &Parser{src: src, file: file, source: source, sink: sink}
}

func (p *Parser) fill(n int) {
	for len(p.buf)-p.pos <= n {
		p.buf = append(p.buf, p.src.Next())
	}
}

func (p *Parser) cur() token.Token {
	p.fill(0)
	return p.buf[p.pos]
}

func (p *Parser) peekAt(offset int) token.Token {
	p.fill(offset)
	return p.buf[p.pos+offset]
}

func (p *Parser) advance() token.Token {
	t := p.cur()
	p.pos++
	return t
}

// mark/reset support the small amount of backtracking the grammar needs:
// probing for `,..` three-operand ranges. `not in` is recognized by
// lookahead alone (peekAt).
type mark struct{ pos int }

func (p *Parser) mark() mark { return mark{pos: p.pos} }
func (p *Parser) resetTo(m mark) { p.pos = m.pos }

func (p *Parser) curIs(kind token.Kind, literal string) bool {
	t := p.cur()
	return t.Kind == kind && (literal == "" || t.Literal == literal)
}

func (p *Parser) curIsKeyword(kw string) bool {
	return p.curIs(token.Keyword, kw)
}

func (p *Parser) curIsOp(op string) bool {
	return p.curIs(token.Operator, op)
}

func (p *Parser) curIsPunct(ch string) bool {
	return p.curIs(token.Punctuation, ch)
}

func (p *Parser) skipEnds() {
	for p.cur().Kind == token.Newline || p.cur().Kind == token.Semicolon {
		p.advance()
	}
}

func (p *Parser) errorf(span token.Span, format string, args ...any) {
	d := diag.New(diag.Syntax, span, p.source, format, args...)
	if p.sink != nil {
		p.sink.Emit(d)
	}
}

func (p *Parser) expectPunct(ch string) token.Token {
	if p.curIsPunct(ch) {
		return p.advance()
	}
	t := p.cur()
	p.errorf(t.Span, "expected %q, got %q", ch, t.Literal)
	return t
}

func (p *Parser) expectKeyword(kw string) token.Token {
	if p.curIsKeyword(kw) {
		return p.advance()
	}
	t := p.cur()
	p.errorf(t.Span, "expected keyword %q, got %q", kw, t.Literal)
	return t
}

func (p *Parser) expectIdent() token.Token {
	if p.cur().Kind == token.Ident {
		return p.advance()
	}
	t := p.cur()
	p.errorf(t.Span, "expected identifier, got %q", t.Literal)
	return t
}

// statementStarters recognizes tokens that begin a new declaration, used
// both by recovery and by REPL line-pulling to decide whether more tokens
// are needed to close an open construct.
var statementStarters = map[string]struct{}{
	"if": {}, "switch": {}, "while": {}, "do": {}, "for": {}, "try": {},
	"fun": {}, "class": {}, "space": {}, "enum": {}, "import": {},
	"return": {}, "break": {}, "continue": {}, "raise": {}, "assert": {},
}

// synchronize implements the parser's error-recovery contract: consume
// tokens until the next line terminator, semicolon, or a closing brace at
// the current nesting level, so one file can report many independent
// syntax errors instead of aborting on the first.
func (p *Parser) synchronize() {
	depth := p.blockDepth
	for {
		t := p.cur()
		if t.Kind == token.Keyword && p.blockDepth <= depth {
			if _, ok := statementStarters[t.Literal]; ok {
				return
			}
		}
		switch t.Kind {
		case token.EOF:
			return
		case token.Newline, token.Semicolon:
			p.advance()
			return
		case token.Punctuation:
			if t.Literal == "}" {
				if p.blockDepth <= depth {
					return
				}
				p.blockDepth--
			}
			if t.Literal == "{" {
				p.blockDepth++
			}
		}
		p.advance()
	}
}

// ParseProgram parses the whole token stream into a Module whose body ends
// with a single EndOfFile sentinel.
func (p *Parser) ParseProgram() *ir.Node {
	start := p.cur().Span
	var body []*ir.Node
	docstring := ""

	p.skipEnds()
	if p.cur().Kind == token.String && p.peekIsDeclTerminator(1) {
		docstring = p.advance().Literal
		p.skipEnds()
	}

	for p.cur().Kind != token.EOF {
		p.skipEnds()
		if p.cur().Kind == token.EOF {
			break
		}
		decl := p.declaration()
		if decl != nil {
			body = append(body, decl)
		}
		p.skipEnds()
	}

	eofSpan := p.cur().Span
	body = append(body, ir.NewEndOfFile(eofSpan))

	m := ir.NewModule(p.file, body, spanFrom(start, eofSpan))
	m.Docstring = docstring
	return m
}

// ParseLine parses exactly one logical line into an ordered list of
// declarations, pulling additional tokens from the source when the first
// declaration is syntactically open (unclosed brace, trailing operator,
// unterminated multi-line string). The underlying token.Source is expected
// to yield further tokens on demand, the same way a REPL feeds a fresh
// line into the scanner when asked.
func (p *Parser) ParseLine() []*ir.Node {
	p.skipEnds()
	if p.cur().Kind == token.EOF {
		return nil
	}
	var decls []*ir.Node
	decl := p.declaration()
	if decl != nil {
		decls = append(decls, decl)
	}
	// Further declarations on the same line follow a semicolon; stop at the
	// line terminator so no input beyond this line is pulled.
	for decl != nil && p.cur().Kind == token.Semicolon {
		for p.cur().Kind == token.Semicolon {
			p.advance()
		}
		if p.cur().Kind == token.Newline || p.cur().Kind == token.EOF {
			break
		}
		decl = p.declaration()
		if decl != nil {
			decls = append(decls, decl)
		}
	}
	return decls
}

func (p *Parser) peekIsDeclTerminator(offset int) bool {
	t := p.peekAt(offset)
	return t.Kind == token.Newline || t.Kind == token.Semicolon || t.Kind == token.EOF
}

func spanFrom(start, end token.Span) token.Span {
	return token.Span{Start: start.Start, End: end.End}
}

// declaration dispatches on the leading token, skipping leading line
// terminators and semicolons first. On syntactic failure it reports a
// diagnostic and resynchronizes to the next declaration so parsing can
// continue.
func (p *Parser) declaration() (result *ir.Node) {
	p.skipEnds()
	if p.cur().Kind == token.EOF {
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(parseAbort); ok {
				p.synchronize()
				result = nil
				return
			}
			panic(r)
		}
	}()

	for p.curIsPunct("@") {
		p.collectAnnotation()
	}

	switch {
	case p.curIsKeyword("if"):
		return p.parseIf()
	case p.curIsKeyword("switch"):
		return p.parseSwitch()
	case p.curIsKeyword("while"):
		return p.parseWhile()
	case p.curIsKeyword("do"):
		return p.parseDoWhile()
	case p.curIsKeyword("for"):
		return p.parseFor()
	case p.curIsKeyword("try"):
		return p.parseTry()
	case p.curIsKeyword("fun"):
		return p.parseFunction()
	case p.curIsKeyword("class"):
		return p.parseClass()
	case p.curIsKeyword("space"):
		return p.parseSpace()
	case p.curIsKeyword("enum"):
		return p.parseEnum()
	case p.curIsKeyword("import"):
		return p.parseImport()
	case p.curIsKeyword("return"):
		return p.parseReturn()
	case p.curIsKeyword("break"):
		span := p.advance().Span
		return ir.New(ir.Break, span)
	case p.curIsKeyword("continue"):
		span := p.advance().Span
		return ir.New(ir.Continue, span)
	case p.curIsKeyword("raise"):
		return p.parseRaise()
	case p.curIsKeyword("assert"):
		return p.parseAssert()
	default:
		expr := p.expression(true)
		return expr
	}
}

// parseAbort is the internal panic payload used to unwind a failed
// declaration up to declaration()'s recovery point, matching the source's
// "throws on error, caught by recovery" control flow without needing a
// sentinel error return threaded through every parse* routine.
type parseAbort struct{}

func (p *Parser) abort(span token.Span, format string, args ...any) {
	p.errorf(span, format, args...)
	panic(parseAbort{})
}

// body parses either a braced block or a single declaration, matching the
// grammar's `body()` production used by if/while/for/etc. when no braces
// are present.
func (p *Parser) body() []*ir.Node {
	if p.curIsPunct("{") {
		return p.block()
	}
	d := p.declaration()
	if d == nil {
		return nil
	}
	return []*ir.Node{d}
}

// block parses a brace-delimited sequence of declarations.
func (p *Parser) block() []*ir.Node {
	p.expectPunct("{")
	p.blockDepth++
	var body []*ir.Node
	p.skipEnds()
	for !p.curIsPunct("}") && p.cur().Kind != token.EOF {
		d := p.declaration()
		if d != nil {
			body = append(body, d)
		}
		p.skipEnds()
	}
	p.expectPunct("}")
	p.blockDepth--
	return body
}

// collectAnnotation parses `@name` / `@name(expr, ...)` and queues it onto
// the pending-outer (or, for `@!`, pending-inner) annotation list. Pending
// outer annotations attach to the next Function, named Lambda, Class or
// Space that is parsed; pending inner annotations are not attached to any
// node.
func (p *Parser) collectAnnotation() {
	start := p.advance().Span // '@'
	inner := false
	if p.curIsOp("!") {
		inner = true
		p.advance()
	}
	name := p.expectIdent()
	var args []*ir.Node
	if p.curIsPunct("(") {
		args = p.argList()
	}
	a := ir.New(ir.Annotation, spanFrom(start, name.Span))
	a.Name = name.Literal
	a.AnnotationArgs = args
	a.IsInnerAnnotation = inner
	if inner {
		p.pendingInnerAnnotations = append(p.pendingInnerAnnotations, a)
	} else {
		p.pendingOuterAnnotations = append(p.pendingOuterAnnotations, a)
	}
	p.skipEnds()
}

func (p *Parser) takeOuterAnnotations() []*ir.Node {
	a := p.pendingOuterAnnotations
	p.pendingOuterAnnotations = nil
	return a
}

func (p *Parser) argList() []*ir.Node {
	p.expectPunct("(")
	var args []*ir.Node
	for !p.curIsPunct(")") && p.cur().Kind != token.EOF {
		args = append(args, p.expression(false))
		if p.curIsPunct(",") {
			p.advance()
		} else {
			break
		}
	}
	p.expectPunct(")")
	return args
}
