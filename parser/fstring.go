package parser

import (
	"strings"

	"github.com/cwbudde/go-nyx/ir"
	"github.com/cwbudde/go-nyx/lexer"
	"github.com/cwbudde/go-nyx/token"
)

// fstring rewrites an f-string token into a chain of `++` concatenations
// between literal fragments and parenthesized sub-expressions parsed from
// the embedded `{...}` source ranges, per SPEC_FULL.md's f-string
// component. The `f` identifier and the following string token are both
// already consumed by the caller; raw is the string's unescaped-pending
// literal content.
func (p *Parser) fstring(raw string, span token.Span) *ir.Node {
	fragments, exprs := splitFString(raw)

	var result *ir.Node
	for i, frag := range fragments {
		unescaped, err := lexer.Unescape(frag)
		if err != nil {
			p.errorf(span, "unknown escape sequence in f-string fragment")
			unescaped = frag
		}
		lit := ir.NewStringLit(unescaped, span)
		if result == nil {
			result = lit
		} else {
			result = ir.NewBinary(ir.OpConcat, result, lit, span)
		}
		if i < len(exprs) {
			sub := p.parseSubExpression(exprs[i], span)
			if result == nil {
				result = sub
			} else {
				result = ir.NewBinary(ir.OpConcat, result, sub, span)
			}
		}
	}
	if result == nil {
		return ir.NewStringLit("", span)
	}
	return result
}

// splitFString splits raw on top-level `{...}` boundaries (braces can
// nest inside the embedded expression, e.g. a dict literal) and returns
// the literal fragments (len = N+1) and the embedded expression source
// texts (len = N).
func splitFString(raw string) (fragments []string, exprs []string) {
	var frag strings.Builder
	depth := 0
	var expr strings.Builder
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch {
		case depth == 0 && c == '{':
			depth = 1
			expr.Reset()
		case depth > 0 && c == '{':
			depth++
			expr.WriteByte(c)
		case depth == 1 && c == '}':
			depth = 0
			fragments = append(fragments, frag.String())
			frag.Reset()
			exprs = append(exprs, expr.String())
		case depth > 1 && c == '}':
			depth--
			expr.WriteByte(c)
		case depth == 0:
			frag.WriteByte(c)
		default:
			expr.WriteByte(c)
		}
	}
	fragments = append(fragments, frag.String())
	return fragments, exprs
}

// parseSubExpression parses an embedded f-string expression fragment as a
// standalone expression by running a nested Parser over its own lexer.
func (p *Parser) parseSubExpression(src string, span token.Span) *ir.Node {
	l := lexer.New(span.Start.File, src)
	sub := New(l, span.Start.File, src, p.sink)
	return sub.expression(false)
}
