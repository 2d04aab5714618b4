// Package diag implements the diagnostic sink the parser and passes emit
// to: a position-carrying, rendered compiler error with a caret-underline
// source view.
package diag

import (
	"fmt"
	"strings"

	"github.com/cwbudde/go-nyx/token"
)

// ID enumerates the diagnostics the core can raise. Parser syntax errors
// use Syntax plus a free-form message; semantic passes use the named ids
// below so callers can match on them without string comparison.
type ID int

const (
	Syntax ID = iota
	UnknownEscape
	IncorrectAccessSyntax
	DuplicateArg
	NonDefaultArgAfterVararg
	LambdaConstructor
	NonNilReturnInConstructor
	ReturnOutsideFunction
	DuplicateNamedArg
	BadGeneratorAnnotation
	BadConverterAnnotation
	MismatchedDictLength
	InternalInvariant
)

func (id ID) String() string {
	switch id {
	case Syntax:
		return "SYNTAX"
	case UnknownEscape:
		return "UNKNOWN_ESCAPE"
	case IncorrectAccessSyntax:
		return "INCORRECT_ACCESS_SYNTAX"
	case DuplicateArg:
		return "DUPLICATE_ARG"
	case NonDefaultArgAfterVararg:
		return "NON_DEFAULT_ARG_AFTER_VARARG"
	case LambdaConstructor:
		return "LAMBDA_CONSTRUCTOR"
	case NonNilReturnInConstructor:
		return "NON_NIL_RETURN_IN_CONSTR"
	case ReturnOutsideFunction:
		return "RETURN_OUTSIDE_FUNCTION"
	case DuplicateNamedArg:
		return "DUPLICATE_NAMED_ARG"
	case BadGeneratorAnnotation:
		return "BAD_GENERATOR_ANNOTATION"
	case BadConverterAnnotation:
		return "BAD_CONVERTER_ANNOTATION"
	case MismatchedDictLength:
		return "MISMATCHED_DICT_LENGTH"
	case InternalInvariant:
		return "INTERNAL_INVARIANT"
	default:
		return fmt.Sprintf("ID(%d)", int(id))
	}
}

// Diagnostic is a single reported problem, tied to a source span.
type Diagnostic struct {
	ID      ID
	Span    token.Span
	Message string
	Source  string // full source text, for rendering the offending line
}

// New builds a Diagnostic for the given span and id, formatting args into
// message the way fmt.Sprintf would.
func New(id ID, span token.Span, source string, format string, args ...any) *Diagnostic {
	return &Diagnostic{
		ID:      id,
		Span:    span,
		Message: fmt.Sprintf(format, args...),
		Source:  source,
	}
}

func (d *Diagnostic) Error() string {
	return d.Format(false)
}

// Format renders the diagnostic the way internal/errors.CompilerError does:
// a file:line:col header, the offending source line, and a caret
// underline.
func (d *Diagnostic) Format(color bool) string {
	var sb strings.Builder

	pos := d.Span.Start
	if pos.File != "" {
		sb.WriteString(fmt.Sprintf("Error in %s:%d:%d\n", pos.File, pos.Line, pos.Column))
	} else {
		sb.WriteString(fmt.Sprintf("Error at line %d:%d\n", pos.Line, pos.Column))
	}

	if line := d.sourceLine(pos.Line); line != "" {
		lineNumStr := fmt.Sprintf("%4d | ", pos.Line)
		sb.WriteString(lineNumStr)
		sb.WriteString(line)
		sb.WriteString("\n")
		sb.WriteString(strings.Repeat(" ", len(lineNumStr)+pos.Column-1))
		if color {
			sb.WriteString("\033[1;31m")
		}
		sb.WriteString("^")
		if color {
			sb.WriteString("\033[0m")
		}
		sb.WriteString("\n")
	}

	if color {
		sb.WriteString("\033[1m")
	}
	sb.WriteString(fmt.Sprintf("[%s] %s", d.ID, d.Message))
	if color {
		sb.WriteString("\033[0m")
	}

	return sb.String()
}

func (d *Diagnostic) sourceLine(line int) string {
	if d.Source == "" || line < 1 {
		return ""
	}
	lines := strings.Split(d.Source, "\n")
	if line > len(lines) {
		return ""
	}
	return lines[line-1]
}

// Sink receives diagnostics as they are produced. Parser errors and
// semantic-pass errors both feed the same sink so one file can report many
// problems before compilation gives up.
type Sink interface {
	Emit(d *Diagnostic)
}

// Collector is the default in-memory Sink, used by the CLI and by tests.
type Collector struct {
	Diagnostics []*Diagnostic
}

func (c *Collector) Emit(d *Diagnostic) {
	c.Diagnostics = append(c.Diagnostics, d)
}

func (c *Collector) HasErrors() bool {
	return len(c.Diagnostics) > 0
}

// Format renders every collected diagnostic, numbering them when there is
// more than one.
func (c *Collector) Format(color bool) string {
	if len(c.Diagnostics) == 0 {
		return ""
	}
	if len(c.Diagnostics) == 1 {
		return c.Diagnostics[0].Format(color)
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("compilation failed with %d error(s):\n\n", len(c.Diagnostics)))
	for i, d := range c.Diagnostics {
		sb.WriteString(fmt.Sprintf("[Error %d of %d]\n", i+1, len(c.Diagnostics)))
		sb.WriteString(d.Format(color))
		if i < len(c.Diagnostics)-1 {
			sb.WriteString("\n\n")
		}
	}
	return sb.String()
}
