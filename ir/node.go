package ir

import "github.com/cwbudde/go-nyx/token"

// Node is the single flattened representation for every construct,
// statement, and expression kind. Only the fields relevant to Kind are
// populated; the rest stay at their zero value. A tree of Nodes owns its
// children exclusively — no shared ownership, no parent back-references
// (the pass driver keeps "current parent" as transient state, never as a
// Node field).
type Node struct {
	Kind Kind
	Span token.Span

	// Module / Space / Class / Function / Variable / Argument / Enum name.
	Name string

	// Construct body, ordered.
	Body []*Node

	Annotations []*Node
	Docstring   string

	// Class.
	Parents []*Node

	// Function / Lambda argument list (Argument nodes), or Call arguments
	// (positional and named-as-BinaryExpr-with-OpAssign expressions).
	Args          []*Node
	IsConstructor bool
	IsMethod      bool

	// Argument.
	Types     []*Node // union of acceptable type-expressions; empty = untyped
	Default   *Node
	IsVararg  bool

	// BinaryExpr / UnaryExpr. Unary operand is stored in Left.
	Op    Operator
	Left  *Node
	Right *Node

	// Variable.
	NonLocal bool // `$` prefix

	// Multivar.
	Vars      []*Node
	RestIndex int // -1 if no rest/spread slot

	// List.
	Elements        []*Node
	IsComprehension bool
	Result          *Node
	ElseResult      *Node
	Iterators       []*Node
	ResultVar       string

	// Dict.
	Keys   []*Node
	Values []*Node

	// TernaryIf.
	Then    *Node
	ElseVal *Node

	// Range.
	Start  *Node
	End    *Node
	Second *Node

	// Call.
	Callee *Node

	// If / While / DoWhile / Switch / List-comprehension condition.
	Cond       *Node
	ElseBranch *Node // If's attached Else construct, or nil

	// Switch / Case.
	Cases       []*Node
	CaseValues  []*Node
	IsDefault   bool

	// Catch.
	ExceptionArg *Node

	// Try.
	Catches      []*Node
	FinallyBlock *Node

	// ForLoop.
	Iterator   *Node // Variable or Multivar binding target
	Collection *Node

	// Enum.
	EnumValues []*Node

	// Import.
	Path           []string
	ImportAlias    string
	ImportAll      bool
	ImportNonLocal bool

	// Assert.
	Message *Node

	// Raise.
	Exception *Node

	// Return.
	Value *Node

	// Annotation.
	AnnotationArgs     []*Node
	IsInnerAnnotation  bool
	IsModuleAnnotation bool

	// Note (`^prefix body`-style decoration preserved through folding).
	Prefix string

	// Silent expression marker (`~expr`): value should not auto-print at
	// REPL top level.
	Silent bool

	// Literal payloads.
	IntValue    int64
	FloatValue  float64
	BoolValue   bool
	StringValue string
}

// New creates a bare Node of the given kind and span. Callers populate the
// fields relevant to that kind directly — there is one constructor per
// kind below for the common cases, but composite literals are just as
// idiomatic given the flattened struct.
func New(kind Kind, span token.Span) *Node {
	return &Node{Kind: kind, Span: span, RestIndex: -1}
}

func NewModule(name string, body []*Node, span token.Span) *Node {
	n := New(Module, span)
	n.Name, n.Body = name, body
	return n
}

func NewFunction(name string, args, body []*Node, span token.Span) *Node {
	n := New(Function, span)
	n.Name, n.Args, n.Body = name, args, body
	return n
}

func NewClass(name string, parents []*Node, body []*Node, span token.Span) *Node {
	n := New(Class, span)
	n.Name, n.Parents, n.Body = name, parents, body
	return n
}

// NewLambda builds a Lambda. name is "" for an anonymous lambda; body
// follows the same statement-list convention as Function's body, so a
// `fun name(args) = expr` lambda is represented as a single synthetic
// Return statement wrapping expr rather than a bare expression field.
func NewLambda(name string, args, body []*Node, span token.Span) *Node {
	n := New(Lambda, span)
	n.Name, n.Args, n.Body = name, args, body
	return n
}

func NewArgument(name string, types []*Node, def *Node, vararg bool, span token.Span) *Node {
	n := New(Argument, span)
	n.Name, n.Types, n.Default, n.IsVararg = name, types, def, vararg
	return n
}

func NewBinary(op Operator, left, right *Node, span token.Span) *Node {
	n := New(BinaryExpr, span)
	n.Op, n.Left, n.Right = op, left, right
	return n
}

func NewUnary(op Operator, operand *Node, span token.Span) *Node {
	n := New(UnaryExpr, span)
	n.Op, n.Left = op, operand
	return n
}

func NewVariable(name string, nonLocal bool, span token.Span) *Node {
	n := New(Variable, span)
	n.Name, n.NonLocal = name, nonLocal
	return n
}

func NewIntLit(v int64, span token.Span) *Node {
	n := New(IntLit, span)
	n.IntValue = v
	return n
}

func NewFloatLit(v float64, span token.Span) *Node {
	n := New(FloatLit, span)
	n.FloatValue = v
	return n
}

func NewBoolLit(v bool, span token.Span) *Node {
	n := New(BoolLit, span)
	n.BoolValue = v
	return n
}

func NewStringLit(v string, span token.Span) *Node {
	n := New(StringLit, span)
	n.StringValue = v
	return n
}

func NewNilLit(span token.Span) *Node {
	return New(NilLit, span)
}

func NewCall(callee *Node, args []*Node, span token.Span) *Node {
	n := New(Call, span)
	n.Callee, n.Args = callee, args
	return n
}

func NewIf(cond *Node, thenBody []*Node, elseBranch *Node, span token.Span) *Node {
	n := New(If, span)
	n.Cond, n.Body, n.ElseBranch = cond, thenBody, elseBranch
	return n
}

func NewEndOfFile(span token.Span) *Node {
	return New(EndOfFile, span)
}
