// Package ir implements the intermediate representation produced by the
// parser, rewritten by the pass pipeline, and consumed by the bytecode
// emitter.
//
// The source this design is grounded on used a deep class hierarchy with
// an IRType discriminant and hand-written downcasts (one concrete type per
// node shape). Here every node shape is a variant of one Node struct with
// a Kind discriminant; "is this any expression kind" becomes a range
// comparison over Kind instead of a dynamic cast, matching the tagged
// variant design this repository uses in place of inheritance.
package ir

import "fmt"

// Kind discriminates the shape of a Node. The three categories — Construct,
// Statement, Expression — are contiguous ranges so IsConstruct/IsStatement
// /IsExpression are single comparisons.
type Kind int

const (
	constructBegin Kind = iota

	Module
	Space
	Class
	Function
	Else
	If
	Switch
	Case
	Try
	Catch
	Finally
	While
	DoWhile
	ForLoop

	constructEnd

	statementBegin

	Import
	Assert
	Raise
	Return
	Break
	Continue
	Annotation
	EndOfFile

	statementEnd

	expressionBegin

	BinaryExpr
	UnaryExpr
	Variable
	Multivar
	AllSymbols
	Argument
	Lambda
	Note
	List
	Dict
	TernaryIf
	Range
	Call
	ThisLit
	SuperLit
	OperatorLit
	IntLit
	FloatLit
	BoolLit
	StringLit
	NilLit
	Enum

	expressionEnd
)

// IsConstruct reports whether k is one of the body-bearing construct kinds.
func (k Kind) IsConstruct() bool { return k > constructBegin && k < constructEnd }

// IsStatement reports whether k is one of the non-body statement kinds.
func (k Kind) IsStatement() bool { return k > statementBegin && k < statementEnd }

// IsExpression reports whether k is one of the expression kinds.
func (k Kind) IsExpression() bool { return k > expressionBegin && k < expressionEnd }

var kindNames = map[Kind]string{
	Module: "Module", Space: "Space", Class: "Class", Function: "Function",
	Else: "Else", If: "If", Switch: "Switch", Case: "Case", Try: "Try",
	Catch: "Catch", Finally: "Finally", While: "While", DoWhile: "DoWhile",
	ForLoop: "ForLoop",

	Import: "Import", Assert: "Assert", Raise: "Raise", Return: "Return",
	Break: "Break", Continue: "Continue", Annotation: "Annotation",
	EndOfFile: "EndOfFile",

	BinaryExpr: "BinaryExpr", UnaryExpr: "UnaryExpr", Variable: "Variable",
	Multivar: "Multivar", AllSymbols: "AllSymbols", Argument: "Argument",
	Lambda: "Lambda", Note: "Note", List: "List", Dict: "Dict",
	TernaryIf: "TernaryIf", Range: "Range", Call: "Call", ThisLit: "ThisLit",
	SuperLit: "SuperLit", OperatorLit: "OperatorLit", IntLit: "IntLit",
	FloatLit: "FloatLit", BoolLit: "BoolLit", StringLit: "StringLit",
	NilLit: "NilLit", Enum: "Enum",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IsStructural reports whether a pass is forbidden from replacing a node of
// this kind outright (only its children may be rewritten). Enforced by the
// pass driver, not by Kind itself.
func (k Kind) IsStructural() bool {
	switch k {
	case Module, Class, Space, Function, Argument, Catch, Finally, Try,
		ForLoop, While, DoWhile, Import, Assert, Raise, Multivar:
		return true
	default:
		return false
	}
}
