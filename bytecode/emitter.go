package bytecode

import (
	"fmt"

	"github.com/cwbudde/go-nyx/diag"
	"github.com/cwbudde/go-nyx/ir"
)

// sentinel jump targets, rewritten by backpatchLoop once a loop's end
// address is known. Any other address is a real, already-resolved target.
const (
	sentinelBreak    = Address(-1)
	sentinelContinue = Address(-2)
)

// reg is the register-value descriptor a sub-expression emission returns:
// which pool it lives in and whether it should auto-print at REPL top
// level (the Silent marker on ir.Node carries through to here).
type reg struct {
	index   int
	isConst bool
	silent  bool
}

type constKey struct {
	kind ir.Kind
	i    int64
	f    float64
	b    bool
	s    string
}

// Emitter lowers a pass-pipeline-rewritten ir.Node tree into a Chunk.
// Registers grow monotonically within one function body and reset at
// entry to the next; the constant pool is shared across the whole Chunk
// and deduplicated by value identity.
type Emitter struct {
	chunk *Chunk

	currCReg int
	currReg  int

	constIndex map[constKey]int

	loopDepth int // nesting depth, for sanity-checking backpatch pairing

	anonLambdaCount int // for naming unnamed lambdas, mirroring the original's annonymous_id counter

	sink   diag.Sink
	source string
}

func NewEmitter(sink diag.Sink, source string) *Emitter {
	return &Emitter{
		chunk:      &Chunk{},
		constIndex: make(map[constKey]int),
		sink:       sink,
		source:     source,
	}
}

func (e *Emitter) Chunk() *Chunk { return e.chunk }

func (e *Emitter) emit(line int, op OpCode, a, b, c int) Address {
	return e.chunk.append(Instruction{Op: op, A: a, B: b, C: c, Line: line})
}

func (e *Emitter) nextReg() int {
	r := e.currReg
	e.currReg++
	return r
}

// resetRegs resets both pools at function-body entry, per spec: "Function
// bodies reset the counters at entry."
func (e *Emitter) resetRegs() {
	e.currReg = 0
	e.currCReg = 0
}

// fail reports an internal-invariant violation: a shape the earlier
// analysis passes should already have rejected reached the emitter
// anyway. Per spec.md §4.3 "Failure", this raises a diagnostic rather
// than panicking so the driver can report it like any other error.
func (e *Emitter) fail(n *ir.Node, format string, args ...any) {
	if e.sink == nil {
		panic(fmt.Sprintf(format, args...))
	}
	e.sink.Emit(diag.New(diag.InternalInvariant, n.Span, e.source, format, args...))
}

// constReg materializes value in the constant pool (deduplicated by
// identity) and returns a constant-register descriptor referencing it.
func (e *Emitter) constReg(key constKey, value any) reg {
	if idx, ok := e.constIndex[key]; ok {
		return reg{index: idx, isConst: true}
	}
	idx := len(e.chunk.Constants)
	e.chunk.Constants = append(e.chunk.Constants, value)
	e.constIndex[key] = idx
	if idx >= e.currCReg {
		e.currCReg = idx + 1
	}
	return reg{index: idx, isConst: true}
}

// getNCReg promotes a constant-register descriptor to a general register
// via StoreConst when the caller needs a mutable/general-pool operand —
// e.g. two constant operands can't both feed the same instruction.
func (e *Emitter) getNCReg(n *ir.Node, v reg) reg {
	if !v.isConst {
		return v
	}
	dst := e.nextReg()
	e.emit(n.Span.Start.Line, OpStoreConst, dst, v.index, 0)
	return reg{index: dst, isConst: false, silent: v.silent}
}

// EmitModule lowers a Module's top-level body into a fresh Chunk.
func (e *Emitter) EmitModule(mod *ir.Node) *Chunk {
	e.resetRegs()
	e.emitBlock(mod.Body)
	e.emit(mod.Span.End.Line, OpHalt, 0, 0, 0)
	return e.chunk
}

func (e *Emitter) emitBlock(body []*ir.Node) {
	for _, stmt := range body {
		e.emitStatement(stmt)
	}
}

func (e *Emitter) emitStatement(n *ir.Node) {
	switch n.Kind {
	case ir.If:
		e.emitIf(n)
	case ir.While:
		e.emitWhile(n)
	case ir.DoWhile:
		e.emitDoWhile(n)
	case ir.ForLoop:
		e.emitForLoop(n)
	case ir.Switch:
		e.emitSwitch(n)
	case ir.Try:
		e.emitTry(n)
	case ir.Function:
		e.emitFunction(n)
	case ir.Class:
		e.emitClass(n)
	case ir.Space:
		e.emitBlock(n.Body)
	case ir.Enum:
		e.emitEnum(n)
	case ir.Import:
		e.emitImport(n)
	case ir.Return:
		e.emitReturn(n)
	case ir.Break:
		e.emitBreak(n)
	case ir.Continue:
		e.emitContinue(n)
	case ir.Raise:
		e.emitRaiseStmt(n)
	case ir.Assert:
		e.emitAssert(n)
	case ir.Annotation:
		// Annotations attach to the following declaration during parsing
		// and carry no runtime effect of their own.
	case ir.EndOfFile:
		// no-op terminator
	default:
		e.emitExpr(n)
	}
}

// --- expressions ---------------------------------------------------------

func (e *Emitter) emitExpr(n *ir.Node) reg {
	switch n.Kind {
	case ir.IntLit:
		return e.constReg(constKey{kind: ir.IntLit, i: n.IntValue}, n.IntValue)
	case ir.FloatLit:
		return e.constReg(constKey{kind: ir.FloatLit, f: n.FloatValue}, n.FloatValue)
	case ir.BoolLit:
		return e.constReg(constKey{kind: ir.BoolLit, b: n.BoolValue}, n.BoolValue)
	case ir.StringLit:
		return e.constReg(constKey{kind: ir.StringLit, s: n.StringValue}, n.StringValue)
	case ir.NilLit:
		return e.constReg(constKey{kind: ir.NilLit}, nil)
	case ir.Variable:
		return e.emitVariable(n)
	case ir.BinaryExpr:
		return e.emitBinary(n)
	case ir.UnaryExpr:
		return e.emitUnary(n)
	case ir.Call:
		return e.emitCall(n)
	case ir.List:
		return e.emitList(n)
	case ir.Dict:
		return e.emitDict(n)
	case ir.TernaryIf:
		return e.emitTernary(n)
	case ir.Range:
		return e.emitRange(n)
	case ir.Note:
		return e.emitExpr(n.Left)
	case ir.Lambda:
		return e.emitLambda(n)
	default:
		e.fail(n, "emitter reached unsupported expression kind %s", n.Kind)
		return reg{}
	}
}

func (e *Emitter) emitVariable(n *ir.Node) reg {
	key := constKey{kind: ir.StringLit, s: n.Name}
	nameReg := e.constReg(key, n.Name)
	dst := e.nextReg()
	// A bare non-local/scope-rooted lookup and an ordinary local load both
	// resolve through the same named-slot opcode; the distinction between
	// lexically-enclosing and module-rooted lookup (Open Question #2) is a
	// resolution-time concern the VM owns, not something the emitter
	// encodes as a different opcode.
	e.emit(n.Span.Start.Line, OpLoadAttr, dst, nameReg.index, 0)
	return reg{index: dst, silent: n.Silent}
}

func (e *Emitter) emitBinary(n *ir.Node) reg {
	switch n.Op {
	case ir.OpLogicalAnd, ir.OpLogicalOr:
		return e.emitShortCircuit(n)
	case ir.OpAccess:
		return e.emitAccess(n)
	case ir.OpSubscr:
		return e.emitSubscript(n)
	case ir.OpAssign:
		return e.emitAssign(n)
	case ir.OpScope:
		return e.emitScope(n)
	}
	if n.Op.IsSetOp() {
		return e.emitCompoundAssign(n)
	}

	left := e.getNCReg(n, e.emitExpr(n.Left))
	right := e.emitExpr(n.Right)
	// Two constant-pool operands to the same instruction aren't permitted.
	if left.isConst && right.isConst {
		right = e.getNCReg(n, right)
	}

	op, ok := binaryOpcode[n.Op]
	if !ok {
		e.fail(n, "emitter reached unsupported binary operator %s", n.Op)
		return reg{}
	}
	dst := e.nextReg()
	e.emit(n.Span.Start.Line, op, dst, left.index, right.index)
	return reg{index: dst, silent: n.Silent}
}

var binaryOpcode = map[ir.Operator]OpCode{
	ir.OpAdd:    OpAdd,
	ir.OpSub:    OpSub,
	ir.OpMul:    OpMul,
	ir.OpDiv:    OpDiv,
	ir.OpMod:    OpMod,
	ir.OpPow:    OpPow,
	ir.OpConcat: OpConcat,
	ir.OpAnd:    OpBitAnd,
	ir.OpOr:     OpBitOr,
	ir.OpXor:    OpBitXor,
	ir.OpEq:     OpEq,
	ir.OpNeq:    OpNeq,
	ir.OpLt:     OpLt,
	ir.OpLe:     OpLe,
	ir.OpGt:     OpGt,
	ir.OpGe:     OpGe,
	ir.OpIn:     OpIn,
}

// emitShortCircuit lowers `&&`/`||`: evaluate left, conditionally jump to
// either the result-true or result-false path, evaluate right, join — both
// branches write their result into the same destination register, the
// "phi" the spec describes.
func (e *Emitter) emitShortCircuit(n *ir.Node) reg {
	left := e.getNCReg(n, e.emitExpr(n.Left))
	dst := e.nextReg()
	e.emit(n.Span.Start.Line, OpMove, dst, left.index, 0)

	var shortCircuitJump Address
	if n.Op == ir.OpLogicalAnd {
		shortCircuitJump = e.emit(n.Span.Start.Line, OpJumpIfFalse, int(sentinelJumpTarget), dst, 0)
	} else {
		shortCircuitJump = e.emit(n.Span.Start.Line, OpJumpIfTrue, int(sentinelJumpTarget), dst, 0)
	}

	right := e.getNCReg(n, e.emitExpr(n.Right))
	e.emit(n.Span.Start.Line, OpMove, dst, right.index, 0)

	joinAddr := e.chunk.Len()
	e.chunk.at(shortCircuitJump).A = int(joinAddr)
	return reg{index: dst, silent: n.Silent}
}

// sentinelJumpTarget marks a jump whose target is patched immediately
// after the jump is emitted (not a loop-scoped backpatch) — used for
// straight-line control constructs (if/else, short circuit) where the
// target address is known the instant the skipped region finishes
// emitting, unlike break/continue which must wait for the loop's end.
const sentinelJumpTarget = Address(-3)

func (e *Emitter) emitAccess(n *ir.Node) reg {
	obj := e.getNCReg(n, e.emitExpr(n.Left))
	if n.Right == nil || n.Right.Kind != ir.Variable {
		e.fail(n, "access right operand must be a member name")
		return reg{}
	}
	nameReg := e.constReg(constKey{kind: ir.StringLit, s: n.Right.Name}, n.Right.Name)
	dst := e.nextReg()
	e.emit(n.Span.Start.Line, OpLoadAttr, dst, obj.index, nameReg.index)
	return reg{index: dst, silent: n.Silent}
}

func (e *Emitter) emitSubscript(n *ir.Node) reg {
	coll := e.getNCReg(n, e.emitExpr(n.Left))
	idx := e.getNCReg(n, e.emitExpr(n.Right))
	dst := e.nextReg()
	e.emit(n.Span.Start.Line, OpSubscript, dst, coll.index, idx.index)
	return reg{index: dst, silent: n.Silent}
}

func (e *Emitter) emitAssign(n *ir.Node) reg {
	val := e.emitExpr(n.Right)
	e.emitStore(n.Left, val)
	return val
}

func (e *Emitter) emitCompoundAssign(n *ir.Node) reg {
	plainOp, ok := map[ir.Operator]ir.Operator{
		ir.OpSetAdd: ir.OpAdd,
		ir.OpSetSub: ir.OpSub,
		ir.OpSetMul: ir.OpMul,
		ir.OpSetDiv: ir.OpDiv,
		ir.OpSetMod: ir.OpMod,
		ir.OpSetPow: ir.OpPow,
	}[n.Op]
	if !ok {
		e.fail(n, "emitter reached unsupported compound-assign operator %s", n.Op)
		return reg{}
	}
	synthetic := ir.NewBinary(plainOp, n.Left, n.Right, n.Span)
	result := e.emitBinary(synthetic)
	e.emitStore(n.Left, result)
	return result
}

func (e *Emitter) emitStore(target *ir.Node, val reg) {
	val = e.getNCReg(target, val)
	switch target.Kind {
	case ir.Variable:
		nameReg := e.constReg(constKey{kind: ir.StringLit, s: target.Name}, target.Name)
		e.emit(target.Span.Start.Line, OpMove, nameReg.index, val.index, 0)
	case ir.BinaryExpr:
		if target.Op == ir.OpAccess {
			obj := e.getNCReg(target, e.emitExpr(target.Left))
			nameReg := e.constReg(constKey{kind: ir.StringLit, s: target.Right.Name}, target.Right.Name)
			e.emit(target.Span.Start.Line, OpLoadAttr, val.index, obj.index, nameReg.index)
			return
		}
		if target.Op == ir.OpSubscr {
			coll := e.getNCReg(target, e.emitExpr(target.Left))
			idx := e.getNCReg(target, e.emitExpr(target.Right))
			e.emit(target.Span.Start.Line, OpSubscript, val.index, coll.index, idx.index)
			return
		}
		e.fail(target, "emitter reached unsupported assignment target")
	case ir.Multivar:
		e.emitMultivarBind(target, val)
	default:
		e.fail(target, "emitter reached unsupported assignment target kind %s", target.Kind)
	}
}

func (e *Emitter) emitMultivarBind(target *ir.Node, val reg) {
	for i, v := range target.Vars {
		idxReg := e.constReg(constKey{kind: ir.IntLit, i: int64(i)}, int64(i))
		elem := e.nextReg()
		e.emit(target.Span.Start.Line, OpSubscript, elem, val.index, idxReg.index)
		e.emitStore(v, reg{index: elem})
	}
}

func (e *Emitter) emitScope(n *ir.Node) reg {
	if n.Left == nil {
		// Bare top-level `::name` / `::$name`: resolved open question 2 —
		// an explicit module-rooted global lookup, lowered identically to
		// a non-local variable load, just rooted at the module scope
		// rather than the lexically enclosing one.
		return e.emitVariable(n.Right)
	}
	left := e.getNCReg(n, e.emitExpr(n.Left))
	if n.Right.Kind != ir.Variable {
		e.fail(n, "scope right operand must be a name")
		return reg{}
	}
	nameReg := e.constReg(constKey{kind: ir.StringLit, s: n.Right.Name}, n.Right.Name)
	dst := e.nextReg()
	e.emit(n.Span.Start.Line, OpLoadAttr, dst, left.index, nameReg.index)
	return reg{index: dst, silent: n.Silent}
}

func (e *Emitter) emitUnary(n *ir.Node) reg {
	operand := e.getNCReg(n, e.emitExpr(n.Left))
	var op OpCode
	switch n.Op {
	case ir.OpUnaryNeg:
		op = OpUnaryNeg
	case ir.OpNot:
		op = OpUnaryNot
	case ir.OpUnaryPos:
		return operand
	default:
		e.fail(n, "emitter reached unsupported unary operator %s", n.Op)
		return reg{}
	}
	dst := e.nextReg()
	e.emit(n.Span.Start.Line, op, dst, operand.index, 0)
	return reg{index: dst, silent: n.Silent}
}

// emitCall lowers argument pushes (positional, or named for a
// `name = value`-shaped argument) followed by a call referencing the
// callee register.
func (e *Emitter) emitCall(n *ir.Node) reg {
	callee := e.getNCReg(n, e.emitExpr(n.Callee))
	for _, arg := range n.Args {
		if arg.Kind == ir.BinaryExpr && arg.Op == ir.OpAssign && arg.Left != nil && arg.Left.Kind == ir.Variable {
			val := e.getNCReg(arg, e.emitExpr(arg.Right))
			nameReg := e.constReg(constKey{kind: ir.StringLit, s: arg.Left.Name}, arg.Left.Name)
			e.emit(arg.Span.Start.Line, OpPushNamedArg, val.index, nameReg.index, 0)
			continue
		}
		val := e.getNCReg(arg, e.emitExpr(arg))
		e.emit(arg.Span.Start.Line, OpPushArg, val.index, 0, 0)
	}
	dst := e.nextReg()
	e.emit(n.Span.Start.Line, OpCall, dst, callee.index, len(n.Args))
	return reg{index: dst, silent: n.Silent}
}

func (e *Emitter) emitList(n *ir.Node) reg {
	if n.IsComprehension {
		e.fail(n, "emitter reached unsupported list comprehension")
		return reg{}
	}
	regs := make([]reg, len(n.Elements))
	for i, el := range n.Elements {
		regs[i] = e.getNCReg(el, e.emitExpr(el))
	}
	dst := e.nextReg()
	e.emit(n.Span.Start.Line, OpNewList, dst, len(regs), 0)
	return reg{index: dst, silent: n.Silent}
}

func (e *Emitter) emitDict(n *ir.Node) reg {
	if len(n.Keys) != len(n.Values) {
		e.fail(n, "dict literal has mismatched key/value counts")
		return reg{}
	}
	for i := range n.Keys {
		e.getNCReg(n.Keys[i], e.emitExpr(n.Keys[i]))
		e.getNCReg(n.Values[i], e.emitExpr(n.Values[i]))
	}
	dst := e.nextReg()
	e.emit(n.Span.Start.Line, OpNewDict, dst, len(n.Keys), 0)
	return reg{index: dst, silent: n.Silent}
}

func (e *Emitter) emitRange(n *ir.Node) reg {
	start := e.getNCReg(n, e.emitExpr(n.Start))
	end := e.getNCReg(n, e.emitExpr(n.End))
	dst := e.nextReg()
	e.emit(n.Span.Start.Line, OpRange, dst, start.index, end.index)
	return reg{index: dst, silent: n.Silent}
}

// emitTernary lowers `cond ? then : else` the same shape as if/else, but
// as an expression yielding a shared destination register.
func (e *Emitter) emitTernary(n *ir.Node) reg {
	cond := e.getNCReg(n, e.emitExpr(n.Cond))
	dst := e.nextReg()
	jmpElse := e.emit(n.Span.Start.Line, OpJumpIfFalse, int(sentinelJumpTarget), cond.index, 0)

	then := e.getNCReg(n, e.emitExpr(n.Then))
	e.emit(n.Span.Start.Line, OpMove, dst, then.index, 0)
	jmpEnd := e.emit(n.Span.Start.Line, OpJump, int(sentinelJumpTarget), 0, 0)

	elseAddr := e.chunk.Len()
	e.chunk.at(jmpElse).A = int(elseAddr)
	elseVal := e.getNCReg(n, e.emitExpr(n.ElseVal))
	e.emit(n.Span.Start.Line, OpMove, dst, elseVal.index, 0)

	endAddr := e.chunk.Len()
	e.chunk.at(jmpEnd).A = int(endAddr)
	return reg{index: dst, silent: n.Silent}
}

// --- control flow ---------------------------------------------------------

func (e *Emitter) emitIf(n *ir.Node) {
	cond := e.getNCReg(n, e.emitExpr(n.Cond))
	jmpElse := e.emit(n.Span.Start.Line, OpJumpIfFalse, int(sentinelJumpTarget), cond.index, 0)

	e.emitBlock(n.Body)
	jmpEnd := e.emit(n.Span.Start.Line, OpJump, int(sentinelJumpTarget), 0, 0)

	elseAddr := e.chunk.Len()
	e.chunk.at(jmpElse).A = int(elseAddr)
	if n.ElseBranch != nil {
		e.emitBlock(n.ElseBranch.Body)
	}

	endAddr := e.chunk.Len()
	e.chunk.at(jmpEnd).A = int(endAddr)
}

func (e *Emitter) emitWhile(n *ir.Node) {
	start := e.chunk.Len()
	e.loopDepth++

	cond := e.getNCReg(n, e.emitExpr(n.Cond))
	jmpEnd := e.emit(n.Span.Start.Line, OpJumpIfFalse, int(sentinelJumpTarget), cond.index, 0)

	e.emitBlock(n.Body)
	e.emit(n.Span.Start.Line, OpJump, int(start), 0, 0)

	end := e.chunk.Len()
	e.chunk.at(jmpEnd).A = int(end)
	e.backpatchLoop(start, end, end, start)
}

func (e *Emitter) emitDoWhile(n *ir.Node) {
	start := e.chunk.Len()
	e.loopDepth++

	e.emitBlock(n.Body)
	contAddr := e.chunk.Len()
	cond := e.getNCReg(n, e.emitExpr(n.Cond))
	e.emit(n.Span.Start.Line, OpJumpIfTrue, int(start), cond.index, 0)

	end := e.chunk.Len()
	e.backpatchLoop(start, end, end, contAddr)
}

func (e *Emitter) emitForLoop(n *ir.Node) {
	coll := e.getNCReg(n, e.emitExpr(n.Collection))
	iter := e.nextReg()
	e.emit(n.Span.Start.Line, OpMakeIterator, iter, coll.index, 0)

	start := e.chunk.Len()
	e.loopDepth++

	value := e.nextReg()
	jmpEnd := e.emit(n.Span.Start.Line, OpIterNext, value, iter, int(sentinelJumpTarget))
	e.emitStore(n.Iterator, reg{index: value})

	e.emitBlock(n.Body)
	e.emit(n.Span.Start.Line, OpJump, int(start), 0, 0)

	end := e.chunk.Len()
	e.chunk.at(jmpEnd).C = int(end)
	e.backpatchLoop(start, end, end, start)
}

// emitSwitch lowers cases to a sequence of eq+cond-jump pairs against the
// switch expression's register, default as the fallthrough landing.
func (e *Emitter) emitSwitch(n *ir.Node) {
	subject := e.getNCReg(n, e.emitExpr(n.Cond))

	var jumpsToEnd []Address
	var defaultCase *ir.Node

	for _, c := range n.Cases {
		if c.IsDefault {
			defaultCase = c
			continue
		}
		var jumpsToBody []Address
		for _, val := range c.CaseValues {
			v := e.getNCReg(val, e.emitExpr(val))
			eqDst := e.nextReg()
			e.emit(c.Span.Start.Line, OpEq, eqDst, subject.index, v.index)
			jumpsToBody = append(jumpsToBody, e.emit(c.Span.Start.Line, OpJumpIfTrue, int(sentinelJumpTarget), eqDst, 0))
		}
		skipBody := e.emit(c.Span.Start.Line, OpJump, int(sentinelJumpTarget), 0, 0)

		bodyAddr := e.chunk.Len()
		for _, j := range jumpsToBody {
			e.chunk.at(j).A = int(bodyAddr)
		}
		e.emitBlock(c.Body)
		jumpsToEnd = append(jumpsToEnd, e.emit(c.Span.Start.Line, OpJump, int(sentinelJumpTarget), 0, 0))

		afterBody := e.chunk.Len()
		e.chunk.at(skipBody).A = int(afterBody)
	}

	if defaultCase != nil {
		e.emitBlock(defaultCase.Body)
	}

	end := e.chunk.Len()
	for _, j := range jumpsToEnd {
		e.chunk.at(j).A = int(end)
	}
}

// emitTry pushes a handler covering the try body, then lowers the catches
// and an optional finally. The finally block is emitted once, after the
// catches: normal completion of the try body jumps to it, and the raise
// path reaches it by falling through the catch code. A break, continue or
// return inside the try body jumps or returns directly, without running
// the finally block or popping the handler.
func (e *Emitter) emitTry(n *ir.Node) {
	pushHandler := e.emit(n.Span.Start.Line, OpPushHandler, int(sentinelJumpTarget), int(sentinelJumpTarget), 0)

	e.emitBlock(n.Body)
	e.emit(n.Span.Start.Line, OpPopHandler, 0, 0, 0)
	jmpEnd := e.emit(n.Span.Start.Line, OpJump, int(sentinelJumpTarget), 0, 0)

	catchAddr := e.chunk.Len()
	e.chunk.at(pushHandler).A = int(catchAddr)
	for _, c := range n.Catches {
		e.emitBlock(c.Body)
	}

	finallyAddr := e.chunk.Len()
	if n.FinallyBlock != nil {
		e.chunk.at(pushHandler).B = int(finallyAddr)
		e.emitBlock(n.FinallyBlock.Body)
	} else {
		e.chunk.at(pushHandler).B = -1
	}

	e.chunk.at(jmpEnd).A = int(finallyAddr)
}

func (e *Emitter) emitBreak(n *ir.Node) {
	e.emit(n.Span.Start.Line, OpJump, int(sentinelBreak), 0, 0)
}

func (e *Emitter) emitContinue(n *ir.Node) {
	e.emit(n.Span.Start.Line, OpJump, int(sentinelContinue), 0, 0)
}

// backpatchLoop walks [start, end) of the buffer and rewrites every
// placeholder jump targeting the break/continue sentinel to brk/cont.
// Nested loops are safe because each call's range is bounded to its own
// loop body; an outer loop's sentinels sitting outside that range are
// left untouched until that loop's own backpatch call.
func (e *Emitter) backpatchLoop(start, end Address, brk, cont Address) {
	e.loopDepth--
	for addr := start; addr < end; addr++ {
		in := e.chunk.at(addr)
		if in.Op != OpJump {
			// Only a bare OpJump's A is a break/continue placeholder; other
			// opcodes legitimately use -1/-2 in A for unrelated reasons
			// (e.g. OpReturn's "no value" marker) and must not be touched.
			continue
		}
		switch Address(in.A) {
		case sentinelBreak:
			in.A = int(brk)
		case sentinelContinue:
			in.A = int(cont)
		}
	}
}

func (e *Emitter) emitReturn(n *ir.Node) {
	if n.Value == nil {
		e.emit(n.Span.Start.Line, OpReturn, -1, 0, 0)
		return
	}
	val := e.getNCReg(n, e.emitExpr(n.Value))
	e.emit(n.Span.Start.Line, OpReturn, val.index, 0, 0)
}

func (e *Emitter) emitRaiseStmt(n *ir.Node) {
	val := e.getNCReg(n, e.emitExpr(n.Exception))
	e.emit(n.Span.Start.Line, OpRaise, val.index, 0, 0)
}

func (e *Emitter) emitAssert(n *ir.Node) {
	cond := e.getNCReg(n, e.emitExpr(n.Cond))
	msg := -1
	if n.Message != nil {
		msg = e.getNCReg(n, e.emitExpr(n.Message)).index
	}
	e.emit(n.Span.Start.Line, OpAssert, cond.index, msg, 0)
}

// --- import / function / class --------------------------------------------

func (e *Emitter) emitImport(n *ir.Node) {
	pathKey := fmt.Sprintf("%v", n.Path)
	pathReg := e.constReg(constKey{kind: ir.StringLit, s: pathKey}, n.Path)

	if n.ImportAll {
		e.emit(n.Span.Start.Line, OpImportAll, pathReg.index, 0, 0)
		return
	}

	alias := -1
	if n.ImportAlias != "" {
		alias = e.constReg(constKey{kind: ir.StringLit, s: "alias:" + n.ImportAlias}, n.ImportAlias).index
	}
	if n.ImportNonLocal {
		e.emit(n.Span.Start.Line, OpImportNonLocal, pathReg.index, alias, 0)
		return
	}
	e.emit(n.Span.Start.Line, OpImport, pathReg.index, alias, 0)
}

// emitFunction emits a BuildFunction opcode bracketing the body with an
// entry label and a synthetic `Return nil` if control falls off the end.
// The body is emitted inline into the same buffer and registers reset at
// entry, per spec.
func (e *Emitter) emitFunction(n *ir.Node) {
	nameReg := e.constReg(constKey{kind: ir.StringLit, s: n.Name}, n.Name)
	skip := e.emit(n.Span.Start.Line, OpJump, int(sentinelJumpTarget), 0, 0)

	savedReg, savedCReg := e.currReg, e.currCReg
	e.resetRegs()

	start := e.chunk.Len()
	e.emitBlock(n.Body)
	if len(n.Body) == 0 || n.Body[len(n.Body)-1].Kind != ir.Return {
		e.emit(n.Span.End.Line, OpReturn, -1, 0, 0)
	}
	codeEnd := e.chunk.Len()

	e.currReg, e.currCReg = savedReg, savedCReg

	after := e.chunk.Len()
	e.chunk.at(skip).A = int(after)
	e.emit(n.Span.Start.Line, OpBuildFunction, nameReg.index, int(start), int(codeEnd))
}

// emitLambda emits a Lambda as an expression: BuildFunction binds it under
// a name the same way emitFunction does (auto-generating one when the
// lambda is anonymous, mirroring original_source/midend/ir.hpp's
// annonymous_id counter), then loads that binding back into a general
// register so the value can feed an assignment, call argument, or return.
func (e *Emitter) emitLambda(n *ir.Node) reg {
	name := n.Name
	if name == "" {
		e.anonLambdaCount++
		name = fmt.Sprintf("<lambda%d>", e.anonLambdaCount)
	}
	nameReg := e.constReg(constKey{kind: ir.StringLit, s: name}, name)
	skip := e.emit(n.Span.Start.Line, OpJump, int(sentinelJumpTarget), 0, 0)

	savedReg, savedCReg := e.currReg, e.currCReg
	e.resetRegs()

	start := e.chunk.Len()
	e.emitBlock(n.Body)
	if len(n.Body) == 0 || n.Body[len(n.Body)-1].Kind != ir.Return {
		e.emit(n.Span.End.Line, OpReturn, -1, 0, 0)
	}
	codeEnd := e.chunk.Len()

	e.currReg, e.currCReg = savedReg, savedCReg

	after := e.chunk.Len()
	e.chunk.at(skip).A = int(after)
	e.emit(n.Span.Start.Line, OpBuildFunction, nameReg.index, int(start), int(codeEnd))

	dst := e.nextReg()
	e.emit(n.Span.Start.Line, OpLoadAttr, dst, nameReg.index, 0)
	return reg{index: dst, silent: n.Silent}
}

// emitClass emits a BuildClass opcode; its body is emitted in a
// class-construction context (methods/class variables reached via
// emitStatement attach to the object the VM constructs, per spec), then
// its methods inline the same way emitFunction does.
func (e *Emitter) emitClass(n *ir.Node) {
	nameReg := e.constReg(constKey{kind: ir.StringLit, s: n.Name}, n.Name)
	parentRegs := make([]reg, len(n.Parents))
	for i, p := range n.Parents {
		parentRegs[i] = e.getNCReg(p, e.emitExpr(p))
	}

	skip := e.emit(n.Span.Start.Line, OpJump, int(sentinelJumpTarget), 0, 0)
	start := e.chunk.Len()
	e.emitBlock(n.Body)
	after := e.chunk.Len()
	e.chunk.at(skip).A = int(after)

	e.emit(n.Span.Start.Line, OpBuildClass, nameReg.index, len(parentRegs), int(start))
}

func (e *Emitter) emitEnum(n *ir.Node) {
	nameReg := e.constReg(constKey{kind: ir.StringLit, s: n.Name}, n.Name)
	for _, v := range n.EnumValues {
		e.emitStatement(v)
	}
	e.emit(n.Span.Start.Line, OpBuildClass, nameReg.index, 0, int(e.chunk.Len()))
}
