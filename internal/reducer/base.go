package reducer

import (
	"github.com/leo-lang/avmc/internal/ast"
	"github.com/leo-lang/avmc/internal/ids"
)

// Base is embedded by every concrete pass. Its methods reassemble each
// node with the same shape and the same NodeId — the "reuse id when
// semantics unchanged" half of the id-preserving reconstruction
// contract (spec.md §4.1). A pass overrides only the handful of methods
// whose node kind it actually rewrites; everything else falls through
// to these defaults via the Reconstructor interface dispatch in
// reconstruct.go (Go has no virtual methods, so the Driver — not
// self-calls on Base — is what makes override-some-methods work).
//
// Builder is exposed so overriding methods can mint fresh NodeIds for
// genuinely new nodes (e.g. a freshly introduced temporary) without
// each pass wiring its own allocator.
type Base struct {
	Builder *ids.Builder
	emitted []ast.Stmt
}

// NewBase returns a Base sharing the given id allocator, which should be
// the single Builder the enclosing compiler-state owns (spec.md §5).
func NewBase(b *ids.Builder) Base {
	return Base{Builder: b}
}

func (b *Base) EmitStatement(stmt ast.Stmt) {
	b.emitted = append(b.emitted, stmt)
}

func (b *Base) TakeEmitted() []ast.Stmt {
	out := b.emitted
	b.emitted = nil
	return out
}

func (*Base) ReducePath(old *ast.Path) ast.Expr { return old }
func (*Base) ReduceLiteral(old *ast.Literal) ast.Expr { return old }

func (*Base) ReduceUnary(old *ast.Unary, inner ast.Expr) ast.Expr {
	return &ast.Unary{Base: old.Base, Op: old.Op, Inner: inner}
}

func (*Base) ReduceBinary(old *ast.Binary, left, right ast.Expr) ast.Expr {
	return &ast.Binary{Base: old.Base, Op: old.Op, Left: left, Right: right}
}

func (*Base) ReduceTernary(old *ast.Ternary, cond, ifTrue, ifFalse ast.Expr) ast.Expr {
	return &ast.Ternary{Base: old.Base, Cond: cond, IfTrue: ifTrue, IfFalse: ifFalse}
}

func (*Base) ReduceCast(old *ast.Cast, inner ast.Expr) ast.Expr {
	return &ast.Cast{Base: old.Base, Inner: inner, Target: old.Target}
}

func (*Base) ReduceArray(old *ast.Array, elements []ast.Expr) ast.Expr {
	return &ast.Array{Base: old.Base, Elements: elements}
}

func (*Base) ReduceTuple(old *ast.Tuple, elements []ast.Expr) ast.Expr {
	return &ast.Tuple{Base: old.Base, Elements: elements}
}

func (*Base) ReduceRepeat(old *ast.Repeat, element ast.Expr, dims []ast.Expr) ast.Expr {
	return &ast.Repeat{Base: old.Base, Element: element, Dimensions: dims}
}

func (*Base) ReduceCall(old *ast.Call, callee ast.Expr, constArgs, args []ast.Expr) ast.Expr {
	return &ast.Call{Base: old.Base, Callee: callee, ConstArgs: constArgs, Args: args}
}

func (*Base) ReduceComposite(old *ast.Composite, constArgs []ast.Expr, fields []ast.CompositeField) ast.Expr {
	return &ast.Composite{Base: old.Base, Type: old.Type, ConstArgs: constArgs, Fields: fields}
}

func (*Base) ReduceArrayAccess(old *ast.ArrayAccess, array, index ast.Expr) ast.Expr {
	return &ast.ArrayAccess{Base: old.Base, Array: array, Index: index}
}

func (*Base) ReduceMemberAccess(old *ast.MemberAccess, operand ast.Expr) ast.Expr {
	return &ast.MemberAccess{Base: old.Base, Operand: operand, Member: old.Member}
}

func (*Base) ReduceTupleAccess(old *ast.TupleAccess, operand ast.Expr) ast.Expr {
	return &ast.TupleAccess{Base: old.Base, Operand: operand, Index: old.Index}
}

func (*Base) ReduceIntrinsic(old *ast.Intrinsic, constArgs, args []ast.Expr) ast.Expr {
	return &ast.Intrinsic{Base: old.Base, Name: old.Name, ConstArgs: constArgs, Args: args}
}

func (*Base) ReduceAsync(old *ast.Async, args []ast.Expr) ast.Expr {
	return &ast.Async{Base: old.Base, Program: old.Program, Callee: old.Callee, Args: args}
}

func (*Base) ReduceUnit(old *ast.Unit) ast.Expr { return old }
func (*Base) ReduceErr(old *ast.Err) ast.Expr   { return old }

func (*Base) ReduceDefinition(old *ast.Definition, value ast.Expr) ast.Stmt {
	return &ast.Definition{Base: old.Base, Place: old.Place, Type: old.Type, Value: value}
}

func (*Base) ReduceAssign(old *ast.Assign, value ast.Expr) ast.Stmt {
	return &ast.Assign{Base: old.Base, Place: old.Place, Op: old.Op, Value: value}
}

func (*Base) ReduceBlock(old *ast.Block, stmts []ast.Stmt) *ast.Block {
	return &ast.Block{Base: old.Base, Statements: stmts}
}

func (*Base) ReduceConditional(old *ast.Conditional, cond ast.Expr, then *ast.Block, els ast.Stmt) ast.Stmt {
	return &ast.Conditional{Base: old.Base, Cond: cond, Then: then, Else: els}
}

func (*Base) ReduceIteration(old *ast.Iteration, start, stop ast.Expr, body *ast.Block) ast.Stmt {
	return &ast.Iteration{
		Base: old.Base, LoopVar: old.LoopVar, VarType: old.VarType,
		Start: start, Stop: stop, Inclusive: old.Inclusive, Body: body,
	}
}

func (*Base) ReduceReturn(old *ast.Return, value ast.Expr) ast.Stmt {
	return &ast.Return{Base: old.Base, Value: value}
}

func (*Base) ReduceAssert(old *ast.Assert, args []ast.Expr) ast.Stmt {
	return &ast.Assert{Base: old.Base, Kind: old.Kind, Args: args}
}

func (*Base) ReduceExpressionStatement(old *ast.ExpressionStatement, value ast.Expr) ast.Stmt {
	return &ast.ExpressionStatement{Base: old.Base, Value: value}
}

func (*Base) ReduceConst(old *ast.Const, value ast.Expr) ast.Stmt {
	return &ast.Const{Base: old.Base, Name: old.Name, Value: value}
}

func (*Base) ReduceEmpty(old *ast.Empty) ast.Stmt { return old }

func (*Base) ReduceFunction(old *ast.Function, body *ast.Block) *ast.Function {
	cp := *old
	cp.Body = body
	return &cp
}

func (*Base) ReduceProgram(old *ast.Program, funcs []*ast.Function) *ast.Program {
	cp := *old
	cp.Functions = funcs
	return &cp
}
