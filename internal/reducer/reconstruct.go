// Package reducer implements the dual traversal abstractions every pass
// in this compiler core is written against (spec.md §4.1): a
// reconstructing reducer (AST → AST, with an emitted-statement side
// channel for hoisting) and a folding reducer (AST → T for a monoidal
// T). Both traverse every item kind uniformly.
//
// The split mirrors the original compiler's own reducer/director split
// (ast/src/reducer/reconstructing_reducer.rs defines the trait,
// ast/src/reducer/canonicalization.rs-style directors drive it): a
// Reconstructor is a set of per-node-kind callbacks, and the driver
// functions in this file own the post-order recursion; whether a node
// keeps its NodeId or gets a fresh one is up to each callback (Base's
// defaults keep it).
package reducer

import "github.com/leo-lang/avmc/internal/ast"

// Reconstructor is implemented by every AST-to-AST pass. Each method
// receives the original node (for its id/span) and its already-reduced
// children, and returns the replacement node. Passes that only care
// about a handful of node kinds embed *Base and override just those
// methods.
type Reconstructor interface {
	ReducePath(old *ast.Path) ast.Expr
	ReduceLiteral(old *ast.Literal) ast.Expr
	ReduceUnary(old *ast.Unary, inner ast.Expr) ast.Expr
	ReduceBinary(old *ast.Binary, left, right ast.Expr) ast.Expr
	ReduceTernary(old *ast.Ternary, cond, ifTrue, ifFalse ast.Expr) ast.Expr
	ReduceCast(old *ast.Cast, inner ast.Expr) ast.Expr
	ReduceArray(old *ast.Array, elements []ast.Expr) ast.Expr
	ReduceTuple(old *ast.Tuple, elements []ast.Expr) ast.Expr
	ReduceRepeat(old *ast.Repeat, element ast.Expr, dims []ast.Expr) ast.Expr
	ReduceCall(old *ast.Call, callee ast.Expr, constArgs, args []ast.Expr) ast.Expr
	ReduceComposite(old *ast.Composite, constArgs []ast.Expr, fields []ast.CompositeField) ast.Expr
	ReduceArrayAccess(old *ast.ArrayAccess, array, index ast.Expr) ast.Expr
	ReduceMemberAccess(old *ast.MemberAccess, operand ast.Expr) ast.Expr
	ReduceTupleAccess(old *ast.TupleAccess, operand ast.Expr) ast.Expr
	ReduceIntrinsic(old *ast.Intrinsic, constArgs, args []ast.Expr) ast.Expr
	ReduceAsync(old *ast.Async, args []ast.Expr) ast.Expr
	ReduceUnit(old *ast.Unit) ast.Expr
	ReduceErr(old *ast.Err) ast.Expr

	ReduceDefinition(old *ast.Definition, value ast.Expr) ast.Stmt
	ReduceAssign(old *ast.Assign, value ast.Expr) ast.Stmt
	ReduceBlock(old *ast.Block, stmts []ast.Stmt) *ast.Block
	ReduceConditional(old *ast.Conditional, cond ast.Expr, then *ast.Block, els ast.Stmt) ast.Stmt
	ReduceIteration(old *ast.Iteration, start, stop ast.Expr, body *ast.Block) ast.Stmt
	ReduceReturn(old *ast.Return, value ast.Expr) ast.Stmt
	ReduceAssert(old *ast.Assert, args []ast.Expr) ast.Stmt
	ReduceExpressionStatement(old *ast.ExpressionStatement, value ast.Expr) ast.Stmt
	ReduceConst(old *ast.Const, value ast.Expr) ast.Stmt
	ReduceEmpty(old *ast.Empty) ast.Stmt

	ReduceFunction(old *ast.Function, body *ast.Block) *ast.Function
	ReduceProgram(old *ast.Program, funcs []*ast.Function) *ast.Program

	// EmitStatement hoists stmt into the nearest enclosing block, ahead
	// of the statement currently being reduced (spec.md §4.1: "Emitted
	// statements must be insertable at the current block in source
	// order; nested expressions flush their emitted statements to the
	// nearest enclosing block").
	EmitStatement(stmt ast.Stmt)
	// TakeEmitted returns and clears statements emitted since the last
	// call, used by the Block driver to splice them in source order.
	TakeEmitted() []ast.Stmt
}

// Expr drives post-order reconstruction of a single expression.
func Expr(r Reconstructor, e ast.Expr) ast.Expr {
	if e == nil {
		return nil
	}
	switch n := e.(type) {
	case *ast.Path:
		return r.ReducePath(n)
	case *ast.Literal:
		return r.ReduceLiteral(n)
	case *ast.Unary:
		return r.ReduceUnary(n, Expr(r, n.Inner))
	case *ast.Binary:
		return r.ReduceBinary(n, Expr(r, n.Left), Expr(r, n.Right))
	case *ast.Ternary:
		return r.ReduceTernary(n, Expr(r, n.Cond), Expr(r, n.IfTrue), Expr(r, n.IfFalse))
	case *ast.Cast:
		return r.ReduceCast(n, Expr(r, n.Inner))
	case *ast.Array:
		return r.ReduceArray(n, exprs(r, n.Elements))
	case *ast.Tuple:
		return r.ReduceTuple(n, exprs(r, n.Elements))
	case *ast.Repeat:
		return r.ReduceRepeat(n, Expr(r, n.Element), exprs(r, n.Dimensions))
	case *ast.Call:
		return r.ReduceCall(n, Expr(r, n.Callee), exprs(r, n.ConstArgs), exprs(r, n.Args))
	case *ast.Composite:
		fields := make([]ast.CompositeField, len(n.Fields))
		for i, f := range n.Fields {
			fields[i] = ast.CompositeField{Name: f.Name, Value: Expr(r, f.Value)}
		}
		return r.ReduceComposite(n, exprs(r, n.ConstArgs), fields)
	case *ast.ArrayAccess:
		return r.ReduceArrayAccess(n, Expr(r, n.Array), Expr(r, n.Index))
	case *ast.MemberAccess:
		return r.ReduceMemberAccess(n, Expr(r, n.Operand))
	case *ast.TupleAccess:
		return r.ReduceTupleAccess(n, Expr(r, n.Operand))
	case *ast.Intrinsic:
		return r.ReduceIntrinsic(n, exprs(r, n.ConstArgs), exprs(r, n.Args))
	case *ast.Async:
		return r.ReduceAsync(n, exprs(r, n.Args))
	case *ast.Unit:
		return r.ReduceUnit(n)
	case *ast.Err:
		return r.ReduceErr(n)
	default:
		panic("reducer: unhandled expression kind")
	}
}

func exprs(r Reconstructor, es []ast.Expr) []ast.Expr {
	if es == nil {
		return nil
	}
	out := make([]ast.Expr, len(es))
	for i, e := range es {
		out[i] = Expr(r, e)
	}
	return out
}

// Stmt drives post-order reconstruction of a single statement. It does
// NOT flush emitted statements — that is Block's job, since emission is
// only meaningful relative to an enclosing statement sequence.
func Stmt(r Reconstructor, s ast.Stmt) ast.Stmt {
	if s == nil {
		return nil
	}
	switch n := s.(type) {
	case *ast.Definition:
		return r.ReduceDefinition(n, Expr(r, n.Value))
	case *ast.Assign:
		return r.ReduceAssign(n, Expr(r, n.Value))
	case *ast.Block:
		return Block(r, n)
	case *ast.Conditional:
		then := Block(r, n.Then)
		var els ast.Stmt
		if n.Else != nil {
			els = Stmt(r, n.Else)
		}
		return r.ReduceConditional(n, Expr(r, n.Cond), then, els)
	case *ast.Iteration:
		body := Block(r, n.Body)
		return r.ReduceIteration(n, Expr(r, n.Start), Expr(r, n.Stop), body)
	case *ast.Return:
		return r.ReduceReturn(n, Expr(r, n.Value))
	case *ast.Assert:
		return r.ReduceAssert(n, exprs(r, n.Args))
	case *ast.ExpressionStatement:
		return r.ReduceExpressionStatement(n, Expr(r, n.Value))
	case *ast.Const:
		return r.ReduceConst(n, Expr(r, n.Value))
	case *ast.Empty:
		return r.ReduceEmpty(n)
	default:
		panic("reducer: unhandled statement kind")
	}
}

// Block drives reconstruction of a statement sequence, splicing each
// statement's emitted temporaries immediately ahead of it, in source
// order, and dropping statements rewritten to *ast.Empty.
func Block(r Reconstructor, b *ast.Block) *ast.Block {
	var out []ast.Stmt
	for _, s := range b.Statements {
		reduced := Stmt(r, s)
		out = append(out, r.TakeEmitted()...)
		if _, empty := reduced.(*ast.Empty); !empty {
			out = append(out, reduced)
		}
	}
	return r.ReduceBlock(b, out)
}

// Function drives reconstruction of one function's body.
func Function(r Reconstructor, fn *ast.Function) *ast.Function {
	body := Block(r, fn.Body)
	return r.ReduceFunction(fn, body)
}

// Program drives reconstruction of every function in a program; structs,
// records, mappings, interfaces, and imports are not expression-bearing
// and pass through ReduceProgram unchanged (passes that need to rewrite
// them do so directly on the returned Program).
func Program(r Reconstructor, p *ast.Program) *ast.Program {
	funcs := make([]*ast.Function, len(p.Functions))
	for i, fn := range p.Functions {
		funcs[i] = Function(r, fn)
	}
	return r.ReduceProgram(p, funcs)
}
