package reducer

import "github.com/leo-lang/avmc/internal/ast"

// Folder computes a monoidal summary of an AST subtree — free variables,
// referenced symbols, a NodeId multiset for uniqueness checks, whatever
// T a given pass needs (spec.md §4.1: "a folding reducer AST -> T for a
// monoidal T"). The summary type is carried as `any`; Zero and Combine
// define the monoid, and the FoldXxx methods let a node kind contribute
// its own value (e.g. FoldPath returning a singleton set) on top of its
// children's already-combined summary.
//
// As with Reconstructor, a pass embeds BaseFolder and overrides only
// the node kinds it cares about. BaseFolder has no access to Combine, so
// its defaults pass a single child's summary through but return nil for
// most nodes with several children (see BaseFolder).
type Folder interface {
	Zero() any
	Combine(a, b any) any

	FoldPath(n *ast.Path) any
	FoldLiteral(n *ast.Literal) any
	FoldUnary(n *ast.Unary, inner any) any
	FoldBinary(n *ast.Binary, left, right any) any
	FoldTernary(n *ast.Ternary, cond, ifTrue, ifFalse any) any
	FoldCast(n *ast.Cast, inner any) any
	FoldArray(n *ast.Array, elements any) any
	FoldTuple(n *ast.Tuple, elements any) any
	FoldRepeat(n *ast.Repeat, element, dims any) any
	FoldCall(n *ast.Call, callee, constArgs, args any) any
	FoldComposite(n *ast.Composite, constArgs, fields any) any
	FoldArrayAccess(n *ast.ArrayAccess, array, index any) any
	FoldMemberAccess(n *ast.MemberAccess, operand any) any
	FoldTupleAccess(n *ast.TupleAccess, operand any) any
	FoldIntrinsic(n *ast.Intrinsic, constArgs, args any) any
	FoldAsync(n *ast.Async, args any) any
	FoldUnit(n *ast.Unit) any
	FoldErr(n *ast.Err) any

	FoldDefinition(n *ast.Definition, value any) any
	FoldAssign(n *ast.Assign, value any) any
	FoldBlock(n *ast.Block, stmts any) any
	FoldConditional(n *ast.Conditional, cond, then, els any) any
	FoldIteration(n *ast.Iteration, start, stop, body any) any
	FoldReturn(n *ast.Return, value any) any
	FoldAssert(n *ast.Assert, args any) any
	FoldExpressionStatement(n *ast.ExpressionStatement, value any) any
	FoldConst(n *ast.Const, value any) any
	FoldEmpty(n *ast.Empty) any

	FoldFunction(n *ast.Function, body any) any
	FoldProgram(n *ast.Program, funcs any) any
}

// FoldExpr drives bottom-up summary computation of a single expression.
func FoldExpr(f Folder, e ast.Expr) any {
	if e == nil {
		return f.Zero()
	}
	switch n := e.(type) {
	case *ast.Path:
		return f.FoldPath(n)
	case *ast.Literal:
		return f.FoldLiteral(n)
	case *ast.Unary:
		return f.FoldUnary(n, FoldExpr(f, n.Inner))
	case *ast.Binary:
		return f.FoldBinary(n, FoldExpr(f, n.Left), FoldExpr(f, n.Right))
	case *ast.Ternary:
		return f.FoldTernary(n, FoldExpr(f, n.Cond), FoldExpr(f, n.IfTrue), FoldExpr(f, n.IfFalse))
	case *ast.Cast:
		return f.FoldCast(n, FoldExpr(f, n.Inner))
	case *ast.Array:
		return f.FoldArray(n, foldExprs(f, n.Elements))
	case *ast.Tuple:
		return f.FoldTuple(n, foldExprs(f, n.Elements))
	case *ast.Repeat:
		return f.FoldRepeat(n, FoldExpr(f, n.Element), foldExprs(f, n.Dimensions))
	case *ast.Call:
		return f.FoldCall(n, FoldExpr(f, n.Callee), foldExprs(f, n.ConstArgs), foldExprs(f, n.Args))
	case *ast.Composite:
		fields := f.Zero()
		for _, field := range n.Fields {
			fields = f.Combine(fields, FoldExpr(f, field.Value))
		}
		return f.FoldComposite(n, foldExprs(f, n.ConstArgs), fields)
	case *ast.ArrayAccess:
		return f.FoldArrayAccess(n, FoldExpr(f, n.Array), FoldExpr(f, n.Index))
	case *ast.MemberAccess:
		return f.FoldMemberAccess(n, FoldExpr(f, n.Operand))
	case *ast.TupleAccess:
		return f.FoldTupleAccess(n, FoldExpr(f, n.Operand))
	case *ast.Intrinsic:
		return f.FoldIntrinsic(n, foldExprs(f, n.ConstArgs), foldExprs(f, n.Args))
	case *ast.Async:
		return f.FoldAsync(n, foldExprs(f, n.Args))
	case *ast.Unit:
		return f.FoldUnit(n)
	case *ast.Err:
		return f.FoldErr(n)
	default:
		panic("reducer: unhandled expression kind")
	}
}

func foldExprs(f Folder, es []ast.Expr) any {
	acc := f.Zero()
	for _, e := range es {
		acc = f.Combine(acc, FoldExpr(f, e))
	}
	return acc
}

// FoldStmt drives bottom-up summary computation of a single statement.
func FoldStmt(f Folder, s ast.Stmt) any {
	if s == nil {
		return f.Zero()
	}
	switch n := s.(type) {
	case *ast.Definition:
		return f.FoldDefinition(n, FoldExpr(f, n.Value))
	case *ast.Assign:
		return f.FoldAssign(n, FoldExpr(f, n.Value))
	case *ast.Block:
		return FoldBlock(f, n)
	case *ast.Conditional:
		els := f.Zero()
		if n.Else != nil {
			els = FoldStmt(f, n.Else)
		}
		return f.FoldConditional(n, FoldExpr(f, n.Cond), FoldBlock(f, n.Then), els)
	case *ast.Iteration:
		return f.FoldIteration(n, FoldExpr(f, n.Start), FoldExpr(f, n.Stop), FoldBlock(f, n.Body))
	case *ast.Return:
		return f.FoldReturn(n, FoldExpr(f, n.Value))
	case *ast.Assert:
		return f.FoldAssert(n, foldExprs(f, n.Args))
	case *ast.ExpressionStatement:
		return f.FoldExpressionStatement(n, FoldExpr(f, n.Value))
	case *ast.Const:
		return f.FoldConst(n, FoldExpr(f, n.Value))
	case *ast.Empty:
		return f.FoldEmpty(n)
	default:
		panic("reducer: unhandled statement kind")
	}
}

// FoldBlock folds a statement sequence, combining in source order.
func FoldBlock(f Folder, b *ast.Block) any {
	acc := f.Zero()
	for _, s := range b.Statements {
		acc = f.Combine(acc, FoldStmt(f, s))
	}
	return f.FoldBlock(b, acc)
}

// FoldFunction folds one function's body.
func FoldFunction(f Folder, fn *ast.Function) any {
	return f.FoldFunction(fn, FoldBlock(f, fn.Body))
}

// FoldProgram folds every function in a program and combines the
// results; passes that also need to fold structs/interfaces/mappings do
// so directly over Program's slices using FoldFunction-style helpers.
func FoldProgram(f Folder, p *ast.Program) any {
	acc := f.Zero()
	for _, fn := range p.Functions {
		acc = f.Combine(acc, FoldFunction(f, fn))
	}
	return f.FoldProgram(p, acc)
}

// BaseFolder is embedded by folds that only care about a subset of node
// kinds. Its defaults contribute nothing of their own: nodes with one
// child summary (Unary, Cast, Array, Tuple, MemberAccess, TupleAccess,
// Async and most statements) pass it through, Composite passes only its
// fields' summary, and Binary, Ternary, Repeat, Call, ArrayAccess,
// Intrinsic, Conditional and Iteration return nil, dropping their
// children's summaries, as do the leaves Path, Literal, Unit, Err and
// Empty.
type BaseFolder struct{}

func (BaseFolder) FoldPath(*ast.Path) any       { return nil }
func (BaseFolder) FoldLiteral(*ast.Literal) any { return nil }
func (BaseFolder) FoldUnary(_ *ast.Unary, inner any) any                     { return inner }
func (BaseFolder) FoldBinary(_ *ast.Binary, left, right any) any             { return nil }
func (BaseFolder) FoldTernary(_ *ast.Ternary, cond, ifTrue, ifFalse any) any { return nil }
func (BaseFolder) FoldCast(_ *ast.Cast, inner any) any                      { return inner }
func (BaseFolder) FoldArray(_ *ast.Array, elements any) any                 { return elements }
func (BaseFolder) FoldTuple(_ *ast.Tuple, elements any) any                 { return elements }
func (BaseFolder) FoldRepeat(_ *ast.Repeat, element, dims any) any          { return nil }
func (BaseFolder) FoldCall(_ *ast.Call, callee, constArgs, args any) any    { return nil }
func (BaseFolder) FoldComposite(_ *ast.Composite, constArgs, fields any) any { return fields }
func (BaseFolder) FoldArrayAccess(_ *ast.ArrayAccess, array, index any) any { return nil }
func (BaseFolder) FoldMemberAccess(_ *ast.MemberAccess, operand any) any    { return operand }
func (BaseFolder) FoldTupleAccess(_ *ast.TupleAccess, operand any) any      { return operand }
func (BaseFolder) FoldIntrinsic(_ *ast.Intrinsic, constArgs, args any) any  { return nil }
func (BaseFolder) FoldAsync(_ *ast.Async, args any) any                    { return args }
func (BaseFolder) FoldUnit(*ast.Unit) any { return nil }
func (BaseFolder) FoldErr(*ast.Err) any   { return nil }

func (BaseFolder) FoldDefinition(_ *ast.Definition, value any) any { return value }
func (BaseFolder) FoldAssign(_ *ast.Assign, value any) any         { return value }
func (BaseFolder) FoldBlock(_ *ast.Block, stmts any) any           { return stmts }
func (BaseFolder) FoldConditional(_ *ast.Conditional, cond, then, els any) any { return nil }
func (BaseFolder) FoldIteration(_ *ast.Iteration, start, stop, body any) any   { return nil }
func (BaseFolder) FoldReturn(_ *ast.Return, value any) any                    { return value }
func (BaseFolder) FoldAssert(_ *ast.Assert, args any) any                     { return args }
func (BaseFolder) FoldExpressionStatement(_ *ast.ExpressionStatement, value any) any { return value }
func (BaseFolder) FoldConst(_ *ast.Const, value any) any { return value }
func (BaseFolder) FoldEmpty(*ast.Empty) any              { return nil }

func (BaseFolder) FoldFunction(_ *ast.Function, body any) any { return body }
func (BaseFolder) FoldProgram(_ *ast.Program, funcs any) any  { return funcs }
