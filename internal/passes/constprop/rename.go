package constprop

import (
	"github.com/leo-lang/avmc/internal/ast"
	"github.com/leo-lang/avmc/internal/ids"
	"github.com/leo-lang/avmc/internal/reducer"
)

// renamer alpha-renames every name bound inside the cloned subtree by
// appending a fixed suffix, and allocates a fresh NodeId for every node
// it touches. Used by loop unrolling and monomorphization (spec.md
// §4.7) to duplicate a block/body without violating Testable Property
// 1 (node-id uniqueness) or the SSA property (spec.md §8's "every local
// name has exactly one definition") across the duplicated copies.
type renamer struct {
	builder *ids.Builder
	suffix  string
	renamed map[string]string
}

func renameBlock(b *ast.Block, suffix string, builder *ids.Builder) *ast.Block {
	r := &renamer{builder: builder, suffix: suffix, renamed: map[string]string{}}
	return reducer.Block(r, b)
}

func (r *renamer) rename(name string) string {
	if got, ok := r.renamed[name]; ok {
		return got
	}
	got := name + r.suffix
	r.renamed[name] = got
	return got
}

func (r *renamer) lookup(name string) string {
	if got, ok := r.renamed[name]; ok {
		return got
	}
	return name
}

func (r *renamer) id() ids.NodeId { return r.builder.Next() }

func (r *renamer) ReducePath(old *ast.Path) ast.Expr {
	segs := old.Segments
	if len(segs) == 1 {
		segs = []string{r.lookup(segs[0])}
	}
	return &ast.Path{Base: ast.Base{NodeID: r.id(), Sp: old.Sp}, Segments: segs}
}

func (r *renamer) ReduceLiteral(old *ast.Literal) ast.Expr {
	cp := *old
	cp.Base = ast.Base{NodeID: r.id(), Sp: old.Sp}
	return &cp
}

func (r *renamer) ReduceUnary(old *ast.Unary, inner ast.Expr) ast.Expr {
	return &ast.Unary{Base: ast.Base{NodeID: r.id(), Sp: old.Sp}, Op: old.Op, Inner: inner}
}

func (r *renamer) ReduceBinary(old *ast.Binary, left, right ast.Expr) ast.Expr {
	return &ast.Binary{Base: ast.Base{NodeID: r.id(), Sp: old.Sp}, Op: old.Op, Left: left, Right: right}
}

func (r *renamer) ReduceTernary(old *ast.Ternary, cond, ifTrue, ifFalse ast.Expr) ast.Expr {
	return &ast.Ternary{Base: ast.Base{NodeID: r.id(), Sp: old.Sp}, Cond: cond, IfTrue: ifTrue, IfFalse: ifFalse}
}

func (r *renamer) ReduceCast(old *ast.Cast, inner ast.Expr) ast.Expr {
	return &ast.Cast{Base: ast.Base{NodeID: r.id(), Sp: old.Sp}, Inner: inner, Target: old.Target}
}

func (r *renamer) ReduceArray(old *ast.Array, elements []ast.Expr) ast.Expr {
	return &ast.Array{Base: ast.Base{NodeID: r.id(), Sp: old.Sp}, Elements: elements}
}

func (r *renamer) ReduceTuple(old *ast.Tuple, elements []ast.Expr) ast.Expr {
	return &ast.Tuple{Base: ast.Base{NodeID: r.id(), Sp: old.Sp}, Elements: elements}
}

func (r *renamer) ReduceRepeat(old *ast.Repeat, element ast.Expr, dims []ast.Expr) ast.Expr {
	return &ast.Repeat{Base: ast.Base{NodeID: r.id(), Sp: old.Sp}, Element: element, Dimensions: dims}
}

func (r *renamer) ReduceCall(old *ast.Call, callee ast.Expr, constArgs, args []ast.Expr) ast.Expr {
	return &ast.Call{Base: ast.Base{NodeID: r.id(), Sp: old.Sp}, Callee: callee, ConstArgs: constArgs, Args: args}
}

func (r *renamer) ReduceComposite(old *ast.Composite, constArgs []ast.Expr, fields []ast.CompositeField) ast.Expr {
	return &ast.Composite{Base: ast.Base{NodeID: r.id(), Sp: old.Sp}, Type: old.Type, ConstArgs: constArgs, Fields: fields}
}

func (r *renamer) ReduceArrayAccess(old *ast.ArrayAccess, array, index ast.Expr) ast.Expr {
	return &ast.ArrayAccess{Base: ast.Base{NodeID: r.id(), Sp: old.Sp}, Array: array, Index: index}
}

func (r *renamer) ReduceMemberAccess(old *ast.MemberAccess, operand ast.Expr) ast.Expr {
	return &ast.MemberAccess{Base: ast.Base{NodeID: r.id(), Sp: old.Sp}, Operand: operand, Member: old.Member}
}

func (r *renamer) ReduceTupleAccess(old *ast.TupleAccess, operand ast.Expr) ast.Expr {
	return &ast.TupleAccess{Base: ast.Base{NodeID: r.id(), Sp: old.Sp}, Operand: operand, Index: old.Index}
}

func (r *renamer) ReduceIntrinsic(old *ast.Intrinsic, constArgs, args []ast.Expr) ast.Expr {
	return &ast.Intrinsic{Base: ast.Base{NodeID: r.id(), Sp: old.Sp}, Name: old.Name, ConstArgs: constArgs, Args: args}
}

func (r *renamer) ReduceAsync(old *ast.Async, args []ast.Expr) ast.Expr {
	return &ast.Async{Base: ast.Base{NodeID: r.id(), Sp: old.Sp}, Program: old.Program, Callee: old.Callee, Args: args}
}

func (r *renamer) ReduceUnit(old *ast.Unit) ast.Expr { return &ast.Unit{Base: ast.Base{NodeID: r.id(), Sp: old.Sp}} }
func (r *renamer) ReduceErr(old *ast.Err) ast.Expr   { return &ast.Err{Base: ast.Base{NodeID: r.id(), Sp: old.Sp}} }

func (r *renamer) ReduceDefinition(old *ast.Definition, value ast.Expr) ast.Stmt {
	names := make([]string, len(old.Place.Names))
	for i, nm := range old.Place.Names {
		names[i] = r.rename(nm)
	}
	return &ast.Definition{Base: ast.Base{NodeID: r.id(), Sp: old.Sp}, Place: ast.Place{Names: names}, Type: old.Type, Value: value}
}

func (r *renamer) ReduceAssign(old *ast.Assign, value ast.Expr) ast.Stmt {
	var names []string
	if len(old.Place.Accessors) == 0 && len(old.Place.Names) == 1 {
		names = []string{r.rename(old.Place.Names[0])}
	} else if len(old.Place.Names) == 1 {
		names = []string{r.lookup(old.Place.Names[0])}
	}
	accessors := make([]ast.Accessor, len(old.Place.Accessors))
	for i, acc := range old.Place.Accessors {
		accessors[i] = acc
		if acc.Kind == ast.AccessArray {
			accessors[i].Expr = reducer.Expr(r, acc.Expr)
		}
	}
	return &ast.Assign{Base: ast.Base{NodeID: r.id(), Sp: old.Sp}, Place: ast.Place{Names: names, Accessors: accessors}, Op: old.Op, Value: value}
}

func (r *renamer) ReduceBlock(old *ast.Block, stmts []ast.Stmt) *ast.Block {
	return &ast.Block{Base: ast.Base{NodeID: r.id(), Sp: old.Sp}, Statements: stmts}
}

func (r *renamer) ReduceConditional(old *ast.Conditional, cond ast.Expr, then *ast.Block, els ast.Stmt) ast.Stmt {
	return &ast.Conditional{Base: ast.Base{NodeID: r.id(), Sp: old.Sp}, Cond: cond, Then: then, Else: els}
}

func (r *renamer) ReduceIteration(old *ast.Iteration, start, stop ast.Expr, body *ast.Block) ast.Stmt {
	return &ast.Iteration{
		Base: ast.Base{NodeID: r.id(), Sp: old.Sp}, LoopVar: r.rename(old.LoopVar), VarType: old.VarType,
		Start: start, Stop: stop, Inclusive: old.Inclusive, Body: body,
	}
}

func (r *renamer) ReduceReturn(old *ast.Return, value ast.Expr) ast.Stmt {
	return &ast.Return{Base: ast.Base{NodeID: r.id(), Sp: old.Sp}, Value: value}
}

func (r *renamer) ReduceAssert(old *ast.Assert, args []ast.Expr) ast.Stmt {
	return &ast.Assert{Base: ast.Base{NodeID: r.id(), Sp: old.Sp}, Kind: old.Kind, Args: args}
}

func (r *renamer) ReduceExpressionStatement(old *ast.ExpressionStatement, value ast.Expr) ast.Stmt {
	return &ast.ExpressionStatement{Base: ast.Base{NodeID: r.id(), Sp: old.Sp}, Value: value}
}

func (r *renamer) ReduceConst(old *ast.Const, value ast.Expr) ast.Stmt {
	return &ast.Const{Base: ast.Base{NodeID: r.id(), Sp: old.Sp}, Name: r.rename(old.Name), Value: value}
}

func (r *renamer) ReduceEmpty(old *ast.Empty) ast.Stmt { return &ast.Empty{Base: ast.Base{NodeID: r.id(), Sp: old.Sp}} }

func (r *renamer) ReduceFunction(old *ast.Function, body *ast.Block) *ast.Function {
	cp := *old
	cp.Body = body
	return &cp
}

func (r *renamer) ReduceProgram(old *ast.Program, funcs []*ast.Function) *ast.Program {
	cp := *old
	cp.Functions = funcs
	return &cp
}

func (r *renamer) EmitStatement(stmt ast.Stmt) { panic("constprop: renamer does not support hoisting") }
func (r *renamer) TakeEmitted() []ast.Stmt      { return nil }
