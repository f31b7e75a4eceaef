package flatten

import (
	"testing"

	"github.com/leo-lang/avmc/internal/ast"
	"github.com/leo-lang/avmc/internal/ids"
	"github.com/leo-lang/avmc/internal/surface"
	"github.com/leo-lang/avmc/internal/symtab"
)

// TestDestructurerSplitsSingleNameTuple covers Testable Property 6:
// `let pair = (a, b); return pair.0;` should end up with no
// TupleAccess nodes left, replaced by a scalar path.
func TestDestructurerSplitsSingleNameTuple(t *testing.T) {
	b := surface.New()
	pairVal := b.Tuple(b.Int("1", ast.U32), b.Int("2", ast.U32))
	let := b.Let("pair", pairVal)
	access := b.TupleAccess(b.Path("pair"), 0)
	body := b.Block(let, b.Return(access))
	fn := b.Function("f", ast.VariantTransition, nil, nil, ast.IntegerType{Int: ast.U32}, body)
	prog := b.Program("p.aleo", []*ast.Function{fn}, nil, nil, nil)

	out := NewDestructurer(b.IDs()).Run(prog)

	stmts := out.Functions[0].Body.Statements
	if len(stmts) != 3 {
		t.Fatalf("expected 2 scalar defs + 1 return, got %d statements: %#v", len(stmts), stmts)
	}

	first, ok := stmts[0].(*ast.Definition)
	if !ok || first.Place.Names[0] != "pair#tuple0" {
		t.Errorf("stmts[0] = %#v, want a Definition binding pair#tuple0", stmts[0])
	}
	second, ok := stmts[1].(*ast.Definition)
	if !ok || second.Place.Names[0] != "pair#tuple1" {
		t.Errorf("stmts[1] = %#v, want a Definition binding pair#tuple1", stmts[1])
	}

	ret, ok := stmts[2].(*ast.Return)
	if !ok {
		t.Fatalf("stmts[2] = %T, want *ast.Return", stmts[2])
	}
	path, ok := ret.Value.(*ast.Path)
	if !ok || len(path.Segments) != 1 || path.Segments[0] != "pair#tuple0" {
		t.Errorf("return value = %#v, want Path{pair#tuple0}", ret.Value)
	}

	var checkNoTupleAccess func(e ast.Expr)
	checkNoTupleAccess = func(e ast.Expr) {
		if _, ok := e.(*ast.TupleAccess); ok {
			t.Errorf("TupleAccess survived destructuring: %#v", e)
		}
	}
	checkNoTupleAccess(ret.Value)
}

// TestDestructureThenFlattenHandlesTupleReassignedInOneBranch is the
// regression case for spec.md §4.10's mandated Destructure-before-
// Flatten order: a tuple-typed local bound once outside a conditional,
// then reassigned to a new tuple only in the "then" branch, must still
// end up with no surviving *ast.Tuple/*ast.TupleAccess (Property 6) once
// both passes have run in that order. Names here ("pair$0", "pair$1")
// are hand-given SSA-shaped surface forms, standing in for what
// internal/passes/ssa would have minted ahead of this pair of passes in
// the real pipeline (internal/pipeline.Run).
func TestDestructureThenFlattenHandlesTupleReassignedInOneBranch(t *testing.T) {
	b := surface.New()
	flag := b.Input("flag", ast.BoolType{}, ast.ModePublic)

	def := b.Let("pair$0", b.Tuple(b.Int("1", ast.U32), b.Int("2", ast.U32)))
	reassign := b.Assign("pair$1", b.Tuple(b.Int("3", ast.U32), b.Int("4", ast.U32)))
	cond := b.If(b.Path("flag"), b.Block(reassign), nil)
	ret := b.Return(b.TupleAccess(b.Path("pair$0"), 0))
	body := b.Block(def, cond, ret)
	fn := b.Function("f", ast.VariantTransition, nil, []ast.Param{flag}, ast.IntegerType{Int: ast.U32}, body)
	prog := b.Program("p.aleo", []*ast.Function{fn}, nil, nil, nil)

	builder := b.IDs()
	destructured := NewDestructurer(builder).Run(prog)
	out := New(builder, symtab.New()).Run(destructured)

	var walk func(e ast.Expr)
	walk = func(e ast.Expr) {
		switch n := e.(type) {
		case nil:
			return
		case *ast.Tuple:
			t.Fatalf("Tuple survived destructure+flatten: %#v", n)
		case *ast.TupleAccess:
			t.Fatalf("TupleAccess survived destructure+flatten: %#v", n)
		case *ast.Ternary:
			walk(n.Cond)
			walk(n.IfTrue)
			walk(n.IfFalse)
		case *ast.Binary:
			walk(n.Left)
			walk(n.Right)
		case *ast.Unary:
			walk(n.Inner)
		}
	}
	for _, s := range out.Functions[0].Body.Statements {
		switch n := s.(type) {
		case *ast.Definition:
			walk(n.Value)
		case *ast.Assign:
			walk(n.Value)
		case *ast.Return:
			walk(n.Value)
		}
	}
}

func TestDestructurerLeavesMultiNameDestructuringAlone(t *testing.T) {
	b := surface.New()
	pairVal := b.Tuple(b.Int("1", ast.U32), b.Int("2", ast.U32))
	let := b.LetTuple([]string{"a", "c"}, pairVal)
	body := b.Block(let, b.Return(b.Path("a")))
	fn := b.Function("f", ast.VariantTransition, nil, nil, ast.IntegerType{Int: ast.U32}, body)
	prog := b.Program("p.aleo", []*ast.Function{fn}, nil, nil, nil)

	out := NewDestructurer(ids.NewBuilder()).Run(prog)

	stmts := out.Functions[0].Body.Statements
	if len(stmts) != 2 {
		t.Fatalf("multi-name destructuring should pass through unchanged, got %d statements", len(stmts))
	}
	def, ok := stmts[0].(*ast.Definition)
	if !ok || len(def.Place.Names) != 2 {
		t.Errorf("stmts[0] = %#v, want the original two-name Definition", stmts[0])
	}
}
