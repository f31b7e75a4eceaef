package canon

import (
	"testing"

	"github.com/leo-lang/avmc/internal/ast"
	"github.com/leo-lang/avmc/internal/diagnostics"
	"github.com/leo-lang/avmc/internal/ids"
	"github.com/leo-lang/avmc/internal/surface"
	"github.com/leo-lang/avmc/internal/symtab"
)

func TestReduceAssignDesugarsCompoundAdd(t *testing.T) {
	b := surface.New()
	assign := &ast.Assign{
		Base:  ast.Base{NodeID: b.IDs().Next()},
		Place: ast.Place{Names: []string{"x"}},
		Op:    ast.CompoundAdd,
		Value: b.Int("1", ast.U32),
	}
	body := b.Block(assign, b.Return(b.Path("x")))
	fn := b.Function("f", ast.VariantTransition, nil, nil, ast.IntegerType{Int: ast.U32}, body)
	prog := b.Program("p.aleo", []*ast.Function{fn}, nil, nil, nil)

	diag := diagnostics.NewHandler()
	c := New(b.IDs(), symtab.New(), diag)
	out := c.Run(prog)

	if diag.HasErrors() {
		t.Fatalf("unexpected errors: %v", diag.Reports)
	}
	got, ok := out.Functions[0].Body.Statements[0].(*ast.Assign)
	if !ok {
		t.Fatalf("statement 0 = %T, want *ast.Assign", out.Functions[0].Body.Statements[0])
	}
	if got.Op != ast.CompoundNone {
		t.Errorf("desugared assign should carry CompoundNone, got %v", got.Op)
	}
	bin, ok := got.Value.(*ast.Binary)
	if !ok {
		t.Fatalf("desugared value = %T, want *ast.Binary", got.Value)
	}
	if bin.Op != ast.BinAdd {
		t.Errorf("desugared op = %v, want BinAdd", bin.Op)
	}
	path, ok := bin.Left.(*ast.Path)
	if !ok || len(path.Segments) != 1 || path.Segments[0] != "x" {
		t.Errorf("desugared left operand = %#v, want Path{x}", bin.Left)
	}
}

func TestReduceRepeatExpandsMultiDimension(t *testing.T) {
	b := surface.New()
	elem := b.Int("0", ast.U8)
	rep := b.Repeat(elem, b.Int("2", ast.U32), b.Int("3", ast.U32))

	diag := diagnostics.NewHandler()
	c := New(ids.NewBuilder(), symtab.New(), diag)

	outer, ok := c.ReduceRepeat(rep, elem, rep.Dimensions).(*ast.Repeat)
	if !ok {
		t.Fatalf("ReduceRepeat did not return *ast.Repeat")
	}
	if len(outer.Dimensions) != 1 {
		t.Fatalf("outer repeat should carry a single dimension, got %d", len(outer.Dimensions))
	}
	inner, ok := outer.Element.(*ast.Repeat)
	if !ok {
		t.Fatalf("outer.Element = %T, want a nested *ast.Repeat", outer.Element)
	}
	if len(inner.Dimensions) != 1 {
		t.Errorf("inner repeat should carry a single dimension, got %d", len(inner.Dimensions))
	}
}
