package surface

import (
	"testing"

	"github.com/leo-lang/avmc/internal/ast"
	"github.com/leo-lang/avmc/internal/astutil"
)

func TestBuilderAssignsUniqueNodeIDs(t *testing.T) {
	b := New()

	input := b.Input("amount", ast.IntegerType{Int: ast.U32}, ast.ModePublic)
	one := b.Int("1", ast.U32)
	sum := b.Binary(ast.BinAdd, b.Path("amount"), one)
	body := b.Block(b.Return(sum))
	fn := b.Function("increment", ast.VariantTransition, nil, []ast.Param{input}, ast.IntegerType{Int: ast.U32}, body)
	prog := b.Program("counter.aleo", []*ast.Function{fn}, nil, nil, nil)

	if err := astutil.CheckUniqueNodeIDs(prog); err != nil {
		t.Fatalf("CheckUniqueNodeIDs: %v", err)
	}
}

func TestRecordPrependsOwnerField(t *testing.T) {
	b := New()
	rec := b.Record("Token", ast.StructField{Name: "amount", Type: ast.IntegerType{Int: ast.U64}})

	if len(rec.Fields) != 2 {
		t.Fatalf("got %d fields, want 2", len(rec.Fields))
	}
	if rec.Fields[0].Name != "owner" {
		t.Errorf("Fields[0].Name = %q, want %q", rec.Fields[0].Name, "owner")
	}
	if _, ok := rec.Fields[0].Type.(ast.AddressType); !ok {
		t.Errorf("Fields[0].Type = %T, want ast.AddressType", rec.Fields[0].Type)
	}
	if rec.Fields[1].Name != "amount" {
		t.Errorf("Fields[1].Name = %q, want %q", rec.Fields[1].Name, "amount")
	}
}

func TestBuilderIDsSharedWithPipelineSource(t *testing.T) {
	b := New()
	lit := b.Int("7", ast.U8)
	before := lit.ID()

	next := b.IDs().Next()
	if next == before {
		t.Errorf("Builder.IDs() allocator collided with a prior node id %v", before)
	}
}
